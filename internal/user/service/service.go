package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	commoncrypto "github.com/darsapp/backend/internal/common/crypto"
	commonerrors "github.com/darsapp/backend/internal/common/errors"
	"github.com/darsapp/backend/internal/common/logger"
	scheduledomain "github.com/darsapp/backend/internal/schedule/domain"
	schedulerepo "github.com/darsapp/backend/internal/schedule/repository"
	"github.com/darsapp/backend/internal/user/domain"
	userrepo "github.com/darsapp/backend/internal/user/repository"
)

var validate = validator.New()

type RegisterInput struct {
	Username string `validate:"required,min=3,max=64"`
	Password string `validate:"required,min=8,max=72"`
	Name     string `validate:"required,max=128"`
	Email    string `validate:"omitempty,email"`
}

type UserService struct {
	users       userrepo.Repository
	schedules   schedulerepo.Repository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	log         *logger.Logger
}

func NewUserService(
	users userrepo.Repository,
	schedules schedulerepo.Repository,
	hasher commoncrypto.PasswordHasher,
	idGenerator commoncrypto.IDGenerator,
	log *logger.Logger,
) *UserService {
	return &UserService{
		users:       users,
		schedules:   schedules,
		hasher:      hasher,
		idGenerator: idGenerator,
		log:         log,
	}
}

// Register creates the user and an empty weekly schedule alongside it.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := validate.Struct(input); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return domain.User{}, commonerrors.ErrValidationFailed.WithCause(err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return domain.User{}, commonerrors.ErrInternalError.WithCause(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.User{}, commonerrors.ErrInternalError.WithCause(err)
	}

	user := domain.User{
		ID:           domain.ID(id),
		Username:     input.Username,
		PasswordHash: hash,
		Name:         input.Name,
		Email:        input.Email,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, commonerrors.ErrUsernameAlreadyExists) || errors.Is(err, commonerrors.ErrEmailAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_conflict",
			}).Warn("register failed: already exists")
			return domain.User{}, err
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		return domain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	scheduleID, err := s.idGenerator.NewID()
	if err != nil {
		return domain.User{}, commonerrors.ErrInternalError.WithCause(err)
	}

	if _, err := s.schedules.Replace(ctx, string(user.ID), scheduleID, scheduledomain.Empty()); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"user_id":  string(user.ID),
			"action":   "register_schedule_failed",
		}).Errorf("register failed: empty schedule create error: %v", err)
		return domain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "register_success",
	}).Info("register success")

	return user, nil
}

// GetByID returns the user and every schedule document attached to them.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, []scheduledomain.Schedule, error) {
	user, err := s.users.FindByID(ctx, domain.ID(id))
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return domain.User{}, nil, commonerrors.ErrUserNotFound
		}
		return domain.User{}, nil, commonerrors.ErrDatabaseError.WithCause(err)
	}

	schedules, err := s.schedules.ListByTutorID(ctx, string(user.ID))
	if err != nil {
		return domain.User{}, nil, commonerrors.ErrDatabaseError.WithCause(err)
	}

	return user, schedules, nil
}
