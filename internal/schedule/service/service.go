package service

import (
	"context"
	"errors"

	commoncrypto "github.com/darsapp/backend/internal/common/crypto"
	commonerrors "github.com/darsapp/backend/internal/common/errors"
	"github.com/darsapp/backend/internal/common/logger"
	"github.com/darsapp/backend/internal/schedule/domain"
	schedulerepo "github.com/darsapp/backend/internal/schedule/repository"
)

type ScheduleService struct {
	schedules   schedulerepo.Repository
	idGenerator commoncrypto.IDGenerator
	log         *logger.Logger
}

func NewScheduleService(
	schedules schedulerepo.Repository,
	idGenerator commoncrypto.IDGenerator,
	log *logger.Logger,
) *ScheduleService {
	return &ScheduleService{
		schedules:   schedules,
		idGenerator: idGenerator,
		log:         log,
	}
}

// Replace swaps the tutor's schedule for the given one. The previous
// schedule is discarded wholesale, never merged.
func (s *ScheduleService) Replace(ctx context.Context, tutorID string, days domain.WeekDays) (domain.Schedule, error) {
	if err := days.Validate(); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"tutor_id": tutorID,
			"action":   "schedule_validation_failed",
		}).Warnf("schedule rejected: %v", err)
		return domain.Schedule{}, commonerrors.ErrValidationFailed.WithCause(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.Schedule{}, commonerrors.ErrInternalError.WithCause(err)
	}

	sched, err := s.schedules.Replace(ctx, tutorID, id, days)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"tutor_id": tutorID,
			"action":   "schedule_replace_failed",
		}).Errorf("schedule replace failed: %v", err)
		return domain.Schedule{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"tutor_id":    tutorID,
		"schedule_id": sched.ID,
		"action":      "schedule_replaced",
	}).Info("schedule replaced")

	return sched, nil
}

func (s *ScheduleService) Current(ctx context.Context, tutorID string) (domain.Schedule, error) {
	sched, err := s.schedules.FindByTutorID(ctx, tutorID)
	if err != nil {
		if errors.Is(err, schedulerepo.ErrScheduleNotFound) {
			return domain.Schedule{}, commonerrors.ErrScheduleNotFound
		}
		return domain.Schedule{}, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return sched, nil
}
