package service

import (
	"context"
	"errors"
	"time"

	commonerrors "github.com/darsapp/backend/internal/common/errors"
	"github.com/darsapp/backend/internal/common/logger"
	"github.com/darsapp/backend/internal/observability/metrics"
	"github.com/darsapp/backend/internal/user/domain"
	userrepo "github.com/darsapp/backend/internal/user/repository"
)

const (
	GrantPassword     = "password"
	GrantRefreshToken = "refresh_token"

	TokenTypeBearer = "bearer"
)

// TokenService signs and verifies expiring bearer credentials.
type TokenService interface {
	Issue(subject string, ttl time.Duration) (string, error)
	Verify(token string) (string, error)
}

// PasswordVerifier compares a stored hash against a candidate password.
type PasswordVerifier interface {
	Compare(hash string, password string) error
}

type AuthService struct {
	users           userrepo.Repository
	tokens          TokenService
	passwords       PasswordVerifier
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	log             *logger.Logger
}

func NewAuthService(
	users userrepo.Repository,
	tokens TokenService,
	passwords PasswordVerifier,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		users:           users,
		tokens:          tokens,
		passwords:       passwords,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
		log:             log,
	}
}

// GrantInput carries one token request. RefreshToken is read from the
// refresh cookie by the HTTP layer; the refresh_token form field defined by
// the OAuth form shape is accepted but never used.
type GrantInput struct {
	GrantType    string
	Username     string
	Password     string
	RefreshToken string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int
}

// Authorize runs one grant and returns a token pair. The password grant
// mints both tokens; the refresh grant mints only a new access token and
// returns the caller's refresh token unrotated.
func (s *AuthService) Authorize(ctx context.Context, input GrantInput) (TokenPair, error) {
	switch input.GrantType {
	case GrantPassword:
		return s.passwordGrant(ctx, input)
	case GrantRefreshToken:
		return s.refreshGrant(ctx, input)
	default:
		s.log.WithFields(ctx, logger.Fields{
			"grant_type": input.GrantType,
			"action":     "unsupported_grant",
		}).Warn("token request with unsupported grant type")
		return TokenPair{}, commonerrors.ErrUnsupportedGrant
	}
}

func (s *AuthService) passwordGrant(ctx context.Context, input GrantInput) (TokenPair, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	if input.Username == "" || input.Password == "" {
		metrics.LoginsTotal.WithLabelValues(GrantPassword, "failure").Inc()
		return TokenPair{}, commonerrors.ErrUnsupportedGrant
	}

	user, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			// Indistinguishable from a wrong password to avoid
			// username enumeration.
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "login_user_not_found",
			}).Warn("login failed: not found")
			metrics.LoginsTotal.WithLabelValues(GrantPassword, "failure").Inc()
			return TokenPair{}, commonerrors.ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		return TokenPair{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if user.PasswordHash == "" {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_account_not_registered",
		}).Warn("login failed: account has no password")
		metrics.LoginsTotal.WithLabelValues(GrantPassword, "failure").Inc()
		return TokenPair{}, commonerrors.ErrAccountNotRegistered
	}

	if err := s.passwords.Compare(user.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_invalid_password",
		}).Warn("login failed: invalid password")
		metrics.LoginsTotal.WithLabelValues(GrantPassword, "failure").Inc()
		return TokenPair{}, commonerrors.ErrInvalidCredentials
	}

	refreshToken, err := s.tokens.Issue(user.Username, s.refreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	metrics.RefreshTokensIssued.Inc()

	accessToken, err := s.tokens.Issue(user.Username, s.accessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	metrics.AccessTokensIssued.Inc()

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "login_success",
	}).Info("login success")
	metrics.LoginsTotal.WithLabelValues(GrantPassword, "success").Inc()

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int(s.accessTokenTTL.Seconds()),
	}, nil
}

func (s *AuthService) refreshGrant(ctx context.Context, input GrantInput) (TokenPair, error) {
	s.log.WithFields(ctx, logger.Fields{
		"action": "refresh_attempt",
	}).Info("refresh token attempt")

	if input.RefreshToken == "" {
		metrics.LoginsTotal.WithLabelValues(GrantRefreshToken, "failure").Inc()
		return TokenPair{}, commonerrors.ErrInvalidCredentials
	}

	// Any verification failure collapses to invalid credentials here: the
	// caller holds a refresh token, not a password, and gets no detail.
	username, err := s.tokens.Verify(input.RefreshToken)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "refresh_verify_failed",
		}).Warnf("refresh token rejected: %v", err)
		metrics.LoginsTotal.WithLabelValues(GrantRefreshToken, "failure").Inc()
		return TokenPair{}, commonerrors.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "refresh_user_lookup_failed",
		}).Warnf("refresh token rejected: %v", err)
		metrics.LoginsTotal.WithLabelValues(GrantRefreshToken, "failure").Inc()
		return TokenPair{}, commonerrors.ErrInvalidCredentials
	}

	accessToken, err := s.tokens.Issue(user.Username, s.accessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	metrics.AccessTokensIssued.Inc()

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "refresh_success",
	}).Info("refresh token used")
	metrics.LoginsTotal.WithLabelValues(GrantRefreshToken, "success").Inc()

	// The refresh token is returned as received: this flow does not rotate.
	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: input.RefreshToken,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int(s.accessTokenTTL.Seconds()),
	}, nil
}

// CurrentUser resolves an access token to its user. Called as the guard
// before every identity-requiring operation.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (domain.User, error) {
	if accessToken == "" {
		return domain.User{}, commonerrors.ErrUnauthenticated
	}

	username, err := s.tokens.Verify(accessToken)
	if err != nil {
		metrics.TokenValidationsFailed.Inc()
		return domain.User{}, err
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"action":   "current_user_gone",
			}).Warn("valid token for unknown user")
			metrics.TokenValidationsFailed.Inc()
			return domain.User{}, commonerrors.ErrTokenUserNotFound
		}
		return domain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	return user, nil
}

// VerifyRefreshToken checks the refresh cookie for /token/validate/refresh.
func (s *AuthService) VerifyRefreshToken(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return commonerrors.ErrInvalidCredentials
	}

	username, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return commonerrors.ErrInvalidCredentials
	}

	if _, err := s.users.FindByUsername(ctx, username); err != nil {
		return commonerrors.ErrInvalidCredentials
	}

	return nil
}
