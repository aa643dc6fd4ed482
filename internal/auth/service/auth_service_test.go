package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	commonerrors "github.com/darsapp/backend/internal/common/errors"
	"github.com/darsapp/backend/internal/common/logger"
	"github.com/darsapp/backend/internal/user/domain"
	userrepo "github.com/darsapp/backend/internal/user/repository"
)

type mockUserRepo struct {
	CreateFunc         func(ctx context.Context, user domain.User) error
	FindByUsernameFunc func(ctx context.Context, username string) (domain.User, error)
	FindByIDFunc       func(ctx context.Context, id domain.ID) (domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User) error {
	return m.CreateFunc(ctx, user)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	return m.FindByUsernameFunc(ctx, username)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	return m.FindByIDFunc(ctx, id)
}

type mockTokenService struct {
	IssueFunc  func(subject string, ttl time.Duration) (string, error)
	VerifyFunc func(token string) (string, error)
}

func (m *mockTokenService) Issue(subject string, ttl time.Duration) (string, error) {
	return m.IssueFunc(subject, ttl)
}

func (m *mockTokenService) Verify(token string) (string, error) {
	return m.VerifyFunc(token)
}

type mockPasswordVerifier struct {
	CompareFunc func(hash string, password string) error
}

func (m *mockPasswordVerifier) Compare(hash string, password string) error {
	return m.CompareFunc(hash, password)
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("", "test", "CRITICAL")
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return log
}

func knownUser() domain.User {
	return domain.User{
		ID:           "user-1",
		Username:     "ahmad",
		PasswordHash: "$2a$12$hash",
		Name:         "Ahmad",
	}
}

func newTestAuthService(t *testing.T, users *mockUserRepo, tokens *mockTokenService, passwords *mockPasswordVerifier) *AuthService {
	t.Helper()
	return NewAuthService(users, tokens, passwords, 30*time.Minute, 30*24*time.Hour, newTestLogger(t))
}

func TestPasswordGrantSuccess(t *testing.T) {
	users := &mockUserRepo{
		FindByUsernameFunc: func(ctx context.Context, username string) (domain.User, error) {
			if username != "ahmad" {
				return domain.User{}, userrepo.ErrUserNotFound
			}
			return knownUser(), nil
		},
	}
	tokens := &mockTokenService{
		IssueFunc: func(subject string, ttl time.Duration) (string, error) {
			return fmt.Sprintf("token-%s-%s", subject, ttl), nil
		},
	}
	passwords := &mockPasswordVerifier{
		CompareFunc: func(hash, password string) error { return nil },
	}

	svc := newTestAuthService(t, users, tokens, passwords)

	pair, err := svc.Authorize(context.Background(), GrantInput{
		GrantType: GrantPassword,
		Username:  "ahmad",
		Password:  "correct-password",
	})
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}

	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected both tokens to be issued")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Error("access and refresh tokens must have different TTLs")
	}
	if pair.TokenType != TokenTypeBearer {
		t.Errorf("expected token type %q, got %q", TokenTypeBearer, pair.TokenType)
	}
	if pair.ExpiresIn != int((30 * time.Minute).Seconds()) {
		t.Errorf("expected expires_in %d, got %d", int((30 * time.Minute).Seconds()), pair.ExpiresIn)
	}
}

func TestPasswordGrantWrongPassword(t *testing.T) {
	users := &mockUserRepo{
		FindByUsernameFunc: func(ctx context.Context, username string) (domain.User, error) {
			return knownUser(), nil
		},
	}
	tokens := &mockTokenService{}
	passwords := &mockPasswordVerifier{
		CompareFunc: func(hash, password string) error { return errors.New("mismatch") },
	}

	svc := newTestAuthService(t, users, tokens, passwords)

	_, err := svc.Authorize(context.Background(), GrantInput{
		GrantType: GrantPassword,
		Username:  "ahmad",
		Password:  "wrong",
	})
	if !errors.Is(err, commonerrors.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestPasswordGrantUnknownUser(t *testing.T) {
	users := &mockUserRepo{
		FindByUsernameFunc: func(ctx context.Context, username string) (domain.User, error) {
			return domain.User{}, userrepo.ErrUserNotFound
		},
	}
	svc := newTestAuthService(t, users, &mockTokenService{}, &mockPasswordVerifier{})

	_, err := svc.Authorize(context.Background(), GrantInput{
		GrantType: GrantPassword,
		Username:  "nobody",
		Password:  "irrelevant",
	})
	// Must be indistinguishable from a wrong password.
	if !errors.Is(err, commonerrors.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestPasswordGrantAccountWithoutPassword(t *testing.T) {
	users := &mockUserRepo{
		FindByUsernameFunc: func(ctx context.Context, username string) (domain.User, error) {
			u := knownUser()
			u.PasswordHash = ""
			return u, nil
		},
	}
	svc := newTestAuthService(t, users, &mockTokenService{}, &mockPasswordVerifier{})

	_, err := svc.Authorize(context.Background(), GrantInput{
		GrantType: GrantPassword,
		Username:  "ahmad",
		Password:  "anything",
	})
	if !errors.Is(err, commonerrors.ErrAccountNotRegistered) {
		t.Errorf("expected ErrAccountNotRegistered, got %v", err)
	}
}

func TestRefreshGrantDoesNotRotate(t *testing.T) {
	users := &mockUserRepo{
		FindByUsernameFunc: func(ctx context.Context, username string) (domain.User, error) {
			return knownUser(), nil
		},
	}
	tokens := &mockTokenService{
		VerifyFunc: func(token string) (string, error) { return "ahmad", nil },
		IssueFunc: func(subject string, ttl time.Duration) (string, error) {
			return "fresh-access-token", nil
		},
	}
	svc := newTestAuthService(t, users, tokens, &mockPasswordVerifier{})

	pair, err := svc.Authorize(context.Background(), GrantInput{
		GrantType:    GrantRefreshToken,
		RefreshToken: "existing-refresh-token",
	})
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}

	if pair.AccessToken != "fresh-access-token" {
		t.Errorf("expected new access token, got %q", pair.AccessToken)
	}
	if pair.RefreshToken != "existing-refresh-token" {
		t.Errorf("refresh token must be returned unrotated, got %q", pair.RefreshToken)
	}
}

func TestRefreshGrantMissingCookie(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &mockTokenService{}, &mockPasswordVerifier{})

	_, err := svc.Authorize(context.Background(), GrantInput{GrantType: GrantRefreshToken})
	if !errors.Is(err, commonerrors.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshGrantInvalidToken(t *testing.T) {
	tokens := &mockTokenService{
		VerifyFunc: func(token string) (string, error) {
			return "", commonerrors.ErrTokenExpired
		},
	}
	svc := newTestAuthService(t, &mockUserRepo{}, tokens, &mockPasswordVerifier{})

	_, err := svc.Authorize(context.Background(), GrantInput{
		GrantType:    GrantRefreshToken,
		RefreshToken: "stale",
	})
	// Verification detail is collapsed for refresh callers.
	if !errors.Is(err, commonerrors.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUnsupportedGrantType(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &mockTokenService{}, &mockPasswordVerifier{})

	_, err := svc.Authorize(context.Background(), GrantInput{GrantType: "client_credentials"})
	if !errors.Is(err, commonerrors.ErrUnsupportedGrant) {
		t.Errorf("expected ErrUnsupportedGrant, got %v", err)
	}
}

func TestCurrentUserSuccess(t *testing.T) {
	users := &mockUserRepo{
		FindByUsernameFunc: func(ctx context.Context, username string) (domain.User, error) {
			return knownUser(), nil
		},
	}
	tokens := &mockTokenService{
		VerifyFunc: func(token string) (string, error) { return "ahmad", nil },
	}
	svc := newTestAuthService(t, users, tokens, &mockPasswordVerifier{})

	user, err := svc.CurrentUser(context.Background(), "valid-token")
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if user.Username != "ahmad" {
		t.Errorf("expected user 'ahmad', got %q", user.Username)
	}
}

func TestCurrentUserEmptyToken(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &mockTokenService{}, &mockPasswordVerifier{})

	_, err := svc.CurrentUser(context.Background(), "")
	if !errors.Is(err, commonerrors.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestCurrentUserExpiredTokenPassesThrough(t *testing.T) {
	tokens := &mockTokenService{
		VerifyFunc: func(token string) (string, error) {
			return "", commonerrors.ErrTokenExpired
		},
	}
	svc := newTestAuthService(t, &mockUserRepo{}, tokens, &mockPasswordVerifier{})

	_, err := svc.CurrentUser(context.Background(), "stale")
	if !errors.Is(err, commonerrors.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestCurrentUserValidTokenUnknownSubject(t *testing.T) {
	users := &mockUserRepo{
		FindByUsernameFunc: func(ctx context.Context, username string) (domain.User, error) {
			return domain.User{}, userrepo.ErrUserNotFound
		},
	}
	tokens := &mockTokenService{
		VerifyFunc: func(token string) (string, error) { return "deleted-user", nil },
	}
	svc := newTestAuthService(t, users, tokens, &mockPasswordVerifier{})

	_, err := svc.CurrentUser(context.Background(), "valid-token")
	if !errors.Is(err, commonerrors.ErrTokenUserNotFound) {
		t.Errorf("expected ErrTokenUserNotFound, got %v", err)
	}
	de, ok := commonerrors.AsDomainError(err)
	if !ok {
		t.Fatalf("expected a domain error, got %v", err)
	}
	if de.HTTPStatus() != 401 {
		t.Errorf("expected status 401, got %d", de.HTTPStatus())
	}
}

func TestVerifyRefreshToken(t *testing.T) {
	users := &mockUserRepo{
		FindByUsernameFunc: func(ctx context.Context, username string) (domain.User, error) {
			return knownUser(), nil
		},
	}
	tokens := &mockTokenService{
		VerifyFunc: func(token string) (string, error) { return "ahmad", nil },
	}
	svc := newTestAuthService(t, users, tokens, &mockPasswordVerifier{})

	if err := svc.VerifyRefreshToken(context.Background(), "valid"); err != nil {
		t.Errorf("expected valid refresh token, got %v", err)
	}
	if err := svc.VerifyRefreshToken(context.Background(), ""); !errors.Is(err, commonerrors.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for empty token, got %v", err)
	}
}
