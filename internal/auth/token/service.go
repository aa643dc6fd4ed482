package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/darsapp/backend/internal/common/clock"
	commonerrors "github.com/darsapp/backend/internal/common/errors"
)

// Service signs and verifies time-limited HS256 claims. Access and refresh
// tokens share the mechanism and differ only in TTL.
type Service struct {
	secret []byte
	clock  clock.Clock
}

func NewService(secret string, clk clock.Clock) *Service {
	return &Service{
		secret: []byte(secret),
		clock:  clk,
	}
}

func (s *Service) Issue(subject string, ttl time.Duration) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the subject claim.
func (s *Service) Verify(tokenString string) (string, error) {
	parsed, err := jwt.Parse(
		tokenString,
		func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		},
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", commonerrors.ErrTokenExpired.WithCause(err)
		}
		return "", commonerrors.ErrTokenMalformed.WithCause(err)
	}
	if !parsed.Valid {
		return "", commonerrors.ErrTokenMalformed
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", commonerrors.ErrTokenMalformed
	}

	subject, _ := mapClaims["sub"].(string)
	if subject == "" {
		return "", commonerrors.ErrTokenMissingSubject
	}

	return subject, nil
}
