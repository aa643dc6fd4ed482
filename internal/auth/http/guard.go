package http

import (
	"context"
	"net/http"

	"github.com/darsapp/backend/internal/auth/service"
	commonerrors "github.com/darsapp/backend/internal/common/errors"
	commonhttp "github.com/darsapp/backend/internal/common/http"
	"github.com/darsapp/backend/internal/common/logger"
	userdomain "github.com/darsapp/backend/internal/user/domain"
)

// CredentialExtractor reads a bearer credential from an incoming request.
// This service carries tokens in HttpOnly cookies, not Authorization
// headers.
type CredentialExtractor interface {
	Extract(r *http.Request) (string, bool)
}

type CookieExtractor struct {
	Name string
}

func (e CookieExtractor) Extract(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(e.Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

type contextKey string

const currentUserKey contextKey = "current_user"

// UserFromContext returns the user resolved by the Guard middleware.
func UserFromContext(ctx context.Context) (userdomain.User, bool) {
	user, ok := ctx.Value(currentUserKey).(userdomain.User)
	return user, ok
}

// Guard resolves the access cookie to a user before every
// identity-requiring handler.
type Guard struct {
	auth      *service.AuthService
	extractor CredentialExtractor
	log       *logger.Logger
}

func NewGuard(auth *service.AuthService, extractor CredentialExtractor, log *logger.Logger) *Guard {
	return &Guard{auth: auth, extractor: extractor, log: log}
}

func (g *Guard) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := g.extractor.Extract(r)
		if !ok {
			g.log.Warnf("auth guard path=%s: missing access token cookie", r.URL.Path)
			commonhttp.HandleError(w, r, commonerrors.ErrUnauthenticated, g.log)
			return
		}

		user, err := g.auth.CurrentUser(r.Context(), raw)
		if err != nil {
			g.log.Warnf("auth guard path=%s: %v", r.URL.Path, err)
			commonhttp.HandleError(w, r, err, g.log)
			return
		}

		ctx := context.WithValue(r.Context(), currentUserKey, user)
		next(w, r.WithContext(ctx))
	}
}
