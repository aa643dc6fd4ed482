package http

import (
	"net/http"
	"time"

	"github.com/darsapp/backend/internal/auth/service"
	commonhttp "github.com/darsapp/backend/internal/common/http"
	"github.com/darsapp/backend/internal/common/logger"
	userdomain "github.com/darsapp/backend/internal/user/domain"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
}

func newUserResponse(u userdomain.User) userResponse {
	return userResponse{
		ID:       string(u.ID),
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
	}
}

type Handler struct {
	auth            *service.AuthService
	guard           *Guard
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	requestTimeout  time.Duration
	log             *logger.Logger
}

func NewHandler(
	auth *service.AuthService,
	guard *Guard,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
	requestTimeout time.Duration,
	log *logger.Logger,
) *Handler {
	return &Handler{
		auth:            auth,
		guard:           guard,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
		requestTimeout:  requestTimeout,
		log:             log,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	withTimeout := commonhttp.WithTimeout(h.requestTimeout)
	mux.HandleFunc("/token", commonhttp.RequireMethod(http.MethodPost)(withTimeout(h.token)))
	mux.HandleFunc("/token/validate", commonhttp.RequireMethod(http.MethodGet)(withTimeout(h.guard.RequireUser(h.validate))))
	mux.HandleFunc("/token/validate/refresh", commonhttp.RequireMethod(http.MethodGet)(withTimeout(h.validateRefresh)))
	mux.HandleFunc("/logout", commonhttp.RequireMethod(http.MethodPost)(h.logout))
}

// token implements the OAuth-shaped form endpoint: grant_type=password with
// username/password, or grant_type=refresh_token. The refresh token itself
// is taken from the refresh cookie; the refresh_token form field is parsed
// but intentionally ignored.
func (h *Handler) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.log.Warnf("token request failed: invalid form: %v", err)
		commonhttp.WriteErrorCode(w, http.StatusBadRequest, commonhttp.CodeInvalidForm, "invalid form body")
		return
	}

	input := service.GrantInput{
		GrantType: r.PostFormValue("grant_type"),
		Username:  r.PostFormValue("username"),
		Password:  r.PostFormValue("password"),
	}
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		input.RefreshToken = cookie.Value
	}

	pair, err := h.auth.Authorize(r.Context(), input)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	setTokenCookie(w, r, AccessTokenCookie, pair.AccessToken, h.accessTokenTTL)
	setTokenCookie(w, r, RefreshTokenCookie, pair.RefreshToken, h.refreshTokenTTL)

	commonhttp.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	})
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *Handler) validateRefresh(w http.ResponseWriter, r *http.Request) {
	var refreshToken string
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		refreshToken = cookie.Value
	}

	if err := h.auth.VerifyRefreshToken(r.Context(), refreshToken); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Refresh token is valid"})
}

// logout clears both cookies unconditionally. There is no server-side
// revocation; issued tokens stay valid until natural expiry.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	clearTokenCookie(w, r, AccessTokenCookie)
	clearTokenCookie(w, r, RefreshTokenCookie)
	commonhttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
