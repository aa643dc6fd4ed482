package http

import (
	"net/http"
	"strings"

	authhttp "github.com/darsapp/backend/internal/auth/http"
	commonhttp "github.com/darsapp/backend/internal/common/http"
	"github.com/darsapp/backend/internal/common/logger"
	scheduledomain "github.com/darsapp/backend/internal/schedule/domain"
	"github.com/darsapp/backend/internal/user/domain"
	"github.com/darsapp/backend/internal/user/service"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type scheduleResponse struct {
	ID   string                  `json:"id"`
	Days scheduledomain.WeekDays `json:"days"`
}

type userResponse struct {
	ID       string             `json:"id"`
	Username string             `json:"username"`
	Name     string             `json:"name"`
	Email    string             `json:"email,omitempty"`
	Schedule []scheduleResponse `json:"schedule,omitempty"`
}

func newUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:       string(u.ID),
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
	}
}

type Handler struct {
	users *service.UserService
	guard *authhttp.Guard
	log   *logger.Logger
}

func NewHandler(users *service.UserService, guard *authhttp.Guard, log *logger.Logger) *Handler {
	return &Handler{users: users, guard: guard, log: log}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/users/", h.usersRoot)
	mux.HandleFunc("/me", commonhttp.RequireMethod(http.MethodGet)(h.guard.RequireUser(h.me)))
}

// usersRoot serves POST /users/ (registration) and GET /users/{id}.
func (h *Handler) usersRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.get(w, r)
	default:
		commonhttp.WriteErrorCode(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("register failed: invalid json: %v", err)
		commonhttp.WriteErrorCode(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json")
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Email:    req.Email,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, newUserResponse(user))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/users/")
	if id == "" || strings.Contains(id, "/") {
		commonhttp.WriteErrorCode(w, http.StatusBadRequest, commonhttp.CodeUserIDRequired, "user id required")
		return
	}

	user, schedules, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	resp := newUserResponse(user)
	for _, sched := range schedules {
		resp.Schedule = append(resp.Schedule, scheduleResponse{ID: sched.ID, Days: sched.Days})
	}

	commonhttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := authhttp.UserFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, newUserResponse(user))
}
