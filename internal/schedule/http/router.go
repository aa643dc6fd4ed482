package http

import (
	"net/http"
	"time"

	authhttp "github.com/darsapp/backend/internal/auth/http"
	commonhttp "github.com/darsapp/backend/internal/common/http"
	"github.com/darsapp/backend/internal/common/logger"
	"github.com/darsapp/backend/internal/schedule/domain"
	"github.com/darsapp/backend/internal/schedule/extractor"
	"github.com/darsapp/backend/internal/schedule/service"
)

type scheduleResponse struct {
	ID      string          `json:"id"`
	TutorID string          `json:"tutor_id"`
	Days    domain.WeekDays `json:"days"`
}

type Handler struct {
	schedules       *service.ScheduleService
	extractor       *extractor.Extractor
	guard           *authhttp.Guard
	requestTimeout  time.Duration
	generateTimeout time.Duration
	log             *logger.Logger
}

func NewHandler(
	schedules *service.ScheduleService,
	ext *extractor.Extractor,
	guard *authhttp.Guard,
	requestTimeout time.Duration,
	generateTimeout time.Duration,
	log *logger.Logger,
) *Handler {
	return &Handler{
		schedules:       schedules,
		extractor:       ext,
		guard:           guard,
		requestTimeout:  requestTimeout,
		generateTimeout: generateTimeout,
		log:             log,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	withTimeout := commonhttp.WithTimeout(h.requestTimeout)
	mux.HandleFunc("/schedule", withTimeout(h.guard.RequireUser(h.schedule)))

	// Generation may take up to five model calls, so it gets its own
	// budget.
	withGenerateTimeout := commonhttp.WithTimeout(h.generateTimeout)
	mux.HandleFunc("/generate_schedule", commonhttp.RequireMethod(http.MethodGet)(withGenerateTimeout(h.guard.RequireUser(h.generate))))
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.replace(w, r)
	case http.MethodGet:
		h.current(w, r)
	default:
		commonhttp.WriteErrorCode(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	user, ok := authhttp.UserFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var days domain.WeekDays
	if err := commonhttp.DecodeJSON(r, &days); err != nil {
		h.log.Warnf("schedule update failed: invalid json: %v", err)
		commonhttp.WriteErrorCode(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json")
		return
	}

	sched, err := h.schedules.Replace(r.Context(), string(user.ID), days)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, scheduleResponse{
		ID:      sched.ID,
		TutorID: sched.TutorID,
		Days:    sched.Days,
	})
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	user, ok := authhttp.UserFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	sched, err := h.schedules.Current(r.Context(), string(user.ID))
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, scheduleResponse{
		ID:      sched.ID,
		TutorID: sched.TutorID,
		Days:    sched.Days,
	})
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	description := r.URL.Query().Get("description")
	if description == "" {
		commonhttp.WriteErrorCode(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "description is required")
		return
	}

	week, err := h.extractor.Extract(r.Context(), description)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, week)
}
