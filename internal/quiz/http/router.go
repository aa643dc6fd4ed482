package http

import (
	"net/http"
	"time"

	commonhttp "github.com/darsapp/backend/internal/common/http"
	"github.com/darsapp/backend/internal/common/logger"
	"github.com/darsapp/backend/internal/quiz"
)

type Handler struct {
	quizzes        *quiz.Service
	requestTimeout time.Duration
	log            *logger.Logger
}

func NewHandler(quizzes *quiz.Service, requestTimeout time.Duration, log *logger.Logger) *Handler {
	return &Handler{
		quizzes:        quizzes,
		requestTimeout: requestTimeout,
		log:            log,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	// Four verse lookups per question, so the budget is wider than the
	// default request timeout.
	withTimeout := commonhttp.WithTimeout(h.requestTimeout)
	mux.HandleFunc("/ayah", commonhttp.RequireMethod(http.MethodGet)(withTimeout(h.question)))
}

func (h *Handler) question(w http.ResponseWriter, r *http.Request) {
	question, err := h.quizzes.NewQuestion(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, question)
}
