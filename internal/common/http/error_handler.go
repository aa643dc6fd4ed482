package http

import (
	"net/http"
	"strconv"

	commonerrors "github.com/darsapp/backend/internal/common/errors"
	"github.com/darsapp/backend/internal/common/logger"
	"github.com/darsapp/backend/internal/observability/metrics"
)

// HandleError maps a service error onto the wire. DomainErrors carry their
// own status and code; anything else is a 500.
func HandleError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	if err == nil {
		return
	}

	if domainErr, ok := commonerrors.AsDomainError(err); ok {
		status := domainErr.HTTPStatus()

		if log.ShouldLog(logger.DEBUG) {
			log.WithFields(r.Context(), logger.Fields{
				"error_code": domainErr.Code(),
				"category":   string(domainErr.Category()),
				"status":     status,
			}).Debugf("domain error: %s", domainErr.Error())
		}

		metrics.HTTPErrorsTotal.WithLabelValues(
			strconv.Itoa(status),
			r.Method,
		).Inc()

		WriteErrorCode(w, status, domainErr.Code(), domainErr.Message())
		return
	}

	log.WithFields(r.Context(), logger.Fields{
		"error": err.Error(),
		"path":  r.URL.Path,
	}).Errorf("unhandled error: %v", err)

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(http.StatusInternalServerError),
		r.Method,
	).Inc()

	WriteError(w, http.StatusInternalServerError, "internal server error")
}
