package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of HTTP error responses",
		},
		[]string{"status", "method"},
	)

	RateLimitBlocked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_blocked_total",
			Help: "Total number of requests blocked by rate limiting",
		},
		[]string{"path"},
	)

	AccessTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "access_tokens_issued_total",
			Help: "Total number of access tokens issued",
		},
	)

	RefreshTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_issued_total",
			Help: "Total number of refresh tokens issued",
		},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Total number of login attempts by grant type and outcome",
		},
		[]string{"grant_type", "outcome"},
	)

	TokenValidationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "token_validations_failed_total",
			Help: "Total number of failed token validations",
		},
	)

	ScheduleExtractionAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "schedule_extraction_attempts_total",
			Help: "Total number of generation attempts made by the schedule extractor",
		},
	)

	ScheduleExtractionsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "schedule_extractions_failed_total",
			Help: "Total number of schedule extractions that exhausted all attempts",
		},
	)

	VerseFetchesFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "verse_fetches_failed_total",
			Help: "Total number of failed verse API fetches",
		},
	)
)
