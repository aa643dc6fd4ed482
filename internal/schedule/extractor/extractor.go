package extractor

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	commonerrors "github.com/darsapp/backend/internal/common/errors"
	"github.com/darsapp/backend/internal/common/logger"
	"github.com/darsapp/backend/internal/observability/metrics"
	"github.com/darsapp/backend/internal/schedule/domain"
)

// TextGenerator is the generative collaborator. It returns free text that
// is expected, but not guaranteed, to contain one JSON object.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const promptTemplate = `Please return JSON the a weekly schedule from this decription using the following schema:

{"day_name": list[TIMESLOT]}

TIMESLOT = {start_time": str, "end_time": str}

All fields are required.

Important: Only return a single piece of valid JSON text.
Important: Friday and Saturday are the only weekend days.
Important: Sunday is a weekday.
Important: The start_time and end_time are in 24-hour format.

Here is the description to use for the schedule:

`

const (
	maxAttempts    = 5
	attemptBackoff = 100 * time.Millisecond
)

// Extractor turns a free-text availability description into a validated
// weekly schedule. The generator gives no schema guarantee, so the bounded
// retry loop is the correctness boundary: each attempt re-sends the same
// prompt and re-checks the output until one response parses and validates.
type Extractor struct {
	generator TextGenerator
	log       *logger.Logger
}

func NewExtractor(generator TextGenerator, log *logger.Logger) *Extractor {
	return &Extractor{
		generator: generator,
		log:       log,
	}
}

// Extract runs up to five sequential attempts. Attempts cannot be
// speculative or parallel: each one exists only because the previous
// response was unusable. Context cancellation aborts between attempts.
func (e *Extractor) Extract(ctx context.Context, description string) (domain.WeekDays, error) {
	prompt := promptTemplate + description

	var result domain.WeekDays
	backoff := retry.WithMaxRetries(maxAttempts-1, retry.NewConstant(attemptBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		metrics.ScheduleExtractionAttempts.Inc()

		raw, err := e.generator.Generate(ctx, prompt)
		if err != nil {
			e.log.WithFields(ctx, logger.Fields{
				"action": "generation_call_failed",
			}).Warnf("schedule generation call failed: %v", err)
			return retry.RetryableError(err)
		}

		days, err := parseDayMap(raw)
		if err != nil {
			e.log.WithFields(ctx, logger.Fields{
				"action": "generation_invalid_json",
			}).Warnf("schedule generation returned invalid JSON: %v", err)
			return retry.RetryableError(err)
		}

		week := domain.FromDayMap(days)
		if err := week.Validate(); err != nil {
			e.log.WithFields(ctx, logger.Fields{
				"action": "generation_schema_invalid",
			}).Warnf("schedule generation failed validation: %v", err)
			return retry.RetryableError(err)
		}

		result = week
		return nil
	})
	if err != nil {
		metrics.ScheduleExtractionsFailed.Inc()
		e.log.WithFields(ctx, logger.Fields{
			"action": "generation_exhausted",
		}).Errorf("schedule generation failed after %d attempts: %v", maxAttempts, err)
		return domain.WeekDays{}, commonerrors.ErrScheduleGenerationFailed.WithCause(err)
	}

	return result, nil
}

// parseDayMap strips markdown fencing the generator tends to wrap around
// its output, then decodes the remaining JSON object.
func parseDayMap(raw string) (map[string][]domain.TimeSlot, error) {
	text := strings.Trim(raw, "`\r\n ")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSpace(text)

	var days map[string][]domain.TimeSlot
	if err := json.Unmarshal([]byte(text), &days); err != nil {
		return nil, err
	}
	return days, nil
}
