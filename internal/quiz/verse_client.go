package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	commonerrors "github.com/darsapp/backend/internal/common/errors"
	"github.com/darsapp/backend/internal/common/logger"
	"github.com/darsapp/backend/internal/observability/metrics"
)

const (
	// Verse text editions served by the lookup API.
	EditionClean    = "quran-simple-clean"
	EditionTashkeel = "quran-unicode"
)

type Verse struct {
	Text          string
	NumberInSurah int
	SurahName     string
}

// VerseFetcher is the external verse-lookup collaborator.
type VerseFetcher interface {
	FetchVerse(ctx context.Context, number int, edition string) (Verse, error)
}

type HTTPVerseClient struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

func NewHTTPVerseClient(httpClient *http.Client, baseURL string, log *logger.Logger) *HTTPVerseClient {
	return &HTTPVerseClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		log:        log,
	}
}

type verseEnvelope struct {
	Data struct {
		Text          string `json:"text"`
		NumberInSurah int    `json:"numberInSurah"`
		Surah         struct {
			Name string `json:"name"`
		} `json:"surah"`
	} `json:"data"`
}

func (c *HTTPVerseClient) FetchVerse(ctx context.Context, number int, edition string) (Verse, error) {
	url := fmt.Sprintf("%s/ayah/%d/%s", c.baseURL, number, edition)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Verse{}, fmt.Errorf("failed to build verse request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.VerseFetchesFailed.Inc()
		return Verse{}, commonerrors.ErrUpstreamUnavailable.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.VerseFetchesFailed.Inc()
		c.log.Warnf("verse API returned status %d for ayah %d", resp.StatusCode, number)
		return Verse{}, commonerrors.ErrUpstreamUnavailable.WithCause(fmt.Errorf("verse API status %d", resp.StatusCode))
	}

	var envelope verseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		metrics.VerseFetchesFailed.Inc()
		return Verse{}, commonerrors.ErrUpstreamUnavailable.WithCause(err)
	}

	return Verse{
		Text:          envelope.Data.Text,
		NumberInSurah: envelope.Data.NumberInSurah,
		SurahName:     envelope.Data.Surah.Name,
	}, nil
}
