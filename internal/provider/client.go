// Package provider is the HTTP client for the upstream weather station
// network. It authenticates with an API key header, classifies error
// responses, and normalizes history payloads before returning them.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"weather-telemetry/internal/models"
	"weather-telemetry/internal/stats"
	"weather-telemetry/pkg/logging"
	"weather-telemetry/pkg/metrics"
)

const (
	apiKeyHeader     = "X-API-KEY"
	defaultUserAgent = "weather-telemetry/1.0"
)

// Config holds provider connection settings.
type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	UserAgent string
}

// Client fetches station catalog, latest and history data.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	clock      clockwork.Clock
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
}

// NewClient creates a provider client. The API key is required.
func NewClient(cfg Config, logger *logging.StructuredLogger, metricsCollector *metrics.Collector, clock clockwork.Clock) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("provider API key is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("provider base URL is required")
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		userAgent:  ua,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		clock:      clock,
		logger:     logger,
		metrics:    metricsCollector,
	}, nil
}

// FetchCatalog returns every station the provider knows about.
func (c *Client) FetchCatalog(ctx context.Context) ([]models.RawStation, error) {
	var stations []models.RawStation
	if err := c.get(ctx, "catalog", "/stations", nil, &stations); err != nil {
		return nil, err
	}
	return stations, nil
}

// FetchLatest returns the most recent reading for a station. A 404 yields a
// synthetic payload with Message set instead of an error.
func (c *Client) FetchLatest(ctx context.Context, stationID string) (*models.LatestPayload, error) {
	if strings.TrimSpace(stationID) == "" {
		return nil, models.NewValidationError("station_id", stationID, "is required")
	}

	var entry models.RawEntry
	err := c.get(ctx, "latest", "/stations/"+url.PathEscape(stationID)+"/latest", nil, &entry)
	if errors.Is(err, ErrNotFound) {
		return c.degradedLatest(ctx, stationID), nil
	}
	if err != nil {
		return nil, err
	}

	return &models.LatestPayload{
		StationID:   stationID,
		Observation: entry.Observation,
		Health:      entry.Health,
		Location:    entry.Location,
	}, nil
}

// FetchHistory returns one day of history for a station. date must be
// YYYY-MM-DD within the last month and not in the future; it is checked
// before any request is made. A 404 yields a synthetic day with Message set.
func (c *Client) FetchHistory(ctx context.Context, stationID, date string) (*models.HistoryPayload, error) {
	if strings.TrimSpace(stationID) == "" {
		return nil, models.NewValidationError("station_id", stationID, "is required")
	}
	if err := ValidateHistoryDate(date, c.clock.Now()); err != nil {
		return nil, err
	}

	var entries []models.RawEntry
	err := c.get(ctx, "history", "/stations/"+url.PathEscape(stationID)+"/history", url.Values{"date": {date}}, &entries)
	if errors.Is(err, ErrNotFound) {
		return c.degradedHistory(ctx, stationID, date), nil
	}
	if err != nil {
		return nil, err
	}

	return BuildHistory(stationID, date, entries), nil
}

// ValidateHistoryDate checks that date parses as YYYY-MM-DD and lies in
// [today - 1 month, today], both evaluated in UTC.
func ValidateHistoryDate(date string, now time.Time) error {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return models.NewValidationError("date", date, "must be formatted YYYY-MM-DD")
	}
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.After(today) {
		return models.NewValidationError("date", date, "must not be in the future")
	}
	if d.Before(today.AddDate(0, -1, 0)) {
		return models.NewValidationError("date", date, "must be within the last month")
	}
	return nil
}

// BuildHistory orders raw entries by timestamp, keeps the valid
// observations, and summarizes them. Health and location come from the
// chronologically last entry. Entries without a timestamp sort first.
func BuildHistory(stationID, date string, entries []models.RawEntry) *models.HistoryPayload {
	sorted := make([]models.RawEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Observation.Timestamp, sorted[j].Observation.Timestamp
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})

	valid := make([]models.Observation, 0, len(sorted))
	for i := range sorted {
		if sorted[i].Observation.IsValid() {
			valid = append(valid, sorted[i].Observation)
		}
	}

	out := &models.HistoryPayload{
		StationID:    stationID,
		Date:         date,
		Total:        len(sorted),
		Observations: valid,
	}
	if len(sorted) > 0 {
		last := sorted[len(sorted)-1]
		out.Health = last.Health
		out.Location = last.Location
	}
	out.Summary = stats.ComputeDailySummary(out.Total, valid, out.Health.DataQuality.Score)
	return out
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, dest interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstream(endpoint, "transport_error", c.clock.Since(start))
		return fmt.Errorf("%s request: %w: %w", endpoint, ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyExcerpt))
		apiErr := &APIError{
			Kind:       kindForStatus(resp.StatusCode),
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       excerpt(body),
		}
		if apiErr.Kind == ErrRateLimited {
			apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), c.clock.Now())
		}
		c.metrics.RecordUpstream(endpoint, strconv.Itoa(resp.StatusCode), c.clock.Since(start))
		if apiErr.Kind != ErrNotFound {
			c.logger.WarnErr(ctx, "[UPSTREAM_ERROR] Provider returned error status", logging.Fields{
				"endpoint": endpoint,
				"status":   resp.StatusCode,
			}, apiErr)
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		c.metrics.RecordUpstream(endpoint, "decode_error", c.clock.Since(start))
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	c.metrics.RecordUpstream(endpoint, "ok", c.clock.Since(start))
	return nil
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}
