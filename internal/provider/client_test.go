package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-telemetry/internal/models"
	"weather-telemetry/pkg/logging"
	"weather-telemetry/pkg/metrics"
)

const (
	testAPIKey        = "test-key"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(
		Config{BaseURL: baseURL, APIKey: testAPIKey, Timeout: 5 * time.Second},
		logging.NewDiscardLogger(),
		metrics.NewCollectorWithRegistry("test", prometheus.NewRegistry()),
		clockwork.NewFakeClockAt(testNow),
	)
	require.NoError(t, err)
	return c
}

// jsonServer replies with status and body to every request and counts hits.
func jsonServer(t *testing.T, status int, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		assert.Equal(t, testAPIKey, r.Header.Get(apiKeyHeader))
		w.Header().Set(headerContentType, contentTypeJSON)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://x"}, logging.NewDiscardLogger(),
		metrics.NewCollectorWithRegistry("test", prometheus.NewRegistry()), clockwork.NewFakeClock())
	assert.Error(t, err)
}

func TestClient_FetchCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stations", r.URL.Path)
		assert.Equal(t, testAPIKey, r.Header.Get("X-API-KEY"))
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`[
			{"id":"s1","name":"Roof","cellIndex":"abc","lastDayQod":0.9,"location":{"lat":52.5,"lon":13.4,"elevation":40}},
			{"id":"s2","name":null,"location":{"lat":null,"lon":null}}
		]`))
	}))
	defer srv.Close()

	stations, err := testClient(t, srv.URL).FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 2)
	assert.Equal(t, "s1", stations[0].ID)
	assert.Equal(t, 0.9, *stations[0].LastDayQod)
	assert.Nil(t, stations[1].Name)
	assert.Nil(t, stations[1].Location.Latitude)
}

func TestClient_FetchCatalog_NotFoundIsError(t *testing.T) {
	srv := jsonServer(t, http.StatusNotFound, `{"error":"nope"}`, nil)

	_, err := testClient(t, srv.URL).FetchCatalog(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"server error", http.StatusInternalServerError, ErrUpstream},
		{"bad gateway", http.StatusBadGateway, ErrUpstream},
		{"teapot", http.StatusTeapot, ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := jsonServer(t, tt.status, `{"error":"x"}`, nil)

			_, err := testClient(t, srv.URL).FetchLatest(context.Background(), "s1")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "latest", apiErr.Endpoint)
		})
	}
}

func TestClient_RateLimitRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).FetchCatalog(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 30*time.Second, apiErr.RetryAfter)
	assert.True(t, apiErr.IsTransient())
}

func TestClient_GenericErrorBodyExcerpt(t *testing.T) {
	srv := jsonServer(t, http.StatusInternalServerError, strings.Repeat("x", 2000), nil)

	_, err := testClient(t, srv.URL).FetchCatalog(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Len(t, apiErr.Body, maxBodyExcerpt)
}

func TestClient_FetchLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stations/st-1/latest", r.URL.Path)
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{
			"observation":{"timestamp":"2024-03-15T11:55:00Z","temperature":12.5,"humidity":null},
			"health":{"data_quality":{"score":0.97},"location_quality":{"score":1,"reason":"ok"}},
			"location":{"lat":52.5,"lon":13.4}
		}`))
	}))
	defer srv.Close()

	got, err := testClient(t, srv.URL).FetchLatest(context.Background(), "st-1")
	require.NoError(t, err)
	assert.Equal(t, "st-1", got.StationID)
	assert.Empty(t, got.Message)
	assert.Equal(t, 12.5, *got.Observation.Temperature)
	assert.Nil(t, got.Observation.Humidity)
	assert.Equal(t, 0.97, *got.Health.DataQuality.Score)
	assert.Equal(t, 52.5, got.Location.Latitude)
}

func TestClient_FetchLatest_DegradedOnNotFound(t *testing.T) {
	srv := jsonServer(t, http.StatusNotFound, `{}`, nil)

	got, err := testClient(t, srv.URL).FetchLatest(context.Background(), "st-1")
	require.NoError(t, err)
	assert.Equal(t, DegradedLatestMessage, got.Message)
	assert.True(t, got.Observation.IsValid())
	assert.Equal(t, testNow, *got.Observation.Timestamp)
}

func TestClient_FetchLatest_EmptyStationID(t *testing.T) {
	var hits atomic.Int32
	srv := jsonServer(t, http.StatusOK, `{}`, &hits)

	_, err := testClient(t, srv.URL).FetchLatest(context.Background(), " ")
	var vErr *models.ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, int32(0), hits.Load())
}

func TestClient_FetchHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stations/st-1/history", r.URL.Path)
		assert.Equal(t, "2024-03-14", r.URL.Query().Get("date"))
		w.Header().Set(headerContentType, contentTypeJSON)
		// Deliberately out of order, with one invalid and one untimed entry.
		_, _ = w.Write([]byte(`[
			{"observation":{"timestamp":"2024-03-14T18:00:00Z","temperature":30,"precipitation_rate":2},
			 "health":{"data_quality":{"score":0.8}},"location":{"lat":1,"lon":2}},
			{"observation":{"timestamp":"2024-03-14T06:00:00Z","temperature":10,"precipitation_rate":1},
			 "health":{"data_quality":{"score":0.5}},"location":{"lat":3,"lon":4}},
			{"observation":{"timestamp":"2024-03-14T12:00:00Z"},
			 "health":{"data_quality":{"score":0.1}},"location":{"lat":5,"lon":6}},
			{"observation":{"temperature":20},
			 "health":{"data_quality":{"score":0.2}},"location":{"lat":7,"lon":8}}
		]`))
	}))
	defer srv.Close()

	got, err := testClient(t, srv.URL).FetchHistory(context.Background(), "st-1", "2024-03-14")
	require.NoError(t, err)

	assert.Equal(t, 4, got.Total)
	require.Len(t, got.Observations, 3)
	assert.Nil(t, got.Observations[0].Timestamp, "untimed entry sorts first")
	assert.Equal(t, 10.0, *got.Observations[1].Temperature)
	assert.Equal(t, 30.0, *got.Observations[2].Temperature)

	// Health and location from the chronologically last entry.
	assert.Equal(t, 0.8, *got.Health.DataQuality.Score)
	assert.Equal(t, 1.0, got.Location.Latitude)

	assert.Equal(t, 4, got.Summary.TotalObservations)
	assert.Equal(t, 3, got.Summary.ValidObservations)
	assert.Equal(t, 0.8, *got.Summary.DataQualityScore)
	assert.InDelta(t, 20.0, *got.Summary.AvgTemperature, 1e-9)
	assert.Equal(t, 3.0, *got.Summary.TotalPrecipitation)
	assert.Empty(t, got.Message)
}

func TestClient_FetchHistory_DateOutOfRangeMakesNoRequest(t *testing.T) {
	tests := []struct {
		name string
		date string
	}{
		{"future", "2024-03-16"},
		{"more than a month ago", "2024-02-14"},
		{"malformed", "14-03-2024"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := jsonServer(t, http.StatusOK, `[]`, &hits)

			_, err := testClient(t, srv.URL).FetchHistory(context.Background(), "st-1", tt.date)
			var vErr *models.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, "date", vErr.Field)
			assert.Equal(t, int32(0), hits.Load())
		})
	}
}

func TestClient_FetchHistory_DegradedOnNotFound(t *testing.T) {
	srv := jsonServer(t, http.StatusNotFound, `{}`, nil)

	got, err := testClient(t, srv.URL).FetchHistory(context.Background(), "st-1", "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, DegradedHistoryMessage, got.Message)
	assert.Len(t, got.Observations, 24)
	assert.Equal(t, 24, got.Summary.ValidObservations)
	assert.Equal(t, "2024-03-10T00:00:00Z", got.Observations[0].Timestamp.Format(time.RFC3339))
	assert.Equal(t, 0.0, *got.Summary.TotalPrecipitation)

	// Placeholder data is deterministic.
	again, err := testClient(t, srv.URL).FetchHistory(context.Background(), "st-1", "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, got.Summary, again.Summary)
}

func TestValidateHistoryDate_Boundaries(t *testing.T) {
	now := time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC)

	assert.NoError(t, ValidateHistoryDate("2024-03-31", now), "today")
	assert.NoError(t, ValidateHistoryDate("2024-03-02", now), "today minus one month, normalized")
	assert.Error(t, ValidateHistoryDate("2024-03-01", now))
	assert.Error(t, ValidateHistoryDate("2024-04-01", now))

	// A non-UTC clock is normalized before comparison.
	east := time.Date(2024, 4, 1, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))
	assert.NoError(t, ValidateHistoryDate("2024-03-31", east))
	assert.Error(t, ValidateHistoryDate("2024-04-01", east))
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 5*time.Second, parseRetryAfter("5", testNow))
	assert.Equal(t, time.Duration(0), parseRetryAfter("", testNow))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon", testNow))

	at := testNow.Add(90 * time.Second).Format(http.TimeFormat)
	assert.Equal(t, 90*time.Second, parseRetryAfter(at, testNow))
}

func TestFetchCatalog_TransportErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := testClient(t, url).FetchCatalog(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
}
