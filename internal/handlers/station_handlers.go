package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"

	"weather-telemetry/internal/models"
	"weather-telemetry/internal/services"
	"weather-telemetry/pkg/logging"
	"weather-telemetry/pkg/metrics"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// CatalogReader serves the filtered station catalog.
type CatalogReader interface {
	List(ctx context.Context, opts models.FilterOptions, page, limit int) (*models.PageResult, error)
	Regions(ctx context.Context) (*models.RegionMetadata, error)
}

// WeatherReader serves stored station records.
type WeatherReader interface {
	GetLatest(ctx context.Context, stationID string) (*models.LatestRecord, error)
	GetHistory(ctx context.Context, stationID, date string) (*models.HistoryRecord, error)
	ListHistory(ctx context.Context, stationID string, limit int) ([]*models.HistoryRecord, error)
	AvailableDates(ctx context.Context, stationID string) ([]string, error)
	HealthCheck(ctx context.Context) error
}

// Syncer pulls fresh data from the provider into storage.
type Syncer interface {
	SyncLatest(ctx context.Context, stationID string) (*models.LatestRecord, error)
	SyncHistory(ctx context.Context, stationID, date string) (*models.HistoryRecord, error)
	SyncAll(ctx context.Context, date string) (*services.SyncReport, error)
}

// StationHandler handles station API endpoints
type StationHandler struct {
	catalog CatalogReader
	weather WeatherReader
	syncer  Syncer
	clock   clockwork.Clock
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewStationHandler creates a new station handler
func NewStationHandler(
	catalog CatalogReader,
	weather WeatherReader,
	syncer Syncer,
	clock clockwork.Clock,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *StationHandler {
	return &StationHandler{
		catalog: catalog,
		weather: weather,
		syncer:  syncer,
		clock:   clock,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HistoryListResponse is returned when no date is requested.
type HistoryListResponse struct {
	StationID string                  `json:"station_id"`
	Data      []*models.HistoryRecord `json:"data"`
}

// DatesResponse lists the stored history dates for a station.
type DatesResponse struct {
	StationID string   `json:"station_id"`
	Dates     []string `json:"dates"`
}

// ListStations handles GET /api/stations
func (h *StationHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), "page", defaultPage)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	limit, err := intParam(q.Get("limit"), "limit", defaultLimit)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	opts := models.FilterOptions{
		Search:  q.Get("search"),
		Region:  q.Get("region"),
		Country: q.Get("country"),
	}

	result, err := h.catalog.List(r.Context(), opts, page, limit)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.sendJSON(w, result, http.StatusOK)
}

// ListRegions handles GET /api/stations/regions
func (h *StationHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	meta, err := h.catalog.Regions(r.Context())
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, meta, http.StatusOK)
}

// GetLatest handles GET /api/stations/{id}/latest
func (h *StationHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	record, err := h.weather.GetLatest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, record, http.StatusOK)
}

// SyncLatest handles POST /api/stations/{id}/latest/sync
func (h *StationHandler) SyncLatest(w http.ResponseWriter, r *http.Request) {
	stationID := mux.Vars(r)["id"]
	ctx := logging.ContextWithStationID(r.Context(), stationID)

	record, err := h.syncer.SyncLatest(ctx, stationID)
	if err != nil {
		h.sendServiceError(w, r.WithContext(ctx), err)
		return
	}

	h.logger.Info(ctx, "[API_SYNC_LATEST] Latest record synced", logging.Fields{
		"degraded": record.IsDegraded(),
	})
	h.sendJSON(w, record, http.StatusOK)
}

// GetHistory handles GET /api/stations/{id}/history. With a date it
// returns that day; without one it lists the most recent days.
func (h *StationHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	stationID := mux.Vars(r)["id"]
	q := r.URL.Query()

	if date := q.Get("date"); date != "" {
		record, err := h.weather.GetHistory(r.Context(), stationID, date)
		if err != nil {
			h.sendServiceError(w, r, err)
			return
		}
		h.sendJSON(w, record, http.StatusOK)
		return
	}

	limit, err := intParam(q.Get("limit"), "limit", 0)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	records, err := h.weather.ListHistory(r.Context(), stationID, limit)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, HistoryListResponse{StationID: stationID, Data: records}, http.StatusOK)
}

// SyncHistory handles POST /api/stations/{id}/history/sync?date=
func (h *StationHandler) SyncHistory(w http.ResponseWriter, r *http.Request) {
	stationID := mux.Vars(r)["id"]
	date := r.URL.Query().Get("date")
	if date == "" {
		h.sendServiceError(w, r, models.NewValidationError("date", date, "is required"))
		return
	}
	ctx := logging.ContextWithStationID(r.Context(), stationID)

	record, err := h.syncer.SyncHistory(ctx, stationID, date)
	if err != nil {
		h.sendServiceError(w, r.WithContext(ctx), err)
		return
	}

	h.logger.Info(ctx, "[API_SYNC_HISTORY] History record synced", logging.Fields{
		"date":         date,
		"observations": len(record.Observations),
		"degraded":     record.IsDegraded(),
	})
	h.sendJSON(w, record, http.StatusOK)
}

// AvailableDates handles GET /api/stations/{id}/history/dates
func (h *StationHandler) AvailableDates(w http.ResponseWriter, r *http.Request) {
	stationID := mux.Vars(r)["id"]

	dates, err := h.weather.AvailableDates(r.Context(), stationID)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, DatesResponse{StationID: stationID, Dates: dates}, http.StatusOK)
}

// SyncAll handles POST /api/sync
func (h *StationHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.syncer.SyncAll(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}
	h.sendJSON(w, report, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *StationHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": h.clock.Now().UTC().Format(time.RFC3339),
	}

	if err := h.weather.HealthCheck(ctx); err != nil {
		h.logger.Error(ctx, "[HEALTH_CHECK_ERROR] Store unreachable", logging.Fields{}, err)
		status["status"] = "unhealthy"
		h.sendJSON(w, status, http.StatusServiceUnavailable)
		return
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// sendJSON sends a JSON response
func (h *StationHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *StationHandler) sendError(w http.ResponseWriter, r *http.Request, kind, message string, statusCode int) {
	h.metrics.RecordAPIError(kind, routeTemplate(r))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Kind:    kind,
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all station API routes
func (h *StationHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stations", h.ListStations).Methods(http.MethodGet)
	api.HandleFunc("/stations/regions", h.ListRegions).Methods(http.MethodGet)
	api.HandleFunc("/stations/{id}/latest", h.GetLatest).Methods(http.MethodGet)
	api.HandleFunc("/stations/{id}/latest/sync", h.SyncLatest).Methods(http.MethodPost)
	api.HandleFunc("/stations/{id}/history", h.GetHistory).Methods(http.MethodGet)
	api.HandleFunc("/stations/{id}/history/sync", h.SyncHistory).Methods(http.MethodPost)
	api.HandleFunc("/stations/{id}/history/dates", h.AvailableDates).Methods(http.MethodGet)
	api.HandleFunc("/sync", h.SyncAll).Methods(http.MethodPost)
	api.HandleFunc("/docs", SwaggerUI).Methods(http.MethodGet)
	api.HandleFunc("/docs/openapi.json", OpenAPISpec).Methods(http.MethodGet)

	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
}

// NewRouter builds a router with request id and metrics middleware and
// every station route registered.
func NewRouter(h *StationHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestID, Instrument(h.metrics, h.logger))
	h.RegisterRoutes(router)
	return router
}

func intParam(raw, name string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewValidationError(name, raw, "must be an integer")
	}
	return v, nil
}
