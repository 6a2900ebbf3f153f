package services

import (
	"context"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"weather-telemetry/internal/models"
	"weather-telemetry/internal/repository"
	"weather-telemetry/pkg/logging"
	"weather-telemetry/pkg/metrics"
)

// WeatherService serves stored latest and history records
type WeatherService struct {
	repo    repository.WeatherRepository
	clock   clockwork.Clock
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewWeatherService creates a new weather service
func NewWeatherService(repo repository.WeatherRepository, clock clockwork.Clock, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *WeatherService {
	return &WeatherService{
		repo:    repo,
		clock:   clock,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// GetLatest returns the stored latest record for a station.
func (s *WeatherService) GetLatest(ctx context.Context, stationID string) (*models.LatestRecord, error) {
	if err := requireStationID(stationID); err != nil {
		return nil, err
	}
	return s.repo.GetLatest(ctx, stationID)
}

// GetHistory returns the stored history record for a station and date.
func (s *WeatherService) GetHistory(ctx context.Context, stationID, date string) (*models.HistoryRecord, error) {
	if err := requireStationID(stationID); err != nil {
		return nil, err
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, models.NewValidationError("date", date, "must be formatted YYYY-MM-DD")
	}
	return s.repo.GetHistory(ctx, stationID, date)
}

// ListHistory returns up to limit stored days for a station, newest first.
func (s *WeatherService) ListHistory(ctx context.Context, stationID string, limit int) ([]*models.HistoryRecord, error) {
	if err := requireStationID(stationID); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, models.NewValidationError("limit", "", "must not be negative")
	}
	return s.repo.ListHistory(ctx, stationID, limit)
}

// AvailableDates lists stored history dates within the last month.
func (s *WeatherService) AvailableDates(ctx context.Context, stationID string) ([]string, error) {
	if err := requireStationID(stationID); err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, -1, 0).Format(models.DateLayout)
	return s.repo.GetAvailableDates(ctx, stationID, since)
}

// HealthCheck reports whether the store is reachable.
func (s *WeatherService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

func requireStationID(id string) error {
	if strings.TrimSpace(id) == "" {
		return models.NewValidationError("station_id", id, "must not be empty")
	}
	return nil
}
