package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"weather-telemetry/internal/events"
	"weather-telemetry/internal/models"
	"weather-telemetry/internal/provider"
	"weather-telemetry/internal/repository"
	"weather-telemetry/pkg/logging"
	"weather-telemetry/pkg/metrics"
)

// WeatherProvider fetches per-station weather data.
type WeatherProvider interface {
	FetchLatest(ctx context.Context, stationID string) (*models.LatestPayload, error)
	FetchHistory(ctx context.Context, stationID, date string) (*models.HistoryPayload, error)
}

// StationLister returns the stations a batch sync covers.
type StationLister interface {
	Stations(ctx context.Context) ([]models.Station, error)
}

// SyncOptions bounds a batch sync.
type SyncOptions struct {
	Concurrency    int
	BatchTimeout   time.Duration
	IncludeHistory bool
}

// SyncService fetches provider data and stores it.
type SyncService struct {
	provider  WeatherProvider
	stations  StationLister
	repo      repository.WeatherRepository
	publisher events.Publisher
	clock     clockwork.Clock
	opts      SyncOptions
	logger    *logging.ContextLogger
	metrics   *metrics.Collector
}

// SyncFailure is one station that could not be synced.
type SyncFailure struct {
	StationID string `json:"station_id"`
	Kind      string `json:"kind"`
	Error     string `json:"error"`
}

// SyncReport summarizes a batch sync.
type SyncReport struct {
	Date          string        `json:"date,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration_ns"`
	Stations      int           `json:"stations"`
	LatestSynced  int           `json:"latest_synced"`
	HistorySynced int           `json:"history_synced"`
	Degraded      int           `json:"degraded"`
	Skipped       int           `json:"skipped"`
	Failures      []SyncFailure `json:"failures"`

	mu sync.Mutex
}

func (r *SyncReport) record(kind, stationID string, degraded bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.Failures = append(r.Failures, SyncFailure{StationID: stationID, Kind: kind, Error: err.Error()})
		return
	}
	if degraded {
		r.Degraded++
	}
	switch kind {
	case events.KindLatest:
		r.LatestSynced++
	case events.KindHistory:
		r.HistorySynced++
	}
}

// NewSyncService creates a new sync service
func NewSyncService(
	p WeatherProvider,
	stations StationLister,
	repo repository.WeatherRepository,
	publisher events.Publisher,
	clock clockwork.Clock,
	opts SyncOptions,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *SyncService {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &SyncService{
		provider:  p,
		stations:  stations,
		repo:      repo,
		publisher: publisher,
		clock:     clock,
		opts:      opts,
		logger:    logger.WithFields(logging.Fields{"component": "sync"}),
		metrics:   metricsCollector,
	}
}

// SyncLatest fetches and stores the latest reading for one station.
func (s *SyncService) SyncLatest(ctx context.Context, stationID string) (*models.LatestRecord, error) {
	payload, err := s.provider.FetchLatest(ctx, stationID)
	if err != nil {
		s.metrics.RecordSync(events.KindLatest, "error")
		return nil, fmt.Errorf("fetch latest for %s: %w", stationID, err)
	}

	record := &models.LatestRecord{
		StationID:   stationID,
		Observation: payload.Observation,
		Health:      payload.Health,
		Location:    payload.Location,
		LastUpdated: s.clock.Now().UTC(),
		Message:     payload.Message,
	}
	if err := s.repo.PutLatest(ctx, record); err != nil {
		s.metrics.RecordSync(events.KindLatest, "error")
		return nil, fmt.Errorf("store latest for %s: %w", stationID, err)
	}

	s.metrics.RecordSync(events.KindLatest, outcome(record.IsDegraded()))
	s.publish(ctx, events.SyncEvent{
		Kind:      events.KindLatest,
		StationID: stationID,
		SyncedAt:  record.LastUpdated,
		Degraded:  record.IsDegraded(),
	})
	return record, nil
}

// SyncHistory fetches, summarizes and stores one day of history.
func (s *SyncService) SyncHistory(ctx context.Context, stationID, date string) (*models.HistoryRecord, error) {
	payload, err := s.provider.FetchHistory(ctx, stationID, date)
	if err != nil {
		s.metrics.RecordSync(events.KindHistory, "error")
		return nil, fmt.Errorf("fetch history for %s on %s: %w", stationID, date, err)
	}

	record := &models.HistoryRecord{
		StationID:    stationID,
		Date:         date,
		Observations: payload.Observations,
		Health:       payload.Health,
		Location:     payload.Location,
		Summary:      payload.Summary,
		LastUpdated:  s.clock.Now().UTC(),
		Message:      payload.Message,
	}
	if err := s.repo.PutHistory(ctx, record); err != nil {
		s.metrics.RecordSync(events.KindHistory, "error")
		return nil, fmt.Errorf("store history for %s on %s: %w", stationID, date, err)
	}

	s.metrics.RecordSync(events.KindHistory, outcome(record.IsDegraded()))
	s.publish(ctx, events.SyncEvent{
		Kind:      events.KindHistory,
		StationID: stationID,
		Date:      date,
		SyncedAt:  record.LastUpdated,
		Degraded:  record.IsDegraded(),
	})
	return record, nil
}

// SyncAll syncs every catalog station with bounded concurrency. A failing
// station is recorded in the report and does not stop the others. date is
// the history day to sync when history is included; empty means today.
func (s *SyncService) SyncAll(ctx context.Context, date string) (*SyncReport, error) {
	start := s.clock.Now()
	report := &SyncReport{StartedAt: start.UTC(), Failures: []SyncFailure{}}
	timer := s.metrics.NewTimer(s.clock, s.metrics.SyncBatchDuration)

	if s.opts.IncludeHistory {
		if date == "" {
			date = start.UTC().Format(models.DateLayout)
		}
		if err := provider.ValidateHistoryDate(date, start); err != nil {
			return nil, err
		}
		report.Date = date
	}

	if s.opts.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.BatchTimeout)
		defer cancel()
	}

	// A batch always syncs against a fresh catalog.
	if inv, ok := s.stations.(interface{ Invalidate() }); ok {
		inv.Invalidate()
	}
	stations, err := s.stations.Stations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	report.Stations = len(stations)
	s.metrics.SyncBatchStations.Observe(float64(len(stations)))

	s.logger.Info(ctx, "[SYNC_START] Starting batch sync", logging.Fields{
		"stations":        len(stations),
		"concurrency":     s.opts.Concurrency,
		"include_history": s.opts.IncludeHistory,
		"date":            date,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	scheduled := 0
	for _, st := range stations {
		if gctx.Err() != nil {
			break
		}
		stationID := st.ID
		scheduled++
		g.Go(func() error {
			sctx := logging.ContextWithStationID(gctx, stationID)
			s.syncStation(sctx, stationID, date, report)
			return nil
		})
	}
	_ = g.Wait()

	report.Skipped = len(stations) - scheduled
	report.Duration = timer.ObserveDuration()

	s.logger.Info(ctx, "[SYNC_COMPLETE] Batch sync finished", logging.Fields{
		"stations":       report.Stations,
		"latest_synced":  report.LatestSynced,
		"history_synced": report.HistorySynced,
		"degraded":       report.Degraded,
		"failures":       len(report.Failures),
		"skipped":        report.Skipped,
		"duration_ms":    report.Duration.Milliseconds(),
	})

	return report, nil
}

func (s *SyncService) syncStation(ctx context.Context, stationID, date string, report *SyncReport) {
	latest, err := s.SyncLatest(ctx, stationID)
	if err != nil {
		s.logger.WarnErr(ctx, "[SYNC_STATION_ERROR] Latest sync failed", logging.Fields{"kind": events.KindLatest}, err)
		report.record(events.KindLatest, stationID, false, err)
	} else {
		report.record(events.KindLatest, stationID, latest.IsDegraded(), nil)
	}

	if !s.opts.IncludeHistory {
		return
	}
	hist, err := s.SyncHistory(ctx, stationID, date)
	if err != nil {
		s.logger.WarnErr(ctx, "[SYNC_STATION_ERROR] History sync failed", logging.Fields{"kind": events.KindHistory, "date": date}, err)
		report.record(events.KindHistory, stationID, false, err)
		return
	}
	report.record(events.KindHistory, stationID, hist.IsDegraded(), nil)
}

// publish never fails the sync; the record is already stored.
func (s *SyncService) publish(ctx context.Context, event events.SyncEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.EventPublishErrors.Inc()
		s.logger.WarnErr(ctx, "[EVENT_PUBLISH_ERROR] Failed to publish sync event", logging.Fields{
			"kind":       event.Kind,
			"station_id": event.StationID,
		}, err)
	}
}

func outcome(degraded bool) string {
	if degraded {
		return "degraded"
	}
	return "ok"
}
