package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"weather-telemetry/internal/models"
	"weather-telemetry/pkg/logging"
	"weather-telemetry/pkg/metrics"
)

// CatalogFetcher returns the provider's raw station catalog.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context) ([]models.RawStation, error)
}

// CatalogService serves the transformed station catalog, caching it for a
// fixed TTL. A zero TTL fetches on every call.
type CatalogService struct {
	fetcher CatalogFetcher
	clock   clockwork.Clock
	ttl     time.Duration
	logger  *logging.StructuredLogger
	metrics *metrics.Collector

	group singleflight.Group

	mu        sync.RWMutex
	stations  []models.Station
	fetchedAt time.Time
}

// NewCatalogService creates a new catalog service
func NewCatalogService(fetcher CatalogFetcher, ttl time.Duration, clock clockwork.Clock, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *CatalogService {
	return &CatalogService{
		fetcher: fetcher,
		clock:   clock,
		ttl:     ttl,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Stations returns the full transformed catalog.
func (s *CatalogService) Stations(ctx context.Context) ([]models.Station, error) {
	if cached, ok := s.cached(); ok {
		s.metrics.CatalogCacheHits.Inc()
		return cached, nil
	}
	s.metrics.CatalogCacheMisses.Inc()

	// Concurrent misses share one upstream fetch. It runs detached from the
	// first caller's cancellation so one dropped request cannot fail the rest.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do("catalog", func() (interface{}, error) {
		start := s.clock.Now()
		raw, err := s.fetcher.FetchCatalog(fetchCtx)
		if err != nil {
			return nil, err
		}
		stations := TransformCatalog(raw)

		s.mu.Lock()
		s.stations = stations
		s.fetchedAt = s.clock.Now()
		s.mu.Unlock()

		s.logger.Info(fetchCtx, "[CATALOG_REFRESH] Station catalog refreshed", logging.Fields{
			"stations":    len(stations),
			"duration_ms": s.clock.Since(start).Milliseconds(),
		})
		return stations, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch station catalog: %w", err)
	}
	return v.([]models.Station), nil
}

func (s *CatalogService) cached() ([]models.Station, bool) {
	if s.ttl <= 0 {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stations == nil || s.clock.Since(s.fetchedAt) >= s.ttl {
		return nil, false
	}
	return s.stations, true
}

// Invalidate drops the cached catalog.
func (s *CatalogService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations = nil
}

// List filters the catalog and returns one page of it.
func (s *CatalogService) List(ctx context.Context, opts models.FilterOptions, page, limit int) (*models.PageResult, error) {
	if _, err := Paginate(nil, page, limit); err != nil {
		return nil, err
	}
	stations, err := s.Stations(ctx)
	if err != nil {
		return nil, err
	}
	return Paginate(FilterStations(stations, opts), page, limit)
}

// Regions returns region and country metadata for the whole catalog.
func (s *CatalogService) Regions(ctx context.Context) (*models.RegionMetadata, error) {
	stations, err := s.Stations(ctx)
	if err != nil {
		return nil, err
	}
	return RegionMetadata(stations), nil
}
