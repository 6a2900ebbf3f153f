package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-telemetry/internal/events"
	"weather-telemetry/internal/models"
	"weather-telemetry/internal/repository"
	"weather-telemetry/pkg/logging"
)

var syncNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type fakeProvider struct {
	latestErr  map[string]error
	historyErr map[string]error
	degraded   map[string]bool

	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (f *fakeProvider) enter() func() {
	n := f.inFlight.Add(1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeProvider) FetchLatest(_ context.Context, id string) (*models.LatestPayload, error) {
	defer f.enter()()
	if err := f.latestErr[id]; err != nil {
		return nil, err
	}
	p := &models.LatestPayload{
		StationID:   id,
		Observation: models.Observation{Temperature: floatPtr(15)},
		Location:    models.Location{Latitude: 52.5, Longitude: 13.4},
	}
	if f.degraded[id] {
		p.Message = "placeholder"
	}
	return p, nil
}

func (f *fakeProvider) FetchHistory(_ context.Context, id, date string) (*models.HistoryPayload, error) {
	if err := f.historyErr[id]; err != nil {
		return nil, err
	}
	return &models.HistoryPayload{
		StationID:    id,
		Date:         date,
		Total:        2,
		Observations: []models.Observation{{Temperature: floatPtr(10)}, {Temperature: floatPtr(20)}},
		Summary:      models.DailySummary{TotalObservations: 2, ValidObservations: 2, AvgTemperature: floatPtr(15)},
	}, nil
}

type staticStations struct {
	stations []models.Station
	err      error
}

func (s staticStations) Stations(context.Context) ([]models.Station, error) {
	return s.stations, s.err
}

type memRepo struct {
	mu      sync.Mutex
	latest  map[string]*models.LatestRecord
	history map[string]*models.HistoryRecord
	putErr  error
}

func newMemRepo() *memRepo {
	return &memRepo{latest: map[string]*models.LatestRecord{}, history: map[string]*models.HistoryRecord{}}
}

func (r *memRepo) PutLatest(_ context.Context, rec *models.LatestRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.putErr != nil {
		return r.putErr
	}
	r.latest[rec.StationID] = rec
	return nil
}

func (r *memRepo) GetLatest(_ context.Context, id string) (*models.LatestRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.latest[id]
	if !ok {
		return nil, &repository.NotFoundError{Resource: "latest_record", ID: id}
	}
	return rec, nil
}

func (r *memRepo) PutHistory(_ context.Context, rec *models.HistoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.putErr != nil {
		return r.putErr
	}
	r.history[rec.StationID+"/"+rec.Date] = rec
	return nil
}

func (r *memRepo) GetHistory(_ context.Context, id, date string) (*models.HistoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.history[id+"/"+date]
	if !ok {
		return nil, &repository.NotFoundError{Resource: "history_record", ID: id + "/" + date}
	}
	return rec, nil
}

func (r *memRepo) ListHistory(_ context.Context, id string, limit int) ([]*models.HistoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.HistoryRecord{}
	for _, rec := range r.history {
		if rec.StationID == id {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) GetAvailableDates(_ context.Context, id, since string) ([]string, error) {
	recs, _ := r.ListHistory(context.Background(), id, 0)
	dates := []string{}
	for _, rec := range recs {
		if rec.Date >= since {
			dates = append(dates, rec.Date)
		}
	}
	return dates, nil
}

func (r *memRepo) HealthCheck(context.Context) error { return nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.SyncEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.SyncEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func stationList(n int) []models.Station {
	out := make([]models.Station, n)
	for i := range out {
		out[i] = models.Station{ID: fmt.Sprintf("st-%02d", i)}
	}
	return out
}

func newSync(p WeatherProvider, st StationLister, repo repository.WeatherRepository, pub events.Publisher, opts SyncOptions) *SyncService {
	return NewSyncService(p, st, repo, pub, clockwork.NewFakeClockAt(syncNow), opts, logging.NewDiscardLogger(), testMetrics())
}

func TestSyncLatest_StoresAndPublishes(t *testing.T) {
	repo := newMemRepo()
	pub := &recordingPublisher{}
	svc := newSync(&fakeProvider{}, staticStations{}, repo, pub, SyncOptions{Concurrency: 1})

	rec, err := svc.SyncLatest(context.Background(), "st-1")
	require.NoError(t, err)

	assert.True(t, rec.LastUpdated.Equal(syncNow))
	assert.False(t, rec.IsDegraded())
	stored, err := repo.GetLatest(context.Background(), "st-1")
	require.NoError(t, err)
	assert.Equal(t, 15.0, *stored.Observation.Temperature)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.KindLatest, pub.events[0].Kind)
	assert.Equal(t, "st-1", pub.events[0].StationID)
}

func TestSyncLatest_DegradedIsStored(t *testing.T) {
	repo := newMemRepo()
	pub := &recordingPublisher{}
	p := &fakeProvider{degraded: map[string]bool{"st-1": true}}
	svc := newSync(p, staticStations{}, repo, pub, SyncOptions{Concurrency: 1})

	rec, err := svc.SyncLatest(context.Background(), "st-1")
	require.NoError(t, err)
	assert.True(t, rec.IsDegraded())
	require.Len(t, pub.events, 1)
	assert.True(t, pub.events[0].Degraded)
}

func TestSyncLatest_ProviderErrorStoresNothing(t *testing.T) {
	repo := newMemRepo()
	upstream := errors.New("upstream down")
	p := &fakeProvider{latestErr: map[string]error{"st-1": upstream}}
	svc := newSync(p, staticStations{}, repo, nil, SyncOptions{Concurrency: 1})

	_, err := svc.SyncLatest(context.Background(), "st-1")
	assert.ErrorIs(t, err, upstream)
	assert.Empty(t, repo.latest)
}

func TestSyncLatest_PublishErrorDoesNotFail(t *testing.T) {
	repo := newMemRepo()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newSync(&fakeProvider{}, staticStations{}, repo, pub, SyncOptions{Concurrency: 1})

	_, err := svc.SyncLatest(context.Background(), "st-1")
	require.NoError(t, err)
	assert.Len(t, repo.latest, 1)
}

func TestSyncHistory_StoresSummary(t *testing.T) {
	repo := newMemRepo()
	pub := &recordingPublisher{}
	svc := newSync(&fakeProvider{}, staticStations{}, repo, pub, SyncOptions{Concurrency: 1})

	rec, err := svc.SyncHistory(context.Background(), "st-1", "2024-03-14")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-14", rec.Date)
	assert.Equal(t, 15.0, *rec.Summary.AvgTemperature)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.KindHistory, pub.events[0].Kind)
	assert.Equal(t, "2024-03-14", pub.events[0].Date)
}

func TestSyncHistory_StoreErrorWrapped(t *testing.T) {
	repo := newMemRepo()
	repo.putErr = errors.New("disk full")
	svc := newSync(&fakeProvider{}, staticStations{}, repo, nil, SyncOptions{Concurrency: 1})

	_, err := svc.SyncHistory(context.Background(), "st-1", "2024-03-14")
	assert.ErrorIs(t, err, repo.putErr)
}

func TestSyncAll_IsolatesFailures(t *testing.T) {
	repo := newMemRepo()
	p := &fakeProvider{
		latestErr:  map[string]error{"st-03": errors.New("boom")},
		historyErr: map[string]error{"st-05": errors.New("boom")},
		degraded:   map[string]bool{"st-07": true},
	}
	svc := newSync(p, staticStations{stations: stationList(10)}, repo, &recordingPublisher{},
		SyncOptions{Concurrency: 4, IncludeHistory: true})

	report, err := svc.SyncAll(context.Background(), "2024-03-14")
	require.NoError(t, err)

	assert.Equal(t, 10, report.Stations)
	assert.Equal(t, 9, report.LatestSynced)
	assert.Equal(t, 9, report.HistorySynced)
	assert.Equal(t, 1, report.Degraded)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, "2024-03-14", report.Date)
	require.Len(t, report.Failures, 2)

	kinds := map[string]string{}
	for _, f := range report.Failures {
		kinds[f.StationID] = f.Kind
	}
	assert.Equal(t, events.KindLatest, kinds["st-03"])
	assert.Equal(t, events.KindHistory, kinds["st-05"])

	assert.Len(t, repo.latest, 9)
	assert.Len(t, repo.history, 9)
}

func TestSyncAll_RespectsConcurrencyLimit(t *testing.T) {
	p := &fakeProvider{delay: 5 * time.Millisecond}
	svc := newSync(p, staticStations{stations: stationList(20)}, newMemRepo(), nil, SyncOptions{Concurrency: 3})

	report, err := svc.SyncAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 20, report.LatestSynced)
	assert.Equal(t, 0, report.HistorySynced)
	assert.Empty(t, report.Date)
	assert.LessOrEqual(t, p.peak.Load(), int32(3))
	assert.Greater(t, p.peak.Load(), int32(0))
}

func TestSyncAll_DefaultsHistoryDateToToday(t *testing.T) {
	repo := newMemRepo()
	svc := newSync(&fakeProvider{}, staticStations{stations: stationList(1)}, repo, nil,
		SyncOptions{Concurrency: 1, IncludeHistory: true})

	report, err := svc.SyncAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", report.Date)
	_, err = repo.GetHistory(context.Background(), "st-00", "2024-03-15")
	assert.NoError(t, err)
}

func TestSyncAll_InvalidDateFailsFast(t *testing.T) {
	p := &fakeProvider{}
	svc := newSync(p, staticStations{stations: stationList(5)}, newMemRepo(), nil,
		SyncOptions{Concurrency: 2, IncludeHistory: true})

	_, err := svc.SyncAll(context.Background(), "2023-01-01")
	var vErr *models.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, int32(0), p.peak.Load())
}

func TestSyncAll_CatalogErrorFailsBatch(t *testing.T) {
	catalogErr := errors.New("catalog unavailable")
	svc := newSync(&fakeProvider{}, staticStations{err: catalogErr}, newMemRepo(), nil, SyncOptions{Concurrency: 2})

	_, err := svc.SyncAll(context.Background(), "")
	assert.ErrorIs(t, err, catalogErr)
}

func TestSyncAll_CancelledContextSkipsStations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newSync(&fakeProvider{}, staticStations{stations: stationList(5)}, newMemRepo(), nil, SyncOptions{Concurrency: 2})

	report, err := svc.SyncAll(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 5, report.Skipped)
	assert.Equal(t, 0, report.LatestSynced)
}

func TestSyncAll_RefreshesCachedCatalog(t *testing.T) {
	fetcher := &countingFetcher{raw: []models.RawStation{rawStation("st-1", 52.5, 13.4)}}
	catalog := NewCatalogService(fetcher, time.Hour, clockwork.NewFakeClockAt(syncNow), logging.NewDiscardLogger(), testMetrics())
	svc := newSync(&fakeProvider{}, catalog, newMemRepo(), nil, SyncOptions{Concurrency: 1})

	_, err := catalog.Stations(context.Background())
	require.NoError(t, err)

	report, err := svc.SyncAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.LatestSynced)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestSyncAll_ObservesBatchAndTagsLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewStructuredLogger("test", "1.0.0", logging.InfoLevel)
	logger.SetOutput(&buf)
	m := testMetrics()

	p := &fakeProvider{latestErr: map[string]error{"st-01": errors.New("boom")}}
	svc := NewSyncService(p, staticStations{stations: stationList(3)}, newMemRepo(), nil,
		clockwork.NewFakeClockAt(syncNow), SyncOptions{Concurrency: 2}, logger, m)

	_, err := svc.SyncAll(context.Background(), "")
	require.NoError(t, err)

	var hist dto.Metric
	require.NoError(t, m.SyncBatchDuration.Write(&hist))
	assert.Equal(t, uint64(1), hist.GetHistogram().GetSampleCount())

	var messages []string
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var entry logging.LogEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		assert.Equal(t, "sync", entry.Fields["component"], entry.Message)
		messages = append(messages, entry.Message)
	}
	assert.Contains(t, messages, "[SYNC_START] Starting batch sync")
	assert.Contains(t, messages, "[SYNC_STATION_ERROR] Latest sync failed")
	assert.Contains(t, messages, "[SYNC_COMPLETE] Batch sync finished")
}
