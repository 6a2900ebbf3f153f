package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"weather-telemetry/internal/models"
	"weather-telemetry/pkg/database"
	"weather-telemetry/pkg/logging"
	"weather-telemetry/pkg/metrics"
)

const (
	// DefaultHistoryLimit is used by ListHistory when no limit is given.
	DefaultHistoryLimit = 7
	// MaxHistoryLimit caps ListHistory and GetAvailableDates.
	MaxHistoryLimit = 31
)

// WeatherRepository stores latest and per-day history records. Writes are
// keyed upserts: replaying the same record converges to one row.
type WeatherRepository interface {
	// Latest operations
	PutLatest(ctx context.Context, record *models.LatestRecord) error
	GetLatest(ctx context.Context, stationID string) (*models.LatestRecord, error)

	// History operations
	PutHistory(ctx context.Context, record *models.HistoryRecord) error
	GetHistory(ctx context.Context, stationID, date string) (*models.HistoryRecord, error)
	ListHistory(ctx context.Context, stationID string, limit int) ([]*models.HistoryRecord, error)
	GetAvailableDates(ctx context.Context, stationID, since string) ([]string, error)

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// weatherRepository implements WeatherRepository
type weatherRepository struct {
	db      *database.DB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewWeatherRepository creates a new weather repository
func NewWeatherRepository(db *database.DB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) WeatherRepository {
	return &weatherRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

type latestRow struct {
	StationID   string    `db:"station_id"`
	Observation string    `db:"observation"`
	Health      string    `db:"health"`
	Location    string    `db:"location"`
	Message     string    `db:"message"`
	LastUpdated time.Time `db:"last_updated"`
}

type historyRow struct {
	StationID    string    `db:"station_id"`
	Date         string    `db:"date"`
	Observations string    `db:"observations"`
	Health       string    `db:"health"`
	Location     string    `db:"location"`
	Summary      string    `db:"summary"`
	Message      string    `db:"message"`
	LastUpdated  time.Time `db:"last_updated"`
}

// PutLatest inserts or replaces the latest record for a station.
func (r *weatherRepository) PutLatest(ctx context.Context, record *models.LatestRecord) error {
	obs, health, loc, err := marshalLatest(record)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO latest_observations (station_id, observation, health, location, message, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (station_id) DO UPDATE SET
			observation = excluded.observation,
			health = excluded.health,
			location = excluded.location,
			message = excluded.message,
			last_updated = excluded.last_updated
	`

	_, err = r.db.ExecContext(ctx, "upsert_latest", query,
		record.StationID, obs, health, loc, record.Message, record.LastUpdated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert latest record: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_PUT_LATEST] Latest record stored", logging.Fields{
		"station_id": record.StationID,
		"degraded":   record.IsDegraded(),
	})
	return nil
}

// GetLatest returns the stored latest record for a station.
func (r *weatherRepository) GetLatest(ctx context.Context, stationID string) (*models.LatestRecord, error) {
	query := `
		SELECT station_id, observation, health, location, message, last_updated
		FROM latest_observations
		WHERE station_id = ?
	`

	var row latestRow
	err := r.db.GetContext(ctx, "get_latest", &row, query, stationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "latest_record", ID: stationID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest record: %w", err)
	}

	return row.toRecord()
}

// PutHistory inserts or replaces the history record for (station, date).
func (r *weatherRepository) PutHistory(ctx context.Context, record *models.HistoryRecord) error {
	if _, err := time.Parse(models.DateLayout, record.Date); err != nil {
		return models.NewValidationError("date", record.Date, "must be formatted YYYY-MM-DD")
	}

	obs := record.Observations
	if obs == nil {
		obs = []models.Observation{}
	}
	fields := []interface{}{obs, record.Health, record.Location, record.Summary}
	encoded := make([]interface{}, len(fields))
	for i, f := range fields {
		s, err := toJSON(f)
		if err != nil {
			return err
		}
		encoded[i] = s
	}

	query := `
		INSERT INTO history_observations
			(station_id, date, observations, health, location, summary, message, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (station_id, date) DO UPDATE SET
			observations = excluded.observations,
			health = excluded.health,
			location = excluded.location,
			summary = excluded.summary,
			message = excluded.message,
			last_updated = excluded.last_updated
	`

	_, err := r.db.ExecContext(ctx, "upsert_history", query,
		record.StationID, record.Date,
		encoded[0], encoded[1], encoded[2], encoded[3],
		record.Message, record.LastUpdated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert history record: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_PUT_HISTORY] History record stored", logging.Fields{
		"station_id":   record.StationID,
		"date":         record.Date,
		"observations": len(record.Observations),
		"degraded":     record.IsDegraded(),
	})
	return nil
}

// GetHistory returns the history record for one station and date.
func (r *weatherRepository) GetHistory(ctx context.Context, stationID, date string) (*models.HistoryRecord, error) {
	query := `
		SELECT station_id, date, observations, health, location, summary, message, last_updated
		FROM history_observations
		WHERE station_id = ? AND date = ?
	`

	var row historyRow
	err := r.db.GetContext(ctx, "get_history", &row, query, stationID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "history_record", ID: stationID + "/" + date}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history record: %w", err)
	}

	return row.toRecord()
}

// ListHistory returns the most recent history records for a station,
// newest first. limit <= 0 means DefaultHistoryLimit.
func (r *weatherRepository) ListHistory(ctx context.Context, stationID string, limit int) ([]*models.HistoryRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	query := `
		SELECT station_id, date, observations, health, location, summary, message, last_updated
		FROM history_observations
		WHERE station_id = ?
		ORDER BY date DESC
		LIMIT ?
	`

	var rows []historyRow
	if err := r.db.SelectContext(ctx, "list_history", &rows, query, stationID, limit); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	records := make([]*models.HistoryRecord, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// GetAvailableDates lists dates on or after since that have stored
// history, newest first, capped at MaxHistoryLimit entries.
func (r *weatherRepository) GetAvailableDates(ctx context.Context, stationID, since string) ([]string, error) {
	query := `
		SELECT date
		FROM history_observations
		WHERE station_id = ? AND date >= ?
		ORDER BY date DESC
		LIMIT ?
	`

	dates := []string{}
	if err := r.db.SelectContext(ctx, "available_dates", &dates, query, stationID, since, MaxHistoryLimit); err != nil {
		return nil, fmt.Errorf("failed to list available dates: %w", err)
	}
	return dates, nil
}

// HealthCheck performs a repository health check
func (r *weatherRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

func marshalLatest(record *models.LatestRecord) (obs, health, loc string, err error) {
	if obs, err = toJSON(record.Observation); err != nil {
		return
	}
	if health, err = toJSON(record.Health); err != nil {
		return
	}
	loc, err = toJSON(record.Location)
	return
}

// toJSON returns a string rather than []byte so lib/pq sends it as text
// for JSONB columns.
func toJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode %T: %w", v, err)
	}
	return string(b), nil
}

func fromJSON(raw string, dest interface{}) error {
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("failed to decode stored %T: %w", dest, err)
	}
	return nil
}

func (row *latestRow) toRecord() (*models.LatestRecord, error) {
	rec := &models.LatestRecord{
		StationID:   row.StationID,
		Message:     row.Message,
		LastUpdated: row.LastUpdated.UTC(),
	}
	if err := fromJSON(row.Observation, &rec.Observation); err != nil {
		return nil, err
	}
	if err := fromJSON(row.Health, &rec.Health); err != nil {
		return nil, err
	}
	if err := fromJSON(row.Location, &rec.Location); err != nil {
		return nil, err
	}
	return rec, nil
}

func (row *historyRow) toRecord() (*models.HistoryRecord, error) {
	rec := &models.HistoryRecord{
		StationID:   row.StationID,
		Date:        row.Date,
		Message:     row.Message,
		LastUpdated: row.LastUpdated.UTC(),
	}
	if err := fromJSON(row.Observations, &rec.Observations); err != nil {
		return nil, err
	}
	if err := fromJSON(row.Health, &rec.Health); err != nil {
		return nil, err
	}
	if err := fromJSON(row.Location, &rec.Location); err != nil {
		return nil, err
	}
	if err := fromJSON(row.Summary, &rec.Summary); err != nil {
		return nil, err
	}
	return rec, nil
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
