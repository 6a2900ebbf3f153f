package models

import (
	"time"
)

// DateLayout is the calendar-date format used for history keys.
const DateLayout = "2006-01-02"

// LatestRecord is the most recent snapshot for a station.
// At most one exists per StationID.
type LatestRecord struct {
	StationID   string      `json:"station_id"`
	Observation Observation `json:"observation"`
	Health      Health      `json:"health"`
	Location    Location    `json:"location"`
	LastUpdated time.Time   `json:"last_updated"`
	Message     string      `json:"message,omitempty"`
}

// HistoryRecord holds the validated observations and summary for one
// station on one calendar date. At most one exists per (StationID, Date).
type HistoryRecord struct {
	StationID    string        `json:"station_id"`
	Date         string        `json:"date"`
	Observations []Observation `json:"observations"`
	Health       Health        `json:"health"`
	Location     Location      `json:"location"`
	Summary      DailySummary  `json:"summary"`
	LastUpdated  time.Time     `json:"last_updated"`
	Message      string        `json:"message,omitempty"`
}

// DailySummary holds the per-day statistics for a station.
// NULL (nil) means no valid value contributed to that statistic.
type DailySummary struct {
	TotalObservations  int      `json:"total_observations"`
	ValidObservations  int      `json:"valid_observations"`
	DataQualityScore   *float64 `json:"data_quality_score"`
	AvgTemperature     *float64 `json:"avg_temperature"`
	MinTemperature     *float64 `json:"min_temperature"`
	MaxTemperature     *float64 `json:"max_temperature"`
	AvgHumidity        *float64 `json:"avg_humidity"`
	AvgWindSpeed       *float64 `json:"avg_wind_speed"`
	MaxWindSpeed       *float64 `json:"max_wind_speed"`
	AvgPressure        *float64 `json:"avg_pressure"`
	TotalPrecipitation *float64 `json:"total_precipitation"`
	MaxUVIndex         *float64 `json:"max_uv_index"`
	AvgSolarIrradiance *float64 `json:"avg_solar_irradiance"`
}

// IsDegraded reports whether the record was built from synthetic data.
func (r *LatestRecord) IsDegraded() bool {
	return r.Message != ""
}

// IsDegraded reports whether the record was built from synthetic data.
func (r *HistoryRecord) IsDegraded() bool {
	return r.Message != ""
}
