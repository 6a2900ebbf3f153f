package models

import (
	"time"
)

// Observation is a single timestamped set of station measurements.
// Every measurement is a pointer: a field the provider omitted or sent as
// null stays nil and is left out of the JSON output, never defaulted to 0.
type Observation struct {
	Timestamp                *time.Time `json:"timestamp,omitempty"`
	Temperature              *float64   `json:"temperature,omitempty"`
	FeelsLike                *float64   `json:"feels_like,omitempty"`
	DewPoint                 *float64   `json:"dew_point,omitempty"`
	Humidity                 *float64   `json:"humidity,omitempty"`
	WindSpeed                *float64   `json:"wind_speed,omitempty"`
	WindGust                 *float64   `json:"wind_gust,omitempty"`
	WindDirection            *float64   `json:"wind_direction,omitempty"`
	PrecipitationRate        *float64   `json:"precipitation_rate,omitempty"`
	PrecipitationAccumulated *float64   `json:"precipitation_accumulated,omitempty"`
	UVIndex                  *float64   `json:"uv_index,omitempty"`
	Pressure                 *float64   `json:"pressure,omitempty"`
	SolarIrradiance          *float64   `json:"solar_irradiance,omitempty"`
	Icon                     *string    `json:"icon,omitempty"`
}

// IsValid reports whether the observation carries at least one usable
// measurement. The timestamp is not considered.
func (o *Observation) IsValid() bool {
	if o == nil {
		return false
	}
	return o.Temperature != nil ||
		o.Humidity != nil ||
		o.WindSpeed != nil ||
		o.Pressure != nil ||
		o.PrecipitationRate != nil ||
		o.SolarIrradiance != nil ||
		o.UVIndex != nil
}

// IsValidObservation is the function form of Observation.IsValid.
func IsValidObservation(o *Observation) bool {
	return o.IsValid()
}

// QualityScore wraps an optional 0..1 score reported by the provider.
type QualityScore struct {
	Score *float64 `json:"score,omitempty"`
}

// LocationQuality is the provider's confidence in the reported location.
type LocationQuality struct {
	Score  *float64 `json:"score,omitempty"`
	Reason *string  `json:"reason,omitempty"`
}

// Health describes data and location quality for a station reading
type Health struct {
	Timestamp       *time.Time      `json:"timestamp,omitempty"`
	DataQuality     QualityScore    `json:"data_quality"`
	LocationQuality LocationQuality `json:"location_quality"`
}

// Location is the reported station position.
type Location struct {
	Latitude  float64  `json:"lat"`
	Longitude float64  `json:"lon"`
	Elevation *float64 `json:"elevation,omitempty"`
}

// RawEntry is one element of the provider's latest/history responses.
type RawEntry struct {
	Observation Observation `json:"observation"`
	Health      Health      `json:"health"`
	Location    Location    `json:"location"`
}
