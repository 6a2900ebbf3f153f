package provider

import (
	"context"
	"math"
	"time"

	"weather-telemetry/internal/models"
	"weather-telemetry/pkg/logging"
)

// Messages attached to synthetic payloads.
const (
	DegradedLatestMessage  = "latest data unavailable from provider; serving placeholder reading"
	DegradedHistoryMessage = "history unavailable from provider; serving placeholder day"
)

// degradedLatest is served when the provider has no latest reading for a
// station. Only the latest and history endpoints degrade; every other 404
// is returned as ErrNotFound.
func (c *Client) degradedLatest(ctx context.Context, stationID string) *models.LatestPayload {
	c.metrics.RecordDegraded("latest")
	c.logger.Warn(ctx, "[UPSTREAM_DEGRADED] Serving placeholder latest reading", logging.Fields{
		"station_id": stationID,
	})

	now := c.clock.Now().UTC().Truncate(time.Second)
	obs := placeholderObservation(now)
	return &models.LatestPayload{
		StationID:   stationID,
		Observation: obs,
		Health:      models.Health{Timestamp: &now},
		Message:     DegradedLatestMessage,
	}
}

// degradedHistory builds 24 hourly placeholder readings for date and runs
// them through the normal history pipeline.
func (c *Client) degradedHistory(ctx context.Context, stationID, date string) *models.HistoryPayload {
	c.metrics.RecordDegraded("history")
	c.logger.Warn(ctx, "[UPSTREAM_DEGRADED] Serving placeholder history day", logging.Fields{
		"station_id": stationID,
		"date":       date,
	})

	day, _ := time.Parse(models.DateLayout, date)
	entries := make([]models.RawEntry, 24)
	for h := range entries {
		ts := day.Add(time.Duration(h) * time.Hour)
		entries[h] = models.RawEntry{
			Observation: placeholderObservation(ts),
			Health:      models.Health{Timestamp: &ts},
		}
	}

	out := BuildHistory(stationID, date, entries)
	out.Message = DegradedHistoryMessage
	return out
}

// placeholderObservation follows a fixed diurnal curve so repeated syncs of
// the same degraded day store identical data.
func placeholderObservation(ts time.Time) models.Observation {
	hour := float64(ts.Hour()) + float64(ts.Minute())/60
	phase := math.Sin(2 * math.Pi * (hour - 9) / 24)

	temp := round1(15 + 5*phase)
	humidity := round1(65 - 15*phase)
	wind := 3.0
	pressure := 1013.0
	precip := 0.0
	uv := math.Max(0, round1(6*phase))
	solar := math.Max(0, round1(600*phase))
	icon := "unknown"

	return models.Observation{
		Timestamp:         &ts,
		Temperature:       &temp,
		Humidity:          &humidity,
		WindSpeed:         &wind,
		Pressure:          &pressure,
		PrecipitationRate: &precip,
		UVIndex:           &uv,
		SolarIrradiance:   &solar,
		Icon:              &icon,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
