// Package stats reduces a day of station observations to summary statistics.
package stats

import "weather-telemetry/internal/models"

// accumulator tracks sum/min/max/count for one metric across a day.
type accumulator struct {
	sum   float64
	min   float64
	max   float64
	count int
}

func (a *accumulator) add(v *float64) {
	if v == nil {
		return
	}
	if a.count == 0 || *v < a.min {
		a.min = *v
	}
	if a.count == 0 || *v > a.max {
		a.max = *v
	}
	a.sum += *v
	a.count++
}

func (a *accumulator) avg() *float64 {
	if a.count == 0 {
		return nil
	}
	v := a.sum / float64(a.count)
	return &v
}

func (a *accumulator) minimum() *float64 {
	if a.count == 0 {
		return nil
	}
	v := a.min
	return &v
}

func (a *accumulator) maximum() *float64 {
	if a.count == 0 {
		return nil
	}
	v := a.max
	return &v
}

func (a *accumulator) total() *float64 {
	if a.count == 0 {
		return nil
	}
	v := a.sum
	return &v
}

// ComputeDailySummary reduces a day's valid observations to summary
// statistics. total is the raw entry count before validity filtering.
// A statistic with no contributing value is nil, never zero.
func ComputeDailySummary(total int, valid []models.Observation, qualityScore *float64) models.DailySummary {
	var temp, humidity, wind, pressure, precip, uv, solar accumulator

	for i := range valid {
		o := &valid[i]
		temp.add(o.Temperature)
		humidity.add(o.Humidity)
		wind.add(o.WindSpeed)
		pressure.add(o.Pressure)
		precip.add(o.PrecipitationRate)
		uv.add(o.UVIndex)
		solar.add(o.SolarIrradiance)
	}

	return models.DailySummary{
		TotalObservations:  total,
		ValidObservations:  len(valid),
		DataQualityScore:   qualityScore,
		AvgTemperature:     temp.avg(),
		MinTemperature:     temp.minimum(),
		MaxTemperature:     temp.maximum(),
		AvgHumidity:        humidity.avg(),
		AvgWindSpeed:       wind.avg(),
		MaxWindSpeed:       wind.maximum(),
		AvgPressure:        pressure.avg(),
		TotalPrecipitation: precip.total(),
		MaxUVIndex:         uv.maximum(),
		AvgSolarIrradiance: solar.avg(),
	}
}
