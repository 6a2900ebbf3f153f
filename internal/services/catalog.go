package services

import (
	"fmt"
	"sort"
	"strings"

	"weather-telemetry/internal/geo"
	"weather-telemetry/internal/models"
)

// activeQodThreshold is the previous-day quality of data above which a
// station counts as active.
const activeQodThreshold = 0.5

// filterAll disables a region or country filter.
const filterAll = "All"

// TransformStation converts a provider catalog record to a Station.
func TransformStation(raw models.RawStation) models.Station {
	var lat, lon float64
	if raw.Location.Latitude != nil {
		lat = *raw.Location.Latitude
	}
	if raw.Location.Longitude != nil {
		lon = *raw.Location.Longitude
	}

	place := geo.ClassifyPtr(raw.Location.Latitude, raw.Location.Longitude)

	name := fmt.Sprintf("Station %s", raw.ID)
	if raw.Name != nil && strings.TrimSpace(*raw.Name) != "" {
		name = *raw.Name
	}

	address := fmt.Sprintf("%.4f, %.4f", lat, lon)
	if place.Country != geo.CountryUnknown {
		address = fmt.Sprintf("%s, %s", place.Country, address)
	}

	return models.Station{
		ID:         raw.ID,
		Name:       name,
		Latitude:   lat,
		Longitude:  lon,
		Elevation:  raw.Location.Elevation,
		CellIndex:  raw.CellIndex,
		LastDayQod: raw.LastDayQod,
		IsActive:   raw.LastDayQod != nil && *raw.LastDayQod > activeQodThreshold,
		Region:     place.Region,
		Country:    place.Country,
		Address:    address,
	}
}

// TransformCatalog converts every raw station, preserving order.
func TransformCatalog(raw []models.RawStation) []models.Station {
	out := make([]models.Station, len(raw))
	for i := range raw {
		out[i] = TransformStation(raw[i])
	}
	return out
}

// FilterStations applies search, region and country predicates. Search is a
// case-insensitive substring match against name, id, country, region and
// address; region and country must match exactly.
func FilterStations(stations []models.Station, opts models.FilterOptions) []models.Station {
	search := strings.ToLower(strings.TrimSpace(opts.Search))
	region := normalizeFilter(opts.Region)
	country := normalizeFilter(opts.Country)

	out := make([]models.Station, 0, len(stations))
	for _, s := range stations {
		if region != "" && s.Region != region {
			continue
		}
		if country != "" && s.Country != country {
			continue
		}
		if search != "" && !matchesSearch(s, search) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func normalizeFilter(v string) string {
	v = strings.TrimSpace(v)
	if v == filterAll {
		return ""
	}
	return v
}

func matchesSearch(s models.Station, needle string) bool {
	for _, field := range []string{s.Name, s.ID, s.Country, s.Region, s.Address} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Paginate returns the 1-based page of stations. A page past the end yields
// an empty window with the correct totals.
func Paginate(stations []models.Station, page, limit int) (*models.PageResult, error) {
	if page <= 0 {
		return nil, models.NewValidationError("page", fmt.Sprint(page), "must be a positive integer")
	}
	if limit <= 0 {
		return nil, models.NewValidationError("limit", fmt.Sprint(limit), "must be a positive integer")
	}

	total := len(stations)
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	// Compare page numbers before multiplying so a huge page cannot overflow.
	data := []models.Station{}
	if page <= totalPages {
		start := (page - 1) * limit
		end := min(start+limit, total)
		data = stations[start:end]
	}

	return &models.PageResult{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}, nil
}

// RegionMetadata lists the regions and countries observed in stations,
// sorted, along with per-label counts.
func RegionMetadata(stations []models.Station) *models.RegionMetadata {
	meta := &models.RegionMetadata{
		Regions:       []string{},
		Countries:     []string{},
		RegionCounts:  map[string]int{},
		CountryCounts: map[string]int{},
		TotalStations: len(stations),
	}

	for _, s := range stations {
		meta.RegionCounts[s.Region]++
		meta.CountryCounts[s.Country]++
	}
	for r := range meta.RegionCounts {
		meta.Regions = append(meta.Regions, r)
	}
	for c := range meta.CountryCounts {
		meta.Countries = append(meta.Countries, c)
	}
	sort.Strings(meta.Regions)
	sort.Strings(meta.Countries)

	return meta
}
