package models

// RawStationLocation is the provider's nested station position.
type RawStationLocation struct {
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lon"`
	Elevation *float64 `json:"elevation,omitempty"`
}

// RawStation is a station record as returned by the provider catalog endpoint.
type RawStation struct {
	ID         string             `json:"id"`
	Name       *string            `json:"name,omitempty"`
	CellIndex  *string            `json:"cellIndex,omitempty"`
	LastDayQod *float64           `json:"lastDayQod,omitempty"`
	Location   RawStationLocation `json:"location"`
}

// Station is the canonical catalog entry served to collaborators.
// It is recomputed on every catalog fetch and never stored on its own.
type Station struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Elevation  *float64 `json:"elevation,omitempty"`
	CellIndex  *string  `json:"cellIndex,omitempty"`
	LastDayQod *float64 `json:"lastDayQod,omitempty"`
	IsActive   bool     `json:"isActive"`
	Region     string   `json:"region"`
	Country    string   `json:"country"`
	Address    string   `json:"address"`
}

// FilterOptions are the read-path predicates applied to a catalog.
// An empty value or "All" disables the region/country filter.
type FilterOptions struct {
	Search  string
	Region  string
	Country string
}

// PageResult is one window of a filtered catalog.
type PageResult struct {
	Data       []Station `json:"data"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
	HasMore    bool      `json:"hasMore"`
}

// RegionMetadata summarizes the regions and countries present in a catalog.
type RegionMetadata struct {
	Regions       []string       `json:"regions"`
	Countries     []string       `json:"countries"`
	RegionCounts  map[string]int `json:"regionCounts"`
	CountryCounts map[string]int `json:"countryCounts"`
	TotalStations int            `json:"totalStations"`
}
