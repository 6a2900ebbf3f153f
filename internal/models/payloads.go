package models

// LatestPayload is the provider's latest reading for one station.
// Message is set when the reading is synthetic.
type LatestPayload struct {
	StationID   string
	Observation Observation
	Health      Health
	Location    Location
	Message     string
}

// HistoryPayload is one day of provider history after ordering and
// validity filtering.
type HistoryPayload struct {
	StationID    string
	Date         string
	Total        int
	Observations []Observation
	Health       Health
	Location     Location
	Summary      DailySummary
	Message      string
}
