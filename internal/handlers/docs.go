package handlers

import (
	"encoding/json"
	"net/http"
)

func queryParam(name, description string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    false,
		"schema":      schema,
	}
}

var stationIDParam = map[string]interface{}{
	"name":        "id",
	"in":          "path",
	"description": "Station ID",
	"required":    true,
	"schema":      map[string]string{"type": "string"},
}

var dateParam = queryParam("date", "Calendar date (YYYY-MM-DD), UTC, within the last month",
	map[string]interface{}{"type": "string", "format": "date"})

func jsonResponse(description, ref string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]string{"$ref": "#/components/schemas/" + ref},
			},
		},
	}
}

func errorResponses(codes ...string) map[string]interface{} {
	descriptions := map[string]string{
		"400": "Invalid input",
		"404": "Not found",
		"429": "Upstream rate limit; honour Retry-After",
		"502": "Upstream failure or rejected credentials",
	}
	out := map[string]interface{}{}
	for _, c := range codes {
		out[c] = jsonResponse(descriptions[c], "Error")
	}
	return out
}

func withResponses(ok map[string]interface{}, errs map[string]interface{}) map[string]interface{} {
	errs["200"] = ok
	return errs
}

func nullableNumber() map[string]interface{} {
	return map[string]interface{}{"type": "number", "nullable": true}
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the telemetry API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Weather Station Telemetry API",
			"description": "Station catalog, latest readings and daily history synced from the weather station network",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/stations": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List stations",
					"description": "Filtered, paginated station catalog",
					"parameters": []map[string]interface{}{
						queryParam("page", "Page number (default: 1)", map[string]interface{}{"type": "integer", "default": defaultPage, "minimum": 1}),
						queryParam("limit", "Stations per page (default: 20, max: 100)", map[string]interface{}{"type": "integer", "default": defaultLimit, "minimum": 1, "maximum": maxLimit}),
						queryParam("search", "Case-insensitive match on name, id, country, region or address", map[string]interface{}{"type": "string"}),
						queryParam("region", "Region label or All", map[string]interface{}{"type": "string"}),
						queryParam("country", "Country label or All", map[string]interface{}{"type": "string"}),
					},
					"responses": withResponses(jsonResponse("Page of stations", "PageResult"), errorResponses("400", "502")),
				},
			},
			"/api/stations/regions": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":   "List observed regions and countries",
					"responses": withResponses(jsonResponse("Region metadata", "RegionMetadata"), errorResponses("502")),
				},
			},
			"/api/stations/{id}/latest": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":    "Get the stored latest reading",
					"parameters": []map[string]interface{}{stationIDParam},
					"responses":  withResponses(jsonResponse("Latest record", "LatestRecord"), errorResponses("400", "404")),
				},
			},
			"/api/stations/{id}/latest/sync": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Fetch and store the latest reading",
					"description": "A placeholder reading with a message is stored when the provider has none",
					"parameters":  []map[string]interface{}{stationIDParam},
					"responses":   withResponses(jsonResponse("Stored latest record", "LatestRecord"), errorResponses("400", "429", "502")),
				},
			},
			"/api/stations/{id}/history": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get stored history",
					"description": "One day when date is given, otherwise the most recent days newest first",
					"parameters": []map[string]interface{}{
						stationIDParam,
						dateParam,
						queryParam("limit", "Days to list when no date is given (default: 7, max: 31)", map[string]interface{}{"type": "integer"}),
					},
					"responses": withResponses(jsonResponse("History record or list", "HistoryRecord"), errorResponses("400", "404")),
				},
			},
			"/api/stations/{id}/history/sync": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":    "Fetch, summarize and store one day of history",
					"parameters": []map[string]interface{}{stationIDParam, dateParam},
					"responses":  withResponses(jsonResponse("Stored history record", "HistoryRecord"), errorResponses("400", "429", "502")),
				},
			},
			"/api/stations/{id}/history/dates": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":    "List stored history dates from the last month",
					"parameters": []map[string]interface{}{stationIDParam},
					"responses":  withResponses(jsonResponse("Dates, newest first", "Dates"), errorResponses("400")),
				},
			},
			"/api/sync": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":    "Sync every catalog station",
					"parameters": []map[string]interface{}{dateParam},
					"responses":  withResponses(jsonResponse("Batch report", "SyncReport"), errorResponses("400", "502")),
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Health check",
					"responses": map[string]interface{}{
						"200": map[string]string{"description": "Service is healthy"},
						"503": map[string]string{"description": "Store unreachable"},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Prometheus metrics",
					"responses": map[string]interface{}{
						"200": map[string]string{"description": "Metrics in Prometheus text format"},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Error": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error":   map[string]string{"type": "string"},
						"kind":    map[string]string{"type": "string"},
						"message": map[string]string{"type": "string"},
						"code":    map[string]string{"type": "integer"},
					},
				},
				"Station": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"id":         map[string]string{"type": "string"},
						"name":       map[string]string{"type": "string"},
						"latitude":   map[string]string{"type": "number"},
						"longitude":  map[string]string{"type": "number"},
						"elevation":  map[string]string{"type": "number"},
						"cellIndex":  map[string]string{"type": "string"},
						"lastDayQod": map[string]string{"type": "number"},
						"isActive":   map[string]string{"type": "boolean"},
						"region":     map[string]string{"type": "string"},
						"country":    map[string]string{"type": "string"},
						"address":    map[string]string{"type": "string"},
					},
				},
				"PageResult": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"data":       map[string]interface{}{"type": "array", "items": map[string]string{"$ref": "#/components/schemas/Station"}},
						"total":      map[string]string{"type": "integer"},
						"page":       map[string]string{"type": "integer"},
						"limit":      map[string]string{"type": "integer"},
						"totalPages": map[string]string{"type": "integer"},
						"hasMore":    map[string]string{"type": "boolean"},
					},
				},
				"RegionMetadata": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"regions":   map[string]interface{}{"type": "array", "items": map[string]string{"type": "string"}},
						"countries": map[string]interface{}{"type": "array", "items": map[string]string{"type": "string"}},
					},
				},
				"Observation": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"timestamp":   map[string]interface{}{"type": "string", "format": "date-time", "nullable": true},
						"temperature": nullableNumber(),
						"humidity":    nullableNumber(),
						"wind_speed":  nullableNumber(),
						"pressure":    nullableNumber(),
					},
				},
				"LatestRecord": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"station_id":   map[string]string{"type": "string"},
						"observation":  map[string]string{"$ref": "#/components/schemas/Observation"},
						"last_updated": map[string]interface{}{"type": "string", "format": "date-time"},
						"message":      map[string]string{"type": "string"},
					},
				},
				"DailySummary": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"total_observations":  map[string]string{"type": "integer"},
						"valid_observations":  map[string]string{"type": "integer"},
						"avg_temperature":     nullableNumber(),
						"min_temperature":     nullableNumber(),
						"max_temperature":     nullableNumber(),
						"total_precipitation": nullableNumber(),
					},
				},
				"HistoryRecord": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"station_id":   map[string]string{"type": "string"},
						"date":         map[string]interface{}{"type": "string", "format": "date"},
						"observations": map[string]interface{}{"type": "array", "items": map[string]string{"$ref": "#/components/schemas/Observation"}},
						"summary":      map[string]string{"$ref": "#/components/schemas/DailySummary"},
						"last_updated": map[string]interface{}{"type": "string", "format": "date-time"},
						"message":      map[string]string{"type": "string"},
					},
				},
				"Dates": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"station_id": map[string]string{"type": "string"},
						"dates":      map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string", "format": "date"}},
					},
				},
				"SyncReport": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"stations":       map[string]string{"type": "integer"},
						"latest_synced":  map[string]string{"type": "integer"},
						"history_synced": map[string]string{"type": "integer"},
						"degraded":       map[string]string{"type": "integer"},
						"skipped":        map[string]string{"type": "integer"},
						"failures":       map[string]interface{}{"type": "array", "items": map[string]string{"type": "object"}},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
