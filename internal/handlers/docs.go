package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Heatwatch API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Heatwatch API",
			"description": "Heat-safety policy resolution and WBGT risk classification for team practice schedules",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "Heatwatch Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/heat/policy": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Resolve the applicable heat policy",
					"description": "Returns the heat policy that applies to a team-season: the pinned policy when set, otherwise the best auto-discovered candidate",
					"parameters": []map[string]interface{}{
						{
							"name":        "team_season_id",
							"in":          "query",
							"description": "Team-season identifier",
							"required":    true,
							"schema":      map[string]string{"type": "string"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Resolved policy",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"policy":        map[string]string{"type": "object"},
											"source":        map[string]interface{}{"type": "string", "enum": []string{"pinned", "discovered"}},
											"cache_warning": map[string]interface{}{"type": "string", "nullable": true},
										},
									},
								},
							},
						},
						"404": map[string]interface{}{
							"description": "Heat guidance unavailable (no governing body or no matching policy)",
						},
					},
				},
			},
			"/api/heat/refresh": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Run the weekly heat refresh",
					"description": "Fetches one week of forecast data, classifies every practice in the window, and records snapshots plus summary fields",
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"team_season_id": map[string]string{"type": "string"},
										"week_start":     map[string]string{"type": "string", "format": "date"},
										"lat":            map[string]string{"type": "number"},
										"lon":            map[string]string{"type": "number"},
									},
									"required": []string{"team_season_id", "week_start"},
								},
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Refresh result with per-practice outcome counts",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"team_season_id":        map[string]string{"type": "string"},
											"week_start":            map[string]string{"type": "string", "format": "date"},
											"forecast_days":         map[string]string{"type": "integer"},
											"practices_total":       map[string]string{"type": "integer"},
											"recorded":              map[string]string{"type": "integer"},
											"failed":                map[string]string{"type": "integer"},
											"missing_forecast_days": map[string]string{"type": "integer"},
											"errors":                map[string]interface{}{"type": "array", "items": map[string]string{"type": "string"}},
										},
									},
								},
							},
						},
					},
				},
			},
			"/api/practices/{id}/snapshots": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get a practice's weather snapshot history",
					"description": "Immutable audit rows, newest first; one row per classification run",
					"parameters": []map[string]interface{}{
						{
							"name":        "id",
							"in":          "path",
							"description": "Practice session identifier",
							"required":    true,
							"schema":      map[string]string{"type": "string"},
						},
						{
							"name":        "page",
							"in":          "query",
							"description": "Page number (default: 1)",
							"required":    false,
							"schema":      map[string]interface{}{"type": "integer", "default": 1},
						},
						{
							"name":        "limit",
							"in":          "query",
							"description": "Records per page (default: 100)",
							"required":    false,
							"schema":      map[string]interface{}{"type": "integer", "default": 100},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"data": map[string]interface{}{
												"type": "array",
												"items": map[string]interface{}{
													"type": "object",
													"properties": map[string]interface{}{
														"id":           map[string]string{"type": "string"},
														"practice_id":  map[string]string{"type": "string"},
														"source":       map[string]interface{}{"type": "string", "enum": []string{"forecast_provider", "manual"}},
														"wbgt_f":       map[string]interface{}{"type": "number", "nullable": true},
														"wbgt_c":       map[string]interface{}{"type": "number", "nullable": true},
														"temp_f":       map[string]interface{}{"type": "number", "nullable": true},
														"temp_c":       map[string]interface{}{"type": "number", "nullable": true},
														"humidity_pct": map[string]interface{}{"type": "number", "nullable": true},
														"wind_mph":     map[string]interface{}{"type": "number", "nullable": true},
														"wind_kph":     map[string]interface{}{"type": "number", "nullable": true},
														"heat_risk":    map[string]interface{}{"type": "string", "nullable": true, "enum": []string{"low", "moderate", "high", "extreme"}},
														"policy_id":    map[string]interface{}{"type": "string", "nullable": true},
														"created_at":   map[string]string{"type": "string", "format": "date-time"},
													},
												},
											},
											"total":       map[string]string{"type": "integer"},
											"page":        map[string]string{"type": "integer"},
											"limit":       map[string]string{"type": "integer"},
											"total_pages": map[string]string{"type": "integer"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/api/policies": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List heat policies",
					"description": "Administrative listing of seeded policies with filtering and pagination",
					"parameters": []map[string]interface{}{
						{
							"name":        "governing_body",
							"in":          "query",
							"description": "Filter by governing body (nfhs, ncaa, naia, other)",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
						{
							"name":        "sport",
							"in":          "query",
							"description": "Filter by sport key",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
						{
							"name":        "page",
							"in":          "query",
							"description": "Page number (default: 1)",
							"required":    false,
							"schema":      map[string]interface{}{"type": "integer", "default": 1},
						},
						{
							"name":        "limit",
							"in":          "query",
							"description": "Records per page (default: 100)",
							"required":    false,
							"schema":      map[string]interface{}{"type": "integer", "default": 100},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
						},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check if the API and database are reachable",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "API is healthy",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"status": map[string]string{"type": "string"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
