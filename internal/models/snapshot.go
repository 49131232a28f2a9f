package models

import (
	"encoding/json"
	"time"
)

// SnapshotSource tags where a snapshot's readings came from.
type SnapshotSource string

const (
	SnapshotSourceForecast SnapshotSource = "forecast_provider"
	SnapshotSourceManual   SnapshotSource = "manual"
)

// WeatherSnapshot is an immutable audit row recording the conditions and
// classification for one practice at one refresh run. Rows are append-only:
// the engine never updates or deletes them, and multiple rows per practice
// (one per run) form the heat history that the mutable practice summary
// cannot preserve. RawPayload keeps the provider's day record verbatim for
// traceability.
type WeatherSnapshot struct {
	ID            string          `json:"id" db:"id"`
	PracticeID    string          `json:"practice_id" db:"practice_id"`
	Source        SnapshotSource  `json:"source" db:"source"`
	LocationName  *string         `json:"location_name,omitempty" db:"location_name"`
	Latitude      *float64        `json:"latitude,omitempty" db:"latitude"`
	Longitude     *float64        `json:"longitude,omitempty" db:"longitude"`
	WBGTF         *float64        `json:"wbgt_f,omitempty" db:"wbgt_f"`
	WBGTC         *float64        `json:"wbgt_c,omitempty" db:"wbgt_c"`
	TempF         *float64        `json:"temp_f,omitempty" db:"temp_f"`
	TempC         *float64        `json:"temp_c,omitempty" db:"temp_c"`
	HumidityPct   *float64        `json:"humidity_pct,omitempty" db:"humidity_pct"`
	WindMph       *float64        `json:"wind_mph,omitempty" db:"wind_mph"`
	WindKph       *float64        `json:"wind_kph,omitempty" db:"wind_kph"`
	WeatherCode   *int            `json:"weather_code,omitempty" db:"weather_code"`
	Summary       *string         `json:"summary,omitempty" db:"summary"`
	HeatRisk      *RiskBand       `json:"heat_risk,omitempty" db:"heat_risk"`
	GoverningBody *GoverningBody  `json:"governing_body,omitempty" db:"governing_body"`
	PolicyID      *string         `json:"policy_id,omitempty" db:"policy_id"`
	RawPayload    json.RawMessage `json:"raw_payload,omitempty" db:"raw_payload"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
