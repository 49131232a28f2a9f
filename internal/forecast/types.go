package forecast

import "encoding/json"

// DailyForecast is one calendar day of provider data, keyed by date. All
// numeric fields are nullable: the provider may omit any reading, and a
// missing wet bulb simply makes that day's practices unclassifiable.
type DailyForecast struct {
	Date        string          `json:"date"` // YYYY-MM-DD
	WetBulbF    *float64        `json:"wet_bulb_f,omitempty"`
	TempMinF    *float64        `json:"temp_min_f,omitempty"`
	TempMaxF    *float64        `json:"temp_max_f,omitempty"`
	HumidityPct *float64        `json:"humidity_pct,omitempty"`
	WindMph     *float64        `json:"wind_mph,omitempty"`
	WeatherCode *int            `json:"weather_code,omitempty"`
	Summary     string          `json:"summary,omitempty"`
	Raw         json.RawMessage `json:"-"`
}

// AmbientTempF returns the day's ambient temperature proxy: the max
// temperature if present, else the min temperature, else nil.
func (d *DailyForecast) AmbientTempF() *float64 {
	if d.TempMaxF != nil {
		return d.TempMaxF
	}
	return d.TempMinF
}
