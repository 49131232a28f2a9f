package forecast

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heatwatch/pkg/logging"
	"heatwatch/pkg/metrics"
)

var testMetrics = metrics.NewCollector("heatwatch_forecast_test")

func newTestLogger() *logging.StructuredLogger {
	logger := logging.NewStructuredLogger("test", "test", logging.ErrorLevel)
	logger.SetOutput(io.Discard)
	return logger
}

func TestGetWeeklyForecast(t *testing.T) {
	var gotQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/forecast/daily", r.URL.Path)
		gotQuery = map[string]string{
			"latitude":   r.URL.Query().Get("latitude"),
			"longitude":  r.URL.Query().Get("longitude"),
			"start_date": r.URL.Query().Get("start_date"),
			"days":       r.URL.Query().Get("days"),
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"days": [
				{"date": "2024-08-12", "wet_bulb_f": 84.2, "temp_min_f": 71.0, "temp_max_f": 93.5, "humidity_pct": 62.0, "wind_mph": 8.5, "weather_code": 1, "summary": "Mostly sunny"},
				{"date": "2024-08-13", "wet_bulb_f": null, "summary": "Cloudy"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, newTestLogger(), testMetrics)

	start := time.Date(2024, 8, 12, 0, 0, 0, 0, time.UTC)
	days, err := client.GetWeeklyForecast(context.Background(), 33.749, -84.388, start)

	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, "33.7490", gotQuery["latitude"])
	assert.Equal(t, "-84.3880", gotQuery["longitude"])
	assert.Equal(t, "2024-08-12", gotQuery["start_date"])
	assert.Equal(t, "7", gotQuery["days"])

	first := days[0]
	assert.Equal(t, "2024-08-12", first.Date)
	require.NotNil(t, first.WetBulbF)
	assert.Equal(t, 84.2, *first.WetBulbF)
	require.NotNil(t, first.TempMaxF)
	assert.Equal(t, 93.5, *first.TempMaxF)
	require.NotNil(t, first.WeatherCode)
	assert.Equal(t, 1, *first.WeatherCode)
	assert.Equal(t, "Mostly sunny", first.Summary)
	assert.NotEmpty(t, first.Raw)

	second := days[1]
	assert.Nil(t, second.WetBulbF)
	assert.Nil(t, second.WindMph)
}

func TestGetWeeklyForecast_DropsUnparseableDates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"days": [
				{"date": "08/12/2024", "wet_bulb_f": 84.2},
				{"date": "2024-08-13", "wet_bulb_f": 85.0}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, newTestLogger(), testMetrics)

	days, err := client.GetWeeklyForecast(context.Background(), 33.749, -84.388, time.Now())

	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2024-08-13", days[0].Date)
}

func TestGetWeeklyForecast_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, newTestLogger(), testMetrics)

	_, err := client.GetWeeklyForecast(context.Background(), 33.749, -84.388, time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestGetWeeklyForecast_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, newTestLogger(), testMetrics)

	_, err := client.GetWeeklyForecast(context.Background(), 33.749, -84.388, time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestGetWeeklyForecast_RequestError(t *testing.T) {
	// Closed server: the request itself fails.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, 1*time.Second, newTestLogger(), testMetrics)

	_, err := client.GetWeeklyForecast(context.Background(), 33.749, -84.388, time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "forecast request failed")
}

func TestDailyForecast_AmbientTempF(t *testing.T) {
	maxF := 93.5
	minF := 71.0

	both := DailyForecast{TempMinF: &minF, TempMaxF: &maxF}
	require.NotNil(t, both.AmbientTempF())
	assert.Equal(t, 93.5, *both.AmbientTempF())

	minOnly := DailyForecast{TempMinF: &minF}
	require.NotNil(t, minOnly.AmbientTempF())
	assert.Equal(t, 71.0, *minOnly.AmbientTempF())

	neither := DailyForecast{}
	assert.Nil(t, neither.AmbientTempF())
}
