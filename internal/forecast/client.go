package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"heatwatch/pkg/logging"
	"heatwatch/pkg/metrics"
)

// Client fetches weekly forecasts from the external provider's daily API.
// Requests are bounded by the configured timeout; the caller treats any
// fetch failure as "no data available this cycle" rather than an outage
// worth retrying.
type Client struct {
	http    *resty.Client
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewClient creates a forecast provider client.
func NewClient(baseURL string, timeout time.Duration, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:    http,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// providerResponse is the provider's daily-forecast payload shape.
type providerResponse struct {
	Days []providerDay `json:"days"`
}

type providerDay struct {
	Date        string   `json:"date"`
	WetBulbF    *float64 `json:"wet_bulb_f"`
	TempMinF    *float64 `json:"temp_min_f"`
	TempMaxF    *float64 `json:"temp_max_f"`
	HumidityPct *float64 `json:"humidity_pct"`
	WindMph     *float64 `json:"wind_mph"`
	WeatherCode *int     `json:"weather_code"`
	Summary     string   `json:"summary"`
}

// GetWeeklyForecast fetches seven days of forecast data for a location,
// starting at startDate. Days without a parseable date are dropped; all other
// fields pass through as nullable values, with the provider's raw day record
// retained for snapshot traceability.
func (c *Client) GetWeeklyForecast(ctx context.Context, lat, lon float64, startDate time.Time) ([]DailyForecast, error) {
	timer := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":   strconv.FormatFloat(lat, 'f', 4, 64),
			"longitude":  strconv.FormatFloat(lon, 'f', 4, 64),
			"start_date": startDate.Format("2006-01-02"),
			"days":       "7",
		}).
		Get("/v1/forecast/daily")

	c.metrics.ForecastFetchDuration.Observe(time.Since(timer).Seconds())

	if err != nil {
		c.metrics.ForecastErrorsTotal.WithLabelValues("request_error").Inc()
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		c.metrics.ForecastErrorsTotal.WithLabelValues("status_error").Inc()
		return nil, fmt.Errorf("forecast provider error: status %d: %s", resp.StatusCode(), resp.String())
	}

	var payload providerResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		c.metrics.ForecastErrorsTotal.WithLabelValues("decode_error").Inc()
		return nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}

	days := make([]DailyForecast, 0, len(payload.Days))
	for _, day := range payload.Days {
		if _, parseErr := time.Parse("2006-01-02", day.Date); parseErr != nil {
			c.logger.Warn(ctx, "[FORECAST_BAD_DATE] Dropping day with unparseable date", logging.Fields{
				"date": day.Date,
			})
			continue
		}

		raw, _ := json.Marshal(day)

		days = append(days, DailyForecast{
			Date:        day.Date,
			WetBulbF:    day.WetBulbF,
			TempMinF:    day.TempMinF,
			TempMaxF:    day.TempMaxF,
			HumidityPct: day.HumidityPct,
			WindMph:     day.WindMph,
			WeatherCode: day.WeatherCode,
			Summary:     day.Summary,
			Raw:         raw,
		})
	}

	c.logger.Debug(ctx, "[FORECAST_FETCHED] Weekly forecast retrieved", logging.Fields{
		"lat":        lat,
		"lon":        lon,
		"start_date": startDate.Format("2006-01-02"),
		"day_count":  len(days),
	})

	return days, nil
}
