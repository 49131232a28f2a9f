package services

import (
	"context"
	"fmt"
	"time"

	"heatwatch/internal/forecast"
	"heatwatch/internal/models"
	"heatwatch/internal/repository"
	"heatwatch/pkg/logging"
	"heatwatch/pkg/metrics"
)

// ForecastProvider is the external weekly-forecast collaborator.
type ForecastProvider interface {
	GetWeeklyForecast(ctx context.Context, lat, lon float64, startDate time.Time) ([]forecast.DailyForecast, error)
}

// RefreshResult aggregates one refresh run's per-practice outcomes.
type RefreshResult struct {
	TeamSeasonID    string        `json:"team_season_id"`
	WeekStart       string        `json:"week_start"`
	ForecastDays    int           `json:"forecast_days"`
	PracticesTotal  int           `json:"practices_total"`
	Recorded        int           `json:"recorded"`
	Failed          int           `json:"failed"`
	MissingForecast int           `json:"missing_forecast_days"`
	Errors          []string      `json:"errors,omitempty"`
	Duration        time.Duration `json:"-"`
}

// RefreshService runs the weekly heat refresh: one forecast fetch, then an
// independent classify-and-record pass over every practice in the week. The
// job holds no state of its own and is idempotent per invocation — a re-run
// appends fresh snapshots and overwrites the summaries with its own values.
type RefreshService struct {
	provider ForecastProvider
	recorder *RecorderService
	repo     repository.PracticeRepository
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
}

// NewRefreshService creates a new weekly refresh service.
func NewRefreshService(
	provider ForecastProvider,
	recorder *RecorderService,
	repo repository.PracticeRepository,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *RefreshService {
	return &RefreshService{
		provider: provider,
		recorder: recorder,
		repo:     repo,
		logger:   logger,
		metrics:  metricsCollector,
	}
}

// RefreshWeek fetches the week's forecast for (lat, lon) and records heat
// data for every practice of the team-season scheduled in
// [weekStart, weekStart+6].
//
// A provider failure or empty forecast makes the run a no-op, not an error:
// the next scheduled run is the retry mechanism. One practice's recording
// failure never prevents the others from being attempted.
func (s *RefreshService) RefreshWeek(ctx context.Context, teamSeasonID string, weekStart time.Time, lat, lon float64) (*RefreshResult, error) {
	startTime := time.Now()
	weekStart = weekStart.Truncate(24 * time.Hour)

	result := &RefreshResult{
		TeamSeasonID: teamSeasonID,
		WeekStart:    weekStart.Format("2006-01-02"),
	}

	defer func() {
		result.Duration = time.Since(startTime)
		s.metrics.RefreshDuration.Observe(result.Duration.Seconds())
	}()

	s.logger.Info(ctx, "[REFRESH_START] Starting weekly heat refresh", logging.Fields{
		"team_season_id": teamSeasonID,
		"week_start":     result.WeekStart,
		"lat":            lat,
		"lon":            lon,
	})

	days, err := s.provider.GetWeeklyForecast(ctx, lat, lon, weekStart)
	if err != nil {
		// Treated the same as zero days returned: no data this cycle.
		s.logger.Warn(ctx, "[REFRESH_FORECAST_UNAVAILABLE] Forecast fetch failed, skipping this cycle", logging.Fields{
			"team_season_id": teamSeasonID,
			"error":          err.Error(),
		})
		days = nil
	}

	if len(days) == 0 {
		s.metrics.RefreshRunsTotal.WithLabelValues("no_forecast").Inc()
		s.logger.Info(ctx, "[REFRESH_NOOP] No forecast data available for this week", logging.Fields{
			"team_season_id": teamSeasonID,
		})
		return result, nil
	}
	result.ForecastDays = len(days)

	byDate := make(map[string]forecast.DailyForecast, len(days))
	for _, day := range days {
		byDate[day.Date] = day
	}

	weekEnd := weekStart.AddDate(0, 0, 6)
	practices, err := s.repo.ListPracticesInRange(ctx, teamSeasonID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load practices for week: %w", err)
	}

	if len(practices) == 0 {
		s.metrics.RefreshRunsTotal.WithLabelValues("no_practices").Inc()
		s.logger.Info(ctx, "[REFRESH_NOOP] No practices scheduled this week", logging.Fields{
			"team_season_id": teamSeasonID,
		})
		return result, nil
	}
	result.PracticesTotal = len(practices)

	for _, practice := range practices {
		readings := Readings{
			Source:    models.SnapshotSourceForecast,
			Latitude:  &lat,
			Longitude: &lon,
		}

		if day, ok := byDate[practice.DateKey()]; ok {
			readings.WBGTF = day.WetBulbF
			readings.TempF = day.AmbientTempF()
			readings.HumidityPct = day.HumidityPct
			readings.WindMph = day.WindMph
			readings.WeatherCode = day.WeatherCode
			if day.Summary != "" {
				summary := day.Summary
				readings.Summary = &summary
			}
			readings.RawPayload = day.Raw
		} else {
			// No forecast entry for this date; record the practice with
			// empty readings so its summary reflects "no data" explicitly.
			result.MissingForecast++
		}

		if err := s.recorder.Record(ctx, practice, readings); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("practice %s: %v", practice.ID, err))
			s.metrics.RefreshPracticesTotal.WithLabelValues("failed").Inc()
			s.logger.Error(ctx, "[REFRESH_PRACTICE_ERROR] Practice heat data did not refresh", logging.Fields{
				"practice_id":    practice.ID,
				"team_season_id": teamSeasonID,
				"practice_date":  practice.DateKey(),
			}, err)
			continue
		}

		result.Recorded++
		s.metrics.RefreshPracticesTotal.WithLabelValues("recorded").Inc()
	}

	s.metrics.RefreshRunsTotal.WithLabelValues("completed").Inc()

	s.logger.Info(ctx, "[REFRESH_COMPLETE] Weekly heat refresh completed", logging.Fields{
		"team_season_id":   teamSeasonID,
		"week_start":       result.WeekStart,
		"practices_total":  result.PracticesTotal,
		"recorded":         result.Recorded,
		"failed":           result.Failed,
		"missing_forecast": result.MissingForecast,
		"duration_seconds": time.Since(startTime).Seconds(),
	})

	return result, nil
}
