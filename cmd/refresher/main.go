package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"heatwatch/internal/config"
	"heatwatch/internal/forecast"
	"heatwatch/internal/repository"
	"heatwatch/internal/services"
	"heatwatch/pkg/database"
	"heatwatch/pkg/logging"
	"heatwatch/pkg/metrics"
)

func main() {
	// Parse command-line flags
	teamSeasonID := flag.String("team-season", "", "Team-season id to refresh (required)")
	weekStartStr := flag.String("week-start", "", "Week start date (YYYY-MM-DD, default: most recent Monday)")
	lat := flag.Float64("lat", 0, "Practice location latitude")
	lon := flag.Float64("lon", 0, "Practice location longitude")
	flag.Parse()

	if *teamSeasonID == "" {
		fmt.Fprintln(os.Stderr, "-team-season is required")
		flag.Usage()
		os.Exit(1)
	}

	weekStart, err := resolveWeekStart(*weekStartStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -week-start: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logLevel := logging.InfoLevel
	if cfg.Logging.Level == "debug" {
		logLevel = logging.DebugLevel
	}

	logger := logging.NewStructuredLogger("heatwatch-refresher", "1.0.0", logLevel)

	ctx := context.Background()
	logger.Info(ctx, "[REFRESHER_START] Starting weekly heat refresh", logging.Fields{
		"version":        "1.0.0",
		"team_season_id": *teamSeasonID,
		"week_start":     weekStart.Format("2006-01-02"),
		"lat":            *lat,
		"lon":            *lon,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("heatwatch_refresher")

	// Initialize database
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[REFRESHER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Initialize repositories and services
	policyRepo := repository.NewPolicyRepository(db, logger, metricsCollector)
	practiceRepo := repository.NewPracticeRepository(db, logger, metricsCollector)
	forecastClient := forecast.NewClient(cfg.Forecast.BaseURL, cfg.Forecast.Timeout, logger, metricsCollector)

	resolver := services.NewResolverService(policyRepo, logger, metricsCollector)
	recorder := services.NewRecorderService(resolver, practiceRepo, logger, metricsCollector, clockwork.NewRealClock())
	refresher := services.NewRefreshService(forecastClient, recorder, practiceRepo, logger, metricsCollector)

	// Run the refresh
	result, err := refresher.RefreshWeek(ctx, *teamSeasonID, weekStart, *lat, *lon)
	if err != nil {
		logger.Fatal(ctx, "[REFRESH_ERROR] Weekly refresh failed", logging.Fields{
			"team_season_id": *teamSeasonID,
		}, err)
	}

	// Print results
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("WEEKLY HEAT REFRESH COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Team Season:        %s\n", result.TeamSeasonID)
	fmt.Printf("Week Start:         %s\n", result.WeekStart)
	fmt.Printf("Forecast Days:      %d\n", result.ForecastDays)
	fmt.Printf("Practices:          %d\n", result.PracticesTotal)
	fmt.Printf("Recorded:           %d\n", result.Recorded)
	fmt.Printf("Failed:             %d\n", result.Failed)
	fmt.Printf("Missing Forecast:   %d\n", result.MissingForecast)
	fmt.Printf("Duration:           %v\n", result.Duration)

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for _, errMsg := range result.Errors {
			fmt.Printf("  - %s\n", errMsg)
		}
	}

	logger.Info(ctx, "[REFRESHER_COMPLETE] Weekly heat refresh finished", logging.Fields{
		"practices_total": result.PracticesTotal,
		"recorded":        result.Recorded,
		"failed":          result.Failed,
	})
}

// resolveWeekStart parses the -week-start flag, defaulting to the most recent
// Monday (inclusive of today) when unset.
func resolveWeekStart(value string) (time.Time, error) {
	if value != "" {
		return time.Parse("2006-01-02", value)
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	offset := (int(today.Weekday()) + 6) % 7 // days since Monday
	return today.AddDate(0, 0, -offset), nil
}
