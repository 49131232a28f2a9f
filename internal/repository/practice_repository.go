package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"heatwatch/internal/models"
	"heatwatch/pkg/database"
	"heatwatch/pkg/logging"
	"heatwatch/pkg/metrics"
)

// PracticeRepository provides data access for practice sessions and their
// weather snapshot history.
type PracticeRepository interface {
	// Practice operations
	GetPractice(ctx context.Context, practiceID string) (*models.PracticeSession, error)
	ListPracticesInRange(ctx context.Context, teamSeasonID string, start, end time.Time) ([]*models.PracticeSession, error)
	UpdateHeatSummary(ctx context.Context, practiceID string, wbgtF, wbgtC *float64, risk *models.RiskBand) error

	// Snapshot operations (append-only history)
	CreateSnapshot(ctx context.Context, snap *models.WeatherSnapshot) error
	ListSnapshots(ctx context.Context, practiceID string, limit, offset int) ([]*models.WeatherSnapshot, int, error)

	// Utility operations
	HealthCheck(ctx context.Context) error
}

type practiceRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewPracticeRepository creates a new practice repository.
func NewPracticeRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) PracticeRepository {
	return &practiceRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// GetPractice retrieves a practice session by id.
func (r *practiceRepository) GetPractice(ctx context.Context, practiceID string) (*models.PracticeSession, error) {
	query := `
		SELECT id, team_season_id, practice_date, wbgt_f, wbgt_c, heat_risk,
		       created_at, updated_at
		FROM practice_sessions
		WHERE id = $1
	`

	var practice models.PracticeSession
	err := r.db.GetContext(ctx, "get_practice", &practice, query, practiceID)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "practice_session",
			ID:       practiceID,
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get practice: %w", err)
	}

	return &practice, nil
}

// ListPracticesInRange retrieves all practices for a team-season whose date
// falls within [start, end] inclusive.
func (r *practiceRepository) ListPracticesInRange(ctx context.Context, teamSeasonID string, start, end time.Time) ([]*models.PracticeSession, error) {
	query := `
		SELECT id, team_season_id, practice_date, wbgt_f, wbgt_c, heat_risk,
		       created_at, updated_at
		FROM practice_sessions
		WHERE team_season_id = $1
		  AND practice_date >= $2
		  AND practice_date <= $3
		ORDER BY practice_date, id
	`

	var practices []*models.PracticeSession
	err := r.db.SelectContext(ctx, "list_practices_in_range", &practices, query, teamSeasonID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list practices: %w", err)
	}

	return practices, nil
}

// UpdateHeatSummary writes the denormalized heat fields on a practice row.
// The summary always reflects the most recently completed recording run.
func (r *practiceRepository) UpdateHeatSummary(ctx context.Context, practiceID string, wbgtF, wbgtC *float64, risk *models.RiskBand) error {
	query := `
		UPDATE practice_sessions
		SET wbgt_f = $2, wbgt_c = $3, heat_risk = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, "update_heat_summary", query,
		practiceID,
		wbgtF,
		wbgtC,
		risk,
		time.Now().UTC(),
	)

	if err != nil {
		return fmt.Errorf("failed to update heat summary: %w", err)
	}

	if rows, rowsErr := result.RowsAffected(); rowsErr == nil && rows == 0 {
		return &NotFoundError{
			Resource: "practice_session",
			ID:       practiceID,
		}
	}

	return nil
}

// CreateSnapshot inserts one immutable weather snapshot row. Snapshots are
// never updated or deleted; re-running a refresh appends another row.
func (r *practiceRepository) CreateSnapshot(ctx context.Context, snap *models.WeatherSnapshot) error {
	query := `
		INSERT INTO weather_snapshots (
			id, practice_id, source, location_name, latitude, longitude,
			wbgt_f, wbgt_c, temp_f, temp_c, humidity_pct, wind_mph, wind_kph,
			weather_code, summary, heat_risk, governing_body, policy_id,
			raw_payload, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := r.db.ExecContext(ctx, "create_snapshot", query,
		snap.ID,
		snap.PracticeID,
		snap.Source,
		snap.LocationName,
		snap.Latitude,
		snap.Longitude,
		snap.WBGTF,
		snap.WBGTC,
		snap.TempF,
		snap.TempC,
		snap.HumidityPct,
		snap.WindMph,
		snap.WindKph,
		snap.WeatherCode,
		snap.Summary,
		snap.HeatRisk,
		snap.GoverningBody,
		snap.PolicyID,
		snap.RawPayload,
		snap.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	r.metrics.SnapshotsWrittenTotal.Inc()

	r.logger.Debug(ctx, "[REPO_CREATE_SNAPSHOT] Snapshot written", logging.Fields{
		"snapshot_id": snap.ID,
		"practice_id": snap.PracticeID,
		"source":      snap.Source,
	})

	return nil
}

// ListSnapshots retrieves the snapshot history for a practice, newest first,
// with pagination.
func (r *practiceRepository) ListSnapshots(ctx context.Context, practiceID string, limit, offset int) ([]*models.WeatherSnapshot, int, error) {
	countQuery := `SELECT COUNT(*) FROM weather_snapshots WHERE practice_id = $1`
	var totalCount int
	err := r.db.GetContext(ctx, "count_snapshots", &totalCount, countQuery, practiceID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count snapshots: %w", err)
	}

	query := `
		SELECT id, practice_id, source, location_name, latitude, longitude,
		       wbgt_f, wbgt_c, temp_f, temp_c, humidity_pct, wind_mph, wind_kph,
		       weather_code, summary, heat_risk, governing_body, policy_id,
		       raw_payload, created_at
		FROM weather_snapshots
		WHERE practice_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	var snapshots []*models.WeatherSnapshot
	err = r.db.SelectContext(ctx, "list_snapshots", &snapshots, query, practiceID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list snapshots: %w", err)
	}

	return snapshots, totalCount, nil
}

// HealthCheck performs a repository health check.
func (r *practiceRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
