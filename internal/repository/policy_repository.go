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

// PolicyRepository provides data access for heat policies and the
// team-season contexts they are resolved against.
type PolicyRepository interface {
	// Policy operations
	GetPolicy(ctx context.Context, policyID string) (*models.HeatPolicy, error)
	ListCandidates(ctx context.Context, body models.GoverningBody, sportKey *string) ([]*models.HeatPolicy, error)
	ListPolicies(ctx context.Context, filter PolicyFilter) ([]*models.HeatPolicy, int, error)

	// Team-season operations
	GetTeamSeason(ctx context.Context, teamSeasonID string) (*models.TeamSeasonContext, error)
	CacheResolvedPolicy(ctx context.Context, teamSeasonID, policyID string) error
}

// PolicyFilter defines filters for the administrative policy listing.
type PolicyFilter struct {
	GoverningBody *models.GoverningBody
	SportKey      *string
	Limit         int
	Offset        int
}

type policyRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewPolicyRepository creates a new policy repository.
func NewPolicyRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) PolicyRepository {
	return &policyRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

const policyColumns = `
	id, label, governing_body, competition_level, sport_key, wbgt_unit,
	low_max, moderate_min, moderate_max, high_min, high_max, extreme_min,
	guideline_low, guideline_moderate, guideline_high, guideline_extreme,
	effective_year, is_default, created_at, updated_at
`

// GetPolicy retrieves a heat policy by id.
func (r *policyRepository) GetPolicy(ctx context.Context, policyID string) (*models.HeatPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM heat_policies WHERE id = $1`

	var policy models.HeatPolicy
	err := r.db.GetContext(ctx, "get_policy", &policy, query, policyID)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "heat_policy",
			ID:       policyID,
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	return &policy, nil
}

// ListCandidates retrieves the policies eligible for auto-discovery: an exact
// governing-body match, and either the derived sport key or a sport-agnostic
// policy (sport_key IS NULL). A nil sportKey matches sport-agnostic policies
// only.
func (r *policyRepository) ListCandidates(ctx context.Context, body models.GoverningBody, sportKey *string) ([]*models.HeatPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM heat_policies WHERE governing_body = $1`
	args := []interface{}{body}

	if sportKey != nil {
		query += ` AND (sport_key = $2 OR sport_key IS NULL)`
		args = append(args, *sportKey)
	} else {
		query += ` AND sport_key IS NULL`
	}

	query += ` ORDER BY id`

	var candidates []*models.HeatPolicy
	err := r.db.SelectContext(ctx, "list_policy_candidates", &candidates, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list policy candidates: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_POLICY_CANDIDATES] Candidates loaded", logging.Fields{
		"governing_body": body,
		"sport_key":      sportKey,
		"count":          len(candidates),
	})

	return candidates, nil
}

// ListPolicies retrieves heat policies with filtering and pagination.
func (r *policyRepository) ListPolicies(ctx context.Context, filter PolicyFilter) ([]*models.HeatPolicy, int, error) {
	query := `SELECT ` + policyColumns + ` FROM heat_policies WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.GoverningBody != nil {
		query += fmt.Sprintf(" AND governing_body = $%d", argNum)
		args = append(args, *filter.GoverningBody)
		argNum++
	}

	if filter.SportKey != nil {
		query += fmt.Sprintf(" AND sport_key = $%d", argNum)
		args = append(args, *filter.SportKey)
		argNum++
	}

	// Get total count
	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var totalCount int
	err := r.db.GetContext(ctx, "count_policies", &totalCount, countQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count policies: %w", err)
	}

	query += " ORDER BY governing_body, effective_year DESC NULLS LAST, id"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var policies []*models.HeatPolicy
	err = r.db.SelectContext(ctx, "list_policies", &policies, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list policies: %w", err)
	}

	return policies, totalCount, nil
}

// GetTeamSeason retrieves a team-season context by id.
func (r *policyRepository) GetTeamSeason(ctx context.Context, teamSeasonID string) (*models.TeamSeasonContext, error) {
	query := `
		SELECT id, team_id, program_id, team_sport, program_sport,
		       season_year, governing_body, pinned_policy_id,
		       created_at, updated_at
		FROM team_seasons
		WHERE id = $1
	`

	var season models.TeamSeasonContext
	err := r.db.GetContext(ctx, "get_team_season", &season, query, teamSeasonID)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "team_season",
			ID:       teamSeasonID,
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get team season: %w", err)
	}

	return &season, nil
}

// CacheResolvedPolicy persists an auto-discovered policy id onto the
// team-season row. The write is best-effort and idempotent: concurrent
// resolutions may redundantly store the same id, and a later explicit pin
// by an administrator simply overwrites it.
func (r *policyRepository) CacheResolvedPolicy(ctx context.Context, teamSeasonID, policyID string) error {
	query := `
		UPDATE team_seasons
		SET pinned_policy_id = $2, updated_at = $3
		WHERE id = $1 AND pinned_policy_id IS NULL
	`

	_, err := r.db.ExecContext(ctx, "cache_resolved_policy", query,
		teamSeasonID,
		policyID,
		time.Now().UTC(),
	)

	if err != nil {
		return fmt.Errorf("failed to cache resolved policy: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_CACHE_POLICY] Resolution cached", logging.Fields{
		"team_season_id": teamSeasonID,
		"policy_id":      policyID,
	})

	return nil
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
