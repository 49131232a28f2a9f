package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"heatwatch/internal/models"
	"heatwatch/internal/repository"
	"heatwatch/pkg/logging"
	"heatwatch/pkg/metrics"
)

// ResolutionSource records how a policy was arrived at.
type ResolutionSource string

const (
	SourcePinned     ResolutionSource = "pinned"
	SourceDiscovered ResolutionSource = "discovered"
)

// Resolution failure reasons. Both are NotFound-class configuration gaps,
// never retried; callers surface them as "heat guidance unavailable".
const (
	ReasonNoGoverningBody  = "team season has no governing body configured"
	ReasonNoMatchingPolicy = "no policy matches the governing body and sport"
)

// ResolutionError reports that no policy applies to a team-season. It carries
// a distinguishing reason so callers can tell a missing governing body from an
// empty candidate set.
type ResolutionError struct {
	TeamSeasonID string
	Reason       string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("policy resolution failed for team season %s: %s", e.TeamSeasonID, e.Reason)
}

func (e *ResolutionError) IsTransient() bool {
	return false
}

// Resolution is the outcome of a successful resolve. CacheWarning is non-nil
// when the policy resolved but the best-effort cache write onto the
// team-season row failed; resolution itself never fails for that.
type Resolution struct {
	Policy       *models.HeatPolicy
	Source       ResolutionSource
	CacheWarning error
}

// ResolverService resolves the single applicable heat policy for a
// team-season: an explicit pin always wins, otherwise candidates are
// discovered by governing body and sport key and ranked deterministically.
type ResolverService struct {
	repo    repository.PolicyRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewResolverService creates a new resolver service.
func NewResolverService(repo repository.PolicyRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ResolverService {
	return &ResolverService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ResolveForTeamSeason loads the team-season context and resolves its policy.
func (s *ResolverService) ResolveForTeamSeason(ctx context.Context, teamSeasonID string) (*Resolution, error) {
	season, err := s.repo.GetTeamSeason(ctx, teamSeasonID)
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, season)
}

// Resolve returns the single applicable policy for a team-season context.
func (s *ResolverService) Resolve(ctx context.Context, season *models.TeamSeasonContext) (*Resolution, error) {
	// An explicit pin always wins. A dangling pin (the policy was deleted
	// after pinning) falls through to auto-discovery instead of failing the
	// whole resolution.
	if season.PinnedPolicyID != nil {
		policy, err := s.repo.GetPolicy(ctx, *season.PinnedPolicyID)
		if err == nil {
			s.metrics.RecordResolution(string(SourcePinned), "resolved")
			return &Resolution{Policy: policy, Source: SourcePinned}, nil
		}

		var notFound *repository.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}

		s.logger.Warn(ctx, "[RESOLVE_DANGLING_PIN] Pinned policy no longer exists, falling back to discovery", logging.Fields{
			"team_season_id": season.ID,
			"policy_id":      *season.PinnedPolicyID,
		})
	}

	if season.GoverningBody == nil {
		s.metrics.RecordResolution(string(SourceDiscovered), "not_found")
		return nil, &ResolutionError{TeamSeasonID: season.ID, Reason: ReasonNoGoverningBody}
	}

	sportKey := season.SportKey()

	candidates, err := s.repo.ListCandidates(ctx, *season.GoverningBody, sportKey)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		s.metrics.RecordResolution(string(SourceDiscovered), "not_found")
		return nil, &ResolutionError{TeamSeasonID: season.ID, Reason: ReasonNoMatchingPolicy}
	}

	// Season-year filter: a policy from the future does not yet apply. When
	// the filter empties the set, fall back to the full candidate list —
	// some guidance beats no guidance, even if it means a future effective
	// year applying to a past season.
	filtered := candidates
	if season.SeasonYear != nil {
		filtered = filterByEffectiveYear(candidates, *season.SeasonYear)
		if len(filtered) == 0 {
			filtered = candidates
		}
	}

	RankPolicies(filtered)
	policy := filtered[0]

	s.metrics.RecordResolution(string(SourceDiscovered), "resolved")

	resolution := &Resolution{Policy: policy, Source: SourceDiscovered}

	// Best-effort cache: remember the discovered policy on the team-season
	// row so the next resolution short-circuits through the pin path. A
	// failed write is reported as a warning, never as a resolution failure.
	if season.PinnedPolicyID == nil {
		if cacheErr := s.repo.CacheResolvedPolicy(ctx, season.ID, policy.ID); cacheErr != nil {
			s.logger.Warn(ctx, "[RESOLVE_CACHE_FAILED] Could not cache resolved policy", logging.Fields{
				"team_season_id": season.ID,
				"policy_id":      policy.ID,
				"error":          cacheErr.Error(),
			})
			resolution.CacheWarning = cacheErr
		}
	}

	s.logger.Debug(ctx, "[RESOLVE_SUCCESS] Policy resolved", logging.Fields{
		"team_season_id": season.ID,
		"policy_id":      policy.ID,
		"source":         resolution.Source,
	})

	return resolution, nil
}

// filterByEffectiveYear keeps policies whose effective year is unset or does
// not postdate the season year.
func filterByEffectiveYear(policies []*models.HeatPolicy, seasonYear int) []*models.HeatPolicy {
	kept := make([]*models.HeatPolicy, 0, len(policies))
	for _, p := range policies {
		if p.EffectiveYear == nil || *p.EffectiveYear <= seasonYear {
			kept = append(kept, p)
		}
	}
	return kept
}

// RankPolicies sorts candidates in place by preference:
//  1. higher effective year wins (a missing year sorts lowest),
//  2. is_default wins ties,
//  3. id ascending as the final deterministic tie-break.
//
// The sort is stable so equal candidates keep their repository order.
func RankPolicies(policies []*models.HeatPolicy) {
	sort.SliceStable(policies, func(i, j int) bool {
		yi, yj := effectiveYearOrLowest(policies[i]), effectiveYearOrLowest(policies[j])
		if yi != yj {
			return yi > yj
		}
		if policies[i].IsDefault != policies[j].IsDefault {
			return policies[i].IsDefault
		}
		return policies[i].ID < policies[j].ID
	})
}

func effectiveYearOrLowest(p *models.HeatPolicy) int {
	if p.EffectiveYear == nil {
		return -1 << 31
	}
	return *p.EffectiveYear
}
