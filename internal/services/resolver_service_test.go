package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heatwatch/internal/models"
	"heatwatch/internal/repository"
	"heatwatch/pkg/logging"
	"heatwatch/pkg/metrics"
)

// One collector for the whole package: promauto registers with the default
// registry, so per-test collectors would collide.
var testMetrics = metrics.NewCollector("heatwatch_services_test")

func newTestLogger() *logging.StructuredLogger {
	logger := logging.NewStructuredLogger("test", "test", logging.ErrorLevel)
	logger.SetOutput(io.Discard)
	return logger
}

// fakePolicyRepo is an in-memory PolicyRepository.
type fakePolicyRepo struct {
	policies map[string]*models.HeatPolicy
	seasons  map[string]*models.TeamSeasonContext

	getPolicyErr error
	cacheErr     error

	// cached records CacheResolvedPolicy calls as teamSeasonID -> policyID.
	cached map[string]string
}

func newFakePolicyRepo() *fakePolicyRepo {
	return &fakePolicyRepo{
		policies: make(map[string]*models.HeatPolicy),
		seasons:  make(map[string]*models.TeamSeasonContext),
		cached:   make(map[string]string),
	}
}

func (f *fakePolicyRepo) addPolicy(p *models.HeatPolicy) {
	f.policies[p.ID] = p
}

func (f *fakePolicyRepo) GetPolicy(ctx context.Context, policyID string) (*models.HeatPolicy, error) {
	if f.getPolicyErr != nil {
		return nil, f.getPolicyErr
	}
	p, ok := f.policies[policyID]
	if !ok {
		return nil, &repository.NotFoundError{Resource: "heat_policy", ID: policyID}
	}
	return p, nil
}

func (f *fakePolicyRepo) ListCandidates(ctx context.Context, body models.GoverningBody, sportKey *string) ([]*models.HeatPolicy, error) {
	var out []*models.HeatPolicy
	for _, p := range f.policies {
		if p.GoverningBody != body {
			continue
		}
		if p.SportKey == nil {
			out = append(out, p)
			continue
		}
		if sportKey != nil && *p.SportKey == *sportKey {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePolicyRepo) ListPolicies(ctx context.Context, filter repository.PolicyFilter) ([]*models.HeatPolicy, int, error) {
	var out []*models.HeatPolicy
	for _, p := range f.policies {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakePolicyRepo) GetTeamSeason(ctx context.Context, teamSeasonID string) (*models.TeamSeasonContext, error) {
	s, ok := f.seasons[teamSeasonID]
	if !ok {
		return nil, &repository.NotFoundError{Resource: "team_season", ID: teamSeasonID}
	}
	return s, nil
}

func (f *fakePolicyRepo) CacheResolvedPolicy(ctx context.Context, teamSeasonID, policyID string) error {
	if f.cacheErr != nil {
		return f.cacheErr
	}
	f.cached[teamSeasonID] = policyID
	return nil
}

func testPolicy(id string, body models.GoverningBody, year *int) *models.HeatPolicy {
	return &models.HeatPolicy{
		ID:            id,
		Label:         "Policy " + id,
		GoverningBody: body,
		WBGTUnit:      models.WBGTUnitF,
		LowMax:        fp(82),
		ModerateMin:   fp(82.1),
		ModerateMax:   fp(86.9),
		HighMin:       fp(87),
		HighMax:       fp(89.9),
		ExtremeMin:    fp(90),
		EffectiveYear: year,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }
func sp(v string) *string   { return &v }
func gp(v models.GoverningBody) *models.GoverningBody {
	return &v
}

func xcSeason(id string, body *models.GoverningBody) *models.TeamSeasonContext {
	return &models.TeamSeasonContext{
		ID:            id,
		TeamID:        "team-1",
		ProgramID:     "program-1",
		TeamSport:     "Cross Country",
		SeasonYear:    ip(2024),
		GoverningBody: body,
	}
}

func TestResolve_PinnedPolicyWins(t *testing.T) {
	repo := newFakePolicyRepo()
	pinned := testPolicy("pinned-1", models.GoverningBodyNCAA, ip(2020))
	better := testPolicy("newer-1", models.GoverningBodyNFHS, ip(2024))
	better.SportKey = sp(models.SportKeyXCTF)
	repo.addPolicy(pinned)
	repo.addPolicy(better)

	season := xcSeason("ts-1", gp(models.GoverningBodyNFHS))
	season.PinnedPolicyID = sp("pinned-1")

	svc := NewResolverService(repo, newTestLogger(), testMetrics)
	res, err := svc.Resolve(context.Background(), season)

	require.NoError(t, err)
	assert.Equal(t, "pinned-1", res.Policy.ID)
	assert.Equal(t, SourcePinned, res.Source)
	assert.NoError(t, res.CacheWarning)
	assert.Empty(t, repo.cached, "pinned resolution should not rewrite the cache")
}

func TestResolve_DanglingPinFallsBackToDiscovery(t *testing.T) {
	repo := newFakePolicyRepo()
	discovered := testPolicy("nfhs-xc", models.GoverningBodyNFHS, ip(2023))
	discovered.SportKey = sp(models.SportKeyXCTF)
	repo.addPolicy(discovered)

	season := xcSeason("ts-1", gp(models.GoverningBodyNFHS))
	season.PinnedPolicyID = sp("deleted-policy")

	svc := NewResolverService(repo, newTestLogger(), testMetrics)
	res, err := svc.Resolve(context.Background(), season)

	require.NoError(t, err)
	assert.Equal(t, "nfhs-xc", res.Policy.ID)
	assert.Equal(t, SourceDiscovered, res.Source)
	// The stale pin still occupies the column; discovery must not overwrite it.
	assert.Empty(t, repo.cached)
}

func TestResolve_PinLookupErrorPropagates(t *testing.T) {
	repo := newFakePolicyRepo()
	repo.getPolicyErr = errors.New("connection refused")

	season := xcSeason("ts-1", gp(models.GoverningBodyNFHS))
	season.PinnedPolicyID = sp("pinned-1")

	svc := NewResolverService(repo, newTestLogger(), testMetrics)
	_, err := svc.Resolve(context.Background(), season)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestResolve_NoGoverningBody(t *testing.T) {
	repo := newFakePolicyRepo()
	repo.addPolicy(testPolicy("nfhs-1", models.GoverningBodyNFHS, nil))

	season := xcSeason("ts-1", nil)

	svc := NewResolverService(repo, newTestLogger(), testMetrics)
	_, err := svc.Resolve(context.Background(), season)

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, ReasonNoGoverningBody, resErr.Reason)
	assert.False(t, resErr.IsTransient())
}

func TestResolve_NoMatchingPolicy(t *testing.T) {
	repo := newFakePolicyRepo()
	repo.addPolicy(testPolicy("ncaa-1", models.GoverningBodyNCAA, nil))

	season := xcSeason("ts-1", gp(models.GoverningBodyNFHS))

	svc := NewResolverService(repo, newTestLogger(), testMetrics)
	_, err := svc.Resolve(context.Background(), season)

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, ReasonNoMatchingPolicy, resErr.Reason)
}

func TestResolve_SeasonYearFilter(t *testing.T) {
	repo := newFakePolicyRepo()
	repo.addPolicy(testPolicy("nfhs-2022", models.GoverningBodyNFHS, ip(2022)))
	repo.addPolicy(testPolicy("nfhs-2026", models.GoverningBodyNFHS, ip(2026)))

	season := xcSeason("ts-1", gp(models.GoverningBodyNFHS))
	season.SeasonYear = ip(2024)

	svc := NewResolverService(repo, newTestLogger(), testMetrics)
	res, err := svc.Resolve(context.Background(), season)

	require.NoError(t, err)
	assert.Equal(t, "nfhs-2022", res.Policy.ID, "2026 policy does not yet apply to a 2024 season")
}

func TestResolve_YearFilterFallsBackWhenEmpty(t *testing.T) {
	repo := newFakePolicyRepo()
	repo.addPolicy(testPolicy("nfhs-2026", models.GoverningBodyNFHS, ip(2026)))

	season := xcSeason("ts-1", gp(models.GoverningBodyNFHS))
	season.SeasonYear = ip(2024)

	svc := NewResolverService(repo, newTestLogger(), testMetrics)
	res, err := svc.Resolve(context.Background(), season)

	require.NoError(t, err)
	assert.Equal(t, "nfhs-2026", res.Policy.ID, "future guidance beats no guidance")
}

func TestResolve_CachesDiscoveredPolicy(t *testing.T) {
	repo := newFakePolicyRepo()
	repo.addPolicy(testPolicy("nfhs-1", models.GoverningBodyNFHS, ip(2023)))

	season := xcSeason("ts-1", gp(models.GoverningBodyNFHS))

	svc := NewResolverService(repo, newTestLogger(), testMetrics)
	res, err := svc.Resolve(context.Background(), season)

	require.NoError(t, err)
	assert.Equal(t, "nfhs-1", repo.cached["ts-1"])
	assert.NoError(t, res.CacheWarning)
}

func TestResolve_CacheFailureIsAWarningNotAnError(t *testing.T) {
	repo := newFakePolicyRepo()
	repo.addPolicy(testPolicy("nfhs-1", models.GoverningBodyNFHS, ip(2023)))
	repo.cacheErr = fmt.Errorf("deadlock detected")

	season := xcSeason("ts-1", gp(models.GoverningBodyNFHS))

	svc := NewResolverService(repo, newTestLogger(), testMetrics)
	res, err := svc.Resolve(context.Background(), season)

	require.NoError(t, err)
	require.NotNil(t, res.Policy)
	assert.Equal(t, "nfhs-1", res.Policy.ID)
	assert.ErrorContains(t, res.CacheWarning, "deadlock detected")
}

func TestResolveForTeamSeason_UnknownSeason(t *testing.T) {
	repo := newFakePolicyRepo()

	svc := NewResolverService(repo, newTestLogger(), testMetrics)
	_, err := svc.ResolveForTeamSeason(context.Background(), "missing")

	var notFound *repository.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "team_season", notFound.Resource)
}

func TestRankPolicies(t *testing.T) {
	noYear := testPolicy("a-no-year", models.GoverningBodyNFHS, nil)
	y2022 := testPolicy("b-2022", models.GoverningBodyNFHS, ip(2022))
	y2024 := testPolicy("c-2024", models.GoverningBodyNFHS, ip(2024))
	y2024Default := testPolicy("a-2024-default", models.GoverningBodyNFHS, ip(2024))
	y2024Default.IsDefault = true

	policies := []*models.HeatPolicy{noYear, y2022, y2024, y2024Default}
	RankPolicies(policies)

	got := make([]string, len(policies))
	for i, p := range policies {
		got[i] = p.ID
	}

	assert.Equal(t, []string{"a-2024-default", "c-2024", "b-2022", "a-no-year"}, got)
}

func TestRankPolicies_IDTieBreak(t *testing.T) {
	p1 := testPolicy("zeta", models.GoverningBodyNFHS, ip(2024))
	p2 := testPolicy("alpha", models.GoverningBodyNFHS, ip(2024))

	policies := []*models.HeatPolicy{p1, p2}
	RankPolicies(policies)

	assert.Equal(t, "alpha", policies[0].ID)
}
