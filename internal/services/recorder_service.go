package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"heatwatch/internal/models"
	"heatwatch/internal/repository"
	"heatwatch/pkg/logging"
	"heatwatch/pkg/metrics"
)

// Readings carries one practice's raw conditions into a recording call.
// Fahrenheit/mph values are the provider's native units; metric mirrors are
// derived at recording time. RawPayload keeps the provider's day record
// verbatim for the audit trail.
type Readings struct {
	Source       models.SnapshotSource
	WBGTF        *float64
	TempF        *float64
	HumidityPct  *float64
	WindMph      *float64
	WeatherCode  *int
	Summary      *string
	LocationName *string
	Latitude     *float64
	Longitude    *float64
	RawPayload   json.RawMessage
}

// RecorderService writes one practice's classification outcome: an immutable
// snapshot row for history plus the practice's denormalized summary fields
// for fast UI reads. The two writes are independent; history degrading never
// blocks the summary update.
type RecorderService struct {
	resolver *ResolverService
	repo     repository.PracticeRepository
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
	clock    clockwork.Clock
}

// NewRecorderService creates a new recorder service.
func NewRecorderService(
	resolver *ResolverService,
	repo repository.PracticeRepository,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
	clock clockwork.Clock,
) *RecorderService {
	return &RecorderService{
		resolver: resolver,
		repo:     repo,
		logger:   logger,
		metrics:  metricsCollector,
		clock:    clock,
	}
}

// Record classifies the readings under the practice's resolved policy and
// persists both the snapshot row and the summary fields.
//
// A failed policy resolution downgrades to heat_risk = nil rather than
// aborting: the raw conditions are still worth recording. A failed snapshot
// insert is logged and swallowed. Only a failed summary update is reported
// as the practice's recording failure.
func (s *RecorderService) Record(ctx context.Context, practice *models.PracticeSession, readings Readings) error {
	var (
		policy        *models.HeatPolicy
		policyID      *string
		governingBody *models.GoverningBody
	)

	resolution, err := s.resolver.ResolveForTeamSeason(ctx, practice.TeamSeasonID)
	if err != nil {
		s.logger.Warn(ctx, "[RECORD_NO_POLICY] No applicable policy, recording conditions without classification", logging.Fields{
			"practice_id":    practice.ID,
			"team_season_id": practice.TeamSeasonID,
			"reason":         err.Error(),
		})
	} else {
		policy = resolution.Policy
		policyID = &policy.ID
		governingBody = &policy.GoverningBody
	}

	var risk *models.RiskBand
	if policy != nil && readings.WBGTF != nil {
		risk = policy.Classify(readings.WBGTF)
	}

	if risk != nil {
		s.metrics.RecordClassification(string(*risk))
	} else {
		s.metrics.RecordClassification("")
	}

	wbgtC := models.FahrenheitToCelsius(readings.WBGTF)

	snapshot := &models.WeatherSnapshot{
		ID:            uuid.New().String(),
		PracticeID:    practice.ID,
		Source:        readings.Source,
		LocationName:  readings.LocationName,
		Latitude:      readings.Latitude,
		Longitude:     readings.Longitude,
		WBGTF:         readings.WBGTF,
		WBGTC:         wbgtC,
		TempF:         readings.TempF,
		TempC:         models.FahrenheitToCelsius(readings.TempF),
		HumidityPct:   readings.HumidityPct,
		WindMph:       readings.WindMph,
		WindKph:       models.MphToKph(readings.WindMph),
		WeatherCode:   readings.WeatherCode,
		Summary:       readings.Summary,
		HeatRisk:      risk,
		GoverningBody: governingBody,
		PolicyID:      policyID,
		RawPayload:    readings.RawPayload,
		CreatedAt:     s.clock.Now().UTC(),
	}

	if err := s.repo.CreateSnapshot(ctx, snapshot); err != nil {
		// History degraded, but the summary update is independently
		// valuable; continue.
		s.logger.Error(ctx, "[RECORD_SNAPSHOT_ERROR] Failed to write snapshot row", logging.Fields{
			"practice_id": practice.ID,
		}, err)
	}

	if err := s.repo.UpdateHeatSummary(ctx, practice.ID, readings.WBGTF, wbgtC, risk); err != nil {
		return fmt.Errorf("failed to update practice heat summary: %w", err)
	}

	return nil
}
