package models

import (
	"time"
)

// GoverningBody identifies the sanctioning organization whose published
// heat-acclimatization guidelines a policy encodes.
type GoverningBody string

const (
	GoverningBodyNFHS  GoverningBody = "nfhs"
	GoverningBodyNCAA  GoverningBody = "ncaa"
	GoverningBodyNAIA  GoverningBody = "naia"
	GoverningBodyOther GoverningBody = "other"
)

// Valid reports whether the governing body is one of the known values.
func (g GoverningBody) Valid() bool {
	switch g {
	case GoverningBodyNFHS, GoverningBodyNCAA, GoverningBodyNAIA, GoverningBodyOther:
		return true
	}
	return false
}

// WBGTUnit is the unit system a policy's thresholds are stored in.
type WBGTUnit string

const (
	WBGTUnitF WBGTUnit = "F"
	WBGTUnitC WBGTUnit = "C"
)

// RiskBand is the classification output for a WBGT reading under a policy.
// A nil *RiskBand means "unclassifiable": the policy had insufficient guidance
// for the value, which is a legitimate terminal result rather than an error.
type RiskBand string

const (
	RiskLow      RiskBand = "low"
	RiskModerate RiskBand = "moderate"
	RiskHigh     RiskBand = "high"
	RiskExtreme  RiskBand = "extreme"
)

// HeatPolicy is a named set of WBGT classification rules published by a
// governing body. Policies are seeded administratively and read-only here.
// Any threshold may be absent, representing partial or no guidance for that
// band; SportKey nil means the policy applies to any sport.
type HeatPolicy struct {
	ID               string         `json:"id" db:"id"`
	Label            string         `json:"label" db:"label"`
	GoverningBody    GoverningBody  `json:"governing_body" db:"governing_body"`
	CompetitionLevel *string        `json:"competition_level,omitempty" db:"competition_level"`
	SportKey         *string        `json:"sport_key,omitempty" db:"sport_key"`
	WBGTUnit         WBGTUnit       `json:"wbgt_unit" db:"wbgt_unit"`
	LowMax           *float64       `json:"low_max,omitempty" db:"low_max"`
	ModerateMin      *float64       `json:"moderate_min,omitempty" db:"moderate_min"`
	ModerateMax      *float64       `json:"moderate_max,omitempty" db:"moderate_max"`
	HighMin          *float64       `json:"high_min,omitempty" db:"high_min"`
	HighMax          *float64       `json:"high_max,omitempty" db:"high_max"`
	ExtremeMin       *float64       `json:"extreme_min,omitempty" db:"extreme_min"`
	GuidelineLow     *string        `json:"guideline_low,omitempty" db:"guideline_low"`
	GuidelineModerate *string       `json:"guideline_moderate,omitempty" db:"guideline_moderate"`
	GuidelineHigh    *string        `json:"guideline_high,omitempty" db:"guideline_high"`
	GuidelineExtreme *string        `json:"guideline_extreme,omitempty" db:"guideline_extreme"`
	EffectiveYear    *int           `json:"effective_year,omitempty" db:"effective_year"`
	IsDefault        bool           `json:"is_default" db:"is_default"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// HasThresholds reports whether the policy defines at least one threshold.
// A policy with zero guidance cannot classify anything.
func (p *HeatPolicy) HasThresholds() bool {
	return p.LowMax != nil || p.ModerateMin != nil || p.ModerateMax != nil ||
		p.HighMin != nil || p.HighMax != nil || p.ExtremeMin != nil
}

// Classify maps a WBGT reading in Fahrenheit onto the policy's risk bands.
// Returns nil when the reading cannot be classified: missing reading, a policy
// with no thresholds, or a value falling into a gap between defined bands.
//
// Band tests run in a fixed order (extreme, high, moderate, low) and the first
// satisfied test wins, so the result is deterministic even when a policy's
// thresholds are mis-ordered. The classifier never interpolates across gaps.
func (p *HeatPolicy) Classify(wbgtF *float64) *RiskBand {
	if wbgtF == nil {
		return nil
	}

	// Thresholds are stored pre-converted into the policy's declared unit;
	// convert the reading once so units are never mixed.
	value := *wbgtF
	if p.WBGTUnit == WBGTUnitC {
		value = *FahrenheitToCelsius(wbgtF)
	}

	if !p.HasThresholds() {
		return nil
	}

	switch {
	case p.ExtremeMin != nil && value >= *p.ExtremeMin:
		return riskBandPtr(RiskExtreme)
	case p.HighMin != nil && p.HighMax != nil && value >= *p.HighMin && value <= *p.HighMax:
		return riskBandPtr(RiskHigh)
	case p.ModerateMin != nil && p.ModerateMax != nil && value >= *p.ModerateMin && value <= *p.ModerateMax:
		return riskBandPtr(RiskModerate)
	case p.LowMax != nil && value <= *p.LowMax:
		return riskBandPtr(RiskLow)
	}

	return nil
}

func riskBandPtr(b RiskBand) *RiskBand {
	return &b
}
