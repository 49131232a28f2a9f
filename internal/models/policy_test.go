package models

import (
	"testing"
)

// nfhsStylePolicy mirrors the published NFHS-style band layout used across
// classification tests: four contiguous bands with a deliberate gap between
// moderate_max (86.9) and high_min (87).
func nfhsStylePolicy() *HeatPolicy {
	return &HeatPolicy{
		ID:            "pol-nfhs-2024",
		Label:         "NFHS Heat Guidelines 2024",
		GoverningBody: GoverningBodyNFHS,
		WBGTUnit:      WBGTUnitF,
		LowMax:        floatPtr(82),
		ModerateMin:   floatPtr(82.1),
		ModerateMax:   floatPtr(86.9),
		HighMin:       floatPtr(87),
		HighMax:       floatPtr(89.9),
		ExtremeMin:    floatPtr(90),
	}
}

func TestHeatPolicy_Classify(t *testing.T) {
	tests := []struct {
		name   string
		policy *HeatPolicy
		wbgtF  *float64
		want   *RiskBand
	}{
		{
			name:   "low band",
			policy: nfhsStylePolicy(),
			wbgtF:  floatPtr(81.9),
			want:   riskBandPtr(RiskLow),
		},
		{
			name:   "moderate band",
			policy: nfhsStylePolicy(),
			wbgtF:  floatPtr(85),
			want:   riskBandPtr(RiskModerate),
		},
		{
			name:   "high band",
			policy: nfhsStylePolicy(),
			wbgtF:  floatPtr(88),
			want:   riskBandPtr(RiskHigh),
		},
		{
			name:   "extreme band",
			policy: nfhsStylePolicy(),
			wbgtF:  floatPtr(95),
			want:   riskBandPtr(RiskExtreme),
		},
		{
			name:   "gap between moderate and high is unclassifiable",
			policy: nfhsStylePolicy(),
			wbgtF:  floatPtr(86.95),
			want:   nil,
		},
		{
			name:   "band boundary is inclusive",
			policy: nfhsStylePolicy(),
			wbgtF:  floatPtr(86.9),
			want:   riskBandPtr(RiskModerate),
		},
		{
			name:   "extreme minimum is inclusive",
			policy: nfhsStylePolicy(),
			wbgtF:  floatPtr(90),
			want:   riskBandPtr(RiskExtreme),
		},
		{
			name:   "nil reading",
			policy: nfhsStylePolicy(),
			wbgtF:  nil,
			want:   nil,
		},
		{
			name: "policy with no thresholds",
			policy: &HeatPolicy{
				ID:            "pol-empty",
				GoverningBody: GoverningBodyOther,
				WBGTUnit:      WBGTUnitF,
			},
			wbgtF: floatPtr(95),
			want:  nil,
		},
		{
			name: "celsius policy converts the reading before comparing",
			policy: &HeatPolicy{
				ID:            "pol-ncaa-c",
				GoverningBody: GoverningBodyNCAA,
				WBGTUnit:      WBGTUnitC,
				LowMax:        floatPtr(27.8),
				ExtremeMin:    floatPtr(32.2),
			},
			// 90°F = 32.22°C, just past the Celsius extreme threshold.
			wbgtF: floatPtr(90.1),
			want:  riskBandPtr(RiskExtreme),
		},
		{
			name: "partial guidance with only an extreme threshold",
			policy: &HeatPolicy{
				ID:            "pol-extreme-only",
				GoverningBody: GoverningBodyNAIA,
				WBGTUnit:      WBGTUnitF,
				ExtremeMin:    floatPtr(92),
			},
			wbgtF: floatPtr(85),
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.Classify(tt.wbgtF)

			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Classify() = %v, want %v", got, tt.want)
			}

			if got != nil && *got != *tt.want {
				t.Errorf("Classify() = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestHeatPolicy_HasThresholds(t *testing.T) {
	empty := &HeatPolicy{}
	if empty.HasThresholds() {
		t.Error("policy with no thresholds should report HasThresholds() = false")
	}

	partial := &HeatPolicy{HighMin: floatPtr(87)}
	if !partial.HasThresholds() {
		t.Error("policy with one threshold should report HasThresholds() = true")
	}
}

func TestTeamSeasonContext_SportKey(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	tests := []struct {
		name         string
		teamSport    string
		programSport string
		want         *string
	}{
		{name: "cross country maps to canonical key", teamSport: "Cross Country", want: strPtr(SportKeyXCTF)},
		{name: "track and field maps to canonical key", teamSport: "Track & Field", want: strPtr(SportKeyXCTF)},
		{name: "xc abbreviation", teamSport: "Girls XC", want: strPtr(SportKeyXCTF)},
		{name: "distance running", teamSport: "Distance Running", want: strPtr(SportKeyXCTF)},
		{name: "other sports pass through lowercased", teamSport: "Football", want: strPtr("football")},
		{name: "program sport used when team sport empty", teamSport: "", programSport: "Indoor Track", want: strPtr(SportKeyXCTF)},
		{name: "empty sport yields nil", teamSport: "", programSport: "", want: nil},
		{name: "whitespace-only sport yields nil", teamSport: "   ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			season := &TeamSeasonContext{TeamSport: tt.teamSport, ProgramSport: tt.programSport}
			got := season.SportKey()

			if (got == nil) != (tt.want == nil) {
				t.Fatalf("SportKey() = %v, want %v", got, tt.want)
			}

			if got != nil && *got != *tt.want {
				t.Errorf("SportKey() = %q, want %q", *got, *tt.want)
			}
		})
	}
}
