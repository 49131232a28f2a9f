package models

import (
	"strings"
	"time"
)

// TeamSeasonContext scopes policy resolution: one team's participation in one
// competitive year. GoverningBody nil is a configuration gap that blocks
// auto-discovery; PinnedPolicyID is an explicit administrator override that
// doubles as a resolution cache.
type TeamSeasonContext struct {
	ID             string         `json:"id" db:"id"`
	TeamID         string         `json:"team_id" db:"team_id"`
	ProgramID      string         `json:"program_id" db:"program_id"`
	TeamSport      string         `json:"team_sport" db:"team_sport"`
	ProgramSport   string         `json:"program_sport" db:"program_sport"`
	SeasonYear     *int           `json:"season_year,omitempty" db:"season_year"`
	GoverningBody  *GoverningBody `json:"governing_body,omitempty" db:"governing_body"`
	PinnedPolicyID *string        `json:"pinned_policy_id,omitempty" db:"pinned_policy_id"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// sportKeyMarkers are the substrings that collapse cross-country and
// track-and-field variants onto the canonical key. The heuristic is narrow
// and coupled to one sport family; extending it to other sports means adding
// canonical keys here rather than changing the matching shape.
var sportKeyMarkers = []string{"xc", "cross", "distance", "track", "tf"}

// SportKeyXCTF is the canonical key for cross-country / track & field teams.
const SportKeyXCTF = "xc_tf"

// SportKey derives the canonical sport key used for policy matching from the
// first non-empty of the team's and program's sport strings. An empty or
// unknown sport yields nil, which matches sport-agnostic policies only.
func (s *TeamSeasonContext) SportKey() *string {
	raw := s.TeamSport
	if strings.TrimSpace(raw) == "" {
		raw = s.ProgramSport
	}

	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return nil
	}

	for _, marker := range sportKeyMarkers {
		if strings.Contains(raw, marker) {
			key := SportKeyXCTF
			return &key
		}
	}

	return &raw
}
