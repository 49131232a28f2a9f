package models

import (
	"time"
)

// PracticeSession is one scheduled team activity on one calendar date.
// Scheduling features own the record; this engine only writes the three
// denormalized heat summary fields, which always reflect the most recently
// completed recording run.
type PracticeSession struct {
	ID           string    `json:"id" db:"id"`
	TeamSeasonID string    `json:"team_season_id" db:"team_season_id"`
	PracticeDate time.Time `json:"practice_date" db:"practice_date"`
	WBGTF        *float64  `json:"wbgt_f,omitempty" db:"wbgt_f"`
	WBGTC        *float64  `json:"wbgt_c,omitempty" db:"wbgt_c"`
	HeatRisk     *RiskBand `json:"heat_risk,omitempty" db:"heat_risk"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// DateKey returns the practice date as YYYY-MM-DD, the key used to join a
// practice to its calendar-day forecast entry.
func (p *PracticeSession) DateKey() string {
	return p.PracticeDate.Format("2006-01-02")
}
