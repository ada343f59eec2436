package models

import (
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// ScoringSystem selects how a series aggregates its results.
type ScoringSystem string

const (
	ScoringPoints    ScoringSystem = "points"
	ScoringTime      ScoringSystem = "time"
	ScoringPlacement ScoringSystem = "placement"
)

// RaceSeries is a named set of races aggregated into one standings table.
type RaceSeries struct {
	bun.BaseModel `bun:"table:race_series,alias:rs"`

	ID               int           `bun:"id,pk,autoincrement" json:"id"`
	Name             string        `bun:"name,notnull" json:"name"`
	Description      string        `bun:"description,notnull,default:''" json:"description,omitempty"`
	Year             int           `bun:"year,notnull" json:"year"`
	StartDate        *string       `bun:"start_date,type:date" json:"startDate,omitempty"`
	EndDate          *string       `bun:"end_date,type:date" json:"endDate,omitempty"`
	ScoringSystem    ScoringSystem `bun:"scoring_system,notnull,default:'points'" json:"scoringSystem"`
	MinimumRaces     int           `bun:"minimum_races,notnull,default:1" json:"minimumRaces"`
	MaxRacesForScore *int          `bun:"max_races_for_score" json:"maxRacesForScore,omitempty"`
	IsActive         bool          `bun:"is_active,notnull,default:true" json:"isActive"`
	IsPrivate        bool          `bun:"is_private,notnull,default:false" json:"isPrivate"`
}

// RaceSeriesRace links a race into a series.
type RaceSeriesRace struct {
	bun.BaseModel `bun:"table:race_series_races,alias:srr"`

	SeriesID         int             `bun:"series_id,notnull" json:"seriesID"`
	RaceID           int             `bun:"race_id,notnull" json:"raceID"`
	SeriesRaceNumber int             `bun:"series_race_number,notnull" json:"seriesRaceNumber"`
	PointsMultiplier decimal.Decimal `bun:"points_multiplier,type:numeric(6,2),notnull,default:1.00" json:"pointsMultiplier"`

	Race *Race `bun:"rel:belongs-to,join:race_id=id" json:"race,omitempty"`
}

// SeriesParticipant is one allowlisted runner of a private series.
type SeriesParticipant struct {
	bun.BaseModel `bun:"table:series_participants,alias:sp"`

	SeriesID int `bun:"series_id,notnull" json:"seriesID"`
	RunnerID int `bun:"runner_id,notnull" json:"runnerID"`
}
