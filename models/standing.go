package models

import "github.com/shopspring/decimal"

// ScoredResult is a result with the points it earned in a series.
// Counted is false when the result fell outside the runner's top-N scoring set.
type ScoredResult struct {
	Result  Result          `json:"result"`
	Race    *Race           `json:"race,omitempty"`
	Points  decimal.Decimal `json:"points"`
	Counted bool            `json:"counted"`
}

// SeriesStanding is one runner's aggregated position. Not persisted.
type SeriesStanding struct {
	Rank           int             `json:"rank"`
	Runner         Runner          `json:"runner"`
	TotalPoints    decimal.Decimal `json:"totalPoints"`
	AveragePoints  decimal.Decimal `json:"averagePoints"`
	RacesCompleted int             `json:"racesCompleted"`
	BestRacePoints decimal.Decimal `json:"bestRacePoints"`
	Results        []ScoredResult  `json:"results"`
}

// SeriesLeaderboard is the computed standings table for a series.
type SeriesLeaderboard struct {
	Series            RaceSeries       `json:"series"`
	Standings         []SeriesStanding `json:"standings"`
	TotalParticipants int              `json:"totalParticipants"`
}
