package models

import "github.com/uptrace/bun"

// Race distances.
const (
	DistanceMarathon     = "marathon"
	DistanceHalfMarathon = "half-marathon"
	DistanceTenMile      = "10-mile"
	DistanceTenK         = "10k"
	DistanceFiveK        = "5k"
	DistanceOther        = "other"
)

// Race is a single race event. TotalFinishers and AverageTime are refreshed
// after every import into the race.
type Race struct {
	bun.BaseModel `bun:"table:races,alias:rc"`

	ID             int     `bun:"id,pk,autoincrement" json:"id"`
	Name           string  `bun:"name,notnull" json:"name"`
	Date           string  `bun:"date,notnull,type:date" json:"date"`
	Distance       string  `bun:"distance,notnull" json:"distance"`
	DistanceMiles  float64 `bun:"distance_miles,notnull,default:0" json:"distanceMiles"`
	TotalFinishers int     `bun:"total_finishers,notnull,default:0" json:"totalFinishers"`
	AverageTime    *string `bun:"average_time" json:"averageTime,omitempty"`
}

// ValidDistance reports whether d is one of the known distance codes.
func ValidDistance(d string) bool {
	switch d {
	case DistanceMarathon, DistanceHalfMarathon, DistanceTenMile, DistanceTenK, DistanceFiveK, DistanceOther:
		return true
	}
	return false
}
