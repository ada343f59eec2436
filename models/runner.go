package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Gender codes stored on runners.
const (
	GenderMale      = "M"
	GenderFemale    = "F"
	GenderNonBinary = "NB"
)

// Runner is a resolved runner identity. Age is the age at the first observed
// result and is never recalculated.
type Runner struct {
	bun.BaseModel `bun:"table:runners,alias:rn"`

	ID                 int       `bun:"id,pk,autoincrement" json:"id"`
	Name               string    `bun:"name,notnull" json:"name"`
	AlternateNames     []string  `bun:"alternate_names,array" json:"alternateNames,omitempty"`
	MatchKeys          []string  `bun:"match_keys,array" json:"-"`
	Gender             string    `bun:"gender,notnull" json:"gender"`
	Age                *int      `bun:"age" json:"age,omitempty"`
	City               string    `bun:"city,notnull,default:''" json:"city,omitempty"`
	State              string    `bun:"state,notnull,default:''" json:"state,omitempty"`
	Verified           bool      `bun:"verified,notnull,default:false" json:"verified"`
	MatchingConfidence int       `bun:"matching_confidence,notnull,default:100" json:"matchingConfidence"`
	CreatedAt          time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

