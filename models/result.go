package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Result holds one runner's finish in one race plus the provenance of the
// provider record it was imported from.
type Result struct {
	bun.BaseModel `bun:"table:results,alias:r"`

	ID            int       `bun:"id,pk,autoincrement" json:"id"`
	RunnerID      int       `bun:"runner_id,notnull" json:"runnerID"`
	RaceID        int       `bun:"race_id,notnull" json:"raceID"`
	FinishTime    string    `bun:"finish_time,notnull" json:"finishTime"`
	OverallPlace  int       `bun:"overall_place,notnull,default:0" json:"overallPlace"`
	GenderPlace   *int      `bun:"gender_place" json:"genderPlace,omitempty"`
	AgeGroupPlace *int      `bun:"age_group_place" json:"ageGroupPlace,omitempty"`

	SourceProvider string  `bun:"source_provider,notnull" json:"sourceProvider"`
	SourceResultID string  `bun:"source_result_id,notnull,default:''" json:"sourceResultID,omitempty"`
	RawRunnerName  string  `bun:"raw_runner_name,notnull" json:"rawRunnerName"`
	RawLocation    *string `bun:"raw_location" json:"rawLocation,omitempty"`
	RawAge         *int    `bun:"raw_age" json:"rawAge,omitempty"`

	MatchingScore int       `bun:"matching_score,notnull" json:"matchingScore"`
	NeedsReview   bool      `bun:"needs_review,notnull,default:false" json:"needsReview"`
	ImportBatchID string    `bun:"import_batch_id,notnull,default:''" json:"importBatchID,omitempty"`
	ImportedAt    time.Time `bun:"imported_at,nullzero,notnull,default:current_timestamp" json:"importedAt"`

	Runner *Runner `bun:"rel:belongs-to,join:runner_id=id" json:"runner,omitempty"`
	Race   *Race   `bun:"rel:belongs-to,join:race_id=id" json:"-"`
}
