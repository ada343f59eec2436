package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// MatchStatus is the review state of a RunnerMatch audit row.
type MatchStatus string

const (
	MatchPending     MatchStatus = "pending"
	MatchApproved    MatchStatus = "approved"
	MatchRejected    MatchStatus = "rejected"
	MatchAutoMatched MatchStatus = "auto_matched"
)

// Valid reports whether s is a known status.
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchPending, MatchApproved, MatchRejected, MatchAutoMatched:
		return true
	}
	return false
}

// RunnerMatch is the append-only audit record of one identity decision.
// Only the review columns are ever updated, and only once.
type RunnerMatch struct {
	bun.BaseModel `bun:"table:runner_matches,alias:rm"`

	ID                int             `bun:"id,pk,autoincrement" json:"id"`
	CandidateRunnerID *int            `bun:"candidate_runner_id" json:"candidateRunnerID"`
	CreatedRunnerID   *int            `bun:"created_runner_id" json:"createdRunnerID,omitempty"`
	RawRunnerData     json.RawMessage `bun:"raw_runner_data,notnull,type:jsonb" json:"rawRunnerData"`
	MatchScore        int             `bun:"match_score,notnull" json:"matchScore"`
	MatchReasons      []string        `bun:"match_reasons,array" json:"matchReasons"`
	Status            MatchStatus     `bun:"status,notnull" json:"status"`
	SourceProvider    string          `bun:"source_provider,notnull" json:"sourceProvider"`
	SourceRaceID      string          `bun:"source_race_id,notnull,default:''" json:"sourceRaceID"`
	ImportBatchID     string          `bun:"import_batch_id,notnull,default:''" json:"importBatchID,omitempty"`
	ReviewedBy        *string         `bun:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt        *time.Time      `bun:"reviewed_at" json:"reviewedAt,omitempty"`
	CreatedAt         time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// Reviewable reports whether a human may still approve or reject the match.
func (m *RunnerMatch) Reviewable() bool {
	return m.ReviewedAt == nil && m.Status != MatchAutoMatched && m.Status != MatchRejected
}
