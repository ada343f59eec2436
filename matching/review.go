package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/padraicbc/racematch/models"
	"github.com/padraicbc/racematch/store"
)

// Reviewer drives the admin review queue over RunnerMatch rows.
// Reviewing only records the verdict; linked Results are left as they are.
type Reviewer struct {
	repo   store.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewReviewer returns a Reviewer over repo. A nil logger discards output.
func NewReviewer(repo store.Repository, logger *zap.Logger) *Reviewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reviewer{repo: repo, logger: logger, now: time.Now}
}

// ListMatches returns audit rows with the given status, or all of them when
// status is empty.
func (rv *Reviewer) ListMatches(ctx context.Context, status models.MatchStatus) ([]models.RunnerMatch, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("unknown match status %q", status)
	}
	return rv.repo.ListRunnerMatches(ctx, status)
}

// ApproveMatch marks a match approved by reviewedBy.
func (rv *Reviewer) ApproveMatch(ctx context.Context, matchID int, reviewedBy string) (*models.RunnerMatch, error) {
	return rv.review(ctx, matchID, reviewedBy, models.MatchApproved)
}

// RejectMatch marks a match rejected by reviewedBy.
func (rv *Reviewer) RejectMatch(ctx context.Context, matchID int, reviewedBy string) (*models.RunnerMatch, error) {
	return rv.review(ctx, matchID, reviewedBy, models.MatchRejected)
}

func (rv *Reviewer) review(ctx context.Context, matchID int, reviewedBy string, status models.MatchStatus) (*models.RunnerMatch, error) {
	reviewedBy = strings.TrimSpace(reviewedBy)
	if reviewedBy == "" {
		return nil, ErrMissingReviewer
	}

	m, err := rv.repo.GetRunnerMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrMatchNotFound, matchID)
		}
		return nil, err
	}
	if m.Status == models.MatchAutoMatched {
		return nil, fmt.Errorf("%w: %d", ErrMatchNotReviewable, matchID)
	}
	if !m.Reviewable() {
		return nil, fmt.Errorf("%w: %d", ErrMatchAlreadyReviewed, matchID)
	}

	ok, err := rv.repo.ReviewRunnerMatch(ctx, matchID, status, reviewedBy, rv.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrMatchAlreadyReviewed, matchID)
	}

	rv.logger.Info("runner match reviewed",
		zap.Int("match_id", matchID),
		zap.String("status", string(status)),
		zap.String("reviewed_by", reviewedBy),
	)
	return rv.repo.GetRunnerMatch(ctx, matchID)
}
