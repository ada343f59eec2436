package matching

import "errors"

var (
	ErrMissingName          = errors.New("raw result has no runner name")
	ErrMissingFinishTime    = errors.New("raw result has no finish time")
	ErrInvalidThresholds    = errors.New("invalid match thresholds")
	ErrMissingReviewer      = errors.New("reviewer is required")
	ErrMatchNotFound        = errors.New("runner match not found")
	ErrMatchAlreadyReviewed = errors.New("runner match already reviewed")
	ErrMatchNotReviewable   = errors.New("auto-matched records cannot be reviewed")
)
