package matching

import "fmt"

// Thresholds are the score cut-offs the Resolver decides on.
type Thresholds struct {
	// Min is the lowest score a runner needs to be considered a candidate.
	Min int
	// HighConfidence links the result but flags it for review.
	HighConfidence int
	// Auto links without review.
	Auto int
}

// DefaultThresholds are 60/85/95.
var DefaultThresholds = Thresholds{Min: 60, HighConfidence: 85, Auto: 95}

// Validate checks 0 < Min <= HighConfidence <= Auto <= 100.
func (t Thresholds) Validate() error {
	if t.Min <= 0 || t.Min > t.HighConfidence || t.HighConfidence > t.Auto || t.Auto > 100 {
		return fmt.Errorf("%w: min=%d high=%d auto=%d", ErrInvalidThresholds, t.Min, t.HighConfidence, t.Auto)
	}
	return nil
}
