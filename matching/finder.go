package matching

import (
	"context"
	"slices"
	"sort"

	"github.com/padraicbc/racematch/models"
	"github.com/padraicbc/racematch/normalize"
)

// Candidate is an existing runner scored against a raw record.
type Candidate struct {
	Runner  models.Runner `json:"runner"`
	Score   int           `json:"score"`
	Reasons []string      `json:"reasons"`
}

// RunnerSource is the read side of the runner repository.
type RunnerSource interface {
	GetAllRunners(ctx context.Context) ([]models.Runner, error)
	GetRunnersByMatchKey(ctx context.Context, keys []string) ([]models.Runner, error)
}

// Finder loads runners and ranks them against a raw record.
type Finder struct {
	MinScore int
	// Blocking shortlists runners by the initials of the raw name before
	// scoring instead of scanning every runner.
	Blocking bool
}

// FindCandidates returns every runner scoring at least f.MinScore, best first.
func (f Finder) FindCandidates(ctx context.Context, src RunnerSource, raw models.RawRunnerData) ([]Candidate, error) {
	var (
		runners []models.Runner
		err     error
	)
	if f.Blocking {
		runners, err = src.GetRunnersByMatchKey(ctx, BlockingKeys(raw.Name))
	} else {
		runners, err = src.GetAllRunners(ctx)
	}
	if err != nil {
		return nil, err
	}
	return RankCandidates(raw, runners, f.MinScore), nil
}

// RankCandidates scores runners against raw and keeps those at or above min,
// sorted by score descending then runner ID ascending.
func RankCandidates(raw models.RawRunnerData, runners []models.Runner, min int) []Candidate {
	var out []Candidate
	for i := range runners {
		r := &runners[i]
		s := Score(raw, r)
		if s < min {
			continue
		}
		out = append(out, Candidate{Runner: *r, Score: s, Reasons: Reasons(raw, r)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Runner.ID < out[j].Runner.ID
	})
	return out
}

// BlockingKeys returns the keys of which a runner must carry at least one to
// be shortlisted for name: the initial of its last token and, to survive
// swapped first and last names, the initial of its first token. Runners
// carry the last-token initial of their canonical and alternate names.
func BlockingKeys(name string) []string {
	first, last := normalize.SplitName(normalize.CleanName(name))
	var keys []string
	if last != "" {
		keys = append(keys, last[:1])
	}
	if first != "" && !slices.Contains(keys, first[:1]) {
		keys = append(keys, first[:1])
	}
	return keys
}
