package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/padraicbc/racematch/models"
	"github.com/padraicbc/racematch/normalize"
	"github.com/padraicbc/racematch/store"
)

// Decision is the path Resolve took.
type Decision string

const (
	// DecisionCreated: no candidate reached the minimum score.
	DecisionCreated Decision = "created"
	// DecisionAutoMatched: linked without review.
	DecisionAutoMatched Decision = "auto_matched"
	// DecisionMatchedReview: linked, result flagged for review.
	DecisionMatchedReview Decision = "matched_review"
	// DecisionAmbiguousCreated: a new runner was created next to an
	// uncertain candidate, result flagged for review.
	DecisionAmbiguousCreated Decision = "ambiguous_created"
)

// Source identifies where a raw record came from.
type Source struct {
	Provider string
	RaceID   string
	BatchID  string
}

// Resolution is the outcome of resolving one raw record.
type Resolution struct {
	Runner      models.Runner `json:"runner"`
	MatchScore  int           `json:"matchScore"`
	NeedsReview bool          `json:"needsReview"`
	Decision    Decision      `json:"decision"`
	// Created is true when Runner was created by this call.
	Created bool `json:"created"`
	// MatchID is the RunnerMatch audit row, nil on the clean create path.
	MatchID *int `json:"matchID,omitempty"`
	// Candidate is the best candidate considered, if any.
	Candidate *Candidate `json:"candidate,omitempty"`
}

// Resolver maps raw records onto runner identities.
type Resolver struct {
	repo       store.Repository
	finder     Finder
	thresholds Thresholds
	locks      *keyedMutex
	logger     *zap.Logger
}

// NewResolver returns a Resolver over repo. A nil logger discards output.
func NewResolver(repo store.Repository, th Thresholds, blocking bool, logger *zap.Logger) (*Resolver, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		repo:       repo,
		finder:     Finder{MinScore: th.Min, Blocking: blocking},
		thresholds: th,
		locks:      newKeyedMutex(),
		logger:     logger,
	}, nil
}

// Finder returns the candidate finder the Resolver uses.
func (r *Resolver) Finder() Finder { return r.finder }

// Validate rejects raw records missing a name or finish time.
func Validate(raw models.RawRunnerData) error {
	if strings.TrimSpace(raw.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(raw.FinishTime) == "" {
		return ErrMissingFinishTime
	}
	return nil
}

// Resolve decides which runner raw belongs to, creating one when needed.
func (r *Resolver) Resolve(ctx context.Context, raw models.RawRunnerData, sourceProvider, sourceRaceID string) (*Resolution, error) {
	return r.ResolveSource(ctx, raw, Source{Provider: sourceProvider, RaceID: sourceRaceID})
}

// ResolveSource is Resolve with the full provenance, including the import
// batch the record belongs to.
//
// The read-decide-create sequence for one cleaned name is serialised both
// in process and through the repository's identity lock, so two concurrent
// records for the same unseen person produce one runner.
func (r *Resolver) ResolveSource(ctx context.Context, raw models.RawRunnerData, src Source) (*Resolution, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}

	key := normalize.CleanName(raw.Name)
	unlock := r.locks.Lock(key)
	defer unlock()

	var res *Resolution
	err := r.repo.WithIdentityLock(ctx, key, func(tx store.Repository) error {
		var err error
		res, err = r.decide(ctx, tx, raw, src)
		return err
	})
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.String("raw_name", raw.Name),
		zap.String("source_provider", src.Provider),
		zap.String("decision", string(res.Decision)),
		zap.Int("runner_id", res.Runner.ID),
		zap.Int("score", res.MatchScore),
	}
	if res.Candidate != nil {
		fields = append(fields, zap.Int("candidate_runner_id", res.Candidate.Runner.ID), zap.Int("candidate_score", res.Candidate.Score))
	}
	r.logger.Debug("resolved runner", fields...)
	return res, nil
}

// Predict returns the decision Resolve takes for candidates ranked best first.
func (r *Resolver) Predict(candidates []Candidate) Decision {
	if len(candidates) == 0 {
		return DecisionCreated
	}
	switch s := candidates[0].Score; {
	case s >= r.thresholds.Auto:
		return DecisionAutoMatched
	case s >= r.thresholds.HighConfidence:
		return DecisionMatchedReview
	}
	return DecisionAmbiguousCreated
}

func (r *Resolver) decide(ctx context.Context, tx store.Repository, raw models.RawRunnerData, src Source) (*Resolution, error) {
	candidates, err := r.finder.FindCandidates(ctx, tx, raw)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	decision := r.Predict(candidates)
	if decision == DecisionCreated {
		runner, err := r.createRunner(ctx, tx, raw)
		if err != nil {
			return nil, err
		}
		return &Resolution{Runner: *runner, MatchScore: 100, Decision: decision, Created: true}, nil
	}

	best := candidates[0]
	res := &Resolution{Decision: decision, Candidate: &best}
	var match *models.RunnerMatch
	switch decision {
	case DecisionAutoMatched, DecisionMatchedReview:
		status := models.MatchAutoMatched
		if decision == DecisionMatchedReview {
			status, res.NeedsReview = models.MatchApproved, true
		}
		res.Runner, res.MatchScore = best.Runner, best.Score
		if match, err = r.logMatch(ctx, tx, raw, src, best, nil, status); err != nil {
			return nil, err
		}
		if err := r.recordAlternateName(ctx, tx, &res.Runner, raw.Name); err != nil {
			return nil, err
		}

	case DecisionAmbiguousCreated:
		// The pending match keeps the uncertain candidate for a reviewer.
		runner, err := r.createRunner(ctx, tx, raw)
		if err != nil {
			return nil, err
		}
		res.Runner, res.MatchScore, res.NeedsReview, res.Created = *runner, 100, true, true
		if match, err = r.logMatch(ctx, tx, raw, src, best, &runner.ID, models.MatchPending); err != nil {
			return nil, err
		}
	}
	res.MatchID = &match.ID
	return res, nil
}

// NewRunnerFromRaw builds the runner row for a raw record that matched no one.
func NewRunnerFromRaw(raw models.RawRunnerData) *models.Runner {
	city, state := RawLocation(raw)
	name := normalize.DisplayName(raw.Name)
	var age *int
	if raw.Age != nil {
		a := *raw.Age
		age = &a
	}
	return &models.Runner{
		Name:               name,
		MatchKeys:          normalize.MatchKeys(name),
		Gender:             normalize.NormalizeGender(raw.Gender),
		Age:                age,
		City:               strings.TrimSpace(city),
		State:              normalize.NormalizeState(state),
		MatchingConfidence: 100,
	}
}

func (r *Resolver) createRunner(ctx context.Context, tx store.Repository, raw models.RawRunnerData) (*models.Runner, error) {
	runner := NewRunnerFromRaw(raw)
	if err := tx.CreateRunner(ctx, runner); err != nil {
		return nil, fmt.Errorf("create runner %q: %w", runner.Name, err)
	}
	return runner, nil
}

func (r *Resolver) logMatch(ctx context.Context, tx store.Repository, raw models.RawRunnerData, src Source, best Candidate, createdID *int, status models.MatchStatus) (*models.RunnerMatch, error) {
	snapshot, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode raw runner data: %w", err)
	}
	candidateID := best.Runner.ID
	m := &models.RunnerMatch{
		CandidateRunnerID: &candidateID,
		CreatedRunnerID:   createdID,
		RawRunnerData:     snapshot,
		MatchScore:        best.Score,
		MatchReasons:      best.Reasons,
		Status:            status,
		SourceProvider:    src.Provider,
		SourceRaceID:      src.RaceID,
		ImportBatchID:     src.BatchID,
	}
	if err := tx.CreateRunnerMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("log runner match for %q: %w", raw.Name, err)
	}
	return m, nil
}

// recordAlternateName remembers a new spelling of a linked runner's name.
func (r *Resolver) recordAlternateName(ctx context.Context, tx store.Repository, runner *models.Runner, rawName string) error {
	cleaned := normalize.CleanName(rawName)
	if cleaned == "" || cleaned == normalize.CleanName(runner.Name) {
		return nil
	}
	for _, alt := range runner.AlternateNames {
		if normalize.CleanName(alt) == cleaned {
			return nil
		}
	}
	name := normalize.DisplayName(rawName)
	if err := tx.AddAlternateName(ctx, runner.ID, name); err != nil {
		return fmt.Errorf("add alternate name to runner %d: %w", runner.ID, err)
	}
	runner.AlternateNames = append(runner.AlternateNames, name)
	runner.MatchKeys = normalize.MatchKeys(append([]string{runner.Name}, runner.AlternateNames...)...)
	return nil
}
