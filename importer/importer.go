// Package importer feeds provider result batches through identity
// resolution and stores the resulting Results.
package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/padraicbc/racematch/matching"
	"github.com/padraicbc/racematch/models"
	"github.com/padraicbc/racematch/normalize"
	"github.com/padraicbc/racematch/store"
)

// ErrRaceNotFound is returned when a batch targets an unknown race.
var ErrRaceNotFound = errors.New("import race not found")

// Batch is one provider's results for one race.
type Batch struct {
	SourceProvider string                 `json:"sourceProvider"`
	SourceRaceID   string                 `json:"sourceRaceID"`
	RaceID         int                    `json:"raceID"`
	Records        []models.RawRunnerData `json:"records"`
}

// Stats counts what happened to a batch's records.
type Stats struct {
	Total       int `json:"total"`
	Imported    int `json:"imported"`
	NewRunners  int `json:"newRunners"`
	Matched     int `json:"matched"`
	NeedsReview int `json:"needsReview"`
	Duplicates  int `json:"duplicates"`
	Failed      int `json:"failed"`
}

// RecordError is a failure of a single record. The rest of the batch is
// unaffected.
type RecordError struct {
	Index          int    `json:"index"`
	RawName        string `json:"rawName"`
	SourceProvider string `json:"sourceProvider"`
	SourceRaceID   string `json:"sourceRaceID"`
	Message        string `json:"error"`
	Err            error  `json:"-"`
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d (%q from %s/%s): %v", e.Index, e.RawName, e.SourceProvider, e.SourceRaceID, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Report summarises an import.
type Report struct {
	BatchID string        `json:"batchID"`
	RaceID  int           `json:"raceID"`
	Stats   Stats         `json:"stats"`
	Errors  []RecordError `json:"errors"`
}

type outcome int

const (
	outcomeImported outcome = iota
	outcomeDuplicate
)

// Importer runs batches. Records within a batch are processed concurrently
// up to the configured limit.
type Importer struct {
	repo        store.Repository
	resolver    *matching.Resolver
	concurrency int
	logger      *zap.Logger
}

// New returns an Importer. concurrency below 1 means sequential.
func New(repo store.Repository, resolver *matching.Resolver, concurrency int, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{repo: repo, resolver: resolver, concurrency: max(concurrency, 1), logger: logger}
}

// Import resolves and stores every record of b and refreshes the race's
// finisher statistics. Per-record failures are collected in the report;
// the returned error is reserved for failures of the batch as a whole.
func (im *Importer) Import(ctx context.Context, b Batch) (*Report, error) {
	race, err := im.repo.GetRace(ctx, b.RaceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrRaceNotFound, b.RaceID)
		}
		return nil, err
	}

	rep := &Report{BatchID: uuid.NewString(), RaceID: race.ID, Errors: []RecordError{}}
	rep.Stats.Total = len(b.Records)
	src := matching.Source{Provider: b.SourceProvider, RaceID: b.SourceRaceID, BatchID: rep.BatchID}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(im.concurrency)
	repeated := repeatedSourceResults(b.Records)
	for i, raw := range b.Records {
		if repeated[i] {
			mu.Lock()
			rep.Stats.Duplicates++
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			out, res, err := im.importRecord(ctx, race.ID, raw, src)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rep.Stats.Failed++
				rep.Errors = append(rep.Errors, RecordError{
					Index: i, RawName: raw.Name, SourceProvider: b.SourceProvider, SourceRaceID: b.SourceRaceID,
					Message: err.Error(), Err: err,
				})
				im.logger.Warn("import record failed",
					zap.String("batch_id", rep.BatchID),
					zap.Int("index", i),
					zap.String("raw_name", raw.Name),
					zap.Error(err),
				)
				return nil
			}
			if out == outcomeDuplicate {
				rep.Stats.Duplicates++
				return nil
			}
			rep.Stats.Imported++
			if res.Created {
				rep.Stats.NewRunners++
			} else {
				rep.Stats.Matched++
			}
			if res.NeedsReview {
				rep.Stats.NeedsReview++
			}
			return nil
		})
	}
	_ = g.Wait()
	sort.Slice(rep.Errors, func(i, j int) bool { return rep.Errors[i].Index < rep.Errors[j].Index })

	if rep.Stats.Imported > 0 {
		if err := im.repo.RefreshRaceStats(ctx, race.ID); err != nil {
			return rep, fmt.Errorf("refresh race %d stats: %w", race.ID, err)
		}
	}

	im.logger.Info("import batch finished",
		zap.String("batch_id", rep.BatchID),
		zap.String("source_provider", b.SourceProvider),
		zap.String("source_race_id", b.SourceRaceID),
		zap.Int("race_id", race.ID),
		zap.Int("total", rep.Stats.Total),
		zap.Int("imported", rep.Stats.Imported),
		zap.Int("new_runners", rep.Stats.NewRunners),
		zap.Int("matched", rep.Stats.Matched),
		zap.Int("needs_review", rep.Stats.NeedsReview),
		zap.Int("duplicates", rep.Stats.Duplicates),
		zap.Int("failed", rep.Stats.Failed),
	)
	return rep, nil
}

// repeatedSourceResults flags every record whose non-empty SourceResultID
// already appeared earlier in the batch. Only the first copy is imported.
func repeatedSourceResults(records []models.RawRunnerData) []bool {
	out := make([]bool, len(records))
	seen := make(map[string]bool, len(records))
	for i, raw := range records {
		if raw.SourceResultID == "" {
			continue
		}
		out[i] = seen[raw.SourceResultID]
		seen[raw.SourceResultID] = true
	}
	return out
}

func (im *Importer) importRecord(ctx context.Context, raceID int, raw models.RawRunnerData, src matching.Source) (outcome, *matching.Resolution, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	if err := matching.Validate(raw); err != nil {
		return 0, nil, err
	}
	secs, err := normalize.ParseFinishTime(raw.FinishTime)
	if err != nil {
		return 0, nil, err
	}

	if exists, err := im.repo.ResultExists(ctx, src.Provider, raw.SourceResultID); err != nil {
		return 0, nil, fmt.Errorf("check existing result: %w", err)
	} else if exists {
		return outcomeDuplicate, nil, nil
	}

	res, err := im.resolver.ResolveSource(ctx, raw, src)
	if err != nil {
		return 0, nil, fmt.Errorf("resolve runner: %w", err)
	}

	result := &models.Result{
		RunnerID:       res.Runner.ID,
		RaceID:         raceID,
		FinishTime:     normalize.FormatFinishTime(secs),
		OverallPlace:   raw.OverallPlace,
		GenderPlace:    raw.GenderPlace,
		AgeGroupPlace:  raw.AgeGroupPlace,
		SourceProvider: src.Provider,
		SourceResultID: raw.SourceResultID,
		RawRunnerName:  raw.Name,
		RawLocation:    rawLocation(raw),
		RawAge:         raw.Age,
		MatchingScore:  res.MatchScore,
		NeedsReview:    res.NeedsReview,
		ImportBatchID:  src.BatchID,
	}
	inserted, err := im.repo.CreateResult(ctx, result)
	if err != nil {
		return 0, nil, fmt.Errorf("create result: %w", err)
	}
	if !inserted {
		return outcomeDuplicate, res, nil
	}
	return outcomeImported, res, nil
}

func rawLocation(raw models.RawRunnerData) *string {
	loc := strings.TrimSpace(raw.Location)
	if loc == "" {
		parts := make([]string, 0, 2)
		for _, p := range []string{raw.City, raw.State} {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		loc = strings.Join(parts, ", ")
	}
	if loc == "" {
		return nil
	}
	return &loc
}
