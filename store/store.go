// Package store is the persistence collaborator for matching, scoring and
// imports. PGStore is backed by bun/Postgres; MemStore keeps everything in
// process and is used by tests and dry runs.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/padraicbc/racematch/models"
	"github.com/padraicbc/racematch/normalize"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Repository is everything the core needs from persistence.
type Repository interface {
	GetAllRunners(ctx context.Context) ([]models.Runner, error)
	GetRunnersByMatchKey(ctx context.Context, keys []string) ([]models.Runner, error)
	GetRunner(ctx context.Context, id int) (*models.Runner, error)
	CreateRunner(ctx context.Context, r *models.Runner) error
	AddAlternateName(ctx context.Context, runnerID int, name string) error

	CreateRunnerMatch(ctx context.Context, m *models.RunnerMatch) error
	GetRunnerMatch(ctx context.Context, id int) (*models.RunnerMatch, error)
	ListRunnerMatches(ctx context.Context, status models.MatchStatus) ([]models.RunnerMatch, error)
	// ReviewRunnerMatch sets the review columns only if the row has not been
	// reviewed yet. It reports whether the row was updated.
	ReviewRunnerMatch(ctx context.Context, id int, status models.MatchStatus, reviewedBy string, at time.Time) (bool, error)

	CreateRace(ctx context.Context, r *models.Race) error
	GetRace(ctx context.Context, id int) (*models.Race, error)
	RefreshRaceStats(ctx context.Context, raceID int) error
	// CreateResult reports false when a result with the same provider and
	// source result ID already exists.
	CreateResult(ctx context.Context, r *models.Result) (bool, error)
	ResultExists(ctx context.Context, sourceProvider, sourceResultID string) (bool, error)
	GetResultsForRaces(ctx context.Context, raceIDs []int) ([]models.Result, error)

	CreateSeries(ctx context.Context, s *models.RaceSeries) error
	GetSeries(ctx context.Context, id int) (*models.RaceSeries, error)
	AddSeriesRace(ctx context.Context, sr *models.RaceSeriesRace) error
	GetSeriesRaces(ctx context.Context, seriesID int) ([]models.RaceSeriesRace, error)
	AddSeriesParticipant(ctx context.Context, seriesID, runnerID int) error
	GetPrivateSeriesParticipants(ctx context.Context, seriesID int) ([]int, error)

	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpsertUser(ctx context.Context, u *models.User) error

	// WithIdentityLock runs fn while holding an exclusive lock on key.
	// fn must use the Repository it is handed.
	WithIdentityLock(ctx context.Context, key string, fn func(Repository) error) error
	// Snapshot runs fn against a consistent read-only view.
	Snapshot(ctx context.Context, fn func(Repository) error) error
}

var (
	_ Repository = (*PGStore)(nil)
	_ Repository = (*MemStore)(nil)
)

// raceStats returns the finisher count and the formatted mean finish time
// for a set of stored finish times. Unparseable times are counted as
// finishers but left out of the average.
func raceStats(times []string) (int, *string) {
	sum, n := 0, 0
	for _, t := range times {
		secs, err := normalize.ParseFinishTime(t)
		if err != nil {
			continue
		}
		sum += secs
		n++
	}
	if n == 0 {
		return len(times), nil
	}
	avg := normalize.FormatFinishTime(sum / n)
	return len(times), &avg
}
