package scoring

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/padraicbc/racematch/models"
	"github.com/padraicbc/racematch/store"
)

var (
	ErrSeriesNotFound              = errors.New("series not found")
	ErrRaceMissing                 = errors.New("race missing")
	ErrScoringSystemNotImplemented = errors.New("scoring system not implemented")
	ErrInvalidSeries               = errors.New("invalid series")
)

// leaderboardConcurrency bounds Leaderboards.
const leaderboardConcurrency = 4

// Engine computes leaderboards from a Repository snapshot.
type Engine struct {
	repo   store.Repository
	logger *zap.Logger
}

// NewEngine returns an Engine over repo. A nil logger discards output.
func NewEngine(repo store.Repository, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{repo: repo, logger: logger}
}

// Leaderboard loads a series with its races and results from one consistent
// snapshot and ranks it.
func (e *Engine) Leaderboard(ctx context.Context, seriesID int) (*models.SeriesLeaderboard, error) {
	var lb *models.SeriesLeaderboard
	err := e.repo.Snapshot(ctx, func(tx store.Repository) error {
		series, err := tx.GetSeries(ctx, seriesID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: %d", ErrSeriesNotFound, seriesID)
			}
			return err
		}

		seriesRaces, err := tx.GetSeriesRaces(ctx, seriesID)
		if err != nil {
			return fmt.Errorf("series %d races: %w", seriesID, err)
		}
		raceIDs := make([]int, 0, len(seriesRaces))
		for _, sr := range seriesRaces {
			raceIDs = append(raceIDs, sr.RaceID)
		}

		results, err := tx.GetResultsForRaces(ctx, raceIDs)
		if err != nil {
			return fmt.Errorf("series %d results: %w", seriesID, err)
		}

		var allowlist []int
		if series.IsPrivate {
			if allowlist, err = tx.GetPrivateSeriesParticipants(ctx, seriesID); err != nil {
				return fmt.Errorf("series %d participants: %w", seriesID, err)
			}
		}

		lb, err = ComputeLeaderboard(*series, seriesRaces, results, allowlist)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("computed leaderboard",
		zap.Int("series_id", seriesID),
		zap.Int("participants", lb.TotalParticipants),
	)
	return lb, nil
}

// Leaderboards computes several independent series concurrently. The result
// order matches seriesIDs.
func (e *Engine) Leaderboards(ctx context.Context, seriesIDs []int) ([]*models.SeriesLeaderboard, error) {
	out := make([]*models.SeriesLeaderboard, len(seriesIDs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(leaderboardConcurrency)
	for i, id := range seriesIDs {
		g.Go(func() error {
			lb, err := e.Leaderboard(ctx, id)
			if err != nil {
				return err
			}
			out[i] = lb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ComputeLeaderboard ranks runners in series from the results of its races.
// For a private series only runners in allowlist are eligible.
//
// A runner's results are deduplicated per race, keeping the best scoring one.
// With MaxRacesForScore set, only the top N results count towards the total
// and average; BestRacePoints always considers every result. Standings are
// ordered by total points, then races completed, then runner ID, and ranks
// run 1..n without ties.
func ComputeLeaderboard(series models.RaceSeries, seriesRaces []models.RaceSeriesRace, results []models.Result, allowlist []int) (*models.SeriesLeaderboard, error) {
	switch series.ScoringSystem {
	case models.ScoringPoints:
	case models.ScoringTime, models.ScoringPlacement:
		return nil, fmt.Errorf("%w: %s", ErrScoringSystemNotImplemented, series.ScoringSystem)
	default:
		return nil, fmt.Errorf("%w: unknown scoring system %q", ErrInvalidSeries, series.ScoringSystem)
	}
	if series.MinimumRaces < 1 {
		return nil, fmt.Errorf("%w: minimum races %d", ErrInvalidSeries, series.MinimumRaces)
	}
	if series.MaxRacesForScore != nil && *series.MaxRacesForScore < 1 {
		return nil, fmt.Errorf("%w: max races for score %d", ErrInvalidSeries, *series.MaxRacesForScore)
	}

	lb := &models.SeriesLeaderboard{Series: series, Standings: []models.SeriesStanding{}}
	if len(seriesRaces) == 0 {
		return lb, nil
	}

	byRace := make(map[int]models.RaceSeriesRace, len(seriesRaces))
	for _, sr := range seriesRaces {
		if sr.Race == nil || sr.Race.ID == 0 {
			return nil, fmt.Errorf("%w: series %d race %d", ErrRaceMissing, series.ID, sr.RaceID)
		}
		byRace[sr.RaceID] = sr
	}

	finishers := make(map[int]int)
	for _, r := range results {
		finishers[r.RaceID]++
	}

	var allowed map[int]bool
	if series.IsPrivate {
		allowed = make(map[int]bool, len(allowlist))
		for _, id := range allowlist {
			allowed[id] = true
		}
	}

	type entry struct {
		runner models.Runner
		best   map[int]models.ScoredResult
	}
	runners := make(map[int]*entry)
	for _, r := range results {
		sr, ok := byRace[r.RaceID]
		if !ok {
			continue
		}
		if allowed != nil && !allowed[r.RunnerID] {
			continue
		}

		total := sr.Race.TotalFinishers
		if total == 0 {
			total = finishers[r.RaceID]
		}
		mult := sr.PointsMultiplier
		if mult.IsZero() {
			mult = decimal.NewFromInt(1)
		}

		e, ok := runners[r.RunnerID]
		if !ok {
			e = &entry{runner: models.Runner{ID: r.RunnerID}, best: make(map[int]models.ScoredResult)}
			runners[r.RunnerID] = e
		}
		if r.Runner != nil {
			e.runner = *r.Runner
		}

		scored := models.ScoredResult{Result: r, Race: sr.Race, Points: Points(r.OverallPlace, total, mult)}
		scored.Result.Runner, scored.Result.Race = nil, nil
		if prev, dup := e.best[r.RaceID]; dup && !scored.Points.GreaterThan(prev.Points) {
			continue
		}
		e.best[r.RaceID] = scored
	}

	for _, e := range runners {
		if len(e.best) < series.MinimumRaces {
			continue
		}
		lb.Standings = append(lb.Standings, standing(e.runner, e.best, byRace, series.MaxRacesForScore))
	}

	sort.SliceStable(lb.Standings, func(i, j int) bool {
		a, b := lb.Standings[i], lb.Standings[j]
		if c := a.TotalPoints.Cmp(b.TotalPoints); c != 0 {
			return c > 0
		}
		if a.RacesCompleted != b.RacesCompleted {
			return a.RacesCompleted > b.RacesCompleted
		}
		return a.Runner.ID < b.Runner.ID
	})
	for i := range lb.Standings {
		lb.Standings[i].Rank = i + 1
	}
	lb.TotalParticipants = len(lb.Standings)
	return lb, nil
}

func standing(runner models.Runner, best map[int]models.ScoredResult, byRace map[int]models.RaceSeriesRace, maxRaces *int) models.SeriesStanding {
	scored := make([]models.ScoredResult, 0, len(best))
	for _, s := range best {
		scored = append(scored, s)
	}
	// Highest points first; series order breaks ties.
	sort.Slice(scored, func(i, j int) bool {
		if c := scored[i].Points.Cmp(scored[j].Points); c != 0 {
			return c > 0
		}
		return byRace[scored[i].Result.RaceID].SeriesRaceNumber < byRace[scored[j].Result.RaceID].SeriesRaceNumber
	})

	n := len(scored)
	if maxRaces != nil && *maxRaces < n {
		n = *maxRaces
	}
	total := decimal.Zero
	for i := range scored {
		if i < n {
			scored[i].Counted = true
			total = total.Add(scored[i].Points)
		}
	}

	st := models.SeriesStanding{
		Runner:         runner,
		TotalPoints:    total,
		AveragePoints:  total.DivRound(decimal.NewFromInt(int64(n)), 2),
		RacesCompleted: len(scored),
		BestRacePoints: scored[0].Points,
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return byRace[scored[i].Result.RaceID].SeriesRaceNumber < byRace[scored[j].Result.RaceID].SeriesRaceNumber
	})
	st.Results = scored
	return st
}
