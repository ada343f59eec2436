package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/padraicbc/racematch/models"
	"github.com/padraicbc/racematch/normalize"
)

// PGStore is the Postgres Repository. Inside WithIdentityLock and Snapshot
// it is rebound to the open transaction.
type PGStore struct {
	db   *bun.DB
	conn bun.IDB
}

// NewPGStore wraps an open bun connection.
func NewPGStore(db *bun.DB) *PGStore {
	return &PGStore{db: db, conn: db}
}

func notFound(err error, what string, key any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", what, key, ErrNotFound)
	}
	return err
}

func (s *PGStore) GetAllRunners(ctx context.Context) ([]models.Runner, error) {
	var out []models.Runner
	err := s.conn.NewSelect().Model(&out).Order("rn.id").Scan(ctx)
	return out, err
}

func (s *PGStore) GetRunnersByMatchKey(ctx context.Context, keys []string) ([]models.Runner, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	var out []models.Runner
	err := s.conn.NewSelect().Model(&out).
		Where("rn.match_keys && ?", pgdialect.Array(keys)).
		Order("rn.id").
		Scan(ctx)
	return out, err
}

func (s *PGStore) GetRunner(ctx context.Context, id int) (*models.Runner, error) {
	r := &models.Runner{}
	if err := s.conn.NewSelect().Model(r).Where("rn.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "runner", id)
	}
	return r, nil
}

func (s *PGStore) CreateRunner(ctx context.Context, r *models.Runner) error {
	_, err := s.conn.NewInsert().Model(r).Returning("id, created_at").Exec(ctx)
	return err
}

func (s *PGStore) AddAlternateName(ctx context.Context, runnerID int, name string) error {
	q := s.conn.NewUpdate().Model((*models.Runner)(nil)).
		Set("alternate_names = array_append(COALESCE(alternate_names, '{}'), ?)", name)
	if key := normalize.BlockingKey(name); key != "" {
		q = q.Set("match_keys = CASE WHEN ? = ANY(COALESCE(match_keys, '{}')) THEN match_keys ELSE array_append(COALESCE(match_keys, '{}'), ?) END", key, key)
	}
	res, err := q.
		Where("id = ?", runnerID).
		Where("NOT (? = ANY(COALESCE(alternate_names, '{}')))", name).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	// Either already present or no such runner.
	_, err = s.GetRunner(ctx, runnerID)
	return err
}

func (s *PGStore) CreateRunnerMatch(ctx context.Context, m *models.RunnerMatch) error {
	_, err := s.conn.NewInsert().Model(m).Returning("id, created_at").Exec(ctx)
	return err
}

func (s *PGStore) GetRunnerMatch(ctx context.Context, id int) (*models.RunnerMatch, error) {
	m := &models.RunnerMatch{}
	if err := s.conn.NewSelect().Model(m).Where("rm.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "runner match", id)
	}
	return m, nil
}

func (s *PGStore) ListRunnerMatches(ctx context.Context, status models.MatchStatus) ([]models.RunnerMatch, error) {
	var out []models.RunnerMatch
	q := s.conn.NewSelect().Model(&out).Order("rm.id")
	if status != "" {
		q = q.Where("rm.status = ?", status)
	}
	err := q.Scan(ctx)
	return out, err
}

func (s *PGStore) ReviewRunnerMatch(ctx context.Context, id int, status models.MatchStatus, reviewedBy string, at time.Time) (bool, error) {
	res, err := s.conn.NewUpdate().Model((*models.RunnerMatch)(nil)).
		Set("status = ?", status).
		Set("reviewed_by = ?", reviewedBy).
		Set("reviewed_at = ?", at).
		Where("id = ?", id).
		Where("reviewed_at IS NULL").
		Where("status NOT IN (?)", bun.In([]models.MatchStatus{models.MatchAutoMatched, models.MatchRejected})).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}
	if _, err := s.GetRunnerMatch(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (s *PGStore) CreateRace(ctx context.Context, r *models.Race) error {
	_, err := s.conn.NewInsert().Model(r).Returning("id").Exec(ctx)
	return err
}

func (s *PGStore) GetRace(ctx context.Context, id int) (*models.Race, error) {
	r := &models.Race{}
	if err := s.conn.NewSelect().Model(r).Where("rc.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "race", id)
	}
	return r, nil
}

func (s *PGStore) RefreshRaceStats(ctx context.Context, raceID int) error {
	var times []string
	err := s.conn.NewSelect().Model((*models.Result)(nil)).
		Column("finish_time").
		Where("race_id = ?", raceID).
		Scan(ctx, &times)
	if err != nil {
		return err
	}

	total, avg := raceStats(times)
	res, err := s.conn.NewUpdate().Model((*models.Race)(nil)).
		Set("total_finishers = ?", total).
		Set("average_time = ?", avg).
		Where("id = ?", raceID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("race %d: %w", raceID, ErrNotFound)
	}
	return nil
}

func (s *PGStore) CreateResult(ctx context.Context, r *models.Result) (bool, error) {
	res, err := s.conn.NewInsert().Model(r).
		On("CONFLICT (source_provider, source_result_id) WHERE source_result_id <> '' DO NOTHING").
		Returning("id, imported_at").
		Exec(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *PGStore) ResultExists(ctx context.Context, sourceProvider, sourceResultID string) (bool, error) {
	if sourceResultID == "" {
		return false, nil
	}
	return s.conn.NewSelect().Model((*models.Result)(nil)).
		Where("source_provider = ?", sourceProvider).
		Where("source_result_id = ?", sourceResultID).
		Exists(ctx)
}

func (s *PGStore) GetResultsForRaces(ctx context.Context, raceIDs []int) ([]models.Result, error) {
	if len(raceIDs) == 0 {
		return nil, nil
	}
	var out []models.Result
	err := s.conn.NewSelect().Model(&out).
		Relation("Runner").
		Relation("Race").
		Where("r.race_id IN (?)", bun.In(raceIDs)).
		Order("r.id").
		Scan(ctx)
	return out, err
}

func (s *PGStore) CreateSeries(ctx context.Context, rs *models.RaceSeries) error {
	_, err := s.conn.NewInsert().Model(rs).Returning("id").Exec(ctx)
	return err
}

func (s *PGStore) GetSeries(ctx context.Context, id int) (*models.RaceSeries, error) {
	rs := &models.RaceSeries{}
	if err := s.conn.NewSelect().Model(rs).Where("rs.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "series", id)
	}
	return rs, nil
}

func (s *PGStore) AddSeriesRace(ctx context.Context, sr *models.RaceSeriesRace) error {
	_, err := s.conn.NewInsert().Model(sr).
		On("CONFLICT (series_id, race_id) DO UPDATE").
		Set("series_race_number = EXCLUDED.series_race_number").
		Set("points_multiplier = EXCLUDED.points_multiplier").
		Exec(ctx)
	return err
}

func (s *PGStore) GetSeriesRaces(ctx context.Context, seriesID int) ([]models.RaceSeriesRace, error) {
	var out []models.RaceSeriesRace
	err := s.conn.NewSelect().Model(&out).
		Relation("Race").
		Where("srr.series_id = ?", seriesID).
		Order("srr.series_race_number").
		Scan(ctx)
	return out, err
}

func (s *PGStore) AddSeriesParticipant(ctx context.Context, seriesID, runnerID int) error {
	p := &models.SeriesParticipant{SeriesID: seriesID, RunnerID: runnerID}
	_, err := s.conn.NewInsert().Model(p).On("CONFLICT (series_id, runner_id) DO NOTHING").Exec(ctx)
	return err
}

func (s *PGStore) GetPrivateSeriesParticipants(ctx context.Context, seriesID int) ([]int, error) {
	var ids []int
	err := s.conn.NewSelect().Model((*models.SeriesParticipant)(nil)).
		Column("runner_id").
		Where("series_id = ?", seriesID).
		Order("runner_id").
		Scan(ctx, &ids)
	return ids, err
}

func (s *PGStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u := &models.User{}
	if err := s.conn.NewSelect().Model(u).Where("username = ?", username).Scan(ctx); err != nil {
		return nil, notFound(err, "user", username)
	}
	return u, nil
}

func (s *PGStore) UpsertUser(ctx context.Context, u *models.User) error {
	_, err := s.conn.NewInsert().Model(u).
		On("CONFLICT (username) DO UPDATE SET password = EXCLUDED.password").
		Returning("id").
		Exec(ctx)
	return err
}

// WithIdentityLock serialises writers on key across processes with a
// transaction-scoped advisory lock. The lock is released on commit or rollback.
func (s *PGStore) WithIdentityLock(ctx context.Context, key string, fn func(Repository) error) error {
	lock := func(ctx context.Context, tx bun.IDB) error {
		_, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext(?))", key)
		return err
	}
	if s.db == nil {
		if err := lock(ctx, s.conn); err != nil {
			return err
		}
		return fn(s)
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lock(ctx, tx); err != nil {
			return fmt.Errorf("identity lock %q: %w", key, err)
		}
		return fn(&PGStore{conn: tx})
	})
}

// Snapshot runs fn in a read-only REPEATABLE READ transaction.
func (s *PGStore) Snapshot(ctx context.Context, fn func(Repository) error) error {
	if s.db == nil {
		return fn(s)
	}
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	return s.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		return fn(&PGStore{conn: tx})
	})
}
