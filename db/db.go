package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"

	"github.com/padraicbc/racematch/config"
	"github.com/padraicbc/racematch/models"
)

// Setup opens a PostgreSQL connection using the provided config.
func Setup(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN())))
	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return db, nil
}

type table struct {
	model       any
	foreignKeys []string
}

const resultsSourceIndex = `CREATE UNIQUE INDEX IF NOT EXISTS results_source_uidx ON results (source_provider, source_result_id) WHERE source_result_id <> ''`

// CreateTables creates all tables in dependency order.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []table{
		{model: (*models.User)(nil)},
		{model: (*models.Runner)(nil)},
		{model: (*models.Race)(nil)},
		{model: (*models.Result)(nil), foreignKeys: []string{
			`("runner_id") REFERENCES "runners" ("id") ON DELETE CASCADE`,
			`("race_id") REFERENCES "races" ("id") ON DELETE CASCADE`,
		}},
		{model: (*models.RunnerMatch)(nil)},
		{model: (*models.RaceSeries)(nil)},
		{model: (*models.RaceSeriesRace)(nil), foreignKeys: []string{
			`("series_id") REFERENCES "race_series" ("id") ON DELETE CASCADE`,
		}},
		{model: (*models.SeriesParticipant)(nil), foreignKeys: []string{
			`("series_id") REFERENCES "race_series" ("id") ON DELETE CASCADE`,
			`("runner_id") REFERENCES "runners" ("id") ON DELETE CASCADE`,
		}},
	}

	for _, t := range tables {
		q := db.NewCreateTable().Model(t.model).IfNotExists()
		for _, fk := range t.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", t.model, err)
		}
	}

	return createIndexes(ctx, db)
}

// execer is the part of *bun.DB that createIndexes needs.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// race_series_races.race_id has no foreign key; a deleted race shows up
// as scoring.ErrRaceMissing.
var constraints = []string{
	`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'race_series_races_no_dupes') THEN ALTER TABLE race_series_races ADD CONSTRAINT race_series_races_no_dupes UNIQUE (series_id, race_id); END IF; END $$`,
	`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'series_participants_no_dupes') THEN ALTER TABLE series_participants ADD CONSTRAINT series_participants_no_dupes UNIQUE (series_id, runner_id); END IF; END $$`,
	`CREATE INDEX IF NOT EXISTS results_race_id_idx ON results (race_id)`,
	`CREATE INDEX IF NOT EXISTS results_runner_id_idx ON results (runner_id)`,
	`CREATE INDEX IF NOT EXISTS runners_match_keys_idx ON runners USING GIN (match_keys)`,
	`CREATE INDEX IF NOT EXISTS runner_matches_status_idx ON runner_matches (status)`,
}

// createIndexes applies constraints and indexes. Only the results source
// index is fatal: result inserts name it in their ON CONFLICT clause.
func createIndexes(ctx context.Context, db execer) error {
	for _, stmt := range constraints {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			zap.L().Warn("constraint", zap.String("stmt", stmt), zap.Error(err))
		}
	}

	if _, err := db.ExecContext(ctx, resultsSourceIndex); err != nil {
		return fmt.Errorf("creating results_source_uidx: %w", err)
	}
	return nil
}
