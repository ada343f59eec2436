// cmd/migrate/main.go
// Replays results from a legacy MySQL results database through identity
// resolution into the local PostgreSQL database.
//
// Legacy races are created locally and the new id is written back to
// races.migrated_race_id, so a re-run only picks up races that have not
// been migrated yet. Result rows are keyed by their legacy id, which the
// importer treats as the source result id.
//
// Usage:
//
//	MYSQL_DSN="user:pass@tcp(host:3306)/results" \
//	DB_PASS="pgpass" \
//	go run ./cmd/migrate -provider legacy
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/padraicbc/racematch/config"
	bundb "github.com/padraicbc/racematch/db"
	"github.com/padraicbc/racematch/importer"
	applog "github.com/padraicbc/racematch/logger"
	"github.com/padraicbc/racematch/matching"
	"github.com/padraicbc/racematch/models"
	"github.com/padraicbc/racematch/store"
)

const batchSize = 500

type legacyRace struct {
	ID            int
	Name          string
	Date          time.Time
	Distance      string
	DistanceMiles sql.NullFloat64
}

func main() {
	provider := flag.String("provider", "legacy", "source provider recorded on imported results")
	flag.Parse()

	ctx := context.Background()
	cfg := config.Load()

	logger, err := applog.NewCLI(cfg.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// --- MySQL ---
	if cfg.MySQLDSN == "" {
		log.Fatal("MYSQL_DSN required, e.g.: user:pass@tcp(host:3306)/results")
	}
	myCfg, err := mysql.ParseDSN(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("parse MYSQL_DSN: %v", err)
	}
	myCfg.ParseTime = true
	connector, err := mysql.NewConnector(myCfg)
	if err != nil {
		log.Fatalf("mysql connector: %v", err)
	}
	myDB := sql.OpenDB(connector)
	defer myDB.Close()
	myDB.SetMaxOpenConns(4)
	if err := myDB.PingContext(ctx); err != nil {
		log.Fatalf("ping mysql: %v", err)
	}
	log.Println("connected to MySQL")

	// --- PostgreSQL ---
	pgDB, err := bundb.Setup(ctx, cfg)
	if err != nil {
		log.Fatalf("setup postgres: %v", err)
	}
	defer pgDB.Close()
	log.Println("connected to PostgreSQL")

	if err := bundb.CreateTables(ctx, pgDB); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	repo := store.NewPGStore(pgDB)
	resolver, err := matching.NewResolver(repo, cfg.Matching(), cfg.MatchUseBlocking, logger)
	if err != nil {
		log.Fatalf("resolver: %v", err)
	}
	imp := importer.New(repo, resolver, cfg.ImportConcurrency, logger)

	races, err := pendingRaces(ctx, myDB)
	if err != nil {
		log.Fatalf("read legacy races: %v", err)
	}
	log.Printf("%d legacy races to migrate", len(races))

	var total importer.Stats
	for _, lr := range races {
		st, err := migrateRace(ctx, myDB, repo, imp, lr, *provider)
		if err != nil {
			log.Fatalf("migrate race %d: %v", lr.ID, err)
		}
		log.Printf("%-40s  %d imported, %d new runners, %d review, %d failed",
			lr.Name, st.Imported, st.NewRunners, st.NeedsReview, st.Failed)
		addStats(&total, st)
	}

	log.Printf("migration complete: %d records, %d imported, %d new runners, %d matched, %d review, %d duplicates, %d failed",
		total.Total, total.Imported, total.NewRunners, total.Matched, total.NeedsReview, total.Duplicates, total.Failed)
}

// --- helpers ---

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullString(n sql.NullString) string {
	if !n.Valid {
		return ""
	}
	return n.String
}

func fmtDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func addStats(dst *importer.Stats, s importer.Stats) {
	dst.Total += s.Total
	dst.Imported += s.Imported
	dst.NewRunners += s.NewRunners
	dst.Matched += s.Matched
	dst.NeedsReview += s.NeedsReview
	dst.Duplicates += s.Duplicates
	dst.Failed += s.Failed
}

// legacyDistance maps the free-text distances of the legacy schema to race
// distance codes.
func legacyDistance(d string) string {
	switch d {
	case "marathon", "26.2", "42k":
		return models.DistanceMarathon
	case "half", "half-marathon", "13.1", "21k":
		return models.DistanceHalfMarathon
	case "10 mile", "10-mile", "10m":
		return models.DistanceTenMile
	case "10k", "10K":
		return models.DistanceTenK
	case "5k", "5K":
		return models.DistanceFiveK
	}
	return models.DistanceOther
}

// --- migration ---

func pendingRaces(ctx context.Context, myDB *sql.DB) ([]legacyRace, error) {
	rows, err := myDB.QueryContext(ctx,
		`SELECT id, name, race_date, distance, distance_miles
		 FROM races
		 WHERE migrated_race_id IS NULL
		 ORDER BY race_date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []legacyRace
	for rows.Next() {
		var r legacyRace
		if err := rows.Scan(&r.ID, &r.Name, &r.Date, &r.Distance, &r.DistanceMiles); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func migrateRace(ctx context.Context, myDB *sql.DB, repo store.Repository, imp *importer.Importer, lr legacyRace, provider string) (importer.Stats, error) {
	var total importer.Stats

	race := &models.Race{
		Name:          lr.Name,
		Date:          fmtDate(lr.Date),
		Distance:      legacyDistance(lr.Distance),
		DistanceMiles: lr.DistanceMiles.Float64,
	}
	if err := repo.CreateRace(ctx, race); err != nil {
		return total, fmt.Errorf("create race: %w", err)
	}

	rows, err := myDB.QueryContext(ctx,
		`SELECT id, runner_name, age, gender, city, state, location,
		        finish_time, overall_place, gender_place, age_group_place
		 FROM raw_results
		 WHERE race_id = ?
		 ORDER BY overall_place, id`, lr.ID)
	if err != nil {
		return total, err
	}
	defer rows.Close()

	batch := importer.Batch{
		SourceProvider: provider,
		SourceRaceID:   strconv.Itoa(lr.ID),
		RaceID:         race.ID,
	}
	flush := func() error {
		if len(batch.Records) == 0 {
			return nil
		}
		rep, err := imp.Import(ctx, batch)
		if err != nil {
			return err
		}
		addStats(&total, rep.Stats)
		for _, e := range rep.Errors {
			log.Printf("race %d: %v", lr.ID, &e)
		}
		batch.Records = batch.Records[:0]
		return nil
	}

	for rows.Next() {
		var (
			id            int
			name          string
			age           sql.NullInt64
			gender        sql.NullString
			city          sql.NullString
			state         sql.NullString
			location      sql.NullString
			finishTime    string
			overallPlace  sql.NullInt64
			genderPlace   sql.NullInt64
			ageGroupPlace sql.NullInt64
		)
		if err := rows.Scan(&id, &name, &age, &gender, &city, &state, &location,
			&finishTime, &overallPlace, &genderPlace, &ageGroupPlace); err != nil {
			return total, err
		}
		batch.Records = append(batch.Records, models.RawRunnerData{
			Name:           name,
			Age:            nullInt(age),
			Gender:         nullString(gender),
			City:           nullString(city),
			State:          nullString(state),
			Location:       nullString(location),
			FinishTime:     finishTime,
			OverallPlace:   int(overallPlace.Int64),
			GenderPlace:    nullInt(genderPlace),
			AgeGroupPlace:  nullInt(ageGroupPlace),
			SourceResultID: strconv.Itoa(id),
		})
		if len(batch.Records) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return total, err
	}
	if err := flush(); err != nil {
		return total, err
	}

	if _, err := myDB.ExecContext(ctx,
		"UPDATE races SET migrated_race_id = ? WHERE id = ?", race.ID, lr.ID); err != nil {
		return total, fmt.Errorf("mark race migrated: %w", err)
	}
	return total, nil
}
