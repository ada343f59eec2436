package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/padraicbc/racematch/config"
	bundb "github.com/padraicbc/racematch/db"
	applog "github.com/padraicbc/racematch/logger"
	"github.com/padraicbc/racematch/store"
)

var (
	outputFmt string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "racectl",
	Short: "Operate the race results service from the command line",
	Long: `racectl talks to the same PostgreSQL database as the API server.

It can:
  - import provider result files through identity resolution
  - list, approve and reject runner matches awaiting review
  - print series leaderboards`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "output format (table, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// env is what every subcommand needs: configuration, a repository and a logger.
type env struct {
	cfg    *config.Config
	repo   store.Repository
	logger *zap.Logger
	close  func()
}

func openEnv(ctx context.Context) (*env, error) {
	cfg := config.Load()

	logger, err := applog.NewCLI(cfg.Debug || verbose)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	db, err := bundb.Setup(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := bundb.CreateTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &env{
		cfg:    cfg,
		repo:   store.NewPGStore(db),
		logger: logger,
		close: func() {
			_ = logger.Sync()
			db.Close()
		},
	}, nil
}
