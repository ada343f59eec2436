package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/padraicbc/racematch/importer"
	"github.com/padraicbc/racematch/matching"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import a provider result batch",
	Long: `Import a JSON batch of provider results into a race.

Examples:
  racectl import results.json              # raceID taken from the file
  racectl import --race 12 results.json    # override the target race
  cat results.json | racectl import -      # read from stdin`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	importRace        int
	importConcurrency int
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().IntVar(&importRace, "race", 0, "target race id (overrides the file)")
	importCmd.Flags().IntVar(&importConcurrency, "concurrency", 0, "records resolved in parallel (default from IMPORT_CONCURRENCY)")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	batch, err := importer.DecodeBatch(r)
	if err != nil {
		return err
	}
	if importRace > 0 {
		batch.RaceID = importRace
	}
	if batch.RaceID <= 0 {
		return fmt.Errorf("no target race: set raceID in the file or pass --race")
	}

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	resolver, err := matching.NewResolver(e.repo, e.cfg.Matching(), e.cfg.MatchUseBlocking, e.logger)
	if err != nil {
		return err
	}
	concurrency := e.cfg.ImportConcurrency
	if importConcurrency > 0 {
		concurrency = importConcurrency
	}

	rep, err := importer.New(e.repo, resolver, concurrency, e.logger).Import(ctx, batch)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return render(cmd.OutOrStdout(), outputFmt, rep)
}
