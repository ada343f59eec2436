package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/padraicbc/racematch/models"
	"github.com/padraicbc/racematch/scoring"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard <seriesID> [seriesID...]",
	Short: "Print series standings",
	Long: `Compute and print the standings of one or more series.

Examples:
  racectl leaderboard 3
  racectl leaderboard 3 4 5 -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLeaderboard,
}

var leaderboardTop int

func init() {
	rootCmd.AddCommand(leaderboardCmd)

	leaderboardCmd.Flags().IntVar(&leaderboardTop, "top", 0, "only print the first N standings")
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid series id %q", a)
		}
		ids = append(ids, id)
	}

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	boards, err := scoring.NewEngine(e.repo, e.logger).Leaderboards(ctx, ids)
	if err != nil {
		return err
	}
	if leaderboardTop > 0 {
		for _, lb := range boards {
			lb.Standings = topStandings(lb.Standings, leaderboardTop)
		}
	}

	if len(boards) == 1 {
		return render(cmd.OutOrStdout(), outputFmt, boards[0])
	}
	return render(cmd.OutOrStdout(), outputFmt, boards)
}

func topStandings(s []models.SeriesStanding, n int) []models.SeriesStanding {
	if len(s) > n {
		return s[:n]
	}
	return s
}
