package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/padraicbc/racematch/matching"
	"github.com/padraicbc/racematch/models"
)

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List runner matches",
	Long: `List runner identity decisions recorded for review.

Examples:
  racectl matches                   # pending matches
  racectl matches --status=all      # every recorded decision
  racectl matches --status=approved`,
	Args: cobra.NoArgs,
	RunE: runMatches,
}

var approveCmd = &cobra.Command{
	Use:   "approve <matchID>",
	Short: "Approve a pending match",
	Args:  cobra.ExactArgs(1),
	RunE:  runReview(true),
}

var rejectCmd = &cobra.Command{
	Use:   "reject <matchID>",
	Short: "Reject a pending match",
	Args:  cobra.ExactArgs(1),
	RunE:  runReview(false),
}

var (
	matchStatus string
	reviewer    string
)

func init() {
	rootCmd.AddCommand(matchesCmd, approveCmd, rejectCmd)

	matchesCmd.Flags().StringVar(&matchStatus, "status", string(models.MatchPending), "filter by status (pending, approved, rejected, auto_matched, all)")
	for _, c := range []*cobra.Command{approveCmd, rejectCmd} {
		c.Flags().StringVar(&reviewer, "by", "", "reviewer name (required)")
		_ = c.MarkFlagRequired("by")
	}
}

func runMatches(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	status := models.MatchStatus(matchStatus)
	if matchStatus == "all" {
		status = ""
	}

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	matches, err := matching.NewReviewer(e.repo, e.logger).ListMatches(ctx, status)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), outputFmt, matches)
}

func runReview(approve bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid match id %q", args[0])
		}

		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		rv := matching.NewReviewer(e.repo, e.logger)
		var m *models.RunnerMatch
		if approve {
			m, err = rv.ApproveMatch(ctx, id, reviewer)
		} else {
			m, err = rv.RejectMatch(ctx, id, reviewer)
		}
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), outputFmt, []models.RunnerMatch{*m})
	}
}
