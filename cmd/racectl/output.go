package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"github.com/padraicbc/racematch/importer"
	"github.com/padraicbc/racematch/models"
)

// render writes data in the requested format.
func render(w io.Writer, format string, data any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "table", "":
		return table(w, data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func table(w io.Writer, data any) error {
	switch v := data.(type) {
	case *importer.Report:
		return reportTable(w, v)
	case *models.SeriesLeaderboard:
		return leaderboardTable(w, v)
	case []*models.SeriesLeaderboard:
		for i, lb := range v {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := leaderboardTable(w, lb); err != nil {
				return err
			}
		}
		return nil
	case []models.RunnerMatch:
		return matchesTable(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func reportTable(w io.Writer, rep *importer.Report) error {
	fmt.Fprintf(w, "Batch:   %s\n", rep.BatchID)
	fmt.Fprintf(w, "Race:    %d\n\n", rep.RaceID)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOTAL\tIMPORTED\tNEW\tMATCHED\tREVIEW\tDUPLICATES\tFAILED")
	fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
		rep.Stats.Total, rep.Stats.Imported, rep.Stats.NewRunners, rep.Stats.Matched,
		rep.Stats.NeedsReview, rep.Stats.Duplicates, rep.Stats.Failed)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(rep.Errors) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nErrors:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAME\tERROR")
	for _, e := range rep.Errors {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.Index, truncate(e.RawName, 30), e.Message)
	}
	return tw.Flush()
}

func leaderboardTable(w io.Writer, lb *models.SeriesLeaderboard) error {
	fmt.Fprintf(w, "%s (%d) - %d participants\n", lb.Series.Name, lb.Series.Year, lb.TotalParticipants)
	if len(lb.Standings) == 0 {
		fmt.Fprintln(w, "No standings.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tRUNNER\tPOINTS\tAVERAGE\tRACES\tBEST")
	for _, s := range lb.Standings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			s.Rank,
			truncate(s.Runner.Name, 30),
			s.TotalPoints.StringFixed(2),
			s.AveragePoints.StringFixed(2),
			s.RacesCompleted,
			s.BestRacePoints.StringFixed(2),
		)
	}
	return tw.Flush()
}

func matchesTable(w io.Writer, matches []models.RunnerMatch) error {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matches found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSCORE\tRAW NAME\tCANDIDATE\tCREATED\tREASONS")
	for _, m := range matches {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%s\n",
			m.ID,
			m.Status,
			m.MatchScore,
			truncate(rawName(m), 30),
			optID(m.CandidateRunnerID),
			optID(m.CreatedRunnerID),
			strings.Join(m.MatchReasons, "; "),
		)
	}
	return tw.Flush()
}

func rawName(m models.RunnerMatch) string {
	var raw models.RawRunnerData
	if err := json.Unmarshal(m.RawRunnerData, &raw); err != nil {
		return "?"
	}
	return raw.Name
}

func optID(id *int) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprint(*id)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
