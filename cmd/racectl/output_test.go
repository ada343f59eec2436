package main

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/racematch/importer"
	"github.com/padraicbc/racematch/models"
)

func TestRenderLeaderboardTable(t *testing.T) {
	lb := &models.SeriesLeaderboard{
		Series: models.RaceSeries{Name: "Spring Series", Year: 2024},
		Standings: []models.SeriesStanding{{
			Rank:           1,
			Runner:         models.Runner{Name: "Marcus Johnson"},
			TotalPoints:    decimal.NewFromInt(210),
			AveragePoints:  decimal.NewFromInt(105),
			RacesCompleted: 2,
			BestRacePoints: decimal.RequireFromString("106.5"),
		}},
		TotalParticipants: 1,
	}

	var buf bytes.Buffer
	require.NoError(t, render(&buf, "table", lb))
	out := buf.String()
	assert.Contains(t, out, "Spring Series (2024) - 1 participants")
	assert.Contains(t, out, "Marcus Johnson")
	assert.Contains(t, out, "210.00")
	assert.Contains(t, out, "106.50")
}

func TestRenderMatchesTable(t *testing.T) {
	cand := 4
	matches := []models.RunnerMatch{{
		ID:                7,
		CandidateRunnerID: &cand,
		RawRunnerData:     []byte(`{"name":"Marc Johnson","finishTime":"3:10:00"}`),
		MatchScore:        88,
		MatchReasons:      []string{"Similar name (83%)", "Age match"},
		Status:            models.MatchApproved,
	}}

	var buf bytes.Buffer
	require.NoError(t, render(&buf, "", matches))
	out := buf.String()
	assert.Contains(t, out, "Marc Johnson")
	assert.Contains(t, out, "approved")
	assert.Contains(t, out, "Similar name (83%); Age match")

	buf.Reset()
	require.NoError(t, render(&buf, "table", []models.RunnerMatch{}))
	assert.Equal(t, "No matches found.\n", buf.String())
}

func TestRenderReportJSON(t *testing.T) {
	rep := &importer.Report{
		BatchID: "b-1",
		RaceID:  3,
		Stats:   importer.Stats{Total: 2, Imported: 1, Failed: 1},
		Errors:  []importer.RecordError{{Index: 1, RawName: "", Message: "runner name is required"}},
	}

	var buf bytes.Buffer
	require.NoError(t, render(&buf, "json", rep))
	assert.Contains(t, buf.String(), `"batchID": "b-1"`)
	assert.Contains(t, buf.String(), `"error": "runner name is required"`)

	buf.Reset()
	require.NoError(t, render(&buf, "table", rep))
	assert.Contains(t, buf.String(), "Errors:")
}

func TestRenderUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, render(&buf, "xml", []models.RunnerMatch{}))
	assert.Error(t, render(&buf, "table", 42))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
