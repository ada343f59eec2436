package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/racematch/models"
)

func TestMemStoreAddSeriesRaceUpserts(t *testing.T) {
	ctx := context.Background()
	ms := NewMemStore()

	series := &models.RaceSeries{Name: "Summer Series", Year: 2026, ScoringSystem: models.ScoringPoints, MinimumRaces: 1}
	require.NoError(t, ms.CreateSeries(ctx, series))
	race := &models.Race{Name: "Harbor 10K", Date: "2026-06-14", Distance: models.DistanceTenK}
	require.NoError(t, ms.CreateRace(ctx, race))

	require.NoError(t, ms.AddSeriesRace(ctx, &models.RaceSeriesRace{
		SeriesID: series.ID, RaceID: race.ID, SeriesRaceNumber: 1, PointsMultiplier: decimal.NewFromInt(1),
	}))
	require.NoError(t, ms.AddSeriesRace(ctx, &models.RaceSeriesRace{
		SeriesID: series.ID, RaceID: race.ID, SeriesRaceNumber: 3, PointsMultiplier: decimal.RequireFromString("1.5"),
	}))

	links, err := ms.GetSeriesRaces(ctx, series.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, 3, links[0].SeriesRaceNumber)
	assert.True(t, decimal.RequireFromString("1.5").Equal(links[0].PointsMultiplier))

	err = ms.AddSeriesRace(ctx, &models.RaceSeriesRace{SeriesID: series.ID, RaceID: 404, SeriesRaceNumber: 2})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStoreAlternateNameExtendsMatchKeys(t *testing.T) {
	ctx := context.Background()
	ms := NewMemStore()

	r := &models.Runner{Name: "Jane Doe", Gender: models.GenderFemale, MatchKeys: []string{"d"}}
	require.NoError(t, ms.CreateRunner(ctx, r))

	got, err := ms.GetRunnersByMatchKey(ctx, []string{"s", "j"})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, ms.AddAlternateName(ctx, r.ID, "Jane Smith"))
	require.NoError(t, ms.AddAlternateName(ctx, r.ID, "J. Smith"))

	got, err = ms.GetRunnersByMatchKey(ctx, []string{"s", "j"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"d", "s"}, got[0].MatchKeys)
	assert.Equal(t, []string{"Jane Smith", "J. Smith"}, got[0].AlternateNames)

	assert.ErrorIs(t, ms.AddAlternateName(ctx, 99, "Nobody"), ErrNotFound)
}
