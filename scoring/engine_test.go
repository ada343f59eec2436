package scoring

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/racematch/models"
	"github.com/padraicbc/racematch/store"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intPtr(v int) *int { return &v }

func testRace(id, finishers int) *models.Race {
	return &models.Race{ID: id, Name: fmt.Sprintf("Race %d", id), Distance: models.DistanceTenK, TotalFinishers: finishers}
}

func testSeriesRaces(races ...*models.Race) []models.RaceSeriesRace {
	out := make([]models.RaceSeriesRace, 0, len(races))
	for i, r := range races {
		out = append(out, models.RaceSeriesRace{SeriesID: 1, RaceID: r.ID, SeriesRaceNumber: i + 1, PointsMultiplier: dec("1.00"), Race: r})
	}
	return out
}

func testResult(id, runnerID, raceID, place int) models.Result {
	return models.Result{
		ID: id, RunnerID: runnerID, RaceID: raceID, OverallPlace: place, FinishTime: "40:00",
		Runner: &models.Runner{ID: runnerID, Name: fmt.Sprintf("Runner %d", runnerID)},
	}
}

func testSeries(minRaces int) models.RaceSeries {
	return models.RaceSeries{ID: 1, Name: "Bay Area Grand Prix", Year: 2026, ScoringSystem: models.ScoringPoints, MinimumRaces: minRaces}
}

// Race 1 has 150 finishers (+5), race 2 has 50 (+0), race 3 has 300 (+15).
func threeRaceFixture() ([]models.RaceSeriesRace, []models.Result) {
	srs := testSeriesRaces(testRace(11, 150), testRace(12, 50), testRace(13, 300))
	results := []models.Result{
		testResult(1, 1, 11, 1),
		testResult(2, 1, 12, 3),
		testResult(3, 2, 11, 2),
		testResult(4, 3, 11, 5),
		testResult(5, 3, 12, 1),
		testResult(6, 3, 13, 10),
	}
	return srs, results
}

func TestComputeLeaderboardMinimumRaces(t *testing.T) {
	srs, results := threeRaceFixture()

	lb, err := ComputeLeaderboard(testSeries(2), srs, results, nil)
	require.NoError(t, err)
	require.Len(t, lb.Standings, 2)
	assert.Equal(t, 2, lb.TotalParticipants)

	first, second := lb.Standings[0], lb.Standings[1]
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, 3, first.Runner.ID)
	assert.Equal(t, "Runner 3", first.Runner.Name)
	assert.True(t, dec("307").Equal(first.TotalPoints), first.TotalPoints.String())
	assert.True(t, dec("102.33").Equal(first.AveragePoints), first.AveragePoints.String())
	assert.True(t, dec("106").Equal(first.BestRacePoints))
	assert.Equal(t, 3, first.RacesCompleted)

	assert.Equal(t, 2, second.Rank)
	assert.Equal(t, 1, second.Runner.ID)
	assert.True(t, dec("203").Equal(second.TotalPoints))
	assert.True(t, dec("101.5").Equal(second.AveragePoints))
	assert.True(t, dec("105").Equal(second.BestRacePoints))

	for _, s := range lb.Standings {
		assert.NotEqual(t, 2, s.Runner.ID, "runner below minimum races must be excluded")
		assert.GreaterOrEqual(t, s.RacesCompleted, 2)
	}
}

func TestComputeLeaderboardTopN(t *testing.T) {
	srs, results := threeRaceFixture()
	series := testSeries(1)
	series.MaxRacesForScore = intPtr(2)

	lb, err := ComputeLeaderboard(series, srs, results, nil)
	require.NoError(t, err)
	require.Len(t, lb.Standings, 3)

	top := lb.Standings[0]
	assert.Equal(t, 3, top.Runner.ID)
	assert.True(t, dec("207").Equal(top.TotalPoints), top.TotalPoints.String())
	assert.True(t, dec("103.5").Equal(top.AveragePoints))
	assert.True(t, dec("106").Equal(top.BestRacePoints))
	assert.Equal(t, 3, top.RacesCompleted)

	require.Len(t, top.Results, 3)
	// Results are listed in series order.
	assert.Equal(t, 11, top.Results[0].Result.RaceID)
	assert.True(t, top.Results[0].Counted)
	assert.Equal(t, 12, top.Results[1].Result.RaceID)
	assert.False(t, top.Results[1].Counted)
	assert.True(t, dec("100").Equal(top.Results[1].Points))
	assert.Equal(t, 13, top.Results[2].Result.RaceID)
	assert.True(t, top.Results[2].Counted)

	assert.Equal(t, []int{3, 1, 2}, []int{lb.Standings[0].Runner.ID, lb.Standings[1].Runner.ID, lb.Standings[2].Runner.ID})
}

func TestComputeLeaderboardRanksAreSequentialOnTies(t *testing.T) {
	srs := testSeriesRaces(testRace(11, 150), testRace(12, 50))
	results := []models.Result{
		testResult(1, 5, 12, 1),  // 100
		testResult(2, 4, 11, 6),  // 95 + 5
		testResult(3, 6, 11, 56), // 45 + 5
		testResult(4, 6, 12, 51), // 50
	}

	lb, err := ComputeLeaderboard(testSeries(1), srs, results, nil)
	require.NoError(t, err)
	require.Len(t, lb.Standings, 3)

	for i, s := range lb.Standings {
		assert.Equal(t, i+1, s.Rank)
		assert.True(t, dec("100").Equal(s.TotalPoints))
	}
	assert.Equal(t, 6, lb.Standings[0].Runner.ID, "more races completed wins a tie")
	assert.Equal(t, 4, lb.Standings[1].Runner.ID)
	assert.Equal(t, 5, lb.Standings[2].Runner.ID)
}

func TestComputeLeaderboardDuplicateResultsCountOnce(t *testing.T) {
	srs := testSeriesRaces(testRace(11, 150), testRace(12, 50))
	results := []models.Result{
		testResult(1, 1, 11, 3),
		testResult(2, 1, 11, 1),
	}

	lb, err := ComputeLeaderboard(testSeries(2), srs, results, nil)
	require.NoError(t, err)
	assert.Empty(t, lb.Standings)

	lb, err = ComputeLeaderboard(testSeries(1), srs, results, nil)
	require.NoError(t, err)
	require.Len(t, lb.Standings, 1)
	assert.Equal(t, 1, lb.Standings[0].RacesCompleted)
	assert.True(t, dec("105").Equal(lb.Standings[0].TotalPoints))
	assert.Equal(t, 2, lb.Standings[0].Results[0].Result.ID)
}

func TestComputeLeaderboardMultiplierAndFinisherFallback(t *testing.T) {
	srs := testSeriesRaces(testRace(11, 0))
	srs[0].PointsMultiplier = dec("1.5")
	var results []models.Result
	for i := 1; i <= 120; i++ {
		results = append(results, testResult(i, i, 11, i))
	}

	lb, err := ComputeLeaderboard(testSeries(1), srs, results, nil)
	require.NoError(t, err)
	require.Len(t, lb.Standings, 120)
	// 120 stored results give a +5 size bonus when the race stats are empty.
	assert.True(t, dec("157.5").Equal(lb.Standings[0].TotalPoints), lb.Standings[0].TotalPoints.String())
	assert.True(t, dec("7.5").Equal(lb.Standings[119].TotalPoints), lb.Standings[119].TotalPoints.String())
}

func TestComputeLeaderboardPrivateSeries(t *testing.T) {
	srs, results := threeRaceFixture()
	series := testSeries(1)
	series.IsPrivate = true

	lb, err := ComputeLeaderboard(series, srs, results, []int{1, 2})
	require.NoError(t, err)
	require.Len(t, lb.Standings, 2)
	assert.Equal(t, 1, lb.Standings[0].Runner.ID)
	assert.Equal(t, 2, lb.Standings[1].Runner.ID)

	lb, err = ComputeLeaderboard(series, srs, results, nil)
	require.NoError(t, err)
	assert.Empty(t, lb.Standings)
}

func TestComputeLeaderboardEmptySeries(t *testing.T) {
	lb, err := ComputeLeaderboard(testSeries(1), nil, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, lb.Standings)
	assert.Empty(t, lb.Standings)
	assert.Zero(t, lb.TotalParticipants)
	assert.Equal(t, "Bay Area Grand Prix", lb.Series.Name)
}

func TestComputeLeaderboardErrors(t *testing.T) {
	srs, results := threeRaceFixture()

	for _, sys := range []models.ScoringSystem{models.ScoringTime, models.ScoringPlacement} {
		series := testSeries(1)
		series.ScoringSystem = sys
		_, err := ComputeLeaderboard(series, srs, results, nil)
		assert.ErrorIs(t, err, ErrScoringSystemNotImplemented, string(sys))
	}

	series := testSeries(1)
	series.ScoringSystem = "relay"
	_, err := ComputeLeaderboard(series, srs, results, nil)
	assert.ErrorIs(t, err, ErrInvalidSeries)

	_, err = ComputeLeaderboard(testSeries(0), srs, results, nil)
	assert.ErrorIs(t, err, ErrInvalidSeries)

	series = testSeries(1)
	series.MaxRacesForScore = intPtr(0)
	_, err = ComputeLeaderboard(series, srs, results, nil)
	assert.ErrorIs(t, err, ErrInvalidSeries)

	broken := testSeriesRaces(testRace(11, 150))
	broken = append(broken, models.RaceSeriesRace{SeriesID: 1, RaceID: 99, SeriesRaceNumber: 2})
	_, err = ComputeLeaderboard(testSeries(1), broken, results, nil)
	assert.ErrorIs(t, err, ErrRaceMissing)
}

func seedSeries(t *testing.T, ms *store.MemStore, private bool) (seriesID int, raceIDs []int) {
	t.Helper()
	ctx := context.Background()

	var runners []int
	for _, name := range []string{"Marcus Johnson", "Sarah Chen", "Alex Thompson"} {
		r := &models.Runner{Name: name, Gender: models.GenderMale}
		require.NoError(t, ms.CreateRunner(ctx, r))
		runners = append(runners, r.ID)
	}

	series := &models.RaceSeries{Name: "Fall Classic", Year: 2026, ScoringSystem: models.ScoringPoints, MinimumRaces: 2, IsPrivate: private}
	require.NoError(t, ms.CreateSeries(ctx, series))

	for i := range 2 {
		race := &models.Race{Name: fmt.Sprintf("Leg %d", i+1), Date: "2026-09-01", Distance: models.DistanceFiveK, TotalFinishers: 100}
		require.NoError(t, ms.CreateRace(ctx, race))
		raceIDs = append(raceIDs, race.ID)
		require.NoError(t, ms.AddSeriesRace(ctx, &models.RaceSeriesRace{
			SeriesID: series.ID, RaceID: race.ID, SeriesRaceNumber: i + 1, PointsMultiplier: dec("1"),
		}))
		for place, runnerID := range runners {
			if i == 1 && runnerID == runners[2] {
				continue
			}
			_, err := ms.CreateResult(ctx, &models.Result{
				RunnerID: runnerID, RaceID: race.ID, OverallPlace: place + 1, FinishTime: "20:00",
				SourceProvider: "runsignup", SourceResultID: fmt.Sprintf("%d-%d", race.ID, runnerID),
			})
			require.NoError(t, err)
		}
	}
	return series.ID, raceIDs
}

func TestEngineLeaderboard(t *testing.T) {
	ms := store.NewMemStore()
	seriesID, _ := seedSeries(t, ms, false)

	lb, err := NewEngine(ms, nil).Leaderboard(context.Background(), seriesID)
	require.NoError(t, err)
	require.Len(t, lb.Standings, 2)
	assert.Equal(t, "Marcus Johnson", lb.Standings[0].Runner.Name)
	assert.True(t, dec("210").Equal(lb.Standings[0].TotalPoints), lb.Standings[0].TotalPoints.String())
	assert.Equal(t, "Sarah Chen", lb.Standings[1].Runner.Name)
}

func TestEnginePrivateSeriesUsesParticipants(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemStore()
	seriesID, _ := seedSeries(t, ms, true)

	e := NewEngine(ms, nil)
	lb, err := e.Leaderboard(ctx, seriesID)
	require.NoError(t, err)
	assert.Empty(t, lb.Standings)

	require.NoError(t, ms.AddSeriesParticipant(ctx, seriesID, 2))
	lb, err = e.Leaderboard(ctx, seriesID)
	require.NoError(t, err)
	require.Len(t, lb.Standings, 1)
	assert.Equal(t, "Sarah Chen", lb.Standings[0].Runner.Name)
	assert.Equal(t, 1, lb.Standings[0].Rank)
}

func TestEngineErrors(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemStore()
	seriesID, raceIDs := seedSeries(t, ms, false)
	e := NewEngine(ms, nil)

	_, err := e.Leaderboard(ctx, 404)
	assert.ErrorIs(t, err, ErrSeriesNotFound)

	ms.DeleteRace(ctx, raceIDs[1])
	lb, err := e.Leaderboard(ctx, seriesID)
	assert.ErrorIs(t, err, ErrRaceMissing)
	assert.Nil(t, lb)
}

func TestEngineLeaderboards(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemStore()
	first, _ := seedSeries(t, ms, false)
	second, _ := seedSeries(t, ms, true)

	lbs, err := NewEngine(ms, nil).Leaderboards(ctx, []int{second, first})
	require.NoError(t, err)
	require.Len(t, lbs, 2)
	assert.Equal(t, second, lbs[0].Series.ID)
	assert.Equal(t, first, lbs[1].Series.ID)
	assert.Len(t, lbs[1].Standings, 2)

	_, err = NewEngine(ms, nil).Leaderboards(ctx, []int{first, 404})
	assert.ErrorIs(t, err, ErrSeriesNotFound)
}
