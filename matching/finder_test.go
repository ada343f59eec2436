package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/racematch/models"
	"github.com/padraicbc/racematch/store"
)

func TestRankCandidates(t *testing.T) {
	runners := []models.Runner{
		{ID: 1, Name: "Sarah Chen", Age: intPtr(28), Gender: "F", City: "San Francisco", State: "CA"},
		{ID: 2, Name: "Sarah Chen", Age: intPtr(28), Gender: "F", City: "Oakland", State: "CA"},
		{ID: 3, Name: "Marcus Johnson", Age: intPtr(32), Gender: "M"},
		{ID: 4, Name: "Sarah Chen", Age: intPtr(28), Gender: "F", City: "San Francisco", State: "CA"},
	}
	raw := models.RawRunnerData{Name: "Sarah Chen", Age: intPtr(28), Gender: "F", City: "San Francisco", State: "CA"}

	got := RankCandidates(raw, runners, 60)
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].Runner.ID)
	assert.Equal(t, 100, got[0].Score)
	assert.Equal(t, 4, got[1].Runner.ID)
	assert.Equal(t, 2, got[2].Runner.ID)
	assert.Equal(t, 85, got[2].Score)
	assert.NotEmpty(t, got[0].Reasons)
}

func TestRankCandidatesEmpty(t *testing.T) {
	assert.Empty(t, RankCandidates(models.RawRunnerData{Name: "Alex Thompson"}, nil, 60))
}

func TestBlockingKeys(t *testing.T) {
	assert.Equal(t, []string{"c", "s"}, BlockingKeys("Sarah J. Chen"))
	assert.Equal(t, []string{"s"}, BlockingKeys("Sam Smith"))
	assert.Equal(t, []string{"m"}, BlockingKeys("Madonna"))
	assert.Empty(t, BlockingKeys("李小龙"))
}

func TestFinderBlockingFindsSwappedNames(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemStore()
	for _, raw := range []models.RawRunnerData{
		{Name: "Sarah Chen", Age: intPtr(28), Gender: "F", City: "San Francisco", State: "CA"},
		{Name: "Sarah Baker", Age: intPtr(28), Gender: "F", City: "San Francisco", State: "CA"},
	} {
		require.NoError(t, ms.CreateRunner(ctx, NewRunnerFromRaw(raw)))
	}
	raw := models.RawRunnerData{Name: "Chen Sarah", Age: intPtr(28), Gender: "F", City: "San Francisco", State: "CA"}

	blocked, err := Finder{MinScore: 60, Blocking: true}.FindCandidates(ctx, ms, raw)
	require.NoError(t, err)
	full, err := Finder{MinScore: 60}.FindCandidates(ctx, ms, raw)
	require.NoError(t, err)

	require.NotEmpty(t, blocked)
	assert.Equal(t, "Sarah Chen", blocked[0].Runner.Name)
	assert.Equal(t, full[0], blocked[0])
	for _, c := range blocked {
		assert.NotEqual(t, "Sarah Baker", c.Runner.Name)
	}
}
