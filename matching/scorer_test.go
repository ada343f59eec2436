package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/padraicbc/racematch/models"
)

func intPtr(v int) *int { return &v }

func TestNameSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want int
	}{
		{"exact", "marcus johnson", "marcus johnson", 100},
		{"swapped", "chen sarah", "sarah chen", 90},
		{"middle initial", "sarah j chen", "sarah chen", 70},
		{"same last", "sara chen", "sarah chen", 70},
		{"same first", "sarah chen", "sarah lee", 70},
		{"single token last", "chen", "sarah chen", 70},
		{"edit distance", "jon smith", "john smyth", 80},
		{"nothing in common", "abc", "xyz", 0},
		{"empty", "", "sarah chen", 0},
		{"both empty", "", "", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NameSimilarity(tc.a, tc.b))
		})
	}
}

func TestAgeScore(t *testing.T) {
	cases := []struct {
		raw, runner *int
		want        int
	}{
		{nil, intPtr(30), 0},
		{intPtr(30), nil, 0},
		{intPtr(30), intPtr(30), 25},
		{intPtr(31), intPtr(30), 20},
		{intPtr(28), intPtr(30), 15},
		{intPtr(35), intPtr(30), 10},
		{intPtr(36), intPtr(30), 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AgeScore(tc.raw, tc.runner))
	}
}

func TestGenderScore(t *testing.T) {
	assert.Equal(t, 15, GenderScore("female", "F"))
	assert.Equal(t, 15, GenderScore("M", "M"))
	assert.Equal(t, 0, GenderScore("M", "F"))
	assert.Equal(t, 0, GenderScore("", "M"))
	assert.Equal(t, 0, GenderScore("F", ""))
}

func TestLocationScoreUsesCombinedLocation(t *testing.T) {
	r := &models.Runner{City: "San Francisco", State: "CA"}

	city, state := LocationScore(models.RawRunnerData{Location: "san francisco, California"}, r)
	assert.Equal(t, 15, city)
	assert.Equal(t, 5, state)

	city, state = LocationScore(models.RawRunnerData{City: "Oakland", Location: "San Francisco, CA"}, r)
	assert.Equal(t, 0, city)
	assert.Equal(t, 5, state)

	city, state = LocationScore(models.RawRunnerData{}, &models.Runner{})
	assert.Equal(t, 0, city)
	assert.Equal(t, 0, state)
}

func TestScoreExactSelfMatch(t *testing.T) {
	runners := []models.Runner{
		{ID: 1, Name: "Marcus Johnson", Age: intPtr(32), Gender: "M", City: "San Francisco", State: "CA"},
		{ID: 2, Name: "Mary-Anne O'Neil", Age: intPtr(51), Gender: "F", City: "Boston", State: "MA"},
		{ID: 3, Name: "Q", Age: intPtr(19), Gender: "NB", City: "Austin", State: "TX"},
	}
	for _, r := range runners {
		raw := models.RawRunnerData{Name: r.Name, Age: r.Age, Gender: r.Gender, City: r.City, State: r.State}
		assert.Equal(t, 100, Score(raw, &r), r.Name)
	}
}

func TestScoreMissingAgeStillCountsInDenominator(t *testing.T) {
	r := &models.Runner{Name: "Marcus Johnson", Age: intPtr(32), Gender: "M", City: "San Francisco", State: "CA"}
	raw := models.RawRunnerData{Name: "Marcus Johnson", Gender: "M", City: "San Francisco", State: "CA"}
	assert.Equal(t, 75, Score(raw, r))
}

func TestScoreSarahChen(t *testing.T) {
	r := &models.Runner{Name: "Sarah Chen", Age: intPtr(28), Gender: "F", City: "San Francisco", State: "CA"}
	raw := models.RawRunnerData{Name: "Sarah J. Chen", Age: intPtr(28), Gender: "F", City: "San Francisco", State: "CA"}

	assert.Equal(t, 88, Score(raw, r))
	assert.Equal(t, []string{
		"First or last name match",
		"Age match",
		"Gender match",
		"City match",
		"State match",
	}, Reasons(raw, r))
}

func TestScoreSwappedNames(t *testing.T) {
	r := &models.Runner{Name: "Sarah Chen", Age: intPtr(28), Gender: "F", City: "San Francisco", State: "CA"}
	raw := models.RawRunnerData{Name: "Chen Sarah", Age: intPtr(28), Gender: "F", City: "San Francisco", State: "CA"}

	name, _ := NameScore(raw.Name, r)
	assert.Equal(t, 90, name)
	assert.Equal(t, 96, Score(raw, r))
}

func TestNameScoreAlternateNames(t *testing.T) {
	r := &models.Runner{Name: "Katherine Smith", AlternateNames: []string{"Kate Smith"}, Gender: "F"}
	raw := models.RawRunnerData{Name: "kate smith", Gender: "F"}

	name, matched := NameScore(raw.Name, r)
	assert.Equal(t, 100, name)
	assert.Equal(t, "Kate Smith", matched)
	assert.Equal(t, []string{"Exact name match", "Matched alternate name Kate Smith", "Gender match"}, Reasons(raw, r))
}

func TestReasonsAgeDifference(t *testing.T) {
	r := &models.Runner{Name: "Jon Smith", Age: intPtr(40)}
	raw := models.RawRunnerData{Name: "John Smyth", Age: intPtr(42)}
	assert.Equal(t, []string{"Similar name (80%)", "Age difference 2"}, Reasons(raw, r))
}
