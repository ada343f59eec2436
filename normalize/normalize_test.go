package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Marcus Johnson", "marcus johnson"},
		{"  Sarah J. Chen ", "sarah j chen"},
		{"O'Brien,  Patrick", "obrien patrick"},
		{"Mary-Jane\tWatson", "maryjane watson"},
		{"José Núñez", "jos nez"},
		{"李小龙", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanName(tt.in))
		})
	}
}

func TestCleanNameIdempotent(t *testing.T) {
	inputs := []string{
		"Marcus Johnson", "  SARAH   j. CHEN", "o'neil-smith jr.", "12 Main St", "Ünïcödé nåmé", "\t\n",
	}
	for _, in := range inputs {
		once := CleanName(in)
		assert.Equal(t, once, CleanName(once), "input %q", in)
	}
}

func TestSplitName(t *testing.T) {
	first, last := SplitName("sarah j chen")
	assert.Equal(t, "sarah j", first)
	assert.Equal(t, "chen", last)

	first, last = SplitName("madonna")
	assert.Equal(t, "", first)
	assert.Equal(t, "madonna", last)

	first, last = SplitName("")
	assert.Empty(t, first)
	assert.Empty(t, last)
}

func TestBlockingKey(t *testing.T) {
	assert.Equal(t, "j", BlockingKey("Marcus Johnson"))
	assert.Equal(t, "c", BlockingKey("Sarah J. Chen"))
	assert.Equal(t, "", BlockingKey("..."))
}

func TestMatchKeys(t *testing.T) {
	assert.Equal(t, []string{"d", "s"}, MatchKeys("Jane Doe", "Jane Smith", "J. Doe"))
	assert.Equal(t, []string{"j"}, MatchKeys("Marcus Johnson"))
	assert.Empty(t, MatchKeys("...", ""))
}

func TestNormalizeGender(t *testing.T) {
	tests := map[string]string{
		"":          "M",
		"   ":       "M",
		"M":         "M",
		"male":      "M",
		"Man":       "M",
		"F":         "F",
		"Female":    "F",
		"NB":        "NB",
		"nonbinary": "NB",
		"X":         "NB",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeGender(in), "input %q", in)
	}
}

func TestNormalizeState(t *testing.T) {
	assert.Equal(t, "CA", NormalizeState("California"))
	assert.Equal(t, "NY", NormalizeState("  new   york "))
	assert.Equal(t, "CA", NormalizeState("ca"))
	assert.Equal(t, "ONTARIO", NormalizeState("Ontario"))
	assert.Equal(t, "", NormalizeState(""))
}

func TestParseLocation(t *testing.T) {
	assert.Equal(t, "San Francisco", ParseLocationCity("San Francisco, CA"))
	assert.Equal(t, "CA", ParseLocationState("San Francisco, CA"))

	assert.Equal(t, "Portland", ParseLocationCity("Portland, OR, USA"))
	assert.Equal(t, "OR, USA", ParseLocationState("Portland, OR, USA"))

	assert.Equal(t, "Berkeley", ParseLocationCity(" Berkeley "))
	assert.Equal(t, "", ParseLocationState("Berkeley"))
}

func TestParseFinishTime(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "2:15:32", want: 2*3600 + 15*60 + 32},
		{in: "45:07", want: 45*60 + 7},
		{in: "0:19:59", want: 19*60 + 59},
		{in: "1:02:03.9", want: 3723},
		{in: " 25:00 ", want: 1500},
		{in: "", wantErr: true},
		{in: "DNF", wantErr: true},
		{in: "1:2:3", wantErr: true},
		{in: "10:61", wantErr: true},
		{in: "00:00", wantErr: true},
		{in: "1:00:00:00", wantErr: true},
		{in: "+1:00", wantErr: true},
		{in: "1:+5", wantErr: true},
		{in: "-1:00", wantErr: true},
		{in: "1: 05", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFinishTime(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidFinishTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFinishTime(t *testing.T) {
	assert.Equal(t, "2:15:32", FormatFinishTime(8132))
	assert.Equal(t, "45:07", FormatFinishTime(2707))
	assert.Equal(t, "00:00", FormatFinishTime(-4))

	secs, err := ParseFinishTime(FormatFinishTime(3723))
	require.NoError(t, err)
	assert.Equal(t, 3723, secs)
}
