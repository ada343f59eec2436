// Package matching resolves provider results to runner identities: it scores
// raw records against known runners, ranks candidates, decides between
// linking and creating, and keeps the RunnerMatch audit trail.
package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/padraicbc/racematch/models"
	"github.com/padraicbc/racematch/normalize"
)

// Sub-score weights. They sum to 100.
const (
	WeightName   = 40
	WeightAge    = 25
	WeightGender = 15
	WeightCity   = 15
	WeightState  = 5
)

// NameSimilarity compares two cleaned names on a 0..100 scale.
// An empty name never matches anything.
func NameSimilarity(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	aFirst, aLast := normalize.SplitName(a)
	bFirst, bLast := normalize.SplitName(b)
	switch {
	case aFirst != "" && aFirst == bLast && aLast == bFirst:
		return 90
	case aFirst != "" && aFirst == bFirst, aLast == bLast:
		return 70
	}

	maxLen := max(len(a), len(b))
	d := levenshtein.ComputeDistance(a, b)
	return max(0, 100*(maxLen-d)/maxLen)
}

// NameScore returns the best similarity between the raw name and the
// runner's canonical or alternate names, and the name that produced it.
func NameScore(rawName string, r *models.Runner) (int, string) {
	cleaned := normalize.CleanName(rawName)
	best, bestName := NameSimilarity(cleaned, normalize.CleanName(r.Name)), r.Name
	for _, alt := range r.AlternateNames {
		if best == 100 {
			break
		}
		if s := NameSimilarity(cleaned, normalize.CleanName(alt)); s > best {
			best, bestName = s, alt
		}
	}
	return best, bestName
}

// AgeScore awards up to WeightAge for close ages. A missing age on either
// side scores 0.
func AgeScore(rawAge, runnerAge *int) int {
	if rawAge == nil || runnerAge == nil {
		return 0
	}
	d := *rawAge - *runnerAge
	if d < 0 {
		d = -d
	}
	switch {
	case d == 0:
		return WeightAge
	case d == 1:
		return 20
	case d == 2:
		return 15
	case d <= 5:
		return 10
	}
	return 0
}

// GenderScore awards WeightGender when both genders are present and
// normalise to the same code.
func GenderScore(rawGender, runnerGender string) int {
	if strings.TrimSpace(rawGender) == "" || strings.TrimSpace(runnerGender) == "" {
		return 0
	}
	if normalize.NormalizeGender(rawGender) == normalize.NormalizeGender(runnerGender) {
		return WeightGender
	}
	return 0
}

// RawLocation returns the city and state of a raw record, falling back to
// its combined location string for whichever is missing.
func RawLocation(raw models.RawRunnerData) (city, state string) {
	city, state = raw.City, raw.State
	if city == "" {
		city = normalize.ParseLocationCity(raw.Location)
	}
	if state == "" {
		state = normalize.ParseLocationState(raw.Location)
	}
	return city, state
}

// LocationScore returns the city and state parts of the location sub-score.
func LocationScore(raw models.RawRunnerData, r *models.Runner) (city, state int) {
	rawCity, rawState := RawLocation(raw)
	if c := normalize.CleanName(rawCity); c != "" && c == normalize.CleanName(r.City) {
		city = WeightCity
	}
	if s := normalize.NormalizeState(rawState); s != "" && s == normalize.NormalizeState(r.State) {
		state = WeightState
	}
	return city, state
}

// Score rates how likely raw describes runner r, 0..100.
func Score(raw models.RawRunnerData, r *models.Runner) int {
	name, _ := NameScore(raw.Name, r)
	city, state := LocationScore(raw, r)
	total := float64(name)*WeightName/100 +
		float64(AgeScore(raw.Age, r.Age)) +
		float64(GenderScore(raw.Gender, r.Gender)) +
		float64(city+state)
	return int(math.Round(total))
}

// Reasons lists the signals behind Score in a fixed order:
// name, age, gender, city, state.
func Reasons(raw models.RawRunnerData, r *models.Runner) []string {
	var out []string

	name, matchedName := NameScore(raw.Name, r)
	switch {
	case name == 100:
		out = append(out, "Exact name match")
	case name == 90:
		out = append(out, "First and last name swapped")
	case name == 70:
		out = append(out, "First or last name match")
	case name > 0:
		out = append(out, fmt.Sprintf("Similar name (%d%%)", name))
	}
	if name > 0 && matchedName != r.Name {
		out = append(out, "Matched alternate name "+matchedName)
	}

	switch age := AgeScore(raw.Age, r.Age); {
	case age == WeightAge:
		out = append(out, "Age match")
	case age > 0:
		d := *raw.Age - *r.Age
		if d < 0 {
			d = -d
		}
		out = append(out, fmt.Sprintf("Age difference %d", d))
	}

	if GenderScore(raw.Gender, r.Gender) > 0 {
		out = append(out, "Gender match")
	}
	city, state := LocationScore(raw, r)
	if city > 0 {
		out = append(out, "City match")
	}
	if state > 0 {
		out = append(out, "State match")
	}
	return out
}
