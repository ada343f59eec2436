// Package normalize cleans the loosely formatted strings that race-result
// providers hand us. Every function is pure and total.
package normalize

import (
	"slices"
	"strings"

	"github.com/padraicbc/racematch/models"
)

// CleanName lower-cases s, drops everything that is not an ASCII letter or
// whitespace, and collapses runs of whitespace. Names written only in other
// scripts come back empty.
func CleanName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// DisplayName trims s and collapses inner whitespace but keeps case and
// punctuation. Used for the canonical name of newly created runners.
func DisplayName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SplitName splits a cleaned name into its first part (every token but the
// last) and its last token. A single token is treated as a last name.
func SplitName(cleaned string) (first, last string) {
	tokens := strings.Fields(cleaned)
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return "", tokens[0]
	}
	return strings.Join(tokens[:len(tokens)-1], " "), tokens[len(tokens)-1]
}

// BlockingKey returns the first letter of the last name token, used to
// shortlist runners before full scoring. Empty for names with no letters.
func BlockingKey(name string) string {
	_, last := SplitName(CleanName(name))
	if last == "" {
		return ""
	}
	return last[:1]
}

// MatchKeys returns the distinct non-empty BlockingKeys of names in order.
// A runner carries the keys of its canonical name and every alternate name.
func MatchKeys(names ...string) []string {
	var keys []string
	for _, n := range names {
		k := BlockingKey(n)
		if k == "" || slices.Contains(keys, k) {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

// NormalizeGender maps provider gender strings onto M, F or NB.
// Missing values default to M.
func NormalizeGender(s string) string {
	g := strings.ToLower(strings.TrimSpace(s))
	switch {
	case g == "":
		return models.GenderMale
	case strings.HasPrefix(g, "f"):
		return models.GenderFemale
	case strings.HasPrefix(g, "m"):
		return models.GenderMale
	}
	return models.GenderNonBinary
}

var stateCodes = map[string]string{
	"alabama":              "AL",
	"alaska":               "AK",
	"arizona":              "AZ",
	"arkansas":             "AR",
	"california":           "CA",
	"colorado":             "CO",
	"connecticut":          "CT",
	"delaware":             "DE",
	"district of columbia": "DC",
	"florida":              "FL",
	"georgia":              "GA",
	"hawaii":               "HI",
	"idaho":                "ID",
	"illinois":             "IL",
	"indiana":              "IN",
	"iowa":                 "IA",
	"kansas":               "KS",
	"kentucky":             "KY",
	"louisiana":            "LA",
	"maine":                "ME",
	"maryland":             "MD",
	"massachusetts":        "MA",
	"michigan":             "MI",
	"minnesota":            "MN",
	"mississippi":          "MS",
	"missouri":             "MO",
	"montana":              "MT",
	"nebraska":             "NE",
	"nevada":               "NV",
	"new hampshire":        "NH",
	"new jersey":           "NJ",
	"new mexico":           "NM",
	"new york":             "NY",
	"north carolina":       "NC",
	"north dakota":         "ND",
	"ohio":                 "OH",
	"oklahoma":             "OK",
	"oregon":               "OR",
	"pennsylvania":         "PA",
	"rhode island":         "RI",
	"south carolina":       "SC",
	"south dakota":         "SD",
	"tennessee":            "TN",
	"texas":                "TX",
	"utah":                 "UT",
	"vermont":              "VT",
	"virginia":             "VA",
	"washington":           "WA",
	"west virginia":        "WV",
	"wisconsin":            "WI",
	"wyoming":              "WY",
}

// NormalizeState converts full US state names to their two-letter code.
// Anything else is upper-cased and returned as is.
func NormalizeState(s string) string {
	t := strings.Join(strings.Fields(s), " ")
	if code, ok := stateCodes[strings.ToLower(t)]; ok {
		return code
	}
	return strings.ToUpper(t)
}

// ParseLocationCity returns the part of a "City, ST" string before the first
// comma. Without a comma the whole trimmed string is the city.
func ParseLocationCity(location string) string {
	city, _, _ := strings.Cut(location, ",")
	return strings.TrimSpace(city)
}

// ParseLocationState returns the part of a "City, ST" string after the first
// comma, or "" when there is none.
func ParseLocationState(location string) string {
	_, state, ok := strings.Cut(location, ",")
	if !ok {
		return ""
	}
	return strings.TrimSpace(state)
}
