package models

// RawRunnerData is a provider record before identity resolution.
// Extra carries provider-specific fields through untouched.
type RawRunnerData struct {
	Name           string         `json:"name"`
	Age            *int           `json:"age,omitempty"`
	Gender         string         `json:"gender,omitempty"`
	City           string         `json:"city,omitempty"`
	State          string         `json:"state,omitempty"`
	Location       string         `json:"location,omitempty"`
	FinishTime     string         `json:"finishTime"`
	OverallPlace   int            `json:"overallPlace,omitempty"`
	GenderPlace    *int           `json:"genderPlace,omitempty"`
	AgeGroupPlace  *int           `json:"ageGroupPlace,omitempty"`
	SourceResultID string         `json:"sourceResultID,omitempty"`
	Extra          map[string]any `json:"extra,omitempty"`
}
