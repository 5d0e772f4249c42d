package models

import "strings"

// DisplaySuffix names the shadow counter derived from a canonical one.
const DisplaySuffix = "_display"

// ScoreBounds is one entry of RatioDefinition.RequiredScoreRanges.
type ScoreBounds struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// RatioDefinition relates a numerator and a denominator counter.
type RatioDefinition struct {
	ID          string `json:"ratioId" validate:"required,ratioid"`
	Numerator   string `json:"numeratorObjective" validate:"required"`
	Denominator string `json:"denominatorObjective" validate:"required"`
	DisplayName string `json:"displayName" validate:"required"`

	Enabled        bool `json:"enabled"`
	DisplayRounded bool `json:"displayRounded"`
	UseActionBar   bool `json:"useActionBar"`

	LabelFormat       FormatCode `json:"labelFormat"`
	NumeratorFormat   FormatCode `json:"numeratorFormat"`
	DenominatorFormat FormatCode `json:"denominatorFormat"`
	RatioFormat       FormatCode `json:"ratioFormat"`

	RequiredTags []string `json:"requiredTags"`

	// Parallel arrays: RequiredScoreRanges[i] bounds RequiredScoreObjectives[i].
	RequiredScoreObjectives []string      `json:"requiredScoreObjectives"`
	RequiredScoreRanges     []ScoreBounds `json:"requiredScoreRanges"`
}

// Evaluable reports whether every field needed to compute the ratio is set.
func (d RatioDefinition) Evaluable() bool {
	return strings.TrimSpace(d.ID) != "" &&
		strings.TrimSpace(d.Numerator) != "" &&
		strings.TrimSpace(d.Denominator) != "" &&
		strings.TrimSpace(d.DisplayName) != ""
}

// DisplayObjective is the counter the scaled ratio snapshot is written to.
func (d RatioDefinition) DisplayObjective() string {
	return d.ID + DisplaySuffix
}

// ScoreFilters zips the parallel objective/range arrays. Entries with a
// disabled objective or without a matching range are left out.
func (d RatioDefinition) ScoreFilters() []ScoreRange {
	var out []ScoreRange
	for i, obj := range d.RequiredScoreObjectives {
		if ObjectiveDisabled(obj) || i >= len(d.RequiredScoreRanges) {
			continue
		}
		r := d.RequiredScoreRanges[i]
		out = append(out, ScoreRange{Objective: obj, Min: r.Min, Max: r.Max})
	}
	return out
}
