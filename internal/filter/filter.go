// Package filter decides which players see a given piece of output. Every
// function here is pure: scores are read, nothing is written.
package filter

import (
	"strings"

	"github.com/openmohaa/statboard/internal/models"
	"github.com/openmohaa/statboard/internal/scores"
)

// ExemptNegation prefixes an AFK exemption entry that matches players
// carrying the tag rather than lacking it.
const ExemptNegation = "!"

// Passes reports whether p passes every enabled dimension of f.
func Passes(p models.Player, f models.FilterSet, sr scores.ScoreReader) bool {
	if !hasAnyTag(p, f.Tags) {
		return false
	}
	if r, ok := f.Score(); ok && !inRange(p, r, sr) {
		return false
	}
	if f.LocationEnabled && !f.Location.Contains(p.Position) {
		return false
	}
	return true
}

// PassesRatio applies a ratio's own filter: any required tag, and every
// configured score range.
func PassesRatio(p models.Player, d models.RatioDefinition, sr scores.ScoreReader) bool {
	if !hasAnyTag(p, d.RequiredTags) {
		return false
	}
	for _, r := range d.ScoreFilters() {
		if !inRange(p, r, sr) {
			return false
		}
	}
	return true
}

// IsAFKExempt reports whether any entry exempts p. "!tag" exempts players
// that have tag; a bare "tag" exempts players that lack it. Blank entries
// are ignored.
func IsAFKExempt(p models.Player, entries []string) bool {
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if tag, negated := strings.CutPrefix(e, ExemptNegation); negated {
			if tag != "" && p.HasTag(tag) {
				return true
			}
			continue
		}
		if e != "" && !p.HasTag(e) {
			return true
		}
	}
	return false
}

// hasAnyTag passes everyone when tags is empty.
func hasAnyTag(p models.Player, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if p.HasTag(t) {
			return true
		}
	}
	return false
}

func inRange(p models.Player, r models.ScoreRange, sr scores.ScoreReader) bool {
	return r.Contains(sr.Get(p.Name, r.Objective))
}
