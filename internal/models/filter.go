package models

import "strings"

// NoObjective disables a score filter dimension.
const NoObjective = "none"

// ObjectiveDisabled reports whether an objective name turns its filter off.
func ObjectiveDisabled(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || name == NoObjective
}

// Bounds is an axis-aligned box, inclusive on every side.
type Bounds struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinY float64 `json:"minY"`
	MaxY float64 `json:"maxY"`
	MinZ float64 `json:"minZ"`
	MaxZ float64 `json:"maxZ"`
}

// Contains reports whether pos lies inside b.
func (b Bounds) Contains(pos Vec3) bool {
	return pos.X >= b.MinX && pos.X <= b.MaxX &&
		pos.Y >= b.MinY && pos.Y <= b.MaxY &&
		pos.Z >= b.MinZ && pos.Z <= b.MaxZ
}

// Center returns the midpoint of b.
func (b Bounds) Center() Vec3 {
	return Vec3{
		X: (b.MinX + b.MaxX) / 2,
		Y: (b.MinY + b.MaxY) / 2,
		Z: (b.MinZ + b.MaxZ) / 2,
	}
}

// ScoreRange requires a score on Objective within [Min, Max].
type ScoreRange struct {
	Objective string `json:"objective"`
	Min       int64  `json:"min"`
	Max       int64  `json:"max"`
}

// Contains reports whether score is inside the range.
func (r ScoreRange) Contains(score int64) bool {
	return score >= r.Min && score <= r.Max
}

// FilterSet gates per-player output by tag, score and location.
type FilterSet struct {
	// Tags passes a player carrying any of them; empty passes everyone.
	Tags []string `json:"tags"`

	ScoreObjective string `json:"scoreObjective"`
	ScoreMin       int64  `json:"scoreMin"`
	ScoreMax       int64  `json:"scoreMax"`

	LocationEnabled bool   `json:"locationEnabled"`
	Location        Bounds `json:"location"`
}

// Score returns the score dimension as a range, and false when disabled.
func (f FilterSet) Score() (ScoreRange, bool) {
	if ObjectiveDisabled(f.ScoreObjective) {
		return ScoreRange{}, false
	}
	return ScoreRange{Objective: f.ScoreObjective, Min: f.ScoreMin, Max: f.ScoreMax}, true
}

// DefaultFilterSet passes every player.
func DefaultFilterSet() FilterSet {
	return FilterSet{
		Tags:           []string{},
		ScoreObjective: NoObjective,
	}
}
