// Package registry holds the enabled state and display metadata of every
// built-in and custom counter.
package registry

import (
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/openmohaa/statboard/internal/configstore"
	"github.com/openmohaa/statboard/internal/models"
)

// Built-in counter ids
const (
	Kills        = "kills"
	Deaths       = "deaths"
	MobKills     = "mob_kills"
	BlocksBroken = "blocks_broken"
	BlocksPlaced = "blocks_placed"
	Playtime     = "playtime"
	Money        = "money"
	Joins        = "joins"
)

// BuiltIn describes a counter the tracker maintains from game events.
type BuiltIn struct {
	ID    string
	Label string
	Color models.FormatCode

	// Global counters also keep a server-wide total under GlobalCounter(ID).
	Global bool
}

// BuiltIns in display order.
var BuiltIns = []BuiltIn{
	{ID: Kills, Label: "Kills", Color: 'c', Global: true},
	{ID: Deaths, Label: "Deaths", Color: '4', Global: true},
	{ID: MobKills, Label: "Mob Kills", Color: '6', Global: true},
	{ID: BlocksBroken, Label: "Blocks Broken", Color: '7', Global: true},
	{ID: BlocksPlaced, Label: "Blocks Placed", Color: 'a', Global: true},
	{ID: Playtime, Label: "Playtime (min)", Color: 'b'},
	{ID: Money, Label: "Money", Color: 'e'},
	{ID: Joins, Label: "Joins", Color: 'd'},
}

var builtInIndex = func() map[string]BuiltIn {
	m := make(map[string]BuiltIn, len(BuiltIns))
	for _, b := range BuiltIns {
		m[b.ID] = b
	}
	return m
}()

// IsBuiltIn reports whether id is a built-in counter.
func IsBuiltIn(id string) bool {
	_, ok := builtInIndex[id]
	return ok
}

// GlobalCounter names the server-wide total of a built-in counter.
func GlobalCounter(id string) string {
	return "total_" + id
}

// FriendlyName turns a counter id into a label: underscores become spaces
// and every word starts upper-case.
func FriendlyName(id string) string {
	return cases.Title(language.English, cases.NoLower).String(strings.ReplaceAll(id, "_", " "))
}

// DefaultConfig enables every built-in counter without action-bar output.
func DefaultConfig() models.RegistryConfig {
	cfg := models.RegistryConfig{
		Counters:     make(map[string]models.CounterSettings, len(BuiltIns)),
		TrackGlobals: true,
		HUDFilter:    models.DefaultFilterSet(),
	}
	for _, b := range BuiltIns {
		cfg.Counters[b.ID] = models.CounterSettings{Enabled: true, Label: b.Label, Color: b.Color}
	}
	return cfg
}

// Registry loads and saves the counter registry.
type Registry struct {
	store  configstore.ReadWriter
	logger *zap.SugaredLogger
}

func New(store configstore.ReadWriter, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{store: store, logger: logger.Sugar()}
}

// Snapshot reads the current configuration. Callers take one per cycle.
func (r *Registry) Snapshot() Snapshot {
	cfg := configstore.Load(r.store, configstore.KeyCounters, DefaultConfig(), r.logParseError)
	return NewSnapshot(cfg)
}

// Config returns the merged configuration for editing.
func (r *Registry) Config() models.RegistryConfig {
	return r.Snapshot().cfg
}

// Save persists cfg.
func (r *Registry) Save(cfg models.RegistryConfig) error {
	return configstore.Save(r.store, configstore.KeyCounters, cfg)
}

func (r *Registry) logParseError(key string, err error) {
	r.logger.Warnw("Counter registry config unreadable, using defaults", "key", key, "error", err)
}

// Snapshot is an immutable view of the registry for one cycle.
type Snapshot struct {
	cfg models.RegistryConfig
}

// NewSnapshot fills in built-in counters missing from cfg with their
// defaults.
func NewSnapshot(cfg models.RegistryConfig) Snapshot {
	cfg.Normalize()
	counters := make(map[string]models.CounterSettings, len(cfg.Counters)+len(BuiltIns))
	for id, s := range cfg.Counters {
		counters[id] = s
	}
	for _, b := range BuiltIns {
		s, ok := counters[b.ID]
		if !ok {
			s = models.CounterSettings{Enabled: true, Label: b.Label, Color: b.Color}
		}
		if s.Label == "" {
			s.Label = b.Label
		}
		counters[b.ID] = s
	}
	cfg.Counters = counters
	return Snapshot{cfg: cfg}
}

// Enabled reports whether id is configured and switched on.
func (s Snapshot) Enabled(id string) bool {
	settings, ok := s.cfg.Counters[id]
	return ok && settings.Enabled
}

// Settings returns the metadata of id.
func (s Snapshot) Settings(id string) (models.CounterSettings, bool) {
	settings, ok := s.cfg.Counters[id]
	return settings, ok
}

// Label returns the configured label of id, or its friendly name.
func (s Snapshot) Label(id string) string {
	if settings, ok := s.cfg.Counters[id]; ok && settings.Label != "" {
		return settings.Label
	}
	return FriendlyName(id)
}

// Color returns the configured format code of id.
func (s Snapshot) Color(id string) models.FormatCode {
	return s.cfg.Counters[id].Color
}

// TrackGlobals reports whether server-wide totals are kept.
func (s Snapshot) TrackGlobals() bool {
	return s.cfg.TrackGlobals
}

// HUDFilter gates the per-player counter overlay.
func (s Snapshot) HUDFilter() models.FilterSet {
	return s.cfg.HUDFilter
}

// EnabledBuiltIns lists enabled built-in counters in display order.
func (s Snapshot) EnabledBuiltIns() []string {
	var out []string
	for _, b := range BuiltIns {
		if s.Enabled(b.ID) {
			out = append(out, b.ID)
		}
	}
	return out
}

// Counters lists every enabled counter: built-ins in display order, then
// custom counters sorted by id.
func (s Snapshot) Counters() []string {
	out := s.EnabledBuiltIns()
	var custom []string
	for id, settings := range s.cfg.Counters {
		if !IsBuiltIn(id) && settings.Enabled {
			custom = append(custom, id)
		}
	}
	sort.Strings(custom)
	return append(out, custom...)
}

// ActionBarCounters lists enabled counters shown on the heads-up overlay.
func (s Snapshot) ActionBarCounters() []string {
	var out []string
	for _, id := range s.Counters() {
		if s.cfg.Counters[id].ActionBar {
			out = append(out, id)
		}
	}
	return out
}
