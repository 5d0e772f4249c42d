package ratio

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/openmohaa/statboard/internal/configstore"
	"github.com/openmohaa/statboard/internal/models"
	"github.com/openmohaa/statboard/internal/registry"
)

var (
	ErrDuplicateID = errors.New("ratio id already exists")
	ErrNotFound    = errors.New("ratio not found")
	ErrBuiltIn     = errors.New("built-in ratios cannot be managed")
)

// Built-in ratio ids
const (
	KillDeathID    = "kd"
	PlacedBrokenID = "bpb"
)

// BuiltIns returns the ratios that exist without configuration.
func BuiltIns() []models.RatioDefinition {
	return []models.RatioDefinition{
		{
			ID:             KillDeathID,
			Numerator:      registry.Kills,
			Denominator:    registry.Deaths,
			DisplayName:    "K/D Ratio",
			Enabled:        true,
			DisplayRounded: true,
			LabelFormat:    'c',
		},
		{
			ID:             PlacedBrokenID,
			Numerator:      registry.BlocksPlaced,
			Denominator:    registry.BlocksBroken,
			DisplayName:    "Placed/Broken Ratio",
			Enabled:        true,
			DisplayRounded: true,
			LabelFormat:    'a',
		},
	}
}

// IsBuiltIn reports whether id names a built-in ratio.
func IsBuiltIn(id string) bool {
	return id == KillDeathID || id == PlacedBrokenID
}

// ObjectiveRemover drops a derived counter.
type ObjectiveRemover interface {
	Remove(name string)
}

// Repository stores ratio definitions as one JSON object keyed by ratio id.
// Saves rewrite a single key in place; entries that fail to parse are
// skipped on read and left untouched on write.
type Repository struct {
	mu         sync.Mutex
	store      configstore.ReadWriter
	objectives ObjectiveRemover
	logger     *zap.SugaredLogger
}

func NewRepository(store configstore.ReadWriter, objectives ObjectiveRemover, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{store: store, objectives: objectives, logger: logger.Sugar()}
}

func (r *Repository) blob() string {
	raw, ok := r.store.ReadBlob(configstore.KeyRatios)
	if !ok || !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return "{}"
	}
	return raw
}

func (r *Repository) parse(raw string) []models.RatioDefinition {
	var defs []models.RatioDefinition
	gjson.Parse(raw).ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			r.logger.Warnw("Skipping malformed ratio definition", "ratioId", key.String())
			return true
		}
		var def models.RatioDefinition
		if err := json.Unmarshal([]byte(value.Raw), &def); err != nil {
			r.logger.Warnw("Skipping malformed ratio definition", "ratioId", key.String(), "error", err)
			return true
		}
		def.ID = key.String()
		defs = append(defs, def)
		return true
	})
	return defs
}

// List returns the user-managed definitions in stored order.
func (r *Repository) List() []models.RatioDefinition {
	defs := r.parse(r.blob())
	out := defs[:0]
	for _, d := range defs {
		if !IsBuiltIn(d.ID) {
			out = append(out, d)
		}
	}
	return out
}

// All returns every definition to evaluate, built-ins included.
func (r *Repository) All() []models.RatioDefinition {
	defs := r.parse(r.blob())
	for _, b := range BuiltIns() {
		if !contains(defs, b.ID) {
			defs = append(defs, b)
		}
	}
	return defs
}

// Get returns a user-managed definition.
func (r *Repository) Get(id string) (models.RatioDefinition, error) {
	if IsBuiltIn(id) {
		return models.RatioDefinition{}, ErrBuiltIn
	}
	res := gjson.Get(r.blob(), escapeKey(id))
	if !res.Exists() {
		return models.RatioDefinition{}, ErrNotFound
	}
	var def models.RatioDefinition
	if err := json.Unmarshal([]byte(res.Raw), &def); err != nil {
		return models.RatioDefinition{}, fmt.Errorf("decode ratio %q: %w", id, err)
	}
	def.ID = id
	return def, nil
}

// Create adds def. The id must not be taken.
func (r *Repository) Create(def models.RatioDefinition) error {
	if IsBuiltIn(def.ID) {
		return ErrBuiltIn
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	raw := r.blob()
	if gjson.Get(raw, escapeKey(def.ID)).Exists() {
		return ErrDuplicateID
	}
	return r.put(raw, def)
}

// Update replaces the definition stored under id. When def.ID differs the
// definition is renamed; the new id must not be taken.
func (r *Repository) Update(id string, def models.RatioDefinition) error {
	if IsBuiltIn(id) || IsBuiltIn(def.ID) {
		return ErrBuiltIn
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	raw := r.blob()
	if !gjson.Get(raw, escapeKey(id)).Exists() {
		return ErrNotFound
	}
	if def.ID != id {
		if gjson.Get(raw, escapeKey(def.ID)).Exists() {
			return ErrDuplicateID
		}
		var err error
		if raw, err = sjson.Delete(raw, escapeKey(id)); err != nil {
			return fmt.Errorf("rename ratio %q: %w", id, err)
		}
	}
	return r.put(raw, def)
}

// Delete removes id. With removeObjective the derived display counter is
// dropped as well.
func (r *Repository) Delete(id string, removeObjective bool) error {
	if IsBuiltIn(id) {
		return ErrBuiltIn
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	raw := r.blob()
	if !gjson.Get(raw, escapeKey(id)).Exists() {
		return ErrNotFound
	}
	raw, err := sjson.Delete(raw, escapeKey(id))
	if err != nil {
		return fmt.Errorf("delete ratio %q: %w", id, err)
	}
	r.store.WriteBlob(configstore.KeyRatios, raw)

	if removeObjective && r.objectives != nil {
		r.objectives.Remove(id + models.DisplaySuffix)
	}
	r.logger.Infow("Ratio deleted", "ratioId", id, "removeObjective", removeObjective)
	return nil
}

func (r *Repository) put(raw string, def models.RatioDefinition) error {
	encoded, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("encode ratio %q: %w", def.ID, err)
	}
	raw, err = sjson.SetRaw(raw, escapeKey(def.ID), string(encoded))
	if err != nil {
		return fmt.Errorf("save ratio %q: %w", def.ID, err)
	}
	r.store.WriteBlob(configstore.KeyRatios, raw)
	return nil
}

func contains(defs []models.RatioDefinition, id string) bool {
	for _, d := range defs {
		if d.ID == id {
			return true
		}
	}
	return false
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`, `.`, `\.`, `*`, `\*`, `?`, `\?`, `|`, `\|`, `#`, `\#`, `@`, `\@`, `:`, `\:`,
)

// escapeKey makes id safe to use as a single gjson/sjson path component.
func escapeKey(id string) string {
	return pathEscaper.Replace(id)
}
