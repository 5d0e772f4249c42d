package configstore

import (
	"encoding/json"
	"fmt"
	"strings"
)

// normalizer is implemented by config types with per-field fallback rules.
type normalizer interface {
	Normalize()
}

// MergeWithDefaults overlays the JSON object partial on a deep copy of
// defaults.
//
// Fallback rules, applied the same way for every config type:
//   - a field absent from partial keeps its default;
//   - a field present in partial replaces the default whole (slices and
//     nested objects are not merged element-wise; map entries are replaced
//     per key);
//   - empty or malformed partial yields the defaults unchanged;
//   - if *T implements Normalize, it runs last to repair out-of-range values.
func MergeWithDefaults[T any](defaults T, partial string) T {
	out, _ := mergeWithDefaults(defaults, partial)
	return out
}

// MergeChecked is MergeWithDefaults that also returns the parse error.
func MergeChecked[T any](defaults T, partial string) (T, error) {
	return mergeWithDefaults(defaults, partial)
}

func mergeWithDefaults[T any](defaults T, partial string) (T, error) {
	out := clone(defaults)

	var err error
	if strings.TrimSpace(partial) != "" {
		overlay := clone(defaults)
		if err = json.Unmarshal([]byte(partial), &overlay); err == nil {
			out = overlay
		} else {
			err = fmt.Errorf("merge config: %w", err)
		}
	}

	if n, ok := any(&out).(normalizer); ok {
		n.Normalize()
	}
	return out, err
}

// clone deep-copies v through JSON so defaults never share maps or slices
// with the result.
func clone[T any](v T) T {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

// Load reads key from r and merges it over defaults. Parse failures are
// reported through onError (may be nil) and fall back to defaults.
func Load[T any](r Reader, key string, defaults T, onError func(key string, err error)) T {
	raw, _ := r.ReadBlob(key)
	out, err := mergeWithDefaults(defaults, raw)
	if err != nil && onError != nil {
		onError(key, err)
	}
	return out
}

// Save marshals v and writes it under key.
func Save[T any](w Writer, key string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("save config %s: %w", key, err)
	}
	w.WriteBlob(key, string(b))
	return nil
}
