package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Reserved State keys. User keys must not start with an underscore.
const (
	KeyToasts = "_toasts"
	KeyTheme  = "_theme"
)

// State is the mutable key-value store holding all UI state of one session or
// app instance. Values are scalars, sequences ([]string or []any after a JSON
// round trip) or nested maps (deferred forms).
type State map[string]any

// NewState creates an empty state.
func NewState() State {
	return make(State)
}

// SetDefault writes value at key only if key is absent. It reports whether a
// write happened.
func (s State) SetDefault(key string, value any) bool {
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = value
	return true
}

// Nested returns the map stored at key, creating it when absent.
// A non-map value at key is replaced.
func (s State) Nested(key string) map[string]any {
	if m, ok := AsMap(s[key]); ok {
		s[key] = m
		return m
	}
	m := make(map[string]any)
	s[key] = m
	return m
}

// Bool returns the boolean at key, false when absent or not a bool.
func (s State) Bool(key string) bool {
	b, _ := s[key].(bool)
	return b
}

// String returns the value at key formatted as a string, "" when absent.
func (s State) String(key string) string {
	switch v := s[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Clone returns a deep copy of the state. Nested maps and sequences are copied;
// other values are shared.
func (s State) Clone() State {
	if s == nil {
		return nil
	}
	return State(cloneMap(s))
}

// Filter returns a deep copy holding only the given keys.
func (s State) Filter(keys []string) State {
	out := make(State, len(keys))
	for _, k := range keys {
		if v, ok := s[k]; ok {
			out[k] = cloneValue(v)
		}
	}
	return out
}

// Decode copies the state into out (a pointer to a struct or map) using
// mapstructure tags, converting weakly typed values where needed.
func (s State) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(s)); err != nil {
		return fmt.Errorf("failed to decode state: %w", err)
	}
	return nil
}

// IsSequence reports whether v is a sequence value.
func IsSequence(v any) bool {
	switch v.(type) {
	case []string, []any:
		return true
	}
	return false
}

// Strings converts a sequence value to []string. Scalars become a single
// element slice and nil becomes an empty slice.
func Strings(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, fmt.Sprint(e))
		}
		return out
	case string:
		return []string{t}
	default:
		return []string{fmt.Sprint(t)}
	}
}

// AsMap returns v as a map[string]any when it is one (including State).
func AsMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case State:
		return map[string]any(m), true
	}
	return nil, false
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case State:
		return cloneMap(t)
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
