package runtime

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Coerce converts the raw values of one parameter into a typed State value.
//
//   - more than one value, or a name ending in "[]": sequence, kept as given
//   - "on" or "true": true
//   - "false": false
//   - prior value was a sequence: single-element sequence
//   - otherwise: the string as-is
func Coerce(values []string, sequence bool, prior any) any {
	if sequence || len(values) > 1 {
		out := make([]string, len(values))
		copy(out, values)
		return out
	}
	v := ""
	if len(values) == 1 {
		v = values[0]
	}
	switch v {
	case "on", "true":
		return true
	case "false":
		return false
	}
	if domain.IsSequence(prior) {
		return []string{v}
	}
	return v
}

// Reserved reports whether a parameter name is internal and must not be
// merged into state.
func Reserved(name string) bool {
	return name == "" || strings.HasPrefix(name, "_")
}

// paramName strips the sequence marker from a parameter name.
func paramName(raw string) (name string, sequence bool) {
	if strings.HasSuffix(raw, "[]") {
		return strings.TrimSuffix(raw, "[]"), true
	}
	return raw, false
}

// Merge coerces params into target, skipping reserved names. The prior value
// of each key is read from target before it is overwritten. It returns the set
// of keys that were present.
func Merge(target map[string]any, params url.Values) (map[string]bool, error) {
	return MergeInto(target, target, params)
}

// MergeInto is Merge with the prior values read from a separate map, used when
// a form's nested map is replaced rather than updated.
func MergeInto(target, prior map[string]any, params url.Values) (map[string]bool, error) {
	present := make(map[string]bool, len(params))
	for raw, values := range params {
		name, seq := paramName(raw)
		if Reserved(name) || strings.ContainsAny(name, "[]") {
			continue
		}
		clean, err := sanitizeAll(values)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		var before any
		if prior != nil {
			before = prior[name]
		}
		target[name] = Coerce(clean, seq, before)
		present[name] = true
	}
	return present, nil
}

// FormParams extracts the fields of form from params. Fields may arrive
// nested ("signup[email]", "signup[tags][]") or flat ("email").
func FormParams(form string, params url.Values) url.Values {
	out := make(url.Values)
	prefix := form + "["
	for raw, values := range params {
		if strings.HasPrefix(raw, prefix) {
			rest := strings.TrimPrefix(raw, prefix)
			end := strings.Index(rest, "]")
			if end <= 0 {
				continue
			}
			field := rest[:end]
			if strings.HasSuffix(rest[end+1:], "[]") {
				field += "[]"
			}
			out[field] = append(out[field], values...)
			continue
		}
		if name, _ := paramName(raw); !strings.ContainsAny(name, "[]") {
			out[raw] = append(out[raw], values...)
		}
	}
	return out
}

// ClearAbsent handles inputs browsers omit when empty: every bound checkbox
// whose key is missing from present is set to false, every bound checkbox
// group to an empty sequence. Only nodes bound in the given form namespace
// ("" for top level) are considered. Disabled inputs are never sent, so they
// keep their value.
func ClearAbsent(tree *domain.Tree, target map[string]any, present map[string]bool, form string) {
	tree.Walk(func(n *domain.Node) bool {
		if !n.Bound() || n.Form != form || present[n.Key] || n.Props.Disabled {
			return true
		}
		switch n.Kind {
		case domain.KindCheckbox:
			target[n.Key] = false
		case domain.KindCheckboxGroup:
			target[n.Key] = []string{}
		}
		return true
	})
}

func sanitizeAll(values []string) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		clean, err := SanitizeInput(v)
		if err != nil {
			return nil, err
		}
		out[i] = clean
	}
	return out, nil
}
