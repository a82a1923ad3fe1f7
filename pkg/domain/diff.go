package domain

import (
	"reflect"
	"sort"
)

// StateDiff represents the changes between two states.
// Deleted keys are present in Changed with a nil value.
type StateDiff struct {
	Changed map[string]any `json:"changed,omitempty"`
}

// Diff calculates the difference between old and new.
// If old is nil, every key of new is reported. It returns nil when nothing changed.
func Diff(old, new State) *StateDiff {
	delta := make(map[string]any)

	for k, newVal := range new {
		oldVal, exists := old[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	for k := range old {
		if _, exists := new[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return &StateDiff{Changed: delta}
}

// Keys returns the changed keys in sorted order.
func (d *StateDiff) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, 0, len(d.Changed))
	for k := range d.Changed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsEmpty checks if the diff contains any changes.
func (d *StateDiff) IsEmpty() bool {
	return d == nil || len(d.Changed) == 0
}
