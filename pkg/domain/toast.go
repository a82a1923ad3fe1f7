package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Toast is a transient notification stored under KeyToasts.
type Toast struct {
	ID      string `json:"id" mapstructure:"id"`
	Message string `json:"message" mapstructure:"message"`
	Variant string `json:"variant,omitempty" mapstructure:"variant"`
}

// PushToast appends a toast to the state and returns its id.
// Toasts are stored as plain maps so they survive a JSON round trip unchanged.
func PushToast(state State, message, variant string) string {
	id := uuid.NewString()
	entry := map[string]any{"id": id, "message": message, "variant": variant}
	list, _ := state[KeyToasts].([]any)
	state[KeyToasts] = append(list, entry)
	return id
}

// Toasts returns the toasts currently stored in state, oldest first.
func Toasts(state State) []Toast {
	list, _ := state[KeyToasts].([]any)
	out := make([]Toast, 0, len(list))
	for _, e := range list {
		m, ok := AsMap(e)
		if !ok {
			continue
		}
		out = append(out, Toast{
			ID:      fmt.Sprint(m["id"]),
			Message: fmt.Sprint(m["message"]),
			Variant: stringOr(m["variant"]),
		})
	}
	return out
}

// DismissToast removes the toast with the given id. It reports whether a toast
// was removed.
func DismissToast(state State, id string) bool {
	list, _ := state[KeyToasts].([]any)
	for i, e := range list {
		m, ok := AsMap(e)
		if ok && fmt.Sprint(m["id"]) == id {
			state[KeyToasts] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

func stringOr(v any) string {
	s, _ := v.(string)
	return s
}
