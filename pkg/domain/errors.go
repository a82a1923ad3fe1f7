package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrAppNotFound is returned when an instance-scoped request names an app
// instance that is not loaded.
var ErrAppNotFound = errors.New("app instance not found")

// ErrUnknownTarget is returned when a button id, form name or key cannot be
// found in the rebuilt tree. Dispatch treats it as a no-op step.
var ErrUnknownTarget = errors.New("unknown target")

// ErrStructure is matched by every StructuralError.
var ErrStructure = errors.New("structural dsl error")

// ErrStateTooLarge is returned when a serialized state exceeds the persistence budget.
var ErrStateTooLarge = errors.New("state exceeds persistence budget")

// ErrUnknownTheme is returned when switching to a theme that is not registered.
var ErrUnknownTheme = errors.New("unknown theme")

// StructuralError reports a malformed declarative block, such as Submit called
// outside a Form. It is a configuration error, never recoverable mid-request.
type StructuralError struct {
	Op     string // builder operation that failed
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *StructuralError) Unwrap() error {
	return ErrStructure
}

// CallbackError wraps a failure (returned error or recovered panic) raised by
// user callback code during dispatch.
type CallbackError struct {
	Op     string // dispatch operation, e.g. "action"
	Target string // button id, key or form name
	Err    error
	Stack  []byte
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("%s %q: callback failed: %v", e.Op, e.Target, e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}
