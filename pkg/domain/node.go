package domain

import "context"

// Callback runs when a button is clicked. It may mutate state freely.
type Callback func(ctx context.Context, state State) error

// EventCallback runs on change or blur of a bound key, with the key's new value.
type EventCallback func(ctx context.Context, state State, value any) error

// SubmitCallback runs after a deferred form's values were stored at state[form].
type SubmitCallback func(ctx context.Context, state State, values map[string]any) error

// Node is one component in a rebuilt tree.
// Nodes are created by the dsl builder on every rebuild and discarded at the end
// of the request; they are never persisted.
type Node struct {
	Kind Kind `json:"kind"`

	// Key is the State key the node is bound to. Empty for unbound nodes.
	// For nodes inside a deferred form the key lives in the nested map at
	// state[Form] rather than at the top level.
	Key  string `json:"key,omitempty"`
	Form string `json:"form,omitempty"`

	// ID is the deterministic identifier of a button within one rebuild.
	ID string `json:"id,omitempty"`

	// Value is the literal carried by checkbox items and tab labels, or the
	// text of display nodes.
	Value string `json:"value,omitempty"`

	Props Props          `json:"props"`
	Extra map[string]any `json:"extra,omitempty"`

	Action   Callback       `json:"-"`
	OnChange EventCallback  `json:"-"`
	OnBlur   EventCallback  `json:"-"`
	OnSubmit SubmitCallback `json:"-"`

	// SubmitLabel and CancelLabel are only meaningful on forms.
	SubmitLabel string `json:"submit_label,omitempty"`
	CancelLabel string `json:"cancel_label,omitempty"`

	Children []*Node `json:"children,omitempty"`
	Footer   []*Node `json:"footer,omitempty"`
}

// Bound reports whether the node is associated with a State key.
func (n *Node) Bound() bool {
	return n.Key != ""
}

// Walk visits n and its descendants in document order: the node itself, its
// children, then its footer. Returning false from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	for _, c := range n.Footer {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Tabs returns the labels of a tabs node's tab children in order.
func (n *Node) Tabs() []string {
	labels := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Kind == KindTab {
			labels = append(labels, c.Value)
		}
	}
	return labels
}
