package domain

// Tree is the result of one rebuild: the ordered root nodes of the UI.
// Callbacks are never indexed separately; every lookup walks the tree.
type Tree struct {
	Roots []*Node `json:"roots"`
}

// Walk visits every node in document order until fn returns false.
func (t *Tree) Walk(fn func(*Node) bool) {
	for _, r := range t.Roots {
		if !r.Walk(fn) {
			return
		}
	}
}

func (t *Tree) find(match func(*Node) bool) *Node {
	var found *Node
	t.Walk(func(n *Node) bool {
		if match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindButton returns the button carrying id, searching nested containers and
// modal footers. It returns nil when no button matches.
func (t *Tree) FindButton(id string) *Node {
	return t.find(func(n *Node) bool {
		return n.Kind == KindButton && n.ID == id
	})
}

// FindBound returns the first top-level node bound to key.
func (t *Tree) FindBound(key string) *Node {
	return t.find(func(n *Node) bool {
		return n.Bound() && n.Form == "" && n.Key == key && n.Kind != KindForm
	})
}

// FindForm returns the deferred form named name.
func (t *Tree) FindForm(name string) *Node {
	return t.find(func(n *Node) bool {
		return n.Kind == KindForm && n.Key == name
	})
}

// FindTabs returns the tabs node bound to key.
func (t *Tree) FindTabs(key string) *Node {
	return t.find(func(n *Node) bool {
		return n.Kind == KindTabs && n.Key == key
	})
}

// Bound returns every top-level bound node in document order.
func (t *Tree) Bound() []*Node {
	var out []*Node
	t.Walk(func(n *Node) bool {
		if n.Bound() && n.Form == "" && n.Kind != KindForm {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Buttons returns every button in document order.
func (t *Tree) Buttons() []*Node {
	var out []*Node
	t.Walk(func(n *Node) bool {
		if n.Kind == KindButton {
			out = append(out, n)
		}
		return true
	})
	return out
}

// InputKeys returns the top-level State keys that hold user input: keys bound
// to input-kind nodes, plus the names of forms containing input nodes.
// Order follows the document; duplicates are dropped.
func (t *Tree) InputKeys() []string {
	seen := make(map[string]bool)
	var keys []string
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	t.Walk(func(n *Node) bool {
		if !n.Bound() || !n.Kind.IsInput() {
			return true
		}
		if n.Form != "" {
			add(n.Form)
		} else {
			add(n.Key)
		}
		return true
	})
	return keys
}
