package graph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Outline renders the tree as a markdown list, one line per node, with the
// current value of bound inputs.
func Outline(tree *domain.Tree, state domain.State) string {
	var sb strings.Builder
	for _, n := range tree.Roots {
		outline(&sb, n, state, 0)
	}
	return sb.String()
}

func outline(sb *strings.Builder, n *domain.Node, state domain.State, depth int) {
	fmt.Fprintf(sb, "%s- **%s**", strings.Repeat("  ", depth), label(n))
	if n.Bound() && n.Kind.IsInput() {
		scope := map[string]any(state)
		if n.Form != "" {
			scope, _ = domain.AsMap(state[n.Form])
		}
		v, _ := json.Marshal(scope[n.Key])
		fmt.Fprintf(sb, " = `%s`", v)
	}
	sb.WriteString("\n")
	for _, c := range n.Children {
		outline(sb, c, state, depth+1)
	}
	for _, c := range n.Footer {
		outline(sb, c, state, depth+1)
	}
}
