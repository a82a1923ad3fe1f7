package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Overlay carries State data to highlight on the graph.
type Overlay struct {
	// Changed lists the keys touched by the last request.
	Changed []string
	// Focus is the button id or bound key of the request target.
	Focus string
}

// GenerateMermaid renders a component tree as a Mermaid flowchart.
// Shapes follow the node's role:
//   - input: [/Parallelogram/]
//   - button: [[Subroutine]]
//   - container: ([Stadium])
//   - display: [Rectangle]
//
// Modal footers hang off their modal with a dotted edge.
func GenerateMermaid(tree *domain.Tree, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	g := &mermaid{sb: &sb, ids: make(map[*domain.Node]string)}
	for _, root := range tree.Roots {
		g.node(root)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef changed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef focus fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		changed := make(map[string]bool, len(overlay.Changed))
		for _, k := range overlay.Changed {
			changed[k] = true
		}
		tree.Walk(func(n *domain.Node) bool {
			id := g.ids[n]
			switch {
			case overlay.Focus != "" && (n.ID == overlay.Focus || n.Key == overlay.Focus):
				fmt.Fprintf(&sb, "    class %s focus;\n", id)
			case n.Bound() && (changed[n.Key] || (n.Form != "" && changed[n.Form])):
				fmt.Fprintf(&sb, "    class %s changed;\n", id)
			}
			return true
		})
	}
	return sb.String()
}

type mermaid struct {
	sb  *strings.Builder
	ids map[*domain.Node]string
}

func (g *mermaid) node(n *domain.Node) string {
	id := fmt.Sprintf("n%d", len(g.ids))
	g.ids[n] = id

	opener, closer := "[", "]"
	switch {
	case n.Kind == domain.KindButton:
		opener, closer = "[[", "]]"
	case n.Kind.IsInput():
		opener, closer = "[/", "/]"
	case n.Kind.IsContainer():
		opener, closer = "([", "])"
	}
	fmt.Fprintf(g.sb, "    %s%s\"%s\"%s\n", id, opener, label(n), closer)

	for _, c := range n.Children {
		fmt.Fprintf(g.sb, "    %s --> %s\n", id, g.node(c))
	}
	for _, c := range n.Footer {
		fmt.Fprintf(g.sb, "    %s -. footer .-> %s\n", id, g.node(c))
	}
	return id
}

// label is the node's kind plus what identifies it: button id, bound key
// (qualified by form) or literal value.
func label(n *domain.Node) string {
	var s string
	switch {
	case n.ID != "":
		s = n.ID
	case n.Bound() && n.Form != "" && n.Kind != domain.KindForm:
		s = n.Form + "." + n.Key
	case n.Bound():
		s = n.Key
	case n.Props.Title != "":
		s = n.Props.Title
	case n.Value != "":
		s = n.Value
		if len(s) > 24 {
			s = s[:24] + "..."
		}
	}
	s = strings.ReplaceAll(s, "\"", "'")
	if s == "" {
		return string(n.Kind)
	}
	return string(n.Kind) + ": " + s
}
