package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// View is everything a renderer needs to produce markup for one response.
type View struct {
	Tree  *domain.Tree
	State domain.State

	// Base is the URL prefix the client runtime posts back to:
	// "" for session-scoped apps, "/apps/{id}" for loaded instances.
	Base string

	Title string

	// Headless adds the control that completes an agent run.
	Headless bool
}

// Renderer turns component trees into markup. Implementations must handle
// every domain.Kind.
type Renderer interface {
	// Page renders the full document shell around the content.
	Page(ctx context.Context, view View) (string, error)

	// Fragment renders only the inner content, spliced client-side into the shell.
	Fragment(ctx context.Context, view View) (string, error)

	// Node renders a single component.
	Node(ctx context.Context, view View, node *domain.Node) (string, error)

	// Terminal renders the confirmation page of a completed headless run.
	Terminal(ctx context.Context, result domain.State) (string, error)

	// Diagnostic renders an inline error report in place of a fragment.
	Diagnostic(ctx context.Context, err error) (string, error)

}

// Markdown converts markdown text to safe HTML.
type Markdown interface {
	Render(text string) (string, error)
}
