package runtime

import (
	"fmt"
	"runtime/debug"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/dsl"
)

// Engine is the rebuild engine: it turns a State into a fresh component tree by
// re-evaluating the declarative block.
type Engine struct {
	block dsl.Block
}

// NewEngine creates an engine for block.
func NewEngine(block dsl.Block) *Engine {
	return &Engine{block: block}
}

// Resolve rebuilds the tree for state. It writes declared defaults into state
// (set-if-absent) and is deterministic for a given state, so ids computed in one
// pass match the nodes of the next.
//
// A panic raised by the block itself is returned as a *domain.CallbackError
// with Op "rebuild".
func (e *Engine) Resolve(state domain.State) (tree *domain.Tree, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.CallbackError{
				Op:    "rebuild",
				Err:   fmt.Errorf("panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	tree, err = dsl.Build(state, e.block)
	if err != nil {
		return nil, fmt.Errorf("rebuild failed: %w", err)
	}
	return tree, nil
}
