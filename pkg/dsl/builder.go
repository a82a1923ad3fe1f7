package dsl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Block is a declarative UI description. It is re-evaluated against the
// current State on every rebuild and must be a pure function of that State
// plus closed-over constants.
type Block func(ui *UI)

// frame is one level of the accumulator stack. Builder calls append to the
// top frame; container calls push a frame, run their nested block and pop it.
type frame struct {
	owner  *domain.Node // nil for the root frame
	form   *domain.Node // nearest enclosing deferred form, if any
	footer bool         // frame collects a modal footer
	nodes  []*domain.Node
}

// UI is the builder context handed to a Block.
// It is only valid during the Build call that created it.
type UI struct {
	state   domain.State
	stack   []*frame
	buttons int
}

// Build evaluates block against state and returns the resulting tree.
// Default values declared by the block are written into state with
// set-if-absent semantics. The first structural error aborts the build.
func Build(state domain.State, block Block) (tree *domain.Tree, err error) {
	if state == nil {
		return nil, errors.New("dsl: nil state")
	}
	if block == nil {
		return nil, errors.New("dsl: nil block")
	}

	ui := &UI{state: state}
	ui.stack = []*frame{{}}

	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*domain.StructuralError)
			if !ok {
				panic(r)
			}
			tree, err = nil, se
		}
	}()

	block(ui)

	if len(ui.stack) != 1 {
		return nil, &domain.StructuralError{Op: "build", Reason: fmt.Sprintf("unbalanced builder stack (depth %d)", len(ui.stack))}
	}
	return &domain.Tree{Roots: ui.stack[0].nodes}, nil
}

// State returns the top-level state the block is evaluated against.
func (ui *UI) State() domain.State {
	return ui.state
}

// Value returns the current value bound to key, reading from the enclosing
// form's namespace when called inside a Form block.
func (ui *UI) Value(key string) any {
	return ui.target()[key]
}

// Depth returns the current nesting depth; 1 at the top level of a block.
func (ui *UI) Depth() int {
	return len(ui.stack)
}

func (ui *UI) top() *frame {
	return ui.stack[len(ui.stack)-1]
}

// target returns the map bound keys live in for the current frame.
func (ui *UI) target() map[string]any {
	if f := ui.top().form; f != nil {
		return ui.state.Nested(f.Key)
	}
	return ui.state
}

func (ui *UI) fail(op, format string, args ...any) {
	panic(&domain.StructuralError{Op: op, Reason: fmt.Sprintf(format, args...)})
}

// newNode constructs a node and decodes its options.
func (ui *UI) newNode(op string, kind domain.Kind, opts []Option) *domain.Node {
	n := &domain.Node{Kind: kind}
	for _, o := range opts {
		switch o.Name {
		case optOnChange, optOnBlur:
			if !kind.IsInput() {
				ui.fail(op, "%s is only valid on input components", o.Name)
			}
			if f := ui.top().form; f != nil {
				ui.fail(op, "%s inside form %q: form fields reach the server only on submit", o.Name, f.Key)
			}
			fn, _ := o.Value.(domain.EventCallback)
			if o.Name == optOnChange {
				n.OnChange = fn
			} else {
				n.OnBlur = fn
			}
		default:
			if domain.Accepts(kind, o.Name) {
				if err := n.Props.Set(o.Name, o.Value); err != nil {
					ui.fail(op, "%v", err)
				}
				continue
			}
			if n.Extra == nil {
				n.Extra = make(map[string]any)
			}
			n.Extra[o.Name] = o.Value
		}
	}
	return n
}

// add appends n to the current frame.
func (ui *UI) add(op string, n *domain.Node) {
	f := ui.top()
	if f.owner != nil && f.owner.Kind == domain.KindTabs && n.Kind != domain.KindTab && !f.footer {
		ui.fail(op, "only Tab may appear directly inside Tabs")
	}
	if f.form != nil && n.Bound() && n.Kind != domain.KindForm {
		n.Form = f.form.Key
	}
	f.nodes = append(f.nodes, n)
}

// capture runs block with a fresh accumulator and returns what it collected.
func (ui *UI) capture(owner *domain.Node, footer bool, block Block) []*domain.Node {
	parent := ui.top()
	f := &frame{owner: owner, form: parent.form, footer: footer}
	if owner.Kind == domain.KindForm {
		f.form = owner
	}
	ui.stack = append(ui.stack, f)
	if block != nil {
		block(ui)
	}
	if ui.top() != f {
		ui.fail("capture", "builder stack corrupted")
	}
	ui.stack = ui.stack[:len(ui.stack)-1]
	return f.nodes
}

// container adds n to the current frame and attaches the nodes built by block
// as its children.
func (ui *UI) container(op string, n *domain.Node, block Block) *domain.Node {
	ui.add(op, n)
	n.Children = ui.capture(n, false, block)
	return n
}

// bind adds an input node bound to key and initializes its default.
func (ui *UI) bind(op string, n *domain.Node, key string, implied any) {
	if key == "" {
		ui.fail(op, "key must not be empty")
	}
	if strings.HasPrefix(key, "_") {
		ui.fail(op, "key %q is reserved", key)
	}
	n.Key = key
	ui.add(op, n)

	value := implied
	if n.Props.HasDefault {
		value = n.Props.Default
	}
	ui.target()[key] = initial(ui.target(), key, value)
}

// initial returns the value to store at key: the existing one when present,
// otherwise the default.
func initial(m map[string]any, key string, value any) any {
	if v, ok := m[key]; ok {
		return v
	}
	if seq, ok := value.([]string); ok {
		out := make([]string, len(seq))
		copy(out, seq)
		return out
	}
	return value
}

func slug(label string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "button"
	}
	return s
}
