package dsl

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Text adds a plain text paragraph.
func (ui *UI) Text(text string, opts ...Option) {
	n := ui.newNode("text", domain.KindText, opts)
	n.Value = text
	ui.add("text", n)
}

// Markdown adds a block rendered from markdown.
func (ui *UI) Markdown(text string, opts ...Option) {
	n := ui.newNode("markdown", domain.KindMarkdown, opts)
	n.Value = text
	ui.add("markdown", n)
}

// Header adds a heading. Level defaults to 2.
func (ui *UI) Header(text string, opts ...Option) {
	n := ui.newNode("header", domain.KindHeader, opts)
	n.Value = text
	if n.Props.Level == 0 {
		n.Props.Level = 2
	}
	if n.Props.Level < 1 || n.Props.Level > 6 {
		ui.fail("header", "level %d out of range 1..6", n.Props.Level)
	}
	ui.add("header", n)
}

// Divider adds a horizontal separator.
func (ui *UI) Divider(opts ...Option) {
	ui.add("divider", ui.newNode("divider", domain.KindDivider, opts))
}

// Chart adds a chart of data. The chart type is selected with Variant.
func (ui *UI) Chart(data any, opts ...Option) {
	n := ui.newNode("chart", domain.KindChart, opts)
	n.Props.Data = data
	ui.add("chart", n)
}

// Table adds a table. rows is a [][]string or a []map[string]any.
func (ui *UI) Table(rows any, opts ...Option) {
	n := ui.newNode("table", domain.KindTable, opts)
	n.Props.Data = rows
	ui.add("table", n)
}

// Field adds a single-line text input bound to key. Implied default "".
func (ui *UI) Field(key string, opts ...Option) {
	n := ui.newNode("field", domain.KindField, opts)
	if n.Props.Type == "" {
		n.Props.Type = "text"
	}
	ui.bind("field", n, key, "")
}

// TextArea adds a multi-line text input bound to key. Implied default "".
func (ui *UI) TextArea(key string, opts ...Option) {
	n := ui.newNode("textarea", domain.KindTextArea, opts)
	if n.Props.Rows == 0 {
		n.Props.Rows = 4
	}
	ui.bind("textarea", n, key, "")
}

// Checkbox adds a boolean input bound to key. Implied default false.
func (ui *UI) Checkbox(key string, opts ...Option) {
	n := ui.newNode("checkbox", domain.KindCheckbox, opts)
	if n.Props.HasDefault {
		if _, ok := n.Props.Default.(bool); !ok {
			ui.fail("checkbox", "default must be a bool, got %T", n.Props.Default)
		}
	}
	ui.bind("checkbox", n, key, false)
}

// Select adds a drop-down bound to key. Implied default: the first item.
func (ui *UI) Select(key string, items []string, opts ...Option) {
	ui.choice("select", domain.KindSelect, key, items, opts)
}

// Radio adds a radio button set bound to key. Implied default: the first item.
func (ui *UI) Radio(key string, items []string, opts ...Option) {
	ui.choice("radio", domain.KindRadio, key, items, opts)
}

func (ui *UI) choice(op string, kind domain.Kind, key string, items []string, opts []Option) {
	n := ui.newNode(op, kind, opts)
	if len(items) > 0 {
		n.Props.Items = items
	}
	first := ""
	if len(n.Props.Items) > 0 {
		first = n.Props.Items[0]
	}
	ui.bind(op, n, key, first)
}

// CheckboxGroup adds a set of checkboxes whose selected values are stored as a
// sequence at key. Each item becomes a child carrying its literal value;
// selection state lives only at key. Implied default: empty sequence.
func (ui *UI) CheckboxGroup(key string, items []string, opts ...Option) {
	n := ui.newNode("checkbox_group", domain.KindCheckboxGroup, opts)
	if len(items) > 0 {
		n.Props.Items = items
	}
	for _, item := range n.Props.Items {
		n.Children = append(n.Children, &domain.Node{
			Kind:  domain.KindCheckboxItem,
			Value: item,
			Props: domain.Props{Label: item},
		})
	}
	if n.Props.HasDefault {
		n.Props.Default = domain.Strings(n.Props.Default)
	}
	ui.bind("checkbox_group", n, key, []string{})
}

// Button adds a button. Its id is derived from the label and its ordinal among
// the buttons of this rebuild, so the same tree shape yields the same ids.
func (ui *UI) Button(label string, action domain.Callback, opts ...Option) {
	n := ui.newNode("button", domain.KindButton, opts)
	n.Value = label
	n.ID = fmt.Sprintf("%s-%d", slug(label), ui.buttons)
	n.Action = action
	ui.buttons++
	ui.add("button", n)
}

// Container groups children vertically.
func (ui *UI) Container(block Block, opts ...Option) {
	ui.container("container", ui.newNode("container", domain.KindContainer, opts), block)
}

// Row groups children horizontally.
func (ui *UI) Row(block Block, opts ...Option) {
	ui.container("row", ui.newNode("row", domain.KindRow, opts), block)
}

// Card groups children in a titled panel.
func (ui *UI) Card(title string, block Block, opts ...Option) {
	n := ui.newNode("card", domain.KindCard, opts)
	n.Props.Title = title
	ui.container("card", n, block)
}

// Form adds a deferred-submission form. Fields declared in block bind into the
// nested map at state[name] and reach the server only on submit.
func (ui *UI) Form(name string, block Block, opts ...Option) {
	if ui.top().form != nil {
		ui.fail("form", "form %q nested inside form %q", name, ui.top().form.Key)
	}
	if name == "" {
		ui.fail("form", "name must not be empty")
	}
	if strings.HasPrefix(name, "_") {
		ui.fail("form", "name %q is reserved", name)
	}
	n := ui.newNode("form", domain.KindForm, opts)
	n.Key = name
	ui.state.Nested(name)
	ui.container("form", n, block)
	if n.SubmitLabel == "" {
		n.SubmitLabel = "Submit"
	}
}

// Submit sets the label and callback of the enclosing form's submit button.
// It must be called inside a Form block.
func (ui *UI) Submit(label string, fn domain.SubmitCallback) {
	f := ui.top().form
	if f == nil {
		ui.fail("submit", "called outside a form")
	}
	f.SubmitLabel = label
	f.OnSubmit = fn
}

// Cancel sets the label of the enclosing form's cancel control. Cancelling is
// handled client-side by discarding unsaved edits; it never reaches the server.
func (ui *UI) Cancel(label string) {
	f := ui.top().form
	if f == nil {
		ui.fail("cancel", "called outside a form")
	}
	f.CancelLabel = label
}

// Modal adds a dialog whose open state is the boolean at key (default false).
// Its children are always built so buttons inside stay resolvable.
func (ui *UI) Modal(key, title string, block Block, opts ...Option) {
	n := ui.newNode("modal", domain.KindModal, opts)
	n.Props.Title = title
	ui.bind("modal", n, key, false)
	n.Children = ui.capture(n, false, block)
}

// ModalFooter collects nodes into the enclosing modal's footer.
// It must be called directly inside a Modal block.
func (ui *UI) ModalFooter(block Block) {
	f := ui.top()
	if f.owner == nil || f.owner.Kind != domain.KindModal || f.footer {
		ui.fail("modal_footer", "called outside a modal")
	}
	f.owner.Footer = append(f.owner.Footer, ui.capture(f.owner, true, block)...)
}

// Tabs adds a tab strip whose active tab label is stored at key.
// Only Tab may be called directly inside block. Implied default: first tab.
func (ui *UI) Tabs(key string, block Block, opts ...Option) {
	if key == "" {
		ui.fail("tabs", "key must not be empty")
	}
	n := ui.newNode("tabs", domain.KindTabs, opts)
	n.Key = key
	ui.add("tabs", n)
	n.Children = ui.capture(n, false, block)

	labels := n.Tabs()
	if len(labels) == 0 {
		ui.fail("tabs", "tabs %q declares no tab", key)
	}
	def := labels[0]
	if n.Props.HasDefault {
		s, ok := n.Props.Default.(string)
		if !ok {
			ui.fail("tabs", "default must be a tab label")
		}
		def = s
	}
	ui.target()[key] = initial(ui.target(), key, def)
}

// Tab adds one tab. It must be called directly inside a Tabs block.
func (ui *UI) Tab(label string, block Block, opts ...Option) {
	f := ui.top()
	if f.owner == nil || f.owner.Kind != domain.KindTabs {
		ui.fail("tab", "called outside tabs")
	}
	n := ui.newNode("tab", domain.KindTab, opts)
	n.Value = label
	ui.container("tab", n, block)
}
