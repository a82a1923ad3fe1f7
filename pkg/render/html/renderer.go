package html

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/render/markdown"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/arbor.js
var clientJS []byte

//go:embed static/arbor.css
var clientCSS []byte

// ClientJS returns the client runtime served at /static/arbor.js.
func ClientJS() []byte { return clientJS }

// ClientCSS returns the default stylesheet served at /static/arbor.css.
func ClientCSS() []byte { return clientCSS }

// Renderer is the default ports.Renderer: one html/template per node kind.
type Renderer struct {
	tmpl     *template.Template
	markdown ports.Markdown
	title    string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMarkdown replaces the markdown collaborator.
func WithMarkdown(md ports.Markdown) Option {
	return func(r *Renderer) {
		r.markdown = md
	}
}

// WithTitle sets the default document title.
func WithTitle(title string) Option {
	return func(r *Renderer) {
		r.title = title
	}
}

// New parses the embedded templates and checks that every node kind has one.
func New(opts ...Option) (*Renderer, error) {
	tmpl, err := template.New("arbor").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	for _, k := range domain.Kinds {
		if tmpl.Lookup(string(k)) == nil {
			return nil, fmt.Errorf("no template for node kind %q", k)
		}
	}
	r := &Renderer{tmpl: tmpl, markdown: markdown.New(), title: "arbor"}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// nodeData is what each kind template receives.
type nodeData struct {
	*domain.Node

	Base  string
	Name  string // form field name of an input
	DOMID string
	Value any

	Checked  bool // checkbox, checkbox item
	Open     bool // modal
	Active   bool // tab
	Selected []string
	Labels   []string // tabs
	Current  string   // tabs

	Markdown template.HTML
	Chart    string
	Head     []string
	Rows     [][]string

	Children template.HTML
	Footer   template.HTML
}

type renderCtx struct {
	ctx   context.Context
	view  ports.View
	scope map[string]any // bound values for the form being rendered
}

// Node renders one component and its descendants.
func (r *Renderer) Node(ctx context.Context, view ports.View, node *domain.Node) (string, error) {
	rc := &renderCtx{ctx: ctx, view: view, scope: view.State}
	if node.Form != "" {
		rc.scope, _ = domain.AsMap(view.State[node.Form])
	}
	out, err := r.node(rc, node, nil)
	return string(out), err
}

func (r *Renderer) node(rc *renderCtx, n *domain.Node, parent *nodeData) (template.HTML, error) {
	if err := rc.ctx.Err(); err != nil {
		return "", err
	}
	d := &nodeData{Node: n, Base: rc.view.Base}
	scope := rc.scope

	if n.Bound() {
		d.Value = scope[n.Key]
		d.Name = inputName(n.Form, n.Key)
		d.DOMID = domID(n.Form, n.Key)
	}

	switch n.Kind {
	case domain.KindMarkdown:
		out, err := r.markdown.Render(n.Value)
		if err != nil {
			return "", err
		}
		d.Markdown = template.HTML(out)
	case domain.KindChart:
		data, err := json.Marshal(n.Props.Data)
		if err != nil {
			return "", fmt.Errorf("chart data: %w", err)
		}
		d.Chart = string(data)
		d.Head, d.Rows = tableRows(n.Props.Data, nil)
	case domain.KindTable:
		d.Head, d.Rows = tableRows(n.Props.Data, n.Props.Columns)
	case domain.KindCheckbox:
		d.Checked = truthy(d.Value)
	case domain.KindCheckboxGroup:
		d.Selected = domain.Strings(d.Value)
	case domain.KindCheckboxItem:
		if parent != nil {
			d.Name = parent.Name + "[]"
			d.Node = withKey(n, parent.Node)
			d.Checked = contains(parent.Selected, n.Value)
			d.DOMID = parent.DOMID + "-" + slug(n.Value)
		}
	case domain.KindModal:
		d.Open = truthy(d.Value)
	case domain.KindTabs:
		d.Labels = n.Tabs()
		d.Current = fmt.Sprint(scope[n.Key])
		d.DOMID = domID(n.Form, n.Key)
	case domain.KindTab:
		if parent != nil {
			d.Active = parent.Current == n.Value
		}
	case domain.KindForm:
		if m, ok := domain.AsMap(rc.view.State[n.Key]); ok {
			rc.scope = m
			defer func() { rc.scope = scope }()
		}
	}

	var err error
	if d.Children, err = r.nodes(rc, n.Children, d); err != nil {
		return "", err
	}
	if d.Footer, err = r.nodes(rc, n.Footer, d); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, string(n.Kind), d); err != nil {
		return "", fmt.Errorf("render %s: %w", n.Kind, err)
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) nodes(rc *renderCtx, ns []*domain.Node, parent *nodeData) (template.HTML, error) {
	var b strings.Builder
	for _, c := range ns {
		out, err := r.node(rc, c, parent)
		if err != nil {
			return "", err
		}
		b.WriteString(string(out))
	}
	return template.HTML(b.String()), nil
}

type pageData struct {
	Title    string
	Base     string
	Theme    string
	Headless bool
	Content  template.HTML
}

type fragmentData struct {
	Toasts []domain.Toast
	Base   string
	Body   template.HTML
}

// Fragment renders the toasts and the root nodes of view.Tree.
func (r *Renderer) Fragment(ctx context.Context, view ports.View) (string, error) {
	rc := &renderCtx{ctx: ctx, view: view, scope: view.State}
	var roots template.HTML
	if view.Tree != nil {
		var err error
		if roots, err = r.nodes(rc, view.Tree.Roots, nil); err != nil {
			return "", err
		}
	}
	var buf bytes.Buffer
	err := r.tmpl.ExecuteTemplate(&buf, "fragment", fragmentData{
		Toasts: domain.Toasts(view.State),
		Base:   view.Base,
		Body:   roots,
	})
	if err != nil {
		return "", fmt.Errorf("render fragment: %w", err)
	}
	return buf.String(), nil
}

// Page renders the full document around the fragment.
func (r *Renderer) Page(ctx context.Context, view ports.View) (string, error) {
	content, err := r.Fragment(ctx, view)
	if err != nil {
		return "", err
	}
	title := view.Title
	if title == "" {
		title = r.title
	}
	var buf bytes.Buffer
	err = r.tmpl.ExecuteTemplate(&buf, "page", pageData{
		Title:    title,
		Base:     view.Base,
		Theme:    domain.ThemeClass(view.State.String(domain.KeyTheme)),
		Headless: view.Headless,
		Content:  template.HTML(content),
	})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return buf.String(), nil
}

type terminalData struct {
	Title  string
	Keys   []string
	Values map[string]string
}

// Terminal renders the confirmation page shown after a headless submit.
func (r *Renderer) Terminal(ctx context.Context, result domain.State) (string, error) {
	keys := make([]string, 0, len(result))
	values := make(map[string]string, len(result))
	for k, v := range result {
		keys = append(keys, k)
		b, err := json.Marshal(v)
		if err != nil {
			b = []byte(fmt.Sprint(v))
		}
		values[k] = string(b)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "terminal", terminalData{Title: r.title, Keys: keys, Values: values}); err != nil {
		return "", fmt.Errorf("render terminal: %w", err)
	}
	return buf.String(), nil
}

type diagnosticData struct {
	Kind    string
	Message string
	Trace   string
}

// Diagnostic renders an inline error report. Callback failures show the
// failing operation and, for panics, the stack.
func (r *Renderer) Diagnostic(ctx context.Context, err error) (string, error) {
	d := diagnosticData{Kind: "error", Message: err.Error()}
	var cbErr *domain.CallbackError
	var sErr *domain.StructuralError
	switch {
	case errors.As(err, &cbErr):
		d.Kind = "callback error"
		if cbErr.Target != "" {
			d.Kind = fmt.Sprintf("callback error in %s %q", cbErr.Op, cbErr.Target)
		}
		d.Message = cbErr.Err.Error()
		d.Trace = string(cbErr.Stack)
	case errors.As(err, &sErr):
		d.Kind = "structural error in " + sErr.Op
		d.Message = sErr.Reason
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "diagnostic", d); err != nil {
		return "", fmt.Errorf("render diagnostic: %w", err)
	}
	return buf.String(), nil
}

// withKey copies the group's binding onto an item so templates can name it.
func withKey(item, group *domain.Node) *domain.Node {
	c := *item
	c.Key = group.Key
	c.Form = group.Form
	c.Props.Disabled = group.Props.Disabled
	return &c
}

func inputName(form, key string) string {
	if form == "" {
		return key
	}
	return form + "[" + key + "]"
}

func domID(form, key string) string {
	if form == "" {
		return "arbor-" + slug(key)
	}
	return "arbor-" + slug(form) + "-" + slug(key)
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "on" || t == "true"
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// tableRows normalizes table data: [][]string, [][]any or a slice of maps.
// For maps the header is columns, or the sorted union of keys.
func tableRows(data any, columns []string) (head []string, rows [][]string) {
	switch t := data.(type) {
	case [][]string:
		return columns, t
	case [][]any:
		for _, row := range t {
			rows = append(rows, stringify(row))
		}
		return columns, rows
	case []map[string]any:
		head = columns
		if len(head) == 0 {
			head = unionKeys(t)
		}
		for _, m := range t {
			row := make([]string, len(head))
			for i, c := range head {
				if v, ok := m[c]; ok {
					row[i] = fmt.Sprint(v)
				}
			}
			rows = append(rows, row)
		}
		return head, rows
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			rows = append(rows, []string{k, fmt.Sprint(t[k])})
		}
		return columns, rows
	case []any:
		for _, v := range t {
			rows = append(rows, []string{fmt.Sprint(v)})
		}
		return columns, rows
	}
	return columns, nil
}

func stringify(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func unionKeys(ms []map[string]any) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range ms {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
