package html_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/dsl"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/render/html"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Renderer = (*html.Renderer)(nil)

func everyKind(ui *dsl.UI) {
	ui.Header("Title", dsl.Level(1))
	ui.Text("plain <b>text</b>")
	ui.Markdown("**bold**")
	ui.Divider()
	ui.Chart(map[string]any{"a": 1, "b": 2}, dsl.Title("Counts"), dsl.Variant("line"))
	ui.Table([]map[string]any{{"name": "x", "n": 1}}, dsl.Columns("name", "n"))
	ui.Field("name", dsl.Label("Name"), dsl.Placeholder("you"), dsl.With("autocomplete", "off"))
	ui.TextArea("bio")
	ui.Checkbox("agree", dsl.Label("Agree"))
	ui.Select("color", []string{"red", "blue"})
	ui.Radio("size", []string{"s", "m"})
	ui.CheckboxGroup("tags", []string{"a", "b"})
	ui.Button("Go", nil, dsl.Variant("primary"))
	ui.Container(func(ui *dsl.UI) {
		ui.Row(func(ui *dsl.UI) {
			ui.Card("Card", func(ui *dsl.UI) { ui.Text("in card") })
		})
	})
	ui.Form("signup", func(ui *dsl.UI) {
		ui.Field("email")
		ui.Submit("Join", nil)
		ui.Cancel("Reset")
	})
	ui.Modal("dialog", "Sure?", func(ui *dsl.UI) {
		ui.ModalFooter(func(ui *dsl.UI) { ui.Button("Yes", nil) })
	})
	ui.Tabs("view", func(ui *dsl.UI) {
		ui.Tab("One", func(ui *dsl.UI) { ui.Text("first") })
		ui.Tab("Two", func(ui *dsl.UI) { ui.Text("second") })
	})
}

func render(t *testing.T, state domain.State) string {
	t.Helper()
	r, err := html.New()
	require.NoError(t, err)
	tree, err := dsl.Build(state, everyKind)
	require.NoError(t, err)
	out, err := r.Fragment(context.Background(), ports.View{Tree: tree, State: state})
	require.NoError(t, err)
	return out
}

func TestRenderer_CoversEveryKind(t *testing.T) {
	state := domain.NewState()
	out := render(t, state)

	seen := map[domain.Kind]bool{}
	tree, err := dsl.Build(state, everyKind)
	require.NoError(t, err)
	tree.Walk(func(n *domain.Node) bool {
		seen[n.Kind] = true
		return true
	})
	for _, k := range domain.Kinds {
		assert.True(t, seen[k], "fixture is missing kind %s", k)
	}
	assert.NotEmpty(t, out)
}

func TestRenderer_Bindings(t *testing.T) {
	state := domain.State{
		"name":  "Alice",
		"agree": true,
		"tags":  []string{"b"},
		"color": "blue",
		"view":  "Two",
	}
	out := render(t, state)

	assert.Contains(t, out, `value="Alice"`)
	assert.Contains(t, out, `name="name"`)
	assert.Contains(t, out, `data-arbor-input`)
	assert.Contains(t, out, `<option value="blue" selected>`)
	assert.Contains(t, out, `name="tags[]" value="b" id="arbor-tags-b" checked`)
	assert.Contains(t, out, `name="signup[email]"`)
	assert.Contains(t, out, `data-arbor-form="signup"`)
	assert.Contains(t, out, `data-arbor-action="go-0"`)
	assert.Contains(t, out, `data-arbor-action="yes-1"`)
	assert.Contains(t, out, `data-x-autocomplete="off"`)
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "plain &lt;b&gt;text&lt;/b&gt;", "text is escaped")
	assert.Contains(t, out, `class="arbor-tab-button arbor-active" aria-selected="true" data-arbor-tab="view" data-arbor-tab-value="Two"`)
	assert.Contains(t, out, `data-arbor-modal="dialog" hidden`)
}

func TestRenderer_FormFieldsAreDeferred(t *testing.T) {
	out := render(t, domain.NewState())
	i := strings.Index(out, `name="signup[email]"`)
	require.Positive(t, i)
	tag := out[strings.LastIndex(out[:i], "<"):]
	tag = tag[:strings.Index(tag, ">")]
	assert.NotContains(t, tag, "data-arbor-input", "form fields never post on change")
}

func TestRenderer_Toasts(t *testing.T) {
	state := domain.NewState()
	id := domain.PushToast(state, "Saved", "success")
	out := render(t, state)
	assert.Contains(t, out, `data-arbor-dismiss="`+id+`"`)
	assert.Contains(t, out, "Saved")
}

func TestRenderer_Page(t *testing.T) {
	r, err := html.New(html.WithTitle("Demo"))
	require.NoError(t, err)
	state := domain.State{domain.KeyTheme: "dark"}
	tree, err := dsl.Build(state, func(ui *dsl.UI) { ui.Text("hi") })
	require.NoError(t, err)

	page, err := r.Page(context.Background(), ports.View{Tree: tree, State: state, Base: "/apps/x", Headless: true})
	require.NoError(t, err)
	assert.Contains(t, page, "<!DOCTYPE html>")
	assert.Contains(t, page, "<title>Demo</title>")
	assert.Contains(t, page, `src="/apps/x/static/arbor.js"`)
	assert.Contains(t, page, `class="arbor arbor-theme-dark"`)
	assert.Contains(t, page, "data-arbor-submit")

	frag, err := r.Fragment(context.Background(), ports.View{Tree: tree, State: state})
	require.NoError(t, err)
	assert.NotContains(t, frag, "<!DOCTYPE html>")
}

func TestRenderer_Diagnostic(t *testing.T) {
	r, err := html.New()
	require.NoError(t, err)

	out, err := r.Diagnostic(context.Background(), &domain.CallbackError{
		Op: "action", Target: "save-0", Err: errors.New("disk <full>"), Stack: []byte("goroutine 1"),
	})
	require.NoError(t, err)
	assert.Contains(t, out, `callback error in action &#34;save-0&#34;`)
	assert.Contains(t, out, "disk &lt;full&gt;")
	assert.Contains(t, out, "goroutine 1")
}

func TestRenderer_Terminal(t *testing.T) {
	r, err := html.New()
	require.NoError(t, err)
	out, err := r.Terminal(context.Background(), domain.State{"name": "Alice", "agree": true})
	require.NoError(t, err)
	assert.Contains(t, out, "Submitted")
	assert.Contains(t, out, "<dt>agree</dt><dd><code>true</code></dd>")
	assert.Contains(t, out, "&#34;Alice&#34;")
}

func TestClientAssets(t *testing.T) {
	assert.Contains(t, string(html.ClientJS()), "arbor-content")
	assert.NotEmpty(t, html.ClientCSS())
}
