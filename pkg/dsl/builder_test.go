package dsl

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx context.Context, s domain.State) error { return nil }

func gallery(ui *UI) {
	ui.Header("Profile")
	ui.Field("name", Placeholder("Your name"), Default("Alice"))
	ui.Checkbox("agree", Label("I agree"))
	ui.CheckboxGroup("selected", []string{"a", "b", "c"})
	ui.Row(func(ui *UI) {
		ui.Button("Save", noop)
		ui.Button("Save", noop)
	})
	ui.Modal("confirm", "Are you sure?", func(ui *UI) {
		ui.Text("This cannot be undone.")
		ui.ModalFooter(func(ui *UI) {
			ui.Button("Confirm", noop)
		})
	})
	ui.Form("signup", func(ui *UI) {
		ui.Field("email", Type("email"))
		ui.Checkbox("newsletter")
		ui.Submit("Sign up", nil)
		ui.Cancel("Reset")
	})
	ui.Tabs("tab", func(ui *UI) {
		ui.Tab("One", func(ui *UI) { ui.Text("first") })
		ui.Tab("Two", func(ui *UI) { ui.Button("Inside", noop) })
	})
}

func TestBuild_ChildrenFollowCallOrder(t *testing.T) {
	tree, err := Build(domain.NewState(), gallery)
	require.NoError(t, err)
	require.Len(t, tree.Roots, 8)

	row := tree.Roots[4]
	assert.Equal(t, domain.KindRow, row.Kind)
	require.Len(t, row.Children, 2)
	assert.Equal(t, "save-0", row.Children[0].ID)
	assert.Equal(t, "save-1", row.Children[1].ID)

	modal := tree.Roots[5]
	require.Len(t, modal.Children, 1)
	require.Len(t, modal.Footer, 1)
	assert.Equal(t, "confirm-2", modal.Footer[0].ID)

	group := tree.Roots[3]
	require.Len(t, group.Children, 3)
	assert.Equal(t, "b", group.Children[1].Value)
	assert.Empty(t, group.Children[1].Key, "items carry literal values, not keys")

	form := tree.Roots[6]
	assert.Equal(t, "Sign up", form.SubmitLabel)
	assert.Equal(t, "Reset", form.CancelLabel)
	require.Len(t, form.Children, 2)
	assert.Equal(t, "signup", form.Children[0].Form)
}

func TestBuild_DefaultsAreSetIfAbsent(t *testing.T) {
	state := domain.NewState()
	_, err := Build(state, gallery)
	require.NoError(t, err)

	assert.Equal(t, "Alice", state["name"])
	assert.Equal(t, false, state["agree"])
	assert.Equal(t, []string{}, state["selected"])
	assert.Equal(t, false, state["confirm"])
	assert.Equal(t, "One", state["tab"])
	assert.Equal(t, map[string]any{"email": "", "newsletter": false}, state["signup"])
	_, leaked := state["email"]
	assert.False(t, leaked, "form fields must not bind at the top level")

	// Mutate, rebuild: no re-stomping.
	state["name"] = "Bob"
	state["agree"] = true
	_, err = Build(state, gallery)
	require.NoError(t, err)
	assert.Equal(t, "Bob", state["name"])
	assert.Equal(t, true, state["agree"])
}

func TestBuild_Idempotent(t *testing.T) {
	state := domain.NewState()
	first, err := Build(state, gallery)
	require.NoError(t, err)
	second, err := Build(state, gallery)
	require.NoError(t, err)

	assert.Equal(t, shape(first), shape(second))
}

func TestBuild_ButtonIdsResetPerBuild(t *testing.T) {
	state := domain.NewState()
	first, _ := Build(state, gallery)
	second, _ := Build(state, gallery)

	a, b := first.Buttons(), second.Buttons()
	require.Len(t, a, 4)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
	}
	assert.Equal(t, "inside-3", a[3].ID)
}

func TestBuild_StructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		block Block
	}{
		{"submit outside form", func(ui *UI) { ui.Submit("Go", nil) }},
		{"cancel outside form", func(ui *UI) { ui.Cancel("No") }},
		{"tab outside tabs", func(ui *UI) { ui.Tab("x", nil) }},
		{"footer outside modal", func(ui *UI) { ui.ModalFooter(nil) }},
		{"footer nested in container inside modal", func(ui *UI) {
			ui.Modal("m", "t", func(ui *UI) {
				ui.Container(func(ui *UI) { ui.ModalFooter(nil) })
			})
		}},
		{"nested form", func(ui *UI) {
			ui.Form("outer", func(ui *UI) {
				ui.Form("inner", nil)
			})
		}},
		{"non-tab inside tabs", func(ui *UI) {
			ui.Tabs("t", func(ui *UI) { ui.Text("stray") })
		}},
		{"empty tabs", func(ui *UI) { ui.Tabs("t", nil) }},
		{"reserved key", func(ui *UI) { ui.Field("_toasts") }},
		{"empty key", func(ui *UI) { ui.Field("") }},
		{"bad option type", func(ui *UI) { ui.TextArea("bio", With("rows", "many")) }},
		{"on change on button", func(ui *UI) {
			ui.Button("x", nil, OnChange(func(context.Context, domain.State, any) error { return nil }))
		}},
		{"bad header level", func(ui *UI) { ui.Header("h", Level(9)) }},
		{"reserved form name", func(ui *UI) { ui.Form("_toasts", nil) }},
		{"on blur inside form", func(ui *UI) {
			ui.Form("signup", func(ui *UI) {
				ui.Field("email", OnBlur(func(context.Context, domain.State, any) error { return nil }))
			})
		}},
		{"on change inside form container", func(ui *UI) {
			ui.Form("signup", func(ui *UI) {
				ui.Row(func(ui *UI) {
					ui.Checkbox("agree", OnChange(func(context.Context, domain.State, any) error { return nil }))
				})
			})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Build(domain.NewState(), tt.block)
			assert.Nil(t, tree)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrStructure), "got %v", err)
		})
	}
}

func TestBuild_SubmitInsideNestedContainerOfForm(t *testing.T) {
	tree, err := Build(domain.NewState(), func(ui *UI) {
		ui.Form("f", func(ui *UI) {
			ui.Row(func(ui *UI) {
				ui.Field("x")
				ui.Submit("Send", nil)
			})
		})
	})
	require.NoError(t, err)
	form := tree.FindForm("f")
	require.NotNil(t, form)
	assert.Equal(t, "Send", form.SubmitLabel)
	assert.Equal(t, "f", form.Children[0].Children[0].Form)
}

func TestBuild_UnknownOptionsArePreserved(t *testing.T) {
	tree, err := Build(domain.NewState(), func(ui *UI) {
		ui.Field("name", With("autocomplete", "off"), Placeholder("p"), Debounce(300))
	})
	require.NoError(t, err)
	n := tree.Roots[0]
	assert.Equal(t, "off", n.Extra["autocomplete"])
	assert.Equal(t, "p", n.Props.Placeholder)
	_, interpreted := n.Extra["placeholder"]
	assert.False(t, interpreted)
}

func TestBuild_OptionOutsideKindSetGoesToExtra(t *testing.T) {
	tree, err := Build(domain.NewState(), func(ui *UI) {
		ui.Text("hello", Placeholder("ignored by text"))
	})
	require.NoError(t, err)
	assert.Equal(t, "ignored by text", tree.Roots[0].Extra["placeholder"])
	assert.Empty(t, tree.Roots[0].Props.Placeholder)
}

func TestBuild_DepthIsRestored(t *testing.T) {
	var depths []int
	_, err := Build(domain.NewState(), func(ui *UI) {
		depths = append(depths, ui.Depth())
		ui.Container(func(ui *UI) {
			depths = append(depths, ui.Depth())
			ui.Card("c", func(ui *UI) {
				depths = append(depths, ui.Depth())
			})
			depths = append(depths, ui.Depth())
		})
		depths = append(depths, ui.Depth())
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 2, 1}, depths)
}

func TestBuild_ValueReadsFormNamespace(t *testing.T) {
	state := domain.State{"email": "top", "signup": map[string]any{"email": "nested"}}
	var inside, outside any
	_, err := Build(state, func(ui *UI) {
		outside = ui.Value("email")
		ui.Form("signup", func(ui *UI) {
			inside = ui.Value("email")
			ui.Field("email")
		})
	})
	require.NoError(t, err)
	assert.Equal(t, "top", outside)
	assert.Equal(t, "nested", inside)
}

func TestBuild_NonStructuralPanicPropagates(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = Build(domain.NewState(), func(ui *UI) { panic("boom") })
	})
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "save-draft", slug("Save  Draft!"))
	assert.Equal(t, "button", slug("✓"))
}

type nodeShape struct {
	Kind     domain.Kind
	Key, ID  string
	Children []nodeShape
}

func shape(t *domain.Tree) []nodeShape {
	var conv func([]*domain.Node) []nodeShape
	conv = func(ns []*domain.Node) []nodeShape {
		out := make([]nodeShape, 0, len(ns))
		for _, n := range ns {
			out = append(out, nodeShape{Kind: n.Kind, Key: n.Key, ID: n.ID, Children: conv(append(append([]*domain.Node{}, n.Children...), n.Footer...))})
		}
		return out
	}
	return conv(t.Roots)
}
