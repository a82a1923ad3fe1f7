package graph_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(ui *dsl.UI) {
	ui.Header("Settings")
	ui.Card("Profile", func(ui *dsl.UI) {
		ui.Field("name")
		ui.Button("Save", func(ctx context.Context, s domain.State) error { return nil })
	})
	ui.Form("signup", func(ui *dsl.UI) {
		ui.Field("email")
		ui.Submit("Join", nil)
	})
	ui.Modal("confirm", "Sure?", func(ui *dsl.UI) {
		ui.Text("Really?")
		ui.ModalFooter(func(ui *dsl.UI) {
			ui.Button("Yes", nil)
		})
	})
}

func build(t *testing.T) (*domain.Tree, domain.State) {
	t.Helper()
	state := domain.NewState()
	tree, err := dsl.Build(state, sample)
	require.NoError(t, err)
	return tree, state
}

func TestGenerateMermaid(t *testing.T) {
	tree, _ := build(t)
	out := graph.GenerateMermaid(tree, nil)

	for _, want := range []string{
		"graph TD\n",
		`n0["header: Settings"]`,
		`n1(["card: Profile"])`,
		`n2[/"field: name"/]`,
		`n3[["button: save-0"]]`,
		"n1 --> n2",
		`[/"field: signup.email"/]`,
		"-. footer .->",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	tree, _ := build(t)
	out := graph.GenerateMermaid(tree, &graph.Overlay{Changed: []string{"signup"}, Focus: "save-0"})

	assert.Contains(t, out, "class n3 focus;")
	assert.Contains(t, out, "changed;")
	assert.Equal(t, 1, strings.Count(out, " focus;"))
}

func TestOutline(t *testing.T) {
	tree, state := build(t)
	state["name"] = "Ada"

	out := graph.Outline(tree, state)
	assert.Contains(t, out, "- **header: Settings**\n")
	assert.Contains(t, out, "  - **field: name** = `\"Ada\"`\n")
	assert.Contains(t, out, "  - **field: signup.email** = `\"\"`\n")
}
