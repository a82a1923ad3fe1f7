package mcp

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/dsl"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func survey(ui *dsl.UI) {
	ui.Field("name", dsl.Label("Name"))
	ui.Checkbox("subscribe")
	ui.CheckboxGroup("topics", []string{"go", "rust"})
	ui.Form("extra", func(ui *dsl.UI) {
		ui.Field("note")
		ui.Submit("Save", nil)
	})
}

func newServer(t *testing.T, block dsl.Block) (*Server, *runtime.Agent) {
	t.Helper()
	agent := runtime.NewAgent()
	d := runtime.NewDispatcher(runtime.NewEngine(block), runtime.WithAgent(agent))
	return NewServer(d, session.NewManager(memory.NewStore()), "test"), agent
}

func TestDescribe(t *testing.T) {
	s, _ := newServer(t, survey)

	desc, err := s.handleDescribe(context.Background(), mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	require.Len(t, desc.Fields, 4)

	assert.Equal(t, Field{Key: "name", Kind: "field", Label: "Name", Value: ""}, desc.Fields[0])
	assert.Equal(t, []string{"go", "rust"}, desc.Fields[2].Items)
	assert.Equal(t, Field{Key: "note", Form: "extra", Kind: "field", Value: ""}, desc.Fields[3])
}

func TestSubmit(t *testing.T) {
	s, agent := newServer(t, survey)

	out, err := s.handleSubmit(context.Background(), mcp.CallToolRequest{}, SubmitArgs{Values: map[string]any{
		"name":      "Ada",
		"subscribe": false,
		"topics":    []any{"go"},
		"ignored":   "x",
	}})
	require.NoError(t, err)
	assert.Equal(t, "Ada", out.Values["name"])
	assert.Equal(t, false, out.Values["subscribe"])
	assert.Equal(t, []string{"go"}, out.Values["topics"])
	assert.NotContains(t, out.Values, "ignored")

	got := agent.Wait(context.Background(), time.Second)
	assert.Equal(t, domain.State(out.Values), got)
}

func TestSubmit_CallbackFailure(t *testing.T) {
	s, _ := newServer(t, func(ui *dsl.UI) {
		ui.Field("name")
		if ui.State().String("name") == "boom" {
			panic("bad name")
		}
	})

	_, err := s.handleSubmit(context.Background(), mcp.CallToolRequest{}, SubmitArgs{Values: map[string]any{"name": "boom"}})
	var cbErr *domain.CallbackError
	require.True(t, errors.As(err, &cbErr))
	assert.Equal(t, "rebuild", cbErr.Op)
}

func TestParams(t *testing.T) {
	params, err := Params(map[string]any{
		"a": "x",
		"b": true,
		"c": false,
		"d": []any{"1", 2.0},
		"e": 3.5,
		"f": nil,
	})
	require.NoError(t, err)
	assert.Equal(t, url.Values{
		"a":   {"x"},
		"b":   {"on"},
		"d[]": {"1", "2"},
		"e":   {"3.5"},
	}, params)

	_, err = Params(map[string]any{"nested": map[string]any{"k": "v"}})
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	s, _ := newServer(t, func(ui *dsl.UI) {
		ui.Field("name", dsl.Default("anon"))
		ui.Button("Rename", func(ctx context.Context, st domain.State) error {
			st["name"] = "renamed"
			return nil
		})
	})
	ctx := context.Background()

	require.NoError(t, s.sessions.Update(ctx, SessionID, func(ctx context.Context, st domain.State) (domain.State, error) {
		res, err := s.dispatcher.Dispatch(ctx, st, domain.Request{Kind: domain.RequestAction, Target: "rename-0"})
		require.NoError(t, err)
		return res.State, nil
	}))
	desc, err := s.handleDescribe(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "renamed", desc.Fields[0].Value)

	desc, err = s.handleReset(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "anon", desc.Fields[0].Value)
}
