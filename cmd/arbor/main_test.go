package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	return runWith(t, filepath.Join(t.TempDir(), "none.yaml"), args...)
}

func runWith(t *testing.T, config string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", config))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestDemosBuild(t *testing.T) {
	for name, block := range demos {
		t.Run(name, func(t *testing.T) {
			_, err := dsl.Build(domain.NewState(), block)
			require.NoError(t, err)
		})
	}
	_, err := demo("missing")
	assert.ErrorContains(t, err, "available: dashboard, hello, signup")
}

func TestSignupFlow(t *testing.T) {
	d := runtime.NewDispatcher(runtime.NewEngine(signup))
	ctx := context.Background()
	state := domain.NewState()

	submit := func(params url.Values) *runtime.Result {
		res, err := d.Dispatch(ctx, state, domain.Request{Kind: domain.RequestFormSubmit, Target: "signup", Params: params})
		require.NoError(t, err)
		return res
	}

	res := submit(url.Values{"signup[email]": {"ada@example.com"}})
	require.NoError(t, res.Err)
	state = res.State
	assert.False(t, state.Bool("done"), "terms not accepted")
	assert.Len(t, domain.Toasts(state), 1)

	res = submit(url.Values{"signup[email]": {"nope"}, "signup[terms]": {"on"}})
	assert.ErrorContains(t, res.Err, "email address is not valid")
	assert.Nil(t, res.State)

	res = submit(url.Values{"signup[email]": {"ada@example.com"}, "signup[terms]": {"on"}, "signup[topics][]": {"security"}})
	require.NoError(t, res.Err)
	assert.Equal(t, "ada@example.com", res.State["account"])
	form, ok := domain.AsMap(res.State["signup"])
	require.True(t, ok)
	assert.Equal(t, []string{"security"}, form["topics"])
}

func TestVersionCommand(t *testing.T) {
	assert.Contains(t, run(t, "version"), "arbor version ")
}

func TestInspectCommand(t *testing.T) {
	out := run(t, "inspect", "--app", "hello", "--json", "--state", `{"name":"Ada"}`)

	var got struct {
		State map[string]any `json:"state"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Ada", got.State["name"])
	assert.Equal(t, false, got.State["shout"])
}

func TestGraphCommand(t *testing.T) {
	out := run(t, "graph", "--app", "signup")
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "form: signup")
}

func TestSessionCommands(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "arbor.yaml")
	sessions := filepath.Join(dir, "sessions")
	require.NoError(t, os.WriteFile(config, []byte("store: file\nstore_dir: "+sessions+"\n"), 0644))
	require.NoError(t, file.New(sessions).Save(context.Background(), "s1", domain.State{"name": "Ada"}))

	assert.Contains(t, runWith(t, config, "session", "ls"), "s1")
	assert.Contains(t, runWith(t, config, "session", "show", "s1"), `"name": "Ada"`)
	assert.Contains(t, runWith(t, config, "session", "rm", "--all"), "Removed s1")
	assert.Contains(t, runWith(t, config, "session", "ls"), "No sessions found.")
}
