package arbor_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/dsl"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hello(ui *dsl.UI) {
	ui.Field("name", dsl.Default("world"))
	ui.Text("Hello " + ui.State().String("name"))
}

func TestInspect(t *testing.T) {
	app, err := arbor.New(hello)
	require.NoError(t, err)

	tree, state, err := app.Inspect(nil)
	require.NoError(t, err)
	assert.Equal(t, domain.State{"name": "world"}, state)
	assert.Equal(t, "Hello world", tree.Roots[1].Value)

	prior := domain.State{"name": "Ada"}
	tree, _, err = app.Inspect(prior)
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada", tree.Roots[1].Value)
	assert.Equal(t, domain.State{"name": "Ada"}, prior)
}

func TestRunAgent(t *testing.T) {
	reg := prometheus.NewRegistry()
	app, err := arbor.New(hello, arbor.Headless(), arbor.WithMetrics(reg),
		arbor.WithPersistence(middleware.NewTransientMiddleware("_*")))
	require.NoError(t, err)

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	go func() {
		resp, err := http.PostForm(srv.URL+"/submit", url.Values{"name": {"Ada"}})
		if err == nil {
			resp.Body.Close()
		}
	}()

	got := app.RunAgent(context.Background(), 5*time.Second)
	assert.Equal(t, domain.State{"name": "Ada"}, got)
	expected := `
# HELP arbor_agent_runs_total Headless runs by result
# TYPE arbor_agent_runs_total counter
arbor_agent_runs_total{result="submitted"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "arbor_agent_runs_total"))
}

func TestRunAgent_Timeout(t *testing.T) {
	app, err := arbor.New(hello, arbor.Headless())
	require.NoError(t, err)

	start := time.Now()
	got := app.RunAgent(context.Background(), 50*time.Millisecond)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestMount(t *testing.T) {
	reg := prometheus.NewRegistry()
	app, err := arbor.New(hello, arbor.WithMetrics(reg))
	require.NoError(t, err)

	inst, err := app.Mount("", "second", hello)
	require.NoError(t, err)
	assert.NotEmpty(t, inst.ID)

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	resp, err := http.PostForm(srv.URL+"/apps/"+inst.ID+"/update", url.Values{"name": {"Bo"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bo", inst.State()["name"])

	assert.True(t, app.Unmount(inst.ID))
	resp, err = http.Get(srv.URL + "/apps/" + inst.ID + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSweep(t *testing.T) {
	app, err := arbor.New(hello, arbor.WithSessionTTL(20*time.Millisecond))
	require.NoError(t, err)

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()

	ids, err := app.Sessions().List(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 1)

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 1, app.Sweep())
	assert.Equal(t, 0, app.Sweep())
}
