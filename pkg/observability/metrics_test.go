package observability_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Dispatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	m.ObserveDispatch("update", observability.OutcomeOK, 3*time.Millisecond)
	m.ObserveDispatch("update", observability.OutcomeOK, time.Millisecond)
	m.ObserveDispatch("action", observability.OutcomeCallback, time.Millisecond)
	m.CallbackFailed("action")
	m.SetInstances(3)
	m.AgentFinished(false)

	count, err := testutil.GatherAndCount(reg, "arbor_dispatch_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per kind/outcome pair")

	expected := `
# HELP arbor_loaded_instances App instances currently held by the registry
# TYPE arbor_loaded_instances gauge
arbor_loaded_instances 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "arbor_loaded_instances"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *observability.Metrics
	assert.NotPanics(t, func() {
		m.ObserveDispatch("load", observability.OutcomeOK, time.Millisecond)
		m.CallbackFailed("action")
		m.ObserveStateSize(10)
		m.SetInstances(1)
		m.AgentFinished(true)
	})
}
