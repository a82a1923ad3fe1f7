package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for dispatched requests.
const (
	OutcomeOK        = "ok"
	OutcomeNoop      = "noop"
	OutcomeCallback  = "callback_error"
	OutcomeStructure = "structure_error"
	OutcomeInvalid   = "invalid_input"
	OutcomeError     = "error"
)

// Metrics groups the collectors arbor records into.
type Metrics struct {
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	callbacks  *prometheus.CounterVec
	stateSize  prometheus.Histogram
	instances  prometheus.Gauge
	agentRuns  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_dispatch_total",
				Help: "Total number of dispatched requests",
			},
			[]string{"kind", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arbor_dispatch_duration_seconds",
				Help:    "Duration of request dispatch including both rebuilds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"kind"},
		),
		callbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_callback_failures_total",
				Help: "Callbacks that returned an error or panicked",
			},
			[]string{"op"},
		),
		stateSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "arbor_persisted_state_bytes",
				Help:    "Size of the encoded state handed to the store",
				Buckets: prometheus.ExponentialBuckets(64, 2, 10),
			},
		),
		instances: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "arbor_loaded_instances",
				Help: "App instances currently held by the registry",
			},
		),
		agentRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_agent_runs_total",
				Help: "Headless runs by result",
			},
			[]string{"result"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.dispatches, m.duration, m.callbacks, m.stateSize, m.instances, m.agentRuns)
	}
	return m
}

// ObserveDispatch records one dispatched request.
func (m *Metrics) ObserveDispatch(kind, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// CallbackFailed counts a failed callback for op.
func (m *Metrics) CallbackFailed(op string) {
	if m == nil {
		return
	}
	m.callbacks.WithLabelValues(op).Inc()
}

// ObserveStateSize records the encoded size of a persisted state.
func (m *Metrics) ObserveStateSize(bytes int) {
	if m == nil {
		return
	}
	m.stateSize.Observe(float64(bytes))
}

// SetInstances reports the number of loaded instances.
func (m *Metrics) SetInstances(n int) {
	if m == nil {
		return
	}
	m.instances.Set(float64(n))
}

// AgentFinished counts a headless run; submitted is false on timeout.
func (m *Metrics) AgentFinished(submitted bool) {
	if m == nil {
		return
	}
	result := "timeout"
	if submitted {
		result = "submitted"
	}
	m.agentRuns.WithLabelValues(result).Inc()
}
