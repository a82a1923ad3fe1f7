package arbor

import (
	"context"
	_ "embed"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/runtime"
	arborhttp "github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/dsl"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

//go:embed VERSION
var version string

// Version is the library version.
var Version = strings.TrimSpace(version)

// App is the high-level entry point: one declarative block served over HTTP,
// plus any number of mounted instances.
type App struct {
	block    dsl.Block
	title    string
	store    ports.StateStore
	persist  []middleware.Middleware
	locker   ports.DistributedLocker
	lockTTL  time.Duration
	idleTTL  time.Duration
	themes   []string
	budget   int
	cookie   string
	headless bool
	logger   *slog.Logger
	registry *prometheus.Registry

	metrics    *observability.Metrics
	agent      *runtime.Agent
	dispatcher *runtime.Dispatcher
	sessions   *session.Manager
	instances  *registry.Registry
	server     *arborhttp.Server
}

// Option configures an App.
type Option func(*App)

// WithTitle sets the document title.
func WithTitle(title string) Option {
	return func(a *App) {
		a.title = title
	}
}

// WithStore sets where session State is persisted (default: in memory).
func WithStore(store ports.StateStore) Option {
	return func(a *App) {
		a.store = store
	}
}

// WithPersistence wraps the store with middlewares. The first one sees each
// Save first.
func WithPersistence(mws ...middleware.Middleware) Option {
	return func(a *App) {
		a.persist = append(a.persist, mws...)
	}
}

// WithBudget caps the encoded size of a persisted State. A limit <= 0
// disables the check.
func WithBudget(limit int) Option {
	return func(a *App) {
		a.budget = limit
	}
}

// WithLocker adds a distributed lock around each session update.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(a *App) {
		a.locker = locker
	}
}

// WithLockTTL bounds how long the distributed session lock is held.
func WithLockTTL(ttl time.Duration) Option {
	return func(a *App) {
		a.lockTTL = ttl
	}
}

// WithSessionTTL expires sessions of the default in-memory store after ttl
// without a save. It has no effect together with WithStore.
func WithSessionTTL(ttl time.Duration) Option {
	return func(a *App) {
		a.idleTTL = ttl
	}
}

// WithThemes registers the theme names a client may switch to.
func WithThemes(themes ...string) Option {
	return func(a *App) {
		a.themes = append(a.themes, themes...)
	}
}

// WithCookie sets the session cookie name.
func WithCookie(name string) Option {
	return func(a *App) {
		a.cookie = name
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithMetrics registers the app's metrics on reg and serves them at /metrics.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}

// Headless makes the app completable: the page carries a finish control and
// RunAgent returns what was submitted.
func Headless() Option {
	return func(a *App) {
		a.headless = true
	}
}

// New creates an app for block.
func New(block dsl.Block, opts ...Option) (*App, error) {
	a := &App{
		block:  block,
		title:  "arbor",
		budget: middleware.DefaultBudget,
		cookie: arborhttp.DefaultCookie,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.store == nil {
		a.store = memory.NewStore(memory.WithTTL(a.idleTTL))
	}

	if a.registry != nil {
		a.metrics = observability.NewMetrics(a.registry)
	}
	common := []runtime.DispatcherOption{
		runtime.WithThemes(a.themes...),
		runtime.WithLogger(a.logger),
		runtime.WithMetrics(a.metrics),
	}
	rootOpts := common
	if a.headless {
		a.agent = runtime.NewAgent()
		rootOpts = append(append([]runtime.DispatcherOption{}, common...), runtime.WithAgent(a.agent))
	}
	a.dispatcher = runtime.NewDispatcher(runtime.NewEngine(block), rootOpts...)

	persist := append([]middleware.Middleware{}, a.persist...)
	if a.budget > 0 {
		persist = append(persist, middleware.NewBudgetMiddleware(a.budget,
			middleware.WithSizeObserver(a.metrics.ObserveStateSize)))
	}
	sessOpts := []session.Option{session.WithLogger(a.logger)}
	if a.locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(a.locker), session.WithLockTTL(a.lockTTL))
	}
	a.sessions = session.NewManager(middleware.Chain(a.store, persist...), sessOpts...)

	a.instances = registry.New(
		registry.WithLogger(a.logger),
		registry.WithObserver(a.metrics.SetInstances),
	)

	srvOpts := []arborhttp.Option{
		arborhttp.WithRegistry(a.instances),
		arborhttp.WithInstanceOptions(common...),
		arborhttp.WithLogger(a.logger),
		arborhttp.WithCookie(a.cookie),
		arborhttp.WithTitle(a.title),
		arborhttp.WithHeadless(a.headless),
	}
	if a.registry != nil {
		srvOpts = append(srvOpts, arborhttp.WithGatherer(a.registry))
	}
	srv, err := arborhttp.NewServer(a.dispatcher, a.sessions, srvOpts...)
	if err != nil {
		return nil, err
	}
	a.server = srv
	return a, nil
}

// Handler returns the HTTP handler serving the app and its instances.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Mount loads block as an instance served under /apps/{id}. An empty id gets
// a generated one.
func (a *App) Mount(id, name string, block dsl.Block) (*registry.Instance, error) {
	return a.instances.Create(id, name, block)
}

// Unmount unloads an instance. It reports whether the instance existed.
func (a *App) Unmount(id string) bool {
	return a.instances.Remove(id)
}

// Instances returns the instance registry.
func (a *App) Instances() *registry.Registry {
	return a.instances
}

// Sessions returns the session manager holding the root app's State.
func (a *App) Sessions() *session.Manager {
	return a.sessions
}

// Sweep drops expired sessions from a store that supports it and reports
// how many were removed.
func (a *App) Sweep() int {
	sw, ok := a.store.(interface{ Sweep() int })
	if !ok {
		return 0
	}
	n := sw.Sweep()
	if n > 0 {
		a.logger.Debug("expired sessions removed", "count", n)
	}
	return n
}

// Dispatcher returns the root app's dispatcher.
func (a *App) Dispatcher() *runtime.Dispatcher {
	return a.dispatcher
}

// Inspect rebuilds the tree for state without dispatching anything. A nil
// state inspects the initial tree. The returned State carries the defaults.
func (a *App) Inspect(state domain.State) (*domain.Tree, domain.State, error) {
	if state == nil {
		state = domain.NewState()
	} else {
		state = state.Clone()
	}
	tree, err := a.dispatcher.Engine().Resolve(state)
	return tree, state, err
}

// RunAgent waits for the headless submission, returning the submitted input
// values. On timeout or cancellation it returns an empty State. Apps built
// without Headless return an empty State at once.
func (a *App) RunAgent(ctx context.Context, timeout time.Duration) domain.State {
	if a.agent == nil {
		return domain.NewState()
	}
	result := a.agent.Wait(ctx, timeout)
	a.metrics.AgentFinished(len(result) > 0)
	a.logger.InfoContext(ctx, "agent run finished", "submitted", len(result) > 0)
	return result
}
