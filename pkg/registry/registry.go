package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/dsl"
	"github.com/google/uuid"
)

// ErrInstanceExists is returned by Create when the id is already taken.
var ErrInstanceExists = errors.New("instance already exists")

// Instance is one loaded app: a UI block and the State it owns.
// Dispatch on an instance is serialized by its own mutex.
type Instance struct {
	ID      string
	Name    string
	Block   dsl.Block
	Created time.Time

	mu    sync.Mutex
	state domain.State
}

// State returns a copy of the instance's current State.
func (i *Instance) State() domain.State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state.Clone()
}

// Update runs fn under the instance lock and keeps the State it returns.
// A nil State leaves the current one in place. The signature matches
// session.Manager.Update so dispatch code can serve both.
func (i *Instance) Update(ctx context.Context, fn func(context.Context, domain.State) (domain.State, error)) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	next, err := fn(ctx, i.state.Clone())
	if err != nil {
		return err
	}
	if next != nil {
		i.state = next
	}
	return nil
}

// Registry is a concurrency-safe map of loaded app instances.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]*Instance

	logger  *slog.Logger
	observe func(count int)
}

// Option configures the Registry.
type Option func(*Registry)

// WithLogger configures a logger for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithObserver is called with the instance count after every change.
func WithObserver(fn func(count int)) Option {
	return func(r *Registry) {
		r.observe = fn
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		instances: make(map[string]*Instance),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create loads a new instance of block. An empty id is replaced by a
// generated one; an id already in use yields ErrInstanceExists.
func (r *Registry) Create(id, name string, block dsl.Block) (*Instance, error) {
	if block == nil {
		return nil, fmt.Errorf("create instance %q: nil block", id)
	}
	if id == "" {
		id = uuid.NewString()
	}
	inst := &Instance{
		ID:      id,
		Name:    name,
		Block:   block,
		Created: time.Now(),
		state:   domain.NewState(),
	}

	r.mu.Lock()
	if _, exists := r.instances[id]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrInstanceExists, id)
	}
	r.instances[id] = inst
	n := len(r.instances)
	r.mu.Unlock()

	r.logger.Info("instance loaded", "app_id", id, "app", name)
	r.notify(n)
	return inst, nil
}

// Get returns the instance with id or domain.ErrAppNotFound.
func (r *Registry) Get(id string) (*Instance, error) {
	r.mu.RLock()
	inst, ok := r.instances[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAppNotFound, id)
	}
	return inst, nil
}

// Remove unloads one instance and reports whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	_, ok := r.instances[id]
	delete(r.instances, id)
	n := len(r.instances)
	r.mu.Unlock()

	if ok {
		r.logger.Info("instance unloaded", "app_id", id)
		r.notify(n)
	}
	return ok
}

// Clear unloads every instance and returns how many there were.
func (r *Registry) Clear() int {
	r.mu.Lock()
	n := len(r.instances)
	r.instances = make(map[string]*Instance)
	r.mu.Unlock()

	r.logger.Info("registry cleared", "count", n)
	r.notify(0)
	return n
}

// List returns the loaded instance ids in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.instances))
	for id := range r.instances {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Len returns the number of loaded instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

func (r *Registry) notify(n int) {
	if r.observe != nil {
		r.observe(n)
	}
}
