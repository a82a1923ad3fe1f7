package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
)

type entry struct {
	state   domain.State
	touched time.Time
}

// Store implements ports.StateStore in process memory. States are cloned on
// the way in and out so callers never share maps with the store.
// Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string]entry

	ttl time.Duration
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL expires sessions not saved for ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]entry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores a copy of state and refreshes the session's expiry.
func (s *Store) Save(ctx context.Context, sessionID string, state domain.State) error {
	copied := state.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = entry{state: copied, touched: s.now()}
	return nil
}

// Load returns a copy of the session's State, or domain.ErrSessionNotFound
// when it was never saved or has expired.
func (s *Store) Load(ctx context.Context, sessionID string) (domain.State, error) {
	s.mu.RLock()
	e, ok := s.data[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if s.expired(e) {
		s.mu.Lock()
		if cur, ok := s.data[sessionID]; ok && s.expired(cur) {
			delete(s.data, sessionID)
		}
		s.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	return e.state.Clone(), nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns the live session ids in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id, e := range s.data {
		if !s.expired(e) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Sweep drops expired sessions and reports how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.data {
		if s.expired(e) {
			delete(s.data, id)
			n++
		}
	}
	return n
}

func (s *Store) expired(e entry) bool {
	return s.ttl > 0 && s.now().Sub(e.touched) >= s.ttl
}
