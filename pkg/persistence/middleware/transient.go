package middleware

import (
	"context"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

type transientMiddleware struct {
	next     ports.StateStore
	exact    map[string]bool
	prefixes []string
}

// NewTransientMiddleware drops top-level keys from the persisted form of a
// State. A key ending in "*" matches every key with that prefix. The State
// handed to Save is left untouched, so transient values stay visible for the
// rest of the request.
func NewTransientMiddleware(keys ...string) Middleware {
	m := &transientMiddleware{exact: make(map[string]bool)}
	for _, k := range keys {
		if p, ok := strings.CutSuffix(k, "*"); ok {
			m.prefixes = append(m.prefixes, p)
			continue
		}
		m.exact[k] = true
	}
	return func(next ports.StateStore) ports.StateStore {
		mw := *m
		mw.next = next
		return &mw
	}
}

func (m *transientMiddleware) excluded(key string) bool {
	if m.exact[key] {
		return true
	}
	for _, p := range m.prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

func (m *transientMiddleware) Save(ctx context.Context, sessionID string, state domain.State) error {
	kept := make(domain.State, len(state))
	for k, v := range state {
		if !m.excluded(k) {
			kept[k] = v
		}
	}
	return m.next.Save(ctx, sessionID, kept)
}

func (m *transientMiddleware) Load(ctx context.Context, sessionID string) (domain.State, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *transientMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *transientMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
