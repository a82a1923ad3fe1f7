package middleware

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// DefaultBudget is the cookie-sized limit for an encoded State, in bytes.
const DefaultBudget = 4096

type budgetMiddleware struct {
	next    ports.StateStore
	limit   int
	observe func(int)
}

// BudgetOption configures the budget middleware.
type BudgetOption func(*budgetMiddleware)

// WithSizeObserver is called with the encoded size of every State saved.
func WithSizeObserver(fn func(bytes int)) BudgetOption {
	return func(m *budgetMiddleware) {
		m.observe = fn
	}
}

// NewBudgetMiddleware rejects a Save whose JSON encoding exceeds limit bytes
// with domain.ErrStateTooLarge. A limit <= 0 only measures.
func NewBudgetMiddleware(limit int, opts ...BudgetOption) Middleware {
	return func(next ports.StateStore) ports.StateStore {
		m := &budgetMiddleware{next: next, limit: limit}
		for _, opt := range opts {
			opt(m)
		}
		return m
	}
}

func (m *budgetMiddleware) Save(ctx context.Context, sessionID string, state domain.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if m.observe != nil {
		m.observe(len(data))
	}
	if m.limit > 0 && len(data) > m.limit {
		return fmt.Errorf("%w: size=%d limit=%d", domain.ErrStateTooLarge, len(data), m.limit)
	}
	return m.next.Save(ctx, sessionID, state)
}

func (m *budgetMiddleware) Load(ctx context.Context, sessionID string) (domain.State, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *budgetMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *budgetMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
