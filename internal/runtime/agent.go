package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
)

// Agent hands the result of a headless run to a waiting caller.
// Only the first delivery is kept; later submissions are ignored.
type Agent struct {
	once   sync.Once
	result chan domain.State
}

// NewAgent creates an agent ready to receive one submission.
func NewAgent() *Agent {
	return &Agent{result: make(chan domain.State, 1)}
}

// Deliver hands state to the waiting caller. It never blocks and reports
// whether this call was the first delivery.
func (a *Agent) Deliver(state domain.State) bool {
	delivered := false
	a.once.Do(func() {
		a.result <- state.Clone()
		delivered = true
	})
	return delivered
}

// Wait blocks until a submission arrives, the timeout elapses or ctx is
// cancelled. Timeout and cancellation yield an empty, non-nil state.
// A timeout <= 0 waits on ctx alone.
func (a *Agent) Wait(ctx context.Context, timeout time.Duration) domain.State {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	select {
	case s := <-a.result:
		return s
	case <-ctx.Done():
		return domain.NewState()
	}
}
