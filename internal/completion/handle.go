// Package completion correlates asynchronous pipeline operations with the
// completion events the pipeline delivers later, from another thread, with no
// request identifier. Correlation is purely positional: the oldest pending
// handle is resolved by the next event.
package completion

import (
	"context"
	"sync"
)

// Outcome is the terminal result of one asynchronous operation.
type Outcome struct {
	Value any
	Err   error
}

// Succeeded builds a successful outcome.
func Succeeded(value any) Outcome { return Outcome{Value: value} }

// Failed builds a failed outcome.
func Failed(err error) Outcome { return Outcome{Err: err} }

// Handle is a single-resolution slot for one outstanding request.
type Handle struct {
	once    sync.Once
	done    chan struct{}
	outcome Outcome
	then    []func(Outcome)
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// OnResolve registers fn to run when the handle is resolved. Continuations
// run on the resolving goroutine, in registration order, before waiters are
// released. Register them from the goroutine that owns the tracker.
func (h *Handle) OnResolve(fn func(Outcome)) {
	h.then = append(h.then, fn)
}

// Resolve stores the outcome, runs continuations and wakes waiters. Only
// the first call has an effect; it reports whether this call resolved the
// handle.
func (h *Handle) Resolve(o Outcome) bool {
	resolved := false
	h.once.Do(func() {
		h.outcome = o
		for _, fn := range h.then {
			fn(o)
		}
		h.then = nil
		close(h.done)
		resolved = true
	})
	return resolved
}

// Done is closed once the handle is resolved.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Resolved reports whether the handle already holds an outcome.
func (h *Handle) Resolved() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the handle is resolved or ctx ends. Abandoning the wait
// does not remove the handle from its tracker.
func (h *Handle) Wait(ctx context.Context) (any, error) {
	select {
	case <-h.done:
		return h.outcome.Value, h.outcome.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
