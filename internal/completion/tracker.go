package completion

import "fmt"

// Poster hands a function over to the goroutine that owns the tracker.
// Post must be safe to call from any goroutine and must not block.
type Poster interface {
	Post(fn func()) bool
}

// ProtocolError reports a completion event that no pending request was
// waiting for. It means the pipeline and the tracker are out of step.
type ProtocolError struct {
	Event string // event kind, e.g. "async-done" or "error"
	Err   error  // error carried by the event, if any
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected %s with no pending operation: %v", e.Event, e.Err)
	}
	return fmt.Sprintf("unexpected %s with no pending operation", e.Event)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Tracker is an ordered queue of pending handles.
//
// Submit, ResolveNext, FailAll and Pending must run on the owner goroutine
// (the one draining the Poster), or on any goroutine once the owner has
// stopped for good. Deliver is the only method safe to call from elsewhere.
type Tracker struct {
	post       Poster
	unexpected func(error)
	pending    []*Handle
}

// NewTracker creates a tracker whose resolutions are executed through post.
// unexpected receives protocol errors; it runs on the owner goroutine and
// may be nil.
func NewTracker(post Poster, unexpected func(error)) *Tracker {
	if unexpected == nil {
		unexpected = func(error) {}
	}
	return &Tracker{post: post, unexpected: unexpected}
}

// Submit appends a new pending handle to the queue.
func (t *Tracker) Submit() *Handle {
	h := newHandle()
	t.pending = append(t.pending, h)
	return h
}

// Pending returns the number of unresolved handles.
func (t *Tracker) Pending() int {
	return len(t.pending)
}

// ResolveNext pops the oldest handle and resolves it with o. With an empty
// queue it reports a *ProtocolError to the unexpected callback and returns it.
func (t *Tracker) ResolveNext(event string, o Outcome) error {
	if len(t.pending) == 0 {
		err := &ProtocolError{Event: event, Err: o.Err}
		t.unexpected(err)
		return err
	}
	h := t.pending[0]
	t.pending[0] = nil
	t.pending = t.pending[1:]
	h.Resolve(o)
	return nil
}

// Deliver schedules ResolveNext on the owner goroutine. It never blocks
// and never panics, so it can be called from a native callback thread.
// If the owner is gone the event is dropped.
func (t *Tracker) Deliver(event string, o Outcome) bool {
	return t.post.Post(func() {
		_ = t.ResolveNext(event, o)
	})
}

// FailAll resolves every pending handle with err and empties the queue.
func (t *Tracker) FailAll(err error) {
	for _, h := range t.pending {
		h.Resolve(Failed(err))
	}
	t.pending = nil
}
