// Package eventloop provides the single-threaded scheduler that owns a
// session's state. Work is posted from any goroutine and executed one
// function at a time on the goroutine running Run.
package eventloop

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when work is submitted to a closed loop.
var ErrClosed = errors.New("event loop closed")

// Loop is a FIFO of functions executed sequentially by Run.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	done chan struct{}
}

// New creates a loop. Nothing runs until Run is called.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post enqueues fn without blocking. It is safe to call from any goroutine,
// including foreign threads delivering native callbacks. Returns false if
// the loop is closed and fn was dropped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
		// A wake-up is already pending
	}
	return true
}

// Call posts fn and waits for it to run. Must not be called from the loop
// goroutine itself: the loop would wait on its own queue.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	if !l.Post(func() { result <- fn() }) {
		return ErrClosed
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		// Run may have drained our function right before exiting
		select {
		case err := <-result:
			return err
		default:
			return ErrClosed
		}
	}
}

// Run executes posted functions until Close is called or ctx ends.
// Work posted before Close is drained before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		batch, closed := l.take()
		for _, fn := range batch {
			fn()
		}
		if closed {
			// Nothing can be queued after close, so the batch was the tail
			return nil
		}
		if len(batch) > 0 {
			continue
		}
		select {
		case <-l.wake:
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		}
	}
}

func (l *Loop) take() ([]func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.queue
	l.queue = nil
	return batch, l.closed
}

// Close stops accepting work and makes Run return once the queue is drained.
// Safe to call multiple times.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Done is closed when Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
