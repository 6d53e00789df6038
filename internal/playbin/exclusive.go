package playbin

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// Exclusive lets several controllers share a session while keeping its
// blocking operations one at a time. Each operation holds the gate until
// it returns. Queries and track selection pass straight through.
type Exclusive struct {
	*Session
	gate *semaphore.Weighted
}

// NewExclusive wraps s. Every controller of s must go through the same
// Exclusive.
func NewExclusive(s *Session) *Exclusive {
	return &Exclusive{Session: s, gate: semaphore.NewWeighted(1)}
}

func (e *Exclusive) run(ctx context.Context, op func(context.Context) error) error {
	if err := e.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer e.gate.Release(1)
	return op(ctx)
}

func (e *Exclusive) Play(ctx context.Context) error {
	return e.run(ctx, e.Session.Play)
}

func (e *Exclusive) PlaySource(ctx context.Context, source string) error {
	return e.run(ctx, func(ctx context.Context) error {
		return e.Session.PlaySource(ctx, source)
	})
}

func (e *Exclusive) Pause(ctx context.Context) error {
	return e.run(ctx, e.Session.Pause)
}

func (e *Exclusive) Stop(ctx context.Context) error {
	return e.run(ctx, e.Session.Stop)
}

func (e *Exclusive) Seek(ctx context.Context, position time.Duration) error {
	return e.run(ctx, func(ctx context.Context) error {
		return e.Session.Seek(ctx, position)
	})
}

func (e *Exclusive) Rewind(ctx context.Context, d time.Duration) error {
	return e.run(ctx, func(ctx context.Context) error {
		return e.Session.Rewind(ctx, d)
	})
}

func (e *Exclusive) Forward(ctx context.Context, d time.Duration) error {
	return e.run(ctx, func(ctx context.Context) error {
		return e.Session.Forward(ctx, d)
	})
}

// TogglePause pauses a playing source and plays anything else. The state
// is read once the gate is held, so a toggle queued behind another
// operation acts on its outcome.
func (e *Exclusive) TogglePause(ctx context.Context) error {
	return e.run(ctx, func(ctx context.Context) error {
		if e.Session.State().CanPause() {
			return e.Session.Pause(ctx)
		}
		return e.Session.Play(ctx)
	})
}
