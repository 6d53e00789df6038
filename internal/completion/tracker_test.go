package completion

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/playbin/internal/eventloop"
)

// inlinePoster runs posted functions immediately on the caller goroutine.
type inlinePoster struct{ closed bool }

func (p *inlinePoster) Post(fn func()) bool {
	if p.closed {
		return false
	}
	fn()
	return true
}

func TestTracker_ResolvesInSubmissionOrder(t *testing.T) {
	tr := NewTracker(&inlinePoster{}, nil)

	handles := make([]*Handle, 5)
	for i := range handles {
		handles[i] = tr.Submit()
	}
	require.Equal(t, 5, tr.Pending())

	for i := range handles {
		require.NoError(t, tr.ResolveNext("async-done", Succeeded(i)))
		// Everything up to i is resolved, nothing after it
		for j, h := range handles {
			assert.Equal(t, j <= i, h.Resolved(), "handle %d after %d resolutions", j, i+1)
		}
	}

	for i, h := range handles {
		v, err := h.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	assert.Equal(t, 0, tr.Pending())
}

func TestTracker_ErrorResolvesOldestHandle(t *testing.T) {
	tr := NewTracker(&inlinePoster{}, nil)
	first := tr.Submit()
	second := tr.Submit()

	boom := errors.New("boom")
	require.NoError(t, tr.ResolveNext("error", Failed(boom)))

	_, err := first.Wait(context.Background())
	require.ErrorIs(t, err, boom)
	assert.False(t, second.Resolved())
}

func TestTracker_EmptyQueue_ReportsProtocolError(t *testing.T) {
	var reported []error
	tr := NewTracker(&inlinePoster{}, func(err error) { reported = append(reported, err) })

	cause := errors.New("decode failed")
	err := tr.ResolveNext("error", Failed(cause))

	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "error", perr.Event)
	assert.ErrorIs(t, err, cause)
	require.Len(t, reported, 1)
	assert.Same(t, err, reported[0])
}

func TestTracker_EmptyQueue_AsyncDoneHasNoCause(t *testing.T) {
	tr := NewTracker(&inlinePoster{}, nil)
	err := tr.ResolveNext("async-done", Succeeded(nil))
	require.Error(t, err)
	assert.Equal(t, "unexpected async-done with no pending operation", err.Error())
}

func TestTracker_FailAll(t *testing.T) {
	tr := NewTracker(&inlinePoster{}, nil)
	a, b := tr.Submit(), tr.Submit()
	closed := errors.New("closed")

	tr.FailAll(closed)

	for _, h := range []*Handle{a, b} {
		_, err := h.Wait(context.Background())
		assert.ErrorIs(t, err, closed)
	}
	assert.Equal(t, 0, tr.Pending())
}

func TestTracker_Deliver_DroppedWhenOwnerGone(t *testing.T) {
	p := &inlinePoster{closed: true}
	tr := NewTracker(p, nil)
	h := tr.Submit()

	assert.False(t, tr.Deliver("async-done", Succeeded(nil)))
	assert.False(t, h.Resolved())
}

func TestTracker_Deliver_ResolvesOnLoopGoroutine(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		loop := eventloop.New()
		go func() { _ = loop.Run(context.Background()) }()
		defer loop.Close()

		tr := NewTracker(loop, nil)

		// Submissions happen on the owner goroutine
		handles := make(chan *Handle, 3)
		require.NoError(t, loop.Call(context.Background(), func() error {
			for range 3 {
				handles <- tr.Submit()
			}
			return nil
		}))
		close(handles)

		// Completions arrive from a foreign goroutine
		go func() {
			tr.Deliver("async-done", Succeeded("first"))
			tr.Deliver("error", Failed(errors.New("second")))
			tr.Deliver("async-done", Succeeded("third"))
		}()

		var results []string
		for h := range handles {
			v, err := h.Wait(context.Background())
			if err != nil {
				results = append(results, err.Error())
				continue
			}
			results = append(results, v.(string))
		}
		assert.Equal(t, []string{"first", "second", "third"}, results)
	})
}

func TestHandle_ResolvesOnce(t *testing.T) {
	h := newHandle()
	assert.True(t, h.Resolve(Succeeded(1)))
	assert.False(t, h.Resolve(Succeeded(2)))

	v, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestHandle_Wait_ContextCanceled(t *testing.T) {
	h := newHandle()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, h.Resolved())
}

func TestHandle_OnResolve_RunsBeforeWaitersWake(t *testing.T) {
	h := newHandle()
	var order []string
	h.OnResolve(func(o Outcome) {
		order = append(order, "continuation")
		assert.False(t, h.Resolved(), "waiters released before continuation")
	})

	h.Resolve(Succeeded(nil))
	order = append(order, "resolved")

	assert.Equal(t, []string{"continuation", "resolved"}, order)
}
