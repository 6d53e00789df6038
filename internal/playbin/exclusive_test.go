package playbin

import (
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/playbin/internal/gst"
)

func TestExclusive_SecondOperationWaitsForFirst(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		pipe.QueueState(gst.StatePlaying, gst.StateChangeAsync)
		s := newTestSession(t, pipe, Options{})
		defer s.Close()
		e := NewExclusive(s)
		ctx := context.Background()

		first := start(func() error { return e.PlaySource(ctx, "/media/a.mkv") })
		second := start(func() error { return e.Seek(ctx, 10*time.Second) })

		assert.Empty(t, pipe.SeekCalls(), "seek issued while play is pending")
		assert.Equal(t, 1, pendingOf(s))

		pipe.Emit(asyncDone)
		require.NoError(t, <-first)
		synctest.Wait()

		require.Len(t, pipe.SeekCalls(), 1)
		pipe.Emit(asyncDone)
		require.NoError(t, <-second)
	})
}

func TestExclusive_GiveUpWhileWaiting(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		pipe.QueueState(gst.StatePaused, gst.StateChangeAsync)
		s := newTestSession(t, pipe, Options{})
		defer s.Close()
		e := NewExclusive(s)

		pending := start(func() error { return e.Pause(context.Background()) })

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.ErrorIs(t, e.Stop(ctx), context.DeadlineExceeded)
		assert.Equal(t, []gst.State{gst.StatePaused}, pipe.StateCalls())

		pipe.Emit(asyncDone)
		require.NoError(t, <-pending)
	})
}

func TestExclusive_TogglePause(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		s := newTestSession(t, pipe, Options{})
		defer s.Close()
		e := NewExclusive(s)
		ctx := context.Background()

		require.ErrorIs(t, e.TogglePause(ctx), ErrNoSource)

		require.NoError(t, e.PlaySource(ctx, "/media/a.mkv"))
		require.NoError(t, e.TogglePause(ctx))
		assert.Equal(t, StatePaused, e.State())
		require.NoError(t, e.TogglePause(ctx))
		assert.Equal(t, StatePlaying, e.State())
	})
}

// pendingOf reads the tracker on the session goroutine.
func pendingOf(s *Session) int {
	var n int
	_ = s.do(context.Background(), func() error {
		n = s.tracker.Pending()
		return nil
	})
	return n
}
