package playbin

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/playbin/internal/gst"
)

var (
	asyncDone = gst.Message{Type: gst.MessageAsyncDone}
	eos       = gst.Message{Type: gst.MessageEOS}
)

func streamError(text string) gst.Message {
	return gst.Message{Type: gst.MessageError, Code: "GST_STREAM_ERROR", Text: text}
}

func newTestSession(t *testing.T, pipe *MockPipeline, opts Options) *Session {
	t.Helper()
	opts.Builder = MockBuilder(pipe)
	opts.Construct = ConstructInline
	s, err := New(context.Background(), opts)
	require.NoError(t, err)
	return s
}

// start runs op on its own goroutine and waits until it is suspended.
func start(op func() error) <-chan error {
	errc := make(chan error, 1)
	go func() { errc <- op() }()
	synctest.Wait()
	return errc
}

// complete runs op, then delivers msg once op is suspended.
func complete(pipe *MockPipeline, msg gst.Message, op func() error) error {
	errc := start(op)
	pipe.Emit(msg)
	return <-errc
}

func TestSession_CompletionsResolveInSubmissionOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		pipe.QueueState(gst.StatePlaying, gst.StateChangeAsync, gst.StateChangeAsync)
		pipe.QueueState(gst.StatePaused, gst.StateChangeAsync)
		s := newTestSession(t, pipe, Options{})
		defer s.Close()
		ctx := context.Background()

		require.NoError(t, complete(pipe, asyncDone, func() error { return s.PlaySource(ctx, "/media/a.mkv") }))

		// Three operations in flight, resolved by three events
		first := start(func() error { return s.Pause(ctx) })
		second := start(func() error { return s.Play(ctx) })
		third := start(func() error { return s.Seek(ctx, time.Second) })

		pipe.Emit(asyncDone)
		pipe.Emit(streamError("decode"))
		pipe.Emit(asyncDone)

		require.NoError(t, <-first)
		var perr *PipelineError
		require.ErrorAs(t, <-second, &perr)
		assert.Equal(t, "GST_STREAM_ERROR", perr.Code)
		require.NoError(t, <-third)

		// Only the confirmed pause changed the state
		assert.Equal(t, StatePaused, s.State())
	})
}

func TestSession_PlaySource_EnumeratesTracksAfterAsyncDone(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		pipe.QueueState(gst.StatePlaying, gst.StateChangeAsync)
		pipe.SetTracks(gst.StreamText, "en", "")
		pipe.SetTracks(gst.StreamAudio, "fr")
		s := newTestSession(t, pipe, Options{})
		defer s.Close()

		errc := start(func() error { return s.PlaySource(context.Background(), "/media/movie.mkv") })

		// Nothing is known before the pipeline confirms
		assert.Equal(t, StateIdle, s.State())
		assert.Empty(t, s.SubtitleTracks())

		pipe.Emit(asyncDone)
		require.NoError(t, <-errc)

		assert.Equal(t, StatePlaying, s.State())
		assert.Equal(t, "file:///media/movie.mkv", s.Source())
		assert.Equal(t, []StreamTrack{{Index: 0, Language: "en"}, {Index: 1}}, s.SubtitleTracks())
		assert.Equal(t, []StreamTrack{{Index: 0, Language: "fr"}}, s.AudioTracks())

		flags, err := s.flags()
		require.NoError(t, err)
		assert.Equal(t, gst.PlayFlagAudio|gst.PlayFlagText, flags&(gst.PlayFlagAudio|gst.PlayFlagText))
	})
}

func TestSession_PlaySource_ReplacesTrackLists(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		pipe.SetTracks(gst.StreamText, "en", "de")
		pipe.SetTracks(gst.StreamAudio, "fr", "it")
		s := newTestSession(t, pipe, Options{})
		defer s.Close()
		ctx := context.Background()

		require.NoError(t, s.PlaySource(ctx, "/media/a.mkv"))
		require.Len(t, s.SubtitleTracks(), 2)

		pipe.SetTracks(gst.StreamText, "ja")
		pipe.SetTracks(gst.StreamAudio)
		require.NoError(t, s.PlaySource(ctx, "/media/b.mkv"))

		assert.Equal(t, []StreamTrack{{Index: 0, Language: "ja"}}, s.SubtitleTracks())
		assert.Empty(t, s.AudioTracks())
		// The second source resets to READY before playing
		assert.Equal(t, []gst.State{gst.StatePlaying, gst.StateReady, gst.StatePlaying}, pipe.StateCalls())
	})
}

func TestSession_PlaySource_ResetFailureKeepsSource(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		s := newTestSession(t, pipe, Options{})
		defer s.Close()
		ctx := context.Background()

		require.NoError(t, s.PlaySource(ctx, "/media/a.mkv"))
		first := s.Source()

		pipe.QueueState(gst.StateReady, gst.StateChangeFailure)
		err := s.PlaySource(ctx, "/media/b.mkv")

		var perr *PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "GST_STATE_CHANGE_FAILURE", perr.Code)
		assert.Equal(t, first, s.Source())
		assert.Equal(t, StatePlaying, s.State())
		assert.Equal(t, []gst.State{gst.StatePlaying, gst.StateReady}, pipe.StateCalls())

		uriWrites := 0
		for _, name := range pipe.PropertyWrites() {
			if name == gst.PropURI {
				uriWrites++
			}
		}
		assert.Equal(t, 1, uriWrites, "uri must not be written after a failed reset")
	})
}

func TestSession_Play_DoesNotEnumerate(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		pipe.SetTracks(gst.StreamText, "en")
		s := newTestSession(t, pipe, Options{})
		defer s.Close()
		ctx := context.Background()

		require.NoError(t, s.PlaySource(ctx, "/media/a.mkv"))
		require.NoError(t, s.Pause(ctx))

		pipe.SetTracks(gst.StreamText, "en", "de")
		require.NoError(t, s.Play(ctx))

		assert.Len(t, s.SubtitleTracks(), 1)
		assert.Equal(t, StatePlaying, s.State())
	})
}

func TestSession_Play_WithoutSource(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		s := newTestSession(t, pipe, Options{})
		defer s.Close()

		require.ErrorIs(t, s.Play(context.Background()), ErrNoSource)
		assert.Empty(t, pipe.StateCalls())
	})
}

func TestSession_ImmediateFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		pipe.QueueState(gst.StatePlaying, gst.StateChangeFailure)
		pipe.SetTracks(gst.StreamAudio, "fr")
		s := newTestSession(t, pipe, Options{})
		defer s.Close()

		err := s.PlaySource(context.Background(), "/media/broken.mkv")

		var perr *PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "GST_STATE_CHANGE_FAILURE", perr.Code)
		assert.Equal(t, StateIdle, s.State())
		assert.Empty(t, s.AudioTracks())
	})
}

func TestSession_Stop_ReturnsToIdle(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		pipe.QueueState(gst.StateNull, gst.StateChangeAsync)
		s := newTestSession(t, pipe, Options{})
		defer s.Close()
		ctx := context.Background()
		sub := s.Subscribe()

		require.NoError(t, s.PlaySource(ctx, "/media/a.mkv"))
		require.NoError(t, complete(pipe, asyncDone, func() error { return s.Stop(ctx) }))

		assert.Equal(t, StateIdle, s.State())
		assert.Equal(t, "file:///media/a.mkv", s.Source(), "source is kept")
		assert.Equal(t, StateChange{Previous: StateIdle, Current: StatePlaying}, <-sub.StateChanged)
		assert.Equal(t, StateChange{Previous: StatePlaying, Current: StateIdle}, <-sub.StateChanged)
	})
}

func TestSession_Seek_FailsWithErrorBeforeAsyncDone(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		s := newTestSession(t, pipe, Options{})
		defer s.Close()

		err := complete(pipe, streamError("corrupt frame"), func() error {
			return s.Seek(context.Background(), 5_000_000_000)
		})

		var perr *PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "GST_STREAM_ERROR", perr.Code)
		assert.Equal(t, "corrupt frame", perr.Message)

		calls := pipe.SeekCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, SeekCall{
			Rate:   1.0,
			Format: gst.FormatTime,
			Flags:  gst.SeekFlagFlush | gst.SeekFlagKeyUnit,
			Target: 5_000_000_000,
		}, calls[0])
	})
}

func TestSession_Seek_UndeliverableSubmitsNothing(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		pipe.SetSeekResult(false)
		asyncErrs := make(chan error, 1)
		s := newTestSession(t, pipe, Options{OnAsyncError: func(err error) { asyncErrs <- err }})
		defer s.Close()

		err := s.Seek(context.Background(), time.Minute)
		var perr *PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "GST_SEEK_FAILED", perr.Code)

		// No handle was queued, so a stray async-done is a protocol error
		pipe.Emit(asyncDone)
		var proto *ProtocolError
		require.ErrorAs(t, <-asyncErrs, &proto)
		assert.Equal(t, "async-done", proto.Event)
	})
}

func TestSession_RewindForward_ClampTargets(t *testing.T) {
	tests := []struct {
		name string
		op   func(s *Session) error
		want time.Duration
	}{
		{
			name: "rewind within range",
			op:   func(s *Session) error { return s.Rewind(context.Background(), 10*time.Second) },
			want: 20 * time.Second,
		},
		{
			name: "rewind clamps at start",
			op:   func(s *Session) error { return s.Rewind(context.Background(), 60*time.Second) },
			want: 0,
		},
		{
			name: "forward within range",
			op:   func(s *Session) error { return s.Forward(context.Background(), 60*time.Second) },
			want: 90 * time.Second,
		},
		{
			name: "forward clamps at end",
			op:   func(s *Session) error { return s.Forward(context.Background(), 90*time.Second) },
			want: 100 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				pipe := NewMockPipeline()
				pipe.SetPosition(int64(30*time.Second), true)
				pipe.SetDuration(int64(100*time.Second), true)
				s := newTestSession(t, pipe, Options{})
				defer s.Close()

				require.NoError(t, complete(pipe, asyncDone, func() error { return tt.op(s) }))

				calls := pipe.SeekCalls()
				require.Len(t, calls, 1)
				assert.Equal(t, int64(tt.want), calls[0].Target)
			})
		})
	}
}

func TestSession_Rewind_PositionUnavailable(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		s := newTestSession(t, pipe, Options{})
		defer s.Close()

		err := s.Rewind(context.Background(), time.Minute)

		var qerr *QueryError
		require.ErrorAs(t, err, &qerr)
		assert.Equal(t, "position", qerr.Query)
		assert.Empty(t, pipe.SeekCalls())
	})
}

func TestSession_PositionAndDuration(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		s := newTestSession(t, pipe, Options{})
		defer s.Close()

		_, err := s.Position()
		assert.EqualError(t, err, "cannot get position")
		_, err = s.Duration()
		assert.EqualError(t, err, "cannot get duration")

		pipe.SetPosition(int64(42*time.Second), true)
		pipe.SetDuration(int64(time.Hour), true)

		pos, err := s.Position()
		require.NoError(t, err)
		assert.Equal(t, 42*time.Second, pos)
		dur, err := s.Duration()
		require.NoError(t, err)
		assert.Equal(t, time.Hour, dur)
	})
}

func TestSession_SetSubtitle(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		pipe.SetTracks(gst.StreamText, "en", "de")
		s := newTestSession(t, pipe, Options{})
		defer s.Close()
		require.NoError(t, s.PlaySource(context.Background(), "/media/a.mkv"))

		de := s.SubtitleTracks()[1]
		require.NoError(t, s.SetSubtitle(&de))

		got, err := s.Subtitle()
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, StreamTrack{Index: 1, Language: "de"}, *got)

		writes := len(pipe.PropertyWrites())
		require.NoError(t, s.SetSubtitle(nil))

		// Only the flag changes; the selected index stays
		assert.Equal(t, []string{gst.PropFlags}, pipe.PropertyWrites()[writes:])
		current, err := pipe.Property(gst.PropCurrentText)
		require.NoError(t, err)
		assert.Equal(t, 1, current)

		flags, err := s.flags()
		require.NoError(t, err)
		assert.Zero(t, flags&gst.PlayFlagText)

		got, err = s.Subtitle()
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestSession_SetAudioTrack(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		pipe.SetTracks(gst.StreamAudio, "fr")
		s := newTestSession(t, pipe, Options{})
		defer s.Close()
		require.NoError(t, s.PlaySource(context.Background(), "/media/a.mkv"))

		err := s.SetAudioTrack(&StreamTrack{Index: 3})
		var ierr *IndexError
		require.ErrorAs(t, err, &ierr)
		assert.Equal(t, IndexError{Kind: "audio", Index: 3, Count: 1}, *ierr)

		require.NoError(t, s.SetAudioTrack(&StreamTrack{Index: 0, Language: "fr"}))
		got, err := s.AudioTrack()
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "fr", got.Label())

		require.NoError(t, s.SetAudioTrack(nil))
		got, err = s.AudioTrack()
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestSession_SubtitleFile(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		s := newTestSession(t, pipe, Options{})
		defer s.Close()

		require.NoError(t, s.SetSubtitleFile("/subs/movie.srt"))
		got, err := s.SubtitleFile()
		require.NoError(t, err)
		assert.Equal(t, "file:///subs/movie.srt", got)

		require.NoError(t, s.SetSubtitleFile(""))
		got, err = s.SubtitleFile()
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestSession_ErrorWithoutPendingGoesToHook(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		asyncErrs := make(chan error, 1)
		s := newTestSession(t, pipe, Options{OnAsyncError: func(err error) { asyncErrs <- err }})
		defer s.Close()
		sub := s.Subscribe()

		// Emit runs on this goroutine, standing in for the bus thread; it
		// must return normally.
		pipe.Emit(streamError("decoder lost sync"))

		err := <-asyncErrs
		var proto *ProtocolError
		require.ErrorAs(t, err, &proto)
		assert.Equal(t, "error", proto.Event)
		var perr *PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "decoder lost sync", perr.Message)

		ev := <-sub.Error
		assert.Same(t, err, ev.Err)
	})
}

func TestSession_EndOfStream(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		ended := make(chan struct{}, 1)
		s := newTestSession(t, pipe, Options{OnEndOfStream: func() { ended <- struct{}{} }})
		defer s.Close()
		sub := s.Subscribe()

		pipe.Emit(eos)

		<-ended
		<-sub.EndOfStream
	})
}

func TestSession_AbandonedWaitKeepsOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		pipe.QueueState(gst.StatePaused, gst.StateChangeAsync)
		s := newTestSession(t, pipe, Options{})
		defer s.Close()
		require.NoError(t, s.PlaySource(context.Background(), "/media/a.mkv"))

		ctx, cancel := context.WithCancel(context.Background())
		errc := start(func() error { return s.Pause(ctx) })
		cancel()
		require.ErrorIs(t, <-errc, context.Canceled)

		// The late completion still belongs to the abandoned pause
		pipe.Emit(asyncDone)
		synctest.Wait()
		assert.Equal(t, StatePaused, s.State())
	})
}

func TestSession_Close_FailsPendingOperations(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pipe := NewMockPipeline()
		pipe.QueueState(gst.StatePlaying, gst.StateChangeAsync)
		s := newTestSession(t, pipe, Options{})
		sub := s.Subscribe()

		errc := start(func() error { return s.PlaySource(context.Background(), "/media/a.mkv") })
		require.NoError(t, s.Close())

		require.ErrorIs(t, <-errc, ErrClosed)
		assert.True(t, pipe.Closed())
		<-sub.Done

		require.ErrorIs(t, s.Pause(context.Background()), ErrClosed)
		require.NoError(t, s.Close(), "close is idempotent")
	})
}

// gatedPipeline holds SetState until release is closed.
type gatedPipeline struct {
	*MockPipeline
	release chan struct{}
}

func (g *gatedPipeline) SetState(target gst.State) gst.StateChangeReturn {
	<-g.release
	return g.MockPipeline.SetState(target)
}

func TestSession_Close_FailsOperationDrainedDuringClose(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		mock := NewMockPipeline()
		mock.QueueState(gst.StatePaused, gst.StateChangeAsync)
		pipe := &gatedPipeline{MockPipeline: mock, release: make(chan struct{})}
		s, err := New(context.Background(), Options{Builder: MockBuilder(pipe), Construct: ConstructInline})
		require.NoError(t, err)

		// Pause is running on the session goroutine, stuck in SetState
		errc := start(func() error { return s.Pause(context.Background()) })

		closed := make(chan error, 1)
		go func() { closed <- s.Close() }()
		synctest.Wait()

		// The state change goes async after Close began; its handle is
		// submitted while the loop drains and must still be failed
		close(pipe.release)

		require.ErrorIs(t, <-errc, ErrClosed)
		require.NoError(t, <-closed)
		assert.True(t, mock.Closed())
	})
}

func TestSession_Close_NoOperationOutlivesClose(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		const n = 8
		pipe := NewMockPipeline()
		for range n {
			pipe.QueueState(gst.StatePaused, gst.StateChangeAsync)
		}
		s := newTestSession(t, pipe, Options{})

		errs := make(chan error, n)
		for range n {
			go func() { errs <- s.Pause(context.Background()) }()
		}
		require.NoError(t, s.Close())

		// Every caller returns; a handle left behind would block forever
		for range n {
			require.ErrorIs(t, <-errs, ErrClosed)
		}
	})
}

type fakeWorker struct {
	calls int
	err   error
}

func (w *fakeWorker) Invoke(_ context.Context, fn func()) error {
	w.calls++
	if w.err != nil {
		return w.err
	}
	fn()
	return nil
}

func TestNew_Construction(t *testing.T) {
	t.Run("on worker", func(t *testing.T) {
		w := &fakeWorker{}
		pipe := NewMockPipeline()
		s, err := New(context.Background(), Options{Builder: MockBuilder(pipe), Worker: w})
		require.NoError(t, err)
		defer s.Close()
		assert.Equal(t, 1, w.calls)
	})

	t.Run("inline", func(t *testing.T) {
		w := &fakeWorker{}
		var spec BuildSpec
		builder := func(b BuildSpec) (Pipeline, error) {
			spec = b
			return NewMockPipeline(), nil
		}
		s, err := New(context.Background(), Options{
			Name:      "preview",
			Builder:   builder,
			Worker:    w,
			Construct: ConstructInline,
		})
		require.NoError(t, err)
		defer s.Close()
		assert.Zero(t, w.calls)
		assert.Equal(t, "preview", spec.Name)
	})

	t.Run("worker unavailable", func(t *testing.T) {
		w := &fakeWorker{err: gst.ErrNotInitialized}
		s, err := New(context.Background(), Options{Builder: MockBuilder(NewMockPipeline()), Worker: w})
		require.ErrorIs(t, err, gst.ErrNotInitialized)
		assert.Nil(t, s)
	})

	t.Run("builder fails", func(t *testing.T) {
		boom := errors.New("no playbin element")
		builder := func(BuildSpec) (Pipeline, error) { return nil, boom }
		s, err := New(context.Background(), Options{Builder: builder, Construct: ConstructInline})
		require.ErrorIs(t, err, boom)
		assert.Nil(t, s)
	})
}

func TestSourceURI(t *testing.T) {
	uri, err := sourceURI("https://example.com/stream.m3u8")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/stream.m3u8", uri)

	uri, err = sourceURI("/media/with space.mkv")
	require.NoError(t, err)
	assert.Equal(t, "file:///media/with%20space.mkv", uri)

	abs, err := filepath.Abs("clip.webm")
	require.NoError(t, err)
	uri, err = sourceURI("clip.webm")
	require.NoError(t, err)
	assert.Equal(t, "file://"+filepath.ToSlash(abs), uri)

	_, err = sourceURI("")
	require.ErrorIs(t, err, ErrNoSource)
}
