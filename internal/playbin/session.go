// Package playbin wraps a GStreamer playbin in a session whose state
// transitions and seeks block until the pipeline confirms them.
//
// Every operation runs on the session's own goroutine. Bus messages arrive
// on the pipeline's watcher goroutine and are posted to the session, where
// async-done and error messages resolve pending operations in the order
// they were issued. Operations must be issued one at a time: the pipeline
// carries no request identifier, so two in-flight operations on the same
// session can resolve each other.
package playbin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/playbin/internal/completion"
	"github.com/llehouerou/playbin/internal/eventloop"
	"github.com/llehouerou/playbin/internal/gst"
)

// ErrNoSource is returned by Play when no source was ever configured.
var ErrNoSource = errors.New("no source configured")

// Session owns one pipeline.
type Session struct {
	opts    Options
	log     *logrus.Entry
	pipe    Pipeline
	loop    *eventloop.Loop
	tracker *completion.Tracker

	stopWatch func()

	// Written on the loop goroutine, readable anywhere.
	mu        sync.RWMutex
	state     State
	source    string
	subtitles []StreamTrack
	audio     []StreamTrack

	// Serializes read-modify-write of the flags property.
	propMu sync.Mutex

	subsMu sync.Mutex
	subs   []*Subscription

	closeOnce sync.Once
	closeErr  error
}

// New builds the pipeline and starts the session. If the pipeline cannot
// be built, New returns the error and no session.
func New(ctx context.Context, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	pipe, err := build(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	s := &Session{
		opts: opts,
		log:  opts.Logger.WithField("component", "playbin"),
		pipe: pipe,
		loop: eventloop.New(),
	}
	s.tracker = completion.NewTracker(s.loop, s.reportAsyncError)

	go func() { _ = s.loop.Run(context.Background()) }()
	s.stopWatch = pipe.Watch(s.handleMessage)

	s.log.WithField("pipeline", opts.Name).Debug("session started")
	return s, nil
}

func build(ctx context.Context, opts Options) (Pipeline, error) {
	spec := opts.spec()
	if opts.Construct == ConstructInline || opts.Worker == nil {
		return opts.Builder(spec)
	}

	var (
		pipe Pipeline
		err  error
	)
	if ierr := opts.Worker.Invoke(ctx, func() {
		pipe, err = opts.Builder(spec)
	}); ierr != nil {
		return nil, ierr
	}
	return pipe, err
}

// Play resumes or starts playback of the configured source.
func (s *Session) Play(ctx context.Context) error {
	return s.transition(ctx, "play", gst.StatePlaying, func() (bool, error) {
		if s.Source() == "" {
			return false, ErrNoSource
		}
		return false, nil
	})
}

// PlaySource configures source, a file path or URI, and starts playing
// it. Once the pipeline has prerolled, subtitle and audio tracks are
// enumerated and replace the previous lists.
func (s *Session) PlaySource(ctx context.Context, source string) error {
	uri, err := sourceURI(source)
	if err != nil {
		return err
	}
	return s.transition(ctx, "play", gst.StatePlaying, func() (bool, error) {
		// A new URI only takes effect from READY or below
		if s.state.IsActive() {
			if ret := s.pipe.SetState(gst.StateReady); ret == gst.StateChangeFailure {
				return false, &PipelineError{Code: ret.String(), Message: "reset before new source failed"}
			}
		}
		if err := s.updateFlags(gst.PlayFlagAudio|gst.PlayFlagText, 0); err != nil {
			return false, err
		}
		if err := s.pipe.SetProperty(gst.PropURI, uri); err != nil {
			return false, fmt.Errorf("set uri: %w", err)
		}
		s.mu.Lock()
		s.source = uri
		s.mu.Unlock()
		return true, nil
	})
}

// Pause pauses playback.
func (s *Session) Pause(ctx context.Context) error {
	return s.transition(ctx, "pause", gst.StatePaused, nil)
}

// Stop returns the pipeline to its idle state. The source is kept.
func (s *Session) Stop(ctx context.Context) error {
	return s.transition(ctx, "stop", gst.StateNull, nil)
}

// Seek moves playback to position with a flushing key-unit seek and waits
// for the pipeline to confirm it.
func (s *Session) Seek(ctx context.Context, position time.Duration) error {
	var h *completion.Handle
	err := s.do(ctx, func() error {
		flags := gst.SeekFlagFlush | gst.SeekFlagKeyUnit
		if !s.pipe.Seek(1.0, gst.FormatTime, flags, int64(position)) {
			return &PipelineError{Code: "GST_SEEK_FAILED", Message: "seek to " + position.String() + " not handled"}
		}
		h = s.submit("seek")
		return nil
	})
	if err != nil {
		return err
	}
	_, err = h.Wait(ctx)
	return err
}

// Rewind seeks d backwards, stopping at the start.
func (s *Session) Rewind(ctx context.Context, d time.Duration) error {
	pos, err := s.Position()
	if err != nil {
		return err
	}
	return s.Seek(ctx, max(0, pos-d))
}

// Forward seeks d forwards, stopping at the end.
func (s *Session) Forward(ctx context.Context, d time.Duration) error {
	pos, err := s.Position()
	if err != nil {
		return err
	}
	dur, err := s.Duration()
	if err != nil {
		return err
	}
	return s.Seek(ctx, min(dur, pos+d))
}

// Position returns the current playback position.
func (s *Session) Position() (time.Duration, error) {
	v, ok := s.pipe.QueryPosition(gst.FormatTime)
	if !ok {
		return 0, &QueryError{Query: "position"}
	}
	return time.Duration(v), nil
}

// Duration returns the duration of the current source.
func (s *Session) Duration() (time.Duration, error) {
	v, ok := s.pipe.QueryDuration(gst.FormatTime)
	if !ok {
		return 0, &QueryError{Query: "duration"}
	}
	return time.Duration(v), nil
}

// State returns the last confirmed playback state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Source returns the configured source URI.
func (s *Session) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Subscribe returns a subscription to session events. It is closed when
// the session is closed.
func (s *Session) Subscribe() *Subscription {
	sub := newSubscription()
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if s.closed() {
		sub.close()
		return sub
	}
	s.subs = append(s.subs, sub)
	return sub
}

// Close stops the bus watcher, fails every pending operation with
// ErrClosed and releases the pipeline. Close must not be called from a
// hook.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.stopWatch()
		s.loop.Close()
		<-s.loop.Done()

		// The loop has exited, so the tracker is ours. Handles submitted
		// by work drained after Close are failed here too.
		if n := s.tracker.Pending(); n > 0 {
			s.log.WithField("pending", n).Debug("failing pending operations")
		}
		s.tracker.FailAll(ErrClosed)

		s.closeErr = s.pipe.Close()

		s.subsMu.Lock()
		for _, sub := range s.subs {
			sub.close()
		}
		s.subs = nil
		s.subsMu.Unlock()

		s.log.Debug("session closed")
	})
	return s.closeErr
}

func (s *Session) closed() bool {
	select {
	case <-s.loop.Done():
		return true
	default:
		return false
	}
}

// do runs fn on the session goroutine.
func (s *Session) do(ctx context.Context, fn func() error) error {
	err := s.loop.Call(ctx, fn)
	if errors.Is(err, eventloop.ErrClosed) {
		return ErrClosed
	}
	return err
}

// transition requests a state change. prepare runs first on the session
// goroutine and reports whether a new source was configured.
func (s *Session) transition(ctx context.Context, op string, target gst.State, prepare func() (bool, error)) error {
	var h *completion.Handle
	err := s.do(ctx, func() error {
		newSource := false
		if prepare != nil {
			var err error
			if newSource, err = prepare(); err != nil {
				return err
			}
		}

		ret := s.pipe.SetState(target)
		s.log.WithFields(logrus.Fields{"op": op, "result": ret.String()}).Debug("state change requested")

		switch ret {
		case gst.StateChangeSuccess, gst.StateChangeNoPreroll:
			s.settle(target, newSource)
			return nil
		case gst.StateChangeAsync:
			h = s.submit(op)
			h.OnResolve(func(o completion.Outcome) {
				if o.Err == nil {
					s.settle(target, newSource)
				}
			})
			return nil
		default:
			return &PipelineError{Code: ret.String(), Message: op + " failed"}
		}
	})
	if err != nil || h == nil {
		return err
	}
	_, err = h.Wait(ctx)
	return err
}

// submit enqueues a handle for an operation awaiting a bus message.
func (s *Session) submit(op string) *completion.Handle {
	if n := s.tracker.Pending(); n > 0 {
		s.log.WithFields(logrus.Fields{"op": op, "pending": n}).
			Warn("operation issued while another is pending; completions may be mismatched")
	}
	return s.tracker.Submit()
}

// settle records a confirmed transition. Runs on the session goroutine.
func (s *Session) settle(target gst.State, newSource bool) {
	current := stateFromNative(target)

	s.mu.Lock()
	previous := s.state
	s.state = current
	s.mu.Unlock()

	if previous != current {
		s.emit(func(sub *Subscription) {
			sub.sendState(StateChange{Previous: previous, Current: current})
		})
	}

	if newSource {
		s.refreshTracks()
	}
}

// handleMessage runs on the watcher goroutine and only posts.
func (s *Session) handleMessage(msg gst.Message) {
	switch msg.Type {
	case gst.MessageError:
		perr := &PipelineError{Code: msg.Code, Message: msg.Text, Debug: msg.Debug}
		if !s.tracker.Deliver(msg.Type.String(), completion.Failed(perr)) {
			s.log.WithError(perr).Debug("error after close dropped")
		}
	case gst.MessageAsyncDone:
		s.tracker.Deliver(msg.Type.String(), completion.Succeeded(nil))
	case gst.MessageEOS:
		s.loop.Post(s.endOfStream)
	}
}

func (s *Session) endOfStream() {
	s.log.Debug("end of stream")
	if s.opts.OnEndOfStream != nil {
		s.opts.OnEndOfStream()
	}
	s.emit(func(sub *Subscription) { sub.sendEndOfStream() })
}

// reportAsyncError surfaces an error no pending operation was waiting for.
func (s *Session) reportAsyncError(err error) {
	s.log.WithError(err).Warn("uncorrelated pipeline event")
	if s.opts.OnAsyncError != nil {
		s.opts.OnAsyncError(err)
	}
	s.emit(func(sub *Subscription) { sub.sendError(ErrorEvent{Err: err}) })
}

func (s *Session) emit(send func(*Subscription)) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, sub := range s.subs {
		send(sub)
	}
}

// sourceURI turns a path into an absolute file URI. URIs are kept as is.
func sourceURI(source string) (string, error) {
	if source == "" {
		return "", ErrNoSource
	}
	if strings.Contains(source, "://") {
		return source, nil
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", source, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
