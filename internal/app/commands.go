package app

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/playbin/internal/errmsg"
	"github.com/llehouerou/playbin/internal/mpris"
	"github.com/llehouerou/playbin/internal/playbin"
	"github.com/llehouerou/playbin/internal/state"
	"github.com/llehouerou/playbin/internal/status"
	"github.com/llehouerou/playbin/internal/tags"
)

const (
	// opTimeout bounds how long a command waits for the pipeline.
	opTimeout = 15 * time.Second

	// Saved positions closer than this to either end are not resumed.
	resumeMargin = 5 * time.Second
)

// runOp runs a blocking session operation off the UI goroutine.
func runOp(op errmsg.Op, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

// openFile starts path, attaching a sibling subtitle file if one exists,
// and resumes from the saved position.
func openFile(p Player, st state.Interface, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		msg := openedMsg{path: path, media: mpris.MediaFor(path)}

		if err := p.SetSubtitleFile(tags.FindSubtitleFile(path)); err != nil {
			msg.err = err
			return msg
		}
		if err := p.PlaySource(ctx, path); err != nil {
			msg.err = err
			return msg
		}

		saved, ok, err := st.Position(p.Source())
		if err != nil || !ok || saved < resumeMargin {
			return msg
		}
		if dur, err := p.Duration(); err == nil && saved > dur-resumeMargin {
			return msg
		}
		if err := p.Seek(ctx, saved); err == nil {
			msg.resumed = saved
		}
		return msg
	}
}

// seekBy moves playback by delta. A playing source is paused for the
// seek and resumed afterwards.
func seekBy(p Player, delta time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		resume := p.State() == playbin.StatePlaying
		if resume {
			if err := p.Pause(ctx); err != nil {
				return seekDoneMsg{err: err}
			}
		}

		var err error
		if delta < 0 {
			err = p.Rewind(ctx, -delta)
		} else {
			err = p.Forward(ctx, delta)
		}

		if resume {
			err = errors.Join(err, p.Play(ctx))
		}
		return seekDoneMsg{err: err}
	}
}

// WatchSession waits for the next session event.
func WatchSession(sub *playbin.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return StateChangedMsg(e)
		case e := <-sub.TracksChanged:
			return TracksChangedMsg(e)
		case <-sub.EndOfStream:
			return EndOfStreamMsg{}
		case e := <-sub.Error:
			return AsyncErrorMsg{Err: e.Err}
		case <-sub.Done:
			return SessionClosedMsg{}
		}
	}
}

// WatchStatus waits for the next poller sample.
func WatchStatus(samples <-chan status.Sample) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg(<-samples)
	}
}

// WatchStderr waits for stderr output from the native libraries.
func WatchStderr(lines <-chan string) tea.Cmd {
	if lines == nil {
		return nil
	}
	return func() tea.Msg {
		line, ok := <-lines
		if !ok {
			return nil
		}
		return StderrMsg{Line: line}
	}
}
