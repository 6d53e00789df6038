// Package app implements the terminal player: a file chooser, and a
// player screen driving one playbin session.
package app

import (
	"time"

	"github.com/llehouerou/playbin/internal/errmsg"
	"github.com/llehouerou/playbin/internal/mpris"
	"github.com/llehouerou/playbin/internal/playbin"
	"github.com/llehouerou/playbin/internal/status"
)

// StatusMsg carries a position sample from the status poller.
type StatusMsg status.Sample

// StateChangedMsg is sent when the session confirms a transition.
type StateChangedMsg playbin.StateChange

// TracksChangedMsg is sent after the tracks of a new source were enumerated.
type TracksChangedMsg playbin.TracksChange

// EndOfStreamMsg is sent when the source played to the end.
type EndOfStreamMsg struct{}

// AsyncErrorMsg carries a pipeline error no operation was waiting for.
type AsyncErrorMsg struct {
	Err error
}

// SessionClosedMsg is sent when the session subscription ends.
type SessionClosedMsg struct{}

// StderrMsg carries a line the native libraries wrote to stderr.
type StderrMsg struct {
	Line string
}

// openedMsg reports the outcome of opening a file.
type openedMsg struct {
	path    string
	media   *mpris.Media
	resumed time.Duration
	err     error
}

// opDoneMsg reports the outcome of a blocking session operation.
type opDoneMsg struct {
	op  errmsg.Op
	err error
}

// seekDoneMsg reports the outcome of a relative seek.
type seekDoneMsg struct {
	err error
}
