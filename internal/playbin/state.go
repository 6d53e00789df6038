package playbin

import "github.com/llehouerou/playbin/internal/gst"

// State represents the playback state of a session.
//
//	┌──────────┐      play       ┌──────────┐
//	│   Idle   │ ───────────────▶│  Playing │
//	└──────────┘                 └──────────┘
//	     ▲                         │     ▲
//	     │ stop              pause │     │ play
//	     │                         ▼     │
//	     │                       ┌──────────┐
//	     └───────────────────────│  Paused  │
//	                  stop       └──────────┘
//
// Every transition is an asynchronous pipeline operation; the state only
// changes once the pipeline confirms it.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a source is loaded and prerolled (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == StatePlaying
}

// CanResume returns true if the state allows resuming.
func (s State) CanResume() bool {
	return s == StatePaused
}

func stateFromNative(s gst.State) State {
	switch s {
	case gst.StatePlaying:
		return StatePlaying
	case gst.StatePaused:
		return StatePaused
	case gst.StateVoidPending, gst.StateNull, gst.StateReady:
		return StateIdle
	}
	return StateIdle
}
