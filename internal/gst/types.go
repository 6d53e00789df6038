// Package gst binds the small part of GStreamer that the playbin wrapper
// needs. Libraries are loaded at runtime with purego, so the package builds
// without cgo and fails with ErrUnsupported or a load error when GStreamer
// is not installed.
package gst

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrUnsupported is returned on platforms without a binding.
	ErrUnsupported = errors.New("gstreamer binding not supported on this platform")
	// ErrNotInitialized is returned when the runtime has not been started.
	ErrNotInitialized = errors.New("gstreamer runtime not initialized")
	// ErrAlreadyInitialized is returned by a second Init.
	ErrAlreadyInitialized = errors.New("gstreamer runtime already initialized")
)

// Second is one second in native time units (nanoseconds).
const Second = int64(time.Second)

// State mirrors GstState.
type State int32

const (
	StateVoidPending State = 0
	StateNull        State = 1
	StateReady       State = 2
	StatePaused      State = 3
	StatePlaying     State = 4
)

func (s State) String() string {
	switch s {
	case StateVoidPending:
		return "VOID_PENDING"
	case StateNull:
		return "NULL"
	case StateReady:
		return "READY"
	case StatePaused:
		return "PAUSED"
	case StatePlaying:
		return "PLAYING"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// StateChangeReturn mirrors GstStateChangeReturn.
type StateChangeReturn int32

const (
	StateChangeFailure   StateChangeReturn = 0
	StateChangeSuccess   StateChangeReturn = 1
	StateChangeAsync     StateChangeReturn = 2
	StateChangeNoPreroll StateChangeReturn = 3
)

func (r StateChangeReturn) String() string {
	switch r {
	case StateChangeFailure:
		return "GST_STATE_CHANGE_FAILURE"
	case StateChangeSuccess:
		return "GST_STATE_CHANGE_SUCCESS"
	case StateChangeAsync:
		return "GST_STATE_CHANGE_ASYNC"
	case StateChangeNoPreroll:
		return "GST_STATE_CHANGE_NO_PREROLL"
	default:
		return fmt.Sprintf("GST_STATE_CHANGE_%d", int32(r))
	}
}

// Format mirrors GstFormat.
type Format int32

const FormatTime Format = 3

// SeekFlags mirrors GstSeekFlags.
type SeekFlags int32

const (
	SeekFlagNone     SeekFlags = 0
	SeekFlagFlush    SeekFlags = 1 << 0
	SeekFlagAccurate SeekFlags = 1 << 1
	SeekFlagKeyUnit  SeekFlags = 1 << 2
)

// PlayFlags mirrors the playbin "flags" property (GstPlayFlags).
type PlayFlags uint32

const (
	PlayFlagVideo PlayFlags = 1 << 0
	PlayFlagAudio PlayFlags = 1 << 1
	PlayFlagText  PlayFlags = 1 << 2
)

// MessageType mirrors the GstMessageType bits the wrapper listens to.
type MessageType uint32

const (
	MessageEOS       MessageType = 1 << 0
	MessageError     MessageType = 1 << 1
	MessageAsyncDone MessageType = 1 << 21
)

func (t MessageType) String() string {
	switch t {
	case MessageEOS:
		return "eos"
	case MessageError:
		return "error"
	case MessageAsyncDone:
		return "async-done"
	default:
		return fmt.Sprintf("message(%#x)", uint32(t))
	}
}

// Message is a decoded bus message. Code, Text and Debug are only set for
// error messages.
type Message struct {
	Type  MessageType
	Code  string // e.g. GST_STREAM_ERROR
	Text  string
	Debug string
}

// StreamKind selects the playbin stream family for track queries.
type StreamKind string

const (
	StreamText  StreamKind = "text"
	StreamAudio StreamKind = "audio"
)

// Playbin property names used by the wrapper.
const (
	PropFlags        = "flags"
	PropURI          = "uri"
	PropSubURI       = "suburi"
	PropCurrentText  = "current-text"
	PropCurrentAudio = "current-audio"
	PropVideoSink    = "video-sink"
	PropAudioSink    = "audio-sink"
)

// CountProperty returns the "n-<kind>" property name.
func CountProperty(kind StreamKind) string { return "n-" + string(kind) }

// errorCode turns a GError domain quark string such as
// "gst-stream-error-quark" into GST_STREAM_ERROR.
func errorCode(domain string) string {
	if domain == "" {
		return "GST_ERROR"
	}
	domain = strings.TrimSuffix(domain, "-quark")
	return strings.ToUpper(strings.ReplaceAll(domain, "-", "_"))
}

// Config controls how the runtime locates the native libraries.
type Config struct {
	// LibraryPath is a directory searched before the system locations.
	LibraryPath string
	Logger      *logrus.Entry
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
