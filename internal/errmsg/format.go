// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"errors"
	"fmt"

	"github.com/llehouerou/playbin/internal/gst"
	"github.com/llehouerou/playbin/internal/playbin"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlaybackStart  Op = "start playback"
	OpPlaybackPause  Op = "pause playback"
	OpPlaybackResume Op = "resume playback"
	OpPlaybackStop   Op = "stop playback"
	OpPlaybackSeek   Op = "seek"

	// Track selection
	OpSubtitleSelect Op = "select subtitles"
	OpSubtitleFile   Op = "load subtitle file"
	OpAudioSelect    Op = "select audio track"

	// Files and state
	OpFileLoad    Op = "load file"
	OpStateLoad   Op = "load saved state"
	OpStateSave   Op = "save state"
	OpConfigLoad  Op = "load configuration"
	OpSessionOpen Op = "create pipeline"

	// Initialization
	OpInitialize Op = "initialize GStreamer"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %s", op, Describe(err))
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %s", op, context, Describe(err))
}

// Describe renders err for display, replacing native error codes with
// readable text where one is known.
func Describe(err error) string {
	var perr *playbin.PipelineError
	if errors.As(err, &perr) {
		text, ok := codeText[perr.Code]
		switch {
		case ok && perr.Message != "":
			return text + " (" + perr.Message + ")"
		case ok:
			return text
		}
		return perr.Error()
	}

	var qerr *playbin.QueryError
	switch {
	case errors.As(err, &qerr):
		return "nothing is loaded yet"
	case errors.Is(err, playbin.ErrClosed):
		return "the player was closed"
	case errors.Is(err, playbin.ErrNoSource):
		return "no file is open"
	case errors.Is(err, gst.ErrUnsupported):
		return "GStreamer is not available on this platform"
	}
	return err.Error()
}

var codeText = map[string]string{
	"GST_CORE_ERROR":           "internal GStreamer error",
	"GST_LIBRARY_ERROR":        "a GStreamer library failed",
	"GST_RESOURCE_ERROR":       "the file could not be read",
	"GST_STREAM_ERROR":         "the stream could not be decoded",
	"GST_STATE_CHANGE_FAILURE": "the pipeline refused the state change",
	"GST_SEEK_FAILED":          "the pipeline cannot seek here",
}
