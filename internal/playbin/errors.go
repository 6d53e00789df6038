package playbin

import (
	"errors"
	"fmt"

	"github.com/llehouerou/playbin/internal/completion"
)

// ErrClosed is returned by operations on a closed session, and by
// operations that were still pending when the session was closed.
var ErrClosed = errors.New("playbin session closed")

// PipelineError is a failure reported by the native pipeline.
type PipelineError struct {
	Code    string // native error code, e.g. GST_STREAM_ERROR
	Message string
	Debug   string
}

func (e *PipelineError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ProtocolError is a completion event that arrived with no pending
// operation to resolve.
type ProtocolError = completion.ProtocolError

// QueryError is returned when the pipeline cannot answer a position or
// duration query, typically because no source is loaded yet.
type QueryError struct {
	Query string // "position" or "duration"
}

func (e *QueryError) Error() string {
	return "cannot get " + e.Query
}

// IndexError is returned when a track index is outside the range the
// pipeline reports.
type IndexError struct {
	Kind  string // "subtitle" or "audio"
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s track index %d out of range [0, %d)", e.Kind, e.Index, e.Count)
}
