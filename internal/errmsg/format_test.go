//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/llehouerou/playbin/internal/playbin"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpPlaybackStart,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpFileLoad,
			err:      errors.New("file not found"),
			expected: "Failed to load file: file not found",
		},
		{
			name:     "known pipeline code",
			op:       OpPlaybackStart,
			err:      &playbin.PipelineError{Code: "GST_STREAM_ERROR", Message: "no decoder"},
			expected: "Failed to start playback: the stream could not be decoded (no decoder)",
		},
		{
			name:     "wrapped pipeline code without message",
			op:       OpPlaybackSeek,
			err:      fmt.Errorf("forward: %w", &playbin.PipelineError{Code: "GST_SEEK_FAILED"}),
			expected: "Failed to seek: the pipeline cannot seek here",
		},
		{
			name:     "unknown pipeline code",
			op:       OpPlaybackPause,
			err:      &playbin.PipelineError{Code: "GST_STATE_CHANGE_4", Message: "pause failed"},
			expected: "Failed to pause playback: GST_STATE_CHANGE_4: pause failed",
		},
		{
			name:     "query error",
			op:       OpPlaybackSeek,
			err:      &playbin.QueryError{Query: "position"},
			expected: "Failed to seek: nothing is loaded yet",
		},
		{
			name:     "closed session",
			op:       OpPlaybackStop,
			err:      playbin.ErrClosed,
			expected: "Failed to stop playback: the player was closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpFileLoad,
			context:  "movie.mkv",
			err:      nil,
			expected: "",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpFileLoad,
			context:  "",
			err:      errors.New("permission denied"),
			expected: "Failed to load file: permission denied",
		},
		{
			name:     "includes context",
			op:       OpSubtitleFile,
			context:  "movie.srt",
			err:      errors.New("not found"),
			expected: "Failed to load subtitle file 'movie.srt': not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}
