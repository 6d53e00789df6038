package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/playbin/internal/playbin"
)

type fakeTracks struct {
	duration  time.Duration
	durErr    error
	audio     []playbin.StreamTrack
	subtitles []playbin.StreamTrack
}

func (f fakeTracks) Duration() (time.Duration, error)      { return f.duration, f.durErr }
func (f fakeTracks) AudioTracks() []playbin.StreamTrack    { return f.audio }
func (f fakeTracks) SubtitleTracks() []playbin.StreamTrack { return f.subtitles }

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestRootCommand_Defaults(t *testing.T) {
	cmd := newRootCommand()

	timeout, err := cmd.Flags().GetDuration("timeout")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, timeout)

	sink, err := cmd.Flags().GetString("video-sink")
	require.NoError(t, err)
	assert.Equal(t, "fakesink", sink)

	play, err := cmd.Flags().GetBool("play")
	require.NoError(t, err)
	assert.False(t, play)
}

func TestRootCommand_RequiresOneSource(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}

func TestSummarize_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie.mkv")
	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0o600))

	s := summarize(fakeTracks{
		duration: 90 * time.Second,
		audio:    []playbin.StreamTrack{{Index: 0, Language: "en"}},
	}, path)

	assert.Equal(t, int64(2048), s.Size)
	assert.True(t, s.HasLength)
	assert.Equal(t, 90*time.Second, s.Duration)
	assert.Len(t, s.Audio, 1)
	assert.Empty(t, s.Subtitles)
}

func TestSummarize_UnknownDuration(t *testing.T) {
	s := summarize(fakeTracks{durErr: errors.New("no duration")}, "http://example.org/live")

	assert.False(t, s.HasLength)
	assert.Zero(t, s.Size)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, summary{
		Source:    "file:///videos/movie.mkv",
		Size:      3_000_000,
		Duration:  61 * time.Minute,
		HasLength: true,
		Audio: []playbin.StreamTrack{
			{Index: 0, Language: "en"},
			{Index: 1},
		},
		Subtitles: []playbin.StreamTrack{{Index: 0, Language: "fr"}},
	})

	out := buf.String()
	assert.Contains(t, out, "file:///videos/movie.mkv")
	assert.Contains(t, out, "3.0 MB")
	assert.Contains(t, out, "1:01:00")
	assert.Contains(t, out, "2 tracks")
	assert.Contains(t, out, "1 track\n")
	assert.Contains(t, out, "#1   Unknown")
	assert.Contains(t, out, "#0   fr")
}

func TestPrintSummary_Live(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, summary{Source: "http://example.org/live"})

	out := buf.String()
	assert.Contains(t, out, "unknown")
	assert.NotContains(t, out, "size")
	assert.Contains(t, out, "0 tracks")
}
