package playerbar

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/llehouerou/playbin/internal/playbin"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{83 * time.Second, "1:23"},
		{59*time.Minute + 59*time.Second + 900*time.Millisecond, "59:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d), tt.d.String())
	}
}

func TestFilledCells(t *testing.T) {
	tests := []struct {
		name     string
		pos, dur time.Duration
		want     int
	}{
		{"no duration", time.Second, 0, 0},
		{"start", 0, time.Minute, 0},
		{"half", 30 * time.Second, time.Minute, 5},
		{"past end clamps", 2 * time.Minute, time.Minute, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filledCells(tt.pos, tt.dur, 10))
		})
	}
}

func TestRenderProgressBar(t *testing.T) {
	out := ansi.Strip(RenderProgressBar(30*time.Second, time.Minute, 30))

	assert.True(t, strings.HasPrefix(out, "0:30  "))
	assert.True(t, strings.HasSuffix(out, "  1:00"))
	assert.Equal(t, 30, ansi.StringWidth(out))
	assert.Equal(t, 9, strings.Count(out, filledBlock))
}

func TestRenderProgressBar_Narrow(t *testing.T) {
	assert.Equal(t, "0:30 / 1:00", RenderProgressBar(30*time.Second, time.Minute, 12))
}

func TestRender(t *testing.T) {
	s := State{
		Status:   playbin.StatePlaying,
		Title:    "Big Buck Bunny",
		Detail:   "276 MB",
		Position: 10 * time.Second,
		Duration: 10 * time.Minute,
		Subtitle: "English",
	}

	out := Render(s, 80)
	plain := ansi.Strip(out)

	assert.Equal(t, Height, lipgloss.Height(out))
	assert.Contains(t, plain, playSymbol)
	assert.Contains(t, plain, "Big Buck Bunny")
	assert.Contains(t, plain, "sub English  audio off")
	assert.Contains(t, plain, "0:10")
	assert.Contains(t, plain, "10:00")
}

func TestRender_StatusSymbol(t *testing.T) {
	tests := []struct {
		name string
		s    State
		want string
	}{
		{"paused", State{Status: playbin.StatePaused}, pauseSymbol},
		{"idle", State{Status: playbin.StateIdle}, stopSymbol},
		{"seeking wins", State{Status: playbin.StatePaused, Seeking: true}, seekSymbol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, ansi.Strip(Render(tt.s, 60)), tt.want)
		})
	}
}

func TestRender_LongTitleTruncated(t *testing.T) {
	s := State{Status: playbin.StatePlaying, Title: strings.Repeat("x", 200)}

	out := Render(s, 60)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, ansi.StringWidth(line), 60)
	}
	assert.Contains(t, ansi.Strip(out), "…")
}
