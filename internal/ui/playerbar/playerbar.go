// Package playerbar renders the playback panel of the terminal player.
package playerbar

import (
	"fmt"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/playbin/internal/playbin"
	"github.com/llehouerou/playbin/internal/ui/render"
	"github.com/llehouerou/playbin/internal/ui/styles"
)

// Height is the number of terminal rows the bar occupies.
const Height = 4 // 2 content rows + 2 border rows

const (
	playSymbol  = "▶"
	pauseSymbol = "⏸"
	stopSymbol  = "■"
	seekSymbol  = "⇄"
)

// State holds everything needed to render the player bar.
type State struct {
	Status   playbin.State
	Seeking  bool
	Title    string
	Detail   string // artist or file size
	Position time.Duration
	Duration time.Duration
	Subtitle string // active subtitle label, empty when disabled
	Audio    string // active audio label, empty when disabled
}

// Render returns the player bar for the given width.
func Render(s State, width int) string {
	innerWidth := max(width-6, 0) // border and padding

	t := styles.T().S()

	status := stopSymbol
	switch {
	case s.Seeking:
		status = seekSymbol
	case s.Status == playbin.StatePlaying:
		status = playSymbol
	case s.Status == playbin.StatePaused:
		status = pauseSymbol
	}

	tracks := trackLabels(s)
	titleWidth := max(innerWidth-ansi.StringWidth(status)-2-ansi.StringWidth(tracks)-2, 0)

	title := t.Title.Render(render.Sanitize(s.Title))
	if s.Detail != "" {
		title += t.Muted.Render("  " + render.Sanitize(s.Detail))
	}
	title = ansi.Truncate(title, titleWidth, "…")

	top := render.Row(status+"  "+title, t.Subtle.Render(tracks), innerWidth)
	bottom := RenderProgressBar(s.Position, s.Duration, innerWidth)

	return t.Panel.Padding(0, 2).Width(width - 2).Render(top + "\n" + bottom)
}

func trackLabels(s State) string {
	sub := "off"
	if s.Subtitle != "" {
		sub = s.Subtitle
	}
	audio := "off"
	if s.Audio != "" {
		audio = s.Audio
	}
	return fmt.Sprintf("sub %s  audio %s", sub, audio)
}

// FormatDuration renders d as m:ss, or h:mm:ss from one hour on.
func FormatDuration(d time.Duration) string {
	d = max(d, 0).Truncate(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
