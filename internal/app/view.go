package app

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/playbin/internal/ui/playerbar"
	"github.com/llehouerou/playbin/internal/ui/render"
	"github.com/llehouerou/playbin/internal/ui/styles"
)

// chromeHeight is the rows taken by the header, status lines and help.
const chromeHeight = 1 + 1 + maxStderrLines + 1

var errUnsupportedFile = errors.New("not a media file")

// View renders the application UI.
func (m Model) View() string {
	var body string
	if m.screen == screenChooser {
		body = m.renderChooser()
	} else {
		body = m.renderPlayer()
	}

	parts := []string{m.renderHeader(), body}
	parts = append(parts, m.renderMessages()...)
	parts = append(parts, m.renderHelp())
	return strings.Join(parts, "\n")
}

func (m Model) renderHeader() string {
	t := styles.T().S()
	left := t.Active.Render("playbin")
	var right string

	if m.screen == screenChooser {
		left += t.Muted.Render("  " + render.Sanitize(m.picker.CurrentDirectory))
	} else if m.current != nil {
		left += t.Muted.Render("  " + render.Sanitize(filepath.Base(m.current.Path)))
		if m.current.Info.Size > 0 {
			right = t.Subtle.Render(humanize.Bytes(uint64(m.current.Info.Size)))
		}
	}
	return render.Row(left, right, m.width)
}

func (m Model) renderChooser() string {
	return m.picker.View()
}

func (m Model) renderPlayer() string {
	bar := playerbar.Render(m.playerBarState(), m.width)
	avail := max(m.height-chromeHeight-playerbar.Height, 0)

	var top string
	if m.screen == screenMenu {
		top = m.menu.View(m.width, avail)
	} else {
		top = lipgloss.Place(m.width, avail, lipgloss.Center, lipgloss.Center, m.renderNowPlaying())
	}
	return top + "\n" + bar
}

func (m Model) renderNowPlaying() string {
	if m.current == nil {
		return ""
	}
	t := styles.T().S()
	lines := []string{t.Title.Render(render.Truncate(m.current.Info.Title, m.width))}
	if m.current.Info.Artist != "" {
		lines = append(lines, t.Muted.Render(render.Truncate(m.current.Info.Artist, m.width)))
	}
	if m.current.Info.Album != "" {
		lines = append(lines, t.Subtle.Render(render.Truncate(m.current.Info.Album, m.width)))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

// renderMessages returns the error line and the captured stderr lines,
// always maxStderrLines+1 rows so the layout does not jump.
func (m Model) renderMessages() []string {
	t := styles.T().S()
	lines := make([]string, 0, maxStderrLines+1)
	lines = append(lines, t.Error.Render(render.Truncate(m.errMsg, m.width)))
	for i := range maxStderrLines {
		line := ""
		if i < len(m.stderrLines) {
			line = t.Warning.Render(render.Truncate(m.stderrLines[i], m.width))
		}
		lines = append(lines, line)
	}
	return lines
}

func (m Model) renderHelp() string {
	if m.screen == screenChooser {
		return m.help.View(chooserKeys{})
	}
	return m.help.View(keys)
}
