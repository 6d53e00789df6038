// Package trackmenu implements the subtitle and audio track selection menu.
package trackmenu

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/playbin/internal/playbin"
	"github.com/llehouerou/playbin/internal/ui/render"
	"github.com/llehouerou/playbin/internal/ui/styles"
)

// DisableLabel is the first entry of every menu.
const DisableLabel = "Disable"

// Kind identifies which track family the menu selects.
type Kind int

const (
	Subtitles Kind = iota
	Audio
)

func (k Kind) title() string {
	if k == Audio {
		return "Audio track"
	}
	return "Subtitles"
}

// Action represents what happened during Update.
type Action int

const (
	ActionNone Action = iota
	ActionSelect
	ActionCancel
)

// Result is returned from Update to tell the parent what happened.
type Result struct {
	Action Action
	Kind   Kind
	// Track is nil when the Disable entry was chosen.
	Track *playbin.StreamTrack
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Select: key.NewBinding(key.WithKeys("enter")),
	Cancel: key.NewBinding(key.WithKeys("esc", "q")),
}

// Model is a track menu. The zero value is an empty subtitle menu.
type Model struct {
	kind   Kind
	tracks []playbin.StreamTrack
	active int // index into entries, 0 = Disable
	cursor int
}

// New creates a menu over tracks. current is the active track, nil when
// the family is disabled; the cursor starts on it.
func New(kind Kind, tracks []playbin.StreamTrack, current *playbin.StreamTrack) Model {
	m := Model{kind: kind, tracks: tracks}
	if current != nil {
		for i, t := range tracks {
			if t.Index == current.Index {
				m.active = i + 1
				break
			}
		}
	}
	m.cursor = m.active
	return m
}

// Kind returns the track family of the menu.
func (m Model) Kind() Kind {
	return m.kind
}

// Len returns the number of entries including Disable.
func (m Model) Len() int {
	return len(m.tracks) + 1
}

// Cursor returns the highlighted entry.
func (m Model) Cursor() int {
	return m.cursor
}

// Update handles key presses.
func (m Model) Update(msg tea.Msg) (Model, Result) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, Result{}
	}

	switch {
	case key.Matches(keyMsg, keys.Up):
		m.cursor = (m.cursor - 1 + m.Len()) % m.Len()
	case key.Matches(keyMsg, keys.Down):
		m.cursor = (m.cursor + 1) % m.Len()
	case key.Matches(keyMsg, keys.Select):
		res := Result{Action: ActionSelect, Kind: m.kind}
		if m.cursor > 0 {
			t := m.tracks[m.cursor-1]
			res.Track = &t
		}
		return m, res
	case key.Matches(keyMsg, keys.Cancel):
		return m, Result{Action: ActionCancel, Kind: m.kind}
	}
	return m, Result{}
}

func (m Model) labels() []string {
	labels := make([]string, 0, m.Len())
	labels = append(labels, DisableLabel)
	for _, t := range m.tracks {
		labels = append(labels, t.Label())
	}
	return labels
}

// View renders the menu as a bordered box, centred in width x height.
func (m Model) View(width, height int) string {
	t := styles.T().S()
	labels := m.labels()

	inner := lipgloss.Width(m.kind.title())
	for _, l := range labels {
		inner = max(inner, lipgloss.Width(l)+2)
	}
	inner = min(inner, max(width-6, 1))

	lines := make([]string, 0, len(labels)+2)
	lines = append(lines, t.Title.Render(m.kind.title()), "")
	for i, l := range labels {
		marker := "  "
		if i == m.active {
			marker = "● "
		}
		line := render.Fit(marker+l, inner)
		switch {
		case i == m.cursor:
			line = t.Cursor.Render(line)
		case i == m.active:
			line = t.Active.Render(line)
		}
		lines = append(lines, line)
	}

	box := t.Panel.Padding(0, 1).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
