package app

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle    key.Binding
	Stop      key.Binding
	Rewind    key.Binding
	Forward   key.Binding
	Subtitles key.Binding
	Audio     key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
	Stop:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
	Rewind:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "rewind")),
	Forward:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "forward")),
	Subtitles: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "subtitles")),
	Audio:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "audio")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Rewind, k.Forward, k.Subtitles, k.Audio, k.Stop, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Stop, k.Rewind, k.Forward},
		{k.Subtitles, k.Audio, k.Quit},
	}
}

// chooserKeys is shown under the file chooser.
type chooserKeys struct{}

var (
	chooseKey = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open"))
	backKey   = key.NewBinding(key.WithKeys("backspace"), key.WithHelp("←/h", "up"))
	quitKey   = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
)

func (chooserKeys) ShortHelp() []key.Binding {
	return []key.Binding{chooseKey, backKey, quitKey}
}

func (c chooserKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{c.ShortHelp()}
}
