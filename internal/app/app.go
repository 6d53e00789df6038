package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/playbin/internal/config"
	"github.com/llehouerou/playbin/internal/mpris"
	"github.com/llehouerou/playbin/internal/notify"
	"github.com/llehouerou/playbin/internal/playbin"
	"github.com/llehouerou/playbin/internal/state"
	"github.com/llehouerou/playbin/internal/status"
	"github.com/llehouerou/playbin/internal/tags"
	"github.com/llehouerou/playbin/internal/ui/trackmenu"
)

type screen int

const (
	screenChooser screen = iota
	screenPlayer
	screenMenu
)

// maxStderrLines is how many captured native messages stay on screen.
const maxStderrLines = 3

// Deps are the collaborators of the terminal player. Notifier, Media and
// Stderr are optional.
type Deps struct {
	Player   Player
	State    state.Interface
	Config   *config.Config
	Notifier notify.Notifier
	Media    MediaPublisher
	Stderr   <-chan string
	Logger   *logrus.Entry
}

// Model is the root application model.
type Model struct {
	player   Player
	state    state.Interface
	notifier notify.Notifier
	media    MediaPublisher
	log      *logrus.Entry

	skipStep     time.Duration
	pollInterval time.Duration
	notifyOn     bool

	sub     *playbin.Subscription
	stderr  <-chan string
	poller  *status.Poller
	samples chan status.Sample

	screen  screen
	picker  filepicker.Model
	menu    trackmenu.Model
	help    help.Model
	current *mpris.Media

	sample        status.Sample
	busy          bool // an operation is in flight
	stopPending   bool // end of stream arrived while busy
	seeking       bool
	subtitleLabel string
	audioLabel    string
	notifyID      uint32

	errMsg      string
	stderrLines []string

	width  int
	height int
}

// New creates the application model. The file chooser starts in the last
// opened folder, then the configured default folder, then the working
// directory.
func New(deps Deps) Model {
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	log := deps.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	picker := filepicker.New()
	picker.AllowedTypes = tags.MediaExtensions()
	picker.ShowPermissions = false
	picker.CurrentDirectory = startDirectory(deps.State, cfg.DefaultFolder)

	return Model{
		player:       deps.Player,
		state:        deps.State,
		notifier:     deps.Notifier,
		media:        deps.Media,
		log:          log.WithField("component", "app"),
		skipStep:     cfg.GetSkipStep(),
		pollInterval: cfg.GetPollInterval(),
		notifyOn:     deps.Notifier != nil && cfg.NotificationsEnabled(),
		sub:          deps.Player.Subscribe(),
		stderr:       deps.Stderr,
		poller:       &status.Poller{},
		samples:      make(chan status.Sample, 1),
		picker:       picker,
		help:         help.New(),
	}
}

func startDirectory(st state.Interface, defaultFolder string) string {
	if st != nil {
		if last, err := st.LastPath(); err == nil && isDir(last) {
			return last
		}
	}
	if defaultFolder != "" && isDir(defaultFolder) {
		return defaultFolder
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.picker.Init(),
		WatchSession(m.sub),
		WatchStatus(m.samples),
		WatchStderr(m.stderr),
	)
}

// Shutdown stops background polling, flushes the current position and
// withdraws the last notification. Call it after the program has exited.
func (m Model) Shutdown() {
	m.poller.Stop()
	m.savePosition()
	if m.notifyOn && m.notifyID != 0 {
		_ = m.notifier.Close(m.notifyID)
	}
}

// startPolling publishes samples to the UI, keeping only the latest.
func (m Model) startPolling() {
	m.poller.Stop()
	samples := m.samples
	err := m.poller.Start(context.Background(), m.player, m.pollInterval, func(s status.Sample) {
		select {
		case samples <- s:
		default:
			// Replace the unread sample
			select {
			case <-samples:
			default:
			}
			select {
			case samples <- s:
			default:
			}
		}
	})
	if err != nil {
		m.log.WithError(err).Warn("status poller not started")
	}
}

func (m Model) savePosition() {
	source := m.player.Source()
	if source == "" || !m.player.State().IsActive() {
		return
	}
	if pos, err := m.player.Position(); err == nil {
		m.state.SavePosition(source, pos)
	}
}

func (m Model) saveFolder(path string) {
	if err := m.state.SaveLastPath(filepath.Dir(path)); err != nil {
		m.log.WithError(err).Warn("cannot save last folder")
	}
}
