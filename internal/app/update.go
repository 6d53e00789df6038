package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/playbin/internal/errmsg"
	"github.com/llehouerou/playbin/internal/notify"
	"github.com/llehouerou/playbin/internal/state"
	"github.com/llehouerou/playbin/internal/status"
	"github.com/llehouerou/playbin/internal/ui/playerbar"
	"github.com/llehouerou/playbin/internal/ui/trackmenu"
)

// Update handles messages and returns updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case openedMsg:
		return m.handleOpened(msg)

	case opDoneMsg:
		return m.handleOpDone(msg)

	case seekDoneMsg:
		m.busy = false
		m.seeking = false
		if msg.err != nil {
			m.errMsg = errmsg.Format(errmsg.OpPlaybackSeek, msg.err)
		}
		return m.stopIfPending()

	case StatusMsg:
		m.sample = status.Sample(msg)
		if source := m.player.Source(); source != "" && m.player.State().IsActive() {
			m.state.SavePosition(source, m.sample.Position)
		}
		return m, WatchStatus(m.samples)

	case StateChangedMsg:
		m.log.WithField("state", msg.Current.String()).Debug("state changed")
		return m, WatchSession(m.sub)

	case TracksChangedMsg:
		m.refreshTrackLabels()
		return m, WatchSession(m.sub)

	case EndOfStreamMsg:
		return m.handleEndOfStream()

	case AsyncErrorMsg:
		m.errMsg = errmsg.Describe(msg.Err)
		m.sendNotification(notify.PlaybackError(msg.Err))
		return m, WatchSession(m.sub)

	case SessionClosedMsg:
		return m, tea.Quit

	case StderrMsg:
		m.stderrLines = append(m.stderrLines, msg.Line)
		if len(m.stderrLines) > maxStderrLines {
			m.stderrLines = m.stderrLines[len(m.stderrLines)-maxStderrLines:]
		}
		return m, WatchStderr(m.stderr)
	}

	// Everything else (directory listings) belongs to the chooser
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width
	if err := m.state.SaveWindowGeometry(state.Geometry{Width: msg.Width, Height: msg.Height}); err != nil {
		m.log.WithError(err).Debug("cannot save terminal size")
	}

	// The chooser shares the screen with the header and the footer
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(tea.WindowSizeMsg{
		Width:  msg.Width,
		Height: max(msg.Height-chromeHeight, 1),
	})
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.screen {
	case screenMenu:
		return m.handleMenuKey(msg)
	case screenPlayer:
		return m.handlePlayerKey(msg)
	case screenChooser:
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok && !m.busy {
		m.busy = true
		m.errMsg = ""
		return m, tea.Batch(cmd, openFile(m.player, m.state, path))
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.errMsg = errmsg.FormatWith(errmsg.OpFileLoad, path, errUnsupportedFile)
	}
	return m, cmd
}

func (m Model) handlePlayerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return m.quit()
	}
	// One operation at a time: completions carry no request identifier
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Toggle):
		m.busy = true
		if m.player.State().CanPause() {
			return m, runOp(errmsg.OpPlaybackPause, m.player.Pause)
		}
		return m, runOp(errmsg.OpPlaybackResume, m.player.Play)

	case key.Matches(msg, keys.Stop):
		m.savePosition()
		m.busy = true
		return m, runOp(errmsg.OpPlaybackStop, m.player.Stop)

	case key.Matches(msg, keys.Rewind):
		m.busy, m.seeking = true, true
		return m, seekBy(m.player, -m.skipStep)

	case key.Matches(msg, keys.Forward):
		m.busy, m.seeking = true, true
		return m, seekBy(m.player, m.skipStep)

	case key.Matches(msg, keys.Subtitles):
		current, _ := m.player.Subtitle()
		m.menu = trackmenu.New(trackmenu.Subtitles, m.player.SubtitleTracks(), current)
		m.screen = screenMenu

	case key.Matches(msg, keys.Audio):
		current, _ := m.player.AudioTrack()
		m.menu = trackmenu.New(trackmenu.Audio, m.player.AudioTracks(), current)
		m.screen = screenMenu
	}
	return m, nil
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var res trackmenu.Result
	m.menu, res = m.menu.Update(msg)

	switch res.Action {
	case trackmenu.ActionNone:
		return m, nil
	case trackmenu.ActionCancel:
	case trackmenu.ActionSelect:
		if res.Kind == trackmenu.Audio {
			if err := m.player.SetAudioTrack(res.Track); err != nil {
				m.errMsg = errmsg.Format(errmsg.OpAudioSelect, err)
			}
		} else if err := m.player.SetSubtitle(res.Track); err != nil {
			m.errMsg = errmsg.Format(errmsg.OpSubtitleSelect, err)
		}
		m.refreshTrackLabels()
	}
	m.screen = screenPlayer
	return m, nil
}

func (m Model) handleOpened(msg openedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	// An end of stream seen while opening belonged to the previous source
	m.stopPending = false
	if msg.err != nil {
		m.errMsg = errmsg.FormatWith(errmsg.OpFileLoad, msg.media.Info.Title, msg.err)
		return m, nil
	}

	m.current = msg.media
	m.screen = screenPlayer
	m.sample = status.Sample{Position: msg.resumed}
	m.saveFolder(msg.path)
	m.refreshTrackLabels()
	m.startPolling()
	if m.media != nil {
		m.media.SetMedia(msg.media)
	}

	subtitle := "Now playing"
	if msg.media.Info.Artist != "" {
		subtitle = msg.media.Info.Artist
	}
	m.sendNotification(notify.NowPlaying(msg.media.Info.Title, subtitle, msg.media.Cover))

	m.log.WithField("source", m.player.Source()).Info("playing")
	return m, nil
}

func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.op == errmsg.OpPlaybackStop {
		m.stopPending = false
	}
	if msg.err != nil {
		m.errMsg = errmsg.Format(msg.op, msg.err)
		return m.stopIfPending()
	}
	m.errMsg = ""
	if msg.op == errmsg.OpPlaybackStop {
		m.leavePlayer()
	}
	return m.stopIfPending()
}

// stopIfPending issues the stop an end of stream had to defer.
func (m Model) stopIfPending() (tea.Model, tea.Cmd) {
	if !m.stopPending || m.busy {
		return m, nil
	}
	m.stopPending = false
	m.busy = true
	return m, runOp(errmsg.OpPlaybackStop, m.player.Stop)
}

func (m Model) handleEndOfStream() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{WatchSession(m.sub)}

	if source := m.player.Source(); source != "" {
		if err := m.state.ClearPosition(source); err != nil {
			m.log.WithError(err).Warn("cannot clear saved position")
		}
	}
	if m.current != nil {
		m.sendNotification(notify.EndOfStream(m.current.Info.Title))
	}

	if m.busy {
		m.stopPending = true
	} else {
		m.busy = true
		cmds = append(cmds, runOp(errmsg.OpPlaybackStop, m.player.Stop))
	}
	return m, tea.Batch(cmds...)
}

// leavePlayer returns to the chooser once the session is idle.
func (m *Model) leavePlayer() {
	m.poller.Stop()
	m.screen = screenChooser
	m.current = nil
	m.sample = status.Sample{}
	m.subtitleLabel, m.audioLabel = "", ""
	if m.media != nil {
		m.media.SetMedia(nil)
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.poller.Stop()
	m.savePosition()
	return m, tea.Quit
}

func (m *Model) refreshTrackLabels() {
	m.subtitleLabel = ""
	if t, err := m.player.Subtitle(); err == nil && t != nil {
		m.subtitleLabel = t.Label()
	}
	m.audioLabel = ""
	if t, err := m.player.AudioTrack(); err == nil && t != nil {
		m.audioLabel = t.Label()
	}
}

// sendNotification shows n, replacing the previous notification.
func (m *Model) sendNotification(n notify.Notification) {
	if !m.notifyOn {
		return
	}
	n.ReplacesID = m.notifyID
	id, err := m.notifier.Notify(n)
	if err != nil {
		m.log.WithError(err).Debug("notification failed")
		return
	}
	m.notifyID = id
}

func (m Model) playerBarState() playerbar.State {
	s := playerbar.State{
		Status:   m.player.State(),
		Seeking:  m.seeking,
		Position: m.sample.Position,
		Duration: m.sample.Duration,
		Subtitle: m.subtitleLabel,
		Audio:    m.audioLabel,
	}
	if m.current != nil {
		s.Title = m.current.Info.Title
		s.Detail = m.current.Info.Artist
	}
	return s
}
