// Command playbin is a terminal media player built on a GStreamer playbin.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/adrg/xdg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/playbin/internal/app"
	"github.com/llehouerou/playbin/internal/config"
	"github.com/llehouerou/playbin/internal/errmsg"
	"github.com/llehouerou/playbin/internal/gst"
	"github.com/llehouerou/playbin/internal/mpris"
	"github.com/llehouerou/playbin/internal/notify"
	"github.com/llehouerou/playbin/internal/playbin"
	"github.com/llehouerou/playbin/internal/state"
	"github.com/llehouerou/playbin/internal/stderr"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	log, logFile, err := openLog(cfg.GetLogLevel())
	if err != nil {
		return err
	}
	defer logFile.Close()

	// Must start before GStreamer is loaded so plugin output is captured
	capture, err := stderr.Start(log.WithField("component", "stderr"))
	if err != nil {
		log.WithError(err).Warn("stderr capture unavailable")
	} else {
		defer capture.Stop()
	}

	rt, err := gst.Init(gst.Config{LibraryPath: cfg.GstLibraryPath, Logger: log.WithField("component", "gst")})
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer rt.Shutdown()

	stateMgr, err := state.Open()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpStateLoad, err))
	}
	defer stateMgr.Close()

	construct := playbin.ConstructOnWorker
	if cfg.InlineConstruction() {
		construct = playbin.ConstructInline
	}
	session, err := playbin.New(context.Background(), playbin.Options{
		Construct: construct,
		VideoSink: playbin.ElementSink(cfg.VideoSink),
		AudioSink: playbin.ElementSink(cfg.AudioSink),
		Logger:    log,
	})
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpSessionOpen, err))
	}
	defer session.Close()

	// The UI and MPRIS both drive the session
	shared := playbin.NewExclusive(session)

	deps := app.Deps{
		Player: shared,
		State:  stateMgr,
		Config: cfg,
		Logger: log,
	}
	if capture != nil {
		deps.Stderr = capture.Lines()
	}

	if cfg.NotificationsEnabled() {
		if n, err := notify.New(); err == nil {
			deps.Notifier = n
		}
	}

	if cfg.MPRISEnabled() {
		adapter, err := mpris.New(shared)
		if err != nil {
			log.WithError(err).Warn("MPRIS unavailable")
		} else {
			defer adapter.Close()
			adapter.Follow(session.Subscribe())
			deps.Media = adapter
		}
	}

	p := tea.NewProgram(app.New(deps), tea.WithAltScreen())
	final, err := p.Run()
	if m, ok := final.(app.Model); ok {
		m.Shutdown()
	}
	return err
}

// openLog sends logs to a file under the XDG state directory, keeping the
// terminal and the captured stderr clean.
func openLog(level logrus.Level) (*logrus.Entry, *os.File, error) {
	path, err := xdg.StateFile("playbin/playbin.log")
	if err != nil {
		return nil, nil, fmt.Errorf("log file: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("log file: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(f)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	return logrus.NewEntry(logger), f, nil
}
