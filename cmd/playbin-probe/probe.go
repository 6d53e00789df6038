package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/playbin/internal/errmsg"
	"github.com/llehouerou/playbin/internal/gst"
	"github.com/llehouerou/playbin/internal/playbin"
	"github.com/llehouerou/playbin/internal/status"
	"github.com/llehouerou/playbin/internal/ui/playerbar"
)

type probeOptions struct {
	Verbose     bool
	Play        bool
	Inline      bool
	Timeout     time.Duration
	LibraryPath string
	VideoSink   string
	AudioSink   string
}

func newRootCommand() *cobra.Command {
	opts := &probeOptions{}

	cmd := &cobra.Command{
		Use:   "playbin-probe <file-or-uri>",
		Short: "Preroll a media source and print its tracks",
		Long:  "Open a media source in a GStreamer playbin, wait for it to preroll, and print its duration, audio tracks and subtitle tracks.",
		Example: `  playbin-probe movie.mkv
  playbin-probe --play --timeout 10m https://example.org/stream.webm
  playbin-probe --inline --verbose movie.mkv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd.Context(), opts, args[0], cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Log pipeline activity to stderr")
	flags.BoolVarP(&opts.Play, "play", "p", false, "Play the source to the end")
	flags.BoolVar(&opts.Inline, "inline", false, "Build the pipeline on the calling thread")
	flags.DurationVarP(&opts.Timeout, "timeout", "t", time.Minute, "Give up after this long")
	flags.StringVar(&opts.LibraryPath, "gst-library-path", "", "Directory searched first for the GStreamer libraries")
	flags.StringVar(&opts.VideoSink, "video-sink", "fakesink", "Video sink element factory")
	flags.StringVar(&opts.AudioSink, "audio-sink", "", "Audio sink element factory")

	return cmd
}

func newLogger(verbose bool) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logrus.NewEntry(logger)
}

func runProbe(ctx context.Context, opts *probeOptions, source string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	log := newLogger(opts.Verbose)

	rt, err := gst.Init(gst.Config{LibraryPath: opts.LibraryPath, Logger: log.WithField("component", "gst")})
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer rt.Shutdown()

	eos := make(chan struct{}, 1)
	construct := playbin.ConstructOnWorker
	if opts.Inline {
		construct = playbin.ConstructInline
	}
	session, err := playbin.New(ctx, playbin.Options{
		Name:      "probe",
		Construct: construct,
		VideoSink: playbin.ElementSink(opts.VideoSink),
		AudioSink: playbin.ElementSink(opts.AudioSink),
		OnEndOfStream: func() {
			select {
			case eos <- struct{}{}:
			default:
			}
		},
		OnAsyncError: func(err error) {
			log.WithError(err).Error("pipeline error")
		},
		Logger: log,
	})
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpSessionOpen, err))
	}
	defer session.Close()

	if err := session.PlaySource(ctx, source); err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpPlaybackStart, source, err))
	}
	if !opts.Play {
		if err := session.Pause(ctx); err != nil {
			return errors.New(errmsg.Format(errmsg.OpPlaybackPause, err))
		}
	}

	printSummary(w, summarize(session, source))

	if opts.Play {
		if err := playToEnd(ctx, session, eos, w); err != nil {
			return err
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := session.Stop(stopCtx); err != nil {
		return errors.New(errmsg.Format(errmsg.OpPlaybackStop, err))
	}
	return nil
}

// playToEnd prints the position until the end of stream or ctx expires.
func playToEnd(ctx context.Context, src status.Source, eos <-chan struct{}, w io.Writer) error {
	playCtx, finished := context.WithCancel(ctx)
	defer finished()

	g, gctx := errgroup.WithContext(playCtx)

	g.Go(func() error {
		select {
		case <-eos:
			finished()
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	})

	g.Go(func() error {
		var p status.Poller
		if err := p.Start(gctx, src, time.Second, func(s status.Sample) {
			fmt.Fprintf(w, "\r%s / %s", playerbar.FormatDuration(s.Position), playerbar.FormatDuration(s.Duration))
		}); err != nil {
			return err
		}
		<-gctx.Done()
		p.Stop()
		fmt.Fprintln(w)
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("no end of stream before timeout: %w", err)
		}
		return err
	}
	return nil
}

// summary is what the probe reports about a prerolled source.
type summary struct {
	Source    string
	Size      int64 // 0 when unknown
	Duration  time.Duration
	HasLength bool
	Audio     []playbin.StreamTrack
	Subtitles []playbin.StreamTrack
}

type trackSource interface {
	Duration() (time.Duration, error)
	AudioTracks() []playbin.StreamTrack
	SubtitleTracks() []playbin.StreamTrack
}

func summarize(s trackSource, source string) summary {
	sum := summary{
		Source:    source,
		Audio:     s.AudioTracks(),
		Subtitles: s.SubtitleTracks(),
	}
	if d, err := s.Duration(); err == nil {
		sum.Duration, sum.HasLength = d, true
	}
	if st, err := os.Stat(source); err == nil && !st.IsDir() {
		sum.Size = st.Size()
	}
	return sum
}

func printSummary(w io.Writer, s summary) {
	label := color.New(color.FgCyan, color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(w, "%s  %s\n", label("source   "), s.Source)
	if s.Size > 0 {
		fmt.Fprintf(w, "%s  %s\n", label("size     "), humanize.Bytes(uint64(s.Size)))
	}
	duration := faint("unknown (live or unseekable)")
	if s.HasLength {
		duration = playerbar.FormatDuration(s.Duration)
	}
	fmt.Fprintf(w, "%s  %s\n", label("duration "), duration)

	printTracks(w, label("audio    "), s.Audio)
	printTracks(w, label("subtitles"), s.Subtitles)
}

func printTracks(w io.Writer, label string, tracks []playbin.StreamTrack) {
	fmt.Fprintf(w, "%s  %s\n", label, english.Plural(len(tracks), "track", ""))
	for _, t := range tracks {
		fmt.Fprintf(w, "  #%-3d %s\n", t.Index, strings.TrimSpace(t.Label()))
	}
}
