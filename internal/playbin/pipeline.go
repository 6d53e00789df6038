package playbin

import (
	"fmt"

	"github.com/llehouerou/playbin/internal/gst"
)

// Pipeline is the contract the session needs from the native playbin.
// Implementations must be safe for concurrent use; Watch delivers messages
// from a goroutine the session does not control.
type Pipeline interface {
	SetState(target gst.State) gst.StateChangeReturn
	Seek(rate float64, format gst.Format, flags gst.SeekFlags, target int64) bool
	QueryPosition(format gst.Format) (int64, bool)
	QueryDuration(format gst.Format) (int64, bool)
	Property(name string) (any, error)
	SetProperty(name string, value any) error
	StreamLanguage(kind gst.StreamKind, index int) (string, bool)
	Watch(fn func(gst.Message)) (stop func())
	Close() error
}

// Verify the native playbin implements Pipeline at compile time.
var _ Pipeline = (*gst.Playbin)(nil)

// SinkFactory creates a sink element. Returning (nil, nil) keeps playbin's
// automatic sink.
type SinkFactory func(name string) (*gst.Element, error)

// BuildSpec is what a Builder receives to construct a pipeline.
type BuildSpec struct {
	Name         string
	VideoSink    SinkFactory
	AudioSink    SinkFactory
	WindowHandle uintptr
}

// Builder constructs the pipeline for a new session.
type Builder func(spec BuildSpec) (Pipeline, error)

// NativeBuilder builds a GStreamer playbin. The runtime must be initialized.
func NativeBuilder(spec BuildSpec) (Pipeline, error) {
	var sinks gst.Sinks
	if spec.VideoSink != nil {
		v, err := spec.VideoSink("videosink")
		if err != nil {
			return nil, fmt.Errorf("video sink: %w", err)
		}
		sinks.Video = v
	}
	if spec.AudioSink != nil {
		a, err := spec.AudioSink("audiosink")
		if err != nil {
			return nil, fmt.Errorf("audio sink: %w", err)
		}
		sinks.Audio = a
	}

	pb, err := gst.NewPlaybin(spec.Name, sinks)
	if err != nil {
		return nil, err
	}

	if spec.WindowHandle != 0 && sinks.Video != nil {
		if err := gst.SetWindowHandle(sinks.Video, spec.WindowHandle); err != nil {
			_ = pb.Close()
			return nil, err
		}
	}
	return pb, nil
}

// ElementSink returns a SinkFactory making elements from a named factory,
// e.g. "osxvideosink" or "pulsesink". An empty factory keeps the default.
func ElementSink(factory string) SinkFactory {
	if factory == "" {
		return nil
	}
	return func(name string) (*gst.Element, error) {
		return gst.MakeElement(factory, name)
	}
}
