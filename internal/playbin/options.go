package playbin

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/playbin/internal/gst"
)

// ConstructMode selects where the pipeline is built.
type ConstructMode int

const (
	// ConstructOnWorker builds the pipeline on the runtime's worker thread
	// and blocks until it is done. Falls back to inline without a worker.
	ConstructOnWorker ConstructMode = iota
	// ConstructInline builds the pipeline on the calling goroutine.
	ConstructInline
)

// Worker runs functions on the framework's own thread.
type Worker interface {
	Invoke(ctx context.Context, fn func()) error
}

// Options configures a session.
type Options struct {
	// Name of the native pipeline.
	Name string

	// Builder constructs the pipeline; defaults to NativeBuilder.
	Builder Builder
	// Construct selects the construction thread.
	Construct ConstructMode
	// Worker is used by ConstructOnWorker; defaults to the active runtime.
	Worker Worker

	VideoSink    SinkFactory
	AudioSink    SinkFactory
	WindowHandle uintptr

	// OnEndOfStream is called on the session goroutine at end of stream.
	OnEndOfStream func()
	// OnAsyncError is called on the session goroutine for errors no
	// pending operation was waiting for.
	OnAsyncError func(error)

	Logger *logrus.Entry
}

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = "playbin"
	}
	if o.Builder == nil {
		o.Builder = NativeBuilder
	}
	if o.Worker == nil && o.Construct == ConstructOnWorker {
		if rt, ok := gst.Active(); ok {
			o.Worker = rt
		}
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = logrus.NewEntry(l)
	}
	return o
}

func (o Options) spec() BuildSpec {
	return BuildSpec{
		Name:         o.Name,
		VideoSink:    o.VideoSink,
		AudioSink:    o.AudioSink,
		WindowHandle: o.WindowHandle,
	}
}
