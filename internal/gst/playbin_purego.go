//go:build linux || darwin

package gst

import (
	"errors"
	"fmt"
	"sync"
	"time"
	"unsafe"
)

const (
	seekTypeNone = 0
	seekTypeSet  = 1

	busPollTimeout = 100 * time.Millisecond

	// GstMessage starts with a GstMiniObject, 64 bytes on LP64; the
	// message type follows it.
	messageTypeOffset = 64
)

// MakeElement creates an element from a factory, e.g. "osxvideosink".
func MakeElement(factory, name string) (*Element, error) {
	if err := requireRuntime(); err != nil {
		return nil, err
	}
	ptr := gstElementFactoryMake(factory, name)
	if ptr == 0 {
		return nil, fmt.Errorf("element factory %q: %w", factory, errNullElement)
	}
	return &Element{ptr: ptr, name: name, factory: factory}, nil
}

// SetWindowHandle embeds a video sink's output into a native window.
func SetWindowHandle(sink *Element, handle uintptr) error {
	if sink == nil || sink.ptr == 0 {
		return errNullElement
	}
	if !gTypeCheckInstanceIsA(sink.ptr, gstVideoOverlayGetType()) {
		return fmt.Errorf("sink %q does not implement GstVideoOverlay", sink.name)
	}
	gstVideoOverlaySetWindow(sink.ptr, handle)
	return nil
}

// Playbin is a pipeline holding one playbin element.
type Playbin struct {
	pipeline uintptr
	playbin  uintptr
	bus      uintptr

	mu      sync.Mutex
	closed  bool
	watches []chan struct{}
	wg      sync.WaitGroup
}

// NewPlaybin builds a pipeline named name containing a playbin element,
// wired to the given sinks.
func NewPlaybin(name string, sinks Sinks) (*Playbin, error) {
	if err := requireRuntime(); err != nil {
		return nil, err
	}

	pipeline := gstPipelineNew(name)
	if pipeline == 0 {
		return nil, errors.New("gst_pipeline_new failed")
	}
	pb := gstElementFactoryMake("playbin", "playbin")
	if pb == 0 {
		gstObjectUnref(pipeline)
		return nil, fmt.Errorf("element factory %q: %w", "playbin", errNullElement)
	}
	if !gstBinAdd(pipeline, pb) {
		gstObjectUnref(pb)
		gstObjectUnref(pipeline)
		return nil, errors.New("gst_bin_add failed")
	}

	p := &Playbin{
		pipeline: pipeline,
		playbin:  pb,
		bus:      gstElementGetBus(pipeline),
	}

	if sinks.Video != nil {
		if err := setProperty(pb, PropVideoSink, sinks.Video); err != nil {
			_ = p.Close()
			return nil, err
		}
	}
	if sinks.Audio != nil {
		if err := setProperty(pb, PropAudioSink, sinks.Audio); err != nil {
			_ = p.Close()
			return nil, err
		}
	}
	return p, nil
}

// SetState requests a pipeline state change.
func (p *Playbin) SetState(s State) StateChangeReturn {
	return StateChangeReturn(gstElementSetState(p.pipeline, int32(s)))
}

// Seek issues a seek to target; it reports whether the event was handled.
func (p *Playbin) Seek(rate float64, format Format, flags SeekFlags, target int64) bool {
	return gstElementSeek(p.pipeline, rate, int32(format), int32(flags),
		seekTypeSet, target, seekTypeNone, -1)
}

// QueryPosition returns the current stream position.
func (p *Playbin) QueryPosition(format Format) (int64, bool) {
	var cur int64
	ok := gstElementQueryPosition(p.pipeline, int32(format), &cur)
	return cur, ok
}

// QueryDuration returns the stream duration.
func (p *Playbin) QueryDuration(format Format) (int64, bool) {
	var dur int64
	ok := gstElementQueryDuration(p.pipeline, int32(format), &dur)
	return dur, ok
}

// Property reads a playbin property.
func (p *Playbin) Property(name string) (any, error) {
	return getProperty(p.playbin, name)
}

// SetProperty writes a playbin property.
func (p *Playbin) SetProperty(name string, value any) error {
	return setProperty(p.playbin, name, value)
}

// StreamLanguage returns the human-readable language of a stream, falling
// back to the raw language code when GStreamer has no name for it.
func (p *Playbin) StreamLanguage(kind StreamKind, index int) (string, bool) {
	code, ok := emitTagsSignal(p.playbin, kind, index)
	if !ok {
		return "", false
	}
	if name := goString(gstTagGetLanguageName(code)); name != "" {
		return name, true
	}
	return code, true
}

// Watch starts a goroutine popping error, eos and async-done messages from
// the bus and passing them to fn. fn runs on the watcher goroutine. The
// returned function stops the watcher and waits for it.
func (p *Playbin) Watch(fn func(Message)) (stop func()) {
	p.mu.Lock()
	quit := make(chan struct{})
	if p.closed {
		p.mu.Unlock()
		return func() {}
	}
	p.watches = append(p.watches, quit)
	p.wg.Add(1)
	p.mu.Unlock()

	exited := make(chan struct{})
	go func() {
		defer p.wg.Done()
		defer close(exited)
		types := uint32(MessageError | MessageEOS | MessageAsyncDone)
		for {
			select {
			case <-quit:
				return
			default:
			}
			msg := gstBusTimedPopFiltered(p.bus, uint64(busPollTimeout), types)
			if msg == 0 {
				continue
			}
			m := decodeMessage(msg)
			gstMiniObjectUnref(msg)
			fn(m)
		}
	}()

	return func() {
		p.mu.Lock()
		for i, q := range p.watches {
			if q == quit {
				// Close has not claimed this watcher yet
				p.watches = append(p.watches[:i], p.watches[i+1:]...)
				close(quit)
				break
			}
		}
		p.mu.Unlock()
		<-exited
	}
}

// Close sets the pipeline to NULL, stops watchers and releases it.
func (p *Playbin) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	watches := p.watches
	p.watches = nil
	p.mu.Unlock()

	for _, q := range watches {
		close(q)
	}
	p.wg.Wait()

	var err error
	if ret := p.SetState(StateNull); ret == StateChangeFailure {
		err = fmt.Errorf("set state NULL: %s", ret)
	}
	if p.bus != 0 {
		gstObjectUnref(p.bus)
	}
	gstObjectUnref(p.pipeline)
	return err
}

func decodeMessage(msg uintptr) Message {
	typ := *(*uint32)(unsafe.Add(unsafe.Pointer(msg), messageTypeOffset)) //nolint:govet // GstMessage
	m := Message{Type: MessageType(typ)}
	if m.Type != MessageError {
		return m
	}

	var gerr, debug uintptr
	gstMessageParseError(msg, &gerr, &debug)
	if gerr != 0 {
		// GError: guint32 domain, gint code, gchar *message
		base := unsafe.Pointer(gerr) //nolint:govet // GError
		domain := *(*uint32)(base)
		m.Code = errorCode(goString(gQuarkToString(domain)))
		m.Text = goString(*(*uintptr)(unsafe.Add(base, 8)))
		gErrorFree(gerr)
	}
	if debug != 0 {
		m.Debug = goString(debug)
		gFree(debug)
	}
	return m
}
