package playbin

import (
	"errors"
	"sync"

	"github.com/llehouerou/playbin/internal/gst"
)

// SeekCall records one Seek on a MockPipeline.
type SeekCall struct {
	Rate   float64
	Format gst.Format
	Flags  gst.SeekFlags
	Target int64
}

// MockPipeline is a test double for Pipeline. Messages are delivered with
// Emit, which calls the watcher synchronously on the caller's goroutine.
type MockPipeline struct {
	mu sync.Mutex

	results    map[gst.State][]gst.StateChangeReturn
	seekResult bool
	position   int64
	positionOK bool
	duration   int64
	durationOK bool
	props      map[string]any
	languages  map[gst.StreamKind][]string

	stateCalls []gst.State
	seekCalls  []SeekCall
	propCalls  []string

	watcher func(gst.Message)
	closed  bool
}

// NewMockPipeline creates a mock whose state changes succeed immediately
// and whose seeks are accepted.
func NewMockPipeline() *MockPipeline {
	return &MockPipeline{
		results:    make(map[gst.State][]gst.StateChangeReturn),
		seekResult: true,
		props: map[string]any{
			gst.PropFlags:        uint32(gst.PlayFlagVideo | gst.PlayFlagAudio),
			gst.PropURI:          "",
			gst.PropSubURI:       "",
			gst.PropCurrentText:  -1,
			gst.PropCurrentAudio: -1,
			"n-text":             0,
			"n-audio":            0,
		},
		languages: make(map[gst.StreamKind][]string),
	}
}

// QueueState makes the next SetState(target) calls return results in order.
// Once the queue is empty, SetState returns success.
func (m *MockPipeline) QueueState(target gst.State, results ...gst.StateChangeReturn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[target] = append(m.results[target], results...)
}

// SetSeekResult sets the value returned by Seek.
func (m *MockPipeline) SetSeekResult(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekResult = ok
}

// SetPosition sets the position query answer.
func (m *MockPipeline) SetPosition(v int64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position, m.positionOK = v, ok
}

// SetDuration sets the duration query answer.
func (m *MockPipeline) SetDuration(v int64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration, m.durationOK = v, ok
}

// SetTracks sets the streams reported for kind. An empty language means
// the stream carries no language tag.
func (m *MockPipeline) SetTracks(kind gst.StreamKind, languages ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.languages[kind] = languages
	m.props[gst.CountProperty(kind)] = len(languages)
}

// Emit delivers msg to the watcher, as the bus thread would.
func (m *MockPipeline) Emit(msg gst.Message) {
	m.mu.Lock()
	fn := m.watcher
	m.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

// StateCalls returns the targets passed to SetState.
func (m *MockPipeline) StateCalls() []gst.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]gst.State(nil), m.stateCalls...)
}

// SeekCalls returns the recorded seeks.
func (m *MockPipeline) SeekCalls() []SeekCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SeekCall(nil), m.seekCalls...)
}

// PropertyWrites returns the names of written properties, in order.
func (m *MockPipeline) PropertyWrites() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.propCalls...)
}

// Closed reports whether Close was called.
func (m *MockPipeline) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockPipeline) SetState(target gst.State) gst.StateChangeReturn {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateCalls = append(m.stateCalls, target)
	if q := m.results[target]; len(q) > 0 {
		m.results[target] = q[1:]
		return q[0]
	}
	return gst.StateChangeSuccess
}

func (m *MockPipeline) Seek(rate float64, format gst.Format, flags gst.SeekFlags, target int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, SeekCall{Rate: rate, Format: format, Flags: flags, Target: target})
	return m.seekResult
}

func (m *MockPipeline) QueryPosition(_ gst.Format) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position, m.positionOK
}

func (m *MockPipeline) QueryDuration(_ gst.Format) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration, m.durationOK
}

func (m *MockPipeline) Property(name string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.props[name]
	if !ok {
		return nil, errors.New("no property " + name)
	}
	return v, nil
}

func (m *MockPipeline) SetProperty(name string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.props[name]; !ok {
		return errors.New("no property " + name)
	}
	m.props[name] = value
	m.propCalls = append(m.propCalls, name)
	return nil
}

func (m *MockPipeline) StreamLanguage(kind gst.StreamKind, index int) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	langs := m.languages[kind]
	if index < 0 || index >= len(langs) || langs[index] == "" {
		return "", false
	}
	return langs[index], true
}

func (m *MockPipeline) Watch(fn func(gst.Message)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watcher = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.watcher = nil
	}
}

func (m *MockPipeline) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Verify MockPipeline implements Pipeline at compile time.
var _ Pipeline = (*MockPipeline)(nil)

// MockBuilder returns a Builder that always hands out pipe.
func MockBuilder(pipe Pipeline) Builder {
	return func(BuildSpec) (Pipeline, error) { return pipe, nil }
}
