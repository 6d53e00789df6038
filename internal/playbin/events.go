package playbin

// StateChange is emitted when a transition is confirmed by the pipeline.
type StateChange struct {
	Previous State
	Current  State
}

// TracksChange is emitted after a new source has been started and its
// tracks enumerated.
type TracksChange struct {
	Source    string
	Subtitles []StreamTrack
	Audio     []StreamTrack
}

// ErrorEvent carries an error that no pending operation was waiting for.
type ErrorEvent struct {
	Err error
}

const eventBufferSize = 16

// Subscription provides event channels for a subscriber. Sends never
// block: events are dropped when a buffer is full.
type Subscription struct {
	StateChanged  <-chan StateChange
	TracksChanged <-chan TracksChange
	EndOfStream   <-chan struct{}
	Error         <-chan ErrorEvent
	Done          <-chan struct{}

	stateCh  chan StateChange
	tracksCh chan TracksChange
	eosCh    chan struct{}
	errorCh  chan ErrorEvent
	doneCh   chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:  make(chan StateChange, eventBufferSize),
		tracksCh: make(chan TracksChange, eventBufferSize),
		eosCh:    make(chan struct{}, eventBufferSize),
		errorCh:  make(chan ErrorEvent, eventBufferSize),
		doneCh:   make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.TracksChanged = s.tracksCh
	s.EndOfStream = s.eosCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
		// Drop if buffer full
	}
}

func (s *Subscription) sendTracks(e TracksChange) {
	select {
	case s.tracksCh <- e:
	default:
	}
}

func (s *Subscription) sendEndOfStream() {
	select {
	case s.eosCh <- struct{}{}:
	default:
	}
}

func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
