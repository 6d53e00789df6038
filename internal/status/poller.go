// Package status polls a playback session for its position so a display
// can follow it.
package status

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRunning is returned by Start while a previous poll is still running.
var ErrRunning = errors.New("poller already running")

// Source is what the poller reads. *playbin.Session satisfies it.
type Source interface {
	Position() (time.Duration, error)
	Duration() (time.Duration, error)
}

// Sample is one successful reading.
type Sample struct {
	Position time.Duration
	Duration time.Duration
}

// Progress returns the position as a fraction of the duration in [0, 1].
func (s Sample) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return min(1, max(0, float64(s.Position)/float64(s.Duration)))
}

// Poller periodically reads a Source on its own goroutine.
type Poller struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Start polls src every interval and calls fn with each sample. Readings
// that fail are skipped rather than reported as zero. fn runs on the
// polling goroutine.
func (p *Poller) Start(ctx context.Context, src Source, interval time.Duration, fn func(Sample)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		return ErrRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if s, ok := read(src); ok {
					fn(s)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop cancels polling and returns once the polling goroutine has exited,
// so fn is never called after Stop returns. Stop on an idle poller is a
// no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if done == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether a poll is in progress.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done != nil
}

func read(src Source) (Sample, bool) {
	pos, err := src.Position()
	if err != nil {
		return Sample{}, false
	}
	dur, err := src.Duration()
	if err != nil {
		return Sample{}, false
	}
	return Sample{Position: pos, Duration: dur}, true
}
