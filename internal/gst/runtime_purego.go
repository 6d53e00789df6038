//go:build linux || darwin

package gst

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// Runtime is the process-wide GStreamer handle. It owns a worker goroutine
// locked to one OS thread; work that must run on the framework's thread
// (pipeline construction on some platforms) goes through Invoke.
type Runtime struct {
	log   *logrus.Entry
	calls chan func()
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once
}

var (
	activeMu sync.Mutex
	active   *Runtime
)

// Init loads the native libraries, initializes GStreamer on a dedicated
// thread and returns the runtime. Call it once at startup; a second call
// before Shutdown fails with ErrAlreadyInitialized.
func Init(cfg Config) (*Runtime, error) {
	activeMu.Lock()
	defer activeMu.Unlock()
	if active != nil {
		return nil, ErrAlreadyInitialized
	}

	if err := loadLibraries(cfg); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = discardLogger()
	}

	rt := &Runtime{
		log:   log.WithField("component", "gst"),
		calls: make(chan func()),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}

	initErr := make(chan error, 1)
	go rt.worker(initErr)
	if err := <-initErr; err != nil {
		return nil, err
	}

	active = rt
	rt.log.Debug("runtime started")
	return rt, nil
}

func (r *Runtime) worker(initErr chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(r.done)

	if !gstInitCheck(0, 0, 0) {
		initErr <- errors.New("gst_init_check failed")
		return
	}
	initErr <- nil

	for {
		select {
		case fn := <-r.calls:
			fn()
		case <-r.quit:
			return
		}
	}
}

// Invoke runs fn on the runtime thread and waits for it to return.
func (r *Runtime) Invoke(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	call := func() {
		defer close(finished)
		fn()
	}
	select {
	case r.calls <- call:
	case <-r.quit:
		return ErrNotInitialized
	case <-ctx.Done():
		return ctx.Err()
	}
	// Once accepted the call runs to completion; waiting is not optional
	<-finished
	return nil
}

// Shutdown stops the runtime thread. Sessions must be closed first.
func (r *Runtime) Shutdown() {
	r.once.Do(func() {
		close(r.quit)
		<-r.done

		activeMu.Lock()
		if active == r {
			active = nil
		}
		activeMu.Unlock()
		r.log.Debug("runtime stopped")
	})
}

// Active returns the running runtime, if any.
func Active() (*Runtime, bool) {
	activeMu.Lock()
	defer activeMu.Unlock()
	return active, active != nil
}

func requireRuntime() error {
	if _, ok := Active(); !ok {
		return ErrNotInitialized
	}
	return nil
}
