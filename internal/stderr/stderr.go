//go:build !windows

// Package stderr captures output that GStreamer and its plugins write
// directly to file descriptor 2, bypassing Go's os.Stderr, so it does not
// corrupt the TUI. Captured lines are logged and offered to the UI.
package stderr

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
)

// Capture redirects fd 2 into a pipe until Stop is called.
type Capture struct {
	lines chan string
	log   *logrus.Entry

	origStderr int
	pipeRead   *os.File
	pipeWrite  *os.File
	done       chan struct{}
	stopOnce   sync.Once
}

// Start begins capturing stderr. It must be called before the native
// libraries are loaded, and log must not write to stderr. On error the
// program can continue uncaptured.
func Start(log *logrus.Entry) (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	// Save original stderr file descriptor
	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	// Redirect stderr (fd 2) to the pipe's write end
	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{
		lines:      make(chan string, 100),
		log:        log.WithField("component", "stderr"),
		origStderr: orig,
		pipeRead:   r,
		pipeWrite:  w,
		done:       make(chan struct{}),
	}
	go c.pump(r)
	return c, nil
}

func (c *Capture) pump(r io.Reader) {
	defer close(c.done)
	defer close(c.lines)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.log.Warn(line)
		select {
		case c.lines <- line:
		default:
			// Channel full, drop message to avoid blocking
		}
	}
}

// Lines delivers captured lines. It is closed after Stop.
func (c *Capture) Lines() <-chan string {
	return c.lines
}

// WriteOriginal writes directly to the original stderr, bypassing capture.
// Useful for fatal errors that must be visible even while the TUI runs.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = syscall.Write(c.origStderr, []byte(msg))
}

// Stop restores the original stderr and waits for pending lines.
func (c *Capture) Stop() {
	c.stopOnce.Do(func() {
		_ = syscall.Dup2(c.origStderr, int(os.Stderr.Fd()))
		_ = syscall.Close(c.origStderr)

		// Closing the write end lets the scanner drain and finish
		c.pipeWrite.Close()
		<-c.done
		c.pipeRead.Close()
	})
}
