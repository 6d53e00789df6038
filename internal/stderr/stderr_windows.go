//go:build windows

// Package stderr provides a pass-through implementation for Windows, where
// the native libraries are not loaded.
package stderr

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Capture is inert on Windows.
type Capture struct {
	lines chan string
}

// Start returns an inert capture.
func Start(_ *logrus.Entry) (*Capture, error) {
	c := &Capture{lines: make(chan string)}
	close(c.lines)
	return c, nil
}

// Lines returns a closed channel.
func (c *Capture) Lines() <-chan string { return c.lines }

// WriteOriginal writes to stderr.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

// Stop is a no-op on Windows.
func (c *Capture) Stop() {}
