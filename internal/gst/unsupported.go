//go:build !(linux || darwin)

package gst

import "context"

// Runtime is unavailable on this platform.
type Runtime struct{}

// Init always fails with ErrUnsupported.
func Init(_ Config) (*Runtime, error) { return nil, ErrUnsupported }

// Invoke always fails with ErrUnsupported.
func (r *Runtime) Invoke(_ context.Context, _ func()) error { return ErrUnsupported }

// Shutdown is a no-op.
func (r *Runtime) Shutdown() {}

// Active always reports no runtime.
func Active() (*Runtime, bool) { return nil, false }

// MakeElement always fails with ErrUnsupported.
func MakeElement(_, _ string) (*Element, error) { return nil, ErrUnsupported }

// SetWindowHandle always fails with ErrUnsupported.
func SetWindowHandle(_ *Element, _ uintptr) error { return ErrUnsupported }

// Playbin is unavailable on this platform.
type Playbin struct{}

// NewPlaybin always fails with ErrUnsupported.
func NewPlaybin(_ string, _ Sinks) (*Playbin, error) { return nil, ErrUnsupported }

func (p *Playbin) SetState(_ State) StateChangeReturn { return StateChangeFailure }

func (p *Playbin) Seek(_ float64, _ Format, _ SeekFlags, _ int64) bool { return false }

func (p *Playbin) QueryPosition(_ Format) (int64, bool) { return 0, false }

func (p *Playbin) QueryDuration(_ Format) (int64, bool) { return 0, false }

func (p *Playbin) Property(_ string) (any, error) { return nil, ErrUnsupported }

func (p *Playbin) SetProperty(_ string, _ any) error { return ErrUnsupported }

func (p *Playbin) StreamLanguage(_ StreamKind, _ int) (string, bool) { return "", false }

func (p *Playbin) Watch(_ func(Message)) func() { return func() {} }

func (p *Playbin) Close() error { return nil }
