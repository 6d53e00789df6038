//go:build !linux

package mpris

import "github.com/llehouerou/playbin/internal/playbin"

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ Player) (*Adapter, error) {
	return &Adapter{}, nil
}

// SetMedia is a no-op on non-Linux platforms.
func (a *Adapter) SetMedia(_ *Media) {}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}

// Follow is a no-op on non-Linux platforms.
func (a *Adapter) Follow(_ *playbin.Subscription) {}
