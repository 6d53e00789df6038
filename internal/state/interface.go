package state

import "time"

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	LastPath() (string, error)
	SaveLastPath(path string) error
	WindowGeometry() (*Geometry, error)
	SaveWindowGeometry(g Geometry) error
	Position(source string) (time.Duration, bool, error)
	SavePosition(source string, position time.Duration)
	ClearPosition(source string) error
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
