package state

import (
	"sync"
	"time"
)

// Mock is a test double for Manager.
type Mock struct {
	mu        sync.Mutex
	lastPath  string
	geometry  *Geometry
	positions map[string]time.Duration
	closed    bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{positions: make(map[string]time.Duration)}
}

func (m *Mock) LastPath() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPath, nil
}

func (m *Mock) SaveLastPath(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPath = path
	return nil
}

func (m *Mock) WindowGeometry() (*Geometry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.geometry, nil
}

func (m *Mock) SaveWindowGeometry(g Geometry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.geometry = &g
	return nil
}

func (m *Mock) Position(source string) (time.Duration, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pos, ok := m.positions[source]
	return pos, ok, nil
}

func (m *Mock) SavePosition(source string, position time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[source] = position
}

func (m *Mock) ClearPosition(source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.positions, source)
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
