package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "playbin"
	dbFileName   = "playbin.db"
	saveDebounce = 500 * time.Millisecond
)

type Manager struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   map[string]time.Duration // resume points waiting to be written
}

// Open opens the database under the XDG data directory.
func Open() (*Manager, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens the database at path; ":memory:" is accepted.
func OpenPath(path string) (*Manager, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db, pending: make(map[string]time.Duration)}, nil
}

func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.takePending()
	m.saveMu.Unlock()

	// Flush pending positions
	if len(pending) > 0 {
		_ = savePositions(m.db, pending, time.Now())
	}

	return m.db.Close()
}

// SavePosition records the resume point of source. Writes are debounced
// so it can be called on every status tick.
func (m *Manager) SavePosition(source string, position time.Duration) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending[source] = position

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.takePending()
		m.saveMu.Unlock()

		if len(pending) > 0 {
			_ = savePositions(m.db, pending, time.Now())
		}
	})
}

// takePending must be called with saveMu held.
func (m *Manager) takePending() map[string]time.Duration {
	pending := m.pending
	m.pending = make(map[string]time.Duration)
	return pending
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// withTx executes fn within a transaction.
func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
