package state

import (
	"database/sql"
	"errors"
	"time"
)

// Position returns the saved resume point of source and whether one exists.
// Positions still waiting for the debounce are returned too.
func (m *Manager) Position(source string) (time.Duration, bool, error) {
	m.saveMu.Lock()
	pos, pending := m.pending[source]
	m.saveMu.Unlock()
	if pending {
		return pos, true, nil
	}
	return getPosition(m.db, source)
}

// ClearPosition forgets the resume point of source, e.g. once it has been
// played to the end.
func (m *Manager) ClearPosition(source string) error {
	m.saveMu.Lock()
	delete(m.pending, source)
	m.saveMu.Unlock()

	_, err := m.db.Exec(`DELETE FROM positions WHERE source = ?`, source)
	return err
}

func getPosition(db *sql.DB, source string) (time.Duration, bool, error) {
	var ms int64
	err := db.QueryRow(`SELECT position_ms FROM positions WHERE source = ?`, source).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return time.Duration(ms) * time.Millisecond, true, nil
}

func savePositions(db *sql.DB, positions map[string]time.Duration, now time.Time) error {
	return withTx(db, func(tx *sql.Tx) error {
		for source, pos := range positions {
			_, err := tx.Exec(`
				INSERT INTO positions (source, position_ms, updated_at)
				VALUES (?, ?, ?)
				ON CONFLICT(source) DO UPDATE SET
					position_ms = excluded.position_ms,
					updated_at = excluded.updated_at
			`, source, pos.Milliseconds(), now.Unix())
			if err != nil {
				return err
			}
		}
		return nil
	})
}
