package state

import (
	"database/sql"
	"errors"
	"fmt"
)

// Setting keys.
const (
	keyLastPath       = "last_path"
	keyWindowGeometry = "window_geometry"
)

// Geometry is the last known size of the player window.
type Geometry struct {
	Width  int
	Height int
}

// GetSetting returns the value stored under key and whether it exists.
func (m *Manager) GetSetting(key string) (string, bool, error) {
	var value sql.NullString
	err := m.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value.String, value.Valid, nil
}

// SetSetting stores value under key.
func (m *Manager) SetSetting(key, value string) error {
	_, err := m.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// LastPath returns the last opened file or folder, empty on first run.
func (m *Manager) LastPath() (string, error) {
	path, _, err := m.GetSetting(keyLastPath)
	return path, err
}

// SaveLastPath remembers path for the next file chooser.
func (m *Manager) SaveLastPath(path string) error {
	return m.SetSetting(keyLastPath, path)
}

// WindowGeometry returns the saved geometry, or nil if none was saved.
func (m *Manager) WindowGeometry() (*Geometry, error) {
	raw, ok, err := m.GetSetting(keyWindowGeometry)
	if err != nil || !ok {
		return nil, err
	}
	var g Geometry
	if _, err := fmt.Sscanf(raw, "%dx%d", &g.Width, &g.Height); err != nil {
		return nil, fmt.Errorf("parse geometry %q: %w", raw, err)
	}
	return &g, nil
}

// SaveWindowGeometry records the window size.
func (m *Manager) SaveWindowGeometry(g Geometry) error {
	return m.SetSetting(keyWindowGeometry, fmt.Sprintf("%dx%d", g.Width, g.Height))
}
