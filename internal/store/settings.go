package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/procyon/internal/apperr"
)

type settingsManager struct {
	conn *sql.DB
}

// ReadValue returns the stored value for key, or def when the key is absent.
func (m *settingsManager) ReadValue(key, def string) (string, error) {
	var value string
	err := m.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("store: read setting %q: %w: %v", key, apperr.ErrStore, err)
	}
	return value, nil
}

func (m *settingsManager) WriteValue(key, value string) error {
	_, err := m.conn.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("store: write setting %q: %w: %v", key, apperr.ErrStore, err)
	}
	return nil
}
