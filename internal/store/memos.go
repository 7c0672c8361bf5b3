package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/procyon/internal/apperr"
)

var knownTypes = map[string]struct{}{
	TypePlainText: {},
	TypeWikiText:  {},
	TypeRichText:  {},
}

type memoManager struct {
	conn *sql.DB
}

// SelectAll enumerates memo records without bodies. An unknown type value is
// degraded to plain text with a warning rather than failing the whole load.
func (m *memoManager) SelectAll() ([]MemoRecord, []string, error) {
	rows, err := m.conn.Query(`SELECT id, parent_id, title, info, type FROM memo ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("store: select memos: %w: %v", apperr.ErrStore, err)
	}
	defer rows.Close()

	var out []MemoRecord
	var warnings []string
	for rows.Next() {
		var rec MemoRecord
		if err := rows.Scan(&rec.ID, &rec.ParentID, &rec.Title, &rec.Info, &rec.Type); err != nil {
			return nil, nil, fmt.Errorf("store: scan memo: %w: %v", apperr.ErrStore, err)
		}
		if _, ok := knownTypes[rec.Type]; !ok {
			warnings = append(warnings, fmt.Sprintf("memo #%d has unknown type %q, treated as plain text", rec.ID, rec.Type))
			rec.Type = TypePlainText
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("store: select memos: %w: %v", apperr.ErrStore, err)
	}
	return out, warnings, nil
}

func (m *memoManager) Create(rec *MemoRecord) error {
	res, err := m.conn.Exec(`INSERT INTO memo (parent_id, title, info, type, data) VALUES (?, ?, ?, ?, ?)`,
		rec.ParentID, rec.Title, rec.Info, rec.Type, rec.Data)
	if err != nil {
		return fmt.Errorf("store: create memo: %w: %v", apperr.ErrStore, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: memo id: %w: %v", apperr.ErrStore, err)
	}
	rec.ID = id
	return nil
}

func (m *memoManager) Update(rec *MemoRecord) error {
	res, err := m.conn.Exec(`UPDATE memo SET title = ?, info = ?, type = ?, data = ? WHERE id = ?`,
		rec.Title, rec.Info, rec.Type, rec.Data, rec.ID)
	if err != nil {
		return fmt.Errorf("store: update memo #%d: %w: %v", rec.ID, apperr.ErrStore, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: update memo #%d: %w: no such memo", rec.ID, apperr.ErrStore)
	}
	return nil
}

func (m *memoManager) Remove(id int64) error {
	res, err := m.conn.Exec(`DELETE FROM memo WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: remove memo #%d: %w: %v", id, apperr.ErrStore, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: remove memo #%d: %w: no such memo", id, apperr.ErrStore)
	}
	return nil
}

func (m *memoManager) Load(id int64) (string, error) {
	var data string
	err := m.conn.QueryRow(`SELECT data FROM memo WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("store: load memo #%d: %w: no such memo", id, apperr.ErrStore)
	}
	if err != nil {
		return "", fmt.Errorf("store: load memo #%d: %w: %v", id, apperr.ErrStore, err)
	}
	return data, nil
}

func (m *memoManager) CountAll() (int, error) {
	var count int
	if err := m.conn.QueryRow(`SELECT COUNT(*) FROM memo`).Scan(&count); err != nil {
		return 0, fmt.Errorf("store: count memos: %w: %v", apperr.ErrStore, err)
	}
	return count, nil
}
