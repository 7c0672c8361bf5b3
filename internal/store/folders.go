package store

import (
	"database/sql"
	"fmt"

	"github.com/starford/procyon/internal/apperr"
)

type folderManager struct {
	conn *sql.DB
}

func (m *folderManager) SelectAll() ([]FolderRecord, []string, error) {
	rows, err := m.conn.Query(`SELECT id, parent_id, title, info FROM folder ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("store: select folders: %w: %v", apperr.ErrStore, err)
	}
	defer rows.Close()

	var out []FolderRecord
	var warnings []string
	for rows.Next() {
		var rec FolderRecord
		if err := rows.Scan(&rec.ID, &rec.ParentID, &rec.Title, &rec.Info); err != nil {
			return nil, nil, fmt.Errorf("store: scan folder: %w: %v", apperr.ErrStore, err)
		}
		if rec.Title == "" {
			warnings = append(warnings, fmt.Sprintf("folder #%d has an empty title", rec.ID))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("store: select folders: %w: %v", apperr.ErrStore, err)
	}
	return out, warnings, nil
}

func (m *folderManager) Create(rec *FolderRecord) error {
	res, err := m.conn.Exec(`INSERT INTO folder (parent_id, title, info) VALUES (?, ?, ?)`,
		rec.ParentID, rec.Title, rec.Info)
	if err != nil {
		return fmt.Errorf("store: create folder: %w: %v", apperr.ErrStore, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: folder id: %w: %v", apperr.ErrStore, err)
	}
	rec.ID = id
	return nil
}

func (m *folderManager) Rename(id int64, title string) error {
	res, err := m.conn.Exec(`UPDATE folder SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return fmt.Errorf("store: rename folder #%d: %w: %v", id, apperr.ErrStore, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: rename folder #%d: %w: no such folder", id, apperr.ErrStore)
	}
	return nil
}

// Remove deletes the folder subtree in one transaction: all memos stored in
// the subtree first, then the folders themselves.
func (m *folderManager) Remove(id int64) error {
	tx, err := m.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w: %v", apperr.ErrStore, err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	const subtree = `
		WITH RECURSIVE subtree(id) AS (
			SELECT ?
			UNION ALL
			SELECT f.id FROM folder f JOIN subtree s ON f.parent_id = s.id
		)`

	if _, err := tx.Exec(subtree+` DELETE FROM memo WHERE parent_id IN (SELECT id FROM subtree)`, id); err != nil {
		return fmt.Errorf("store: remove folder memos: %w: %v", apperr.ErrStore, err)
	}
	res, err := tx.Exec(subtree+` DELETE FROM folder WHERE id IN (SELECT id FROM subtree)`, id)
	if err != nil {
		return fmt.Errorf("store: remove folder #%d: %w: %v", id, apperr.ErrStore, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: remove folder #%d: %w: no such folder", id, apperr.ErrStore)
	}

	return tx.Commit()
}
