package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/procyon/internal/apperr"
)

// DefaultExt is the catalog file suffix.
const DefaultExt = ".enot"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS folder (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	parent_id INTEGER NOT NULL DEFAULT 0,
	title     TEXT NOT NULL DEFAULT '',
	info      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS memo (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	parent_id INTEGER NOT NULL DEFAULT 0,
	title     TEXT NOT NULL DEFAULT '',
	info      TEXT NOT NULL DEFAULT '',
	type      TEXT NOT NULL DEFAULT 'plain_text',
	data      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_folder_parent ON folder(parent_id);
CREATE INDEX IF NOT EXISTS idx_memo_parent ON memo(parent_id);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL DEFAULT ''
);
`

// EnsureExt appends the default catalog suffix when path lacks it.
func EnsureExt(path string) string {
	if strings.HasSuffix(path, DefaultExt) {
		return path
	}
	return path + DefaultExt
}

// Store wraps a SQLite connection bound to one catalog file.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens an existing catalog file. The file must exist.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("store: open %s: %w: %v", path, apperr.ErrIO, err)
	}
	return connect(path)
}

// Create makes a new, empty catalog file. The file must not exist yet.
func Create(path string) (*Store, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("store: create %s: %w: file already exists", path, apperr.ErrIO)
	}
	return connect(path)
}

func connect(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w: %v", apperr.ErrIO, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w: %v", apperr.ErrIO, err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w: %v", apperr.ErrIO, err)
	}
	return &Store{conn: conn, path: path}, nil
}

// Folders returns the folder manager.
func (s *Store) Folders() FolderManager { return &folderManager{conn: s.conn} }

// Memos returns the memo manager.
func (s *Store) Memos() MemoManager { return &memoManager{conn: s.conn} }

// Settings returns the settings manager.
func (s *Store) Settings() SettingsManager { return &settingsManager{conn: s.conn} }

// Path returns the catalog file path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
