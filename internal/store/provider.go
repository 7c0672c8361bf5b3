// Package store implements the SQLite-backed persistent store behind a
// memo catalog file.
package store

// Memo type names as serialized in the memo table.
const (
	TypePlainText = "plain_text"
	TypeWikiText  = "wiki_text"
	TypeRichText  = "rich_text"
)

// FolderRecord is a row of the folder table.
type FolderRecord struct {
	ID       int64
	ParentID int64
	Title    string
	Info     string
}

// MemoRecord is a row of the memo table. SelectAll leaves Data empty;
// memo bodies are fetched individually via Load.
type MemoRecord struct {
	ID       int64
	ParentID int64
	Title    string
	Info     string
	Type     string
	Data     string
}

// Provider is the storage contract consumed by the catalog.
type Provider interface {
	Folders() FolderManager
	Memos() MemoManager
	Settings() SettingsManager
	// Path returns the catalog file path this store is bound to.
	Path() string
	Close() error
}

// FolderManager provides folder CRUD against the store.
type FolderManager interface {
	// SelectAll returns every folder record plus non-fatal warnings.
	SelectAll() ([]FolderRecord, []string, error)
	// Create inserts a folder and assigns its ID.
	Create(rec *FolderRecord) error
	Rename(id int64, title string) error
	// Remove deletes the folder and, transitively, every descendant
	// folder and memo.
	Remove(id int64) error
}

// MemoManager provides memo CRUD against the store.
type MemoManager interface {
	// SelectAll returns every memo record without bodies, plus non-fatal
	// warnings (e.g. an unknown memo type degraded to plain text).
	SelectAll() ([]MemoRecord, []string, error)
	// Create inserts a memo and assigns its ID.
	Create(rec *MemoRecord) error
	Update(rec *MemoRecord) error
	Remove(id int64) error
	// Load fetches the body of a single memo.
	Load(id int64) (string, error)
	CountAll() (int, error)
}

// SettingsManager persists string-keyed session values inside the catalog file.
type SettingsManager interface {
	ReadValue(key, def string) (string, error)
	WriteValue(key, value string) error
}

// Verify *Store satisfies Provider at compile time.
var _ Provider = (*Store)(nil)
