// Package session persists application-level session state: the recent
// catalog list and the last open catalog.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// MaxRecentFiles bounds the recent catalog list.
const MaxRecentFiles = 24

// State is the on-disk session document.
type State struct {
	// RecentFiles is most-recently-used first, de-duplicated by exact path.
	RecentFiles []string `yaml:"recent_files"`
	LastCatalog string   `yaml:"last_catalog"`
}

// Store holds the session state bound to one YAML file.
type Store struct {
	path  string
	state State
}

// Load reads the session file. A missing file yields an empty session;
// loading is explicit and synchronous, and the caller decides when (and
// whether) to reopen the last catalog.
func Load(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("session: parse %s: %w", path, err)
	}
	return s, nil
}

// Save writes the state atomically: temp file, then rename.
func (s *Store) Save() error {
	data, err := yaml.Marshal(&s.state)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("session: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".procyon-session-*")
	if err != nil {
		return fmt.Errorf("session: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("session: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("session: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("session: rename: %w", err)
	}
	return nil
}

// AddRecent moves path to the front of the recent list, dropping any
// previous occurrence and trimming to the bound.
func (s *Store) AddRecent(path string) {
	s.state.RecentFiles = slices.DeleteFunc(s.state.RecentFiles, func(p string) bool {
		return p == path
	})
	s.state.RecentFiles = append([]string{path}, s.state.RecentFiles...)
	if len(s.state.RecentFiles) > MaxRecentFiles {
		s.state.RecentFiles = s.state.RecentFiles[:MaxRecentFiles]
	}
}

// RemoveRecent drops path from the recent list.
func (s *Store) RemoveRecent(path string) {
	s.state.RecentFiles = slices.DeleteFunc(s.state.RecentFiles, func(p string) bool {
		return p == path
	})
}

// ClearRecent empties the recent list.
func (s *Store) ClearRecent() {
	s.state.RecentFiles = nil
}

// PruneMissing drops recent entries whose files no longer exist and reports
// how many were removed.
func (s *Store) PruneMissing() int {
	before := len(s.state.RecentFiles)
	s.state.RecentFiles = slices.DeleteFunc(s.state.RecentFiles, func(p string) bool {
		_, err := os.Stat(p)
		return err != nil
	})
	return before - len(s.state.RecentFiles)
}

// RecentFiles returns the recent list, most recent first.
func (s *Store) RecentFiles() []string {
	return slices.Clone(s.state.RecentFiles)
}

// SetLastCatalog records the catalog to reopen on next start.
func (s *Store) SetLastCatalog(path string) { s.state.LastCatalog = path }

// LastCatalog returns the recorded last open catalog, empty when none.
func (s *Store) LastCatalog() string { return s.state.LastCatalog }
