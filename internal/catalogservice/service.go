// Package catalogservice exposes the catalog query surface consumed by the
// UI layer: id-based lookups and mutations, tree snapshots for model
// binding, and the recent-files list.
package catalogservice

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/starford/procyon/internal/apperr"
	"github.com/starford/procyon/internal/catalog"
	"github.com/starford/procyon/internal/session"
	"github.com/starford/procyon/internal/store"
	"github.com/starford/procyon/internal/treemodel"
)

// ItemNode is one node of a tree snapshot for model binding.
type ItemNode struct {
	ID       int64      `json:"id"`
	Title    string     `json:"title"`
	Info     string     `json:"info,omitempty"`
	IsFolder bool       `json:"is_folder"`
	Type     string     `json:"type,omitempty"`
	Children []ItemNode `json:"children,omitempty"`
}

// MemoDetail is the full representation of a memo, body included.
type MemoDetail struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
	Type  string `json:"type"`
	Info  string `json:"info,omitempty"`
	Text  string `json:"text"`
}

// FolderDetail describes a folder by id.
type FolderDetail struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Path      string `json:"path"`
	MemoCount int    `json:"memo_count"`
}

// CatalogInfo summarizes the open catalog. LastMemoID is the last memo read
// through GetMemo, persisted in the catalog's settings table; 0 when none.
type CatalogInfo struct {
	Open       bool   `json:"open"`
	Path       string `json:"path,omitempty"`
	FileName   string `json:"file_name,omitempty"`
	MemoCount  int    `json:"memo_count"`
	LastMemoID int64  `json:"last_memo_id,omitempty"`
}

// settingLastMemo is the per-catalog settings key holding the id of the most
// recently read memo.
const settingLastMemo = "last_memo"

// Service coordinates the catalog, its model adapter, and the session state.
// One catalog is open at a time; opening another closes the current one
// first. All operations run on the caller's goroutine.
type Service struct {
	log  *slog.Logger
	sess *session.Store

	cat       *catalog.Catalog
	model     *treemodel.Model
	listeners []treemodel.Listener
}

// NewService creates a service with no catalog open.
func NewService(sess *session.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{log: log, sess: sess}
}

// Subscribe registers a structural-change listener. Listeners survive
// catalog close/open cycles.
func (s *Service) Subscribe(l treemodel.Listener) {
	s.listeners = append(s.listeners, l)
	if s.model != nil {
		s.model.Subscribe(l)
	}
}

// OpenCatalog opens the catalog file at path, closing any current catalog
// first. Load warnings are logged and returned.
func (s *Service) OpenCatalog(_ context.Context, path string) ([]string, error) {
	if err := s.closeCatalog(false); err != nil {
		s.log.Warn("service: close before open failed", slog.String("error", err.Error()))
	}
	cat, warnings, err := catalog.Open(path, s.log)
	if err != nil {
		return nil, err
	}
	s.attachCatalog(cat)
	return warnings, nil
}

// NewCatalog creates a new catalog file at path, appending the default
// suffix when missing, and opens it.
func (s *Service) NewCatalog(_ context.Context, path string) (string, error) {
	if err := s.closeCatalog(false); err != nil {
		s.log.Warn("service: close before create failed", slog.String("error", err.Error()))
	}
	path = store.EnsureExt(path)
	cat, err := catalog.Create(path, s.log)
	if err != nil {
		return "", err
	}
	s.attachCatalog(cat)
	return path, nil
}

func (s *Service) attachCatalog(cat *catalog.Catalog) {
	s.cat = cat
	s.model = treemodel.New(cat)
	for _, l := range s.listeners {
		s.model.Subscribe(l)
	}
	s.sess.AddRecent(cat.Path())
	s.sess.SetLastCatalog(cat.Path())
	if err := s.sess.Save(); err != nil {
		s.log.Warn("service: save session failed", slog.String("error", err.Error()))
	}
	s.log.Info("catalog opened", slog.String("path", cat.Path()))
}

// CloseCatalog closes the open catalog on explicit user request and forgets
// it as the last catalog, so the next start comes up with nothing open.
// A no-op when nothing is open.
func (s *Service) CloseCatalog() error {
	return s.closeCatalog(true)
}

// Shutdown closes the open catalog at application exit. The last-catalog
// entry is left in place so the next start reopens it.
func (s *Service) Shutdown() error {
	return s.closeCatalog(false)
}

// closeCatalog destroys the model adapter, then the catalog. clearLast
// distinguishes an explicit close from shutdown and open-another-catalog
// paths, which both keep the remembered last catalog.
func (s *Service) closeCatalog(clearLast bool) error {
	if s.cat == nil {
		return nil
	}
	s.model = nil
	err := s.cat.Close()
	s.cat = nil
	if clearLast {
		s.sess.SetLastCatalog("")
		if saveErr := s.sess.Save(); saveErr != nil {
			s.log.Warn("service: save session failed", slog.String("error", saveErr.Error()))
		}
	}
	s.log.Info("catalog closed")
	return err
}

// IsOpen reports whether a catalog is open.
func (s *Service) IsOpen() bool { return s.cat != nil }

// Info summarizes the open catalog; MemoCount falls back to -1 when the
// store-level count fails.
func (s *Service) Info(_ context.Context) CatalogInfo {
	if s.cat == nil {
		return CatalogInfo{}
	}
	count, err := s.cat.CountMemos()
	if err != nil {
		s.log.Error("service: count memos failed", slog.String("error", err.Error()))
		count = -1
	}
	path := s.cat.Path()
	name := strings.TrimSuffix(filepath.Base(path), store.DefaultExt)
	return CatalogInfo{
		Open:       true,
		Path:       path,
		FileName:   name,
		MemoCount:  count,
		LastMemoID: s.lastMemoID(),
	}
}

// lastMemoID reads the persisted last-read memo id from the catalog settings.
// Unset or unparsable values yield 0.
func (s *Service) lastMemoID() int64 {
	raw, err := s.cat.Store().Settings().ReadValue(settingLastMemo, "")
	if err != nil {
		s.log.Warn("service: read last memo setting failed", slog.String("error", err.Error()))
		return 0
	}
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Tree returns a snapshot of the whole forest for model binding.
func (s *Service) Tree(_ context.Context) ([]ItemNode, error) {
	if s.cat == nil {
		return nil, fmt.Errorf("service: no catalog is open: %w", apperr.ErrNotFound)
	}
	return itemNodes(s.cat.Items()), nil
}

func itemNodes(items []*catalog.Item) []ItemNode {
	out := make([]ItemNode, 0, len(items))
	for _, item := range items {
		node := ItemNode{
			ID:       item.ID(),
			Title:    item.Title(),
			Info:     item.Info(),
			IsFolder: item.IsFolder(),
		}
		if item.IsMemo() {
			node.Type = item.Type().Key()
		} else {
			node.Children = itemNodes(item.Children())
		}
		out = append(out, node)
	}
	return out
}

// GetMemo returns a memo by id, lazily loading its body on first access.
func (s *Service) GetMemo(_ context.Context, id int64) (*MemoDetail, error) {
	item, err := s.findMemo(id)
	if err != nil {
		return nil, err
	}
	if err := s.cat.LoadMemo(item); err != nil {
		return nil, err
	}
	if err := s.cat.Store().Settings().WriteValue(settingLastMemo, strconv.FormatInt(id, 10)); err != nil {
		s.log.Warn("service: write last memo setting failed", slog.String("error", err.Error()))
	}
	return &MemoDetail{
		ID:    item.ID(),
		Title: item.Title(),
		Path:  item.Path(),
		Type:  item.Type().Key(),
		Info:  item.Info(),
		Text:  item.Memo().Data,
	}, nil
}

// GetFolder returns folder info by id, with the count of memos under it.
func (s *Service) GetFolder(_ context.Context, id int64) (*FolderDetail, error) {
	item, err := s.findFolder(id)
	if err != nil {
		return nil, err
	}
	return &FolderDetail{
		ID:        item.ID(),
		Title:     item.Title(),
		Path:      item.Path(),
		MemoCount: len(s.cat.MemoIDsUnder(item)),
	}, nil
}

// CreateFolder creates a folder under parentID (0 for top level) and
// announces the insertion.
func (s *Service) CreateFolder(_ context.Context, parentID int64, title string) (int64, error) {
	parent, err := s.resolveParent(parentID)
	if err != nil {
		return 0, err
	}
	item, err := s.cat.CreateFolder(parent, title)
	if err != nil {
		return 0, err
	}
	s.model.ItemAdded(s.model.FindIndex(parent))
	return item.ID(), nil
}

// RenameFolder renames a folder and announces the data change.
func (s *Service) RenameFolder(_ context.Context, id int64, title string) error {
	item, err := s.findFolder(id)
	if err != nil {
		return err
	}
	if err := s.cat.RenameFolder(item, title); err != nil {
		return err
	}
	s.model.ItemRenamed(s.model.FindIndex(item))
	return nil
}

// DeleteFolder removes a folder subtree and returns the ids of every memo
// that went with it, for downstream cleanup of open editors.
func (s *Service) DeleteFolder(_ context.Context, id int64) ([]int64, error) {
	item, err := s.findFolder(id)
	if err != nil {
		return nil, err
	}
	memoIDs := s.cat.MemoIDsUnder(item)
	guard := s.model.BeginRemove(s.model.FindIndex(item))
	removeErr := s.cat.RemoveFolder(item)
	guard.End()
	if removeErr != nil {
		return nil, removeErr
	}
	return memoIDs, nil
}

// CreateMemo creates a memo under parentID (0 for top level). An unknown
// type name degrades to plain text.
func (s *Service) CreateMemo(_ context.Context, parentID int64, title, typeKey, text string) (int64, error) {
	parent, err := s.resolveParent(parentID)
	if err != nil {
		return 0, err
	}
	memoType, ok := catalog.ParseMemoType(typeKey)
	if !ok && typeKey != "" {
		s.log.Warn("service: unknown memo type", slog.String("type", typeKey))
	}
	item, err := s.cat.CreateMemo(parent, &catalog.Memo{Title: title, Type: memoType, Data: text})
	if err != nil {
		return 0, err
	}
	s.model.ItemAdded(s.model.FindIndex(parent))
	return item.ID(), nil
}

// UpdateMemo swaps in a new memo body. The memo's type is immutable.
func (s *Service) UpdateMemo(_ context.Context, id int64, title, text string) error {
	item, err := s.findMemo(id)
	if err != nil {
		return err
	}
	if err := s.cat.UpdateMemo(item, &catalog.Memo{Title: title, Data: text}); err != nil {
		return err
	}
	s.model.ItemRenamed(s.model.FindIndex(item))
	return nil
}

// DeleteMemo removes a single memo.
func (s *Service) DeleteMemo(_ context.Context, id int64) error {
	item, err := s.findMemo(id)
	if err != nil {
		return err
	}
	guard := s.model.BeginRemove(s.model.FindIndex(item))
	removeErr := s.cat.RemoveMemo(item)
	guard.End()
	return removeErr
}

// MemoCount delegates to the store aggregate count.
func (s *Service) MemoCount(_ context.Context) (int, error) {
	if s.cat == nil {
		return 0, fmt.Errorf("service: no catalog is open: %w", apperr.ErrNotFound)
	}
	return s.cat.CountMemos()
}

// RecentFiles returns the recent catalog list, most recent first.
func (s *Service) RecentFiles(_ context.Context) []string {
	return s.sess.RecentFiles()
}

func (s *Service) findMemo(id int64) (*catalog.Item, error) {
	if s.cat == nil {
		return nil, fmt.Errorf("service: no catalog is open: %w", apperr.ErrNotFound)
	}
	item := s.cat.FindMemoByID(id)
	if item == nil {
		return nil, fmt.Errorf("service: memo #%d: %w", id, apperr.ErrNotFound)
	}
	return item, nil
}

func (s *Service) findFolder(id int64) (*catalog.Item, error) {
	if s.cat == nil {
		return nil, fmt.Errorf("service: no catalog is open: %w", apperr.ErrNotFound)
	}
	item := s.cat.FindFolderByID(id)
	if item == nil {
		return nil, fmt.Errorf("service: folder #%d: %w", id, apperr.ErrNotFound)
	}
	return item, nil
}

// resolveParent maps a parent id to its folder item; 0 means the top level.
func (s *Service) resolveParent(parentID int64) (*catalog.Item, error) {
	if s.cat == nil {
		return nil, fmt.Errorf("service: no catalog is open: %w", apperr.ErrNotFound)
	}
	if parentID == 0 {
		return nil, nil
	}
	item := s.cat.FindFolderByID(parentID)
	if item == nil {
		return nil, fmt.Errorf("service: folder #%d: %w", parentID, apperr.ErrNotFound)
	}
	return item, nil
}
