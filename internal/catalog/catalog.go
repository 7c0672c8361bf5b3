// Package catalog implements the in-memory catalog tree and its lifecycle
// against the persistent store.
package catalog

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/starford/procyon/internal/store"
)

const infoMaxLen = 100

// Catalog is the root aggregate: the open forest of folders and memos backed
// by one store. It exclusively owns every item; no item outlives its catalog.
type Catalog struct {
	store store.Provider
	log   *slog.Logger

	items      []*Item
	allFolders map[int64]*Item
	allMemos   map[int64]*Item
}

// Open reads the backing catalog file and reconstructs the forest. Warnings
// (e.g. memos referencing a vanished folder) are returned but do not fail the
// open; the affected memos are discarded from the tree.
func Open(path string, log *slog.Logger) (*Catalog, []string, error) {
	p, err := store.Open(path)
	if err != nil {
		return nil, nil, err
	}
	c, warnings, err := Load(p, log)
	if err != nil {
		p.Close()
		return nil, nil, err
	}
	return c, warnings, nil
}

// Create makes a new, empty catalog file and an empty forest bound to it.
func Create(path string, log *slog.Logger) (*Catalog, error) {
	p, err := store.Create(path)
	if err != nil {
		return nil, err
	}
	return newCatalog(p, log), nil
}

// Load reconstructs the forest from an already-open provider: folders first,
// indexed by id, then memos attached to their folder (or the top level when
// the folder id is zero). A memo referencing a missing folder is dropped with
// a warning. Exposed so tests can load from a stub provider.
func Load(p store.Provider, log *slog.Logger) (*Catalog, []string, error) {
	c := newCatalog(p, log)

	folders, folderWarnings, err := p.Folders().SelectAll()
	if err != nil {
		return nil, nil, err
	}
	warnings := folderWarnings

	for i := range folders {
		rec := &folders[i]
		c.allFolders[rec.ID] = &Item{id: rec.ID, kind: KindFolder, title: rec.Title, info: rec.Info}
	}
	for i := range folders {
		rec := &folders[i]
		item := c.allFolders[rec.ID]
		if rec.ParentID <= 0 {
			c.items = append(c.items, item)
			continue
		}
		parent, ok := c.allFolders[rec.ParentID]
		if !ok {
			warnings = append(warnings, fmt.Sprintf(
				"folder #%d refers to folder #%d but that is not found in the catalog", rec.ID, rec.ParentID))
			c.items = append(c.items, item)
			continue
		}
		item.parent = parent
		parent.children = append(parent.children, item)
	}

	memos, memoWarnings, err := p.Memos().SelectAll()
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, memoWarnings...)

	for i := range memos {
		rec := &memos[i]
		memoType, _ := ParseMemoType(rec.Type)
		item := &Item{id: rec.ID, kind: KindMemo, title: rec.Title, info: rec.Info, memoType: memoType}
		if rec.ParentID > 0 {
			parent, ok := c.allFolders[rec.ParentID]
			if !ok {
				warnings = append(warnings, fmt.Sprintf(
					"memo #%d is stored in folder #%d but that is not found in the catalog", rec.ID, rec.ParentID))
				continue
			}
			item.parent = parent
			parent.children = append(parent.children, item)
		} else {
			c.items = append(c.items, item)
		}
		c.allMemos[item.id] = item
	}

	for _, w := range warnings {
		c.log.Warn("catalog: load warning", slog.String("warning", w))
	}
	return c, warnings, nil
}

func newCatalog(p store.Provider, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{
		store:      p,
		log:        log,
		allFolders: make(map[int64]*Item),
		allMemos:   make(map[int64]*Item),
	}
}

// Path returns the backing catalog file path.
func (c *Catalog) Path() string { return c.store.Path() }

// Items returns the top-level item sequence.
func (c *Catalog) Items() []*Item { return c.items }

// Store exposes the backing provider (settings sub-store, counts).
func (c *Catalog) Store() store.Provider { return c.store }

// Close releases the forest and closes the backing store.
func (c *Catalog) Close() error {
	c.items = nil
	c.allFolders = make(map[int64]*Item)
	c.allMemos = make(map[int64]*Item)
	return c.store.Close()
}

// CreateFolder persists a new folder under parent (nil for top level), then
// inserts it into the tree. A store failure leaves the tree unmodified.
func (c *Catalog) CreateFolder(parent *Item, title string) (*Item, error) {
	rec := store.FolderRecord{ParentID: itemID(parent), Title: title}
	if err := c.store.Folders().Create(&rec); err != nil {
		return nil, err
	}
	item := &Item{id: rec.ID, kind: KindFolder, title: title, parent: parent}
	c.attach(item)
	c.allFolders[item.id] = item
	return item, nil
}

// RenameFolder persists the new title, then updates it in memory, so a failed
// rename leaves both representations on the old title.
func (c *Catalog) RenameFolder(item *Item, title string) error {
	if err := c.store.Folders().Rename(item.id, title); err != nil {
		return err
	}
	item.title = title
	return nil
}

// RemoveFolder persists the cascading deletion, then detaches the subtree and
// purges every descendant from the secondary indexes. Use MemoIDsUnder before
// calling to learn which memo ids go away.
func (c *Catalog) RemoveFolder(item *Item) error {
	if err := c.store.Folders().Remove(item.id); err != nil {
		return err
	}
	c.detach(item)
	c.purge(item)
	return nil
}

// MemoIDsUnder flattens the ids of all memos in the subtree rooted at item,
// for downstream cleanup of open editors and id caches.
func (c *Catalog) MemoIDsUnder(item *Item) []int64 {
	var ids []int64
	var walk func(*Item)
	walk = func(it *Item) {
		if it.IsMemo() {
			ids = append(ids, it.id)
			return
		}
		for _, child := range it.children {
			walk(child)
		}
	}
	walk(item)
	return ids
}

// CreateMemo persists a new memo under parent (nil for top level), assigning
// its id, then inserts it into the tree with its body resident.
func (c *Catalog) CreateMemo(parent *Item, memo *Memo) (*Item, error) {
	info := memoInfo(memo)
	rec := store.MemoRecord{
		ParentID: itemID(parent),
		Title:    memo.Title,
		Info:     info,
		Type:     memo.Type.Key(),
		Data:     memo.Data,
	}
	if err := c.store.Memos().Create(&rec); err != nil {
		return nil, err
	}
	memo.ID = rec.ID
	item := &Item{id: rec.ID, kind: KindMemo, title: memo.Title, info: info, parent: parent, memoType: memo.Type, memo: memo}
	c.attach(item)
	c.allMemos[item.id] = item
	return item, nil
}

// UpdateMemo persists the new body, then swaps it in atomically. On failure
// the new body is discarded and the old one stays intact. The memo's type is
// immutable: the item's type is kept regardless of memo.Type.
func (c *Catalog) UpdateMemo(item *Item, memo *Memo) error {
	memo.ID = item.id
	memo.Type = item.memoType
	info := memoInfo(memo)
	rec := store.MemoRecord{
		ID:       item.id,
		ParentID: itemID(item.parent),
		Title:    memo.Title,
		Info:     info,
		Type:     item.memoType.Key(),
		Data:     memo.Data,
	}
	if err := c.store.Memos().Update(&rec); err != nil {
		return err
	}
	item.memo = memo
	item.title = memo.Title
	item.info = info
	return nil
}

// LoadMemo fetches the body of a memo whose body is not yet resident. It is
// idempotent: a second call on a loaded item is a no-op. A failed load leaves
// the body unset, and the next access re-attempts it.
func (c *Catalog) LoadMemo(item *Item) error {
	if item.memo != nil {
		return nil
	}
	data, err := c.store.Memos().Load(item.id)
	if err != nil {
		return err
	}
	item.memo = &Memo{ID: item.id, Title: item.title, Type: item.memoType, Data: data}
	return nil
}

// RemoveMemo mirrors RemoveFolder for a single memo.
func (c *Catalog) RemoveMemo(item *Item) error {
	if err := c.store.Memos().Remove(item.id); err != nil {
		return err
	}
	c.detach(item)
	delete(c.allMemos, item.id)
	return nil
}

// FindMemoByID resolves a memo by id. An id <= 0 or an id absent from the
// index is a programming-consistency condition: it is logged and yields nil
// rather than an error, since stale ids legitimately survive UI round-trips.
func (c *Catalog) FindMemoByID(id int64) *Item {
	return c.findInIndex(c.allMemos, id)
}

// FindFolderByID resolves a folder by id with the same soft-failure policy.
func (c *Catalog) FindFolderByID(id int64) *Item {
	return c.findInIndex(c.allFolders, id)
}

func (c *Catalog) findInIndex(index map[int64]*Item, id int64) *Item {
	if id <= 0 {
		c.log.Error("catalog: invalid folder or memo id", slog.Int64("id", id))
		return nil
	}
	item, ok := index[id]
	if !ok {
		c.log.Error("catalog: inconsistent state, catalog does not contain folder or memo", slog.Int64("id", id))
		return nil
	}
	return item
}

// CountMemos delegates to the store aggregate count.
func (c *Catalog) CountMemos() (int, error) {
	return c.store.Memos().CountAll()
}

func (c *Catalog) attach(item *Item) {
	if item.parent != nil {
		item.parent.children = append(item.parent.children, item)
	} else {
		c.items = append(c.items, item)
	}
}

func (c *Catalog) detach(item *Item) {
	siblings := &c.items
	if item.parent != nil {
		siblings = &item.parent.children
	}
	if i := slices.Index(*siblings, item); i >= 0 {
		*siblings = slices.Delete(*siblings, i, i+1)
	}
	item.parent = nil
}

// purge removes the subtree rooted at item from both secondary indexes.
func (c *Catalog) purge(item *Item) {
	if item.IsMemo() {
		delete(c.allMemos, item.id)
		return
	}
	delete(c.allFolders, item.id)
	for _, child := range item.children {
		c.purge(child)
	}
}

func itemID(item *Item) int64 {
	if item == nil {
		return 0
	}
	return item.id
}

// memoInfo derives the cached excerpt shown next to the memo title: the first
// non-empty line of the body after the title line, clipped.
func memoInfo(memo *Memo) string {
	for _, line := range strings.Split(memo.Data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == memo.Title {
			continue
		}
		if runes := []rune(line); len(runes) > infoMaxLen {
			return string(runes[:infoMaxLen])
		}
		return line
	}
	return ""
}
