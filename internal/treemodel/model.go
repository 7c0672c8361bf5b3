// Package treemodel provides the navigational view over a catalog tree that
// a UI tree control binds to: row/parent/child resolution plus structural
// change notifications.
package treemodel

import (
	"slices"

	"github.com/starford/procyon/internal/catalog"
)

// Path is a structural position in the visible tree: the sequence of sibling
// indices from the root. A nil Path is the invalid position (also used as
// the root for child resolution).
type Path []int

// IsValid reports whether the path points at an item.
func (p Path) IsValid() bool { return len(p) > 0 }

// Row returns the item's row within its parent, or -1 for the invalid path.
func (p Path) Row() int {
	if !p.IsValid() {
		return -1
	}
	return p[len(p)-1]
}

// EventKind enumerates structural change notifications.
type EventKind int

const (
	// Inserted is announced after the item already exists in the tree,
	// so the row reflects the post-insert sibling sequence.
	Inserted EventKind = iota
	// AboutToRemove is announced before the item leaves the tree, at its
	// pre-removal position.
	AboutToRemove
	// Removed is announced after the removal completed.
	Removed
	// Renamed is announced for a title change; the position is unchanged.
	Renamed
)

// Event describes one structural change for registered listeners.
type Event struct {
	Kind   EventKind
	Parent Path
	Row    int
	ID     int64
}

// Listener receives structural change events in announcement order.
type Listener func(Event)

// Model adapts a catalog for tree-shaped navigation. It holds a non-owning
// reference to the catalog and must not outlive it.
type Model struct {
	cat       *catalog.Catalog
	listeners []Listener
}

// New creates a model over an open catalog.
func New(cat *catalog.Catalog) *Model {
	return &Model{cat: cat}
}

// Subscribe registers a listener for structural change events.
func (m *Model) Subscribe(l Listener) {
	m.listeners = append(m.listeners, l)
}

func (m *Model) notify(e Event) {
	for _, l := range m.listeners {
		l(e)
	}
}

// childrenAt returns the sibling sequence addressed by parent: the top-level
// items for the root path, a folder's children otherwise, nil for memos or
// unresolvable paths.
func (m *Model) childrenAt(parent Path) []*catalog.Item {
	if !parent.IsValid() {
		return m.cat.Items()
	}
	item := m.ItemAt(parent)
	if item == nil || !item.IsFolder() {
		return nil
	}
	return item.Children()
}

// ItemAt resolves a path to its item, or nil when any step is out of range.
func (m *Model) ItemAt(p Path) *catalog.Item {
	items := m.cat.Items()
	var item *catalog.Item
	for _, row := range p {
		if row < 0 || row >= len(items) {
			return nil
		}
		item = items[row]
		items = item.Children()
	}
	return item
}

// Index resolves the nth child of parent. Out-of-range rows yield the invalid
// path; UI controls probe ranges during layout, so this never panics.
func (m *Model) Index(row int, parent Path) Path {
	children := m.childrenAt(parent)
	if row < 0 || row >= len(children) {
		return nil
	}
	return append(slices.Clone(parent), row)
}

// Parent returns the position of the child's owning folder.
func (m *Model) Parent(child Path) Path {
	if len(child) <= 1 {
		return nil
	}
	return slices.Clone(child[:len(child)-1])
}

// RowCount returns the child count of parent: top-level items for the root,
// 0 for memo leaves and unresolvable positions.
func (m *Model) RowCount(parent Path) int {
	return len(m.childrenAt(parent))
}

// FindIndex locates an item's structural position by depth-first search,
// translating a domain item back into a UI position after a mutation.
func (m *Model) FindIndex(item *catalog.Item) Path {
	return m.findIndex(item, nil)
}

func (m *Model) findIndex(item *catalog.Item, parent Path) Path {
	children := m.childrenAt(parent)
	for row, child := range children {
		current := append(slices.Clone(parent), row)
		if child == item {
			return current
		}
		if found := m.findIndex(item, current); found.IsValid() {
			return found
		}
	}
	return nil
}

// ItemAdded announces the insertion of the last child of parent. The item
// must already be in the tree: the row is recomputed as RowCount-1 under the
// append-at-end policy. Returns the new item's position.
func (m *Model) ItemAdded(parent Path) Path {
	row := m.RowCount(parent) - 1
	child := m.Index(row, parent)
	var id int64
	if item := m.ItemAt(child); item != nil {
		id = item.ID()
	}
	m.notify(Event{Kind: Inserted, Parent: slices.Clone(parent), Row: row, ID: id})
	return child
}

// ItemRenamed announces a data change for the single affected row.
func (m *Model) ItemRenamed(p Path) {
	var id int64
	if item := m.ItemAt(p); item != nil {
		id = item.ID()
	}
	m.notify(Event{Kind: Renamed, Parent: m.Parent(p), Row: p.Row(), ID: id})
}

// RemoveGuard brackets a removal: AboutToRemove is announced on creation at
// the pre-removal position, the caller performs the removal, then End
// announces Removed. The pairing must not be skipped or the consuming tree
// control is left corrupted.
type RemoveGuard struct {
	model  *Model
	parent Path
	row    int
	id     int64
}

// BeginRemove announces the upcoming removal of the item at p.
func (m *Model) BeginRemove(p Path) *RemoveGuard {
	g := &RemoveGuard{model: m, parent: m.Parent(p), row: p.Row()}
	if item := m.ItemAt(p); item != nil {
		g.id = item.ID()
	}
	m.notify(Event{Kind: AboutToRemove, Parent: g.parent, Row: g.row, ID: g.id})
	return g
}

// End announces that the removal completed.
func (g *RemoveGuard) End() {
	g.model.notify(Event{Kind: Removed, Parent: g.parent, Row: g.row, ID: g.id})
}
