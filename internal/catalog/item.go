package catalog

import "strings"

// Kind discriminates the two item variants of the catalog forest.
type Kind int

const (
	KindFolder Kind = iota
	KindMemo
)

// Memo is a loaded memo body. Updating a memo swaps in a whole new Memo
// value; a failed update leaves the old one in place.
type Memo struct {
	ID    int64
	Title string
	Type  MemoType
	Data  string
}

// Item is a node of the catalog forest: a folder with ordered children, or a
// memo leaf with a lazily-loaded body. Shared fields live in the common
// record; kind-specific fields are only meaningful for the matching kind.
// The parent pointer is a non-owning back-reference; ownership edges run
// parent to children only.
type Item struct {
	id     int64
	kind   Kind
	title  string
	info   string
	parent *Item

	// folders only
	children []*Item

	// memos only
	memoType MemoType
	memo     *Memo // nil until loaded
}

func (it *Item) ID() int64     { return it.id }
func (it *Item) Kind() Kind    { return it.kind }
func (it *Item) Title() string { return it.title }
func (it *Item) Info() string  { return it.info }
func (it *Item) Parent() *Item { return it.parent }

func (it *Item) IsFolder() bool { return it.kind == KindFolder }
func (it *Item) IsMemo() bool   { return it.kind == KindMemo }

// Children returns the ordered child sequence of a folder, nil for memos.
func (it *Item) Children() []*Item { return it.children }

// Type returns the memo type; meaningless for folders.
func (it *Item) Type() MemoType { return it.memoType }

// Memo returns the loaded body, or nil when not yet loaded.
func (it *Item) Memo() *Memo { return it.memo }

// Path joins the titles of the item's ancestors with "/", root-first.
// The item's own title is not included.
func (it *Item) Path() string {
	var parts []string
	for p := it.parent; p != nil; p = p.parent {
		parts = append([]string{p.title}, parts...)
	}
	return strings.Join(parts, "/")
}
