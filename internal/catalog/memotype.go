package catalog

import "github.com/starford/procyon/internal/store"

// MemoType selects a memo's serialization and highlighting behavior.
// It is immutable after the memo is created.
type MemoType int

const (
	PlainText MemoType = iota
	WikiText
	RichText
)

// String returns the display name of the type.
func (t MemoType) String() string {
	switch t {
	case WikiText:
		return "Wiki Text"
	case RichText:
		return "Rich Text"
	default:
		return "Plain Text"
	}
}

// Key returns the stable name used in the store and over the wire.
func (t MemoType) Key() string {
	switch t {
	case WikiText:
		return store.TypeWikiText
	case RichText:
		return store.TypeRichText
	default:
		return store.TypePlainText
	}
}

// ParseMemoType resolves a stable type name. Unknown names report false and
// yield plain text, the safe default for display.
func ParseMemoType(key string) (MemoType, bool) {
	switch key {
	case store.TypePlainText:
		return PlainText, true
	case store.TypeWikiText:
		return WikiText, true
	case store.TypeRichText:
		return RichText, true
	default:
		return PlainText, false
	}
}

// MemoTypes lists every supported type in display order.
func MemoTypes() []MemoType {
	return []MemoType{PlainText, WikiText, RichText}
}
