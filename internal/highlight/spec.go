// Package highlight implements the declarative syntax-highlighter rule
// engine: spec loading, per-block matching with multi-line state, and the
// spec registry.
package highlight

import (
	"regexp"
	"strings"
)

// SpecExt is the highlighter spec file suffix.
const SpecExt = ".phl"

// Meta identifies a highlighter spec without loading its rules.
type Meta struct {
	// Name is the stable identifier of the spec. It is the one mandatory
	// top-level property.
	Name string
	// Title is the optional human-readable name.
	Title string
	// Source is where the spec was loaded from (a file path for DirStorage).
	Source string
	// Storage is the storage the spec came from.
	Storage Storage
}

// DisplayTitle returns the title, falling back to the name.
func (m Meta) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

// Format is the character formatting a rule applies to its matches.
type Format struct {
	// Color and Back are foreground/background colors, kept in their
	// validated source notation (hex or SVG keyword).
	Color string
	Back  string

	Bold      bool
	Italic    bool
	Underline bool
	Strikeout bool

	// Hyperlink marks matches as anchors; the matched text becomes the
	// anchor reference on the emitted span.
	Hyperlink bool

	// FontSizeDelta is added to the consumer's base font size at
	// format-apply time, not at spec-load time.
	FontSizeDelta int
}

// Rule is one highlighter pattern plus its formatting.
type Rule struct {
	Name string
	// Exprs are the compiled patterns. For a multiline rule exactly two:
	// start and end.
	Exprs []*regexp.Regexp
	// Terms, when set, were expanded into word-boundary Exprs. Mutually
	// exclusive with explicit expressions.
	Terms  []string
	Format Format
	// Group selects the capture group whose span is formatted.
	Group int
	// Multiline carries the match across blocks via the block state.
	Multiline bool
}

// Spec is a compiled highlighter rule set.
type Spec struct {
	Meta  Meta
	Rules []Rule

	// Code and Sample hold the raw rule text and the trailing sample text,
	// populated only when the spec was loaded with raw data for editing.
	Code   string
	Sample string
}

// StorableString renders the spec back to its on-disk form.
func (s *Spec) StorableString() string {
	return strings.TrimSpace(s.Code) + "\n\n---\n" + strings.TrimSpace(s.Sample)
}
