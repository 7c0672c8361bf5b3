package highlight

import (
	"regexp"
	"strings"
)

// StateNone is the block state carrying no active multi-line match. Any other
// state value is the index of the rule whose multi-line span is open.
const StateNone = -1

// DefaultBaseFontSize is used when the consuming document did not set one.
const DefaultBaseFontSize = 12

// Span is one formatted range of a block, in byte offsets.
type Span struct {
	Start  int
	Length int
	Format Format
	// Anchor is the matched text of a hyperlink rule, for later click
	// resolution by the consuming editor.
	Anchor string
	// FontSize is the absolute point size, resolved from the base font
	// size when the rule carries a delta; 0 means the default size.
	FontSize int
}

// Highlighter applies a compiled spec to text one block (line) at a time,
// carrying multi-line match state across blocks.
type Highlighter struct {
	spec *Spec
	// BaseFontSize is the document's default point size. Size-delta rules
	// resolve against it at apply time, so changing it rescales those
	// rules without reloading the spec.
	BaseFontSize int
}

// New creates a highlighter over a compiled spec.
func New(spec *Spec) *Highlighter {
	return &Highlighter{spec: spec, BaseFontSize: DefaultBaseFontSize}
}

// Spec returns the compiled spec the highlighter applies.
func (h *Highlighter) Spec() *Spec { return h.spec }

// HighlightBlock scans one block given the previous block's exit state and
// returns the format spans in application order (later spans overwrite
// earlier ones on overlap) plus this block's exit state.
func (h *Highlighter) HighlightBlock(text string, prevState int) ([]Span, int) {
	var spans []Span

	hasMultilines := false
	for i := range h.spec.Rules {
		rule := &h.spec.Rules[i]
		if rule.Multiline && len(rule.Exprs) >= 1 {
			hasMultilines = true
			continue
		}
		for _, expr := range rule.Exprs {
			h.scanSingleLine(text, rule, expr, &spans)
		}
	}

	state := StateNone
	if hasMultilines {
		offset := 0
		for i := range h.spec.Rules {
			rule := &h.spec.Rules[i]
			if !rule.Multiline {
				continue
			}
			offset = h.matchMultiline(text, rule, i, offset, prevState, &spans, &state)
			if offset < 0 {
				break
			}
		}
	}
	return spans, state
}

// scanSingleLine emits non-overlapping matches of one expression, leftmost
// first, resuming from the end of the previous match.
func (h *Highlighter) scanSingleLine(text string, rule *Rule, expr *regexp.Regexp, spans *[]Span) {
	offset := 0
	for {
		m := findSubmatchFrom(expr, text, offset)
		if m == nil {
			return
		}
		group := rule.Group
		if 2*group+1 >= len(m) || m[2*group] < 0 {
			// The selected capture group did not participate.
			offset = advance(offset, m[1])
			continue
		}
		pos, end := m[2*group], m[2*group+1]
		*spans = append(*spans, h.makeSpan(text, pos, end-pos, rule.Format))
		offset = advance(offset, end)
	}
}

// matchMultiline runs the two-phase scan of one multi-line rule. When the
// previous block ended inside this rule's span, the first scan looks for the
// end expression from offset 0. Returns the next scan offset, or -1 when the
// block ends inside the span (state is set to the rule index in that case).
func (h *Highlighter) matchMultiline(text string, rule *Rule, ruleIndex, initialOffset, prevState int, spans *[]Span, state *int) int {
	exprBeg, exprEnd := rule.Exprs[0], rule.Exprs[1]

	start := 0
	offset := initialOffset
	matchEnd := prevState == ruleIndex
	for {
		expr := exprBeg
		if matchEnd {
			expr = exprEnd
		}
		m := findFrom(expr, text, offset)
		if m == nil {
			if matchEnd {
				*spans = append(*spans, h.makeSpan(text, start, len(text)-start, rule.Format))
				*state = ruleIndex
				offset = -1
			}
			return offset
		}
		if matchEnd {
			*spans = append(*spans, h.makeSpan(text, start, m[1]-start, rule.Format))
			*state = StateNone
			matchEnd = false
		} else {
			start = m[0]
			matchEnd = true
		}
		offset = advance(offset, m[1])
	}
}

func (h *Highlighter) makeSpan(text string, pos, length int, format Format) Span {
	span := Span{Start: pos, Length: length, Format: format}
	if format.Hyperlink {
		span.Anchor = text[pos : pos+length]
	}
	if format.FontSizeDelta != 0 {
		span.FontSize = h.BaseFontSize + format.FontSizeDelta
	}
	return span
}

// HighlightAll processes a whole document top-to-bottom, threading the block
// state, and returns the spans per block.
func (h *Highlighter) HighlightAll(text string) [][]Span {
	blocks := strings.Split(text, "\n")
	out := make([][]Span, len(blocks))
	state := StateNone
	for i, block := range blocks {
		out[i], state = h.HighlightBlock(block, state)
	}
	return out
}

func findFrom(expr *regexp.Regexp, text string, offset int) []int {
	if offset > len(text) {
		return nil
	}
	m := expr.FindStringIndex(text[offset:])
	if m == nil {
		return nil
	}
	return []int{m[0] + offset, m[1] + offset}
}

func findSubmatchFrom(expr *regexp.Regexp, text string, offset int) []int {
	if offset > len(text) {
		return nil
	}
	m := expr.FindStringSubmatchIndex(text[offset:])
	if m == nil {
		return nil
	}
	out := make([]int, len(m))
	for i, v := range m {
		if v < 0 {
			out[i] = v
		} else {
			out[i] = v + offset
		}
	}
	return out
}

// advance returns the next scan offset after a match, always making progress
// even on a zero-length match.
func advance(offset, matchEnd int) int {
	if matchEnd > offset {
		return matchEnd
	}
	return offset + 1
}
