package highlight

import (
	"testing"
)

func compileSpec(t *testing.T, data string) *Spec {
	t.Helper()
	spec, warnings := LoadSpecString("test.phl", data, false, nil)
	if len(warnings) != 0 {
		t.Fatalf("fixture spec has warnings: %v", warnings)
	}
	return spec
}

func TestHighlightBlock_SingleLine(t *testing.T) {
	h := New(compileSpec(t, `name: demo
rule: number
expr: \d+
color: red
`))
	spans, state := h.HighlightBlock("a 12 bc 345 d", StateNone)
	if state != StateNone {
		t.Errorf("state = %d", state)
	}
	if len(spans) != 2 {
		t.Fatalf("spans = %+v", spans)
	}
	if spans[0].Start != 2 || spans[0].Length != 2 {
		t.Errorf("first span = %+v", spans[0])
	}
	if spans[1].Start != 8 || spans[1].Length != 3 {
		t.Errorf("second span = %+v", spans[1])
	}
	if spans[0].Format.Color != "red" {
		t.Errorf("format = %+v", spans[0].Format)
	}
}

func TestHighlightBlock_CaptureGroup(t *testing.T) {
	h := New(compileSpec(t, `name: demo
rule: value
expr: (\w+)=(\w+)
group: 2
color: blue
`))
	spans, _ := h.HighlightBlock("key=val other=thing", StateNone)
	if len(spans) != 2 {
		t.Fatalf("spans = %+v", spans)
	}
	if spans[0].Start != 4 || spans[0].Length != 3 {
		t.Errorf("first span = %+v", spans[0])
	}
	if spans[1].Start != 14 || spans[1].Length != 5 {
		t.Errorf("second span = %+v", spans[1])
	}
}

func TestHighlightBlock_OptionalGroupNotParticipating(t *testing.T) {
	h := New(compileSpec(t, `name: demo
rule: opt
expr: a(b)?
group: 1
color: blue
`))
	spans, _ := h.HighlightBlock("a ab a", StateNone)
	if len(spans) != 1 {
		t.Fatalf("spans = %+v", spans)
	}
	if spans[0].Start != 3 || spans[0].Length != 1 {
		t.Errorf("span = %+v", spans[0])
	}
}

func TestHighlightBlock_TermsWordBoundary(t *testing.T) {
	h := New(compileSpec(t, `name: demo
rule: kw
terms: for
color: green
`))
	spans, _ := h.HighlightBlock("for formal for", StateNone)
	if len(spans) != 2 {
		t.Fatalf("spans = %+v", spans)
	}
	if spans[0].Start != 0 || spans[1].Start != 11 {
		t.Errorf("spans = %+v", spans)
	}
}

func TestHighlightBlock_HyperlinkAnchor(t *testing.T) {
	h := New(compileSpec(t, `name: demo
rule: url
expr: https?://\S+
style: hyperlink
color: blue
`))
	spans, _ := h.HighlightBlock("see https://example.org for details", StateNone)
	if len(spans) != 1 {
		t.Fatalf("spans = %+v", spans)
	}
	if spans[0].Anchor != "https://example.org" {
		t.Errorf("anchor = %q", spans[0].Anchor)
	}
}

func TestHighlightBlock_FontSizeDelta(t *testing.T) {
	h := New(compileSpec(t, `name: demo
rule: header
expr: ^\*.*$
size: 4
`))
	spans, _ := h.HighlightBlock("* Heading", StateNone)
	if len(spans) != 1 {
		t.Fatalf("spans = %+v", spans)
	}
	if spans[0].FontSize != DefaultBaseFontSize+4 {
		t.Errorf("font size = %d", spans[0].FontSize)
	}

	h.BaseFontSize = 20
	spans, _ = h.HighlightBlock("* Heading", StateNone)
	if spans[0].FontSize != 24 {
		t.Errorf("rescaled font size = %d", spans[0].FontSize)
	}
}

const commentSpec = `name: demo
rule: plain
expr: \d+
color: red

rule: comment
expr: /\*
expr: \*/
color: green
style: multiline
`

func TestHighlightBlock_MultilineAcrossBlocks(t *testing.T) {
	h := New(compileSpec(t, commentSpec))
	const commentRule = 1

	spans, state := h.HighlightBlock("x = 1 /* starts here", StateNone)
	if state != commentRule {
		t.Fatalf("state after open = %d", state)
	}
	last := spans[len(spans)-1]
	if last.Start != 6 || last.Start+last.Length != len("x = 1 /* starts here") {
		t.Errorf("open span = %+v", last)
	}

	spans, state = h.HighlightBlock("fully inside 99", state)
	if state != commentRule {
		t.Fatalf("state inside = %d", state)
	}
	found := false
	for _, s := range spans {
		if s.Format.Color == "green" && s.Start == 0 && s.Length == len("fully inside 99") {
			found = true
		}
	}
	if !found {
		t.Errorf("inner block not fully covered: %+v", spans)
	}

	spans, state = h.HighlightBlock("ends */ x = 2", state)
	if state != StateNone {
		t.Fatalf("state after close = %d", state)
	}
	found = false
	for _, s := range spans {
		if s.Format.Color == "green" && s.Start == 0 && s.Length == len("ends */") {
			found = true
		}
	}
	if !found {
		t.Errorf("closing span missing: %+v", spans)
	}
}

func TestHighlightBlock_MultilineWithinOneBlock(t *testing.T) {
	h := New(compileSpec(t, commentSpec))

	spans, state := h.HighlightBlock("a /* inline */ b", StateNone)
	if state != StateNone {
		t.Fatalf("state = %d", state)
	}
	found := false
	for _, s := range spans {
		if s.Format.Color == "green" && s.Start == 2 && s.Length == len("/* inline */") {
			found = true
		}
	}
	if !found {
		t.Errorf("inline span missing: %+v", spans)
	}
}

func TestHighlightBlock_SingleLineRulesStillApplyInsideMultiline(t *testing.T) {
	h := New(compileSpec(t, commentSpec))

	// Single-line rules are scanned independently of the block state; the
	// consuming editor applies later spans over earlier ones.
	spans, _ := h.HighlightBlock("count 42 here", 1)
	foundRed := false
	for _, s := range spans {
		if s.Format.Color == "red" && s.Start == 6 && s.Length == 2 {
			foundRed = true
		}
	}
	if !foundRed {
		t.Errorf("spans = %+v", spans)
	}
}

func TestHighlightAll_ThreadsState(t *testing.T) {
	h := New(compileSpec(t, commentSpec))

	doc := "before\n/* one\ntwo\nthree */\nafter 7"
	blocks := h.HighlightAll(doc)
	if len(blocks) != 5 {
		t.Fatalf("blocks = %d", len(blocks))
	}
	if len(blocks[0]) != 0 {
		t.Errorf("block 0 spans = %+v", blocks[0])
	}
	for i := 1; i <= 3; i++ {
		green := false
		for _, s := range blocks[i] {
			if s.Format.Color == "green" {
				green = true
			}
		}
		if !green {
			t.Errorf("block %d has no comment span: %+v", i, blocks[i])
		}
	}
	last := blocks[4]
	if len(last) != 1 || last[0].Format.Color != "red" {
		t.Errorf("block 4 spans = %+v", last)
	}
}
