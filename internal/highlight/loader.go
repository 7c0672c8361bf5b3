package highlight

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// SpecLoader parses the line-oriented spec format: a top-level meta block
// followed by repeated rule blocks, optionally terminated by a "---"
// separator and free-form sample text. Parse-time issues are warnings keyed
// by line number; the only fatal condition is a missing top-level name.
type SpecLoader struct {
	source  string
	scanner *bufio.Scanner
	log     *slog.Logger

	lineNo       int
	key, val     string
	code         []string
	sample       []string
	sampleLineNo int // -1 until the "---" separator is seen
	withRawData  bool
	warnings     map[int]string
	ruleStarts   map[string]int
}

// NewSpecLoader creates a loader for one spec stream. source names the origin
// for warning messages. withRawData retains the raw rule text and sample for
// spec editing.
func NewSpecLoader(source string, r io.Reader, withRawData bool, log *slog.Logger) *SpecLoader {
	if log == nil {
		log = slog.Default()
	}
	return &SpecLoader{
		source:       source,
		scanner:      bufio.NewScanner(r),
		log:          log,
		sampleLineNo: -1,
		withRawData:  withRawData,
		warnings:     make(map[int]string),
		ruleStarts:   make(map[string]int),
	}
}

func (l *SpecLoader) warning(msg string) { l.warningAt(l.lineNo, msg) }

func (l *SpecLoader) warningAt(lineNo int, msg string) {
	l.log.Warn("highlighter: spec warning",
		slog.String("source", l.source),
		slog.Int("line", lineNo),
		slog.String("warning", msg))
	l.warnings[lineNo] = msg
}

// readLine consumes one line and reports whether it produced a key/value
// pair (or a sample line). Blank lines and "#" comments are skipped but
// still counted for warning line numbers.
func (l *SpecLoader) readLine(line string) bool {
	l.lineNo++

	if l.sampleLineNo >= 0 {
		l.val = line
		l.sampleLineNo++
		return true
	}

	if strings.HasPrefix(line, "---") {
		l.sampleLineNo = 0
		return true
	}

	l.code = append(l.code, line)

	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return false
	}
	keyLen := strings.Index(line, ":")
	if keyLen < 1 {
		l.warning("key not found")
		return false
	}
	l.key = strings.TrimSpace(line[:keyLen])
	l.val = strings.TrimSpace(line[keyLen+1:])
	return true
}

// LoadMeta reads the top-level block up to the first rule (or the sample
// separator, or EOF). It reports false when the mandatory "name" key is
// absent, the one condition that makes a spec unusable.
func (l *SpecLoader) LoadMeta(meta *Meta) bool {
	suffice := false
scan:
	for l.scanner.Scan() {
		if !l.readLine(l.scanner.Text()) {
			continue
		}
		if l.sampleLineNo >= 0 {
			break
		}
		switch l.key {
		case "name":
			meta.Name = l.val
			suffice = true
		case "title":
			meta.Title = l.val
		case "rule":
			break scan
		default:
			l.warning("unknown key")
		}
	}
	if !suffice {
		l.warningAt(1, `not all required top-level properties set, required: "name"`)
	}
	return suffice
}

// LoadSpec parses the whole spec and returns the accumulated warnings.
// Source and storage of the meta are preserved across reloads.
func (l *SpecLoader) LoadSpec(spec *Spec) map[int]string {
	spec.Meta.Name = ""
	spec.Meta.Title = ""
	spec.Rules = nil
	spec.Code = ""
	spec.Sample = ""

	if !l.LoadMeta(&spec.Meta) {
		return l.warnings
	}

	// LoadMeta stops either on the first "rule" key or on EOF/sample.
	inRule := l.key == "rule"
	rule := Rule{Name: l.val}
	if inRule {
		l.ruleStarts[rule.Name] = l.lineNo
	}

	for l.scanner.Scan() {
		if !l.readLine(l.scanner.Text()) {
			continue
		}
		if l.sampleLineNo == 0 {
			if !l.withRawData {
				break
			}
			continue // rules-to-sample separator, just skip it
		}
		if l.sampleLineNo > 0 {
			l.sample = append(l.sample, l.val)
			continue
		}

		switch l.key {
		case "rule":
			if inRule {
				l.finalizeRule(spec, &rule)
			}
			inRule = true
			rule = Rule{Name: l.val}
			l.ruleStarts[rule.Name] = l.lineNo
		case "expr":
			if len(rule.Terms) > 0 {
				l.warning(`can't have "expr" and "terms" in the same rule`)
				break
			}
			expr, err := regexp.Compile(l.val)
			if err != nil {
				l.warning("invalid expression")
			} else {
				rule.Exprs = append(rule.Exprs, expr)
			}
		case "terms":
			if len(rule.Exprs) > 0 {
				l.warning(`can't have "expr" and "terms" in the same rule`)
				break
			}
			for _, term := range strings.Split(l.val, ",") {
				if term = strings.TrimSpace(term); term != "" {
					rule.Terms = append(rule.Terms, term)
				}
			}
		case "color":
			if !validColor(l.val) {
				l.warning("invalid color value")
			} else {
				rule.Format.Color = l.val
			}
		case "back":
			if !validColor(l.val) {
				l.warning("invalid color value")
			} else {
				rule.Format.Back = l.val
			}
		case "group":
			group, err := strconv.Atoi(l.val)
			if err != nil {
				l.warning("invalid integer value")
			} else {
				rule.Group = group
			}
		case "size":
			delta, err := strconv.Atoi(l.val)
			if err != nil {
				l.warning("invalid integer value")
			} else {
				rule.Format.FontSizeDelta = delta
			}
		case "style":
			for _, style := range strings.Split(l.val, ",") {
				switch s := strings.TrimSpace(style); s {
				case "":
				case "bold":
					rule.Format.Bold = true
				case "italic":
					rule.Format.Italic = true
				case "underline":
					rule.Format.Underline = true
				case "strikeout":
					rule.Format.Strikeout = true
				case "hyperlink":
					rule.Format.Hyperlink = true
				case "multiline":
					rule.Multiline = true
				default:
					l.warning("unknown style " + s)
				}
			}
		default:
			l.warning("unknown key")
		}
	}

	if inRule {
		l.finalizeRule(spec, &rule)
	}
	if l.withRawData {
		spec.Code = strings.Join(l.code, "\n")
		spec.Sample = strings.Join(l.sample, "\n")
	}
	return l.warnings
}

// finalizeRule expands terms into word-boundary expressions and normalizes
// the multiline expression pair before the rule is appended.
func (l *SpecLoader) finalizeRule(spec *Spec, rule *Rule) {
	startLine := l.ruleStarts[rule.Name]

	if len(rule.Terms) > 0 {
		rule.Exprs = nil
		for _, term := range rule.Terms {
			expr, err := regexp.Compile(fmt.Sprintf(`\b%s\b`, term))
			if err != nil {
				l.warningAt(startLine, "invalid term "+term)
				continue
			}
			rule.Exprs = append(rule.Exprs, expr)
		}
	}

	if rule.Multiline {
		switch {
		case len(rule.Exprs) == 0:
			l.warningAt(startLine, `must be at least one "expr" when multiline`)
			rule.Multiline = false
		case len(rule.Exprs) == 1:
			rule.Exprs = append(rule.Exprs, rule.Exprs[0])
		case len(rule.Exprs) > 2:
			l.warningAt(startLine, `more than two "expr" for a multiline rule, extra ones ignored`)
			rule.Exprs = rule.Exprs[:2]
		}
	}

	spec.Rules = append(spec.Rules, *rule)
}

// LoadSpecString parses a spec from an in-memory string.
func LoadSpecString(source, data string, withRawData bool, log *slog.Logger) (*Spec, map[int]string) {
	spec := &Spec{Meta: Meta{Source: source}}
	loader := NewSpecLoader(source, strings.NewReader(data), withRawData, log)
	warnings := loader.LoadSpec(spec)
	return spec, warnings
}
