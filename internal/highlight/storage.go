package highlight

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Storage is a source of highlighter specs.
type Storage interface {
	Name() string
	// ReadOnly reports whether SaveSpec is supported.
	ReadOnly() bool
	// LoadMetas discovers every spec the storage holds, without compiling
	// rules. Unreadable specs are skipped with a log entry.
	LoadMetas() []Meta
	// LoadSpec compiles the spec identified by source. withRawData retains
	// the raw rule text and sample for editing.
	LoadSpec(source string, withRawData bool) (*Spec, error)
	// SaveSpec writes the spec back to its source.
	SaveSpec(spec *Spec) error
}

// DirStorage discovers .phl spec files in one directory.
type DirStorage struct {
	dir      string
	readOnly bool
	log      *slog.Logger
}

// NewDirStorage creates a storage over dir. A read-only storage holds
// built-in specs that can only be used as a base for new ones.
func NewDirStorage(dir string, readOnly bool, log *slog.Logger) *DirStorage {
	if log == nil {
		log = slog.Default()
	}
	return &DirStorage{dir: dir, readOnly: readOnly, log: log}
}

func (s *DirStorage) Name() string { return "dir:" + s.dir }

func (s *DirStorage) ReadOnly() bool { return s.readOnly }

// Dir returns the directory the storage scans.
func (s *DirStorage) Dir() string { return s.dir }

func (s *DirStorage) LoadMetas() []Meta {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Warn("highlighter: spec directory not readable",
			slog.String("dir", s.dir), slog.String("error", err.Error()))
		return nil
	}

	var metas []Meta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), SpecExt) {
			continue
		}
		source := filepath.Join(s.dir, entry.Name())
		f, err := os.Open(source)
		if err != nil {
			s.log.Warn("highlighter: cannot open spec",
				slog.String("source", source), slog.String("error", err.Error()))
			continue
		}
		var meta Meta
		ok := NewSpecLoader(source, f, false, s.log).LoadMeta(&meta)
		f.Close()
		if !ok {
			s.log.Warn("highlighter: meta not loaded", slog.String("source", source))
			continue
		}
		meta.Source = source
		metas = append(metas, meta)
	}
	return metas
}

func (s *DirStorage) LoadSpec(source string, withRawData bool) (*Spec, error) {
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("highlight: open spec %s: %w", source, err)
	}
	defer f.Close()

	spec := &Spec{Meta: Meta{Source: source}}
	NewSpecLoader(source, f, withRawData, s.log).LoadSpec(spec)
	spec.Meta.Source = source
	return spec, nil
}

func (s *DirStorage) SaveSpec(spec *Spec) error {
	if s.readOnly {
		return fmt.Errorf("highlight: storage %s is read-only", s.Name())
	}
	source := spec.Meta.Source
	if source == "" {
		source = filepath.Join(s.dir, spec.Meta.Name+SpecExt)
		spec.Meta.Source = source
	}
	if err := os.WriteFile(source, []byte(spec.StorableString()+"\n"), 0o644); err != nil {
		return fmt.Errorf("highlight: write spec %s: %w", source, err)
	}
	return nil
}
