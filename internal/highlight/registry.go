package highlight

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Registry is the explicitly-scoped spec cache: metas discovered from the
// registered storages plus lazily compiled specs. It is constructed once at
// application start and injected where highlighting is needed; there are no
// package-level singletons.
//
// The mutex only guards against the spec-directory watcher goroutine
// reloading metas while a request reads them; all catalog-side access is
// single-threaded.
type Registry struct {
	log *slog.Logger

	mu             sync.RWMutex
	metas          map[string]Meta
	specs          map[string]*Spec
	customStorage  Storage
	storages       []Storage
}

// NewRegistry creates an empty registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		log:   log,
		metas: make(map[string]Meta),
		specs: make(map[string]*Spec),
	}
}

// LoadMetas discovers specs from the given storages. The first writable
// storage becomes the default storage for newly created specs. A name seen
// in an earlier storage wins over later duplicates.
func (r *Registry) LoadMetas(storages []Storage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.storages = storages
	r.reloadLocked()
}

// Reload re-scans the registered storages, dropping cached specs whose meta
// vanished or whose source may have changed.
func (r *Registry) Reload() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.metas = make(map[string]Meta)
	r.specs = make(map[string]*Spec)
	r.reloadLocked()
}

func (r *Registry) reloadLocked() {
	for _, storage := range r.storages {
		if !storage.ReadOnly() && r.customStorage == nil {
			r.customStorage = storage
		}
		for _, meta := range storage.LoadMetas() {
			if existing, ok := r.metas[meta.Name]; ok {
				r.log.Warn("highlighter: spec already registered",
					slog.String("name", existing.Name),
					slog.String("source", existing.Source))
				continue
			}
			meta.Storage = storage
			r.metas[meta.Name] = meta
			r.log.Debug("highlighter: spec registered",
				slog.String("name", meta.Name),
				slog.String("source", meta.Source))
		}
	}
}

// Spec returns the compiled spec for name, loading it on first use.
func (r *Registry) Spec(name string) (*Spec, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if spec, ok := r.specs[name]; ok {
		return spec, nil
	}
	meta, ok := r.metas[name]
	if !ok {
		return nil, fmt.Errorf("highlight: unknown spec %q", name)
	}
	if meta.Storage == nil {
		return nil, fmt.Errorf("highlight: spec %q has no storage", name)
	}
	spec, err := meta.Storage.LoadSpec(meta.Source, false)
	if err != nil {
		return nil, err
	}
	spec.Meta.Storage = meta.Storage
	r.specs[name] = spec
	return spec, nil
}

// Names lists the registered spec names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.metas))
	for name := range r.metas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Meta returns the registered meta for name.
func (r *Registry) Meta(name string) (Meta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.metas[name]
	return meta, ok
}

// CustomStorage returns the default storage for newly created specs, nil
// when every registered storage is read-only.
func (r *Registry) CustomStorage() Storage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.customStorage
}
