package highlight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSpecFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name+SpecExt)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDirStorage_LoadMetas(t *testing.T) {
	dir := t.TempDir()
	writeSpecFile(t, dir, "one", "name: one\ntitle: First\n")
	writeSpecFile(t, dir, "two", "name: two\n")
	writeSpecFile(t, dir, "broken", "title: nameless\n")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644); err != nil {
		t.Fatal(err)
	}

	metas := NewDirStorage(dir, true, nil).LoadMetas()
	if len(metas) != 2 {
		t.Fatalf("metas = %+v", metas)
	}
	byName := map[string]Meta{}
	for _, m := range metas {
		byName[m.Name] = m
	}
	if byName["one"].Title != "First" || byName["one"].Source == "" {
		t.Errorf("meta one = %+v", byName["one"])
	}
	if _, ok := byName["two"]; !ok {
		t.Error("meta two missing")
	}
}

func TestDirStorage_SaveSpecRoundtrip(t *testing.T) {
	dir := t.TempDir()
	s := NewDirStorage(dir, false, nil)

	spec, _ := LoadSpecString("", "name: saved\nrule: r\nexpr: x\n---\nexample", true, nil)
	if err := s.SaveSpec(spec); err != nil {
		t.Fatalf("SaveSpec: %v", err)
	}
	if spec.Meta.Source != filepath.Join(dir, "saved.phl") {
		t.Errorf("source = %q", spec.Meta.Source)
	}

	loaded, err := s.LoadSpec(spec.Meta.Source, true)
	if err != nil {
		t.Fatalf("LoadSpec: %v", err)
	}
	if loaded.Meta.Name != "saved" || len(loaded.Rules) != 1 {
		t.Fatalf("loaded = %+v", loaded)
	}
	if strings.TrimSpace(loaded.Sample) != "example" {
		t.Errorf("sample = %q", loaded.Sample)
	}
}

func TestDirStorage_SaveSpecReadOnly(t *testing.T) {
	s := NewDirStorage(t.TempDir(), true, nil)
	spec, _ := LoadSpecString("", "name: ro\n", true, nil)
	if err := s.SaveSpec(spec); err == nil {
		t.Fatal("expected error from read-only storage")
	}
}

func TestRegistry_SpecLazyCompile(t *testing.T) {
	dir := t.TempDir()
	writeSpecFile(t, dir, "demo", "name: demo\nrule: r\nexpr: \\d+\ncolor: red\n")

	reg := NewRegistry(nil)
	reg.LoadMetas([]Storage{NewDirStorage(dir, true, nil)})

	spec, err := reg.Spec("demo")
	if err != nil {
		t.Fatalf("Spec: %v", err)
	}
	if len(spec.Rules) != 1 {
		t.Fatalf("rules = %+v", spec.Rules)
	}

	again, err := reg.Spec("demo")
	if err != nil {
		t.Fatal(err)
	}
	if again != spec {
		t.Error("second lookup should return the cached spec")
	}

	if _, err := reg.Spec("nope"); err == nil {
		t.Error("unknown spec should error")
	}
}

func TestRegistry_DuplicateNameKeepsFirst(t *testing.T) {
	builtin := t.TempDir()
	custom := t.TempDir()
	writeSpecFile(t, builtin, "demo", "name: demo\ntitle: Builtin\n")
	writeSpecFile(t, custom, "demo2", "name: demo\ntitle: Custom\n")

	reg := NewRegistry(nil)
	reg.LoadMetas([]Storage{
		NewDirStorage(builtin, true, nil),
		NewDirStorage(custom, false, nil),
	})

	if names := reg.Names(); len(names) != 1 || names[0] != "demo" {
		t.Fatalf("names = %v", names)
	}
	meta, ok := reg.Meta("demo")
	if !ok || meta.Title != "Builtin" {
		t.Errorf("meta = %+v", meta)
	}
}

func TestRegistry_UserDirShadowsBuiltin(t *testing.T) {
	// Mirrors the wiring order in Run: the writable user dir registers
	// first, so its spec wins a name collision with a built-in one and
	// stays the target for saves.
	builtinDir := t.TempDir()
	userDir := t.TempDir()
	writeSpecFile(t, builtinDir, "demo", "name: demo\ntitle: Builtin\n")
	writeSpecFile(t, userDir, "demo2", "name: demo\ntitle: User\n")

	user := NewDirStorage(userDir, false, nil)
	reg := NewRegistry(nil)
	reg.LoadMetas([]Storage{
		user,
		NewDirStorage(builtinDir, true, nil),
	})

	meta, ok := reg.Meta("demo")
	if !ok || meta.Title != "User" {
		t.Errorf("meta = %+v", meta)
	}
	if reg.CustomStorage() != user {
		t.Errorf("custom storage = %v", reg.CustomStorage())
	}
}

func TestRegistry_CustomStorageIsFirstWritable(t *testing.T) {
	builtin := NewDirStorage(t.TempDir(), true, nil)
	custom := NewDirStorage(t.TempDir(), false, nil)

	reg := NewRegistry(nil)
	reg.LoadMetas([]Storage{builtin, custom})
	if reg.CustomStorage() != custom {
		t.Errorf("custom storage = %v", reg.CustomStorage())
	}

	roOnly := NewRegistry(nil)
	roOnly.LoadMetas([]Storage{builtin})
	if roOnly.CustomStorage() != nil {
		t.Error("all-read-only registry should have no custom storage")
	}
}

func TestRegistry_ReloadPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	writeSpecFile(t, dir, "demo", "name: demo\n")

	reg := NewRegistry(nil)
	reg.LoadMetas([]Storage{NewDirStorage(dir, false, nil)})
	if _, err := reg.Spec("demo"); err != nil {
		t.Fatal(err)
	}

	writeSpecFile(t, dir, "fresh", "name: fresh\n")
	reg.Reload()

	names := reg.Names()
	if len(names) != 2 || names[0] != "demo" || names[1] != "fresh" {
		t.Fatalf("names after reload = %v", names)
	}
}
