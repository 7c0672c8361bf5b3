package catalogservice

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/starford/procyon/internal/apperr"
	"github.com/starford/procyon/internal/session"
	"github.com/starford/procyon/internal/treemodel"
)

func testService(t *testing.T) *Service {
	t.Helper()
	sess, err := session.Load(filepath.Join(t.TempDir(), "session.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(sess, nil)
	t.Cleanup(func() { svc.CloseCatalog() })
	return svc
}

func openedService(t *testing.T) *Service {
	t.Helper()
	svc := testService(t)
	if _, err := svc.NewCatalog(context.Background(), filepath.Join(t.TempDir(), "test")); err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return svc
}

func TestNewCatalogAppendsExt(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	path, err := svc.NewCatalog(ctx, filepath.Join(t.TempDir(), "notes"))
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if filepath.Ext(path) != ".enot" {
		t.Errorf("path = %q", path)
	}

	info := svc.Info(ctx)
	if !info.Open || info.FileName != "notes" || info.MemoCount != 0 {
		t.Errorf("info = %+v", info)
	}

	recent := svc.RecentFiles(ctx)
	if len(recent) != 1 || recent[0] != path {
		t.Errorf("recent = %v", recent)
	}
}

func TestOpenCatalogClosesCurrent(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	dir := t.TempDir()

	first, err := svc.NewCatalog(ctx, filepath.Join(dir, "first"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateMemo(ctx, 0, "m", "", "m\nbody"); err != nil {
		t.Fatal(err)
	}
	second, err := svc.NewCatalog(ctx, filepath.Join(dir, "second"))
	if err != nil {
		t.Fatal(err)
	}
	if svc.Info(ctx).Path != second {
		t.Errorf("open path = %q", svc.Info(ctx).Path)
	}

	warnings, err := svc.OpenCatalog(ctx, first)
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	info := svc.Info(ctx)
	if info.Path != first || info.MemoCount != 1 {
		t.Errorf("info = %+v", info)
	}

	recent := svc.RecentFiles(ctx)
	if len(recent) != 2 || recent[0] != first || recent[1] != second {
		t.Errorf("recent = %v", recent)
	}
}

func TestOpenCatalog_Missing(t *testing.T) {
	svc := testService(t)
	_, err := svc.OpenCatalog(context.Background(), filepath.Join(t.TempDir(), "nope.enot"))
	if !errors.Is(err, apperr.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if svc.IsOpen() {
		t.Error("failed open left the service open")
	}
}

func TestOperationsWithoutCatalog(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.Tree(ctx); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Tree: %v", err)
	}
	if _, err := svc.GetMemo(ctx, 1); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetMemo: %v", err)
	}
	if _, err := svc.CreateFolder(ctx, 0, "f"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("CreateFolder: %v", err)
	}
	if _, err := svc.MemoCount(ctx); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("MemoCount: %v", err)
	}
	if info := svc.Info(ctx); info.Open {
		t.Errorf("info = %+v", info)
	}
	if err := svc.CloseCatalog(); err != nil {
		t.Errorf("CloseCatalog on closed service: %v", err)
	}
}

func TestTreeSnapshot(t *testing.T) {
	svc := openedService(t)
	ctx := context.Background()

	folderID, err := svc.CreateFolder(ctx, 0, "work")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateMemo(ctx, folderID, "inside", "wiki_text", "inside\nbody"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateMemo(ctx, 0, "loose", "", "loose\nnote text"); err != nil {
		t.Fatal(err)
	}

	tree, err := svc.Tree(ctx)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(tree) != 2 {
		t.Fatalf("tree = %+v", tree)
	}
	work := tree[0]
	if !work.IsFolder || work.Title != "work" || len(work.Children) != 1 {
		t.Fatalf("work = %+v", work)
	}
	if work.Children[0].Type != "wiki_text" {
		t.Errorf("child type = %q", work.Children[0].Type)
	}
	loose := tree[1]
	if loose.IsFolder || loose.Info != "note text" {
		t.Errorf("loose = %+v", loose)
	}
}

func TestMemoLifecycle(t *testing.T) {
	svc := openedService(t)
	ctx := context.Background()

	id, err := svc.CreateMemo(ctx, 0, "note", "", "note\nfirst body")
	if err != nil {
		t.Fatal(err)
	}

	memo, err := svc.GetMemo(ctx, id)
	if err != nil {
		t.Fatalf("GetMemo: %v", err)
	}
	if memo.Title != "note" || memo.Text != "note\nfirst body" || memo.Type != "plain_text" {
		t.Errorf("memo = %+v", memo)
	}

	if err := svc.UpdateMemo(ctx, id, "note2", "note2\nsecond body"); err != nil {
		t.Fatalf("UpdateMemo: %v", err)
	}
	memo, _ = svc.GetMemo(ctx, id)
	if memo.Title != "note2" || memo.Text != "note2\nsecond body" {
		t.Errorf("memo after update = %+v", memo)
	}

	if err := svc.DeleteMemo(ctx, id); err != nil {
		t.Fatalf("DeleteMemo: %v", err)
	}
	if _, err := svc.GetMemo(ctx, id); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("deleted memo lookup: %v", err)
	}
}

func TestDeleteFolderReportsMemoIDs(t *testing.T) {
	svc := openedService(t)
	ctx := context.Background()

	top, err := svc.CreateFolder(ctx, 0, "top")
	if err != nil {
		t.Fatal(err)
	}
	sub, err := svc.CreateFolder(ctx, top, "sub")
	if err != nil {
		t.Fatal(err)
	}
	m1, err := svc.CreateMemo(ctx, top, "m1", "", "")
	if err != nil {
		t.Fatal(err)
	}
	m2, err := svc.CreateMemo(ctx, sub, "m2", "", "")
	if err != nil {
		t.Fatal(err)
	}
	keep, err := svc.CreateMemo(ctx, 0, "keep", "", "")
	if err != nil {
		t.Fatal(err)
	}

	ids, err := svc.DeleteFolder(ctx, top)
	if err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	got := map[int64]bool{}
	for _, id := range ids {
		got[id] = true
	}
	if len(ids) != 2 || !got[m1] || !got[m2] {
		t.Errorf("removed ids = %v", ids)
	}

	if _, err := svc.GetFolder(ctx, sub); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("sub folder lookup: %v", err)
	}
	if _, err := svc.GetMemo(ctx, keep); err != nil {
		t.Errorf("unrelated memo lost: %v", err)
	}
	n, _ := svc.MemoCount(ctx)
	if n != 1 {
		t.Errorf("memo count = %d", n)
	}
}

func TestGetFolder(t *testing.T) {
	svc := openedService(t)
	ctx := context.Background()

	top, _ := svc.CreateFolder(ctx, 0, "top")
	sub, _ := svc.CreateFolder(ctx, top, "sub")
	if _, err := svc.CreateMemo(ctx, sub, "m", "", ""); err != nil {
		t.Fatal(err)
	}

	folder, err := svc.GetFolder(ctx, sub)
	if err != nil {
		t.Fatalf("GetFolder: %v", err)
	}
	if folder.Title != "sub" || folder.Path != "top" || folder.MemoCount != 1 {
		t.Errorf("folder = %+v", folder)
	}
}

func TestEventsFlowThroughReopen(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	dir := t.TempDir()

	var events []treemodel.Event
	svc.Subscribe(func(e treemodel.Event) { events = append(events, e) })

	if _, err := svc.NewCatalog(ctx, filepath.Join(dir, "one")); err != nil {
		t.Fatal(err)
	}
	id, err := svc.CreateFolder(ctx, 0, "f")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Kind != treemodel.Inserted || events[0].ID != id {
		t.Fatalf("events = %+v", events)
	}

	if err := svc.RenameFolder(ctx, id, "g"); err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[1].Kind != treemodel.Renamed {
		t.Fatalf("events = %+v", events)
	}

	if _, err := svc.DeleteFolder(ctx, id); err != nil {
		t.Fatal(err)
	}
	if len(events) != 4 ||
		events[2].Kind != treemodel.AboutToRemove ||
		events[3].Kind != treemodel.Removed {
		t.Fatalf("events = %+v", events)
	}

	// The listener keeps firing after a close/open cycle.
	if _, err := svc.NewCatalog(ctx, filepath.Join(dir, "two")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateFolder(ctx, 0, "again"); err != nil {
		t.Fatal(err)
	}
	if len(events) != 5 || events[4].Kind != treemodel.Inserted {
		t.Fatalf("events = %+v", events)
	}
}

func TestShutdownKeepsLastCatalog(t *testing.T) {
	dir := t.TempDir()
	sessPath := filepath.Join(dir, "session.yaml")
	sess, err := session.Load(sessPath)
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(sess, nil)
	ctx := context.Background()

	path, err := svc.NewCatalog(ctx, filepath.Join(dir, "notes"))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	reloaded, err := session.Load(sessPath)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.LastCatalog() != path {
		t.Errorf("last catalog after shutdown = %q, want %q", reloaded.LastCatalog(), path)
	}
}

func TestCloseCatalogForgetsLastCatalog(t *testing.T) {
	dir := t.TempDir()
	sessPath := filepath.Join(dir, "session.yaml")
	sess, err := session.Load(sessPath)
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(sess, nil)
	ctx := context.Background()

	if _, err := svc.NewCatalog(ctx, filepath.Join(dir, "notes")); err != nil {
		t.Fatal(err)
	}
	if err := svc.CloseCatalog(); err != nil {
		t.Fatalf("CloseCatalog: %v", err)
	}

	reloaded, err := session.Load(sessPath)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.LastCatalog() != "" {
		t.Errorf("last catalog after explicit close = %q, want empty", reloaded.LastCatalog())
	}
}

func TestLastMemoPersistsAcrossReopen(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	path, err := svc.NewCatalog(ctx, filepath.Join(t.TempDir(), "notes"))
	if err != nil {
		t.Fatal(err)
	}
	id, err := svc.CreateMemo(ctx, 0, "note", "", "note\nbody")
	if err != nil {
		t.Fatal(err)
	}

	if got := svc.Info(ctx).LastMemoID; got != 0 {
		t.Errorf("last memo before any read = %d", got)
	}
	if _, err := svc.GetMemo(ctx, id); err != nil {
		t.Fatal(err)
	}
	if got := svc.Info(ctx).LastMemoID; got != id {
		t.Errorf("last memo = %d, want %d", got, id)
	}

	// The setting lives in the catalog file and survives a reopen.
	if _, err := svc.OpenCatalog(ctx, path); err != nil {
		t.Fatal(err)
	}
	if got := svc.Info(ctx).LastMemoID; got != id {
		t.Errorf("last memo after reopen = %d, want %d", got, id)
	}
}

func TestCreateMemo_UnknownParent(t *testing.T) {
	svc := openedService(t)
	if _, err := svc.CreateMemo(context.Background(), 999, "m", "", ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
