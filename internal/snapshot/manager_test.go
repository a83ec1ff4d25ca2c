package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/michaelscutari/symsort/internal/db"
	"github.com/michaelscutari/symsort/internal/organize"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func TestManagerRunCreatesLatestAndRetention(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Photos", "a.jpg"))
	writeFile(t, filepath.Join(root, "Music", "b.mp3"))

	outDir := filepath.Join(t.TempDir(), "out")
	mgr := NewManager(outDir, 1)
	req := organize.Request{Roots: []string{root}, OutputRoot: outDir, ScanWorkers: 1}

	ctx := context.Background()
	res, firstDB, err := mgr.Run(ctx, req)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if res.Counts.Created != 2 {
		t.Fatalf("expected 2 links, got %d", res.Counts.Created)
	}
	if _, err := os.Stat(firstDB); err != nil {
		t.Fatalf("first journal missing: %v", err)
	}

	latest, err := mgr.GetLatest()
	if err != nil {
		t.Fatalf("resolve latest: %v", err)
	}
	firstResolved, err := filepath.EvalSymlinks(firstDB)
	if err != nil {
		t.Fatalf("resolve first journal: %v", err)
	}
	if latest != firstResolved {
		t.Fatalf("latest does not point to first journal: %s", latest)
	}

	time.Sleep(1100 * time.Millisecond)

	res, secondDB, err := mgr.Run(ctx, req)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Counts.Created != 0 || res.Counts.Skipped != 2 {
		t.Fatalf("expected second run to skip both links, got %+v", res.Counts)
	}
	if _, err := os.Stat(secondDB); err != nil {
		t.Fatalf("second journal missing: %v", err)
	}
	if _, err := os.Stat(firstDB); err == nil {
		t.Fatalf("expected first journal to be pruned")
	}

	journals, err := mgr.ListJournals()
	if err != nil {
		t.Fatalf("list journals: %v", err)
	}
	if len(journals) != 1 {
		t.Fatalf("expected 1 journal after pruning, got %d", len(journals))
	}
}

func TestManagerJournalContents(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Photos", "a.jpg"))
	writeFile(t, filepath.Join(root, "More", "Photos", "a.jpg"))
	writeFile(t, filepath.Join(root, "notes.txt"))

	outDir := t.TempDir()
	mgr := NewManager(outDir, 0)
	_, path, err := mgr.Run(context.Background(), organize.Request{Roots: []string{root}, OutputRoot: outDir})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer database.Close()

	meta, err := db.GetRunMeta(database)
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if meta.Found != 3 || meta.Created != 3 || meta.Preview {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if len(meta.Roots) != 1 {
		t.Fatalf("expected one root, got %v", meta.Roots)
	}

	namespaces, err := db.LoadNamespaces(database, "pictures", "links", 10)
	if err != nil {
		t.Fatalf("load namespaces: %v", err)
	}
	if len(namespaces) != 1 || namespaces[0].Name != "Photos" || namespaces[0].Links != 2 {
		t.Fatalf("unexpected namespaces %+v", namespaces)
	}
}

func TestManagerPreviewWritesNoJournal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Photos", "a.jpg"))

	outDir := filepath.Join(t.TempDir(), "out")
	mgr := NewManager(outDir, 0)
	res, path, err := mgr.Run(context.Background(), organize.Request{Roots: []string{root}, OutputRoot: outDir, Preview: true})
	if err != nil {
		t.Fatalf("preview run: %v", err)
	}
	if path != "" {
		t.Fatalf("expected no journal path, got %s", path)
	}
	if res.Counts.Created != 1 {
		t.Fatalf("expected 1 would-be link, got %d", res.Counts.Created)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Fatalf("preview must not create the output root, stat err=%v", err)
	}
}

func TestManagerRefusesConcurrentRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"))
	outDir := t.TempDir()

	holder := NewManager(outDir, 0)
	if err := os.MkdirAll(holder.JournalDir(), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := holder.acquireLock(); err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	defer holder.releaseLock()

	_, _, err := NewManager(outDir, 0).Run(context.Background(), organize.Request{Roots: []string{root}, OutputRoot: outDir})
	if err != ErrLocked {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestManagerMissingRootsCreateNothing(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	mgr := NewManager(outDir, 1)
	req := organize.Request{Roots: []string{filepath.Join(t.TempDir(), "missing")}, OutputRoot: outDir}

	_, journal, err := mgr.Run(context.Background(), req)
	if !errors.Is(err, organize.ErrNoRoots) {
		t.Fatalf("expected ErrNoRoots, got %v", err)
	}
	if journal != "" {
		t.Fatalf("expected no journal path, got %s", journal)
	}
	if _, err := os.Lstat(outDir); !os.IsNotExist(err) {
		t.Fatalf("expected output root to be left alone, got %v", err)
	}
}
