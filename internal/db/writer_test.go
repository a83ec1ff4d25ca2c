package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/michaelscutari/symsort/internal/category"
	"github.com/michaelscutari/symsort/internal/entry"

	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Every connection to :memory: is a separate database.
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	if err := InitSchema(database); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return database
}

func record(c category.Category, ns, source, target string, o entry.Outcome, reason string) entry.LinkRecord {
	return entry.LinkRecord{
		Plan: entry.LinkPlan{
			Source:    source,
			Target:    target,
			Category:  c,
			Namespace: ns,
		},
		Outcome: o,
		Reason:  reason,
	}
}

func TestIngesterWritesAllRecords(t *testing.T) {
	database := openMemory(t)

	recordCh := make(chan entry.LinkRecord, 8)
	ing := NewIngester(database, recordCh, 2, 10)
	done := make(chan error, 1)
	go func() {
		done <- ing.Run(context.Background())
	}()

	recordCh <- record(category.Pictures, "Photos", "/d/Photos/a.jpg", "/o/Pictures/Photos/a.jpg", entry.Created, "")
	recordCh <- record(category.Pictures, "Photos", "/d/More/Photos/a.jpg", "/o/Pictures/Photos/a_1.jpg", entry.Created, "")
	recordCh <- record(category.Audio, "Music", "/d/Music/s.mp3", "/o/Audio/Music/s.mp3", entry.Failed, "permission denied")
	close(recordCh)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ingester error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("ingester did not finish")
	}

	p := ing.Progress()
	if p.Written != 3 || p.Created != 2 || p.Failed != 1 || p.Skipped != 0 {
		t.Fatalf("unexpected progress %+v", p)
	}

	var n int
	if err := database.QueryRow(`SELECT COUNT(*) FROM links`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 rows, got %d", n)
	}

	var name string
	if err := database.QueryRow(`SELECT name FROM links WHERE source = ?`, "/d/More/Photos/a.jpg").Scan(&name); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if name != "a_1.jpg" {
		t.Fatalf("expected link name a_1.jpg, got %s", name)
	}
}

func TestIngesterFlushesOnCancel(t *testing.T) {
	database := openMemory(t)

	ctx, cancel := context.WithCancel(context.Background())
	recordCh := make(chan entry.LinkRecord, 4)
	recordCh <- record(category.Text, "docs", "/d/docs/a.txt", "/o/Text/docs/a.txt", entry.Created, "")
	recordCh <- record(category.Text, "docs", "/d/docs/b.txt", "/o/Text/docs/b.txt", entry.Skipped, "")
	close(recordCh)
	cancel()

	ing := NewIngester(database, recordCh, 100, 10000)
	if err := ing.Run(ctx); err != nil {
		t.Fatalf("ingester error: %v", err)
	}

	if got := ing.Progress().Written; got != 2 {
		t.Fatalf("expected buffered records to be flushed, got %d", got)
	}
}

func TestIngesterKeepsReceivingAfterWriteFailure(t *testing.T) {
	// No schema: the insert statement cannot be prepared.
	database, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	recordCh := make(chan entry.LinkRecord, 4)
	ing := NewIngester(database, recordCh, 2, 10)
	done := make(chan error, 1)
	go func() {
		done <- ing.Run(context.Background())
	}()

	sent := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			recordCh <- record(category.Pictures, "Photos", "/d/Photos/a.jpg", "/o/Pictures/Photos/a.jpg", entry.Created, "")
		}
		close(recordCh)
		close(sent)
	}()

	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		t.Fatalf("senders blocked after the ingester failed")
	}

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected an error from an ingester without a schema")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("ingester did not finish")
	}

	if got := ing.Progress().Written; got != 0 {
		t.Fatalf("expected nothing written, got %d", got)
	}
}
