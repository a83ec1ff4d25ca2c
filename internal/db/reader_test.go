package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/michaelscutari/symsort/internal/category"
	"github.com/michaelscutari/symsort/internal/entry"
)

func seedJournal(t *testing.T) *sql.DB {
	t.Helper()
	database := openMemory(t)

	start := time.Unix(1700000000, 0)
	meta := entry.RunMeta{
		Roots:      []string{"/data", "/more"},
		OutputRoot: "/out",
		StartTime:  start,
	}
	if err := InitRunMeta(database, meta); err != nil {
		t.Fatalf("init meta: %v", err)
	}
	meta.EndTime = start.Add(3 * time.Second)
	meta.Found = 4
	meta.Created = 2
	meta.Failed = 1
	meta.Skipped = 1
	meta.SystemSkipped = 5
	if err := FinalizeRunMeta(database, meta); err != nil {
		t.Fatalf("finalize meta: %v", err)
	}

	if err := WriteCategoryCounts(database, map[string]int{"pictures": 3, "audio": 1}); err != nil {
		t.Fatalf("write categories: %v", err)
	}

	rows := []entry.LinkRecord{
		record(category.Pictures, "Vacation", "/data/Vacation/b.png", "/out/Pictures/Vacation/b.png", entry.Created, ""),
		record(category.Pictures, "Vacation", "/data/Vacation/a.png", "/out/Pictures/Vacation/a.png", entry.Skipped, ""),
		record(category.Pictures, "Photos", "/data/Photos/c.jpg", "/out/Pictures/Photos/c.jpg", entry.Created, ""),
		record(category.Audio, "Music", "/more/Music/s.mp3", "/out/Audio/Music/s.mp3", entry.Failed, "read-only file system"),
	}
	for _, r := range rows {
		p := r.Plan
		_, err := database.Exec(insertLinkSQL, p.Category.String(), p.Namespace, filepath.Base(p.Target), p.Source, p.Target, int(r.Outcome), r.Reason)
		if err != nil {
			t.Fatalf("insert %s: %v", p.Target, err)
		}
	}
	if err := BuildIndexes(database); err != nil {
		t.Fatalf("build indexes: %v", err)
	}
	return database
}

func TestGetRunMetaRoundTrip(t *testing.T) {
	j := seedJournal(t)

	m, err := GetRunMeta(j)
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if len(m.Roots) != 2 || m.Roots[0] != "/data" || m.Roots[1] != "/more" {
		t.Fatalf("unexpected roots %v", m.Roots)
	}
	if m.Preview {
		t.Fatalf("expected live run")
	}
	if m.EndTime.Sub(m.StartTime) != 3*time.Second {
		t.Fatalf("unexpected duration %v", m.EndTime.Sub(m.StartTime))
	}
	if m.Found != 4 || m.Created != 2 || m.Failed != 1 || m.Skipped != 1 || m.SystemSkipped != 5 {
		t.Fatalf("unexpected counters %+v", m)
	}
}

func TestLoadCategoriesCountsOutcomes(t *testing.T) {
	j := seedJournal(t)

	cats, err := LoadCategories(j)
	if err != nil {
		t.Fatalf("load categories: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(cats))
	}
	if cats[0].Name != "pictures" || cats[0].Found != 3 || cats[0].Created != 2 || cats[0].Skipped != 1 {
		t.Fatalf("unexpected first row %+v", cats[0])
	}
	if cats[1].Name != "audio" || cats[1].Failed != 1 {
		t.Fatalf("unexpected second row %+v", cats[1])
	}
}

func TestLoadNamespacesSorts(t *testing.T) {
	j := seedJournal(t)

	byCount, err := LoadNamespaces(j, "pictures", "links", 10)
	if err != nil {
		t.Fatalf("load namespaces: %v", err)
	}
	if len(byCount) != 2 || byCount[0].Name != "Vacation" || byCount[0].Links != 2 {
		t.Fatalf("unexpected namespaces %+v", byCount)
	}

	byName, err := LoadNamespaces(j, "pictures", "name", 10)
	if err != nil {
		t.Fatalf("load namespaces: %v", err)
	}
	if byName[0].Name != "Photos" {
		t.Fatalf("expected Photos first, got %s", byName[0].Name)
	}
}

func TestLoadLinksAndFailures(t *testing.T) {
	j := seedJournal(t)

	links, err := LoadLinks(j, "pictures", "Vacation", 10)
	if err != nil {
		t.Fatalf("load links: %v", err)
	}
	if len(links) != 2 || links[0].Name != "a.png" || links[0].Outcome != entry.Skipped {
		t.Fatalf("unexpected links %+v", links)
	}

	failures, err := LoadFailures(j, 10)
	if err != nil {
		t.Fatalf("load failures: %v", err)
	}
	if len(failures) != 1 || failures[0].Reason != "read-only file system" {
		t.Fatalf("unexpected failures %+v", failures)
	}

	found, err := FindBySource(j, "/more/", 10)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) != 1 || found[0].Namespace != "Music" {
		t.Fatalf("unexpected matches %+v", found)
	}
}
