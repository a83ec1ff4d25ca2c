// Package snapshot journals live runs into timestamped SQLite files kept
// next to the links they describe.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/michaelscutari/symsort/internal/db"
	"github.com/michaelscutari/symsort/internal/entry"
	"github.com/michaelscutari/symsort/internal/logging"
	"github.com/michaelscutari/symsort/internal/organize"

	_ "modernc.org/sqlite"
)

const (
	// DirName is the journal directory inside the output root.
	DirName    = ".symsort"
	latestName = "latest.db"
	lockName   = ".symsort.lock"
	filePrefix = "symsort-"

	recordBuffer    = 1024
	ingestBatchSize = 500
	ingestFlushMs   = 250
)

// ErrLocked is returned when another run holds the journal lock.
var ErrLocked = errors.New("another run is in progress")

// StageFunc is called when the run stage changes.
type StageFunc func(stage string)

// Manager handles the run lifecycle including locking and retention.
type Manager struct {
	outputRoot string
	journalDir string
	retention  int
	lockFile   *os.File
	stageFunc  StageFunc
}

// NewManager creates a manager for the journal kept below outputRoot.
// retention <= 0 keeps every journal.
func NewManager(outputRoot string, retention int) *Manager {
	return &Manager{
		outputRoot: outputRoot,
		journalDir: filepath.Join(outputRoot, DirName),
		retention:  retention,
	}
}

// JournalDir returns the directory journals are written to.
func (m *Manager) JournalDir() string {
	return m.journalDir
}

// SetStageFunc sets a callback for run stage updates.
func (m *Manager) SetStageFunc(f StageFunc) {
	m.stageFunc = f
}

func (m *Manager) stage(s string) {
	if m.stageFunc != nil {
		m.stageFunc(s)
	}
}

// Run executes req and journals every link record. Preview runs are passed
// straight through and produce no journal; the returned path is then empty.
func (m *Manager) Run(ctx context.Context, req organize.Request) (*organize.Result, string, error) {
	logger := logging.GetLogger("snapshot")
	if req.Preview {
		res, err := organize.Run(ctx, req)
		return res, "", err
	}

	req.OutputRoot = m.outputRoot
	// Nothing is written below the output root until a root is usable.
	roots, err := organize.ResolveRoots(req.Roots)
	if err != nil {
		return nil, "", err
	}
	req.Roots = roots

	if err := os.MkdirAll(m.journalDir, 0755); err != nil {
		return nil, "", fmt.Errorf("%w: %v", organize.ErrOutputNotCreatable, err)
	}

	if err := m.acquireLock(); err != nil {
		return nil, "", err
	}
	defer m.releaseLock()

	tempPath := filepath.Join(m.journalDir, fmt.Sprintf(".symsort-temp-%d.db", time.Now().UnixNano()))
	database, err := openJournal(tempPath)
	if err != nil {
		os.Remove(tempPath)
		return nil, "", err
	}
	discard := func() {
		database.Close()
		os.Remove(tempPath)
	}

	start := time.Now()
	if err := db.InitRunMeta(database, entry.RunMeta{Roots: req.Roots, OutputRoot: m.outputRoot, StartTime: start}); err != nil {
		discard()
		return nil, "", fmt.Errorf("failed to record run: %w", err)
	}

	recordCh := make(chan entry.LinkRecord, recordBuffer)
	ing := db.NewIngester(database, recordCh, ingestBatchSize, ingestFlushMs)
	ingestDone := make(chan error, 1)
	go func() {
		// The ingester runs until recordCh closes so a cancelled run
		// never blocks the linker on a full buffer.
		ingestDone <- ing.Run(context.Background())
	}()

	observe := req.Record
	req.Record = func(r entry.LinkRecord) {
		if observe != nil {
			observe(r)
		}
		recordCh <- r
	}

	m.stage("organize")
	res, runErr := organize.Run(ctx, req)
	close(recordCh)
	ingestErr := <-ingestDone

	if runErr != nil {
		discard()
		return res, "", runErr
	}
	if ingestErr != nil {
		// The links exist either way; only the record of them is lost.
		logger.Warn().Err(ingestErr).Msg("Failed to journal links, run was not recorded")
		discard()
		return res, "", nil
	}

	m.stage("finalize")
	if err := writeResult(database, res); err != nil {
		discard()
		return res, "", err
	}
	database.Close()

	finalName := fmt.Sprintf("%s%s.db", filePrefix, start.Format("20060102-150405"))
	finalPath := filepath.Join(m.journalDir, finalName)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return res, "", fmt.Errorf("failed to rename journal: %w", err)
	}

	// Update latest.db symlink atomically via temp symlink + rename
	latestPath := filepath.Join(m.journalDir, latestName)
	tempLink := filepath.Join(m.journalDir, ".latest.db.tmp")
	os.Remove(tempLink)
	if err := os.Symlink(finalName, tempLink); err == nil {
		if err := os.Rename(tempLink, latestPath); err != nil {
			os.Remove(tempLink)
			logger.Warn().Err(err).Msg("Failed to update latest.db symlink")
		}
	} else {
		logger.Warn().Err(err).Msg("Failed to create latest.db symlink")
	}

	if err := m.pruneOldJournals(); err != nil {
		logger.Warn().Err(err).Msg("Failed to prune old journals")
	}

	logger.Debug().Str("journal", finalPath).Int64("links", ing.Progress().Written).Msg("Journal written")
	return res, finalPath, nil
}

func openJournal(path string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal: %w", err)
	}
	if err := db.InitSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := db.ApplyWritePragmas(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	return database, nil
}

func writeResult(database *sql.DB, res *organize.Result) error {
	found := make(map[string]int)
	for c, files := range res.Inventory {
		found[c.String()] = len(files)
	}
	if err := db.WriteCategoryCounts(database, found); err != nil {
		return fmt.Errorf("failed to write category counts: %w", err)
	}

	meta := entry.RunMeta{
		Roots:         res.Roots,
		OutputRoot:    res.OutputRoot,
		StartTime:     res.StartTime,
		EndTime:       res.EndTime,
		Found:         int64(res.Inventory.Total()),
		Created:       res.Counts.Created,
		Failed:        res.Counts.Failed,
		Skipped:       res.Counts.Skipped,
		SystemSkipped: res.Scan.SystemSkipped,
		ScanErrors:    res.Scan.Errors,
	}
	if err := db.FinalizeRunMeta(database, meta); err != nil {
		return fmt.Errorf("failed to finalize run: %w", err)
	}
	if err := db.BuildIndexes(database); err != nil {
		return fmt.Errorf("failed to build indexes: %w", err)
	}
	if err := db.Finalize(database); err != nil {
		return fmt.Errorf("failed to finalize journal: %w", err)
	}
	return nil
}

func (m *Manager) acquireLock() error {
	lockPath := filepath.Join(m.journalDir, lockName)
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := lockFile(f); err != nil {
		f.Close()
		return ErrLocked
	}

	m.lockFile = f
	return nil
}

func (m *Manager) releaseLock() {
	if m.lockFile != nil {
		unlockFile(m.lockFile)
		m.lockFile.Close()
		m.lockFile = nil
	}
}

func (m *Manager) pruneOldJournals() error {
	if m.retention <= 0 {
		return nil
	}

	journals, err := m.ListJournals()
	if err != nil {
		return err
	}

	for len(journals) > m.retention {
		if err := os.Remove(journals[0]); err != nil {
			return fmt.Errorf("failed to remove %s: %w", filepath.Base(journals[0]), err)
		}
		journals = journals[1:]
	}

	return nil
}

// GetLatest returns the path to the latest journal.
func (m *Manager) GetLatest() (string, error) {
	return ResolveLatest(m.journalDir)
}

// ResolveLatest resolves latest.db inside journalDir.
func ResolveLatest(journalDir string) (string, error) {
	latestPath := filepath.Join(journalDir, latestName)
	resolved, err := filepath.EvalSymlinks(latestPath)
	if err != nil {
		return "", fmt.Errorf("no journal found in %s: %w", journalDir, err)
	}
	return resolved, nil
}

// ListJournals returns all journals, oldest first.
func (m *Manager) ListJournals() ([]string, error) {
	entries, err := os.ReadDir(m.journalDir)
	if err != nil {
		return nil, err
	}

	var journals []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), filePrefix) && strings.HasSuffix(e.Name(), ".db") {
			journals = append(journals, filepath.Join(m.journalDir, e.Name()))
		}
	}

	// Names embed the timestamp, so lexical order is chronological.
	sort.Strings(journals)
	return journals, nil
}
