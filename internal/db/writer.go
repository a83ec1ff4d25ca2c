package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/michaelscutari/symsort/internal/entry"
	"github.com/michaelscutari/symsort/internal/logging"
)

const insertLinkSQL = `INSERT INTO links (category, namespace, name, source, target, outcome, reason) VALUES (?, ?, ?, ?, ?, ?, ?)`

// Ingester batches link records and writes them to the journal.
type Ingester struct {
	db              *sql.DB
	recordCh        <-chan entry.LinkRecord
	batchSize       int
	flushIntervalMs int

	batch []entry.LinkRecord
	stmt  *sql.Stmt

	// Progress tracking (atomic)
	written int64
	created int64
	failed  int64
	skipped int64

	log zerolog.Logger
}

// Progress holds the number of records journaled so far.
type Progress struct {
	Written int64
	Created int64
	Failed  int64
	Skipped int64
}

// NewIngester creates a new ingester.
func NewIngester(db *sql.DB, recordCh <-chan entry.LinkRecord, batchSize, flushIntervalMs int) *Ingester {
	if batchSize <= 0 {
		batchSize = 1
	}
	if flushIntervalMs <= 0 {
		flushIntervalMs = 250
	}
	return &Ingester{
		db:              db,
		recordCh:        recordCh,
		batchSize:       batchSize,
		flushIntervalMs: flushIntervalMs,
		batch:           make([]entry.LinkRecord, 0, batchSize),
		log:             logging.GetLogger("journal"),
	}
}

// Run consumes records from the channel and batches them to the database.
// It always receives until the record channel is closed, so senders never
// block on it. Once ctx is done or a write fails, the remaining records are
// discarded and the first error is returned.
func (ing *Ingester) Run(ctx context.Context) error {
	var err error
	ing.stmt, err = ing.db.Prepare(insertLinkSQL)
	if err != nil {
		return ing.discard(fmt.Errorf("failed to prepare link statement: %w", err))
	}
	defer ing.stmt.Close()

	ticker := time.NewTicker(time.Duration(ing.flushIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	ing.log.Debug().
		Int("batchSize", ing.batchSize).
		Int("flushIntervalMs", ing.flushIntervalMs).
		Msg("Ingester started")

	for {
		select {
		case <-ctx.Done():
			// Flush whatever is already buffered so the journal matches
			// the links that were actually attempted.
		drain:
			for {
				select {
				case r, ok := <-ing.recordCh:
					if !ok {
						return ing.flush()
					}
					ing.add(r)
				default:
					break drain
				}
			}
			return ing.discard(ing.flush())

		case r, ok := <-ing.recordCh:
			if !ok {
				return ing.flush()
			}
			ing.add(r)
			if len(ing.batch) >= ing.batchSize {
				if err := ing.flush(); err != nil {
					return ing.discard(err)
				}
			}

		case <-ticker.C:
			if err := ing.flush(); err != nil {
				return ing.discard(err)
			}
		}
	}
}

// discard drops every record still arriving until the channel is closed
// and returns err.
func (ing *Ingester) discard(err error) error {
	if err != nil {
		ing.log.Warn().Err(err).Msg("Journal write failed, discarding remaining records")
	}
	dropped := 0
	for range ing.recordCh {
		dropped++
	}
	if dropped > 0 {
		ing.log.Debug().Int("records", dropped).Msg("Discarded link records")
	}
	return err
}

func (ing *Ingester) add(r entry.LinkRecord) {
	switch r.Outcome {
	case entry.Created:
		atomic.AddInt64(&ing.created, 1)
	case entry.Skipped:
		atomic.AddInt64(&ing.skipped, 1)
	default:
		atomic.AddInt64(&ing.failed, 1)
	}
	ing.batch = append(ing.batch, r)
}

func (ing *Ingester) flush() error {
	if len(ing.batch) == 0 {
		return nil
	}

	batchLen := len(ing.batch)
	flushStart := time.Now()

	tx, err := ing.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt := tx.Stmt(ing.stmt)
	for _, r := range ing.batch {
		p := r.Plan
		_, err := stmt.Exec(p.Category.String(), p.Namespace, filepath.Base(p.Target), p.Source, p.Target, int(r.Outcome), r.Reason)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert link %q: %w", p.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	atomic.AddInt64(&ing.written, int64(batchLen))
	ing.log.Trace().
		Int("records", batchLen).
		Dur("took", time.Since(flushStart)).
		Msg("Flushed link batch")

	ing.batch = ing.batch[:0]
	return nil
}

// Progress returns current journal progress (safe for concurrent access).
func (ing *Ingester) Progress() Progress {
	return Progress{
		Written: atomic.LoadInt64(&ing.written),
		Created: atomic.LoadInt64(&ing.created),
		Failed:  atomic.LoadInt64(&ing.failed),
		Skipped: atomic.LoadInt64(&ing.skipped),
	}
}
