package link

import (
	"context"
	"sync"

	"github.com/michaelscutari/symsort/internal/category"
	"github.com/michaelscutari/symsort/internal/entry"
	"github.com/michaelscutari/symsort/internal/logging"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// createdLogEvery is the live-mode cadence of "created N links" lines.
const createdLogEvery = 50

// RecordFunc receives every link record. It must be safe for concurrent use.
type RecordFunc func(entry.LinkRecord)

// Linker plans and materializes a whole inventory.
type Linker struct {
	planner *Planner
	mat     *Materializer
	preview bool
	workers int
	record  RecordFunc

	stats    entry.RunStats
	mu       sync.Mutex
	failures []entry.LinkRecord
}

// NewLinker creates a linker writing below outputRoot. workers bounds the
// number of concurrent materializations.
func NewLinker(fsys afero.Fs, outputRoot string, preview bool, workers int) *Linker {
	if preview {
		fsys = afero.NewReadOnlyFs(fsys)
	}
	if workers < 1 {
		workers = 1
	}
	return &Linker{
		planner: NewPlanner(fsys, outputRoot, preview),
		mat:     NewMaterializer(fsys, preview),
		preview: preview,
		workers: workers,
	}
}

// SetRecordFunc sets a callback that observes every link record.
func (l *Linker) SetRecordFunc(f RecordFunc) {
	l.record = f
}

// Result is the outcome of one linking pass.
type Result struct {
	Counts   entry.Counts
	Failures []entry.LinkRecord
}

// Run links every file of inv. Individual failures are counted, never
// returned; the error is non-nil only when ctx was canceled, in which case
// no new work was scheduled after cancellation.
func (l *Linker) Run(ctx context.Context, inv entry.Inventory) (Result, error) {
	logger := logging.GetLogger("link")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

schedule:
	for _, c := range inv.Categories() {
		files := inv[c]
		logger.Info().Str("category", string(c)).Int("files", len(files)).Msg("Processing category")
		for _, f := range files {
			if gctx.Err() != nil {
				break schedule
			}
			f := f
			g.Go(func() error {
				l.linkOne(f.Category, f.Path)
				return nil
			})
		}
	}
	_ = g.Wait()

	l.mu.Lock()
	failures := append([]entry.LinkRecord(nil), l.failures...)
	l.mu.Unlock()

	return Result{Counts: l.stats.Snapshot(), Failures: failures}, ctx.Err()
}

func (l *Linker) linkOne(c category.Category, source string) {
	logger := logging.GetLogger("link")

	rec := entry.LinkRecord{}
	plan, err := l.planner.Plan(c, source)
	rec.Plan = plan
	if err == nil {
		rec.Outcome, err = l.mat.Materialize(plan)
	} else {
		rec.Outcome = entry.Failed
	}
	if err != nil {
		rec.Reason = err.Error()
	}

	n := l.stats.Record(rec.Outcome)
	switch rec.Outcome {
	case entry.Created:
		if l.preview {
			logger.Info().Str("source", source).Str("target", plan.Target).Msg("Would link")
		} else if n%createdLogEvery == 0 {
			logger.Info().Int64("created", n).Msg("Created links")
		}
	case entry.Skipped:
		logger.Debug().Str("source", source).Str("target", plan.Target).Msg("Link already exists")
	case entry.Failed:
		logger.Warn().Str("source", source).Str("target", plan.Target).Str("reason", rec.Reason).Msg("Failed to link")
		l.mu.Lock()
		l.failures = append(l.failures, rec)
		l.mu.Unlock()
	}

	if l.record != nil {
		l.record(rec)
	}
}
