package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/michaelscutari/symsort/internal/category"
	"github.com/michaelscutari/symsort/internal/entry"
	"github.com/michaelscutari/symsort/internal/logging"
)

// Worker processes directories and emits classified files.
type Worker struct {
	id            int
	opts          *ScanOptions
	fileCh        chan<- entry.DiscoveredFile
	errorCh       chan<- entry.ScanError
	dirQueue      chan dirWork
	inFlight      *int64
	systemSkipped *int64
	done          func()
	stack         []dirWork
}

// NewWorker creates a new worker. done is called by whichever worker
// finishes the last outstanding directory.
func NewWorker(id int, opts *ScanOptions, fileCh chan<- entry.DiscoveredFile, errorCh chan<- entry.ScanError, dirQueue chan dirWork, inFlight, systemSkipped *int64, done func()) *Worker {
	return &Worker{
		id:            id,
		opts:          opts,
		fileCh:        fileCh,
		errorCh:       errorCh,
		dirQueue:      dirQueue,
		inFlight:      inFlight,
		systemSkipped: systemSkipped,
		done:          done,
	}
}

// Run processes directory work until the queue is closed.
func (w *Worker) Run(ctx context.Context) {
	for {
		if len(w.stack) > 0 {
			work := w.stack[len(w.stack)-1]
			w.stack = w.stack[:len(w.stack)-1]
			w.processWork(ctx, work)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case work, ok := <-w.dirQueue:
			if !ok {
				return
			}
			w.processWork(ctx, work)
		}
	}
}

// ProcessDirectory reads one directory, queues its admitted subdirectories
// and emits its classified regular files.
func (w *Worker) ProcessDirectory(ctx context.Context, root, dirPath string) {
	if ctx.Err() != nil {
		return
	}

	dirEntries, err := os.ReadDir(dirPath)
	if err != nil {
		w.sendError(ctx, entry.ScanError{Path: dirPath, Message: err.Error()})
		// ReadDir may return a partial listing alongside the error.
		if len(dirEntries) == 0 {
			return
		}
	}

	logger := logging.GetLogger("scan")
	for i, de := range dirEntries {
		if i%100 == 0 && ctx.Err() != nil {
			return
		}

		childPath := filepath.Join(dirPath, de.Name())
		mode := de.Type()

		switch {
		case mode.IsDir():
			if w.opts.ShouldExclude(childPath) {
				logger.Trace().Str("path", childPath).Msg("Pruned directory")
				continue
			}
			w.enqueueOrStack(ctx, root, childPath)

		case mode.IsRegular():
			w.processFile(ctx, de, childPath)
		}
	}
}

func (w *Worker) processFile(ctx context.Context, de fs.DirEntry, path string) {
	if isSystemFile(de) {
		atomic.AddInt64(w.systemSkipped, 1)
		return
	}

	c := category.Classify(de.Name())
	if c == category.None {
		return
	}

	select {
	case w.fileCh <- entry.DiscoveredFile{Path: path, Category: c}:
	case <-ctx.Done():
	}
}

func (w *Worker) sendError(ctx context.Context, e entry.ScanError) {
	select {
	case w.errorCh <- e:
	case <-ctx.Done():
	}
}

func (w *Worker) processWork(ctx context.Context, work dirWork) {
	w.ProcessDirectory(ctx, work.root, work.path)
	if atomic.AddInt64(w.inFlight, -1) == 0 {
		w.done()
	}
}

func (w *Worker) enqueueOrStack(ctx context.Context, root, path string) {
	if ctx.Err() != nil {
		return
	}

	atomic.AddInt64(w.inFlight, 1)
	select {
	case w.dirQueue <- dirWork{root: root, path: path}:
	default:
		// Queue full: keep work local to avoid deadlock
		w.stack = append(w.stack, dirWork{root: root, path: path})
	}
}
