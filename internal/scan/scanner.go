package scan

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/michaelscutari/symsort/internal/entry"
	"github.com/michaelscutari/symsort/internal/logging"
	"github.com/michaelscutari/symsort/internal/pathutil"
)

// Scanner walks root directories and classifies the files it finds.
type Scanner struct {
	opts *ScanOptions

	fileCh   chan entry.DiscoveredFile
	errorCh  chan entry.ScanError
	dirQueue chan dirWork

	inFlight      int64
	systemSkipped int64

	wg        sync.WaitGroup
	closeOnce sync.Once
}

type dirWork struct {
	root string
	path string
}

// NewScanner creates a new scanner.
func NewScanner(opts *ScanOptions) *Scanner {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.ProgressEvery < 1 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	return &Scanner{opts: opts}
}

// Run scans every root and returns the inventory once all of them are
// exhausted. Unreadable roots and subtrees are logged and skipped; only
// cancellation ends a scan early, in which case the partial inventory is
// discarded.
func (s *Scanner) Run(ctx context.Context, roots []string) (entry.Inventory, entry.ScanStats, error) {
	logger := logging.GetLogger("scan")
	start := time.Now()
	defer logging.LogDuration(logger, start, "scan")

	var stats entry.ScanStats
	var seeds []dirWork
	seen := make(map[string]bool)
	for _, root := range roots {
		root = pathutil.Normalize(root)
		if seen[root] {
			continue
		}
		seen[root] = true

		info, err := os.Stat(root)
		if err != nil {
			logger.Info().Err(err).Str("root", root).Msg("Skipping root")
			stats.Errors++
			continue
		}
		if !info.IsDir() {
			logger.Info().Str("root", root).Msg("Skipping root: not a directory")
			stats.Errors++
			continue
		}
		seeds = append(seeds, dirWork{root: root, path: root})
	}

	queueSize := s.opts.Workers * 1024
	if queueSize < 4096 {
		queueSize = 4096
	}
	if queueSize < len(seeds) {
		queueSize = len(seeds)
	}
	s.fileCh = make(chan entry.DiscoveredFile, 1024)
	s.errorCh = make(chan entry.ScanError, 256)
	s.dirQueue = make(chan dirWork, queueSize)
	s.closeOnce = sync.Once{}
	atomic.StoreInt64(&s.systemSkipped, 0)
	atomic.StoreInt64(&s.inFlight, 0)

	if len(seeds) == 0 {
		return make(entry.Inventory), stats, nil
	}

	for _, seed := range seeds {
		logger.Info().Str("root", seed.root).Msg("Scanning root")
		atomic.AddInt64(&s.inFlight, 1)
		s.dirQueue <- seed
	}

	collected := make(chan struct{})
	inv := make(entry.Inventory)
	go func() {
		defer close(collected)
		s.collect(inv, &stats)
	}()

	for i := 0; i < s.opts.Workers; i++ {
		w := NewWorker(i, s.opts, s.fileCh, s.errorCh, s.dirQueue, &s.inFlight, &s.systemSkipped, s.closeDirQueue)
		s.wg.Add(1)
		go func(w *Worker) {
			defer s.wg.Done()
			w.Run(ctx)
		}(w)
	}

	s.wg.Wait()
	s.closeDirQueue()
	close(s.fileCh)
	close(s.errorCh)
	<-collected

	stats.SystemSkipped = atomic.LoadInt64(&s.systemSkipped)
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	logger.Info().
		Int64("classified", stats.Classified).
		Int("categories", len(inv.Categories())).
		Int64("systemSkipped", stats.SystemSkipped).
		Int64("errors", stats.Errors).
		Msg("Scan complete")
	return inv, stats, nil
}

// collect is the single owner of the inventory and the progress cadence.
func (s *Scanner) collect(inv entry.Inventory, stats *entry.ScanStats) {
	logger := logging.GetLogger("scan")
	fileCh, errorCh := s.fileCh, s.errorCh
	every := int64(s.opts.ProgressEvery)

	for fileCh != nil || errorCh != nil {
		select {
		case f, ok := <-fileCh:
			if !ok {
				fileCh = nil
				continue
			}
			inv.Add(f)
			stats.Classified++
			if s.opts.Progress != nil && stats.Classified%every == 0 {
				s.opts.Progress(stats.Classified, f.Category, f.Path)
			}

		case e, ok := <-errorCh:
			if !ok {
				errorCh = nil
				continue
			}
			stats.Errors++
			logger.Info().Str("path", e.Path).Str("err", e.Message).Msg("Skipped unreadable directory")
		}
	}
}

func (s *Scanner) closeDirQueue() {
	s.closeOnce.Do(func() {
		close(s.dirQueue)
	})
}

