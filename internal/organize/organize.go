// Package organize runs the scan-plan-link pipeline over a set of roots.
package organize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/michaelscutari/symsort/internal/entry"
	"github.com/michaelscutari/symsort/internal/exclude"
	"github.com/michaelscutari/symsort/internal/link"
	"github.com/michaelscutari/symsort/internal/logging"
	"github.com/michaelscutari/symsort/internal/pathutil"
	"github.com/michaelscutari/symsort/internal/report"
	"github.com/michaelscutari/symsort/internal/scan"
	"github.com/spf13/afero"
)

// Setup errors. Everything else that goes wrong during a run is recovered
// and counted.
var (
	ErrNoRoots            = errors.New("no valid roots to scan")
	ErrOutputNotCreatable = errors.New("output directory cannot be created")
	ErrInvalidExclude     = errors.New("invalid exclude pattern")
)

const defaultLinkWorkers = 4

// Request holds the fully resolved inputs of one run.
type Request struct {
	Roots      []string
	OutputRoot string
	Preview    bool

	// ScanWorkers and LinkWorkers bound concurrency; zero picks defaults.
	ScanWorkers int
	LinkWorkers int

	// Policy overrides the default exclusion policy.
	Policy *exclude.Policy
	// ExcludePatterns are extra regular expressions over directory paths.
	ExcludePatterns []string

	// Progress observes the scan.
	Progress scan.ProgressFunc
	// Record observes every link record.
	Record link.RecordFunc

	// Fs is the filesystem links are written to; the OS by default.
	Fs afero.Fs
}

// Result is everything a run produced.
type Result struct {
	Roots      []string
	OutputRoot string
	Preview    bool
	Inventory  entry.Inventory
	Scan       entry.ScanStats
	Counts     entry.Counts
	Failures   []entry.LinkRecord
	StartTime  time.Time
	EndTime    time.Time
}

// Summary projects the result for display.
func (r *Result) Summary() report.Summary {
	s := report.New(r.Inventory, r.Scan, r.Counts, r.Failures, r.Preview)
	s.Elapsed = r.EndTime.Sub(r.StartTime)
	return s
}

// ResolveRoots makes roots absolute and keeps the ones that are readable
// directories. It fails with ErrNoRoots when none is left.
func ResolveRoots(roots []string) ([]string, error) {
	logger := logging.GetLogger("organize")
	var out []string
	seen := make(map[string]bool)
	for _, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			logger.Warn().Err(err).Str("root", r).Msg("Cannot resolve root")
			continue
		}
		abs = pathutil.Normalize(abs)
		if seen[abs] {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			logger.Warn().Err(err).Str("root", abs).Msg("Skipping unavailable root")
			continue
		}
		if !info.IsDir() {
			logger.Warn().Str("root", abs).Msg("Skipping root: not a directory")
			continue
		}
		seen[abs] = true
		out = append(out, abs)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoRoots, roots)
	}
	return out, nil
}

// Run scans the roots, then plans and materializes one link per
// classified file. Only setup problems and cancellation return an error;
// per-file failures are reported in the result.
func Run(ctx context.Context, req Request) (*Result, error) {
	logger := logging.GetLogger("organize")
	res := &Result{Preview: req.Preview, StartTime: time.Now(), Inventory: make(entry.Inventory)}

	roots, err := ResolveRoots(req.Roots)
	if err != nil {
		return nil, err
	}
	res.Roots = roots

	if req.OutputRoot == "" {
		return nil, fmt.Errorf("%w: empty path", ErrOutputNotCreatable)
	}
	out, err := filepath.Abs(req.OutputRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputNotCreatable, err)
	}
	out = pathutil.Normalize(out)
	res.OutputRoot = out

	fsys := req.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if !req.Preview {
		if err := fsys.MkdirAll(out, 0755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOutputNotCreatable, err)
		}
	}

	opts := scan.DefaultOptions().WithProgress(req.Progress)
	if req.ScanWorkers > 0 {
		opts.WithWorkers(req.ScanWorkers)
	}
	if req.Policy != nil {
		opts.WithPolicy(req.Policy)
	}
	for _, pattern := range req.ExcludePatterns {
		if err := opts.AddExcludePattern(pattern); err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidExclude, pattern, err)
		}
	}
	opts.AddSkipPath(out)

	logger.Info().Strs("roots", roots).Str("output", out).Bool("preview", req.Preview).Msg("Starting run")

	inv, stats, err := scan.NewScanner(opts).Run(ctx, roots)
	res.Scan = stats
	if err != nil {
		res.EndTime = time.Now()
		return res, fmt.Errorf("scan interrupted: %w", err)
	}
	res.Inventory = inv

	if inv.Total() == 0 {
		logger.Info().Msg("No files found matching the known categories")
		res.EndTime = time.Now()
		return res, nil
	}

	workers := req.LinkWorkers
	if workers < 1 {
		workers = defaultLinkWorkers
	}
	linker := link.NewLinker(fsys, out, req.Preview, workers)
	if req.Record != nil {
		linker.SetRecordFunc(req.Record)
	}
	lres, err := linker.Run(ctx, inv)
	res.Counts = lres.Counts
	res.Failures = lres.Failures
	res.EndTime = time.Now()
	if err != nil {
		return res, fmt.Errorf("linking interrupted: %w", err)
	}
	return res, nil
}
