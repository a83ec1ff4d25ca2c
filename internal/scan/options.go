package scan

import (
	"github.com/michaelscutari/symsort/internal/category"
	"github.com/michaelscutari/symsort/internal/exclude"
	"github.com/michaelscutari/symsort/internal/pathutil"
)

// DefaultProgressEvery is how many classified files pass between progress
// notifications.
const DefaultProgressEvery = 100

// ProgressFunc observes the scan. It is called with the cumulative number of
// classified files and the file that reached the cadence.
type ProgressFunc func(count int64, c category.Category, path string)

// ScanOptions configures the scanning behavior.
type ScanOptions struct {
	// Workers is the number of concurrent directory processors.
	Workers int

	// Policy decides which directories are pruned.
	Policy *exclude.Policy

	// SkipPaths are absolute directories never descended into, such as
	// the output root when it lives inside a scanned tree.
	SkipPaths []string

	// ProgressEvery is the progress cadence in classified files.
	ProgressEvery int

	// Progress is notified every ProgressEvery classified files.
	Progress ProgressFunc
}

// DefaultOptions returns sensible defaults for scanning.
func DefaultOptions() *ScanOptions {
	return &ScanOptions{
		Workers:       8,
		Policy:        exclude.Default,
		ProgressEvery: DefaultProgressEvery,
	}
}

// WithWorkers sets the number of workers.
func (o *ScanOptions) WithWorkers(n int) *ScanOptions {
	o.Workers = n
	return o
}

// WithPolicy sets the exclusion policy.
func (o *ScanOptions) WithPolicy(p *exclude.Policy) *ScanOptions {
	o.Policy = p
	return o
}

// WithProgress sets the progress observer.
func (o *ScanOptions) WithProgress(f ProgressFunc) *ScanOptions {
	o.Progress = f
	return o
}

// AddSkipPath prunes dir and everything below it.
func (o *ScanOptions) AddSkipPath(dir string) {
	o.SkipPaths = append(o.SkipPaths, pathutil.Normalize(dir))
}

// AddExcludePattern adds a regular expression matched against full
// directory paths.
func (o *ScanOptions) AddExcludePattern(pattern string) error {
	p, err := o.policy().WithPatterns(pattern)
	if err != nil {
		return err
	}
	o.Policy = p
	return nil
}

// ShouldExclude checks whether the directory at path must be pruned: it
// lies in a skip path, or the policy rejects any component of its full
// path.
func (o *ScanOptions) ShouldExclude(path string) bool {
	for _, skip := range o.SkipPaths {
		if pathutil.Within(skip, path) {
			return true
		}
	}
	return o.policy().ShouldExclude(path)
}

func (o *ScanOptions) policy() *exclude.Policy {
	if o.Policy == nil {
		return exclude.Default
	}
	return o.Policy
}
