package entry

import (
	"sync/atomic"
	"time"

	"github.com/michaelscutari/symsort/internal/category"
)

// DiscoveredFile is a regular file the scanner classified.
type DiscoveredFile struct {
	Path     string
	Category category.Category
}

// Inventory groups discovered files by category in discovery order.
type Inventory map[category.Category][]DiscoveredFile

// Add appends f to its category list.
func (inv Inventory) Add(f DiscoveredFile) {
	inv[f.Category] = append(inv[f.Category], f)
}

// Total returns the number of files across all categories.
func (inv Inventory) Total() int {
	n := 0
	for _, files := range inv {
		n += len(files)
	}
	return n
}

// Categories returns the non-empty categories in canonical order.
func (inv Inventory) Categories() []category.Category {
	var out []category.Category
	for _, c := range category.All {
		if len(inv[c]) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// LinkPlan is a source file and the free target path reserved for it.
type LinkPlan struct {
	Source    string
	Target    string
	Category  category.Category
	Namespace string
	// Existing is set when Target already is a link to Source from an
	// earlier run.
	Existing bool
}

// Outcome is the result of materializing one plan.
type Outcome uint8

const (
	Created Outcome = iota
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// LinkRecord is one materialization result, as journaled.
type LinkRecord struct {
	Plan    LinkPlan
	Outcome Outcome
	Reason  string
}

// ScanError is a traversal problem that was recovered locally.
type ScanError struct {
	Path    string
	Message string
}

// RunStats holds the link counters of one materialization pass.
// Counters only grow and are safe for concurrent use.
type RunStats struct {
	created atomic.Int64
	failed  atomic.Int64
	skipped atomic.Int64
}

// Record increments the counter for o and returns its new value.
func (s *RunStats) Record(o Outcome) int64 {
	switch o {
	case Created:
		return s.created.Add(1)
	case Skipped:
		return s.skipped.Add(1)
	default:
		return s.failed.Add(1)
	}
}

// Snapshot returns the current counter values.
func (s *RunStats) Snapshot() Counts {
	return Counts{
		Created: s.created.Load(),
		Failed:  s.failed.Load(),
		Skipped: s.skipped.Load(),
	}
}

// Counts is a point-in-time copy of RunStats.
type Counts struct {
	Created int64
	Failed  int64
	Skipped int64
}

// ScanStats summarizes one scan pass.
type ScanStats struct {
	Classified    int64
	SystemSkipped int64
	Errors        int64
}

// RunMeta holds metadata about a journaled run.
type RunMeta struct {
	Roots         []string
	OutputRoot    string
	Preview       bool
	StartTime     time.Time
	EndTime       time.Time
	Found         int64
	Created       int64
	Failed        int64
	Skipped       int64
	SystemSkipped int64
	ScanErrors    int64
}
