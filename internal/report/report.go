// Package report projects a finished run into a human-readable summary.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/michaelscutari/symsort/internal/category"
	"github.com/michaelscutari/symsort/internal/entry"
)

var (
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const ruleWidth = 70

// Summary is a read-only projection of one run.
type Summary struct {
	Found    map[category.Category]int
	Scan     entry.ScanStats
	Counts   entry.Counts
	Failures []entry.LinkRecord
	Preview  bool
	Elapsed  time.Duration
}

// New builds a summary from the inventory and link results.
func New(inv entry.Inventory, scan entry.ScanStats, counts entry.Counts, failures []entry.LinkRecord, preview bool) Summary {
	found := make(map[category.Category]int, len(inv))
	for c, files := range inv {
		found[c] = len(files)
	}
	return Summary{
		Found:    found,
		Scan:     scan,
		Counts:   counts,
		Failures: failures,
		Preview:  preview,
	}
}

// TotalFound returns the number of classified files.
func (s Summary) TotalFound() int {
	n := 0
	for _, v := range s.Found {
		n += v
	}
	return n
}

// Render writes the summary to w.
func (s Summary) Render(w io.Writer) error {
	var b strings.Builder
	rule := ruleStyle.Render(strings.Repeat("=", ruleWidth))

	fmt.Fprintf(&b, "\n%s\n%s\n%s\n", rule, titleStyle.Render("SUMMARY"), rule)

	fmt.Fprintf(&b, "\n%s\n", labelStyle.Render("Files found by category:"))
	for _, c := range category.All {
		n, ok := s.Found[c]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  %s: %s files\n", title(c), humanize.Comma(int64(n)))
	}
	fmt.Fprintf(&b, "\nTotal files found: %s\n", humanize.Comma(int64(s.TotalFound())))
	if s.Scan.SystemSkipped > 0 {
		fmt.Fprintf(&b, "System files skipped: %s\n", humanize.Comma(s.Scan.SystemSkipped))
	}
	if s.Scan.Errors > 0 {
		fmt.Fprintf(&b, "Unreadable directories: %s\n", humanize.Comma(s.Scan.Errors))
	}

	if s.Preview {
		fmt.Fprintf(&b, "\n%s\n", warnStyle.Render("PREVIEW complete - no links were created"))
		fmt.Fprintf(&b, "  Would create: %s links\n", humanize.Comma(s.Counts.Created))
	} else {
		fmt.Fprintf(&b, "\n%s\n", successStyle.Render("Symbolic links created: "+humanize.Comma(s.Counts.Created)))
	}
	if s.Counts.Failed > 0 {
		fmt.Fprintf(&b, "%s\n", errorStyle.Render("Failed: "+humanize.Comma(s.Counts.Failed)))
	}
	if s.Counts.Skipped > 0 {
		fmt.Fprintf(&b, "Skipped (already exist): %s\n", humanize.Comma(s.Counts.Skipped))
	}

	if len(s.Failures) > 0 {
		fmt.Fprintf(&b, "\n%s\n", labelStyle.Render("Failed links:"))
		for _, f := range s.Failures {
			fmt.Fprintf(&b, "  %s: %s\n", filepath.Base(f.Plan.Source), f.Reason)
		}
	}

	if s.Elapsed > 0 {
		fmt.Fprintf(&b, "\nCompleted in %s\n", s.Elapsed.Round(time.Millisecond))
	}
	fmt.Fprintf(&b, "%s\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}

func title(c category.Category) string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
