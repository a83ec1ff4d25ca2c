package tui

import (
	"fmt"
	"math"
	"path"
	"strings"

	"github.com/michaelscutari/symsort/internal/entry"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}

	if m.meta == nil {
		return "Loading..."
	}

	var b strings.Builder
	headerLines := 0

	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\n")
		headerLines++
	}

	writeLine(titleStyle.Render("symsort - Link Browser"))

	runInfo := fmt.Sprintf("Run: %s | Found: %s | Created: %s | Skipped: %s | Failed: %s",
		m.meta.StartTime.Format("2006-01-02 15:04"),
		FormatCount(m.meta.Found),
		FormatCount(m.meta.Created),
		FormatCount(m.meta.Skipped),
		FormatCount(m.meta.Failed),
	)
	writeLine(statsStyle.Render(runInfo))

	location := truncateMiddle(m.location(), max(10, m.width-10))
	writeLine(breadcrumbStyle.Render("Path: " + location))

	status := fmt.Sprintf("Items: %s", FormatCount(int64(len(m.rows))))
	if m.filter != "" {
		status += fmt.Sprintf(" | Filter: %q", m.filter)
	}
	if m.level == LevelLinks && len(m.rows) > 0 && m.cursor < len(m.rows) {
		sel := m.rows[m.cursor]
		status += " | Source: " + sel.Source
		if sel.Reason != "" {
			status += " | " + sel.Reason
		}
	}
	writeLine(statusStyle.Render(status))

	if m.filterActive {
		writeLine(filterStyle.Render(fmt.Sprintf("Filter: %s_", m.filter)))
	} else if m.filter != "" {
		writeLine(filterStyle.Render(fmt.Sprintf("Filter: %s", m.filter)))
	}

	countLabel := headerLabel(m.countHeader(), m.sort == SortByCount, "v")
	nameLabel := headerLabel("NAME", m.sort == SortByName, "^")

	footerLines := 2
	visibleRows := m.height - headerLines - footerLines - 1
	if visibleRows < 5 {
		visibleRows = 5
	}

	startIdx := 0
	if m.cursor >= visibleRows {
		startIdx = m.cursor - visibleRows + 1
	}
	endIdx := min(len(m.rows), startIdx+visibleRows)

	countWidth := calcCountWidth(m.rows, startIdx, endIdx, countLabel)
	nameWidth := calcNameWidth(m.width, countWidth, m.level != LevelLinks)
	gap := strings.Repeat(" ", colGap)

	nameLabel = truncateRight(nameLabel, nameWidth)
	header := fmt.Sprintf("%*s%s%-*s", countWidth, countLabel, gap, nameWidth, nameLabel)
	if m.level != LevelLinks {
		header += gap + fmt.Sprintf("%*s", barColWidth, "SHARE")
	}
	writeLine(headerStyle.Render(header))

	for i := startIdx; i < endIdx; i++ {
		b.WriteString(m.formatRow(m.rows[i], i == m.cursor, countWidth, nameWidth))
		b.WriteString("\n")
	}

	displayedRows := min(len(m.rows)-startIdx, visibleRows)
	for i := displayedRows; i < visibleRows; i++ {
		b.WriteString("\n")
	}

	b.WriteString("\n")
	help := m.helpLine()
	if len(m.rows) > 0 {
		help = fmt.Sprintf("%s [%d/%d]", help, m.cursor+1, len(m.rows))
	}
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

// location renders the browsed position as a path below the output root.
func (m *Model) location() string {
	switch m.level {
	case LevelNamespaces:
		return path.Join(m.meta.OutputRoot, m.category)
	case LevelLinks:
		return path.Join(m.meta.OutputRoot, m.category, m.namespace)
	default:
		return m.meta.OutputRoot
	}
}

func (m *Model) countHeader() string {
	switch m.level {
	case LevelCategories:
		return "FOUND"
	case LevelNamespaces:
		return "LINKS"
	default:
		return "STATE"
	}
}

const (
	colGap        = 2
	minNameWidth  = 10
	barBlockWidth = 10                                        // number of block characters
	barPctWidth   = 4                                         // " 78%" or "100%"
	barGapWidth   = 1                                         // space between blocks and pct
	barColWidth   = barBlockWidth + barGapWidth + barPctWidth // 15
)

func calcCountWidth(rows []row, startIdx, endIdx int, label string) int {
	w := len(label)
	for i := startIdx; i < endIdx; i++ {
		if n := len(FormatCount(rows[i].Count)); n > w {
			w = n
		}
	}
	// link rows show an outcome word instead of a count
	return max(w, len("skipped"))
}

func calcNameWidth(totalWidth, countWidth int, withBar bool) int {
	used := countWidth + colGap
	if withBar {
		used += colGap + barColWidth
	}
	nameWidth := totalWidth - used
	if nameWidth < minNameWidth {
		nameWidth = minNameWidth
	}
	return nameWidth
}

func truncateRight(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func (m *Model) formatRow(r row, selected bool, countWidth, nameWidth int) string {
	gap := strings.Repeat(" ", colGap)

	var count, rawName, styledName string
	rawName = truncateRight(r.Name, nameWidth)
	if m.level == LevelLinks {
		count = r.Outcome.String()
		switch r.Outcome {
		case entry.Failed:
			styledName = failedStyle.Render(rawName)
		case entry.Skipped:
			styledName = skippedStyle.Render(rawName)
		default:
			styledName = linkStyle.Render(rawName)
		}
	} else {
		count = FormatCount(r.Count)
		rawName += "/"
		styledName = dirStyle.Render(rawName)
	}

	pad := nameWidth - len(rawName)
	if pad < 0 {
		pad = 0
	}
	line := fmt.Sprintf("%*s%s%s%s", countWidth, count, gap, styledName, strings.Repeat(" ", pad))
	if m.level != LevelLinks {
		line += gap + formatBar(r.Count, m.total)
	}

	if selected {
		return selectedStyle.Render(line)
	}
	return line
}

func formatBar(entryVal, parentTotal int64) string {
	if parentTotal <= 0 || entryVal <= 0 {
		empty := strings.Repeat("░", barBlockWidth)
		return barEmptyStyle.Render(empty) + fmt.Sprintf("  %3d%%", 0)
	}

	pct := float64(entryVal) / float64(parentTotal) * 100
	if pct > 100 {
		pct = 100
	}

	filled := int(math.Round(pct / 100 * float64(barBlockWidth)))
	if filled < 1 {
		filled = 1
	}
	if filled > barBlockWidth {
		filled = barBlockWidth
	}

	filledStr := barFilledStyle.Render(strings.Repeat("█", filled))
	emptyStr := barEmptyStyle.Render(strings.Repeat("░", barBlockWidth-filled))
	return filledStr + emptyStr + fmt.Sprintf("  %3d%%", int(math.Round(pct)))
}

func headerLabel(label string, active bool, dir string) string {
	if active {
		return label + dir
	}
	return label
}

func truncateMiddle(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	head := (maxLen - 3) / 2
	tail := maxLen - 3 - head
	return s[:head] + "..." + s[len(s)-tail:]
}
