package tui

import (
	"cmp"
	"database/sql"
	"slices"
	"strings"

	"github.com/michaelscutari/symsort/internal/db"
	"github.com/michaelscutari/symsort/internal/entry"

	tea "github.com/charmbracelet/bubbletea"
)

const rowLimit = 5000

// Level is the depth of the browser: categories, namespaces, then links.
type Level int

const (
	LevelCategories Level = iota
	LevelNamespaces
	LevelLinks
)

// SortColumn represents the current sort field.
type SortColumn int

const (
	SortByCount SortColumn = iota
	SortByName
)

func (s SortColumn) String() string {
	if s == SortByName {
		return "name"
	}
	return "count"
}

// row is one line of any level.
type row struct {
	Name    string
	Count   int64
	Source  string
	Outcome entry.Outcome
	Reason  string
}

// Model holds the TUI state.
type Model struct {
	db           *sql.DB
	meta         *entry.RunMeta
	level        Level
	category     string
	namespace    string
	allRows      []row
	rows         []row
	total        int64
	cursor       int
	sort         SortColumn
	width        int
	height       int
	filter       string
	filterActive bool
	err          error
}

// NewModel creates a new TUI model over an open journal.
func NewModel(database *sql.DB) *Model {
	return &Model{
		db:   database,
		sort: SortByCount,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.loadInitialData
}

type dataLoadedMsg struct {
	meta *entry.RunMeta
	rows []row
	err  error
}

func (m *Model) loadInitialData() tea.Msg {
	meta, err := db.GetRunMeta(m.db)
	if err != nil {
		return dataLoadedMsg{err: err}
	}
	rows, err := categoryRows(m.db)
	if err != nil {
		return dataLoadedMsg{err: err}
	}
	return dataLoadedMsg{meta: meta, rows: rows}
}

type rowsLoadedMsg struct {
	level     Level
	category  string
	namespace string
	rows      []row
	err       error
}

func (m *Model) loadLevel(level Level, category, namespace string) tea.Cmd {
	return func() tea.Msg {
		msg := rowsLoadedMsg{level: level, category: category, namespace: namespace}
		switch level {
		case LevelCategories:
			msg.rows, msg.err = categoryRows(m.db)
		case LevelNamespaces:
			msg.rows, msg.err = namespaceRows(m.db, category)
		default:
			msg.rows, msg.err = linkRows(m.db, category, namespace)
		}
		return msg
	}
}

func categoryRows(database *sql.DB) ([]row, error) {
	cats, err := db.LoadCategories(database)
	if err != nil {
		return nil, err
	}
	rows := make([]row, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, row{Name: c.Name, Count: c.Found})
	}
	return rows, nil
}

func namespaceRows(database *sql.DB, category string) ([]row, error) {
	nss, err := db.LoadNamespaces(database, category, "links", rowLimit)
	if err != nil {
		return nil, err
	}
	rows := make([]row, 0, len(nss))
	for _, n := range nss {
		rows = append(rows, row{Name: n.Name, Count: n.Links})
	}
	return rows, nil
}

func linkRows(database *sql.DB, category, namespace string) ([]row, error) {
	links, err := db.LoadLinks(database, category, namespace, rowLimit)
	if err != nil {
		return nil, err
	}
	rows := make([]row, 0, len(links))
	for _, l := range links {
		rows = append(rows, row{Name: l.Name, Count: 1, Source: l.Source, Outcome: l.Outcome, Reason: l.Reason})
	}
	return rows, nil
}

func (m *Model) helpLine() string {
	if m.filterActive {
		return "Type to filter | Enter: apply | Esc: clear | q: quit"
	}
	if m.level == LevelLinks {
		return "↑/↓ move | Backspace: back | n/c: sort | /: filter | q: quit"
	}
	return "↑/↓ move | Enter: open | Backspace: back | n/c: sort | /: filter | q: quit"
}

func (m *Model) setRows(rows []row) {
	m.allRows = rows
	m.total = 0
	for _, r := range rows {
		m.total += r.Count
	}
	m.sortRows()
	m.applyFilter()
}

func (m *Model) sortRows() {
	slices.SortStableFunc(m.allRows, func(a, b row) int {
		if m.sort == SortByCount && a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

func (m *Model) applyFilter() {
	if m.filter == "" {
		m.rows = m.allRows
	} else {
		filtered := make([]row, 0, len(m.allRows))
		needle := strings.ToLower(m.filter)
		for _, r := range m.allRows {
			if strings.Contains(strings.ToLower(r.Name), needle) {
				filtered = append(filtered, r)
			}
		}
		m.rows = filtered
	}
	m.cursor = 0
}
