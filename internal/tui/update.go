package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.meta = msg.meta
		m.level = LevelCategories
		m.filter = ""
		m.filterActive = false
		m.setRows(msg.rows)
		return m, nil

	case rowsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.level = msg.level
		m.category = msg.category
		m.namespace = msg.namespace
		m.filter = ""
		m.filterActive = false
		m.setRows(msg.rows)
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filterActive {
		switch msg.String() {
		case "enter":
			m.filterActive = false
			return m, nil

		case "esc":
			m.filterActive = false
			m.filter = ""
			m.applyFilter()
			return m, nil

		case "backspace":
			if len(m.filter) > 0 {
				runes := []rune(m.filter)
				m.filter = string(runes[:len(runes)-1])
				m.applyFilter()
			}
			return m, nil

		case "ctrl+c":
			return m, tea.Quit
		}

		if msg.Type == tea.KeyRunes {
			m.filter += msg.String()
			m.applyFilter()
			return m, nil
		}

		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return m, nil

	case "enter", "l", "right":
		if len(m.rows) == 0 || m.cursor >= len(m.rows) {
			return m, nil
		}
		selected := m.rows[m.cursor]
		switch m.level {
		case LevelCategories:
			return m, m.loadLevel(LevelNamespaces, selected.Name, "")
		case LevelNamespaces:
			return m, m.loadLevel(LevelLinks, m.category, selected.Name)
		}
		return m, nil

	case "backspace", "h", "left":
		switch m.level {
		case LevelLinks:
			return m, m.loadLevel(LevelNamespaces, m.category, "")
		case LevelNamespaces:
			return m, m.loadLevel(LevelCategories, "", "")
		}
		return m, nil

	case "n":
		m.sort = SortByName
		m.sortRows()
		m.applyFilter()
		return m, nil

	case "c":
		m.sort = SortByCount
		m.sortRows()
		m.applyFilter()
		return m, nil

	case "/":
		m.filterActive = true
		return m, nil

	case "home", "g":
		m.cursor = 0
		return m, nil

	case "end", "G":
		if len(m.rows) > 0 {
			m.cursor = len(m.rows) - 1
		}
		return m, nil

	case "pgup":
		m.cursor -= 10
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case "pgdown":
		m.cursor += 10
		if m.cursor >= len(m.rows) {
			m.cursor = len(m.rows) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil
	}

	return m, nil
}
