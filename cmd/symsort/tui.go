package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaelscutari/symsort/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse a run journal interactively",
	Long:  `Open an interactive TUI to browse the link tree by category and folder.`,
	RunE:  runTUI,
}

var (
	tuiDB  string
	tuiOut string
)

func init() {
	tuiCmd.Flags().StringVarP(&tuiDB, "db", "d", "", "Path to journal file (default <out>/.symsort/latest.db)")
	tuiCmd.Flags().StringVarP(&tuiOut, "out", "o", "", "Output directory whose latest journal to read")
}

func runTUI(cmd *cobra.Command, args []string) error {
	database, err := openJournal(tuiDB, tuiOut)
	if err != nil {
		return err
	}
	defer database.Close()

	model := tui.NewModel(database)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
