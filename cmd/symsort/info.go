package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/symsort/internal/db"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display run metadata",
	Long:  `Print metadata about a run journal including timestamps and link statistics.`,
	RunE:  runInfo,
}

var (
	infoDB  string
	infoOut string
)

func init() {
	infoCmd.Flags().StringVarP(&infoDB, "db", "d", "", "Path to journal file (default <out>/.symsort/latest.db)")
	infoCmd.Flags().StringVarP(&infoOut, "out", "o", "", "Output directory whose latest journal to read")
}

func runInfo(cmd *cobra.Command, args []string) error {
	database, err := openJournal(infoDB, infoOut)
	if err != nil {
		return err
	}
	defer database.Close()

	meta, err := db.GetRunMeta(database)
	if err != nil {
		return fmt.Errorf("failed to read run metadata: %w", err)
	}

	fmt.Printf("Run Information\n")
	fmt.Printf("===============\n\n")
	fmt.Printf("Roots:        %s\n", strings.Join(meta.Roots, ", "))
	fmt.Printf("Output:       %s\n", meta.OutputRoot)
	fmt.Printf("Start Time:   %s (%s)\n", meta.StartTime.Format(time.RFC3339), humanize.Time(meta.StartTime))
	if !meta.EndTime.IsZero() {
		fmt.Printf("End Time:     %s\n", meta.EndTime.Format(time.RFC3339))
		fmt.Printf("Duration:     %s\n", meta.EndTime.Sub(meta.StartTime).Round(time.Second))
	}
	fmt.Printf("\nStatistics\n")
	fmt.Printf("----------\n")
	fmt.Printf("Files found:    %s\n", humanize.Comma(meta.Found))
	fmt.Printf("Links created:  %s\n", humanize.Comma(meta.Created))
	fmt.Printf("Skipped:        %s\n", humanize.Comma(meta.Skipped))
	fmt.Printf("Failed:         %s\n", humanize.Comma(meta.Failed))
	if meta.SystemSkipped > 0 {
		fmt.Printf("System files:   %s\n", humanize.Comma(meta.SystemSkipped))
	}
	if meta.ScanErrors > 0 {
		fmt.Printf("Scan errors:    %s\n", humanize.Comma(meta.ScanErrors))
	}

	cats, err := db.LoadCategories(database)
	if err != nil {
		return fmt.Errorf("failed to read categories: %w", err)
	}
	if len(cats) > 0 {
		fmt.Printf("\nCategories\n")
		fmt.Printf("----------\n")
		for _, c := range cats {
			fmt.Printf("%-10s %s files\n", c.Name+":", humanize.Comma(c.Found))
		}
	}

	return nil
}
