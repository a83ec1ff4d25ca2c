package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/symsort/internal/category"
	"github.com/michaelscutari/symsort/internal/organize"
	"github.com/michaelscutari/symsort/internal/snapshot"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var organizeCmd = &cobra.Command{
	Use:   "organize [root...]",
	Short: "Scan roots and build the category link tree",
	Long: `Scan one or more root directories and create symbolic links under
<out>/<category>/<folder>/. Use --dry-run to report what would be linked
without touching the filesystem.`,
	RunE: runOrganize,
}

var (
	orgRoots       []string
	orgOut         string
	orgDryRun      bool
	orgWorkers     int
	orgLinkWorkers int
	orgExclude     []string
	orgRetention   int
	orgNoJournal   bool
)

func init() {
	f := organizeCmd.Flags()
	f.StringSliceVarP(&orgRoots, "root", "r", nil, "Root directory to scan (can be repeated)")
	f.StringVarP(&orgOut, "out", "o", "", "Output directory for the link tree")
	f.BoolVar(&orgDryRun, "dry-run", false, "Preview the links without creating anything")
	f.BoolVar(&orgDryRun, "preview", false, "Alias for --dry-run")
	f.IntVarP(&orgWorkers, "workers", "w", 8, "Number of scan workers")
	f.IntVar(&orgLinkWorkers, "link-workers", 4, "Number of concurrent link workers")
	f.StringSliceVarP(&orgExclude, "exclude", "e", nil, "Regex patterns of directories to exclude (can be repeated)")
	f.IntVar(&orgRetention, "retention", 5, "Number of run journals to retain (0 = unlimited)")
	f.BoolVar(&orgNoJournal, "no-journal", false, "Do not record the run in <out>/"+snapshot.DirName)
}

// applyOrganizeFlags lets explicit flags win over the loaded configuration.
func applyOrganizeFlags(cmd *cobra.Command, args []string) {
	f := cmd.Flags()
	if f.Changed("root") || len(args) > 0 {
		cfg.Roots = append(append([]string{}, orgRoots...), args...)
	}
	if f.Changed("out") {
		cfg.Output = orgOut
	}
	if f.Changed("workers") {
		cfg.Workers = orgWorkers
	}
	if f.Changed("link-workers") {
		cfg.LinkWorkers = orgLinkWorkers
	}
	if f.Changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, orgExclude...)
	}
	if f.Changed("retention") {
		cfg.Retention = orgRetention
	}
	if orgNoJournal {
		cfg.Journal = false
	}
}

func runOrganize(cmd *cobra.Command, args []string) error {
	applyOrganizeFlags(cmd, args)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(cfg.Roots) == 0 {
		return fmt.Errorf("%w: pass --root or set roots in the config", organize.ErrNoRoots)
	}
	if cfg.Output == "" {
		return fmt.Errorf("%w: pass --out or set output in the config", organize.ErrOutputNotCreatable)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}
		fmt.Fprintln(os.Stderr, "\nCanceling... (press Ctrl+C again to force)")
		cancel()
		<-sigCh
		os.Exit(130)
	}()

	if orgDryRun {
		fmt.Println("PREVIEW MODE - no links will be created")
	}
	for _, r := range cfg.Roots {
		fmt.Printf("Scanning %s...\n", r)
	}

	var found atomic.Int64
	var stage atomic.Value
	stage.Store("scan")
	req := organize.Request{
		Roots:           cfg.Roots,
		OutputRoot:      cfg.Output,
		Preview:         orgDryRun,
		ScanWorkers:     cfg.Workers,
		LinkWorkers:     cfg.LinkWorkers,
		ExcludePatterns: cfg.Exclude,
		Progress: func(count int64, _ category.Category, _ string) {
			found.Store(count)
		},
	}

	isTTY := isTerminal()
	progressDone := make(chan struct{})
	go showProgress(isTTY, &found, &stage, progressDone)

	var (
		res         *organize.Result
		journalPath string
		err         error
	)
	if cfg.Journal && !orgDryRun {
		mgr := snapshot.NewManager(cfg.Output, cfg.Retention)
		mgr.SetStageFunc(func(s string) { stage.Store(s) })
		res, journalPath, err = mgr.Run(ctx, req)
	} else {
		res, err = organize.Run(ctx, req)
	}
	close(progressDone)
	if isTTY {
		fmt.Fprintf(os.Stderr, "\r\033[K")
	}

	canceled := errors.Is(err, context.Canceled)
	if (err != nil && !canceled) || res == nil {
		return err
	}

	if res.Inventory.Total() == 0 && !canceled {
		fmt.Println("No files found in the known categories.")
		return nil
	}

	fmt.Println()
	if err := res.Summary().Render(os.Stdout); err != nil {
		return err
	}
	if journalPath != "" {
		fmt.Printf("Journal: %s\n", journalPath)
	}
	if canceled {
		fmt.Fprintln(os.Stderr, "Run canceled.")
	}
	return nil
}

func showProgress(isTTY bool, found *atomic.Int64, stage *atomic.Value, done <-chan struct{}) {
	if !isTTY {
		return
	}
	start := time.Now()
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	spinnerIdx := 0
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			spinner := spinnerFrames[spinnerIdx%len(spinnerFrames)]
			spinnerIdx++
			elapsed := time.Since(start).Round(time.Millisecond)
			s, _ := stage.Load().(string)
			if s != "" && s != "scan" && s != "organize" {
				fmt.Fprintf(os.Stderr, "\r\033[K%s %s... | %s", spinner, s, elapsed)
				continue
			}
			fmt.Fprintf(os.Stderr, "\r\033[K%s Working... %s files classified | %s",
				spinner, humanize.Comma(found.Load()), elapsed)
		}
	}
}

func isTerminal() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
