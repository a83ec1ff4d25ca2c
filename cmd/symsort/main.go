package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/symsort/internal/config"
	"github.com/michaelscutari/symsort/internal/logging"
)

var version = "0.1.0"

var (
	cfgPath   string
	verbosity int
	logFile   string

	cfg       *config.Config
	logCloser io.Closer
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "symsort",
	Short: "Organize files into a category tree of symbolic links",
	Long: `symsort scans directory trees, classifies files by extension into
pictures, audio, video and text, and builds a parallel tree of symbolic
links grouped by category and source folder. Originals are never moved.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to a TOML config file (default ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug, -vvv trace)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file")

	rootCmd.AddCommand(organizeCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(tuiCmd)
}

// setup loads .env, resolves configuration and configures logging.
func setup(cmd *cobra.Command, args []string) error {
	// A missing .env is normal.
	_ = godotenv.Load()

	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbosity = verbosity
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}

	logCloser, err = logging.Setup(cfg.Verbosity, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	return nil
}
