// Package main provides the CLI entry point for btmap.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ukaji3/btmap-go/pkg/btmap"
	"github.com/ukaji3/btmap-go/pkg/btmap/config"
	"github.com/ukaji3/btmap-go/pkg/btmap/output"
)

type flags struct {
	outputPath      string
	format          string
	diagnosticsPath string
	configPath      string
	patchesPath     string
	workers         int
	xpathMapping    string
	sqlitePath      string
	verbose         bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	var logger *zap.Logger

	rootCmd := &cobra.Command{
		Use:   "btmap [corpus]",
		Short: "Extract BT placements from eForms mapping workbooks",
		Long: `btmap reads a corpus of eForms vs standard forms mapping workbooks
(a .zip archive, a directory, or a single .xlsx) and writes one flat table
with a row per BT placement and eForms notice.

Anomalies found along the way are written as one line each for review.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if f.verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0], f, logger)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "YAML configuration file")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "Enable debug logging")

	fl := rootCmd.Flags()
	fl.StringVarP(&f.outputPath, "output", "o", "", "Output file path (default: stdout)")
	fl.StringVar(&f.format, "format", string(output.FormatCSV), "Output format: csv, json, xlsx")
	fl.StringVar(&f.diagnosticsPath, "diagnostics", "", "Diagnostics file path (default: stderr)")
	fl.StringVar(&f.patchesPath, "patches", "", "YAML exception patch table (default: built-in)")
	fl.IntVar(&f.workers, "workers", 0, "Number of workbooks processed concurrently (default: from config)")
	fl.StringVar(&f.xpathMapping, "xpath-mapping", "", "CSV table of BT to eForms XPath to join")
	fl.StringVar(&f.sqlitePath, "sqlite", "", "SQLite database to store the run in")

	rootCmd.AddCommand(newSheetsCmd(f, &logger))
	return rootCmd
}

// loadOptions builds extraction options from the config file and flags.
func loadOptions(f *flags, logger *zap.Logger) (btmap.Options, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		cfg, err = config.Load(f.configPath)
		if err != nil {
			return btmap.Options{}, err
		}
	}
	if f.patchesPath != "" {
		cfg.Expand.PatchesFile = f.patchesPath
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	return btmap.Options{Config: cfg, Logger: logger}, nil
}
