// Package cmd implements the fintrack CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/observability"
	"github.com/theirongolddev/fintrack/internal/pipeline"
	"github.com/theirongolddev/fintrack/internal/store"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

var (
	flagDataDir string
	flagNoStore bool
	flagYear    int
	flagQuiet   bool
	flagVerbose bool
)

// Resolved by the root PersistentPreRunE.
var (
	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "fintrack",
	Short: "Personal finance tracker for income, EMIs and leftover",
	Long: "Track income, fixed and variable expenses, loans and credit-card EMI plans.\n" +
		"Reads TOML workbooks from the data directory plus records added with `fintrack add`.",
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
	RunE:              runOverview,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Workbook directory (default from config, then ~/fintrack)")
	rootCmd.PersistentFlags().BoolVar(&flagNoStore, "no-store", false, "Skip the SQLite ledger, read workbooks only")
	rootCmd.PersistentFlags().IntVarP(&flagYear, "year", "y", 0, "Reference year for the monthly projection")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging to stderr")
}

// prepare loads config and applies flag overrides before any command runs.
func prepare(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded

	if flagDataDir != "" {
		cfg.General.DataDir = flagDataDir
	}
	flagDataDir = cfg.DataDir()
	if cmd.Flags().Changed("year") {
		cfg.General.ReferenceYear = flagYear
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	theme.SetActive(cfg.Appearance.Theme)
	if cfg.General.CurrencySymbol != "" {
		cli.CurrencySymbol = cfg.General.CurrencySymbol
	}
	if flagVerbose {
		logger = observability.NewLogger("debug")
	}
	logger.Debug("config resolved",
		zap.String("data_dir", flagDataDir),
		zap.Int("year", cfg.General.ReferenceYear),
		zap.Bool("store", !flagNoStore),
		zap.Bool("config_file", config.Exists()),
	)
	return nil
}

// loadLedger is the shared data loading path used by all report commands.
// Workbooks are synced through the SQLite ledger unless --no-store.
func loadLedger() (model.Ledger, error) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", flagDataDir)
	}

	progressFn := func(current, total int) {
		if !flagQuiet && (current%50 == 0 || current == total) {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	if !flagNoStore {
		db, err := store.Open(pipeline.StorePath())
		if err != nil {
			logger.Warn("ledger unavailable, reading workbooks only", zap.Error(err))
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  Ledger unavailable, reading workbooks only\n")
			}
		} else {
			defer func() { _ = db.Close() }()

			sr, err := pipeline.LoadWithStore(flagDataDir, db, progressFn)
			if err == nil {
				logger.Debug("ledger synced",
					zap.Int("files", sr.TotalFiles),
					zap.Int("unchanged", sr.Unchanged),
					zap.Int("reparsed", sr.Reparsed),
					zap.Int("removed", sr.Removed),
				)
				if !flagQuiet {
					fmt.Fprintf(os.Stderr, "\r  %d workbooks (%d unchanged, %d reparsed, %d removed)    \n",
						sr.TotalFiles, sr.Unchanged, sr.Reparsed, sr.Removed)
				}
				reportIssues(&sr.LoadResult)
				return sr.Ledger, nil
			}
			logger.Warn("ledger sync failed, falling back", zap.Error(err))
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "\n  Ledger error, falling back to workbooks only\n")
			}
		}
	}

	result, err := pipeline.Load(flagDataDir, progressFn)
	if err != nil {
		return model.Ledger{}, err
	}
	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %d workbooks    \n", result.ParsedFiles)
	}
	reportIssues(result)
	return result.Ledger, nil
}

func reportIssues(r *pipeline.LoadResult) {
	for path, err := range r.Failed {
		logger.Debug("workbook failed", zap.String("path", path), zap.Error(err))
	}
	if flagQuiet {
		return
	}
	if r.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d workbooks could not be parsed\n", r.FileErrors)
	}
	if r.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d cells with invalid dates were left blank\n", r.ParseErrors)
	}
}

// loadReport loads the ledger and runs the full recomputation.
func loadReport() (model.Ledger, model.Report, error) {
	l, err := loadLedger()
	if err != nil {
		return model.Ledger{}, model.Report{}, err
	}
	return l, pipeline.Compute(l, cfg.General.ReferenceYear), nil
}

// openStore opens the ledger database for commands that edit it.
func openStore() (*store.Ledger, error) {
	if flagNoStore {
		return nil, fmt.Errorf("--no-store: this command edits the SQLite ledger")
	}
	return store.Open(pipeline.StorePath())
}
