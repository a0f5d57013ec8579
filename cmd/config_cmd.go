package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/pipeline"
	"github.com/theirongolddev/fintrack/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data directory:  %s\n", flagDataDir)
	fmt.Printf("    Reference year:  %d\n", cfg.General.ReferenceYear)
	fmt.Printf("    Trend months:    %d\n", cfg.General.TrendMonths)
	fmt.Printf("    Currency symbol: %s\n", cfg.General.CurrencySymbol)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Listen address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Poll interval:   %ds\n", cfg.Daemon.IntervalSec)
	fmt.Printf("    Events buffer:   %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s\n", cfg.Log.Level)
	fmt.Println()

	if flagNoStore {
		fmt.Println("  Ledger: disabled (--no-store)")
	} else {
		fmt.Printf("  Ledger: %s\n", pipeline.StorePath())
		printLedgerCounts()
	}
	fmt.Println()

	fmt.Println("  Run `fintrack setup` to reconfigure.")
	return nil
}

func printLedgerCounts() {
	db, err := store.Open(pipeline.StorePath())
	if err != nil {
		fmt.Printf("    unavailable: %v\n", err)
		return
	}
	defer func() { _ = db.Close() }()

	counts, err := db.Counts()
	if err != nil {
		fmt.Printf("    unavailable: %v\n", err)
		return
	}
	for _, k := range store.Kinds {
		fmt.Printf("    %-8s %d rows\n", k, counts[k])
	}
}
