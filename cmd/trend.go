package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/pipeline"
)

var flagTrendMonths int

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Leftover over the last months of the projection",
	RunE:  runTrend,
}

func init() {
	trendCmd.Flags().IntVarP(&flagTrendMonths, "months", "n", 0, "Number of trailing months (default from config)")
	rootCmd.AddCommand(trendCmd)
}

func runTrend(cmd *cobra.Command, _ []string) error {
	n := cfg.General.TrendMonths
	if cmd.Flags().Changed("months") {
		n = flagTrendMonths
	}
	if n < 1 || n > 12 {
		return fmt.Errorf("--months must be between 1 and 12, got %d", n)
	}

	_, report, err := loadReport()
	if err != nil {
		return err
	}
	rows := pipeline.Trailing(report.Annual, n)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("LEFTOVER  last %d months", len(rows))))
	fmt.Println()
	fmt.Print(cli.RenderTable(projectionTable(rows, false)))
	fmt.Println()

	peak := 0.0
	values := make([]float64, len(rows))
	for i, r := range rows {
		peak = math.Max(peak, math.Abs(r.Leftover))
		values[i] = r.Leftover
	}
	for _, r := range rows {
		fmt.Println(cli.RenderHorizontalBar(r.Label, r.Leftover, peak, 40))
	}
	fmt.Printf("\n  %s\n", cli.RenderSparkline(values))
	return nil
}
