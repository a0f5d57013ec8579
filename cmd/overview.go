package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/model"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Monthly income, active EMIs, fixed expenses and leftover",
	RunE:  runOverview,
}

func init() {
	rootCmd.AddCommand(overviewCmd)
}

func runOverview(_ *cobra.Command, _ []string) error {
	l, report, err := loadReport()
	if err != nil {
		return err
	}

	if l.Len() == 0 {
		fmt.Println("\n  No records found.")
		fmt.Printf("  Put TOML workbooks in %s or add records with `fintrack add`.\n", flagDataDir)
		return nil
	}

	ov := report.Overview
	fmt.Println()
	fmt.Println(cli.RenderTitle("MONTHLY OVERVIEW"))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Amount"},
		Rows: [][]string{
			{"Monthly income", cli.FormatMoney(ov.MonthlyIncome)},
			{"Active EMI", cli.FormatMoney(ov.ActiveEMI)},
			{"Fixed expenses", cli.FormatMoney(ov.FixedExpenses)},
			{"---"},
			{"Leftover", cli.RenderAmount(ov.Leftover)},
		},
	}))

	fmt.Println()
	fmt.Println(cli.RenderMuted("  Where income goes"))
	printBreakdown(report.Breakdown, ov.MonthlyIncome)

	fmt.Println()
	fmt.Printf("  Plans: %d active, %d closed, %d incomplete\n",
		ov.ActivePlans, ov.ClosedPlans, ov.IncompletePlans)
	if ov.IncompletePlans > 0 {
		fmt.Println(cli.RenderWarning("incomplete plans are missing inputs; see `fintrack plans`"))
	}
	if ov.Leftover < 0 {
		fmt.Println(cli.RenderWarning(fmt.Sprintf("commitments exceed income by %s", cli.FormatMoney(-ov.Leftover))))
	}
	return nil
}

func printBreakdown(slices []model.BreakdownSlice, income float64) {
	scale := income
	for _, s := range slices {
		scale = max(scale, s.Amount)
	}
	for _, s := range slices {
		line := cli.RenderHorizontalBar(fmt.Sprintf("%-8s", s.Category), s.Amount, scale, 30)
		if income > 0 {
			line += cli.RenderMuted(fmt.Sprintf("  %.0f%%", s.Amount/income*100))
		}
		fmt.Println(line)
	}
}
