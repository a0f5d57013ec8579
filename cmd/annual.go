package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/model"
)

var annualCmd = &cobra.Command{
	Use:   "annual",
	Short: "Twelve-month projection of income, EMIs, expenses, loans and leftover",
	RunE:  runAnnual,
}

func init() {
	rootCmd.AddCommand(annualCmd)
}

func runAnnual(_ *cobra.Command, _ []string) error {
	_, report, err := loadReport()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PROJECTION  %d", cfg.General.ReferenceYear)))
	fmt.Println()
	fmt.Print(cli.RenderTable(projectionTable(report.Annual, true)))

	leftovers := make([]float64, len(report.Annual))
	for i, r := range report.Annual {
		leftovers[i] = r.Leftover
	}
	fmt.Printf("\n  Leftover  %s\n", cli.RenderSparkline(leftovers))
	return nil
}

// projectionTable renders monthly rows, with a totals row when withTotal.
func projectionTable(rows []model.MonthlyProjectionRow, withTotal bool) cli.Table {
	out := make([][]string, 0, len(rows)+2)
	var total model.MonthlyProjectionRow
	for _, r := range rows {
		out = append(out, []string{
			r.Label,
			cli.FormatMoneyWhole(r.Income),
			cli.FormatMoneyWhole(r.EMI),
			cli.FormatMoneyWhole(r.Expenses),
			cli.FormatMoneyWhole(r.LoanEMI),
			cli.FormatMoneyWhole(r.Fixed),
			cli.RenderAmount(r.Leftover),
		})
		total.Income += r.Income
		total.EMI += r.EMI
		total.Expenses += r.Expenses
		total.LoanEMI += r.LoanEMI
		total.Fixed += r.Fixed
		total.Leftover += r.Leftover
	}
	if withTotal && len(rows) > 0 {
		out = append(out, []string{"---"}, []string{
			"Total",
			cli.FormatMoneyWhole(total.Income),
			cli.FormatMoneyWhole(total.EMI),
			cli.FormatMoneyWhole(total.Expenses),
			cli.FormatMoneyWhole(total.LoanEMI),
			cli.FormatMoneyWhole(total.Fixed),
			cli.RenderAmount(total.Leftover),
		})
	}
	return cli.Table{
		Headers: []string{"Month", "Income", "EMI", "Expenses", "Loan EMI", "Fixed", "Leftover"},
		Rows:    out,
	}
}
