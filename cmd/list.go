package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list KIND",
	Short: "List the records of one table (income, fixed, emi, expense, loan, card, savings)",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, args []string) error {
	kind, err := store.ParseKind(args[0])
	if err != nil {
		return err
	}

	l, err := loadLedger()
	if err != nil {
		return err
	}

	t := listTable(kind, l)
	if len(t.Rows) == 0 {
		fmt.Printf("\n  No %s records.\n", kind)
		return nil
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(t))
	return nil
}

// listTable renders one ledger table. The last two columns are the short
// ID and the workbook the row came from ("manual" for CLI entries).
func listTable(kind store.Kind, l model.Ledger) cli.Table {
	var headers []string
	var rows [][]string
	add := func(id, src string, cells ...string) {
		rows = append(rows, append(cells, shortID(id), sourceLabel(src)))
	}

	switch kind {
	case store.KindIncome:
		headers = []string{"Type", "Recurring", "Amount"}
		for _, r := range l.Income {
			add(r.ID, r.Source, r.Type, cli.YesNo(r.Recurring), cli.FormatMoney(r.Amount))
		}
	case store.KindFixed:
		headers = []string{"Category", "Monthly"}
		for _, r := range l.FixedExpenses {
			add(r.ID, r.Source, r.Category, cli.FormatMoney(r.MonthlyAmount))
		}
	case store.KindEMI:
		headers = []string{"Card", "EMI", "Rate", "Start", "End", "Paid"}
		for _, r := range l.Plans {
			add(r.ID, r.Source, r.CardName, cli.FormatOptionalMoney(r.InstallmentAmount), cli.FormatRate(r.AnnualRatePercent),
				cli.FormatDate(r.StartDate), cli.FormatDate(r.EndDate), cli.FormatOptionalInt(r.InstallmentsPaid))
		}
	case store.KindExpense:
		headers = []string{"Category", "Payment", "Amount", "Date"}
		for _, r := range l.VariableExpenses {
			add(r.ID, r.Source, r.Category, r.PaymentType, cli.FormatMoney(r.Amount), cli.FormatDate(r.Date))
		}
	case store.KindLoan:
		headers = []string{"Type", "Total", "Rate", "Months", "EMI", "EMI Date"}
		for _, r := range l.Loans {
			rate := r.RatePercent
			add(r.ID, r.Source, r.Type, cli.FormatMoney(r.TotalAmount), cli.FormatRate(&rate),
				fmt.Sprintf("%d", r.DurationMonths), cli.FormatMoney(r.EMIAmount), cli.FormatDate(r.EMIDate))
		}
	case store.KindCard:
		headers = []string{"Card", "Billing", "Period Start", "Period End", "Due"}
		for _, r := range l.CreditCards {
			add(r.ID, r.Source, r.Name, cli.FormatDate(r.BillingDate), cli.FormatDate(r.PeriodStart),
				cli.FormatDate(r.PeriodEnd), cli.FormatDate(r.DueDate))
		}
	case store.KindSavings:
		headers = []string{"Month", "Target", "Actual", "Notes"}
		for _, r := range l.Savings {
			add(r.ID, r.Source, r.Month, cli.FormatMoney(r.Target), cli.FormatMoney(r.Actual), r.Notes)
		}
	}

	left := map[int]bool{}
	for i, h := range headers {
		switch h {
		case "Type", "Category", "Card", "Payment", "Month", "Notes", "Recurring":
			left[i] = true
		}
	}
	left[len(headers)] = true
	left[len(headers)+1] = true

	return cli.Table{
		Title:     string(kind),
		Headers:   append(headers, "ID", "Source"),
		Rows:      rows,
		LeftAlign: left,
	}
}

func sourceLabel(src string) string {
	if src == "" {
		return "manual"
	}
	return src
}
