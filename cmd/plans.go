package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/finance"
	"github.com/theirongolddev/fintrack/internal/model"
)

var flagSchedule string

var plansCmd = &cobra.Command{
	Use:     "plans",
	Aliases: []string{"emi"},
	Short:   "Installment plans with their principal/interest split and payoff",
	RunE:    runPlans,
}

func init() {
	plansCmd.Flags().StringVar(&flagSchedule, "schedule", "", "Print the full schedule of plans whose card matches (substring)")
	rootCmd.AddCommand(plansCmd)
}

func runPlans(_ *cobra.Command, _ []string) error {
	_, report, err := loadReport()
	if err != nil {
		return err
	}

	if len(report.Plans) == 0 {
		fmt.Println("\n  No installment plans found.")
		return nil
	}

	if flagSchedule != "" {
		return printSchedules(report.Plans, flagSchedule)
	}

	rows := make([][]string, 0, len(report.Plans)+2)
	for _, p := range report.Plans {
		principal, interest, payoff := cli.Blank, cli.Blank, cli.Blank
		if p.EMI != nil {
			principal = cli.FormatMoney(p.EMI.PrincipalComponent)
			interest = cli.FormatMoney(p.EMI.InterestComponent)
			payoff = cli.FormatMoney(p.EMI.ForeclosurePayoff)
		}
		rows = append(rows, []string{
			p.CardName,
			cli.FormatOptionalMoney(p.InstallmentAmount),
			cli.FormatRate(p.AnnualRatePercent),
			cli.FormatOptionalInt(p.InstallmentsPaid) + "/" + cli.FormatOptionalInt(p.Duration),
			principal,
			interest,
			payoff,
			planState(p),
			shortID(p.ID),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("INSTALLMENT PLANS"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   []string{"Card", "EMI", "Rate", "Paid", "Principal", "Interest", "Payoff", "State", "ID"},
		Rows:      rows,
		LeftAlign: map[int]bool{7: true, 8: true},
	}))
	fmt.Println(cli.RenderMuted("  Principal/Interest split the next installment; payoff includes the 2% foreclosure charge."))
	return nil
}

func planState(p model.InstallmentPlan) string {
	switch {
	case p.EMI == nil:
		return "incomplete"
	case p.EMI.Active:
		return "active"
	default:
		return "closed"
	}
}

// shortID keeps the first block of a UUID for display; pay/delete accept
// any unique prefix.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func printSchedules(plans []model.InstallmentPlan, card string) error {
	q := strings.ToLower(card)
	matched := 0
	for _, p := range plans {
		if !strings.Contains(strings.ToLower(p.CardName), q) {
			continue
		}
		matched++

		fmt.Println()
		fmt.Println(cli.RenderTitle(strings.ToUpper(p.CardName)))
		entries := finance.Schedule(p)
		if entries == nil {
			fmt.Println(cli.RenderWarning("plan is incomplete; no schedule"))
			continue
		}

		rows := make([][]string, 0, len(entries)+2)
		var totalPrincipal, totalInterest float64
		for _, e := range entries {
			mark := ""
			if e.Paid {
				mark = "paid"
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", e.Installment),
				cli.FormatMoney(e.Principal),
				cli.FormatMoney(e.Interest),
				mark,
			})
			totalPrincipal += e.Principal
			totalInterest += e.Interest
		}
		rows = append(rows, []string{"---"},
			[]string{"Total", cli.FormatMoney(totalPrincipal), cli.FormatMoney(totalInterest), ""})

		fmt.Print(cli.RenderTable(cli.Table{
			Headers:   []string{"#", "Principal", "Interest", ""},
			Rows:      rows,
			LeftAlign: map[int]bool{3: true},
		}))
	}

	if matched == 0 {
		return fmt.Errorf("no plan matches card %q", card)
	}
	return nil
}
