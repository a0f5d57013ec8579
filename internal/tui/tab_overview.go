package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	ov := a.report.Overview

	metrics := []components.Metric{
		{Label: "Monthly Income", Value: cli.FormatMoneyWhole(ov.MonthlyIncome), Delta: fmt.Sprintf("%d recurring", countRecurring(a.ledger.Income))},
		{Label: "Active EMI", Value: cli.FormatMoneyWhole(ov.ActiveEMI), Delta: fmt.Sprintf("%d plans", ov.ActivePlans), Color: t.Series("EMI")},
		{Label: "Fixed Expenses", Value: cli.FormatMoneyWhole(ov.FixedExpenses), Delta: fmt.Sprintf("%d items", len(a.ledger.FixedExpenses)), Color: t.Series("Fixed")},
		{Label: "Leftover", Value: cli.FormatMoneyWhole(ov.Leftover), Delta: "income − EMI − fixed", Color: t.Amount(ov.Leftover)},
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	var cards []string
	if a.isCompactLayout() {
		b.WriteString(a.renderBreakdownCard(cw))
		b.WriteString("\n")
		b.WriteString(a.renderActivePlansCard(cw))
		return b.String()
	}

	widths := components.LayoutRow(cw, 2)
	cards = append(cards, a.renderBreakdownCard(widths[0]), a.renderActivePlansCard(widths[1]))
	b.WriteString(components.CardRow(cards))
	return b.String()
}

// renderBreakdownCard shows how monthly income splits into EMI, fixed
// expenses and leftover.
func (a App) renderBreakdownCard(w int) string {
	t := theme.Active
	ov := a.report.Overview
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	if ov.MonthlyIncome <= 0 {
		return components.ContentCard("Where income goes", mutedStyle.Render("No recurring income recorded"), w)
	}

	innerW := components.CardInnerWidth(w)
	labelW := 9
	barW := max(10, innerW-labelW-20)

	var b strings.Builder
	for _, s := range a.report.Breakdown {
		pct := s.Amount / ov.MonthlyIncome
		b.WriteString(components.RatioBar(s.Category, pct, labelW, barW))
		b.WriteString(valueStyle.Render(fmt.Sprintf(" %13s", cli.FormatMoneyWhole(s.Amount))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	committed := (ov.ActiveEMI + ov.FixedExpenses) / ov.MonthlyIncome
	b.WriteString(components.RatioBar("Committed", committed, labelW, barW))
	if ov.Leftover < 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).
			Render("Short by " + cli.FormatMoneyWhole(-ov.Leftover) + " each month"))
	}
	return components.ContentCard("Where income goes", b.String(), w)
}

// renderActivePlansCard lists running plans by installment amount.
func (a App) renderActivePlansCard(w int) string {
	t := theme.Active
	ov := a.report.Overview
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	active := make([]model.InstallmentPlan, 0, ov.ActivePlans)
	for _, p := range a.report.Plans {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return *active[i].InstallmentAmount > *active[j].InstallmentAmount
	})

	innerW := components.CardInnerWidth(w)
	nameW := max(8, innerW-42)

	var b strings.Builder
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d active · %d closed · %d incomplete",
		ov.ActivePlans, ov.ClosedPlans, ov.IncompletePlans)))
	b.WriteString("\n\n")
	if len(active) == 0 {
		b.WriteString(mutedStyle.Render("No running installment plans"))
	}
	for i, p := range active {
		if i == 8 {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("… %d more on the Plans tab", len(active)-i)))
			break
		}
		b.WriteString(valueStyle.Render(fmt.Sprintf("%-*s %11s ", nameW, truncStr(p.CardName, nameW),
			cli.FormatMoneyWhole(*p.InstallmentAmount))))
		b.WriteString(components.PlanProgress(p.InstallmentsPaid, p.Duration, 16))
		b.WriteString("\n")
	}
	return components.ContentCard("Running EMIs", strings.TrimRight(b.String(), "\n"), w)
}

func countRecurring(income []model.IncomeEntry) int {
	n := 0
	for _, in := range income {
		if in.Recurring {
			n++
		}
	}
	return n
}
