package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

// newAnnualTable builds the twelve-month projection table.
func newAnnualTable(rows []model.MonthlyProjectionRow, cw, height int) table.Model {
	t := theme.Active

	valueW := max(10, (components.CardInnerWidth(cw)-6)/6-2)
	columns := []table.Column{
		{Title: "Month", Width: 5},
		{Title: "Income", Width: valueW},
		{Title: "EMI", Width: valueW},
		{Title: "Expenses", Width: valueW},
		{Title: "Loan EMI", Width: valueW},
		{Title: "Fixed", Width: valueW},
		{Title: "Leftover", Width: valueW},
	}

	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, table.Row{
			r.Label,
			alignRight(cli.FormatMoneyWhole(r.Income), valueW),
			alignRight(cli.FormatMoneyWhole(r.EMI), valueW),
			alignRight(cli.FormatMoneyWhole(r.Expenses), valueW),
			alignRight(cli.FormatMoneyWhole(r.LoanEMI), valueW),
			alignRight(cli.FormatMoneyWhole(r.Fixed), valueW),
			alignRight(cli.FormatMoneyWhole(r.Leftover), valueW),
		})
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Foreground(t.Accent).
		Background(t.Surface).
		BorderForeground(t.Border).
		BorderBackground(t.Surface).
		Bold(true)
	styles.Cell = styles.Cell.Foreground(t.TextPrimary).Background(t.Surface)
	styles.Selected = styles.Selected.Foreground(t.AccentBright).Background(t.SurfaceBright).Bold(true)

	return table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows),
		table.WithHeight(height),
		table.WithFocused(true),
		table.WithStyles(styles),
	)
}

func alignRight(s string, w int) string {
	if pad := w - lipgloss.Width(s); pad > 0 {
		return strings.Repeat(" ", pad) + s
	}
	return s
}

func (a App) renderAnnualTab(cw int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	rows := a.report.Annual
	var b strings.Builder

	title := fmt.Sprintf("Projection %d", a.year)
	b.WriteString(components.ContentCard(title, a.annual.View(), cw))
	b.WriteString("\n")

	if len(rows) > 0 {
		idx := max(0, min(a.annual.Cursor(), len(rows)-1))
		r := rows[idx]
		summary := mutedStyle.Render(r.Label+": ") +
			valueStyle.Render(fmt.Sprintf("income %s − EMI %s − expenses %s − loans %s − fixed %s = ",
				cli.FormatMoneyWhole(r.Income), cli.FormatMoneyWhole(r.EMI), cli.FormatMoneyWhole(r.Expenses),
				cli.FormatMoneyWhole(r.LoanEMI), cli.FormatMoneyWhole(r.Fixed))) +
			lipgloss.NewStyle().Foreground(t.Amount(r.Leftover)).Background(t.Surface).Bold(true).
				Render(cli.FormatMoneyWhole(r.Leftover))

		values := make([]float64, len(rows))
		labels := make([]string, len(rows))
		for i, row := range rows {
			values[i] = row.Expenses
			labels[i] = row.Label
		}
		chart := components.BarChart(values, labels, t.Series("Expenses"), components.CardInnerWidth(cw), 8)
		b.WriteString(components.ContentCard("Variable expenses by month", summary+"\n\n"+chart, cw))
	}
	return b.String()
}
