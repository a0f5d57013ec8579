package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/pipeline"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

func (a App) renderTrendTab(cw int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	rows := pipeline.Trailing(a.report.Annual, a.trendMonths)
	title := fmt.Sprintf("Leftover, last %d months of %d", len(rows), a.year)
	if len(rows) == 0 {
		return components.ContentCard(title, mutedStyle.Render("No months to show"), cw)
	}

	bars := make([]components.SignedBar, len(rows))
	values := make([]float64, len(rows))
	total := 0.0
	best, worst := rows[0], rows[0]
	for i, r := range rows {
		bars[i] = components.SignedBar{Label: r.Label, Value: r.Leftover, Text: cli.FormatMoneyWhole(r.Leftover)}
		values[i] = r.Leftover
		total += r.Leftover
		if r.Leftover > best.Leftover {
			best = r
		}
		if r.Leftover < worst.Leftover {
			worst = r
		}
	}
	avg := total / float64(len(rows))

	innerW := components.CardInnerWidth(cw)
	var b strings.Builder
	b.WriteString(components.SignedBars(bars, innerW))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("Shape  "))
	b.WriteString(components.Sparkline(values, t.Series("Leftover")))
	b.WriteString("\n")

	metrics := []components.Metric{
		{Label: "Average", Value: cli.FormatMoneyWhole(avg), Color: t.Amount(avg)},
		{Label: "Best month", Value: cli.FormatMoneyWhole(best.Leftover), Delta: best.Label, Color: t.Amount(best.Leftover)},
		{Label: "Worst month", Value: cli.FormatMoneyWhole(worst.Leftover), Delta: worst.Label, Color: t.Amount(worst.Leftover)},
		{Label: "Total", Value: cli.FormatMoneyWhole(total), Delta: fmt.Sprintf("%d months", len(rows)), Color: t.Amount(total)},
	}

	return components.MetricCardRow(metrics, cw) + "\n" + components.ContentCard(title, b.String(), cw)
}
