package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

// ProgressBar renders a load progress bar with percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	filled := max(0, min(int(pct*float64(width)), width))

	var barColor lipgloss.Color
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Cyan
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ColorForPct returns green/yellow/orange/red as a share of income grows.
func ColorForPct(pct float64) string {
	t := theme.Active
	switch {
	case pct >= 0.9:
		return string(t.Red)
	case pct >= 0.7:
		return string(t.Orange)
	case pct >= 0.5:
		return string(t.Yellow)
	default:
		return string(t.Green)
	}
}

// RatioBar renders a labeled bar for the share of income a commitment takes,
// e.g. EMIs over monthly income.
func RatioBar(label string, pct float64, labelW, barWidth int) string {
	t := theme.Active
	clamped := max(0, min(pct, 1))

	bar := progress.New(
		progress.WithSolidFill(ColorForPct(clamped)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorForPct(clamped))).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(clamped) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100))
}

// PlanProgress renders paid/duration installments as a bar. Unknown or
// non-positive durations render as a dim placeholder.
func PlanProgress(paid, duration *int, barWidth int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	if paid == nil || duration == nil || *duration <= 0 {
		return dim.Render(strings.Repeat("·", barWidth) + "   ?/?")
	}

	pct := max(0, min(float64(*paid)/float64(*duration), 1))
	color := t.Accent
	if pct >= 1 {
		color = t.Green
	}

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	count := lipgloss.NewStyle().Foreground(color).Background(t.Surface).
		Render(fmt.Sprintf("%3d/%-3d", *paid, *duration))
	return bar.ViewAs(pct) + dim.Render(" ") + count
}
