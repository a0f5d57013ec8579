package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline scaled between the smallest and
// largest value, so negative series still show their shape.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * float64(len(sparkBlocks)-1))
		}
		idx = max(0, min(idx, len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// BarChart renders vertical bars with a y-axis. Negative values are drawn
// as empty columns.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	step := chartTickStep(peak)
	intervals := max(1, int(math.Ceil(peak/step)))
	for intervals > max(2, height/2) {
		step *= 2
		intervals = max(1, int(math.Ceil(peak/step)))
	}
	ceiling := step * float64(intervals)
	rowsPerTick := max(2, height/intervals)
	chartH := rowsPerTick * intervals

	yLabelW := max(4, len(formatChartLabel(ceiling))+1)
	chartW := max(5, width-yLabelW-1)

	n := len(values)
	barW := chartW
	if n > 1 {
		barW = (chartW - (n - 1)) / n
	}
	barW = max(1, min(barW, 6))
	axisLen := n*barW + (n - 1)

	surface := lipgloss.NewStyle().Background(t.Surface)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	partial := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		top := ceiling * float64(row) / float64(chartH)
		bottom := ceiling * float64(row-1) / float64(chartH)

		label := ""
		if row%rowsPerTick == 0 {
			label = formatChartLabel(step * float64(row/rowsPerTick))
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", yLabelW, label)))

		for i, v := range values {
			if i > 0 {
				b.WriteString(surface.Render(" "))
			}
			switch {
			case v >= top:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := max(1, min(8, int((v-bottom)/(top-bottom)*8)))
				b.WriteString(barStyle.Render(strings.Repeat(string(partial[idx]), barW)))
			default:
				b.WriteString(surface.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└%s", yLabelW, "0", strings.Repeat("─", axisLen))))

	if len(labels) == n {
		line := []rune(strings.Repeat(" ", axisLen))
		for i, lbl := range labels {
			pos := i * (barW + 1)
			r := []rune(lbl)
			if len(r) > barW+1 {
				r = r[:barW+1]
			}
			if pos+len(r) > axisLen {
				continue
			}
			copy(line[pos:], r)
		}
		b.WriteString("\n")
		b.WriteString(surface.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(strings.TrimRight(string(line), " ")))
	}

	return b.String()
}

// SignedBar is one row of a SignedBars chart.
type SignedBar struct {
	Label string
	Value float64
	Text  string // formatted value shown after the bar
}

// SignedBars renders one horizontal bar per row around a shared zero
// column: negative values grow left in red, positive values grow right in
// green.
func SignedBars(rows []SignedBar, width int) string {
	if len(rows) == 0 {
		return ""
	}
	t := theme.Active

	labelW, textW := 0, 0
	peak := 0.0
	for _, r := range rows {
		labelW = max(labelW, lipgloss.Width(r.Label))
		textW = max(textW, lipgloss.Width(r.Text))
		peak = max(peak, math.Abs(r.Value))
	}
	if peak == 0 {
		peak = 1
	}
	half := max(2, (width-labelW-textW-4)/2)

	surface := lipgloss.NewStyle().Background(t.Surface)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		n := int(math.Round(math.Abs(r.Value) / peak * float64(half)))
		style := lipgloss.NewStyle().Foreground(t.Amount(r.Value)).Background(t.Surface)

		left := strings.Repeat(" ", half)
		right := strings.Repeat(" ", half)
		if r.Value < 0 {
			left = strings.Repeat(" ", half-n) + strings.Repeat("█", n)
		} else {
			right = strings.Repeat("█", n) + strings.Repeat(" ", half-n)
		}

		lines = append(lines,
			labelStyle.Render(fmt.Sprintf("%-*s ", labelW, r.Label))+
				style.Render(left)+axisStyle.Render("│")+style.Render(right)+
				surface.Render(" ")+style.Render(fmt.Sprintf("%*s", textW, r.Text)))
	}
	return strings.Join(lines, "\n")
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	for _, u := range []struct {
		div    float64
		suffix string
	}{{1e7, "Cr"}, {1e5, "L"}, {1e3, "k"}} {
		if v >= u.div {
			if v == math.Trunc(v/u.div)*u.div {
				return fmt.Sprintf("%.0f%s", v/u.div, u.suffix)
			}
			return fmt.Sprintf("%.1f%s", v/u.div, u.suffix)
		}
	}
	return fmt.Sprintf("%.0f", v)
}
