package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToWidth(t *testing.T) {
	for _, tc := range []struct{ width, n int }{{80, 4}, {81, 4}, {7, 3}, {100, 1}} {
		sum := 0
		for _, w := range LayoutRow(tc.width, tc.n) {
			sum += w
		}
		if sum != tc.width {
			t.Errorf("LayoutRow(%d, %d) sums to %d", tc.width, tc.n, sum)
		}
	}
	if LayoutRow(80, 0) != nil {
		t.Error("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))
	if shortLines >= tallLines {
		t.Fatal("short card should be shorter than tall card")
	}

	lines := strings.Split(CardRow([]string{tallCard, shortCard}), "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}
	width := lipgloss.Width(lines[0])
	for i, line := range lines {
		if lipgloss.Width(line) != width {
			t.Errorf("line %d width = %d, want %d", i, lipgloss.Width(line), width)
		}
		if i >= shortLines && !strings.Contains(line, "\x1b[") {
			t.Errorf("padding line %d has no styling", i)
		}
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Income", Value: "₹1,00,000"},
		{Label: "Leftover", Value: "-₹5,000", Color: theme.Active.Red},
	}, 60)
	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 60 {
			t.Errorf("line %d width = %d, want 60", i, w)
		}
	}
}

func TestTabVisualWidth(t *testing.T) {
	settings := Tabs[len(Tabs)-1]
	if got := TabVisualWidth(settings, true); got != len("Settings")+2 {
		t.Errorf("active settings width = %d", got)
	}
	if got := TabVisualWidth(settings, false); got != len("Settings")+5 {
		t.Errorf("inactive settings width = %d", got)
	}
	if got := TabVisualWidth(Tabs[0], false); got != len("Overview")+2 {
		t.Errorf("overview width = %d", got)
	}
}

func TestTabIdxByKey(t *testing.T) {
	for i, tab := range Tabs {
		if got := TabIdxByKey(tab.Key); got != i {
			t.Errorf("TabIdxByKey(%q) = %d, want %d", tab.Key, got, i)
		}
	}
	if TabIdxByKey('z') != -1 {
		t.Error("unknown key should map to -1")
	}
}

func TestSparklineScalesNegatives(t *testing.T) {
	out := Sparkline([]float64{-5000, 0, 5000}, theme.Active.Green)
	if !strings.Contains(out, "▁") || !strings.Contains(out, "█") {
		t.Errorf("sparkline should span lowest to highest block: %q", out)
	}
	flat := Sparkline([]float64{3, 3, 3}, theme.Active.Green)
	if strings.Count(flat, "▁") != 3 {
		t.Errorf("flat series should render the lowest block: %q", flat)
	}
}

func TestSignedBarsDirection(t *testing.T) {
	out := SignedBars([]SignedBar{
		{Label: "Jan", Value: -100, Text: "-100"},
		{Label: "Feb", Value: 100, Text: "100"},
	}, 40)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	for _, tc := range []struct {
		line      string
		barBefore bool
	}{{lines[0], true}, {lines[1], false}} {
		plain := stripANSI(tc.line)
		axis := strings.Index(plain, "│")
		bar := strings.Index(plain, "█")
		if axis < 0 || bar < 0 {
			t.Fatalf("missing axis or bar: %q", plain)
		}
		if (bar < axis) != tc.barBefore {
			t.Errorf("bar on wrong side of axis: %q", plain)
		}
	}
}

func TestBarChartHandlesNegatives(t *testing.T) {
	out := BarChart([]float64{-10, 20, 40}, []string{"Jan", "Feb", "Mar"}, theme.Active.Accent, 40, 6)
	if out == "" {
		t.Fatal("empty chart")
	}
	if !strings.Contains(stripANSI(out), "Mar") {
		t.Errorf("x labels missing: %q", stripANSI(out))
	}
}

func TestPlanProgressUnknownDuration(t *testing.T) {
	out := stripANSI(PlanProgress(nil, nil, 10))
	if !strings.Contains(out, "?/?") {
		t.Errorf("got %q", out)
	}
	paid, dur := 3, 12
	if out := stripANSI(PlanProgress(&paid, &dur, 10)); !strings.Contains(out, "3/12") {
		t.Errorf("got %q", out)
	}
}

func TestFormatChartLabel(t *testing.T) {
	for in, want := range map[float64]string{
		500:      "500",
		2000:     "2k",
		2500:     "2.5k",
		100000:   "1L",
		25000000: "2.5Cr",
	} {
		if got := formatChartLabel(in); got != want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", in, got, want)
		}
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
