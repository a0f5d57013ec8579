package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

// StatusInfo is what the status bar reports on its right side.
type StatusInfo struct {
	DataAge     string
	Records     int
	Year        int
	Refreshing  bool
	AutoRefresh bool
	Message     string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " [?]help  [r]efresh  [q]uit"
	if info.Message != "" {
		left += "  " + info.Message
	}

	var right []string
	if info.Refreshing {
		right = append(right, "refreshing…")
	} else if info.AutoRefresh {
		right = append(right, "auto")
	}
	if info.Year > 0 {
		right = append(right, fmt.Sprintf("FY %d", info.Year))
	}
	right = append(right, fmt.Sprintf("%d records", info.Records))
	if info.DataAge != "" {
		right = append(right, "load "+info.DataAge)
	}
	rightStr := strings.Join(right, " · ") + " "

	padding := width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if padding < 1 {
		return style.Render(left)
	}

	return style.Render(left + strings.Repeat(" ", padding) + rightStr)
}
