package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/pipeline"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

const (
	settingsFieldTheme = iota
	settingsFieldYear
	settingsFieldTrendMonths
	settingsFieldCurrency
	settingsFieldDataDir
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message
	saveErr error // non-nil if the last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := loadConfigOrDefault()
	a.settings.editing = true
	a.settings.saved = false

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	case settingsFieldYear:
		ti.Placeholder = "2025"
		ti.SetValue(strconv.Itoa(a.year))
	case settingsFieldTrendMonths:
		ti.Placeholder = "1-12"
		ti.SetValue(strconv.Itoa(a.trendMonths))
	case settingsFieldCurrency:
		ti.Placeholder = "₹"
		ti.SetValue(cli.CurrencySymbol)
	case settingsFieldDataDir:
		ti.Placeholder = config.DefaultDataDir()
		ti.SetValue(a.dataDir)
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		reload := a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		if reload && !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.dataDir, a.useStore)
		}
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates and persists the edited field. It reports whether
// the ledger must be reloaded.
func (a *App) settingsSave() bool {
	cfg := loadConfigOrDefault()
	val := strings.TrimSpace(a.settings.input.Value())
	reload := false

	switch a.settings.cursor {
	case settingsFieldTheme:
		cfg.Appearance.Theme = val
	case settingsFieldYear:
		n, err := strconv.Atoi(val)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("reference year: %w", err)
			return false
		}
		cfg.General.ReferenceYear = n
	case settingsFieldTrendMonths:
		n, err := strconv.Atoi(val)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("trend months: %w", err)
			return false
		}
		cfg.General.TrendMonths = n
	case settingsFieldCurrency:
		cfg.General.CurrencySymbol = val
	case settingsFieldDataDir:
		cfg.General.DataDir = val
		reload = cfg.DataDir() != a.dataDir
	}

	if err := config.Validate(cfg); err != nil {
		a.settings.saveErr = err
		return false
	}
	if a.settings.cursor == settingsFieldTheme && theme.ByName(val).Name != val {
		a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
		return false
	}

	a.settings.saveErr = config.Save(cfg)
	a.applyConfig(cfg)
	a.dataDir = cfg.DataDir()
	return reload
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	fields := []struct{ label, value string }{
		{"Theme", t.Name},
		{"Reference Year", strconv.Itoa(a.year)},
		{"Trend Months", strconv.Itoa(a.trendMonths)},
		{"Currency", cli.CurrencySymbol},
		{"Data Directory", a.dataDir},
	}

	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, f := range fields {
		switch {
		case a.settings.editing && i == a.settings.cursor:
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			form.WriteString(a.settings.input.View())
		case i == a.settings.cursor:
			row := markerStyle.Render("▸ ") +
				selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")) +
				selectedStyle.Render(f.value)
			form.WriteString(row)
			if pad := innerW - lipgloss.Width(row); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		default:
			form.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		form.WriteString("\n")
		form.WriteString(lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).
			Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		form.WriteString("\n")
		form.WriteString(greenStyle.Render("Saved!"))
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	storage := "workbooks only"
	if a.useStore {
		storage = pipeline.StorePath()
	}
	info := []struct{ label, value string }{
		{"Workbooks", fmt.Sprintf("%d parsed of %d", a.data.Parsed, a.data.Files)},
		{"Workbook issues", fmt.Sprintf("%d bad rows, %d unreadable files", a.data.ParseErrors, a.data.FileErrors)},
		{"Records loaded", cli.FormatNumber(int64(a.ledger.Len()))},
		{"Ledger", storage},
		{"Load time", fmt.Sprintf("%.1fs", a.loadTime.Seconds())},
		{"Config file", config.ConfigPath()},
	}
	var infoBody strings.Builder
	for i, f := range info {
		infoBody.WriteString(labelStyle.Render(fmt.Sprintf("%-17s", f.label+":")))
		infoBody.WriteString(valueStyle.Render(f.value))
		if i < len(info)-1 {
			infoBody.WriteString("\n")
		}
	}

	return components.ContentCard("Settings", form.String(), cw) + "\n" +
		components.ContentCard("General", infoBody.String(), cw)
}
