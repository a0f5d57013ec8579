package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

// SetupValues holds the answers of the setup form.
type SetupValues struct {
	DataDir  string
	Year     string
	Currency string
	Theme    string
}

// DefaultSetupValues seeds the form from an existing configuration.
func DefaultSetupValues(cfg config.Config) SetupValues {
	return SetupValues{
		DataDir:  cfg.DataDir(),
		Year:     strconv.Itoa(cfg.General.ReferenceYear),
		Currency: cfg.General.CurrencySymbol,
		Theme:    cfg.Appearance.Theme,
	}
}

// Apply copies the answers into cfg. Values the form validated are assumed
// well formed.
func (v SetupValues) Apply(cfg *config.Config) {
	if dir := strings.TrimSpace(v.DataDir); dir != "" {
		cfg.General.DataDir = dir
	}
	if y, err := strconv.Atoi(strings.TrimSpace(v.Year)); err == nil {
		cfg.General.ReferenceYear = y
	}
	if c := strings.TrimSpace(v.Currency); c != "" {
		cfg.General.CurrencySymbol = c
	}
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
}

func validateYear(s string) error {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a year like 2025")
	}
	if y < 1900 || y > 2200 {
		return fmt.Errorf("year must be between 1900 and 2200")
	}
	return nil
}

// NewSetupForm builds the first-run wizard. records is the number of
// records already found under dataDir.
func NewSetupForm(records int, dataDir string, vals *SetupValues) *huh.Form {
	welcome := "No ledger records found yet."
	if records > 0 {
		welcome = fmt.Sprintf("Found %d records in %s.", records, dataDir)
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to fintrack").
				Description(welcome+"\nA few settings and you're done."),
			huh.NewInput().
				Title("Workbook directory").
				Description("TOML workbooks in this folder are imported on every load.").
				Value(&vals.DataDir),
			huh.NewInput().
				Title("Reference year").
				Description("Labels the twelve-month projection.").
				Validate(validateYear).
				Value(&vals.Year),
			huh.NewInput().
				Title("Currency symbol").
				Value(&vals.Currency),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	).WithShowHelp(true)
}
