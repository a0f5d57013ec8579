// Package tui provides the interactive Bubble Tea dashboard for fintrack.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/pipeline"
	"github.com/theirongolddev/fintrack/internal/store"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

// Tab indexes, in tab bar order.
const (
	tabOverview = iota
	tabPlans
	tabAnnual
	tabTrend
	tabSettings
)

// DataLoadedMsg is sent when the data pipeline finishes.
type DataLoadedMsg struct {
	Data     loadedData
	LoadTime time.Duration
}

// ProgressMsg reports workbook parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background data refresh completes.
type RefreshDataMsg struct {
	Data     loadedData
	LoadTime time.Duration
}

// loadedData is the outcome of one ledger load.
type loadedData struct {
	Ledger      model.Ledger
	Files       int
	Parsed      int
	ParseErrors int
	FileErrors  int
	Err         error
}

// Options configures a new App.
type Options struct {
	DataDir     string
	Year        int
	TrendMonths int
	// UseStore syncs workbooks through the SQLite ledger so manually
	// entered records are included.
	UseStore bool
	// RefreshInterval is the auto-refresh period toggled with R.
	RefreshInterval time.Duration
}

// App is the root Bubble Tea model.
type App struct {
	// Data
	ledger   model.Ledger
	report   model.Report
	data     loadedData
	loaded   bool
	loadTime time.Duration

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// View parameters
	year        int
	trendMonths int

	// Per-tab state
	plans    plansState
	annual   table.Model
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg

	dataDir  string
	useStore bool
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	scrollOverhead   = 10 // approximate header + status bar height for half-page calc
	minContentHeight = 5

	minRefreshInterval = 5 * time.Second
)

// loadConfigOrDefault loads config, returning defaults on error so the TUI
// can always start.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	if opts.Year <= 0 {
		opts.Year = pipeline.DefaultReferenceYear
	}
	if opts.TrendMonths <= 0 {
		opts.TrendMonths = pipeline.DefaultTrendMonths
	}
	if opts.RefreshInterval < minRefreshInterval {
		opts.RefreshInterval = 30 * time.Second
	}

	return App{
		dataDir:         opts.DataDir,
		useStore:        opts.UseStore,
		year:            opts.Year,
		trendMonths:     opts.TrendMonths,
		refreshInterval: opts.RefreshInterval,
		needSetup:       !config.Exists(),
		spinner:         sp,
		loadSub:         make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.dataDir, a.useStore, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

// recompute rebuilds the report and every derived view from the ledger.
func (a *App) recompute() {
	a.report = pipeline.Compute(a.ledger, a.year)
	a.annual = newAnnualTable(a.report.Annual, a.contentWidth(), a.annualHeight())
	a.plans.clamp(len(a.visiblePlans()))
}

func (a *App) applyData(d loadedData, loadTime time.Duration) {
	a.data = d
	a.loadTime = loadTime
	a.lastRefresh = time.Now()
	if d.Err == nil {
		a.ledger = d.Ledger
	}
	a.recompute()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.loaded {
			a.annual = newAnnualTable(a.report.Annual, a.contentWidth(), a.annualHeight())
		}
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabPlans && !a.plans.searching {
				a.plans.move(-1, len(a.visiblePlans()))
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabPlans && !a.plans.searching {
				a.plans.move(1, len(a.visiblePlans()))
			}
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.applyData(msg.Data, msg.LoadTime)

		if a.needSetup {
			a.setupVals = DefaultSetupValues(loadConfigOrDefault())
			a.setupForm = NewSetupForm(a.ledger.Len(), a.dataDir, &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && time.Since(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, refreshDataCmd(a.dataDir, a.useStore))
		}
		return a, tea.Batch(cmds...)

	case RefreshDataMsg:
		a.refreshing = false
		a.applyData(msg.Data, msg.LoadTime)
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == tabPlans && a.plans.searching {
		return a.updatePlansSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabPlans:
		if m, cmd, ok := a.updatePlansKey(key); ok {
			return m, cmd
		}
	case tabAnnual:
		switch key {
		case "j", "k", "up", "down", "g", "G", "ctrl+d", "ctrl+u", "pgup", "pgdown":
			var cmd tea.Cmd
			a.annual, cmd = a.annual.Update(msg)
			return a, cmd
		}
	case tabSettings:
		switch key {
		case "j", "down":
			a.settings.cursor = min(a.settings.cursor+1, settingsFieldCount-1)
			return a, nil
		case "k", "up":
			a.settings.cursor = max(a.settings.cursor-1, 0)
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.dataDir, a.useStore)
		}
		return a, nil
	case "R":
		a.autoRefresh = !a.autoRefresh
		return a, nil
	case "[":
		a.year--
		a.recompute()
		return a, nil
	case "]":
		a.year++
		a.recompute()
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if r := []rune(key); len(r) == 1 {
		if idx := components.TabIdxByKey(r[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		cfg := loadConfigOrDefault()
		a.setupVals.Apply(&cfg)
		_ = config.Save(cfg)
		a.needSetup = false
		a.setupForm = nil
		a.applyConfig(cfg)
		if cfg.DataDir() != a.dataDir {
			a.dataDir = cfg.DataDir()
			a.refreshing = true
			return a, refreshDataCmd(a.dataDir, a.useStore)
		}
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

// applyConfig pushes display settings from cfg into the running app.
func (a *App) applyConfig(cfg config.Config) {
	theme.SetActive(cfg.Appearance.Theme)
	if cfg.General.CurrencySymbol != "" {
		cli.CurrencySymbol = cfg.General.CurrencySymbol
	}
	a.trendMonths = cfg.General.TrendMonths
	a.year = cfg.General.ReferenceYear
	a.recompute()
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// annualHeight is the row budget for the annual table.
func (a App) annualHeight() int {
	return max(6, min(14, a.height-scrollOverhead))
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  fintrack needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ fintrack"))
	b.WriteString(subtitleStyle.Render(" · income, EMIs and leftover"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := max(20, min(40, a.width-30))
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Parsing workbooks\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Reading ledger..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o p a t x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move through plans and months"},
			{"J K", "Scroll plan schedule"},
			{"[ ]", "Previous / Next reference year"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"/", "Search plans by card"},
			{"Enter", "Edit setting"},
			{"Esc", "Clear search / Cancel"},
			{"r", "Reload ledger"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	message := ""
	if a.data.Err != nil {
		message = "load failed: " + a.data.Err.Error()
	} else if n := a.data.ParseErrors + a.data.FileErrors; n > 0 {
		message = fmt.Sprintf("%d workbook issue(s)", n)
	}
	statusBar := components.RenderStatusBar(w, components.StatusInfo{
		DataAge:     fmt.Sprintf("%.1fs", a.loadTime.Seconds()),
		Records:     a.ledger.Len(),
		Year:        a.year,
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
		Message:     message,
	})

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabPlans:
		content = a.renderPlansTab(cw, contentH)
	case tabAnnual:
		content = a.renderAnnualTab(cw)
	case tabTrend:
		content = a.renderTrendTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Loading ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadLedger reads the ledger through the SQLite store when useStore is set,
// falling back to a direct workbook parse if the store cannot be used.
func loadLedger(dataDir string, useStore bool, progressFn pipeline.ProgressFunc) loadedData {
	if useStore {
		if db, err := store.Open(pipeline.StorePath()); err == nil {
			sr, loadErr := pipeline.LoadWithStore(dataDir, db, progressFn)
			_ = db.Close()
			if loadErr == nil {
				return loadedData{
					Ledger:      sr.Ledger,
					Files:       sr.TotalFiles,
					Parsed:      sr.ParsedFiles,
					ParseErrors: sr.ParseErrors,
					FileErrors:  sr.FileErrors,
				}
			}
		}
	}

	result, err := pipeline.Load(dataDir, progressFn)
	if err != nil {
		return loadedData{Err: err}
	}
	return loadedData{
		Ledger:      result.Ledger,
		Files:       result.TotalFiles,
		Parsed:      result.ParsedFiles,
		ParseErrors: result.ParseErrors,
		FileErrors:  result.FileErrors,
	}
}

// loadDataCmd starts the data loading pipeline in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(dataDir string, useStore bool, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()
			// Non-blocking send so workers aren't stalled; the next update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}
			d := loadLedger(dataDir, useStore, progressFn)
			sub <- DataLoadedMsg{Data: d, LoadTime: time.Since(start)}
		}()
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads the ledger in the background (no progress UI).
func refreshDataCmd(dataDir string, useStore bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		d := loadLedger(dataDir, useStore, nil)
		return RefreshDataMsg{Data: d, LoadTime: time.Since(start)}
	}
}

// ─── Layout helpers ─────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the same width rules as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
