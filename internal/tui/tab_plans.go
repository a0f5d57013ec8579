package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/finance"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

// plansState tracks the plans tab state.
type plansState struct {
	cursor       int
	offset       int
	detailScroll int

	searching   bool
	searchInput textinput.Model
	searchQuery string
}

func (s *plansState) clamp(n int) {
	s.cursor = max(0, min(s.cursor, n-1))
	s.offset = max(0, min(s.offset, s.cursor))
}

func (s *plansState) move(delta, n int) {
	s.cursor += delta
	s.clamp(n)
	s.detailScroll = 0
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "card name"
	ti.CharLimit = 64
	ti.Width = 30
	ti.Prompt = "/ "
	return ti
}

// filterPlans keeps plans whose card name contains query, ignoring case.
func filterPlans(plans []model.InstallmentPlan, query string) []model.InstallmentPlan {
	if query == "" {
		return plans
	}
	q := strings.ToLower(query)
	var out []model.InstallmentPlan
	for _, p := range plans {
		if strings.Contains(strings.ToLower(p.CardName), q) {
			out = append(out, p)
		}
	}
	return out
}

// missingInputs names the inputs that keep a plan from being computed.
func missingInputs(p model.InstallmentPlan) []string {
	var missing []string
	if p.InstallmentAmount == nil {
		missing = append(missing, "EMI amount")
	}
	if p.AnnualRatePercent == nil {
		missing = append(missing, "interest rate")
	}
	switch {
	case p.Duration == nil:
		missing = append(missing, "start/end date")
	case *p.Duration <= 0:
		missing = append(missing, "end date after start + 30 days")
	}
	if p.InstallmentsPaid == nil {
		missing = append(missing, "installments paid")
	}
	return missing
}

func (a App) visiblePlans() []model.InstallmentPlan {
	return filterPlans(a.report.Plans, a.plans.searchQuery)
}

// updatePlansKey handles plans-tab keys. ok is false when the key should
// fall through to the global bindings.
func (a App) updatePlansKey(key string) (tea.Model, tea.Cmd, bool) {
	n := len(a.visiblePlans())
	halfPage := max(1, (a.height-scrollOverhead)/2)

	switch key {
	case "/":
		a.plans.searching = true
		a.plans.searchInput = newSearchInput()
		a.plans.searchInput.SetValue(a.plans.searchQuery)
		a.plans.searchInput.Focus()
		return a, a.plans.searchInput.Cursor.BlinkCmd(), true
	case "esc":
		a.plans.searchQuery = ""
		a.plans.cursor, a.plans.offset, a.plans.detailScroll = 0, 0, 0
		return a, nil, true
	case "j", "down":
		a.plans.move(1, n)
	case "k", "up":
		a.plans.move(-1, n)
	case "g":
		a.plans.move(-n, n)
	case "G":
		a.plans.move(n, n)
	case "J":
		a.plans.detailScroll++
	case "K":
		a.plans.detailScroll = max(0, a.plans.detailScroll-1)
	case "ctrl+d":
		a.plans.detailScroll += halfPage
	case "ctrl+u":
		a.plans.detailScroll = max(0, a.plans.detailScroll-halfPage)
	default:
		return a, nil, false
	}
	return a, nil, true
}

// updatePlansSearch handles key events while in search mode.
func (a App) updatePlansSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.plans.searchQuery = strings.TrimSpace(a.plans.searchInput.Value())
		a.plans.searching = false
		a.plans.cursor, a.plans.offset, a.plans.detailScroll = 0, 0, 0
		return a, nil
	case "esc":
		a.plans.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.plans.searchInput, cmd = a.plans.searchInput.Update(msg)
	return a, cmd
}

func (a App) renderPlansTab(cw, h int) string {
	t := theme.Active
	plans := a.visiblePlans()

	listW := cw
	detailW := 0
	if !a.isCompactLayout() {
		listW = cw * 45 / 100
		detailW = cw - listW
	}

	rowsH := max(3, h-6)
	offset := a.plans.offset
	if a.plans.cursor < offset {
		offset = a.plans.cursor
	}
	if a.plans.cursor >= offset+rowsH {
		offset = a.plans.cursor - rowsH + 1
	}

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)

	innerW := components.CardInnerWidth(listW)
	nameW := max(10, innerW-32)

	var body strings.Builder
	switch {
	case a.plans.searching:
		body.WriteString(a.plans.searchInput.View())
		body.WriteString("\n")
	case a.plans.searchQuery != "":
		body.WriteString(dimStyle.Render(fmt.Sprintf("filter %q  [Esc] clear", a.plans.searchQuery)))
		body.WriteString("\n")
	}

	if len(plans) == 0 {
		body.WriteString(mutedStyle.Render("No installment plans"))
	}
	end := min(len(plans), offset+rowsH)
	for i := offset; i < end; i++ {
		p := plans[i]
		status, color := planStatus(p)
		amount := cli.FormatOptionalMoney(p.InstallmentAmount)
		line := fmt.Sprintf("%-*s %12s ", nameW, truncStr(p.CardName, nameW), amount)

		style := rowStyle
		marker := "  "
		if i == a.plans.cursor {
			style = selStyle
			marker = "▸ "
		}
		statusStyle := style.Foreground(color)
		row := style.Render(marker+line) + statusStyle.Render(fmt.Sprintf("%-10s", status))
		if pad := innerW - lipgloss.Width(row); pad > 0 {
			row += style.Render(strings.Repeat(" ", pad))
		}
		body.WriteString(row)
		if i < end-1 {
			body.WriteString("\n")
		}
	}

	title := fmt.Sprintf("Plans (%d)", len(plans))
	list := components.ContentCard(title, body.String(), listW)
	if detailW == 0 {
		if len(plans) == 0 {
			return list
		}
		return list + "\n" + a.renderPlanDetail(plans[a.plans.cursor], cw, h-lipgloss.Height(list))
	}

	detail := components.ContentCard("Details", mutedStyle.Render("Select a plan"), detailW)
	if len(plans) > 0 {
		detail = a.renderPlanDetail(plans[a.plans.cursor], detailW, h)
	}
	return components.CardRow([]string{list, detail})
}

func planStatus(p model.InstallmentPlan) (string, lipgloss.Color) {
	t := theme.Active
	switch {
	case p.EMI == nil:
		return "incomplete", t.Orange
	case p.EMI.Active:
		return "active", t.Green
	default:
		return "closed", t.TextDim
	}
}

func (a App) renderPlanDetail(p model.InstallmentPlan, w, h int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	field := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-18s", label)) + valueStyle.Render(value) + "\n"
	}

	var lines []string
	var b strings.Builder
	b.WriteString(field("EMI amount", cli.FormatOptionalMoney(p.InstallmentAmount)))
	b.WriteString(field("Interest", cli.FormatRate(p.AnnualRatePercent)))
	b.WriteString(field("Start / End", cli.FormatDate(p.StartDate)+" → "+cli.FormatDate(p.EndDate)))
	b.WriteString(field("Duration", cli.FormatOptionalInt(p.Duration)+" months"))
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-18s", "Paid")))
	b.WriteString(components.PlanProgress(p.InstallmentsPaid, p.Duration, max(10, components.CardInnerWidth(w)-28)))
	b.WriteString("\n")
	if p.Source != "" {
		b.WriteString(field("Source", truncStr(p.Source, components.CardInnerWidth(w)-18)))
	}
	b.WriteString("\n")

	if p.EMI == nil {
		b.WriteString(warnStyle.Render("Not computed, missing: " + strings.Join(missingInputs(p), ", ")))
		return components.ContentCard(truncStr(p.CardName, w-6), b.String(), w)
	}

	b.WriteString(headStyle.Render("Next installment"))
	b.WriteString("\n")
	b.WriteString(field("Principal", cli.FormatMoney(p.EMI.PrincipalComponent)))
	b.WriteString(field("Interest", cli.FormatMoney(p.EMI.InterestComponent)))
	b.WriteString(field("Foreclosure fee", cli.FormatMoney(p.EMI.ForeclosureCharge)))
	b.WriteString(field("Payoff amount", cli.FormatMoney(p.EMI.ForeclosurePayoff)))
	b.WriteString("\n")
	b.WriteString(headStyle.Render(fmt.Sprintf("%4s %14s %14s", "#", "Principal", "Interest")))
	b.WriteString("\n")

	for _, e := range finance.Schedule(p) {
		style := valueStyle
		if e.Paid {
			style = dimStyle
		}
		lines = append(lines, style.Render(fmt.Sprintf("%4d %14s %14s", e.Installment,
			cli.FormatMoney(e.Principal), cli.FormatMoney(e.Interest))))
	}

	header := b.String()
	room := max(1, h-lipgloss.Height(header)-3)
	start := min(a.plans.detailScroll, max(0, len(lines)-room))
	end := min(len(lines), start+room)
	b.WriteString(strings.Join(lines[start:end], "\n"))
	if end < len(lines) {
		b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("… %d more  [J/K] scroll", len(lines)-end)))
	}

	return components.ContentCard(truncStr(p.CardName, w-6), b.String(), w)
}
