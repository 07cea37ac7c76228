package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/tui/components"
	"github.com/theirongolddev/edumetrics/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	d := a.data.Dashboard
	cur := d.Current
	var b strings.Builder

	// Row 1: headline numbers against the previous period
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Messages", Value: cli.FormatNumber(int64(cur.Messages)), Delta: cli.FormatGrowth(d.Growth.Messages) + " vs prev", DeltaColor: growthColor(d.Growth.Messages)},
		{Label: "Students", Value: cli.FormatNumber(int64(cur.Students)), Delta: cli.FormatGrowth(d.Growth.Students) + " vs prev", DeltaColor: growthColor(d.Growth.Students)},
		{Label: "Conversations", Value: cli.FormatNumber(int64(cur.Conversations)), Delta: fmt.Sprintf("%d active modules", cur.ActiveModules)},
		{Label: "Est. Cost", Value: cli.FormatCost(cur.Cost), Delta: cli.FormatGrowth(d.Growth.Cost) + " vs prev", DeltaColor: growthColor(-d.Growth.Cost)},
	}, cw))
	b.WriteString("\n")

	// Row 2: today + budget (or health when no budget is set)
	halves := components.LayoutRow(cw, 2)
	todayCard := components.ContentCard("Today", a.renderToday(), halves[0])
	var rightCard string
	if d.Budget != nil {
		rightCard = components.ContentCard("Monthly Budget", a.renderBudget(components.CardInnerWidth(halves[1])), halves[1])
	} else {
		rightCard = components.ContentCard("Health", a.renderHealth(), halves[1])
	}
	if a.isCompactLayout() {
		b.WriteString(todayCard + "\n" + rightCard)
	} else {
		b.WriteString(components.CardRow([]string{todayCard, rightCard}))
	}
	b.WriteString("\n")

	// Row 3: daily cost
	if pts := a.data.Trend.Points; len(pts) > 0 {
		vals := make([]float64, len(pts))
		for i, p := range pts {
			vals[i] = p.Cost
		}
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Daily Cost (%dd)", len(pts)),
			components.BarChart(vals, chartDateLabels(pts), t.Blue, components.CardInnerWidth(cw), 8),
			cw,
		))
		b.WriteString("\n")
	}

	// Row 4: top modules by messages
	var rows []components.HBar
	for _, m := range d.TopModules {
		rows = append(rows, components.HBar{
			Label: fmt.Sprintf("module %d", m.ID),
			Value: float64(m.Messages),
			Text:  fmt.Sprintf("%s msgs  %s", cli.FormatNumber(int64(m.Messages)), cli.FormatCost(m.Cost)),
		})
	}
	body := components.HBars(rows, t.Accent, components.CardInnerWidth(cw))
	if body == "" {
		body = emptyNote("No module activity in this window")
	}
	b.WriteString(components.ContentCard("Top Modules", body, cw))

	return b.String()
}

func (a App) renderToday() string {
	t := theme.Active
	today := a.data.Today
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	projected := dim.Render("not enough of the day elapsed")
	if today.Projected {
		projected = value.Render(cli.FormatCost(today.ProjectedCost))
	}
	lines := []string{
		label.Render("Spent so far  ") + value.Render(cli.FormatCost(today.ObservedCost)),
		label.Render("Projected     ") + projected,
		label.Render("Messages      ") + value.Render(cli.FormatNumber(int64(today.Messages))),
		dim.Render(fmt.Sprintf("%s · %.1fh elapsed", today.Date, today.HoursElapsed)),
	}
	return strings.Join(lines, "\n")
}

func (a App) renderBudget(innerW int) string {
	t := theme.Active
	bs := a.data.Dashboard.Budget
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)

	note := fmt.Sprintf("%s of %s", cli.FormatCost(bs.MonthToDate), cli.FormatCost(bs.MonthlyBudget))
	barW := max(innerW-lipgloss.Width(note)-14, 8)
	lines := []string{
		components.UsageBar("Used", bs.BudgetUsedPercent/100, note, 5, barW),
		label.Render("Burn rate  ") + value.Render(cli.FormatCost(bs.DailyBurnRate)+"/day"),
		label.Render("Projected  ") + lipgloss.NewStyle().Foreground(components.ColorForPct(bs.ProjectedMonthly/max(bs.MonthlyBudget, 0.01))).Background(t.Surface).Bold(true).Render(cli.FormatCost(bs.ProjectedMonthly)),
		dim.Render(fmt.Sprintf("%d days left this month", bs.DaysRemaining)),
	}
	return strings.Join(lines, "\n")
}

func (a App) renderHealth() string {
	t := theme.Active
	d := a.data.Dashboard
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	status := func(s string) string {
		return lipgloss.NewStyle().Foreground(t.ForStatus(s)).Background(t.Surface).Bold(true).Render(s)
	}

	grade := d.Grade
	if grade == "" {
		grade = "-"
	}
	lines := []string{
		label.Render("Engagement      ") + status(d.Engagement),
		label.Render("Response grade  ") + status(a.data.Quality.Status) + label.Render(" ("+grade+")"),
		label.Render("Trend           ") + status(a.data.Trend.Direction) + label.Render(" "+cli.FormatGrowth(a.data.Trend.GrowthRate)),
		label.Render("Budget          ") + emptyNote("not configured"),
	}
	return strings.Join(lines, "\n")
}

// growthColor colors a change green when it rises and red when it falls.
func growthColor(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct > 0:
		return t.Green
	case pct < 0:
		return t.Red
	default:
		return t.TextDim
	}
}
