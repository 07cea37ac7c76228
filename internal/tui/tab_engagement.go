package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/tui/components"
	"github.com/theirongolddev/edumetrics/internal/tui/theme"
)

func (a App) renderEngagementTab(cw int) string {
	t := theme.Active
	e := a.data.Engagement
	var b strings.Builder

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Conversations", Value: cli.FormatNumber(int64(e.TotalConversations)), Delta: "engagement " + e.EngagementQuality, DeltaColor: t.ForStatus(e.EngagementQuality)},
		{Label: "Avg Length", Value: fmt.Sprintf("%.1f msgs", e.AvgLength), Delta: fmt.Sprintf("median %.1f", e.MedianLength)},
		{Label: "Avg Duration", Value: cli.FormatDuration(e.AvgDurationSecs), Delta: "first to last message"},
		{Label: "Completion", Value: cli.FormatPercent(e.CompletionRate), Delta: cli.FormatPercent(e.DropoffRate) + " drop off", DeltaColor: t.ForStatus(e.EngagementQuality)},
	}, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)

	dist := e.Distribution
	distBody := components.HBars([]components.HBar{
		{Label: "1 message", Value: float64(dist.Single), Text: shareText(dist.Single, dist.Total())},
		{Label: "2-5", Value: float64(dist.Short), Text: shareText(dist.Short, dist.Total())},
		{Label: "6-15", Value: float64(dist.Medium), Text: shareText(dist.Medium, dist.Total())},
		{Label: "16+", Value: float64(dist.Long), Text: shareText(dist.Long, dist.Total())},
	}, t.Blue, components.CardInnerWidth(halves[0]))
	if dist.Total() == 0 {
		distBody = emptyNote("No conversations in this window")
	}

	b.WriteString(a.cardPair(
		components.ContentCard("Conversation Length", distBody, halves[0]),
		components.ContentCard("Tiers", renderTiers(e.EngagementQuality, e.CompletionRate), halves[1]),
	))
	b.WriteString("\n")

	var rows [][]string
	for _, m := range a.data.Modules {
		rows = append(rows, []string{
			fmt.Sprintf("module %d", m.ModuleID),
			cli.FormatNumber(int64(m.Conversations)),
			cli.FormatNumber(int64(m.Students)),
			fmt.Sprintf("%.1f", m.MessagesPerConversation),
		})
	}
	body := renderGrid([]string{"Module", "Conversations", "Students", "Msg/Conv"}, rows, components.CardInnerWidth(cw))
	b.WriteString(components.ContentCard("Depth by Module", body, cw))

	return b.String()
}

// renderTiers explains the completion thresholds and marks the current tier.
func renderTiers(current string, completion float64) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	tiers := []struct{ name, rule string }{
		{"high", "completion 80% or more"},
		{"medium", "completion 50% or more"},
		{"low", "everything else"},
	}
	lines := make([]string, 0, len(tiers)+2)
	for _, tier := range tiers {
		marker := dim.Render("  ")
		name := label.Render(fmt.Sprintf("%-7s", tier.name))
		if tier.name == current {
			marker = lipgloss.NewStyle().Foreground(t.ForStatus(tier.name)).Background(t.Surface).Bold(true).Render("▸ ")
			name = lipgloss.NewStyle().Foreground(t.ForStatus(tier.name)).Background(t.Surface).Bold(true).Render(fmt.Sprintf("%-7s", tier.name))
		}
		lines = append(lines, marker+name+dim.Render(" "+tier.rule))
	}
	lines = append(lines, "", label.Render("A conversation is complete at 3+ messages. Now: ")+
		lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true).Render(cli.FormatPercent(completion)))
	return strings.Join(lines, "\n")
}

func shareText(n, total int) string {
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%s (%.0f%%)", cli.FormatNumber(int64(n)), float64(n)/float64(total)*100)
}
