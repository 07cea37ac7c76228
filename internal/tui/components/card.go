// Package components provides reusable TUI widgets for the edumetrics dashboard.
package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/edumetrics/internal/tui/theme"
)

// Metric is one headline number shown in a metric card.
type Metric struct {
	Label string
	Value string
	Delta string
	// DeltaColor overrides the delta color; empty uses the dim text color.
	DeltaColor lipgloss.Color
}

// LayoutRow distributes totalWidth into n widths that sum to exactly totalWidth.
// First items absorb the remainder from integer division.
func LayoutRow(totalWidth, n int) []int {
	if n <= 0 {
		return nil
	}
	base := totalWidth / n
	remainder := totalWidth % n
	widths := make([]int, n)
	for i := range widths {
		widths[i] = base
		if i < remainder {
			widths[i]++
		}
	}
	return widths
}

func cardStyle(outerWidth int) lipgloss.Style {
	t := theme.Active
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(max(outerWidth-2, 10)).
		Padding(0, 1)
}

// MetricCard renders a small card with label, value and optional delta.
// outerWidth is the total rendered width including border.
func MetricCard(m Metric, outerWidth int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	deltaColor := m.DeltaColor
	if deltaColor == "" {
		deltaColor = t.TextDim
	}
	deltaStyle := lipgloss.NewStyle().Foreground(deltaColor).Background(t.Surface)

	content := labelStyle.Render(m.Label) + "\n" + valueStyle.Render(m.Value)
	if m.Delta != "" {
		content += "\n" + deltaStyle.Render(m.Delta)
	}
	return cardStyle(outerWidth).Render(content)
}

// MetricCardRow renders metric cards side by side, summing to totalWidth.
// Cards are equalized to the tallest so the row keeps a flat bottom edge.
func MetricCardRow(metrics []Metric, totalWidth int) string {
	if len(metrics) == 0 {
		return ""
	}
	hasDelta := false
	for _, m := range metrics {
		if m.Delta != "" {
			hasDelta = true
		}
	}

	widths := LayoutRow(totalWidth, len(metrics))
	cards := make([]string, len(metrics))
	for i, m := range metrics {
		if hasDelta && m.Delta == "" {
			m.Delta = " "
		}
		cards[i] = MetricCard(m, widths[i])
	}
	return CardRow(cards)
}

// ContentCard renders a bordered content card with an optional title.
// outerWidth controls the total rendered width including border.
func ContentCard(title, body string, outerWidth int) string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)

	content := ""
	if title != "" {
		content = titleStyle.Render(title) + "\n"
	}
	content += body
	return cardStyle(outerWidth).Render(content)
}

// CardRow joins pre-rendered cards horizontally, filling the area under
// shorter cards with the theme background.
func CardRow(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	height := 0
	for _, c := range cards {
		height = max(height, lipgloss.Height(c))
	}
	bg := lipgloss.WithWhitespaceBackground(theme.Active.Background)
	placed := make([]string, len(cards))
	for i, c := range cards {
		placed[i] = lipgloss.Place(lipgloss.Width(c), height, lipgloss.Left, lipgloss.Top, c, bg)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, placed...)
}

// CardInnerWidth returns the usable text width inside a ContentCard
// given its outer width (subtracts border + padding).
func CardInnerWidth(outerWidth int) int {
	return max(outerWidth-4, 10)
}
