package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
	"github.com/theirongolddev/edumetrics/internal/tui/components"
	"github.com/theirongolddev/edumetrics/internal/tui/theme"
)

func (a App) renderQualityTab(cw int) string {
	t := theme.Active
	q := a.data.Quality
	var b strings.Builder

	if q.Status == model.StatusNoData || q.SampleSize == 0 {
		return components.ContentCard("Response Quality", emptyNote("No responses with a recorded response time"), cw)
	}

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Grade", Value: q.Grade, Delta: q.Status, DeltaColor: t.ForStatus(q.Status)},
		{Label: "Average", Value: cli.FormatMillis(q.AvgResponseTimeMs), Delta: fmt.Sprintf("%s samples", cli.FormatNumber(int64(q.SampleSize)))},
		{Label: "Fast (<2s)", Value: cli.FormatPercent(q.FastPercent), Delta: cli.FormatNumber(int64(q.FastCount)) + " responses", DeltaColor: t.Green},
		{Label: "Slow (>10s)", Value: cli.FormatPercent(q.SlowPercent), Delta: cli.FormatNumber(int64(q.SlowCount)) + " responses", DeltaColor: slowColor(q.SlowPercent)},
	}, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	pctBody := components.HBars([]components.HBar{
		{Label: "p50", Value: float64(q.MedianMs), Text: cli.FormatMillis(float64(q.MedianMs))},
		{Label: "p95", Value: float64(q.P95Ms), Text: cli.FormatMillis(float64(q.P95Ms))},
		{Label: "p99", Value: float64(q.P99Ms), Text: cli.FormatMillis(float64(q.P99Ms))},
	}, t.ForStatus(q.Status), components.CardInnerWidth(halves[0]))

	b.WriteString(a.cardPair(
		components.ContentCard("Percentiles", pctBody, halves[0]),
		components.ContentCard("Grading", renderGradeScale(q.Grade, q.AvgTokens), halves[1]),
	))
	b.WriteString("\n")

	var rows []components.HBar
	for _, m := range a.data.Modules {
		if m.AvgResponseTimeMs <= 0 {
			continue
		}
		rows = append(rows, components.HBar{
			Label: fmt.Sprintf("module %d", m.ModuleID),
			Value: m.AvgResponseTimeMs,
			Text:  cli.FormatMillis(m.AvgResponseTimeMs),
		})
	}
	body := orEmpty(components.HBars(rows, t.Orange, components.CardInnerWidth(cw)), "No module response times")
	b.WriteString(components.ContentCard("Average Response by Module", body, cw))

	return b.String()
}

func renderGradeScale(current string, avgTokens float64) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	scale := []struct{ grade, rule string }{
		{"A", "under 2s"},
		{"B", "under 3s"},
		{"C", "under 5s"},
		{"D", "under 10s"},
		{"F", "10s or more"},
	}
	lines := make([]string, 0, len(scale)+2)
	for _, s := range scale {
		line := label.Render("  "+s.grade) + dim.Render("  "+s.rule)
		if s.grade == current {
			color := t.ForStatus(pipeline.GradeStatus(s.grade))
			line = lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true).Render("▸ "+s.grade) +
				dim.Render("  "+s.rule)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", label.Render("Avg tokens per response  ")+
		lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true).Render(fmt.Sprintf("%.0f", avgTokens)))
	return strings.Join(lines, "\n")
}

func slowColor(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 10:
		return t.Red
	case pct > 0:
		return t.Orange
	default:
		return t.TextDim
	}
}
