package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/tui/components"
	"github.com/theirongolddev/edumetrics/internal/tui/theme"
)

func (a App) renderActivityTab(cw int) string {
	t := theme.Active
	u := a.data.Usage
	tr := a.data.Trend
	var b strings.Builder

	peak := "-"
	if u.PeakHourMessages > 0 {
		peak = fmt.Sprintf("%02d:00", u.PeakHour)
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Messages", Value: cli.FormatNumber(int64(u.TotalMessages)), Delta: cli.FormatTokens(u.TotalTokens) + " tokens"},
		{Label: "Students", Value: cli.FormatNumber(int64(u.UniqueStudents)), Delta: fmt.Sprintf("%d conversations", u.UniqueConversations)},
		{Label: "Peak Hour", Value: peak, Delta: fmt.Sprintf("%d msgs", u.PeakHourMessages)},
		{Label: "Trend", Value: tr.Direction, Delta: cli.FormatGrowth(tr.GrowthRate) + " first to last day", DeltaColor: t.ForStatus(tr.Direction)},
	}, cw))
	b.WriteString("\n")

	chartH := 10
	if a.isCompactLayout() {
		chartH = 7
	}

	if len(tr.Points) > 0 {
		vals := make([]float64, len(tr.Points))
		for i, p := range tr.Points {
			vals[i] = float64(p.Messages)
		}
		b.WriteString(components.ContentCard(
			"Messages per Day",
			components.BarChart(vals, chartDateLabels(tr.Points), t.Blue, components.CardInnerWidth(cw), chartH),
			cw,
		))
		b.WriteString("\n")
	}

	halves := components.LayoutRow(cw, 2)
	hourVals := make([]float64, 24)
	for _, h := range a.data.Hourly {
		if h.Hour >= 0 && h.Hour < 24 {
			hourVals[h.Hour] = float64(h.Messages)
		}
	}
	hourCard := components.ContentCard(
		"By Hour of Day",
		components.BarChart(hourVals, hourLabels24(), t.Accent, components.CardInnerWidth(halves[0]), chartH-2),
		halves[0],
	)

	var rows [][]string
	for _, s := range a.data.TopStudents {
		rows = append(rows, []string{
			fmt.Sprintf("student %d", s.ID),
			cli.FormatNumber(int64(s.Messages)),
			cli.FormatNumber(int64(s.Conversations)),
			cli.FormatTokens(s.Tokens),
			cli.FormatCost(s.Cost),
		})
	}
	studentBody := renderGrid([]string{"Student", "Msgs", "Convs", "Tokens", "Cost"}, rows, components.CardInnerWidth(halves[1]))
	if len(rows) == 0 {
		studentBody = emptyNote("No identified students in this window")
	}
	b.WriteString(a.cardPair(hourCard, components.ContentCard("Top Students", studentBody, halves[1])))

	return b.String()
}

func hourLabels24() []string {
	labels := make([]string, 24)
	for i := range labels {
		if i%6 == 0 {
			labels[i] = fmt.Sprintf("%02d", i)
		}
	}
	return labels
}
