package tui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/tui/components"
	"github.com/theirongolddev/edumetrics/internal/tui/theme"
)

type costRow struct {
	Label string
	model.CostBreakdown
}

// byCost flattens a breakdown map, most expensive first.
func byCost[K comparable](m map[K]model.CostBreakdown, label func(K) string) []costRow {
	rows := make([]costRow, 0, len(m))
	for k, v := range m {
		rows = append(rows, costRow{Label: label(k), CostBreakdown: v})
	}
	slices.SortFunc(rows, func(a, b costRow) int {
		if c := cmp.Compare(b.Cost, a.Cost); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return rows
}

func costBars(rows []costRow, limit int) []components.HBar {
	var bars []components.HBar
	for i, r := range rows {
		if i >= limit {
			break
		}
		bars = append(bars, components.HBar{
			Label: cli.Truncate(r.Label, 20),
			Value: r.Cost,
			Text:  fmt.Sprintf("%s  %s msgs", cli.FormatCost(r.Cost), cli.FormatNumber(int64(r.Messages))),
		})
	}
	return bars
}

func idLabel(prefix string) func(int64) string {
	return func(id int64) string {
		if id == 0 {
			return "unassigned"
		}
		return fmt.Sprintf("%s %d", prefix, id)
	}
}

func (a App) renderCostsTab(cw int) string {
	t := theme.Active
	c := a.data.Costs
	var b strings.Builder

	priced := "all messages priced"
	if c.UnpricedMessages > 0 {
		priced = fmt.Sprintf("%d unpriced", c.UnpricedMessages)
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Total Cost", Value: cli.FormatCost(c.TotalCost), Delta: cli.FormatTokens(c.TotalTokens) + " tokens"},
		{Label: "Messages", Value: cli.FormatCost(c.MessageCost), Delta: priced},
		{Label: "Transcriptions", Value: cli.FormatCost(c.TranscriptionCost), Delta: fmt.Sprintf("%d jobs · %s", c.Transcriptions.Count, cli.FormatDuration(c.Transcriptions.DurationSeconds))},
		{Label: "Per Message", Value: cli.FormatCost(perMessage(c)), Delta: fmt.Sprintf("input share %.0f%%", c.InputShare*100)},
	}, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	innerL := components.CardInnerWidth(halves[0])
	innerR := components.CardInnerWidth(halves[1])

	providerBody := components.HBars(costBars(byCost(c.ByProvider, func(s string) string { return s }), 6), t.Accent, innerL)
	var modelRows [][]string
	for i, r := range byCost(c.ByModel, func(s string) string { return s }) {
		if i >= 8 {
			break
		}
		modelRows = append(modelRows, []string{r.Label, cli.FormatNumber(int64(r.Messages)), cli.FormatTokens(r.Tokens), cli.FormatCost(r.Cost)})
	}
	modelBody := renderGrid([]string{"Model", "Msgs", "Tokens", "Cost"}, modelRows, innerR)
	b.WriteString(a.cardPair(
		components.ContentCard("By Provider", orEmpty(providerBody, "No priced activity"), halves[0]),
		components.ContentCard("By Model", modelBody, halves[1]),
	))
	b.WriteString("\n")

	uniBody := components.HBars(costBars(byCost(c.ByUniversity, idLabel("university")), 6), t.Blue, innerL)
	courseBody := components.HBars(costBars(byCost(c.ByCourse, idLabel("course")), 6), t.Cyan, innerR)
	b.WriteString(a.cardPair(
		components.ContentCard("By University", orEmpty(uniBody, "No data"), halves[0]),
		components.ContentCard("By Course", orEmpty(courseBody, "No data"), halves[1]),
	))
	b.WriteString("\n")

	var rows [][]string
	for _, m := range a.data.Modules {
		rows = append(rows, []string{
			fmt.Sprintf("module %d", m.ModuleID),
			cli.FormatID(m.CourseID),
			cli.FormatNumber(int64(m.Messages)),
			cli.FormatNumber(int64(m.Students)),
			cli.FormatTokens(m.Tokens),
			cli.FormatCost(m.Cost),
			cli.FormatMillis(m.AvgResponseTimeMs),
			fmt.Sprintf("%.1f", m.MessagesPerConversation),
		})
	}
	body := renderGrid([]string{"Module", "Course", "Msgs", "Students", "Tokens", "Cost", "Avg Resp", "Msg/Conv"}, rows, components.CardInnerWidth(cw))
	b.WriteString(components.ContentCard("Module Comparison", body, cw))

	return b.String()
}

func perMessage(c model.CostAnalysis) float64 {
	if c.PricedMessages == 0 {
		return 0
	}
	return c.MessageCost / float64(c.PricedMessages)
}

// cardPair lays two cards side by side, or stacked on narrow terminals.
func (a App) cardPair(left, right string) string {
	if a.isCompactLayout() {
		return left + "\n" + right
	}
	return components.CardRow([]string{left, right})
}

func orEmpty(body, note string) string {
	if body == "" {
		return emptyNote(note)
	}
	return body
}
