package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
)

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Estimated cost by provider, model, university, course and module",
	RunE: withRuntime(func(ctx context.Context, r *runtime, req pipeline.Request) error {
		c := r.engine.Costs(ctx, req)
		if c.TotalMessages == 0 && c.Transcriptions.Count == 0 {
			fmt.Println("\n  No billable activity in the selected window.")
			return nil
		}

		printTitle("COST BREAKDOWN  " + r.windowLabel(req))

		rows := [][]string{
			{"Messages", cli.FormatCost(c.MessageCost), formatNumber(int64(c.TotalMessages)) + " msgs"},
			{"Transcriptions", cli.FormatCost(c.TranscriptionCost), fmt.Sprintf("%d jobs, %s", c.Transcriptions.Count, cli.FormatDuration(c.Transcriptions.DurationSeconds))},
			{cli.SeparatorRow},
			{"TOTAL", cli.FormatCost(c.TotalCost), cli.FormatTokens(c.TotalTokens) + " tokens"},
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Category", "Cost", "Volume"},
			Rows:    rows,
		}))
		if c.UnpricedMessages > 0 {
			fmt.Printf("  %d messages used models without active pricing and are excluded from cost.\n\n", c.UnpricedMessages)
		}
		fmt.Printf("  Token split: %.0f%% input / %.0f%% output\n\n", c.InputShare*100, (1-c.InputShare)*100)

		fmt.Print(breakdownTable("By Provider", "Provider", c.ByProvider, func(k string) string { return k }, c.MessageCost))
		fmt.Print(breakdownTable("By Model", "Model", c.ByModel, func(k string) string { return k }, c.MessageCost))
		fmt.Print(breakdownTable("By University", "University", c.ByUniversity, cli.FormatID, c.MessageCost))
		fmt.Print(breakdownTable("By Course", "Course", c.ByCourse, cli.FormatID, c.MessageCost))
		fmt.Print(moduleCostTable(c))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(costsCmd)
}

// breakdownTable renders one cost dimension, most expensive first.
func breakdownTable[K comparable](title, header string, m map[K]model.CostBreakdown, label func(K) string, total float64) string {
	if len(m) == 0 {
		return ""
	}
	type row struct {
		label string
		model.CostBreakdown
	}
	rows := make([]row, 0, len(m))
	for k, v := range m {
		rows = append(rows, row{label(k), v})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Cost != rows[j].Cost {
			return rows[i].Cost > rows[j].Cost
		}
		return rows[i].label < rows[j].label
	})

	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		share := ""
		if total > 0 {
			share = cli.FormatPercent(r.Cost / total * 100)
		}
		out = append(out, []string{r.label, formatNumber(int64(r.Messages)), cli.FormatTokens(r.Tokens), cli.FormatCost(r.Cost), share})
	}
	return cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{header, "Msgs", "Tokens", "Cost", "Share"},
		Rows:    out,
	})
}

// moduleCostTable lists message and transcription cost per module.
func moduleCostTable(c model.CostAnalysis) string {
	ids := make(map[int64]bool)
	for id := range c.ByModule {
		ids[id] = true
	}
	for id := range c.Transcriptions.ByModule {
		ids[id] = true
	}
	if len(ids) == 0 {
		return ""
	}

	sorted := make([]int64, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	total := func(id int64) float64 { return c.ByModule[id].Cost + c.Transcriptions.ByModule[id] }
	sort.Slice(sorted, func(i, j int) bool {
		if total(sorted[i]) != total(sorted[j]) {
			return total(sorted[i]) > total(sorted[j])
		}
		return sorted[i] < sorted[j]
	})

	rows := make([][]string, 0, len(sorted))
	for _, id := range sorted {
		rows = append(rows, []string{
			cli.FormatID(id),
			formatNumber(int64(c.ByModule[id].Messages)),
			cli.FormatCost(c.ByModule[id].Cost),
			cli.FormatCost(c.Transcriptions.ByModule[id]),
			cli.FormatCost(total(id)),
		})
	}
	return cli.RenderTable(cli.Table{
		Title:   "By Module",
		Headers: []string{"Module", "Msgs", "Messages", "Transcription", "Total"},
		Rows:    rows,
	})
}
