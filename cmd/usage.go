package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Message, student and token totals",
	RunE:  runUsage,
}

var runUsage = withRuntime(func(ctx context.Context, r *runtime, req pipeline.Request) error {
	u := r.engine.Usage(ctx, req)
	if u.TotalMessages == 0 {
		fmt.Println("\n  No messages in the selected window.")
		return nil
	}

	printTitle("USAGE  " + r.windowLabel(req))

	peak := "-"
	if u.PeakHourMessages > 0 {
		peak = fmt.Sprintf("%02d:00 (%s msgs)", u.PeakHour, formatNumber(int64(u.PeakHourMessages)))
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Messages", formatNumber(int64(u.TotalMessages))},
			{"Students", formatNumber(int64(u.UniqueStudents))},
			{"Conversations", formatNumber(int64(u.UniqueConversations))},
			{"Active Modules", formatNumber(int64(u.ActiveModules))},
			{cli.SeparatorRow},
			{"Tokens", cli.FormatTokens(u.TotalTokens)},
			{"Avg Response", cli.FormatMillis(u.AvgResponseTimeMs)},
			{"Peak Hour", peak},
		},
	}))

	fmt.Print(countTable("By Provider", "Provider", u.MessagesByProvider, u.TotalMessages))
	fmt.Print(countTable("By Model", "Model", u.MessagesByModel, u.TotalMessages))
	return nil
})

// countTable renders message counts per key, largest first, with each key's share.
func countTable(title, header string, counts map[string]int, total int) string {
	if len(counts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		share := ""
		if total > 0 {
			share = cli.FormatPercent(float64(counts[k]) / float64(total) * 100)
		}
		rows = append(rows, []string{k, formatNumber(int64(counts[k])), share})
	}
	return cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{header, "Messages", "Share"},
		Rows:    rows,
	})
}

func init() {
	rootCmd.AddCommand(usageCmd)
}
