package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
)

var engagementCmd = &cobra.Command{
	Use:   "engagement",
	Short: "Conversation depth, completion and drop-off",
	RunE: withRuntime(func(ctx context.Context, r *runtime, req pipeline.Request) error {
		e := r.engine.Engagement(ctx, req)
		if e.TotalConversations == 0 {
			fmt.Println("\n  No conversations in the selected window.")
			return nil
		}

		printTitle("ENGAGEMENT  " + r.windowLabel(req))

		fmt.Print(cli.RenderKV([]cli.KV{
			{Label: "Conversations", Value: formatNumber(int64(e.TotalConversations))},
			{Label: "Avg length", Value: fmt.Sprintf("%.1f messages", e.AvgLength)},
			{Label: "Median length", Value: fmt.Sprintf("%.1f messages", e.MedianLength)},
			{Label: "Avg duration", Value: cli.FormatDuration(e.AvgDurationSecs)},
			{Label: "Completion", Value: cli.FormatPercent(e.CompletionRate)},
			{Label: "Drop-off", Value: cli.FormatPercent(e.DropoffRate)},
			{Label: "Engagement", Value: cli.RenderStatus(e.EngagementQuality)},
		}))
		fmt.Println()

		d := e.Distribution
		buckets := []struct {
			label string
			n     int
		}{
			{"1 msg  ", d.Single},
			{"2-5    ", d.Short},
			{"6-15   ", d.Medium},
			{"16+    ", d.Long},
		}
		peak := 0
		for _, b := range buckets {
			peak = max(peak, b.n)
		}
		fmt.Println("  Conversation length")
		for _, b := range buckets {
			fmt.Println(cli.RenderHorizontalBar(b.label, float64(b.n), float64(peak), 30,
				fmt.Sprintf("%s (%.0f%%)", formatNumber(int64(b.n)), float64(b.n)/float64(d.Total())*100)))
		}
		fmt.Println()
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(engagementCmd)
}
