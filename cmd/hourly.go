package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
)

var hourlyCmd = &cobra.Command{
	Use:   "hourly",
	Short: "Activity by hour of day",
	RunE: withRuntime(func(ctx context.Context, r *runtime, req pipeline.Request) error {
		hours := r.engine.Hourly(ctx, req)

		maxMessages, peak := 0, -1
		for _, h := range hours {
			if h.Messages > maxMessages {
				maxMessages, peak = h.Messages, h.Hour
			}
		}
		if peak < 0 {
			fmt.Println("\n  No messages in the selected window.")
			return nil
		}

		printTitle(fmt.Sprintf("ACTIVITY BY HOUR  %s (%s)", r.windowLabel(req), r.engine.Location()))

		for _, h := range hours {
			fmt.Println(cli.RenderHorizontalBar(
				fmt.Sprintf("%02d:00", h.Hour),
				float64(h.Messages), float64(maxMessages), 40,
				fmt.Sprintf("%s msgs  %s students", formatNumber(int64(h.Messages)), formatNumber(int64(h.Students))),
			))
		}
		fmt.Printf("\n  Peak: %02d:00 (%s messages)\n\n", peak, formatNumber(int64(maxMessages)))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(hourlyCmd)
}
