package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
)

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Response-time distribution and grade",
	RunE: withRuntime(func(ctx context.Context, r *runtime, req pipeline.Request) error {
		q := r.engine.Quality(ctx, req)
		if q.SampleSize == 0 {
			fmt.Printf("\n  Status: %s (no responses with a recorded response time)\n", cli.RenderStatus(q.Status))
			return nil
		}

		printTitle("RESPONSE QUALITY  " + r.windowLabel(req))

		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Grade", q.Grade},
				{"Status", cli.RenderStatus(q.Status)},
				{cli.SeparatorRow},
				{"Samples", formatNumber(int64(q.SampleSize))},
				{"Average", cli.FormatMillis(q.AvgResponseTimeMs)},
				{"Median", cli.FormatMillis(float64(q.MedianMs))},
				{"p95", cli.FormatMillis(float64(q.P95Ms))},
				{"p99", cli.FormatMillis(float64(q.P99Ms))},
				{cli.SeparatorRow},
				{"Fast (<2s)", fmt.Sprintf("%s (%s)", formatNumber(int64(q.FastCount)), cli.FormatPercent(q.FastPercent))},
				{"Slow (>10s)", fmt.Sprintf("%s (%s)", formatNumber(int64(q.SlowCount)), cli.FormatPercent(q.SlowPercent))},
				{"Avg tokens", fmt.Sprintf("%.0f", q.AvgTokens)},
			},
		}))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(qualityCmd)
}
