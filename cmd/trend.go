package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Daily activity with growth direction",
	RunE: withRuntime(func(ctx context.Context, r *runtime, req pipeline.Request) error {
		tr := r.engine.Trend(ctx, req)
		if len(tr.Points) == 0 {
			fmt.Println("\n  No data for the selected period.")
			return nil
		}

		printTitle("DAILY ACTIVITY  " + r.windowLabel(req))

		rows := make([][]string, 0, len(tr.Points))
		series := make([]float64, len(tr.Points))
		for i, p := range tr.Points {
			day := ""
			if d, err := time.Parse("2006-01-02", p.Date); err == nil {
				day = d.Format("Mon")
			}
			rows = append(rows, []string{
				p.Date,
				day,
				formatNumber(int64(p.Messages)),
				formatNumber(int64(p.Students)),
				formatNumber(int64(p.Conversations)),
				cli.FormatTokens(p.Tokens),
				cli.FormatCost(p.Cost),
				cli.FormatMillis(p.AvgResponseTimeMs),
			})
			series[i] = float64(p.Messages)
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Date", "Day", "Msgs", "Students", "Convs", "Tokens", "Cost", "Avg Resp"},
			Rows:    rows,
		}))

		fmt.Printf("  Messages  %s\n", cli.RenderSparkline(series))
		fmt.Printf("  Trend     %s (%s first to last day)\n\n", cli.RenderStatus(tr.Direction), cli.FormatGrowth(tr.GrowthRate))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(trendCmd)
}
