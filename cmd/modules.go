package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "Side-by-side comparison of module activity",
	RunE: withRuntime(func(ctx context.Context, r *runtime, req pipeline.Request) error {
		mods := r.engine.CompareModules(ctx, req)
		if len(mods) == 0 {
			fmt.Println("\n  No module activity in the selected window.")
			return nil
		}

		printTitle("MODULES  " + r.windowLabel(req))

		rows := make([][]string, 0, len(mods))
		var totalMsgs int
		var totalCost float64
		for _, m := range mods {
			rows = append(rows, []string{
				cli.FormatID(m.ModuleID),
				cli.FormatID(m.CourseID),
				formatNumber(int64(m.Messages)),
				formatNumber(int64(m.Students)),
				formatNumber(int64(m.Conversations)),
				cli.FormatTokens(m.Tokens),
				cli.FormatCost(m.Cost),
				cli.FormatMillis(m.AvgResponseTimeMs),
				fmt.Sprintf("%.1f", m.MessagesPerConversation),
			})
			totalMsgs += m.Messages
			totalCost += m.Cost
		}
		rows = append(rows, []string{cli.SeparatorRow})
		rows = append(rows, []string{"TOTAL", "", formatNumber(int64(totalMsgs)), "", "", "", cli.FormatCost(totalCost), "", ""})

		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Module", "Course", "Msgs", "Students", "Convs", "Tokens", "Cost", "Avg Resp", "Msg/Conv"},
			Rows:    rows,
		}))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(modulesCmd)
}
