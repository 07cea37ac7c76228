package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Period summary with growth, today's spend and budget",
	RunE: withRuntime(func(ctx context.Context, r *runtime, req pipeline.Request) error {
		d := r.engine.Dashboard(ctx, req)
		today := r.engine.TodayCost(ctx, req)

		printTitle("DASHBOARD  " + r.windowLabel(req))

		cur, prev := d.Current, d.Previous
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Metric", "Current", "Previous", "Change"},
			Rows: [][]string{
				{"Messages", formatNumber(int64(cur.Messages)), formatNumber(int64(prev.Messages)), cli.FormatGrowth(d.Growth.Messages)},
				{"Students", formatNumber(int64(cur.Students)), formatNumber(int64(prev.Students)), cli.FormatGrowth(d.Growth.Students)},
				{"Conversations", formatNumber(int64(cur.Conversations)), formatNumber(int64(prev.Conversations)), ""},
				{"Active modules", formatNumber(int64(cur.ActiveModules)), formatNumber(int64(prev.ActiveModules)), ""},
				{"Cost", cli.FormatCost(cur.Cost), cli.FormatCost(prev.Cost), cli.FormatGrowth(d.Growth.Cost)},
			},
		}))

		grade := d.Grade
		if grade == "" {
			grade = "-"
		}
		fmt.Print(cli.RenderKV([]cli.KV{
			{Label: "Engagement", Value: cli.RenderStatus(d.Engagement)},
			{Label: "Response grade", Value: grade},
			{Label: "Today", Value: todayText(today)},
		}))
		fmt.Println()

		if len(d.TopModules) > 0 {
			rows := make([][]string, 0, len(d.TopModules))
			for _, m := range d.TopModules {
				rows = append(rows, []string{cli.FormatID(m.ID), formatNumber(int64(m.Messages)), cli.FormatCost(m.Cost)})
			}
			fmt.Print(cli.RenderTable(cli.Table{
				Title:   "Top Modules",
				Headers: []string{"Module", "Msgs", "Cost"},
				Rows:    rows,
			}))
		}

		if d.Budget != nil {
			printBudget(*d.Budget)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func todayText(t model.TodayCost) string {
	s := fmt.Sprintf("%s over %s messages", cli.FormatCost(t.ObservedCost), formatNumber(int64(t.Messages)))
	if t.Projected {
		s += fmt.Sprintf(", projected %s", cli.FormatCost(t.ProjectedCost))
	}
	return s
}

func printBudget(b model.BudgetStats) {
	fmt.Println("  Monthly budget")
	fmt.Println(cli.RenderHorizontalBar("  used ", b.MonthToDate, b.MonthlyBudget, 30,
		fmt.Sprintf("%s of %s (%.0f%%)", cli.FormatCost(b.MonthToDate), cli.FormatCost(b.MonthlyBudget), b.BudgetUsedPercent)))
	fmt.Print(cli.RenderKV([]cli.KV{
		{Label: "Daily burn", Value: cli.FormatCost(b.DailyBurnRate)},
		{Label: "Projected", Value: cli.FormatCost(b.ProjectedMonthly)},
		{Label: "Days left", Value: fmt.Sprintf("%d", b.DaysRemaining)},
	}))
	fmt.Println()
}
