package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
)

var topCmd = &cobra.Command{
	Use:       "top [students|modules]",
	Short:     "Most active students or modules",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"students", "modules"},
	RunE: func(cmd *cobra.Command, args []string) error {
		what := "students"
		if len(args) == 1 {
			what = args[0]
		}
		return withRuntime(func(ctx context.Context, r *runtime, req pipeline.Request) error {
			var ranked []model.RankedEntity
			label := "Student"
			if what == "modules" {
				ranked = r.engine.TopModules(ctx, req)
				label = "Module"
			} else {
				ranked = r.engine.TopStudents(ctx, req)
			}
			if len(ranked) == 0 {
				fmt.Printf("\n  No %s activity in the selected window.\n", what)
				return nil
			}

			printTitle(fmt.Sprintf("TOP %d %s  %s", len(ranked), strings.ToUpper(what), r.windowLabel(req)))

			rows := make([][]string, 0, len(ranked))
			for i, e := range ranked {
				rows = append(rows, []string{
					fmt.Sprintf("%d. %d", i+1, e.ID),
					formatNumber(int64(e.Messages)),
					formatNumber(int64(e.Conversations)),
					cli.FormatTokens(e.Tokens),
					cli.FormatCost(e.Cost),
				})
			}
			fmt.Print(cli.RenderTable(cli.Table{
				Headers: []string{label, "Msgs", "Convs", "Tokens", "Cost"},
				Rows:    rows,
			}))
			return nil
		})(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(topCmd)
}
