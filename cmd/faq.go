package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
)

var flagFAQSamples bool

var faqCmd = &cobra.Command{
	Use:   "faq",
	Short: "Frequently asked questions, clustered by similarity",
	RunE: withRuntime(func(ctx context.Context, r *runtime, req pipeline.Request) error {
		items := r.engine.FAQ(ctx, req)
		if len(items) == 0 {
			fmt.Println("\n  No repeated questions in the selected window.")
			return nil
		}

		printTitle(fmt.Sprintf("FREQUENTLY ASKED (%d)  %s", len(items), r.windowLabel(req)))

		rows := make([][]string, 0, len(items))
		for i, it := range items {
			rows = append(rows, []string{
				fmt.Sprintf("%d. %s", i+1, cli.Truncate(it.Question, 60)),
				it.Category,
				formatNumber(int64(it.Count)),
				formatNumber(int64(len(it.ModuleIDs))),
				it.LastSeen.In(r.engine.Location()).Format("Jan 02"),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Question", "Category", "Asked", "Modules", "Last"},
			Rows:    rows,
		}))

		if !flagFAQSamples {
			return nil
		}
		for i, it := range items {
			fmt.Printf("  %d. %s\n", i+1, it.Question)
			for _, s := range it.Samples {
				fmt.Printf("       • %s\n", cli.Truncate(s, 80))
			}
			if it.Answer != "" {
				fmt.Printf("       ↳ %s\n", cli.Truncate(it.Answer, 120))
			}
			fmt.Println()
		}
		return nil
	}),
}

func init() {
	faqCmd.Flags().BoolVar(&flagFAQSamples, "samples", false, "Show sample phrasings and an answer per question")
	rootCmd.AddCommand(faqCmd)
}
