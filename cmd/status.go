package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store contents and freshness",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx, r, err := openStoreRuntime(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	counts, err := r.db.Counts(ctx)
	if err != nil {
		return fmt.Errorf("reading store counts: %w", err)
	}
	latest, err := r.db.LatestEventTime(ctx)
	if err != nil {
		return fmt.Errorf("reading latest event: %w", err)
	}

	printTitle("STORE STATUS")

	newest := "no events"
	if !latest.IsZero() {
		age := time.Since(latest).Round(time.Minute)
		newest = fmt.Sprintf("%s (%s ago)", latest.In(r.engine.Location()).Format("2006-01-02 15:04"), age)
	}
	configState := "using defaults"
	if config.Exists() {
		configState = config.Path()
	}

	fmt.Print(cli.RenderKV([]cli.KV{
		{Label: "Config", Value: configState},
		{Label: "Driver", Value: r.db.Driver()},
		{Label: "Events", Value: formatNumber(int64(counts.Events))},
		{Label: "Newest event", Value: newest},
		{Label: "Modules", Value: formatNumber(int64(counts.Modules))},
		{Label: "Courses", Value: formatNumber(int64(counts.Courses))},
		{Label: "Priced models", Value: formatNumber(int64(counts.Models))},
		{Label: "Tracked files", Value: formatNumber(int64(counts.TrackedFiles))},
	}))
	fmt.Println()

	if counts.Models == 0 {
		fmt.Println("  No model prices stored; costs will read $0.")
		fmt.Println("  Seed them with: edumetrics import reference <file.yaml> --default-pricing")
		fmt.Println()
	}
	return nil
}
