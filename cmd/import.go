package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/config"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
	"github.com/theirongolddev/edumetrics/internal/source"
)

var (
	flagImportForce   bool
	flagImportPricing bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load chat events or reference data into the store",
}

var importEventsCmd = &cobra.Command{
	Use:   "events <path>",
	Short: "Import chat event exports (JSONL files or a directory of them)",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportEvents,
}

var importReferenceCmd = &cobra.Command{
	Use:   "reference <file.yaml>",
	Short: "Import courses, modules, professors, models and transcriptions",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportReference,
}

func init() {
	importEventsCmd.Flags().BoolVar(&flagImportForce, "force", false, "Re-import files even when unchanged")
	importReferenceCmd.Flags().BoolVar(&flagImportPricing, "default-pricing", false, "Also seed the built-in model price catalog")
	importCmd.AddCommand(importEventsCmd, importReferenceCmd)
	rootCmd.AddCommand(importCmd)
}

// openStoreRuntime opens the store without building a report window.
func openStoreRuntime(cmd *cobra.Command) (context.Context, *runtime, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	r, err := openRuntime(ctx)
	return ctx, r, err
}

func runImportEvents(cmd *cobra.Command, args []string) error {
	ctx, r, err := openStoreRuntime(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	start := time.Now()
	progress := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Parsing [%s] %d/%d", cli.RenderProgressBar(current, total, 25), current, total)
		if current == total {
			fmt.Fprintln(os.Stderr)
		}
	}

	res, err := pipeline.Import(ctx, args[0], r.db, flagImportForce, progress)
	if err != nil {
		return err
	}

	printTitle("IMPORT")
	fmt.Print(cli.RenderKV([]cli.KV{
		{Label: "Files", Value: formatNumber(int64(res.TotalFiles))},
		{Label: "Parsed", Value: formatNumber(int64(res.ParsedFiles))},
		{Label: "Unchanged", Value: formatNumber(int64(res.Skipped))},
		{Label: "Events read", Value: formatNumber(int64(len(res.Events)))},
		{Label: "Inserted", Value: formatNumber(int64(res.Inserted))},
		{Label: "Duplicates", Value: formatNumber(int64(res.Duplicates))},
		{Label: "Bad lines", Value: formatNumber(int64(res.ParseErrors))},
		{Label: "Bad files", Value: formatNumber(int64(res.FileErrors))},
		{Label: "Elapsed", Value: time.Since(start).Round(time.Millisecond).String()},
	}))
	fmt.Println()
	return nil
}

func runImportReference(cmd *cobra.Command, args []string) error {
	ctx, r, err := openStoreRuntime(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	ref, err := source.LoadReference(args[0])
	if err != nil {
		return err
	}
	if err := r.db.ApplyReference(ctx, ref); err != nil {
		return fmt.Errorf("applying reference data: %w", err)
	}
	if flagImportPricing {
		if err := r.db.UpsertModelPricing(ctx, config.DefaultPricing); err != nil {
			return fmt.Errorf("seeding default pricing: %w", err)
		}
	}
	log.WithFields(log.Fields{
		"courses": len(ref.Courses),
		"modules": len(ref.Modules),
		"models":  len(ref.Models),
	}).Info("reference data imported")

	printReferenceSummary(ref)
	return nil
}

func printReferenceSummary(ref *source.ReferenceData) {
	printTitle("REFERENCE DATA")
	fmt.Print(cli.RenderKV([]cli.KV{
		{Label: "Courses", Value: formatNumber(int64(len(ref.Courses)))},
		{Label: "Modules", Value: formatNumber(int64(len(ref.Modules)))},
		{Label: "Professor assignments", Value: formatNumber(int64(len(ref.Professors)))},
		{Label: "Models", Value: formatNumber(int64(len(ref.Models)))},
		{Label: "Transcriptions", Value: formatNumber(int64(len(ref.Transcriptions)))},
	}))
	fmt.Println()
}
