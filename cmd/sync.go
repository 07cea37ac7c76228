package cmd

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/edumetrics/internal/platform"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull reference data from the platform admin API",
	Long: "Fetch courses, modules, professor assignments, active model prices and completed " +
		"transcriptions from the configured platform API and store them.",
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx, r, err := openStoreRuntime(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	if r.cfg.Platform.BaseURL == "" {
		return errors.New("no platform API configured (set [platform] base_url or EDUMETRICS_PLATFORM_URL)")
	}

	since := time.Now().AddDate(0, 0, -r.windowDays())
	client := platform.NewClient(r.cfg.Platform.BaseURL, r.cfg.Platform.APIToken)
	ref, fetchErr := client.FetchAll(ctx, since)
	if ref == nil {
		return fmt.Errorf("sync failed: %w", fetchErr)
	}
	if fetchErr != nil {
		log.WithError(fetchErr).Warn("partial reference data")
	}

	if err := r.db.ApplyReference(ctx, ref); err != nil {
		return fmt.Errorf("applying reference data: %w", err)
	}
	printReferenceSummary(ref)
	if fetchErr != nil {
		fmt.Printf("  Partial data: %v\n\n", fetchErr)
	}
	return nil
}
