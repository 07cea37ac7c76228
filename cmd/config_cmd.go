package cmd

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edumetrics/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Default days:  %d\n", cfg.General.DefaultDays)
	fmt.Printf("    Timezone:      %s\n", cfg.General.Timezone)
	fmt.Println()

	fmt.Println("  [Cost]")
	fmt.Printf("    Input share:   %.0f%% of tokens at the input rate\n", cfg.Cost.InputShare*100)
	if n := len(cfg.Pricing.Overrides); n > 0 {
		names := make([]string, 0, n)
		for name := range cfg.Pricing.Overrides {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("    Overrides:     %v\n", names)
	}
	fmt.Println()

	fmt.Println("  [Store]")
	fmt.Printf("    Driver:        %s\n", cfg.Store.Driver)
	fmt.Printf("    DSN:           %s\n", maskDSN(cfg.DatabaseDSN()))
	fmt.Printf("    Fetch:         %d concurrent, %d events per module\n", cfg.Fetch.MaxConcurrency, cfg.Fetch.PerModuleLimit)
	fmt.Println()

	fmt.Println("  [FAQ]")
	fmt.Printf("    Threshold:     %d\n", cfg.FAQ.Threshold)
	fmt.Printf("    Min repeats:   %d\n", cfg.FAQ.MinOccurrences)
	fmt.Printf("    Limit:         %d\n", cfg.FAQ.Limit)
	fmt.Println()

	fmt.Println("  [Platform]")
	if cfg.Platform.BaseURL != "" {
		fmt.Printf("    Base URL:      %s\n", cfg.Platform.BaseURL)
	} else {
		fmt.Println("    Base URL:      not configured")
	}
	if cfg.Platform.APIToken != "" {
		fmt.Printf("    API token:     %s\n", maskAPIKey(cfg.Platform.APIToken))
	}
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval:      %ds\n", cfg.Daemon.IntervalSeconds)
	if cfg.Cache.RedisURL != "" {
		fmt.Printf("    Redis cache:   %s (ttl %ds)\n", maskDSN(cfg.Cache.RedisURL), cfg.Cache.TTLSeconds)
	} else {
		fmt.Println("    Redis cache:   disabled")
	}
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:         %s (%s)\n", cfg.Log.Level, cfg.Log.Format)
	if cfg.Log.File != "" {
		fmt.Printf("    File:          %s\n", cfg.Log.File)
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme:         %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Budget]")
	if cfg.Budget.MonthlyUSD != nil {
		fmt.Printf("    Monthly budget: $%.0f\n", *cfg.Budget.MonthlyUSD)
	} else {
		fmt.Println("    Monthly budget: not set")
	}
	fmt.Println()

	fmt.Println("  Run `edumetrics setup` to reconfigure.")
	return nil
}

func maskAPIKey(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}

// maskDSN hides the password in URL-style connection strings.
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}
