package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edumetrics/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	path, err := tui.RunSetup()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", path)
	fmt.Println("  Run `edumetrics setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
