package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/edumetrics/internal/logging"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
	"github.com/theirongolddev/edumetrics/internal/tui"
	"github.com/theirongolddev/edumetrics/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  withRuntime(runTUI),
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ context.Context, r *runtime, req pipeline.Request) error {
	theme.SetActive(r.cfg.Appearance.Theme)
	// Log lines would tear the alt screen.
	logging.Quiet()

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	// A rolling window is recomputed on every refresh.
	if flagFrom == "" && flagTo == "" {
		req.Start = nil
	}
	app := tui.NewApp(r.engine, req, r.windowDays(), r.cfg)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
