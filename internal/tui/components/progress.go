package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/edumetrics/internal/tui/theme"
)

// ProgressBar renders a loading bar with percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := min(int(pct*float64(width)), width)

	filledStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		pctStyle.Render(fmt.Sprintf(" %.0f%%", pct*100))
}

// ColorForPct returns green/yellow/orange/red based on how much of a budget is used.
func ColorForPct(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 0.9:
		return t.Red
	case pct >= 0.7:
		return t.Orange
	case pct >= 0.5:
		return t.Yellow
	default:
		return t.Green
	}
}

// UsageBar renders a labeled utilization bar, e.g. budget used or completion rate.
// pct is a 0-1 fraction; note is printed after the percentage.
func UsageBar(label string, pct float64, note string, labelW, barWidth int) string {
	t := theme.Active
	pct = clamp01(pct)
	color := ColorForPct(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	noteStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		space.Render(" ") +
		bar.ViewAs(pct) +
		pctStyle.Render(fmt.Sprintf(" %3.0f%%", pct*100)) +
		space.Render("  ") +
		noteStyle.Render(note)
}

func clamp01(v float64) float64 {
	return max(0, min(v, 1))
}
