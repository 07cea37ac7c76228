package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/edumetrics/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// refresh state and data age on the right.
func RenderStatusBar(width int, dataAge string, refreshing, autoRefresh bool) string {
	t := theme.Active
	style := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	left := " [?]help  [r]efresh  [q]uit"

	var right []string
	switch {
	case refreshing:
		right = append(right, "refreshing…")
	case autoRefresh:
		right = append(right, "auto")
	}
	if dataAge != "" {
		right = append(right, "loaded in "+dataAge)
	}
	rightStr := strings.Join(right, " · ") + " "

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(rightStr))
	return style.Width(width).Render(left + strings.Repeat(" ", padding) + rightStr)
}
