package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/edumetrics/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Costs", Key: 'c', KeyPos: 0},
	{Name: "Activity", Key: 'a', KeyPos: 0},
	{Name: "Engagement", Key: 'e', KeyPos: 0},
	{Name: "Quality", Key: 'u', KeyPos: 1},
	{Name: "FAQ", Key: 'f', KeyPos: 0},
}

func tabLabel(tab Tab, active bool) string {
	t := theme.Active
	if active {
		return lipgloss.NewStyle().
			Foreground(t.AccentBright).
			Background(t.SurfaceHover).
			Bold(true).
			Padding(0, 1).
			Render(tab.Name)
	}

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	key := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true).Underline(true)
	pad := base.Render(" ")
	name := []rune(tab.Name)
	return pad +
		base.Render(string(name[:tab.KeyPos])) +
		key.Render(string(name[tab.KeyPos])) +
		base.Render(string(name[tab.KeyPos+1:])) +
		pad
}

// TabVisualWidth returns the rendered width of a tab, used for mouse hitboxes.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(tabLabel(tab, active))
}

// RenderTabBar renders the tab bar with the given active index on one row.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active
	sep := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface).Render("│")

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		parts[i] = tabLabel(tab, i == activeIdx)
	}
	bar := strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(bar)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
