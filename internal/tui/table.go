package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/tui/theme"
)

// renderGrid renders a borderless table for use inside a card. The first
// column is left-aligned and absorbs any width the others leave; the rest
// are right-aligned.
func renderGrid(headers []string, rows [][]string, width int) string {
	if len(headers) == 0 {
		return ""
	}
	t := theme.Active
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i := 1; i < len(widths) && i < len(r); i++ {
			widths[i] = max(widths[i], lipgloss.Width(r[i]))
		}
	}
	rest := 0
	for _, w := range widths[1:] {
		rest += w + 2
	}
	widths[0] = max(width-rest, 6)

	line := func(cells []string, style lipgloss.Style) string {
		var b strings.Builder
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i == 0 {
				cell = cli.Truncate(cell, w)
				b.WriteString(style.Render(cell + strings.Repeat(" ", max(0, w-lipgloss.Width(cell)))))
				continue
			}
			b.WriteString(style.Render("  " + strings.Repeat(" ", max(0, w-lipgloss.Width(cell))) + cell))
		}
		return b.String()
	}

	out := []string{line(headers, headStyle), dimStyle.Render(strings.Repeat("─", min(width, sum(widths)+2*(len(widths)-1))))}
	for _, r := range rows {
		out = append(out, line(r, cellStyle))
	}
	return strings.Join(out, "\n")
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// emptyNote renders a dim placeholder for cards with nothing to show.
func emptyNote(text string) string {
	t := theme.Active
	return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Italic(true).Render(text)
}
