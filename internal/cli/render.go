package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/edumetrics/internal/model"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorText).Align(lipgloss.Center)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	valueStyle  = lipgloss.NewStyle().Foreground(ColorText)
	labelStyle  = lipgloss.NewStyle().Foreground(ColorTextMuted)
	dimStyle    = lipgloss.NewStyle().Foreground(ColorTextDim)
	barStyle    = lipgloss.NewStyle().Foreground(ColorBlue)
)

// SeparatorRow marks a horizontal rule inside a table body.
const SeparatorRow = "---"

// Table represents a bordered text table for CLI output. The first column is
// left-aligned; the rest are right-aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}
	widths := t.columnWidths(numCols)

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule(widths, "╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(row(widths, t.Headers, headerStyle, false))
		b.WriteString(rule(widths, "├", "┼", "┤"))
	}
	for _, r := range t.Rows {
		if len(r) == 1 && r[0] == SeparatorRow {
			b.WriteString(rule(widths, "├", "┼", "┤"))
			continue
		}
		b.WriteString(row(widths, r, valueStyle, true))
	}
	b.WriteString(rule(widths, "╰", "┴", "╯"))
	return b.String()
}

func (t Table) columnWidths(numCols int) []int {
	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	grow := func(cells []string) {
		for i, cell := range cells {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	grow(t.Headers)
	for _, r := range t.Rows {
		if len(r) == 1 && r[0] == SeparatorRow {
			continue
		}
		grow(r)
	}
	return widths
}

func rule(widths []int, left, mid, right string) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w+2)
	}
	return dimStyle.Render(left+strings.Join(parts, mid)+right) + "\n"
}

func row(widths []int, cells []string, style lipgloss.Style, alignNumbers bool) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("│"))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := strings.Repeat(" ", max(0, w-lipgloss.Width(cell)))
		if alignNumbers && i > 0 {
			b.WriteString(style.Render(" " + pad + cell + " "))
		} else {
			b.WriteString(style.Render(" " + cell + pad + " "))
		}
		b.WriteString(dimStyle.Render("│"))
	}
	b.WriteString("\n")
	return b.String()
}

// KV is one labeled value in a summary block.
type KV struct {
	Label string
	Value string
}

// RenderKV renders label/value pairs with aligned values.
func RenderKV(pairs []KV) string {
	width := 0
	for _, p := range pairs {
		width = max(width, lipgloss.Width(p.Label))
	}
	var b strings.Builder
	for _, p := range pairs {
		pad := strings.Repeat(" ", width-lipgloss.Width(p.Label))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(p.Label + pad))
		b.WriteString("  ")
		b.WriteString(valueStyle.Render(p.Value))
		b.WriteString("\n")
	}
	return b.String()
}

// StatusColor maps quality statuses, engagement tiers and trend directions
// to a display color.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case model.StatusHealthy, model.EngagementHigh, model.TrendIncreasing:
		return ColorGreen
	case model.StatusWarning, model.EngagementMedium:
		return ColorOrange
	case model.StatusCritical, model.EngagementLow, model.TrendDecreasing:
		return ColorRed
	default:
		return ColorTextMuted
	}
}

// RenderStatus renders a status word in its color.
func RenderStatus(status string) string {
	if status == "" {
		status = model.StatusNoData
	}
	return lipgloss.NewStyle().Bold(true).Foreground(StatusColor(status)).Render(status)
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}

	pct := min(float64(current)/float64(total), 1)
	filled := min(int(pct*float64(width)), width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s/%s",
		labelStyle.Render(bar),
		FormatNumber(int64(current)),
		FormatNumber(int64(total)),
	)
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		idx = max(0, min(idx, len(blocks)-1))
		b.WriteRune(blocks[idx])
	}
	return b.String()
}

// RenderHorizontalBar renders one labeled row of a horizontal bar chart.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int, annotation string) string {
	barLen := 0
	if maxValue > 0 {
		barLen = max(0, int(value/maxValue*float64(maxWidth)))
	}
	bar := strings.Repeat("█", barLen) + strings.Repeat(" ", max(0, maxWidth-barLen))
	return fmt.Sprintf("  %s %s %s", labelStyle.Render(label), barStyle.Render(bar), valueStyle.Render(annotation))
}
