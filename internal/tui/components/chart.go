package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/edumetrics/internal/tui/theme"
)

var blocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		buf.WriteRune(blocks[max(0, min(idx, len(blocks)-1))])
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// BarChart renders vertical bars scaled to height rows with a y-axis peak
// label and optional x-axis labels. Series wider than the chart are sampled.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	yLabel := formatChartLabel(peak)
	yLabelW := max(len(yLabel), 3)
	chartW := max(width-yLabelW-1, 5)

	values, labels = sampleSeries(values, labels, (chartW+1)/2)
	n := len(values)
	barW := max(1, min((chartW-(n-1))/n, 6))

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for row := height; row >= 1; row-- {
		label := ""
		if row == height {
			label = yLabel
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", yLabelW, label)))

		rowTop := peak * float64(row) / float64(height)
		rowBottom := peak * float64(row-1) / float64(height)
		for i, v := range values {
			if i > 0 {
				b.WriteString(space.Render(" "))
			}
			switch {
			case v >= rowTop:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > rowBottom:
				idx := int((v - rowBottom) / (rowTop - rowBottom) * float64(len(blocks)))
				b.WriteString(barStyle.Render(strings.Repeat(string(blocks[max(0, min(idx, len(blocks)-1))]), barW)))
			default:
				b.WriteString(space.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	axisLen := n*barW + n - 1
	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└%s", yLabelW, "0", strings.Repeat("─", axisLen))))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(space.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(xAxisLabels(labels, barW, axisLen)))
	}
	return b.String()
}

// sampleSeries keeps at most limit evenly spaced points, always including
// the first and last.
func sampleSeries(values []float64, labels []string, limit int) ([]float64, []string) {
	n := len(values)
	if limit < 2 || n <= limit {
		return values, labels
	}
	sampled := make([]float64, limit)
	var sampledLabels []string
	if len(labels) == n {
		sampledLabels = make([]string, limit)
	}
	for i := range sampled {
		src := i * (n - 1) / (limit - 1)
		sampled[i] = values[src]
		if sampledLabels != nil {
			sampledLabels[i] = labels[src]
		}
	}
	return sampled, sampledLabels
}

// xAxisLabels places labels under their bars, skipping any that would overlap.
func xAxisLabels(labels []string, barW, axisLen int) string {
	buf := []rune(strings.Repeat(" ", axisLen))
	lastEnd := -1
	for i, lbl := range labels {
		pos := i * (barW + 1)
		r := []rune(lbl)
		if pos <= lastEnd || pos+len(r) > axisLen {
			continue
		}
		copy(buf[pos:], r)
		lastEnd = pos + len(r)
	}
	return strings.TrimRight(string(buf), " ")
}

// HBar is one row of a horizontal bar list.
type HBar struct {
	Label string
	Value float64
	Text  string // shown after the bar
}

// HBars renders labeled horizontal bars scaled to the largest value.
func HBars(rows []HBar, color lipgloss.Color, width int) string {
	if len(rows) == 0 {
		return ""
	}
	t := theme.Active

	labelW, textW := 0, 0
	peak := 0.0
	for _, r := range rows {
		labelW = max(labelW, lipgloss.Width(r.Label))
		textW = max(textW, lipgloss.Width(r.Text))
		peak = math.Max(peak, r.Value)
	}
	barMax := max(width-labelW-textW-2, 4)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	lines := make([]string, len(rows))
	for i, r := range rows {
		n := 0
		if peak > 0 {
			n = int(math.Round(r.Value / peak * float64(barMax)))
		}
		lines[i] = labelStyle.Render(fmt.Sprintf("%-*s ", labelW, r.Label)) +
			barStyle.Render(strings.Repeat("█", n)+strings.Repeat(" ", barMax-n)) +
			textStyle.Render(fmt.Sprintf(" %*s", textW, r.Text))
	}
	return strings.Join(lines, "\n")
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fk", v/1e3)
	case v >= 10:
		return fmt.Sprintf("%.0f", v)
	case v >= 1:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
