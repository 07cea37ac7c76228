package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/edumetrics/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRow(t *testing.T) {
	widths := LayoutRow(100, 3)
	if len(widths) != 3 || widths[0] != 34 || widths[1] != 33 || widths[2] != 33 {
		t.Fatalf("LayoutRow(100, 3) = %v", widths)
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	if shortLines >= tallLines {
		t.Fatal("test setup error: short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}

	// Lines below the short card must still carry background styling.
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("line %d has no ANSI codes: %q", i, lines[i])
		}
	}
}

func TestCardRowWidthConsistency(t *testing.T) {
	theme.SetActive("flexoki-dark")

	joined := CardRow([]string{
		ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20),
		ContentCard("Short", "A", 30),
	})
	lines := strings.Split(joined, "\n")
	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Fatalf("line %d width = %d, want %d", i, w, want)
		}
	}
}

func TestMetricCardRowEqualHeights(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Messages", Value: "1,204", Delta: "+12.0% vs prev"},
		{Label: "Students", Value: "87"},
	}, 60)
	if h := lipgloss.Height(row); h != 5 {
		t.Fatalf("metric row height = %d, want 5 (border + 3 lines)", h)
	}
	if lipgloss.Width(row) != 60 {
		t.Fatalf("metric row width = %d, want 60", lipgloss.Width(row))
	}
}
