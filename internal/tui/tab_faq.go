package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/tui/components"
	"github.com/theirongolddev/edumetrics/internal/tui/theme"
)

// renderFAQTab shows the question clusters as a list with the selected
// cluster's details beside it.
func (a App) renderFAQTab(cw, h int) string {
	items := a.data.FAQ
	if len(items) == 0 {
		return components.ContentCard("Frequently Asked", emptyNote("No repeated questions in this window"), cw)
	}

	widths := components.LayoutRow(cw, 2)
	if !a.isCompactLayout() {
		widths = []int{cw * 2 / 5, cw - cw*2/5}
	}
	listCard := components.ContentCard(
		fmt.Sprintf("Frequently Asked (%d)", len(items)),
		a.renderFAQList(items, components.CardInnerWidth(widths[0]), max(h-3, 3)),
		widths[0],
	)
	detailCard := components.ContentCard(
		"Details",
		renderFAQDetail(items[a.faqCursor], components.CardInnerWidth(widths[1])),
		widths[1],
	)
	return a.cardPair(listCard, detailCard)
}

func (a App) renderFAQList(items []model.FaqItem, w, visible int) string {
	t := theme.Active
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)

	// Keep the cursor in view.
	offset := 0
	if a.faqCursor >= visible {
		offset = a.faqCursor - visible + 1
	}
	end := min(len(items), offset+visible)

	lines := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		count := fmt.Sprintf("%4d× ", items[i].Count)
		q := cli.Truncate(items[i].Question, max(w-lipgloss.Width(count), 8))
		pad := strings.Repeat(" ", max(0, w-lipgloss.Width(count)-lipgloss.Width(q)))
		if i == a.faqCursor {
			lines = append(lines, selStyle.Render(count+q+pad))
			continue
		}
		lines = append(lines, countStyle.Render(count)+rowStyle.Render(q+pad))
	}
	return strings.Join(lines, "\n")
}

func renderFAQDetail(item model.FaqItem, w int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	wrap := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Width(w)

	modules := make([]string, len(item.ModuleIDs))
	for i, id := range item.ModuleIDs {
		modules[i] = cli.FormatID(id)
	}

	var b strings.Builder
	b.WriteString(wrap.Bold(true).Render(item.Question))
	b.WriteString("\n\n")
	b.WriteString(label.Render("Asked     ") + accent.Render(fmt.Sprintf("%d times", item.Count)) + "\n")
	b.WriteString(label.Render("Category  ") + value.Render(item.Category) + "\n")
	b.WriteString(label.Render("Modules   ") + value.Render(cli.Truncate(strings.Join(modules, ", "), max(w-10, 8))) + "\n")
	if !item.FirstSeen.IsZero() {
		b.WriteString(label.Render("Seen      ") + value.Render(
			item.FirstSeen.Format("Jan 2 15:04")+" → "+item.LastSeen.Format("Jan 2 15:04")) + "\n")
	}

	if len(item.Samples) > 0 {
		b.WriteString("\n" + label.Bold(true).Render("Phrasings") + "\n")
		for _, s := range item.Samples {
			b.WriteString(value.Render("• "+cli.Truncate(s, max(w-2, 8))) + "\n")
		}
	}
	if item.Answer != "" {
		b.WriteString("\n" + label.Bold(true).Render("Most detailed answer") + "\n")
		b.WriteString(wrap.Render(cli.Truncate(item.Answer, 400)))
	}
	return strings.TrimRight(b.String(), "\n")
}
