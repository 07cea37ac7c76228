// Package tui provides the interactive Bubble Tea dashboard for edumetrics.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/edumetrics/internal/config"
	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
	"github.com/theirongolddev/edumetrics/internal/tui/components"
	"github.com/theirongolddev/edumetrics/internal/tui/theme"
)

// reports is everything the tabs render, computed in one load.
type reports struct {
	Dashboard   model.DashboardSummary
	Today       model.TodayCost
	Costs       model.CostAnalysis
	Usage       model.UsageStats
	Trend       model.UsageTrend
	Hourly      []model.HourlyUsage
	Engagement  model.ConversationMetrics
	Quality     model.ResponseQuality
	FAQ         []model.FaqItem
	Modules     []model.ModuleComparison
	TopStudents []model.RankedEntity
}

// DataLoadedMsg is sent when the first load finishes.
type DataLoadedMsg struct {
	Data     reports
	LoadTime time.Duration
}

// RefreshDataMsg is sent when a background refresh finishes.
type RefreshDataMsg struct {
	Data     reports
	LoadTime time.Duration
}

// App is the root Bubble Tea model.
type App struct {
	engine *pipeline.Engine
	cfg    config.Config

	// base carries caller and filter; the window is derived from days
	// unless fixedRange is set.
	base       pipeline.Request
	fixedRange bool
	days       int

	data     reports
	loaded   bool
	loadTime time.Duration

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	width     int
	height    int
	activeTab int
	showHelp  bool

	faqCursor int

	// First-run setup (huh form)
	needSetup bool
	setupForm *huh.Form
	setupVals setupValues

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5

	faqTab = 5
)

var windowOptions = []int{7, 30, 90}

// NewApp creates a new TUI app model. An explicit Start on req pins the
// window; otherwise it covers the last days days and moves with refreshes.
func NewApp(engine *pipeline.Engine, req pipeline.Request, days int, cfg config.Config) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	if days < 1 {
		days = cfg.General.DefaultDays
	}

	return App{
		engine:          engine,
		cfg:             cfg,
		base:            req,
		fixedRange:      req.Start != nil,
		days:            days,
		needSetup:       !config.Exists(),
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: time.Duration(cfg.TUI.RefreshIntervalSec) * time.Second,
		spinner:         sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.loadCmd(false),
		a.spinner.Tick,
		tickCmd(),
	)
}

// request is the request the next load runs with.
func (a App) request() pipeline.Request {
	req := a.base
	if !a.fixedRange {
		req.Start = pipeline.DaysBack(time.Now(), a.days)
		req.End = nil
	}
	return req
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == faqTab {
				a.moveFAQCursor(-1)
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == faqTab {
				a.moveFAQCursor(1)
			}
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}
		if !a.loaded {
			if key == "q" {
				return a, tea.Quit
			}
			return a, nil
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "?":
			a.showHelp = true
			return a, nil
		case "r":
			if !a.refreshing {
				a.refreshing = true
				return a, a.loadCmd(true)
			}
			return a, nil
		case "R":
			a.autoRefresh = !a.autoRefresh
			a.cfg.TUI.AutoRefresh = a.autoRefresh
			if err := config.Save(a.cfg); err != nil {
				log.WithError(err).Warn("saving auto-refresh preference")
			}
			return a, nil
		case "d":
			if a.fixedRange || a.refreshing {
				return a, nil
			}
			a.days = nextWindow(a.days)
			a.refreshing = true
			return a, a.loadCmd(true)
		case "left":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
			return a, nil
		case "right", "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
			return a, nil
		case "j", "down":
			if a.activeTab == faqTab {
				a.moveFAQCursor(1)
			}
			return a, nil
		case "k", "up":
			if a.activeTab == faqTab {
				a.moveFAQCursor(-1)
			}
			return a, nil
		}

		if r := []rune(key); len(r) == 1 {
			if idx := components.TabIdxByKey(r[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
		return a, nil

	case DataLoadedMsg:
		a.data = msg.Data
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.lastRefresh = time.Now()
		a.clampFAQCursor()

		if a.needSetup {
			a.setupVals = defaultSetupValues(a.cfg)
			a.setupForm = newSetupForm(&a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		a.data = msg.Data
		a.loadTime = msg.LoadTime
		a.clampFAQCursor()
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && a.setupForm == nil &&
			time.Since(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, a.loadCmd(true))
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.needSetup = false
		a.setupForm = nil
		if err := applySetup(&a.cfg, a.setupVals); err != nil {
			log.WithError(err).Warn("setup values rejected")
			return a, nil
		}
		if err := config.Save(a.cfg); err != nil {
			log.WithError(err).Warn("saving config")
		}
		theme.SetActive(a.cfg.Appearance.Theme)
		a.engine.Configure(a.cfg)
		if !a.fixedRange {
			a.days = a.cfg.General.DefaultDays
		}
		a.refreshing = true
		return a, a.loadCmd(true)
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a *App) moveFAQCursor(delta int) {
	a.faqCursor += delta
	a.clampFAQCursor()
}

func (a *App) clampFAQCursor() {
	a.faqCursor = max(0, min(a.faqCursor, len(a.data.FAQ)-1))
}

func nextWindow(days int) int {
	for _, d := range windowOptions {
		if d > days {
			return d
		}
	}
	return windowOptions[0]
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  edumetrics needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ edumetrics"))
	b.WriteString(subtitleStyle.Render(" · Course Assistant Analytics"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(fmt.Sprintf(" Aggregating the last %d days...", a.days)))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	section := func(b *strings.Builder, title string, bindings [][2]string) {
		b.WriteString(sectionStyle.Render(title))
		b.WriteString("\n")
		for _, bind := range bindings {
			fmt.Fprintf(b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	section(&b, "Navigation", [][2]string{
		{"o c a e u f", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Move through FAQ"},
	})
	b.WriteString("\n")
	section(&b, "Actions", [][2]string{
		{"d", "Cycle window (7/30/90 days)"},
		{"r", "Refresh data"},
		{"R", "Toggle auto-refresh"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	})
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.renderFilterRow(w)
	statusBar := components.RenderStatusBar(w, fmt.Sprintf("%.1fs", a.loadTime.Seconds()), a.refreshing, a.autoRefresh)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderOverviewTab(cw)
	case 1:
		content = a.renderCostsTab(cw)
	case 2:
		content = a.renderActivityTab(cw)
	case 3:
		content = a.renderEngagementTab(cw)
	case 4:
		content = a.renderQualityTab(cw)
	case faqTab:
		content = a.renderFAQTab(cw, contentH)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// renderFilterRow shows the window, role and any scope filter in effect.
func (a App) renderFilterRow(w int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	window := fmt.Sprintf("%dd", a.days)
	if a.fixedRange {
		window = a.base.Start.In(a.engine.Location()).Format("2006-01-02") + " →"
		if a.base.End != nil {
			window += " " + a.base.End.In(a.engine.Location()).Format("2006-01-02")
		}
	}
	parts := []string{accent.Render(window), accent.Render(string(a.base.Caller.Role))}
	f := a.base.Filter
	if f.UniversityID != 0 {
		parts = append(parts, accent.Render(fmt.Sprintf("university %d", f.UniversityID)))
	}
	if f.CourseID != 0 {
		parts = append(parts, accent.Render(fmt.Sprintf("course %d", f.CourseID)))
	}
	if f.ModuleID != 0 {
		parts = append(parts, accent.Render(fmt.Sprintf("module %d", f.ModuleID)))
	}

	row := dim.Render(" ") + strings.Join(parts, dim.Render(" │ ")) + dim.Render(" ")
	return lipgloss.NewStyle().Background(t.Surface).Width(w).Render(row)
}

// ─── Loading ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadCmd computes every report concurrently. Event-derived reports share
// one fetch; the rest go through the engine, which fetches what it needs.
func (a App) loadCmd(refresh bool) tea.Cmd {
	engine := a.engine
	req := a.request()
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		var r reports
		var g errgroup.Group
		g.Go(func() error { r.Dashboard = engine.Dashboard(ctx, req); return nil })
		g.Go(func() error { r.Today = engine.TodayCost(ctx, req); return nil })
		g.Go(func() error { r.Costs = engine.Costs(ctx, req); return nil })
		g.Go(func() error { r.Modules = engine.CompareModules(ctx, req); return nil })
		g.Go(func() error { r.FAQ = engine.FAQ(ctx, req); return nil })
		g.Go(func() error {
			events := engine.Events(ctx, req)
			cm := engine.CostModel(ctx)
			loc := engine.Location()
			r.Usage = pipeline.ComputeUsage(events, loc)
			r.Trend = pipeline.ComputeTrend(events, cm, loc)
			r.Hourly = pipeline.ComputeHourly(events, loc)
			r.Engagement = pipeline.AnalyzeEngagement(events)
			r.Quality = pipeline.GradeResponses(events)
			r.TopStudents = pipeline.TopStudents(events, cm, 10)
			return nil
		})
		_ = g.Wait()

		if refresh {
			return RefreshDataMsg{Data: r, LoadTime: time.Since(start)}
		}
		return DataLoadedMsg{Data: r, LoadTime: time.Since(start)}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// chartDateLabels builds compact x-axis labels for a YYYY-MM-DD series:
// month names at the start and at month boundaries, day numbers elsewhere.
func chartDateLabels(points []model.TrendPoint) []string {
	labels := make([]string, len(points))
	prevMonth := time.Month(0)
	for i, p := range points {
		dt, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			labels[i] = p.Date
			continue
		}
		if i == 0 || dt.Month() != prevMonth {
			labels[i] = dt.Format("Jan")
		} else {
			labels[i] = fmt.Sprintf("%d", dt.Day())
		}
		prevMonth = dt.Month()
	}
	return labels
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same widths RenderTabBar renders with.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}
