package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/edumetrics/internal/config"
	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
	"github.com/theirongolddev/edumetrics/internal/tui/components"
)

func sampleReports() reports {
	seen := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	return reports{
		Dashboard: model.DashboardSummary{
			Current:    model.PeriodTotals{Messages: 120, Students: 14, Conversations: 30, ActiveModules: 3, Cost: 4.2},
			Growth:     model.Growth{Messages: 12.5, Students: -3, Cost: 8},
			Engagement: model.EngagementMedium,
			Grade:      "B",
			TopModules: []model.RankedEntity{{ID: 10, Messages: 80, Cost: 3}, {ID: 20, Messages: 40, Cost: 1.2}},
		},
		Today: model.TodayCost{Date: "2024-06-10", Messages: 9, ObservedCost: 0.3, ProjectedCost: 0.6, HoursElapsed: 12, Projected: true},
		Costs: model.CostAnalysis{
			TotalCost: 4.5, MessageCost: 4.2, TranscriptionCost: 0.3, TotalMessages: 120, PricedMessages: 118, UnpricedMessages: 2,
			ByProvider:   map[string]model.CostBreakdown{"openai": {Cost: 4.2, Messages: 118}},
			ByModel:      map[string]model.CostBreakdown{"gpt-4o": {Cost: 4.2, Messages: 118}},
			ByCourse:     map[int64]model.CostBreakdown{100: {Cost: 4.2, Messages: 118}},
			ByUniversity: map[int64]model.CostBreakdown{1: {Cost: 4.2, Messages: 118}},
		},
		Usage: model.UsageStats{TotalMessages: 120, UniqueStudents: 14, UniqueConversations: 30, PeakHour: 14, PeakHourMessages: 22},
		Trend: model.UsageTrend{
			Points: []model.TrendPoint{
				{Date: "2024-06-08", Messages: 30, Cost: 1},
				{Date: "2024-06-09", Messages: 40, Cost: 1.5},
				{Date: "2024-06-10", Messages: 50, Cost: 1.7},
			},
			GrowthRate: 66.7,
			Direction:  model.TrendIncreasing,
		},
		Hourly:     []model.HourlyUsage{{Hour: 9, Messages: 10}, {Hour: 14, Messages: 22}},
		Engagement: model.ConversationMetrics{TotalConversations: 30, AvgLength: 4, MedianLength: 3, CompletionRate: 60, DropoffRate: 40, EngagementQuality: model.EngagementMedium, Distribution: model.LengthDistribution{Single: 6, Short: 20, Medium: 4}},
		Quality:    model.ResponseQuality{SampleSize: 120, AvgResponseTimeMs: 2500, MedianMs: 2100, P95Ms: 6000, P99Ms: 9000, FastCount: 50, FastPercent: 41.7, Grade: "B", Status: model.StatusHealthy},
		FAQ: []model.FaqItem{
			{Question: "When is the assignment due?", Count: 7, Samples: []string{"When is the assignment due?"}, Category: "deadlines", ModuleIDs: []int64{10}, FirstSeen: seen, LastSeen: seen},
			{Question: "How do I submit the lab?", Count: 4, Category: "submission", ModuleIDs: []int64{10, 20}, FirstSeen: seen, LastSeen: seen},
		},
		Modules:     []model.ModuleComparison{{ModuleID: 10, CourseID: 100, Messages: 80, AvgResponseTimeMs: 2400, MessagesPerConversation: 4}},
		TopStudents: []model.RankedEntity{{ID: 501, Messages: 30, Conversations: 5}},
	}
}

func loadedApp() App {
	return App{
		loaded: true,
		width:  140,
		height: 45,
		days:   30,
		base:   pipeline.Request{Caller: model.Caller{Role: model.RoleSuperAdmin}},
		data:   sampleReports(),
	}
}

func TestViewFillsTerminalOnEveryTab(t *testing.T) {
	a := loadedApp()
	for i, tab := range components.Tabs {
		a.activeTab = i
		out := a.View()
		lines := strings.Split(out, "\n")
		assert.Len(t, lines, a.height, "tab %s", tab.Name)
		for n, l := range lines {
			require.LessOrEqual(t, lipgloss.Width(l), a.width, "tab %s line %d", tab.Name, n)
		}
	}
}

func TestViewShowsTabContent(t *testing.T) {
	a := loadedApp()

	a.activeTab = 1
	assert.Contains(t, a.View(), "By Provider")

	a.activeTab = faqTab
	out := a.View()
	assert.Contains(t, out, "When is the assignment due?")
	assert.Contains(t, out, "deadlines")
}

func TestViewEmptyQuality(t *testing.T) {
	a := loadedApp()
	a.data.Quality = model.ResponseQuality{Status: model.StatusNoData}
	a.activeTab = 4
	assert.Contains(t, a.View(), "No responses with a recorded response time")
}

func TestViewTooNarrow(t *testing.T) {
	a := loadedApp()
	a.width = 40
	assert.Contains(t, a.View(), "Terminal too narrow")
}

func TestKeyNavigation(t *testing.T) {
	a := loadedApp()

	m, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'u'}})
	assert.Equal(t, 4, m.(App).activeTab)

	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, faqTab, m.(App).activeTab)

	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 0, m.(App).activeTab, "right wraps around")

	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	assert.True(t, m.(App).showHelp)
	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.False(t, m.(App).showHelp, "any key closes help")

	_, cmd := m.(App).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestDataMessages(t *testing.T) {
	a := App{faqCursor: 5}

	m, _ := a.Update(DataLoadedMsg{Data: sampleReports(), LoadTime: time.Second})
	got := m.(App)
	assert.True(t, got.loaded)
	assert.Equal(t, 1, got.faqCursor, "cursor clamps to the new list")
	assert.False(t, got.lastRefresh.IsZero())

	got.refreshing = true
	m, _ = got.Update(RefreshDataMsg{Data: reports{}, LoadTime: time.Millisecond})
	got = m.(App)
	assert.False(t, got.refreshing)
	assert.Equal(t, 0, got.faqCursor)
}

func TestNextWindow(t *testing.T) {
	assert.Equal(t, 30, nextWindow(7))
	assert.Equal(t, 90, nextWindow(30))
	assert.Equal(t, 7, nextWindow(90))
	assert.Equal(t, 7, nextWindow(14+100))
}

func TestRequestWindow(t *testing.T) {
	a := loadedApp()
	a.days = 7
	req := a.request()
	require.NotNil(t, req.Start)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -7), *req.Start, time.Minute)
	assert.Nil(t, req.End)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a.base.Start = &from
	a.fixedRange = true
	assert.Equal(t, &from, a.request().Start)
}

func TestChartDateLabels(t *testing.T) {
	labels := chartDateLabels([]model.TrendPoint{
		{Date: "2024-05-30"}, {Date: "2024-05-31"}, {Date: "2024-06-01"}, {Date: "2024-06-02"},
	})
	assert.Equal(t, []string{"May", "31", "Jun", "2"}, labels)
}

func TestApplySetup(t *testing.T) {
	cfg := config.DefaultConfig()
	err := applySetup(&cfg, setupValues{
		days:       7,
		timezone:   "America/Bogota",
		theme:      "catppuccin-mocha",
		budget:     "250",
		inputShare: "0.4",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.General.DefaultDays)
	assert.Equal(t, "America/Bogota", cfg.General.Timezone)
	assert.Equal(t, "catppuccin-mocha", cfg.Appearance.Theme)
	require.NotNil(t, cfg.Budget.MonthlyUSD)
	assert.InDelta(t, 250, *cfg.Budget.MonthlyUSD, 1e-9)
	assert.InDelta(t, 0.4, cfg.Cost.InputShare, 1e-9)

	// A blank budget turns budget tracking off.
	require.NoError(t, applySetup(&cfg, setupValues{days: 30, theme: "terminal"}))
	assert.Nil(t, cfg.Budget.MonthlyUSD)
	assert.Equal(t, "Local", cfg.General.Timezone)
}

func TestApplySetupRejectsBadValues(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Error(t, applySetup(&cfg, setupValues{timezone: "Mars/Olympus"}))
	assert.Error(t, applySetup(&cfg, setupValues{budget: "-5"}))
	assert.Error(t, applySetup(&cfg, setupValues{inputShare: "1.5"}))
	assert.Equal(t, config.DefaultConfig().General.DefaultDays, cfg.General.DefaultDays, "rejected values leave cfg untouched")
}
