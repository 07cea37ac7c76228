package pipeline

import (
	"time"

	"github.com/theirongolddev/edumetrics/internal/model"
)

// minProjectionHours is how much of the day must elapse before today's cost is extrapolated.
const minProjectionHours = 3.0

// Period is a half-open [Start, End) time range.
type Period struct {
	Start time.Time
	End   time.Time
}

// Previous returns the equal-length period immediately before p.
func (p Period) Previous() Period {
	return Period{Start: p.Start.Add(-p.End.Sub(p.Start)), End: p.Start}
}

// Totals computes headline numbers for events in a period.
func Totals(events []model.ChatMessageEvent, cm CostModel, p Period) model.PeriodTotals {
	t := model.PeriodTotals{Start: p.Start, End: p.End}
	students := make(map[int64]struct{})
	conversations := make(map[string]struct{})
	modules := make(map[int64]struct{})
	for _, e := range events {
		t.Messages++
		cost, _ := cm.MessageCost(e)
		t.Cost += cost
		if !e.Anonymous() {
			students[e.StudentID] = struct{}{}
		}
		conversations[e.ConversationID] = struct{}{}
		modules[e.ModuleID] = struct{}{}
	}
	t.Students = len(students)
	t.Conversations = len(conversations)
	t.ActiveModules = len(modules)
	return t
}

// ComposeDashboard combines the current period with the preceding one.
func ComposeDashboard(current, previous []model.ChatMessageEvent, cm CostModel, period Period, topN int) model.DashboardSummary {
	cur := Totals(current, cm, period)
	prev := Totals(previous, cm, period.Previous())

	return model.DashboardSummary{
		Current:  cur,
		Previous: prev,
		Growth: model.Growth{
			Messages: GrowthRate(float64(cur.Messages), float64(prev.Messages)),
			Students: GrowthRate(float64(cur.Students), float64(prev.Students)),
			Cost:     GrowthRate(cur.Cost, prev.Cost),
		},
		Engagement: AnalyzeEngagement(current).EngagementQuality,
		Grade:      GradeResponses(current).Grade,
		TopModules: TopModules(current, cm, topN),
	}
}

// ComputeTodayCost reports today's observed cost in loc and projects it to a
// full day once at least three hours have elapsed. Before that the projection
// equals the observed cost.
func ComputeTodayCost(events []model.ChatMessageEvent, cm CostModel, now time.Time, loc *time.Location) model.TodayCost {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	today := FilterByTime(events, midnight, midnight.AddDate(0, 0, 1))

	tc := model.TodayCost{
		Date:         midnight.Format("2006-01-02"),
		Messages:     len(today),
		ObservedCost: TotalMessageCost(today, cm),
		HoursElapsed: local.Sub(midnight).Hours(),
	}
	tc.ProjectedCost = tc.ObservedCost
	if tc.HoursElapsed >= minProjectionHours {
		tc.ProjectedCost = tc.ObservedCost / tc.HoursElapsed * 24
		tc.Projected = true
	}
	return tc
}

// MonthStart returns the first instant of now's month in loc.
func MonthStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}

// ComputeBudget measures month-to-date spend in loc against a monthly budget.
// The burn rate uses at least one elapsed day.
func ComputeBudget(monthCost, monthlyBudget float64, now time.Time, loc *time.Location) model.BudgetStats {
	start := MonthStart(now, loc)
	daysInMonth := start.AddDate(0, 1, -1).Day()
	elapsed := max(now.Sub(start).Hours()/24, 1)

	b := model.BudgetStats{
		MonthlyBudget: monthlyBudget,
		MonthToDate:   monthCost,
		DailyBurnRate: monthCost / elapsed,
		DaysRemaining: daysInMonth - now.In(loc).Day(),
	}
	b.ProjectedMonthly = b.DailyBurnRate * float64(daysInMonth)
	if monthlyBudget > 0 {
		b.BudgetUsedPercent = monthCost / monthlyBudget * 100
	}
	return b
}
