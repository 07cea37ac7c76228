package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/edumetrics/internal/model"
)

func TestPeriodPrevious(t *testing.T) {
	p := Period{Start: day0, End: day0.AddDate(0, 0, 7)}
	prev := p.Previous()
	assert.Equal(t, day0.AddDate(0, 0, -7), prev.Start)
	assert.Equal(t, day0, prev.End)
}

func TestComposeDashboard(t *testing.T) {
	cm := testCostModel()
	period := Period{Start: day0, End: day0.AddDate(0, 0, 1)}
	current := []model.ChatMessageEvent{
		withTokens(ev("a", time.Hour, 1, 10), 1000),
		withRT(ev("a", 2*time.Hour, 1, 10), 1000),
		ev("a", 3*time.Hour, 1, 10),
		ev("b", 4*time.Hour, 2, 20),
	}
	previous := []model.ChatMessageEvent{ev("z", -time.Hour, 1, 10), ev("z", -2*time.Hour, 1, 10)}

	s := ComposeDashboard(current, previous, cm, period, 1)
	assert.Equal(t, 4, s.Current.Messages)
	assert.Equal(t, 2, s.Previous.Messages)
	assert.InDelta(t, 100, s.Growth.Messages, 1e-9)
	assert.InDelta(t, 100, s.Growth.Students, 1e-9)
	assert.Zero(t, s.Growth.Cost, "previous cost is zero")
	assert.Equal(t, model.EngagementMedium, s.Engagement)
	assert.Equal(t, "A", s.Grade)
	require.Len(t, s.TopModules, 1)
	assert.Equal(t, int64(10), s.TopModules[0].ID)
	assert.Equal(t, day0.AddDate(0, 0, -1), s.Previous.Start)
}

func TestComposeDashboard_Empty(t *testing.T) {
	s := ComposeDashboard(nil, nil, testCostModel(), Period{Start: day0, End: day0.Add(time.Hour)}, 5)
	assert.Zero(t, s.Growth.Messages)
	assert.Zero(t, s.Current.Cost)
	assert.Empty(t, s.TopModules)
}

func TestComputeTodayCost(t *testing.T) {
	cm := testCostModel()
	events := []model.ChatMessageEvent{
		withTokens(ev("y", -time.Hour, 1, 10), 1_000_000), // yesterday
		withTokens(ev("a", 30*time.Minute, 1, 10), 1000),
	}

	early := ComputeTodayCost(events, cm, day0.Add(2*time.Hour), time.UTC)
	assert.Equal(t, "2024-06-03", early.Date)
	assert.Equal(t, 1, early.Messages)
	assert.False(t, early.Projected)
	assert.InDelta(t, 0.0025, early.ProjectedCost, 1e-12)

	later := ComputeTodayCost(events, cm, day0.Add(6*time.Hour), time.UTC)
	assert.True(t, later.Projected)
	assert.InDelta(t, 0.0025, later.ObservedCost, 1e-12)
	assert.InDelta(t, 0.01, later.ProjectedCost, 1e-12)

	boundary := ComputeTodayCost(events, cm, day0.Add(3*time.Hour), time.UTC)
	assert.True(t, boundary.Projected)
}

func TestComputeBudget(t *testing.T) {
	now := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	b := ComputeBudget(50, 200, now, time.UTC)

	assert.InDelta(t, 5, b.DailyBurnRate, 1e-9)
	assert.InDelta(t, 150, b.ProjectedMonthly, 1e-9)
	assert.Equal(t, 19, b.DaysRemaining)
	assert.InDelta(t, 25, b.BudgetUsedPercent, 1e-9)

	first := ComputeBudget(10, 0, time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC), time.UTC)
	assert.InDelta(t, 10, first.DailyBurnRate, 1e-9, "at least one day elapsed")
	assert.Zero(t, first.BudgetUsedPercent)
}
