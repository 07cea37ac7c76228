package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/edumetrics/internal/model"
)

func TestAnalyzeCosts_UniformTokens(t *testing.T) {
	var events []model.ChatMessageEvent
	for i := 0; i < 100; i++ {
		events = append(events, withTokens(ev("c", time.Duration(i)*time.Second, 1, 10), 1000))
	}
	cm := testCostModel()

	cost, priced := cm.MessageCost(events[0])
	require.True(t, priced)
	assert.InDelta(t, 0.0025, cost, 1e-12)

	a := AnalyzeCosts(events, cm, HierarchyMap{}, nil)
	assert.InDelta(t, 0.25, a.TotalCost, 1e-9)
	assert.InDelta(t, 0.25, a.MessageCost, 1e-9)
	assert.Equal(t, 100, a.PricedMessages)
	assert.Equal(t, int64(100000), a.TotalTokens)
}

func TestCostModel_Linear(t *testing.T) {
	cm := testCostModel()
	base, _ := cm.Cost(1000, "test-model")
	for _, mult := range []int64{0, 1, 2, 7, 1000} {
		c, ok := cm.Cost(1000*mult, "test-model")
		require.True(t, ok)
		assert.GreaterOrEqual(t, c, 0.0)
		assert.InDelta(t, base*float64(mult), c, 1e-9)
	}
}

func TestCostModel_ZeroOnMissingData(t *testing.T) {
	cm := testCostModel()

	noTokens := ev("c", 0, 1, 10)
	c, priced := cm.MessageCost(noTokens)
	assert.Zero(t, c)
	assert.False(t, priced)

	unknown := withTokens(ev("c", 0, 1, 10), 5000)
	unknown.ModelUsed = "mystery"
	c, priced = cm.MessageCost(unknown)
	assert.Zero(t, c)
	assert.False(t, priced)

	a := AnalyzeCosts([]model.ChatMessageEvent{noTokens, unknown}, cm, HierarchyMap{}, nil)
	assert.Equal(t, 2, a.TotalMessages, "unpriced messages still count")
	assert.Equal(t, 2, a.UnpricedMessages)
	assert.Zero(t, a.TotalCost)
}

func TestCostModel_DatedModelName(t *testing.T) {
	cm := testCostModel()
	c, ok := cm.Cost(1000, "test-model-20250101")
	require.True(t, ok)
	assert.InDelta(t, 0.0025, c, 1e-12)
}

func TestCostModel_InputShare(t *testing.T) {
	cm := testCostModel()
	cm.InputShare = 1
	c, _ := cm.Cost(1_000_000, "test-model")
	assert.InDelta(t, 1.0, c, 1e-9)

	assert.Equal(t, DefaultInputShare, NewCostModel(cm.Pricing, 1.5).InputShare)
}

func TestAnalyzeCosts_Dimensions(t *testing.T) {
	cm := testCostModel()
	h := HierarchyMap{
		ModuleCourse:     map[int64]int64{10: 1, 20: 2},
		CourseUniversity: map[int64]int64{1: 100},
	}
	other := withTokens(ev("c3", 0, 3, 30), 1000)
	other.Provider = ""
	other.ModelUsed = ""
	events := []model.ChatMessageEvent{
		withTokens(ev("c1", 0, 1, 10), 1000),
		withTokens(ev("c2", 0, 2, 20), 1000),
		other,
	}

	a := AnalyzeCosts(events, cm, h, []model.TranscriptionCost{
		{ModuleID: 10, CostUSD: 0.5, DurationSeconds: 60},
		{ModuleID: 10, CostUSD: 0.25, DurationSeconds: 30},
	})

	assert.Equal(t, 2, a.ByProvider["acme"].Messages)
	assert.Equal(t, 1, a.ByProvider["unknown"].Messages)
	assert.Equal(t, 1, a.ByModel["unknown"].Messages)
	assert.Len(t, a.ByModule, 3)

	// Module 30 has no course; course 2 has no university.
	assert.Len(t, a.ByCourse, 2)
	assert.NotContains(t, a.ByCourse, int64(0))
	assert.Equal(t, map[int64]model.CostBreakdown{100: {Cost: 0.0025, Messages: 1, Tokens: 1000}}, roundBreakdown(a.ByUniversity))

	assert.Equal(t, 2, a.Transcriptions.Count)
	assert.InDelta(t, 0.75, a.TranscriptionCost, 1e-9)
	assert.InDelta(t, 0.75, a.Transcriptions.ByModule[10], 1e-9)
	assert.InDelta(t, 90, a.Transcriptions.DurationSeconds, 1e-9)
	assert.InDelta(t, a.MessageCost+0.75, a.TotalCost, 1e-9)
}

func roundBreakdown(m map[int64]model.CostBreakdown) map[int64]model.CostBreakdown {
	out := make(map[int64]model.CostBreakdown, len(m))
	for k, v := range m {
		v.Cost = float64(int64(v.Cost*1e9+0.5)) / 1e9
		out[k] = v
	}
	return out
}

func TestAnalyzeCosts_Empty(t *testing.T) {
	a := AnalyzeCosts(nil, testCostModel(), HierarchyMap{}, nil)
	assert.Zero(t, a.TotalCost)
	assert.NotNil(t, a.ByProvider)
	assert.Empty(t, a.ByModule)
}
