package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/edumetrics/internal/model"
)

func TestComputeUsage(t *testing.T) {
	gemini := ev("c2", 14*time.Hour, 2, 20)
	gemini.Provider, gemini.ModelUsed = "google", "gemini-2.5-flash"
	blank := ev("c3", 15*time.Hour, 0, 20)
	blank.Provider, blank.ModelUsed = "", ""

	events := []model.ChatMessageEvent{
		withRT(withTokens(ev("c1", 9*time.Hour, 1, 10), 100), 1000),
		withRT(ev("c1", 9*time.Hour+time.Minute, 1, 10), 3000),
		gemini,
		blank,
		ev("c4", 14*time.Hour+time.Minute, 0, 10),
	}
	stats := ComputeUsage(events, time.UTC)

	assert.Equal(t, 5, stats.TotalMessages)
	assert.Equal(t, 2, stats.UniqueStudents, "anonymous students are not counted")
	assert.Equal(t, 4, stats.UniqueConversations)
	assert.Equal(t, 2, stats.ActiveModules)
	assert.Equal(t, int64(100), stats.TotalTokens)
	assert.InDelta(t, 2000, stats.AvgResponseTimeMs, 1e-9)
	assert.Equal(t, 1, stats.MessagesByProvider["unknown"])

	sum := func(m map[string]int) int {
		n := 0
		for _, v := range m {
			n += v
		}
		return n
	}
	assert.Equal(t, stats.TotalMessages, sum(stats.MessagesByProvider))
	assert.Equal(t, stats.TotalMessages, sum(stats.MessagesByModel))

	// Hours 9 and 14 both have two messages; hour 9 was seen first.
	assert.Equal(t, 9, stats.PeakHour)
	assert.Equal(t, 2, stats.PeakHourMessages)
}

func TestComputeUsage_PeakHourTieGoesToFirstSeen(t *testing.T) {
	events := []model.ChatMessageEvent{
		ev("c1", 14*time.Hour, 1, 10),
		ev("c1", 14*time.Hour+time.Minute, 1, 10),
		ev("c2", 9*time.Hour, 2, 10),
		ev("c2", 9*time.Hour+time.Minute, 2, 10),
	}
	stats := ComputeUsage(events, time.UTC)
	assert.Equal(t, 14, stats.PeakHour)
	assert.Equal(t, 2, stats.PeakHourMessages)

	// A strictly larger count still wins regardless of order.
	events = append(events, ev("c3", 9*time.Hour+2*time.Minute, 3, 10))
	stats = ComputeUsage(events, time.UTC)
	assert.Equal(t, 9, stats.PeakHour)
	assert.Equal(t, 3, stats.PeakHourMessages)
}

func TestComputeUsage_Empty(t *testing.T) {
	stats := ComputeUsage(nil, time.UTC)
	assert.Zero(t, stats.TotalMessages)
	assert.Zero(t, stats.AvgResponseTimeMs)
	assert.NotNil(t, stats.MessagesByModel)
}

func TestComputeTrend(t *testing.T) {
	cm := testCostModel()
	var events []model.ChatMessageEvent
	// Day 0: 2 messages, day 2: 3 messages. Day 1 is absent.
	events = append(events,
		withTokens(ev("a", 1*time.Hour, 1, 10), 1000),
		ev("a", 2*time.Hour, 1, 10),
		ev("b", 49*time.Hour, 2, 10),
		ev("c", 50*time.Hour, 3, 10),
		withRT(ev("c", 51*time.Hour, 3, 10), 400),
	)

	trend := ComputeTrend(events, cm, time.UTC)
	require.Len(t, trend.Points, 2, "no zero-filled days")
	assert.Equal(t, "2024-06-03", trend.Points[0].Date)
	assert.Equal(t, "2024-06-05", trend.Points[1].Date)
	assert.Equal(t, 1, trend.Points[0].Students)
	assert.Equal(t, 2, trend.Points[1].Conversations)
	assert.InDelta(t, 0.0025, trend.Points[0].Cost, 1e-12)
	assert.InDelta(t, 400, trend.Points[1].AvgResponseTimeMs, 1e-9)
	assert.InDelta(t, 50, trend.GrowthRate, 1e-9)
	assert.Equal(t, model.TrendIncreasing, trend.Direction)
}

func TestComputeTrend_Timezone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	trend := ComputeTrend([]model.ChatMessageEvent{ev("a", 2*time.Hour, 1, 10)}, testCostModel(), loc)
	require.Len(t, trend.Points, 1)
	assert.Equal(t, "2024-06-02", trend.Points[0].Date)
	assert.Equal(t, model.TrendStable, trend.Direction)
	assert.Zero(t, trend.GrowthRate)
}

func TestDirection(t *testing.T) {
	assert.Equal(t, model.TrendIncreasing, Direction(10.01))
	assert.Equal(t, model.TrendStable, Direction(10))
	assert.Equal(t, model.TrendStable, Direction(-10))
	assert.Equal(t, model.TrendDecreasing, Direction(-10.01))
}

func TestGrowthRate_ZeroPrevious(t *testing.T) {
	assert.Zero(t, GrowthRate(50, 0))
	assert.Zero(t, GrowthRate(0, 0))
	assert.InDelta(t, -50, GrowthRate(5, 10), 1e-9)
}

func TestComputeHourly(t *testing.T) {
	hours := ComputeHourly([]model.ChatMessageEvent{
		withTokens(ev("a", 23*time.Hour, 1, 10), 10),
		ev("a", 23*time.Hour+time.Minute, 1, 10),
		ev("b", 23*time.Hour+2*time.Minute, 0, 10),
	}, time.UTC)

	require.Len(t, hours, 24)
	assert.Equal(t, 3, hours[23].Messages)
	assert.Equal(t, 1, hours[23].Students)
	assert.Equal(t, int64(10), hours[23].Tokens)
	assert.Zero(t, hours[0].Messages)
	assert.Equal(t, 5, hours[5].Hour)
}

func TestTopStudents_StableTies(t *testing.T) {
	cm := testCostModel()
	events := []model.ChatMessageEvent{
		ev("a", 0, 5, 10),
		ev("b", 1, 3, 10),
		ev("c", 2, 0, 10),
		ev("c", 3, 0, 10),
		ev("d", 4, 3, 10),
		ev("e", 5, 5, 10),
		ev("f", 6, 9, 10),
	}

	top := TopStudents(events, cm, 2)
	require.Len(t, top, 2)
	assert.Equal(t, int64(5), top[0].ID, "first seen wins a tie")
	assert.Equal(t, int64(3), top[1].ID)
	assert.Equal(t, 2, top[0].Conversations)

	all := TopStudents(events, cm, 0)
	assert.Len(t, all, 3, "anonymous student excluded")
}

func TestTopModules(t *testing.T) {
	events := []model.ChatMessageEvent{ev("a", 0, 1, 10), ev("b", 0, 1, 20), ev("c", 0, 1, 20)}
	top := TopModules(events, testCostModel(), 5)
	require.Len(t, top, 2)
	assert.Equal(t, int64(20), top[0].ID)
	assert.Equal(t, 2, top[0].Messages)
}

func TestFilterByTime(t *testing.T) {
	events := []model.ChatMessageEvent{ev("a", 0, 1, 10), ev("b", time.Hour, 1, 10), ev("c", 2*time.Hour, 1, 10)}
	got := FilterByTime(events, day0.Add(time.Hour), day0.Add(2*time.Hour))
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ConversationID)
	assert.Len(t, FilterByTime(events, time.Time{}, time.Time{}), 3)
}

func TestCompareModules(t *testing.T) {
	h := HierarchyMap{ModuleCourse: map[int64]int64{20: 2}}
	events := []model.ChatMessageEvent{
		ev("a", 0, 1, 10),
		ev("b", 0, 1, 20),
		ev("b", time.Minute, 1, 20),
		ev("c", 0, 2, 20),
		ev("d", 0, 3, 30),
	}
	rows := CompareModules(events, testCostModel(), h)

	require.Len(t, rows, 3)
	assert.Equal(t, int64(20), rows[0].ModuleID)
	assert.Equal(t, int64(2), rows[0].CourseID)
	assert.Equal(t, 2, rows[0].Students)
	assert.InDelta(t, 1.5, rows[0].MessagesPerConversation, 1e-9)
	assert.Equal(t, int64(10), rows[1].ModuleID, "tie keeps first-seen order")
	assert.Equal(t, int64(30), rows[2].ModuleID)
}
