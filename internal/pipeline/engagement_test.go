package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/theirongolddev/edumetrics/internal/model"
)

func conversation(id string, n int, step time.Duration) []model.ChatMessageEvent {
	out := make([]model.ChatMessageEvent, n)
	for i := range out {
		out[i] = ev(id, time.Duration(i)*step, 1, 10)
	}
	return out
}

func TestAnalyzeEngagement_SingleAndMediumConversations(t *testing.T) {
	events := append(conversation("c1", 1, 0), conversation("c2", 7, 10*time.Second)...)
	m := AnalyzeEngagement(events)

	assert.Equal(t, 2, m.TotalConversations)
	assert.Equal(t, model.LengthDistribution{Single: 1, Medium: 1}, m.Distribution)
	assert.InDelta(t, 50, m.CompletionRate, 1e-9)
	assert.InDelta(t, 50, m.DropoffRate, 1e-9)
	assert.Equal(t, model.EngagementMedium, m.EngagementQuality)
	assert.InDelta(t, 4, m.AvgLength, 1e-9)
	assert.InDelta(t, 4, m.MedianLength, 1e-9, "even count averages the two middle values")
	assert.InDelta(t, 30, m.AvgDurationSecs, 1e-9)
}

func TestAnalyzeEngagement_Buckets(t *testing.T) {
	var events []model.ChatMessageEvent
	for i, n := range []int{1, 2, 5, 6, 15, 16, 40} {
		events = append(events, conversation(string(rune('a'+i)), n, time.Second)...)
	}
	m := AnalyzeEngagement(events)

	assert.Equal(t, model.LengthDistribution{Single: 1, Short: 2, Medium: 2, Long: 2}, m.Distribution)
	assert.Equal(t, m.TotalConversations, m.Distribution.Total())
	assert.InDelta(t, 6, m.MedianLength, 1e-9)
	assert.InDelta(t, 500.0/7, m.CompletionRate, 1e-9)
	assert.Equal(t, model.EngagementMedium, m.EngagementQuality)
}

func TestAnalyzeEngagement_Empty(t *testing.T) {
	m := AnalyzeEngagement(nil)
	assert.Zero(t, m.TotalConversations)
	assert.Zero(t, m.CompletionRate)
	assert.Equal(t, model.EngagementLow, m.EngagementQuality)
}

func TestEngagementTier(t *testing.T) {
	assert.Equal(t, model.EngagementHigh, EngagementTier(80))
	assert.Equal(t, model.EngagementMedium, EngagementTier(79.9))
	assert.Equal(t, model.EngagementMedium, EngagementTier(50))
	assert.Equal(t, model.EngagementLow, EngagementTier(49.9))
}
