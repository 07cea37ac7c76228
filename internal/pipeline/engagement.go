package pipeline

import (
	"sort"

	"github.com/theirongolddev/edumetrics/internal/model"
)

// completedLength is the message count at which a conversation counts as completed.
const completedLength = 3

type conversationSpan struct {
	length      int
	first, last int64
}

// AnalyzeEngagement groups events by conversation and scores how far students
// get. An empty input yields zero metrics with low engagement.
func AnalyzeEngagement(events []model.ChatMessageEvent) model.ConversationMetrics {
	spans := make(map[string]*conversationSpan)
	for _, e := range events {
		s, ok := spans[e.ConversationID]
		if !ok {
			spans[e.ConversationID] = &conversationSpan{length: 1, first: e.Timestamp, last: e.Timestamp}
			continue
		}
		s.length++
		s.first = min(s.first, e.Timestamp)
		s.last = max(s.last, e.Timestamp)
	}

	m := model.ConversationMetrics{
		TotalConversations: len(spans),
		EngagementQuality:  model.EngagementLow,
	}
	if len(spans) == 0 {
		return m
	}

	lengths := make([]int, 0, len(spans))
	var totalLen int
	var totalDurationMs int64
	completed := 0
	for _, s := range spans {
		lengths = append(lengths, s.length)
		totalLen += s.length
		totalDurationMs += s.last - s.first

		switch {
		case s.length == 1:
			m.Distribution.Single++
		case s.length <= 5:
			m.Distribution.Short++
		case s.length <= 15:
			m.Distribution.Medium++
		default:
			m.Distribution.Long++
		}
		if s.length >= completedLength {
			completed++
		}
	}

	n := float64(len(spans))
	m.AvgLength = float64(totalLen) / n
	m.MedianLength = median(lengths)
	m.AvgDurationSecs = float64(totalDurationMs) / 1000 / n
	m.CompletionRate = float64(completed) / n * 100
	m.DropoffRate = 100 - m.CompletionRate
	m.EngagementQuality = EngagementTier(m.CompletionRate)
	return m
}

// EngagementTier maps a completion rate to high (>= 80), medium (>= 50) or low.
func EngagementTier(completionRate float64) string {
	switch {
	case completionRate >= 80:
		return model.EngagementHigh
	case completionRate >= 50:
		return model.EngagementMedium
	default:
		return model.EngagementLow
	}
}

// median averages the two middle values for even counts.
func median(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}
