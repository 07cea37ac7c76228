package pipeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/theirongolddev/edumetrics/internal/faq"
	"github.com/theirongolddev/edumetrics/internal/model"
)

// syntheticEvents builds n events spread over 30 days, 50 modules and 500 students.
func syntheticEvents(n int) []model.ChatMessageEvent {
	events := make([]model.ChatMessageEvent, n)
	for i := range events {
		tokens := int64(200 + i%800)
		rt := int64(300 + (i*37)%12000)
		events[i] = model.ChatMessageEvent{
			ConversationID: fmt.Sprintf("conv-%d", i/6),
			Timestamp:      day0.Add(time.Duration(i) * 43 * time.Second).UnixMilli(),
			MessageID:      fmt.Sprintf("m-%d", i),
			StudentID:      int64(i % 500),
			ModuleID:       int64(i % 50),
			Question:       fmt.Sprintf("how do I solve exercise %d", i%40),
			ModelUsed:      "test-model",
			Provider:       "acme",
			TokenCount:     &tokens,
			ResponseTimeMs: &rt,
		}
	}
	return events
}

func BenchmarkAnalyzeCosts(b *testing.B) {
	events := syntheticEvents(50_000)
	cm := testCostModel()
	h := HierarchyMap{ModuleCourse: map[int64]int64{}, CourseUniversity: map[int64]int64{}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = AnalyzeCosts(events, cm, h, nil)
	}
}

func BenchmarkComputeTrend(b *testing.B) {
	events := syntheticEvents(50_000)
	cm := testCostModel()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ComputeTrend(events, cm, time.UTC)
	}
}

func BenchmarkGradeResponses(b *testing.B) {
	events := syntheticEvents(50_000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GradeResponses(events)
	}
}

func BenchmarkClusterFAQ(b *testing.B) {
	events := syntheticEvents(2_000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = faq.Cluster(events, faq.DefaultOptions())
	}
}
