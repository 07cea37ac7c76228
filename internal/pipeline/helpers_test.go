package pipeline

import (
	"time"

	"github.com/theirongolddev/edumetrics/internal/config"
	"github.com/theirongolddev/edumetrics/internal/model"
)

func i64(v int64) *int64 { return &v }

var day0 = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

// ev builds an event at day0 + offset.
func ev(conv string, offset time.Duration, student, module int64) model.ChatMessageEvent {
	return model.ChatMessageEvent{
		ConversationID: conv,
		Timestamp:      day0.Add(offset).UnixMilli(),
		MessageID:      conv + offset.String(),
		StudentID:      student,
		ModuleID:       module,
		Question:       "How do I log in?",
		ModelUsed:      "test-model",
		Provider:       "acme",
	}
}

func withTokens(e model.ChatMessageEvent, tokens int64) model.ChatMessageEvent {
	e.TokenCount = i64(tokens)
	return e
}

func withRT(e model.ChatMessageEvent, ms int64) model.ChatMessageEvent {
	e.ResponseTimeMs = i64(ms)
	return e
}

// testCostModel prices test-model at $1/M input and $3/M output.
func testCostModel() CostModel {
	return NewCostModel(config.NewPricingTable([]model.ModelPricing{
		{ModelName: "test-model", Provider: "acme", InputCostPerMillionTokens: 1, OutputCostPerMillionTokens: 3},
	}), DefaultInputShare)
}
