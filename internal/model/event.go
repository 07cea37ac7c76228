// Package model defines domain types for chat events, reference data and derived metrics.
package model

import "time"

// ChatMessageEvent is one question/answer interaction recorded by the platform.
// Events are append-only; identity is (ConversationID, Timestamp, MessageID).
type ChatMessageEvent struct {
	ConversationID string `json:"conversationId" yaml:"conversationId"`
	Timestamp      int64  `json:"timestamp" yaml:"timestamp"` // epoch milliseconds
	MessageID      string `json:"messageId" yaml:"messageId"`
	StudentID      int64  `json:"studentId" yaml:"studentId"` // 0 = anonymous
	ModuleID       int64  `json:"moduleId" yaml:"moduleId"`
	Question       string `json:"question" yaml:"question"`
	Response       string `json:"response" yaml:"response"`
	ModelUsed      string `json:"modelUsed" yaml:"modelUsed"`
	Provider       string `json:"provider" yaml:"provider"`
	TokenCount     *int64 `json:"tokenCount,omitempty" yaml:"tokenCount,omitempty"`
	ResponseTimeMs *int64 `json:"responseTimeMs,omitempty" yaml:"responseTimeMs,omitempty"`
	HasFile        bool   `json:"hasFile" yaml:"hasFile"`
	FileName       string `json:"fileName,omitempty" yaml:"fileName,omitempty"`
}

// Time returns the event timestamp as a time.Time.
func (e ChatMessageEvent) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Tokens returns the token count, or 0 when unknown.
func (e ChatMessageEvent) Tokens() int64 {
	if e.TokenCount == nil {
		return 0
	}
	return *e.TokenCount
}

// Anonymous reports whether the event has no identified student.
func (e ChatMessageEvent) Anonymous() bool {
	return e.StudentID == 0
}

// EventQuery scopes one read against the event store.
// Nil bounds are unbounded; End is exclusive.
type EventQuery struct {
	ModuleID int64
	Start    *time.Time
	End      *time.Time
	Limit    int
}

// ModelPricing is one active pricing row for a model.
type ModelPricing struct {
	ModelName                  string  `json:"modelName" yaml:"modelName"`
	Provider                   string  `json:"provider" yaml:"provider"`
	InputCostPerMillionTokens  float64 `json:"inputCostPerMillionTokens" yaml:"inputCostPerMillionTokens"`
	OutputCostPerMillionTokens float64 `json:"outputCostPerMillionTokens" yaml:"outputCostPerMillionTokens"`
}

// ModuleRef links a module to its owning course.
type ModuleRef struct {
	ID       int64  `json:"id" yaml:"id"`
	CourseID int64  `json:"courseId" yaml:"courseId"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
}

// CourseRef links a course to its owning university.
type CourseRef struct {
	ID           int64  `json:"id" yaml:"id"`
	UniversityID int64  `json:"universityId" yaml:"universityId"`
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
}

// ProfessorAssignment grants a professor access to a course.
type ProfessorAssignment struct {
	ProfessorID int64 `json:"professorId" yaml:"professorId"`
	CourseID    int64 `json:"courseId" yaml:"courseId"`
}

// TranscriptionCost is a completed media transcription billed to a module.
type TranscriptionCost struct {
	ModuleID        int64     `json:"moduleId" yaml:"moduleId"`
	CostUSD         float64   `json:"costUSD" yaml:"costUSD"`
	DurationSeconds float64   `json:"durationSeconds" yaml:"durationSeconds"`
	CompletedAt     time.Time `json:"completedAt" yaml:"completedAt"`
}
