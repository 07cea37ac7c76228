package source

import (
	"encoding/json"
	"time"
)

// RawEvent is a single line in a chat-event JSONL export.
// Timestamp may be epoch milliseconds or an RFC 3339 string.
type RawEvent struct {
	ConversationID string          `json:"conversationId"`
	Timestamp      json.RawMessage `json:"timestamp"`
	MessageID      string          `json:"messageId"`
	StudentID      int64           `json:"studentId"`
	ModuleID       int64           `json:"moduleId"`
	Question       string          `json:"question"`
	Response       string          `json:"response"`
	ModelUsed      string          `json:"modelUsed"`
	Provider       string          `json:"provider"`
	TokenCount     *int64          `json:"tokenCount"`
	ResponseTimeMs *int64          `json:"responseTimeMs"`
	HasFile        bool            `json:"hasFile"`
	FileName       string          `json:"fileName"`
}

// DiscoveredFile represents an export file found during scanning.
type DiscoveredFile struct {
	Path      string
	SizeBytes int64
	ModTime   time.Time
}
