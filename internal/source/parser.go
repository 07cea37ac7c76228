// Package source discovers and parses chat-event exports and declares the
// read interfaces the analytics engine consumes.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/theirongolddev/edumetrics/internal/model"
)

// ErrMissingIdentity marks an event without a conversation ID or timestamp.
var ErrMissingIdentity = errors.New("event has no conversationId or timestamp")

// ParseResult holds the output of parsing a single JSONL file.
type ParseResult struct {
	File        DiscoveredFile
	Events      []model.ChatMessageEvent
	Lines       int
	ParseErrors int
	Duplicates  int
	Err         error
}

type eventKey struct {
	conversationID string
	timestamp      int64
	messageID      string
}

// ParseFile reads a JSONL export and returns its events in file order.
// Repeated identities (conversationId, timestamp, messageId) keep the last
// line seen, matching the store's upsert semantics.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{File: df, Err: err}
	}
	defer func() { _ = f.Close() }()

	res := ParseReader(f)
	res.File = df
	return res
}

// ParseReader parses JSONL events from r.
func ParseReader(r io.Reader) ParseResult {
	var res ParseResult
	index := make(map[eventKey]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256*1024), 4*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		res.Lines++

		ev, err := DecodeEvent(line)
		if err != nil {
			res.ParseErrors++
			continue
		}

		key := eventKey{ev.ConversationID, ev.Timestamp, ev.MessageID}
		if i, ok := index[key]; ok {
			res.Events[i] = ev
			res.Duplicates++
			continue
		}
		index[key] = len(res.Events)
		res.Events = append(res.Events, ev)
	}

	if err := scanner.Err(); err != nil {
		res.Err = err
	}
	return res
}

// DecodeEvent decodes one JSON object into a ChatMessageEvent.
func DecodeEvent(line []byte) (model.ChatMessageEvent, error) {
	var raw RawEvent
	if err := json.Unmarshal(line, &raw); err != nil {
		return model.ChatMessageEvent{}, err
	}

	ts, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		return model.ChatMessageEvent{}, err
	}
	if raw.ConversationID == "" || ts == 0 {
		return model.ChatMessageEvent{}, ErrMissingIdentity
	}

	return model.ChatMessageEvent{
		ConversationID: raw.ConversationID,
		Timestamp:      ts,
		MessageID:      raw.MessageID,
		StudentID:      raw.StudentID,
		ModuleID:       raw.ModuleID,
		Question:       raw.Question,
		Response:       raw.Response,
		ModelUsed:      raw.ModelUsed,
		Provider:       raw.Provider,
		TokenCount:     nonNegative(raw.TokenCount),
		ResponseTimeMs: nonNegative(raw.ResponseTimeMs),
		HasFile:        raw.HasFile,
		FileName:       raw.FileName,
	}, nil
}

// parseTimestamp accepts epoch milliseconds (number or numeric string) or RFC 3339.
func parseTimestamp(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if ms, err := n.Int64(); err == nil {
			return ms, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("timestamp %s: %w", raw, err)
		}
		return int64(f), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("timestamp %s: %w", raw, err)
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return t.UnixMilli(), nil
}

// nonNegative drops negative measurements, which only come from broken clients.
func nonNegative(v *int64) *int64 {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}
