package daemon

import (
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/edumetrics/internal/model"
)

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Messages:         100,
		Students:         10,
		Conversations:    40,
		Tokens:           1_000_000,
		EstimatedCostUSD: 10.5,
	}
	curr := Snapshot{
		Messages:         112,
		Students:         12,
		Conversations:    44,
		Tokens:           1_250_000,
		EstimatedCostUSD: 13.1,
	}

	delta := diffSnapshots(prev, curr)
	if delta.Messages != 12 {
		t.Fatalf("Messages delta = %d, want 12", delta.Messages)
	}
	if delta.Students != 2 {
		t.Fatalf("Students delta = %d, want 2", delta.Students)
	}
	if delta.Conversations != 4 {
		t.Fatalf("Conversations delta = %d, want 4", delta.Conversations)
	}
	if delta.Tokens != 250_000 {
		t.Fatalf("Tokens delta = %d, want 250000", delta.Tokens)
	}
	if math.Abs(delta.EstimatedCostUSD-2.6) > 1e-9 {
		t.Fatalf("Cost delta = %.2f, want 2.60", delta.EstimatedCostUSD)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should produce a zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	}, nil, nil, nil)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestNewDefaults(t *testing.T) {
	s := New(Config{Interval: time.Second}, nil, nil, nil)
	if s.cfg.Interval != 30*time.Second {
		t.Fatalf("Interval = %s, want 30s", s.cfg.Interval)
	}
	if s.cfg.EventsBuffer != 200 {
		t.Fatalf("EventsBuffer = %d, want 200", s.cfg.EventsBuffer)
	}
	if s.cfg.Days != 30 {
		t.Fatalf("Days = %d, want 30", s.cfg.Days)
	}
	if s.reports == nil {
		t.Fatal("nil report cache should fall back to a no-op cache")
	}
}

func TestSnapshotFromUsage(t *testing.T) {
	at := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	snap := snapshotFromUsage(model.UsageStats{
		TotalMessages:  60,
		UniqueStudents: 5,
		TotalTokens:    9000,
	}, 3.0, 30, at)

	if snap.MessagesPerDay != 2 {
		t.Fatalf("MessagesPerDay = %.2f, want 2", snap.MessagesPerDay)
	}
	if math.Abs(snap.CostPerDayUSD-0.1) > 1e-9 {
		t.Fatalf("CostPerDayUSD = %.4f, want 0.1", snap.CostPerDayUSD)
	}
	if !snap.At.Equal(at) {
		t.Fatalf("At = %s, want %s", snap.At, at)
	}
}
