// Package daemon serves the analytics HTTP API and a live usage feed.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/theirongolddev/edumetrics/internal/cache"
	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Days         int
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Driver       string
}

// HealthFunc reports whether the backing store is reachable.
type HealthFunc func(ctx context.Context) error

// Snapshot is a compact global usage state for status and event payloads.
type Snapshot struct {
	At                time.Time `json:"at"`
	Messages          int       `json:"messages"`
	Students          int       `json:"students"`
	Conversations     int       `json:"conversations"`
	ActiveModules     int       `json:"active_modules"`
	Tokens            int64     `json:"tokens"`
	EstimatedCostUSD  float64   `json:"estimated_cost_usd"`
	AvgResponseTimeMs float64   `json:"avg_response_time_ms"`
	MessagesPerDay    float64   `json:"messages_per_day"`
	CostPerDayUSD     float64   `json:"cost_per_day_usd"`
}

// Delta captures snapshot changes between polls.
type Delta struct {
	Messages         int     `json:"messages"`
	Students         int     `json:"students"`
	Conversations    int     `json:"conversations"`
	Tokens           int64   `json:"tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
}

func (d Delta) isZero() bool {
	return d.Messages == 0 &&
		d.Students == 0 &&
		d.Conversations == 0 &&
		d.Tokens == 0 &&
		d.EstimatedCostUSD == 0
}

// Event is emitted whenever the usage snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Days            int       `json:"days"`
	Driver          string    `json:"driver,omitempty"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	engine  *pipeline.Engine
	reports cache.ReportCache
	health  HealthFunc
	now     func() time.Time

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service over the engine. A nil report cache disables
// response caching; a nil health check always passes.
func New(cfg Config, engine *pipeline.Engine, reports cache.ReportCache, health HealthFunc) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Days < 1 {
		cfg.Days = 30
	}
	if reports == nil {
		reports = cache.Nop{}
	}

	return &Service{
		cfg:       cfg,
		engine:    engine,
		reports:   reports,
		health:    health,
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// pollOnce recomputes the global snapshot for the trailing window and
// publishes an event when anything moved.
func (s *Service) pollOnce(ctx context.Context) {
	now := s.now()

	if s.health != nil {
		if err := s.health(ctx); err != nil {
			s.mu.Lock()
			s.lastError = err.Error()
			s.lastPollAt = now
			s.pollCount++
			s.mu.Unlock()
			log.WithError(err).Warn("daemon poll: store unavailable")
			return
		}
	}

	since := now.AddDate(0, 0, -s.cfg.Days)
	req := pipeline.Request{
		Caller: model.Caller{Role: model.RoleSuperAdmin},
		Start:  &since,
		End:    &now,
	}
	events := s.engine.Events(ctx, req)
	usage := pipeline.ComputeUsage(events, s.engine.Location())
	cost := pipeline.TotalMessageCost(events, s.engine.CostModel(ctx))
	snap := snapshotFromUsage(usage, cost, s.cfg.Days, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "snapshot", Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "usage_delta", Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
	log.WithFields(log.Fields{
		"messages": snap.Messages,
		"cost":     snap.EstimatedCostUSD,
		"publish":  publish,
	}).Debug("daemon poll complete")
}

func snapshotFromUsage(u model.UsageStats, cost float64, days int, at time.Time) Snapshot {
	snap := Snapshot{
		At:                at,
		Messages:          u.TotalMessages,
		Students:          u.UniqueStudents,
		Conversations:     u.UniqueConversations,
		ActiveModules:     u.ActiveModules,
		Tokens:            u.TotalTokens,
		EstimatedCostUSD:  cost,
		AvgResponseTimeMs: u.AvgResponseTimeMs,
	}
	if days > 0 {
		snap.MessagesPerDay = float64(u.TotalMessages) / float64(days)
		snap.CostPerDayUSD = cost / float64(days)
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Messages:         curr.Messages - prev.Messages,
		Students:         curr.Students - prev.Students,
		Conversations:    curr.Conversations - prev.Conversations,
		Tokens:           curr.Tokens - prev.Tokens,
		EstimatedCostUSD: curr.EstimatedCostUSD - prev.EstimatedCostUSD,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Days:            s.cfg.Days,
		Driver:          s.cfg.Driver,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) recentEvents() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	return events
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
