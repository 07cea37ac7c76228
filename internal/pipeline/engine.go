package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/theirongolddev/edumetrics/internal/config"
	"github.com/theirongolddev/edumetrics/internal/faq"
	"github.com/theirongolddev/edumetrics/internal/metrics"
	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/scope"
	"github.com/theirongolddev/edumetrics/internal/source"
)

// DefaultTopN is the ranking size when a request sets no limit.
const DefaultTopN = 10

// Sources bundles the read interfaces the engine depends on.
type Sources struct {
	Events         source.EventStore
	Hierarchy      source.Hierarchy
	Pricing        source.PricingSource
	Transcriptions source.TranscriptionSource
}

// Request describes one analytics call.
type Request struct {
	Caller model.Caller
	Filter model.ScopeFilter
	Start  *time.Time
	End    *time.Time
	Limit  int
}

// Engine runs scope resolution, the module fan-out and the reducers for each
// request. Its methods never fail: unavailable sources yield empty or zeroed
// results and are logged.
type Engine struct {
	src      Sources
	resolver *scope.Resolver

	mu      sync.RWMutex
	cfg     config.Config
	fetcher *Fetcher
	now     func() time.Time
}

// NewEngine creates an engine over the given sources.
func NewEngine(src Sources, cfg config.Config) *Engine {
	e := &Engine{
		src:      src,
		resolver: scope.NewResolver(src.Hierarchy),
		now:      time.Now,
	}
	e.Configure(cfg)
	return e
}

// Configure swaps in new settings. In-flight requests keep the old ones.
func (e *Engine) Configure(cfg config.Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	e.fetcher = NewFetcher(e.src.Events, cfg.Fetch.MaxConcurrency, cfg.Fetch.PerModuleLimit)
}

// SetClock overrides the wall clock used for "today" and default periods.
// It is safe to call while requests are in flight.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

func (e *Engine) clock() time.Time {
	e.mu.RLock()
	now := e.now
	e.mu.RUnlock()
	return now()
}

func (e *Engine) settings() (config.Config, *Fetcher) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg, e.fetcher
}

// Modules returns the module IDs the request may see.
func (e *Engine) Modules(ctx context.Context, req Request) []int64 {
	return e.resolver.Resolve(ctx, req.Caller, req.Filter)
}

// Events returns the scoped events for a request.
func (e *Engine) Events(ctx context.Context, req Request) []model.ChatMessageEvent {
	_, f := e.settings()
	return f.Fetch(ctx, e.Modules(ctx, req), req.Start, req.End)
}

// CostModel builds the cost model from active pricing plus config overrides.
// A pricing failure leaves the table empty, so every message costs 0.
func (e *Engine) CostModel(ctx context.Context) CostModel {
	cfg, _ := e.settings()
	rows, err := e.src.Pricing.GetActiveModels(ctx)
	if err != nil {
		metrics.DegradedLookups.WithLabelValues("pricing").Inc()
		log.WithError(err).WithField("dimension", "pricing").Warn("pricing unavailable; costs will be zero")
	}
	table := config.NewPricingTable(rows).WithOverrides(cfg.Pricing)
	return NewCostModel(table, cfg.Cost.InputShare)
}

// scoped reads the hierarchy once and derives both the request's module
// scope and the course and university attribution from that read.
func (e *Engine) scoped(ctx context.Context, req Request) ([]int64, HierarchyMap) {
	snap := scope.Load(ctx, e.src.Hierarchy)
	mc, cu := snap.CourseMap()
	modules := e.resolver.ResolveIn(ctx, snap, req.Caller, req.Filter)
	return modules, HierarchyMap{ModuleCourse: mc, CourseUniversity: cu}
}

// Location returns the configured reporting timezone.
func (e *Engine) Location() *time.Location {
	cfg, _ := e.settings()
	return cfg.Location()
}

// Costs returns cost attribution plus transcription costs for the scope.
func (e *Engine) Costs(ctx context.Context, req Request) model.CostAnalysis {
	modules, h := e.scoped(ctx, req)
	_, f := e.settings()
	events := f.Fetch(ctx, modules, req.Start, req.End)

	var transcriptions []model.TranscriptionCost
	if len(modules) > 0 && e.src.Transcriptions != nil {
		var err error
		transcriptions, err = e.src.Transcriptions.GetCompletedTranscriptions(ctx, modules, req.Start, req.End)
		if err != nil {
			metrics.DegradedLookups.WithLabelValues("transcriptions").Inc()
			log.WithError(err).WithField("dimension", "transcriptions").Warn("transcription costs unavailable")
			transcriptions = nil
		}
	}
	return AnalyzeCosts(events, e.CostModel(ctx), h, transcriptions)
}

// Usage returns headline activity counts.
func (e *Engine) Usage(ctx context.Context, req Request) model.UsageStats {
	return ComputeUsage(e.Events(ctx, req), e.Location())
}

// Trend returns the per-day series with growth and direction.
func (e *Engine) Trend(ctx context.Context, req Request) model.UsageTrend {
	return ComputeTrend(e.Events(ctx, req), e.CostModel(ctx), e.Location())
}

// Hourly returns 24 hour-of-day buckets.
func (e *Engine) Hourly(ctx context.Context, req Request) []model.HourlyUsage {
	return ComputeHourly(e.Events(ctx, req), e.Location())
}

// TopStudents ranks the most active identified students.
func (e *Engine) TopStudents(ctx context.Context, req Request) []model.RankedEntity {
	return TopStudents(e.Events(ctx, req), e.CostModel(ctx), limitOr(req.Limit, DefaultTopN))
}

// TopModules ranks the most active modules.
func (e *Engine) TopModules(ctx context.Context, req Request) []model.RankedEntity {
	return TopModules(e.Events(ctx, req), e.CostModel(ctx), limitOr(req.Limit, DefaultTopN))
}

// CompareModules compares activity across the modules in scope.
func (e *Engine) CompareModules(ctx context.Context, req Request) []model.ModuleComparison {
	modules, h := e.scoped(ctx, req)
	_, f := e.settings()
	return CompareModules(f.Fetch(ctx, modules, req.Start, req.End), e.CostModel(ctx), h)
}

// Engagement scores conversation depth.
func (e *Engine) Engagement(ctx context.Context, req Request) model.ConversationMetrics {
	return AnalyzeEngagement(e.Events(ctx, req))
}

// Quality grades response times.
func (e *Engine) Quality(ctx context.Context, req Request) model.ResponseQuality {
	return GradeResponses(e.Events(ctx, req))
}

// FAQ clusters the scoped questions. Events are clustered oldest first so
// the earliest phrasing seeds each cluster.
func (e *Engine) FAQ(ctx context.Context, req Request) []model.FaqItem {
	cfg, _ := e.settings()
	events := e.Events(ctx, req)
	SortOldestFirst(events)
	return faq.Cluster(events, faq.Options{
		Threshold:      cfg.FAQ.Threshold,
		MinOccurrences: cfg.FAQ.MinOccurrences,
		MaxSamples:     cfg.FAQ.MaxSamples,
		Limit:          limitOr(req.Limit, cfg.FAQ.Limit),
	})
}

// Period returns the request's period, defaulting to the configured number
// of days ending now.
func (e *Engine) Period(req Request) Period {
	cfg, _ := e.settings()
	end := e.clock()
	if req.End != nil {
		end = *req.End
	}
	start := end.AddDate(0, 0, -cfg.General.DefaultDays)
	if req.Start != nil {
		start = *req.Start
	}
	if !start.Before(end) {
		start = end.AddDate(0, 0, -cfg.General.DefaultDays)
	}
	return Period{Start: start, End: end}
}

// Dashboard compares the request period with the one before it and, when a
// monthly budget is configured, adds month-to-date budget figures.
func (e *Engine) Dashboard(ctx context.Context, req Request) model.DashboardSummary {
	cfg, f := e.settings()
	period := e.Period(req)
	prev := period.Previous()
	modules := e.Modules(ctx, req)
	cm := e.CostModel(ctx)

	current := f.Fetch(ctx, modules, &period.Start, &period.End)
	previous := f.Fetch(ctx, modules, &prev.Start, &prev.End)
	summary := ComposeDashboard(current, previous, cm, period, limitOr(req.Limit, 5))

	if cfg.Budget.MonthlyUSD != nil {
		now := e.clock()
		monthStart := MonthStart(now, cfg.Location())
		month := f.Fetch(ctx, modules, &monthStart, &now)
		b := ComputeBudget(TotalMessageCost(month, cm), *cfg.Budget.MonthlyUSD, now, cfg.Location())
		summary.Budget = &b
	}
	return summary
}

// TodayCost reports today's spend and its full-day projection.
func (e *Engine) TodayCost(ctx context.Context, req Request) model.TodayCost {
	cfg, f := e.settings()
	now := e.clock()
	loc := cfg.Location()
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	events := f.Fetch(ctx, e.Modules(ctx, req), &midnight, &now)
	return ComputeTodayCost(events, e.CostModel(ctx), now, loc)
}

// SortOldestFirst orders events by timestamp ascending, keeping fetch order for ties.
func SortOldestFirst(events []model.ChatMessageEvent) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp < events[j].Timestamp })
}

func limitOr(limit, fallback int) int {
	if limit > 0 {
		return limit
	}
	return fallback
}
