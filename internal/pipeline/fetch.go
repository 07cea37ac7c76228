package pipeline

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/edumetrics/internal/metrics"
	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/source"
)

// DefaultMaxConcurrency bounds module reads when no limit is configured.
const DefaultMaxConcurrency = 8

// Fetcher fans event reads out across modules.
type Fetcher struct {
	store          source.EventStore
	maxConcurrency int
	perModuleLimit int
}

// NewFetcher creates a fetcher. Non-positive limits fall back to defaults;
// perModuleLimit 0 leaves reads uncapped.
func NewFetcher(store source.EventStore, maxConcurrency, perModuleLimit int) *Fetcher {
	if maxConcurrency < 1 {
		maxConcurrency = DefaultMaxConcurrency
	}
	if perModuleLimit < 0 {
		perModuleLimit = 0
	}
	return &Fetcher{store: store, maxConcurrency: maxConcurrency, perModuleLimit: perModuleLimit}
}

// Fetch reads events for every module concurrently and concatenates them in
// module order. A failed module read is logged and contributes nothing. An
// empty module set returns nil without touching the store.
func (f *Fetcher) Fetch(ctx context.Context, moduleIDs []int64, start, end *time.Time) []model.ChatMessageEvent {
	if len(moduleIDs) == 0 {
		return nil
	}
	began := time.Now()
	defer func() { metrics.FetchDuration.Observe(time.Since(began).Seconds()) }()

	results := make([][]model.ChatMessageEvent, len(moduleIDs))

	var g errgroup.Group
	g.SetLimit(f.maxConcurrency)
	for i, id := range moduleIDs {
		g.Go(func() error {
			events, err := f.store.QueryEvents(ctx, model.EventQuery{
				ModuleID: id,
				Start:    start,
				End:      end,
				Limit:    f.perModuleLimit,
			})
			if err != nil {
				metrics.FetchFailures.Inc()
				log.WithError(err).WithField("module_id", id).Warn("event fetch failed; treating module as empty")
				return nil
			}
			results[i] = events
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	merged := make([]model.ChatMessageEvent, 0, total)
	for _, r := range results {
		merged = append(merged, r...)
	}
	metrics.FetchedEvents.Add(float64(total))
	return merged
}
