// Package metrics holds the Prometheus collectors shared by the engine and the daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchFailures counts module sub-fetches that failed and were treated as empty.
	FetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edumetrics_fetch_failures_total",
		Help: "Module event fetches that failed and contributed no events",
	})

	// FetchDuration observes one full fan-out across a module set.
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "edumetrics_fetch_duration_seconds",
		Help:    "Duration of a module fan-out fetch",
		Buckets: prometheus.DefBuckets,
	})

	// FetchedEvents counts events returned by the event store.
	FetchedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edumetrics_fetched_events_total",
		Help: "Events read from the event store",
	})

	// DegradedLookups counts reference-data reads that failed, labeled by dimension.
	DegradedLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edumetrics_degraded_lookups_total",
		Help: "Reference data lookups that failed and were treated as empty",
	}, []string{"dimension"})

	// RequestsTotal counts API requests by route and status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edumetrics_http_requests_total",
		Help: "Analytics API requests",
	}, []string{"route", "status"})

	// RequestDuration observes API latency by route.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "edumetrics_http_request_duration_seconds",
		Help:    "Analytics API request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// CacheLookups counts report cache hits and misses.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edumetrics_cache_lookups_total",
		Help: "Report cache lookups by result",
	}, []string{"result"})
)
