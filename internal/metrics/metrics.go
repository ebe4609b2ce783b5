// Package metrics exposes the service's Prometheus collectors and a
// network.Tracer that feeds resolver events into them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Resolver metrics.
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideagraph_resolutions_total",
			Help: "Total number of network resolutions",
		},
		[]string{"type", "status"}, // status: ok/not_found/error/truncated
	)

	ResolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ideagraph_resolution_duration_seconds",
			Help:    "Network resolution duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"type"},
	)

	ResolutionNodes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ideagraph_resolution_nodes",
			Help:    "Nodes per resolved network",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8), // 1 to 128
		},
	)

	LevelNodesAdmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideagraph_level_nodes_admitted_total",
			Help: "Nodes admitted per similarity level",
		},
		[]string{"level"},
	)

	ExpansionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ideagraph_expansion_failures_total",
			Help: "Nearest-neighbor expansions that degraded to an empty branch",
		},
	)

	SummaryFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ideagraph_summary_fallbacks_total",
			Help: "Level summaries that fell back to the deterministic text",
		},
	)

	// Embedding worker metrics.
	EmbedJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideagraph_embed_jobs_total",
			Help: "Embedding jobs consumed from the queue",
		},
		[]string{"status"}, // status: ok/retry/dlq/busy
	)

	EmbedDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ideagraph_embed_duration_seconds",
			Help:    "Time to compose, embed and store one record",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~1min
		},
	)

	// Catalog API metrics.
	ObjectWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideagraph_object_writes_total",
			Help: "Catalog mutations by operation",
		},
		[]string{"operation"}, // operation: create/update/delete/content
	)
)
