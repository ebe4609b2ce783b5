package network

import "context"

type TraceEventKind string

const (
	TraceEventSeedResolved       TraceEventKind = "seed_resolved"
	TraceEventHierarchyAttached  TraceEventKind = "hierarchy_attached"
	TraceEventExpansion          TraceEventKind = "expansion"
	TraceEventLevelComplete      TraceEventKind = "level_complete"
	TraceEventSummary            TraceEventKind = "summary"
	TraceEventTruncated          TraceEventKind = "truncated"
	TraceEventResolutionComplete TraceEventKind = "resolution_complete"
)

// TraceEvent is an extensible event envelope for resolution tracing.
// Additive changes to this struct are backward compatible for implementers.
type TraceEvent struct {
	Kind TraceEventKind

	SourceID   string
	SourceType string
	NodeID     string
	Level      int
	Threshold  float64

	Candidates int
	Admitted   int
	Nodes      int
	Edges      int
	Parents    int
	Children   int

	Fallback   bool
	Truncated  bool
	DurationMs int64
	Error      string
}

// Tracer is a sink for resolution tracing events.
//
// Implementers can forward events to logs, telemetry, or custom
// post-processing pipelines. A nil Tracer is valid and free.
type Tracer interface {
	Emit(ctx context.Context, event TraceEvent)
}

// MultiTracer fan-outs trace events to multiple tracers.
type MultiTracer []Tracer

func (m MultiTracer) Emit(ctx context.Context, event TraceEvent) {
	for _, t := range m {
		if t == nil {
			continue
		}
		t.Emit(ctx, event)
	}
}

func emit(ctx context.Context, t Tracer, event TraceEvent) {
	if t == nil {
		return
	}
	t.Emit(ctx, event)
}
