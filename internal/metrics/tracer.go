package metrics

import (
	"context"
	"strconv"

	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/network"
)

// Tracer maps resolver trace events onto the Prometheus collectors. It
// is stateless and safe for concurrent use; wire it into the builder
// with network.WithTracer.
type Tracer struct{}

// NewTracer creates a metrics-emitting resolver tracer.
func NewTracer() *Tracer {
	return &Tracer{}
}

func (t *Tracer) Emit(ctx context.Context, event network.TraceEvent) {
	switch event.Kind {
	case network.TraceEventSeedResolved:
		if event.Error != "" {
			ResolutionsTotal.WithLabelValues(event.SourceType, "not_found").Inc()
		}
	case network.TraceEventExpansion:
		if event.Error != "" {
			ExpansionFailures.Inc()
		}
	case network.TraceEventLevelComplete:
		LevelNodesAdmitted.WithLabelValues(strconv.Itoa(event.Level)).Add(float64(event.Admitted))
	case network.TraceEventSummary:
		if event.Fallback {
			SummaryFallbacks.Inc()
		}
	case network.TraceEventResolutionComplete:
		status := "ok"
		if event.Truncated {
			status = "truncated"
		}
		ResolutionsTotal.WithLabelValues(event.SourceType, status).Inc()
		ResolutionDuration.WithLabelValues(event.SourceType).Observe(float64(event.DurationMs) / 1000)
		ResolutionNodes.Observe(float64(event.Nodes))
	}
}
