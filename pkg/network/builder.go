package network

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/logger"
)

// SummaryClient produces a short prose summary for a digest of related
// objects. agent.LevelSummarizer implements it; tests use fakes.
type SummaryClient interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Builder resolves semantic networks. It is safe for concurrent use;
// all per-call state lives in the resolution, never on the Builder.
type Builder struct {
	store     catalog.ObjectStore
	hierarchy catalog.HierarchyStore

	summarizer       SummaryClient
	tracer           Tracer
	maxWorkers       int
	digestTokenLimit int
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithSummarizer wires the agent gateway used for level summaries. A
// nil summarizer disables agent calls; levels fall back to the
// deterministic summary text.
func WithSummarizer(s SummaryClient) BuilderOption {
	return func(b *Builder) {
		b.summarizer = s
	}
}

// WithTracer wires a sink for resolution trace events.
func WithTracer(t Tracer) BuilderOption {
	return func(b *Builder) {
		b.tracer = t
	}
}

// WithMaxWorkers bounds concurrent expansions within one level.
func WithMaxWorkers(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.maxWorkers = n
		}
	}
}

// WithDigestTokenLimit caps the token length of the digest handed to
// the summarizer.
func WithDigestTokenLimit(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.digestTokenLimit = n
		}
	}
}

// NewBuilder creates a Builder over the given stores.
func NewBuilder(store catalog.ObjectStore, hierarchy catalog.HierarchyStore, opts ...BuilderOption) *Builder {
	b := &Builder{
		store:     store,
		hierarchy: hierarchy,

		maxWorkers:       DefaultMaxWorkers,
		digestTokenLimit: defaultDigestTokenLimit,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Build resolves the semantic network around params.SourceID. The only
// fatal failures are an unknown/mismatched seed (ErrObjectNotFound) and
// an unreachable store at seed fetch; everything past the seed degrades
// to partial results. An expired context mid-traversal yields the nodes
// and edges admitted so far with Truncated set, not an error.
func (b *Builder) Build(ctx context.Context, params Params) (*Result, error) {
	params = params.normalized()
	start := time.Now()

	seed, err := b.resolveObject(ctx, params.SourceType, params.SourceID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			emit(ctx, b.tracer, TraceEvent{
				Kind:       TraceEventSeedResolved,
				SourceID:   params.SourceID,
				SourceType: string(params.SourceType),
				Error:      err.Error(),
			})
			return nil, fmt.Errorf("%w: %s %q", ErrObjectNotFound, params.SourceType, params.SourceID)
		}
		return nil, fmt.Errorf("failed to fetch source object %q: %w", params.SourceID, err)
	}
	emit(ctx, b.tracer, TraceEvent{
		Kind:       TraceEventSeedResolved,
		SourceID:   params.SourceID,
		SourceType: string(params.SourceType),
	})

	r := newResolution(b, params, seed)

	if params.IncludeHierarchy {
		r.attachHierarchy(ctx, seed)
	}

	r.traverse(ctx)

	result := r.result
	emit(ctx, b.tracer, TraceEvent{
		Kind:       TraceEventResolutionComplete,
		SourceID:   params.SourceID,
		SourceType: string(params.SourceType),
		Nodes:      len(result.Nodes),
		Edges:      len(result.Edges),
		Truncated:  result.Truncated,
		DurationMs: time.Since(start).Milliseconds(),
	})
	return result, nil
}

// resolveObject fetches a record and checks its type. A type mismatch
// is folded into catalog.ErrNotFound so callers have a single absent
// case to handle; the mismatch itself is only worth a warning.
func (b *Builder) resolveObject(ctx context.Context, expectedType catalog.ObjectType, id string) (*catalog.Record, error) {
	rec, err := b.store.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Type != expectedType {
		logger.Warn(
			"object type mismatch, treating as not found",
			"id", id,
			"want", expectedType,
			"got", rec.Type,
		)
		return nil, catalog.ErrNotFound
	}
	return rec, nil
}
