package network

import (
	"context"

	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/logger"
)

// overFetchMargin is added to every nearest-neighbor query limit to
// compensate for candidates lost to the exclude-set and threshold
// filters below.
const overFetchMargin = 20

// scoredNeighbor is one admitted expansion candidate.
type scoredNeighbor struct {
	ID         string
	Similarity float64
	Properties catalog.Properties
}

// expand queries the store for same-type neighbors of one frontier node
// and filters them down to at most MaxResultsPerLevel admissible
// candidates. Store failures degrade to an empty result: the branch
// terminates, the traversal does not.
//
// The similarity formula 1-distance assumes the store's metric stays
// within [0,2] (cosine distance does); scores are clamped at zero so a
// pathological metric cannot produce negative weights.
func (r *resolution) expand(ctx context.Context, nodeID string, threshold float64, exclude map[string]struct{}) []scoredNeighbor {
	limit := r.params.MaxResultsPerLevel

	candidates, err := r.b.store.NearestNeighbors(ctx, r.params.SourceType, nodeID, limit+overFetchMargin)
	if err != nil {
		logger.Warn(
			"neighbor expansion failed, terminating branch",
			"err", err,
			"node", nodeID,
			"type", r.params.SourceType,
		)
		emit(ctx, r.b.tracer, TraceEvent{
			Kind:     TraceEventExpansion,
			SourceID: r.result.SourceID,
			NodeID:   nodeID,
			Error:    err.Error(),
		})
		return nil
	}

	matches := make([]scoredNeighbor, 0, limit)
	for _, c := range candidates {
		if len(matches) >= limit {
			break
		}
		if c.ID == nodeID {
			continue
		}
		if _, skip := exclude[c.ID]; skip {
			continue
		}

		similarity := 1 - c.Distance
		if similarity < 0 {
			similarity = 0
		}
		if similarity < threshold {
			continue
		}

		matches = append(matches, scoredNeighbor{
			ID:         c.ID,
			Similarity: similarity,
			Properties: c.Properties,
		})
	}

	emit(ctx, r.b.tracer, TraceEvent{
		Kind:       TraceEventExpansion,
		SourceID:   r.result.SourceID,
		NodeID:     nodeID,
		Candidates: len(candidates),
		Admitted:   len(matches),
	})
	return matches
}
