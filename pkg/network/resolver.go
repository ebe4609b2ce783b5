package network

import (
	"context"
	"sync"

	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"

	"golang.org/x/sync/errgroup"
)

// resolution is the mutable state of one Build call. The mutex guards
// nodes/edges/visited and the per-level admission slices; it is held
// only for in-memory writes, never across store or gateway calls.
type resolution struct {
	b      *Builder
	params Params

	mu      sync.Mutex
	visited map[string]struct{}
	result  *Result
}

// levelState collects what one similarity level admits. Levels run one
// at a time, so a single instance is shared by that level's workers.
type levelState struct {
	level     int
	threshold float64

	admittedIDs   []string
	admittedNodes []Node
	next          []string
}

func newResolution(b *Builder, params Params, seed *catalog.Record) *resolution {
	source := Node{
		ID:         seed.ID,
		Type:       seed.Type,
		Level:      0,
		Properties: seed.Properties,
		IsSource:   true,
	}

	return &resolution{
		b:      b,
		params: params,
		visited: map[string]struct{}{
			seed.ID: {},
		},
		result: &Result{
			SourceID:         seed.ID,
			SourceType:       seed.Type,
			Depth:            params.Depth,
			Nodes:            []Node{source},
			Edges:            []Edge{},
			Levels:           make(map[int]LevelInfo, params.Depth),
			IncludeHierarchy: params.IncludeHierarchy,
		},
	}
}

// traverse runs the level-bounded breadth-first expansion. Levels are
// sequential; within a level every frontier node expands concurrently.
func (r *resolution) traverse(ctx context.Context) {
	frontier := []string{r.result.SourceID}

	for level := 1; level <= r.params.Depth; level++ {
		ls := &levelState{
			level:     level,
			threshold: r.params.Thresholds[level],
		}
		exclude := r.snapshotVisited()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(len(frontier), r.b.maxWorkers))
		for _, nodeID := range frontier {
			g.Go(func() error {
				neighbors := r.expand(gctx, nodeID, ls.threshold, exclude)
				r.admit(ls, nodeID, neighbors)
				return nil
			})
		}
		// Workers never return errors; a failed expansion is an empty
		// result for that branch.
		_ = g.Wait()

		truncated := ctx.Err() != nil

		info := LevelInfo{
			Level:     level,
			Threshold: ls.threshold,
			NodeCount: len(ls.admittedIDs),
			ObjectIDs: ls.admittedIDs,
		}
		if info.ObjectIDs == nil {
			info.ObjectIDs = []string{}
		}
		if r.params.Summarize {
			info.Summary = r.summarizeLevel(ctx, level, ls.admittedNodes)
		}
		r.result.Levels[level] = info

		emit(ctx, r.b.tracer, TraceEvent{
			Kind:      TraceEventLevelComplete,
			SourceID:  r.result.SourceID,
			Level:     level,
			Threshold: ls.threshold,
			Admitted:  len(ls.admittedIDs),
		})

		if truncated {
			r.result.Truncated = true
			emit(ctx, r.b.tracer, TraceEvent{
				Kind:     TraceEventTruncated,
				SourceID: r.result.SourceID,
				Level:    level,
			})
			return
		}
		if len(ls.next) == 0 {
			return
		}
		frontier = ls.next
	}
}

// admit serializes node admission. The visited-set is the sole
// mechanism preventing cycles and duplicate nodes: a neighbor already
// admitted this level keeps its extra edge but never a second Node.
func (r *resolution) admit(ls *levelState, from string, neighbors []scoredNeighbor) {
	if len(neighbors) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range neighbors {
		if _, seen := r.visited[n.ID]; !seen {
			similarity := n.Similarity
			node := Node{
				ID:         n.ID,
				Type:       r.params.SourceType,
				Level:      ls.level,
				Properties: n.Properties,
				Similarity: &similarity,
			}
			r.visited[n.ID] = struct{}{}
			r.result.Nodes = append(r.result.Nodes, node)
			ls.admittedIDs = append(ls.admittedIDs, n.ID)
			ls.admittedNodes = append(ls.admittedNodes, node)
			ls.next = append(ls.next, n.ID)
		}

		r.result.Edges = append(r.result.Edges, Edge{
			Source: from,
			Target: n.ID,
			Weight: n.Similarity,
			Level:  ls.level,
			Type:   EdgeTypeSimilarity,
		})
	}
}

func (r *resolution) snapshotVisited() map[string]struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[string]struct{}, len(r.visited))
	for id := range r.visited {
		snapshot[id] = struct{}{}
	}
	return snapshot
}

// addNode records a node discovered outside similarity expansion
// (hierarchy overlay). Runs before traverse, but takes the lock anyway
// to keep the invariant in one place.
func (r *resolution) addNode(node Node) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, seen := r.visited[node.ID]; seen {
		return false
	}
	r.visited[node.ID] = struct{}{}
	r.result.Nodes = append(r.result.Nodes, node)
	return true
}

func (r *resolution) addEdge(edge Edge) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.result.Edges = append(r.result.Edges, edge)
}
