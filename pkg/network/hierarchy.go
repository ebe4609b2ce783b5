package network

import (
	"context"

	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/logger"
)

// hierarchyLevel is the tier structural nodes and edges live on,
// distinct from the seed (0) and the similarity rings (positive).
const hierarchyLevel = -1

// attachHierarchy overlays the seed's structural parent and children
// onto the resolution. Only containers have structure; for every other
// type the overlay is empty, which is a valid outcome, not an error.
// Hierarchy nodes enter the visited-set so similarity expansion never
// re-discovers them, but they never join the frontier: hierarchy and
// similarity are orthogonal relations over the seed, not chained.
func (r *resolution) attachHierarchy(ctx context.Context, seed *catalog.Record) {
	info := &HierarchyInfo{}
	r.result.Hierarchy = info

	if seed.Type != catalog.TypeContainer {
		return
	}

	parent, err := r.b.hierarchy.ParentOf(ctx, seed.ID)
	if err != nil {
		logger.Warn("failed to fetch parent relation", "err", err, "id", seed.ID)
		parent = nil
	}
	if parent != nil {
		if node, ok := r.resolveHierarchyNode(ctx, parent.ID); ok {
			node.IsParent = true
			r.addNode(node)
			r.addEdge(Edge{
				Source:       parent.ID,
				Target:       seed.ID,
				Weight:       1.0,
				Level:        hierarchyLevel,
				Type:         EdgeTypeHierarchy,
				Relationship: RelationshipParent,
			})
			info.HasParent = true
			info.ParentCount = 1
		}
	}

	children, err := r.b.hierarchy.ChildrenOf(ctx, seed.ID)
	if err != nil {
		logger.Warn("failed to fetch child relations", "err", err, "id", seed.ID)
		children = nil
	}
	for _, child := range children {
		node, ok := r.resolveHierarchyNode(ctx, child.ID)
		if !ok {
			continue
		}
		node.IsChild = true
		inherits := child.InheritsContext
		node.InheritsContext = &inherits
		r.addNode(node)
		info.ChildrenCount++
		r.addEdge(Edge{
			Source:       seed.ID,
			Target:       child.ID,
			Weight:       1.0,
			Level:        hierarchyLevel,
			Type:         EdgeTypeHierarchy,
			Relationship: RelationshipChild,
		})
	}
	info.HasChildren = info.ChildrenCount > 0

	emit(ctx, r.b.tracer, TraceEvent{
		Kind:     TraceEventHierarchyAttached,
		SourceID: seed.ID,
		Parents:  info.ParentCount,
		Children: info.ChildrenCount,
	})
}

// resolveHierarchyNode fetches one structural relative through the
// object resolver so hierarchy nodes carry the same property-bag shape
// as similarity nodes. Ids missing from the store are silently skipped;
// a partial hierarchy is acceptable.
func (r *resolution) resolveHierarchyNode(ctx context.Context, id string) (Node, bool) {
	rec, err := r.b.resolveObject(ctx, catalog.TypeContainer, id)
	if err != nil {
		logger.Debug("skipping unresolvable hierarchy node", "id", id, "err", err)
		return Node{}, false
	}
	return Node{
		ID:         rec.ID,
		Type:       rec.Type,
		Level:      hierarchyLevel,
		Properties: rec.Properties,
	}, true
}
