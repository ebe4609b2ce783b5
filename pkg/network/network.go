// Package network resolves the semantic neighborhood of a catalog
// record: a level-bounded breadth-first expansion over nearest-neighbor
// similarity, with an optional structural parent/child overlay and
// best-effort level summaries.
package network

import (
	"errors"

	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
)

// ErrObjectNotFound is returned by Build when the seed object does not
// exist or carries a different type than requested.
var ErrObjectNotFound = errors.New("object not found")

const (
	// MinDepth and MaxDepth bound the traversal depth; requests outside
	// the range are clamped, not rejected.
	MinDepth = 1
	MaxDepth = 3

	// DefaultMaxResultsPerLevel caps admissions per expansion call.
	DefaultMaxResultsPerLevel = 10

	// DefaultMaxWorkers bounds concurrent expansions within one level.
	DefaultMaxWorkers = 8
)

// DefaultThresholds returns the per-level similarity cutoffs used when
// the caller does not override them. Thresholds decrease with level:
// tight inner ring, exploratory outer rings.
func DefaultThresholds() map[int]float64 {
	return map[int]float64{
		1: 0.8,
		2: 0.7,
		3: 0.6,
	}
}

// EdgeType distinguishes how an edge was discovered.
type EdgeType string

const (
	EdgeTypeSimilarity EdgeType = "similarity"
	EdgeTypeHierarchy  EdgeType = "hierarchy"
)

// Relationship qualifies hierarchy edges.
type Relationship string

const (
	RelationshipParent Relationship = "parent"
	RelationshipChild  Relationship = "child"
)

// Node is one resolved object. Level 0 is the seed, -1 the hierarchy
// tier, 1..depth the similarity tiers. Properties are a snapshot copied
// at resolution time and may go stale. At most one Node exists per ID
// within a resolution.
type Node struct {
	ID              string             `json:"id"`
	Type            catalog.ObjectType `json:"type"`
	Level           int                `json:"level"`
	Properties      catalog.Properties `json:"properties"`
	Similarity      *float64           `json:"similarity,omitempty"`
	IsSource        bool               `json:"isSource,omitempty"`
	IsParent        bool               `json:"isParent,omitempty"`
	IsChild         bool               `json:"isChild,omitempty"`
	InheritsContext *bool              `json:"inheritsContext,omitempty"`
}

// Edge connects two nodes. Weight is the similarity score for
// similarity edges and exactly 1.0 for structural edges. Edges are not
// deduplicated: a node reached from several frontier parents in the
// same level keeps all its edges.
type Edge struct {
	Source       string       `json:"source"`
	Target       string       `json:"target"`
	Weight       float64      `json:"weight"`
	Level        int          `json:"level"`
	Type         EdgeType     `json:"type"`
	Relationship Relationship `json:"relationship,omitempty"`
}

// LevelInfo summarizes one executed similarity level.
type LevelInfo struct {
	Level     int      `json:"level"`
	Threshold float64  `json:"threshold"`
	NodeCount int      `json:"nodeCount"`
	ObjectIDs []string `json:"objectIds"`
	Summary   string   `json:"summary,omitempty"`
}

// HierarchyInfo carries the structural overlay counts when the caller
// asked for hierarchy.
type HierarchyInfo struct {
	HasParent     bool `json:"hasParent"`
	HasChildren   bool `json:"hasChildren"`
	ParentCount   int  `json:"parentCount"`
	ChildrenCount int  `json:"childrenCount"`
}

// Result is the outcome of one resolution. It is created fresh per
// call, handed to the caller and discarded; nothing here is persisted.
type Result struct {
	SourceID         string             `json:"sourceId"`
	SourceType       catalog.ObjectType `json:"sourceType"`
	Depth            int                `json:"depth"`
	Nodes            []Node             `json:"nodes"`
	Edges            []Edge             `json:"edges"`
	Levels           map[int]LevelInfo  `json:"levels"`
	IncludeHierarchy bool               `json:"includeHierarchy"`
	Hierarchy        *HierarchyInfo     `json:"hierarchy,omitempty"`
	Truncated        bool               `json:"truncated"`
}

// Params describes one resolution request. Zero values fall back to
// the package defaults; Depth is clamped to [MinDepth, MaxDepth] and a
// partial Thresholds override falls back per level to the defaults.
type Params struct {
	SourceType         catalog.ObjectType
	SourceID           string
	Depth              int
	Thresholds         map[int]float64
	MaxResultsPerLevel int
	IncludeHierarchy   bool
	Summarize          bool
}

func (p Params) normalized() Params {
	if p.Depth < MinDepth {
		p.Depth = MinDepth
	}
	if p.Depth > MaxDepth {
		p.Depth = MaxDepth
	}
	if p.MaxResultsPerLevel <= 0 {
		p.MaxResultsPerLevel = DefaultMaxResultsPerLevel
	}

	defaults := DefaultThresholds()
	merged := make(map[int]float64, MaxDepth)
	for level := MinDepth; level <= MaxDepth; level++ {
		if v, ok := p.Thresholds[level]; ok {
			merged[level] = v
		} else {
			merged[level] = defaults[level]
		}
	}
	p.Thresholds = merged

	return p
}
