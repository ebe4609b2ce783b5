package network

import (
	"context"
	"testing"

	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog/base"
)

// Resolution against the real in-memory catalog: embeddings are unit
// vectors at known angles, so cosine distances (and thus similarities)
// are exact 3-4-5 values.
func TestBuild_AgainstMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := base.NewStore()

	create := func(title string, embedding []float32) string {
		rec, err := store.CreateObject(ctx, catalog.CreateObjectParams{
			Type:       catalog.TypeTask,
			Properties: catalog.Properties{Title: title},
		})
		if err != nil {
			t.Fatalf("CreateObject(%s) error = %v", title, err)
		}
		if err := store.SetEmbedding(ctx, rec.ID, embedding); err != nil {
			t.Fatalf("SetEmbedding(%s) error = %v", title, err)
		}
		return rec.ID
	}

	// cos(seed, close) = 1.0, cos(seed, mid) = 0.8, cos(seed, far) = 0.6.
	seedID := create("seed", []float32{1, 0})
	closeID := create("close", []float32{1, 0})
	midID := create("mid", []float32{0.8, 0.6})
	farID := create("far", []float32{0.6, 0.8})

	b := NewBuilder(store, store)
	result, err := b.Build(ctx, Params{
		SourceType: catalog.TypeTask,
		SourceID:   seedID,
		Depth:      1,
		Thresholds: map[int]float64{1: 0.75},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got := make(map[string]bool, len(result.Nodes))
	for _, n := range result.Nodes {
		got[n.ID] = true
	}
	if !got[closeID] || !got[midID] {
		t.Fatalf("nodes = %v, want close and mid admitted", nodeIDs(result))
	}
	if got[farID] {
		t.Fatalf("far neighbor admitted at similarity 0.6 against threshold 0.75")
	}

	c := nodeByID(t, result, closeID)
	if c.Similarity == nil || *c.Similarity < 0.999 {
		t.Fatalf("identical embedding similarity = %v, want ~1.0", c.Similarity)
	}
	m := nodeByID(t, result, midID)
	if m.Similarity == nil || *m.Similarity < 0.79 || *m.Similarity > 0.81 {
		t.Fatalf("mid similarity = %v, want ~0.8", m.Similarity)
	}
}

// A record without an embedding has no neighbors yet; resolving it still
// succeeds with an empty level.
func TestBuild_UnembeddedSeed(t *testing.T) {
	ctx := context.Background()
	store := base.NewStore()
	rec, err := store.CreateObject(ctx, catalog.CreateObjectParams{
		Type:       catalog.TypeMessage,
		Properties: catalog.Properties{Title: "pending embed"},
	})
	if err != nil {
		t.Fatalf("CreateObject() error = %v", err)
	}

	b := NewBuilder(store, store)
	result, err := b.Build(ctx, Params{
		SourceType: catalog.TypeMessage,
		SourceID:   rec.ID,
		Depth:      2,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(result.Nodes) != 1 || result.Levels[1].NodeCount != 0 {
		t.Fatalf("result = %d nodes, levels %v; want lone seed with an empty level", len(result.Nodes), result.Levels)
	}
}
