package base

import (
	"context"
	"errors"
	"testing"

	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
)

func mustCreate(t *testing.T, s *Store, params catalog.CreateObjectParams) *catalog.Record {
	t.Helper()
	rec, err := s.CreateObject(context.Background(), params)
	if err != nil {
		t.Fatalf("failed to create object: %v", err)
	}
	return rec
}

func TestStore_CreateFetchUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	created := mustCreate(t, s, catalog.CreateObjectParams{
		Type:       catalog.TypeTask,
		Properties: catalog.Properties{Title: "write report", Tags: []string{"q3"}},
	})
	if created.ID == "" {
		t.Fatal("expected non-empty public id")
	}

	fetched, err := s.FetchByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if fetched.Properties.Title != "write report" {
		t.Fatalf("unexpected title: %q", fetched.Properties.Title)
	}

	newTitle := "write final report"
	updated, err := s.UpdateObject(ctx, created.ID, catalog.UpdateObjectParams{Title: &newTitle})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.Properties.Title != newTitle {
		t.Fatalf("expected updated title, got %q", updated.Properties.Title)
	}
	if len(updated.Properties.Tags) != 1 || updated.Properties.Tags[0] != "q3" {
		t.Fatalf("tags should be untouched, got %v", updated.Properties.Tags)
	}

	if _, err := s.DeleteObject(ctx, created.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := s.FetchByID(ctx, created.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStore_UnknownIDs(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if _, err := s.FetchByID(ctx, "missing"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	title := "x"
	if _, err := s.UpdateObject(ctx, "missing", catalog.UpdateObjectParams{Title: &title}); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	parent := "missing"
	_, err := s.CreateObject(ctx, catalog.CreateObjectParams{
		Type:       catalog.TypeContainer,
		Properties: catalog.Properties{Title: "orphan"},
		ParentID:   &parent,
	})
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown parent, got %v", err)
	}
}

func TestStore_Hierarchy(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	parent := mustCreate(t, s, catalog.CreateObjectParams{
		Type:       catalog.TypeContainer,
		Properties: catalog.Properties{Title: "platform"},
	})
	childA := mustCreate(t, s, catalog.CreateObjectParams{
		Type:            catalog.TypeContainer,
		Properties:      catalog.Properties{Title: "auth service"},
		ParentID:        &parent.ID,
		InheritsContext: true,
	})
	childB := mustCreate(t, s, catalog.CreateObjectParams{
		Type:       catalog.TypeContainer,
		Properties: catalog.Properties{Title: "billing service"},
		ParentID:   &parent.ID,
	})

	rel, err := s.ParentOf(ctx, childA.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if rel == nil || rel.ID != parent.ID {
		t.Fatalf("unexpected parent relation: %+v", rel)
	}
	if !rel.InheritsContext {
		t.Fatal("expected inherits_context to carry over")
	}

	rel, err = s.ParentOf(ctx, parent.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if rel != nil {
		t.Fatalf("root container should have no parent, got %+v", rel)
	}

	children, err := s.ChildrenOf(ctx, parent.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	if children[0].ID != childA.ID || children[1].ID != childB.ID {
		t.Fatalf("expected oldest-first order, got %v", children)
	}

	// Deleting the parent clears the children's parent link.
	if _, err := s.DeleteObject(ctx, parent.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	rel, err = s.ParentOf(ctx, childA.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if rel != nil {
		t.Fatalf("expected cleared parent after delete, got %+v", rel)
	}
}

func TestStore_NearestNeighbors(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	seed := mustCreate(t, s, catalog.CreateObjectParams{Type: catalog.TypeTask, Properties: catalog.Properties{Title: "seed"}})
	close1 := mustCreate(t, s, catalog.CreateObjectParams{Type: catalog.TypeTask, Properties: catalog.Properties{Title: "close"}})
	far := mustCreate(t, s, catalog.CreateObjectParams{Type: catalog.TypeTask, Properties: catalog.Properties{Title: "far"}})
	otherType := mustCreate(t, s, catalog.CreateObjectParams{Type: catalog.TypeMessage, Properties: catalog.Properties{Title: "msg"}})
	unembedded := mustCreate(t, s, catalog.CreateObjectParams{Type: catalog.TypeTask, Properties: catalog.Properties{Title: "pending"}})

	embed := func(id string, v []float32) {
		if err := s.SetEmbedding(ctx, id, v); err != nil {
			t.Fatalf("failed to set embedding for %s: %v", id, err)
		}
	}
	embed(seed.ID, []float32{1, 0})
	embed(close1.ID, []float32{0.9, 0.1})
	embed(far.ID, []float32{0, 1})
	embed(otherType.ID, []float32{1, 0})
	_ = unembedded

	neighbors, err := s.NearestNeighbors(ctx, catalog.TypeTask, seed.ID, 10)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(neighbors) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(neighbors))
	}
	if neighbors[0].ID != close1.ID || neighbors[1].ID != far.ID {
		t.Fatalf("expected distance ordering close,far; got %s,%s", neighbors[0].ID, neighbors[1].ID)
	}
	if neighbors[0].Distance >= neighbors[1].Distance {
		t.Fatalf("expected increasing distances, got %f >= %f", neighbors[0].Distance, neighbors[1].Distance)
	}
	for _, n := range neighbors {
		if n.ID == seed.ID {
			t.Fatal("seed must never appear among its own neighbors")
		}
		if n.ID == otherType.ID {
			t.Fatal("type filter leaked a different object type")
		}
	}

	// Seeds without an embedding yield no neighbors, not an error.
	neighbors, err = s.NearestNeighbors(ctx, catalog.TypeTask, unembedded.ID, 10)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(neighbors) != 0 {
		t.Fatalf("expected no neighbors for unembedded seed, got %d", len(neighbors))
	}
}

func TestStore_ListObjects(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	for i := 0; i < 3; i++ {
		mustCreate(t, s, catalog.CreateObjectParams{Type: catalog.TypeTask, Properties: catalog.Properties{Title: "t"}})
	}
	mustCreate(t, s, catalog.CreateObjectParams{Type: catalog.TypeFile, Properties: catalog.Properties{Title: "f"}})

	tasks, err := s.ListObjects(ctx, catalog.TypeTask, 10, 0)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	all, err := s.ListObjects(ctx, "", 10, 0)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 records, got %d", len(all))
	}

	page, err := s.ListObjects(ctx, "", 2, 3)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("expected 1 record on the last page, got %d", len(page))
	}
}
