package base

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
)

type entry struct {
	record    catalog.Record
	embedding []float32
	seq       int64
}

// Store is an in-process catalog keeping records and embeddings in maps,
// with cosine distance computed on the fly. It backs tests and
// single-node setups that run without Postgres; behavior mirrors the
// pgx store, including ON DELETE SET NULL parent semantics.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	nextSeq int64
}

// NewStore creates an empty in-memory catalog.
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

func (s *Store) CreateObject(ctx context.Context, params catalog.CreateObjectParams) (*catalog.Record, error) {
	publicID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate public id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var parentID *string
	if params.ParentID != nil && *params.ParentID != "" {
		if _, ok := s.entries[*params.ParentID]; !ok {
			return nil, fmt.Errorf("parent %s: %w", *params.ParentID, catalog.ErrNotFound)
		}
		id := *params.ParentID
		parentID = &id
	}

	now := time.Now()
	s.nextSeq++
	s.entries[publicID] = &entry{
		record: catalog.Record{
			ID:              publicID,
			Type:            params.Type,
			Properties:      cloneProperties(params.Properties),
			ParentID:        parentID,
			InheritsContext: params.InheritsContext,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		seq: s.nextSeq,
	}

	rec := cloneRecord(s.entries[publicID].record)
	return &rec, nil
}

func (s *Store) FetchByID(ctx context.Context, id string) (*catalog.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	rec := cloneRecord(e.record)
	return &rec, nil
}

func (s *Store) ListObjects(ctx context.Context, objectType catalog.ObjectType, limit, offset int) ([]catalog.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*entry
	for _, e := range s.entries {
		if objectType != "" && e.record.Type != objectType {
			continue
		}
		matched = append(matched, e)
	}
	// Newest first, like the SQL store.
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}

	records := make([]catalog.Record, len(matched))
	for i, e := range matched {
		records[i] = cloneRecord(e.record)
	}
	return records, nil
}

func (s *Store) UpdateObject(ctx context.Context, id string, params catalog.UpdateObjectParams) (*catalog.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}

	if params.Title != nil {
		e.record.Properties.Title = *params.Title
	}
	if params.Description != nil {
		e.record.Properties.Description = *params.Description
	}
	if params.Tags != nil {
		e.record.Properties.Tags = append([]string(nil), (*params.Tags)...)
	}
	if params.Extra != nil {
		e.record.Properties.Extra = cloneExtra(*params.Extra)
	}
	if params.InheritsContext != nil {
		e.record.InheritsContext = *params.InheritsContext
	}
	if params.ParentID != nil {
		if *params.ParentID == "" {
			e.record.ParentID = nil
		} else {
			if _, ok := s.entries[*params.ParentID]; !ok {
				return nil, fmt.Errorf("parent %s: %w", *params.ParentID, catalog.ErrNotFound)
			}
			parent := *params.ParentID
			e.record.ParentID = &parent
		}
	}
	e.record.UpdatedAt = time.Now()

	rec := cloneRecord(e.record)
	return &rec, nil
}

func (s *Store) DeleteObject(ctx context.Context, id string) (*catalog.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	delete(s.entries, id)
	for _, other := range s.entries {
		if other.record.ParentID != nil && *other.record.ParentID == id {
			other.record.ParentID = nil
		}
	}

	rec := cloneRecord(e.record)
	return &rec, nil
}

func (s *Store) SetEmbedding(ctx context.Context, id string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return catalog.ErrNotFound
	}
	e.embedding = append([]float32(nil), embedding...)
	e.record.HasEmbedding = true
	e.record.UpdatedAt = time.Now()
	return nil
}

func (s *Store) SetContent(ctx context.Context, id string, key string, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return catalog.ErrNotFound
	}
	e.record.ContentKey = key
	e.record.ContentType = contentType
	e.record.UpdatedAt = time.Now()
	return nil
}

// NearestNeighbors ranks same-type records by cosine distance to the
// seed's embedding. Seeds that are missing or not yet embedded yield an
// empty result.
func (s *Store) NearestNeighbors(ctx context.Context, objectType catalog.ObjectType, seedID string, limit int) ([]catalog.Neighbor, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seed, ok := s.entries[seedID]
	if !ok || seed.embedding == nil {
		return nil, nil
	}

	var neighbors []catalog.Neighbor
	for id, e := range s.entries {
		if id == seedID || e.record.Type != objectType || e.embedding == nil {
			continue
		}
		neighbors = append(neighbors, catalog.Neighbor{
			ID:         id,
			Distance:   1 - cosineSimilarity(seed.embedding, e.embedding),
			Properties: cloneProperties(e.record.Properties),
		})
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].Distance < neighbors[j].Distance })

	if len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return neighbors, nil
}

func (s *Store) ParentOf(ctx context.Context, id string) (*catalog.Relation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok || e.record.ParentID == nil {
		return nil, nil
	}
	return &catalog.Relation{ID: *e.record.ParentID, InheritsContext: e.record.InheritsContext}, nil
}

func (s *Store) ChildrenOf(ctx context.Context, id string) ([]catalog.Relation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var children []*entry
	for _, e := range s.entries {
		if e.record.ParentID != nil && *e.record.ParentID == id {
			children = append(children, e)
		}
	}
	// Oldest first, like the SQL store.
	sort.Slice(children, func(i, j int) bool { return children[i].seq < children[j].seq })

	relations := make([]catalog.Relation, len(children))
	for i, e := range children {
		relations[i] = catalog.Relation{ID: e.record.ID, InheritsContext: e.record.InheritsContext}
	}
	return relations, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func cloneRecord(rec catalog.Record) catalog.Record {
	out := rec
	out.Properties = cloneProperties(rec.Properties)
	if rec.ParentID != nil {
		id := *rec.ParentID
		out.ParentID = &id
	}
	return out
}

func cloneProperties(p catalog.Properties) catalog.Properties {
	out := p
	if p.Tags != nil {
		out.Tags = append([]string(nil), p.Tags...)
	}
	if p.Extra != nil {
		out.Extra = cloneExtra(p.Extra)
	}
	return out
}

func cloneExtra(extra map[string]string) map[string]string {
	out := make(map[string]string, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	return out
}
