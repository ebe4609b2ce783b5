package pgx

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pgxv5 "github.com/jackc/pgx/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pgvector/pgvector-go"

	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/util"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
)

// CreateObject inserts a new record with a fresh public id. A parent
// reference to an unknown id fails with catalog.ErrNotFound.
func (s *Store) CreateObject(ctx context.Context, params catalog.CreateObjectParams) (*catalog.Record, error) {
	publicID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate public id: %w", err)
	}

	var parentID *int64
	if params.ParentID != nil && *params.ParentID != "" {
		var id int64
		err := s.conn.QueryRow(ctx, selectInternalIDSQL, *params.ParentID).Scan(&id)
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, fmt.Errorf("parent %s: %w", *params.ParentID, catalog.ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve parent: %w", err)
		}
		parentID = &id
	}

	tags := params.Properties.Tags
	if tags == nil {
		tags = []string{}
	}
	extra := params.Properties.Extra
	if extra == nil {
		extra = map[string]string{}
	}

	_, err = s.conn.Exec(ctx, insertObjectSQL,
		publicID,
		string(params.Type),
		util.SanitizePostgresText(params.Properties.Title),
		util.SanitizePostgresText(params.Properties.Description),
		tags,
		extra,
		parentID,
		params.InheritsContext,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert object: %w", err)
	}

	return s.FetchByID(ctx, publicID)
}

// FetchByID loads one record by public id.
func (s *Store) FetchByID(ctx context.Context, id string) (*catalog.Record, error) {
	row := s.conn.QueryRow(ctx, selectObjectSQL, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch object %s: %w", id, err)
	}
	return rec, nil
}

// ListObjects returns records ordered newest first. An empty objectType
// lists across all types.
func (s *Store) ListObjects(ctx context.Context, objectType catalog.ObjectType, limit, offset int) ([]catalog.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	sql := listObjectsSQL
	args := []any{limit, offset}
	if objectType != "" {
		sql = listObjectsByTypeSQL
		args = []any{string(objectType), limit, offset}
	}

	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	defer rows.Close()

	var records []catalog.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan object: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// UpdateObject applies a partial update and returns the new state.
func (s *Store) UpdateObject(ctx context.Context, id string, params catalog.UpdateObjectParams) (*catalog.Record, error) {
	var set []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Title != nil {
		set = append(set, "title = "+next(util.SanitizePostgresText(*params.Title)))
	}
	if params.Description != nil {
		set = append(set, "description = "+next(util.SanitizePostgresText(*params.Description)))
	}
	if params.Tags != nil {
		set = append(set, "tags = "+next(*params.Tags))
	}
	if params.Extra != nil {
		set = append(set, "extra = "+next(*params.Extra))
	}
	if params.InheritsContext != nil {
		set = append(set, "inherits_context = "+next(*params.InheritsContext))
	}
	if params.ParentID != nil {
		if *params.ParentID == "" {
			set = append(set, "parent_id = NULL")
		} else {
			var parentID int64
			err := s.conn.QueryRow(ctx, selectInternalIDSQL, *params.ParentID).Scan(&parentID)
			if errors.Is(err, pgxv5.ErrNoRows) {
				return nil, fmt.Errorf("parent %s: %w", *params.ParentID, catalog.ErrNotFound)
			}
			if err != nil {
				return nil, fmt.Errorf("failed to resolve parent: %w", err)
			}
			set = append(set, "parent_id = "+next(parentID))
		}
	}

	if len(set) == 0 {
		return s.FetchByID(ctx, id)
	}
	set = append(set, "updated_at = now()")

	sql := fmt.Sprintf("UPDATE objects SET %s WHERE public_id = %s",
		strings.Join(set, ", "), next(id))
	tag, err := s.conn.Exec(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update object %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, catalog.ErrNotFound
	}

	return s.FetchByID(ctx, id)
}

// DeleteObject removes a record and returns its last state so callers
// can clean up attached content.
func (s *Store) DeleteObject(ctx context.Context, id string) (*catalog.Record, error) {
	rec, err := s.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.conn.Exec(ctx, deleteObjectSQL, id); err != nil {
		return nil, fmt.Errorf("failed to delete object %s: %w", id, err)
	}
	return rec, nil
}

// SetEmbedding stores the vector produced by the embedding worker.
func (s *Store) SetEmbedding(ctx context.Context, id string, embedding []float32) error {
	tag, err := s.conn.Exec(ctx, setEmbeddingSQL, id, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to store embedding for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// SetContent records where a record's uploaded body lives in the
// content store and what media type it carries.
func (s *Store) SetContent(ctx context.Context, id string, key string, contentType string) error {
	tag, err := s.conn.Exec(ctx, setContentSQL, id, key, contentType)
	if err != nil {
		return fmt.Errorf("failed to store content key for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func scanRecord(row pgxv5.Row) (*catalog.Record, error) {
	var rec catalog.Record
	var contentKey *string
	var contentType *string
	var parentID *string

	err := row.Scan(
		&rec.ID,
		&rec.Type,
		&rec.Properties.Title,
		&rec.Properties.Description,
		&rec.Properties.Tags,
		&rec.Properties.Extra,
		&contentKey,
		&contentType,
		&parentID,
		&rec.InheritsContext,
		&rec.HasEmbedding,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if contentKey != nil {
		rec.ContentKey = *contentKey
	}
	if contentType != nil {
		rec.ContentType = *contentType
	}
	rec.ParentID = parentID
	return &rec, nil
}

const objectColumns = `
	o.public_id, o.object_type, o.title, o.description, o.tags, o.extra,
	o.content_key, o.content_type, p.public_id, o.inherits_context,
	(o.embedding IS NOT NULL), o.created_at, o.updated_at`

const selectObjectSQL = `
SELECT` + objectColumns + `
FROM objects o
LEFT JOIN objects p ON p.id = o.parent_id
WHERE o.public_id = $1;
`

const listObjectsSQL = `
SELECT` + objectColumns + `
FROM objects o
LEFT JOIN objects p ON p.id = o.parent_id
ORDER BY o.created_at DESC
LIMIT $1 OFFSET $2;
`

const listObjectsByTypeSQL = `
SELECT` + objectColumns + `
FROM objects o
LEFT JOIN objects p ON p.id = o.parent_id
WHERE o.object_type = $1
ORDER BY o.created_at DESC
LIMIT $2 OFFSET $3;
`

const selectInternalIDSQL = `
SELECT id FROM objects WHERE public_id = $1;
`

const insertObjectSQL = `
INSERT INTO objects (public_id, object_type, title, description, tags, extra, parent_id, inherits_context)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`

const deleteObjectSQL = `
DELETE FROM objects WHERE public_id = $1;
`

const setEmbeddingSQL = `
UPDATE objects
SET embedding = $2, embedded_at = now(), updated_at = now()
WHERE public_id = $1;
`

const setContentSQL = `
UPDATE objects
SET content_key = $2, content_type = $3, updated_at = now()
WHERE public_id = $1;
`
