package pgx

import (
	"context"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
)

// ParentOf returns the structural parent relation of a record, or
// (nil, nil) when it has none. The InheritsContext flag is the child's
// own, describing its relation to the returned parent.
func (s *Store) ParentOf(ctx context.Context, id string) (*catalog.Relation, error) {
	var rel catalog.Relation
	err := s.conn.QueryRow(ctx, selectParentSQL, id).Scan(&rel.ID, &rel.InheritsContext)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch parent of %s: %w", id, err)
	}
	return &rel, nil
}

// ChildrenOf returns the structural children of a record, oldest first.
func (s *Store) ChildrenOf(ctx context.Context, id string) ([]catalog.Relation, error) {
	rows, err := s.conn.Query(ctx, selectChildrenSQL, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch children of %s: %w", id, err)
	}
	defer rows.Close()

	var relations []catalog.Relation
	for rows.Next() {
		var rel catalog.Relation
		if err := rows.Scan(&rel.ID, &rel.InheritsContext); err != nil {
			return nil, fmt.Errorf("failed to scan child relation: %w", err)
		}
		relations = append(relations, rel)
	}
	return relations, rows.Err()
}

const selectParentSQL = `
SELECT p.public_id, o.inherits_context
FROM objects o
JOIN objects p ON p.id = o.parent_id
WHERE o.public_id = $1;
`

const selectChildrenSQL = `
SELECT c.public_id, c.inherits_context
FROM objects c
JOIN objects p ON c.parent_id = p.id
WHERE p.public_id = $1
ORDER BY c.created_at;
`
