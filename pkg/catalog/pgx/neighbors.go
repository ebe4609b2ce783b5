package pgx

import (
	"context"
	"fmt"

	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
)

// NearestNeighbors runs a type-filtered cosine nearest-neighbor query
// around the seed's own embedding. Seeds without an embedding yield no
// rows, which callers treat as "no neighbors", not as an error.
func (s *Store) NearestNeighbors(ctx context.Context, objectType catalog.ObjectType, seedID string, limit int) ([]catalog.Neighbor, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, nearestNeighborsSQL, seedID, string(objectType), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query neighbors of %s: %w", seedID, err)
	}
	defer rows.Close()

	var neighbors []catalog.Neighbor
	for rows.Next() {
		var n catalog.Neighbor
		err := rows.Scan(
			&n.ID,
			&n.Properties.Title,
			&n.Properties.Description,
			&n.Properties.Tags,
			&n.Properties.Extra,
			&n.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan neighbor: %w", err)
		}
		neighbors = append(neighbors, n)
	}
	return neighbors, rows.Err()
}

const nearestNeighborsSQL = `
SELECT o.public_id, o.title, o.description, o.tags, o.extra,
       o.embedding <=> s.embedding AS distance
FROM objects o,
     (SELECT embedding FROM objects WHERE public_id = $1) s
WHERE o.object_type = $2
  AND o.public_id <> $1
  AND o.embedding IS NOT NULL
  AND s.embedding IS NOT NULL
ORDER BY o.embedding <=> s.embedding
LIMIT $3;
`
