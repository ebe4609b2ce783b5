package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Conn is the subset of pgx a Store needs. Both *pgxpool.Pool and
// pgx.Tx satisfy it, so tests can run the store inside a transaction.
type Conn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// Store implements catalog.Store on PostgreSQL with pgvector. All
// similarity math happens in the database via the cosine distance
// operator; the store itself is stateless.
type Store struct {
	conn Conn
}

// NewStore creates a Store on an existing connection or pool.
func NewStore(conn Conn) *Store {
	return &Store{conn: conn}
}
