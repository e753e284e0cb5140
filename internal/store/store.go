package store

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps the shared connection pool. It is constructed in main and
// injected into handlers; there is no package-level client.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
