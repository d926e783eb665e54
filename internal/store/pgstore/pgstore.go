// Package pgstore implements the store/driver interfaces on Postgres via
// pgx, adapted from hookdeck-outpost's logstore/pglogstore.go: a shared
// *pgxpool.Pool, $N-parameterised SQL built through internal/query's
// compiler, row scanning into the same types the memory store returns.
package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Open creates a pgxpool against databaseURL and verifies connectivity.
func Open(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgstore: open: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: ping: %w", err)
	}
	return pool, nil
}
