package postgres

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Columns answers "does this optional column exist?" by probing
// information_schema once per (table, column) for the lifetime of the process.
// It lets the same binary run against a database mid-migration: deployments
// that predate the finish or secure_payload columns just take the simpler code
// path.
//
// A failed probe is cached as "absent" rather than propagated; the optional
// columns only ever enable extras, so failing toward the base schema is safe.
// The cache is never invalidated; a migration applied while the process is
// live is not noticed until restart.
type Columns struct {
	pool *pgxpool.Pool
	log  *slog.Logger

	mu    sync.Mutex
	known map[columnKey]bool
}

type columnKey struct {
	table  string
	column string
}

// NewColumns creates a column capability detector over the given pool.
func NewColumns(pool *pgxpool.Pool, log *slog.Logger) *Columns {
	return &Columns{
		pool:  pool,
		log:   log.With("component", "schema_columns"),
		known: make(map[columnKey]bool),
	}
}

// Has reports whether table.column exists. The first call per pair pays the
// introspection query; later calls return the memoized answer. Concurrent
// first calls may race into duplicate probes, which is harmless: both observe
// the same schema.
func (c *Columns) Has(ctx context.Context, table, column string) bool {
	key := columnKey{table: table, column: column}

	c.mu.Lock()
	if has, ok := c.known[key]; ok {
		c.mu.Unlock()
		return has
	}
	c.mu.Unlock()

	has, err := c.probe(ctx, table, column)
	if err != nil {
		c.log.WarnContext(ctx, "schema introspection failed, assuming column absent",
			slog.String("table", table),
			slog.String("column", column),
			slog.String("error", err.Error()),
		)
		has = false
	}

	c.mu.Lock()
	c.known[key] = has
	c.mu.Unlock()

	return has
}

func (c *Columns) probe(ctx context.Context, table, column string) (bool, error) {
	var exists bool
	err := c.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1
		     FROM information_schema.columns
		    WHERE table_name = $1 AND column_name = $2
		 )`,
		table, column,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
