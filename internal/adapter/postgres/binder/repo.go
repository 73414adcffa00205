// Package binder implements the binder repository. Binders are created and
// edited by an external collaborator; this core only reads them to enforce
// ownership, so the repository exposes just the lookup.
package binder

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/ferrisbrook/cardbinder-backend/internal/adapter/postgres"
	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
)

// Repo provides binder persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new binder repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetByID returns a binder regardless of owner. Returns domain.ErrNotFound if
// no binder with that id exists. Ownership is the service's concern so the
// guard can distinguish Forbidden from NotFound.
func (r *Repo) GetByID(ctx context.Context, binderID int64) (*domain.Binder, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var b domain.Binder
	err := q.QueryRow(ctx,
		`SELECT id, account_id, title, COALESCE(format, '') FROM binders WHERE id = $1`,
		binderID,
	).Scan(&b.ID, &b.AccountID, &b.Title, &b.Format)
	if err != nil {
		return nil, postgres.MapError(err, "binder", binderID)
	}

	return &b, nil
}
