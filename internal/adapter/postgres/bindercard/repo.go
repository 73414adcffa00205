// Package bindercard implements the quantity ledger's storage: the
// binder_cards rows linking binders to catalog cards with per-binder
// quantities. The finish and secure_payload columns are optional (staged
// schema rollout); every method consults the column capability detector and
// degrades to the base schema when they are absent.
package bindercard

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/ferrisbrook/cardbinder-backend/internal/adapter/postgres"
	"github.com/ferrisbrook/cardbinder-backend/internal/adapter/postgres/cardquery"
	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
)

const table = "binder_cards"

// Repo provides binder_cards persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	cols *postgres.Columns
}

// New creates a new binder_cards repository.
func New(pool *pgxpool.Pool, cols *postgres.Columns) *Repo {
	return &Repo{pool: pool, cols: cols}
}

// HasFinish reports whether the optional finish column exists.
func (r *Repo) HasFinish(ctx context.Context) bool {
	return r.cols.Has(ctx, table, "finish")
}

// HasSnapshot reports whether the optional secure_payload column exists.
func (r *Repo) HasSnapshot(ctx context.Context) bool {
	return r.cols.Has(ctx, table, "secure_payload")
}

// Increment inserts the row with qty = 1 or adds 1 to the existing quantity.
// The upsert is atomic at the database level, so concurrent increments from
// different requests are never lost.
func (r *Repo) Increment(ctx context.Context, binderID int64, cardID string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx,
		`INSERT INTO binder_cards (binder_id, card_id, qty)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (binder_id, card_id)
		 DO UPDATE SET qty = binder_cards.qty + 1`,
		binderID, cardID,
	)
	if err != nil {
		return postgres.MapError(err, "binder_card", cardID)
	}
	return nil
}

// SetQty upserts the row to exactly qty (overwrite, not increment).
// qty must be >= 1; removal is Delete's job.
func (r *Repo) SetQty(ctx context.Context, binderID int64, cardID string, qty int) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx,
		`INSERT INTO binder_cards (binder_id, card_id, qty)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (binder_id, card_id)
		 DO UPDATE SET qty = EXCLUDED.qty`,
		binderID, cardID, qty,
	)
	if err != nil {
		return postgres.MapError(err, "binder_card", cardID)
	}
	return nil
}

// Delete removes the (binder, card) row unconditionally and returns how many
// rows were deleted (0 or 1).
func (r *Repo) Delete(ctx context.Context, binderID int64, cardID string) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx,
		`DELETE FROM binder_cards WHERE binder_id = $1 AND card_id = $2`,
		binderID, cardID,
	)
	if err != nil {
		return 0, postgres.MapError(err, "binder_card", cardID)
	}
	return tag.RowsAffected(), nil
}

// DeleteMatching removes rows matching one normalized bulk-removal key and
// returns the deleted count. When the finish column exists, an empty Finish
// matches rows whose finish is NULL or empty and a non-empty Finish matches
// exactly; without the column the finish constraint is ignored and the delete
// matches on card id alone.
func (r *Repo) DeleteMatching(ctx context.Context, binderID int64, key domain.CardKey) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	b := cardquery.Builder().
		Delete(table).
		Where(sq.Eq{"binder_id": binderID, "card_id": key.CardID})

	if r.HasFinish(ctx) {
		if key.Finish != "" {
			b = b.Where(sq.Eq{"finish": key.Finish})
		} else {
			b = b.Where(sq.Expr("(finish IS NULL OR finish = '')"))
		}
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build bulk delete: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, postgres.MapError(err, "binder_card", key.CardID)
	}
	return tag.RowsAffected(), nil
}

// SaveSnapshot stores a fresh encrypted snapshot on the row. A no-op when the
// secure_payload column is absent, so callers do not need to branch on schema
// version.
func (r *Repo) SaveSnapshot(ctx context.Context, binderID int64, cardID, token string) error {
	if !r.HasSnapshot(ctx) {
		return nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx,
		`UPDATE binder_cards SET secure_payload = $3 WHERE binder_id = $1 AND card_id = $2`,
		binderID, cardID, token,
	)
	if err != nil {
		return postgres.MapError(err, "binder_card", cardID)
	}
	return nil
}

// Get returns the joined row for one (binder, card) pair.
// Returns domain.ErrNotFound when the binder holds no such card.
func (r *Repo) Get(ctx context.Context, binderID int64, cardID string) (*domain.BinderEntry, error) {
	entries, err := r.query(ctx, binderID, sq.Eq{"bc.card_id": cardID}, nil)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("binder_card %s: %w", cardID, domain.ErrNotFound)
	}
	return &entries[0], nil
}

// List returns the binder's joined rows with the card filter applied and the
// requested sort order.
func (r *Repo) List(ctx context.Context, binderID int64, filter domain.CardFilter, sortBy, direction string) ([]domain.BinderEntry, error) {
	var extra sq.Sqlizer
	if conds := cardquery.Conditions(filter, "c"); len(conds) > 0 {
		extra = sq.And(conds)
	}
	return r.query(ctx, binderID, extra, cardquery.Order(sortBy, direction, "c", "bc"))
}

// query builds and runs the joined select. extra narrows beyond the binder id;
// orderBy may be nil for a single-row lookup.
func (r *Repo) query(ctx context.Context, binderID int64, extra sq.Sqlizer, orderBy []string) ([]domain.BinderEntry, error) {
	hasFinish := r.HasFinish(ctx)
	hasSnapshot := r.HasSnapshot(ctx)

	columns := []string{
		"bc.qty", "bc.added_at",
		"c.id", "c.name", "c.set_name", "c.number", "c.rarity",
		"c.image_url", "c.type", "c.hp", "c.weaknesses", "c.retreat",
	}
	if hasFinish {
		columns = append(columns, "bc.finish")
	}
	if hasSnapshot {
		columns = append(columns, "bc.secure_payload")
	}

	b := cardquery.Builder().
		Select(columns...).
		From(table + " bc").
		Join("cards c ON c.id = bc.card_id").
		Where(sq.Eq{"bc.binder_id": binderID})
	if extra != nil {
		b = b.Where(extra)
	}
	if len(orderBy) > 0 {
		b = b.OrderBy(orderBy...)
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build binder_cards select: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list binder_cards: %w", err)
	}
	defer rows.Close()

	var entries []domain.BinderEntry
	for rows.Next() {
		var (
			e        domain.BinderEntry
			finish   pgtype.Text
			snapshot pgtype.Text
		)
		dest := []any{
			&e.Qty, &e.AddedAt,
			&e.ID, &e.Name, &e.SetName, &e.Number, &e.Rarity,
			&e.ImageURL, &e.Type, &e.HP, &e.Weaknesses, &e.Retreat,
		}
		if hasFinish {
			dest = append(dest, &finish)
		}
		if hasSnapshot {
			dest = append(dest, &snapshot)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan binder_card: %w", err)
		}
		if finish.Valid && finish.String != "" {
			f := finish.String
			e.Finish = &f
		}
		if snapshot.Valid {
			e.Snapshot = snapshot.String
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list binder_cards: %w", err)
	}

	return entries, nil
}
