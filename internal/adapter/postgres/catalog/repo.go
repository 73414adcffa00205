// Package catalog implements the card catalog repository. The catalog is an
// immutable reference set from the core's point of view: reads and searches
// only, plus a batch upsert used by the seeder.
package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/ferrisbrook/cardbinder-backend/internal/adapter/postgres"
	"github.com/ferrisbrook/cardbinder-backend/internal/adapter/postgres/cardquery"
	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
)

const cardColumns = "id, name, set_name, number, rarity, image_url, type, hp, weaknesses, retreat"

// Repo provides catalog card persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetByID returns a catalog card. Returns domain.ErrNotFound if the card does
// not exist. Runs against the context transaction when one is present, so the
// existence check participates in ledger transactions.
func (r *Repo) GetByID(ctx context.Context, cardID string) (*domain.Card, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var c domain.Card
	err := q.QueryRow(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = $1`,
		cardID,
	).Scan(&c.ID, &c.Name, &c.SetName, &c.Number, &c.Rarity, &c.ImageURL,
		&c.Type, &c.HP, &c.Weaknesses, &c.Retreat)
	if err != nil {
		return nil, postgres.MapError(err, "card", cardID)
	}

	return &c, nil
}

// Search returns catalog cards matching the filter, ordered by name, plus the
// total match count over the same filter without pagination. The count rides
// along as a window aggregate so one round trip serves both.
func (r *Repo) Search(ctx context.Context, filter domain.CardFilter, limit, offset int) ([]domain.Card, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	b := cardquery.Builder().
		Select("id", "name", "set_name", "number", "rarity", "image_url",
			"type", "hp", "weaknesses", "retreat").
		Column("COUNT(*) OVER() AS total_count").
		From("cards").
		OrderBy("name ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	for _, cond := range cardquery.Conditions(filter, "") {
		b = b.Where(cond)
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build catalog search: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search cards: %w", err)
	}
	defer rows.Close()

	var (
		cards = []domain.Card{}
		total int
	)
	for rows.Next() {
		var c domain.Card
		if err := rows.Scan(&c.ID, &c.Name, &c.SetName, &c.Number, &c.Rarity,
			&c.ImageURL, &c.Type, &c.HP, &c.Weaknesses, &c.Retreat, &total); err != nil {
			return nil, 0, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("search cards: %w", err)
	}

	// An empty page past the end of the result set loses the window count;
	// fall back to a plain count so pagination metadata stays correct.
	if len(cards) == 0 {
		total, err = r.countMatches(ctx, filter)
		if err != nil {
			return nil, 0, err
		}
	}

	return cards, total, nil
}

func (r *Repo) countMatches(ctx context.Context, filter domain.CardFilter) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	b := cardquery.Builder().Select("COUNT(*)").From("cards")
	for _, cond := range cardquery.Conditions(filter, "") {
		b = b.Where(cond)
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build catalog count: %w", err)
	}

	var total int
	if err := q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return total, nil
}

// UpsertBatch inserts or refreshes catalog cards in one statement, keyed by
// card id. Used by the seeder; idempotent across runs.
func (r *Repo) UpsertBatch(ctx context.Context, cards []domain.Card) error {
	if len(cards) == 0 {
		return nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	b := cardquery.Builder().
		Insert("cards").
		Columns("id", "name", "set_name", "number", "rarity", "image_url",
			"type", "hp", "weaknesses", "retreat").
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			set_name = EXCLUDED.set_name,
			number = EXCLUDED.number,
			rarity = EXCLUDED.rarity,
			image_url = EXCLUDED.image_url,
			type = EXCLUDED.type,
			hp = EXCLUDED.hp,
			weaknesses = EXCLUDED.weaknesses,
			retreat = EXCLUDED.retreat`)
	for _, c := range cards {
		b = b.Values(c.ID, c.Name, c.SetName, c.Number, c.Rarity, c.ImageURL,
			c.Type, c.HP, c.Weaknesses, c.Retreat)
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build catalog upsert: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert cards: %w", err)
	}

	return nil
}

// Count returns the number of cards in the catalog.
func (r *Repo) Count(ctx context.Context) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var n int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}
