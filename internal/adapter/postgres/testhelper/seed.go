package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
)

// Fixture bundles the common seed set for full-stack tests.
type Fixture struct {
	Pool    *pgxpool.Pool
	Account domain.Account
	Binder  domain.Binder
}

// UniqueSuffix returns a short unique string for generating non-conflicting test data.
func UniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedAccount creates an account with a unique username.
func SeedAccount(t *testing.T, pool *pgxpool.Pool) domain.Account {
	t.Helper()
	ctx := context.Background()

	var acc domain.Account
	err := pool.QueryRow(ctx,
		`INSERT INTO accounts (username) VALUES ($1) RETURNING id`,
		"collector-"+UniqueSuffix(),
	).Scan(&acc.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedAccount insert: %v", err)
	}

	return acc
}

// SeedBinder creates a binder owned by the given account.
func SeedBinder(t *testing.T, pool *pgxpool.Pool, accountID int64) domain.Binder {
	t.Helper()
	ctx := context.Background()

	b := domain.Binder{
		AccountID: accountID,
		Title:     "Binder " + UniqueSuffix(),
		Format:    "standard",
	}
	err := pool.QueryRow(ctx,
		`INSERT INTO binders (account_id, title, format) VALUES ($1, $2, $3) RETURNING id`,
		b.AccountID, b.Title, b.Format,
	).Scan(&b.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedBinder insert: %v", err)
	}

	return b
}

// SeedCard inserts a catalog card. Zero-value fields in the passed card are
// filled with defaults; the id is generated unless set.
func SeedCard(t *testing.T, pool *pgxpool.Pool, card domain.Card) domain.Card {
	t.Helper()
	ctx := context.Background()

	if card.ID == "" {
		card.ID = "test-card-" + UniqueSuffix()
	}
	if card.Name == "" {
		card.Name = "Card " + UniqueSuffix()
	}
	if card.HP == 0 {
		card.HP = 60
	}
	if card.Retreat == 0 {
		card.Retreat = 1
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO cards (id, name, set_name, number, rarity, image_url, type, hp, weaknesses, retreat)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		card.ID, card.Name, card.SetName, card.Number, card.Rarity,
		card.ImageURL, card.Type, card.HP, card.Weaknesses, card.Retreat,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCard insert: %v", err)
	}

	return card
}

// SeedBinderCard inserts an entry directly, bypassing the upsert path.
func SeedBinderCard(t *testing.T, pool *pgxpool.Pool, binderID int64, cardID string, qty int) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO binder_cards (binder_id, card_id, qty) VALUES ($1, $2, $3)`,
		binderID, cardID, qty,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedBinderCard insert: %v", err)
	}
}

// SeedBinderCardWithFinish inserts an entry with an explicit finish value.
func SeedBinderCardWithFinish(t *testing.T, pool *pgxpool.Pool, binderID int64, cardID string, qty int, finish string) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO binder_cards (binder_id, card_id, qty, finish) VALUES ($1, $2, $3, $4)`,
		binderID, cardID, qty, finish,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedBinderCardWithFinish insert: %v", err)
	}
}
