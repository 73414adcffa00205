package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/ferrisbrook/cardbinder-backend/internal/adapter/postgres/testhelper"
	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
)

// seedSearchSet inserts a distinct family of cards and returns the shared
// name prefix, so concurrent tests on the shared container do not interfere.
func seedSearchSet(t *testing.T, repo *Repo) (string, []domain.Card) {
	t.Helper()

	prefix := "srch" + testhelper.UniqueSuffix()
	cards := []domain.Card{
		{Name: prefix + " Alpha", SetName: "Probe Set", Rarity: "Common", Type: "Fire", HP: 60, Retreat: 1},
		{Name: prefix + " Beta", SetName: "Probe Set", Rarity: "Rare", Type: "Water", HP: 90, Retreat: 2},
		{Name: prefix + " Gamma", SetName: "Other Set", Rarity: "Rare", Type: "Fire", HP: 120, Retreat: 2},
	}
	for i := range cards {
		cards[i].ID = prefix + "-" + cards[i].Rarity + "-" + cards[i].SetName
	}
	if err := repo.UpsertBatch(context.Background(), cards); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}
	return prefix, cards
}

func TestGetByID(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := New(pool)
	ctx := context.Background()

	card := testhelper.SeedCard(t, pool, domain.Card{Name: "Solo", Rarity: "Rare"})

	got, err := repo.GetByID(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Solo" || got.Rarity != "Rare" {
		t.Errorf("got %+v, want name Solo rarity Rare", got)
	}

	if _, err := repo.GetByID(ctx, "absent-id"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetByID(absent) error = %v, want ErrNotFound", err)
	}
}

func TestSearch_FilterAndTotal(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := New(pool)
	ctx := context.Background()

	prefix, _ := seedSearchSet(t, repo)

	cards, total, err := repo.Search(ctx, domain.CardFilter{Query: prefix}, 2, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(cards) != 2 {
		t.Errorf("page size = %d, want 2", len(cards))
	}
	// Name ordering puts Alpha first.
	if len(cards) > 0 && cards[0].Name != prefix+" Alpha" {
		t.Errorf("cards[0].Name = %q, want %q", cards[0].Name, prefix+" Alpha")
	}
}

func TestSearch_TotalSurvivesEmptyPage(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := New(pool)
	ctx := context.Background()

	prefix, _ := seedSearchSet(t, repo)

	cards, total, err := repo.Search(ctx, domain.CardFilter{Query: prefix}, 10, 50)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(cards) != 0 {
		t.Errorf("page size = %d, want 0 past the end", len(cards))
	}
	if total != 3 {
		t.Errorf("total = %d, want 3 even when the page is empty", total)
	}
}

func TestSearch_CombinedFilters(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := New(pool)
	ctx := context.Background()

	prefix, _ := seedSearchSet(t, repo)

	cards, total, err := repo.Search(ctx, domain.CardFilter{
		Query:  prefix,
		Rarity: "rare",
		Set:    "probe set",
	}, 10, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 1 || len(cards) != 1 {
		t.Fatalf("got %d/%d results, want exactly 1", len(cards), total)
	}
	if cards[0].Name != prefix+" Beta" {
		t.Errorf("match = %q, want %q", cards[0].Name, prefix+" Beta")
	}
}

func TestUpsertBatch_RefreshesExistingRows(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := New(pool)
	ctx := context.Background()

	card := testhelper.SeedCard(t, pool, domain.Card{Name: "Before", HP: 50})

	card.Name = "After"
	card.HP = 80
	if err := repo.UpsertBatch(ctx, []domain.Card{card}); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}

	got, err := repo.GetByID(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "After" || got.HP != 80 {
		t.Errorf("got %+v, want refreshed name and hp", got)
	}
}
