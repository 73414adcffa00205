package binder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
	"github.com/ferrisbrook/cardbinder-backend/internal/snapshot"
	"github.com/ferrisbrook/cardbinder-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeBinderRepo struct {
	getByIDFunc func(ctx context.Context, binderID int64) (*domain.Binder, error)
}

func (f *fakeBinderRepo) GetByID(ctx context.Context, binderID int64) (*domain.Binder, error) {
	return f.getByIDFunc(ctx, binderID)
}

type fakeCatalogRepo struct {
	getByIDFunc func(ctx context.Context, cardID string) (*domain.Card, error)
}

func (f *fakeCatalogRepo) GetByID(ctx context.Context, cardID string) (*domain.Card, error) {
	return f.getByIDFunc(ctx, cardID)
}

type fakeEntryRepo struct {
	incrementFunc      func(ctx context.Context, binderID int64, cardID string) error
	setQtyFunc         func(ctx context.Context, binderID int64, cardID string, qty int) error
	deleteFunc         func(ctx context.Context, binderID int64, cardID string) (int64, error)
	deleteMatchingFunc func(ctx context.Context, binderID int64, key domain.CardKey) (int64, error)
	saveSnapshotFunc   func(ctx context.Context, binderID int64, cardID, token string) error
	getFunc            func(ctx context.Context, binderID int64, cardID string) (*domain.BinderEntry, error)
	listFunc           func(ctx context.Context, binderID int64, filter domain.CardFilter, sortBy, direction string) ([]domain.BinderEntry, error)
}

func (f *fakeEntryRepo) Increment(ctx context.Context, binderID int64, cardID string) error {
	return f.incrementFunc(ctx, binderID, cardID)
}

func (f *fakeEntryRepo) SetQty(ctx context.Context, binderID int64, cardID string, qty int) error {
	return f.setQtyFunc(ctx, binderID, cardID, qty)
}

func (f *fakeEntryRepo) Delete(ctx context.Context, binderID int64, cardID string) (int64, error) {
	return f.deleteFunc(ctx, binderID, cardID)
}

func (f *fakeEntryRepo) DeleteMatching(ctx context.Context, binderID int64, key domain.CardKey) (int64, error) {
	return f.deleteMatchingFunc(ctx, binderID, key)
}

func (f *fakeEntryRepo) SaveSnapshot(ctx context.Context, binderID int64, cardID, token string) error {
	if f.saveSnapshotFunc == nil {
		return nil
	}
	return f.saveSnapshotFunc(ctx, binderID, cardID, token)
}

func (f *fakeEntryRepo) Get(ctx context.Context, binderID int64, cardID string) (*domain.BinderEntry, error) {
	return f.getFunc(ctx, binderID, cardID)
}

func (f *fakeEntryRepo) List(ctx context.Context, binderID int64, filter domain.CardFilter, sortBy, direction string) ([]domain.BinderEntry, error) {
	return f.listFunc(ctx, binderID, filter, sortBy, direction)
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const (
	ownerID  = int64(7)
	binderID = int64(42)
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ownerCtx() context.Context {
	return ctxutil.WithAccountID(context.Background(), ownerID)
}

func ownedBinderRepo() *fakeBinderRepo {
	return &fakeBinderRepo{
		getByIDFunc: func(_ context.Context, id int64) (*domain.Binder, error) {
			if id != binderID {
				return nil, domain.ErrNotFound
			}
			return &domain.Binder{ID: binderID, AccountID: ownerID, Title: "Main Binder"}, nil
		},
	}
}

func testEntry(cardID string, qty int) *domain.BinderEntry {
	return &domain.BinderEntry{
		BinderCard: domain.BinderCard{
			Card: domain.Card{ID: cardID, Name: "Embergriff", Rarity: "Rare"},
			Qty:  qty,
		},
	}
}

func newTestService(binders binderRepo, catalog catalogRepo, entries entryRepo, codec snapshot.Codec) *Service {
	if codec == nil {
		codec = snapshot.Disabled
	}
	return NewService(testLogger(), binders, catalog, entries, fakeTxManager{}, codec)
}

// ---------------------------------------------------------------------------
// AssertOwnership
// ---------------------------------------------------------------------------

func TestAssertOwnership(t *testing.T) {
	t.Parallel()

	svc := newTestService(ownedBinderRepo(), nil, nil, nil)

	t.Run("owner passes", func(t *testing.T) {
		t.Parallel()

		b, err := svc.AssertOwnership(ownerCtx(), binderID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.ID != binderID {
			t.Errorf("binder ID = %d, want %d", b.ID, binderID)
		}
	})

	t.Run("missing account is unauthorized", func(t *testing.T) {
		t.Parallel()

		_, err := svc.AssertOwnership(context.Background(), binderID)
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("non-positive id is a validation error", func(t *testing.T) {
		t.Parallel()

		for _, id := range []int64{0, -1} {
			_, err := svc.AssertOwnership(ownerCtx(), id)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("AssertOwnership(%d) error = %v, want ErrValidation", id, err)
			}
		}
	})

	t.Run("unknown binder is not found", func(t *testing.T) {
		t.Parallel()

		_, err := svc.AssertOwnership(ownerCtx(), 999)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("foreign binder is forbidden", func(t *testing.T) {
		t.Parallel()

		ctx := ctxutil.WithAccountID(context.Background(), ownerID+1)
		_, err := svc.AssertOwnership(ctx, binderID)
		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("error = %v, want ErrForbidden", err)
		}
	})
}

// ---------------------------------------------------------------------------
// AddCard
// ---------------------------------------------------------------------------

func TestAddCard(t *testing.T) {
	t.Parallel()

	t.Run("increments and returns the entry", func(t *testing.T) {
		t.Parallel()

		var incremented bool
		entries := &fakeEntryRepo{
			incrementFunc: func(_ context.Context, id int64, cardID string) error {
				if id != binderID || cardID != "card-1" {
					t.Errorf("Increment(%d, %q), want (%d, %q)", id, cardID, binderID, "card-1")
				}
				incremented = true
				return nil
			},
			getFunc: func(_ context.Context, _ int64, cardID string) (*domain.BinderEntry, error) {
				return testEntry(cardID, 3), nil
			},
		}
		catalog := &fakeCatalogRepo{
			getByIDFunc: func(_ context.Context, cardID string) (*domain.Card, error) {
				return &domain.Card{ID: cardID}, nil
			},
		}

		svc := newTestService(ownedBinderRepo(), catalog, entries, nil)

		card, err := svc.AddCard(ownerCtx(), binderID, "card-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !incremented {
			t.Error("Increment was not called")
		}
		if card.Qty != 3 {
			t.Errorf("qty = %d, want 3", card.Qty)
		}
	})

	t.Run("unknown catalog card is not found", func(t *testing.T) {
		t.Parallel()

		catalog := &fakeCatalogRepo{
			getByIDFunc: func(_ context.Context, _ string) (*domain.Card, error) {
				return nil, domain.ErrNotFound
			},
		}
		svc := newTestService(ownedBinderRepo(), catalog, &fakeEntryRepo{
			incrementFunc: func(_ context.Context, _ int64, _ string) error {
				t.Error("Increment called for an unknown card")
				return nil
			},
		}, nil)

		_, err := svc.AddCard(ownerCtx(), binderID, "ghost")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("blank card id is a validation error", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(ownedBinderRepo(), nil, nil, nil)

		_, err := svc.AddCard(ownerCtx(), binderID, "   ")
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

// ---------------------------------------------------------------------------
// SetQuantity
// ---------------------------------------------------------------------------

func TestSetQuantity(t *testing.T) {
	t.Parallel()

	knownCatalog := func() *fakeCatalogRepo {
		return &fakeCatalogRepo{
			getByIDFunc: func(_ context.Context, cardID string) (*domain.Card, error) {
				return &domain.Card{ID: cardID}, nil
			},
		}
	}

	t.Run("positive qty replaces the stored value", func(t *testing.T) {
		t.Parallel()

		var setTo int
		entries := &fakeEntryRepo{
			getFunc: func(_ context.Context, _ int64, cardID string) (*domain.BinderEntry, error) {
				return testEntry(cardID, setTo), nil
			},
			setQtyFunc: func(_ context.Context, _ int64, _ string, qty int) error {
				setTo = qty
				return nil
			},
		}
		svc := newTestService(ownedBinderRepo(), knownCatalog(), entries, nil)

		card, err := svc.SetQuantity(ownerCtx(), binderID, "card-1", 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if setTo != 5 {
			t.Errorf("stored qty = %d, want 5", setTo)
		}
		if card.Qty != 5 {
			t.Errorf("returned qty = %d, want 5", card.Qty)
		}
	})

	t.Run("positive qty creates an absent entry", func(t *testing.T) {
		t.Parallel()

		var stored *domain.BinderEntry
		entries := &fakeEntryRepo{
			setQtyFunc: func(_ context.Context, _ int64, cardID string, qty int) error {
				stored = testEntry(cardID, qty)
				return nil
			},
			getFunc: func(_ context.Context, _ int64, cardID string) (*domain.BinderEntry, error) {
				if stored == nil {
					return nil, domain.ErrNotFound
				}
				return stored, nil
			},
		}
		svc := newTestService(ownedBinderRepo(), knownCatalog(), entries, nil)

		card, err := svc.SetQuantity(ownerCtx(), binderID, "card-1", 4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if card.Qty != 4 {
			t.Errorf("qty = %d, want 4", card.Qty)
		}
	})

	t.Run("unknown catalog card is not found", func(t *testing.T) {
		t.Parallel()

		catalog := &fakeCatalogRepo{
			getByIDFunc: func(_ context.Context, _ string) (*domain.Card, error) {
				return nil, domain.ErrNotFound
			},
		}
		entries := &fakeEntryRepo{
			setQtyFunc: func(_ context.Context, _ int64, _ string, _ int) error {
				t.Error("SetQty called for an unknown card")
				return nil
			},
		}
		svc := newTestService(ownedBinderRepo(), catalog, entries, nil)

		_, err := svc.SetQuantity(ownerCtx(), binderID, "ghost", 2)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("zero qty deletes and returns nil", func(t *testing.T) {
		t.Parallel()

		var deleted bool
		entries := &fakeEntryRepo{
			deleteFunc: func(_ context.Context, _ int64, _ string) (int64, error) {
				deleted = true
				return 1, nil
			},
		}
		svc := newTestService(ownedBinderRepo(), nil, entries, nil)

		card, err := svc.SetQuantity(ownerCtx(), binderID, "card-1", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !deleted {
			t.Error("Delete was not called")
		}
		if card != nil {
			t.Errorf("card = %+v, want nil", card)
		}
	})

	t.Run("zero qty on an absent entry is a no-op", func(t *testing.T) {
		t.Parallel()

		entries := &fakeEntryRepo{
			deleteFunc: func(_ context.Context, _ int64, _ string) (int64, error) {
				return 0, nil
			},
		}
		svc := newTestService(ownedBinderRepo(), nil, entries, nil)

		card, err := svc.SetQuantity(ownerCtx(), binderID, "card-1", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if card != nil {
			t.Errorf("card = %+v, want nil", card)
		}
	})

	t.Run("negative qty is a validation error", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(ownedBinderRepo(), nil, nil, nil)

		_, err := svc.SetQuantity(ownerCtx(), binderID, "card-1", -2)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

// ---------------------------------------------------------------------------
// RemoveCard / RemoveCards
// ---------------------------------------------------------------------------

func TestRemoveCard(t *testing.T) {
	t.Parallel()

	t.Run("deletes the entry", func(t *testing.T) {
		t.Parallel()

		entries := &fakeEntryRepo{
			deleteFunc: func(_ context.Context, _ int64, _ string) (int64, error) {
				return 1, nil
			},
		}
		svc := newTestService(ownedBinderRepo(), nil, entries, nil)

		if err := svc.RemoveCard(ownerCtx(), binderID, "card-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("absent entry is not found", func(t *testing.T) {
		t.Parallel()

		entries := &fakeEntryRepo{
			deleteFunc: func(_ context.Context, _ int64, _ string) (int64, error) {
				return 0, nil
			},
		}
		svc := newTestService(ownedBinderRepo(), nil, entries, nil)

		err := svc.RemoveCard(ownerCtx(), binderID, "card-1")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestRemoveCards(t *testing.T) {
	t.Parallel()

	t.Run("deduplicates and sums affected rows", func(t *testing.T) {
		t.Parallel()

		var seen []domain.CardKey
		entries := &fakeEntryRepo{
			deleteMatchingFunc: func(_ context.Context, _ int64, key domain.CardKey) (int64, error) {
				seen = append(seen, key)
				if key.CardID == "ghost" {
					return 0, nil
				}
				return 1, nil
			},
		}
		svc := newTestService(ownedBinderRepo(), nil, entries, nil)

		removed, err := svc.RemoveCards(ownerCtx(), binderID, []domain.BulkRemoveItem{
			{CardID: "card-1"},
			{CardID: "card-1"},
			{CardID: "card-2", Finish: "holo"},
			{CardID: "ghost"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(seen) != 3 {
			t.Errorf("DeleteMatching called %d times, want 3", len(seen))
		}
		if removed != 2 {
			t.Errorf("removed = %d, want 2", removed)
		}
	})

	t.Run("empty batch is a validation error", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(ownedBinderRepo(), nil, &fakeEntryRepo{}, nil)

		for _, items := range [][]domain.BulkRemoveItem{
			nil,
			{},
			{{CardID: "  "}},
		} {
			_, err := svc.RemoveCards(ownerCtx(), binderID, items)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("RemoveCards(%v) error = %v, want ErrValidation", items, err)
			}
		}
	})
}

// ---------------------------------------------------------------------------
// ListCards / snapshots
// ---------------------------------------------------------------------------

func TestListCards_PrefersSnapshot(t *testing.T) {
	t.Parallel()

	codec := snapshot.New("test-secret")

	cached := &domain.BinderCard{
		Card: domain.Card{ID: "card-1", Name: "Cached Name"},
		Qty:  2,
	}
	token, err := codec.Encrypt(cached)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	entries := &fakeEntryRepo{
		listFunc: func(_ context.Context, _ int64, _ domain.CardFilter, _, _ string) ([]domain.BinderEntry, error) {
			withToken := *testEntry("card-1", 2)
			withToken.Card.Name = "Live Name"
			withToken.Snapshot = token

			stale := *testEntry("card-2", 1)
			stale.Snapshot = "not-a-valid-token"

			return []domain.BinderEntry{withToken, stale}, nil
		},
	}
	svc := newTestService(ownedBinderRepo(), nil, entries, codec)

	cards, err := svc.ListCards(ownerCtx(), binderID, domain.CardFilter{}, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("got %d cards, want 2", len(cards))
	}
	if cards[0].Name != "Cached Name" {
		t.Errorf("cards[0].Name = %q, want the snapshot value", cards[0].Name)
	}
	if cards[1].ID != "card-2" {
		t.Errorf("cards[1].ID = %q, want the live row for a bad token", cards[1].ID)
	}
}

func TestAddCard_RefreshesSnapshot(t *testing.T) {
	t.Parallel()

	codec := snapshot.New("test-secret")

	var savedToken string
	entries := &fakeEntryRepo{
		incrementFunc: func(_ context.Context, _ int64, _ string) error { return nil },
		getFunc: func(_ context.Context, _ int64, cardID string) (*domain.BinderEntry, error) {
			return testEntry(cardID, 1), nil
		},
		saveSnapshotFunc: func(_ context.Context, _ int64, _, token string) error {
			savedToken = token
			return nil
		},
	}
	catalog := &fakeCatalogRepo{
		getByIDFunc: func(_ context.Context, cardID string) (*domain.Card, error) {
			return &domain.Card{ID: cardID}, nil
		},
	}
	svc := newTestService(ownedBinderRepo(), catalog, entries, codec)

	if _, err := svc.AddCard(ownerCtx(), binderID, "card-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if savedToken == "" {
		t.Fatal("SaveSnapshot was not called")
	}
	card, ok := codec.Decrypt(savedToken)
	if !ok {
		t.Fatal("saved token does not decrypt")
	}
	if card.ID != "card-1" || card.Qty != 1 {
		t.Errorf("decrypted card = %+v, want card-1 qty 1", card)
	}
}
