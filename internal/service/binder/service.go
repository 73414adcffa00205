// Package binder implements the binder inventory business logic: the
// ownership guard and the quantity ledger over binder_cards.
package binder

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
	"github.com/ferrisbrook/cardbinder-backend/internal/snapshot"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type binderRepo interface {
	GetByID(ctx context.Context, binderID int64) (*domain.Binder, error)
}

type catalogRepo interface {
	GetByID(ctx context.Context, cardID string) (*domain.Card, error)
}

type entryRepo interface {
	Increment(ctx context.Context, binderID int64, cardID string) error
	SetQty(ctx context.Context, binderID int64, cardID string, qty int) error
	Delete(ctx context.Context, binderID int64, cardID string) (int64, error)
	DeleteMatching(ctx context.Context, binderID int64, key domain.CardKey) (int64, error)
	SaveSnapshot(ctx context.Context, binderID int64, cardID, token string) error
	Get(ctx context.Context, binderID int64, cardID string) (*domain.BinderEntry, error)
	List(ctx context.Context, binderID int64, filter domain.CardFilter, sortBy, direction string) ([]domain.BinderEntry, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// achievementNotifier receives fire-and-forget notifications after successful
// adds. The core triggers them but does not own achievement bookkeeping.
type achievementNotifier interface {
	CardAdded(accountID, binderID int64, cardID string, qty int)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the binder inventory business logic.
type Service struct {
	log      *slog.Logger
	binders  binderRepo
	catalog  catalogRepo
	entries  entryRepo
	tx       txManager
	codec    snapshot.Codec
	notifier achievementNotifier
}

// NewService creates a new Binder service.
func NewService(
	logger *slog.Logger,
	binders binderRepo,
	catalog catalogRepo,
	entries entryRepo,
	tx txManager,
	codec snapshot.Codec,
) *Service {
	return &Service{
		log:     logger.With("service", "binder"),
		binders: binders,
		catalog: catalog,
		entries: entries,
		tx:      tx,
		codec:   codec,
	}
}

// SetNotifier injects the optional achievement notifier.
func (s *Service) SetNotifier(n achievementNotifier) {
	s.notifier = n
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// requireCardID trims and validates a card id.
func requireCardID(cardID string) (string, error) {
	id := strings.TrimSpace(cardID)
	if id == "" {
		return "", domain.NewValidationError("cardId", "required")
	}
	return id, nil
}

// present prefers the decrypted snapshot over the joined row. A token that
// fails to decrypt is a cache miss, never an error.
func (s *Service) present(e *domain.BinderEntry) *domain.BinderCard {
	if e.Snapshot != "" {
		if card, ok := s.codec.Decrypt(e.Snapshot); ok {
			return card
		}
	}
	card := e.BinderCard
	return &card
}

// refreshSnapshot writes back a fresh encrypted snapshot for the entry.
// Encryption failures only cost the cache; storage failures propagate so the
// surrounding transaction rolls back.
func (s *Service) refreshSnapshot(ctx context.Context, binderID int64, e *domain.BinderEntry) error {
	if !s.codec.Enabled() {
		return nil
	}

	token, err := s.codec.Encrypt(&e.BinderCard)
	if err != nil {
		s.log.WarnContext(ctx, "snapshot encrypt failed, skipping cache refresh",
			slog.Int64("binder_id", binderID),
			slog.String("card_id", e.ID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	return s.entries.SaveSnapshot(ctx, binderID, e.ID, token)
}
