package binder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
)

// AddCard adds one copy of a catalog card to the binder, creating the entry
// with quantity 1 or incrementing an existing one atomically.
func (s *Service) AddCard(ctx context.Context, binderID int64, cardID string) (*domain.BinderCard, error) {
	b, err := s.AssertOwnership(ctx, binderID)
	if err != nil {
		return nil, err
	}

	id, err := requireCardID(cardID)
	if err != nil {
		return nil, err
	}

	var entry *domain.BinderEntry

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.catalog.GetByID(ctx, id); err != nil {
			return fmt.Errorf("get card %s: %w", id, err)
		}

		if err := s.entries.Increment(ctx, binderID, id); err != nil {
			return fmt.Errorf("increment entry: %w", err)
		}

		entry, err = s.entries.Get(ctx, binderID, id)
		if err != nil {
			return fmt.Errorf("reload entry: %w", err)
		}

		return s.refreshSnapshot(ctx, binderID, entry)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "card added to binder",
		slog.Int64("binder_id", binderID),
		slog.String("card_id", id),
		slog.Int("qty", entry.Qty),
	)

	if s.notifier != nil {
		go s.notifier.CardAdded(b.AccountID, binderID, id, entry.Qty)
	}

	return s.present(entry), nil
}
