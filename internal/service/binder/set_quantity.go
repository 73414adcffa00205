package binder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
)

// SetQuantity replaces the entry's quantity with an absolute value. A zero
// quantity removes the entry and returns a nil card, which handlers render as
// a null payload; deleting an already-absent entry is a no-op success. A
// positive quantity upserts, creating the entry when the card is in the
// catalog but not yet in the binder.
func (s *Service) SetQuantity(ctx context.Context, binderID int64, cardID string, qty int) (*domain.BinderCard, error) {
	if _, err := s.AssertOwnership(ctx, binderID); err != nil {
		return nil, err
	}

	id, err := requireCardID(cardID)
	if err != nil {
		return nil, err
	}

	if qty < 0 {
		return nil, domain.NewValidationError("qty", "must be a non-negative integer")
	}

	if qty == 0 {
		err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
			if _, err := s.entries.Delete(ctx, binderID, id); err != nil {
				return fmt.Errorf("delete entry: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		s.log.InfoContext(ctx, "card removed from binder",
			slog.Int64("binder_id", binderID),
			slog.String("card_id", id),
		)
		return nil, nil
	}

	var entry *domain.BinderEntry

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.catalog.GetByID(ctx, id); err != nil {
			return fmt.Errorf("get card %s: %w", id, err)
		}

		if err := s.entries.SetQty(ctx, binderID, id, qty); err != nil {
			return fmt.Errorf("set qty: %w", err)
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

	s.log.InfoContext(ctx, "card quantity updated",
		slog.Int64("binder_id", binderID),
		slog.String("card_id", id),
		slog.Int("qty", qty),
	)

	return s.present(entry), nil
}
