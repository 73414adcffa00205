package binder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
)

// RemoveCard deletes the entry for a single card regardless of its quantity.
func (s *Service) RemoveCard(ctx context.Context, binderID int64, cardID string) error {
	if _, err := s.AssertOwnership(ctx, binderID); err != nil {
		return err
	}

	id, err := requireCardID(cardID)
	if err != nil {
		return err
	}

	affected, err := s.entries.Delete(ctx, binderID, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
	}

	s.log.InfoContext(ctx, "card removed from binder",
		slog.Int64("binder_id", binderID),
		slog.String("card_id", id),
	)

	return nil
}

// RemoveCards deletes a batch of entries in one transaction. Items are
// normalized first: blank ids are dropped and duplicate card/finish pairs
// collapse into one. The returned count is rows actually deleted, so absent
// entries reduce it rather than failing the batch.
func (s *Service) RemoveCards(ctx context.Context, binderID int64, items []domain.BulkRemoveItem) (int64, error) {
	if _, err := s.AssertOwnership(ctx, binderID); err != nil {
		return 0, err
	}

	keys := domain.NormalizeBulkRemove(items)
	if len(keys) == 0 {
		return 0, domain.NewValidationError("cards", "must be a non-empty array of card references")
	}

	var removed int64

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, key := range keys {
			affected, err := s.entries.DeleteMatching(ctx, binderID, key)
			if err != nil {
				return fmt.Errorf("delete entry %s: %w", key.CardID, err)
			}
			removed += affected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.InfoContext(ctx, "bulk removal completed",
		slog.Int64("binder_id", binderID),
		slog.Int("requested", len(keys)),
		slog.Int64("removed", removed),
	)

	return removed, nil
}
