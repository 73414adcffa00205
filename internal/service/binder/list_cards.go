package binder

import (
	"context"
	"fmt"

	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
)

// ListCards returns the binder's cards with catalog details joined in,
// filtered and sorted. Entries with a valid snapshot are served from the
// decrypted token instead of the joined row.
func (s *Service) ListCards(ctx context.Context, binderID int64, filter domain.CardFilter, sortBy, direction string) ([]domain.BinderCard, error) {
	if _, err := s.AssertOwnership(ctx, binderID); err != nil {
		return nil, err
	}

	entries, err := s.entries.List(ctx, binderID, filter, sortBy, direction)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	cards := make([]domain.BinderCard, 0, len(entries))
	for i := range entries {
		cards = append(cards, *s.present(&entries[i]))
	}

	return cards, nil
}

// GetCard returns a single binder entry with catalog details.
func (s *Service) GetCard(ctx context.Context, binderID int64, cardID string) (*domain.BinderCard, error) {
	if _, err := s.AssertOwnership(ctx, binderID); err != nil {
		return nil, err
	}

	id, err := requireCardID(cardID)
	if err != nil {
		return nil, err
	}

	entry, err := s.entries.Get(ctx, binderID, id)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	return s.present(entry), nil
}
