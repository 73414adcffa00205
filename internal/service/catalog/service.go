// Package catalog implements read access to the shared card catalog.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type cardRepo interface {
	GetByID(ctx context.Context, cardID string) (*domain.Card, error)
	Search(ctx context.Context, filter domain.CardFilter, limit, offset int) ([]domain.Card, int, error)
}

// SearchResult is one page of catalog matches plus the total match count,
// so clients can paginate without a second query.
type SearchResult struct {
	Cards  []domain.Card `json:"cards"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// Service implements catalog lookups and paged search.
type Service struct {
	log   *slog.Logger
	cards cardRepo
}

// NewService creates a new Catalog service.
func NewService(logger *slog.Logger, cards cardRepo) *Service {
	return &Service{
		log:   logger.With("service", "catalog"),
		cards: cards,
	}
}

// GetCard returns a single catalog card by id.
func (s *Service) GetCard(ctx context.Context, cardID string) (*domain.Card, error) {
	if cardID == "" {
		return nil, domain.NewValidationError("cardId", "required")
	}

	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("get card %s: %w", cardID, err)
	}

	return card, nil
}

// Search returns a page of catalog cards matching the filter, ordered by
// name. Out-of-range paging values are clamped rather than rejected.
func (s *Service) Search(ctx context.Context, filter domain.CardFilter, limit, offset int) (*SearchResult, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	cards, total, err := s.cards.Search(ctx, filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search cards: %w", err)
	}

	return &SearchResult{
		Cards:  cards,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultLimit
	case limit > maxLimit:
		return maxLimit
	default:
		return limit
	}
}
