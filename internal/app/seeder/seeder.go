package seeder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
)

const (
	// DefaultMinCount is the catalog size below which seeding proceeds.
	DefaultMinCount = 120
	// defaultTargetSize is how many cards a full seed produces.
	defaultTargetSize = 150

	chunkSize = 50
)

// CatalogBulkRepo is the storage the seeder writes through.
type CatalogBulkRepo interface {
	Count(ctx context.Context) (int, error)
	UpsertBatch(ctx context.Context, cards []domain.Card) error
}

// Seeder loads the demo catalog in chunks.
type Seeder struct {
	log  *slog.Logger
	repo CatalogBulkRepo
}

// New creates a Seeder.
func New(logger *slog.Logger, repo CatalogBulkRepo) *Seeder {
	return &Seeder{
		log:  logger.With("component", "seeder"),
		repo: repo,
	}
}

// Run upserts the demo catalog. A table that already holds at least minCount
// cards still gets refreshed, since the deterministic ids make the upsert a
// no-op for unchanged rows.
func (s *Seeder) Run(ctx context.Context, minCount int) error {
	if minCount <= 0 {
		minCount = DefaultMinCount
	}

	current, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count cards: %w", err)
	}

	targetSize := defaultTargetSize
	if minCount > targetSize {
		targetSize = minCount
	}
	catalog := BuildCatalog(targetSize)

	if current >= minCount {
		s.log.InfoContext(ctx, "refreshing card catalog",
			slog.Int("entries", len(catalog)),
			slog.Int("existing", current),
		)
	} else {
		s.log.InfoContext(ctx, "seeding card catalog",
			slog.Int("entries", len(catalog)),
			slog.Int("existing", current),
		)
	}

	for i := 0; i < len(catalog); i += chunkSize {
		end := i + chunkSize
		if end > len(catalog) {
			end = len(catalog)
		}
		if err := s.repo.UpsertBatch(ctx, catalog[i:end]); err != nil {
			return fmt.Errorf("upsert chunk at %d: %w", i, err)
		}
	}

	s.log.InfoContext(ctx, "catalog seed complete", slog.Int("entries", len(catalog)))
	return nil
}
