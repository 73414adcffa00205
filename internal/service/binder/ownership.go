package binder

import (
	"context"
	"fmt"

	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
	"github.com/ferrisbrook/cardbinder-backend/pkg/ctxutil"
)

// AssertOwnership loads the binder and checks that the account in the context
// owns it. Failure modes stay distinct: a malformed id is a validation error,
// a missing binder is not found, and a binder owned by someone else is
// forbidden. Handlers map each to its own status code.
func (s *Service) AssertOwnership(ctx context.Context, binderID int64) (*domain.Binder, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if binderID <= 0 {
		return nil, domain.NewValidationError("binderId", "must be a positive integer")
	}

	b, err := s.binders.GetByID(ctx, binderID)
	if err != nil {
		return nil, fmt.Errorf("get binder %d: %w", binderID, err)
	}

	if b.AccountID != accountID {
		return nil, domain.ErrForbidden
	}

	return b, nil
}
