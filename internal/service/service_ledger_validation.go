package service

import (
	"context"
	"fmt"

	"github.com/flashdeck/flashdeck/internal/validators"
	"github.com/flashdeck/flashdeck/models"
)

// LedgerValidationService decorates a [LedgerService] with structural
// validation of inbound changesets. It rejects malformed records before they
// can consume ledger USNs or touch entity tables.
type LedgerValidationService struct {
	inner     LedgerService
	validator validators.Validator
}

func NewLedgerValidationService(inner LedgerService) LedgerService {
	return &LedgerValidationService{
		inner:     inner,
		validator: validators.NewChangesetValidator(),
	}
}

// RecordChanges implements [LedgerService].
func (v *LedgerValidationService) RecordChanges(ctx context.Context, userID int64, changes models.Changeset) (int64, error) {
	if err := v.validator.Validate(ctx, changes); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidChangeset, err)
	}
	return v.inner.RecordChanges(ctx, userID, changes)
}

// LocalUSN implements [LedgerService].
func (v *LedgerValidationService) LocalUSN(ctx context.Context, userID int64) (int64, error) {
	return v.inner.LocalUSN(ctx, userID)
}
