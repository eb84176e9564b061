package beneficiary

import (
	"context"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/google/uuid"
)

// Repository defines beneficiary persistence.
type Repository interface {
	// Create inserts a beneficiary. Duplicate bank details for the same
	// user and currency yield domain.ErrAlreadyExists.
	Create(ctx context.Context, b *domain.Beneficiary) error

	// ListByUser returns the user's beneficiaries.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Beneficiary, error)
}
