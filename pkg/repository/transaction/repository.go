package transaction

import (
	"context"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/google/uuid"
)

// Repository defines data access for transaction records.
type Repository interface {
	// Create inserts a new transaction record.
	Create(ctx context.Context, tx *domain.Transaction) error

	// Get retrieves a transaction by its ID.
	Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)

	// GetByPaymentIntentID retrieves a transaction by its processor payment intent id.
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Transaction, error)

	// TransitionStatus sets status to `to` only if the row still holds `from`.
	// It reports whether the row was changed.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.TransactionStatus) (bool, error)

	// ListByUser lists all transactions for a given user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error)
}
