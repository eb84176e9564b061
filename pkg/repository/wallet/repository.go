package wallet

import (
	"context"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/google/uuid"
)

// Repository defines balance access. Credit and Debit are single atomic
// statements at the storage layer; callers never read-modify-write.
type Repository interface {
	// Credit adds amount (minor units) to the balance, creating the wallet if needed.
	Credit(ctx context.Context, userID uuid.UUID, currency string, amount int64) error

	// Debit subtracts amount only if the balance covers it.
	// It returns domain.ErrInsufficientFunds otherwise.
	Debit(ctx context.Context, userID uuid.UUID, currency string, amount int64) error

	// Get returns one wallet or domain.ErrNotFound.
	Get(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error)

	// ListByUser returns every wallet of the user ordered by currency.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Wallet, error)
}
