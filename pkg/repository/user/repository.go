package user

import (
	"context"

	"github.com/amirasaad/fxpay/pkg/domain"
)

// Repository defines user persistence.
type Repository interface {
	// Create inserts a user; a taken email yields domain.ErrAlreadyExists.
	Create(ctx context.Context, u *domain.User) error

	// GetByEmail returns the user or domain.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
