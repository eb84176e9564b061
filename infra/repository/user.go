package repository

import (
	"context"
	"strings"

	"github.com/amirasaad/fxpay/pkg/domain"
	repo "github.com/amirasaad/fxpay/pkg/repository/user"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository bound to db.
func NewUserRepository(db *gorm.DB) repo.Repository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	m := User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.HashedPassword,
		CreatedAt:    u.CreatedAt,
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m User
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("LOWER(email) = ?", strings.ToLower(email)).
			First(&m).Error
	}); err != nil {
		return nil, err
	}
	return &domain.User{
		ID:             m.ID,
		Email:          m.Email,
		HashedPassword: m.PasswordHash,
		CreatedAt:      m.CreatedAt,
	}, nil
}
