package repository

import (
	"context"
	"time"

	"github.com/amirasaad/fxpay/pkg/domain"
	repo "github.com/amirasaad/fxpay/pkg/repository/wallet"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a wallet repository bound to db.
func NewWalletRepository(db *gorm.DB) repo.Repository {
	return &walletRepository{db: db}
}

// Credit inserts the wallet or adds to its balance in one statement.
func (r *walletRepository) Credit(
	ctx context.Context,
	userID uuid.UUID,
	currency string,
	amount int64,
) error {
	w := Wallet{
		UserID:    userID,
		Currency:  currency,
		Balance:   amount,
		UpdatedAt: time.Now().UTC(),
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "currency"}},
				DoUpdates: clause.Assignments(map[string]any{
					"balance":    gorm.Expr("wallets.balance + excluded.balance"),
					"updated_at": gorm.Expr("excluded.updated_at"),
				}),
			}).
			Create(&w).Error
	})
}

// Debit subtracts only while the balance covers amount.
func (r *walletRepository) Debit(
	ctx context.Context,
	userID uuid.UUID,
	currency string,
	amount int64,
) error {
	res := r.db.WithContext(ctx).
		Model(&Wallet{}).
		Where("user_id = ? AND currency = ? AND balance >= ?", userID, currency, amount).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrInsufficientFunds
	}
	return nil
}

func (r *walletRepository) Get(
	ctx context.Context,
	userID uuid.UUID,
	currency string,
) (*domain.Wallet, error) {
	var m Wallet
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("user_id = ? AND currency = ?", userID, currency).
			First(&m).Error
	}); err != nil {
		return nil, err
	}
	return toWalletDomain(&m), nil
}

func (r *walletRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Wallet, error) {
	var rows []Wallet
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("currency").
			Find(&rows).Error
	}); err != nil {
		return nil, err
	}
	out := make([]*domain.Wallet, 0, len(rows))
	for i := range rows {
		out = append(out, toWalletDomain(&rows[i]))
	}
	return out, nil
}

func toWalletDomain(m *Wallet) *domain.Wallet {
	return &domain.Wallet{
		UserID:    m.UserID,
		Currency:  m.Currency,
		Balance:   m.Balance,
		UpdatedAt: m.UpdatedAt,
	}
}
