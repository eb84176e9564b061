package repository

import (
	"context"

	"github.com/amirasaad/fxpay/pkg/repository"
	"github.com/amirasaad/fxpay/pkg/repository/beneficiary"
	"github.com/amirasaad/fxpay/pkg/repository/transaction"
	"github.com/amirasaad/fxpay/pkg/repository/user"
	"github.com/amirasaad/fxpay/pkg/repository/wallet"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
// Outside Do, repositories run on the pool; inside Do they share one *gorm.DB transaction.
type UoW struct {
	db *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn in a database transaction.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: tx})
	})
}

func (u *UoW) TransactionRepository() (transaction.Repository, error) {
	return NewTransactionRepository(u.db), nil
}

func (u *UoW) WalletRepository() (wallet.Repository, error) {
	return NewWalletRepository(u.db), nil
}

func (u *UoW) BeneficiaryRepository() (beneficiary.Repository, error) {
	return NewBeneficiaryRepository(u.db), nil
}

func (u *UoW) UserRepository() (user.Repository, error) {
	return NewUserRepository(u.db), nil
}
