package repository

import (
	"context"

	"github.com/amirasaad/fxpay/pkg/repository/beneficiary"
	"github.com/amirasaad/fxpay/pkg/repository/transaction"
	"github.com/amirasaad/fxpay/pkg/repository/user"
	"github.com/amirasaad/fxpay/pkg/repository/wallet"
)

// UnitOfWork defines the contract for transactional work and type-safe repository access.
//
// Do runs fn in a transaction boundary. Repositories obtained from the
// UnitOfWork passed to fn share that transaction; if fn returns an error
// every write made through them is rolled back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	TransactionRepository() (transaction.Repository, error)
	WalletRepository() (wallet.Repository, error)
	BeneficiaryRepository() (beneficiary.Repository, error)
	UserRepository() (user.Repository, error)
}
