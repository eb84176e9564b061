// Package memory provides in-process repositories used when no database is
// configured. A UnitOfWork.Do call holds the store lock for its whole
// duration and restores a snapshot if fn fails.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/repository"
	"github.com/amirasaad/fxpay/pkg/repository/beneficiary"
	"github.com/amirasaad/fxpay/pkg/repository/transaction"
	"github.com/amirasaad/fxpay/pkg/repository/user"
	"github.com/amirasaad/fxpay/pkg/repository/wallet"
	"github.com/google/uuid"
)

type walletKey struct {
	userID   uuid.UUID
	currency string
}

type state struct {
	transactions  map[uuid.UUID]domain.Transaction
	wallets       map[walletKey]domain.Wallet
	beneficiaries map[uuid.UUID]domain.Beneficiary
	users         map[string]domain.User
}

func (s state) clone() state {
	return state{
		transactions:  maps.Clone(s.transactions),
		wallets:       maps.Clone(s.wallets),
		beneficiaries: maps.Clone(s.beneficiaries),
		users:         maps.Clone(s.users),
	}
}

// Store is the shared in-memory state.
type Store struct {
	mu   sync.Mutex
	data state
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{data: state{
		transactions:  map[uuid.UUID]domain.Transaction{},
		wallets:       map[walletKey]domain.Wallet{},
		beneficiaries: map[uuid.UUID]domain.Beneficiary{},
		users:         map[string]domain.User{},
	}}
}

// UoW implements repository.UnitOfWork over a Store.
type UoW struct {
	store *Store
	// inTx is set for the UoW handed to Do's fn; the lock is already held.
	inTx bool
}

// NewUoW creates a UnitOfWork backed by store.
func NewUoW(store *Store) *UoW {
	return &UoW{store: store}
}

func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.inTx {
		return fn(u)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	snapshot := u.store.data.clone()
	if err := fn(&UoW{store: u.store, inTx: true}); err != nil {
		u.store.data = snapshot
		return err
	}
	return nil
}

func (u *UoW) with(fn func(s *state)) {
	if !u.inTx {
		u.store.mu.Lock()
		defer u.store.mu.Unlock()
	}
	fn(&u.store.data)
}

func (u *UoW) TransactionRepository() (transaction.Repository, error) {
	return &transactionRepository{uow: u}, nil
}

func (u *UoW) WalletRepository() (wallet.Repository, error) {
	return &walletRepository{uow: u}, nil
}

func (u *UoW) BeneficiaryRepository() (beneficiary.Repository, error) {
	return &beneficiaryRepository{uow: u}, nil
}

func (u *UoW) UserRepository() (user.Repository, error) {
	return &userRepository{uow: u}, nil
}
