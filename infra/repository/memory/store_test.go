package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWallet_ConcurrentCreditsDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	uow := NewUoW(NewStore())
	wallets, _ := uow.WalletRepository()
	userID := uuid.New()
	require.NoError(t, wallets.Credit(ctx, userID, "USD", 100))

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, wallets.Credit(ctx, userID, "USD", 100))
		}()
	}
	wg.Wait()

	w, err := wallets.Get(ctx, userID, "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(300), w.Balance)
}

func TestWallet_DebitChecksBalanceAtomically(t *testing.T) {
	ctx := context.Background()
	uow := NewUoW(NewStore())
	wallets, _ := uow.WalletRepository()
	userID := uuid.New()
	require.NoError(t, wallets.Credit(ctx, userID, "EUR", 100))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := wallets.Debit(ctx, userID, "EUR", 40)
			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, domain.ErrInsufficientFunds) {
				fail++
			} else if err == nil {
				ok++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, ok)
	assert.Equal(t, 3, fail)
	w, _ := wallets.Get(ctx, userID, "EUR")
	assert.Equal(t, int64(20), w.Balance)
}

func TestUoW_DoRestoresSnapshotOnError(t *testing.T) {
	ctx := context.Background()
	uow := NewUoW(NewStore())
	userID := uuid.New()
	boom := errors.New("boom")

	err := uow.Do(ctx, func(tx repository.UnitOfWork) error {
		wallets, _ := tx.WalletRepository()
		require.NoError(t, wallets.Credit(ctx, userID, "USD", 10))
		return boom
	})
	require.ErrorIs(t, err, boom)

	wallets, _ := uow.WalletRepository()
	_, err = wallets.Get(ctx, userID, "USD")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransactionRepository_TransitionStatus(t *testing.T) {
	ctx := context.Background()
	uow := NewUoW(NewStore())
	txs, _ := uow.TransactionRepository()
	pi := "pi_1"
	tx := &domain.Transaction{ID: uuid.New(), Amount: 10, Currency: "USD", Status: domain.TransactionStatusPending, PaymentIntentID: &pi}
	require.NoError(t, txs.Create(ctx, tx))

	dup := *tx
	dup.ID = uuid.New()
	assert.ErrorIs(t, txs.Create(ctx, &dup), domain.ErrAlreadyExists)

	changed, err := txs.TransitionStatus(ctx, tx.ID, domain.TransactionStatusPending, domain.TransactionStatusCompleted)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = txs.TransitionStatus(ctx, tx.ID, domain.TransactionStatusPending, domain.TransactionStatusFailed)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := txs.GetByPaymentIntentID(ctx, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, got.Status)
}

func TestBeneficiaryRepository_Duplicate(t *testing.T) {
	ctx := context.Background()
	uow := NewUoW(NewStore())
	repo, _ := uow.BeneficiaryRepository()
	userID := uuid.New()

	first := &domain.Beneficiary{ID: uuid.New(), UserID: userID, Currency: "GBP", BankDetails: map[string]string{"accountNumber": "12345678", "sortCode": "112233"}}
	require.NoError(t, repo.Create(ctx, first))

	second := &domain.Beneficiary{ID: uuid.New(), UserID: userID, Currency: "GBP", BankDetails: map[string]string{"sortCode": "112233", "accountNumber": "12345678"}}
	assert.ErrorIs(t, repo.Create(ctx, second), domain.ErrAlreadyExists)

	other := &domain.Beneficiary{ID: uuid.New(), UserID: uuid.New(), Currency: "GBP", BankDetails: second.BankDetails}
	assert.NoError(t, repo.Create(ctx, other))

	list, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUserRepository_EmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	uow := NewUoW(NewStore())
	users, _ := uow.UserRepository()

	require.NoError(t, users.Create(ctx, &domain.User{ID: uuid.New(), Email: "a@example.com"}))
	assert.ErrorIs(t, users.Create(ctx, &domain.User{ID: uuid.New(), Email: "A@example.com"}), domain.ErrAlreadyExists)

	_, err := users.GetByEmail(ctx, "A@EXAMPLE.COM")
	assert.NoError(t, err)
}
