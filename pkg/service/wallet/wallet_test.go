package wallet

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/amirasaad/fxpay/infra/repository/memory"
	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() (*Service, *memory.UoW) {
	uow := memory.NewUoW(memory.NewStore())
	return New(uow, money.Default, slog.New(slog.NewTextHandler(io.Discard, nil))), uow
}

func credit(t *testing.T, uow *memory.UoW, userID uuid.UUID, currency string, amount int64) error {
	t.Helper()
	repo, err := uow.WalletRepository()
	require.NoError(t, err)
	return repo.Credit(context.Background(), userID, currency, amount)
}

func register(t *testing.T, uow *memory.UoW, email string) uuid.UUID {
	t.Helper()
	repo, err := uow.UserRepository()
	require.NoError(t, err)
	u := &domain.User{ID: uuid.New(), Email: email, HashedPassword: "x"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u.ID
}

// fund runs two concurrent credits of 100 on a balance of 100.
func fund(t *testing.T, credit func() error) {
	t.Helper()
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			assert.NoError(t, credit())
		}()
	}
	close(start)
	wg.Wait()
}

func TestConcurrentFunding_AtomicDelta(t *testing.T) {
	svc, uow := newService()
	ctx := context.Background()
	userID := uuid.New()
	require.NoError(t, credit(t, uow, userID, "USD", 100))

	fund(t, func() error { return credit(t, uow, userID, "USD", 100) })

	balances, err := svc.Balances(ctx, userID)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, int64(300), balances[0].Minor)
	assert.True(t, decimal.RequireFromString("3").Equal(balances[0].Amount))
}

// naiveWallet reproduces the read-then-write increment. The barrier makes
// both readers observe the same balance before either writes.
type naiveWallet struct {
	mu      sync.Mutex
	balance int64
	readers sync.WaitGroup
}

func (n *naiveWallet) read() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.balance
}

func (n *naiveWallet) write(v int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.balance = v
}

func (n *naiveWallet) credit(amount int64) error {
	current := n.read()
	n.readers.Done()
	n.readers.Wait()
	n.write(current + amount)
	return nil
}

func TestConcurrentFunding_NaiveReadWriteLosesUpdate(t *testing.T) {
	n := &naiveWallet{balance: 100}
	n.readers.Add(2)

	fund(t, func() error { return n.credit(100) })

	assert.Equal(t, int64(200), n.read(), "read-then-write must lose one update")
}

func TestTransfer(t *testing.T) {
	svc, uow := newService()
	ctx := context.Background()
	sender := register(t, uow, "sender@example.com")
	recipient := register(t, uow, "recipient@example.com")
	require.NoError(t, credit(t, uow, sender, "JPY", 1000))

	out, err := svc.Transfer(ctx, TransferInput{
		FromUserID: sender,
		ToEmail:    " Recipient@Example.com ",
		Currency:   money.JPY,
		Amount:     decimal.RequireFromString("400"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeTransferOut, out.Type)
	assert.Equal(t, domain.TransactionStatusCompleted, out.Status)
	assert.Equal(t, int64(400), out.Amount)

	from, err := svc.Balances(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, int64(600), from[0].Minor)
	to, err := svc.Balances(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(400), to[0].Minor)

	txs, err := uow.TransactionRepository()
	require.NoError(t, err)
	received, err := txs.ListByUser(ctx, recipient)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, domain.TransactionTypeTransferIn, received[0].Type)
}

func TestTransfer_InsufficientFundsWritesNothing(t *testing.T) {
	svc, uow := newService()
	ctx := context.Background()
	sender := register(t, uow, "a@example.com")
	recipient := register(t, uow, "b@example.com")
	require.NoError(t, credit(t, uow, sender, "USD", 500))

	_, err := svc.Transfer(ctx, TransferInput{
		FromUserID: sender,
		ToEmail:    "b@example.com",
		Currency:   money.USD,
		Amount:     decimal.RequireFromString("5.01"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	from, err := svc.Balances(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, int64(500), from[0].Minor)
	to, err := svc.Balances(ctx, recipient)
	require.NoError(t, err)
	assert.Empty(t, to)

	txs, _ := uow.TransactionRepository()
	sent, err := txs.ListByUser(ctx, sender)
	require.NoError(t, err)
	assert.Empty(t, sent)
}

func TestTransfer_Rejected(t *testing.T) {
	svc, uow := newService()
	sender := register(t, uow, "self@example.com")
	require.NoError(t, credit(t, uow, sender, "USD", 500))

	tests := []struct {
		name    string
		in      TransferInput
		code    string
		missing bool
	}{
		{"zero amount", TransferInput{ToEmail: "self@example.com", Currency: money.USD, Amount: decimal.Zero}, domain.CodeInvalidAmount, false},
		{"rounds to zero", TransferInput{ToEmail: "self@example.com", Currency: money.USD, Amount: decimal.RequireFromString("0.001")}, domain.CodeInvalidAmount, false},
		{"huge exponent", TransferInput{ToEmail: "self@example.com", Currency: money.USD, Amount: decimal.RequireFromString("1e50000000")}, domain.CodeInvalidAmount, false},
		{"own wallet", TransferInput{ToEmail: "SELF@example.com", Currency: money.USD, Amount: decimal.NewFromInt(1)}, domain.CodeInvalidRecipient, false},
		{"unknown recipient", TransferInput{ToEmail: "nobody@example.com", Currency: money.USD, Amount: decimal.NewFromInt(1)}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.FromUserID = sender
			_, err := svc.Transfer(context.Background(), tt.in)
			if tt.missing {
				assert.ErrorIs(t, err, domain.ErrNotFound)
				return
			}
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.code, ve.Code)
		})
	}

	balances, err := svc.Balances(context.Background(), sender)
	require.NoError(t, err)
	assert.Equal(t, int64(500), balances[0].Minor)
}
