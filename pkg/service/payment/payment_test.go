package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/amirasaad/fxpay/infra/provider/mockpayment"
	"github.com/amirasaad/fxpay/infra/repository/memory"
	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/exchange"
	"github.com/amirasaad/fxpay/pkg/provider/payment"
	"github.com/amirasaad/fxpay/pkg/repository"
	"github.com/amirasaad/fxpay/pkg/repository/beneficiary"
	txrepo "github.com/amirasaad/fxpay/pkg/repository/transaction"
	"github.com/amirasaad/fxpay/pkg/repository/user"
	"github.com/amirasaad/fxpay/pkg/repository/wallet"
	"github.com/amirasaad/fxpay/pkg/service/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc       *Service
	processor *mockpayment.MockPaymentProvider
	uow       *memory.UoW
}

func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	processor := mockpayment.NewMockPaymentProvider("")
	uow := memory.NewUoW(memory.NewStore())
	deps := Deps{
		Processor:    processor,
		Transactions: transaction.New(uow, logger),
		Timeout:      time.Second,
		Logger:       logger,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &fixture{svc: New(deps), processor: processor, uow: uow}
}

func TestCreateExchangePayment_InvalidInputNeverReachesProcessor(t *testing.T) {
	tests := []struct {
		name string
		in   ExchangeInput
		code string
	}{
		{"zero amount", ExchangeInput{Amount: "0", FromCurrency: "USD", ToCurrency: "EUR"}, domain.CodeInvalidAmount},
		{"negative amount", ExchangeInput{Amount: "-5", FromCurrency: "USD", ToCurrency: "EUR"}, domain.CodeInvalidAmount},
		{"non numeric", ExchangeInput{Amount: "abc", FromCurrency: "USD", ToCurrency: "EUR"}, domain.CodeInvalidAmount},
		{"huge exponent", ExchangeInput{Amount: "1e50000000", Currency: "USD"}, domain.CodeInvalidAmount},
		{"missing currency", ExchangeInput{Amount: "10"}, domain.CodeMissingCurrency},
		{"unsupported", ExchangeInput{Amount: "10", FromCurrency: "USD", ToCurrency: "XYZ"}, domain.CodeUnsupportedCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.CreateExchangePayment(context.Background(), tt.in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.code, ve.Code)
			assert.Empty(t, f.processor.CreateCalls())
			assert.Zero(t, f.processor.Intents())
		})
	}
}

func TestCreateExchangePayment_Success(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	res, err := f.svc.CreateExchangePayment(context.Background(), ExchangeInput{
		Amount:        "10.50",
		FromCurrency:  "usd",
		ToCurrency:    "EUR",
		UserID:        &userID,
		UserReference: "invoice-42",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ClientSecret)
	assert.NotEmpty(t, res.PaymentIntentID)
	assert.Empty(t, res.Warning)

	calls := f.processor.CreateCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, int64(1050), calls[0].Amount)
	assert.Equal(t, "USD", calls[0].Currency)
	assert.Equal(t, "exchange", calls[0].Metadata[payment.MetaType])
	assert.Equal(t, "USD", calls[0].Metadata[payment.MetaFromCurrency])
	assert.Equal(t, "EUR", calls[0].Metadata[payment.MetaToCurrency])
	assert.Equal(t, userID.String(), calls[0].Metadata[payment.MetaUserID])
	assert.Equal(t, "invoice-42", calls[0].Metadata[payment.MetaUserReference])

	repo, _ := f.uow.TransactionRepository()
	tx, err := repo.GetByPaymentIntentID(context.Background(), res.PaymentIntentID)
	require.NoError(t, err)
	assert.Equal(t, res.TransactionID, tx.ID)
	assert.Equal(t, domain.TransactionStatusPending, tx.Status)
	assert.Equal(t, domain.TransactionTypeExchange, tx.Type)
	assert.Equal(t, int64(1050), tx.Amount)
	assert.Equal(t, "USD", tx.Currency)
}

func TestCreateExchangePayment_ReplayedKeyReturnsExistingRecord(t *testing.T) {
	f := newFixture(t)
	in := ExchangeInput{Amount: "12", FromCurrency: "USD", ToCurrency: "EUR", IdempotencyKey: "k1"}

	first, err := f.svc.CreateExchangePayment(context.Background(), in)
	require.NoError(t, err)
	second, err := f.svc.CreateExchangePayment(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first.PaymentIntentID, second.PaymentIntentID)
	assert.Empty(t, second.Warning)
	assert.NotEqual(t, uuid.Nil, second.TransactionID)
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, 1, f.processor.Intents())
}

func TestCreateExchangePayment_ZeroDecimalCurrency(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateExchangePayment(context.Background(), ExchangeInput{Amount: "1000", Currency: "JPY"})
	require.NoError(t, err)

	calls := f.processor.CreateCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, int64(1000), calls[0].Amount)
	assert.Equal(t, "JPY", calls[0].Metadata[payment.MetaToCurrency])
}

func TestCreateExchangePayment_ProcessorErrorPassesThrough(t *testing.T) {
	f := newFixture(t)
	f.processor.FailNextCreate(domain.NewProcessorError(http.StatusPaymentRequired,
		"card_declined", "Your card was declined.", nil))

	_, err := f.svc.CreateExchangePayment(context.Background(), ExchangeInput{Amount: "5", Currency: "USD"})
	var pe *domain.ProcessorError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusPaymentRequired, pe.Status)
	assert.Equal(t, "card_declined", pe.Code)
	assert.Len(t, f.processor.CreateCalls(), 1)
}

func TestCreateExchangePayment_RecordingFailureReturnsWarning(t *testing.T) {
	f := newFixture(t, func(d *Deps) {
		d.Transactions = transaction.New(brokenUoW{}, d.Logger)
	})

	res, err := f.svc.CreateExchangePayment(context.Background(), ExchangeInput{Amount: "5", Currency: "USD"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ClientSecret)
	assert.Equal(t, RecordingWarning, res.Warning)
	assert.Equal(t, 1, f.processor.Intents())
}

func TestCreateIntent_RetriesOnceOnTimeoutWithSameKey(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.Timeout = 20 * time.Millisecond })
	f.processor.DelayNextCreate(time.Second)

	intent, err := f.svc.CreateIntent(context.Background(), 500, "USD", payment.MethodCard, nil, "key-1")
	require.NoError(t, err)
	assert.NotEmpty(t, intent.ID)

	calls := f.processor.CreateCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "key-1", calls[0].IdempotencyKey)
	assert.Equal(t, "key-1", calls[1].IdempotencyKey)
	assert.Equal(t, 1, f.processor.Intents())
}

func TestCreateIntent_GivesUpAfterSecondTimeout(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.Timeout = 20 * time.Millisecond })
	f.processor.DelayNextCreate(time.Second)
	f.processor.DelayNextCreate(time.Second)

	_, err := f.svc.CreateIntent(context.Background(), 500, "USD", payment.MethodCard, nil, "")
	var pe *domain.ProcessorError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusGatewayTimeout, pe.Status)
	assert.Len(t, f.processor.CreateCalls(), 2)
	assert.Zero(t, f.processor.Intents())
}

func TestCreateIntent_DoesNotRetryNonTimeout(t *testing.T) {
	f := newFixture(t)
	f.processor.FailNextCreate(errors.New("boom"))

	_, err := f.svc.CreateIntent(context.Background(), 500, "USD", payment.MethodCard, nil, "")
	var pe *domain.ProcessorError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusInternalServerError, pe.Status)
	assert.Len(t, f.processor.CreateCalls(), 1)
}

func TestFundWallet_RecordsWalletFunding(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	res, err := f.svc.FundWallet(context.Background(), FundInput{Amount: "25", Currency: "gbp", UserID: &userID})
	require.NoError(t, err)

	calls := f.processor.CreateCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "wallet_funding", calls[0].Metadata[payment.MetaType])
	assert.Equal(t, "GBP", calls[0].Metadata[payment.MetaFromCurrency])
	assert.Equal(t, "GBP", calls[0].Metadata[payment.MetaToCurrency])

	repo, _ := f.uow.TransactionRepository()
	tx, err := repo.GetByPaymentIntentID(context.Background(), res.PaymentIntentID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeWalletFunding, tx.Type)
	assert.Equal(t, int64(2500), tx.Amount)
}

func TestVerifyPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	res, err := f.svc.FundWallet(ctx, FundInput{Amount: "12.34", Currency: "EUR", UserID: &userID})
	require.NoError(t, err)

	v, err := f.svc.VerifyPayment(ctx, res.PaymentIntentID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusRequiresPaymentMethod, v.Status)
	assert.True(t, decimal.RequireFromString("12.34").Equal(v.Amount))
	assert.Equal(t, "EUR", v.Currency)

	require.NoError(t, f.processor.Simulate(res.PaymentIntentID, payment.StatusSucceeded))
	for range 2 {
		v, err = f.svc.VerifyPayment(ctx, res.PaymentIntentID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusSucceeded, v.Status)
		assert.Empty(t, v.Warning)
	}

	repo, _ := f.uow.TransactionRepository()
	tx, err := repo.GetByPaymentIntentID(ctx, res.PaymentIntentID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, tx.Status)

	wallets, _ := f.uow.WalletRepository()
	w, err := wallets.Get(ctx, userID, "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(1234), w.Balance)
}

func TestVerifyPayment_CanceledMarksFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.CreateExchangePayment(ctx, ExchangeInput{Amount: "3", Currency: "USD"})
	require.NoError(t, err)
	require.NoError(t, f.processor.Simulate(res.PaymentIntentID, payment.StatusCanceled))

	_, err = f.svc.VerifyPayment(ctx, res.PaymentIntentID)
	require.NoError(t, err)

	repo, _ := f.uow.TransactionRepository()
	tx, err := repo.GetByPaymentIntentID(ctx, res.PaymentIntentID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusFailed, tx.Status)
}

func TestVerifyPayment_UnknownIntent(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.VerifyPayment(context.Background(), "pi_missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVerifyWebhookSignature(t *testing.T) {
	f := newFixture(t)
	intent, err := f.svc.CreateIntent(context.Background(), 100, "USD", payment.MethodCard, nil, "")
	require.NoError(t, err)

	payload, header, err := f.processor.SignedEvent("evt_1", payment.EventTypePaymentIntentSucceeded, intent.ID)
	require.NoError(t, err)

	evt, err := f.svc.VerifyWebhookSignature(payload, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", evt.ID)
	assert.Equal(t, intent.ID, evt.Intent.ID)

	_, err = f.svc.VerifyWebhookSignature(payload, "t=1,v1=deadbeef")
	var se *domain.SignatureError
	assert.ErrorAs(t, err, &se)
}

func TestFinalStatus(t *testing.T) {
	s, ok := FinalStatus(payment.StatusSucceeded)
	assert.True(t, ok)
	assert.Equal(t, domain.TransactionStatusCompleted, s)

	s, ok = FinalStatus(payment.StatusCanceled)
	assert.True(t, ok)
	assert.Equal(t, domain.TransactionStatusFailed, s)

	_, ok = FinalStatus(payment.StatusProcessing)
	assert.False(t, ok)
}

func TestNew_DefaultsValidator(t *testing.T) {
	f := newFixture(t, func(d *Deps) {
		d.Validator = exchange.NewValidator([]string{"USD"}, nil)
	})
	_, err := f.svc.CreateExchangePayment(context.Background(), ExchangeInput{Amount: "1", Currency: "EUR"})
	assert.True(t, domain.IsUnsupportedCurrency(err))
}

// brokenUoW fails every storage access.
type brokenUoW struct{}

var errDown = errors.New("database is down")

func (brokenUoW) Do(context.Context, func(repository.UnitOfWork) error) error { return errDown }
func (brokenUoW) TransactionRepository() (txrepo.Repository, error)           { return nil, errDown }
func (brokenUoW) WalletRepository() (wallet.Repository, error)                { return nil, errDown }
func (brokenUoW) BeneficiaryRepository() (beneficiary.Repository, error)      { return nil, errDown }
func (brokenUoW) UserRepository() (user.Repository, error)                    { return nil, errDown }
