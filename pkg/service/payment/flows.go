package payment

import (
	"context"
	"errors"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/exchange"
	"github.com/amirasaad/fxpay/pkg/money"
	"github.com/amirasaad/fxpay/pkg/provider/payment"
	"github.com/amirasaad/fxpay/pkg/service/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExchangeInput is a create-payment-intent request. A request with only
// Currency set is the degenerate exchange where source equals destination.
type ExchangeInput struct {
	Amount         exchange.Amount
	Currency       string
	FromCurrency   string
	ToCurrency     string
	PaymentMethod  string
	UserID         *uuid.UUID
	UserReference  string
	IdempotencyKey string
}

// FundInput is a wallet funding request.
type FundInput struct {
	Amount         exchange.Amount
	Currency       string
	UserID         *uuid.UUID
	IdempotencyKey string
}

// IntentResult is returned by the create flows.
type IntentResult struct {
	ClientSecret    string
	PaymentIntentID string
	TransactionID   uuid.UUID
	Warning         string
}

// Verification is the caller-facing view of a retrieved intent.
type Verification struct {
	Status   payment.Status
	Amount   decimal.Decimal
	Currency string
	Metadata map[string]string
	Warning  string
}

// CreateExchangePayment validates, converts, creates the intent and records
// a pending exchange transaction.
func (s *Service) CreateExchangePayment(ctx context.Context, in ExchangeInput) (*IntentResult, error) {
	from, to := in.FromCurrency, in.ToCurrency
	if from == "" {
		from = in.Currency
	}
	if to == "" {
		to = from
	}
	req, err := s.validator.Validate(exchange.Request{
		Amount:              in.Amount,
		SourceCurrency:      from,
		DestinationCurrency: to,
		UserReference:       in.UserReference,
	})
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{
		payment.MetaType:         string(domain.TransactionTypeExchange),
		payment.MetaFromCurrency: req.SourceCurrency.String(),
		payment.MetaToCurrency:   req.DestinationCurrency.String(),
	}
	if in.UserID != nil {
		metadata[payment.MetaUserID] = in.UserID.String()
	}
	if req.UserReference != "" {
		metadata[payment.MetaUserReference] = req.UserReference
	}

	return s.createAndRecord(ctx, createRequest{
		amount:         req.Amount,
		currency:       req.SourceCurrency,
		method:         payment.ParseMethod(in.PaymentMethod),
		metadata:       metadata,
		userID:         in.UserID,
		txType:         domain.TransactionTypeExchange,
		idempotencyKey: in.IdempotencyKey,
	})
}

// FundWallet creates an intent to top up the user's wallet in Currency.
// The wallet is credited only when the processor reports success.
func (s *Service) FundWallet(ctx context.Context, in FundInput) (*IntentResult, error) {
	req, err := s.validator.Validate(exchange.Request{
		Amount:              in.Amount,
		SourceCurrency:      in.Currency,
		DestinationCurrency: in.Currency,
	})
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{
		payment.MetaType:         string(domain.TransactionTypeWalletFunding),
		payment.MetaFromCurrency: req.SourceCurrency.String(),
		payment.MetaToCurrency:   req.DestinationCurrency.String(),
	}
	if in.UserID != nil {
		metadata[payment.MetaUserID] = in.UserID.String()
	}

	return s.createAndRecord(ctx, createRequest{
		amount:         req.Amount,
		currency:       req.SourceCurrency,
		method:         payment.MethodCard,
		metadata:       metadata,
		userID:         in.UserID,
		txType:         domain.TransactionTypeWalletFunding,
		idempotencyKey: in.IdempotencyKey,
	})
}

type createRequest struct {
	amount         decimal.Decimal
	currency       money.Code
	method         payment.Method
	metadata       map[string]string
	userID         *uuid.UUID
	txType         domain.TransactionType
	idempotencyKey string
}

func (s *Service) createAndRecord(ctx context.Context, r createRequest) (*IntentResult, error) {
	minor, err := s.toMinor(r.amount, r.currency)
	if err != nil {
		return nil, err
	}

	intent, err := s.CreateIntent(ctx, minor, r.currency, r.method, r.metadata, r.idempotencyKey)
	if err != nil {
		return nil, err
	}
	result := &IntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}

	id, err := s.transactions.RecordPending(ctx, transaction.PendingInput{
		UserID:          r.userID,
		Amount:          minor,
		Currency:        r.currency.String(),
		Type:            r.txType,
		PaymentIntentID: intent.ID,
	})
	if err != nil {
		s.logger.Error("payment intent created but not recorded",
			"payment_intent_id", intent.ID,
			"type", r.txType,
			"error", err,
		)
		result.Warning = RecordingWarning
		return result, nil
	}
	result.TransactionID = id
	return result, nil
}

// VerifyPayment retrieves the intent and, once it is terminal, finalizes
// the matching record. For wallet funding the wallet is credited with the
// processor-reported amount, exactly once across verify calls and webhooks.
func (s *Service) VerifyPayment(ctx context.Context, paymentIntentID string) (*Verification, error) {
	intent, err := s.RetrieveIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, err
	}
	code := money.Code(intent.Currency)
	v := &Verification{
		Status:   intent.Status,
		Amount:   s.currencies.ToMajorUnits(intent.Amount, code),
		Currency: intent.Currency,
		Metadata: intent.Metadata,
	}

	status, terminal := FinalStatus(intent.Status)
	if !terminal {
		return v, nil
	}
	_, err = s.transactions.Settle(ctx, transaction.Settlement{
		PaymentIntentID: intent.ID,
		Status:          status,
		Amount:          intent.Amount,
		Currency:        intent.Currency,
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		s.logger.Info("no transaction recorded for payment intent", "payment_intent_id", intent.ID)
	default:
		s.logger.Error("failed to finalize transaction",
			"payment_intent_id", intent.ID,
			"status", status,
			"error", err,
		)
		v.Warning = RecordingWarning
	}
	return v, nil
}

// FinalStatus maps a processor status to a record status. Only succeeded
// and canceled are final.
func FinalStatus(s payment.Status) (domain.TransactionStatus, bool) {
	switch s {
	case payment.StatusSucceeded:
		return domain.TransactionStatusCompleted, true
	case payment.StatusCanceled:
		return domain.TransactionStatusFailed, true
	default:
		return "", false
	}
}
