// Package payment is the only component that talks to the payment
// processor. It validates and converts requests, creates and reads payment
// intents, and records the outcome without ever failing a request whose
// payment side effect already happened.
package payment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/exchange"
	"github.com/amirasaad/fxpay/pkg/money"
	"github.com/amirasaad/fxpay/pkg/provider/payment"
	"github.com/amirasaad/fxpay/pkg/service/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordingWarning is returned to callers when the payment went through
// but the local record could not be written or updated.
const RecordingWarning = "payment processed but the transaction record could not be saved"

// DefaultTimeout bounds each processor call when none is configured.
const DefaultTimeout = 10 * time.Second

// Service orchestrates payment intents.
type Service struct {
	processor    payment.Processor
	validator    *exchange.Validator
	currencies   *money.Table
	transactions *transaction.Service
	timeout      time.Duration
	logger       *slog.Logger
}

// Deps are the collaborators of Service.
type Deps struct {
	Processor    payment.Processor
	Validator    *exchange.Validator
	Currencies   *money.Table
	Transactions *transaction.Service
	Timeout      time.Duration
	Logger       *slog.Logger
}

// New creates a payment Service.
func New(deps Deps) *Service {
	if deps.Timeout <= 0 {
		deps.Timeout = DefaultTimeout
	}
	if deps.Currencies == nil {
		deps.Currencies = money.Default
	}
	if deps.Validator == nil {
		deps.Validator = exchange.NewValidator(nil, nil)
	}
	return &Service{
		processor:    deps.Processor,
		validator:    deps.Validator,
		currencies:   deps.Currencies,
		transactions: deps.Transactions,
		timeout:      deps.Timeout,
		logger:       deps.Logger.With("service", "payment"),
	}
}

// CreateIntent creates a payment intent for minor units of currency. Each
// attempt is bounded by the configured timeout; a timed-out attempt is
// retried once with the same idempotency key so the processor cannot create
// a second intent.
func (s *Service) CreateIntent(
	ctx context.Context,
	minor int64,
	currency money.Code,
	method payment.Method,
	metadata map[string]string,
	idempotencyKey string,
) (*payment.Intent, error) {
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	params := &payment.CreateIntentParams{
		Amount:         minor,
		Currency:       currency.String(),
		Method:         method,
		Metadata:       metadata,
		IdempotencyKey: idempotencyKey,
	}

	var (
		intent *payment.Intent
		err    error
	)
	for attempt := 1; attempt <= 2; attempt++ {
		intent, err = s.createOnce(ctx, params)
		if err == nil || !isTimeout(err) || ctx.Err() != nil {
			break
		}
		s.logger.Warn("payment intent creation timed out, retrying",
			"attempt", attempt,
			"idempotency_key", idempotencyKey,
		)
	}
	if err != nil {
		return nil, asProcessorError(err)
	}
	return intent, nil
}

func (s *Service) createOnce(ctx context.Context, params *payment.CreateIntentParams) (*payment.Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.processor.CreateIntent(ctx, params)
}

// RetrieveIntent reads an intent, bounded by the configured timeout.
func (s *Service) RetrieveIntent(ctx context.Context, id string) (*payment.Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	intent, err := s.processor.RetrieveIntent(ctx, id)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return nil, err
		}
		return nil, asProcessorError(err)
	}
	return intent, nil
}

// VerifyWebhookSignature authenticates a webhook delivery. Any failure is a
// *domain.SignatureError.
func (s *Service) VerifyWebhookSignature(payload []byte, header string) (*payment.Event, error) {
	evt, err := s.processor.ConstructEvent(payload, header)
	if err != nil {
		var se *domain.SignatureError
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, &domain.SignatureError{Err: err}
	}
	return evt, nil
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

func asProcessorError(err error) error {
	var pe *domain.ProcessorError
	if errors.As(err, &pe) {
		return pe
	}
	if isTimeout(err) {
		return domain.NewProcessorError(504, "processor_timeout",
			"payment processor did not respond in time", err)
	}
	return domain.NewProcessorError(500, "processor_error", err.Error(), err)
}

// toMinor converts a validated major-unit amount.
func (s *Service) toMinor(amount decimal.Decimal, code money.Code) (int64, error) {
	minor, err := s.currencies.ToMinorUnits(amount, code)
	if err != nil || minor <= 0 {
		return 0, domain.NewValidationError(domain.CodeInvalidAmount,
			"amount is not representable in "+code.String())
	}
	return minor, nil
}
