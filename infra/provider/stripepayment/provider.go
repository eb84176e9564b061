package stripepayment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amirasaad/fxpay/pkg/config"
	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/provider/payment"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Option customizes the Stripe client.
type Option func(*options)

type options struct {
	backends *stripe.Backends
}

// WithBackends routes API calls through custom backends (tests, proxies).
func WithBackends(b *stripe.Backends) Option {
	return func(o *options) { o.backends = b }
}

// StripePaymentProvider implements payment.Processor using the Stripe API.
type StripePaymentProvider struct {
	client        *stripe.Client
	signingSecret string
	logger        *slog.Logger
}

var _ payment.Processor = (*StripePaymentProvider)(nil)

// New creates a provider from cfg. The client is built once and shared.
func New(
	cfg *config.Stripe,
	logger *slog.Logger,
	opts ...Option,
) *StripePaymentProvider {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	var clientOpts []stripe.ClientOption
	if o.backends != nil {
		clientOpts = append(clientOpts, stripe.WithBackends(o.backends))
	}
	return &StripePaymentProvider{
		client:        stripe.NewClient(cfg.ApiKey, clientOpts...),
		signingSecret: cfg.SigningSecret,
		logger:        logger.With("provider", "stripe"),
	}
}

// paymentMethodTypes maps a caller method to Stripe payment method types.
func paymentMethodTypes(m payment.Method) []*string {
	if m == payment.MethodBank {
		return stripe.StringSlice([]string{"sepa_debit"})
	}
	return stripe.StringSlice([]string{"card"})
}

// CreateIntent creates a PaymentIntent in Stripe.
func (s *StripePaymentProvider) CreateIntent(
	ctx context.Context,
	params *payment.CreateIntentParams,
) (*payment.Intent, error) {
	log := s.logger.With(
		"handler", "stripe.CreateIntent",
		"amount", params.Amount,
		"currency", params.Currency,
	)

	p := &stripe.PaymentIntentCreateParams{
		Amount:             stripe.Int64(params.Amount),
		Currency:           stripe.String(strings.ToLower(params.Currency)),
		PaymentMethodTypes: paymentMethodTypes(params.Method),
	}
	for k, v := range params.Metadata {
		p.AddMetadata(k, v)
	}
	if params.IdempotencyKey != "" {
		p.SetIdempotencyKey(params.IdempotencyKey)
	}

	pi, err := s.client.V1PaymentIntents.Create(ctx, p)
	if err != nil {
		mapped := mapStripeError(err, "")
		log.Error("failed to create payment intent", "error", mapped)
		return nil, mapped
	}
	log.Info("🛒 Payment intent created", "payment_intent_id", pi.ID)
	return toIntent(pi), nil
}

// RetrieveIntent reads a PaymentIntent from Stripe.
func (s *StripePaymentProvider) RetrieveIntent(
	ctx context.Context,
	id string,
) (*payment.Intent, error) {
	pi, err := s.client.V1PaymentIntents.Retrieve(ctx, id, nil)
	if err != nil {
		mapped := mapStripeError(err, id)
		s.logger.Warn("failed to retrieve payment intent",
			"handler", "stripe.RetrieveIntent",
			"payment_intent_id", id,
			"error", mapped,
		)
		return nil, mapped
	}
	return toIntent(pi), nil
}

// ConstructEvent verifies the Stripe-Signature header and parses the event.
func (s *StripePaymentProvider) ConstructEvent(
	payload []byte,
	signature string,
) (*payment.Event, error) {
	return ConstructEvent(payload, signature, s.signingSecret)
}

// ConstructEvent verifies payload against a Stripe-style signature header
// and converts it to a payment.Event.
func ConstructEvent(payload []byte, signature, secret string) (*payment.Event, error) {
	if secret == "" {
		return nil, &domain.SignatureError{Err: errors.New("webhook signing secret not configured")}
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, &domain.SignatureError{Err: err}
	}
	return ParseEvent(event)
}

// ParseEvent converts a verified stripe.Event. Payment intent payloads are
// decoded; other event types carry a nil Intent.
func ParseEvent(event stripe.Event) (*payment.Event, error) {
	out := &payment.Event{
		ID:   event.ID,
		Type: payment.EventType(event.Type),
	}
	if !strings.HasPrefix(string(event.Type), "payment_intent.") {
		return out, nil
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("event %s: missing data", event.ID)
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("event %s: failed to unmarshal payment intent: %w", event.ID, err)
	}
	if pi.ID == "" {
		return nil, fmt.Errorf("event %s: payment intent ID is empty", event.ID)
	}
	out.Intent = toIntent(&pi)
	return out, nil
}

func toIntent(pi *stripe.PaymentIntent) *payment.Intent {
	metadata := make(map[string]string, len(pi.Metadata))
	for k, v := range pi.Metadata {
		metadata[k] = v
	}
	return &payment.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       payment.Status(pi.Status),
		Amount:       pi.Amount,
		Currency:     strings.ToUpper(string(pi.Currency)),
		Metadata:     metadata,
		CreatedAt:    time.Unix(pi.Created, 0).UTC(),
	}
}

// mapStripeError classifies SDK errors. Caller faults keep Stripe's status
// and message; outages surface as 5xx.
func mapStripeError(err error, id string) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		if serr.Code == stripe.ErrorCodeResourceMissing && id != "" {
			return &domain.NotFoundError{Resource: "payment intent", ID: id}
		}
		switch serr.Type {
		case stripe.ErrorTypeCard, stripe.ErrorTypeInvalidRequest, stripe.ErrorTypeIdempotency:
			status := serr.HTTPStatusCode
			if status < 400 || status >= 500 {
				status = http.StatusBadRequest
			}
			return domain.NewProcessorError(status, string(serr.Code), serr.Msg, err)
		default:
			return domain.NewProcessorError(http.StatusInternalServerError, string(serr.Code), serr.Msg, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewProcessorError(http.StatusGatewayTimeout, "processor_timeout",
			"payment processor did not respond in time", err)
	}
	if errors.Is(err, context.Canceled) {
		return domain.NewProcessorError(http.StatusInternalServerError, "request_canceled",
			"request canceled", err)
	}
	return domain.NewProcessorError(http.StatusBadGateway, "processor_unavailable",
		"payment processor unavailable", err)
}
