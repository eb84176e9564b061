package mockpayment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/fxpay/infra/provider/stripepayment"
	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/provider/payment"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82/webhook"
)

// DefaultSigningSecret signs webhooks when none is configured.
const DefaultSigningSecret = "whsec_mock"

// MockPaymentProvider simulates the payment processor for tests and local
// development. It records every call, honours idempotency keys and signs
// webhook payloads the same way Stripe does.
//
// Intents stay in requires_payment_method until Simulate moves them.
type MockPaymentProvider struct {
	mu            sync.Mutex
	intents       map[string]*payment.Intent
	byKey         map[string]string
	createCalls   []payment.CreateIntentParams
	retrieveCalls int
	faults        []fault
	signingSecret string
}

type fault struct {
	delay time.Duration
	err   error
}

var _ payment.Processor = (*MockPaymentProvider)(nil)

// NewMockPaymentProvider creates a new instance of MockPaymentProvider.
func NewMockPaymentProvider(signingSecret string) *MockPaymentProvider {
	if signingSecret == "" {
		signingSecret = DefaultSigningSecret
	}
	return &MockPaymentProvider{
		intents:       make(map[string]*payment.Intent),
		byKey:         make(map[string]string),
		signingSecret: signingSecret,
	}
}

// FailNextCreate makes the next CreateIntent call return err.
func (m *MockPaymentProvider) FailNextCreate(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults = append(m.faults, fault{err: err})
}

// DelayNextCreate makes the next CreateIntent call block for d or until its
// context ends.
func (m *MockPaymentProvider) DelayNextCreate(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults = append(m.faults, fault{delay: d})
}

func (m *MockPaymentProvider) nextFault() (fault, bool) {
	if len(m.faults) == 0 {
		return fault{}, false
	}
	f := m.faults[0]
	m.faults = m.faults[1:]
	return f, true
}

// CreateIntent records the call and creates a requires_payment_method intent.
// A repeated idempotency key returns the original intent.
func (m *MockPaymentProvider) CreateIntent(
	ctx context.Context,
	params *payment.CreateIntentParams,
) (*payment.Intent, error) {
	m.mu.Lock()
	m.createCalls = append(m.createCalls, *params)
	f, hasFault := m.nextFault()
	m.mu.Unlock()

	if hasFault {
		if f.delay > 0 {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return nil, domain.NewProcessorError(http.StatusGatewayTimeout,
					"processor_timeout", "payment processor did not respond in time", ctx.Err())
			}
		}
		if f.err != nil {
			return nil, f.err
		}
	}

	if params.Amount <= 0 {
		return nil, domain.NewProcessorError(http.StatusBadRequest, "parameter_invalid_integer",
			"This value must be greater than or equal to 1.", nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if params.IdempotencyKey != "" {
		if id, ok := m.byKey[params.IdempotencyKey]; ok {
			return cloneIntent(m.intents[id]), nil
		}
	}

	id := "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
	metadata := make(map[string]string, len(params.Metadata))
	for k, v := range params.Metadata {
		metadata[k] = v
	}
	intent := &payment.Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		Status:       payment.StatusRequiresPaymentMethod,
		Amount:       params.Amount,
		Currency:     strings.ToUpper(params.Currency),
		Metadata:     metadata,
		CreatedAt:    time.Now().UTC(),
	}
	m.intents[id] = intent
	if params.IdempotencyKey != "" {
		m.byKey[params.IdempotencyKey] = id
	}
	return cloneIntent(intent), nil
}

// RetrieveIntent returns the stored intent.
func (m *MockPaymentProvider) RetrieveIntent(
	ctx context.Context,
	id string,
) (*payment.Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retrieveCalls++
	intent, ok := m.intents[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "payment intent", ID: id}
	}
	return cloneIntent(intent), nil
}

// ConstructEvent verifies a Stripe-style signature header and parses the event.
func (m *MockPaymentProvider) ConstructEvent(
	payload []byte,
	signature string,
) (*payment.Event, error) {
	return stripepayment.ConstructEvent(payload, signature, m.signingSecret)
}

// Simulate moves an intent to status, as the processor would after the
// customer acts.
func (m *MockPaymentProvider) Simulate(id string, status payment.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	intent, ok := m.intents[id]
	if !ok {
		return &domain.NotFoundError{Resource: "payment intent", ID: id}
	}
	intent.Status = status
	return nil
}

// CreateCalls returns a copy of every CreateIntent call's parameters.
func (m *MockPaymentProvider) CreateCalls() []payment.CreateIntentParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]payment.CreateIntentParams(nil), m.createCalls...)
}

// RetrieveCalls returns the number of RetrieveIntent calls.
func (m *MockPaymentProvider) RetrieveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.retrieveCalls
}

// Intents returns the number of distinct intents created.
func (m *MockPaymentProvider) Intents() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.intents)
}

type eventJSON struct {
	ID     string `json:"id"`
	Object string `json:"object"`
	Type   string `json:"type"`
	Data   struct {
		Object intentJSON `json:"object"`
	} `json:"data"`
}

type intentJSON struct {
	ID       string            `json:"id"`
	Object   string            `json:"object"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Status   string            `json:"status"`
	Created  int64             `json:"created"`
	Metadata map[string]string `json:"metadata"`
}

// SignedEvent builds a webhook payload for the stored intent and its
// Stripe-Signature header.
func (m *MockPaymentProvider) SignedEvent(
	eventID string,
	eventType payment.EventType,
	intentID string,
) ([]byte, string, error) {
	m.mu.Lock()
	intent, ok := m.intents[intentID]
	if !ok {
		m.mu.Unlock()
		return nil, "", &domain.NotFoundError{Resource: "payment intent", ID: intentID}
	}
	evt := eventJSON{ID: eventID, Object: "event", Type: string(eventType)}
	evt.Data.Object = intentJSON{
		ID:       intent.ID,
		Object:   "payment_intent",
		Amount:   intent.Amount,
		Currency: strings.ToLower(intent.Currency),
		Status:   string(intent.Status),
		Created:  intent.CreatedAt.Unix(),
		Metadata: intent.Metadata,
	}
	m.mu.Unlock()

	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, "", fmt.Errorf("marshal event: %w", err)
	}
	return payload, m.Sign(payload), nil
}

// Sign returns a Stripe-Signature header for payload.
func (m *MockPaymentProvider) Sign(payload []byte) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    m.signingSecret,
		Timestamp: time.Now(),
	}).Header
}

func cloneIntent(in *payment.Intent) *payment.Intent {
	out := *in
	out.Metadata = make(map[string]string, len(in.Metadata))
	for k, v := range in.Metadata {
		out.Metadata[k] = v
	}
	return &out
}
