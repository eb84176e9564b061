package payment

import (
	"time"
)

// Status mirrors the processor's payment intent lifecycle.
type Status string

const (
	StatusRequiresPaymentMethod Status = "requires_payment_method"
	StatusRequiresConfirmation  Status = "requires_confirmation"
	StatusRequiresAction        Status = "requires_action"
	StatusProcessing            Status = "processing"
	StatusRequiresCapture       Status = "requires_capture"
	StatusSucceeded             Status = "succeeded"
	StatusCanceled              Status = "canceled"
)

// IsTerminalSuccess is true only for succeeded; no other status implies completion.
func (s Status) IsTerminalSuccess() bool {
	return s == StatusSucceeded
}

// IsTerminal reports whether the intent can no longer change.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusCanceled
}

// Method is the payment method family requested by the caller.
type Method string

const (
	MethodCard Method = "card"
	MethodBank Method = "bank"
)

// ParseMethod maps caller input to a Method, defaulting to card.
func ParseMethod(s string) Method {
	if Method(s) == MethodBank {
		return MethodBank
	}
	return MethodCard
}

// Metadata keys attached to every intent.
const (
	MetaType          = "type"
	MetaFromCurrency  = "fromCurrency"
	MetaToCurrency    = "toCurrency"
	MetaUserID        = "userId"
	MetaUserReference = "userReference"
)

// CreateIntentParams holds the parameters for CreateIntent.
type CreateIntentParams struct {
	Amount         int64
	Currency       string
	Method         Method
	Metadata       map[string]string
	IdempotencyKey string
}

// Intent is the orchestrator's read-only view of a processor payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Status       Status
	Amount       int64
	Currency     string
	Metadata     map[string]string
	CreatedAt    time.Time
}

// EventType is a webhook event type.
type EventType string

const (
	EventTypePaymentIntentSucceeded EventType = "payment_intent.succeeded"
	EventTypePaymentIntentFailed    EventType = "payment_intent.payment_failed"
	EventTypePaymentIntentCanceled  EventType = "payment_intent.canceled"
)

// Event is a verified webhook delivery. Intent is nil for event types that
// do not carry a payment intent.
type Event struct {
	ID     string
	Type   EventType
	Intent *Intent
}
