// Package events defines the domain events raised by verified processor webhooks.
package events

const (
	EventTypePaymentSucceeded = "PaymentSucceeded"
	EventTypePaymentFailed    = "PaymentFailed"
)

// PaymentOutcome carries the verified facts of a processor notification.
// Amount is in minor units of Currency.
type PaymentOutcome struct {
	EventID         string
	PaymentIntentID string
	Amount          int64
	Currency        string
	Metadata        map[string]string
}

// PaymentSucceeded is raised when the processor reports payment_intent.succeeded.
type PaymentSucceeded struct {
	PaymentOutcome
}

func (PaymentSucceeded) Type() string { return EventTypePaymentSucceeded }

// PaymentFailed is raised when the processor reports a failed or canceled intent.
type PaymentFailed struct {
	PaymentOutcome
	Reason string
}

func (PaymentFailed) Type() string { return EventTypePaymentFailed }
