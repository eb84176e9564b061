package payment

import (
	"github.com/amirasaad/fxpay/pkg/domain/events"
	"github.com/amirasaad/fxpay/pkg/eventbus"
	"github.com/amirasaad/fxpay/pkg/provider/payment"
)

// FromWebhook translates a verified processor event into a domain event.
// It returns false for event types that settle nothing.
func FromWebhook(evt *payment.Event) (eventbus.Event, bool) {
	if evt == nil || evt.Intent == nil {
		return nil, false
	}
	outcome := events.PaymentOutcome{
		EventID:         evt.ID,
		PaymentIntentID: evt.Intent.ID,
		Amount:          evt.Intent.Amount,
		Currency:        evt.Intent.Currency,
		Metadata:        evt.Intent.Metadata,
	}
	switch evt.Type {
	case payment.EventTypePaymentIntentSucceeded:
		return events.PaymentSucceeded{PaymentOutcome: outcome}, true
	case payment.EventTypePaymentIntentFailed:
		return events.PaymentFailed{PaymentOutcome: outcome, Reason: "payment_failed"}, true
	case payment.EventTypePaymentIntentCanceled:
		return events.PaymentFailed{PaymentOutcome: outcome, Reason: "canceled"}, true
	default:
		return nil, false
	}
}
