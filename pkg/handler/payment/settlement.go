// Package payment holds the event handlers that settle transaction records
// from verified processor notifications.
package payment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/domain/events"
	"github.com/amirasaad/fxpay/pkg/eventbus"
	"github.com/amirasaad/fxpay/pkg/handler/common"
	"github.com/amirasaad/fxpay/pkg/service/transaction"
)

// Settler finalizes the record behind a payment intent.
type Settler interface {
	Settle(ctx context.Context, in transaction.Settlement) (*transaction.SettleResult, error)
}

// HandleSucceeded completes the record for a succeeded intent and, for
// wallet funding, credits the processor-reported amount.
func HandleSucceeded(settler Settler, logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e eventbus.Event) error {
		log := logger.With("handler", "payment.HandleSucceeded", "event_type", e.Type())
		ps, ok := e.(events.PaymentSucceeded)
		if !ok {
			log.Error("Skipping unexpected event type", "event", e)
			return nil
		}
		return settle(ctx, settler, ps.PaymentOutcome, domain.TransactionStatusCompleted, log)
	}
}

// HandleFailed marks the record for a failed or canceled intent as failed.
func HandleFailed(settler Settler, logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e eventbus.Event) error {
		log := logger.With("handler", "payment.HandleFailed", "event_type", e.Type())
		pf, ok := e.(events.PaymentFailed)
		if !ok {
			log.Error("Skipping unexpected event type", "event", e)
			return nil
		}
		log = log.With("reason", pf.Reason)
		return settle(ctx, settler, pf.PaymentOutcome, domain.TransactionStatusFailed, log)
	}
}

func settle(
	ctx context.Context,
	settler Settler,
	o events.PaymentOutcome,
	status domain.TransactionStatus,
	log *slog.Logger,
) error {
	log = log.With("event_id", o.EventID, "payment_intent_id", o.PaymentIntentID)
	log.Info("🟢 [START] settling payment intent", "status", status)

	res, err := settler.Settle(ctx, transaction.Settlement{
		PaymentIntentID: o.PaymentIntentID,
		Status:          status,
		Amount:          o.Amount,
		Currency:        o.Currency,
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		// Intents created outside this service have no record.
		log.Warn("⚠️ [SKIP] No transaction for payment intent")
		return nil
	case errors.Is(err, domain.ErrStatusConflict):
		log.Warn("⚠️ [SKIP] Transaction already finalized with another status")
		return nil
	default:
		log.Error("❌ [ERROR] Settlement failed", "error", err)
		return err
	}

	if !res.Transitioned {
		log.Info("🔁 [SKIP] Transaction already settled", "transaction_id", res.Transaction.ID)
		return nil
	}
	log.Info("✅ [SUCCESS] Transaction settled",
		"transaction_id", res.Transaction.ID,
		"credited", res.Credited,
	)
	return nil
}

// EventIDKey deduplicates deliveries by processor event id.
func EventIDKey(e eventbus.Event) string {
	switch ev := e.(type) {
	case events.PaymentSucceeded:
		return ev.Type() + ":" + ev.EventID
	case events.PaymentFailed:
		return ev.Type() + ":" + ev.EventID
	default:
		return ""
	}
}

// Register subscribes the settlement handlers on bus.
func Register(
	bus eventbus.Bus,
	settler Settler,
	tracker *common.IdempotencyTracker,
	logger *slog.Logger,
) {
	bus.Register(events.EventTypePaymentSucceeded, common.WithIdempotency(
		HandleSucceeded(settler, logger), tracker, EventIDKey, "payment.HandleSucceeded", logger))
	bus.Register(events.EventTypePaymentFailed, common.WithIdempotency(
		HandleFailed(settler, logger), tracker, EventIDKey, "payment.HandleFailed", logger))
}
