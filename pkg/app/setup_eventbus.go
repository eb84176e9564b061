package app

import (
	"github.com/amirasaad/fxpay/pkg/handler/payment"
)

// setupEventBus registers the settlement handlers. Webhook deliveries are
// deduplicated by processor event id before reaching them.
func (a *App) setupEventBus() {
	payment.Register(
		a.Deps.EventBus,
		a.TransactionService,
		a.Webhooks,
		a.Deps.Logger,
	)
}
