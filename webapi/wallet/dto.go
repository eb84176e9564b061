package wallet

import (
	"encoding/json"

	"github.com/amirasaad/fxpay/pkg/exchange"
)

// FundWalletRequest is the body of POST /api/wallet/fund.
type FundWalletRequest struct {
	Amount   exchange.Amount `json:"amount"`
	Currency string          `json:"currency"`
	UserID   string          `json:"userId" validate:"omitempty,uuid"`
}

// FundWalletResponse carries the client secret used to confirm the card payment.
type FundWalletResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Warning         string `json:"warning,omitempty"`
}

// BalanceDTO is one wallet. Balance is in major units.
type BalanceDTO struct {
	Currency string      `json:"currency"`
	Balance  json.Number `json:"balance"`
}

// WebhookAck acknowledges a processed delivery.
type WebhookAck struct {
	Received bool `json:"received"`
}
