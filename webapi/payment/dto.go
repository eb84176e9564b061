package payment

import (
	"encoding/json"

	"github.com/amirasaad/fxpay/pkg/exchange"
)

// CreatePaymentIntentRequest is the body of POST /api/payment/create-payment-intent.
// Either currency or fromCurrency names the charged currency.
type CreatePaymentIntentRequest struct {
	Amount        exchange.Amount `json:"amount"`
	Currency      string          `json:"currency"`
	FromCurrency  string          `json:"fromCurrency"`
	ToCurrency    string          `json:"toCurrency"`
	PaymentMethod string          `json:"paymentMethod" validate:"omitempty,oneof=card bank"`
	UserReference string          `json:"userReference" validate:"omitempty,max=128"`
	UserID        string          `json:"userId" validate:"omitempty,uuid"`
}

// IntentResponse is returned after an intent is created.
type IntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Warning         string `json:"warning,omitempty"`
}

// VerifyPaymentResponse reports the processor's view of an intent.
// Amount is in major units.
type VerifyPaymentResponse struct {
	Status   string            `json:"status"`
	Amount   json.Number       `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
	Warning  string            `json:"warning,omitempty"`
}
