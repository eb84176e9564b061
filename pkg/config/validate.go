package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidStripeKey is returned when the processor key has an unknown prefix
	ErrInvalidStripeKey = errors.New("stripe api key must start with sk_test_ or sk_live_")
	// ErrMissingStripeKey is returned when the stripe processor is selected without a key
	ErrMissingStripeKey = errors.New("stripe api key is required")
)

var stripeKeyPrefixes = []string{"sk_test_", "sk_live_"}

// ValidateStripeKey checks the secret key format without echoing it.
func ValidateStripeKey(key string) error {
	if key == "" {
		return ErrMissingStripeKey
	}
	for _, p := range stripeKeyPrefixes {
		if strings.HasPrefix(key, p) {
			return nil
		}
	}
	return ErrInvalidStripeKey
}

// Validate checks cross-field rules envconfig cannot express.
func (c *App) Validate() error {
	if c.PaymentProviders != nil && c.PaymentProviders.Name != "mock" {
		if c.PaymentProviders.Stripe == nil {
			return ErrMissingStripeKey
		}
		if err := ValidateStripeKey(c.PaymentProviders.Stripe.ApiKey); err != nil {
			return err
		}
	}
	if c.Exchange != nil {
		if _, err := c.Exchange.Minimums(); err != nil {
			return err
		}
	}
	return nil
}

// Minimums parses MinimumAmounts into decimals keyed by currency.
func (e *Exchange) Minimums() (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(e.MinimumAmounts))
	for code, raw := range e.MinimumAmounts {
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid minimum amount for %s: %w", code, err)
		}
		out[strings.ToUpper(strings.TrimSpace(code))] = d
	}
	return out, nil
}
