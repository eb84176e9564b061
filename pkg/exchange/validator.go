// Package exchange validates exchange and funding requests before any
// payment processor call is made.
package exchange

import (
	"fmt"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/money"
	"github.com/shopspring/decimal"
)

// DefaultSupportedCurrencies is the allow-list used when none is configured.
var DefaultSupportedCurrencies = []string{
	"USD", "EUR", "GBP", "JPY", "AUD", "CAD", "CHF", "HKD",
	"NZD", "SGD", "SEK", "DKK", "NOK", "MXN", "PLN", "BRL",
}

// Request is an exchange request as received from a caller.
// A currency-only request sets SourceCurrency and DestinationCurrency to the same code.
type Request struct {
	Amount              Amount
	SourceCurrency      string
	DestinationCurrency string
	UserReference       string
}

// Validated is a request that passed every rule.
type Validated struct {
	Amount              decimal.Decimal
	SourceCurrency      money.Code
	DestinationCurrency money.Code
	UserReference       string
}

// Validator checks requests against the supported-currency set and
// optional per-currency minimum amounts.
type Validator struct {
	supported map[money.Code]struct{}
	minimums  map[money.Code]decimal.Decimal
}

// NewValidator builds a Validator. An empty supported list falls back to
// DefaultSupportedCurrencies.
func NewValidator(supported []string, minimums map[string]decimal.Decimal) *Validator {
	if len(supported) == 0 {
		supported = DefaultSupportedCurrencies
	}
	v := &Validator{
		supported: make(map[money.Code]struct{}, len(supported)),
		minimums:  make(map[money.Code]decimal.Decimal, len(minimums)),
	}
	for _, c := range supported {
		v.supported[money.ParseCode(c)] = struct{}{}
	}
	for c, m := range minimums {
		v.minimums[money.ParseCode(c)] = m
	}
	return v
}

// IsSupported reports whether code (any case) is in the allow-list.
func (v *Validator) IsSupported(code string) bool {
	_, ok := v.supported[money.ParseCode(code)]
	return ok
}

// Validate applies the rules in order: amount (sign and magnitude), currency presence,
// currency membership. The first violation is returned.
func (v *Validator) Validate(req Request) (*Validated, error) {
	amount, ok := req.Amount.Decimal()
	if !ok || !amount.IsPositive() {
		return nil, domain.NewValidationError(
			domain.CodeInvalidAmount,
			"amount must be a positive number",
		)
	}
	if !money.WithinRange(amount) {
		return nil, domain.NewValidationError(
			domain.CodeInvalidAmount,
			"amount is out of range",
		)
	}

	src := money.ParseCode(req.SourceCurrency)
	dst := money.ParseCode(req.DestinationCurrency)
	if src == "" || dst == "" {
		return nil, domain.NewValidationError(
			domain.CodeMissingCurrency,
			"source and destination currency are required",
		)
	}

	for _, c := range []money.Code{src, dst} {
		if _, ok := v.supported[c]; !ok {
			return nil, domain.NewValidationError(
				domain.CodeUnsupportedCurrency,
				fmt.Sprintf("currency %s is not supported", c),
			)
		}
	}

	if min, ok := v.minimums[src]; ok && amount.LessThan(min) {
		return nil, domain.NewValidationError(
			domain.CodeInvalidAmount,
			fmt.Sprintf("amount must be at least %s %s", min.String(), src),
		)
	}

	return &Validated{
		Amount:              amount,
		SourceCurrency:      src,
		DestinationCurrency: dst,
		UserReference:       req.UserReference,
	}, nil
}
