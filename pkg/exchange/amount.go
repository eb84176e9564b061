package exchange

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is the caller-supplied amount kept verbatim so that a non-numeric
// value can be reported as INVALID_AMOUNT instead of a decode failure.
// JSON numbers, strings and null are accepted.
type Amount string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*a = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
	default:
		// numbers, booleans, objects: kept raw and rejected later
		*a = Amount(b)
	}
	return nil
}

// Decimal parses the amount. ok is false for empty or non-numeric input.
func (a Amount) Decimal() (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(a))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// AmountFromDecimal builds an Amount from a decimal value.
func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount(d.String())
}
