package money

import "strings"

// Code represents a currency code (e.g., "USD", "EUR").
type Code string

// Common currency codes
const (
	USD Code = "USD" // US Dollar
	EUR Code = "EUR" // Euro
	GBP Code = "GBP" // British Pound
	JPY Code = "JPY" // Japanese Yen
	KWD Code = "KWD" // Kuwaiti Dinar
)

// ParseCode upper-cases and trims s.
func ParseCode(s string) Code {
	return Code(strings.ToUpper(strings.TrimSpace(s)))
}

// IsValid checks that the code is three upper-case letters.
func (c Code) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	return c[0] >= 'A' && c[0] <= 'Z' &&
		c[1] >= 'A' && c[1] <= 'Z' &&
		c[2] >= 'A' && c[2] <= 'Z'
}

// String returns the string representation of the currency code.
func (c Code) String() string {
	return string(c)
}

// ZeroDecimalCodes are the ISO 4217 currencies without a minor unit.
var ZeroDecimalCodes = []Code{
	"BIF", "CLP", "DJF", "GNF", JPY, "KMF", "KRW", "MGA",
	"PYG", "RWF", "UGX", "VND", "VUV", "XAF", "XOF", "XPF",
}

// ThreeDecimalCodes are the ISO 4217 currencies with three minor digits.
var ThreeDecimalCodes = []Code{"BHD", "IQD", "JOD", KWD, "LYD", "OMR", "TND"}
