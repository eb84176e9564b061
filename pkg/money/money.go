// Package money converts between major-unit decimal amounts and the
// integer minor units used by payment processors and storage.
//
// Invariants:
//   - Minor-unit amounts are non-negative int64 values.
//   - ToMajorUnits(ToMinorUnits(x)) == x whenever x is already at currency precision.
package money

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// DefaultDecimals is used for any currency not listed as zero or three decimal.
const DefaultDecimals = 2

// Currency represents a monetary unit with its standard decimal places
type Currency struct {
	Code     Code
	Decimals int32
}

// Table maps currency codes to their number of minor-unit digits.
// The zero value treats every currency as two-decimal.
type Table struct {
	decimals map[Code]int32
}

// NewTable builds a Table. A nil zeroDecimal uses ZeroDecimalCodes.
func NewTable(zeroDecimal []Code) *Table {
	if zeroDecimal == nil {
		zeroDecimal = ZeroDecimalCodes
	}
	t := &Table{decimals: make(map[Code]int32, len(zeroDecimal)+len(ThreeDecimalCodes))}
	for _, c := range ThreeDecimalCodes {
		t.decimals[c] = 3
	}
	for _, c := range zeroDecimal {
		t.decimals[ParseCode(string(c))] = 0
	}
	return t
}

// Default is the table with the ISO 4217 zero-decimal set.
var Default = NewTable(nil)

// Currency returns the currency descriptor for code.
func (t *Table) Currency(code Code) Currency {
	return Currency{Code: code, Decimals: t.Decimals(code)}
}

// Decimals returns the number of minor-unit digits for code.
func (t *Table) Decimals(code Code) int32 {
	if t != nil && t.decimals != nil {
		if d, ok := t.decimals[code]; ok {
			return d
		}
	}
	return DefaultDecimals
}

var (
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

const (
	// MaxIntegerDigits is the most integer digits an int64 minor amount can carry.
	MaxIntegerDigits = 19
	// MaxScale is the finest fractional precision accepted on input.
	MaxScale = 18
)

// WithinRange reports whether amount is bounded tightly enough to convert.
// It only inspects the exponent and coefficient length, so a value such as
// 1e50000000 is rejected without being expanded.
func WithinRange(amount decimal.Decimal) bool {
	exp := int64(amount.Exponent())
	if exp < -MaxScale || exp > MaxIntegerDigits {
		return false
	}
	if amount.IsZero() {
		return true
	}
	return int64(amount.NumDigits())+exp <= MaxIntegerDigits
}

// ToMinorUnits multiplies amount by 10^decimals and rounds half away from zero.
func (t *Table) ToMinorUnits(amount decimal.Decimal, code Code) (int64, error) {
	if !code.IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	if amount.IsNegative() {
		return 0, ErrNegativeAmount
	}
	if !WithinRange(amount) ||
		int64(amount.NumDigits())+int64(amount.Exponent())+int64(t.Decimals(code)) > MaxIntegerDigits {
		return 0, ErrAmountExceedsMaxSafeInt
	}
	minor := amount.Shift(t.Decimals(code)).Round(0)
	if minor.GreaterThan(maxInt64) {
		return 0, ErrAmountExceedsMaxSafeInt
	}
	return minor.IntPart(), nil
}

// ToMajorUnits divides minor by 10^decimals.
func (t *Table) ToMajorUnits(minor int64, code Code) decimal.Decimal {
	return decimal.New(minor, -t.Decimals(code))
}

// Format renders minor as a fixed-point string at currency precision.
func (t *Table) Format(minor int64, code Code) string {
	return fmt.Sprintf("%s %s", t.ToMajorUnits(minor, code).StringFixed(t.Decimals(code)), code)
}

// ToMinorUnits converts using the Default table.
func ToMinorUnits(amount decimal.Decimal, code Code) (int64, error) {
	return Default.ToMinorUnits(amount, code)
}

// ToMajorUnits converts using the Default table.
func ToMajorUnits(minor int64, code Code) decimal.Decimal {
	return Default.ToMajorUnits(minor, code)
}
