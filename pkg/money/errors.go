package money

import "errors"

// Common money package errors
var (
	// ErrNegativeAmount is returned when a negative amount is converted
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrAmountExceedsMaxSafeInt is returned when the minor-unit value does not fit in int64
	ErrAmountExceedsMaxSafeInt = errors.New("amount exceeds maximum safe integer value")

	// ErrInvalidCurrency is returned for malformed currency codes
	ErrInvalidCurrency = errors.New("invalid currency code")
)
