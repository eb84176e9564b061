package domain

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrUnauthenticated is returned when the caller cannot be identified
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInsufficientFunds is returned when a debit would take a balance below zero
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrStatusConflict is returned when a record already holds a different terminal status
	ErrStatusConflict = errors.New("transaction already finalized with a different status")
	// ErrInvalidStatus is returned when a non-terminal status is used to finalize a record
	ErrInvalidStatus = errors.New("status is not terminal")
)

// Validation codes reported by the exchange request validator.
const (
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeMissingCurrency     = "MISSING_CURRENCY"
	CodeUnsupportedCurrency = "UNSUPPORTED_CURRENCY"
	CodeMissingFields       = "MISSING_FIELDS"
	CodeInvalidBankDetails  = "INVALID_BANK_DETAILS"
	CodeInvalidRecipient    = "INVALID_RECIPIENT"
)

// ValidationError is a caller-fault error naming the violated rule.
type ValidationError struct {
	Code    string
	Message string
	// Details lists individual problems, e.g. "Missing sortCode".
	Details []string
}

func (e *ValidationError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Details, ", "))
	}
	return e.Message
}

// NewValidationError builds a ValidationError.
func NewValidationError(code, message string, details ...string) *ValidationError {
	return &ValidationError{Code: code, Message: message, Details: details}
}

// IsUnsupportedCurrency reports whether err is an UNSUPPORTED_CURRENCY validation error.
func IsUnsupportedCurrency(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Code == CodeUnsupportedCurrency
}

var secretPattern = regexp.MustCompile(`\b(sk|rk|whsec)_(test_|live_)?[A-Za-z0-9]+`)

// RedactSecrets masks processor credentials that may appear in a message.
func RedactSecrets(s string) string {
	return secretPattern.ReplaceAllString(s, "[redacted]")
}

// ProcessorError is a dependency-fault error from the payment processor.
// Status is the HTTP status to surface; Code and Message come from the processor.
type ProcessorError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// NewProcessorError builds a ProcessorError with the message scrubbed of secrets.
func NewProcessorError(status int, code, message string, err error) *ProcessorError {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &ProcessorError{
		Status:  status,
		Code:    code,
		Message: RedactSecrets(message),
		Err:     err,
	}
}

func (e *ProcessorError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("payment processor error (%s): %s", e.Code, e.Message)
	}
	return "payment processor error: " + e.Message
}

func (e *ProcessorError) Unwrap() error { return e.Err }

// NotFoundError reports an unknown payment intent or record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// SignatureError rejects an unauthenticated webhook delivery.
type SignatureError struct {
	Err error
}

func (e *SignatureError) Error() string {
	if e.Err == nil {
		return "invalid webhook signature"
	}
	return "invalid webhook signature: " + e.Err.Error()
}

func (e *SignatureError) Unwrap() error { return e.Err }

// PersistenceError wraps a storage failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ErrorCode returns the machine readable code reported to API callers.
func ErrorCode(err error) string {
	var (
		ve *ValidationError
		pe *ProcessorError
		se *SignatureError
		pr *PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Code
	case errors.As(err, &se):
		return "INVALID_SIGNATURE"
	case errors.As(err, &pe):
		if pe.Code != "" {
			return pe.Code
		}
		return "PROCESSOR_ERROR"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrAlreadyExists):
		return "ALREADY_EXISTS"
	case errors.Is(err, ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, ErrInsufficientFunds):
		return "INSUFFICIENT_FUNDS"
	case errors.Is(err, ErrStatusConflict):
		return "STATUS_CONFLICT"
	case errors.Is(err, ErrRatesUnavailable):
		return "RATES_UNAVAILABLE"
	case errors.As(err, &pr):
		return "PERSISTENCE_FAILED"
	default:
		return "INTERNAL_ERROR"
	}
}
