package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs, with an
// added machine readable error code.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`     // A URI reference that identifies the problem type
	Title    string `json:"title"`              // Short, human-readable summary
	Status   int    `json:"status"`             // HTTP status code
	Detail   string `json:"detail,omitempty"`   // Human-readable explanation
	Instance string `json:"instance,omitempty"` // URI reference that identifies the specific occurrence
	Error    string `json:"error"`              // Machine readable code, e.g. INVALID_AMOUNT
	Errors   any    `json:"errors,omitempty"`   // Optional: additional error details
}

var validate = validator.New()

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	var (
		ve *domain.ValidationError
		pe *domain.ProcessorError
		se *domain.SignatureError
		pr *domain.PersistenceError
		fe *fiber.Error
	)
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.As(err, &se):
		return fiber.StatusBadRequest
	case errors.As(err, &pe):
		return pe.Status
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrStatusConflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRatesUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &pr):
		return fiber.StatusInternalServerError
	case errors.As(err, &fe):
		return fe.Code
	default:
		return fiber.StatusInternalServerError
	}
}

// ProblemDetailsJSON writes err as application/problem+json. The status is
// derived from err unless one is passed in extra; a string in extra
// overrides the detail.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, extra ...any) error {
	status := ErrorToStatusCode(err)
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Instance: c.OriginalURL(),
		Error:    domain.ErrorCode(err),
	}
	if err != nil {
		pd.Detail = err.Error()
	}

	var ve *domain.ValidationError
	var pe *domain.ProcessorError
	switch {
	case errors.As(err, &ve):
		pd.Detail = ve.Message
		if len(ve.Details) > 0 {
			pd.Errors = ve.Details
		}
	case errors.As(err, &pe):
		pd.Detail = pe.Message
	case status >= fiber.StatusInternalServerError:
		// Internal causes stay in the logs.
		pd.Detail = ""
	}

	for _, x := range extra {
		switch v := x.(type) {
		case int:
			status = v
		case string:
			pd.Detail = v
		}
	}
	pd.Status = status
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(pd)
}

// BindAndValidate parses the request body and validates it using go-playground/validator.
// On failure it writes a 400 problem response and returns a nil input.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		verr := domain.NewValidationError("INVALID_REQUEST", "request body is not valid JSON")
		return nil, ProblemDetailsJSON(c, "Invalid request body", verr)
	}
	if err := validate.Struct(input); err != nil {
		verr := domain.NewValidationError(domain.CodeMissingFields, "request validation failed",
			validationMessages(err)...)
		return nil, ProblemDetailsJSON(c, "Validation failed", verr)
	}
	return &input, nil
}

func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if len(field) > 0 {
			field = strings.ToLower(field[:1]) + field[1:]
		}
		switch fe.Tag() {
		case "required":
			out = append(out, "Missing "+field)
		default:
			out = append(out, fmt.Sprintf("Invalid %s (%s)", field, fe.Tag()))
		}
	}
	return out
}
