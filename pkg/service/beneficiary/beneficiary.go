// Package beneficiary validates and stores payee bank profiles.
package beneficiary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/amirasaad/fxpay/pkg/repository"
	"github.com/google/uuid"
)

// ErrDuplicateBeneficiary is returned when the user already has a
// beneficiary with the same currency and bank details.
var ErrDuplicateBeneficiary = fmt.Errorf("duplicate beneficiary: %w", domain.ErrAlreadyExists)

// RequiredFields maps a currency to its mandatory bank-detail fields, in
// the order problems are reported.
var RequiredFields = map[string][]string{
	"EUR": {"iban"},
	"GBP": {"accountNumber", "sortCode"},
	"USD": {"accountNumber", "routingNumber"},
	"SGD": {"accountNumber", "bankCode", "branchCode"},
	"AUD": {"accountNumber", "bsb"},
	"JPY": {"accountNumber", "bankCode", "branchCode"},
}

var (
	ibanPattern     = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{4}[0-9]{7}([A-Z0-9]?){0,16}$`)
	sortCodePattern = regexp.MustCompile(`^[0-9]{6}$`)
	ukAccount       = regexp.MustCompile(`^[0-9]{8}$`)
	routingPattern  = regexp.MustCompile(`^[0-9]{9}$`)
	usAccount       = regexp.MustCompile(`^[0-9]{4,17}$`)
	sgBankCode      = regexp.MustCompile(`^[0-9]{4}$`)
	sgBranchCode    = regexp.MustCompile(`^[0-9]{3}$`)
	sgAccount       = regexp.MustCompile(`^[0-9]{10,12}$`)
	bsbPattern      = regexp.MustCompile(`^[0-9]{6}$`)
)

type formatRule struct {
	field   string
	pattern *regexp.Regexp
	message string
}

var formatRules = map[string][]formatRule{
	"EUR": {
		{"iban", ibanPattern, "Invalid IBAN"},
	},
	"GBP": {
		{"accountNumber", ukAccount, "Invalid accountNumber"},
		{"sortCode", sortCodePattern, "Invalid sortCode"},
	},
	"USD": {
		{"accountNumber", usAccount, "Invalid accountNumber"},
		{"routingNumber", routingPattern, "Invalid routingNumber"},
	},
	"SGD": {
		{"accountNumber", sgAccount, "Invalid accountNumber"},
		{"bankCode", sgBankCode, "Invalid bankCode"},
		{"branchCode", sgBranchCode, "Invalid branchCode"},
	},
	"AUD": {
		{"bsb", bsbPattern, "Invalid bsb"},
	},
}

// Input is a create-beneficiary request.
type Input struct {
	UserID       uuid.UUID
	Name         string
	Currency     string
	BankName     string
	BankDetails  map[string]string
	AddressLine1 string
	City         string
	State        string
	PostalCode   string
	Country      string
}

// Service manages beneficiaries.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a beneficiary Service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger.With("service", "beneficiary")}
}

// Validate checks the bank details against the currency's required fields
// and formats. Missing fields are reported before format problems.
func Validate(currency string, details map[string]string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return domain.NewValidationError(domain.CodeMissingCurrency, "currency is required")
	}
	required, ok := RequiredFields[currency]
	if !ok {
		return domain.NewValidationError(domain.CodeUnsupportedCurrency,
			"unsupported currency for beneficiaries: "+currency)
	}

	var missing []string
	for _, field := range required {
		if strings.TrimSpace(details[field]) == "" {
			missing = append(missing, "Missing "+field)
		}
	}
	if len(missing) > 0 {
		return domain.NewValidationError(domain.CodeMissingFields, "missing bank details", missing...)
	}

	var invalid []string
	for _, rule := range formatRules[currency] {
		if !rule.pattern.MatchString(normalize(rule.field, details[rule.field])) {
			invalid = append(invalid, rule.message)
		}
	}
	if len(invalid) > 0 {
		return domain.NewValidationError(domain.CodeInvalidBankDetails, "invalid bank details", invalid...)
	}
	return nil
}

// normalize strips separators people commonly type into bank fields.
func normalize(field, value string) string {
	value = strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	switch field {
	case "iban":
		return strings.ToUpper(value)
	case "sortCode", "bsb":
		return strings.ReplaceAll(value, "-", "")
	default:
		return value
	}
}

// Create validates and stores a beneficiary and returns its id.
func (s *Service) Create(ctx context.Context, in Input) (uuid.UUID, error) {
	if err := Validate(in.Currency, in.BankDetails); err != nil {
		return uuid.Nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	details := make(map[string]string, len(in.BankDetails))
	for k, v := range in.BankDetails {
		details[k] = normalize(k, v)
	}
	b := &domain.Beneficiary{
		ID:           uuid.New(),
		UserID:       in.UserID,
		Name:         strings.TrimSpace(in.Name),
		Currency:     currency,
		BankName:     in.BankName,
		BankDetails:  details,
		AddressLine1: in.AddressLine1,
		City:         in.City,
		State:        in.State,
		PostalCode:   in.PostalCode,
		Country:      in.Country,
	}

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.BeneficiaryRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, b)
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAlreadyExists):
		return uuid.Nil, ErrDuplicateBeneficiary
	default:
		s.logger.Error("failed to save beneficiary", "user_id", in.UserID, "error", err)
		return uuid.Nil, &domain.PersistenceError{Op: "create beneficiary", Err: err}
	}

	s.logger.Info("Beneficiary created", "beneficiary_id", b.ID, "currency", currency)
	return b.ID, nil
}

// List returns the user's beneficiaries.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*domain.Beneficiary, error) {
	repo, err := s.uow.BeneficiaryRepository()
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list beneficiaries", Err: err}
	}
	out, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list beneficiaries", Err: err}
	}
	return out, nil
}
