package beneficiary

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/amirasaad/fxpay/infra/repository/memory"
	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *Service {
	return New(memory.NewUoW(memory.NewStore()), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		details  map[string]string
		code     string
		problems []string
	}{
		{"gbp missing sort code", "GBP", map[string]string{"accountNumber": "12345678"},
			domain.CodeMissingFields, []string{"Missing sortCode"}},
		{"sgd missing all in order", "SGD", map[string]string{},
			domain.CodeMissingFields, []string{"Missing accountNumber", "Missing bankCode", "Missing branchCode"}},
		{"blank counts as missing", "EUR", map[string]string{"iban": "  "},
			domain.CodeMissingFields, []string{"Missing iban"}},
		{"bad iban", "EUR", map[string]string{"iban": "NOT-AN-IBAN"},
			domain.CodeInvalidBankDetails, []string{"Invalid IBAN"}},
		{"bad routing", "USD", map[string]string{"accountNumber": "123456", "routingNumber": "12"},
			domain.CodeInvalidBankDetails, []string{"Invalid routingNumber"}},
		{"bad uk account", "GBP", map[string]string{"accountNumber": "123", "sortCode": "12-34-56"},
			domain.CodeInvalidBankDetails, []string{"Invalid accountNumber"}},
		{"unsupported", "CHF", map[string]string{"iban": "x"}, domain.CodeUnsupportedCurrency, nil},
		{"no currency", "", nil, domain.CodeMissingCurrency, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.currency, tt.details)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.code, ve.Code)
			if tt.problems != nil {
				assert.Equal(t, tt.problems, ve.Details)
			}
		})
	}
}

func TestValidate_AcceptsWellFormedDetails(t *testing.T) {
	valid := map[string]map[string]string{
		"EUR": {"iban": "de89 3704 0044 0532 0130 00"},
		"GBP": {"accountNumber": "12345678", "sortCode": "12-34-56"},
		"USD": {"accountNumber": "000123456789", "routingNumber": "110000000"},
		"SGD": {"accountNumber": "1234567890", "bankCode": "7171", "branchCode": "001"},
		"AUD": {"accountNumber": "000123456", "bsb": "082-902"},
		"JPY": {"accountNumber": "1234567", "bankCode": "0001", "branchCode": "001"},
	}
	for currency, details := range valid {
		assert.NoError(t, Validate(currency, details), currency)
	}
}

func TestCreate(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	userID := uuid.New()

	id, err := svc.Create(ctx, Input{
		UserID:      userID,
		Name:        "Jane Doe",
		Currency:    "eur",
		BankDetails: map[string]string{"iban": "DE89370400440532013000"},
		Country:     "DE",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "EUR", list[0].Currency)
	assert.Equal(t, id, list[0].ID)
}

func TestCreate_DuplicateIsRejected(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	userID := uuid.New()
	in := Input{
		UserID:      userID,
		Currency:    "GBP",
		BankDetails: map[string]string{"accountNumber": "12345678", "sortCode": "123456"},
	}

	_, err := svc.Create(ctx, in)
	require.NoError(t, err)

	in.BankDetails = map[string]string{"accountNumber": "12345678", "sortCode": "12-34-56"}
	_, err = svc.Create(ctx, in)
	assert.ErrorIs(t, err, ErrDuplicateBeneficiary)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	in.UserID = uuid.New()
	_, err = svc.Create(ctx, in)
	assert.NoError(t, err)
}

func TestCreate_InvalidDetailsAreNotStored(t *testing.T) {
	svc := newService()
	userID := uuid.New()

	_, err := svc.Create(context.Background(), Input{UserID: userID, Currency: "GBP",
		BankDetails: map[string]string{"accountNumber": "12345678"}})
	require.Error(t, err)

	list, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
