package exchangerateapi

import (
	"context"
	"strings"
	"time"

	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/shopspring/decimal"
)

// FakeExchangeRate serves fixed rates for local development when no API
// key is configured. Every code in Codes converts at Rates[code], or 1 when
// unset.
type FakeExchangeRate struct {
	Codes []string
	Rates map[string]decimal.Decimal
}

// NewFakeExchangeRate creates a fake quoting parity for codes.
func NewFakeExchangeRate(codes []string) *FakeExchangeRate {
	return &FakeExchangeRate{Codes: codes, Rates: map[string]decimal.Decimal{}}
}

// Latest implements the rate source.
func (f *FakeExchangeRate) Latest(_ context.Context, base string) (*domain.RateSnapshot, error) {
	base = strings.ToUpper(base)
	rates := make(map[string]decimal.Decimal, len(f.Codes))
	for _, code := range f.Codes {
		if r, ok := f.Rates[code]; ok {
			rates[code] = r
			continue
		}
		rates[code] = decimal.NewFromInt(1)
	}
	rates[base] = decimal.NewFromInt(1)
	return &domain.RateSnapshot{
		Base:      base,
		Rates:     rates,
		Source:    "fake",
		FetchedAt: time.Now().UTC(),
	}, nil
}
