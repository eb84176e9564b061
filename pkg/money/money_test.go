package money_test

import (
	"math"
	"testing"

	"github.com/amirasaad/fxpay/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency money.Code
		expected int64
		wantErr  error
	}{
		{"USD with cents", "100.50", money.USD, 10050, nil},
		{"EUR whole", "10", money.EUR, 1000, nil},
		{"JPY no minor unit", "1000", money.JPY, 1000, nil},
		{"JPY rounds half up", "1000.5", money.JPY, 1001, nil},
		{"JPY rounds down", "1000.4", money.JPY, 1000, nil},
		{"USD rounds half away from zero", "0.005", money.USD, 1, nil},
		{"USD rounds down below half", "0.004", money.USD, 0, nil},
		{"KWD three decimals", "1.234", money.KWD, 1234, nil},
		{"unlisted currency defaults to two", "12.34", money.Code("SGD"), 1234, nil},
		{"negative", "-1", money.USD, 0, money.ErrNegativeAmount},
		{"overflow", "100000000000000000000", money.USD, 0, money.ErrAmountExceedsMaxSafeInt},
		{"huge exponent", "1e50000000", money.USD, 0, money.ErrAmountExceedsMaxSafeInt},
		{"tiny exponent", "1e-50000000", money.USD, 0, money.ErrAmountExceedsMaxSafeInt},
		{"shift past int64 digits", "12345678901234567.8", money.KWD, 0, money.ErrAmountExceedsMaxSafeInt},
		{"invalid code", "1", money.Code("usd1"), 0, money.ErrInvalidCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := money.ToMinorUnits(dec(t, tt.amount), tt.currency)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestToMajorUnits(t *testing.T) {
	assert.True(t, dec(t, "100.5").Equal(money.ToMajorUnits(10050, money.USD)))
	assert.True(t, dec(t, "1000").Equal(money.ToMajorUnits(1000, money.JPY)))
	assert.True(t, dec(t, "0.01").Equal(money.ToMajorUnits(1, money.EUR)))
}

func TestRoundTripAtCurrencyPrecision(t *testing.T) {
	cases := map[money.Code][]string{
		money.USD: {"0", "0.01", "10.00", "99.99", "123456789.12"},
		money.JPY: {"0", "1", "1000", "987654321"},
		money.KWD: {"0.001", "5.125"},
	}
	for code, amounts := range cases {
		for _, a := range amounts {
			minor, err := money.ToMinorUnits(dec(t, a), code)
			require.NoError(t, err)
			back := money.ToMajorUnits(minor, code)
			assert.Truef(t, dec(t, a).Equal(back), "%s %s round-tripped to %s", a, code, back)
		}
	}
}

func TestTable_CustomZeroDecimalSet(t *testing.T) {
	table := money.NewTable([]money.Code{"usd"})
	assert.Equal(t, int32(0), table.Decimals(money.USD))
	assert.Equal(t, int32(2), table.Decimals(money.JPY))

	minor, err := table.ToMinorUnits(dec(t, "10.4"), money.USD)
	require.NoError(t, err)
	assert.Equal(t, int64(10), minor)
}

func TestTable_MaxInt(t *testing.T) {
	minor, err := money.Default.ToMinorUnits(decimal.NewFromInt(math.MaxInt64), money.JPY)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), minor)
}

func TestWithinRange(t *testing.T) {
	tests := map[string]bool{
		"0":                    true,
		"0.50":                 true,
		"9223372036854775807":  true,
		"0.000000000000000001": true,
		"12345678901234567890": false,
		"1e19":                 false,
		"1e50000000":           false,
		"1e-19":                false,
		"1e-50000000":          false,
	}
	for amount, want := range tests {
		assert.Equalf(t, want, money.WithinRange(dec(t, amount)), "amount %s", amount)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "100.50 USD", money.Default.Format(10050, money.USD))
	assert.Equal(t, "1000 JPY", money.Default.Format(1000, money.JPY))
}
