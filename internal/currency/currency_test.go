package currency

import (
	"testing"

	"saleor-stripe-app/internal/apperror"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		expected int64
	}{
		{amount: "10", currency: "PLN", expected: 1000},
		{amount: "21.37", currency: "PLN", expected: 2137},
		{amount: "21.37", currency: "EUR", expected: 2137},
		{amount: "21.37", currency: "usd", expected: 2137},
		{amount: "1231231231.23", currency: "PLN", expected: 123123123123},
		{amount: "21.37", currency: "XBT", expected: 2137},
		{amount: "5.12", currency: "BHD", expected: 5120},
		{amount: "5.12", currency: "kwd", expected: 5120},
		{amount: "0.125", currency: "USD", expected: 13},
		{amount: "0.1", currency: "USD", expected: 10},
	}

	for _, tt := range tests {
		t.Run(tt.amount+"_"+tt.currency, func(t *testing.T) {
			minor, err := ToMinorUnits(decimal.RequireFromString(tt.amount), tt.currency)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, minor)
		})
	}
}

func TestToMinorUnits_ZeroDecimalCurrencies(t *testing.T) {
	for code := range zeroDecimal {
		t.Run(code, func(t *testing.T) {
			minor, err := ToMinorUnits(decimal.NewFromInt(500), code)

			require.NoError(t, err)
			assert.Equal(t, int64(500), minor)
		})
	}
}

func TestToMajorUnits(t *testing.T) {
	tests := []struct {
		amount   int64
		currency string
		expected string
	}{
		{amount: 2000, currency: "usd", expected: "20"},
		{amount: 2137, currency: "PLN", expected: "21.37"},
		{amount: 500, currency: "JPY", expected: "500"},
		{amount: 5120, currency: "BHD", expected: "5.12"},
	}

	for _, tt := range tests {
		t.Run(tt.expected+"_"+tt.currency, func(t *testing.T) {
			major, err := ToMajorUnits(tt.amount, tt.currency)

			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(major), "got %s", major)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
	}{
		{amount: "21.37", currency: "PLN"},
		{amount: "0.01", currency: "EUR"},
		{amount: "500", currency: "JPY"},
		{amount: "5.123", currency: "BHD"},
		{amount: "99999999.99", currency: "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.amount+"_"+tt.currency, func(t *testing.T) {
			x := decimal.RequireFromString(tt.amount)

			minor, err := ToMinorUnits(x, tt.currency)
			require.NoError(t, err)
			major, err := ToMajorUnits(minor, tt.currency)
			require.NoError(t, err)
			assert.True(t, x.Equal(major))

			again, err := ToMinorUnits(major, tt.currency)
			require.NoError(t, err)
			assert.Equal(t, minor, again)
		})
	}
}

func TestInvalidCurrency(t *testing.T) {
	for _, code := range []string{"", "US", "EURO"} {
		t.Run(code, func(t *testing.T) {
			_, err := ToMinorUnits(decimal.NewFromInt(1), code)

			var violation *apperror.InvariantViolation
			assert.True(t, errors.As(err, &violation))

			_, err = ToMajorUnits(1, code)
			assert.True(t, errors.As(err, &violation))
		})
	}
}
