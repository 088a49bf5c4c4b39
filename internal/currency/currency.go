package currency

import (
	"strings"

	"saleor-stripe-app/internal/apperror"

	"github.com/shopspring/decimal"
)

const defaultDecimals int32 = 2

var zeroDecimal = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "JPY": {}, "KMF": {}, "KRW": {}, "MGA": {},
	"PYG": {}, "RWF": {}, "UGX": {}, "VND": {}, "VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

var threeDecimal = map[string]struct{}{
	"BHD": {}, "JOD": {}, "KWD": {}, "OMR": {}, "TND": {},
}

// Decimals returns the number of minor-unit digits Stripe uses for the currency.
func Decimals(currency string) (int32, error) {
	if len(currency) != 3 {
		return 0, apperror.Invariant("currency code should be 3 characters long, got %q", currency)
	}

	code := strings.ToUpper(currency)
	if _, ok := zeroDecimal[code]; ok {
		return 0, nil
	}
	if _, ok := threeDecimal[code]; ok {
		return 3, nil
	}
	return defaultDecimals, nil
}

// ToMinorUnits converts a Saleor amount into the integer amount Stripe expects.
func ToMinorUnits(amount decimal.Decimal, currency string) (int64, error) {
	decimals, err := Decimals(currency)
	if err != nil {
		return 0, err
	}
	return amount.Shift(decimals).Round(0).IntPart(), nil
}

// ToMajorUnits converts a Stripe integer amount back into Saleor units.
func ToMajorUnits(amount int64, currency string) (decimal.Decimal, error) {
	decimals, err := Decimals(currency)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.New(amount, -decimals).Round(decimals), nil
}
