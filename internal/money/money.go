// Package money converts between major-unit decimal amounts and the integer
// minor units used everywhere else in the application. All balance arithmetic
// happens in int64 minor units; float64 only exists at the JSON boundary.
package money

import (
	"errors"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ErrUnknownCurrency is returned for codes that are not ISO 4217 currencies.
var ErrUnknownCurrency = errors.New("unknown currency code")

// DecimalPlaces returns the number of decimal places for the currency per
// ISO 4217 (e.g. USD=2, KWD=3, JPY=0). Defaults to 2 for unknown codes.
func DecimalPlaces(code string) int {
	c := gomoney.GetCurrency(code)
	if c == nil {
		return 2
	}
	return c.Fraction
}

// IsValid reports whether code is an uppercase 3-letter ISO 4217 currency.
func IsValid(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return gomoney.GetCurrency(code) != nil
}

// ToMinorUnits converts a major-unit amount to the currency's minor units,
// rounding half away from zero at the currency's precision.
func ToMinorUnits(amount float64, code string) (int64, error) {
	if !IsValid(code) {
		return 0, ErrUnknownCurrency
	}
	places := int32(DecimalPlaces(code))
	return decimal.NewFromFloat(amount).Shift(places).Round(0).IntPart(), nil
}

// FromMinorUnits converts minor units back to a major-unit amount for display.
func FromMinorUnits(v int64, code string) float64 {
	places := int32(DecimalPlaces(code))
	f, _ := decimal.New(v, -places).Float64()
	return f
}

// Format renders minor units with the currency's symbol, e.g. "$12.50".
func Format(v int64, code string) string {
	return gomoney.New(v, code).Display()
}
