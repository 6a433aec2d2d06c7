package models

import (
	"github.com/shopspring/decimal"
)

// MilliunitsPerUnit is the number of milliunits in one currency unit.
const MilliunitsPerUnit = 1000

// ToMilliunits converts a currency amount to integer milliunits, rounding
// half away from zero past the third decimal place.
func ToMilliunits(amount decimal.Decimal) int64 {
	return amount.Shift(3).Round(0).IntPart()
}

// FromMilliunits converts integer milliunits back to a currency amount
func FromMilliunits(milliunits int64) decimal.Decimal {
	return decimal.New(milliunits, -3)
}

// FormatMilliunits renders milliunits as a two-decimal amount, e.g. -294230 -> "-294.23"
func FormatMilliunits(milliunits int64) string {
	return FromMilliunits(milliunits).StringFixed(2)
}
