package utils

import "github.com/shopspring/decimal"

// minorUnitExp is the exponent between stored minor units and display units.
const minorUnitExp = -2

// FormatAmount renders minor units as a fixed two-decimal string, e.g.
// 123450 -> "1234.50".
func FormatAmount(minor int64) string {
	return decimal.New(minor, minorUnitExp).StringFixed(2)
}

// ToMajor converts minor units to a decimal in display units.
func ToMajor(minor int64) decimal.Decimal {
	return decimal.New(minor, minorUnitExp)
}
