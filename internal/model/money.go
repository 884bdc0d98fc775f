package model

import (
	"github.com/shopspring/decimal"
)

// LineTotal returns unitPrice * quantity using exact decimal arithmetic.
// Quantities below zero are treated as zero.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	if quantity < 0 {
		quantity = 0
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// SumTotals adds the Total of every display line.
func SumTotals(lines []DisplayLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total)
	}
	return sum
}

// ParseAmount converts a user-supplied decimal string ("12.50") to a Decimal.
// Empty input is zero. Used by CLI flags and MCP tool arguments.
func ParseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, NewValidationError("amount", "not a decimal number")
	}
	if d.IsNegative() {
		return decimal.Zero, NewValidationError("amount", "must not be negative")
	}
	return d, nil
}

// FormatMoney renders an amount with two fractional digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
