package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
	tenth   = decimal.New(1, -1)
)

// round2 rounds a monetary value to the cent, half away from zero.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// percentOf returns base × pct / 100 rounded to the cent.
func percentOf(base, pct decimal.Decimal) decimal.Decimal {
	return round2(base.Mul(pct).Div(hundred))
}

func maxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// nonNegative converts a caller-supplied float into a decimal, rejecting NaN,
// infinities and negative values.
func nonNegative(field string, v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, &InvalidInputError{Field: field, Reason: "must be a finite number"}
	}
	if v < 0 {
		return decimal.Zero, &InvalidInputError{Field: field, Reason: "must not be negative"}
	}
	return decimal.NewFromFloat(v), nil
}
