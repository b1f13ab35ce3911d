// Package xdecimal holds the small set of decimal helpers used by the
// sizer package. All size and profit arithmetic in
// this repository flows through github.com/shopspring/decimal; float64 is
// reserved for graph edge weights, where only relative ordering matters.
package xdecimal

import "github.com/shopspring/decimal"

// FloorToLotExponent rounds d down to the nearest multiple of 10^exp.
// A negative exp (the common case) means "round down to this many decimal
// places"; exp == 0 means round down to an integer; a positive exp rounds
// down to the nearest power of ten above the unit (e.g. exp=2 -> nearest 100).
func FloorToLotExponent(d decimal.Decimal, exp int) decimal.Decimal {
	if d.Sign() <= 0 {
		return decimal.Zero
	}
	lot := decimal.New(1, int32(exp))
	// d is positive, so truncating the quotient toward zero is floor.
	// DivRound at high precision keeps the quotient exact for the
	// finite decimals this system deals in, before Truncate(0) drops
	// to the integer lot count.
	quotient := d.DivRound(lot, 20).Truncate(0)
	return quotient.Mul(lot)
}

// Ratio returns a/b, or zero if b is zero (callers only use this where b is
// known non-zero by construction, but the guard keeps it panic-free).
func Ratio(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}
