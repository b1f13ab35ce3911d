// Package sizer computes the maximum executable size per leg of an
// arbitrage cycle and the resulting profit: the numerically delicate
// core of spec.md §4.5. It keeps the "compute max input, then simulate
// forward, then compare to a threshold" narrative arc of the teacher's
// detector/simulator.go SimulateCycle, but the per-step math is
// replaced wholesale — constant-product AMM swap math does not apply
// to a resting order book, so the funds-propagation scan of spec.md
// §4.5.1-§4.5.4 is implemented verbatim, in github.com/shopspring/decimal
// throughout (never float64, per spec.md §9).
package sizer

import (
	"github.com/shopspring/decimal"

	"arbfinder/internal/collector"
	"arbfinder/internal/xdecimal"
)

var one = decimal.NewFromInt(1)

// RawSizes runs the funds-propagation scan of spec.md §4.5.1: x starts
// unconstrained (the "momentarily +infinity" funds variable), and each
// leg either consumes x directly or, if the leg's available quantity is
// the binding constraint, rescales every earlier leg's chosen size by
// the ratio that makes it so.
func RawSizes(legs []collector.TradeLeg) []decimal.Decimal {
	n := len(legs)
	sizes := make([]decimal.Decimal, n)
	var x decimal.Decimal
	unconstrained := true

	for i, leg := range legs {
		switch leg.Position {
		case collector.Short:
			if !unconstrained && x.LessThanOrEqual(leg.Qty) {
				sizes[i] = x
			} else {
				if !unconstrained {
					rescalePrefix(sizes[:i], xdecimal.Ratio(leg.Qty, x))
				}
				sizes[i] = leg.Qty
			}
			x = sizes[i].Mul(leg.Price).Mul(one.Sub(leg.Fee))

		case collector.Long:
			threshold := leg.Qty.Mul(leg.Price).Mul(one.Add(leg.Fee))
			if !unconstrained && x.LessThanOrEqual(threshold) {
				sizes[i] = x.Div(leg.Price.Mul(one.Add(leg.Fee)))
			} else {
				if !unconstrained {
					rescalePrefix(sizes[:i], xdecimal.Ratio(threshold, x))
				}
				sizes[i] = leg.Qty
			}
			x = sizes[i]
		}
		unconstrained = false
	}

	return sizes
}

func rescalePrefix(prefix []decimal.Decimal, ratio decimal.Decimal) {
	for i := range prefix {
		prefix[i] = prefix[i].Mul(ratio)
	}
}

// ApplyLotPrecision floors each raw size down to the nearest multiple
// of its leg's base lot exponent (spec.md §4.5.2). When flooring
// shrinks a leg's size by ratio r < 1, every later leg is rescaled by r
// to preserve the flow-conservation invariant — reducing one leg's
// size by r propagates as the same factor through everything it funds.
func ApplyLotPrecision(legs []collector.TradeLeg, raw []decimal.Decimal) []decimal.Decimal {
	n := len(legs)
	sizes := make([]decimal.Decimal, n)
	copy(sizes, raw)

	for i, leg := range legs {
		rounded := xdecimal.FloorToLotExponent(sizes[i], leg.LotExponent)
		ratio := xdecimal.Ratio(rounded, sizes[i])
		sizes[i] = rounded

		if ratio.LessThan(one) {
			for j := i + 1; j < n; j++ {
				sizes[j] = sizes[j].Mul(ratio)
			}
		}
	}

	return sizes
}

// CheckNotionalMinimums requires every leg's quote-value notional
// (size * price) to strictly exceed that leg's notional minimum
// (spec.md §4.5.3 — strict inequality, matching observed behavior).
func CheckNotionalMinimums(legs []collector.TradeLeg, sizes []decimal.Decimal) bool {
	for i, leg := range legs {
		notional := sizes[i].Mul(leg.Price)
		if !notional.GreaterThan(leg.NotionalMin) {
			return false
		}
	}
	return true
}

// Profit computes the start/end amounts and realized profit per
// spec.md §4.5.4. The starting leg's spend, when it is a long leg
// (buying base, i.e. spending quote), uses (1 + fee): buying incurs a
// fee on top of the notional spent, not a discount off it. See
// DESIGN.md's resolution of spec.md §9's flagged (1-fee)/(1+fee)
// discrepancy.
func Profit(legs []collector.TradeLeg, sizes []decimal.Decimal) (start, end, profit decimal.Decimal) {
	n := len(legs)
	first, last := legs[0], legs[n-1]

	if first.Position == collector.Short {
		start = sizes[0]
	} else {
		start = sizes[0].Mul(first.Price).Mul(one.Add(first.Fee))
	}

	if last.Position == collector.Long {
		end = sizes[n-1]
	} else {
		end = sizes[n-1].Mul(last.Price).Mul(one.Sub(last.Fee))
	}

	profit = end.Sub(start)
	return start, end, profit
}

// Result bundles every stage's output for one cycle, for the
// orchestrator to turn into a report.Outcome.
type Result struct {
	RawSizes   []decimal.Decimal
	Sizes      []decimal.Decimal
	NotionalOK bool
	Start      decimal.Decimal
	End        decimal.Decimal
	Profit     decimal.Decimal
	Profitable bool
	LotZeroLeg bool
}

// Size runs the full §4.5 pipeline over legs and returns the composed Result.
func Size(legs []collector.TradeLeg) Result {
	raw := RawSizes(legs)
	sizes := ApplyLotPrecision(legs, raw)

	lotZero := false
	for _, s := range sizes {
		if s.IsZero() {
			lotZero = true
			break
		}
	}

	notionalOK := CheckNotionalMinimums(legs, sizes)
	start, end, profit := Profit(legs, sizes)

	return Result{
		RawSizes:   raw,
		Sizes:      sizes,
		NotionalOK: notionalOK,
		Start:      start,
		End:        end,
		Profit:     profit,
		Profitable: notionalOK && profit.IsPositive(),
		LotZeroLeg: lotZero,
	}
}
