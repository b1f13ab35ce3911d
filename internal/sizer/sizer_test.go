package sizer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"arbfinder/internal/collector"
	"arbfinder/internal/currency"
)

// cycle1 is the source's own 5-leg test fixture (spec.md §8 scenario 1):
// short A/B, long B/C, short C/D, long D/E, short E/A.
func cycle1() []collector.TradeLeg {
	pair := func(b, q string) currency.Pair {
		return currency.Pair{Base: currency.Currency(b), Quote: currency.Currency(q)}
	}
	dec := func(s string) decimal.Decimal {
		d, err := decimal.NewFromString(s)
		if err != nil {
			panic(err)
		}
		return d
	}
	return []collector.TradeLeg{
		{Pair: pair("A", "B"), Position: collector.Short, Qty: dec("10"), Price: dec("10"), Fee: dec("0.01")},
		{Pair: pair("B", "C"), Position: collector.Long, Qty: dec("5"), Price: dec("10"), Fee: dec("0.01")},
		{Pair: pair("C", "D"), Position: collector.Short, Qty: dec("1"), Price: dec("2"), Fee: dec("0.03")},
		{Pair: pair("D", "E"), Position: collector.Long, Qty: dec("10"), Price: dec("3"), Fee: dec("0.01")},
		{Pair: pair("E", "A"), Position: collector.Short, Qty: dec("100"), Price: dec("2"), Fee: dec("0.02")},
	}
}

func requireCloseTo(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	wantDec, err := decimal.NewFromString(want)
	require.NoError(t, err)
	diff := got.Sub(wantDec).Abs()
	require.Truef(t, diff.LessThan(decimal.New(1, -5)), "want %s, got %s (diff %s)", want, got, diff)
}

func TestRawSizes_Cycle1(t *testing.T) {
	legs := cycle1()
	raw := RawSizes(legs)

	require.Len(t, raw, 5)
	requireCloseTo(t, "1.020202", raw[0])
	requireCloseTo(t, "1.0", raw[1])
	requireCloseTo(t, "1.0", raw[2])
	requireCloseTo(t, "0.64026403", raw[3])
	requireCloseTo(t, "0.64026403", raw[4])
}

func TestApplyLotPrecision_Cycle1(t *testing.T) {
	legs := cycle1()
	lotExponents := []int{-4, -2, 0, -5, -4}
	for i := range legs {
		legs[i].LotExponent = lotExponents[i]
	}

	raw := RawSizes(legs)
	adjusted := ApplyLotPrecision(legs, raw)

	require.Len(t, adjusted, 5)
	requireCloseTo(t, "1.0202", adjusted[0])
	requireCloseTo(t, "0.99", adjusted[1])
	require.True(t, adjusted[2].IsZero(), "leg 2 should collapse to 0 under integer lot rounding")
	require.True(t, adjusted[3].IsZero(), "leg 3 should collapse with the rescaled tail")
	require.True(t, adjusted[4].IsZero(), "leg 4 should collapse with the rescaled tail")
}

func TestCheckNotionalMinimums_Cycle1(t *testing.T) {
	legs := cycle1()
	lotExponents := []int{-4, -2, 0, -5, -4}
	notionalMins := []string{"0.01", "0.1", "0.55", "1", "1"}
	for i := range legs {
		legs[i].LotExponent = lotExponents[i]
		legs[i].NotionalMin = decimal.RequireFromString(notionalMins[i])
	}

	raw := RawSizes(legs)
	adjusted := ApplyLotPrecision(legs, raw)

	ok := CheckNotionalMinimums(legs, adjusted)
	require.False(t, ok, "leg 2's notional collapses to 0, below its 0.55 minimum")
}

func TestProfit_Cycle1(t *testing.T) {
	legs := cycle1()
	lotExponents := []int{-4, -2, 0, -5, -4}
	for i := range legs {
		legs[i].LotExponent = lotExponents[i]
	}

	raw := RawSizes(legs)
	adjusted := ApplyLotPrecision(legs, raw)

	_, _, profit := Profit(legs, adjusted)
	requireCloseTo(t, "-1.0202", profit)
}

// TestProfit_LongStartUsesOnePlusFee documents the resolution of
// spec.md §9's flagged discrepancy: a long starting leg spends
// size*price*(1+fee), not (1-fee) — buying incurs a fee on top of the
// notional spent.
func TestProfit_LongStartUsesOnePlusFee(t *testing.T) {
	legs := []collector.TradeLeg{
		{Position: collector.Long, Qty: decimal.NewFromInt(10), Price: decimal.NewFromInt(2), Fee: decimal.RequireFromString("0.1")},
		{Position: collector.Short, Qty: decimal.NewFromInt(10), Price: decimal.NewFromInt(3), Fee: decimal.Zero},
	}
	sizes := []decimal.Decimal{decimal.NewFromInt(10), decimal.NewFromInt(10)}

	start, end, profit := Profit(legs, sizes)

	requireCloseTo(t, "22", start) // 10 * 2 * 1.1
	requireCloseTo(t, "30", end)   // 10 * 3 * 1.0 (short end, no fee here)
	requireCloseTo(t, "8", profit)
}

func TestSize_ComposesFullPipeline(t *testing.T) {
	legs := cycle1()
	lotExponents := []int{-4, -2, 0, -5, -4}
	notionalMins := []string{"0.01", "0.1", "0.55", "1", "1"}
	for i := range legs {
		legs[i].LotExponent = lotExponents[i]
		legs[i].NotionalMin = decimal.RequireFromString(notionalMins[i])
	}

	result := Size(legs)

	require.False(t, result.NotionalOK)
	require.False(t, result.Profitable)
	require.True(t, result.LotZeroLeg)
	requireCloseTo(t, "-1.0202", result.Profit)
}
