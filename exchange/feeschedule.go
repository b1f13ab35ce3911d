package exchange

import "github.com/shopspring/decimal"

// feeTier is one row of the descending 30-day-USD-volume fee schedule
// (spec.md §6). Tiers are walked from the highest volume threshold down;
// the first tier whose MinVolume the traded volume meets or exceeds wins.
type feeTier struct {
	MinVolume decimal.Decimal
	Fee       decimal.Decimal
}

// defaultFeeSchedule is the reference exchange's published schedule,
// ordered highest-volume-first as spec.md §6 lists it.
var defaultFeeSchedule = []feeTier{
	{MinVolume: decimal.NewFromInt(10_000_000_000), Fee: decimal.Zero},
	{MinVolume: decimal.NewFromInt(400_000_000), Fee: decimal.NewFromFloat(0.0005)},
	{MinVolume: decimal.NewFromInt(250_000_000), Fee: decimal.NewFromFloat(0.0008)},
	{MinVolume: decimal.NewFromInt(75_000_000), Fee: decimal.NewFromFloat(0.0012)},
	{MinVolume: decimal.NewFromInt(15_000_000), Fee: decimal.NewFromFloat(0.0016)},
	{MinVolume: decimal.NewFromInt(1_000_000), Fee: decimal.NewFromFloat(0.0018)},
	{MinVolume: decimal.NewFromInt(100_000), Fee: decimal.NewFromFloat(0.0020)},
	{MinVolume: decimal.NewFromInt(50_000), Fee: decimal.NewFromFloat(0.0025)},
	{MinVolume: decimal.NewFromInt(10_000), Fee: decimal.NewFromFloat(0.0040)},
	{MinVolume: decimal.Zero, Fee: decimal.NewFromFloat(0.0060)},
}

// FeeForVolume resolves the fee fraction for a trailing 30-day USD volume
// against the given schedule. Shared by memclient and restclient so both
// implementations quote identical fees for identical volume.
func FeeForVolume(schedule []feeTier, usdVolume30d decimal.Decimal) decimal.Decimal {
	for _, tier := range schedule {
		if usdVolume30d.GreaterThanOrEqual(tier.MinVolume) {
			return tier.Fee
		}
	}
	// schedule always ends with a MinVolume-zero catch-all tier.
	return schedule[len(schedule)-1].Fee
}

// DefaultFeeForVolume resolves against the reference exchange's schedule.
func DefaultFeeForVolume(usdVolume30d decimal.Decimal) decimal.Decimal {
	return FeeForVolume(defaultFeeSchedule, usdVolume30d)
}
