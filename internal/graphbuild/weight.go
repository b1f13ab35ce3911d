package graphbuild

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// maxWeight is used when the effective rate is effectively zero or invalid.
	maxWeight = 230.0

	// minWeight is used when the effective rate would cause -log to be extremely negative.
	minWeight = -230.0
)

// EdgeWeight computes the Bellman-Ford edge weight for converting the
// base currency into the quote currency at the resting bid, ignoring
// fees (fees are applied during sizing, not graph construction, since
// spec.md §4.1 builds the graph from raw order-book rates and defers
// fee-aware economics to the sizer). Weight = -ln(bidPrice); taking the
// bid matches spec.md §4.1's convention that the edge base->quote
// represents "sell one unit of base for bidPrice units of quote".
// Adapted from the teacher's graph/weight.go CalculateWeight, which
// clamps to [-230, 230] and guards NaN/Inf the same way — here the
// rate is a decimal order-book price instead of an AMM reserve ratio.
func EdgeWeight(bidPrice decimal.Decimal) float64 {
	return weightFromRate(bidPrice)
}

// ReverseEdgeWeight computes the weight of the implied quote->base
// edge for the same listed pair: buying one unit of base costs
// askPrice units of quote, so one unit of quote buys 1/askPrice units
// of base. Weight = -ln(1/askPrice) = ln(askPrice). Every listed pair
// therefore produces two matrix edges (spec.md §3/§4.1, matching the
// source's graph_constructor.py, which sets both
// graph[base,quote] = -log(bid) and graph[quote,base] = -log(1/ask)) —
// without this reverse edge, cycles that need a "buy" leg on a pair
// listed only in one direction are invisible to the cycle search.
func ReverseEdgeWeight(askPrice decimal.Decimal) float64 {
	if askPrice.Sign() <= 0 {
		return maxWeight
	}
	rate, _ := askPrice.Float64()
	if rate <= 0 || math.IsNaN(rate) {
		return maxWeight
	}
	if math.IsInf(rate, 1) {
		return maxWeight
	}
	return clampWeight(math.Log(rate))
}

func weightFromRate(price decimal.Decimal) float64 {
	if price.Sign() <= 0 {
		return maxWeight
	}

	rate, _ := price.Float64()

	if rate <= 0 || math.IsNaN(rate) {
		return maxWeight
	}
	if math.IsInf(rate, 1) {
		return minWeight
	}

	return clampWeight(-math.Log(rate))
}

func clampWeight(weight float64) float64 {
	if weight > maxWeight {
		return maxWeight
	}
	if weight < minWeight {
		return minWeight
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return maxWeight
	}
	return weight
}

// RateFromWeight converts a weight back to an effective rate (inverse
// of EdgeWeight), used when logging a candidate cycle's implied rate.
func RateFromWeight(weight float64) float64 {
	return math.Exp(-weight)
}

// CycleProfitFactor calculates the profit factor from a cycle's total
// weight. A negative total weight means the product of rates exceeds
// one, i.e. the cycle is a profit candidate before fees/sizing.
func CycleProfitFactor(totalWeight float64) float64 {
	return math.Exp(-totalWeight)
}
