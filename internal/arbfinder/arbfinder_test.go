package arbfinder_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"arbfinder/exchange"
	"arbfinder/exchange/memclient"
	"arbfinder/internal/arbfinder"
	"arbfinder/internal/collector"
	"arbfinder/internal/currency"
	"arbfinder/internal/report"
)

// recordingSink captures the single Outcome passed to Report, standing
// in for report.TextSink/SQLiteSink in tests the way the teacher's
// integration tests capture results off an in-memory channel rather
// than a live service.
type recordingSink struct {
	outcomes []report.Outcome
}

func (s *recordingSink) Report(o report.Outcome) error {
	s.outcomes = append(s.outcomes, o)
	return nil
}

func cur(s string) currency.Currency {
	return currency.Currency(s)
}

func seedCycle(t *testing.T, rateAB, rateBC, rateCA string, notionalMins [3]string) *memclient.Client {
	t.Helper()
	client := memclient.New()

	rate := func(s string) decimal.Decimal {
		d, err := decimal.NewFromString(s)
		require.NoError(t, err)
		return d
	}

	seed := func(base, quote currency.Currency, bid string, notionalMin string) {
		client.SeedPair(base, quote, memclient.Pair{
			Book: exchange.OrderBookTop{
				BidPrice: rate(bid),
				BidSize:  decimal.NewFromInt(1000),
				AskPrice: rate(bid).Mul(decimal.NewFromFloat(1.01)),
				AskSize:  decimal.NewFromInt(1000),
			},
			Metadata: exchange.PairMetadata{
				LotExponent: -4,
				NotionalMin: rate(notionalMin),
			},
		})
	}

	seed(cur("A"), cur("B"), rateAB, notionalMins[0])
	seed(cur("B"), cur("C"), rateBC, notionalMins[1])
	seed(cur("C"), cur("A"), rateCA, notionalMins[2])

	return client
}

var lowMins = [3]string{"0.01", "0.01", "0.01"}

func TestAnalyze_Profitable(t *testing.T) {
	// Rates multiply to 1.2 before fees (20% headroom), comfortably
	// surviving the default 0.6%-per-leg fee schedule at zero volume.
	client := seedCycle(t, "2", "2", "0.3", lowMins)
	sink := &recordingSink{}

	outcome, err := arbfinder.Analyze(context.Background(),
		client,
		[]currency.Currency{cur("A"), cur("B"), cur("C")},
		decimal.Zero,
		sink,
		nil,
	)

	require.NoError(t, err)
	require.Equal(t, report.Profitable, outcome.Status)
	require.True(t, outcome.Profit.IsPositive())
	require.Len(t, sink.outcomes, 1)
	require.True(t, client.Closed())
}

func TestAnalyze_NotProfitable(t *testing.T) {
	// Rates multiply to just over 1 (0.5% headroom before fees) - a
	// negative cycle exists, but the three-leg fee schedule erodes it.
	// No rate is exactly 1: -ln(1) = 0 is the matrix's no-edge sentinel.
	client := seedCycle(t, "2", "0.5", "1.005", lowMins)
	sink := &recordingSink{}

	outcome, err := arbfinder.Analyze(context.Background(),
		client,
		[]currency.Currency{cur("A"), cur("B"), cur("C")},
		decimal.Zero,
		sink,
		nil,
	)

	require.NoError(t, err)
	require.Equal(t, report.NotProfitable, outcome.Status)
	require.False(t, outcome.Profit.IsPositive())
}

func TestAnalyze_NotionalViolated(t *testing.T) {
	// Same profitable rates as TestAnalyze_Profitable, but one pair
	// demands a notional minimum no trade could clear.
	mins := [3]string{"0.01", "1000000000", "0.01"}
	client := seedCycle(t, "2", "2", "0.3", mins)
	sink := &recordingSink{}

	outcome, err := arbfinder.Analyze(context.Background(),
		client,
		[]currency.Currency{cur("A"), cur("B"), cur("C")},
		decimal.Zero,
		sink,
		nil,
	)

	require.NoError(t, err)
	require.Equal(t, report.NotionalViolated, outcome.Status)
}

func TestAnalyze_NoNegativeCycle(t *testing.T) {
	// Rates multiply to under 1: the cycle is strongly connected but
	// carries no negative-weight (profitable-before-fees) loop.
	client := seedCycle(t, "1", "1", "0.99", lowMins)
	sink := &recordingSink{}

	outcome, err := arbfinder.Analyze(context.Background(),
		client,
		[]currency.Currency{cur("A"), cur("B"), cur("C")},
		decimal.Zero,
		sink,
		nil,
	)

	require.NoError(t, err)
	require.Equal(t, report.NoNegativeCycle, outcome.Status)
}

// TestAnalyze_ProfitableWithLongLeg covers the gap the missing-reverse-
// edge defect shipped undetected through: every other fixture in this
// file lists its cycle pairs in a single forward rotation (A->B, B->C,
// C->A), so every leg the real pipeline produces is Short. Here B/C is
// listed only as C->B, forcing the B->C leg of the same A->B->C->A
// cycle to resolve as Long via the reverse-pair/ask-price path added to
// graphbuild.Build — and the cycle must still be found and sized
// end-to-end through GraphBuilder -> scc -> cycle -> collector.
func TestAnalyze_ProfitableWithLongLeg(t *testing.T) {
	client := memclient.New()
	client.SeedPair(cur("A"), cur("B"), memclient.Pair{
		Book: exchange.OrderBookTop{
			BidPrice: decimal.NewFromFloat(2), BidSize: decimal.NewFromInt(1000),
			AskPrice: decimal.NewFromFloat(2.02), AskSize: decimal.NewFromInt(1000),
		},
		Metadata: exchange.PairMetadata{LotExponent: -4, NotionalMin: decimal.NewFromFloat(0.01)},
	})
	// Only C->B is listed, not B->C: the 2.0 rate needed to keep this
	// cycle's overall profit comparable to TestAnalyze_Profitable has to
	// come from buying B at the ask of the reverse pair (1/0.5 = 2).
	client.SeedPair(cur("C"), cur("B"), memclient.Pair{
		Book: exchange.OrderBookTop{
			BidPrice: decimal.NewFromFloat(0.495), BidSize: decimal.NewFromInt(1000),
			AskPrice: decimal.NewFromFloat(0.5), AskSize: decimal.NewFromInt(1000),
		},
		Metadata: exchange.PairMetadata{LotExponent: -4, NotionalMin: decimal.NewFromFloat(0.01)},
	})
	client.SeedPair(cur("C"), cur("A"), memclient.Pair{
		Book: exchange.OrderBookTop{
			BidPrice: decimal.NewFromFloat(0.3), BidSize: decimal.NewFromInt(1000),
			AskPrice: decimal.NewFromFloat(0.303), AskSize: decimal.NewFromInt(1000),
		},
		Metadata: exchange.PairMetadata{LotExponent: -4, NotionalMin: decimal.NewFromFloat(0.01)},
	})
	sink := &recordingSink{}

	outcome, err := arbfinder.Analyze(context.Background(),
		client,
		[]currency.Currency{cur("A"), cur("B"), cur("C")},
		decimal.Zero,
		sink,
		nil,
	)

	require.NoError(t, err)
	require.Equal(t, report.Profitable, outcome.Status)
	require.True(t, outcome.Profit.IsPositive())
	require.Len(t, outcome.Legs, 3)

	var longLegs, shortLegs int
	for _, leg := range outcome.Legs {
		switch leg.Position {
		case collector.Long:
			longLegs++
			require.Equal(t, currency.Pair{Base: cur("C"), Quote: cur("B")}, leg.Pair,
				"the only listed direction for B/C is C->B, so the Long leg must reference that pair")
		case collector.Short:
			shortLegs++
		}
	}
	require.Equal(t, 1, longLegs, "B->C must resolve as a Long leg since only C->B is listed")
	require.Equal(t, 2, shortLegs)
}

func TestAnalyze_NoSCCAvailable(t *testing.T) {
	// A->B and B->C are listed with every price at exactly 1, so every
	// edge weight is -ln(1) = 0, the no-edge sentinel: the matrix has no
	// edges and no strongly connected component of size >= 3 exists.
	client := memclient.New()
	client.SeedPair(cur("A"), cur("B"), memclient.Pair{
		Book:     exchange.OrderBookTop{BidPrice: decimal.NewFromInt(1), BidSize: decimal.NewFromInt(10), AskPrice: decimal.NewFromInt(1), AskSize: decimal.NewFromInt(10)},
		Metadata: exchange.PairMetadata{LotExponent: -4, NotionalMin: decimal.NewFromFloat(0.01)},
	})
	client.SeedPair(cur("B"), cur("C"), memclient.Pair{
		Book:     exchange.OrderBookTop{BidPrice: decimal.NewFromInt(1), BidSize: decimal.NewFromInt(10), AskPrice: decimal.NewFromInt(1), AskSize: decimal.NewFromInt(10)},
		Metadata: exchange.PairMetadata{LotExponent: -4, NotionalMin: decimal.NewFromFloat(0.01)},
	})
	sink := &recordingSink{}

	outcome, err := arbfinder.Analyze(context.Background(),
		client,
		[]currency.Currency{cur("A"), cur("B"), cur("C")},
		decimal.Zero,
		sink,
		nil,
	)

	require.NoError(t, err)
	require.Equal(t, report.NoSCCAvailable, outcome.Status)
}

func TestAnalyze_MissingCurrencyPropagatesError(t *testing.T) {
	client := memclient.New()
	client.SeedCurrency(cur("A"))
	sink := &recordingSink{}

	_, err := arbfinder.Analyze(context.Background(),
		client,
		[]currency.Currency{cur("A"), cur("B"), cur("C")},
		decimal.Zero,
		sink,
		nil,
	)

	require.Error(t, err)
	var missing *exchange.MissingCurrenciesError
	require.ErrorAs(t, err, &missing)
	require.Empty(t, sink.outcomes, "sink must not be called on a propagated error")
	require.True(t, client.Closed(), "session must still be closed on the error exit path")
}
