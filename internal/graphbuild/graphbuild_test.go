package graphbuild_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"arbfinder/exchange"
	"arbfinder/exchange/memclient"
	"arbfinder/internal/currency"
	"arbfinder/internal/graphbuild"
)

func cur(s string) currency.Currency {
	return currency.Currency(s)
}

func seedTriangle(c *memclient.Client) {
	c.SeedPair(cur("A"), cur("B"), memclient.Pair{
		Book: exchange.OrderBookTop{
			BidPrice: decimal.NewFromFloat(2.0), BidSize: decimal.NewFromInt(10),
			AskPrice: decimal.NewFromFloat(2.1), AskSize: decimal.NewFromInt(10),
		},
		Metadata: exchange.PairMetadata{LotExponent: -4, NotionalMin: decimal.NewFromFloat(0.01)},
	})
	c.SeedPair(cur("B"), cur("C"), memclient.Pair{
		Book: exchange.OrderBookTop{
			BidPrice: decimal.NewFromFloat(3.0), BidSize: decimal.NewFromInt(10),
			AskPrice: decimal.NewFromFloat(3.1), AskSize: decimal.NewFromInt(10),
		},
		Metadata: exchange.PairMetadata{LotExponent: -4, NotionalMin: decimal.NewFromFloat(0.01)},
	})
	c.SeedPair(cur("C"), cur("A"), memclient.Pair{
		Book: exchange.OrderBookTop{
			BidPrice: decimal.NewFromFloat(0.2), BidSize: decimal.NewFromInt(10),
			AskPrice: decimal.NewFromFloat(0.21), AskSize: decimal.NewFromInt(10),
		},
		Metadata: exchange.PairMetadata{LotExponent: -4, NotionalMin: decimal.NewFromFloat(0.01)},
	})
}

func TestBuild_ProducesInvariantMatrix(t *testing.T) {
	client := memclient.New()
	seedTriangle(client)

	builder := graphbuild.NewGraphBuilder(client, 4)
	ctx := context.Background()

	candidates := []currency.Currency{cur("A"), cur("B"), cur("C")}
	pairs, err := builder.EnumerateEdges(ctx, candidates)
	require.NoError(t, err)
	require.Len(t, pairs, 3)

	matrix, book, err := builder.Build(ctx, pairs)
	require.NoError(t, err)
	require.Equal(t, 3, matrix.N())
	require.Len(t, book.Books, 3)

	result := graphbuild.Validate(matrix, pairs)
	require.True(t, result.Valid, "errors: %v", result.Errors)
	require.Empty(t, result.NonZeroDiagonal)
	require.Empty(t, result.MissingEdges)
	require.Empty(t, result.UnexpectedEdges)

	for i := 0; i < matrix.N(); i++ {
		require.Equal(t, 0.0, matrix.Weight[i][i], "diagonal must be zero at %d", i)
	}
}

func TestValidate_FlagsUnexpectedEdge(t *testing.T) {
	client := memclient.New()
	seedTriangle(client)

	builder := graphbuild.NewGraphBuilder(client, 4)
	ctx := context.Background()

	candidates := []currency.Currency{cur("A"), cur("B"), cur("C")}
	pairs, err := builder.EnumerateEdges(ctx, candidates)
	require.NoError(t, err)

	matrix, _, err := builder.Build(ctx, pairs)
	require.NoError(t, err)

	// Claim fewer pairs were listed than the matrix actually has edges for.
	truncated := pairs[:len(pairs)-1]
	result := graphbuild.Validate(matrix, truncated)
	require.False(t, result.Valid)
	require.NotEmpty(t, result.UnexpectedEdges)
}

// TestBuild_OneDirectionListingStillProducesReverseEdge exercises the
// normal case (spec.md §3: "(B, Q) existing does not imply (Q, B)
// exists") where a pair is listed in only one direction. Build must
// still populate the quote->base matrix entry from the ask price, and
// Validate must treat that reverse entry as accounted for by the
// forward listing rather than flagging it as an unexpected edge.
func TestBuild_OneDirectionListingStillProducesReverseEdge(t *testing.T) {
	client := memclient.New()
	client.SeedPair(cur("A"), cur("B"), memclient.Pair{
		Book: exchange.OrderBookTop{
			BidPrice: decimal.NewFromFloat(2.0), BidSize: decimal.NewFromInt(10),
			AskPrice: decimal.NewFromFloat(2.1), AskSize: decimal.NewFromInt(10),
		},
		Metadata: exchange.PairMetadata{LotExponent: -4, NotionalMin: decimal.NewFromFloat(0.01)},
	})

	builder := graphbuild.NewGraphBuilder(client, 4)
	ctx := context.Background()

	candidates := []currency.Currency{cur("A"), cur("B")}
	pairs, err := builder.EnumerateEdges(ctx, candidates)
	require.NoError(t, err)
	require.Equal(t, []currency.Pair{{Base: cur("A"), Quote: cur("B")}}, pairs,
		"only the forward direction was seeded, so B->A must not appear as its own listed pair")

	matrix, _, err := builder.Build(ctx, pairs)
	require.NoError(t, err)

	ab, _ := matrix.IndexOf(cur("A"))
	ba, _ := matrix.IndexOf(cur("B"))
	require.NotEqual(t, 0.0, matrix.Weight[ab][ba], "forward edge A->B must be set from the bid")
	require.NotEqual(t, 0.0, matrix.Weight[ba][ab], "reverse edge B->A must be synthesized from the ask")
	require.Equal(t, graphbuild.ReverseEdgeWeight(decimal.NewFromFloat(2.1)), matrix.Weight[ba][ab])

	result := graphbuild.Validate(matrix, pairs)
	require.True(t, result.Valid, "errors: %v", result.Errors)
	require.Empty(t, result.UnexpectedEdges, "the synthesized reverse edge is not unexpected: its forward pair is listed")
}

func TestEnumerateEdges_SkipsUnlistedPairs(t *testing.T) {
	client := memclient.New()
	seedTriangle(client)
	client.SeedCurrency(cur("D")) // listed currency, no pairs

	builder := graphbuild.NewGraphBuilder(client, 4)
	ctx := context.Background()

	candidates := []currency.Currency{cur("A"), cur("B"), cur("C"), cur("D")}
	pairs, err := builder.EnumerateEdges(ctx, candidates)
	require.NoError(t, err)
	require.Len(t, pairs, 3, "D has no listed pairs with any other candidate")
}
