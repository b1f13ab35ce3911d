// Package graphbuild turns a candidate currency list into a weighted
// digraph over order-book rates. Adapted from the teacher's
// internal/graph/graph.go (AMM pool adjacency list over token indices);
// here vertices are currencies and edges are order-book-implied rates
// rather than constant-product pool reserves, so the graph is a dense
// N×N matrix instead of an adjacency list — spec.md §3 represents
// WeightedDigraph as a matrix, and candidate sets are small enough
// (tens of currencies) that the matrix is the natural fit.
package graphbuild

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"arbfinder/exchange"
	"arbfinder/internal/currency"
)

// noEdge is the sentinel matrix value meaning "no tradable pair here".
const noEdge = 0.0

// Matrix is a weighted digraph over currency indices. Weight[i][j] is
// -ln(effective rate) for converting currency i into currency j, or
// noEdge if neither (i, j) nor (j, i) is listed.
type Matrix struct {
	Currencies []currency.Currency
	index      map[currency.Currency]int
	Weight     [][]float64
}

// IndexOf returns the matrix row/column for a currency.
func (m *Matrix) IndexOf(c currency.Currency) (int, bool) {
	idx, ok := m.index[c]
	return idx, ok
}

// N is the number of vertices (currencies) in the matrix.
func (m *Matrix) N() int {
	return len(m.Currencies)
}

// SnapshotBook holds the order-book top and pair metadata collected
// while building the matrix, keyed by ordered (base, quote) pair, so
// downstream stages (collector, sizer) never re-fetch market data that
// was already snapshotted for this analysis run.
type SnapshotBook struct {
	Books map[currency.Pair]exchange.OrderBookTop
	Meta  map[currency.Pair]exchange.PairMetadata
}

// GraphBuilder enumerates listed pairs among a candidate set and builds
// the weighted matrix from a single concurrent snapshot burst.
type GraphBuilder struct {
	client              exchange.Client
	maxConcurrentProbes int
}

// NewGraphBuilder constructs a GraphBuilder bounded by maxConcurrentProbes
// concurrent exchange calls (spec.md §4.1 "tight burst, ideally concurrent").
func NewGraphBuilder(client exchange.Client, maxConcurrentProbes int) *GraphBuilder {
	if maxConcurrentProbes <= 0 {
		maxConcurrentProbes = 1
	}
	return &GraphBuilder{client: client, maxConcurrentProbes: maxConcurrentProbes}
}

// EnumerateEdges probes every ordered pair of distinct candidates for
// listing on the exchange, fanning the probes out concurrently via
// errgroup the way the teacher's cmd/watcher/main.go joins service
// goroutines, bounded by a semaphore of maxConcurrentProbes slots.
func (b *GraphBuilder) EnumerateEdges(ctx context.Context, candidates []currency.Currency) ([]currency.Pair, error) {
	type result struct {
		pair   currency.Pair
		exists bool
	}

	pairs := make([]currency.Pair, 0, len(candidates)*(len(candidates)-1))
	for _, base := range candidates {
		for _, quote := range candidates {
			if base == quote {
				continue
			}
			pairs = append(pairs, currency.Pair{Base: base, Quote: quote})
		}
	}

	results := make([]result, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, b.maxConcurrentProbes)

	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			exists, err := b.client.PairExists(gctx, p.Base, p.Quote)
			if err != nil {
				return &exchange.TransportError{Op: fmt.Sprintf("pair_exists:%s", p), Err: err}
			}
			results[i] = result{pair: p, exists: exists}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	listed := make([]currency.Pair, 0, len(pairs))
	for _, r := range results {
		if r.exists {
			listed = append(listed, r.pair)
		}
	}
	return listed, nil
}

// Build snapshots every listed pair's top-of-book and metadata
// concurrently, then constructs the matrix only after the full join —
// deferred construction per spec.md §4.1 step 1, so a transport error
// on any single pair aborts with no partial graph published.
func (b *GraphBuilder) Build(ctx context.Context, pairs []currency.Pair) (*Matrix, *SnapshotBook, error) {
	vertexSet := make(map[currency.Currency]struct{})
	for _, p := range pairs {
		vertexSet[p.Base] = struct{}{}
		vertexSet[p.Quote] = struct{}{}
	}

	m := &Matrix{
		index: make(map[currency.Currency]int, len(vertexSet)),
	}
	for c := range vertexSet {
		m.index[c] = len(m.Currencies)
		m.Currencies = append(m.Currencies, c)
	}
	n := len(m.Currencies)
	m.Weight = make([][]float64, n)
	for i := range m.Weight {
		m.Weight[i] = make([]float64, n)
	}

	books := make([]exchange.OrderBookTop, len(pairs))
	metas := make([]exchange.PairMetadata, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, b.maxConcurrentProbes)

	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			book, err := b.client.OrderBookTop(gctx, p.Base, p.Quote)
			if err != nil {
				return &exchange.TransportError{Op: fmt.Sprintf("order_book_top:%s", p), Err: err}
			}
			meta, err := b.client.PairMetadata(gctx, p.Base, p.Quote)
			if err != nil {
				return &exchange.TransportError{Op: fmt.Sprintf("pair_metadata:%s", p), Err: err}
			}
			books[i] = book
			metas[i] = meta
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	book := &SnapshotBook{
		Books: make(map[currency.Pair]exchange.OrderBookTop, len(pairs)),
		Meta:  make(map[currency.Pair]exchange.PairMetadata, len(pairs)),
	}
	for i, p := range pairs {
		book.Books[p] = books[i]
		book.Meta[p] = metas[i]

		from, _ := m.IndexOf(p.Base)
		to, _ := m.IndexOf(p.Quote)
		// Every listed pair produces two edges: base->quote at the bid
		// (selling base) and quote->base at the ask (buying base) —
		// spec.md §3/§4.1. Omitting the reverse edge would hide any
		// cycle that needs a buy leg on a pair listed in only one
		// direction, which is the normal case (spec.md §3).
		m.Weight[from][to] = EdgeWeight(books[i].BidPrice)
		m.Weight[to][from] = ReverseEdgeWeight(books[i].AskPrice)
	}

	return m, book, nil
}
