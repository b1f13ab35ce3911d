// Package memclient is a deterministic in-memory exchange.Client double,
// seeded with fixed order books and metadata. It backs the graphbuild tests
// and the end-to-end arbfinder pipeline tests — grounded in
// the teacher's fixed-fixture test style (detector_test.go's
// createGraphWithCycle), adapted from AMM pool reserves to order-book tops.
package memclient

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"arbfinder/exchange"
	"arbfinder/internal/currency"
)

// Pair bundles the seeded book and metadata for one listed (base, quote).
type Pair struct {
	Book     exchange.OrderBookTop
	Metadata exchange.PairMetadata
}

// Client is a fixed, deterministic exchange double.
type Client struct {
	mu        sync.RWMutex
	listed    map[currency.Currency]bool
	pairs     map[currency.Pair]Pair
	volume    decimal.Decimal
	closed    bool
	closeErrs int
}

// New creates an empty memclient. Use SeedCurrency/SeedPair to populate it.
func New() *Client {
	return &Client{
		listed: make(map[currency.Currency]bool),
		pairs:  make(map[currency.Pair]Pair),
	}
}

// SeedCurrency marks a currency as listed on the exchange.
func (c *Client) SeedCurrency(cur currency.Currency) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listed[cur] = true
}

// SeedPair lists (base, quote) with the given book/metadata, and implicitly
// marks base and quote as listed currencies.
func (c *Client) SeedPair(base, quote currency.Currency, p Pair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listed[base] = true
	c.listed[quote] = true
	c.pairs[currency.Pair{Base: base, Quote: quote}] = p
}

// SetTradedVolume records a 30-day USD volume on the client. FeeForVolume
// resolves against the volume passed to it and does not read this value.
func (c *Client) SetTradedVolume(v decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = v
}

func (c *Client) CheckCurrenciesExist(_ context.Context, symbols []currency.Currency) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var missing []currency.Currency
	for _, s := range symbols {
		if !c.listed[s] {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return &exchange.MissingCurrenciesError{Missing: missing}
	}
	return nil
}

func (c *Client) PairExists(_ context.Context, base, quote currency.Currency) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.pairs[currency.Pair{Base: base, Quote: quote}]
	return ok, nil
}

func (c *Client) OrderBookTop(_ context.Context, base, quote currency.Currency) (exchange.OrderBookTop, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.pairs[currency.Pair{Base: base, Quote: quote}]
	if !ok {
		return exchange.OrderBookTop{}, &exchange.TransportError{Op: "order_book_top", Err: errPairNotListed(base, quote)}
	}
	return p.Book, nil
}

func (c *Client) PairMetadata(_ context.Context, base, quote currency.Currency) (exchange.PairMetadata, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.pairs[currency.Pair{Base: base, Quote: quote}]
	if !ok {
		return exchange.PairMetadata{}, &exchange.TransportError{Op: "pair_metadata", Err: errPairNotListed(base, quote)}
	}
	return p.Metadata, nil
}

func (c *Client) FeeForVolume(_ context.Context, usdVolume30d decimal.Decimal) (decimal.Decimal, error) {
	return exchange.DefaultFeeForVolume(usdVolume30d), nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.closeErrs++
	return nil
}

// Closed reports whether Close has been called (for test assertions on the
// "session closed on every exit path" guarantee).
func (c *Client) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

type pairNotListedError struct {
	base, quote currency.Currency
}

func (e pairNotListedError) Error() string {
	return "pair not listed: " + string(e.base) + "/" + string(e.quote)
}

func errPairNotListed(base, quote currency.Currency) error {
	return pairNotListedError{base: base, quote: quote}
}
