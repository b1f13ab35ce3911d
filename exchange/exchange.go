// Package exchange defines the capability contract this system consumes
// from a spot exchange, plus its error taxonomy. Concrete implementations
// (exchange/memclient, exchange/restclient) are external collaborators per
// spec.md §1/§6 — the core pipeline depends only on the Client interface.
package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"arbfinder/internal/currency"
)

// OrderBookTop is the best bid and best ask for a pair, as decimals parsed
// once at the boundary. Never converted through a lossy binary float.
type OrderBookTop struct {
	BidPrice decimal.Decimal
	BidSize  decimal.Decimal
	AskPrice decimal.Decimal
	AskSize  decimal.Decimal
}

// PairMetadata is the per-pair trading metadata needed for sizing.
type PairMetadata struct {
	// LotExponent e such that the smallest tradable base unit is 10^e.
	LotExponent int
	// NotionalMin is the minimum quote-value of an order on this pair.
	NotionalMin decimal.Decimal
}

// Client is the capability set an arbitrage analysis consumes from a spot
// exchange (spec.md §6). Every call is bounded by ctx; implementations
// should honor cancellation/timeout rather than blocking indefinitely.
type Client interface {
	// CheckCurrenciesExist returns a MissingCurrenciesError listing any
	// symbol not recognized by the exchange.
	CheckCurrenciesExist(ctx context.Context, symbols []currency.Currency) error

	// PairExists reports whether (base, quote), in that order, is listed.
	PairExists(ctx context.Context, base, quote currency.Currency) (bool, error)

	// OrderBookTop returns the best bid/ask for (base, quote).
	OrderBookTop(ctx context.Context, base, quote currency.Currency) (OrderBookTop, error)

	// PairMetadata returns the lot-size and notional-minimum for (base, quote).
	PairMetadata(ctx context.Context, base, quote currency.Currency) (PairMetadata, error)

	// FeeForVolume resolves the maker/taker fee fraction for a trailing
	// 30-day USD traded volume, via a descending tiered schedule.
	FeeForVolume(ctx context.Context, usdVolume30d decimal.Decimal) (decimal.Decimal, error)

	// Close idempotently tears down any session held by the client.
	Close() error
}
