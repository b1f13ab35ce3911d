// Package collector translates a detected arbitrage cycle into a
// sequence of TradeLegs, consulting the snapshot gathered during graph
// construction and the exchange's fee schedule. Grounded in the
// teacher's detector.Opportunity / createOpportunity path-building
// shape (detector/detector.go), adapted from AMM-pool swap legs to
// order-book short/long legs.
package collector

import (
	"context"

	"github.com/shopspring/decimal"

	"arbfinder/exchange"
	"arbfinder/internal/currency"
	"arbfinder/internal/graphbuild"
)

// Position is which side of the book a leg executes against.
type Position int

const (
	// Short sells base at the best bid.
	Short Position = iota
	// Long buys base at the best ask.
	Long
)

func (p Position) String() string {
	if p == Short {
		return "short"
	}
	return "long"
}

// TradeLeg is one edge of an arbitrage cycle, priced against the
// snapshot and fee schedule in force for this analysis.
type TradeLeg struct {
	Pair        currency.Pair
	Position    Position
	Qty         decimal.Decimal
	Price       decimal.Decimal
	Fee         decimal.Decimal
	LotExponent int
	NotionalMin decimal.Decimal
}

// DataCollector builds TradeLegs from a cycle and a prior graph snapshot.
type DataCollector struct {
	client exchange.Client
}

// NewDataCollector constructs a DataCollector against the same client
// (and therefore the same fee schedule) used to build the graph.
func NewDataCollector(client exchange.Client) *DataCollector {
	return &DataCollector{client: client}
}

// Collect walks the closed cycle currencies[0..k-1] (implicitly closing
// back to currencies[0]) and produces one TradeLeg per consecutive pair,
// per spec.md §4.4: short if (cur[i], cur[i+1]) is listed (sell base at
// best bid), else long against the reverse pair (buy base at best ask).
func (d *DataCollector) Collect(ctx context.Context, cycleCurrencies []currency.Currency, book *graphbuild.SnapshotBook, tradedVolumeUSD decimal.Decimal) ([]TradeLeg, error) {
	k := len(cycleCurrencies)
	legs := make([]TradeLeg, 0, k)

	fee, err := d.client.FeeForVolume(ctx, tradedVolumeUSD)
	if err != nil {
		return nil, err
	}

	for i := 0; i < k; i++ {
		from := cycleCurrencies[i]
		to := cycleCurrencies[(i+1)%k]

		forward := currency.Pair{Base: from, Quote: to}
		if top, ok := book.Books[forward]; ok {
			meta := book.Meta[forward]
			legs = append(legs, TradeLeg{
				Pair:        forward,
				Position:    Short,
				Qty:         top.BidSize,
				Price:       top.BidPrice,
				Fee:         fee,
				LotExponent: meta.LotExponent,
				NotionalMin: meta.NotionalMin,
			})
			continue
		}

		reverse := currency.Pair{Base: to, Quote: from}
		if top, ok := book.Books[reverse]; ok {
			meta := book.Meta[reverse]
			legs = append(legs, TradeLeg{
				Pair:        reverse,
				Position:    Long,
				Qty:         top.AskSize,
				Price:       top.AskPrice,
				Fee:         fee,
				LotExponent: meta.LotExponent,
				NotionalMin: meta.NotionalMin,
			})
			continue
		}

		return nil, &missingPairError{base: from, quote: to}
	}

	return legs, nil
}

type missingPairError struct {
	base, quote currency.Currency
}

func (e *missingPairError) Error() string {
	return "collector: neither " + string(e.base) + "/" + string(e.quote) +
		" nor " + string(e.quote) + "/" + string(e.base) + " is in the snapshot"
}
