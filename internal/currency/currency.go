// Package currency holds the opaque currency identifier and pair types
// shared across the arbitrage pipeline.
package currency

import (
	"fmt"
	"strings"
)

// Currency is an opaque, short, uppercase exchange symbol (e.g. "USD", "BTC").
type Currency string

// Normalize upper-cases and trims a raw symbol into canonical form.
func Normalize(raw string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(raw)))
}

// Pair is an ordered (base, quote) currency pair. Presence of (Base, Quote)
// on the exchange does not imply the reverse pair exists.
type Pair struct {
	Base  Currency
	Quote Currency
}

// String renders the pair in "BASE/QUOTE" form.
func (p Pair) String() string {
	return fmt.Sprintf("%s/%s", p.Base, p.Quote)
}

// Reverse returns the pair with base and quote swapped.
func (p Pair) Reverse() Pair {
	return Pair{Base: p.Quote, Quote: p.Base}
}
