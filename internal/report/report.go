// Package report is the boundary surface of spec.md §4.6: it takes a
// finished analysis Outcome and hands it to a Sink. Two sinks ship —
// TextSink (grounded in the teacher's cmd/watcher/main.go
// logOpportunities structured-zerolog style) and SQLiteSink (grounded
// in the teacher's internal/persistence/sqlite.go migration-on-open
// shape, repurposed from graph/pool state to an append-only audit log
// of finished outcomes). Neither sink stores analysis state — only the
// human-readable result of a completed, stateless run, per spec.md's
// "no persistence of analysis state between runs" non-goal.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"arbfinder/internal/collector"
)

// Status is the non-fatal analytical outcome of one analysis run
// (spec.md §7 — these are never Go errors).
type Status int

const (
	// NoSCCAvailable: no strongly connected component of size >= 3.
	NoSCCAvailable Status = iota
	// NoNegativeCycle: an SCC exists but carries no negative-weight cycle.
	NoNegativeCycle
	// NotionalViolated: an arbitrage cycle exists but at least one leg
	// fails its notional minimum (LotRoundedToZero is a subcase: a
	// leg's size floored to zero, so its notional is 0 <= min).
	NotionalViolated
	// NotProfitable: notional minimums are satisfied but profit <= 0.
	NotProfitable
	// Profitable: a profitable, executable arbitrage was found.
	Profitable
)

// Message renders the five fixed status strings of spec.md §6.
func (s Status) Message() string {
	switch s {
	case NoSCCAvailable:
		return "Given the currencies and the client, it is not possible to get an arbitrage."
	case NoNegativeCycle:
		return "No arbitrage has been found."
	case NotionalViolated:
		return "An arbitrage has been found. It does NOT satisfy the notional minimum limit requirements."
	case NotProfitable:
		return "An arbitrage has been found. It satisfies the notional minimum limit requirements. It makes NO profit."
	case Profitable:
		return "A profitable arbitrage has been found."
	default:
		return "unknown outcome"
	}
}

// Outcome is the result of one arbfinder.Analyze call.
type Outcome struct {
	Status    Status
	Legs      []collector.TradeLeg
	Sizes     []decimal.Decimal
	Profit    decimal.Decimal
	Timestamp time.Time
}

// Sink is the external collaborator a finished Outcome is reported to.
type Sink interface {
	Report(o Outcome) error
}
