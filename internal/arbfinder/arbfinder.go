// Package arbfinder wires the full analysis pipeline of spec.md §2:
// GraphBuilder -> SCCPartitioner -> NegativeCycleFinder ->
// DataCollector -> Sizer -> Report sink. Single-threaded cooperative
// per analysis (spec.md §5) — the only concurrency lives inside
// graphbuild's fan-out/join.
package arbfinder

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"arbfinder/exchange"
	"arbfinder/internal/collector"
	"arbfinder/internal/currency"
	"arbfinder/internal/cycle"
	"arbfinder/internal/graphbuild"
	"arbfinder/internal/metrics"
	"arbfinder/internal/report"
	"arbfinder/internal/scc"
	"arbfinder/internal/sizer"
)

// Analyze runs one complete analysis over candidates against client,
// reports the Outcome to sink, and returns it. The exchange session is
// closed on every exit path (spec.md §5): success, no-arbitrage, or
// error.
func Analyze(ctx context.Context, client exchange.Client, candidates []currency.Currency, tradedVolumeUSD decimal.Decimal, sink report.Sink, m *metrics.Metrics) (report.Outcome, error) {
	defer func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing exchange client")
		}
	}()

	start := time.Now()
	outcome, err := analyze(ctx, client, candidates, tradedVolumeUSD, m)
	if err != nil {
		return report.Outcome{}, err
	}
	if m != nil {
		m.RecordAnalysis(time.Since(start), statusLabel(outcome.Status))
	}

	if sink != nil {
		if err := sink.Report(outcome); err != nil {
			log.Warn().Err(err).Msg("report sink failed")
		}
	}
	return outcome, nil
}

func analyze(ctx context.Context, client exchange.Client, candidates []currency.Currency, tradedVolumeUSD decimal.Decimal, m *metrics.Metrics) (report.Outcome, error) {
	if err := client.CheckCurrenciesExist(ctx, candidates); err != nil {
		return report.Outcome{}, err
	}

	builder := graphbuild.NewGraphBuilder(client, defaultMaxConcurrentProbes)

	buildStart := time.Now()
	pairs, err := builder.EnumerateEdges(ctx, candidates)
	if err != nil {
		return report.Outcome{}, err
	}
	matrix, book, err := builder.Build(ctx, pairs)
	if err != nil {
		return report.Outcome{}, err
	}
	if m != nil {
		m.RecordGraphBuild(time.Since(buildStart), matrix.N(), matrix.NumEdges())
	}

	sccStart := time.Now()
	partition := scc.NewPartitioner().Partition(matrix)
	if m != nil {
		m.RecordSCC(time.Since(sccStart), len(partition.Components), len(partition.Isolated))
	}

	if len(partition.Components) == 0 {
		return outcomeOf(report.NoSCCAvailable, nil, nil, decimal.Zero), nil
	}

	finder := cycle.NewFinder()
	cycleStart := time.Now()

	var witness cycle.Witness
	found := false
	for _, c := range partition.Components {
		w, ok := finder.Find(c, func(local int) currency.Currency {
			idx := c.Indices[local]
			cur, _ := matrix.CurrencyAt(idx)
			return cur
		})
		if ok {
			witness = w
			found = true
			break
		}
	}
	if m != nil {
		m.RecordCycleSearch(time.Since(cycleStart), found)
	}
	if !found {
		return outcomeOf(report.NoNegativeCycle, nil, nil, decimal.Zero), nil
	}

	dataCollector := collector.NewDataCollector(client)
	legs, err := dataCollector.Collect(ctx, witness.Currencies, book, tradedVolumeUSD)
	if err != nil {
		return report.Outcome{}, err
	}

	sizingStart := time.Now()
	result := sizer.Size(legs)
	if m != nil {
		m.RecordSizing(time.Since(sizingStart))
	}

	if !result.NotionalOK {
		return outcomeOf(report.NotionalViolated, legs, result.Sizes, result.Profit), nil
	}
	if !result.Profitable {
		return outcomeOf(report.NotProfitable, legs, result.Sizes, result.Profit), nil
	}
	return outcomeOf(report.Profitable, legs, result.Sizes, result.Profit), nil
}

const defaultMaxConcurrentProbes = 8

func outcomeOf(status report.Status, legs []collector.TradeLeg, sizes []decimal.Decimal, profit decimal.Decimal) report.Outcome {
	return report.Outcome{
		Status:    status,
		Legs:      legs,
		Sizes:     sizes,
		Profit:    profit,
		Timestamp: time.Now(),
	}
}

func statusLabel(s report.Status) string {
	switch s {
	case report.NoSCCAvailable:
		return "no_scc_available"
	case report.NoNegativeCycle:
		return "no_negative_cycle"
	case report.NotionalViolated:
		return "notional_violated"
	case report.NotProfitable:
		return "not_profitable"
	case report.Profitable:
		return "profitable"
	default:
		return "unknown"
	}
}
