package report

import (
	"github.com/rs/zerolog/log"
)

// TextSink writes a human-readable, structured-log summary of each
// Outcome, grounded in the teacher's cmd/watcher/main.go
// logOpportunities: one zerolog Info line per leg, plus a summary line
// carrying the fixed status message and profit.
type TextSink struct{}

// NewTextSink constructs a TextSink. Stateless.
func NewTextSink() *TextSink {
	return &TextSink{}
}

func (t *TextSink) Report(o Outcome) error {
	for i, leg := range o.Legs {
		entry := log.Info().
			Str("pair", leg.Pair.String()).
			Str("position", leg.Position.String()).
			Str("price", leg.Price.String())

		if i < len(o.Sizes) {
			entry = entry.Str("size", o.Sizes[i].String())
		}
		entry.Msg("arbitrage leg")
	}

	log.Info().
		Str("timestamp", o.Timestamp.Format("2006-01-02T15:04:05Z07:00")).
		Str("profit", o.Profit.String()).
		Msg(o.Status.Message())

	return nil
}

var _ Sink = (*TextSink)(nil)
