package graphbuild

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"arbfinder/internal/currency"
)

// ValidationResult holds the results of a matrix consistency check.
// Adapted from the teacher's graph/validation.go ValidationResult, with
// checks re-themed from pool/adjacency-list invariants to matrix
// invariants (spec.md §8's testable properties: diagonal is zero, edge
// presence matches the listed-pairs set).
type ValidationResult struct {
	Valid           bool
	Errors          []string
	NonZeroDiagonal []currency.Currency
	MissingEdges    []currency.Pair
	UnexpectedEdges []currency.Pair
}

// Validate checks a built matrix against the set of pairs it was built
// from: the diagonal must be zero (spec.md §8 invariant W[i,i] = 0),
// and edge presence must exactly match the listed-pairs set — per
// spec.md §8, "W[i,j] != 0 iff either (node_i, node_j) or the reverse
// is a listed pair", since every listed pair produces both a
// base->quote (bid) and a quote->base (ask) edge.
func Validate(m *Matrix, listedPairs []currency.Pair) *ValidationResult {
	result := &ValidationResult{Valid: true}

	for i, c := range m.Currencies {
		if m.Weight[i][i] != noEdge {
			result.Valid = false
			result.NonZeroDiagonal = append(result.NonZeroDiagonal, c)
			result.Errors = append(result.Errors,
				fmt.Sprintf("matrix diagonal non-zero for %s", c))
		}
	}

	listed := make(map[currency.Pair]bool, len(listedPairs))
	for _, p := range listedPairs {
		listed[p] = true
	}

	for i, base := range m.Currencies {
		for j, quote := range m.Currencies {
			if i == j {
				continue
			}
			pair := currency.Pair{Base: base, Quote: quote}
			hasEdge := m.Weight[i][j] != noEdge
			isListed := listed[pair] || listed[pair.Reverse()]

			if isListed && !hasEdge {
				result.Valid = false
				result.MissingEdges = append(result.MissingEdges, pair)
				result.Errors = append(result.Errors,
					fmt.Sprintf("pair %s listed but matrix has no edge", pair))
			}
			if !isListed && hasEdge {
				result.Valid = false
				result.UnexpectedEdges = append(result.UnexpectedEdges, pair)
				result.Errors = append(result.Errors,
					fmt.Sprintf("matrix has edge for unlisted pair %s", pair))
			}
		}
	}

	return result
}

// ValidateAndLog validates m against listedPairs and logs the outcome
// the way the teacher's graph/validation.go ValidateAndLog does.
func ValidateAndLog(m *Matrix, listedPairs []currency.Pair) bool {
	result := Validate(m, listedPairs)

	if result.Valid {
		log.Info().
			Int("currencies", m.N()).
			Int("edges", m.NumEdges()).
			Msg("graph matrix validation passed")
		return true
	}

	for _, err := range result.Errors {
		log.Error().Msg("graph matrix validation error: " + err)
	}
	log.Error().
		Int("error_count", len(result.Errors)).
		Int("non_zero_diagonal", len(result.NonZeroDiagonal)).
		Int("missing_edges", len(result.MissingEdges)).
		Int("unexpected_edges", len(result.UnexpectedEdges)).
		Msg("graph matrix validation FAILED")

	return false
}
