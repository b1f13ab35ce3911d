// Package cycle finds a negative-weight cycle inside one strongly
// connected component via the classic synchronous Bellman-Ford
// algorithm. The teacher's detector/bellmanford.go uses SPFA
// (queue-based, asynchronous relaxation); spec.md §4.3 requires each
// relaxation pass to read against a frozen snapshot of dist taken at
// pass start, for deterministic witness extraction. This package keeps
// the teacher's function shape (dist/pred arrays, a
// extractCycleFromPred-style witness walk, deterministic iteration
// order) but is grounded on the textbook V-1-pass-plus-one form in
// other_examples/adc6a654_lexkrstn-go-graph__bellman_ford.go.go
// (relaxAllEdges over a frozen vertex set, hasNegativeCycle as one more
// full pass).
package cycle

import (
	"math"

	"arbfinder/internal/currency"
	"arbfinder/internal/scc"
)

const noEdge = 0.0

// Witness is a detected negative-weight cycle: the currencies in
// traversal order (closed — the loop returns to Currencies[0]) and the
// component-local vertex indices backing it.
type Witness struct {
	Currencies []currency.Currency
	Indices    []int
}

// Finder runs classic Bellman-Ford over a strongly connected
// component's sub-matrix.
type Finder struct{}

// NewFinder constructs a Finder. Stateless.
func NewFinder() *Finder {
	return &Finder{}
}

// Find runs from component-local vertex 0 and returns the first
// negative cycle discovered, or ok=false if the component (despite
// being strongly connected) carries no negative-weight cycle — e.g.
// spec.md's 6x6 fixture where the SCC's cheapest loop nets a weight
// sum >= 0.
func (f *Finder) Find(c scc.Component, vertexCurrency func(componentVertex int) currency.Currency) (Witness, bool) {
	n := len(c.Indices)
	if n == 0 {
		return Witness{}, false
	}

	dist := make([]float64, n)
	pred := make([]int, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		pred[i] = -1
	}
	dist[0] = 0

	var lastRelaxed int = -1

	// V-1 relaxation passes, each reading against a frozen snapshot of
	// dist taken at the start of the pass (spec.md §4.3's determinism
	// requirement — this is the departure from the teacher's SPFA).
	// Every vertex in the component is reachable from vertex 0 (it is
	// strongly connected), so this single source sees every cycle.
	for pass := 0; pass < n-1; pass++ {
		frozen := make([]float64, n)
		copy(frozen, dist)

		for i := 0; i < n; i++ {
			if math.IsInf(frozen[i], 1) {
				continue
			}
			for j := 0; j < n; j++ {
				w := c.SubMatrix[i][j]
				if i == j || w == noEdge {
					continue
				}
				candidate := frozen[i] + w
				if candidate < dist[j] {
					dist[j] = candidate
					pred[j] = i
				}
			}
		}
	}

	// One more pass to find a vertex that can still be relaxed — that
	// vertex is reachable from a negative cycle.
	frozen := make([]float64, n)
	copy(frozen, dist)
	for i := 0; i < n; i++ {
		if math.IsInf(frozen[i], 1) {
			continue
		}
		for j := 0; j < n; j++ {
			w := c.SubMatrix[i][j]
			if i == j || w == noEdge {
				continue
			}
			candidate := frozen[i] + w
			if candidate < dist[j] {
				dist[j] = candidate
				pred[j] = i
				lastRelaxed = j
			}
		}
	}

	if lastRelaxed < 0 {
		return Witness{}, false
	}

	localIndices := extractCycleFromPred(lastRelaxed, pred, n)
	if localIndices == nil {
		return Witness{}, false
	}

	currencies := make([]currency.Currency, len(localIndices))
	for i, v := range localIndices {
		currencies[i] = vertexCurrency(v)
	}

	return Witness{Currencies: currencies, Indices: localIndices}, true
}

// extractCycleFromPred walks pred n steps from cycleVertex to guarantee
// landing inside the cycle, then walks again collecting vertices until
// a repeat, truncates, and reverses — spec.md §4.3 step 5, grounded in
// the teacher's detector/bellmanford.go extractCycleFromPred.
func extractCycleFromPred(cycleVertex int, pred []int, n int) []int {
	v := cycleVertex
	for i := 0; i < n; i++ {
		if pred[v] < 0 {
			return nil
		}
		v = pred[v]
	}

	start := v
	visited := make(map[int]bool)
	var walk []int
	current := start

	for {
		if visited[current] {
			break
		}
		visited[current] = true
		walk = append(walk, current)

		if pred[current] < 0 {
			return nil
		}
		current = pred[current]

		if current == start {
			break
		}
	}

	// walk was collected start -> ... via predecessors, which is the
	// cycle in reverse traversal order; reverse it into forward order.
	for i, j := 0, len(walk)-1; i < j; i, j = i+1, j-1 {
		walk[i], walk[j] = walk[j], walk[i]
	}
	return walk
}

// Weight sums the edge weights of a witness cycle against its owning
// component's sub-matrix, for logging/diagnostics (spec.md §8 invariant:
// a reported cycle's weight sum must be < 0).
func Weight(c scc.Component, localIndices []int) float64 {
	total := 0.0
	for i := 0; i < len(localIndices); i++ {
		from := localIndices[i]
		to := localIndices[(i+1)%len(localIndices)]
		total += c.SubMatrix[from][to]
	}
	return total
}
