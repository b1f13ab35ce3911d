package graphbuild

import "arbfinder/internal/currency"

// NumEdges returns the number of present edges (non-zero weight
// entries, excluding the diagonal) in the matrix.
func (m *Matrix) NumEdges() int {
	count := 0
	for i, row := range m.Weight {
		for j, w := range row {
			if i == j {
				continue
			}
			if w != noEdge {
				count++
			}
		}
	}
	return count
}

// HasEdge reports whether i->j is a present edge.
func (m *Matrix) HasEdge(i, j int) bool {
	if i == j {
		return false
	}
	if i < 0 || i >= len(m.Weight) || j < 0 || j >= len(m.Weight) {
		return false
	}
	return m.Weight[i][j] != noEdge
}

// EdgesFrom returns the destination indices reachable directly from i.
func (m *Matrix) EdgesFrom(i int) []int {
	if i < 0 || i >= len(m.Weight) {
		return nil
	}
	var out []int
	for j, w := range m.Weight[i] {
		if j != i && w != noEdge {
			out = append(out, j)
		}
	}
	return out
}

// SubMatrix extracts the induced sub-matrix over the given vertex
// indices, preserving their relative order. Used by scc.Partitioner to
// hand each strongly connected component its own dense matrix without
// re-probing the exchange — the deep-copy-then-freeze discipline of the
// teacher's graph/snapshot.go CreateSnapshot, applied to a matrix
// instead of an adjacency list.
func (m *Matrix) SubMatrix(indices []int) [][]float64 {
	sub := make([][]float64, len(indices))
	for a, i := range indices {
		sub[a] = make([]float64, len(indices))
		for b, j := range indices {
			sub[a][b] = m.Weight[i][j]
		}
	}
	return sub
}

// CurrencyAt returns the currency at a matrix index.
func (m *Matrix) CurrencyAt(idx int) (currency.Currency, bool) {
	if idx < 0 || idx >= len(m.Currencies) {
		return "", false
	}
	return m.Currencies[idx], true
}
