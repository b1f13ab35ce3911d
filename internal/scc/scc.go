// Package scc partitions a graphbuild.Matrix into its strongly
// connected components via Tarjan's algorithm. This is a new component
// (spec.md §4.2) with no counterpart in the teacher repo; it is
// grounded in gonum/graph's structure.TarjanSCC (index/lowlink/onStack
// bookkeeping, root-node-pops-the-stack output rule), translated from
// graph.Node-keyed recursion to plain int vertex indices matching our
// dense matrix, and from recursive to an explicit-stack iterative form
// to avoid recursion-depth concerns on large candidate sets — the
// teacher favors explicit loops over recursion throughout detector/.
package scc

import "arbfinder/internal/graphbuild"

// Component is one strongly connected component of size >= 3: the
// vertex indices into the parent matrix, in the order they were popped
// off Tarjan's stack (reverse discovery order, root last), plus the
// induced sub-matrix over those indices.
type Component struct {
	Indices   []int
	SubMatrix [][]float64
}

// Partition returns every component of size >= 3 (the only ones that
// can contain a cycle of meaningful length) plus the isolated vertex
// indices segregated out (components of size <= 2, spec.md §4.2).
type Partition struct {
	Components []Component
	Isolated   []int
}

// Partitioner runs Tarjan's SCC algorithm over a graphbuild.Matrix.
type Partitioner struct{}

// NewPartitioner constructs a Partitioner. Stateless; exists as a type
// so callers can hold it alongside the rest of the pipeline uniformly.
func NewPartitioner() *Partitioner {
	return &Partitioner{}
}

// Partition computes the strongly connected components of m, excluding
// self-loops (the diagonal is always zero per graphbuild's invariant).
func (p *Partitioner) Partition(m *graphbuild.Matrix) Partition {
	t := &tarjan{
		n:     m.N(),
		succ:  m.EdgesFrom,
		index: make([]int, m.N()),
		low:   make([]int, m.N()),
		onStk: make([]bool, m.N()),
	}

	for v := 0; v < t.n; v++ {
		if t.index[v] == 0 {
			t.strongconnectIterative(v)
		}
	}

	out := Partition{}
	for _, sccIndices := range t.sccs {
		if len(sccIndices) <= 2 {
			out.Isolated = append(out.Isolated, sccIndices...)
			continue
		}
		out.Components = append(out.Components, Component{
			Indices:   sccIndices,
			SubMatrix: m.SubMatrix(sccIndices),
		})
	}
	return out
}

// tarjan holds the bookkeeping for one run. index/low are
// 1-indexed internally (0 means "unvisited") the way gonum's
// indexTable/lowLink maps treat a missing key as zero.
type tarjan struct {
	n     int
	succ  func(int) []int
	next  int
	index []int
	low   []int
	onStk []bool
	stack []int
	sccs  [][]int
}

// frame is one level of the explicit call stack, standing in for the
// recursive strongconnect(v) call and its "resume after visiting
// successor w" continuation point.
type frame struct {
	v        int
	succIdx  int
	children []int
}

// strongconnectIterative computes the SCC containing root using an
// explicit stack in place of gonum's recursive strongconnect, so deep
// candidate graphs don't grow the Go call stack.
func (t *tarjan) strongconnectIterative(root int) {
	callStack := []*frame{t.visit(root)}

	for len(callStack) > 0 {
		top := callStack[len(callStack)-1]

		if top.succIdx < len(top.children) {
			w := top.children[top.succIdx]
			top.succIdx++

			if t.index[w] == 0 {
				callStack = append(callStack, t.visit(w))
				continue
			} else if t.onStk[w] {
				if t.index[w] < t.low[top.v] {
					t.low[top.v] = t.index[w]
				}
			}
			continue
		}

		// All successors processed; pop and propagate low-link to parent.
		callStack = callStack[:len(callStack)-1]
		if t.low[top.v] == t.index[top.v] {
			t.popComponent(top.v)
		}
		if len(callStack) > 0 {
			parent := callStack[len(callStack)-1]
			if t.low[top.v] < t.low[parent.v] {
				t.low[parent.v] = t.low[top.v]
			}
		}
	}
}

func (t *tarjan) visit(v int) *frame {
	t.next++
	t.index[v] = t.next
	t.low[v] = t.next
	t.stack = append(t.stack, v)
	t.onStk[v] = true
	return &frame{v: v, children: t.succ(v)}
}

func (t *tarjan) popComponent(root int) {
	var component []int
	for {
		n := len(t.stack) - 1
		w := t.stack[n]
		t.stack = t.stack[:n]
		t.onStk[w] = false
		component = append(component, w)
		if w == root {
			break
		}
	}
	t.sccs = append(t.sccs, component)
}
