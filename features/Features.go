// Package features implements node feature extractors which turn a node
// of a topology into the input of a function approximator.
package features

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph/network"

	"github.com/samuelfneumann/rlroute/topology"
)

// Extractor returns the features of the node at some index. Returned
// slices must not be modified.
type Extractor interface {
	Features(node int) []float64
	Len() int // Number of features per node
}

// Local extracts local structural features of each node:
//
//	[degree, clustering coefficient, betweenness, neighbor count]
//
// Betweenness is normalised by the number of ordered pairs of other
// nodes, (n-1)(n-2), so that it lies in [0, 1]. Each vector is then
// divided by its largest component. Vectors of isolated
// nodes stay zero. Features are computed once on construction since the
// topology never changes.
type Local struct {
	features [][]float64
}

// LocalLen is the number of features produced by Local
const LocalLen int = 4

// NewLocal returns a new Local feature extractor over t
func NewLocal(t *topology.Topology) *Local {
	betweenness := network.Betweenness(t.HopGraph())
	scale := 0.0
	if n := float64(t.Len()); n > 2 {
		scale = 1 / ((n - 1) * (n - 2))
	}

	features := make([][]float64, t.Len())
	for i := range features {
		neighbors := t.NeighborIndices(i)
		f := []float64{
			float64(t.Degree(i)),
			clustering(t, i),
			betweenness[int64(i)] * scale,
			float64(len(neighbors)),
		}

		if max := floats.Max(f); max > 0 {
			floats.Scale(1/max, f)
		}
		features[i] = f
	}

	return &Local{features: features}
}

// Features returns the features of the node at index node
func (l *Local) Features(node int) []float64 {
	return l.features[node]
}

// Len returns the number of features per node
func (l *Local) Len() int {
	return LocalLen
}

// clustering returns the local clustering coefficient of the node at
// index i: the fraction of pairs of its neighbors which are adjacent.
func clustering(t *topology.Topology, i int) float64 {
	neighbors := t.NeighborIndices(i)
	k := len(neighbors)
	if k < 2 {
		return 0
	}

	links := 0
	for a := 0; a < k; a++ {
		for b := a + 1; b < k; b++ {
			if t.HasLink(neighbors[a], neighbors[b]) {
				links++
			}
		}
	}
	return 2 * float64(links) / float64(k*(k-1))
}
