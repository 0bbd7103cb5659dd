// Package baseline compares learned routes with deterministic shortest
// paths over the same topology
package baseline

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/samuelfneumann/rlroute/route"
	"github.com/samuelfneumann/rlroute/topology"
)

// WeightKey determines the edge weight shortest paths are computed on
type WeightKey string

const (
	// Cost weighs each link by its derived cost
	Cost WeightKey = "cost"

	// Hops weighs every link equally
	Hops WeightKey = "hops"
)

// ParseWeightKey returns the WeightKey named s
func ParseWeightKey(s string) (WeightKey, error) {
	switch k := WeightKey(strings.ToLower(strings.TrimSpace(s))); k {
	case Cost, Hops:
		return k, nil
	default:
		return "", fmt.Errorf("unknown weight key %q", s)
	}
}

// graph returns the gonum view of t weighted by key
func (key WeightKey) graph(t *topology.Topology) (*simple.WeightedUndirectedGraph,
	error) {
	switch key {
	case Cost:
		return t.Graph(), nil
	case Hops:
		return t.HopGraph(), nil
	default:
		return nil, fmt.Errorf("unknown weight key %q", key)
	}
}

// ShortestPath returns the shortest path from source to destination
// with Dijkstra's algorithm. If no path exists, a *route.NoPathError is
// returned.
func ShortestPath(t *topology.Topology, source, destination string,
	key WeightKey) ([]string, error) {
	src, err := t.Index(source)
	if err != nil {
		return nil, fmt.Errorf("shortestPath: %w", err)
	}
	dst, err := t.Index(destination)
	if err != nil {
		return nil, fmt.Errorf("shortestPath: %w", err)
	}
	g, err := key.graph(t)
	if err != nil {
		return nil, fmt.Errorf("shortestPath: %v", err)
	}

	shortest := path.DijkstraFrom(topology.GraphNode(src), g)
	nodes, _ := shortest.To(int64(dst))
	if len(nodes) == 0 {
		return nil, &route.NoPathError{Source: source, Destination: destination}
	}

	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = t.Node(int(n.ID()))
	}
	return names, nil
}
