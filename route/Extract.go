// Package route extracts routes from learned greedy policies
package route

import (
	"fmt"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/samuelfneumann/rlroute/agent"
	"github.com/samuelfneumann/rlroute/topology"
)

// Route is a sequence of nodes from a source to a destination.
//
// A Route always ends at its destination. If the policy did not reach
// the destination within the allowed number of steps, the destination
// is appended regardless and Converged is false. Such a Route is not a
// real path through the topology and should be treated as unreliable.
type Route struct {
	Nodes     []string
	Converged bool
}

// Hops returns the number of hops in the route
func (r Route) Hops() int {
	if len(r.Nodes) == 0 {
		return 0
	}
	return len(r.Nodes) - 1
}

// Valid returns whether every pair of consecutive nodes in the route
// is joined by a link of t
func (r Route) Valid(t *topology.Topology) bool {
	for i := 1; i < len(r.Nodes); i++ {
		if _, err := t.Link(r.Nodes[i-1], r.Nodes[i]); err != nil {
			return false
		}
	}
	return true
}

// String implements the fmt.Stringer interface
func (r Route) String() string {
	if r.Converged {
		return fmt.Sprintf("%v", r.Nodes)
	}
	return fmt.Sprintf("%v (did not converge)", r.Nodes)
}

// Extract walks the greedy policy p from source for at most maxSteps
// steps and returns the nodes visited. The walk stops early if the
// policy reaches the destination or returns a node which does not
// exist.
//
// If the destination cannot be reached from the source at all, a
// *NoPathError is returned.
func Extract(t *topology.Topology, p agent.Policy, source,
	destination string, maxSteps int) (Route, error) {
	src, err := t.Index(source)
	if err != nil {
		return Route{}, fmt.Errorf("extract: %w", err)
	}
	dst, err := t.Index(destination)
	if err != nil {
		return Route{}, fmt.Errorf("extract: %w", err)
	}
	if maxSteps < 0 {
		return Route{}, fmt.Errorf("extract: max steps must be >= 0, "+
			"have(%v)", maxSteps)
	}

	if !topo.PathExistsIn(t.HopGraph(), topology.GraphNode(src),
		topology.GraphNode(dst)) {
		return Route{}, &NoPathError{Source: source, Destination: destination}
	}

	nodes := []string{source}
	current := src
	for step := 0; step < maxSteps && current != dst; step++ {
		next := p.Greedy(current)
		if next < 0 || next >= t.Len() {
			break
		}
		current = next
		nodes = append(nodes, t.Node(current))
	}

	if current == dst {
		return Route{Nodes: nodes, Converged: true}, nil
	}
	return Route{Nodes: append(nodes, destination), Converged: false}, nil
}

// FromTrainer extracts the route from source to the destination of a
// Trainer
func FromTrainer(t *topology.Topology, tr agent.Trainer, source string,
	maxSteps int) (Route, error) {
	if tr.Destination() < 0 || tr.Destination() >= t.Len() {
		return Route{}, fmt.Errorf("fromTrainer: trainer has no " +
			"destination")
	}
	return Extract(t, tr, source, t.Node(tr.Destination()), maxSteps)
}
