// Package agent defines the interfaces shared by routing agents
package agent

import (
	"github.com/samuelfneumann/rlroute/experiment/tracker"
)

// Policy is a learned greedy policy over the nodes of a topology. Given
// the index of the current node, Greedy returns the index of the node
// that the policy moves to next.
//
// A Policy learned for one destination is only meaningful for that
// destination.
type Policy interface {
	Greedy(node int) int
}

// Trainer is an agent which learns a Policy by interacting with a
// topology over a number of episodes.
type Trainer interface {
	Policy

	// Destination returns the index of the node the agent routes to
	Destination() int

	// Track registers Trackers which receive every timestep of
	// training
	Track(trackers ...tracker.Tracker)
}

// Stats summarises a run of training
type Stats struct {
	Episodes int // Episodes run
	Steps    int // Total environment steps
	Reached  int // Episodes which reached the destination
	Invalid  int // Hops to non-adjacent nodes
	DeadEnds int // Episodes ended at a node without neighbors
}

// Add accumulates the statistics of o into s
func (s *Stats) Add(o Stats) {
	s.Episodes += o.Episodes
	s.Steps += o.Steps
	s.Reached += o.Reached
	s.Invalid += o.Invalid
	s.DeadEnds += o.DeadEnds
}
