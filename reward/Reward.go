// Package reward implements the reward signals used to train routing
// agents.
//
// Sparse rewards are used by tabular agents, which only know whether a
// hop is valid and whether it reaches the destination. Metric rewards are
// used by function approximation agents and are derived from the quality
// of service metrics of the traversed link.
package reward

import (
	"fmt"

	"github.com/samuelfneumann/rlroute/topology"
)

// Sparse is a sparse reward over hops. A hop to a node which is not a
// neighbor of the current node earns Penalty, even if it is the
// destination. A valid hop into the destination earns Goal, and every
// other valid hop earns Step.
type Sparse struct {
	Goal    float64 `json:"goal" mapstructure:"goal" yaml:"goal"`
	Step    float64 `json:"step" mapstructure:"step" yaml:"step"`
	Penalty float64 `json:"penalty" mapstructure:"penalty" yaml:"penalty"`
}

// DefaultSparse returns the default sparse reward
func DefaultSparse() Sparse {
	return Sparse{Goal: 1000, Step: 10, Penalty: -10}
}

// Reward returns the reward for moving from node index current to node
// index next when trying to reach node index destination, and whether
// the hop was valid.
func (s Sparse) Reward(t *topology.Topology, current, next,
	destination int) (float64, bool) {
	if !t.HasLink(current, next) {
		return s.Penalty, false
	}
	if next == destination {
		return s.Goal, true
	}
	return s.Step, true
}

// Validate checks that the sparse reward ranks reaching the destination
// above a step and a step above an invalid hop.
func (s Sparse) Validate() error {
	if s.Goal <= s.Step || s.Step <= s.Penalty {
		return fmt.Errorf("sparse reward must satisfy goal > step > "+
			"penalty, have(%v, %v, %v)", s.Goal, s.Step, s.Penalty)
	}
	return nil
}

// Metric is a reward computed from link metrics. The cost of a link is
//
//	Beta1 * (1/bandwidth) + Beta2 * delay + Beta3 * loss
//
// and the reward of traversing it is the negated cost, so that agents
// which maximise reward minimise cost.
type Metric struct {
	Beta1 float64 `json:"beta1" mapstructure:"beta1" yaml:"beta1"` // Bandwidth
	Beta2 float64 `json:"beta2" mapstructure:"beta2" yaml:"beta2"` // Delay
	Beta3 float64 `json:"beta3" mapstructure:"beta3" yaml:"beta3"` // Loss
}

// DefaultMetric returns the default metric reward
func DefaultMetric() Metric {
	return Metric{Beta1: 0.33, Beta2: 0.33, Beta3: 0.34}
}

// Cost returns the cost of a link
func (m Metric) Cost(l topology.Link) float64 {
	return m.Beta1*(1/l.Bandwidth) + m.Beta2*l.Delay + m.Beta3*l.Loss
}

// Reward returns the reward of traversing a link
func (m Metric) Reward(l topology.Link) float64 {
	return -m.Cost(l)
}

// Validate checks that no weight is negative
func (m Metric) Validate() error {
	if m.Beta1 < 0 || m.Beta2 < 0 || m.Beta3 < 0 {
		return fmt.Errorf("metric weights must be >= 0, have(%v, %v, %v)",
			m.Beta1, m.Beta2, m.Beta3)
	}
	return nil
}
