// Package policy implements ε-greedy action selection over node values
package policy

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/rlroute/utils/floatutils"
)

// EGreedy implements an ε-greedy policy over a vector of action values,
// one per node. With probability ε a uniformly random node is chosen,
// otherwise the node with the first maximum value is chosen.
//
// ε can be decayed multiplicatively down to some minimum after each
// episode.
type EGreedy struct {
	epsilon    float64
	epsilonMin float64
	decay      float64
	rng        *rand.Rand
}

// NewEGreedy returns a new EGreedy policy. Each call to Decay multiplies
// ε by decay, but never lowers it below min. A decay of 1 keeps ε fixed.
func NewEGreedy(e, min, decay float64, seed uint64) (*EGreedy, error) {
	if e < 0 || e > 1 {
		return nil, fmt.Errorf("newEGreedy: epsilon must be in [0, 1], "+
			"have(%v)", e)
	}
	if min < 0 || min > e {
		return nil, fmt.Errorf("newEGreedy: minimum epsilon must be in "+
			"[0, %v], have(%v)", e, min)
	}
	if decay <= 0 || decay > 1 {
		return nil, fmt.Errorf("newEGreedy: decay must be in (0, 1], "+
			"have(%v)", decay)
	}

	return &EGreedy{
		epsilon:    e,
		epsilonMin: min,
		decay:      decay,
		rng:        rand.New(rand.NewSource(seed)),
	}, nil
}

// Epsilon returns the current ε
func (p *EGreedy) Epsilon() float64 {
	return p.epsilon
}

// SetEpsilon sets ε, clipped to [0, 1]
func (p *EGreedy) SetEpsilon(e float64) {
	p.epsilon = floatutils.Clip(e, 0, 1)
}

// Decay decays ε once
func (p *EGreedy) Decay() {
	p.epsilon = floatutils.Clip(p.epsilon*p.decay, p.epsilonMin, 1)
}

// SelectAction selects a node given the values of all nodes. Random
// choices are drawn from explore and greedy choices from exploit. A nil
// set stands for every node. An empty, non-nil set returns -1.
func (p *EGreedy) SelectAction(values []float64, explore,
	exploit []int) int {
	if p.rng.Float64() < p.epsilon {
		return p.Random(len(values), explore)
	}
	return Greedy(values, exploit)
}

// Random returns a uniformly random element of candidates, or a random
// node in [0, n) if candidates is nil
func (p *EGreedy) Random(n int, candidates []int) int {
	if candidates == nil {
		return p.rng.Intn(n)
	}
	if len(candidates) == 0 {
		return -1
	}
	return candidates[p.rng.Intn(len(candidates))]
}

// Greedy returns the element of candidates with the first maximum value,
// or the first maximum over all values if candidates is nil.
func Greedy(values []float64, candidates []int) int {
	if candidates == nil {
		return floatutils.Argmax(values)
	}
	return floatutils.ArgmaxOver(values, candidates)
}
