package expreplay

import (
	"github.com/samuelfneumann/rlroute/timestep"
)

// onlineCache implements an experience replay buffer for sampling
// completely online.
//
// When creating a new experience replay buffer, the user could
// choose to use a buffer with a maximum capacity of 1. In this case,
// experience replay reduces to online sampling of the most recent
// transition.
type onlineCache struct {
	last        *timestep.Transition
	featureSize int
}

// newOnline returns a new online replay buffer
func newOnline(featureSize int) ExperienceReplayer {
	return &onlineCache{featureSize: featureSize}
}

// Add replaces the stored transition
func (o *onlineCache) Add(t timestep.Transition) error {
	if err := checkTransition(t, o.featureSize); err != nil {
		return err
	}

	t.State = append([]float64(nil), t.State...)
	t.NextState = append([]float64(nil), t.NextState...)
	o.last = &t
	return nil
}

// Sample returns the most recent transition as a batch of one
func (o *onlineCache) Sample() (Batch, error) {
	if o.last == nil {
		err := &ExpReplayError{
			Op:  "sample",
			Err: errEmptyCache,
		}
		return Batch{}, err
	}

	t := o.last
	return Batch{
		Nodes:      []int{t.Node},
		States:     append([]float64(nil), t.State...),
		Actions:    []int{t.Action},
		Rewards:    []float64{t.Reward},
		Discounts:  []float64{t.Discount},
		NextNodes:  []int{t.NextNode},
		NextStates: append([]float64(nil), t.NextState...),
	}, nil
}

// Capacity returns the current number of elements in the cache that
// are available for sampling
func (o *onlineCache) Capacity() int {
	if o.last == nil {
		return 0
	}
	return 1
}

// MaxCapacity returns the maximum number of elements that are allowed
// in the cache
func (o *onlineCache) MaxCapacity() int {
	return 1
}

// MinCapacity returns the minimum number of elements required in the
// cache before sampling is allowed
func (o *onlineCache) MinCapacity() int {
	return 1
}

// BatchSize returns the number of samples sampled using Sample() -
// a.k.a the batch size
func (o *onlineCache) BatchSize() int {
	return 1
}
