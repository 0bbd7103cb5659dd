// Package expreplay implements experience replay buffers of routing
// transitions
package expreplay

import (
	"fmt"

	"github.com/samuelfneumann/rlroute/timestep"
)

// Config implements a specific configuration of an ExperienceReplayer
type Config struct {
	SampleMethod      SelectorType `json:"sampleMethod" mapstructure:"sampleMethod" yaml:"sampleMethod"`
	SampleSize        int          `json:"sampleSize" mapstructure:"sampleSize" yaml:"sampleSize"`
	MaxReplayCapacity int          `json:"maxReplayCapacity" mapstructure:"maxReplayCapacity" yaml:"maxReplayCapacity"`
	MinReplayCapacity int          `json:"minReplayCapacity" mapstructure:"minReplayCapacity" yaml:"minReplayCapacity"`
}

// DefaultConfig returns a buffer of 1000 transitions sampled uniformly
// in batches of 32
func DefaultConfig() Config {
	return Config{
		SampleMethod:      Uniform,
		SampleSize:        32,
		MaxReplayCapacity: 1000,
		MinReplayCapacity: 32,
	}
}

// Validate checks that the Config describes a valid buffer
func (c Config) Validate() error {
	if c.SampleSize < 1 {
		return fmt.Errorf("sample size must be >= 1, have(%v)", c.SampleSize)
	}
	if c.MinReplayCapacity < c.SampleSize {
		return fmt.Errorf("cannot have min capacity (%v) < batch size (%v)",
			c.MinReplayCapacity, c.SampleSize)
	}
	if c.MaxReplayCapacity < c.MinReplayCapacity {
		return fmt.Errorf("cannot have max capacity (%v) < min capacity "+
			"(%v)", c.MaxReplayCapacity, c.MinReplayCapacity)
	}
	if c.SampleMethod != Uniform && c.SampleMethod != Fifo {
		return fmt.Errorf("unknown sample method %q", c.SampleMethod)
	}
	return nil
}

// Create creates and returns the ExperienceReplayer with the specified
// Config.
func (c Config) Create(featureSize int, seed uint64) (ExperienceReplayer,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("create: %v", err)
	}
	sampler := CreateSelector(c.SampleMethod, c.SampleSize, seed)

	return New(sampler, c.MinReplayCapacity, c.MaxReplayCapacity,
		featureSize)
}

// Batch is a batch of transitions sampled from a buffer. States and
// NextStates are stored in row major order, one row per transition.
type Batch struct {
	Nodes      []int
	States     []float64
	Actions    []int
	Rewards    []float64
	Discounts  []float64
	NextNodes  []int
	NextStates []float64
}

// Len returns the number of transitions in the batch
func (b Batch) Len() int {
	return len(b.Actions)
}

// ExperienceReplayer implements an experience replay buffer
type ExperienceReplayer interface {
	// Add adds a transition to the buffer
	Add(t timestep.Transition) error

	// Sample samples a batch of experience from the buffer
	Sample() (Batch, error)

	// Capacity returns the current number of samples in the buffer
	Capacity() int

	// MaxCapacity returns the maximum allowable samples in the buffer
	MaxCapacity() int

	// MinCapacity returns the number of samples required to be in
	// the buffer before the buffer can be sampled
	MinCapacity() int

	// BatchSize returns the number of samples returned by Sample()
	BatchSize() int
}

// New creates and returns a new ExperienceReplayer. The sampler
// determines how data is sampled from the buffer, and data is removed
// first-in-first-out once the buffer holds maxCapacity transitions.
// The featureSize parameter defines the size of state feature vectors.
func New(sampler Selector, minCapacity, maxCapacity,
	featureSize int) (ExperienceReplayer, error) {
	if minCapacity <= 0 {
		return nil, fmt.Errorf("new: minCapacity must be > 0")
	}
	if maxCapacity < minCapacity {
		return nil, fmt.Errorf("new: maxCapacity must be >= minCapacity")
	}
	if minCapacity < sampler.BatchSize() {
		return nil, fmt.Errorf("new: cannot have batch size(%v) > min "+
			"buffer capacity (%v)", sampler.BatchSize(), minCapacity)
	}
	if featureSize < 1 {
		return nil, fmt.Errorf("new: featureSize must be >= 1")
	}

	// If minCapacity == maxCapacity == 1, then the replay buffer
	// only stores the most recent online transition.
	if maxCapacity == 1 {
		return newOnline(featureSize), nil
	}

	return newFifoRemove1Cache(sampler, minCapacity, maxCapacity,
		featureSize), nil
}

// checkTransition checks that a transition fits a buffer
func checkTransition(t timestep.Transition, featureSize int) error {
	if len(t.State) != featureSize || len(t.NextState) != featureSize {
		return fmt.Errorf("add: invalid feature size \n\twant(%v)\n\t"+
			"have(%v, %v)", featureSize, len(t.State), len(t.NextState))
	}
	return nil
}
