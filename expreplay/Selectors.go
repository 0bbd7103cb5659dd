package expreplay

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// SelectorType determines how a Selector chooses data from a buffer
type SelectorType string

const (
	Uniform SelectorType = "Uniform"
	Fifo    SelectorType = "Fifo"
)

// orderedSampler implements an experience replay buffer that can return
// its underlying indices to sample from and insertion order of these
// indices
type orderedSampler interface {
	Capacity() int
	sampleFrom() []int

	// insertOrder returns the first n indices that were added to the
	// buffer
	insertOrder(n int) []int
}

// Selector implements functionality for choosing how data should be
// sampled from an experience replay buffer
type Selector interface {
	// choose selects the indices at which data should be sampled from
	// the experience replay buffer
	choose(c orderedSampler) []int

	// BatchSize returns the number of elements that will be selected
	BatchSize() int
}

// CreateSelector is a factory for creating Selectors
func CreateSelector(t SelectorType, batchSize int, seed uint64) Selector {
	switch t {
	case Uniform:
		return NewUniformSelector(batchSize, seed)
	case Fifo:
		return NewFifoSelector(batchSize)
	default:
		panic(fmt.Sprintf("createSelector: unknown selector type %q", t))
	}
}

// uniformSelector is a Selector which selects data from an experience
// replay buffer uniformly randomly without replacement
type uniformSelector struct {
	samples int
	rng     *rand.Rand
}

// NewUniformSelector returns a new Selector which selects data uniformly
// randomly from an experience replay buffer. No index is selected twice
// in the same batch.
func NewUniformSelector(samples int, seed uint64) Selector {
	source := rand.NewSource(seed)
	rng := rand.New(source)

	return &uniformSelector{samples: samples, rng: rng}
}

// size gets the number of samples in a batch drawn from the buffer
func (u *uniformSelector) BatchSize() int {
	return u.samples
}

// choose selects a number of indices at which to draw data from the
// buffer
func (u *uniformSelector) choose(c orderedSampler) []int {
	from := c.sampleFrom()
	perm := u.rng.Perm(len(from))

	selected := make([]int, u.BatchSize())
	for i := range selected {
		selected[i] = from[perm[i]]
	}
	return selected
}

// fifoSelector is a Selector which selects data from an experience
// replay buffer as first-in-first-out.
type fifoSelector struct {
	samples int
}

// NewFifoSelector returns a new Selector which draws data from an
// experience replay buffer in as FiFo.
func NewFifoSelector(samples int) Selector {
	return &fifoSelector{samples: samples}
}

// size gets the number of samples in a batch drawn from the buffer
func (f *fifoSelector) BatchSize() int {
	return f.samples
}

// choose selects the oldest data in the buffer
func (f *fifoSelector) choose(c orderedSampler) []int {
	return c.insertOrder(f.BatchSize())
}
