package expreplay

import (
	"fmt"

	"github.com/samuelfneumann/rlroute/timestep"
)

// fifoRemove1Cache implements a concrete ExperienceReplayer where
// elements are removed from the buffer in a FiFo manner, and only a
// single element is removed from the cache at a time. Once the cache is
// full, each added transition overwrites the oldest one.
type fifoRemove1Cache struct {
	nodeCache      []int
	stateCache     []float64
	actionCache    []int
	rewardCache    []float64
	discountCache  []float64
	nextNodeCache  []int
	nextStateCache []float64

	indices         []int
	currentInUsePos int
	isFull          bool

	// Outlines how data is sampled
	sampler Selector

	minCapacity int
	maxCapacity int
	featureSize int
}

// newFifoRemove1Cache returns a new fifoRemove1Cache. The sampler
// parameter is a Selectors which determines how data is sampled
// from the replay buffer. The featureSize parameter defines the size of
// the feature vectors.
// The minCapacity parameter determines the minimum number of samples
// that should be in the buffer before sampling is allowed.
// The maxCapacity parameter determines the maximum number of samples
// allowed in the buffer at any given time.
func newFifoRemove1Cache(sampler Selector, minCapacity, maxCapacity,
	featureSize int) *fifoRemove1Cache {
	indices := make([]int, maxCapacity)
	for i := 0; i < maxCapacity; i++ {
		indices[i] = i
	}

	return &fifoRemove1Cache{
		nodeCache:      make([]int, maxCapacity),
		stateCache:     make([]float64, maxCapacity*featureSize),
		actionCache:    make([]int, maxCapacity),
		rewardCache:    make([]float64, maxCapacity),
		discountCache:  make([]float64, maxCapacity),
		nextNodeCache:  make([]int, maxCapacity),
		nextStateCache: make([]float64, maxCapacity*featureSize),

		indices:         indices,
		currentInUsePos: 0,
		isFull:          false,

		sampler: sampler,

		minCapacity: minCapacity,
		maxCapacity: maxCapacity,
		featureSize: featureSize,
	}
}

// String returns the string representation of the fifoRemove1Cache
func (c *fifoRemove1Cache) String() string {
	baseStr := "Indices Used: %v \nNodes: %v \nActions: %v \nRewards: %v" +
		" \nDiscounts: %v \nNext Nodes: %v"
	return fmt.Sprintf(baseStr, c.sampleFrom(), c.nodeCache, c.actionCache,
		c.rewardCache, c.discountCache, c.nextNodeCache)
}

// BatchSize returns the number of samples sampled using Sample() -
// a.k.a the batch size
func (c *fifoRemove1Cache) BatchSize() int {
	return c.sampler.BatchSize()
}

// insertOrder returns the indices of the n oldest samples in the
// buffer, oldest first
func (c *fifoRemove1Cache) insertOrder(n int) []int {
	if n > c.Capacity() {
		n = c.Capacity()
	}
	if !c.isFull {
		return c.indices[:n]
	}

	// Once full, the oldest sample is the one to be overwritten next
	order := make([]int, c.MaxCapacity())
	copy(order, c.indices[c.currentInUsePos:])
	copy(order[c.MaxCapacity()-c.currentInUsePos:],
		c.indices[:c.currentInUsePos])

	return order[:n]
}

// sampleFrom returns the slice of indices to sample from
func (c *fifoRemove1Cache) sampleFrom() []int {
	if !c.isFull {
		return c.indices[:c.currentInUsePos]
	}
	return c.indices
}

// Sample samples and returns a batch of transitions from the replay
// buffer
func (c *fifoRemove1Cache) Sample() (Batch, error) {
	if c.Capacity() == 0 {
		err := &ExpReplayError{
			Op:  "sample",
			Err: errEmptyCache,
		}
		return Batch{}, err
	}
	if c.Capacity() < c.MinCapacity() {
		err := &ExpReplayError{
			Op:  "sample",
			Err: errInsufficientSamples,
		}
		return Batch{}, err
	}

	indices := c.sampler.choose(c)
	size := len(indices)

	batch := Batch{
		Nodes:      make([]int, size),
		States:     make([]float64, size*c.featureSize),
		Actions:    make([]int, size),
		Rewards:    make([]float64, size),
		Discounts:  make([]float64, size),
		NextNodes:  make([]int, size),
		NextStates: make([]float64, size*c.featureSize),
	}
	for i, index := range indices {
		batchStartInd := i * c.featureSize
		expStartInd := index * c.featureSize

		copy(batch.States[batchStartInd:batchStartInd+c.featureSize],
			c.stateCache[expStartInd:expStartInd+c.featureSize])
		copy(batch.NextStates[batchStartInd:batchStartInd+c.featureSize],
			c.nextStateCache[expStartInd:expStartInd+c.featureSize])

		batch.Nodes[i] = c.nodeCache[index]
		batch.Actions[i] = c.actionCache[index]
		batch.Rewards[i] = c.rewardCache[index]
		batch.Discounts[i] = c.discountCache[index]
		batch.NextNodes[i] = c.nextNodeCache[index]
	}

	return batch, nil
}

// Capacity returns the current number of elements in the fifoRemove1Cache that
// are available for sampling
func (c *fifoRemove1Cache) Capacity() int {
	if c.isFull {
		return c.MaxCapacity()
	}
	return c.currentInUsePos
}

// MaxCapacity returns the maximum number of elements that are allowed
// in the fifoRemove1Cache
func (c *fifoRemove1Cache) MaxCapacity() int {
	return c.maxCapacity
}

// MinCapacity returns the minimum number of elements required in the
// fifoRemove1Cache before sampling is allowed
func (c *fifoRemove1Cache) MinCapacity() int {
	return c.minCapacity
}

// Add adds a transition to the fifoRemove1Cache
func (c *fifoRemove1Cache) Add(t timestep.Transition) error {
	if err := checkTransition(t, c.featureSize); err != nil {
		return err
	}

	index := c.currentInUsePos
	if !c.isFull && index+1 == c.MaxCapacity() {
		c.isFull = true
	}

	// Copy states
	stateInd := index * c.featureSize
	copy(c.stateCache[stateInd:stateInd+c.featureSize], t.State)
	copy(c.nextStateCache[stateInd:stateInd+c.featureSize], t.NextState)

	c.nodeCache[index] = t.Node
	c.actionCache[index] = t.Action
	c.rewardCache[index] = t.Reward
	c.discountCache[index] = t.Discount
	c.nextNodeCache[index] = t.NextNode

	c.currentInUsePos = (c.currentInUsePos + 1) % c.MaxCapacity()
	return nil
}
