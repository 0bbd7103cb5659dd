// Package qlearning implements tabular Q-learning of routes to a single
// destination.
//
// States and actions are both nodes of a topology: the value Q[c, n] is
// the value of moving from node c to node n. Moves to nodes which are
// not adjacent to the current node are penalized and leave the agent
// where it is.
package qlearning

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/rlroute/agent"
	"github.com/samuelfneumann/rlroute/agent/policy"
	"github.com/samuelfneumann/rlroute/experiment/tracker"
	"github.com/samuelfneumann/rlroute/timestep"
	"github.com/samuelfneumann/rlroute/topology"
)

// QLearning implements the Q-Learning algorithm over the nodes of a
// topology
type QLearning struct {
	topo        *topology.Topology
	destination int
	config      Config

	q         *mat.Dense
	behaviour *policy.EGreedy
	rng       *rand.Rand // Start nodes of randomized episodes

	trackers []tracker.Tracker
	logger   *zap.SugaredLogger
}

// New creates a new QLearning agent which learns to route to the
// destination node
func New(t *topology.Topology, destination string, c Config,
	seed uint64) (*QLearning, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	dest, err := t.Index(destination)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	behaviour, err := policy.NewEGreedy(c.Epsilon, c.EpsilonMin,
		c.EpsilonDecay, seed)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	return &QLearning{
		topo:        t,
		destination: dest,
		config:      c,
		q:           initTable(t.Len(), c.InitLow, c.InitHigh, seed+1),
		behaviour:   behaviour,
		rng:         rand.New(rand.NewSource(seed + 2)),
		logger:      zap.NewNop().Sugar(),
	}, nil
}

// initTable returns a new n x n table with entries drawn uniformly from
// [low, high]
func initTable(n int, low, high float64, seed uint64) *mat.Dense {
	data := make([]float64, n*n)
	if low == high {
		for i := range data {
			data[i] = low
		}
		return mat.NewDense(n, n, data)
	}

	dist := distuv.Uniform{Min: low, Max: high, Src: rand.NewSource(seed)}
	for i := range data {
		data[i] = dist.Rand()
	}
	return mat.NewDense(n, n, data)
}

// SetLogger sets the logger used to report training anomalies
func (q *QLearning) SetLogger(logger *zap.SugaredLogger) {
	q.logger = logger
}

// Track registers Trackers which receive every timestep of training
func (q *QLearning) Track(trackers ...tracker.Tracker) {
	q.trackers = append(q.trackers, trackers...)
}

// Destination returns the index of the destination node
func (q *QLearning) Destination() int {
	return q.destination
}

// Epsilon returns the current ε of the behaviour policy
func (q *QLearning) Epsilon() float64 {
	return q.behaviour.Epsilon()
}

// Q returns the value of moving from node index i to node index j
func (q *QLearning) Q(i, j int) float64 {
	return q.q.At(i, j)
}

// Table returns a copy of the Q-table
func (q *QLearning) Table() *mat.Dense {
	return mat.DenseCopyOf(q.q)
}

// Greedy returns the node with the largest value from node index i. With
// neighbor masking only the neighbors of i are considered, and a node
// without neighbors returns -1.
func (q *QLearning) Greedy(i int) int {
	return policy.Greedy(q.q.RawRowView(i), q.exploit(i))
}

// exploit returns the nodes the greedy policy may choose from node i
func (q *QLearning) exploit(i int) []int {
	if q.config.Masking == agent.MaskNeighbors {
		neighbors := q.topo.NeighborIndices(i)
		if neighbors == nil {
			return []int{}
		}
		return neighbors
	}
	return nil
}

// TrainFixed trains the agent for a number of episodes which all start
// at the source node
func (q *QLearning) TrainFixed(source string, episodes int) (agent.Stats,
	error) {
	start, err := q.topo.Index(source)
	if err != nil {
		return agent.Stats{}, fmt.Errorf("trainFixed: %w", err)
	}
	if episodes < 0 {
		return agent.Stats{}, fmt.Errorf("trainFixed: episodes must be "+
			">= 0, have(%v)", episodes)
	}

	var stats agent.Stats
	for i := 0; i < episodes; i++ {
		stats.Add(q.episode(start))
	}
	q.logger.Infow("finished fixed training", "source", source,
		"destination", q.topo.Node(q.destination), "episodes",
		stats.Episodes, "reached", stats.Reached, "deadEnds",
		stats.DeadEnds)
	return stats, nil
}

// TrainRandomized trains the agent for a number of episodes, each of
// which starts at a uniformly random node other than the destination
func (q *QLearning) TrainRandomized(episodes int) (agent.Stats, error) {
	if episodes < 0 {
		return agent.Stats{}, fmt.Errorf("trainRandomized: episodes must "+
			"be >= 0, have(%v)", episodes)
	}
	if q.topo.Len() < 2 {
		return agent.Stats{}, fmt.Errorf("trainRandomized: topology " +
			"must have at least two nodes")
	}

	var stats agent.Stats
	for i := 0; i < episodes; i++ {
		start := q.rng.Intn(q.topo.Len() - 1)
		if start >= q.destination {
			start++
		}
		stats.Add(q.episode(start))
	}
	q.logger.Infow("finished randomized training", "destination",
		q.topo.Node(q.destination), "episodes", stats.Episodes, "reached",
		stats.Reached, "deadEnds", stats.DeadEnds)
	return stats, nil
}

// episode runs a single episode from node index start
func (q *QLearning) episode(start int) agent.Stats {
	stats := agent.Stats{Episodes: 1}
	current := start
	q.track(timestep.New(timestep.First, 0, q.config.Discount, current,
		-1, 0))

	if current == q.destination {
		stats.Reached++
		q.track(timestep.New(timestep.Last, 0, 0, current, -1, 1))
	}

	for step := 1; current != q.destination; step++ {
		neighbors := q.topo.NeighborIndices(current)
		if len(neighbors) == 0 {
			err := &topology.NoNeighborsError{Node: q.topo.Node(current)}
			q.logger.Warnw("ending episode", "error", err)
			stats.DeadEnds++
			q.track(timestep.New(timestep.Last, 0, 0, current, -1, step))
			break
		}

		next := q.behaviour.SelectAction(q.q.RawRowView(current),
			neighbors, q.exploit(current))
		r, valid := q.config.Reward.Reward(q.topo, current, next,
			q.destination)
		stats.Steps++

		// Invalid moves leave the agent where it is
		landed := current
		if valid {
			landed = next
		} else {
			stats.Invalid++
		}
		q.update(current, next, landed, r)
		current = landed

		stepType, discount := timestep.Mid, q.config.Discount
		if current == q.destination {
			stats.Reached++
			stepType, discount = timestep.Last, 0
		} else if step >= q.config.MaxSteps {
			stepType = timestep.Last
		}
		q.track(timestep.New(stepType, r, discount, current, next, step))

		if stepType == timestep.Last {
			break
		}
	}

	q.behaviour.Decay()
	return stats
}

// update performs the Q-learning update for choosing node next at node
// current, landing at node landed and receiving reward r:
//
//	Q[current, next] += α(r + γ max Q[landed, :] - Q[current, next])
func (q *QLearning) update(current, next, landed int, r float64) {
	bestNext := floats.Max(q.q.RawRowView(landed))
	old := q.q.At(current, next)
	target := r + q.config.Discount*bestNext
	q.q.Set(current, next, old+q.config.LearningRate*(target-old))
}

func (q *QLearning) track(step timestep.TimeStep) {
	for _, t := range q.trackers {
		t.Track(step)
	}
}
