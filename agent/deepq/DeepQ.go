// Package deepq implements deep Q-learning of routes over a topology.
//
// The action space of a DeepQ agent is the set of all nodes of the
// topology and its state is the feature vector of the current node.
// Actions which are not neighbors of the current node are masked
// according to the configured agent.ActionMasking, so every step of
// training moves along a real link.
package deepq

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/rlroute/agent"
	"github.com/samuelfneumann/rlroute/agent/policy"
	"github.com/samuelfneumann/rlroute/experiment/tracker"
	"github.com/samuelfneumann/rlroute/expreplay"
	"github.com/samuelfneumann/rlroute/features"
	"github.com/samuelfneumann/rlroute/network"
	"github.com/samuelfneumann/rlroute/timestep"
	"github.com/samuelfneumann/rlroute/topology"
)

// DeepQ implements the deep Q-learning algorithm with a target network
// and experience replay. The loss is the mean squared TD error of the
// actions taken.
type DeepQ struct {
	topo     *topology.Topology
	features features.Extractor
	config   Config

	// Network used to select actions, one state at a time
	policyNet network.NeuralNet
	policyVM  G.VM
	behaviour *policy.EGreedy

	// Online network whose weights are adapted, taking in batches
	trainNet network.NeuralNet
	trainVM  G.VM
	solver   G.Solver

	// Target network which provides the update target for a batch
	targetNet network.NeuralNet
	targetVM  G.VM

	// Input nodes of the loss in the graph of trainNet. For update:
	//
	// Q(s, a) <- Q(s, a) + α * (r + γ max Q(s', a') - Q(s, a)) ∇Q(s, a)
	//
	// nextStateActionValues provides Q(s', a') for all a' in s' and is
	// computed by targetNet.
	nextStateActionValues *G.Node
	rewards               *G.Node
	discounts             *G.Node
	selectedActions       *G.Node // One-hot actions taken in each state

	numActions int
	batchSize  int
	replay     expreplay.ExperienceReplayer

	rng         *rand.Rand // Source and destination of each episode
	destination int

	episodes      int
	gradientSteps int
	syncs         int

	trackers []tracker.Tracker
	logger   *zap.SugaredLogger
}

// New creates and returns a new DeepQ agent over the topology t, with
// states given by the extractor f
func New(t *topology.Topology, f features.Extractor, c Config,
	seed uint64) (*DeepQ, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	if t.Len() < 2 {
		return nil, fmt.Errorf("new: topology must have at least two nodes")
	}

	numActions := t.Len()
	numFeatures := f.Len()
	batchSize := c.BatchSize()

	behaviour, err := policy.NewEGreedy(c.Epsilon, c.EpsilonMin,
		c.EpsilonDecay, seed)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	// Behaviour network for selecting actions
	g := G.NewGraph()
	policyNet, err := network.NewMultiHeadMLP(
		numFeatures,
		1, // A single action is selected at a time
		numActions,
		g,
		c.HiddenSizes,
		c.Biases,
		c.InitWFn.InitWFn(seed+1),
		c.Activations,
	)
	if err != nil {
		return nil, fmt.Errorf("new: could not create policy network: %v",
			err)
	}
	policyVM := G.NewTapeMachine(g)

	// Create the target network which provides the update target
	targetNet, err := policyNet.CloneWithBatch(batchSize)
	if err != nil {
		return nil, fmt.Errorf("new: could not create target network: %v",
			err)
	}
	targetVM := G.NewTapeMachine(targetNet.Graph())

	// Create a training network which learns the weights
	trainNet, err := policyNet.CloneWithBatch(batchSize)
	if err != nil {
		return nil, fmt.Errorf("new: could not create learning network: %v",
			err)
	}
	gTrain := trainNet.Graph()

	// Create nodes to compute the update target: r + γ * max[Q(s', a')]
	nextStateActionValues := G.NewMatrix(gTrain, tensor.Float64,
		G.WithShape(batchSize, numActions), G.WithName("targetActionVals"))
	rewards := G.NewVector(gTrain, tensor.Float64, G.WithShape(batchSize),
		G.WithName("reward"))
	discounts := G.NewVector(gTrain, tensor.Float64, G.WithShape(batchSize),
		G.WithName("discount"))

	updateTarget := G.Must(G.Max(nextStateActionValues, 1))
	updateTarget = G.Must(G.HadamardProd(updateTarget, discounts))
	updateTarget = G.Must(G.Add(updateTarget, rewards))

	// Only the value of the action taken contributes to the loss, which
	// leaves every other output of the network untouched
	selectedActions := G.NewMatrix(
		gTrain,
		tensor.Float64,
		G.WithName("actionSelected"),
		G.WithShape(batchSize, numActions),
	)
	selectedActionsValue := G.Must(G.HadamardProd(trainNet.Prediction(),
		selectedActions))
	selectedActionsValue = G.Must(G.Sum(selectedActionsValue, 1))

	// Mean squared TD error
	losses := G.Must(G.Sub(updateTarget, selectedActionsValue))
	losses = G.Must(G.Square(losses))
	cost := G.Must(G.Mean(losses))

	if _, err = G.Grad(cost, trainNet.Learnables()...); err != nil {
		return nil, fmt.Errorf("new: could not compute gradient: %v", err)
	}

	trainVM := G.NewTapeMachine(
		gTrain,
		G.BindDualValues(trainNet.Learnables()...),
	)

	replay, err := c.ExpReplay.Create(numFeatures, seed+2)
	if err != nil {
		return nil, fmt.Errorf("new: could not create experience replay "+
			"buffer: %v", err)
	}

	return &DeepQ{
		topo:                  t,
		features:              f,
		config:                c,
		policyNet:             policyNet,
		policyVM:              policyVM,
		behaviour:             behaviour,
		trainNet:              trainNet,
		trainVM:               trainVM,
		solver:                c.Solver.Create(),
		targetNet:             targetNet,
		targetVM:              targetVM,
		nextStateActionValues: nextStateActionValues,
		rewards:               rewards,
		discounts:             discounts,
		selectedActions:       selectedActions,
		numActions:            numActions,
		batchSize:             batchSize,
		replay:                replay,
		rng:                   rand.New(rand.NewSource(seed + 3)),
		destination:           -1,
		logger:                zap.NewNop().Sugar(),
	}, nil
}

// SetLogger sets the logger used to report training progress
func (d *DeepQ) SetLogger(logger *zap.SugaredLogger) {
	d.logger = logger
}

// Track registers Trackers which receive every timestep of training
func (d *DeepQ) Track(trackers ...tracker.Tracker) {
	d.trackers = append(d.trackers, trackers...)
}

// SetDestination sets the destination used when the agent acts as a
// Policy. Training draws its own destination for each episode.
func (d *DeepQ) SetDestination(destination string) error {
	i, err := d.topo.Index(destination)
	if err != nil {
		return fmt.Errorf("setDestination: %w", err)
	}
	d.destination = i
	return nil
}

// Destination returns the index of the destination node, or -1 if
// none has been set
func (d *DeepQ) Destination() int {
	return d.destination
}

// Epsilon returns the current ε of the behaviour policy
func (d *DeepQ) Epsilon() float64 {
	return d.behaviour.Epsilon()
}

// Syncs returns the number of times the target network has been
// updated
func (d *DeepQ) Syncs() int {
	return d.syncs
}

// GradientSteps returns the number of minibatch updates performed
func (d *DeepQ) GradientSteps() int {
	return d.gradientSteps
}

// Replay returns the experience replay buffer of the agent
func (d *DeepQ) Replay() expreplay.ExperienceReplayer {
	return d.replay
}

// OnlineParams returns a copy of the weights of the online network
func (d *DeepQ) OnlineParams() [][]float64 {
	return d.trainNet.Params()
}

// TargetParams returns a copy of the weights of the target network
func (d *DeepQ) TargetParams() [][]float64 {
	return d.targetNet.Params()
}

// Values returns the action values of node index i predicted by the
// online network
func (d *DeepQ) Values(i int) []float64 {
	if err := d.policyNet.SetInput(d.features.Features(i)); err != nil {
		panic(fmt.Sprintf("values: could not set policy input: %v", err))
	}
	if err := d.policyVM.RunAll(); err != nil {
		panic(fmt.Sprintf("values: could not run policy: %v", err))
	}
	defer d.policyVM.Reset()

	values := d.policyNet.Output().Data().([]float64)
	return append([]float64(nil), values...)
}

// Greedy returns the node moved to from node index i when acting
// greedily with respect to the online network. Actions are masked in
// the same way as during training. A node without neighbors returns -1.
func (d *DeepQ) Greedy(i int) int {
	neighbors := d.topo.NeighborIndices(i)
	if len(neighbors) == 0 {
		return -1
	}

	values := d.Values(i)
	if d.config.Masking == agent.MaskNeighbors {
		return policy.Greedy(values, neighbors)
	}
	return d.config.Masking.Mask(policy.Greedy(values, nil), neighbors)
}

// Train trains the agent for a number of episodes. Each episode routes
// between a uniformly random pair of distinct nodes.
func (d *DeepQ) Train(episodes int) (agent.Stats, error) {
	if episodes < 0 {
		return agent.Stats{}, fmt.Errorf("train: episodes must be >= 0, "+
			"have(%v)", episodes)
	}

	var stats agent.Stats
	for i := 0; i < episodes; i++ {
		source := d.rng.Intn(d.topo.Len())
		destination := d.rng.Intn(d.topo.Len() - 1)
		if destination >= source {
			destination++
		}

		episodeStats, err := d.episode(source, destination)
		stats.Add(episodeStats)
		if err != nil {
			return stats, fmt.Errorf("train: episode %v: %v", d.episodes, err)
		}
	}

	d.logger.Infow("finished deep Q training", "episodes", stats.Episodes,
		"steps", stats.Steps, "reached", stats.Reached, "deadEnds",
		stats.DeadEnds, "syncs", d.syncs, "epsilon", d.Epsilon())
	return stats, nil
}

// episode runs a single episode from node index source to node index
// destination
func (d *DeepQ) episode(source, destination int) (agent.Stats, error) {
	stats := agent.Stats{Episodes: 1}
	current := source
	state := d.features.Features(current)
	d.track(timestep.New(timestep.First, 0, d.config.Discount, current,
		-1, 0))

	for step := 1; step <= d.config.MaxSteps; step++ {
		neighbors := d.topo.NeighborIndices(current)
		if len(neighbors) == 0 {
			err := &topology.NoNeighborsError{Node: d.topo.Node(current)}
			d.logger.Warnw("ending episode", "error", err)
			stats.DeadEnds++
			d.track(timestep.New(timestep.Last, 0, 0, current, -1, step))
			break
		}

		action := d.selectAction(current, neighbors)
		next := d.config.Masking.Mask(action, neighbors)
		link, ok := d.topo.LinkAt(current, next)
		if !ok {
			return stats, fmt.Errorf("masked action %v is not a neighbor "+
				"of %v", d.topo.Node(next), d.topo.Node(current))
		}
		r := d.config.Reward.Reward(link)
		stats.Steps++

		done := next == destination
		discount := d.config.Discount
		if done {
			discount = 0
		}

		nextState := d.features.Features(next)
		transition := timestep.NewTransition(current, state, action, r,
			discount, next, nextState)
		if err := d.replay.Add(transition); err != nil {
			return stats, err
		}
		if err := d.learn(); err != nil {
			return stats, err
		}

		current, state = next, nextState

		stepType := timestep.Mid
		if done {
			stats.Reached++
			stepType = timestep.Last
		} else if step == d.config.MaxSteps {
			stepType = timestep.Last
		}
		d.track(timestep.New(stepType, r, discount, current, next, step))

		if done {
			break
		}
	}

	d.episodes++
	d.behaviour.Decay()
	if d.episodes%d.config.TargetUpdateInterval == 0 {
		if err := d.sync(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// selectAction selects an action at node index current with the
// ε-greedy behaviour policy. The action is not yet masked.
func (d *DeepQ) selectAction(current int, neighbors []int) int {
	values := d.Values(current)
	if d.config.Masking == agent.MaskNeighbors {
		return d.behaviour.SelectAction(values, neighbors, neighbors)
	}
	return d.behaviour.SelectAction(values, nil, nil)
}

// learn performs a single gradient step on a minibatch sampled from
// the replay buffer. Nothing is learned until the buffer holds enough
// transitions.
func (d *DeepQ) learn() error {
	batch, err := d.replay.Sample()
	if expreplay.IsEmptyBuffer(err) || expreplay.IsInsufficientSamples(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("learn: %v", err)
	}

	// Previous actions as one-hot vectors
	oneHot := make([]float64, d.batchSize*d.numActions)
	for i, a := range batch.Actions {
		oneHot[i*d.numActions+a] = 1.0
	}
	prevActions := tensor.New(
		tensor.WithShape(d.batchSize, d.numActions),
		tensor.WithBacking(oneHot),
	)
	if err := G.Let(d.selectedActions, prevActions); err != nil {
		return fmt.Errorf("learn: could not set selected actions: %v", err)
	}

	// Predict the action values in the states and next states
	if err := d.trainNet.SetInput(batch.States); err != nil {
		return fmt.Errorf("learn: could not set trainNet input: %v", err)
	}
	if err := d.targetNet.SetInput(batch.NextStates); err != nil {
		return fmt.Errorf("learn: could not set target net input: %v", err)
	}

	// Compute the next state-action values
	if err := d.targetVM.RunAll(); err != nil {
		return fmt.Errorf("learn: could not run target net: %v", err)
	}
	nextValues := d.targetNet.Output().(*tensor.Dense).Clone().(*tensor.Dense)
	d.targetVM.Reset()
	if err := G.Let(d.nextStateActionValues, nextValues); err != nil {
		return fmt.Errorf("learn: could not set next state-action "+
			"values: %v", err)
	}

	rewardTensor := tensor.New(tensor.WithBacking(batch.Rewards),
		tensor.WithShape(d.batchSize))
	if err := G.Let(d.rewards, rewardTensor); err != nil {
		return fmt.Errorf("learn: could not set reward: %v", err)
	}
	discountTensor := tensor.New(tensor.WithBacking(batch.Discounts),
		tensor.WithShape(d.batchSize))
	if err := G.Let(d.discounts, discountTensor); err != nil {
		return fmt.Errorf("learn: could not set discount: %v", err)
	}

	// Run the learning step
	if err := d.trainVM.RunAll(); err != nil {
		return fmt.Errorf("learn: could not run train net: %v", err)
	}
	if err := d.solver.Step(d.trainNet.Model()); err != nil {
		return fmt.Errorf("learn: could not step solver: %v", err)
	}
	d.trainVM.Reset()
	d.gradientSteps++

	return d.policyNet.Set(d.trainNet)
}

// sync updates the target network with the weights of the online
// network
func (d *DeepQ) sync() error {
	var err error
	if d.config.Tau == 1.0 {
		err = d.targetNet.Set(d.trainNet)
	} else {
		err = d.targetNet.Polyak(d.trainNet, d.config.Tau)
	}
	if err != nil {
		return fmt.Errorf("sync: %v", err)
	}

	d.syncs++
	d.logger.Debugw("synced target network", "episode", d.episodes,
		"syncs", d.syncs)
	return nil
}

func (d *DeepQ) track(step timestep.TimeStep) {
	for _, t := range d.trackers {
		t.Track(step)
	}
}

// Close closes the VMs of the agent
func (d *DeepQ) Close() error {
	for _, vm := range []G.VM{d.policyVM, d.trainVM, d.targetVM} {
		if err := vm.Close(); err != nil {
			return err
		}
	}
	return nil
}
