// Package config implements the configuration of a routing run. A run
// builds or loads a topology, trains a tabular and a deep Q-learning
// agent, and compares the routes they learn with shortest paths.
package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/samuelfneumann/rlroute/agent"
	"github.com/samuelfneumann/rlroute/agent/deepq"
	"github.com/samuelfneumann/rlroute/agent/qlearning"
	"github.com/samuelfneumann/rlroute/baseline"
	"github.com/samuelfneumann/rlroute/expreplay"
	"github.com/samuelfneumann/rlroute/initwfn"
	"github.com/samuelfneumann/rlroute/network"
	"github.com/samuelfneumann/rlroute/reward"
	"github.com/samuelfneumann/rlroute/solver"
	"github.com/samuelfneumann/rlroute/topology"
)

// TrainMode determines where the episodes of tabular training start
type TrainMode string

const (
	// Fixed starts every episode at the configured source
	Fixed TrainMode = "fixed"

	// Randomized starts every episode at a random node
	Randomized TrainMode = "randomized"
)

// Config is the configuration of a run
type Config struct {
	Seed        uint64 `yaml:"seed"`
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`

	Topology Topology `yaml:"topology"`
	Tabular  Tabular  `yaml:"tabular"`
	DQN      DQN      `yaml:"dqn"`
	Baseline Baseline `yaml:"baseline"`

	// Maximum number of hops of an extracted route
	MaxRouteSteps int `yaml:"maxRouteSteps"`

	// Directory to save tracked training data to. Nothing is saved if
	// empty.
	OutputDir string `yaml:"outputDir"`
}

// Topology configures the topology of a run. The topology is loaded
// from File if given, otherwise it is generated.
type Topology struct {
	File        string                  `yaml:"file"`
	Generate    topology.GenerateConfig `yaml:"generate"`
	CostWeights topology.CostWeights    `yaml:"costWeights"`
}

// Tabular configures the tabular Q-learning agent
type Tabular struct {
	Enabled  bool      `yaml:"enabled"`
	Mode     TrainMode `yaml:"mode"`
	Episodes int       `yaml:"episodes"`

	// Episodes between Q-table checkpoints saved to the output
	// directory. Zero disables checkpointing.
	Checkpoint int `yaml:"checkpoint"`

	qlearning.Config `yaml:",inline"`
}

// DQN configures the deep Q-learning agent
type DQN struct {
	Enabled  bool `yaml:"enabled"`
	Episodes int  `yaml:"episodes"`

	HiddenSizes []int          `yaml:"hiddenSizes"`
	Activation  string         `yaml:"activation"`
	Solver      solver.Config  `yaml:"solver"`
	Init        initwfn.Config `yaml:"init"` // Weight initialization

	Discount     float64 `yaml:"discount"`
	Epsilon      float64 `yaml:"epsilon"`
	EpsilonMin   float64 `yaml:"epsilonMin"`
	EpsilonDecay float64 `yaml:"epsilonDecay"`

	ExpReplay            expreplay.Config    `yaml:"expReplay"`
	TargetUpdateInterval int                 `yaml:"targetUpdateInterval"`
	Tau                  float64             `yaml:"tau"`
	MaxSteps             int                 `yaml:"maxSteps"`
	Masking              agent.ActionMasking `yaml:"masking"`
	Reward               reward.Metric       `yaml:"reward"`
}

// Baseline configures the shortest path baseline
type Baseline struct {
	WeightKey baseline.WeightKey `yaml:"weightKey"`
}

// New returns the default Config
func New() *Config {
	dqn := deepq.DefaultConfig()

	return &Config{
		Seed:        1,
		Source:      "h0",
		Destination: "h1",
		Topology: Topology{
			Generate:    topology.DefaultGenerateConfig(),
			CostWeights: topology.DefaultCostWeights(),
		},
		Tabular: Tabular{
			Enabled:  true,
			Mode:     Fixed,
			Episodes: 1000,
			Config:   qlearning.DefaultConfig(),
		},
		DQN: DQN{
			Enabled:              true,
			Episodes:             100,
			HiddenSizes:          dqn.HiddenSizes,
			Activation:           network.ReLU().String(),
			Solver:               dqn.Solver,
			Init:                 dqn.InitWFn,
			Discount:             dqn.Discount,
			Epsilon:              dqn.Epsilon,
			EpsilonMin:           dqn.EpsilonMin,
			EpsilonDecay:         dqn.EpsilonDecay,
			ExpReplay:            dqn.ExpReplay,
			TargetUpdateInterval: dqn.TargetUpdateInterval,
			Tau:                  dqn.Tau,
			MaxSteps:             dqn.MaxSteps,
			Masking:              dqn.Masking,
			Reward:               dqn.Reward,
		},
		Baseline:      Baseline{WeightKey: baseline.Cost},
		MaxRouteSteps: 100,
	}
}

// Validate checks that the Config describes a valid run
func (c *Config) Validate() error {
	if c.Source == "" || c.Destination == "" {
		return fmt.Errorf("source and destination must be set")
	}
	if c.MaxRouteSteps < 1 {
		return fmt.Errorf("max route steps must be positive, have(%v)",
			c.MaxRouteSteps)
	}

	if c.Topology.File == "" {
		if err := c.Topology.Generate.Validate(); err != nil {
			return fmt.Errorf("topology: %v", err)
		}
	}
	w := c.Topology.CostWeights
	if w.Delay < 0 || w.Bandwidth < 0 || w.Loss < 0 {
		return fmt.Errorf("topology: cost weights must be >= 0, have(%+v)", w)
	}

	if c.Tabular.Enabled {
		if err := c.Tabular.validate(); err != nil {
			return fmt.Errorf("tabular: %v", err)
		}
	}
	if c.DQN.Enabled {
		if c.DQN.Episodes < 0 {
			return fmt.Errorf("dqn: episodes must be >= 0, have(%v)",
				c.DQN.Episodes)
		}
		if _, err := c.DQN.Agent(); err != nil {
			return fmt.Errorf("dqn: %v", err)
		}
	}

	if _, err := baseline.ParseWeightKey(string(c.Baseline.WeightKey)); err != nil {
		return fmt.Errorf("baseline: %v", err)
	}
	return nil
}

func (t Tabular) validate() error {
	if t.Mode != Fixed && t.Mode != Randomized {
		return fmt.Errorf("unknown mode %q", t.Mode)
	}
	if t.Episodes < 0 {
		return fmt.Errorf("episodes must be >= 0, have(%v)", t.Episodes)
	}
	if t.Checkpoint < 0 {
		return fmt.Errorf("checkpoint must be >= 0, have(%v)", t.Checkpoint)
	}
	return t.Config.Validate()
}

// Agent returns the deepq.Config described by d
func (d DQN) Agent() (deepq.Config, error) {
	act, err := network.ParseActivation(d.Activation)
	if err != nil {
		return deepq.Config{}, err
	}
	biases := make([]bool, len(d.HiddenSizes))
	activations := make([]*network.Activation, len(d.HiddenSizes))
	for i := range d.HiddenSizes {
		biases[i] = true
		activations[i] = act
	}

	c := deepq.Config{
		HiddenSizes:          d.HiddenSizes,
		Biases:               biases,
		Activations:          activations,
		Solver:               d.Solver,
		InitWFn:              d.Init,
		Discount:             d.Discount,
		Epsilon:              d.Epsilon,
		EpsilonMin:           d.EpsilonMin,
		EpsilonDecay:         d.EpsilonDecay,
		ExpReplay:            d.ExpReplay,
		TargetUpdateInterval: d.TargetUpdateInterval,
		Tau:                  d.Tau,
		MaxSteps:             d.MaxSteps,
		Masking:              d.Masking,
		Reward:               d.Reward,
	}
	return c, c.Validate()
}

// Save writes c as YAML to w
func (c *Config) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("save: %v", err)
	}
	return enc.Close()
}
