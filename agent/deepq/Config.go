package deepq

import (
	"fmt"

	"github.com/samuelfneumann/rlroute/agent"
	"github.com/samuelfneumann/rlroute/expreplay"
	"github.com/samuelfneumann/rlroute/initwfn"
	"github.com/samuelfneumann/rlroute/network"
	"github.com/samuelfneumann/rlroute/reward"
	"github.com/samuelfneumann/rlroute/solver"
)

// Config implements a configuration for a DeepQ agent
type Config struct {
	HiddenSizes []int                 `json:"hiddenSizes" mapstructure:"hiddenSizes" yaml:"hiddenSizes"`
	Biases      []bool                `json:"biases" mapstructure:"biases" yaml:"biases"`
	Activations []*network.Activation `json:"activations" mapstructure:"activations" yaml:"activations"`
	Solver      solver.Config         `json:"solver" mapstructure:"solver" yaml:"solver"`

	// Initialization algorithm for weights
	InitWFn initwfn.Config `json:"initWFn" mapstructure:"initWFn" yaml:"initWFn"`

	Discount float64 `json:"discount" mapstructure:"discount" yaml:"discount"`

	// Behaviour policy, ε is decayed by EpsilonDecay after each episode
	// down to EpsilonMin
	Epsilon      float64 `json:"epsilon" mapstructure:"epsilon" yaml:"epsilon"`
	EpsilonMin   float64 `json:"epsilonMin" mapstructure:"epsilonMin" yaml:"epsilonMin"`
	EpsilonDecay float64 `json:"epsilonDecay" mapstructure:"epsilonDecay" yaml:"epsilonDecay"`

	// Experience replay parameters
	ExpReplay expreplay.Config `json:"expReplay" mapstructure:"expReplay" yaml:"expReplay"`

	// Target net updates. The target net is updated every
	// TargetUpdateInterval episodes, either by copying the online net
	// (Tau == 1) or by Polyak averaging.
	TargetUpdateInterval int     `json:"targetUpdateInterval" mapstructure:"targetUpdateInterval" yaml:"targetUpdateInterval"`
	Tau                  float64 `json:"tau" mapstructure:"tau" yaml:"tau"`

	MaxSteps int                 `json:"maxSteps" mapstructure:"maxSteps" yaml:"maxSteps"`
	Masking  agent.ActionMasking `json:"masking" mapstructure:"masking" yaml:"masking"`
	Reward   reward.Metric       `json:"reward" mapstructure:"reward" yaml:"reward"`
}

// DefaultConfig returns the default Config: two hidden layers of 64 ReLU
// units trained with Adam
func DefaultConfig() Config {
	return Config{
		HiddenSizes:          []int{64, 64},
		Biases:               []bool{true, true},
		Activations:          []*network.Activation{network.ReLU(), network.ReLU()},
		Solver:               solver.DefaultConfig(solver.Adam, 1e-3),
		InitWFn:              initwfn.DefaultConfig(initwfn.GlorotU),
		Discount:             0.9,
		Epsilon:              1.0,
		EpsilonMin:           0.1,
		EpsilonDecay:         0.995,
		ExpReplay:            expreplay.DefaultConfig(),
		TargetUpdateInterval: 10,
		Tau:                  1.0,
		MaxSteps:             50,
		Masking:              agent.MaskModulo,
		Reward:               reward.DefaultMetric(),
	}
}

// BatchSize returns the batch size of the agent constructed using this
// Config
func (c Config) BatchSize() int {
	return c.ExpReplay.SampleSize
}

// Validate checks a Config to ensure it is a valid configuration of a
// DeepQ agent.
func (c Config) Validate() error {
	if len(c.HiddenSizes) != len(c.Biases) {
		return fmt.Errorf("invalid number of biases\n\twant(%v)"+
			"\n\thave(%v)", len(c.HiddenSizes), len(c.Biases))
	}
	if len(c.HiddenSizes) != len(c.Activations) {
		return fmt.Errorf("invalid number of activations\n\twant(%v)"+
			"\n\thave(%v)", len(c.HiddenSizes), len(c.Activations))
	}
	for i, size := range c.HiddenSizes {
		if size < 1 {
			return fmt.Errorf("hidden layer %v must have positive size, "+
				"have(%v)", i, size)
		}
		if c.Activations[i] == nil {
			return fmt.Errorf("hidden layer %v has no activation", i)
		}
	}

	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("solver: %v", err)
	}
	if err := c.InitWFn.Validate(); err != nil {
		return fmt.Errorf("weight initialization: %v", err)
	}

	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("discount must be in [0, 1], have(%v)", c.Discount)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epsilon must be in [0, 1], have(%v)", c.Epsilon)
	}
	if c.EpsilonMin < 0 || c.EpsilonMin > c.Epsilon {
		return fmt.Errorf("minimum epsilon must be in [0, %v], have(%v)",
			c.Epsilon, c.EpsilonMin)
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return fmt.Errorf("epsilon decay must be in (0, 1], have(%v)",
			c.EpsilonDecay)
	}

	if err := c.ExpReplay.Validate(); err != nil {
		return err
	}

	if c.TargetUpdateInterval < 1 {
		return fmt.Errorf("target update interval must be positive, "+
			"have(%v)", c.TargetUpdateInterval)
	}
	if c.Tau <= 0 || c.Tau > 1 {
		return fmt.Errorf("tau must be in (0, 1], have(%v)", c.Tau)
	}

	if c.MaxSteps < 1 {
		return fmt.Errorf("max steps must be positive, have(%v)", c.MaxSteps)
	}
	if c.Masking != agent.MaskModulo && c.Masking != agent.MaskNeighbors {
		return fmt.Errorf("masking %v not supported", c.Masking)
	}
	return c.Reward.Validate()
}
