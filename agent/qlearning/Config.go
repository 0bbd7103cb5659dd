package qlearning

import (
	"fmt"

	"github.com/samuelfneumann/rlroute/agent"
	"github.com/samuelfneumann/rlroute/reward"
)

// Config represents a configuration for the QLearning agent
type Config struct {
	LearningRate float64 `json:"learningRate" mapstructure:"learningRate" yaml:"learningRate"`
	Discount     float64 `json:"discount" mapstructure:"discount" yaml:"discount"`

	// Behaviour policy, ε is decayed by EpsilonDecay after each episode
	// down to EpsilonMin
	Epsilon      float64 `json:"epsilon" mapstructure:"epsilon" yaml:"epsilon"`
	EpsilonMin   float64 `json:"epsilonMin" mapstructure:"epsilonMin" yaml:"epsilonMin"`
	EpsilonDecay float64 `json:"epsilonDecay" mapstructure:"epsilonDecay" yaml:"epsilonDecay"`

	// Maximum number of steps in an episode
	MaxSteps int `json:"maxSteps" mapstructure:"maxSteps" yaml:"maxSteps"`

	// Q-table entries are initialized uniformly in [InitLow, InitHigh]
	InitLow  float64 `json:"initLow" mapstructure:"initLow" yaml:"initLow"`
	InitHigh float64 `json:"initHigh" mapstructure:"initHigh" yaml:"initHigh"`

	Masking agent.ActionMasking `json:"masking" mapstructure:"masking" yaml:"masking"`
	Reward  reward.Sparse       `json:"reward" mapstructure:"reward" yaml:"reward"`
}

// DefaultConfig returns the default Config
func DefaultConfig() Config {
	return Config{
		LearningRate: 0.1,
		Discount:     0.9,
		Epsilon:      0.1,
		EpsilonMin:   0.0,
		EpsilonDecay: 1.0,
		MaxSteps:     1000,
		InitLow:      -1.0,
		InitHigh:     1.0,
		Masking:      agent.MaskNone,
		Reward:       reward.DefaultSparse(),
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("learning rate must be in (0, 1], have(%v)",
			c.LearningRate)
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
	if c.MaxSteps < 1 {
		return fmt.Errorf("max steps must be positive, have(%v)", c.MaxSteps)
	}
	if c.InitHigh < c.InitLow {
		return fmt.Errorf("invalid initialization interval [%v, %v]",
			c.InitLow, c.InitHigh)
	}
	if c.Masking != agent.MaskNone && c.Masking != agent.MaskNeighbors {
		return fmt.Errorf("masking %v not supported", c.Masking)
	}
	return c.Reward.Validate()
}
