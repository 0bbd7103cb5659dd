// Package solver describes Gorgonia solvers in a form that can be read
// from configuration files.
package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Type describes different types of solvers that are available
type Type string

// Available solver types
const (
	Adam    Type = "Adam"
	Vanilla Type = "Vanilla"
	RMSProp Type = "RMSProp"
)

// Config describes a Gorgonia Solver. Every hyperparameter is carried
// regardless of Type so that changing only the Type of a Config still
// leaves a valid Config.
type Config struct {
	Type     Type    `json:"type" mapstructure:"type" yaml:"type"`
	StepSize float64 `json:"stepSize" mapstructure:"stepSize" yaml:"stepSize"`

	// Batch is the divisor applied to accumulated gradients
	Batch int `json:"batch" mapstructure:"batch" yaml:"batch"`

	Epsilon float64 `json:"epsilon" mapstructure:"epsilon" yaml:"epsilon"` // Adam and RMSProp smoothing
	Beta1   float64 `json:"beta1" mapstructure:"beta1" yaml:"beta1"`       // Adam
	Beta2   float64 `json:"beta2" mapstructure:"beta2" yaml:"beta2"`       // Adam
	Rho     float64 `json:"rho" mapstructure:"rho" yaml:"rho"`             // RMSProp

	// Gradients are clipped to [-Clip, Clip] by Vanilla and RMSProp.
	// Clip <= 0 disables clipping.
	Clip float64 `json:"clip" mapstructure:"clip" yaml:"clip"`
}

// DefaultConfig returns a Config of type t with the given step size and
// Gorgonia's default hyperparameters
func DefaultConfig(t Type, stepSize float64) Config {
	return Config{
		Type:     t,
		StepSize: stepSize,
		Batch:    1,
		Epsilon:  1e-8,
		Beta1:    0.9,
		Beta2:    0.999,
		Rho:      0.999,
		Clip:     -1.0,
	}
}

// Validate checks the hyperparameters used by the solver of type
// c.Type
func (c Config) Validate() error {
	if c.StepSize <= 0 {
		return fmt.Errorf("step size must be positive, have(%v)", c.StepSize)
	}
	if c.Batch < 1 {
		return fmt.Errorf("batch size must be >= 1, have(%v)", c.Batch)
	}

	switch c.Type {
	case Adam:
		if c.Beta1 < 0 || c.Beta1 >= 1 || c.Beta2 < 0 || c.Beta2 >= 1 {
			return fmt.Errorf("betas must be in [0, 1), have(%v, %v)",
				c.Beta1, c.Beta2)
		}
	case RMSProp:
		if c.Rho <= 0 || c.Rho >= 1 {
			return fmt.Errorf("rho must be in (0, 1), have(%v)", c.Rho)
		}
	case Vanilla:
	default:
		return fmt.Errorf("unknown solver type %q", c.Type)
	}
	return nil
}

// Create returns a new Gorgonia Solver as described by c. Each call
// returns a Solver with fresh optimizer state. Create panics if c is
// invalid.
func (c Config) Create() G.Solver {
	opts := []G.SolverOpt{
		G.WithLearnRate(c.StepSize),
		G.WithBatchSize(float64(c.Batch)),
	}

	switch c.Type {
	case Adam:
		opts = append(opts, G.WithEps(c.Epsilon), G.WithBeta1(c.Beta1),
			G.WithBeta2(c.Beta2))
		return G.NewAdamSolver(opts...)

	case RMSProp:
		// Gorgonia only supports its default η
		opts = append(opts, G.WithEps(c.Epsilon), G.WithRho(c.Rho))
		if c.Clip > 0 {
			opts = append(opts, G.WithClip(c.Clip))
		}
		return G.NewRMSPropSolver(opts...)

	case Vanilla:
		if c.Clip > 0 {
			opts = append(opts, G.WithClip(c.Clip))
		}
		return G.NewVanillaSolver(opts...)

	default:
		panic(fmt.Sprintf("create: unknown solver type %q", c.Type))
	}
}

// String implements the fmt.Stringer interface
func (c Config) String() string {
	return fmt.Sprintf("{%v η: %v}", c.Type, c.StepSize)
}
