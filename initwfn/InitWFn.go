// Package initwfn implements seeded weight initializers which satisfy
// Gorgonia's InitWFn and can be read from configuration files.
//
// Gorgonia's own initializers draw from a global random source. Every
// initializer here instead draws from a source created from a seed, so
// that networks are reproducible.
package initwfn

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Type describes different types of InitWFn that are available
type Type string

// Available InitWFn types
const (
	GlorotU  Type = "GlorotU"
	GlorotN  Type = "GlorotN"
	HeU      Type = "HeU"
	HeN      Type = "HeN"
	Uniform  Type = "Uniform"
	Gaussian Type = "Gaussian"
	Zeroes   Type = "Zeroes"
	Ones     Type = "Ones"
	Constant Type = "Constant"
)

// Config describes a seeded weight initializer. Only the fields used
// by Type are read.
type Config struct {
	Type Type `json:"type" mapstructure:"type" yaml:"type"`

	// Glorot and He
	Gain float64 `json:"gain" mapstructure:"gain" yaml:"gain"`

	// Gaussian
	Mean   float64 `json:"mean" mapstructure:"mean" yaml:"mean"`
	StdDev float64 `json:"stdDev" mapstructure:"stdDev" yaml:"stdDev"`

	// Uniform
	Low  float64 `json:"low" mapstructure:"low" yaml:"low"`
	High float64 `json:"high" mapstructure:"high" yaml:"high"`

	// Constant
	Value float64 `json:"value" mapstructure:"value" yaml:"value"`
}

// DefaultConfig returns a Config of type t. Gain and StdDev are 1 and
// Uniform draws from [-1, 1].
func DefaultConfig(t Type) Config {
	return Config{
		Type:   t,
		Gain:   1.0,
		StdDev: 1.0,
		Low:    -1.0,
		High:   1.0,
	}
}

// Validate checks the fields used by c.Type
func (c Config) Validate() error {
	switch c.Type {
	case GlorotU, GlorotN, HeU, HeN:
		if c.Gain <= 0 {
			return fmt.Errorf("%v: gain must be positive, have(%v)", c.Type,
				c.Gain)
		}
	case Gaussian:
		if c.StdDev <= 0 {
			return fmt.Errorf("standard deviation must be positive, "+
				"have(%v)", c.StdDev)
		}
	case Uniform:
		if c.High < c.Low {
			return fmt.Errorf("invalid interval [%v, %v]", c.Low, c.High)
		}
	case Zeroes, Ones, Constant:
	default:
		return fmt.Errorf("unknown weight initializer %q", c.Type)
	}
	return nil
}

// InitWFn returns the Gorgonia InitWFn described by c, drawing weights
// from a source seeded with seed. Successive calls of the returned
// InitWFn continue to draw from the same source. InitWFn panics if c is
// invalid.
func (c Config) InitWFn(seed uint64) G.InitWFn {
	src := rand.NewSource(seed)

	switch c.Type {
	case GlorotU:
		return sampled(func(fanIn, fanOut float64) func() float64 {
			limit := c.Gain * math.Sqrt(6/(fanIn+fanOut))
			return distuv.Uniform{Min: -limit, Max: limit, Src: src}.Rand
		})
	case GlorotN:
		return sampled(func(fanIn, fanOut float64) func() float64 {
			stddev := c.Gain * math.Sqrt(2/(fanIn+fanOut))
			return distuv.Normal{Mu: 0, Sigma: stddev, Src: src}.Rand
		})
	case HeU:
		return sampled(func(fanIn, _ float64) func() float64 {
			limit := c.Gain * math.Sqrt(3/fanIn)
			return distuv.Uniform{Min: -limit, Max: limit, Src: src}.Rand
		})
	case HeN:
		return sampled(func(fanIn, _ float64) func() float64 {
			sigma := c.Gain / math.Sqrt(fanIn)
			return distuv.Normal{Mu: 0, Sigma: sigma, Src: src}.Rand
		})
	case Gaussian:
		dist := distuv.Normal{Mu: c.Mean, Sigma: c.StdDev, Src: src}
		return sampled(func(_, _ float64) func() float64 { return dist.Rand })
	case Uniform:
		if c.Low == c.High {
			return constant(c.Low)
		}
		dist := distuv.Uniform{Min: c.Low, Max: c.High, Src: src}
		return sampled(func(_, _ float64) func() float64 { return dist.Rand })
	case Zeroes:
		return constant(0)
	case Ones:
		return constant(1)
	case Constant:
		return constant(c.Value)
	default:
		panic(fmt.Sprintf("initWFn: unknown weight initializer %q", c.Type))
	}
}

// String implements the fmt.Stringer interface
func (c Config) String() string {
	switch c.Type {
	case GlorotU, GlorotN, HeU, HeN:
		return fmt.Sprintf("%v(gain=%v)", c.Type, c.Gain)
	case Gaussian:
		return fmt.Sprintf("%v(%v, %v)", c.Type, c.Mean, c.StdDev)
	case Uniform:
		return fmt.Sprintf("%v[%v, %v]", c.Type, c.Low, c.High)
	case Constant:
		return fmt.Sprintf("%v(%v)", c.Type, c.Value)
	default:
		return string(c.Type)
	}
}

// sampled returns an InitWFn which fills a tensor with samples from the
// sampler that dist returns for the tensor's fans
func sampled(dist func(fanIn, fanOut float64) func() float64) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		return fill(dt, dist(fans(s...)), s...)
	}
}

func constant(value float64) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		return fill(dt, func() float64 { return value }, s...)
	}
}

// fans returns the fan in and fan out of a weight tensor of shape s
func fans(s ...int) (float64, float64) {
	switch len(s) {
	case 0:
		return 1, 1
	case 1:
		return float64(s[0]), float64(s[0])
	default:
		receptive := 1
		for _, dim := range s[2:] {
			receptive *= dim
		}
		return float64(s[0] * receptive), float64(s[1] * receptive)
	}
}

// fill returns the backing of a tensor of type dt and shape s, filled by
// repeated calls to sample
func fill(dt tensor.Dtype, sample func() float64, s ...int) interface{} {
	size := tensor.Shape(s).TotalSize()

	switch dt {
	case tensor.Float64:
		backing := make([]float64, size)
		for i := range backing {
			backing[i] = sample()
		}
		return backing

	case tensor.Float32:
		backing := make([]float32, size)
		for i := range backing {
			backing[i] = float32(sample())
		}
		return backing

	default:
		panic(fmt.Sprintf("fill: dtype %v not supported", dt))
	}
}
