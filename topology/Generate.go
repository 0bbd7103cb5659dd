package topology

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distuv"
)

// GenerateConfig describes a randomly generated topology of switches,
// each with a number of attached hosts.
//
// Switches s0, s1, ..., sN-1 are connected in a ring, and ExtraLinks
// additional switch-to-switch links are added at random. Hosts are named
// h0, h1, ... and host h(i*HostsPerSwitch + j) is attached to switch si.
// Prefixes set with WithPrefixes replace s and h.
// Link metrics are drawn uniformly from the configured intervals.
type GenerateConfig struct {
	Switches       int `json:"switches" mapstructure:"switches" yaml:"switches"`
	HostsPerSwitch int `json:"hostsPerSwitch" mapstructure:"hostsPerSwitch" yaml:"hostsPerSwitch"`
	ExtraLinks     int `json:"extraLinks" mapstructure:"extraLinks" yaml:"extraLinks"`

	Delay     r1.Interval `json:"delay" mapstructure:"delay" yaml:"delay"`             // ms
	Bandwidth r1.Interval `json:"bandwidth" mapstructure:"bandwidth" yaml:"bandwidth"` // Mbps
	Loss      r1.Interval `json:"loss" mapstructure:"loss" yaml:"loss"`                // percent
}

// DefaultGenerateConfig returns the configuration used by the runner
// when no other configuration is given.
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Switches:       20,
		HostsPerSwitch: 2,
		ExtraLinks:     10,
		Delay:          r1.Interval{Min: 1, Max: 10},
		Bandwidth:      r1.Interval{Min: 10, Max: 100},
		Loss:           r1.Interval{Min: 0, Max: 2},
	}
}

// Validate checks that a GenerateConfig describes a valid topology
func (c GenerateConfig) Validate() error {
	if c.Switches < 1 {
		return fmt.Errorf("must have at least one switch, have(%v)",
			c.Switches)
	}
	if c.HostsPerSwitch < 0 || c.ExtraLinks < 0 {
		return fmt.Errorf("hosts per switch and extra links must be >= 0")
	}
	if c.Delay.Min < 0 || c.Delay.Max < c.Delay.Min {
		return fmt.Errorf("invalid delay interval %v", c.Delay)
	}
	if c.Bandwidth.Min <= 0 || c.Bandwidth.Max < c.Bandwidth.Min {
		return fmt.Errorf("invalid bandwidth interval %v", c.Bandwidth)
	}
	if c.Loss.Min < 0 || c.Loss.Max > 100 || c.Loss.Max < c.Loss.Min {
		return fmt.Errorf("invalid loss interval %v", c.Loss)
	}
	return nil
}

// Generate returns a new random Topology described by c. The same seed
// always generates the same Topology.
func Generate(c GenerateConfig, seed uint64, opts ...Option) (*Topology,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("generate: %v", err)
	}

	// Names follow the prefixes the Topology will classify nodes by
	names := &Topology{
		switchPrefix: DefaultSwitchPrefix,
		hostPrefix:   DefaultHostPrefix,
	}
	for _, opt := range opts {
		opt(names)
	}

	source := rand.NewSource(seed)
	rng := rand.New(source)
	delay := sampler(c.Delay, source)
	bandwidth := sampler(c.Bandwidth, source)
	loss := sampler(c.Loss, source)

	newLink := func(from, to string) Link {
		return Link{
			From:      from,
			To:        to,
			Delay:     delay(),
			Bandwidth: bandwidth(),
			Loss:      loss(),
		}
	}

	switches := make([]string, c.Switches)
	for i := range switches {
		switches[i] = fmt.Sprintf("%v%d", names.switchPrefix, i)
	}

	var links []Link
	connected := make(map[[2]int]bool)
	connect := func(u, v int) {
		key := edgeKey(u, v)
		if u == v || connected[key] {
			return
		}
		connected[key] = true
		links = append(links, newLink(switches[u], switches[v]))
	}

	// Ring
	if c.Switches > 1 {
		for i := 0; i < c.Switches; i++ {
			connect(i, (i+1)%c.Switches)
		}
	}

	// Chords. A complete graph cannot take any more links, so the number
	// of attempts is bounded.
	maxLinks := c.Switches * (c.Switches - 1) / 2
	for added, tries := 0, 0; added < c.ExtraLinks &&
		len(connected) < maxLinks && tries < 100*(c.ExtraLinks+1); tries++ {
		before := len(connected)
		connect(rng.Intn(c.Switches), rng.Intn(c.Switches))
		if len(connected) > before {
			added++
		}
	}

	nodes := append([]string{}, switches...)
	for i := range switches {
		for j := 0; j < c.HostsPerSwitch; j++ {
			host := fmt.Sprintf("%v%d", names.hostPrefix,
				i*c.HostsPerSwitch+j)
			nodes = append(nodes, host)
			links = append(links, newLink(host, switches[i]))
		}
	}

	return New(nodes, links, opts...)
}

// sampler returns a function which samples uniformly from an interval.
// Degenerate intervals always return their single value.
func sampler(i r1.Interval, source rand.Source) func() float64 {
	if i.Min == i.Max {
		return func() float64 { return i.Min }
	}
	dist := distuv.Uniform{Min: i.Min, Max: i.Max, Src: source}
	return dist.Rand
}
