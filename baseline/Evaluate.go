package baseline

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/rlroute/topology"
)

// Metrics are the quality of service metrics of a path
type Metrics struct {
	Hops         int
	TotalDelay   float64 // ms
	MinBandwidth float64 // Mbps, the bottleneck of the path
	TotalCost    float64
}

// Evaluate returns the Metrics of a path through t. A path of fewer
// than two nodes has no links and gives zero Metrics. An error is
// returned if two consecutive nodes of the path are not adjacent.
func Evaluate(t *topology.Topology, path []string) (Metrics, error) {
	if len(path) < 2 {
		return Metrics{}, nil
	}

	m := Metrics{MinBandwidth: math.Inf(1)}
	for i := 1; i < len(path); i++ {
		l, err := t.Link(path[i-1], path[i])
		if err != nil {
			return Metrics{}, fmt.Errorf("evaluate: %w", err)
		}
		m.Hops++
		m.TotalDelay += l.Delay
		m.MinBandwidth = math.Min(m.MinBandwidth, l.Bandwidth)
		m.TotalCost += t.Cost(l)
	}
	return m, nil
}
