package baseline

import (
	"fmt"
	"time"

	"github.com/samuelfneumann/rlroute/route"
	"github.com/samuelfneumann/rlroute/topology"
)

// Result is the path found by one routing algorithm together with its
// Metrics. Err is non-nil if the algorithm could not produce a usable
// path.
type Result struct {
	Path    []string
	Metrics Metrics
	Err     error

	// Time taken to find the path. For learned routes this includes
	// training.
	Duration time.Duration
}

// OK returns whether the Result holds a usable path
func (r Result) OK() bool {
	return r.Err == nil
}

// Comparison compares a learned route with the shortest path between
// the same source and destination
type Comparison struct {
	Source      string
	Destination string
	Key         WeightKey

	RL       Result
	Baseline Result
}

// Compare compares the learned route rl from source to destination with
// the shortest path weighted by key. Failures of either algorithm are
// recorded in their Result and never stop the comparison.
func Compare(t *topology.Topology, rl route.Route, rlErr error, source,
	destination string, key WeightKey) Comparison {
	return Comparison{
		Source:      source,
		Destination: destination,
		Key:         key,
		RL:          Learned(t, rl, rlErr),
		Baseline:    Shortest(t, source, destination, key),
	}
}

// Learned returns the Result of a learned route, where err is the error
// returned when extracting the route. A route which did not converge is
// reported as a failure.
func Learned(t *topology.Topology, rl route.Route, err error) Result {
	var r Result
	switch {
	case err != nil:
		r.Err = err
	case !rl.Converged:
		r.Path = rl.Nodes
		r.Err = fmt.Errorf("route %v did not converge", rl.Nodes)
	default:
		r.Path = rl.Nodes
		r.Metrics, r.Err = Evaluate(t, rl.Nodes)
	}
	return r
}

// Shortest returns the Result of the shortest path from source to
// destination weighted by key
func Shortest(t *topology.Topology, source, destination string,
	key WeightKey) Result {
	start := time.Now()
	path, err := ShortestPath(t, source, destination, key)
	elapsed := time.Since(start)
	if err != nil {
		return Result{Err: err, Duration: elapsed}
	}
	m, err := Evaluate(t, path)
	return Result{Path: path, Metrics: m, Err: err, Duration: elapsed}
}

// String implements the fmt.Stringer interface
func (c Comparison) String() string {
	return fmt.Sprintf("%v -> %v\n\tRL:       %v\n\tBaseline: %v",
		c.Source, c.Destination, c.RL, c.Baseline)
}

// String implements the fmt.Stringer interface
func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("no path (%v) time=%v", r.Err, r.Duration)
	}
	return fmt.Sprintf("%v hops=%d delay=%.2fms bandwidth=%.2fMbps "+
		"cost=%.4f time=%v", r.Path, r.Metrics.Hops, r.Metrics.TotalDelay,
		r.Metrics.MinBandwidth, r.Metrics.TotalCost, r.Duration)
}
