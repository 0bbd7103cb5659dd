package baseline

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/samuelfneumann/rlroute/route"
	"github.com/samuelfneumann/rlroute/topology"
)

// square returns the topology a-b-c-d-a where the path through b is
// cheap and the path through d is expensive, and a-c is a direct but
// very slow link.
func square(t *testing.T, nodes ...string) *topology.Topology {
	t.Helper()
	topo, err := topology.New(nodes, []topology.Link{
		{From: "a", To: "b", Delay: 1, Bandwidth: 100},
		{From: "b", To: "c", Delay: 2, Bandwidth: 50},
		{From: "c", To: "d", Delay: 10, Bandwidth: 10},
		{From: "d", To: "a", Delay: 10, Bandwidth: 10},
		{From: "a", To: "c", Delay: 100, Bandwidth: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	return topo
}

func TestShortestPath(t *testing.T) {
	topo := square(t)

	tests := []struct {
		key  WeightKey
		want []string
	}{
		{Cost, []string{"a", "b", "c"}},
		{Hops, []string{"a", "c"}},
	}

	for _, test := range tests {
		have, err := ShortestPath(topo, "a", "c", test.key)
		if err != nil {
			t.Fatal(err)
		}
		if !equal(have, test.want) {
			t.Errorf("%v: want(%v) have(%v)", test.key, test.want, have)
		}
	}

	if _, err := ShortestPath(topo, "a", "c", WeightKey("bandwidth")); err == nil {
		t.Error("expected error for unknown weight key")
	}
}

func TestShortestPathNoPath(t *testing.T) {
	topo := square(t, "z")

	_, err := ShortestPath(topo, "a", "z", Cost)
	var noPath *route.NoPathError
	if !errors.As(err, &noPath) || noPath.Destination != "z" {
		t.Errorf("expected NoPathError to z, have(%v)", err)
	}

	if _, err := ShortestPath(topo, "q", "a", Hops); !topology.IsUnknownNode(err) {
		t.Errorf("expected UnknownNodeError, have(%v)", err)
	}
}

func TestEvaluate(t *testing.T) {
	topo := square(t)

	m, err := Evaluate(topo, []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	wantCost := (1 + 1.0/100) + (2 + 1.0/50)
	if m.Hops != 2 || m.TotalDelay != 3 || m.MinBandwidth != 50 ||
		math.Abs(m.TotalCost-wantCost) > 1e-12 {
		t.Errorf("metrics: have(%+v)", m)
	}

	for _, path := range [][]string{nil, {"a"}} {
		m, err := Evaluate(topo, path)
		if err != nil || m != (Metrics{}) {
			t.Errorf("evaluate %v: want zero metrics, have(%+v, %v)", path,
				m, err)
		}
	}

	if _, err := Evaluate(topo, []string{"b", "d"}); !topology.IsNoLink(err) {
		t.Errorf("expected ErrNoLink, have(%v)", err)
	}
}

func TestCompare(t *testing.T) {
	topo := square(t, "z")

	rl := route.Route{Nodes: []string{"a", "d", "c"}, Converged: true}
	c := Compare(topo, rl, nil, "a", "c", Cost)
	if !c.RL.OK() || !c.Baseline.OK() {
		t.Fatalf("compare: unexpected errors %v, %v", c.RL.Err, c.Baseline.Err)
	}
	if c.RL.Metrics.TotalDelay != 20 || c.Baseline.Metrics.TotalDelay != 3 {
		t.Errorf("compare: want delays (20, 3) have(%v, %v)",
			c.RL.Metrics.TotalDelay, c.Baseline.Metrics.TotalDelay)
	}

	// Unconverged routes are reported, not evaluated
	rl = route.Route{Nodes: []string{"a", "b", "c"}, Converged: false}
	if c := Compare(topo, rl, nil, "a", "c", Cost); c.RL.OK() {
		t.Error("compare: expected unconverged route to fail")
	}

	// Both sides fail gracefully for unreachable destinations
	_, err := route.Extract(topo, nil, "a", "z", 10)
	c = Compare(topo, route.Route{}, err, "a", "z", Hops)
	if !route.IsNoPath(c.RL.Err) || !route.IsNoPath(c.Baseline.Err) {
		t.Errorf("compare: expected NoPathError on both sides, have(%v, %v)",
			c.RL.Err, c.Baseline.Err)
	}
}

func TestShortestTimed(t *testing.T) {
	topo := square(t, "z")

	for _, dst := range []string{"c", "z"} {
		r := Shortest(topo, "a", dst, Cost)
		if r.Duration <= 0 {
			t.Errorf("%v: want positive duration, have(%v)", dst, r.Duration)
		}
		if !strings.Contains(r.String(), "time=") {
			t.Errorf("%v: want time in %q", dst, r.String())
		}
	}
}

func TestParseWeightKey(t *testing.T) {
	if k, err := ParseWeightKey(" Hops "); err != nil || k != Hops {
		t.Errorf("parse: want(hops) have(%v, %v)", k, err)
	}
	if _, err := ParseWeightKey("delay"); err == nil {
		t.Error("expected error for unknown weight key")
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
