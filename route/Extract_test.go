package route

import (
	"testing"

	"github.com/samuelfneumann/rlroute/agent/qlearning"
	"github.com/samuelfneumann/rlroute/topology"
)

// table is a fixed policy given by the next node of each node
type table []int

func (t table) Greedy(i int) int {
	return t[i]
}

func cycle(t *testing.T, nodes ...string) *topology.Topology {
	t.Helper()
	topo, err := topology.New(nodes, []topology.Link{
		{From: "a", To: "b", Bandwidth: 1},
		{From: "b", To: "c", Bandwidth: 1},
		{From: "c", To: "d", Bandwidth: 1},
		{From: "d", To: "a", Bandwidth: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	return topo
}

func TestExtractConverged(t *testing.T) {
	topo := cycle(t)

	r, err := Extract(topo, table{1, 2, 3, 0}, "a", "d", 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "c", "d"}
	if !r.Converged || !equal(r.Nodes, want) {
		t.Errorf("route: want(%v) have(%v)", want, r)
	}
	if r.Hops() != 3 || !r.Valid(topo) {
		t.Errorf("route: want 3 valid hops, have(%v, %v)", r.Hops(),
			r.Valid(topo))
	}
}

func TestExtractTruncated(t *testing.T) {
	topo := cycle(t)

	// a and b bounce between each other forever
	r, err := Extract(topo, table{1, 0, 3, 0}, "a", "c", 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "a", "b", "a", "c"}
	if r.Converged || !equal(r.Nodes, want) {
		t.Errorf("route: want(%v) unconverged, have(%v)", want, r)
	}
	if r.Valid(topo) {
		t.Error("truncated route should not be a valid path")
	}

	// Invalid node indices stop the walk
	r, err = Extract(topo, table{-1, 0, 0, 0}, "a", "c", 4)
	if err != nil {
		t.Fatal(err)
	}
	if r.Converged || !equal(r.Nodes, []string{"a", "c"}) {
		t.Errorf("route: want([a c]) unconverged, have(%v)", r)
	}
}

func TestExtractSameNode(t *testing.T) {
	r, err := Extract(cycle(t), table{1, 2, 3, 0}, "b", "b", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Converged || !equal(r.Nodes, []string{"b"}) {
		t.Errorf("route: want([b]) have(%v)", r)
	}
}

func TestExtractNoPath(t *testing.T) {
	topo := cycle(t, "z")
	policy := make(table, topo.Len())

	_, err := Extract(topo, policy, "a", "z", 10)
	if !IsNoPath(err) {
		t.Errorf("expected NoPathError, have(%v)", err)
	}

	_, err = Extract(topo, policy, "a", "q", 10)
	if !topology.IsUnknownNode(err) {
		t.Errorf("expected UnknownNodeError, have(%v)", err)
	}
}

func TestExtractQLearning(t *testing.T) {
	topo := cycle(t)
	q, err := qlearning.New(topo, "c", qlearning.DefaultConfig(), 42)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := q.TrainFixed("a", 5000); err != nil {
		t.Fatal(err)
	}

	r, err := FromTrainer(topo, q, "a", 10)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Converged || !(equal(r.Nodes, []string{"a", "b", "c"}) ||
		equal(r.Nodes, []string{"a", "d", "c"})) {
		t.Errorf("route: want([a b c] or [a d c]) have(%v)", r)
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
