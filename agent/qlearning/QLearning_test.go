package qlearning

import (
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rlroute/agent"
	"github.com/samuelfneumann/rlroute/experiment/tracker"
	"github.com/samuelfneumann/rlroute/topology"
)

func newTopology(t *testing.T, nodes []string,
	edges [][2]string) *topology.Topology {
	t.Helper()

	links := make([]topology.Link, len(edges))
	for i, e := range edges {
		links[i] = topology.Link{From: e[0], To: e[1], Delay: 1, Bandwidth: 10}
	}
	topo, err := topology.New(nodes, links)
	if err != nil {
		t.Fatal(err)
	}
	return topo
}

// walk follows the greedy policy of q from source for at most n steps
func walk(q *QLearning, topo *topology.Topology, source string,
	n int) []string {
	current, _ := topo.Index(source)
	path := []string{source}
	for i := 0; i < n && current != q.Destination(); i++ {
		current = q.Greedy(current)
		if current < 0 {
			break
		}
		path = append(path, topo.Node(current))
	}
	return path
}

func TestFourCycle(t *testing.T) {
	topo := newTopology(t, nil, [][2]string{
		{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "a"},
	})

	q, err := New(topo, "c", DefaultConfig(), 42)
	if err != nil {
		t.Fatal(err)
	}
	stats, err := q.TrainFixed("a", 5000)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Episodes != 5000 || stats.Reached != 5000 {
		t.Errorf("stats: want 5000 episodes reached, have(%+v)", stats)
	}

	path := walk(q, topo, "a", 10)
	if len(path) != 3 || path[0] != "a" || path[2] != "c" ||
		(path[1] != "b" && path[1] != "d") {
		t.Errorf("path: want([a b c] or [a d c]) have(%v)", path)
	}
}

func TestValuesGrow(t *testing.T) {
	topo := newTopology(t, nil, [][2]string{{"a", "b"}, {"b", "c"}})
	b, _ := topo.Index("b")
	c, _ := topo.Index("c")

	q, err := New(topo, "c", DefaultConfig(), 7)
	if err != nil {
		t.Fatal(err)
	}

	var last float64 = q.Q(b, c)
	for _, episodes := range []int{10, 50, 200} {
		if _, err := q.TrainFixed("a", episodes); err != nil {
			t.Fatal(err)
		}
		if q.Q(b, c) <= last {
			t.Errorf("Q(b, c) did not grow: %v --> %v", last, q.Q(b, c))
		}
		last = q.Q(b, c)
	}

	if last > DefaultConfig().Reward.Goal+DefaultConfig().Discount {
		t.Errorf("Q(b, c) exceeds its bound: %v", last)
	}
}

func TestRandomized(t *testing.T) {
	topo := newTopology(t, nil, [][2]string{
		{"a", "b"}, {"b", "c"}, {"c", "d"},
	})

	c := DefaultConfig()
	c.Masking = agent.MaskNeighbors
	q, err := New(topo, "d", c, 3)
	if err != nil {
		t.Fatal(err)
	}

	stats, err := q.TrainRandomized(2000)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Invalid != 0 {
		t.Errorf("masked agent made %v invalid moves", stats.Invalid)
	}

	for _, source := range []string{"a", "b", "c"} {
		path := walk(q, topo, source, 10)
		if path[len(path)-1] != "d" {
			t.Errorf("walk from %v: did not reach d, have(%v)", source, path)
		}
	}
}

func TestDeadEnd(t *testing.T) {
	topo := newTopology(t, []string{"z"}, [][2]string{{"a", "b"}})

	q, err := New(topo, "b", DefaultConfig(), 1)
	if err != nil {
		t.Fatal(err)
	}

	stats, err := q.TrainFixed("z", 3)
	if err != nil {
		t.Fatalf("dead ends should not be fatal: %v", err)
	}
	if stats.DeadEnds != 3 || stats.Reached != 0 || stats.Steps != 0 {
		t.Errorf("stats: want 3 dead ends, have(%+v)", stats)
	}
}

func TestMaxSteps(t *testing.T) {
	topo := newTopology(t, nil, [][2]string{{"a", "b"}, {"c", "d"}})

	c := DefaultConfig()
	c.MaxSteps = 20
	q, err := New(topo, "d", c, 5)
	if err != nil {
		t.Fatal(err)
	}

	l := tracker.NewEpisodeLength("")
	r := tracker.NewReturn("")
	q.Track(l, r)

	stats, err := q.TrainFixed("a", 2)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Steps != 40 || stats.Reached != 0 {
		t.Errorf("stats: want 40 steps and none reached, have(%+v)", stats)
	}

	lengths := l.Data()
	if len(lengths) != 2 || lengths[0] != 20 || lengths[1] != 20 {
		t.Errorf("lengths: want([20 20]) have(%v)", lengths)
	}
	if len(r.Data()) != 2 {
		t.Errorf("returns: want 2 episodes, have(%v)", r.Data())
	}
}

func TestNewInvalid(t *testing.T) {
	topo := newTopology(t, nil, [][2]string{{"a", "b"}})

	if _, err := New(topo, "q", DefaultConfig(), 0); !topology.IsUnknownNode(err) {
		t.Errorf("unknown destination: want UnknownNodeError, have(%v)", err)
	}

	c := DefaultConfig()
	c.LearningRate = 0
	if _, err := New(topo, "b", c, 0); err == nil {
		t.Error("expected error for zero learning rate")
	}

	c = DefaultConfig()
	c.Masking = agent.MaskModulo
	if _, err := New(topo, "b", c, 0); err == nil {
		t.Error("expected error for modulo masking")
	}

	q, _ := New(topo, "b", DefaultConfig(), 0)
	if _, err := q.TrainFixed("q", 1); !topology.IsUnknownNode(err) {
		t.Errorf("unknown source: want UnknownNodeError, have(%v)", err)
	}
}

func TestSaveLoad(t *testing.T) {
	topo := newTopology(t, nil, [][2]string{{"a", "b"}, {"b", "c"}})
	q, err := New(topo, "c", DefaultConfig(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := q.TrainFixed("a", 10); err != nil {
		t.Fatal(err)
	}

	filename := filepath.Join(t.TempDir(), "qtable.bin")
	if err := q.Save(filename); err != nil {
		t.Fatal(err)
	}
	table, err := LoadTable(filename)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(table, q.Table()) {
		t.Errorf("load: want(%v) have(%v)", mat.Formatted(q.Table()),
			mat.Formatted(table))
	}
}
