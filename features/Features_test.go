package features

import (
	"math"
	"testing"

	"github.com/samuelfneumann/rlroute/topology"
)

func TestClustering(t *testing.T) {
	// Triangle a-b-c with a tail c-d
	topo, err := topology.New(nil, []topology.Link{
		{From: "a", To: "b", Bandwidth: 1},
		{From: "b", To: "c", Bandwidth: 1},
		{From: "c", To: "a", Bandwidth: 1},
		{From: "c", To: "d", Bandwidth: 1},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []float64{1, 1, 1.0 / 3.0, 0}
	for i, w := range want {
		if c := clustering(topo, i); math.Abs(c-w) > 1e-12 {
			t.Errorf("clustering %v: want(%v) have(%v)", topo.Node(i), w, c)
		}
	}
}

func TestLocal(t *testing.T) {
	topo, err := topology.New([]string{"z"}, []topology.Link{
		{From: "a", To: "b", Bandwidth: 1},
		{From: "b", To: "c", Bandwidth: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	f := NewLocal(topo)

	if f.Len() != LocalLen {
		t.Errorf("len: want(%v) have(%v)", LocalLen, f.Len())
	}

	// Isolated nodes have zero features
	for _, v := range f.Features(0) {
		if v != 0 {
			t.Errorf("isolated: want zero features, have(%v)", f.Features(0))
			break
		}
	}

	// Every vector is normalised by its maximum
	for i := 1; i < topo.Len(); i++ {
		features := f.Features(i)
		if len(features) != LocalLen {
			t.Fatalf("node %v: want %v features, have(%v)", i, LocalLen,
				len(features))
		}

		max := 0.0
		for _, v := range features {
			if v < 0 || v > 1 {
				t.Errorf("node %v: feature %v out of [0, 1]", i, v)
			}
			max = math.Max(max, v)
		}
		if max != 1 {
			t.Errorf("node %v: want max feature 1, have(%v)", i, max)
		}
	}

	// b lies on the only path between a and c: betweenness 1/3 over
	// four nodes, divided by a degree of 2
	assertFeatures(t, "b", []float64{1, 0, 1.0 / 6.0, 1}, f.Features(2))
	assertFeatures(t, "a", []float64{1, 0, 0, 1}, f.Features(1))
}

func TestStar(t *testing.T) {
	var links []topology.Link
	for _, leaf := range []string{"h0", "h1", "h2", "h3"} {
		links = append(links, topology.Link{From: "s0", To: leaf,
			Bandwidth: 1})
	}
	topo, err := topology.New(nil, links)
	if err != nil {
		t.Fatal(err)
	}
	f := NewLocal(topo)

	// The hub lies on every path between leaves: betweenness 1 and
	// degree 4
	assertFeatures(t, "s0", []float64{1, 0, 0.25, 1}, f.Features(0))
	for i := 1; i < topo.Len(); i++ {
		assertFeatures(t, topo.Node(i), []float64{1, 0, 0, 1}, f.Features(i))
	}
}

func assertFeatures(t *testing.T, node string, want, have []float64) {
	t.Helper()
	if len(want) != len(have) {
		t.Fatalf("%v: want(%v) have(%v)", node, want, have)
	}
	for i := range want {
		if math.Abs(want[i]-have[i]) > 1e-12 {
			t.Errorf("%v: want(%v) have(%v)", node, want, have)
			return
		}
	}
}
