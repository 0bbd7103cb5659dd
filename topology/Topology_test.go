package topology

import (
	"errors"
	"testing"
)

func cycle(t *testing.T) *Topology {
	t.Helper()
	links := []Link{
		{From: "a", To: "b", Delay: 1, Bandwidth: 100},
		{From: "b", To: "c", Delay: 2, Bandwidth: 50},
		{From: "c", To: "d", Delay: 3, Bandwidth: 25, Loss: 1},
		{From: "d", To: "a", Delay: 4, Bandwidth: 10},
	}
	topo, err := New(nil, links)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return topo
}

func TestIndexBijection(t *testing.T) {
	topo := cycle(t)

	want := []string{"a", "b", "c", "d"}
	if topo.Len() != len(want) {
		t.Fatalf("len: want(%v) have(%v)", len(want), topo.Len())
	}
	for i, node := range want {
		if topo.Node(i) != node {
			t.Errorf("node %v: want(%v) have(%v)", i, node, topo.Node(i))
		}
		j, err := topo.Index(node)
		if err != nil || j != i {
			t.Errorf("index %v: want(%v) have(%v, %v)", node, i, j, err)
		}
	}
}

func TestNeighbors(t *testing.T) {
	topo := cycle(t)

	neighbors, err := topo.Neighbors("a")
	if err != nil {
		t.Fatal(err)
	}
	if len(neighbors) != 2 || neighbors[0] != "b" || neighbors[1] != "d" {
		t.Errorf("neighbors: want([b d]) have(%v)", neighbors)
	}

	_, err = topo.Neighbors("z")
	var unknown *UnknownNodeError
	if !errors.As(err, &unknown) || unknown.Node != "z" {
		t.Errorf("neighbors: expected UnknownNodeError for z, have(%v)", err)
	}
}

func TestLink(t *testing.T) {
	topo := cycle(t)

	l, err := topo.Link("c", "b")
	if err != nil {
		t.Fatal(err)
	}
	if l.Delay != 2 || l.Bandwidth != 50 {
		t.Errorf("link: have(%+v)", l)
	}

	if _, err := topo.Link("a", "c"); !IsNoLink(err) {
		t.Errorf("link: expected ErrNoLink, have(%v)", err)
	}
	if _, err := topo.Link("a", "q"); !IsUnknownNode(err) {
		t.Errorf("link: expected UnknownNodeError, have(%v)", err)
	}
}

func TestCost(t *testing.T) {
	topo, err := New(nil, []Link{
		{From: "s0", To: "h0", Delay: 2, Bandwidth: 4, Loss: 1},
	}, WithCostWeights(CostWeights{Delay: 1, Bandwidth: 8, Loss: 3}))
	if err != nil {
		t.Fatal(err)
	}

	l, _ := topo.Link("s0", "h0")
	if cost := topo.Cost(l); cost != 2+2+3 {
		t.Errorf("cost: want(7) have(%v)", cost)
	}
}

func TestNewInvalid(t *testing.T) {
	tests := map[string][]Link{
		"negative delay": {{From: "a", To: "b", Delay: -1, Bandwidth: 1}},
		"zero bandwidth": {{From: "a", To: "b"}},
		"loss too large": {{From: "a", To: "b", Bandwidth: 1, Loss: 101}},
		"self loop":      {{From: "a", To: "a", Bandwidth: 1}},
		"duplicate": {
			{From: "a", To: "b", Bandwidth: 1},
			{From: "b", To: "a", Bandwidth: 1},
		},
	}

	for name, links := range tests {
		if _, err := New(nil, links); err == nil {
			t.Errorf("%v: expected error", name)
		}
	}
}

func TestIsolatedNode(t *testing.T) {
	topo, err := New([]string{"z"}, []Link{
		{From: "a", To: "b", Bandwidth: 1},
	})
	if err != nil {
		t.Fatal(err)
	}

	i, _ := topo.Index("z")
	if i != 0 || topo.Degree(i) != 0 {
		t.Errorf("isolated: want index 0 and degree 0, have(%v, %v)", i,
			topo.Degree(i))
	}
}

func TestKinds(t *testing.T) {
	topo, err := New(nil, []Link{
		{From: "h0", To: "s0", Bandwidth: 1},
		{From: "s0", To: "s1", Bandwidth: 1},
		{From: "h1", To: "s1", Bandwidth: 1},
	})
	if err != nil {
		t.Fatal(err)
	}

	hosts, switches := topo.Hosts(), topo.Switches()
	if len(hosts) != 2 || hosts[0] != "h0" || hosts[1] != "h1" {
		t.Errorf("hosts: have(%v)", hosts)
	}
	if len(switches) != 2 || switches[0] != "s0" || switches[1] != "s1" {
		t.Errorf("switches: have(%v)", switches)
	}
}

func TestGenerate(t *testing.T) {
	c := DefaultGenerateConfig()
	c.Switches = 5
	c.HostsPerSwitch = 2
	c.ExtraLinks = 3

	first, err := Generate(c, 42)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Generate(c, 42)
	if err != nil {
		t.Fatal(err)
	}

	if want := 5 + 10; first.Len() != want {
		t.Errorf("len: want(%v) have(%v)", want, first.Len())
	}
	if want := 5 + 3 + 10; len(first.Links()) != want {
		t.Errorf("links: want(%v) have(%v)", want, len(first.Links()))
	}

	for i := 0; i < first.Len(); i++ {
		if first.Node(i) != second.Node(i) {
			t.Fatalf("generate is not deterministic at node %v", i)
		}
		for _, j := range first.NeighborIndices(i) {
			l1, _ := first.LinkAt(i, j)
			l2, ok := second.LinkAt(i, j)
			if !ok || l1 != l2 {
				t.Fatalf("generate is not deterministic at link %v-%v", i, j)
			}
		}
	}

	// Every host hangs off its own switch
	neighbors, _ := first.Neighbors("h3")
	if len(neighbors) != 1 || neighbors[0] != "s1" {
		t.Errorf("h3: want([s1]) have(%v)", neighbors)
	}
}

func TestGeneratePrefixes(t *testing.T) {
	c := DefaultGenerateConfig()
	c.Switches = 3
	c.HostsPerSwitch = 2

	topo, err := Generate(c, 1, WithPrefixes("sw", "host"))
	if err != nil {
		t.Fatal(err)
	}

	hosts, switches := topo.Hosts(), topo.Switches()
	if len(hosts) != 6 || hosts[0] != "host0" {
		t.Errorf("hosts: have(%v)", hosts)
	}
	if len(switches) != 3 || switches[0] != "sw0" {
		t.Errorf("switches: have(%v)", switches)
	}
	neighbors, err := topo.Neighbors("host5")
	if err != nil {
		t.Fatal(err)
	}
	if len(neighbors) != 1 || neighbors[0] != "sw2" {
		t.Errorf("host5: want([sw2]) have(%v)", neighbors)
	}
}
