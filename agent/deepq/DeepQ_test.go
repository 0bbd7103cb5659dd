package deepq

import (
	"math"
	"testing"

	"github.com/samuelfneumann/rlroute/agent"
	"github.com/samuelfneumann/rlroute/experiment/tracker"
	"github.com/samuelfneumann/rlroute/expreplay"
	"github.com/samuelfneumann/rlroute/features"
	"github.com/samuelfneumann/rlroute/network"
	"github.com/samuelfneumann/rlroute/solver"
	"github.com/samuelfneumann/rlroute/timestep"
	"github.com/samuelfneumann/rlroute/topology"
)

func cycle(t *testing.T, nodes ...string) *topology.Topology {
	t.Helper()
	topo, err := topology.New(nodes, []topology.Link{
		{From: "a", To: "b", Delay: 1, Bandwidth: 100},
		{From: "b", To: "c", Delay: 1, Bandwidth: 100},
		{From: "c", To: "d", Delay: 5, Bandwidth: 10, Loss: 1},
		{From: "d", To: "a", Delay: 5, Bandwidth: 10, Loss: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	return topo
}

func smallConfig() Config {
	c := DefaultConfig()
	c.HiddenSizes = []int{8}
	c.Biases = []bool{true}
	c.Activations = []*network.Activation{network.ReLU()}
	c.ExpReplay = expreplay.Config{
		SampleMethod:      expreplay.Uniform,
		SampleSize:        4,
		MinReplayCapacity: 4,
		MaxReplayCapacity: 20,
	}
	c.TargetUpdateInterval = 3
	c.MaxSteps = 10
	return c
}

func newAgent(t *testing.T, topo *topology.Topology, c Config) *DeepQ {
	t.Helper()
	d, err := New(topo, features.NewLocal(topo), c, 7)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestTargetSync(t *testing.T) {
	// Learn on every step
	c := smallConfig()
	c.ExpReplay.SampleSize = 1
	c.ExpReplay.MinReplayCapacity = 1
	d := newAgent(t, cycle(t), c)

	initial := d.TargetParams()
	assertEqualParams(t, initial, d.OnlineParams())

	if _, err := d.Train(2); err != nil {
		t.Fatal(err)
	}
	if d.Syncs() != 0 {
		t.Fatalf("syncs: want(0) have(%v)", d.Syncs())
	}
	if d.GradientSteps() == 0 {
		t.Fatal("no gradient steps taken in two episodes")
	}

	// The target net is frozen between syncs
	assertEqualParams(t, initial, d.TargetParams())

	if _, err := d.Train(1); err != nil {
		t.Fatal(err)
	}
	if d.Syncs() != 1 {
		t.Fatalf("syncs: want(1) have(%v)", d.Syncs())
	}
	assertEqualParams(t, d.OnlineParams(), d.TargetParams())
}

func TestPolyakSync(t *testing.T) {
	c := smallConfig()
	c.ExpReplay.SampleSize = 1
	c.ExpReplay.MinReplayCapacity = 1
	c.Tau = 0.25
	d := newAgent(t, cycle(t), c)

	initial := d.TargetParams()
	if _, err := d.Train(3); err != nil {
		t.Fatal(err)
	}
	if d.Syncs() != 1 {
		t.Fatalf("syncs: want(1) have(%v)", d.Syncs())
	}

	// Nothing is learned after the sync at the end of the last episode
	online, target := d.OnlineParams(), d.TargetParams()
	for i := range target {
		for j := range target[i] {
			want := 0.75*initial[i][j] + 0.25*online[i][j]
			if math.Abs(target[i][j]-want) > 1e-9 {
				t.Fatalf("param %v differs at %v: want(%v) have(%v)", i, j,
					want, target[i][j])
			}
		}
	}
}

func TestTerminalUpdate(t *testing.T) {
	const (
		r      = 50.0
		action = 1
	)

	c := smallConfig()
	c.Solver = solver.DefaultConfig(solver.Vanilla, 1e-3)
	c.ExpReplay.SampleSize = 1
	c.ExpReplay.MinReplayCapacity = 1
	c.ExpReplay.MaxReplayCapacity = 1
	topo := cycle(t)
	d := newAgent(t, topo, c)

	before := d.Values(0)
	online, target := d.OnlineParams(), d.TargetParams()

	// A terminal step from a to b bootstraps nothing, so the target of
	// the update is the reward alone
	f := features.NewLocal(topo)
	step := timestep.NewTransition(0, f.Features(0), action, r, 0, 1,
		f.Features(1))
	if err := d.replay.Add(step); err != nil {
		t.Fatal(err)
	}
	if err := d.learn(); err != nil {
		t.Fatal(err)
	}
	if d.GradientSteps() != 1 {
		t.Fatalf("gradient steps: want(1) have(%v)", d.GradientSteps())
	}

	after := d.Values(0)
	if math.Abs(after[action]-r) >= math.Abs(before[action]-r) {
		t.Errorf("value of taken action: want closer to %v than %v, "+
			"have(%v)", r, before[action], after[action])
	}

	// Only the output of the taken action has a gradient, so the output
	// weights and biases of every other action are unchanged
	updated := d.OnlineParams()
	outputs := topo.Len()
	for _, i := range []int{len(updated) - 2, len(updated) - 1} {
		for j := range updated[i] {
			changed := updated[i][j] != online[i][j]
			if j%outputs == action && i == len(updated)-1 && !changed {
				t.Errorf("bias of the taken action did not change")
			}
			if j%outputs != action && changed {
				t.Errorf("param %v changed at %v for untaken action %v", i,
					j, j%outputs)
			}
		}
	}

	assertEqualParams(t, target, d.TargetParams())
}

func TestReplayCapacity(t *testing.T) {
	d := newAgent(t, cycle(t), smallConfig())

	stats, err := d.Train(20)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Episodes != 20 {
		t.Errorf("episodes: want(20) have(%v)", stats.Episodes)
	}
	if stats.Invalid != 0 {
		t.Errorf("invalid: want(0) have(%v)", stats.Invalid)
	}

	replay := d.Replay()
	want := stats.Steps
	if want > replay.MaxCapacity() {
		want = replay.MaxCapacity()
	}
	if replay.Capacity() != want {
		t.Errorf("capacity: want(%v) have(%v)", want, replay.Capacity())
	}
	if d.Syncs() != 20/3 {
		t.Errorf("syncs: want(%v) have(%v)", 20/3, d.Syncs())
	}
}

func TestGreedyIsNeighbor(t *testing.T) {
	for _, masking := range []agent.ActionMasking{agent.MaskModulo,
		agent.MaskNeighbors} {
		c := smallConfig()
		c.Masking = masking
		topo := cycle(t)
		d := newAgent(t, topo, c)

		if _, err := d.Train(5); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < topo.Len(); i++ {
			next := d.Greedy(i)
			if !topo.HasLink(i, next) {
				t.Errorf("%v: greedy from %v moved to non-neighbor %v",
					masking, topo.Node(i), next)
			}
		}
	}
}

func TestDeadEnd(t *testing.T) {
	topo := cycle(t, "z")
	d := newAgent(t, topo, smallConfig())

	length := tracker.NewEpisodeLength("")
	d.Track(length)

	stats, err := d.Train(40)
	if err != nil {
		t.Fatal(err)
	}
	if stats.DeadEnds == 0 {
		t.Error("expected episodes starting at z to end at a dead end")
	}
	if len(length.Data()) != 40 {
		t.Errorf("tracked episodes: want(40) have(%v)", len(length.Data()))
	}

	z, _ := topo.Index("z")
	if next := d.Greedy(z); next != -1 {
		t.Errorf("greedy from dead end: want(-1) have(%v)", next)
	}
}

func TestDestination(t *testing.T) {
	d := newAgent(t, cycle(t), smallConfig())
	if d.Destination() != -1 {
		t.Errorf("destination: want(-1) have(%v)", d.Destination())
	}
	if err := d.SetDestination("c"); err != nil {
		t.Fatal(err)
	}
	if d.Destination() != 2 {
		t.Errorf("destination: want(2) have(%v)", d.Destination())
	}
	if err := d.SetDestination("q"); !topology.IsUnknownNode(err) {
		t.Errorf("expected UnknownNodeError, have(%v)", err)
	}
}

func TestNewInvalid(t *testing.T) {
	topo := cycle(t)
	tests := map[string]func(*Config){
		"biases":   func(c *Config) { c.Biases = nil },
		"masking":  func(c *Config) { c.Masking = agent.MaskNone },
		"tau":      func(c *Config) { c.Tau = 0 },
		"interval": func(c *Config) { c.TargetUpdateInterval = 0 },
		"solver":   func(c *Config) { c.Solver.StepSize = 0 },
		"replay":   func(c *Config) { c.ExpReplay.MinReplayCapacity = 1 },
	}

	for name, modify := range tests {
		c := smallConfig()
		modify(&c)
		if _, err := New(topo, features.NewLocal(topo), c, 1); err == nil {
			t.Errorf("%v: expected error", name)
		}
	}
}

func assertEqualParams(t *testing.T, want, have [][]float64) {
	t.Helper()
	if len(want) != len(have) {
		t.Fatalf("params: want %v nodes, have(%v)", len(want), len(have))
	}
	for i := range want {
		for j := range want[i] {
			if want[i][j] != have[i][j] {
				t.Fatalf("param %v differs at %v: want(%v) have(%v)", i, j,
					want[i][j], have[i][j])
			}
		}
	}
}
