package experiment

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/rlroute/agent"
	"github.com/samuelfneumann/rlroute/config"
	"github.com/samuelfneumann/rlroute/experiment/tracker"
	"github.com/samuelfneumann/rlroute/expreplay"
	"github.com/samuelfneumann/rlroute/topology"
)

func smallConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Seed = 3
	cfg.Source = "h0"
	cfg.Destination = "h2"
	cfg.Topology.Generate.Switches = 4
	cfg.Topology.Generate.HostsPerSwitch = 1
	cfg.Topology.Generate.ExtraLinks = 1

	cfg.Tabular.Episodes = 300
	cfg.Tabular.Masking = agent.MaskNeighbors
	cfg.Tabular.Checkpoint = 100

	cfg.DQN.Episodes = 6
	cfg.DQN.HiddenSizes = []int{8}
	cfg.DQN.MaxSteps = 10
	cfg.DQN.TargetUpdateInterval = 2
	cfg.DQN.ExpReplay = expreplay.Config{
		SampleMethod:      expreplay.Uniform,
		SampleSize:        4,
		MinReplayCapacity: 4,
		MaxReplayCapacity: 50,
	}

	cfg.OutputDir = t.TempDir()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestRun(t *testing.T) {
	cfg := smallConfig(t)
	topo, err := Topology(cfg)
	require.NoError(t, err)

	var progress bytes.Buffer
	e, err := New(cfg, topo, WithProgress(&progress))
	require.NoError(t, err)

	report, err := e.Run()
	require.NoError(t, err)
	require.Len(t, report.Agents, 2)
	assert.Equal(t, Tabular, report.Agents[0].Name)
	assert.Equal(t, DQN, report.Agents[1].Name)
	assert.NotEmpty(t, progress.String())

	// h0 hangs off s0 and h2 off s2
	require.True(t, report.Baseline.OK())
	assert.Equal(t, "h0", report.Baseline.Path[0])
	assert.Equal(t, "h2", report.Baseline.Path[len(report.Baseline.Path)-1])

	for _, a := range report.Agents {
		nodes := a.Route.Nodes
		require.NotEmpty(t, nodes, a.Name)
		assert.Equal(t, "h0", nodes[0], a.Name)
		assert.Equal(t, "h2", nodes[len(nodes)-1], a.Name)
		assert.Equal(t, report.Baseline, a.Comparison.Baseline, a.Name)
		assert.Greater(t, int64(a.Duration), int64(0), a.Name)
		assert.Equal(t, a.Duration, a.Comparison.RL.Duration, a.Name)
	}
	assert.Greater(t, int64(report.Baseline.Duration), int64(0))
	assert.Equal(t, 300, report.Agents[0].Stats.Episodes)
	assert.Equal(t, 6, report.Agents[1].Stats.Episodes)

	// Tracked data and checkpoints are saved
	returns, err := tracker.LoadData(filepath.Join(cfg.OutputDir,
		"tabular-returns.bin"))
	require.NoError(t, err)
	assert.Len(t, returns, 300)

	lengths, err := tracker.LoadData(filepath.Join(cfg.OutputDir,
		"dqn-lengths.bin"))
	require.NoError(t, err)
	assert.Len(t, lengths, 6)

	for _, name := range []string{"qtable100.bin", "qtable200.bin", "qtable300.bin"} {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, name))
		assert.NoError(t, err, name)
	}

	var out bytes.Buffer
	require.NoError(t, report.Write(&out))
	assert.Contains(t, out.String(), "[tabular]")
	assert.Contains(t, out.String(), "[dqn]")
	assert.Contains(t, out.String(), "time=")
}

func TestRunBaselineOnly(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Tabular.Enabled = false
	cfg.DQN.Enabled = false
	cfg.OutputDir = ""

	topo, err := Topology(cfg)
	require.NoError(t, err)
	e, err := New(cfg, topo)
	require.NoError(t, err)

	report, err := e.Run()
	require.NoError(t, err)
	assert.Empty(t, report.Agents)
	assert.True(t, report.Baseline.OK())

	var out bytes.Buffer
	require.NoError(t, report.Write(&out))
	assert.Contains(t, out.String(), "[baseline]")
}

func TestNewUnknownNode(t *testing.T) {
	cfg := smallConfig(t)
	topo, err := Topology(cfg)
	require.NoError(t, err)

	cfg.Destination = "h99"
	_, err = New(cfg, topo)
	assert.True(t, topology.IsUnknownNode(err))
}
