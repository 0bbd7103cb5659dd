// Package experiment implements functionality for running a routing
// experiment: agents are trained on a topology, routes are extracted
// from their learned policies and compared with shortest paths.
package experiment

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/rlroute/agent"
	"github.com/samuelfneumann/rlroute/agent/deepq"
	"github.com/samuelfneumann/rlroute/agent/qlearning"
	"github.com/samuelfneumann/rlroute/baseline"
	"github.com/samuelfneumann/rlroute/config"
	"github.com/samuelfneumann/rlroute/experiment/checkpointer"
	"github.com/samuelfneumann/rlroute/experiment/tracker"
	"github.com/samuelfneumann/rlroute/features"
	"github.com/samuelfneumann/rlroute/route"
	"github.com/samuelfneumann/rlroute/topology"
	"github.com/samuelfneumann/rlroute/topology/csvloader"
)

// Names of the agents of an Experiment
const (
	Tabular string = "tabular"
	DQN     string = "dqn"
)

// Experiment trains the agents enabled by a config.Config on a single
// topology and compares the routes they learn with a shortest path.
//
// Agents are trained concurrently. They only share the topology, which
// is never modified.
type Experiment struct {
	cfg  *config.Config
	topo *topology.Topology

	logger   *zap.SugaredLogger
	progress io.Writer
}

// Option configures an Experiment
type Option func(*Experiment)

// WithLogger sets the logger of the Experiment and its agents
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Experiment) {
		e.logger = logger
	}
}

// WithProgress displays a progress bar of training on w
func WithProgress(w io.Writer) Option {
	return func(e *Experiment) {
		e.progress = w
	}
}

// New returns a new Experiment on topology t
func New(cfg *config.Config, t *topology.Topology,
	opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	for _, node := range []string{cfg.Source, cfg.Destination} {
		if !t.Has(node) {
			return nil, fmt.Errorf("new: %w", &topology.UnknownNodeError{
				Node: node,
			})
		}
	}

	e := &Experiment{cfg: cfg, topo: t, logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Topology returns the topology described by cfg. The topology is
// loaded from a CSV file if cfg names one and generated otherwise.
func Topology(cfg *config.Config) (*topology.Topology, error) {
	weights := topology.WithCostWeights(cfg.Topology.CostWeights)
	if cfg.Topology.File != "" {
		return csvloader.Load(cfg.Topology.File, weights)
	}
	return topology.Generate(cfg.Topology.Generate, cfg.Seed, weights)
}

// AgentReport is the outcome of training a single agent
type AgentReport struct {
	Name  string
	Stats agent.Stats

	// Averages over all training episodes
	MeanReturn float64
	MeanLength float64

	Route      route.Route
	Comparison baseline.Comparison

	// Time taken to train the agent and extract its route
	Duration time.Duration
}

// Report is the outcome of an Experiment. Agents which were not
// enabled have no AgentReport.
type Report struct {
	Agents   []AgentReport
	Baseline baseline.Result
}

// Write writes a human readable summary of the Report to w
func (r *Report) Write(w io.Writer) error {
	for _, a := range r.Agents {
		_, err := fmt.Fprintf(w, "[%v] episodes=%d steps=%d reached=%d "+
			"invalid=%d deadEnds=%d meanReturn=%.3f meanLength=%.2f "+
			"time=%v\n%v\n", a.Name, a.Stats.Episodes, a.Stats.Steps,
			a.Stats.Reached, a.Stats.Invalid, a.Stats.DeadEnds, a.MeanReturn,
			a.MeanLength, a.Duration, a.Comparison)
		if err != nil {
			return err
		}
	}
	if len(r.Agents) == 0 {
		_, err := fmt.Fprintf(w, "[baseline] %v\n", r.Baseline)
		return err
	}
	return nil
}

// Run trains all enabled agents and the baseline concurrently, waits
// for all of them to finish and compares their routes
func (e *Experiment) Run() (*Report, error) {
	var progress *tracker.Progress
	if e.progress != nil {
		episodes := 0
		if e.cfg.Tabular.Enabled {
			episodes += e.cfg.Tabular.Episodes
		}
		if e.cfg.DQN.Enabled {
			episodes += e.cfg.DQN.Episodes
		}
		progress = tracker.NewProgress(e.progress, episodes, "training")
	}

	var (
		g      errgroup.Group
		mu     sync.Mutex
		agents []AgentReport
		base   baseline.Result
	)
	collect := func(r AgentReport) {
		mu.Lock()
		defer mu.Unlock()
		agents = append(agents, r)
	}

	if e.cfg.Tabular.Enabled {
		g.Go(func() error {
			r, err := e.runTabular(progress)
			if err != nil {
				return fmt.Errorf("%v: %w", Tabular, err)
			}
			collect(r)
			return nil
		})
	}
	if e.cfg.DQN.Enabled {
		g.Go(func() error {
			r, err := e.runDQN(progress)
			if err != nil {
				return fmt.Errorf("%v: %w", DQN, err)
			}
			collect(r)
			return nil
		})
	}
	g.Go(func() error {
		base = baseline.Shortest(e.topo, e.cfg.Source, e.cfg.Destination,
			e.cfg.Baseline.WeightKey)
		return nil
	})

	err := g.Wait()
	if progress != nil {
		if err := progress.Save(); err != nil {
			e.logger.Warnw("could not finish progress bar", "error", err)
		}
	}
	if err != nil {
		return nil, err
	}

	// Report agents in a fixed order
	report := &Report{Baseline: base}
	for _, name := range []string{Tabular, DQN} {
		for _, a := range agents {
			if a.Name == name {
				a.Comparison.Baseline = base
				report.Agents = append(report.Agents, a)
			}
		}
	}
	return report, nil
}

// runTabular trains and evaluates the tabular agent
func (e *Experiment) runTabular(progress *tracker.Progress) (AgentReport,
	error) {
	start := time.Now()
	c := e.cfg.Tabular
	q, err := qlearning.New(e.topo, e.cfg.Destination, c.Config, e.cfg.Seed)
	if err != nil {
		return AgentReport{}, err
	}
	q.SetLogger(e.logger.Named(Tabular))

	trackers := e.trackers(Tabular, progress)
	if c.Checkpoint > 0 && e.cfg.OutputDir != "" {
		check, err := checkpointer.NewNEpisode(c.Checkpoint, q,
			e.cfg.OutputDir, "qtable", ".bin")
		if err != nil {
			return AgentReport{}, err
		}
		trackers = append(trackers, check)
	}
	q.Track(trackers...)

	var stats agent.Stats
	switch c.Mode {
	case config.Randomized:
		stats, err = q.TrainRandomized(c.Episodes)
	default:
		stats, err = q.TrainFixed(e.cfg.Source, c.Episodes)
	}
	if err != nil {
		return AgentReport{}, err
	}

	return e.report(Tabular, q, stats, trackers, start)
}

// runDQN trains and evaluates the deep Q-learning agent
func (e *Experiment) runDQN(progress *tracker.Progress) (AgentReport,
	error) {
	start := time.Now()
	c, err := e.cfg.DQN.Agent()
	if err != nil {
		return AgentReport{}, err
	}
	d, err := deepq.New(e.topo, features.NewLocal(e.topo), c, e.cfg.Seed)
	if err != nil {
		return AgentReport{}, err
	}
	defer d.Close()
	d.SetLogger(e.logger.Named(DQN))

	trackers := e.trackers(DQN, progress)
	d.Track(trackers...)

	stats, err := d.Train(e.cfg.DQN.Episodes)
	if err != nil {
		return AgentReport{}, err
	}
	if err := d.SetDestination(e.cfg.Destination); err != nil {
		return AgentReport{}, err
	}

	return e.report(DQN, d, stats, trackers, start)
}

// trackers returns the Trackers of an agent. The first two are always
// a Return and an EpisodeLength Tracker.
func (e *Experiment) trackers(name string,
	progress *tracker.Progress) []tracker.Tracker {
	var returns, lengths string
	if e.cfg.OutputDir != "" {
		returns = filepath.Join(e.cfg.OutputDir, name+"-returns.bin")
		lengths = filepath.Join(e.cfg.OutputDir, name+"-lengths.bin")
	}

	trackers := []tracker.Tracker{
		tracker.NewReturn(returns),
		tracker.NewEpisodeLength(lengths),
	}
	if progress != nil {
		trackers = append(trackers, progress)
	}
	return trackers
}

// report extracts the route of a trained agent, compares it with the
// baseline and saves the data of its trackers. The agent is timed from
// start until its route is extracted.
func (e *Experiment) report(name string, tr agent.Trainer,
	stats agent.Stats, trackers []tracker.Tracker,
	start time.Time) (AgentReport, error) {
	returns := trackers[0].(*tracker.Return).Data()
	lengths := trackers[1].(*tracker.EpisodeLength).Data()

	r := AgentReport{Name: name, Stats: stats}
	if len(returns) > 0 {
		r.MeanReturn = stat.Mean(returns, nil)
	}
	if len(lengths) > 0 {
		r.MeanLength = stat.Mean(lengths, nil)
	}

	rt, err := route.FromTrainer(e.topo, tr, e.cfg.Source,
		e.cfg.MaxRouteSteps)
	r.Duration = time.Since(start)
	if err == nil && !rt.Converged {
		e.logger.Warnw("route did not converge", "agent", name, "route",
			rt.Nodes)
	}
	r.Route = rt
	r.Comparison = baseline.Comparison{
		Source:      e.cfg.Source,
		Destination: e.cfg.Destination,
		Key:         e.cfg.Baseline.WeightKey,
		RL:          baseline.Learned(e.topo, rt, err),
	}
	r.Comparison.RL.Duration = r.Duration

	if e.cfg.OutputDir != "" {
		for _, t := range trackers {
			if _, ok := t.(*tracker.Progress); ok {
				continue
			}
			if err := t.Save(); err != nil {
				return r, fmt.Errorf("could not save tracked data: %w", err)
			}
		}
	}
	return r, nil
}
