package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/samuelfneumann/rlroute/config"
	"github.com/samuelfneumann/rlroute/experiment"
)

func newTrainCommand(opts *options) *cobra.Command {
	var noProgress bool
	def := config.New()

	cmd := &cobra.Command{
		Use:   "train",
		Short: "train routing agents and compare their routes with shortest paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			for _, name := range []string{"seed", "source", "destination",
				"outputDir"} {
				if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
					return fmt.Errorf("bind flag %v: %w", name, err)
				}
			}
			if err := readConfigFile(v, opts.config); err != nil {
				return err
			}

			cfg, err := config.FromViper(v)
			if err != nil {
				return err
			}
			if cfg.OutputDir != "" {
				if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
			}

			topo, err := experiment.Topology(cfg)
			if err != nil {
				return err
			}
			opts.logger.Infow("loaded topology", "nodes", topo.Len(),
				"links", len(topo.Links()), "source", cfg.Source,
				"destination", cfg.Destination)

			expOpts := []experiment.Option{experiment.WithLogger(opts.logger)}
			if !noProgress {
				expOpts = append(expOpts, experiment.WithProgress(cmd.ErrOrStderr()))
			}
			e, err := experiment.New(cfg, topo, expOpts...)
			if err != nil {
				return err
			}

			report, err := e.Run()
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.Uint64("seed", def.Seed, "seed of all random number generators")
	flags.String("source", def.Source, "source node of the compared routes")
	flags.String("destination", def.Destination, "destination node of the compared routes")
	flags.String("outputDir", def.OutputDir, "directory to save tracked training data to")
	flags.BoolVar(&noProgress, "no-progress", false, "do not display a progress bar")

	return cmd
}

// readConfigFile reads the config file at path into v. Nothing is read
// if path is empty.
func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %v: %w", path, err)
	}
	return nil
}
