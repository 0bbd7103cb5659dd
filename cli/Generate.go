package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/rlroute/topology"
	"github.com/samuelfneumann/rlroute/topology/csvloader"
)

func newGenerateCommand(opts *options) *cobra.Command {
	c := topology.DefaultGenerateConfig()
	var (
		seed uint64
		out  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "generate a random topology of switches and hosts as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := topology.Generate(c, seed)
			if err != nil {
				return err
			}
			if err := csvloader.Save(out, t); err != nil {
				return err
			}

			opts.logger.Infow("generated topology", "file", out, "nodes",
				t.Len(), "links", len(t.Links()), "seed", seed)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d nodes and %d "+
				"links to %v\n", t.Len(), len(t.Links()), out)
			return err
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&c.Switches, "switches", c.Switches, "number of switches")
	flags.IntVar(&c.HostsPerSwitch, "hosts", c.HostsPerSwitch, "number of hosts attached to each switch")
	flags.IntVar(&c.ExtraLinks, "extra-links", c.ExtraLinks, "number of random switch links added to the ring")
	flags.Uint64Var(&seed, "seed", 1, "seed of the generator")
	flags.StringVarP(&out, "output", "o", "", "CSV file to write")
	cmd.MarkFlagRequired("output")

	return cmd
}
