package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/samuelfneumann/rlroute/config"
)

func newConfigCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "print the run configuration as YAML",
		Long: "print the run configuration as YAML. Without --config the " +
			"default configuration is printed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if err := readConfigFile(v, opts.config); err != nil {
				return err
			}
			cfg, err := config.FromViper(v)
			if err != nil {
				return err
			}
			return cfg.Save(cmd.OutOrStdout())
		},
	}
}
