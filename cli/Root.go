// Package cli implements the rlroute command line interface
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const description = `
rlroute learns routes through a network topology with tabular and deep
Q-learning and compares them with shortest paths.
`

// options holds the flags shared by all commands
type options struct {
	config  string
	verbose bool

	logger *zap.SugaredLogger
}

// NewRootCommand returns the root command of the rlroute CLI
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:               "rlroute <command> [flags]",
		Short:             "reinforcement learning routing",
		Long:              description,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts.verbose)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				opts.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.config, "config", "c", "", "path to a YAML run configuration")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level in a human readable format")

	root.AddCommand(
		newTrainCommand(opts),
		newGenerateCommand(opts),
		newConfigCommand(opts),
	)
	return root
}

// newLogger returns a production logger, or a development logger if
// verbose
func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
