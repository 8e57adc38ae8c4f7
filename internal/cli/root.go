// Package cli implements the agentcore command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentcore/config"
	"github.com/hupe1980/agentcore/logging"
)

// app carries state shared by all subcommands of one invocation.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *logging.StructuredLogger
	closers []func() error
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewRootCmd builds the command tree. Logs go to stderr (or the configured
// log file); results are written to the command's output.
func NewRootCmd(stderr io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "agentcore",
		Short:         "agentcore runs goal-driven agents over a fixed step budget",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg

			logger, closeLog, err := newLogger(cfg.Log, stderr)
			if err != nil {
				return err
			}
			a.logger = logger
			a.closers = append(a.closers, closeLog)
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default ./config.yaml or $HOME/.agentcore/config.yaml)")

	root.AddCommand(newRunCmd(a), newToolsCmd(a), newRunsCmd(a))
	return root
}

// Execute runs the CLI with the given context and returns the exit code.
func Execute(ctx context.Context) int {
	root := NewRootCmd(os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
