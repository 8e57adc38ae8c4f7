package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentcore/core"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		format   string
		maxSteps int
		provider string
		each     bool
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "run GOAL...",
		Short: "Run the agent for a goal",
		Long: `Run the agent for a goal and print the run report.

All arguments are joined into a single goal. With --each every argument is
run as its own goal, concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			if cmd.Flags().Changed("max-steps") {
				a.cfg.Agent.MaxSteps = maxSteps
			}
			if cmd.Flags().Changed("provider") {
				a.cfg.Reasoner.Provider = provider
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if a.cfg.Agent.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, a.cfg.Agent.Timeout)
				defer cancel()
			}

			var observer core.Observer
			if verbose {
				errOut := cmd.ErrOrStderr()
				observer = core.ObserverFunc(func(e core.Event) {
					switch e.Type {
					case core.EventThought:
						fmt.Fprintf(errOut, "step %d: thinking: %s\n", e.Step, e.Thought.Analysis)
					case core.EventAction:
						fmt.Fprintf(errOut, "step %d: %s -> %s\n", e.Step, e.Action.Name, e.Result)
					}
				})
			}

			ac, closeStores, err := newAgentCore(ctx, a.cfg, a.logger, observer)
			if err != nil {
				return err
			}
			defer closeStores()

			out := cmd.OutOrStdout()
			if !each {
				report, err := ac.Run(ctx, strings.Join(args, " "))
				if err != nil {
					return describeRunError(err)
				}
				return writeReport(out, format, report)
			}

			reports, err := ac.RunBatch(ctx, args)
			if err != nil {
				return describeRunError(err)
			}
			if format != FormatText {
				return encode(out, format, reports)
			}
			for i, r := range reports {
				if i > 0 {
					fmt.Fprintln(out)
				}
				if err := writeReport(out, format, r); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", FormatText, "output format: text, json or yaml")
	cmd.Flags().IntVarP(&maxSteps, "max-steps", "n", 0, "number of steps (overrides agent.max_steps)")
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "reasoning provider: heuristic, openai, anthropic or gemini")
	cmd.Flags().BoolVar(&each, "each", false, "treat every argument as a separate goal")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print steps to stderr while running")
	return cmd
}

// describeRunError adds the number of completed entries to a run failure.
func describeRunError(err error) error {
	var runErr *core.RunError
	if errors.As(err, &runErr) && runErr.Partial != nil {
		return fmt.Errorf("%w (%d entries completed)", err, runErr.Partial.Steps)
	}
	return err
}
