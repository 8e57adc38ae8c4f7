package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunsCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded runs (requires the sqlite store backend)",
	}
	cmd.PersistentFlags().StringVarP(&format, "output", "o", FormatText, "output format: text, json or yaml")

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			ac, closeStores, err := newAgentCore(cmd.Context(), a.cfg, a.logger, nil)
			if err != nil {
				return err
			}
			defer closeStores()

			reports, err := ac.Reports(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeReportList(cmd.OutOrStdout(), format, reports)
		},
	}
	list.Flags().IntVarP(&limit, "limit", "l", 20, "maximum number of runs (0 lists all)")

	show := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show a recorded run report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			ac, closeStores, err := newAgentCore(cmd.Context(), a.cfg, a.logger, nil)
			if err != nil {
				return err
			}
			defer closeStores()

			report, err := ac.Report(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("run %s: %w", args[0], err)
			}
			return writeReport(cmd.OutOrStdout(), format, report)
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}
