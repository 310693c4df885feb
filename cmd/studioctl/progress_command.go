package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProgressCommand(addr *string) *cobra.Command {
	var history bool

	cmd := &cobra.Command{
		Use:   "progress <run-id>",
		Short: "Show run progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(*addr)
			stdout := cmd.OutOrStdout()

			if history {
				events, err := client.progressHistory(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				for _, ev := range events {
					fmt.Fprintf(stdout, "%s %3d%% %-12s %s\n",
						ev.Timestamp.Format("15:04:05"), ev.Percent, ev.Stage, ev.Message)
				}
				return nil
			}

			ev, err := client.latestProgress(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%3d%% %-12s %s\n", ev.Percent, ev.Stage, ev.Message)
			return nil
		},
	}

	cmd.Flags().BoolVar(&history, "history", false, "Print the full progress log instead of the latest event")

	return cmd
}
