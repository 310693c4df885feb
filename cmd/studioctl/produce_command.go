package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"studio/internal/production"
)

func newProduceCommand(addr *string) *cobra.Command {
	var modalities []string
	var async bool
	var wait bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "produce <prompt>",
		Short: "Run a production for the given prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(*addr)
			stdout := cmd.OutOrStdout()

			run, err := client.start(cmd.Context(), startRequest{
				Prompt:     args[0],
				Modalities: modalities,
				Async:      async || wait,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "run %s (%s)\n", run.ID, run.Stage)

			if !async && !wait {
				printRun(stdout, run)
				return nil
			}
			if !wait {
				return nil
			}

			// Poll progress until the run reaches a terminal stage.
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			lastPercent := -1
			for {
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-ticker.C:
				}
				ev, err := client.latestProgress(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if ev.Percent != lastPercent {
					fmt.Fprintf(stdout, "%3d%% %-12s %s\n", ev.Percent, ev.Stage, ev.Message)
					lastPercent = ev.Percent
				}
				if ev.Stage == string(production.StageComplete) {
					final, err := client.getRun(cmd.Context(), run.ID)
					if err != nil {
						return err
					}
					printRun(stdout, final)
					return nil
				}
			}
		},
	}

	cmd.Flags().StringSliceVar(&modalities, "modalities", nil, "Modalities to generate (text,image,audio,video); omit to let the analyzer choose")
	cmd.Flags().BoolVar(&async, "async", false, "Return immediately with the run id")
	cmd.Flags().BoolVar(&wait, "wait", false, "Start async and poll progress until complete")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Polling interval used with --wait")

	return cmd
}
