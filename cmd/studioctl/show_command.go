package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"studio/internal/production"
)

func newShowCommand(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the current state of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(*addr)
			run, err := client.getRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printRun(cmd.OutOrStdout(), run)
			return nil
		},
	}
}

func printRun(w io.Writer, run *production.ProductionRun) {
	fmt.Fprintf(w, "run:    %s\n", run.ID)
	fmt.Fprintf(w, "stage:  %s\n", run.Stage)
	fmt.Fprintf(w, "prompt: %s\n", run.Prompt)
	if run.Blueprint != nil {
		fmt.Fprintf(w, "title:  %s\n", run.Blueprint.Title)
	}
	for _, task := range run.Tasks {
		line := fmt.Sprintf("  %-6s %s", task.Modality, task.Status)
		if task.Error != "" {
			line += "  " + task.Error
		}
		fmt.Fprintln(w, line)
	}
	for _, asset := range run.Assets {
		fmt.Fprintf(w, "  asset %s (%s) %q\n", asset.ID, asset.Type, asset.Title)
	}
}
