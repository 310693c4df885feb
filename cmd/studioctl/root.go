package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var addrFlag string

	rootCmd := &cobra.Command{
		Use:           "studioctl",
		Short:         "Client for the production API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&addrFlag, "addr", "http://localhost:8080", "Base URL of the API server")

	rootCmd.AddCommand(newProduceCommand(&addrFlag))
	rootCmd.AddCommand(newProgressCommand(&addrFlag))
	rootCmd.AddCommand(newShowCommand(&addrFlag))

	return rootCmd
}
