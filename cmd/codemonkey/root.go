package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd creates the root codemonkey command with all subcommands
// attached.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "codemonkey",
		Short:         "Automated presentation assistant",
		Long:          "codemonkey drives a scripted desktop presentation: one machine narrates and\nsends actions, the other enacts them.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newAgentCmd(),
		newPresentCmd(),
		newCheckCmd(),
	)

	return cmd
}
