package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hostlink",
	Short: "Remote host control over a chat channel",
	Long: `hostlink lets an authorized operator control a host machine through a
chat channel. Inbound messages are authorized, parsed into commands, and
dispatched to handlers for shell execution, capture, process control, and
system actions.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
