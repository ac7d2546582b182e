// Package cmd defines the citizenport command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "citizenport",
	Short: "Citizen services portal backend",
	Long: `citizenport serves the citizen services portal: the public service
catalogue, engagement analytics and an AI answering pipeline grounded in a
government-services knowledge base.

Run "citizenport serve" to start the HTTP API.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
