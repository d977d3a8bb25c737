package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bugtracker",
	Short: "Bug tracker API and administration tool",
	Long: `bugtracker serves the bug tracking REST API and provides
commands to migrate the store, load sample data and inspect bugs.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.
func Execute(buildVersion string) {
	rootCmd.Version = buildVersion
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorPrefix, err)
		os.Exit(1)
	}
}
