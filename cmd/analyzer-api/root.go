package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:          "analyzer-api",
	Short:        "Resume analyzer API service",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(runCmd)
}
