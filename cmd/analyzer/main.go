package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gigflick/resume-analyzer/internal/cli"
)

func main() {
	command := NewAnalyzerCtlCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewAnalyzerCtlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyzer [flags] [options]",
		Short: "analyzer uploads resumes to the Resume Analyzer service and reads the results.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdAnalyze())
	cmd.AddCommand(cli.NewCmdGet())
	cmd.AddCommand(cli.NewCmdAnalytics())
	cmd.AddCommand(cli.NewCmdSendReport())
	cmd.AddCommand(cli.NewCmdDownload())
	cmd.AddCommand(cli.NewCmdConfigure())

	return cmd
}
