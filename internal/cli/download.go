package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type DownloadOptions struct {
	GlobalOptions

	OutputFile string

	out io.Writer
}

func DefaultDownloadOptions() *DownloadOptions {
	return &DownloadOptions{
		GlobalOptions: DefaultGlobalOptions(),
		out:           os.Stdout,
	}
}

func NewCmdDownload() *cobra.Command {
	o := DefaultDownloadOptions()
	cmd := &cobra.Command{
		Use:          "download ID",
		Short:        "Download the detailed PDF report of a completed analysis.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *DownloadOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.OutputFile, "output-file", "f", o.OutputFile, "Where to write the report, defaults to <id>.pdf")
}

func (o *DownloadOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	if o.OutputFile == "" && len(args) > 0 {
		o.OutputFile = args[0] + ".pdf"
	}
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *DownloadOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	_, err := parseAnalysisID(args[0])
	return err
}

func (o *DownloadOptions) Run(ctx context.Context, args []string) error {
	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	id, err := parseAnalysisID(args[0])
	if err != nil {
		return err
	}

	data, err := c.DownloadReport(ctx, id)
	if err != nil {
		return fmt.Errorf("downloading report for analysis/%s: %w", id, err)
	}

	if err := os.WriteFile(o.OutputFile, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	fmt.Fprintf(o.out, "report written to %s\n", o.OutputFile)
	return nil
}
