package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type AnalyticsOptions struct {
	GlobalOptions

	Output string

	out io.Writer
}

func DefaultAnalyticsOptions() *AnalyticsOptions {
	return &AnalyticsOptions{
		GlobalOptions: DefaultGlobalOptions(),
		out:           os.Stdout,
	}
}

func NewCmdAnalytics() *cobra.Command {
	o := DefaultAnalyticsOptions()
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Display aggregate scores over all completed analyses.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *AnalyticsOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, outputFlagUsage())
}

func (o *AnalyticsOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *AnalyticsOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	return validateOutput(o.Output)
}

func (o *AnalyticsOptions) Run(ctx context.Context, args []string) error {
	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	analytics, err := c.GetAnalytics(ctx)
	if err != nil {
		return fmt.Errorf("reading analytics: %w", err)
	}

	return printResource(o.out, o.Output, analytics, func(w *tabwriter.Writer) { printAnalyticsTable(w, analytics) })
}
