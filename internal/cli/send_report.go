package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type SendReportOptions struct {
	GlobalOptions

	Email    string
	Detailed bool

	out io.Writer
}

func DefaultSendReportOptions() *SendReportOptions {
	return &SendReportOptions{
		GlobalOptions: DefaultGlobalOptions(),
		out:           os.Stdout,
	}
}

func NewCmdSendReport() *cobra.Command {
	o := DefaultSendReportOptions()
	cmd := &cobra.Command{
		Use:          "send-report ID",
		Short:        "Email the PDF report of a completed analysis.",
		Example:      "send-report 3f1c... --email jane@example.com --detailed",
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

	if err := cmd.MarkFlagRequired("email"); err != nil {
		panic(err)
	}

	return cmd
}

func (o *SendReportOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVar(&o.Email, "email", o.Email, "Recipient address (required)")
	fs.BoolVar(&o.Detailed, "detailed", o.Detailed, "Send the detailed report with suggestions and accessibility findings")
}

func (o *SendReportOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.Email = strings.TrimSpace(o.Email)
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *SendReportOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if _, err := parseAnalysisID(args[0]); err != nil {
		return err
	}
	if o.Email == "" {
		return fmt.Errorf("email is required")
	}
	return nil
}

func (o *SendReportOptions) Run(ctx context.Context, args []string) error {
	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	id, err := parseAnalysisID(args[0])
	if err != nil {
		return err
	}

	msg, err := c.SendReport(ctx, id, o.Email, o.Detailed)
	if err != nil {
		return fmt.Errorf("sending report for analysis/%s: %w", id, err)
	}

	fmt.Fprintln(o.out, msg)
	return nil
}
