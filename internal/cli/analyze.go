package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	api "github.com/gigflick/resume-analyzer/api/v1alpha1"
)

const defaultPollInterval = time.Second

// ErrAnalysisFailed is returned once the polled analysis reached the failed state.
var ErrAnalysisFailed = errors.New("analysis failed")

type AnalyzeOptions struct {
	GlobalOptions

	Output   string
	Interval time.Duration
	NoWait   bool

	out io.Writer
}

func DefaultAnalyzeOptions() *AnalyzeOptions {
	return &AnalyzeOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Interval:      defaultPollInterval,
		out:           os.Stdout,
	}
}

func NewCmdAnalyze() *cobra.Command {
	o := DefaultAnalyzeOptions()
	cmd := &cobra.Command{
		Use:          "analyze FILE",
		Short:        "Upload a PDF resume and wait for its analysis.",
		Example:      "analyze ./resume.pdf --interval 2s",
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

func (o *AnalyzeOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, outputFlagUsage())
	fs.DurationVar(&o.Interval, "interval", o.Interval, "Polling interval while the analysis is processing")
	fs.BoolVar(&o.NoWait, "no-wait", o.NoWait, "Return right after the upload without polling")
}

func (o *AnalyzeOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *AnalyzeOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	return validateOutput(o.Output)
}

func (o *AnalyzeOptions) Run(ctx context.Context, args []string) error {
	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening resume: %w", err)
	}
	defer f.Close()

	analysis, err := c.Analyze(ctx, filepath.Base(args[0]), f)
	if err != nil {
		return fmt.Errorf("uploading resume: %w", err)
	}

	if !o.NoWait {
		id := analysis.Id
		lastMessage := ""
		analysis, err = c.WaitForAnalysis(ctx, id, o.Interval, func(a *api.Analysis) {
			if o.Output != "" || a.StatusMessage == nil || *a.StatusMessage == lastMessage {
				return
			}
			lastMessage = *a.StatusMessage
			fmt.Fprintf(o.out, "[%s] %s\n", a.Status, lastMessage)
		})
		if err != nil {
			return fmt.Errorf("waiting for analysis %s: %w", id, err)
		}
	}

	if err := printResource(o.out, o.Output, analysis, func(w *tabwriter.Writer) { printAnalysisTable(w, analysis) }); err != nil {
		return err
	}

	if analysis.Status == api.AnalysisStatusFailed {
		return fmt.Errorf("%w: %s", ErrAnalysisFailed, analysis.Id)
	}
	return nil
}
