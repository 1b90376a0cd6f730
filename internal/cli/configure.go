package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gigflick/resume-analyzer/internal/client"
)

type ConfigureOptions struct {
	ConfigFilePath string

	out io.Writer
}

func DefaultConfigureOptions() *ConfigureOptions {
	return &ConfigureOptions{
		ConfigFilePath: client.DefaultClientConfigPath(),
		out:            os.Stdout,
	}
}

func NewCmdConfigure() *cobra.Command {
	o := DefaultConfigureOptions()
	cmd := &cobra.Command{
		Use:          "configure SERVER_URL",
		Short:        "Store the server address in the client configuration file.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.out = cmd.OutOrStdout()
			return o.Run(cmd.Context(), args)
		},
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *ConfigureOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ConfigFilePath, "config", "c", o.ConfigFilePath, "Path to the client configuration file")
}

func (o *ConfigureOptions) Run(ctx context.Context, args []string) error {
	if err := client.WriteConfig(o.ConfigFilePath, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(o.out, "configuration written to %s\n", o.ConfigFilePath)
	return nil
}
