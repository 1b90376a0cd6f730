package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gigflick/resume-analyzer/internal/client"
)

type GlobalOptions struct {
	ConfigFilePath string
	ServerUrl      string
	Timeout        time.Duration
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		ConfigFilePath: client.DefaultClientConfigPath(),
	}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ConfigFilePath, "config", "c", o.ConfigFilePath, "Path to the client configuration file")
	fs.StringVarP(&o.ServerUrl, "server-url", "u", o.ServerUrl, "Address of the server, overrides the configuration file")
	fs.DurationVar(&o.Timeout, "request-timeout", o.Timeout, "Timeout of a single request, overrides the configuration file")
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	if o.Timeout < 0 {
		return fmt.Errorf("request-timeout must not be negative")
	}
	return nil
}

func (o *GlobalOptions) Client() (*client.Client, error) {
	config, err := client.LoadConfig(o.ConfigFilePath)
	if err != nil {
		return nil, err
	}
	if o.ServerUrl != "" {
		config.Service.Server = o.ServerUrl
	}
	if o.Timeout > 0 {
		config.Service.Timeout = o.Timeout
	}
	return client.NewFromConfig(config)
}
