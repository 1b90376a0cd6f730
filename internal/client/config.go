package client

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"sigs.k8s.io/yaml"
)

const (
	// ConfigPathEnvKey overrides the default client config path.
	ConfigPathEnvKey = "ANALYZER_CLIENT_CONFIG"

	DefaultServer  = "http://localhost:3443"
	DefaultTimeout = 60 * time.Second
)

// Config holds the information needed to connect to a resume analyzer API server.
type Config struct {
	Service Service `json:"service"`
}

// Service describes the API server.
type Service struct {
	// Server is the URL of the API server (the part before /api/...).
	Server string `json:"server"`
	// Timeout bounds a single HTTP exchange. Zero means DefaultTimeout.
	Timeout time.Duration `json:"timeout,omitempty"`
}

func NewDefault() *Config {
	return &Config{Service: Service{Server: DefaultServer, Timeout: DefaultTimeout}}
}

// DefaultClientConfigPath returns the default path to the client config file.
func DefaultClientConfigPath() string {
	if value := os.Getenv(ConfigPathEnvKey); value != "" {
		return filepath.Clean(value)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".resume-analyzer", "client.yaml")
}

func ParseConfigFile(filename string) (*Config, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	config := NewDefault()
	if err := yaml.Unmarshal(contents, config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfig reads filename when it exists and falls back to the defaults otherwise.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return NewDefault(), nil
	}
	return ParseConfigFile(filename)
}

// WriteConfig writes a client config file pointing at server.
func WriteConfig(filename string, server string) error {
	config := NewDefault()
	config.Service.Server = server
	if err := config.Validate(); err != nil {
		return err
	}
	return config.Persist(filename)
}

func (c *Config) Persist(filename string) error {
	contents, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.WriteFile(filename, contents, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := errors.Join(validateService(c.Service)...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func validateService(service Service) []error {
	validationErrors := make([]error, 0)
	if len(service.Server) == 0 {
		validationErrors = append(validationErrors, fmt.Errorf("no server found"))
	} else {
		u, err := url.Parse(service.Server)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Errorf("invalid server format %q: %w", service.Server, err))
		}
		if err == nil && len(u.Hostname()) == 0 {
			validationErrors = append(validationErrors, fmt.Errorf("invalid server format %q: no hostname", service.Server))
		}
	}
	if service.Timeout < 0 {
		validationErrors = append(validationErrors, fmt.Errorf("timeout must not be negative"))
	}
	return validationErrors
}
