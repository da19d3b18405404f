package client

import (
	"io"

	"github.com/canonical/jhack/pkg/cli"
)

type Config struct {
	JujuCommand string
	Model       string
	Runner      cli.Runner
	Env         []string
	Out         io.Writer
	Snapped     bool
}

type ConfigOption func(*Config)

func WithJujuCommand(cmd string) ConfigOption {
	return func(c *Config) {
		c.JujuCommand = cmd
	}
}

func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithRunner replaces the process runner, e.g. with a scripted fake in tests.
func WithRunner(runner cli.Runner) ConfigOption {
	return func(c *Config) {
		c.Runner = runner
	}
}

func WithEnv(env ...string) ConfigOption {
	return func(c *Config) {
		c.Env = append(c.Env, env...)
	}
}

func WithOutput(out io.Writer) ConfigOption {
	return func(c *Config) {
		c.Out = out
	}
}

func WithSnapped(snapped bool) ConfigOption {
	return func(c *Config) {
		c.Snapped = snapped
	}
}

func NewConfig(opts ...ConfigOption) *Config {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
