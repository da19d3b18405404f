package client

import (
	"context"
	"io"

	"github.com/canonical/jhack/pkg/cli"
)

type JujuClient struct {
	config *Config
}

func NewJujuClient(model string) *JujuClient {
	return &JujuClient{
		config: &Config{
			JujuCommand: cli.JujuCommandFromEnv(),
			Model:       model,
		},
	}
}

func (c *JujuClient) WithJujuCommand(cmd string) *JujuClient {
	c.config.JujuCommand = cmd
	return c
}

func (c *JujuClient) WithRunner(runner cli.Runner) *JujuClient {
	c.config.Runner = runner
	return c
}

func (c *JujuClient) WithOutput(out io.Writer) *JujuClient {
	c.config.Out = out
	return c
}

func (c *JujuClient) WithSnapped(snapped bool) *JujuClient {
	c.config.Snapped = snapped
	return c
}

func (c *JujuClient) Build(ctx context.Context) (*JujuBindingClient, error) {
	client := NewClient(c.config)
	conn, err := client.Connect(ctx)
	if err != nil {
		return nil, err
	}

	return NewJujuBindingClient(c, conn), nil
}

func Connect(ctx context.Context, opts ...ConfigOption) (*JujuBindingClient, error) {
	config := NewConfig(opts...)
	if config.JujuCommand == "" {
		config.JujuCommand = cli.JujuCommandFromEnv()
	}
	conn, err := NewClient(config).Connect(ctx)
	if err != nil {
		return nil, err
	}
	return NewJujuBindingClient(&JujuClient{config: config}, conn), nil
}
