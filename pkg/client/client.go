package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/types"
)

const snapConnectHint = "sudo snap connect jhack:dot-local-share-juju snapd"

type Client struct {
	config *Config
}

func NewClient(config *Config) *Client {
	return &Client{
		config: config,
	}
}

func (c *Client) runner() cli.Runner {
	if c.config.Runner != nil {
		return c.config.Runner
	}
	return cli.NewExecRunner(c.config.Env...)
}

// Connect checks that the juju client is usable and detects its version.
func (c *Client) Connect(ctx context.Context) (*Connection, error) {
	runner := c.runner()
	juju := cli.NewJuju(c.config.JujuCommand, c.config.Model)

	version, err := detectVersion(ctx, runner, juju, c.config.Snapped)
	if err != nil {
		return nil, err
	}
	log.Debug().Msgf("juju client version %s", version)

	return NewConnection(c, runner, juju, version), nil
}

func detectVersion(ctx context.Context, runner cli.Runner, juju cli.Juju, snapped bool) (types.JujuVersion, error) {
	out, err := runner.Output(ctx, juju.Global("version"))
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.NotFound {
				return types.JujuVersion{}, fmt.Errorf("juju client %q not found; is juju installed? "+
					"(set JHACK_JUJU_COMMAND to use a different binary): %w", juju.Binary, err)
			}
			if snapped && strings.Contains(exitErr.Stderr, "ssh client keys") {
				return types.JujuVersion{}, fmt.Errorf("the jhack snap cannot read the juju client keys; "+
					"try `%s`: %w", snapConnectHint, err)
			}
		}
		return types.JujuVersion{}, fmt.Errorf("failed to get juju version: %w", err)
	}
	return types.ParseJujuVersion(string(out))
}

type Connection struct {
	client  *Client
	runner  cli.Runner
	juju    cli.Juju
	version types.JujuVersion
}

func NewConnection(client *Client, runner cli.Runner, juju cli.Juju, version types.JujuVersion) *Connection {
	return &Connection{
		client:  client,
		runner:  runner,
		juju:    juju,
		version: version,
	}
}

func (c *Connection) Runner() cli.Runner {
	return c.runner
}

func (c *Connection) Juju() cli.Juju {
	return c.juju
}

func (c *Connection) Version() types.JujuVersion {
	return c.version
}
