package client

import (
	"context"

	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/service/admin"
	"github.com/canonical/jhack/pkg/service/logs"
	"github.com/canonical/jhack/pkg/service/status"
	"github.com/canonical/jhack/pkg/service/unit"
	"github.com/canonical/jhack/pkg/types"
)

type JujuBindingClient struct {
	client    *JujuClient
	conn      *Connection
	StatusMng status.StatusService
	UnitMng   unit.UnitService
	ModelMng  admin.ModelManagement
	AppMng    admin.ApplicationManagement
	LogMng    logs.LogService
}

func NewJujuBindingClient(client *JujuClient, conn *Connection) *JujuBindingClient {
	runner := conn.Runner()
	juju := conn.Juju()
	version := conn.Version()
	snapped := client.config.Snapped

	return &JujuBindingClient{
		client:    client,
		conn:      conn,
		StatusMng: status.NewStatusServiceClient(runner, juju, snapped),
		UnitMng:   unit.NewUnitServiceClient(runner, juju, client.config.Out, snapped),
		ModelMng:  admin.NewModelManagementClient(runner, juju, version),
		AppMng:    admin.NewApplicationManagementClient(runner, juju, version),
		LogMng:    logs.NewLogServiceClient(runner, juju),
	}
}

func (c *JujuBindingClient) Runner() cli.Runner {
	return c.conn.Runner()
}

func (c *JujuBindingClient) Juju() cli.Juju {
	return c.conn.Juju()
}

func (c *JujuBindingClient) Model() string {
	return c.conn.Juju().Model
}

func (c *JujuBindingClient) Version() types.JujuVersion {
	return c.conn.Version()
}

func (c *JujuBindingClient) Snapped() bool {
	return c.client.config.Snapped
}

func (c *JujuBindingClient) Ping(ctx context.Context) error {
	_, err := detectVersion(ctx, c.conn.Runner(), c.conn.Juju(), c.Snapped())
	return err
}

// ExecHelper is the in-unit command runner: juju-exec since juju 3.0, juju-run before.
func (c *JujuBindingClient) ExecHelper() string {
	if c.Version().Major() >= 3 {
		return "juju-exec"
	}
	return "juju-run"
}

// ValidateAgentVersion fails when the controller runs a different major.minor than the client.
func (c *JujuBindingClient) ValidateAgentVersion(ctx context.Context) error {
	agent, err := c.ModelMng.AgentVersion(ctx)
	if err != nil {
		return err
	}

	client := c.Version()
	if agent.Major() != client.Major() || minor(agent) != minor(client) {
		return &model.AgentVersionMismatchError{
			ClientVersion: client.String(),
			AgentVersion:  agent.String(),
		}
	}
	return nil
}

func minor(v types.JujuVersion) int {
	if len(v.Parts) < 2 {
		return 0
	}
	return v.Parts[1]
}
