package admin

import (
	"context"
	"fmt"

	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/codec"
	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/types"
)

type ApplicationManagement interface {
	ShowApplication(ctx context.Context, name string) (*model.ApplicationInfo, error)
	RemoveApplication(ctx context.Context, name string, force, noWait bool) error
	RemoveRelation(ctx context.Context, a, b string) error
	// InModel returns a copy that targets the given model.
	InModel(name string) ApplicationManagement
}

type applicationManagement struct {
	runner  cli.Runner
	juju    cli.Juju
	codec   *codec.JujuCodec
	version types.JujuVersion
}

func NewApplicationManagementClient(runner cli.Runner, juju cli.Juju, version types.JujuVersion) *applicationManagement {
	return &applicationManagement{
		runner:  runner,
		juju:    juju,
		codec:   codec.NewJujuCodec(),
		version: version,
	}
}

func (c *applicationManagement) InModel(name string) ApplicationManagement {
	cp := *c
	cp.juju = c.juju.InModel(name)
	return &cp
}

func (c *applicationManagement) ShowApplication(ctx context.Context, name string) (*model.ApplicationInfo, error) {
	out, err := c.runner.Output(ctx, c.juju.Command("show-application", name, "--format", "json"))
	if err != nil {
		return nil, fmt.Errorf("failed to show application %s: %w", name, err)
	}
	return codec.UnmarshalKeyed[model.ApplicationInfo](c.codec, out, codec.FormatJSON, name)
}

func (c *applicationManagement) RemoveApplication(ctx context.Context, name string, force, noWait bool) error {
	args := []string{name}
	if c.version.AtLeast(3, 1) {
		args = append(args, "--no-prompt")
	}
	if force {
		args = append(args, "--force")
	}
	if noWait {
		args = append(args, "--no-wait")
	}
	if _, err := c.runner.Output(ctx, c.juju.Command("remove-application", args...)); err != nil {
		return fmt.Errorf("failed to remove application %s: %w", name, err)
	}
	return nil
}

func (c *applicationManagement) RemoveRelation(ctx context.Context, a, b string) error {
	if _, err := c.runner.Output(ctx, c.juju.Command("remove-relation", a, b)); err != nil {
		return fmt.Errorf("failed to remove relation %s %s: %w", a, b, err)
	}
	return nil
}
