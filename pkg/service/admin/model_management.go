package admin

import (
	"context"
	"fmt"

	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/codec"
	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/types"
)

type ModelManagement interface {
	ListModels(ctx context.Context) (*model.ModelsResponse, error)
	CurrentModel(ctx context.Context) (string, error)
	ShowModel(ctx context.Context, name string) (*model.ModelInfo, error)
	Substrate(ctx context.Context, name string) (model.Substrate, error)
	AgentVersion(ctx context.Context) (types.JujuVersion, error)
	DestroyModel(ctx context.Context, req *model.DestroyModelRequest) error
	AddModel(ctx context.Context, name string) error
	SetModelConfig(ctx context.Context, name, key, value string) error
}

type modelManagement struct {
	runner  cli.Runner
	juju    cli.Juju
	codec   *codec.JujuCodec
	version types.JujuVersion
}

func NewModelManagementClient(runner cli.Runner, juju cli.Juju, version types.JujuVersion) *modelManagement {
	return &modelManagement{
		runner:  runner,
		juju:    juju,
		codec:   codec.NewJujuCodec(),
		version: version,
	}
}

func (c *modelManagement) ListModels(ctx context.Context) (*model.ModelsResponse, error) {
	out, err := c.runner.Output(ctx, c.juju.Global("models", "--format", "json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	resp := &model.ModelsResponse{}
	if err := c.codec.Unmarshal(out, codec.FormatJSON, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *modelManagement) CurrentModel(ctx context.Context) (string, error) {
	if c.juju.Model != "" {
		return c.juju.Model, nil
	}
	resp, err := c.ListModels(ctx)
	if err != nil {
		return "", err
	}
	if resp.CurrentModel == "" {
		return "", fmt.Errorf("no current model set")
	}
	return resp.CurrentModel, nil
}

func (c *modelManagement) ShowModel(ctx context.Context, name string) (*model.ModelInfo, error) {
	args := []string{}
	if name != "" {
		args = append(args, name)
	}
	args = append(args, "--format", "json")
	out, err := c.runner.Output(ctx, c.juju.Global("show-model", args...))
	if err != nil {
		return nil, fmt.Errorf("failed to show model: %w", err)
	}

	var doc map[string]model.ModelInfo
	if err := c.codec.Unmarshal(out, codec.FormatJSON, &doc); err != nil {
		return nil, err
	}
	if info, ok := doc[name]; ok {
		return &info, nil
	}
	if len(doc) != 1 {
		return nil, fmt.Errorf("unexpected show-model output: %v", codec.SortedKeys(doc))
	}
	for _, info := range doc {
		return &info, nil
	}
	return nil, nil
}

func (c *modelManagement) Substrate(ctx context.Context, name string) (model.Substrate, error) {
	if name == "" {
		name = c.juju.Model
	}
	info, err := c.ShowModel(ctx, name)
	if err != nil {
		return "", err
	}
	switch info.Type {
	case "iaas":
		return model.SubstrateMachine, nil
	case "caas":
		return model.SubstrateK8s, nil
	default:
		return "", fmt.Errorf("unrecognized model type %q", info.Type)
	}
}

// AgentVersion returns the agent version of the current controller.
func (c *modelManagement) AgentVersion(ctx context.Context) (types.JujuVersion, error) {
	out, err := c.runner.Output(ctx, c.juju.Global("controllers", "--format", "json"))
	if err != nil {
		return types.JujuVersion{}, fmt.Errorf("failed to list controllers: %w", err)
	}
	resp := &model.ControllersResponse{}
	if err := c.codec.Unmarshal(out, codec.FormatJSON, resp); err != nil {
		return types.JujuVersion{}, err
	}
	ctrl, ok := resp.Controllers[resp.CurrentController]
	if !ok {
		return types.JujuVersion{}, fmt.Errorf("current controller %q not found", resp.CurrentController)
	}
	return types.ParseJujuVersion(ctrl.AgentVersion)
}

func (c *modelManagement) noPrompt() string {
	if c.version.Major() >= 3 {
		return "--no-prompt"
	}
	return "-y"
}

func (c *modelManagement) DestroyModel(ctx context.Context, req *model.DestroyModelRequest) error {
	args := []string{req.Name, c.noPrompt()}
	if req.Force {
		args = append(args, "--force")
	}
	if req.NoWait {
		args = append(args, "--no-wait")
	}
	if req.DestroyStorage {
		args = append(args, "--destroy-storage")
	}
	if _, err := c.runner.Output(ctx, c.juju.Global("destroy-model", args...)); err != nil {
		return fmt.Errorf("failed to destroy model %s: %w", req.Name, err)
	}
	return nil
}

func (c *modelManagement) AddModel(ctx context.Context, name string) error {
	if _, err := c.runner.Output(ctx, c.juju.Global("add-model", name)); err != nil {
		return fmt.Errorf("failed to add model %s: %w", name, err)
	}
	return nil
}

func (c *modelManagement) SetModelConfig(ctx context.Context, name, key, value string) error {
	cmd := c.juju.InModel(name).Command("model-config", fmt.Sprintf("%s=%s", key, value))
	if _, err := c.runner.Output(ctx, cmd); err != nil {
		return fmt.Errorf("failed to set %s on model: %w", key, err)
	}
	return nil
}
