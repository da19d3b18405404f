package status

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/codec"
	"github.com/canonical/jhack/pkg/model"
)

type StatusService interface {
	GetStatus(ctx context.Context, req *model.GetStatusRequest) (*model.Status, error)
	GetRawStatus(ctx context.Context, req *model.GetStatusRequest) (string, error)
	GetRelations(ctx context.Context, req *model.GetStatusRequest) ([]model.RelationRow, error)
}

type statusService struct {
	runner  cli.Runner
	juju    cli.Juju
	codec   *codec.JujuCodec
	snapped bool
}

func NewStatusServiceClient(runner cli.Runner, juju cli.Juju, snapped bool) *statusService {
	return &statusService{
		runner:  runner,
		juju:    juju,
		codec:   codec.NewJujuCodec(),
		snapped: snapped,
	}
}

func (c *statusService) command(req *model.GetStatusRequest, extra ...string) cli.Command {
	args := []string{}
	if req.App != "" {
		args = append(args, req.App)
	}
	args = append(args, "--relations")
	args = append(args, extra...)
	return c.juju.InModel(req.Model).Command("status", args...)
}

func (c *statusService) run(ctx context.Context, req *model.GetStatusRequest, extra ...string) ([]byte, error) {
	if req == nil {
		req = &model.GetStatusRequest{}
	}
	cmd := c.command(req, extra...)
	out, err := c.runner.Output(ctx, cmd)
	if err == nil && len(strings.TrimSpace(string(out))) > 0 {
		return out, nil
	}

	log.Error().Msgf("%s produced no output.", cmd)
	if req.Model != "" {
		log.Error().Msgf("This usually means that the model %q you passed does not exist", req.Model)
	} else {
		log.Error().Msg("This usually means that the juju client isn't reachable")
	}
	if c.snapped {
		log.Warn().Msg("double-check that the jhack:dot-local-share-juju plug is connected to snapd.")
	}
	if err != nil {
		return nil, fmt.Errorf("unable to fetch juju status: %w", err)
	}
	return nil, fmt.Errorf("unable to fetch juju status: %q produced no output", cmd)
}

func (c *statusService) GetStatus(ctx context.Context, req *model.GetStatusRequest) (*model.Status, error) {
	out, err := c.run(ctx, req, "--format", "json")
	if err != nil {
		return nil, err
	}

	status := &model.Status{}
	if err := c.codec.Unmarshal(out, codec.FormatJSON, status); err != nil {
		return nil, fmt.Errorf("failed to parse juju status: %w", err)
	}
	if status.Applications == nil {
		status.Applications = map[string]model.ApplicationStatus{}
	}
	return status, nil
}

func (c *statusService) GetRawStatus(ctx context.Context, req *model.GetStatusRequest) (string, error) {
	out, err := c.run(ctx, req)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (c *statusService) GetRelations(ctx context.Context, req *model.GetStatusRequest) ([]model.RelationRow, error) {
	raw, err := c.GetRawStatus(ctx, req)
	if err != nil {
		return nil, err
	}
	return Relations(raw), nil
}

// IsK8s guesses the substrate from a status: no machines means k8s.
func IsK8s(status *model.Status) bool {
	if len(status.Applications) > 0 {
		return len(status.Machines) == 0
	}
	log.Warn().Msgf("unable to determine with certainty if the current model is a k8s model or not; "+
		"guessing it based on the cloud name (%s)", status.Model.Cloud)
	return strings.Contains(status.Model.Cloud, "k8s")
}
