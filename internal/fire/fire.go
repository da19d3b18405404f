package fire

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/canonical/jhack/internal/render"
	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/service/admin"
	"github.com/canonical/jhack/pkg/service/unit"
	"github.com/canonical/jhack/pkg/types"
)

// Firer runs a unit's dispatch script under a synthetic hook environment.
type Firer struct {
	models admin.ModelManagement
	units  unit.UnitService
	r      *render.Renderer
}

func NewFirer(models admin.ModelManagement, units unit.UnitService, r *render.Renderer) *Firer {
	return &Firer{models: models, units: units, r: r}
}

// BuildEnv fills the hook environment for event on target from `juju models`.
func (f *Firer) BuildEnv(ctx context.Context, event string, target types.Target, modelName string) (*HookEnv, error) {
	resp, err := f.models.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = resp.CurrentModel
	}

	var found *model.ModelSummary
	for i, m := range resp.Models {
		if m.ShortName == modelName || m.Name == modelName {
			found = &resp.Models[i]
			break
		}
	}
	if found == nil {
		return nil, &model.NotFoundError{Kind: "model", Name: modelName}
	}

	return &HookEnv{
		App:         target.App,
		UnitID:      target.Unit,
		ModelName:   modelName,
		ModelUUID:   found.UUID,
		Cloud:       found.Cloud,
		JujuVersion: found.AgentVersion,
		Event:       event,
	}, nil
}

// Fire dispatches event on target and prints the outcome.
func (f *Firer) Fire(ctx context.Context, event, targetName, modelName string) error {
	target, err := types.ParseTarget(targetName)
	if err != nil {
		return err
	}
	env, err := f.BuildEnv(ctx, event, target, modelName)
	if err != nil {
		return err
	}
	assignments, err := env.Assignments()
	if err != nil {
		return err
	}

	command := append(assignments, target.CharmRootPath()+"/dispatch")
	log.Debug().Msgf("firing %s on %s", event, target.UnitName())
	stdout, err := f.units.Exec(ctx, target.UnitName(), command...)

	if err != nil {
		f.r.Println(f.r.Error.Render("completed with errors"))
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			f.r.Println(exitErr.Stderr)
		} else {
			f.r.Println(err.Error())
		}
	} else {
		f.r.Println(f.r.OK.Render("completed without errors"))
	}

	if strings.TrimSpace(stdout) != "" {
		f.r.Println(f.r.Title.Render("standard output follows:"))
		f.r.Println(stdout)
	}
	return nil
}
