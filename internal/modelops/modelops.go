// Package modelops removes, recycles and clears juju models.
package modelops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/service/admin"
	"github.com/canonical/jhack/pkg/service/status"
)

type RemoveOptions struct {
	Force          bool
	NoWait         bool
	DestroyStorage bool
	// Restart re-creates each model after destroying it.
	Restart bool
	DryRun  bool
}

type Ops struct {
	models admin.ModelManagement
	apps   admin.ApplicationManagement
	status status.StatusService
	out    io.Writer
}

func NewOps(models admin.ModelManagement, apps admin.ApplicationManagement, statusSvc status.StatusService, out io.Writer) *Ops {
	return &Ops{models: models, apps: apps, status: statusSvc, out: out}
}

// ModelsToRemove expands a comma-separated list, or a single name globbed with `*`
// at its start or end. An empty expression means the current model.
func (o *Ops) ModelsToRemove(ctx context.Context, expr string) ([]string, error) {
	if expr == "" {
		current, err := o.models.CurrentModel(ctx)
		if err != nil {
			return nil, err
		}
		log.Info().Msgf("preparing to remove current model (%s)...", current)
		return []string{current}, nil
	}

	if !strings.Contains(expr, "*") {
		var names []string
		for _, name := range strings.Split(expr, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		return names, nil
	}

	var match func(s, affix string) bool
	switch {
	case strings.HasSuffix(expr, "*"):
		match = strings.HasPrefix
	case strings.HasPrefix(expr, "*"):
		match = strings.HasSuffix
	}
	core := strings.Trim(expr, "*")
	if match == nil || strings.Contains(core, "*") || strings.Contains(expr, ",") {
		return nil, fmt.Errorf("invalid globbing: %q; * only supported at the end or start of a pattern", expr)
	}

	resp, err := o.models.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, m := range resp.Models {
		name := m.ShortName
		if name == "" {
			name = m.Name
		}
		if match(name, core) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		log.Info().Msgf("globbed name %q yielded no matches", expr)
	}
	return names, nil
}

// Remove destroys the selected models concurrently.
func (o *Ops) Remove(ctx context.Context, expr string, opts *RemoveOptions) error {
	names, err := o.ModelsToRemove(ctx, expr)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(o.out, "Nothing to remove.")
		return nil
	}
	log.Info().Msgf("preparing to remove\n\t%s", strings.Join(names, "\n\t"))

	if opts.DryRun {
		for _, name := range names {
			fmt.Fprintf(o.out, "would destroy model %s\n", name)
			if opts.Restart {
				fmt.Fprintf(o.out, "would recreate a fresh model called %s\n", name)
			}
		}
		return nil
	}

	for _, name := range names {
		if opts.Restart {
			fmt.Fprintf(o.out, "shutting down :: %s ✞\n", name)
		} else {
			fmt.Fprintf(o.out, "nuking :: %s ⚛\n", name)
		}
	}

	errs := make([]error, len(names))
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			err := o.models.DestroyModel(ctx, &model.DestroyModelRequest{
				Name:           name,
				Force:          opts.Force,
				NoWait:         opts.NoWait,
				DestroyStorage: opts.DestroyStorage,
			})
			if err == nil && opts.Restart {
				err = o.models.AddModel(ctx, name)
			}
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	if opts.Restart {
		for i, name := range names {
			if errs[i] == nil {
				fmt.Fprintf(o.out, "cycling :: %s ♽\n", name)
			}
		}
	}
	log.Info().Msg("done.")
	return errors.Join(errs...)
}

// Clear removes every application in a model, leaving the model in place.
func (o *Ops) Clear(ctx context.Context, modelName string, dryRun bool) error {
	if modelName == "" {
		current, err := o.models.CurrentModel(ctx)
		if err != nil {
			return err
		}
		modelName = current
	}

	st, err := o.status.GetStatus(ctx, &model.GetStatusRequest{Model: modelName})
	if err != nil {
		return err
	}
	apps := make([]string, 0, len(st.Applications))
	for app := range st.Applications {
		apps = append(apps, app)
	}
	slices.Sort(apps)

	if len(apps) == 0 {
		fmt.Fprintf(o.out, "model %s is already empty.\n", modelName)
		return nil
	}
	if dryRun {
		for _, app := range apps {
			fmt.Fprintf(o.out, "would remove %s from %s\n", app, modelName)
		}
		return nil
	}

	inModel := o.apps.InModel(modelName)
	errs := make([]error, len(apps))
	var g errgroup.Group
	for i, app := range apps {
		g.Go(func() error {
			errs[i] = inModel.RemoveApplication(ctx, app, true, true)
			return nil
		})
	}
	_ = g.Wait()

	fmt.Fprintf(o.out, "cleared %s: removed %s\n", modelName, strings.Join(apps, ", "))
	return errors.Join(errs...)
}
