package lobotomy

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/canonical/jhack/internal/render"
	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/service/status"
	"github.com/canonical/jhack/pkg/service/unit"
	"github.com/canonical/jhack/pkg/types"
)

//go:embed dispatch.sh
var lobotomizedDispatch string

type Options struct {
	Targets []string
	// All overrules Targets and selects every unit in the model.
	All    bool
	Undo   bool
	Plan   bool
	DryRun bool
	Model  string
}

type Lobotomist struct {
	status status.StatusService
	units  unit.UnitService
	r      *render.Renderer
}

func NewLobotomist(statusSvc status.StatusService, units unit.UnitService, r *render.Renderer) *Lobotomist {
	return &Lobotomist{status: statusSvc, units: units, r: r}
}

func (l *Lobotomist) targets(st *model.Status, opts *Options) ([]types.Target, error) {
	if opts.All {
		if len(opts.Targets) > 0 {
			log.Warn().Msgf("`all` flag overrules provided targets %v.", opts.Targets)
		}
		return status.AllUnits(st), nil
	}

	var out []types.Target
	for _, name := range opts.Targets {
		if t, err := types.ParseTarget(name); err == nil {
			out = append(out, t)
			continue
		}
		units, err := status.Units(st, name, nil)
		if err != nil {
			log.Error().Msgf("invalid target %q: not an unit, nor an application in model %q", name, st.Model.Name)
			continue
		}
		out = append(out, units...)
	}
	return out, nil
}

// Run lobotomizes, restores or reports on the selected units.
func (l *Lobotomist) Run(ctx context.Context, opts *Options) error {
	st, err := l.status.GetStatus(ctx, &model.GetStatusRequest{Model: opts.Model})
	if err != nil {
		return err
	}
	targets, err := l.targets(st, opts)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no targets provided; nothing to do")
	}
	log.Debug().Msgf("gathered targets %v", targets)

	if opts.Plan {
		return l.printPlan(ctx, targets)
	}

	substrate, container := model.SubstrateMachine, ""
	if status.IsK8s(st) {
		substrate, container = model.SubstrateK8s, "charm"
	}
	for _, t := range targets {
		log.Info().Msgf("lobotomizing %s...", t.UnitName())
		if err := l.lobotomize(ctx, t, substrate, container, opts); err != nil {
			return err
		}
	}
	return nil
}

// Active reports whether the unit runs the lobotomized dispatch, which is the case
// while dispatch.ori exists.
func (l *Lobotomist) Active(ctx context.Context, t types.Target) bool {
	_, err := l.units.SSH(ctx, &model.SSHRequest{Unit: t.UnitName(), Args: []string{"ls", t.CharmRootPath() + "/dispatch.ori"}})
	return err == nil
}

func (l *Lobotomist) printPlan(ctx context.Context, targets []types.Target) error {
	rows := make([][]string, 0, len(targets))
	for _, t := range targets {
		state := l.r.OK.Render("inactive")
		if l.Active(ctx, t) {
			state = l.r.Error.Render("active")
		}
		rows = append(rows, []string{t.UnitName(), state})
	}
	l.r.Println(l.r.Titled("lobotomy plan", l.r.Table([]string{"unit", "lobotomy"}, rows)))
	return nil
}

func (l *Lobotomist) lobotomize(ctx context.Context, t types.Target, substrate model.Substrate, container string, opts *Options) error {
	dispatch := t.CharmRootPath() + "/dispatch"
	from, to := dispatch, dispatch+".ori"
	if opts.Undo {
		from, to = to, from
	}

	out := l.r.Writer()
	active := l.Active(ctx, t)
	if !opts.Undo && active {
		// moving again would overwrite dispatch.ori with the no-op dispatch
		fmt.Fprintf(out, "%s: already lobotomized\n", t.UnitName())
		return nil
	}
	if opts.Undo && !active {
		fmt.Fprintf(out, "%s: nothing to undo\n", t.UnitName())
		return nil
	}

	if opts.DryRun {
		fmt.Fprintf(out, "would run:\n\tjuju ssh %s mv %s %s\n", t.UnitName(), from, to)
	} else if _, err := l.units.SSH(ctx, &model.SSHRequest{Unit: t.UnitName(), Args: []string{"mv", from, to}}); err != nil {
		log.Error().Err(err).Msgf("failed to move %s to %s on %s", from, to, t.UnitName())
	}

	if opts.Undo {
		fmt.Fprintf(out, "%s: lobotomy reversed\n", t.UnitName())
		return nil
	}

	err := l.units.PushString(ctx, lobotomizedDispatch, &model.PushRequest{
		Unit:       t.UnitName(),
		RemotePath: dispatch,
		FullPath:   true,
		Container:  container,
		Substrate:  substrate,
		DryRun:     opts.DryRun,
	})
	if err != nil {
		return err
	}
	if opts.DryRun {
		fmt.Fprintf(out, "\tjuju ssh %s chmod +x %s\n", t.UnitName(), dispatch)
	} else if _, err := l.units.SSH(ctx, &model.SSHRequest{Unit: t.UnitName(), Args: []string{"chmod", "+x", dispatch}}); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: lobotomy applied\n", t.UnitName())
	return nil
}
