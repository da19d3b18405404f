package nuke

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/canonical/jhack/internal/render"
	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/service/admin"
	"github.com/canonical/jhack/pkg/service/status"
	"github.com/canonical/jhack/pkg/types"
)

type Kind string

const (
	KindModel    Kind = "model"
	KindApp      Kind = "app"
	KindRelation Kind = "relation"
)

// Nukeable is something nuke can destroy.
type Nukeable struct {
	Kind Kind
	Name string
	// Model the app or relation lives in.
	Model string
	// Provider and Requirer are `app:endpoint` pairs; relations only.
	Provider string
	Requirer string
}

func (n Nukeable) String() string {
	switch n.Kind {
	case KindModel:
		return fmt.Sprintf("model %q", n.Name)
	case KindApp:
		return fmt.Sprintf("app %q (%s)", n.Name, n.Model)
	default:
		return fmt.Sprintf("relation %q --> %s", n.Provider, n.Requirer)
	}
}

// Nuke pairs a nukeable with the command that destroys it.
type Nuke struct {
	Target  Nukeable
	Command cli.Command
}

type Options struct {
	Model  string
	Borked bool
	// N, if positive, is the exact number of things expected to be nuked.
	N      int
	DryRun bool
}

type Nuker struct {
	runner  cli.Runner
	juju    cli.Juju
	version types.JujuVersion
	status  status.StatusService
	models  admin.ModelManagement
	r       *render.Renderer
	confirm func(question string) bool
}

func NewNuker(runner cli.Runner, juju cli.Juju, version types.JujuVersion, statusSvc status.StatusService,
	models admin.ModelManagement, r *render.Renderer) *Nuker {
	return &Nuker{runner: runner, juju: juju, version: version, status: statusSvc, models: models, r: r}
}

// WithConfirmation makes Run ask before firing.
func (n *Nuker) WithConfirmation(confirm func(question string) bool) *Nuker {
	n.confirm = confirm
	return n
}

// Run nukes whatever each pattern selects. No patterns means the current model.
func (n *Nuker) Run(ctx context.Context, patterns []string, opts *Options) error {
	if opts.N < 0 {
		return fmt.Errorf("nonsense: %d", opts.N)
	}
	if opts.N > 0 && len(patterns) > 1 {
		return fmt.Errorf("you cannot use `-n` with multiple targets")
	}
	if len(patterns) == 0 {
		return n.nuke(ctx, "", opts)
	}
	for _, p := range patterns {
		if err := n.nuke(ctx, p, opts); err != nil {
			return err
		}
	}
	return nil
}

// Gather collects the nukeables matching pattern.
func (n *Nuker) Gather(ctx context.Context, pattern string, opts *Options) ([]Nukeable, error) {
	if pattern == "" && !opts.Borked {
		current, err := n.models.CurrentModel(ctx)
		if err != nil {
			return nil, err
		}
		return []Nukeable{{Kind: KindModel, Name: current}}, nil
	}

	match, err := ParseGlob(pattern)
	if err != nil {
		return nil, err
	}

	modelName := opts.Model
	if modelName == "" {
		if modelName, err = n.models.CurrentModel(ctx); err != nil {
			return nil, err
		}
	}

	var out []Nukeable
	req := &model.GetStatusRequest{Model: modelName}
	st, err := n.status.GetStatus(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, app := range sortedKeys(st.Applications) {
		if opts.Borked && st.Applications[app].Status.Current == "active" {
			continue
		}
		if match(app) {
			out = append(out, Nukeable{Kind: KindApp, Name: app, Model: modelName})
		}
	}

	// borked mode targets apps; their relations go down with them
	var rows []model.RelationRow
	if !opts.Borked {
		if rows, err = n.status.GetRelations(ctx, req); err != nil {
			return nil, err
		}
	}
	for _, row := range rows {
		if match(row.Provider) || match(row.Requirer) {
			out = append(out, Nukeable{
				Kind:     KindRelation,
				Name:     row.Provider + " " + row.Requirer,
				Model:    modelName,
				Provider: row.Provider,
				Requirer: row.Requirer,
			})
		}
	}

	// with an explicit model we only nuke things inside it
	if opts.Model == "" && pattern != "" {
		resp, err := n.models.ListModels(ctx)
		if err != nil {
			return nil, err
		}
		for _, m := range resp.Models {
			name := shortName(m)
			if name == "controller" || m.IsController {
				continue
			}
			if match(name) {
				out = append(out, Nukeable{Kind: KindModel, Name: name})
			}
		}
	}
	return out, nil
}

func shortName(m model.ModelSummary) string {
	if m.ShortName != "" {
		return m.ShortName
	}
	_, name, ok := strings.Cut(m.Name, "/")
	if !ok {
		return m.Name
	}
	return name
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

var kindOrder = map[Kind]int{KindModel: 0, KindApp: 1, KindRelation: 2}

// Plan turns nukeables into commands. Apps in a nuked model and relations touching
// a nuked app are dropped, since they go down with it.
func (n *Nuker) Plan(nukeables []Nukeable) []Nuke {
	ordered := slices.Clone(nukeables)
	slices.SortStableFunc(ordered, func(a, b Nukeable) int {
		return kindOrder[a.Kind] - kindOrder[b.Kind]
	})

	nukedModels := map[string]bool{}
	nukedApps := map[string]bool{}
	var plan []Nuke
	for _, target := range ordered {
		switch target.Kind {
		case KindModel:
			nukedModels[target.Name] = true
			plan = append(plan, Nuke{Target: target, Command: n.destroyModel(target.Name)})
		case KindApp:
			nukedApps[target.Name] = true
			if nukedModels[target.Model] {
				log.Debug().Msgf("skipping %s: its model is being nuked", target)
				continue
			}
			plan = append(plan, Nuke{Target: target, Command: n.removeApplication(target.Model, target.Name)})
		case KindRelation:
			if nukedApps[types.EndpointApp(target.Provider)] || nukedApps[types.EndpointApp(target.Requirer)] ||
				nukedModels[target.Model] {
				log.Debug().Msgf("skipping %s: an app it joins is being nuked", target)
				continue
			}
			plan = append(plan, Nuke{
				Target:  target,
				Command: n.juju.InModel(target.Model).Command("remove-relation", target.Provider, target.Requirer),
			})
		}
	}
	return plan
}

func (n *Nuker) removeApplication(modelName, app string) cli.Command {
	args := []string{app}
	if n.version.AtLeast(3, 1) {
		args = append(args, "--no-prompt")
	}
	args = append(args, "--force", "--no-wait")
	return n.juju.InModel(modelName).Command("remove-application", args...)
}

func (n *Nuker) destroyModel(name string) cli.Command {
	noPrompt := "-y"
	if n.version.Major() >= 3 {
		noPrompt = "--no-prompt"
	}
	return n.juju.Global("destroy-model", name, "--force", "--no-wait", "--destroy-storage", noPrompt)
}

// Tree renders a plan grouped by kind.
func Tree(r *render.Renderer, plan []Nuke) string {
	groups := map[Kind][]string{}
	for _, nk := range plan {
		groups[nk.Target.Kind] = append(groups[nk.Target.Kind], nk.Target.Name)
	}
	var branches []render.Branch
	for _, kind := range []Kind{KindModel, KindApp, KindRelation} {
		if len(groups[kind]) > 0 {
			branches = append(branches, render.Branch{Name: string(kind) + "s", Leaves: groups[kind]})
		}
	}
	return r.Tree("⚛ nuke plan", branches)
}

func (n *Nuker) nuke(ctx context.Context, pattern string, opts *Options) error {
	nukeables, err := n.Gather(ctx, pattern, opts)
	if err != nil {
		return err
	}
	plan := n.Plan(nukeables)
	out := n.r.Writer()

	if opts.N > 0 && opts.N != len(plan) {
		log.Debug().Msgf("unexpected number of nukeables; expected %d, got %d", opts.N, len(plan))
		for _, nk := range plan {
			fmt.Fprintf(out, "would ⚛ %s\n", nk.Target)
		}
		word := "more"
		if opts.N > len(plan) {
			word = "less"
		}
		fmt.Fprintf(out, "\nThat is %s than what you expected. Aborting...\n", word)
		return model.ErrAborted
	}

	if len(plan) == 0 {
		fmt.Fprintln(out, "Nothing to ⚛.")
		return nil
	}

	if opts.DryRun {
		for _, nk := range plan {
			fmt.Fprintf(out, "would ⚛ %s\n", nk.Target)
		}
		return nil
	}

	if n.confirm != nil {
		n.r.Println(Tree(n.r, plan))
		if !n.confirm(fmt.Sprintf("about to ⚛ %d things. Proceed?", len(plan))) {
			return model.ErrAborted
		}
	}

	return n.fire(ctx, plan)
}

func (n *Nuker) fire(ctx context.Context, plan []Nuke) error {
	out := n.r.Writer()
	for _, nk := range plan {
		fmt.Fprintf(out, "nuking ⚛ %s ⚛\n", nk.Target)
	}

	errs := make([]error, len(plan))
	var g errgroup.Group
	for i, nk := range plan {
		g.Go(func() error {
			log.Debug().Msgf("nuking %s with %s", nk.Target, nk.Command)
			if _, err := n.runner.Output(ctx, nk.Command); err != nil {
				errs[i] = fmt.Errorf("something went wrong nuking %s: %w", nk.Target.Name, err)
				return nil
			}
			log.Debug().Msg("hit and sunk")
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			fmt.Fprintln(out, err)
		}
	}
	fmt.Fprintln(out, "✞ RIP ✞")
	return errors.Join(errs...)
}
