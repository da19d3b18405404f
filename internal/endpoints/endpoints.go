package endpoints

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/canonical/jhack/internal/render"
	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/service/status"
	"github.com/canonical/jhack/pkg/service/unit"
	"github.com/canonical/jhack/pkg/types"
)

const (
	RoleRequires = "requires"
	RoleProvides = "provides"
	RolePeers    = "peers"

	Title = "endpoints v0.1"
)

// Binding is an endpoint together with the apps currently related to it.
type Binding struct {
	Endpoint    string
	Interface   string
	Description string
	Remotes     []string
}

type AppEndpoints struct {
	App      string
	Unit     string
	Requires []Binding
	Provides []Binding
	Peers    []Binding
}

type Options struct {
	Model            string
	ShowVersions     bool
	ShowDescriptions bool
}

type Lister struct {
	status status.StatusService
	units  unit.UnitService
	r      *render.Renderer
}

func NewLister(statusSvc status.StatusService, units unit.UnitService, r *render.Renderer) *Lister {
	return &Lister{status: statusSvc, units: units, r: r}
}

// Metadata reads the charm metadata from a unit: metadata.yaml, or charmcraft.yaml
// for charms that no longer ship one.
func (l *Lister) Metadata(ctx context.Context, unitName string) (*Metadata, error) {
	raw, err := l.units.FetchFile(ctx, &model.RemoteFile{Unit: unitName, Path: "metadata.yaml"}, "")
	var notFound *model.NotFoundError
	if errors.As(err, &notFound) {
		log.Debug().Msgf("no metadata.yaml on %s; trying charmcraft.yaml", unitName)
		raw, err = l.units.FetchFile(ctx, &model.RemoteFile{Unit: unitName, Path: "charmcraft.yaml"}, "")
	}
	if err != nil {
		return nil, err
	}
	return ParseMetadata([]byte(raw))
}

// Gather collects the declared endpoints of app and what they are bound to.
func (l *Lister) Gather(ctx context.Context, app, modelName string) (*AppEndpoints, error) {
	if strings.Contains(app, "/") {
		log.Warn().Msgf("list-endpoints only works on applications. Pass an app name instead of %s.", app)
		app = types.AppName(app)
	}

	st, err := l.status.GetStatus(ctx, &model.GetStatusRequest{Model: modelName})
	if err != nil {
		return nil, err
	}
	appStatus, ok := st.Applications[app]
	if !ok {
		return nil, &model.NotFoundError{Kind: "application", Name: app, Model: modelName}
	}
	units, err := status.Units(st, app, nil)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("app %s has no units to read its metadata from", app)
	}
	unitName := units[0].UnitName()

	meta, err := l.Metadata(ctx, unitName)
	if err != nil {
		return nil, err
	}

	bindings := func(role string) []Binding {
		specs := meta.Role(role)
		var out []Binding
		for _, name := range sortedNames(specs) {
			spec := specs[name]
			out = append(out, Binding{
				Endpoint:    name,
				Interface:   spec.Interface,
				Description: spec.Description,
				Remotes:     appStatus.Relations[name].Names(),
			})
		}
		return out
	}
	return &AppEndpoints{
		App:      app,
		Unit:     unitName,
		Requires: bindings(RoleRequires),
		Provides: bindings(RoleProvides),
		Peers:    bindings(RolePeers),
	}, nil
}

// Libs lists the charm libraries vendored in the unit's charm.
func (l *Lister) Libs(ctx context.Context, unitName string) ([]LibInfo, error) {
	out, err := l.units.SSH(ctx, &model.SSHRequest{
		Unit: unitName,
		Args: []string{"find", types.CharmRoot(unitName) + "/lib", "-type", "f", "-iname", "'*.py'",
			"-exec", "grep", "LIBPATCH", "{}", "+"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list charm libs on %s: %w", unitName, err)
	}
	return ParseLibInfo(out), nil
}

// Render builds the endpoints table. libs is nil unless versions are shown.
func (l *Lister) Render(e *AppEndpoints, libs []LibInfo, showVersions, showDescriptions bool) string {
	ifaceHeader := "interface"
	if showVersions {
		ifaceHeader = "owner:interface"
	}
	headers := []string{"role", "endpoint", ifaceHeader}
	if showVersions {
		headers = append(headers, "version")
	}
	headers = append(headers, "bound to")
	if showDescriptions {
		headers = append(headers, "description")
	}

	description := func(b Binding) string {
		if b.Description == "" {
			return "<none given>"
		}
		return strings.TrimSpace(b.Description)
	}

	var rows [][]string
	for _, role := range []struct {
		name     string
		bindings []Binding
	}{{RoleRequires, e.Requires}, {RoleProvides, e.Provides}} {
		for i, b := range role.bindings {
			label := ""
			if i == 0 {
				label = role.name
			}
			iface := b.Interface
			if showVersions {
				owner := "<unknown owner>"
				if impls := Implementations(libs, b.Interface); len(impls) == 1 {
					owner = impls[0].Owner
				}
				iface = owner + ":" + b.Interface
			}
			row := []string{label, b.Endpoint, iface}
			if showVersions {
				row = append(row, SupportedVersions(Implementations(libs, b.Interface)))
			}
			remotes := "-"
			if len(b.Remotes) > 0 {
				remotes = strings.Join(b.Remotes, ", ")
			}
			row = append(row, remotes)
			if showDescriptions {
				row = append(row, description(b))
			}
			rows = append(rows, row)
		}
	}

	for i, b := range e.Peers {
		label := ""
		if i == 0 {
			label = RolePeers
		}
		row := []string{label, b.Endpoint, b.Interface}
		if showVersions {
			row = append(row, "n/a")
		}
		row = append(row, "<itself>")
		if showDescriptions {
			row = append(row, description(b))
		}
		rows = append(rows, row)
	}

	return l.r.Titled(Title, l.r.Table(headers, rows))
}

// List prints the endpoints table for app.
func (l *Lister) List(ctx context.Context, app string, opts *Options) error {
	e, err := l.Gather(ctx, app, opts.Model)
	if err != nil {
		return err
	}
	var libs []LibInfo
	if opts.ShowVersions {
		if libs, err = l.Libs(ctx, e.Unit); err != nil {
			return err
		}
	}
	l.r.Println(l.Render(e, libs, opts.ShowVersions, opts.ShowDescriptions))
	return nil
}
