package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Target is a single juju unit.
type Target struct {
	App       string
	Unit      int
	Leader    bool
	MachineID string
}

// ParseTarget parses `app/N`; a trailing `*` marks the leader, as juju status prints it.
func ParseTarget(name string) (Target, error) {
	app, unit, ok := strings.Cut(name, "/")
	if !ok || app == "" {
		return Target{}, fmt.Errorf("invalid target name: expected `<app_name>/<unit_id>`; got %q", name)
	}
	leader := strings.HasSuffix(unit, "*")
	id, err := strconv.Atoi(strings.TrimSuffix(unit, "*"))
	if err != nil {
		return Target{}, fmt.Errorf("invalid unit id in %q: %w", name, err)
	}
	return Target{App: app, Unit: id, Leader: leader}, nil
}

func (t Target) UnitName() string {
	return fmt.Sprintf("%s/%d", t.App, t.Unit)
}

// Tag is the agent tag of the unit, e.g. unit-traefik-k8s-0.
func (t Target) Tag() string {
	return fmt.Sprintf("unit-%s-%d", t.App, t.Unit)
}

func (t Target) CharmRootPath() string {
	return CharmRoot(t.UnitName())
}

func (t Target) String() string {
	if t.Leader {
		return t.UnitName() + "*"
	}
	return t.UnitName()
}

// CharmRoot returns the charm directory of a unit on its host.
func CharmRoot(unit string) string {
	return fmt.Sprintf("/var/lib/juju/agents/unit-%s/charm", strings.ReplaceAll(unit, "/", "-"))
}

// UnitFromTag turns `unit-foo-bar-0` into `foo-bar/0`.
func UnitFromTag(tag string) (string, bool) {
	name, ok := strings.CutPrefix(tag, "unit-")
	if !ok {
		return "", false
	}
	idx := strings.LastIndex(name, "-")
	if idx <= 0 || idx == len(name)-1 {
		return "", false
	}
	if _, err := strconv.Atoi(name[idx+1:]); err != nil {
		return "", false
	}
	return name[:idx] + "/" + name[idx+1:], true
}

// AppName strips the unit suffix from a unit name, if any.
func AppName(name string) string {
	app, _, _ := strings.Cut(name, "/")
	return app
}

// EndpointApp returns the app of an `app[/unit]:endpoint` reference.
func EndpointApp(ref string) string {
	app, _, _ := strings.Cut(ref, ":")
	return AppName(app)
}
