package printenv

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/canonical/jhack/internal/render"
	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/service/admin"
)

const (
	NotInstalled = "Not Installed."
	Title        = "juju info v0.1"
	osRelease    = "/etc/os-release"
)

type Env struct {
	Jhack      string            `json:"jhack"`
	Snapped    bool              `json:"snapped"`
	Juju       string            `json:"juju"`
	Agent      string            `json:"agent"`
	JujuSnaps  map[string]string `json:"juju-* snaps"`
	MicroK8s   string            `json:"microk8s"`
	LXD        string            `json:"lxd"`
	Multipass  string            `json:"multipass"`
	Multipassd string            `json:"multipassd"`
	OS         string            `json:"os"`
	Kernel     string            `json:"kernel"`
}

type Gatherer struct {
	runner    cli.Runner
	juju      cli.Juju
	models    admin.ModelManagement
	version   string
	snapped   bool
	osRelease string
}

func NewGatherer(runner cli.Runner, juju cli.Juju, models admin.ModelManagement, version string, snapped bool) *Gatherer {
	return &Gatherer{
		runner:    runner,
		juju:      juju,
		models:    models,
		version:   version,
		snapped:   snapped,
		osRelease: osRelease,
	}
}

func (g *Gatherer) WithOSRelease(path string) *Gatherer {
	g.osRelease = path
	return g
}

// output runs cmd and returns its trimmed stdout, or "" if it failed to run.
func (g *Gatherer) output(ctx context.Context, cmd cli.Command) string {
	out, err := g.runner.Output(ctx, cmd)
	if err != nil {
		log.Info().Err(err).Msgf("%s unavailable", cmd)
		return ""
	}
	return strings.TrimSpace(string(out))
}

func orNotInstalled(s string) string {
	if s == "" {
		return NotInstalled
	}
	return s
}

func (g *Gatherer) Gather(ctx context.Context) *Env {
	if g.snapped {
		log.Warn().Msg("you are using the snapped version of jhack. " +
			"The version information you see below matches what is available to the snap! " +
			"To see your *local* version information, you'll have to run jhack from sources.")
	}

	env := &Env{
		Jhack:     g.version,
		Snapped:   g.snapped,
		Juju:      orNotInstalled(g.output(ctx, g.juju.Global("version"))),
		JujuSnaps: parseSnapList(g.output(ctx, cli.Command{Name: "snap", Args: []string{"list"}})),
		MicroK8s:  orNotInstalled(g.output(ctx, cli.Command{Name: "microk8s", Args: []string{"version"}})),
		LXD:       orNotInstalled(g.output(ctx, cli.Command{Name: "lxd", Args: []string{"--version"}})),
		Kernel:    orNotInstalled(g.output(ctx, cli.Command{Name: "uname", Args: []string{"-srp"}})),
		OS:        g.prettyName(),
	}

	env.Agent = "unavailable"
	if agent, err := g.models.AgentVersion(ctx); err == nil {
		env.Agent = agent.String()
	} else {
		log.Info().Err(err).Msg("could not determine the controller agent version")
	}

	env.Multipass, env.Multipassd = NotInstalled, NotInstalled
	if raw := g.output(ctx, cli.Command{Name: "multipass", Args: []string{"version", "--format", "json"}}); raw != "" {
		mp := map[string]string{}
		if err := json.Unmarshal([]byte(raw), &mp); err != nil {
			log.Warn().Err(err).Msg("failed to parse multipass version")
		}
		env.Multipass = orNotInstalled(mp["multipass"])
		env.Multipassd = orNotInstalled(mp["multipassd"])
	}
	return env
}

// parseSnapList keeps the juju* rows of `snap list`.
func parseSnapList(raw string) map[string]string {
	snaps := map[string]string{}
	for _, line := range strings.Split(raw, "\n") {
		if !strings.HasPrefix(line, "juju") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		snaps[fields[0]] = fmt.Sprintf("%s - %s (%s)", fields[1], fields[2], fields[3])
	}
	return snaps
}

func (g *Gatherer) prettyName() string {
	f, err := os.Open(g.osRelease)
	if err != nil {
		log.Info().Err(err).Msgf("cannot read %s", g.osRelease)
		return "unknown"
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if ok && key == "PRETTY_NAME" {
			return strings.Trim(value, `"'`)
		}
	}
	return "unknown"
}

func (e *Env) rows() [][]string {
	snapNames := make([]string, 0, len(e.JujuSnaps))
	for name := range e.JujuSnaps {
		snapNames = append(snapNames, name)
	}
	sort.Strings(snapNames)
	snaps := make([]string, len(snapNames))
	for i, name := range snapNames {
		snaps[i] = name + ": " + e.JujuSnaps[name]
	}
	if len(snaps) == 0 {
		snaps = []string{NotInstalled}
	}

	return [][]string{
		{"jhack", e.Jhack},
		{"snapped", fmt.Sprint(e.Snapped)},
		{"juju", e.Juju},
		{"agent", e.Agent},
		{"juju-* snaps", strings.Join(snaps, "\n")},
		{"microk8s", e.MicroK8s},
		{"lxd", e.LXD},
		{"multipass", e.Multipass},
		{"multipassd", e.Multipassd},
		{"os", e.OS},
		{"kernel", e.Kernel},
	}
}

// Print writes the environment as a table, or as indented JSON when format is "json".
func Print(r *render.Renderer, e *Env, format string) error {
	switch format {
	case "json":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(e); err != nil {
			return err
		}
		_, err := r.Writer().Write(buf.Bytes())
		return err
	case "", "auto", "table":
		r.Println(r.Titled(Title, r.Table([]string{"", ""}, e.rows())))
		return nil
	default:
		return fmt.Errorf("invalid format %q; expected json or table", format)
	}
}
