package lobotomy

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/jhack/internal/render"
	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/service/status"
	"github.com/canonical/jhack/pkg/service/unit"
	"github.com/canonical/jhack/pkg/testutil"
)

func newLobotomist(t *testing.T) (*Lobotomist, *testutil.FakeRunner, *bytes.Buffer) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	runner := testutil.NewFakeRunner()
	runner.On("juju status --relations --format json").ReturnFixture(t, "status_k8s.json")
	runner.On("juju ssh").Return("")
	runner.On("juju scp").Return("")
	juju := cli.NewJuju("juju", "")
	out := &bytes.Buffer{}
	l := NewLobotomist(
		status.NewStatusServiceClient(runner, juju, false),
		unit.NewUnitServiceClient(runner, juju, out, false),
		render.Plain(out),
	)
	return l, runner, out
}

func TestLobotomize(t *testing.T) {
	l, runner, out := newLobotomist(t)
	runner.On("juju ssh traefik/0 ls").Fail(2, "ls: cannot access 'dispatch.ori': No such file or directory")

	require.NoError(t, l.Run(context.Background(), &Options{Targets: []string{"traefik/0"}}))
	calls := runner.CallStrings()
	require.Len(t, calls, 5)
	assert.Equal(t, "juju ssh traefik/0 ls /var/lib/juju/agents/unit-traefik-0/charm/dispatch.ori", calls[1])
	assert.Equal(t, "juju ssh traefik/0 mv /var/lib/juju/agents/unit-traefik-0/charm/dispatch /var/lib/juju/agents/unit-traefik-0/charm/dispatch.ori", calls[2])
	assert.Regexp(t, `^juju scp --container charm .*\.jhack-push-\S+ traefik/0:/var/lib/juju/agents/unit-traefik-0/charm/dispatch$`, calls[3])
	assert.Equal(t, "juju ssh traefik/0 chmod +x /var/lib/juju/agents/unit-traefik-0/charm/dispatch", calls[4])
	assert.Equal(t, "traefik/0: lobotomy applied\n", out.String())
	assert.Contains(t, lobotomizedDispatch, "#!/bin/sh")
}

func TestUndo(t *testing.T) {
	l, runner, out := newLobotomist(t)

	require.NoError(t, l.Run(context.Background(), &Options{Targets: []string{"prometheus"}, Undo: true}))
	assert.Equal(t, []string{
		"juju status --relations --format json",
		"juju ssh prometheus/0 ls /var/lib/juju/agents/unit-prometheus-0/charm/dispatch.ori",
		"juju ssh prometheus/0 mv /var/lib/juju/agents/unit-prometheus-0/charm/dispatch.ori /var/lib/juju/agents/unit-prometheus-0/charm/dispatch",
		"juju ssh prometheus/1 ls /var/lib/juju/agents/unit-prometheus-1/charm/dispatch.ori",
		"juju ssh prometheus/1 mv /var/lib/juju/agents/unit-prometheus-1/charm/dispatch.ori /var/lib/juju/agents/unit-prometheus-1/charm/dispatch",
	}, runner.CallStrings())
	assert.Equal(t, "prometheus/0: lobotomy reversed\nprometheus/1: lobotomy reversed\n", out.String())
}

func TestDryRun(t *testing.T) {
	l, runner, out := newLobotomist(t)
	runner.On("juju ssh traefik/0 ls").Fail(2, "ls: cannot access 'dispatch.ori': No such file or directory")

	require.NoError(t, l.Run(context.Background(), &Options{Targets: []string{"traefik/0"}, DryRun: true}))
	assert.Equal(t, []string{
		"juju status --relations --format json",
		"juju ssh traefik/0 ls /var/lib/juju/agents/unit-traefik-0/charm/dispatch.ori",
	}, runner.CallStrings())
	assert.Contains(t, out.String(), "would run:\n\tjuju ssh traefik/0 mv /var/lib/juju/agents/unit-traefik-0/charm/dispatch ")
	assert.Contains(t, out.String(), "would run juju scp --container charm ")
	assert.Contains(t, out.String(), "traefik/0: lobotomy applied")
}

func TestLobotomizeTwiceKeepsOriginalDispatch(t *testing.T) {
	l, runner, out := newLobotomist(t)

	require.NoError(t, l.Run(context.Background(), &Options{Targets: []string{"traefik/0"}}))
	assert.Equal(t, []string{
		"juju status --relations --format json",
		"juju ssh traefik/0 ls /var/lib/juju/agents/unit-traefik-0/charm/dispatch.ori",
	}, runner.CallStrings())
	assert.False(t, runner.Called("juju scp"))
	assert.Equal(t, "traefik/0: already lobotomized\n", out.String())
}

func TestUndoWithoutLobotomy(t *testing.T) {
	l, runner, out := newLobotomist(t)
	runner.On("juju ssh traefik/0 ls").Fail(2, "ls: cannot access 'dispatch.ori': No such file or directory")

	require.NoError(t, l.Run(context.Background(), &Options{Targets: []string{"traefik/0"}, Undo: true}))
	assert.False(t, runner.Called("juju ssh traefik/0 mv"))
	assert.Equal(t, "traefik/0: nothing to undo\n", out.String())
}

func TestPlan(t *testing.T) {
	l, runner, out := newLobotomist(t)
	runner.On("juju ssh prometheus/1 ls").Fail(2, "ls: cannot access 'dispatch.ori': No such file or directory")

	require.NoError(t, l.Run(context.Background(), &Options{All: true, Plan: true}))
	assert.Contains(t, out.String(), "lobotomy plan")
	lines := map[string]string{}
	for _, u := range []string{"borked/0", "prometheus/0", "prometheus/1", "traefik/0"} {
		for _, line := range bytes.Split(out.Bytes(), []byte("\n")) {
			if bytes.Contains(line, []byte(u)) {
				lines[u] = string(line)
			}
		}
	}
	assert.Contains(t, lines["prometheus/0"], "active")
	assert.NotContains(t, lines["prometheus/0"], "inactive")
	assert.Contains(t, lines["prometheus/1"], "inactive")
	assert.False(t, runner.Called("juju scp"))
}

func TestNoTargets(t *testing.T) {
	l, _, _ := newLobotomist(t)
	require.ErrorContains(t, l.Run(context.Background(), &Options{Targets: []string{"tempo"}}), "no targets")
	require.ErrorContains(t, l.Run(context.Background(), &Options{}), "no targets")
}
