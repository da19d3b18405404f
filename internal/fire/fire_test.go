package fire

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/jhack/internal/render"
	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/service/admin"
	"github.com/canonical/jhack/pkg/service/unit"
	"github.com/canonical/jhack/pkg/testutil"
	"github.com/canonical/jhack/pkg/types"
)

func TestRelationEndpoint(t *testing.T) {
	tests := []struct {
		event    string
		endpoint string
		ok       bool
	}{
		{event: "ingress-relation-changed", endpoint: "ingress", ok: true},
		{event: "ingress-per-unit-relation-joined", endpoint: "ingress-per-unit", ok: true},
		{event: "db-relation-departed", endpoint: "db", ok: true},
		{event: "update-status"},
		{event: "-relation-broken"},
	}
	for _, tt := range tests {
		endpoint, ok := RelationEndpoint(tt.event)
		assert.Equal(t, tt.ok, ok, tt.event)
		assert.Equal(t, tt.endpoint, endpoint, tt.event)
	}
}

func TestHookEnvAssignments(t *testing.T) {
	env := &HookEnv{App: "traefik", UnitID: 0, ModelName: "foo", ModelUUID: "1111-foo", Cloud: "microk8s", JujuVersion: "3.4.2", Event: "start"}
	lines, err := env.Render()
	require.NoError(t, err)
	assert.Contains(t, lines, "JUJU_UNIT_NAME=traefik/0")
	assert.Contains(t, lines, "JUJU_DISPATCH_PATH=hooks/start")
	assert.Contains(t, lines, "JUJU_CHARM_DIR=/var/lib/juju/agents/unit-traefik-0/charm")
	assert.Contains(t, lines, "JUJU_AGENT_SOCKET_ADDRESS=@/var/lib/juju/agents/unit-traefik-0/agent.socket")

	env.ModelName = "it's"
	assignments, err := env.Assignments()
	require.NoError(t, err)
	assert.Contains(t, assignments, `JUJU_MODEL_NAME='it'\''s'`)
	assert.Contains(t, assignments, "JUJU_AVAILABILITY_ZONE=''")
}

func TestSimulate(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.On("juju show-unit traefik/0").ReturnFixture(t, "show_unit_traefik_0.yaml")
	runner.On("juju ssh traefik/0").Return("ok\n")
	sim := NewSimulator(unit.NewUnitServiceClient(runner, cli.NewJuju("juju", ""), nil, false), "juju-exec")

	out, err := sim.Simulate(context.Background(), "traefik/0", "update-status")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	_, err = sim.Simulate(context.Background(), "traefik/0", "ingress-per-unit-relation-changed")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"juju ssh traefik/0 /usr/bin/juju-exec -u traefik/0 JUJU_DISPATCH_PATH=hooks/update-status ./dispatch",
		"juju show-unit traefik/0",
		"juju ssh traefik/0 /usr/bin/juju-exec -u traefik/0 JUJU_DISPATCH_PATH=hooks/ingress-per-unit-relation-changed " +
			"JUJU_RELATION=ingress-per-unit JUJU_RELATION_ID=2 ./dispatch",
	}, runner.CallStrings())

	_, err = sim.Simulate(context.Background(), "traefik/0", "metrics-relation-joined")
	require.ErrorContains(t, err, "no active bindings to metrics")
}

func newFirer(t *testing.T, runner *testutil.FakeRunner) (*Firer, *bytes.Buffer) {
	t.Helper()
	runner.On("juju models --format json").ReturnFixture(t, "models.json")
	juju := cli.NewJuju("juju", "")
	out := &bytes.Buffer{}
	return NewFirer(
		admin.NewModelManagementClient(runner, juju, types.JujuVersion{Parts: []int{3, 4, 2}}),
		unit.NewUnitServiceClient(runner, juju, out, false),
		render.Plain(out),
	), out
}

func TestBuildEnv(t *testing.T) {
	f, _ := newFirer(t, testutil.NewFakeRunner())

	env, err := f.BuildEnv(context.Background(), "start", types.Target{App: "traefik", Unit: 1}, "")
	require.NoError(t, err)
	assert.Equal(t, &HookEnv{
		App: "traefik", UnitID: 1, ModelName: "foo", ModelUUID: "1111-foo",
		Cloud: "microk8s", JujuVersion: "3.4.2", Event: "start",
	}, env)

	_, err = f.BuildEnv(context.Background(), "start", types.Target{App: "traefik"}, "nope")
	require.ErrorContains(t, err, "nope")
}

func TestFire(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.On("juju exec -u traefik/0 --").Return("hook ran\n")
	f, out := newFirer(t, runner)

	require.NoError(t, f.Fire(context.Background(), "update-status", "traefik/0", "test-foo-1"))
	calls := runner.Calls()
	require.Len(t, calls, 2)
	args := calls[1].Command.Args
	assert.Equal(t, []string{"exec", "-u", "traefik/0", "--"}, args[:4])
	assert.Contains(t, args, "JUJU_MODEL_UUID='2222-test'")
	assert.Contains(t, args, "JUJU_HOOK_NAME='update-status'")
	assert.Equal(t, "/var/lib/juju/agents/unit-traefik-0/charm/dispatch", args[len(args)-1])

	assert.Contains(t, out.String(), "completed without errors")
	assert.Contains(t, out.String(), "standard output follows:")
	assert.Contains(t, out.String(), "hook ran")
}

func TestFireReportsErrors(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.On("juju exec").Fail(1, "Traceback: boom")
	f, out := newFirer(t, runner)

	require.NoError(t, f.Fire(context.Background(), "start", "traefik/0", ""))
	assert.Contains(t, out.String(), "completed with errors")
	assert.Contains(t, out.String(), "Traceback: boom")
	assert.NotContains(t, out.String(), "standard output follows:")

	require.Error(t, f.Fire(context.Background(), "start", "traefik", ""))
}
