package nuke

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/canonical/jhack/internal/render"
	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/service/admin"
	"github.com/canonical/jhack/pkg/service/status"
	"github.com/canonical/jhack/pkg/testutil"
	"github.com/canonical/jhack/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParseGlob(t *testing.T) {
	tests := []struct {
		pattern string
		match   []string
		noMatch []string
		wantErr bool
	}{
		{pattern: "foo", match: []string{"foo", "foobar"}, noMatch: []string{"barfoo"}},
		{pattern: "foo*", match: []string{"foo", "foo-1"}, noMatch: []string{"a-foo"}},
		{pattern: "*foo", match: []string{"foo", "test-foo"}, noMatch: []string{"foo-1"}},
		{pattern: "*foo*", match: []string{"foo", "a-foo-b"}, noMatch: []string{"fo"}},
		{pattern: "!foo", match: []string{"foo"}, noMatch: []string{"foobar", "!foo"}},
		{pattern: "", match: []string{"anything"}},
		{pattern: "*", match: []string{"anything"}},
		{pattern: "fo!o", wantErr: true},
		{pattern: "!foo*", wantErr: true},
		{pattern: "f*o", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			match, err := ParseGlob(tt.pattern)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, s := range tt.match {
				assert.True(t, match(s), "%q should match %q", tt.pattern, s)
			}
			for _, s := range tt.noMatch {
				assert.False(t, match(s), "%q should not match %q", tt.pattern, s)
			}
		})
	}
}

func newNuker(t *testing.T) (*Nuker, *testutil.FakeRunner, *bytes.Buffer) {
	t.Helper()
	runner := testutil.NewFakeRunner()
	runner.On("juju models --format json").ReturnFixture(t, "models.json")
	runner.On("juju status -m foo --relations --format json").ReturnFixture(t, "status_k8s.json")
	runner.On("juju status -m foo --relations").ReturnFixture(t, "status_k8s.txt")
	runner.On("juju destroy-model").Return("")
	runner.On("juju remove-application").Return("")
	runner.On("juju remove-relation").Return("")

	juju := cli.NewJuju("juju", "")
	version := types.JujuVersion{Parts: []int{3, 4, 2}}
	out := &bytes.Buffer{}
	n := NewNuker(runner, juju, version,
		status.NewStatusServiceClient(runner, juju, false),
		admin.NewModelManagementClient(runner, juju, version),
		render.Plain(out))
	return n, runner, out
}

func commands(plan []Nuke) []string {
	out := make([]string, len(plan))
	for i, nk := range plan {
		out[i] = nk.Command.String()
	}
	return out
}

func TestGatherAndPlan(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		opts    Options
		want    []string
	}{
		{
			name: "current model",
			want: []string{"juju destroy-model foo --force --no-wait --destroy-storage --no-prompt"},
		},
		{
			name:    "app takes its relations down",
			pattern: "prom",
			want:    []string{"juju remove-application -m foo prometheus --no-prompt --force --no-wait"},
		},
		{
			name:    "models by substring",
			pattern: "*foo*",
			want: []string{
				"juju destroy-model foo --force --no-wait --destroy-storage --no-prompt",
				"juju destroy-model test-foo-1 --force --no-wait --destroy-storage --no-prompt",
			},
		},
		{
			name:    "relation by endpoint suffix",
			pattern: "*ingress",
			want:    []string{"juju remove-relation -m foo traefik:ingress-per-unit prometheus:ingress"},
		},
		{
			name: "borked apps only",
			opts: Options{Borked: true},
			want: []string{"juju remove-application -m foo borked --no-prompt --force --no-wait"},
		},
		{
			name:    "explicit model skips model matching",
			pattern: "!foo",
			opts:    Options{Model: "foo"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, _, _ := newNuker(t)
			nukeables, err := n.Gather(context.Background(), tt.pattern, &tt.opts)
			require.NoError(t, err)
			got := commands(n.Plan(nukeables))
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanSkipsWhatGoesDownAnyway(t *testing.T) {
	n, _, _ := newNuker(t)
	plan := n.Plan([]Nukeable{
		{Kind: KindRelation, Name: "a:x b:y", Model: "m2", Provider: "a:x", Requirer: "b:y"},
		{Kind: KindApp, Name: "a", Model: "m2"},
		{Kind: KindApp, Name: "c", Model: "m1"},
		{Kind: KindModel, Name: "m1"},
	})
	assert.Equal(t, []string{
		"juju destroy-model m1 --force --no-wait --destroy-storage --no-prompt",
		"juju remove-application -m m2 a --no-prompt --force --no-wait",
	}, commands(plan))

	n.version = types.JujuVersion{Parts: []int{2, 9, 44}}
	plan = n.Plan([]Nukeable{{Kind: KindModel, Name: "m1"}, {Kind: KindApp, Name: "a", Model: "m2"}})
	assert.Equal(t, []string{
		"juju destroy-model m1 --force --no-wait --destroy-storage -y",
		"juju remove-application -m m2 a --force --no-wait",
	}, commands(plan))
}

func TestPlanSkipsRelationsOfNukedUnits(t *testing.T) {
	n, _, _ := newNuker(t)
	plan := n.Plan([]Nukeable{
		{Kind: KindRelation, Name: "a/0:x b:y", Model: "m", Provider: "a/0:x", Requirer: "b:y"},
		{Kind: KindRelation, Name: "c:x d:y", Model: "m", Provider: "c:x", Requirer: "d:y"},
		{Kind: KindApp, Name: "b", Model: "m"},
		{Kind: KindApp, Name: "a", Model: "m"},
	})
	assert.Equal(t, []string{
		"juju remove-application -m m b --no-prompt --force --no-wait",
		"juju remove-application -m m a --no-prompt --force --no-wait",
		"juju remove-relation -m m c:x d:y",
	}, commands(plan))
}

func TestNukeableString(t *testing.T) {
	assert.Equal(t, `model "foo"`, Nukeable{Kind: KindModel, Name: "foo"}.String())
	assert.Equal(t, `app "traefik" (foo)`, Nukeable{Kind: KindApp, Name: "traefik", Model: "foo"}.String())
	assert.Equal(t, `relation "a:x" --> b:y`, Nukeable{Kind: KindRelation, Provider: "a:x", Requirer: "b:y"}.String())
}

func TestRunDryRun(t *testing.T) {
	n, runner, out := newNuker(t)
	require.NoError(t, n.Run(context.Background(), []string{"*foo*"}, &Options{DryRun: true}))
	assert.Equal(t, "would ⚛ model \"foo\"\nwould ⚛ model \"test-foo-1\"\n", out.String())
	assert.False(t, runner.Called("juju destroy-model"))
}

func TestRunNothingToNuke(t *testing.T) {
	n, _, out := newNuker(t)
	require.NoError(t, n.Run(context.Background(), []string{"!nope"}, &Options{}))
	assert.Equal(t, "Nothing to ⚛.\n", out.String())
}

func TestRunUnexpectedCount(t *testing.T) {
	n, runner, out := newNuker(t)
	err := n.Run(context.Background(), []string{"*foo*"}, &Options{N: 3})
	require.ErrorIs(t, err, model.ErrAborted)
	assert.Contains(t, out.String(), "That is less than what you expected. Aborting...")
	assert.False(t, runner.Called("juju destroy-model"))

	require.Error(t, n.Run(context.Background(), []string{"a", "b"}, &Options{N: 1}))
}

func TestRunFires(t *testing.T) {
	n, runner, out := newNuker(t)
	runner.On("juju destroy-model test-foo-1").Fail(1, "model is busy")

	err := n.Run(context.Background(), []string{"*foo*"}, &Options{N: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test-foo-1")
	assert.True(t, runner.Called("juju destroy-model foo "))
	assert.Contains(t, out.String(), "nuking ⚛ model \"foo\" ⚛")
	assert.Contains(t, out.String(), "something went wrong nuking test-foo-1")
	assert.Contains(t, out.String(), "✞ RIP ✞")
}

func TestRunConfirmation(t *testing.T) {
	n, runner, out := newNuker(t)
	var asked string
	n.WithConfirmation(func(q string) bool {
		asked = q
		return false
	})

	err := n.Run(context.Background(), []string{"prom"}, &Options{})
	require.ErrorIs(t, err, model.ErrAborted)
	assert.Equal(t, "about to ⚛ 1 things. Proceed?", asked)
	assert.Contains(t, out.String(), "prometheus")
	assert.False(t, runner.Called("juju remove-application"))
}
