package admin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/service/admin"
	"github.com/canonical/jhack/pkg/testutil"
	"github.com/canonical/jhack/pkg/types"
)

var juju3 = types.JujuVersion{Parts: []int{3, 4, 2}}

func TestListModels(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.On("juju models --format json").ReturnFixture(t, "models.json")
	mm := admin.NewModelManagementClient(runner, cli.NewJuju("juju", ""), juju3)

	resp, err := mm.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Models, 4)
	assert.True(t, resp.Models[0].IsController)
	assert.Equal(t, "test-foo-1", resp.Models[2].ShortName)

	current, err := mm.CurrentModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "foo", current)
}

func TestCurrentModelBound(t *testing.T) {
	runner := testutil.NewFakeRunner()
	mm := admin.NewModelManagementClient(runner, cli.NewJuju("juju", "bar"), juju3)

	current, err := mm.CurrentModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bar", current)
	assert.Empty(t, runner.Calls())
}

func TestSubstrate(t *testing.T) {
	tests := []struct {
		modelType string
		want      model.Substrate
		wantErr   bool
	}{
		{modelType: "iaas", want: model.SubstrateMachine},
		{modelType: "caas", want: model.SubstrateK8s},
		{modelType: "weird", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.modelType, func(t *testing.T) {
			runner := testutil.NewFakeRunner()
			runner.On("juju show-model foo --format json").
				Return(`{"foo": {"name": "admin/foo", "short-name": "foo", "model-type": "` + tt.modelType + `"}}`)
			mm := admin.NewModelManagementClient(runner, cli.NewJuju("juju", "foo"), juju3)

			got, err := mm.Substrate(context.Background(), "")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShowCurrentModel(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.On("juju show-model --format json").Return(`{"foo": {"short-name": "foo", "model-type": "caas"}}`)
	mm := admin.NewModelManagementClient(runner, cli.NewJuju("juju", ""), juju3)

	info, err := mm.ShowModel(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "foo", info.ShortName)
}

func TestAgentVersion(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.On("juju controllers --format json").ReturnFixture(t, "controllers.json")
	mm := admin.NewModelManagementClient(runner, cli.NewJuju("juju", ""), juju3)

	v, err := mm.AgentVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3.4.2", v.String())
}

func TestDestroyModel(t *testing.T) {
	tests := []struct {
		name    string
		version types.JujuVersion
		req     model.DestroyModelRequest
		want    string
	}{
		{
			name:    "juju 3 all flags",
			version: juju3,
			req:     model.DestroyModelRequest{Name: "foo", Force: true, NoWait: true, DestroyStorage: true},
			want:    "juju destroy-model foo --no-prompt --force --no-wait --destroy-storage",
		},
		{
			name:    "juju 2",
			version: types.JujuVersion{Parts: []int{2, 9, 44}},
			req:     model.DestroyModelRequest{Name: "foo"},
			want:    "juju destroy-model foo -y",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := testutil.NewFakeRunner()
			runner.On("juju destroy-model").Return("")
			mm := admin.NewModelManagementClient(runner, cli.NewJuju("juju", "ignored"), tt.version)

			require.NoError(t, mm.DestroyModel(context.Background(), &tt.req))
			assert.Equal(t, []string{tt.want}, runner.CallStrings())
		})
	}
}

func TestAddModelAndConfig(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.On("juju").Return("")
	mm := admin.NewModelManagementClient(runner, cli.NewJuju("juju", ""), juju3)

	require.NoError(t, mm.AddModel(context.Background(), "foo"))
	require.NoError(t, mm.SetModelConfig(context.Background(), "foo", "update-status-hook-interval", "10s"))
	assert.Equal(t, []string{
		"juju add-model foo",
		"juju model-config -m foo update-status-hook-interval=10s",
	}, runner.CallStrings())
}
