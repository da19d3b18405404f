package relation_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/jhack/internal/relation"
	"github.com/canonical/jhack/internal/render"
	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/service/status"
	"github.com/canonical/jhack/pkg/service/unit"
	"github.com/canonical/jhack/pkg/testutil"
)

func newService(t *testing.T) (*testutil.FakeRunner, *relation.Service) {
	t.Helper()
	runner := testutil.NewFakeRunner()
	runner.On("juju status --relations --format json").ReturnFixture(t, "status_k8s.json")
	runner.On("juju status --relations").ReturnFixture(t, "status_k8s.txt")
	runner.On("juju show-unit traefik/0").ReturnFixture(t, "show_unit_traefik_0.yaml")
	runner.On("juju show-unit prometheus/0").ReturnFixture(t, "show_unit_prometheus_0.yaml")
	runner.On("juju show-unit prometheus/1").ReturnFixture(t, "show_unit_prometheus_1.yaml")

	juju := cli.NewJuju("juju", "")
	svc := relation.NewService(
		status.NewStatusServiceClient(runner, juju, false),
		unit.NewUnitServiceClient(runner, juju, &bytes.Buffer{}, false),
	)
	return runner, svc
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		input   string
		want    relation.Endpoint
		wantErr bool
	}{
		{input: "traefik:ingress", want: relation.Endpoint{App: "traefik", Name: "ingress"}},
		{input: "traefik/2:ingress", want: relation.Endpoint{App: "traefik", Unit: 2, HasUnit: true, Name: "ingress"}},
		{input: "traefik", wantErr: true},
		{input: "traefik/x:ingress", wantErr: true},
		{input: ":ingress", wantErr: true},
		{input: "a:b:c", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := relation.ParseEndpoint(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestGetRegular(t *testing.T) {
	_, svc := newService(t)

	data, err := svc.Get(context.Background(), &relation.Options{
		Endpoint1: "traefik:ingress-per-unit",
		Endpoint2: "prometheus:ingress",
	})
	require.NoError(t, err)

	assert.False(t, data.Peer)
	assert.Equal(t, 2, data.RelationID)
	require.Len(t, data.Entities, 2)

	requirer, provider := data.Entities[0], data.Entities[1]
	assert.Equal(t, "prometheus", requirer.App)
	assert.Equal(t, "traefik", provider.App)
	assert.Equal(t, "ingress_per_unit", provider.Meta.Interface)

	assert.Equal(t, map[string]string{"_supported_versions": "- v1"}, provider.AppData)
	assert.Empty(t, requirer.AppData)

	want := map[int]map[string]string{
		0: {"host": "prometheus-0.prometheus-endpoints.foo.svc.cluster.local", "model": "foo", "name": "prometheus/0", "port": "9090"},
		1: {"host": "prometheus-1.prometheus-endpoints.foo.svc.cluster.local", "model": "foo", "name": "prometheus/1", "port": "9090"},
	}
	if diff := cmp.Diff(want, requirer.UnitsData); diff != "" {
		t.Errorf("requirer unit data mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, map[int]map[string]string{0: {}}, provider.UnitsData)
}

func TestGetShowJujuKeys(t *testing.T) {
	_, svc := newService(t)

	data, err := svc.Get(context.Background(), &relation.Options{
		Endpoint1:    "traefik/0:ingress-per-unit",
		Endpoint2:    "prometheus/1:ingress",
		ShowJujuKeys: true,
	})
	require.NoError(t, err)
	requirer := data.Entities[0]
	assert.Equal(t, []int{1}, requirer.UnitIDs())
	assert.Equal(t, "10.152.183.150", requirer.UnitsData[1]["ingress-address"])
}

func TestGetPeer(t *testing.T) {
	_, svc := newService(t)

	data, err := svc.Get(context.Background(), &relation.Options{Endpoint1: "prometheus:prometheus-peers"})
	require.NoError(t, err)

	assert.True(t, data.Peer)
	assert.Equal(t, 1, data.RelationID)
	require.Len(t, data.Entities, 1)
	peer := data.Entities[0]
	assert.Equal(t, "prometheus_peers", peer.Meta.Interface)
	assert.Equal(t, map[string]string{"config_hash": "abc123"}, peer.AppData)
	assert.Equal(t, "primary", peer.UnitsData[0]["role"])
	assert.Equal(t, "replica", peer.UnitsData[1]["role"])
}

func TestGetByIndex(t *testing.T) {
	tests := []struct {
		n       int
		peer    bool
		wantErr string
	}{
		{n: 0, peer: true},
		{n: 1, peer: false},
		{n: 2, wantErr: "There are only 2 relations"},
	}
	for _, tt := range tests {
		_, svc := newService(t)
		data, err := svc.Get(context.Background(), &relation.Options{N: tt.n, UseN: true})
		if tt.wantErr != "" {
			require.ErrorContains(t, err, tt.wantErr)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.peer, data.Peer)
	}
}

func TestGetInvalidUsage(t *testing.T) {
	_, svc := newService(t)

	_, err := svc.Get(context.Background(), &relation.Options{N: 0, UseN: true, Endpoint1: "traefik:ingress-per-unit"})
	require.ErrorContains(t, err, "invalid usage")

	_, err = svc.Get(context.Background(), &relation.Options{Endpoint1: "traefik:metrics", Endpoint2: "prometheus:ingress"})
	require.Error(t, err)
}

func TestGetNoMatchingRelation(t *testing.T) {
	runner, svc := newService(t)
	runner.On("juju show-unit prometheus/0").Return("prometheus/0:\n  relation-info:\n  - relation-id: 9\n    endpoint: other\n    related-endpoint: thing\n")

	_, err := svc.Get(context.Background(), &relation.Options{
		Endpoint1: "traefik:ingress-per-unit",
		Endpoint2: "prometheus:ingress",
	})
	var ambiguous *model.AmbiguousRelationError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, 0, ambiguous.Matches)
}

func TestRender(t *testing.T) {
	_, svc := newService(t)
	data, err := svc.Get(context.Background(), &relation.Options{
		Endpoint1: "traefik:ingress-per-unit",
		Endpoint2: "prometheus:ingress",
	})
	require.NoError(t, err)

	out := relation.Render(render.Plain(&bytes.Buffer{}), data, false)
	assert.Contains(t, out, relation.Title)
	assert.Contains(t, out, "relation (id: 2)")
	assert.Contains(t, out, "ingress_per_unit")
	assert.Contains(t, out, "prometheus/0*")
	assert.Contains(t, out, "<empty>")
	assert.NotContains(t, out, "type")

	hidden := relation.Render(render.Plain(&bytes.Buffer{}), data, true)
	assert.NotContains(t, hidden, "<empty>")
}

func TestShowOnce(t *testing.T) {
	_, svc := newService(t)
	var out bytes.Buffer

	err := svc.Show(context.Background(), render.Plain(&out), &relation.Options{Endpoint1: "prometheus:prometheus-peers"}, false)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out.String(), "peer"))
}
