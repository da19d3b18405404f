package endpoints

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/jhack/internal/render"
	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/service/status"
	"github.com/canonical/jhack/pkg/service/unit"
	"github.com/canonical/jhack/pkg/testutil"
)

const traefikMetadata = `name: traefik-k8s
requires:
  certificates:
    interface: tls-certificates
    description: Send a CSR, receive a certificate.
provides:
  ingress:
    interface: ingress
  ingress-per-unit:
    interface: ingress_per_unit
    description: Per-unit ingress.
peers:
  peers:
    interface: traefik_peers
`

const metadataPath = "juju ssh traefik/0 cat /var/lib/juju/agents/unit-traefik-0/charm/metadata.yaml"

func TestParseMetadata(t *testing.T) {
	meta, err := ParseMetadata([]byte(testutil.LoadFixture(t, "metadata.yaml")))
	require.NoError(t, err)
	assert.Equal(t, "keystone", meta.Name)
	assert.Equal(t, EndpointSpec{Interface: "hacluster", Scope: "container"}, meta.Role(RoleRequires)["ha"])
	assert.Equal(t, "keystone", meta.Role(RoleProvides)["identity-service"].Interface)
	assert.Equal(t, "keystone-ha", meta.Role(RolePeers)["cluster"].Interface)
	assert.Nil(t, meta.Role("nope"))

	_, err = ParseMetadata([]byte("requires: [oops"))
	require.Error(t, err)
}

func TestParseLibInfo(t *testing.T) {
	out := `./agents/unit-zinc-k8s-0/charm/lib/charms/loki_k8s/v0/loki_push_api.py:LIBPATCH = 12
/var/lib/juju/agents/unit-traefik-0/charm/lib/charms/traefik_k8s/v2/ingress.py:LIBPATCH = 7
/var/lib/juju/agents/unit-traefik-0/charm/lib/charms/observability_libs/v1/garbage.py:LIBPATCH = x
`
	libs := ParseLibInfo(out)
	want := []LibInfo{
		{Owner: "loki_k8s", Version: "0", LibName: "loki_push_api", Revision: "12"},
		{Owner: "traefik_k8s", Version: "2", LibName: "ingress", Revision: "7"},
	}
	if diff := cmp.Diff(want, libs); diff != "" {
		t.Errorf("ParseLibInfo mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, ParseLibInfo(""))
}

func TestImplementations(t *testing.T) {
	libs := []LibInfo{
		{Owner: "traefik_k8s", Version: "2", LibName: "ingress", Revision: "7"},
		{Owner: "traefik_k8s", Version: "1", LibName: "ingress_per_unit", Revision: "3"},
	}
	assert.True(t, libs[1].Implements("ingress-per-unit"))
	assert.True(t, libs[0].Implements("Ingress.py"))
	assert.False(t, libs[0].Implements("ingress-per-unit"))
	assert.Equal(t, "1.3", SupportedVersions(Implementations(libs, "ingress_per_unit")))
	assert.Equal(t, "<library not found>", SupportedVersions(Implementations(libs, "tls-certificates")))
}

func newLister(t *testing.T, runner *testutil.FakeRunner) (*Lister, *bytes.Buffer) {
	t.Helper()
	runner.On("juju status --relations --format json").ReturnFixture(t, "status_k8s.json")
	juju := cli.NewJuju("juju", "")
	out := &bytes.Buffer{}
	return NewLister(
		status.NewStatusServiceClient(runner, juju, false),
		unit.NewUnitServiceClient(runner, juju, out, false),
		render.Plain(out),
	), out
}

func TestGather(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.On(metadataPath).Return(traefikMetadata)
	l, _ := newLister(t, runner)

	e, err := l.Gather(context.Background(), "traefik/0", "")
	require.NoError(t, err)
	want := &AppEndpoints{
		App:      "traefik",
		Unit:     "traefik/0",
		Requires: []Binding{{Endpoint: "certificates", Interface: "tls-certificates", Description: "Send a CSR, receive a certificate.", Remotes: []string{}}},
		Provides: []Binding{
			{Endpoint: "ingress", Interface: "ingress", Remotes: []string{}},
			{Endpoint: "ingress-per-unit", Interface: "ingress_per_unit", Description: "Per-unit ingress.", Remotes: []string{"prometheus"}},
		},
		Peers: []Binding{{Endpoint: "peers", Interface: "traefik_peers", Remotes: []string{}}},
	}
	if diff := cmp.Diff(want, e); diff != "" {
		t.Errorf("Gather mismatch (-want +got):\n%s", diff)
	}

	_, err = l.Gather(context.Background(), "tempo", "")
	var notFound *model.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestMetadataFallsBackToCharmcraft(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.On(metadataPath).Fail(1, "cat: metadata.yaml: No such file or directory")
	runner.On("juju ssh traefik/0 cat /var/lib/juju/agents/unit-traefik-0/charm/charmcraft.yaml").Return(traefikMetadata)
	l, _ := newLister(t, runner)

	meta, err := l.Metadata(context.Background(), "traefik/0")
	require.NoError(t, err)
	assert.Equal(t, "traefik-k8s", meta.Name)
}

func TestList(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.On(metadataPath).Return(traefikMetadata)
	runner.On("juju ssh traefik/0 find").Return(
		"/var/lib/juju/agents/unit-traefik-0/charm/lib/charms/traefik_k8s/v1/ingress_per_unit.py:LIBPATCH = 3\n")
	l, out := newLister(t, runner)

	require.NoError(t, l.List(context.Background(), "traefik", &Options{ShowVersions: true, ShowDescriptions: true}))
	assert.True(t, runner.Called("juju ssh traefik/0 find /var/lib/juju/agents/unit-traefik-0/charm/lib -type f -iname '*.py' -exec grep LIBPATCH {} +"))

	text := out.String()
	assert.Contains(t, text, Title)
	for _, s := range []string{"owner:interface", "version", "bound to", "description",
		"traefik_k8s:ingress_per_unit", "1.3", "prometheus", "<unknown owner>:tls-certificates",
		"<library not found>", "<itself>", "n/a", "<none given>"} {
		assert.Contains(t, text, s)
	}
}

func TestRenderPlain(t *testing.T) {
	l, _ := newLister(t, testutil.NewFakeRunner())
	e := &AppEndpoints{
		App:      "traefik",
		Provides: []Binding{{Endpoint: "ingress", Interface: "ingress"}, {Endpoint: "metrics", Interface: "prometheus_scrape", Remotes: []string{"prom", "grafana"}}},
		Peers:    []Binding{{Endpoint: "peers", Interface: "traefik_peers"}},
	}
	text := l.Render(e, nil, false, false)
	assert.NotContains(t, text, "owner:interface")
	assert.NotContains(t, text, "description")
	assert.Contains(t, text, "prom, grafana")

	var providesRows int
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "provides") {
			providesRows++
		}
	}
	assert.Equal(t, 1, providesRows)
}
