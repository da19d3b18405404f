package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Target
		wantErr  bool
	}{
		{name: "plain unit", input: "traefik/0", expected: Target{App: "traefik", Unit: 0}},
		{name: "leader marker", input: "prometheus-k8s/3*", expected: Target{App: "prometheus-k8s", Unit: 3, Leader: true}},
		{name: "no slash", input: "traefik", wantErr: true},
		{name: "bad id", input: "traefik/x", wantErr: true},
		{name: "empty app", input: "/1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestTargetPaths(t *testing.T) {
	tgt := Target{App: "zinc-k8s", Unit: 2}
	require.Equal(t, "zinc-k8s/2", tgt.UnitName())
	require.Equal(t, "unit-zinc-k8s-2", tgt.Tag())
	require.Equal(t, "/var/lib/juju/agents/unit-zinc-k8s-2/charm", tgt.CharmRootPath())
}

func TestUnitFromTag(t *testing.T) {
	unit, ok := UnitFromTag("unit-traefik-k8s-0")
	require.True(t, ok)
	require.Equal(t, "traefik-k8s/0", unit)

	_, ok = UnitFromTag("machine-0")
	require.False(t, ok)
	_, ok = UnitFromTag("unit-foo-bar")
	require.False(t, ok)
}

func TestJujuVersion(t *testing.T) {
	v, err := ParseJujuVersion("3.4.2-genericlinux-amd64\n")
	require.NoError(t, err)
	require.Equal(t, []int{3, 4, 2}, v.Parts)
	require.Equal(t, "genericlinux-amd64", v.Build)
	require.True(t, v.AtLeast(3))
	require.False(t, v.AtLeast(3, 5))
	require.Equal(t, 3, v.Major())

	old, err := ParseJujuVersion("2.9.44")
	require.NoError(t, err)
	require.Equal(t, -1, old.Compare(v))
	require.Equal(t, "2.9.44", old.String())

	_, err = ParseJujuVersion("")
	require.Error(t, err)
}

func TestEndpointApp(t *testing.T) {
	require.Equal(t, "prometheus", EndpointApp("prometheus:ingress"))
	require.Equal(t, "prometheus", EndpointApp("prometheus/1:ingress"))
	require.Equal(t, "traefik", EndpointApp("traefik"))
}
