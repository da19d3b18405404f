package snap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		snapData string
		want     bool
	}{
		{snapData: "", want: false},
		{snapData: "/var/snap/jhack/x1", want: true},
		{snapData: "/var/snap/other/x1", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.snapData, func(t *testing.T) {
			getenv := func(key string) string {
				if key == "SNAP_DATA" {
					return tt.snapData
				}
				return ""
			}
			assert.Equal(t, tt.want, Detect(getenv))
		})
	}
}

func TestConfigure(t *testing.T) {
	lookPath := func(string) (string, error) { return "/snap/bin/juju", nil }

	t.Run("unsnapped", func(t *testing.T) {
		env := &Environment{JujuData: "/does/not/exist", LookPath: lookPath}
		require.NoError(t, env.Configure())
	})

	t.Run("writable", func(t *testing.T) {
		dir := t.TempDir()
		env := &Environment{Snapped: true, JujuData: dir, LookPath: lookPath}
		require.NoError(t, env.Configure())
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("missing juju data", func(t *testing.T) {
		env := &Environment{Snapped: true, JujuData: filepath.Join(t.TempDir(), "nope"), LookPath: lookPath}
		err := env.Configure()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Is the juju snap bootstrapped?")
	})
}

// The manifest and Plugs must not drift apart.
func TestPlugsMatchManifest(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "snap", "snapcraft.yaml"))
	require.NoError(t, err)

	var manifest struct {
		Plugs map[string]struct {
			Interface string   `yaml:"interface"`
			Write     []string `yaml:"write"`
			Private   bool     `yaml:"private"`
		} `yaml:"plugs"`
		Apps map[string]struct {
			Command string   `yaml:"command"`
			Plugs   []string `yaml:"plugs"`
		} `yaml:"apps"`
	}
	require.NoError(t, yaml.Unmarshal(raw, &manifest))

	require.Len(t, manifest.Apps, 1)
	app, ok := manifest.Apps["jhack"]
	require.True(t, ok)

	for _, plug := range Plugs() {
		assert.Contains(t, app.Plugs, plug.Name)
		if declared, ok := manifest.Plugs[plug.Name]; ok {
			assert.Equal(t, plug.Interface, declared.Interface, plug.Name)
			assert.Equal(t, plug.Write, declared.Write, plug.Name)
			assert.Equal(t, plug.Private, declared.Private, plug.Name)
		} else {
			assert.Equal(t, plug.Name, plug.Interface, "%s is an implicit plug", plug.Name)
		}
	}
}
