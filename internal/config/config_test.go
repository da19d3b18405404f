package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.False(t, cfg.Bool(KeyDevmode))
	assert.True(t, cfg.Bool(KeyNukeAskConfirmation))
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[nuke]\nask_for_confirmation = false\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Bool(KeyNukeAskConfirmation))
	assert.False(t, cfg.Bool(KeyDevmode))
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[nuke\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().Print(&buf))
	assert.Contains(t, buf.String(), "ask_for_confirmation = true")

	buf.Reset()
	require.NoError(t, PrintDefaults(&buf))
	assert.Contains(t, buf.String(), "enable_destructive_commands_NO_PRODUCTION_zero_guarantees = false")
}

func TestDataPath(t *testing.T) {
	t.Setenv("JHACK_DATA", "/tmp/jhack-data")
	assert.Equal(t, "/tmp/jhack-data", DataPath())
	assert.Equal(t, "/tmp/jhack-data/config.toml", Path())
}

func TestCheckDestructiveCommandsAllowed(t *testing.T) {
	for _, confYes := range []bool{true, false} {
		for _, userYes := range []bool{true, false} {
			for _, envYes := range []bool{true, false} {
				cfg := Default()
				cfg.Set(KeyDevmode, confYes)

				answer := "no\n"
				if userYes {
					answer = "yes\n"
				}
				getenv := func(key string) string {
					if key == "JHACK_PROFILE" && envYes {
						return "devmode"
					}
					return ""
				}

				var out bytes.Buffer
				v := NewGuard(cfg, strings.NewReader(answer), &out).WithEnv(getenv).
					CheckDestructiveCommandsAllowed("foo", "")

				switch {
				case envYes:
					assert.True(t, v.Allowed)
					assert.Equal(t, ReasonDevmodeTemp, v.Reason)
				case confYes:
					assert.True(t, v.Allowed)
					assert.Equal(t, ReasonDevmodePerm, v.Reason)
				default:
					assert.Equal(t, ReasonUser, v.Reason)
					assert.Equal(t, userYes, v.Allowed)
					assert.Contains(t, out.String(), "`jhack foo` is a potentially destructive command")
				}
			}
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "", want: false},
	}
	for _, tt := range tests {
		g := NewGuard(Default(), strings.NewReader(tt.input), &bytes.Buffer{})
		assert.Equal(t, tt.want, g.Confirm("nuke?"), tt.input)
	}
}
