package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJuju_Command(t *testing.T) {
	j := NewJuju("juju", "")
	require.Equal(t, "juju status --format json", j.Command("status", "--format", "json").String())

	bound := j.InModel("foo")
	require.Equal(t, "juju ssh -m foo traefik/0 ls", bound.Command("ssh", "traefik/0", "ls").String())
	require.Equal(t, "juju models --format json", bound.Global("models", "--format", "json").String())

	require.Equal(t, "foo", bound.InModel("").Model)
}

func TestJujuCommandFromEnv(t *testing.T) {
	t.Setenv("JHACK_JUJU_COMMAND", "/snap/bin/juju")
	require.Equal(t, "/snap/bin/juju", NewJuju("", "").Binary)

	t.Setenv("JHACK_JUJU_COMMAND", "")
	require.Equal(t, DefaultJujuCommand, JujuCommandFromEnv())
}

func TestExitError(t *testing.T) {
	err := &ExitError{Command: "juju status", Code: 1, Stderr: "ERROR model not found\n"}
	require.Equal(t, `"juju status" exited with code 1: ERROR model not found`, err.Error())

	notFound := &ExitError{Command: "juju version", NotFound: true}
	require.Equal(t, "command not found: juju version", notFound.Error())
}
