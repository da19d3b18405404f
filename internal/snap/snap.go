package snap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const ConnectHint = "sudo snap connect jhack:dot-local-share-juju snapd"

// Plug is a snap interface connection jhack declares.
type Plug struct {
	Name      string
	Interface string
	Write     []string
	Read      []string
	Private   bool
}

// Plugs lists the plugs declared in snap/snapcraft.yaml.
func Plugs() []Plug {
	return []Plug{
		{Name: "dot-local-share-juju", Interface: "personal-files", Write: []string{"$HOME/.local/share/juju"}},
		{Name: "dot-config-jhack", Interface: "personal-files", Write: []string{"$HOME/.config/jhack"}},
		{Name: "home-read", Interface: "home"},
		{Name: "ssh-read", Interface: "ssh-keys"},
		{Name: "shared-memory", Interface: "shared-memory", Private: true},
		{Name: "network", Interface: "network"},
		{Name: "network-bind", Interface: "network-bind"},
	}
}

// Detect reports whether jhack runs from its snap; SNAP_DATA may belong to another snap.
func Detect(getenv func(string) string) bool {
	return strings.Contains(getenv("SNAP_DATA"), "jhack")
}

type Environment struct {
	Snapped  bool
	JujuData string
	LookPath func(string) (string, error)
}

func NewEnvironment(home string) *Environment {
	return &Environment{
		Snapped:  Detect(os.Getenv),
		JujuData: filepath.Join(home, ".local", "share", "juju"),
		LookPath: exec.LookPath,
	}
}

// Configure checks the snap can reach the juju client and its data dir.
// Only a missing juju data dir is fatal.
func (e *Environment) Configure() error {
	if !e.Snapped {
		log.Info().Msg("jhack running in unsnapped mode. Skipping .local/share/juju configuration.")
		return nil
	}

	log.Info().Msg("jhack running in snapped mode. Checking configuration...")
	if path, err := e.LookPath("juju"); err != nil {
		log.Error().Msg("juju command not found. All jhacks depending on juju calls will bork. " +
			"If this is a snap, you might have forgotten to connect jhack to some required plugs.")
	} else {
		log.Info().Msgf("juju command is %s", path)
	}

	marker := filepath.Join(e.JujuData, ".__test_rw_jhack__.hacky")
	err := os.WriteFile(marker, []byte("kuckadoodle-foo"), 0o600)
	switch {
	case err == nil:
		return os.Remove(marker)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("JUJU_DATA default directory not found at %s. Is the juju snap bootstrapped?", e.JujuData)
	case errors.Is(err, fs.ErrPermission):
		log.Error().Msgf("It seems like the snap doesn't have access to %s; to grant it, run '%s'. "+
			"Some jhack commands will still work, but those that interact with the juju client will not.",
			e.JujuData, ConnectHint)
		return nil
	default:
		return fmt.Errorf("failed to check %s is writable: %w", e.JujuData, err)
	}
}
