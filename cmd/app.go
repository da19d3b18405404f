package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/canonical/jhack/internal/config"
	"github.com/canonical/jhack/internal/logging"
	"github.com/canonical/jhack/internal/render"
	"github.com/canonical/jhack/internal/snap"
	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/client"
	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/service/admin"
	"github.com/canonical/jhack/pkg/types"
)

// app holds what every sub-command needs once the root flags are parsed.
type app struct {
	logLevel string
	logPath  string
	color    string

	in     io.Reader
	out    io.Writer
	closer io.Closer

	cfg   *config.Config
	guard *config.Guard
	r     *render.Renderer
}

func newApp(in io.Reader, out io.Writer) *app {
	return &app{in: in, out: out}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	closer, err := logging.Configure(logging.Config{Level: a.logLevel, LogPath: a.logPath})
	if err != nil {
		return err
	}
	a.closer = closer

	a.cfg, err = config.Load(config.Path())
	if err != nil {
		return err
	}
	a.guard = config.NewGuard(a.cfg, a.in, a.out)

	a.r, err = render.New(a.out, a.color)
	return err
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// connect checks the snap environment and builds a juju client for modelName.
func (a *app) connect(ctx context.Context, modelName string) (*client.JujuBindingClient, error) {
	env := snap.NewEnvironment(config.HomeDir())
	if err := env.Configure(); err != nil {
		return nil, err
	}
	return client.NewJujuClient(modelName).
		WithOutput(a.out).
		WithSnapped(env.Snapped).
		Build(ctx)
}

// offline builds the model service without probing the juju binary, for commands
// that must work when juju is broken or missing.
func (a *app) offline(modelName string) (cli.Runner, cli.Juju, admin.ModelManagement) {
	runner := cli.NewExecRunner()
	juju := cli.NewJuju(cli.JujuCommandFromEnv(), modelName)
	return runner, juju, admin.NewModelManagementClient(runner, juju, types.JujuVersion{})
}

// destructive asks for permission to run a state-changing command.
func (a *app) destructive(name, example string) error {
	verdict := a.guard.CheckDestructiveCommandsAllowed(name, example)
	log.Debug().Msgf("destructive command %s allowed=%v (%s)", name, verdict.Allowed, verdict.Reason)
	if !verdict.Allowed {
		return model.ErrAborted
	}
	return nil
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil || errors.Is(err, model.ErrAborted) || errors.Is(err, context.Canceled) {
		return 0
	}
	fmt.Fprintln(stderr, err)
	return 1
}

func joinOptions(opts []string) string {
	return strings.Join(opts, "|")
}
