// Package unbork reinstalls juju and microk8s from scratch and bootstraps a fresh controller.
package unbork

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/canonical/jhack/pkg/cli"
)

type Options struct {
	Model           string
	Controller      string
	JujuChannel     string
	MicroK8sChannel string
	DryRun          bool
}

func DefaultOptions() Options {
	return Options{
		Model:           "foo",
		Controller:      "mk8scloud",
		JujuChannel:     "stable",
		MicroK8sChannel: "stable",
	}
}

type Step struct {
	Title    string
	Commands []cli.Command
}

func sudo(args ...string) cli.Command {
	return cli.Command{Name: "sudo", Args: args}
}

// Steps lists what unbork does, in order.
func Steps(juju cli.Juju, opts Options) []Step {
	return []Step{
		{
			Title: "purging juju and microk8s",
			Commands: []cli.Command{
				sudo("snap", "remove", "--purge", "juju"),
				sudo("snap", "remove", "--purge", "microk8s"),
			},
		},
		{
			Title: "reinstalling juju and microk8s",
			Commands: []cli.Command{
				sudo("snap", "install", "juju", "--channel", opts.JujuChannel),
				sudo("snap", "install", "microk8s", "--classic", "--channel", opts.MicroK8sChannel),
				sudo("microk8s", "status", "--wait-ready"),
			},
		},
		{
			Title: "enabling microk8s addons",
			Commands: []cli.Command{
				sudo("microk8s", "enable", "dns"),
				sudo("microk8s", "enable", "hostpath-storage"),
			},
		},
		{
			Title:    "bootstrapping " + opts.Controller,
			Commands: []cli.Command{juju.Global("bootstrap", "microk8s", opts.Controller)},
		},
		{
			Title:    "adding model " + opts.Model,
			Commands: []cli.Command{juju.Global("add-model", opts.Model)},
		},
	}
}

type Unborker struct {
	runner cli.Runner
	juju   cli.Juju
	out    io.Writer
}

func NewUnborker(runner cli.Runner, juju cli.Juju, out io.Writer) *Unborker {
	return &Unborker{runner: runner, juju: juju, out: out}
}

// Run executes the steps in order and stops at the first failing command.
func (u *Unborker) Run(ctx context.Context, opts Options) error {
	steps := Steps(u.juju, opts)
	if opts.DryRun {
		fmt.Fprintln(u.out, "would run:")
		for _, step := range steps {
			for _, cmd := range step.Commands {
				fmt.Fprintf(u.out, "\t%s\n", cmd)
			}
		}
		return nil
	}

	for i, step := range steps {
		fmt.Fprintf(u.out, "[%d/%d] %s...\n", i+1, len(steps), step.Title)
		for _, cmd := range step.Commands {
			log.Debug().Msgf("running %s", cmd)
			if _, err := u.runner.Output(ctx, cmd); err != nil {
				return fmt.Errorf("unbork failed at step %d (%s): %w", i+1, step.Title, err)
			}
		}
	}
	fmt.Fprintf(u.out, "juju is unborked. Controller %s is up with model %s. Have a good day!\n", opts.Controller, opts.Model)
	return nil
}
