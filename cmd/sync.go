package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/canonical/jhack/internal/sync"
)

func newSyncCmd(a *app) *cobra.Command {
	opts := &sync.Options{}
	var refreshRate float64

	cmd := &cobra.Command{
		Use:   "sync [TARGET...]",
		Short: "Push local charm sources to deployed units, and keep them in sync.",
		Long: `Watch the local charm sources and push every change to the units running the charm.

Targets are unit or application names; '*' selects every application in the model.
By default, jhack syncs to all applications running the charm in the current directory.`,
		Example: `  jhack sync traefik/0
  jhack sync traefik prometheus --source ./src --source ./lib/charms
  jhack sync --touch ./src/charm.py`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Targets = args
			opts.RefreshRate = time.Duration(refreshRate * float64(time.Second))
			if !opts.DryRun {
				if err := a.destructive("sync", "juju scp ./src/charm.py unit/0:/var/lib/juju/agents/..."); err != nil {
					return err
				}
			}

			c, err := a.connect(cmd.Context(), opts.Model)
			if err != nil {
				return err
			}
			return sync.NewSyncer(c.StatusMng, c.UnitMng, a.out).Run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.SourceDirs, "source", "s", sync.DefaultSourceDirs, "local directories to watch for changes")
	flags.StringVarP(&opts.RemoteRoot, "remote-root", "r", sync.DefaultRemoteRoot,
		"remote path the sources are copied to; {app} and {unit_id} are replaced")
	flags.StringVarP(&opts.Container, "container", "c", sync.DefaultContainer, "container to push to, on kubernetes")
	flags.Float64Var(&refreshRate, "refresh-rate", 1, "seconds to wait for more changes before pushing")
	flags.BoolVar(&opts.NonRecursive, "non-recursive", false, "do not watch subdirectories of the source dirs")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "do nothing, print out what would have happened")
	flags.StringVar(&opts.IncludeFiles, "include-files", sync.DefaultIncludeFiles, "regex of the files to sync")
	flags.BoolVar(&opts.SkipInitialSync, "skip-initial-sync", false, "do not push every watched file before watching")
	flags.StringVar(&opts.Venv, "venv", "", "local virtualenv whose site-packages are synced into the charm venv")
	flags.StringSliceVar(&opts.Touch, "touch", nil, "push these files once and exit")
	flags.StringVarP(&opts.Model, "model", "m", "", "model to sync to; defaults to the current model")
	return cmd
}
