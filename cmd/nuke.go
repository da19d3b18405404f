package main

import (
	"github.com/spf13/cobra"

	"github.com/canonical/jhack/internal/config"
	"github.com/canonical/jhack/internal/nuke"
)

func newNukeCmd(a *app) *cobra.Command {
	opts := &nuke.Options{}

	cmd := &cobra.Command{
		Use:   "nuke [WHAT...]",
		Short: "Surgical carpet bombing tool.",
		Long: `Attempts to guess what you want to burn, and rains holy vengeance upon it.

WHAT is matched against application names, relation endpoints and model names:
'foo' matches anything starting with foo, '*foo' anything ending with foo,
'*foo*' anything containing foo and '!foo' exactly foo.
Without arguments, the current model is nuked.`,
		Example: `  jhack nuke
  jhack nuke traefik -n 1
  jhack nuke '*-k8s' --dry-run
  jhack nuke --borked -m mymodel`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.DryRun {
				if err := a.destructive("nuke", "juju remove-application --force --no-wait"); err != nil {
					return err
				}
			}

			c, err := a.connect(cmd.Context(), opts.Model)
			if err != nil {
				return err
			}
			nuker := nuke.NewNuker(c.Runner(), c.Juju(), c.Version(), c.StatusMng, c.ModelMng, a.r)
			if a.cfg.Bool(config.KeyNukeAskConfirmation) {
				nuker = nuker.WithConfirmation(a.guard.Confirm)
			}
			return nuker.Run(cmd.Context(), args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Model, "model", "m", "", "model to nuke in; defaults to the current model")
	flags.IntVarP(&opts.N, "number", "n", 0, "exact number of things you expect to nuke. Safety first")
	flags.BoolVarP(&opts.Borked, "borked", "b", false, "nuke all borked applications in the model")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "do nothing, print out what would have happened")
	return cmd
}
