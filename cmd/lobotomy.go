package main

import (
	"github.com/spf13/cobra"

	"github.com/canonical/jhack/internal/lobotomy"
)

func newLobotomyCmd(a *app) *cobra.Command {
	opts := &lobotomy.Options{}

	cmd := &cobra.Command{
		Use:   "lobotomy [TARGET...]",
		Short: "Prevent charms from processing any incoming events.",
		Long: `Replace the dispatch script of the targeted units with a no-op, so that juju
events are acknowledged but never reach the charm. Use --undo to restore it.`,
		Example: `  jhack lobotomy traefik/0
  jhack lobotomy --all
  jhack lobotomy traefik --undo
  jhack lobotomy --plan`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Targets = args
			if !opts.DryRun && !opts.Plan {
				if err := a.destructive("lobotomy", "juju ssh unit/0 mv .../dispatch .../dispatch.ori"); err != nil {
					return err
				}
			}
			c, err := a.connect(cmd.Context(), opts.Model)
			if err != nil {
				return err
			}
			return lobotomy.NewLobotomist(c.StatusMng, c.UnitMng, a.r).Run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.All, "all", false, "lobotomize every unit in the model")
	flags.BoolVar(&opts.Plan, "plan", false, "show which units are lobotomized and exit")
	flags.BoolVar(&opts.Undo, "undo", false, "restore the original dispatch script")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "do nothing, print out what would have happened")
	flags.StringVarP(&opts.Model, "model", "m", "", "model to look into; defaults to the current model")
	return cmd
}
