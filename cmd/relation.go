package main

import (
	"github.com/spf13/cobra"

	"github.com/canonical/jhack/internal/relation"
)

func newShowRelationCmd(a *app) *cobra.Command {
	opts := &relation.Options{}
	var watch bool

	cmd := &cobra.Command{
		Use:   "show-relation [ENDPOINT1] [ENDPOINT2]",
		Short: "Display the databags of a relation.",
		Long: `Display the application and unit databags of a relation.

Endpoints look like <app>[/<unit>]:<endpoint>. Pass a single endpoint for peer
relations, or use -n to pick a relation by its index in 'juju status --relations'.`,
		Example: `  jhack show-relation traefik:ingress prometheus:ingress
  jhack show-relation traefik/0:ingress prometheus/1:ingress --show-juju-keys
  jhack show-relation -n 2 --watch`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Endpoint1 = args[0]
			}
			if len(args) > 1 {
				opts.Endpoint2 = args[1]
			}
			opts.UseN = cmd.Flags().Changed("number")

			c, err := a.connect(cmd.Context(), opts.Model)
			if err != nil {
				return err
			}
			return relation.NewService(c.StatusMng, c.UnitMng).Show(cmd.Context(), a.r, opts, watch)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.N, "number", "n", 0, "relation index, as listed by `juju status --relations`")
	flags.BoolVarP(&opts.ShowJujuKeys, "show-juju-keys", "s", false, "show the keys juju adds to every databag")
	flags.BoolVarP(&opts.HideEmpty, "hide-empty", "h", false, "hide empty databags")
	flags.BoolVarP(&watch, "watch", "w", false, "keep refreshing the output")
	flags.StringVarP(&opts.Model, "model", "m", "", "model to look in; defaults to the current model")
	return cmd
}
