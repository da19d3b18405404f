package main

import (
	"github.com/spf13/cobra"

	"github.com/canonical/jhack/internal/endpoints"
)

func newListEndpointsCmd(a *app) *cobra.Command {
	opts := &endpoints.Options{}

	cmd := &cobra.Command{
		Use:     "list-endpoints APP",
		Short:   "Display the available integration endpoints of an application.",
		Example: `  jhack list-endpoints traefik --show-versions`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.connect(cmd.Context(), opts.Model)
			if err != nil {
				return err
			}
			return endpoints.NewLister(c.StatusMng, c.UnitMng, a.r).List(cmd.Context(), args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.ShowVersions, "show-versions", "v", false,
		"show the versions of the charm libraries implementing each interface")
	flags.BoolVarP(&opts.ShowDescriptions, "show-descriptions", "d", false, "show the endpoint descriptions")
	flags.StringVarP(&opts.Model, "model", "m", "", "model in which to apply this command")
	return cmd
}
