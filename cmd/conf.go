package main

import (
	"github.com/spf13/cobra"

	"github.com/canonical/jhack/internal/config"
)

func newConfCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conf",
		Short: "jhack configuration.",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "default",
			Short: "Print the default config.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return config.PrintDefaults(a.out)
			},
		},
		&cobra.Command{
			Use:   "current",
			Short: "Print the config in use: the config file applied over the defaults.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.cfg.Print(a.out)
			},
		},
	)
	return cmd
}
