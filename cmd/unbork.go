package main

import (
	"github.com/spf13/cobra"

	"github.com/canonical/jhack/internal/unbork"
)

func newUnborkCmd(a *app) *cobra.Command {
	opts := unbork.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "unbork-juju",
		Short: "Unbork your juju + microk8s installation.",
		Long: `Purge and reinstall the juju and microk8s snaps, bootstrap a new controller
and add a new model to it. Have a good day!`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.DryRun {
				if err := a.destructive("unbork-juju", "sudo snap remove --purge juju"); err != nil {
					return err
				}
			}
			runner, juju, _ := a.offline("")
			return unbork.NewUnborker(runner, juju, a.out).Run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Model, "model", "m", opts.Model, "model to add once the controller is up")
	flags.StringVarP(&opts.Controller, "controller", "c", opts.Controller, "name of the controller to bootstrap")
	flags.StringVarP(&opts.JujuChannel, "juju-channel", "J", opts.JujuChannel, "snap channel to install juju from")
	flags.StringVarP(&opts.MicroK8sChannel, "microk8s-channel", "M", opts.MicroK8sChannel, "snap channel to install microk8s from")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "print the steps and exit")
	return cmd
}
