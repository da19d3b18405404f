package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canonical/jhack/internal/fire"
)

func newFireCmd(a *app) *cobra.Command {
	var modelName string

	cmd := &cobra.Command{
		Use:   "fire EVENT TARGET",
		Short: "Fire an event on a unit, with a synthetic hook environment.",
		Long: `Run the charm's dispatch script on TARGET as if juju had fired EVENT.

The hook environment is built from the model; relation events are not supported,
use simulate-event for those.`,
		Example: `  jhack fire update-status traefik/0
  jhack fire config-changed prometheus/1 -m cos`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.destructive("fire", fmt.Sprintf("juju exec -u %s -- ./dispatch", args[1])); err != nil {
				return err
			}
			c, err := a.connect(cmd.Context(), modelName)
			if err != nil {
				return err
			}
			return fire.NewFirer(c.ModelMng, c.UnitMng, a.r).Fire(cmd.Context(), args[0], args[1], modelName)
		},
	}
	cmd.Flags().StringVarP(&modelName, "model", "m", "", "model the unit lives in; defaults to the current model")
	return cmd
}

func newSimulateEventCmd(a *app) *cobra.Command {
	var modelName string

	cmd := &cobra.Command{
		Use:   "simulate-event UNIT EVENT",
		Short: "Simulate an event on a unit through the in-unit exec helper.",
		Example: `  jhack simulate-event traefik/0 update-status
  jhack simulate-event traefik/0 ingress-relation-changed`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.destructive("simulate-event", "juju ssh "+args[0]+" ... ./dispatch"); err != nil {
				return err
			}
			c, err := a.connect(cmd.Context(), modelName)
			if err != nil {
				return err
			}
			out, err := fire.NewSimulator(c.UnitMng, c.ExecHelper()).Simulate(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if out != "" {
				a.r.Println(out)
			}
			a.r.Println(fmt.Sprintf("Fired %s on %s.", args[1], args[0]))
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelName, "model", "m", "", "model the unit lives in; defaults to the current model")
	return cmd
}
