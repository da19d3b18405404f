package main

import (
	"github.com/spf13/cobra"

	"github.com/canonical/jhack/internal/modelops"
)

func newModelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Juju model utilities.",
	}
	cmd.AddCommand(newModelRmCmd(a), newModelClearCmd(a))
	return cmd
}

func newModelRmCmd(a *app) *cobra.Command {
	opts := &modelops.RemoveOptions{}

	cmd := &cobra.Command{
		Use:   "rm [MODELS]",
		Short: "Remove models.",
		Long: `Remove a comma-separated list of models, or the models matching a single
glob such as 'test-*' or '*-cos'. Defaults to the current model.`,
		Example: `  jhack model rm
  jhack model rm foo,bar
  jhack model rm 'test-*' --restart`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr := ""
			if len(args) == 1 {
				expr = args[0]
			}
			if !opts.DryRun {
				if err := a.destructive("model rm", "juju destroy-model --force --no-wait --destroy-storage"); err != nil {
					return err
				}
			}
			c, err := a.connect(cmd.Context(), "")
			if err != nil {
				return err
			}
			return modelops.NewOps(c.ModelMng, c.AppMng, c.StatusMng, a.out).Remove(cmd.Context(), expr, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.Force, "force", true, "pass --force to destroy-model")
	flags.BoolVar(&opts.NoWait, "no-wait", true, "pass --no-wait to destroy-model")
	flags.BoolVar(&opts.DestroyStorage, "destroy-storage", true, "pass --destroy-storage to destroy-model")
	flags.BoolVar(&opts.Restart, "restart", false, "add back a fresh model with the same name")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "do nothing, print out what would have happened")
	return cmd
}

func newModelClearCmd(a *app) *cobra.Command {
	var (
		modelName string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all applications from a model, keeping the model.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !dryRun {
				if err := a.destructive("model clear", "juju remove-application --force --no-wait"); err != nil {
					return err
				}
			}
			c, err := a.connect(cmd.Context(), modelName)
			if err != nil {
				return err
			}
			return modelops.NewOps(c.ModelMng, c.AppMng, c.StatusMng, a.out).Clear(cmd.Context(), modelName, dryRun)
		},
	}
	cmd.Flags().StringVarP(&modelName, "model", "m", "", "model to clear; defaults to the current model")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "do nothing, print out what would have happened")
	return cmd
}
