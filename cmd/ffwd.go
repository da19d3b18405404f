package main

import (
	"github.com/spf13/cobra"

	"github.com/canonical/jhack/internal/ffwd"
)

func newFfwdCmd(a *app) *cobra.Command {
	opts := &ffwd.Options{}

	cmd := &cobra.Command{
		Use:   "ffwd",
		Short: "Speed up update-status hook intervals.",
		Long: `Set update-status-hook-interval to a short value until CTRL+C or the timeout,
then put it back to --slow-interval.`,
		Example: `  jhack ffwd --timeout 60
  jhack ffwd --fast-interval 10 --slow-interval 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.destructive("ffwd", "juju model-config update-status-hook-interval=5s"); err != nil {
				return err
			}
			c, err := a.connect(cmd.Context(), opts.Model)
			if err != nil {
				return err
			}
			return ffwd.NewFastForwarder(c.ModelMng, a.out).Run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.Timeout, "timeout", 0, "seconds after which ffwd stops; by default it runs until CTRL+C")
	flags.IntVar(&opts.FastInterval, "fast-interval", 5, "update-status interval in seconds while fast-forwarding")
	flags.StringVar(&opts.SlowInterval, "slow-interval", "5m", "interval restored on exit. Examples: 5m, 10m, 2h, 20s")
	flags.StringVarP(&opts.Model, "model", "m", "", "model to fast-forward; defaults to the current model")
	return cmd
}
