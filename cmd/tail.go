package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/canonical/jhack/internal/tail"
	"github.com/canonical/jhack/pkg/service/logs"
	"github.com/canonical/jhack/pkg/service/status"
)

func newTailCmd(a *app) *cobra.Command {
	opts := &tail.Options{}

	cmd := &cobra.Command{
		Use:   "tail [TARGETS]",
		Short: "Pretty-print a table with the events fired on juju units.",
		Long: `Follow juju debug-log and show the events each unit processes, with deferrals
and re-emissions.

TARGETS is a ';'-separated list of units or applications. By default all units are
followed, and units appearing later are added.`,
		Example: `  jhack tail
  jhack tail 'traefik/0;prometheus'
  jhack tail --file ./a.log --file ./b.log`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Targets = args[0]
			}

			var tailer *tail.Tailer
			if len(opts.Files) > 0 {
				runner, juju, _ := a.offline(opts.Model)
				tailer = tail.NewTailer(status.NewStatusServiceClient(runner, juju, false), logs.NewLogServiceClient(runner, juju), a.r)
			} else {
				c, err := a.connect(cmd.Context(), opts.Model)
				if err != nil {
					return err
				}
				tailer = tail.NewTailer(c.StatusMng, c.LogMng, a.r)
			}
			return tailer.Run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.AddNewTargets, "add-new-targets", true, "follow units that show up after startup")
	flags.StringVarP(&opts.Level, "level", "l", "DEBUG", "debug-log level: "+strings.Join(tail.Levels, "|"))
	flags.BoolVar(&opts.Replay, "replay", true, "start from the beginning of the log")
	flags.BoolVarP(&opts.Watch, "watch", "w", true, "keep following the log")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "print the debug-log command and exit")
	flags.IntVarP(&opts.Length, "length", "n", 10, "number of events to show")
	flags.StringSliceVarP(&opts.Files, "file", "f", nil, "read these debug-log dumps instead of juju")
	flags.StringVarP(&opts.Model, "model", "m", "", "model to tail; defaults to the current model")
	return cmd
}
