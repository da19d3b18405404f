package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/canonical/jhack/internal/printenv"
	"github.com/canonical/jhack/internal/snap"
	"github.com/canonical/jhack/internal/version"
)

func newPrintEnvCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "print-env",
		Short: "Print the details of the juju environment for use in bug reports.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, juju, models := a.offline("")
			env := printenv.NewGatherer(runner, juju, models, version.Version(), snap.Detect(os.Getenv)).
				Gather(cmd.Context())
			return printenv.Print(a.r, env, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table|json")
	return cmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the jhack version and exit.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			devmode := ""
			if _, ok := a.guard.Devmode(); ok {
				devmode = " --DEVMODE--"
			}
			fmt.Fprintf(a.out, "jhack %s%s\n", version.Version(), devmode)
		},
	}
}
