package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/canonical/jhack/internal/render"
)

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jhack",
		Short: "Hacky, wacky, but ultimately charming.",
		Long: `jhack is a collection of utilities for charm developers.

It drives the juju client to sync code to deployed units, inspect relation data,
tail charm events, fire hooks and clean up after yourself.`,
		Example: `  jhack sync traefik/0
  jhack show-relation traefik:ingress prometheus:ingress
  jhack tail -w
  jhack nuke --dry-run`,
		SilenceErrors:      true,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.logLevel, "log", "", "log level (TRACE|DEBUG|INFO|WARNING|ERROR|CRITICAL); defaults to $JHACK_LOGLEVEL or WARNING")
	flags.StringVar(&a.logPath, "log-path", "", "also write JSON logs to this file")
	flags.StringVar(&a.color, "color", "auto", "colour output: "+joinOptions(render.ColorOptions))

	for _, cmd := range utilsCommands(a) {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(
		newSimulateEventCmd(a),
		newVersionCmd(a),
		newUtilsCmd(a),
		newModelCmd(a),
		newCharmCmd(a),
		newConfCmd(a),
	)
	return rootCmd
}

// utilsCommands builds the charming utilities; they are mounted both at the root and
// under `jhack utils`, so every call returns fresh commands.
func utilsCommands(a *app) []*cobra.Command {
	return []*cobra.Command{
		newSyncCmd(a),
		newShowRelationCmd(a),
		newTailCmd(a),
		newNukeCmd(a),
		newFireCmd(a),
		newFfwdCmd(a),
		newUnborkCmd(a),
		newLobotomyCmd(a),
		newListEndpointsCmd(a),
		newPrintEnvCmd(a),
	}
}

func newUtilsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "utils",
		Short: "Charming utilities.",
	}
	cmd.AddCommand(utilsCommands(a)...)
	return cmd
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(newApp(stdin, stdout))
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return exitCode(rootCmd.ExecuteContext(ctx), stderr)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
