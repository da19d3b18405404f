package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canonical/jhack/internal/charm"
)

func newCharmCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charm",
		Short: "Charmcrafting utilities.",
	}
	cmd.AddCommand(newCharmUpdateCmd(a), newCharmUnpackCmd(a))
	return cmd
}

func newCharmUpdateCmd(a *app) *cobra.Command {
	var (
		locations []string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "update [CHARM]",
		Short: "Update a packed .charm file with the local sources.",
		Long: `Push local directories into a packed charm archive, without repacking.

Each -l location is a local directory, optionally followed by ':' and the
destination in the archive. Defaults to ./src and ./lib. Without CHARM, the first
.charm file in the working directory is updated.`,
		Example: `  jhack charm update
  jhack charm update ./traefik-k8s_ubuntu-22.04-amd64.charm -l ./src -l ./build/lib:lib`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var charmPath string
			if len(args) == 1 {
				charmPath = args[0]
			} else {
				found, err := charm.FindLocalCharm(".")
				if err != nil {
					return err
				}
				charmPath = found
			}

			if !dryRun {
				if err := a.destructive("charm update", ""); err != nil {
					return err
				}
			}
			_, err := charm.Update(charmPath, locations, dryRun, a.out)
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&locations, "location", "l", nil, "local dir to push into the charm, as src[:dst]")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the changes without applying them")
	return cmd
}

func newCharmUnpackCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "unpack [CHARM]",
		Short:   "Extract a packed .charm file for inspection.",
		Example: `  jhack charm unpack ./traefik-k8s_ubuntu-22.04-amd64.charm -o /tmp/traefik`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			charmPath := ""
			if len(args) == 1 {
				charmPath = args[0]
			} else {
				found, err := charm.FindLocalCharm(".")
				if err != nil {
					return err
				}
				charmPath = found
			}

			manifest, err := charm.ReadManifest(charmPath)
			if err != nil {
				return err
			}
			dir, err := charm.Unpack(charmPath, output)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "unpacked %s (charmcraft %s) into %s\n", manifest.Name, manifest.CharmcraftVersion, dir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "directory to extract into; defaults to the charm path without extension")
	return cmd
}
