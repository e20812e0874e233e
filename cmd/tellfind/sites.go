package main

import (
	"errors"

	"github.com/spf13/cobra"

	"tellfind/internal/config"
)

func newSitesCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	sitesCmd := &cobra.Command{
		Use:   "sites",
		Short: "Manage the excavation site registry",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List known sites",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cfg, func(env *appEnv) error {
				all := env.sites.All()
				if *jsonOutput {
					return writeJSON(all)
				}
				for _, site := range all {
					line := site.Name
					if site.Location != "" {
						line += " (" + site.Location + ")"
					}
					if err := writePlain("%s\n", line); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a site",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("site name is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cfg, func(env *appEnv) error {
				added, err := env.sites.Add(args[0])
				if err != nil {
					return err
				}
				if !added {
					return writePlain("site %s already registered\n", args[0])
				}
				return writePlain("added %s\n", args[0])
			})
		},
	}

	sitesCmd.AddCommand(listCmd, addCmd)
	return sitesCmd
}
