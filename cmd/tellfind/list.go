package main

import (
	"github.com/spf13/cobra"

	"tellfind/internal/config"
	"tellfind/internal/models"
)

func newListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var site string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List finds, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cfg, func(env *appEnv) error {
				all, err := env.service(nil).ListFinds(cmd.Context())
				if err != nil {
					return err
				}
				filtered := all
				if site != "" {
					filtered = make([]models.Find, 0, len(all))
					for _, find := range all {
						if find.Site == site {
							filtered = append(filtered, find)
						}
					}
				}
				if *jsonOutput {
					return writeJSON(filtered)
				}
				return writeFindList(filtered)
			})
		},
	}

	cmd.Flags().StringVar(&site, "site", "", "filter by site")
	return cmd
}
