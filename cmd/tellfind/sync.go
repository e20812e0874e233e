package main

import (
	"errors"

	"github.com/spf13/cobra"

	"tellfind/internal/config"
	"tellfind/internal/sheets"
)

func newSyncCmd(cfg *config.Config) *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Push finds to the expedition spreadsheet",
	}

	pushCmd := &cobra.Command{
		Use:   "push <id>",
		Short: "Append one find as a spreadsheet row",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("find id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cfg, func(env *appEnv) error {
				find, err := env.service(nil).GetFind(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				client := sheets.NewClient(cfg.SheetsScriptURL)
				if err := client.PushFind(cmd.Context(), *find); err != nil {
					return err
				}
				return writePlain("pushed %s\n", find.ID)
			})
		},
	}

	syncCmd.AddCommand(pushCmd)
	return syncCmd
}
