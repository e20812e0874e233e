package main

import (
	"errors"

	"github.com/spf13/cobra"

	"tellfind/internal/config"
)

func newShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one find",
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
				if *jsonOutput {
					return writeJSON(find)
				}
				return writeFindDetail(find)
			})
		},
	}
}
