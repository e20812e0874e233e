package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"tellfind/internal/config"
	"tellfind/internal/export"
)

func newImportCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a YAML bundle into the local records",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("bundle file is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			bundle, err := export.Read(f)
			if err != nil {
				return err
			}

			return withEnv(cfg, func(env *appEnv) error {
				result, err := export.Import(cmd.Context(), env.records, bundle)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(result)
				}
				return writePlain("imported %d, skipped %d existing\n", result.Added, result.Skipped)
			})
		},
	}
}
