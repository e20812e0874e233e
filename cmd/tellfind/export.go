package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"tellfind/internal/config"
	"tellfind/internal/export"
)

func newExportCmd(cfg *config.Config) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all finds as a YAML bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cfg, func(env *appEnv) error {
				finds, err := env.service(nil).ListFinds(cmd.Context())
				if err != nil {
					return err
				}

				var out io.Writer = os.Stdout
				if outPath != "" {
					f, err := os.Create(outPath)
					if err != nil {
						return err
					}
					defer f.Close()
					out = f
				}
				return export.Write(out, finds)
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the bundle to a file instead of stdout")
	return cmd
}
