package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tellfind/internal/config"
)

func newEditCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		plot        string
		layer       string
		description string
		addMedia    []string
		removeMedia []string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an existing find",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("find id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cfg, func(env *appEnv) error {
				user, err := env.currentUser()
				if err != nil {
					return err
				}
				svc := env.service(user)

				sess, err := svc.EditSession(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("plot") {
					sess.Plot = plot
				}
				if cmd.Flags().Changed("layer") {
					sess.Layer = layer
				}
				if cmd.Flags().Changed("description") {
					sess.Description = description
				}

				for _, id := range removeMedia {
					if !sess.RemoveMedia(id) {
						sess.Discard()
						return fmt.Errorf("no media %s on find %s", id, args[0])
					}
				}

				items, err := stageMediaPaths(cfg, addMedia)
				if err != nil {
					sess.Discard()
					return err
				}
				sess.AddMedia(items...)

				find, err := svc.SaveSession(cmd.Context(), sess, *user)
				if err != nil {
					sess.Discard()
					return err
				}

				if *jsonOutput {
					return writeJSON(find)
				}
				return writeFindDetail(find)
			})
		},
	}

	cmd.Flags().StringVarP(&plot, "plot", "p", "", "excavation plot")
	cmd.Flags().StringVarP(&layer, "layer", "l", "", "stratigraphic layer")
	cmd.Flags().StringVarP(&description, "description", "d", "", "find description")
	cmd.Flags().StringSliceVar(&addMedia, "add-media", nil, "media file to attach (repeatable)")
	cmd.Flags().StringSliceVar(&removeMedia, "remove-media", nil, "media id to remove (repeatable)")

	return cmd
}
