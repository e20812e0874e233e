package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tellfind/internal/config"
	"tellfind/internal/media"
)

type createCmdOptions struct {
	id         string
	plot       string
	layer      string
	mediaPaths []string
}

func newCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := &createCmdOptions{}
	cmd := &cobra.Command{
		Use:   "create <description>",
		Short: "Record a new find",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("description is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, cfg, opts, jsonOutput, args)
		},
	}

	cmd.Flags().StringVar(&opts.id, "id", "", "explicit find id")
	cmd.Flags().StringVarP(&opts.plot, "plot", "p", "", "excavation plot")
	cmd.Flags().StringVarP(&opts.layer, "layer", "l", "", "stratigraphic layer")
	cmd.Flags().StringSliceVarP(&opts.mediaPaths, "media", "m", nil, "media file to attach (repeatable)")
	_ = cmd.MarkFlagRequired("plot")
	_ = cmd.MarkFlagRequired("layer")

	return cmd
}

func runCreate(cmd *cobra.Command, cfg *config.Config, opts *createCmdOptions, jsonOutput *bool, args []string) error {
	return withEnv(cfg, func(env *appEnv) error {
		user, err := env.currentUser()
		if err != nil {
			return err
		}
		svc := env.service(user)

		sess := svc.NewComposeSession()
		sess.FindID = opts.id
		sess.Plot = opts.plot
		sess.Layer = opts.layer
		sess.Description = strings.Join(args, " ")

		items, err := stageMediaPaths(cfg, opts.mediaPaths)
		if err != nil {
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
		return writePlain("%s\n", find.ID)
	})
}

// stageMediaPaths loads the given files and stages them. Files that are
// not image or video are skipped, matching the picker behavior.
func stageMediaPaths(cfg *config.Config, paths []string) ([]*media.Item, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	files := make([]media.File, 0, len(paths))
	for _, path := range paths {
		file, err := media.LoadFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return media.NewStager(cfg.MaxMediaBytes).StageFiles(files)
}
