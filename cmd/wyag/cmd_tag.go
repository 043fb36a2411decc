package main

import (
	"github.com/spf13/cobra"

	"github.com/wyag-go/wyag/internal/refs"
	"github.com/wyag-go/wyag/internal/revision"
)

func newTagCmd() *cobra.Command {
	var annotated bool
	cmd := &cobra.Command{
		Use:   "tag [name] [object]",
		Short: "List and create tags",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, store, err := openStore()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				tree, err := refs.List(repo, "refs/tags")
				if err != nil {
					return err
				}
				showRef(tree, "")
				return nil
			}

			target := "HEAD"
			if len(args) == 2 {
				target = args[1]
			}
			_, err = revision.TagCreate(store, repo, args[0], target, annotated)
			return err
		},
	}
	cmd.Flags().BoolVarP(&annotated, "annotate", "a", false, "create an annotated tag object")
	return cmd
}
