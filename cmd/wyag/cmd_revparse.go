package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wyag-go/wyag/internal/objstore"
	"github.com/wyag-go/wyag/internal/revision"
)

func newRevParseCmd() *cobra.Command {
	var kindFlag string
	cmd := &cobra.Command{
		Use:   "rev-parse <name>",
		Short: "Parse revision (or other object) identifiers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, store, err := openStore()
			if err != nil {
				return err
			}
			sha, err := revision.Find(store, repo, args[0], objstore.Kind(kindFlag), true)
			if err != nil {
				return err
			}
			fmt.Println(sha)
			return nil
		},
	}
	cmd.Flags().StringVar(&kindFlag, "wyag-type", "", "specify the expected type (blob, commit, tag, tree)")
	return cmd
}
