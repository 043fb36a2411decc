package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wyag-go/wyag/internal/objstore"
	"github.com/wyag-go/wyag/internal/repository"
)

func newHashObjectCmd() *cobra.Command {
	var kindFlag string
	var write bool

	cmd := &cobra.Command{
		Use:   "hash-object <path>",
		Short: "Compute object ID and optionally create a blob from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var repo *repository.Repository
			if write {
				repo, err = repository.Find(".", true)
				if err != nil {
					return err
				}
			}
			store, err := objstore.NewStore(repo)
			if err != nil {
				return err
			}

			sha, err := store.Write(objstore.Kind(kindFlag), data)
			if err != nil {
				return err
			}
			fmt.Println(sha)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kindFlag, "type", "t", "blob", "specify the object type (blob, commit, tag, tree)")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "actually write the object into the database")
	return cmd
}
