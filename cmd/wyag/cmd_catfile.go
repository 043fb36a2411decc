package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wyag-go/wyag/internal/object"
	"github.com/wyag-go/wyag/internal/objstore"
	"github.com/wyag-go/wyag/internal/revision"
)

func newCatFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat-file <type> <object>",
		Short: "Provide content of repository objects",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, store, err := openStore()
			if err != nil {
				return err
			}
			sha, err := revision.Find(store, repo, args[1], objstore.Kind(args[0]), true)
			if err != nil {
				return err
			}
			obj, err := object.Read(store, sha)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(obj.Serialize())
			return err
		},
	}
}
