package main

import (
	"github.com/spf13/cobra"

	"github.com/wyag-go/wyag/internal/checkout"
	"github.com/wyag-go/wyag/internal/object"
	"github.com/wyag-go/wyag/internal/revision"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <commit> <path>",
		Short: "Checkout a commit inside of a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, store, err := openStore()
			if err != nil {
				return err
			}

			sha, err := revision.Find(store, repo, args[0], "", true)
			if err != nil {
				return err
			}
			obj, err := object.Read(store, sha)
			if err != nil {
				return err
			}

			if commit, ok := obj.(*object.Commit); ok {
				treeSHA, ok := commit.Tree()
				if !ok {
					return errNoTreeOnCommit(sha)
				}
				obj, err = object.Read(store, treeSHA)
				if err != nil {
					return err
				}
			}

			tree, ok := obj.(*object.Tree)
			if !ok {
				return errNotATree(sha)
			}
			return checkout.Tree(store, tree, args[1])
		},
	}
}

func errNoTreeOnCommit(sha string) error {
	return &notATreeError{sha: sha, reason: "commit has no tree key"}
}

func errNotATree(sha string) error {
	return &notATreeError{sha: sha, reason: "is not a commit or tree"}
}

type notATreeError struct {
	sha    string
	reason string
}

func (e *notATreeError) Error() string {
	return "checkout: " + e.sha + ": " + e.reason
}
