package main

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/wyag-go/wyag/internal/object"
	"github.com/wyag-go/wyag/internal/objstore"
	"github.com/wyag-go/wyag/internal/repository"
	"github.com/wyag-go/wyag/internal/revision"
)

func newLsTreeCmd() *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "ls-tree <tree-ish>",
		Short: "Pretty-print a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, store, err := openStore()
			if err != nil {
				return err
			}
			return lsTree(repo, store, args[0], recursive, "")
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into sub-trees")
	return cmd
}

func lsTree(repo *repository.Repository, store *objstore.Store, ref string, recursive bool, prefix string) error {
	sha, err := revision.Find(store, repo, ref, objstore.KindTree, true)
	if err != nil {
		return err
	}
	obj, err := object.Read(store, sha)
	if err != nil {
		return err
	}
	tree, ok := obj.(*object.Tree)
	if !ok {
		return fmt.Errorf("ls-tree: %s is not a tree", sha)
	}

	for _, entry := range tree.Entries {
		kind, err := entry.Kind()
		if err != nil {
			return err
		}
		var kindName string
		switch kind {
		case object.EntrySubtree:
			kindName = "tree"
		case object.EntryBlob, object.EntrySymlink:
			kindName = "blob"
		case object.EntryGitlink:
			kindName = "commit"
		}

		if recursive && kind == object.EntrySubtree {
			if err := lsTree(repo, store, entry.SHA, recursive, path.Join(prefix, entry.Path)); err != nil {
				return err
			}
			continue
		}
		fmt.Printf("%s %s %s\t%s\n", entry.Mode, kindName, entry.SHA, path.Join(prefix, entry.Path))
	}
	return nil
}
