// Package checkout materializes a tree into an empty directory by
// recursively reading blobs and trees.
package checkout

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/wyag-go/wyag/internal/object"
	"github.com/wyag-go/wyag/internal/objstore"
)

var ErrNotEmptyDirectory = errors.New("checkout target is not an empty directory")

// Tree materializes tree into destDir. destDir must not exist (it is
// then created) or must be an empty directory. Symlinks and gitlinks
// are skipped rather than materialized.
func Tree(store *objstore.Store, tree *object.Tree, destDir string) error {
	if fi, err := os.Stat(destDir); err == nil {
		if !fi.IsDir() {
			return errors.Errorf("checkout: %q is not a directory", destDir)
		}
		entries, err := os.ReadDir(destDir)
		if err != nil {
			return errors.WithStack(err)
		}
		if len(entries) > 0 {
			return errors.Wrapf(ErrNotEmptyDirectory, "%q", destDir)
		}
	} else if os.IsNotExist(err) {
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return errors.WithStack(err)
		}
	} else {
		return errors.WithStack(err)
	}

	return checkoutInto(store, tree, destDir)
}

func checkoutInto(store *objstore.Store, tree *object.Tree, destDir string) error {
	for _, entry := range tree.Entries {
		kind, err := entry.Kind()
		if err != nil {
			return errors.Wrapf(err, "checkout %q", entry.Path)
		}
		dest := filepath.Join(destDir, entry.Path)

		switch kind {
		case object.EntrySymlink, object.EntryGitlink:
			continue
		case object.EntrySubtree:
			obj, err := object.Read(store, entry.SHA)
			if err != nil {
				return errors.Wrapf(err, "read %q", entry.Path)
			}
			sub, ok := obj.(*object.Tree)
			if !ok {
				return errors.Errorf("checkout: %q is not a tree", entry.Path)
			}
			if err := os.Mkdir(dest, 0o755); err != nil {
				return errors.WithStack(err)
			}
			if err := checkoutInto(store, sub, dest); err != nil {
				return err
			}
		case object.EntryBlob:
			obj, err := object.Read(store, entry.SHA)
			if err != nil {
				return errors.Wrapf(err, "read %q", entry.Path)
			}
			blob, ok := obj.(*object.Blob)
			if !ok {
				return errors.Errorf("checkout: %q is not a blob", entry.Path)
			}
			if err := os.WriteFile(dest, blob.Data, 0o644); err != nil {
				return errors.WithStack(err)
			}
		}
	}
	return nil
}
