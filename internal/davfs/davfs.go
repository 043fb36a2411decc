// Package davfs adapts a single checked-out commit tree into a
// webdav.FileSystem for read-only browsing, reading through this
// module's object/tree codecs rather than scanning the filesystem
// directly.
package davfs

import (
	"context"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"golang.org/x/net/webdav"

	"github.com/wyag-go/wyag/internal/object"
	"github.com/wyag-go/wyag/internal/objstore"
)

// FileSystem exposes root (the tree of a single commit) read-only.
type FileSystem struct {
	Store *objstore.Store
	Root  *object.Tree
}

var _ webdav.FileSystem = (*FileSystem)(nil)

func (fs *FileSystem) Mkdir(ctx context.Context, name string, perm os.FileMode) error {
	return os.ErrPermission
}

func (fs *FileSystem) RemoveAll(ctx context.Context, name string) error {
	return os.ErrPermission
}

func (fs *FileSystem) Rename(ctx context.Context, oldName, newName string) error {
	return os.ErrPermission
}

// resolve walks name's path components from the root tree, returning
// the terminal tree/blob object and its entry name.
func (fs *FileSystem) resolve(name string) (object.Object, string, error) {
	clean := strings.Trim(path.Clean("/"+name), "/")
	if clean == "" {
		return fs.Root, "/", nil
	}

	parts := strings.Split(clean, "/")
	var current object.Object = fs.Root
	for i, part := range parts {
		tree, ok := current.(*object.Tree)
		if !ok {
			return nil, "", &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
		}
		var next *object.Entry
		for i := range tree.Entries {
			if tree.Entries[i].Path == part {
				next = &tree.Entries[i]
				break
			}
		}
		if next == nil {
			return nil, "", &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
		}
		obj, err := object.Read(fs.Store, next.SHA)
		if err != nil {
			return nil, "", err
		}
		current = obj
		if i == len(parts)-1 {
			return current, part, nil
		}
	}
	return current, parts[len(parts)-1], nil
}

func (fs *FileSystem) OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (webdav.File, error) {
	obj, entryName, err := fs.resolve(name)
	if err != nil {
		return nil, err
	}
	return &file{name: entryName, obj: obj}, nil
}

func (fs *FileSystem) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	obj, entryName, err := fs.resolve(name)
	if err != nil {
		return nil, err
	}
	return infoFor(entryName, obj), nil
}

// file is a webdav.File positioned over a single decoded object: a
// directory listing for a Tree, or a byte stream for a Blob.
type file struct {
	name   string
	obj    object.Object
	offset int64
}

func (f *file) Close() error { return nil }

func (f *file) Read(p []byte) (int, error) {
	blob, ok := f.obj.(*object.Blob)
	if !ok {
		return 0, os.ErrInvalid
	}
	if f.offset >= int64(len(blob.Data)) {
		return 0, io.EOF
	}
	n := copy(p, blob.Data[f.offset:])
	f.offset += int64(n)
	return n, nil
}

func (f *file) Seek(offset int64, whence int) (int64, error) {
	blob, ok := f.obj.(*object.Blob)
	if !ok {
		return 0, os.ErrInvalid
	}
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = f.offset
	case io.SeekEnd:
		base = int64(len(blob.Data))
	}
	f.offset = base + offset
	return f.offset, nil
}

func (f *file) Readdir(count int) ([]os.FileInfo, error) {
	tree, ok := f.obj.(*object.Tree)
	if !ok {
		return nil, os.ErrInvalid
	}
	infos := make([]os.FileInfo, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		kind, err := e.Kind()
		if err != nil {
			continue
		}
		infos = append(infos, &fileinfo{name: e.Path, isDir: kind == object.EntrySubtree})
	}
	return infos, nil
}

func (f *file) Stat() (os.FileInfo, error) { return infoFor(f.name, f.obj), nil }

func (f *file) Write(p []byte) (int, error) { return 0, os.ErrPermission }

func infoFor(name string, obj object.Object) os.FileInfo {
	switch v := obj.(type) {
	case *object.Tree:
		return &fileinfo{name: name, isDir: true}
	case *object.Blob:
		return &fileinfo{name: name, size: int64(len(v.Data))}
	default:
		return &fileinfo{name: name}
	}
}

type fileinfo struct {
	name  string
	size  int64
	isDir bool
}

func (fi *fileinfo) Name() string       { return fi.name }
func (fi *fileinfo) Size() int64        { return fi.size }
func (fi *fileinfo) ModTime() time.Time { return time.Time{} }
func (fi *fileinfo) IsDir() bool        { return fi.isDir }
func (fi *fileinfo) Sys() interface{}   { return nil }

func (fi *fileinfo) Mode() os.FileMode {
	if fi.isDir {
		return os.ModeDir | 0o555
	}
	return 0o444
}
