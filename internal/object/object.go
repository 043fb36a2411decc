// Package object implements the four object value types (Blob, Commit,
// Tree, Tag) and the packed binary tree codec with its merkle sort
// order.
package object

import (
	"github.com/pkg/errors"

	"github.com/wyag-go/wyag/internal/kvlm"
	"github.com/wyag-go/wyag/internal/objstore"
)

// Object is the closed tagged variant every object kind implements:
// dispatch on Kind at read time, on the concrete type at write time.
type Object interface {
	Kind() objstore.Kind
	Serialize() []byte
}

// Blob's serialized form equals its payload, verbatim.
type Blob struct {
	Data []byte
}

func (*Blob) Kind() objstore.Kind { return objstore.KindBlob }
func (b *Blob) Serialize() []byte { return b.Data }
func NewBlob(data []byte) *Blob   { return &Blob{Data: data} }

// Commit wraps a KVLM payload with the conventional tree/parent/author/
// committer keys.
type Commit struct {
	KVLM *kvlm.KVLM
}

func (*Commit) Kind() objstore.Kind { return objstore.KindCommit }
func (c *Commit) Serialize() []byte { return c.KVLM.Serialize() }

func NewCommit(k *kvlm.KVLM) *Commit { return &Commit{KVLM: k} }

// Tree returns the tree sha this commit points at.
func (c *Commit) Tree() (string, bool) { return c.KVLM.Get("tree") }

// Parents returns every parent sha, in order, possibly empty.
func (c *Commit) Parents() []string { return c.KVLM.All("parent") }

// Tag wraps a KVLM payload with the conventional object/type/tag/tagger
// keys; byte-compatible with Commit, differing only in its Kind.
type Tag struct {
	KVLM *kvlm.KVLM
}

func (*Tag) Kind() objstore.Kind { return objstore.KindTag }
func (t *Tag) Serialize() []byte { return t.KVLM.Serialize() }

func NewTag(k *kvlm.KVLM) *Tag { return &Tag{KVLM: k} }

// Object returns the sha this tag points at.
func (t *Tag) Object() (string, bool) { return t.KVLM.Get("object") }

// Decode dispatches a Raw envelope payload into its concrete value
// type.
func Decode(raw *objstore.Raw) (Object, error) {
	switch raw.Kind {
	case objstore.KindBlob:
		return NewBlob(raw.Payload), nil
	case objstore.KindCommit:
		k, err := kvlm.Parse(raw.Payload)
		if err != nil {
			return nil, errors.Wrap(err, "decode commit")
		}
		return NewCommit(k), nil
	case objstore.KindTag:
		k, err := kvlm.Parse(raw.Payload)
		if err != nil {
			return nil, errors.Wrap(err, "decode tag")
		}
		return NewTag(k), nil
	case objstore.KindTree:
		entries, err := ParseTree(raw.Payload)
		if err != nil {
			return nil, errors.Wrap(err, "decode tree")
		}
		return &Tree{Entries: entries}, nil
	default:
		return nil, errors.Wrapf(objstore.ErrUnknownObjectType, "%q", raw.Kind)
	}
}

// Read reads sha from store and decodes it into its value type.
func Read(store *objstore.Store, sha string) (Object, error) {
	raw, err := store.Read(sha)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

// Write serializes obj and writes it through store, returning its sha.
func Write(store *objstore.Store, obj Object) (string, error) {
	return store.Write(obj.Kind(), obj.Serialize())
}
