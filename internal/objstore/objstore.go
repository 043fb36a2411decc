// Package objstore implements the loose object store: the
// <type> SP <len> NUL <payload> envelope, zlib compression, SHA-1
// naming and shard placement, and idempotent loose-object writes.
package objstore

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/wyag-go/wyag/internal/repository"
)

var log = logrus.WithField("component", "objstore")

// Kind is one of the four closed object variants.
type Kind string

const (
	KindBlob   Kind = "blob"
	KindCommit Kind = "commit"
	KindTree   Kind = "tree"
	KindTag    Kind = "tag"
)

var (
	ErrMalformedObject   = errors.New("malformed object")
	ErrUnknownObjectType = errors.New("unknown object type")
)

// Raw is a decoded object: its kind and its payload, prior to dispatch
// into a value type by internal/object.
type Raw struct {
	Kind    Kind
	Payload []byte
}

// Store wraps a Repository with a small decoded-object cache. Objects
// are immutable and content-addressed, so a cache entry keyed by sha
// never needs invalidation.
type Store struct {
	Repo  *repository.Repository
	cache *ristretto.Cache[string, *Raw]
}

// NewStore builds a Store backed by repo. repo may be nil for
// hash-only operation (hash-object without -w).
func NewStore(repo *repository.Repository) (*Store, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, *Raw]{
		NumCounters: 10000,
		MaxCost:     1 << 24, // 16MiB of decoded objects
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "allocate object cache")
	}
	return &Store{Repo: repo, cache: c}, nil
}

// ShardPath returns <prefix>/<rest> for a sha: the first two hex
// digits name the shard directory, the remaining 38 name the file.
func ShardPath(sha string) (prefix, rest string) {
	return sha[0:2], sha[2:]
}

func envelope(kind Kind, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(string(kind))
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(len(payload)))
	buf.WriteByte(0)
	buf.Write(payload)
	return buf.Bytes()
}

// Hash returns the SHA-1 hex digest of kind+payload's envelope, without
// touching disk.
func Hash(kind Kind, payload []byte) string {
	sum := sha1.Sum(envelope(kind, payload))
	return hex.EncodeToString(sum[:])
}

// Write frames (kind, payload), hashes it, and — if repo is non-nil —
// writes the zlib-compressed envelope to its shard path, skipping the
// write entirely if the object already exists: objects are immutable
// once written, so a matching sha means identical content.
func (s *Store) Write(kind Kind, payload []byte) (string, error) {
	env := envelope(kind, payload)
	sum := sha1.Sum(env)
	sha := hex.EncodeToString(sum[:])

	if s.Repo == nil {
		return sha, nil
	}

	prefix, rest := ShardPath(sha)
	path, err := s.Repo.EnsureFileParent(true, "objects", prefix, rest)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil {
		log.WithField("sha", sha).Debug("object already present, skipping write")
		if raw, ok := s.cache.Get(sha); !ok || raw == nil {
			s.cache.Set(sha, &Raw{Kind: kind, Payload: payload}, int64(len(payload)))
		}
		return sha, nil
	} else if !os.IsNotExist(err) {
		return "", errors.WithStack(err)
	}

	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	if _, err := w.Write(env); err != nil {
		return "", errors.WithStack(err)
	}
	if err := w.Close(); err != nil {
		return "", errors.WithStack(err)
	}

	if err := os.WriteFile(path, compressed.Bytes(), 0o444); err != nil {
		return "", errors.WithStack(err)
	}

	s.cache.Set(sha, &Raw{Kind: kind, Payload: payload}, int64(len(payload)))
	log.WithFields(logrus.Fields{"sha": sha, "kind": kind}).Debug("wrote object")
	return sha, nil
}

// Read decodes the loose object named sha: zlib-decompress, parse the
// header, verify the declared length, and return its kind and payload.
func (s *Store) Read(sha string) (*Raw, error) {
	if raw, ok := s.cache.Get(sha); ok {
		return raw, nil
	}

	if s.Repo == nil {
		return nil, errors.Errorf("no repository bound to read object %s", sha)
	}

	prefix, rest := ShardPath(sha)
	path := s.Repo.Path("objects", prefix, rest)

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open object %s", sha)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "zlib header for object %s", sha)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress object %s", sha)
	}

	spaceIdx := bytes.IndexByte(raw, ' ')
	if spaceIdx < 0 {
		return nil, errors.Wrapf(ErrMalformedObject, "%s: no header space", sha)
	}
	nulIdx := bytes.IndexByte(raw[spaceIdx:], 0)
	if nulIdx < 0 {
		return nil, errors.Wrapf(ErrMalformedObject, "%s: no header NUL", sha)
	}
	nulIdx += spaceIdx

	kind := Kind(raw[:spaceIdx])
	declaredLen, convErr := strconv.Atoi(string(raw[spaceIdx+1 : nulIdx]))
	if convErr != nil {
		return nil, errors.Wrapf(ErrMalformedObject, "%s: bad length field", sha)
	}
	payload := raw[nulIdx+1:]
	if declaredLen != len(payload) {
		return nil, errors.Wrapf(ErrMalformedObject, "%s: declared length %d, actual %d", sha, declaredLen, len(payload))
	}

	switch kind {
	case KindBlob, KindCommit, KindTree, KindTag:
	default:
		return nil, errors.Wrapf(ErrUnknownObjectType, "%s: %q", sha, kind)
	}

	result := &Raw{Kind: kind, Payload: payload}
	s.cache.Set(sha, result, int64(len(payload)))
	log.WithFields(logrus.Fields{"sha": sha, "kind": kind}).Debug("read object")
	return result, nil
}

// String renders "<kind> <size>", the form cat-file -s style callers want.
func (r *Raw) String() string {
	return fmt.Sprintf("%s %d", r.Kind, len(r.Payload))
}
