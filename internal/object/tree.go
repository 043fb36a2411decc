package object

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/wyag-go/wyag/internal/objstore"
)

var ErrMalformedTreeEntry = errors.New("malformed tree entry")

// EntryKind classifies a tree entry by its mode's high-order prefix.
type EntryKind int

const (
	EntrySubtree EntryKind = iota // "04"
	EntryBlob                     // "10" regular file
	EntrySymlink                  // "12" blob payload is link target
	EntryGitlink                  // "16" submodule
)

// Entry is one (mode, path, sha) record in a Tree.
type Entry struct {
	// Mode is the 6-ASCII-octal-digit mode, left-padded from a 5-digit
	// on-disk mode if necessary.
	Mode string
	Path string
	// SHA is the 40-lowercase-hex object id this entry points at.
	SHA string
}

// Kind classifies Mode's high-order prefix.
func (e Entry) Kind() (EntryKind, error) {
	prefix := e.Mode
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	switch prefix {
	case "04":
		return EntrySubtree, nil
	case "10":
		return EntryBlob, nil
	case "12":
		return EntrySymlink, nil
	case "16":
		return EntryGitlink, nil
	default:
		return 0, errors.Errorf("weird tree leaf mode %q", e.Mode)
	}
}

// Tree is a directory snapshot: a sequence of entries, merkle-sorted on
// serialize.
type Tree struct {
	Entries []Entry
}

func (*Tree) Kind() objstore.Kind { return objstore.KindTree }
func (t *Tree) Serialize() []byte { return SerializeTree(t.Entries) }

// sortKey builds the synthetic sort key Git's merkle tree ordering
// uses: the path, with a trailing "/" appended unless the entry is
// mode "10..." (a regular file). This is NOT plain lexicographic
// order on raw paths.
func sortKey(e Entry) string {
	if strings.HasPrefix(e.Mode, "10") {
		return e.Path
	}
	return e.Path + "/"
}

// ParseTree decodes a packed tree payload: repeated
// <mode> SP <path> NUL <sha-raw-20>, with no separator between entries.
func ParseTree(raw []byte) ([]Entry, error) {
	var entries []Entry
	pos := 0
	for pos < len(raw) {
		spaceIdx := bytes.IndexByte(raw[pos:], ' ')
		if spaceIdx < 0 {
			return nil, errors.Wrap(ErrMalformedTreeEntry, "missing mode separator")
		}
		spaceIdx += pos
		modeLen := spaceIdx - pos
		if modeLen != 5 && modeLen != 6 {
			return nil, errors.Wrapf(ErrMalformedTreeEntry, "mode length %d", modeLen)
		}
		mode := string(raw[pos:spaceIdx])
		if modeLen == 5 {
			mode = "0" + mode
		}

		nulIdx := bytes.IndexByte(raw[spaceIdx:], 0)
		if nulIdx < 0 {
			return nil, errors.Wrap(ErrMalformedTreeEntry, "missing path terminator")
		}
		nulIdx += spaceIdx
		path := string(raw[spaceIdx+1 : nulIdx])

		if nulIdx+21 > len(raw) {
			return nil, errors.Wrap(ErrMalformedTreeEntry, "truncated sha")
		}
		sha := hex.EncodeToString(raw[nulIdx+1 : nulIdx+21])

		entries = append(entries, Entry{Mode: mode, Path: path, SHA: sha})
		pos = nulIdx + 21
	}
	return entries, nil
}

// SerializeTree sorts entries by the merkle sort key and emits each as
// <mode> SP <path> NUL <sha-raw-20>. The sort is stable and total.
func SerializeTree(entries []Entry) []byte {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sortKey(sorted[i]) < sortKey(sorted[j])
	})

	var buf bytes.Buffer
	for _, e := range sorted {
		buf.WriteString(e.Mode)
		buf.WriteByte(' ')
		buf.WriteString(e.Path)
		buf.WriteByte(0)
		raw, err := hex.DecodeString(e.SHA)
		if err != nil || len(raw) != 20 {
			panic(fmt.Sprintf("object: invalid entry sha %q", e.SHA))
		}
		buf.Write(raw)
	}
	return buf.Bytes()
}
