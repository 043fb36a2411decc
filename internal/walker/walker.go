// Package walker provides a reusable commit history iterator: a
// newest-first walk ordered by commit timestamp, the shape "git log"
// defaults to.
package walker

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/pkg/errors"

	"github.com/wyag-go/wyag/internal/kvlm"
	"github.com/wyag-go/wyag/internal/object"
	"github.com/wyag-go/wyag/internal/objstore"
)

// Commit pairs a decoded commit with the sha it was read from.
type Commit struct {
	SHA    string
	Commit *object.Commit
	When   time.Time
}

// Iterator walks commit ancestry newest-first by committer time,
// visiting each commit exactly once.
type Iterator struct {
	store *objstore.Store
	seen  map[string]bool
	heap  *binaryheap.Heap
}

func byCommitterTimeDesc(a, b interface{}) int {
	ca, cb := a.(*Commit), b.(*Commit)
	if ca.When.Equal(cb.When) {
		return 0
	}
	if ca.When.Before(cb.When) {
		return 1
	}
	return -1
}

// New starts an Iterator at startSHA.
func New(store *objstore.Store, startSHA string) (*Iterator, error) {
	it := &Iterator{
		store: store,
		seen:  make(map[string]bool),
		heap:  binaryheap.NewWith(byCommitterTimeDesc),
	}
	c, err := it.load(startSHA)
	if err != nil {
		return nil, err
	}
	it.heap.Push(c)
	return it, nil
}

func (it *Iterator) load(sha string) (*Commit, error) {
	obj, err := object.Read(it.store, sha)
	if err != nil {
		return nil, errors.Wrapf(err, "load commit %s", sha)
	}
	commit, ok := obj.(*object.Commit)
	if !ok {
		return nil, errors.Errorf("%s is not a commit", sha)
	}
	return &Commit{SHA: sha, Commit: commit, When: committerTime(commit)}, nil
}

// committerTime parses the "committer" header's trailing `<epoch>
// <tz>` fields; commits with a malformed or missing committer line
// sort as the zero time (oldest).
func committerTime(c *object.Commit) time.Time {
	raw, ok := c.KVLM.Get("committer")
	if !ok {
		return time.Time{}
	}
	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return time.Time{}
	}
	epoch, err := strconv.ParseInt(fields[len(fields)-2], 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(epoch, 0).UTC()
}

// Next pops the newest not-yet-seen commit and pushes its unseen
// parents, returning io.EOF once the ancestry is exhausted.
func (it *Iterator) Next() (*Commit, error) {
	for {
		v, ok := it.heap.Pop()
		if !ok {
			return nil, io.EOF
		}
		c := v.(*Commit)
		if it.seen[c.SHA] {
			continue
		}
		it.seen[c.SHA] = true

		for _, parentSHA := range c.Commit.Parents() {
			if it.seen[parentSHA] {
				continue
			}
			parent, err := it.load(parentSHA)
			if err != nil {
				return nil, err
			}
			it.heap.Push(parent)
		}
		return c, nil
	}
}

// GraphvizMessage extracts the commit message's first line, escaped for
// use inside a Graphviz label, matching the original's log_graphviz.
func GraphvizMessage(c *object.Commit) string {
	k := c.KVLM
	msg := firstLine(string(msgOrEmpty(k)))
	msg = strings.ReplaceAll(msg, `\`, `\\`)
	msg = strings.ReplaceAll(msg, `"`, `\"`)
	return msg
}

func msgOrEmpty(k *kvlm.KVLM) []byte {
	return k.Message()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
