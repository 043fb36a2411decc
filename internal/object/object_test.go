package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyag-go/wyag/internal/kvlm"
	"github.com/wyag-go/wyag/internal/objstore"
)

func TestBlobHashMatchesGitForHello(t *testing.T) {
	blob := NewBlob([]byte("hello\n"))
	sha := objstore.Hash(blob.Kind(), blob.Serialize())
	assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a", sha)
}

func TestDecodeDispatchesOnKind(t *testing.T) {
	blob := NewBlob([]byte("payload"))
	obj, err := Decode(&objstore.Raw{Kind: objstore.KindBlob, Payload: blob.Serialize()})
	require.NoError(t, err)
	got, ok := obj.(*Blob)
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), got.Data)

	k := kvlm.New([]byte("msg\n"))
	k.Set("tree", []byte("deadbeef"))
	commitObj, err := Decode(&objstore.Raw{Kind: objstore.KindCommit, Payload: k.Serialize()})
	require.NoError(t, err)
	commit, ok := commitObj.(*Commit)
	require.True(t, ok)
	tree, ok := commit.Tree()
	require.True(t, ok)
	assert.Equal(t, "deadbeef", tree)

	_, err = Decode(&objstore.Raw{Kind: objstore.Kind("bogus"), Payload: nil})
	assert.Error(t, err)
}

func TestCommitParentsPreservesOrder(t *testing.T) {
	k := kvlm.New([]byte("msg\n"))
	k.Set("parent", []byte("aaa"))
	k.Set("parent", []byte("bbb"))
	commit := NewCommit(k)
	assert.Equal(t, []string{"aaa", "bbb"}, commit.Parents())
}

func TestTagObject(t *testing.T) {
	k := kvlm.New([]byte("release notes\n"))
	k.Set("object", []byte("cafebabe"))
	k.Set("type", []byte("commit"))
	tag := NewTag(k)
	obj, ok := tag.Object()
	require.True(t, ok)
	assert.Equal(t, "cafebabe", obj)
	assert.Equal(t, objstore.KindTag, tag.Kind())
}
