package objstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyag-go/wyag/internal/repository"
)

func TestWriteIsIdempotentAndReadRoundTrips(t *testing.T) {
	repo, err := repository.Init(t.TempDir())
	require.NoError(t, err)
	store, err := NewStore(repo)
	require.NoError(t, err)

	sha1, err := store.Write(KindBlob, []byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a", sha1)

	sha2, err := store.Write(KindBlob, []byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, sha1, sha2)

	raw, err := store.Read(sha1)
	require.NoError(t, err)
	assert.Equal(t, KindBlob, raw.Kind)
	assert.Equal(t, []byte("hello\n"), raw.Payload)
}

func TestReadUnknownShaFails(t *testing.T) {
	repo, err := repository.Init(t.TempDir())
	require.NoError(t, err)
	store, err := NewStore(repo)
	require.NoError(t, err)

	_, err = store.Read("0000000000000000000000000000000000000a")
	assert.Error(t, err)
}

func TestHashOnlyStoreDoesNotTouchDisk(t *testing.T) {
	store, err := NewStore(nil)
	require.NoError(t, err)

	sha, err := store.Write(KindBlob, []byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a", sha)

	_, err = store.Read(sha)
	assert.Error(t, err)
}

func TestShardPathSplitsPrefix(t *testing.T) {
	prefix, rest := ShardPath("ce013625030ba8dba906f756967f9e9ca394464a")
	assert.Equal(t, "ce", prefix)
	assert.Equal(t, "013625030ba8dba906f756967f9e9ca394464a", rest)
}

func TestRawString(t *testing.T) {
	r := &Raw{Kind: KindBlob, Payload: []byte("abc")}
	assert.Equal(t, "blob 3", r.String())
}
