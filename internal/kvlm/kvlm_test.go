package kvlm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCommit = `tree 29ff16c9c14e2652b22f8b78bb08a5a07930c147
parent 206941306e8a8af65b66eaaaea388a7ae24d49a0
author Thibault Polge <thibault@thb.lt> 1527025023 +0200
committer Thibault Polge <thibault@thb.lt> 1527025044 +0200
gpgsig -----BEGIN PGP SIGNATURE-----
` + " \n" + ` iQIzBAABCAAdFiEExwXquOM8bWb4Q2zVGxM2FxoLkGQFAlsEjZQACgkQGxM2FxoL
 kGQdcBAAqPP+ln4nGDd2gETXjvOpOxLzIMEw4A9gU6CzWzm3c=
 =lgTX
 -----END PGP SIGNATURE-----

Create first draft
`

func TestParseThenSerializeRoundTrips(t *testing.T) {
	k, err := Parse([]byte(sampleCommit))
	require.NoError(t, err)

	tree, ok := k.Get("tree")
	require.True(t, ok)
	assert.Equal(t, "29ff16c9c14e2652b22f8b78bb08a5a07930c147", tree)

	parent, ok := k.Get("parent")
	require.True(t, ok)
	assert.Equal(t, "206941306e8a8af65b66eaaaea388a7ae24d49a0", parent)

	sig, ok := k.Get("gpgsig")
	require.True(t, ok)
	assert.Contains(t, sig, "BEGIN PGP SIGNATURE")
	assert.Contains(t, sig, "\n")

	assert.Equal(t, []byte("Create first draft\n"), k.Message())

	assert.Equal(t, []byte(sampleCommit), k.Serialize())
}

func TestSetPreservesKeyOrderAndRepeatedValues(t *testing.T) {
	k := New([]byte("message body\n"))
	k.Set("parent", []byte("aaa"))
	k.Set("parent", []byte("bbb"))
	k.Set("tree", []byte("ccc"))

	assert.Equal(t, []string{"aaa", "bbb"}, k.All("parent"))
	first, ok := k.Get("parent")
	require.True(t, ok)
	assert.Equal(t, "aaa", first)

	out := k.Serialize()
	assert.Contains(t, string(out), "parent aaa\nparent bbb\ntree ccc\n\nmessage body\n")
}

func TestParseFoldsContinuationLines(t *testing.T) {
	raw := "key line one\n line two\n\nmsg\n"
	k, err := Parse([]byte(raw))
	require.NoError(t, err)
	v, ok := k.Get("key")
	require.True(t, ok)
	assert.Equal(t, "line one\nline two", v)
}

func TestGetMissingKey(t *testing.T) {
	k := New([]byte("hi\n"))
	_, ok := k.Get("nope")
	assert.False(t, ok)
	assert.Nil(t, k.All("nope"))
}
