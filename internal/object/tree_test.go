package object

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shaOf(t *testing.T, b byte) string {
	t.Helper()
	buf := make([]byte, 20)
	for i := range buf {
		buf[i] = b
	}
	return hex.EncodeToString(buf)
}

func TestSerializeTreeSortsDirectoriesAfterFilesWithSamePrefix(t *testing.T) {
	entries := []Entry{
		{Mode: "100644", Path: "libs", SHA: shaOf(t, 0x01)},
		{Mode: "040000", Path: "lib", SHA: shaOf(t, 0x02)},
		{Mode: "100644", Path: "lib.go", SHA: shaOf(t, 0x03)},
	}

	encoded := SerializeTree(entries)
	decoded, err := ParseTree(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 3)

	var order []string
	for _, e := range decoded {
		order = append(order, e.Path)
	}
	// "lib.go" < "lib/" (subtree key) < "libs", since '.' < '/' < 's'.
	assert.Equal(t, []string{"lib.go", "lib", "libs"}, order)
}

func TestParseTreeRoundTripsSerializeTree(t *testing.T) {
	entries := []Entry{
		{Mode: "100644", Path: "a.txt", SHA: shaOf(t, 0xaa)},
		{Mode: "040000", Path: "sub", SHA: shaOf(t, 0xbb)},
		{Mode: "120000", Path: "link", SHA: shaOf(t, 0xcc)},
	}
	encoded := SerializeTree(entries)
	decoded, err := ParseTree(encoded)
	require.NoError(t, err)

	reencoded := SerializeTree(decoded)
	assert.Equal(t, encoded, reencoded)
}

func TestParseTreePads5DigitModeTo6(t *testing.T) {
	var raw []byte
	raw = append(raw, []byte("40000 sub")...)
	raw = append(raw, 0)
	shaBytes, _ := hex.DecodeString(shaOf(t, 0x01))
	raw = append(raw, shaBytes...)

	entries, err := ParseTree(raw)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "040000", entries[0].Mode)
}

func TestEntryKind(t *testing.T) {
	cases := []struct {
		mode string
		want EntryKind
	}{
		{"040000", EntrySubtree},
		{"100644", EntryBlob},
		{"100755", EntryBlob},
		{"120000", EntrySymlink},
		{"160000", EntryGitlink},
	}
	for _, c := range cases {
		kind, err := Entry{Mode: c.mode}.Kind()
		require.NoError(t, err)
		assert.Equal(t, c.want, kind)
	}

	_, err := Entry{Mode: "999999"}.Kind()
	assert.Error(t, err)
}
