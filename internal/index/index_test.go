package index

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyag-go/wyag/internal/repository"
)

func buildEntry(name string, sha [20]byte) []byte {
	var buf bytes.Buffer
	put32 := func(v uint32) { binary.Write(&buf, binary.BigEndian, v) }
	put16 := func(v uint16) { binary.Write(&buf, binary.BigEndian, v) }

	put32(1000)               // ctime seconds
	put32(0)                  // ctime nanoseconds
	put32(1000)               // mtime seconds
	put32(0)                  // mtime nanoseconds
	put32(0)                  // dev
	put32(0)                  // ino
	put16(0)                  // unused
	put16(0b1000000110100100) // mode: regular, perms 0644
	put32(0)                  // uid
	put32(0)                  // gid
	put32(uint32(len("hi")))  // size
	buf.Write(sha[:])

	flags := uint16(len(name)) & 0x0FFF
	put16(flags)
	buf.WriteString(name)
	buf.WriteByte(0)

	for buf.Len()%8 != 0 {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// buildLongNameEntry builds an entry whose name is long enough to
// require the 0xFFF name_length escape: the flags field is pinned to
// 0xFFF regardless of the real name length, and the decoder must scan
// past that offset for the terminating NUL rather than trust flags.
func buildLongNameEntry(name string, sha [20]byte) []byte {
	var buf bytes.Buffer
	put32 := func(v uint32) { binary.Write(&buf, binary.BigEndian, v) }
	put16 := func(v uint16) { binary.Write(&buf, binary.BigEndian, v) }

	put32(1000)
	put32(0)
	put32(1000)
	put32(0)
	put32(0)
	put32(0)
	put16(0)
	put16(0b1000000110100100)
	put32(0)
	put32(0)
	put32(uint32(len(name)))
	buf.Write(sha[:])

	put16(0x0FFF)
	buf.WriteString(name)
	buf.WriteByte(0)

	for buf.Len()%8 != 0 {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

func buildIndex(entries ...[]byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(signature)
	binary.Write(&buf, binary.BigEndian, uint32(2))
	binary.Write(&buf, binary.BigEndian, uint32(len(entries)))
	for _, e := range entries {
		buf.Write(e)
	}
	return buf.Bytes()
}

func TestDecodeSingleEntry(t *testing.T) {
	var sha [20]byte
	for i := range sha {
		sha[i] = byte(i)
	}
	raw := buildIndex(buildEntry("a.txt", sha))

	idx, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), idx.Version)
	require.Len(t, idx.Entries, 1)

	e := idx.Entries[0]
	assert.Equal(t, "a.txt", e.Name)
	assert.Equal(t, ModeRegular, e.ModeType)
	assert.Equal(t, uint16(0o644), e.ModePerms)
	assert.Equal(t, "000102030405060708090a0b0c0d0e0f10111213", e.SHA)
}

func TestDecodeRejectsBadSignature(t *testing.T) {
	raw := buildIndex()
	raw = append([]byte("XXXX"), raw[4:]...)
	_, err := Decode(raw)
	assert.ErrorIs(t, err, ErrMalformedIndex)
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(signature)
	binary.Write(&buf, binary.BigEndian, uint32(3))
	binary.Write(&buf, binary.BigEndian, uint32(0))
	_, err := Decode(buf.Bytes())
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestReadMissingIndexReturnsEmptyV2(t *testing.T) {
	repo, err := repository.Init(t.TempDir())
	require.NoError(t, err)

	idx, err := Read(repo)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), idx.Version)
	assert.Empty(t, idx.Entries)
}

func TestDecodeTwoEntriesAdvancesCorrectly(t *testing.T) {
	var shaA, shaB [20]byte
	shaA[0] = 0xaa
	shaB[0] = 0xbb
	raw := buildIndex(buildEntry("a.txt", shaA), buildEntry("b/c.txt", shaB))

	idx, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, idx.Entries, 2)
	assert.Equal(t, "a.txt", idx.Entries[0].Name)
	assert.Equal(t, "b/c.txt", idx.Entries[1].Name)
}

func TestDecodeLongNameEntryScansPastFFFThreshold(t *testing.T) {
	var shaLong, shaNext [20]byte
	shaLong[0] = 0xcc
	shaNext[0] = 0xdd
	longName := strings.Repeat("a", 4100)
	raw := buildIndex(buildLongNameEntry(longName, shaLong), buildEntry("next.txt", shaNext))

	idx, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, idx.Entries, 2)
	assert.Equal(t, longName, idx.Entries[0].Name)
	assert.Equal(t, "next.txt", idx.Entries[1].Name)
}
