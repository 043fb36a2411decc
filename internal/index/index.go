// Package index implements the binary DIRC v2 staging area file
// reader.
package index

import (
	"encoding/binary"
	"encoding/hex"
	"os"

	"github.com/pkg/errors"

	"github.com/wyag-go/wyag/internal/repository"
)

// ModeType classifies an Entry's mode_type field.
type ModeType uint16

const (
	ModeRegular ModeType = 0b1000
	ModeSymlink ModeType = 0b1010
	ModeGitlink ModeType = 0b1110
)

// Timestamp is a (seconds, nanoseconds) pair, matching the on-disk
// ctime/mtime representation.
type Timestamp struct {
	Seconds     uint32
	Nanoseconds uint32
}

// Entry is one staged-file record.
type Entry struct {
	CTime Timestamp
	MTime Timestamp
	Dev   uint32
	Ino   uint32

	ModeType  ModeType
	ModePerms uint16

	UID  uint32
	GID  uint32
	Size uint32
	SHA  string // 40 lowercase hex chars

	AssumeValid bool
	Stage       uint8 // 2 bits, 0..3

	Name string
}

// Index is the decoded staging area: a version and an ordered list of
// entries.
type Index struct {
	Version uint32
	Entries []Entry
}

var ErrUnsupportedVersion = errors.New("unsupported index version")
var ErrMalformedIndex = errors.New("malformed index")

const signature = "DIRC"

// Read decodes .git/index. A missing index file is not an error: it
// returns an empty version-2 index.
func Read(repo *repository.Repository) (*Index, error) {
	path := repo.Path("index")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Index{Version: 2}, nil
		}
		return nil, errors.Wrapf(err, "read index %q", path)
	}
	return Decode(raw)
}

// Decode parses the raw bytes of a DIRC v2 index file.
func Decode(raw []byte) (*Index, error) {
	if len(raw) < 12 {
		return nil, errors.Wrap(ErrMalformedIndex, "header too short")
	}
	if string(raw[0:4]) != signature {
		return nil, errors.Wrapf(ErrMalformedIndex, "bad signature %q", raw[0:4])
	}
	version := binary.BigEndian.Uint32(raw[4:8])
	if version != 2 {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", version)
	}
	count := binary.BigEndian.Uint32(raw[8:12])

	content := raw[12:]
	idx := 0
	entries := make([]Entry, 0, count)

	for i := uint32(0); i < count; i++ {
		if idx+62 > len(content) {
			return nil, errors.Wrapf(ErrMalformedIndex, "truncated entry %d header", i)
		}

		e := Entry{}
		e.CTime = Timestamp{
			Seconds:     binary.BigEndian.Uint32(content[idx : idx+4]),
			Nanoseconds: binary.BigEndian.Uint32(content[idx+4 : idx+8]),
		}
		e.MTime = Timestamp{
			Seconds:     binary.BigEndian.Uint32(content[idx+8 : idx+12]),
			Nanoseconds: binary.BigEndian.Uint32(content[idx+12 : idx+16]),
		}
		e.Dev = binary.BigEndian.Uint32(content[idx+16 : idx+20])
		e.Ino = binary.BigEndian.Uint32(content[idx+20 : idx+24])

		unused := binary.BigEndian.Uint16(content[idx+24 : idx+26])
		if unused != 0 {
			return nil, errors.Wrapf(ErrMalformedIndex, "entry %d: nonzero unused field", i)
		}

		mode := binary.BigEndian.Uint16(content[idx+26 : idx+28])
		modeType := ModeType(mode >> 12)
		switch modeType {
		case ModeRegular, ModeSymlink, ModeGitlink:
		default:
			return nil, errors.Wrapf(ErrMalformedIndex, "entry %d: bad mode_type %o", i, modeType)
		}
		e.ModeType = modeType
		e.ModePerms = mode & 0x1FF

		e.UID = binary.BigEndian.Uint32(content[idx+28 : idx+32])
		e.GID = binary.BigEndian.Uint32(content[idx+32 : idx+36])
		e.Size = binary.BigEndian.Uint32(content[idx+36 : idx+40])
		e.SHA = hex.EncodeToString(content[idx+40 : idx+60])

		flags := binary.BigEndian.Uint16(content[idx+60 : idx+62])
		e.AssumeValid = flags&0b1000000000000000 != 0
		extended := flags&0b0100000000000000 != 0
		if extended {
			return nil, errors.Wrapf(ErrMalformedIndex, "entry %d: extended flag set, unsupported", i)
		}
		e.Stage = uint8((flags & 0b0011000000000000) >> 12)
		nameLength := int(flags & 0b0000111111111111)

		idx += 62

		if nameLength < 0xFFF {
			if idx+nameLength >= len(content) || content[idx+nameLength] != 0x00 {
				return nil, errors.Wrapf(ErrMalformedIndex, "entry %d: missing name terminator", i)
			}
			e.Name = string(content[idx : idx+nameLength])
			idx += nameLength + 1
		} else {
			nulOffset := -1
			for j := idx + 0xFFF; j < len(content); j++ {
				if content[j] == 0x00 {
					nulOffset = j
					break
				}
			}
			if nulOffset < 0 {
				return nil, errors.Wrapf(ErrMalformedIndex, "entry %d: unterminated long name", i)
			}
			e.Name = string(content[idx:nulOffset])
			idx = nulOffset + 1
		}

		// Pad to the next multiple of 8 bytes.
		if rem := idx % 8; rem != 0 {
			idx += 8 - rem
		}

		entries = append(entries, e)
	}

	return &Index{Version: version, Entries: entries}, nil
}
