package dbfile

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/thanhfphan/codecrafters-sqlite-go/internal/dberr"
)

// HeaderSize is the length of the database header at the start of page 1.
const HeaderSize = 100

var (
	SQLiteSignature = [16]byte{83, 81, 76, 105, 116, 101, 32, 102, 111, 114, 109, 97, 116, 32, 51, 0} // `SQLite format 3\000`
)

// Text encodings stored at offset 56.
const (
	EncodingUTF8    uint32 = 1
	EncodingUTF16LE uint32 = 2
	EncodingUTF16BE uint32 = 3
)

// Header is the 100-byte database header.
//
// Offset	Size	Description
// 0		16		The header string: "SQLite format 3\000"
// 16		2		The database page size in bytes. Must be a power of two between 512 and 32768 inclusive, or the value 1 representing a page size of 65536.
// 18		1		File format write version. 1 for legacy; 2 for WAL.
// 19		1		File format read version. 1 for legacy; 2 for WAL.
// 20		1		Bytes of unused "reserved" space at the end of each page. Usually 0.
// 21		1		Maximum embedded payload fraction. Must be 64.
// 22		1		Minimum embedded payload fraction. Must be 32.
// 23		1		Leaf payload fraction. Must be 32.
// 24		4		File change counter.
// 28		4		Size of the database file in pages. The "in-header database size".
// 32		4		Page number of the first freelist trunk page.
// 36		4		Total number of freelist pages.
// 40		4		The schema cookie.
// 44		4		The schema format number. Supported schema formats are 1, 2, 3, and 4.
// 48		4		Default page cache size.
// 52		4		The page number of the largest root b-tree page when in auto-vacuum or incremental-vacuum modes, or zero otherwise.
// 56		4		The database text encoding. A value of 1 means UTF-8. A value of 2 means UTF-16le. A value of 3 means UTF-16be.
// 60		4		The "user version" as read and set by the user_version pragma.
// 64		4		True (non-zero) for incremental-vacuum mode. False (zero) otherwise.
// 68		4		The "Application ID" set by PRAGMA application_id.
// 72		20		Reserved for expansion. Must be zero.
// 92		4		The version-valid-for number.
// 96		4		SQLITE_VERSION_NUMBER
type Header struct {
	HeaderTitle        [16]byte
	RawPageSize        uint16
	WriteVersion       uint8
	ReadVersion        uint8
	ReservedSpace      uint8
	MaxPayloadFraction uint8
	MinPayloadFraction uint8
	LeafPayloadFrac    uint8
	ChangeCounter      uint32
	PageCount          uint32 // Size of the database file in pages. The "in-header database size".
	FreelistTrunk      uint32
	FreelistCount      uint32
	SchemaCookie       uint32
	SchemaFormat       uint32
	DefaultCacheSize   uint32
	LargestRootPage    uint32
	TextEncoding       uint32
	UserVersion        uint32
	IncrementalVacuum  uint32
	ApplicationID      uint32
	_                  [20]byte
	VersionValidFor    uint32
	SQLiteVersion      uint32
}

// ParseHeader decodes and validates the first 100 bytes of a database file.
func ParseHeader(raw []byte) (Header, error) {
	if len(raw) < HeaderSize {
		return Header{}, fmt.Errorf("%w: database header needs %d bytes, got %d", dberr.ErrTruncatedInput, HeaderSize, len(raw))
	}

	var header Header
	if err := binary.Read(bytes.NewReader(raw[:HeaderSize]), binary.BigEndian, &header); err != nil {
		return Header{}, fmt.Errorf("parse header got err: %w", err)
	}

	if header.HeaderTitle != SQLiteSignature {
		return Header{}, fmt.Errorf("%w: the file is not SQLite format", dberr.ErrCorrupt)
	}

	size := header.PageSize()
	if size < 512 || size > 65536 || size&(size-1) != 0 {
		return Header{}, fmt.Errorf("%w: invalid page size %d", dberr.ErrCorrupt, header.RawPageSize)
	}
	if header.UsableSize() < 480 {
		return Header{}, fmt.Errorf("%w: %d reserved bytes leave too little of a %d byte page", dberr.ErrCorrupt, header.ReservedSpace, size)
	}

	return header, nil
}

// PageSize returns the page size in bytes. The stored value 1 means 65536.
func (h Header) PageSize() int {
	if h.RawPageSize == 1 {
		return 65536
	}
	return int(h.RawPageSize)
}

// UsableSize is the page size minus the reserved bytes at the end of each page.
func (h Header) UsableSize() int {
	return h.PageSize() - int(h.ReservedSpace)
}

func (h Header) EncodingName() string {
	switch h.TextEncoding {
	case EncodingUTF8:
		return "utf-8"
	case EncodingUTF16LE:
		return "utf-16le"
	case EncodingUTF16BE:
		return "utf-16be"
	}
	return fmt.Sprintf("unknown(%d)", h.TextEncoding)
}
