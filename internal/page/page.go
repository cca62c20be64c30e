// Package page reads b-tree pages out of a database file: the page header,
// the cell pointer array, and the cells the pointers lead to.
package page

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/thanhfphan/codecrafters-sqlite-go/internal/dberr"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/logging"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/varint"
)

// FileHeaderSize is the length of the database header that precedes page 1's
// b-tree header.
const FileHeaderSize = 100

const (
	headerSizeLeaf     = 8
	headerSizeInterior = 12
)

// Kind is the b-tree page type flag at offset 0 of the page header.
type Kind uint8

const (
	KindInteriorIndex Kind = 0x02
	KindInteriorTable Kind = 0x05
	KindLeafIndex     Kind = 0x0a
	KindLeafTable     Kind = 0x0d
)

func (k Kind) String() string {
	switch k {
	case KindInteriorIndex:
		return "interior index"
	case KindInteriorTable:
		return "interior table"
	case KindLeafIndex:
		return "leaf index"
	case KindLeafTable:
		return "leaf table"
	}
	return fmt.Sprintf("unknown(0x%02x)", uint8(k))
}

func (k Kind) valid() bool {
	return k == KindInteriorIndex || k == KindInteriorTable || k == KindLeafIndex || k == KindLeafTable
}

// IsLeaf reports whether pages of this kind hold records rather than child pointers.
func (k Kind) IsLeaf() bool {
	return k == KindLeafIndex || k == KindLeafTable
}

// The b-tree page header is 8 bytes in size for leaf pages and 12 bytes for interior pages
// Offset	Size	Description
// 0		1		The one-byte flag at offset 0 indicating the b-tree page type.
// 1		2		The start of the first freeblock on the page, or zero if there are no freeblocks.
// 3		2		The number of cells on the page.
// 5		2		The start of the cell content area. A zero value is interpreted as 65536.
// 7		1		The number of fragmented free bytes within the cell content area.
// 8		4		The right-most pointer. Interior b-tree pages only.
type rawHeader struct {
	Type             uint8
	StartFreeBlock   uint16
	NumberOfCells    uint16
	StartContentArea uint16
	FragmentedBytes  uint8
}

// Header is a parsed b-tree page header.
type Header struct {
	Kind             Kind
	StartFreeBlock   uint16
	NumberOfCells    uint16
	StartContentArea uint16
	FragmentedBytes  uint8
	RightMostPointer uint32 // interior pages only
}

// Size is the header length in bytes: 8 for leaves, 12 for interior pages.
func (h Header) Size() int {
	if h.Kind.IsLeaf() {
		return headerSizeLeaf
	}
	return headerSizeInterior
}

// Page is one page of the file with its header and cell pointers decoded.
// Cell pointers are offsets from the start of the page, page 1 included.
type Page struct {
	Number       uint32
	Data         []byte
	Header       Header
	CellPointers []uint16

	usableSize int
}

// Parse decodes the header and cell pointer array of page n from its bytes.
func Parse(n uint32, data []byte, usableSize int) (*Page, error) {
	offset := 0
	if n == 1 {
		// first page skip the DB header
		offset = FileHeaderSize
	}
	if len(data) < offset+headerSizeLeaf {
		return nil, fmt.Errorf("%w: page %d has %d bytes, no room for a header", dberr.ErrTruncatedInput, n, len(data))
	}

	var raw rawHeader
	if err := binary.Read(bytes.NewReader(data[offset:offset+headerSizeLeaf]), binary.BigEndian, &raw); err != nil {
		return nil, fmt.Errorf("parse page header err: %w", err)
	}

	h := Header{
		Kind:             Kind(raw.Type),
		StartFreeBlock:   raw.StartFreeBlock,
		NumberOfCells:    raw.NumberOfCells,
		StartContentArea: raw.StartContentArea,
		FragmentedBytes:  raw.FragmentedBytes,
	}
	if !h.Kind.valid() {
		return nil, fmt.Errorf("%w: page %d has invalid page type 0x%02x", dberr.ErrCorrupt, n, raw.Type)
	}
	if !h.Kind.IsLeaf() {
		if len(data) < offset+headerSizeInterior {
			return nil, fmt.Errorf("%w: interior page %d header cut short", dberr.ErrTruncatedInput, n)
		}
		h.RightMostPointer = binary.BigEndian.Uint32(data[offset+headerSizeLeaf:])
	}

	start := offset + h.Size()
	end := start + 2*int(h.NumberOfCells)
	if end > len(data) {
		return nil, fmt.Errorf("%w: page %d cell pointer array needs %d bytes, page has %d", dberr.ErrTruncatedInput, n, end, len(data))
	}
	pointers := make([]uint16, h.NumberOfCells)
	for i := range pointers {
		pointers[i] = binary.BigEndian.Uint16(data[start+2*i:])
	}

	return &Page{
		Number:       n,
		Data:         data,
		Header:       h,
		CellPointers: pointers,
		usableSize:   usableSize,
	}, nil
}

// Reader fetches pages from a byte-range source.
type Reader struct {
	src        io.ReaderAt
	pageSize   int
	usableSize int
}

// NewReader returns a Reader over src. usableSize is the page size minus the
// reserved bytes at the end of each page.
func NewReader(src io.ReaderAt, pageSize, usableSize int) *Reader {
	if usableSize <= 0 || usableSize > pageSize {
		usableSize = pageSize
	}
	return &Reader{src: src, pageSize: pageSize, usableSize: usableSize}
}

func (r *Reader) PageSize() int {
	return r.pageSize
}

// Read fetches page n (1-based) and parses its header and cell pointers.
func (r *Reader) Read(n uint32) (*Page, error) {
	if n == 0 {
		return nil, fmt.Errorf("%w: page number 0", dberr.ErrCorrupt)
	}

	data := make([]byte, r.pageSize)
	off := int64(n-1) * int64(r.pageSize)
	got, err := r.src.ReadAt(data, off)
	if got < len(data) {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: page %d: read %d of %d bytes", dberr.ErrTruncatedInput, n, got, len(data))
		}
		return nil, fmt.Errorf("read page %d err: %w", n, err)
	}

	p, err := Parse(n, data, r.usableSize)
	if err != nil {
		return nil, err
	}
	logging.PageRead(n, p.Header.Kind.String(), len(p.CellPointers))
	return p, nil
}

// ReadHeader returns the cell count and cell pointers of page n.
func (r *Reader) ReadHeader(n uint32) (int, []uint16, error) {
	p, err := r.Read(n)
	if err != nil {
		return 0, nil, err
	}
	return int(p.Header.NumberOfCells), p.CellPointers, nil
}

// LeafCell is a table leaf cell: payload size, rowid, then the record.
type LeafCell struct {
	RowID       int64
	PayloadSize uint64
	Payload     []byte
}

// InteriorCell is a table interior cell: the left child page and the largest
// rowid found under it.
type InteriorCell struct {
	LeftChild uint32
	RowID     int64
}

func (p *Page) cellOffset(i int) (int, error) {
	if i < 0 || i >= len(p.CellPointers) {
		return 0, fmt.Errorf("cell index %d out of range on page %d (%d cells)", i, p.Number, len(p.CellPointers))
	}
	off := int(p.CellPointers[i])
	if off >= len(p.Data) {
		return 0, fmt.Errorf("%w: cell %d on page %d points past the page (offset %d)", dberr.ErrCorrupt, i, p.Number, off)
	}
	return off, nil
}

// LeafCell parses the i-th cell of a leaf table page.
func (p *Page) LeafCell(i int) (LeafCell, error) {
	if p.Header.Kind != KindLeafTable {
		return LeafCell{}, fmt.Errorf("%w: page %d is a %s page, not a leaf table page", dberr.ErrCorrupt, p.Number, p.Header.Kind)
	}
	off, err := p.cellOffset(i)
	if err != nil {
		return LeafCell{}, err
	}

	payloadSize, n, err := varint.Decode(p.Data[off:])
	if err != nil {
		return LeafCell{}, fmt.Errorf("parse number of bytes of payload err: %w", err)
	}
	off += n

	rowID, n, err := varint.Decode(p.Data[off:])
	if err != nil {
		return LeafCell{}, fmt.Errorf("parse row_id err: %w", err)
	}
	off += n

	maxLocal := uint64(p.usableSize - 35)
	if payloadSize > maxLocal {
		return LeafCell{}, &dberr.UnsupportedError{
			Feature: "overflow pages",
			Reason:  fmt.Sprintf("cell %d on page %d carries %d payload bytes, %d fit on the page", i, p.Number, payloadSize, maxLocal),
		}
	}
	end := off + int(payloadSize)
	if end > len(p.Data) {
		return LeafCell{}, fmt.Errorf("%w: cell %d on page %d ends past the page", dberr.ErrTruncatedInput, i, p.Number)
	}

	return LeafCell{
		RowID:       int64(rowID),
		PayloadSize: payloadSize,
		Payload:     p.Data[off:end],
	}, nil
}

// InteriorCell parses the i-th cell of an interior table page.
func (p *Page) InteriorCell(i int) (InteriorCell, error) {
	if p.Header.Kind != KindInteriorTable {
		return InteriorCell{}, fmt.Errorf("%w: page %d is a %s page, not an interior table page", dberr.ErrCorrupt, p.Number, p.Header.Kind)
	}
	off, err := p.cellOffset(i)
	if err != nil {
		return InteriorCell{}, err
	}
	if off+4 > len(p.Data) {
		return InteriorCell{}, fmt.Errorf("%w: cell %d on page %d cut short", dberr.ErrTruncatedInput, i, p.Number)
	}

	child := binary.BigEndian.Uint32(p.Data[off:])
	rowID, _, err := varint.Decode(p.Data[off+4:])
	if err != nil {
		return InteriorCell{}, fmt.Errorf("parse row_id err: %w", err)
	}
	return InteriorCell{LeftChild: child, RowID: int64(rowID)}, nil
}

// Children lists the child pages of an interior table page in key order:
// every cell's left child, then the right-most pointer.
func (p *Page) Children() ([]uint32, error) {
	children := make([]uint32, 0, len(p.CellPointers)+1)
	for i := range p.CellPointers {
		cell, err := p.InteriorCell(i)
		if err != nil {
			return nil, err
		}
		children = append(children, cell.LeftChild)
	}
	return append(children, p.Header.RightMostPointer), nil
}
