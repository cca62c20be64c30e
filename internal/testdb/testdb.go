// Package testdb assembles small database files byte by byte for tests.
// Pages are laid out the way sqlite writes them: header and cell pointers at
// the front, cell content growing down from the end of the page.
package testdb

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/thanhfphan/codecrafters-sqlite-go/internal/record"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/varint"
)

const DefaultPageSize = 4096

var magic = []byte("SQLite format 3\x00")

// Row is one table row: its rowid and column values.
type Row struct {
	RowID  int64
	Values []record.Value
}

// Builder collects pages and schema entries. Page 1 always holds the schema
// table; every other page is allocated in call order starting at page 2.
type Builder struct {
	pageSize int
	reserved int
	encoding uint32
	pages    [][]byte
	schema   []Row
}

func New(pageSize int) *Builder {
	return &Builder{pageSize: pageSize, encoding: 1}
}

// Reserved sets the bytes left unused at the end of every page.
func (b *Builder) Reserved(n int) *Builder {
	b.reserved = n
	return b
}

// TextEncoding sets the header's text encoding field.
func (b *Builder) TextEncoding(enc uint32) *Builder {
	b.encoding = enc
	return b
}

func (b *Builder) alloc() (uint32, []byte) {
	buf := make([]byte, b.pageSize)
	b.pages = append(b.pages, buf)
	return uint32(len(b.pages) + 1), buf
}

// Leaf adds a leaf table page holding rows and returns its page number.
func (b *Builder) Leaf(rows ...Row) uint32 {
	n, buf := b.alloc()
	cells := make([][]byte, len(rows))
	for i, r := range rows {
		cells[i] = LeafCell(r.RowID, Record(r.Values...))
	}
	b.layout(buf, 0, 0x0d, cells, 0)
	return n
}

// Interior adds an interior table page. keys[i] is the largest rowid under
// children[i]; right is the right-most child.
func (b *Builder) Interior(children []uint32, keys []int64, right uint32) uint32 {
	if len(children) != len(keys) {
		panic(fmt.Sprintf("testdb: %d children for %d keys", len(children), len(keys)))
	}
	n, buf := b.alloc()
	cells := make([][]byte, len(children))
	for i, child := range children {
		cell := binary.BigEndian.AppendUint32(nil, child)
		cells[i] = varint.Append(cell, uint64(keys[i]))
	}
	b.layout(buf, 0, 0x05, cells, right)
	return n
}

// Raw adds a page with the given content, padded to the page size.
func (b *Builder) Raw(content []byte) uint32 {
	n, buf := b.alloc()
	copy(buf, content)
	return n
}

// Table registers a table in the schema.
func (b *Builder) Table(name string, root uint32, sql string) *Builder {
	return b.Schema("table", name, name, root, sql)
}

// Schema registers any schema entry (table, index, view, trigger).
func (b *Builder) Schema(typ, name, tblName string, root uint32, sql string) *Builder {
	b.schema = append(b.schema, Row{
		RowID: int64(len(b.schema) + 1),
		Values: []record.Value{
			record.TextValue(typ),
			record.TextValue(name),
			record.TextValue(tblName),
			record.IntValue(int64(root)),
			record.TextValue(sql),
		},
	})
	return b
}

// Bytes returns the whole file.
func (b *Builder) Bytes() []byte {
	total := len(b.pages) + 1
	out := make([]byte, total*b.pageSize)

	h := out[:100]
	copy(h, magic)
	if b.pageSize == 65536 {
		binary.BigEndian.PutUint16(h[16:], 1)
	} else {
		binary.BigEndian.PutUint16(h[16:], uint16(b.pageSize))
	}
	h[18], h[19] = 1, 1
	h[20] = byte(b.reserved)
	h[21], h[22], h[23] = 64, 32, 32
	binary.BigEndian.PutUint32(h[24:], 1)
	binary.BigEndian.PutUint32(h[28:], uint32(total))
	binary.BigEndian.PutUint32(h[44:], 4)
	binary.BigEndian.PutUint32(h[56:], b.encoding)
	binary.BigEndian.PutUint32(h[92:], 1)
	binary.BigEndian.PutUint32(h[96:], 3045000)

	cells := make([][]byte, len(b.schema))
	for i, r := range b.schema {
		cells[i] = LeafCell(r.RowID, Record(r.Values...))
	}
	b.layout(out[:b.pageSize], 100, 0x0d, cells, 0)

	for i, p := range b.pages {
		copy(out[(i+1)*b.pageSize:], p)
	}
	return out
}

func (b *Builder) layout(buf []byte, headerOff int, kind byte, cells [][]byte, right uint32) {
	headerSize := 8
	if kind == 0x05 || kind == 0x02 {
		headerSize = 12
		binary.BigEndian.PutUint32(buf[headerOff+8:], right)
	}

	buf[headerOff] = kind
	binary.BigEndian.PutUint16(buf[headerOff+3:], uint16(len(cells)))

	content := len(buf) - b.reserved
	ptrs := headerOff + headerSize
	for i, cell := range cells {
		content -= len(cell)
		if content < ptrs+2*len(cells) {
			panic(fmt.Sprintf("testdb: %d cells do not fit in a %d byte page", len(cells), len(buf)))
		}
		copy(buf[content:], cell)
		binary.BigEndian.PutUint16(buf[ptrs+2*i:], uint16(content))
	}
	binary.BigEndian.PutUint16(buf[headerOff+5:], uint16(content))
}

// LeafCell encodes a leaf table cell: payload size, rowid, payload.
func LeafCell(rowID int64, payload []byte) []byte {
	cell := varint.Append(nil, uint64(len(payload)))
	cell = varint.Append(cell, uint64(rowID))
	return append(cell, payload...)
}

// Record encodes values with the smallest serial type for each.
func Record(values ...record.Value) []byte {
	var types, body []byte
	for _, v := range values {
		code, data := encodeValue(v)
		types = varint.Append(types, code)
		body = append(body, data...)
	}

	headerSize := uint64(len(types) + 1)
	for varint.Len(headerSize)+len(types) != int(headerSize) {
		headerSize = uint64(varint.Len(headerSize) + len(types))
	}
	out := varint.Append(nil, headerSize)
	out = append(out, types...)
	return append(out, body...)
}

func encodeValue(v record.Value) (uint64, []byte) {
	switch v.Kind {
	case record.Integer:
		return encodeInt(v.Int)
	case record.Float:
		return 7, binary.BigEndian.AppendUint64(nil, math.Float64bits(v.Float))
	case record.Text:
		return uint64(13 + 2*len(v.Bytes)), v.Bytes
	case record.Blob:
		return uint64(12 + 2*len(v.Bytes)), v.Bytes
	}
	return 0, nil
}

func encodeInt(i int64) (uint64, []byte) {
	switch {
	case i == 0:
		return 8, nil
	case i == 1:
		return 9, nil
	}

	widths := []struct {
		code  uint64
		bytes int
	}{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 6}, {6, 8}}
	for _, w := range widths {
		bits := uint(8 * w.bytes)
		if w.bytes == 8 || (i >= -(1<<(bits-1)) && i < 1<<(bits-1)) {
			full := binary.BigEndian.AppendUint64(nil, uint64(i))
			return w.code, full[8-w.bytes:]
		}
	}
	return 6, binary.BigEndian.AppendUint64(nil, uint64(i))
}

// Text and Int are shorthands for building rows.
func Text(s string) record.Value { return record.TextValue(s) }
func Int(i int64) record.Value { return record.IntValue(i) }
func Null() record.Value { return record.NullValue() }
