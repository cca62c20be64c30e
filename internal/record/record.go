// Package record decodes the SQLite record format: a header of serial type
// codes followed by the column bytes those codes describe.
//
// https://www.sqlite.org/fileformat.html#record_format
package record

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/thanhfphan/codecrafters-sqlite-go/internal/dberr"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/varint"
)

// maxColumnSize bounds the width derived from a TEXT or BLOB serial type.
// Anything larger cannot fit in a database page chain and is rejected.
const maxColumnSize = math.MaxInt32

// SerialType is the per-column code in a record header.
//
// Serial Type	Content Size	Meaning
// 0			0				NULL
// 1			1				8-bit twos-complement integer
// 2			2				big-endian 16-bit twos-complement integer
// 3			3				big-endian 24-bit twos-complement integer
// 4			4				big-endian 32-bit twos-complement integer
// 5			6				big-endian 48-bit twos-complement integer
// 6			8				big-endian 64-bit twos-complement integer
// 7			8				big-endian IEEE 754-2008 64-bit floating point number
// 8			0				the integer 0
// 9			0				the integer 1
// 10,11		variable		reserved for internal use
// N>=12 even	(N-12)/2		BLOB
// N>=13 odd	(N-13)/2		TEXT
type SerialType uint64

var intWidths = [...]int{0, 1, 2, 3, 4, 6, 8}

// Size returns the number of body bytes a column of this type occupies.
func (t SerialType) Size() (int, error) {
	switch {
	case t <= 6:
		return intWidths[t], nil
	case t == 7:
		return 8, nil
	case t == 8 || t == 9:
		return 0, nil
	case t == 10 || t == 11:
		return 0, &dberr.SerialTypeError{Code: uint64(t)}
	}

	n := (uint64(t) - 12) / 2
	if n > maxColumnSize {
		return 0, &dberr.SerialTypeError{Code: uint64(t)}
	}
	return int(n), nil
}

// Kind returns the storage class of a column of this type.
func (t SerialType) Kind() (Kind, error) {
	switch {
	case t == 0:
		return Null, nil
	case t <= 6, t == 8, t == 9:
		return Integer, nil
	case t == 7:
		return Float, nil
	case t == 10 || t == 11:
		return Null, &dberr.SerialTypeError{Code: uint64(t)}
	case t%2 == 0:
		return Blob, nil
	}
	return Text, nil
}

// Record is one decoded row.
type Record struct {
	HeaderSize  uint64
	SerialTypes []SerialType
	Values      []Value
}

// Column returns the i-th value, or NULL when the record is shorter.
// Rows written before an ALTER TABLE ADD COLUMN are shorter than the table.
func (r Record) Column(i int) Value {
	if i < 0 || i >= len(r.Values) {
		return NullValue()
	}
	return r.Values[i]
}

// Cursor is the byte source a record is decoded from.
type Cursor interface {
	io.Reader
	io.ByteReader
}

// Decode reads one record from c. The header length decides how many serial
// types are read, so records of any width decode. On success c is positioned
// right after the record body.
func Decode(c Cursor) (Record, error) {
	headerSize, n, err := varint.Read(c)
	if err != nil {
		return Record{}, fmt.Errorf("read record header size err: %w", err)
	}
	if headerSize < uint64(n) {
		return Record{}, fmt.Errorf("%w: record header size %d is smaller than its own varint", dberr.ErrCorrupt, headerSize)
	}

	rec := Record{HeaderSize: headerSize}
	remaining := int64(headerSize) - int64(n)
	for remaining > 0 {
		code, m, err := varint.Read(c)
		if err != nil {
			return Record{}, fmt.Errorf("read serial type %d err: %w", len(rec.SerialTypes), err)
		}
		remaining -= int64(m)
		if remaining < 0 {
			return Record{}, fmt.Errorf("%w: serial type %d runs past the record header", dberr.ErrTruncatedInput, len(rec.SerialTypes))
		}
		rec.SerialTypes = append(rec.SerialTypes, SerialType(code))
	}

	rec.Values = make([]Value, len(rec.SerialTypes))
	for i, st := range rec.SerialTypes {
		v, err := readValue(c, st)
		if err != nil {
			return Record{}, fmt.Errorf("read column %d (serial_type: %d) err: %w", i, st, err)
		}
		rec.Values[i] = v
	}

	return rec, nil
}

// DecodeBytes decodes the record at the start of p.
func DecodeBytes(p []byte) (Record, error) {
	return Decode(bytes.NewReader(p))
}

func readValue(c Cursor, st SerialType) (Value, error) {
	kind, err := st.Kind()
	if err != nil {
		return Value{}, err
	}
	size, err := st.Size()
	if err != nil {
		return Value{}, err
	}

	raw, err := readBytes(c, size)
	if err != nil {
		return Value{}, err
	}

	switch kind {
	case Null:
		return NullValue(), nil
	case Integer:
		switch st {
		case 8:
			return IntValue(0), nil
		case 9:
			return IntValue(1), nil
		}
		return IntValue(bigEndianInt(raw)), nil
	case Float:
		return FloatValue(math.Float64frombits(binary.BigEndian.Uint64(raw))), nil
	case Text:
		return Value{Kind: Text, Bytes: raw}, nil
	}
	return BlobValue(raw), nil
}

// readBytes reads exactly size bytes. The buffer only grows as far as the
// source actually delivers, so a corrupt size cannot force a large allocation.
func readBytes(c Cursor, size int) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	if l, ok := c.(interface{ Len() int }); ok {
		if avail := l.Len(); avail < size {
			return nil, fmt.Errorf("%w: need %d bytes, have %d", dberr.ErrTruncatedInput, size, avail)
		}
		raw := make([]byte, size)
		if _, err := io.ReadFull(c, raw); err != nil {
			return nil, err
		}
		return raw, nil
	}

	var buf bytes.Buffer
	n, err := io.CopyN(&buf, c, int64(size))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: need %d bytes, have %d", dberr.ErrTruncatedInput, size, n)
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

// bigEndianInt sign-extends a 1 to 8 byte twos-complement integer.
func bigEndianInt(b []byte) int64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	shift := 64 - 8*uint(len(b))
	return int64(v<<shift) >> shift
}
