// Package varint implements the base-128 variable-length integer encoding used
// by the SQLite file format (https://www.sqlite.org/fileformat.html#varint).
//
// Each byte contributes its low 7 bits, most significant group first, and has
// its high bit set when another byte follows. Decoding runs until a byte with
// a clear high bit or the end of the input; the length is not capped. Groups
// beyond the low 64 bits are shifted out.
package varint

import (
	"errors"
	"fmt"
	"io"

	"github.com/thanhfphan/codecrafters-sqlite-go/internal/dberr"
)

// MaxLen is the longest encoding Put produces for a 64-bit value.
const MaxLen = 10

const (
	maskContinuation  = 0b1000_0000
	maskLastSevenBits = 0b0111_1111
)

// Read decodes one varint from r and returns the value and the number of
// bytes consumed.
func Read(r io.ByteReader) (uint64, int, error) {
	var v uint64
	for n := 0; ; n++ {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, n, fmt.Errorf("%w: varint ends after %d bytes", dberr.ErrTruncatedInput, n)
			}
			return 0, n, fmt.Errorf("read varint err: %w", err)
		}

		v = v<<7 | uint64(b&maskLastSevenBits)
		if b&maskContinuation == 0 {
			return v, n + 1, nil
		}
	}
}

// Decode decodes one varint from the start of p.
func Decode(p []byte) (uint64, int, error) {
	var v uint64
	for i, b := range p {
		v = v<<7 | uint64(b&maskLastSevenBits)
		if b&maskContinuation == 0 {
			return v, i + 1, nil
		}
	}
	return 0, len(p), fmt.Errorf("%w: varint ends after %d bytes", dberr.ErrTruncatedInput, len(p))
}

// Put encodes v into p, which must hold at least Len(v) bytes, and returns
// the number of bytes written.
func Put(p []byte, v uint64) int {
	n := Len(v)
	for i := n - 1; i >= 0; i-- {
		b := byte(v & maskLastSevenBits)
		if i < n-1 {
			b |= maskContinuation
		}
		p[i] = b
		v >>= 7
	}
	return n
}

// Append appends the encoding of v to dst.
func Append(dst []byte, v uint64) []byte {
	var buf [MaxLen]byte
	n := Put(buf[:], v)
	return append(dst, buf[:n]...)
}

// Len returns the number of bytes needed to encode v.
func Len(v uint64) int {
	n := 1
	for v >>= 7; v > 0; v >>= 7 {
		n++
	}
	return n
}
