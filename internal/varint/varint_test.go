package varint

import (
	"bufio"
	"bytes"
	"errors"
	"testing"

	"github.com/thanhfphan/codecrafters-sqlite-go/internal/dberr"
)

func TestPutDecode(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		want  int // expected length
	}{
		{"1-byte", 0x00, 1},
		{"1-byte max", 0x7f, 1},
		{"2-byte min", 0x80, 2},
		{"2-byte", 0x100, 2},
		{"2-byte max", 0x3fff, 2},
		{"3-byte min", 0x4000, 3},
		{"3-byte max", 0x1fffff, 3},
		{"4-byte min", 0x200000, 4},
		{"5-byte", 0x12345678, 5},
		{"8-byte max", 0xffffffffffffff, 8},
		{"9-byte min", 0x100000000000000, 9},
		{"9-byte max", 0x7fffffffffffffff, 9},
		{"10-byte min", 0x8000000000000000, 10},
		{"10-byte max", 0xffffffffffffffff, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf [MaxLen]byte
			n := Put(buf[:], tt.value)
			if n != tt.want {
				t.Errorf("Put() length = %d, want %d", n, tt.want)
			}
			if l := Len(tt.value); l != n {
				t.Errorf("Len() = %d, Put() wrote %d", l, n)
			}

			got, m, err := Decode(buf[:n])
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != tt.value {
				t.Errorf("Decode() = %#x, want %#x", got, tt.value)
			}
			if m != n {
				t.Errorf("Decode() length = %d, want %d", m, n)
			}
		})
	}
}

func TestRoundTripPowersOfTwo(t *testing.T) {
	for i := uint(0); i < 64; i++ {
		for _, v := range []uint64{1 << i, (1 << i) - 1, (1 << i) + 1} {
			enc := Append(nil, v)

			got, n, err := Read(bytes.NewReader(enc))
			if err != nil {
				t.Fatalf("Read(%#x) error = %v", v, err)
			}
			if got != v || n != len(enc) {
				t.Errorf("Read(%#x) = %#x, %d bytes; want %d bytes", v, got, n, len(enc))
			}
		}
	}
}

func TestReadMostSignificantGroupFirst(t *testing.T) {
	// 0x81 0x00 is 1<<7, not 1.
	got, n, err := Read(bytes.NewReader([]byte{0x81, 0x00}))
	if err != nil {
		t.Fatal(err)
	}
	if got != 128 || n != 2 {
		t.Errorf("Read() = %d, %d; want 128, 2", got, n)
	}
}

func TestReadStopsAtTerminator(t *testing.T) {
	r := bytes.NewReader([]byte{0x05, 0xff, 0xff})
	got, n, err := Read(r)
	if err != nil {
		t.Fatal(err)
	}
	if got != 5 || n != 1 {
		t.Errorf("Read() = %d, %d; want 5, 1", got, n)
	}
	if r.Len() != 2 {
		t.Errorf("Read() consumed %d bytes past the terminator", 2-r.Len())
	}
}

func TestTruncated(t *testing.T) {
	inputs := [][]byte{
		{},
		{0x80},
		{0xff, 0xff, 0x81},
		bytes.Repeat([]byte{0x81}, 9),
		bytes.Repeat([]byte{0xff}, 10),
		bytes.Repeat([]byte{0x80}, 64),
	}

	for _, in := range inputs {
		if _, _, err := Read(bufio.NewReader(bytes.NewReader(in))); !errors.Is(err, dberr.ErrTruncatedInput) {
			t.Errorf("Read(% x) error = %v, want ErrTruncatedInput", in, err)
		}
		if _, n, err := Decode(in); !errors.Is(err, dberr.ErrTruncatedInput) {
			t.Errorf("Decode(% x) error = %v, want ErrTruncatedInput", in, err)
		} else if n != len(in) {
			t.Errorf("Decode(% x) consumed %d bytes, want %d", in, n, len(in))
		}
	}
}

func TestLongEncodingRunsToTerminator(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want uint64
		n    int
	}{
		{"nine groups", append(bytes.Repeat([]byte{0x81}, 8), 0x01), 0x102040810204081, 9},
		{"ten groups", append(bytes.Repeat([]byte{0x81}, 9), 0x01), 0x8102040810204081, 10},
		{"padded zero", append(bytes.Repeat([]byte{0x80}, 11), 0x05), 5, 12},
		{"trailing bytes ignored", []byte{0x81, 0x81, 0x81, 0x81, 0x81, 0x81, 0x81, 0x81, 0x81, 0x01, 0xff}, 0x8102040810204081, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := Decode(tt.in)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != tt.want || n != tt.n {
				t.Errorf("Decode() = %#x, %d; want %#x, %d", got, n, tt.want, tt.n)
			}

			got, n, err = Read(bytes.NewReader(tt.in))
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if got != tt.want || n != tt.n {
				t.Errorf("Read() = %#x, %d; want %#x, %d", got, n, tt.want, tt.n)
			}
		})
	}
}
