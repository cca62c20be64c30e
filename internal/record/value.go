package record

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// Kind is the storage class of a decoded column value.
type Kind uint8

const (
	Null Kind = iota
	Integer
	Float
	Text
	Blob
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Text:
		return "text"
	case Blob:
		return "blob"
	}
	return "unknown"
}

// Value is one column of a record. Int is set for Integer, Float for Float,
// Bytes for Text and Blob.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Bytes []byte
}

func NullValue() Value { return Value{Kind: Null} }
func IntValue(i int64) Value { return Value{Kind: Integer, Int: i} }
func FloatValue(f float64) Value { return Value{Kind: Float, Float: f} }
func TextValue(s string) Value { return Value{Kind: Text, Bytes: []byte(s)} }
func BlobValue(b []byte) Value { return Value{Kind: Blob, Bytes: b} }
func (v Value) IsNull() bool { return v.Kind == Null }

// String renders the value the way the sqlite3 shell prints it: NULL is
// empty, text is its UTF-8 bytes.
func (v Value) String() string {
	switch v.Kind {
	case Integer:
		return strconv.FormatInt(v.Int, 10)
	case Float:
		return formatFloat(v.Float)
	case Text, Blob:
		return string(v.Bytes)
	}
	return ""
}

// Equal reports whether the value's text equals literal byte for byte.
// There is no numeric coercion: IntValue(2) equals "2" but not "2.0".
func (v Value) Equal(literal string) bool {
	switch v.Kind {
	case Text, Blob:
		return bytes.Equal(v.Bytes, []byte(literal))
	case Null:
		return false
	}
	return v.String() == literal
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if math.Abs(f) >= 1e15 || (f != 0 && math.Abs(f) < 1e-4) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
