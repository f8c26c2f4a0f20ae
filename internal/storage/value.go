package storage

import (
	"encoding/binary"
	"io"
	"strings"
)

// ValueKind identifies the concrete shape of a Value. The byte values
// are the on-disk tags.
type ValueKind byte

const (
	KindInt    ValueKind = 1
	KindBigInt ValueKind = 2
	KindText   ValueKind = 3
)

const (
	kindSize    = 1
	intSize     = 4
	bigIntSize  = 8
	textLenSize = 2
)

// Value is a single typed value: a 32-bit integer, a 64-bit integer,
// or text with a declared capacity. Text payloads always occupy Cap
// bytes on disk so their encoded size is fixed by the capacity, not
// the content.
type Value struct {
	Kind ValueKind
	Int  int32
	Big  int64
	Text string
	Cap  uint16
}

// IntValue creates a 32-bit integer value.
func IntValue(v int32) Value {
	return Value{Kind: KindInt, Int: v}
}

// BigIntValue creates a 64-bit integer value.
func BigIntValue(v int64) Value {
	return Value{Kind: KindBigInt, Big: v}
}

// TextValue creates a text value with the given capacity.
func TextValue(s string, size uint16) Value {
	return Value{Kind: KindText, Text: s, Cap: size}
}

// Size returns the number of bytes v occupies on disk.
func (v Value) Size() int {
	switch v.Kind {
	case KindInt:
		return kindSize + intSize
	case KindBigInt:
		return kindSize + bigIntSize
	case KindText:
		return kindSize + 2*textLenSize + int(v.Cap)
	}
	return 0
}

// Compare orders values by kind tag, then by natural order within the
// kind. Text capacity does not participate: two text values with the
// same bytes compare equal regardless of capacity.
func (v Value) Compare(o Value) int {
	if v.Kind != o.Kind {
		if v.Kind < o.Kind {
			return -1
		}
		return 1
	}
	switch v.Kind {
	case KindInt:
		switch {
		case v.Int < o.Int:
			return -1
		case v.Int > o.Int:
			return 1
		}
		return 0
	case KindBigInt:
		switch {
		case v.Big < o.Big:
			return -1
		case v.Big > o.Big:
			return 1
		}
		return 0
	default:
		return strings.Compare(v.Text, o.Text)
	}
}

// Write encodes v at the start of buf and returns the number of bytes
// written. The unused tail of a text capacity slot is zeroed.
func (v Value) Write(buf []byte) (int, error) {
	size := v.Size()
	if len(buf) < size {
		return 0, io.ErrUnexpectedEOF
	}
	buf[0] = byte(v.Kind)
	switch v.Kind {
	case KindInt:
		binary.BigEndian.PutUint32(buf[kindSize:], uint32(v.Int))
	case KindBigInt:
		binary.BigEndian.PutUint64(buf[kindSize:], uint64(v.Big))
	case KindText:
		if len(v.Text) > int(v.Cap) {
			return 0, ErrInvalidInput
		}
		binary.BigEndian.PutUint16(buf[kindSize:], v.Cap)
		binary.BigEndian.PutUint16(buf[kindSize+textLenSize:], uint16(len(v.Text)))
		n := copy(buf[kindSize+2*textLenSize:], v.Text)
		for i := kindSize + 2*textLenSize + n; i < size; i++ {
			buf[i] = 0
		}
	default:
		return 0, ErrEncoding
	}
	return size, nil
}

// ReadValue decodes a value from the start of buf and returns it along
// with the number of bytes consumed.
func ReadValue(buf []byte) (Value, int, error) {
	if len(buf) < kindSize {
		return Value{}, 0, io.ErrUnexpectedEOF
	}
	switch ValueKind(buf[0]) {
	case KindInt:
		if len(buf) < kindSize+intSize {
			return Value{}, 0, io.ErrUnexpectedEOF
		}
		v := int32(binary.BigEndian.Uint32(buf[kindSize:]))
		return IntValue(v), kindSize + intSize, nil
	case KindBigInt:
		if len(buf) < kindSize+bigIntSize {
			return Value{}, 0, io.ErrUnexpectedEOF
		}
		v := int64(binary.BigEndian.Uint64(buf[kindSize:]))
		return BigIntValue(v), kindSize + bigIntSize, nil
	case KindText:
		if len(buf) < kindSize+2*textLenSize {
			return Value{}, 0, io.ErrUnexpectedEOF
		}
		size := binary.BigEndian.Uint16(buf[kindSize:])
		length := binary.BigEndian.Uint16(buf[kindSize+textLenSize:])
		if length > size {
			return Value{}, 0, ErrEncoding
		}
		total := kindSize + 2*textLenSize + int(size)
		if len(buf) < total {
			return Value{}, 0, io.ErrUnexpectedEOF
		}
		start := kindSize + 2*textLenSize
		return TextValue(string(buf[start:start+int(length)]), size), total, nil
	}
	return Value{}, 0, ErrEncoding
}
