package protocol

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Decoder reads wire-format values from a byte buffer.
type Decoder struct {
	buf      []byte
	pos      int
	maxAlloc int
}

// NewDecoder creates a new decoder from the given byte slice using
// DefaultMaxAllocation.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf, maxAlloc: DefaultMaxAllocation}
}

// NewDecoderWithLimits creates a decoder that enforces l.MaxAllocation.
func NewDecoderWithLimits(buf []byte, l Limits) *Decoder {
	l = l.Normalize()
	return &Decoder{buf: buf, maxAlloc: l.MaxAllocation}
}

// Remaining reports how many bytes are left to read.
func (d *Decoder) Remaining() int { return len(d.buf) - d.pos }

// EOF reports whether the whole input has been consumed.
func (d *Decoder) EOF() bool { return d.Remaining() == 0 }

// Position is the offset of the next byte to be read.
func (d *Decoder) Position() int { return d.pos }

// Skip discards n bytes.
func (d *Decoder) Skip(n int) error {
	if n < 0 {
		return ErrTruncatedInput
	}
	_, err := d.take(n)
	return err
}

// Unread moves the cursor back n bytes so they are read again by the next
// call. It is the lookahead used by optional values, which read an int16 and
// splice it back in front of the payload when it is not the absent sentinel.
func (d *Decoder) Unread(n int) error {
	if n < 0 || n > d.pos {
		return ErrValueMismatch
	}
	d.pos -= n
	return nil
}

func (d *Decoder) ReadByte() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBytes returns the next n bytes without copying. The slice aliases the
// input buffer.
func (d *Decoder) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrInvalidLength
	}
	return d.take(n)
}

// ReadBytesCopy reads exactly n bytes into a new slice, enforcing the
// allocation limit. A count beyond the end of the input is truncation even
// when it also exceeds the limit, as for strings.
func (d *Decoder) ReadBytesCopy(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrInvalidLength
	}
	if n > d.Remaining() {
		return nil, ErrTruncatedInput
	}
	if n > d.maxAlloc {
		return nil, ErrAllocationTooLarge
	}
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadRest returns a copy of every unread byte.
func (d *Decoder) ReadRest() ([]byte, error) {
	return d.ReadBytesCopy(d.Remaining())
}

// ReadVarInt reads a VarInt.
func (d *Decoder) ReadVarInt() (int32, error) {
	v, n := DecodeVarInt(d.buf[d.pos:])
	switch n {
	case varIncomplete:
		return 0, ErrTruncatedInput
	case varMalformed:
		return 0, ErrMalformedVarInt
	}
	d.pos += n
	return v, nil
}

// ReadVarLong reads a VarLong.
func (d *Decoder) ReadVarLong() (int64, error) {
	v, n := DecodeVarLong(d.buf[d.pos:])
	switch n {
	case varIncomplete:
		return 0, ErrTruncatedInput
	case varMalformed:
		return 0, ErrMalformedVarInt
	}
	d.pos += n
	return v, nil
}

// ReadString reads a VarInt-prefixed UTF-8 string.
func (d *Decoder) ReadString() (string, error) {
	length, err := d.ReadVarInt()
	if err != nil {
		return "", err
	}
	if length < 0 {
		return "", ErrInvalidLength
	}
	n := int(length)
	if n > d.Remaining() {
		return "", ErrTruncatedInput
	}
	if n > d.maxAlloc {
		return "", ErrAllocationTooLarge
	}
	raw := d.buf[d.pos : d.pos+n]
	if !utf8.Valid(raw) {
		return "", ErrInvalidUTF8
	}
	d.pos += n
	return string(raw), nil
}

// ReadBool accepts only 0x00 and 0x01.
func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadByte()
	if err != nil {
		return false, err
	}
	if b > 1 {
		return false, ErrInvalidBool
	}
	return b == 1, nil
}

// take returns the next n bytes or ErrTruncatedInput, leaving the cursor
// in place on failure.
func (d *Decoder) take(n int) ([]byte, error) {
	if len(d.buf)-d.pos < n {
		return nil, ErrTruncatedInput
	}
	b := d.buf[d.pos : d.pos+n : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *Decoder) ReadInt8() (int8, error) {
	b, err := d.ReadByte()
	return int8(b), err
}

// Fixed-width integers and floats are big-endian.

func (d *Decoder) ReadUint16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *Decoder) ReadUint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *Decoder) ReadUint64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadUint128 reads sixteen big-endian bytes, Hi first.
func (d *Decoder) ReadUint128() (Uint128, error) {
	b, err := d.take(16)
	if err != nil {
		return Uint128{}, err
	}
	return Uint128{Hi: binary.BigEndian.Uint64(b), Lo: binary.BigEndian.Uint64(b[8:])}, nil
}

func (d *Decoder) ReadInt16() (int16, error) {
	v, err := d.ReadUint16()
	return int16(v), err
}

func (d *Decoder) ReadInt32() (int32, error) {
	v, err := d.ReadUint32()
	return int32(v), err
}

func (d *Decoder) ReadInt64() (int64, error) {
	v, err := d.ReadUint64()
	return int64(v), err
}

func (d *Decoder) ReadFloat32() (float32, error) {
	v, err := d.ReadUint32()
	return math.Float32frombits(v), err
}

func (d *Decoder) ReadFloat64() (float64, error) {
	v, err := d.ReadUint64()
	return math.Float64frombits(v), err
}
