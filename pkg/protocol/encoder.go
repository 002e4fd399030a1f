package protocol

import (
	"encoding/binary"
	"math"
)

// Encoder appends wire-format values to an internal buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty Encoder sized for a typical packet.
func NewEncoder() *Encoder { return NewEncoderWithCap(256) }

// NewEncoderWithCap returns an empty Encoder with room for n bytes.
func NewEncoderWithCap(n int) *Encoder {
	return &Encoder{buf: make([]byte, 0, n)}
}

// Reset empties the encoder, keeping the underlying buffer.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Bytes returns the buffer. It aliases the Encoder's storage and is only
// valid until the next write or Reset.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len reports how many bytes have been written.
func (e *Encoder) Len() int { return len(e.buf) }

// Truncate discards everything written after the first n bytes.
func (e *Encoder) Truncate(n int) {
	e.buf = e.buf[:n]
}

// WriteByte appends b. Appending cannot fail, so unlike io.ByteWriter
// there is no error.
func (e *Encoder) WriteByte(b byte) { e.buf = append(e.buf, b) }

// WriteBytes appends b unchanged, with no length prefix.
func (e *Encoder) WriteBytes(b []byte) { e.buf = append(e.buf, b...) }

// WriteVarInt appends a VarInt.
func (e *Encoder) WriteVarInt(v int32) {
	e.buf = AppendVarInt(e.buf, v)
}

// WriteVarLong appends a VarLong.
func (e *Encoder) WriteVarLong(v int64) {
	e.buf = AppendVarLong(e.buf, v)
}

// WriteString appends a VarInt byte count followed by the UTF-8 bytes.
// Strings longer than math.MaxInt32 bytes cannot be represented and are
// rejected with ErrLengthOverflow.
func (e *Encoder) WriteString(s string) error {
	if len(s) > math.MaxInt32 {
		return ErrLengthOverflow
	}
	e.WriteVarInt(int32(len(s)))
	e.buf = append(e.buf, s...)
	return nil
}

// WriteBool appends 0x01 for true and 0x00 for false.
func (e *Encoder) WriteBool(b bool) {
	var v byte
	if b {
		v = 1
	}
	e.buf = append(e.buf, v)
}

// WriteInt8 appends v as one byte.
func (e *Encoder) WriteInt8(v int8) { e.buf = append(e.buf, byte(v)) }

// Fixed-width integers and floats are big-endian.

func (e *Encoder) WriteUint16(v uint16) { e.buf = binary.BigEndian.AppendUint16(e.buf, v) }
func (e *Encoder) WriteUint32(v uint32) { e.buf = binary.BigEndian.AppendUint32(e.buf, v) }
func (e *Encoder) WriteUint64(v uint64) { e.buf = binary.BigEndian.AppendUint64(e.buf, v) }
func (e *Encoder) WriteInt16(v int16)   { e.WriteUint16(uint16(v)) }
func (e *Encoder) WriteInt32(v int32)   { e.WriteUint32(uint32(v)) }
func (e *Encoder) WriteInt64(v int64)   { e.WriteUint64(uint64(v)) }

func (e *Encoder) WriteFloat32(v float32) { e.WriteUint32(math.Float32bits(v)) }
func (e *Encoder) WriteFloat64(v float64) { e.WriteUint64(math.Float64bits(v)) }

// WriteUint128 appends v as sixteen big-endian bytes, Hi first.
func (e *Encoder) WriteUint128(v Uint128) {
	e.WriteUint64(v.Hi)
	e.WriteUint64(v.Lo)
}
