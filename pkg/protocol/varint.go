package protocol

const (
	// MaxVarIntLen is the maximum number of bytes a VarInt can occupy.
	MaxVarIntLen = 5

	// MaxVarLongLen is the maximum number of bytes a VarLong can occupy.
	MaxVarLongLen = 10
)

// Sentinel lengths returned by DecodeVarInt and DecodeVarLong.
const (
	varIncomplete = -1
	varMalformed  = -2
)

// VarIntLen returns the number of bytes needed to encode v as a VarInt.
func VarIntLen(v int32) int {
	u := uint32(v)
	n := 1
	for u >= 0x80 {
		n++
		u >>= 7
	}
	return n
}

// VarLongLen returns the number of bytes needed to encode v as a VarLong.
func VarLongLen(v int64) int {
	u := uint64(v)
	n := 1
	for u >= 0x80 {
		n++
		u >>= 7
	}
	return n
}

// EncodeVarInt encodes v into buf and returns the number of bytes written.
// buf must have at least MaxVarIntLen bytes available.
func EncodeVarInt(buf []byte, v int32) int {
	u := uint32(v)
	i := 0
	for u >= 0x80 {
		buf[i] = byte(u) | 0x80
		u >>= 7
		i++
	}
	buf[i] = byte(u)
	return i + 1
}

// EncodeVarLong encodes v into buf and returns the number of bytes written.
// buf must have at least MaxVarLongLen bytes available.
func EncodeVarLong(buf []byte, v int64) int {
	u := uint64(v)
	i := 0
	for u >= 0x80 {
		buf[i] = byte(u) | 0x80
		u >>= 7
		i++
	}
	buf[i] = byte(u)
	return i + 1
}

// AppendVarInt appends the VarInt encoding of v to dst.
func AppendVarInt(dst []byte, v int32) []byte {
	u := uint32(v)
	for u >= 0x80 {
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}

// AppendVarLong appends the VarLong encoding of v to dst.
func AppendVarLong(dst []byte, v int64) []byte {
	u := uint64(v)
	for u >= 0x80 {
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}

// DecodeVarInt decodes a VarInt from the start of buf.
// Returns (value, bytesRead). If bytesRead < 0, decoding failed:
//   - -1: buffer too short (incomplete VarInt)
//   - -2: malformed (5th byte carries more than 4 bits, or no terminator)
func DecodeVarInt(buf []byte) (int32, int) {
	var u uint32
	for i, b := range buf {
		if i == MaxVarIntLen-1 {
			// Only the low 4 bits of the 5th byte fit in 32 bits, and the
			// continuation bit is one of the top 4.
			if b&0xF0 != 0 {
				return 0, varMalformed
			}
			u |= uint32(b) << 28
			return int32(u), i + 1
		}
		u |= uint32(b&0x7F) << (7 * uint(i))
		if b < 0x80 {
			return int32(u), i + 1
		}
	}
	return 0, varIncomplete
}

// DecodeVarLong decodes a VarLong from the start of buf.
// Return values follow DecodeVarInt.
func DecodeVarLong(buf []byte) (int64, int) {
	var u uint64
	for i, b := range buf {
		if i == MaxVarLongLen-1 {
			if b&0xFE != 0 {
				return 0, varMalformed
			}
			u |= uint64(b) << 63
			return int64(u), i + 1
		}
		u |= uint64(b&0x7F) << (7 * uint(i))
		if b < 0x80 {
			return int64(u), i + 1
		}
	}
	return 0, varIncomplete
}
