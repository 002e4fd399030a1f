// Package protocol implements the primitive layer of the Minecraft-style wire
// format: fixed-width numerics, VarInt/VarLong, strings, and stream framing.
//
// Nothing in this package knows about message shapes. Schema-driven traversal
// lives in package codec; this package only moves bytes in and out of a
// cursor.
//
// # Encoding
//
//   - Fixed-width integers and floats: big-endian, no sign extension.
//   - Booleans: one byte, 0x00 or 0x01. Any other byte is rejected on decode.
//   - VarInt/VarLong: 7 bits per byte, low group first, high bit marks
//     continuation. At most 5 and 10 bytes. Negative values use their
//     two's-complement bit pattern, so -1 always takes the maximum length.
//   - Strings: VarInt byte count followed by UTF-8 bytes.
//   - Uint128: two big-endian uint64 halves, high half first.
//
// # Framing
//
// Every message on a stream is framed as:
//
//	┌──────────────────────────┬─────────────────────────────┐
//	│ Length (VarInt, 1-5 B)   │ Payload (Length bytes)      │
//	└──────────────────────────┴─────────────────────────────┘
//
// FrameBuffer accumulates stream bytes and yields one payload at a time. An
// incomplete frame is not an error: Next reports that no frame is available
// and leaves the buffered bytes exactly as they were.
//
// # Errors
//
// Every failure wraps one of the sentinel errors in errors.go. Use Classify to
// map an error to its ErrorKind.
package protocol
