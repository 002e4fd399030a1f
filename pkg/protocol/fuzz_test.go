package protocol

import (
	"bytes"
	"testing"
)

// FuzzDecodeVarInt checks that decoding arbitrary bytes doesn't panic and
// that anything accepted re-encodes to the same bytes.
func FuzzDecodeVarInt(f *testing.F) {
	f.Add([]byte{0x00})
	f.Add([]byte{0x7F})
	f.Add([]byte{0x80, 0x01})
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F})
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x1F})

	f.Fuzz(func(t *testing.T, data []byte) {
		v, n := DecodeVarInt(data)
		if n <= 0 {
			return
		}
		if n > MaxVarIntLen {
			t.Fatalf("consumed %d bytes", n)
		}
		// Non-minimal encodings (e.g. 0x80 0x00) decode fine but do not
		// re-encode byte for byte; only the value must survive.
		back, m := DecodeVarInt(AppendVarInt(nil, v))
		if back != v || m != VarIntLen(v) {
			t.Fatalf("re-encode of %d gave (%d, %d)", v, back, m)
		}
	})
}

// FuzzDecodeVarLong checks that decoding arbitrary bytes doesn't panic.
func FuzzDecodeVarLong(f *testing.F) {
	f.Add([]byte{0x00})
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01})

	f.Fuzz(func(t *testing.T, data []byte) {
		if _, n := DecodeVarLong(data); n > MaxVarLongLen {
			t.Fatalf("consumed %d bytes", n)
		}
	})
}

// FuzzFrameBuffer feeds arbitrary chunks and checks the buffer never loses
// or invents bytes.
func FuzzFrameBuffer(f *testing.F) {
	f.Add(EncodeFrame([]byte("abc")), 1)
	f.Add(append(EncodeFrame(nil), EncodeFrame([]byte{1, 2})...), 2)
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, 3)

	f.Fuzz(func(t *testing.T, data []byte, split int) {
		if split < 0 || split > len(data) {
			split = len(data) / 2
		}
		fb := NewFrameBuffer(1 << 16)
		consumed := 0
		drain := func() {
			for {
				before := fb.Len()
				p, ok, err := fb.Next()
				if err != nil || !ok {
					return
				}
				used := before - fb.Len()
				if used < len(p)+1 {
					t.Fatalf("frame of %d bytes consumed only %d", len(p), used)
				}
				consumed += used
			}
		}
		fb.Write(data[:split])
		drain()
		fb.Write(data[split:])
		drain()
		if consumed+fb.Len() != len(data) {
			t.Fatalf("consumed %d + buffered %d != %d", consumed, fb.Len(), len(data))
		}
		if !bytes.Equal(fb.Buffered(), data[consumed:]) {
			t.Fatal("buffered bytes do not match the unconsumed input")
		}
	})
}

// FuzzReadString checks string decoding doesn't panic.
func FuzzReadString(f *testing.F) {
	f.Add([]byte{0x00})
	f.Add([]byte{0x03, 'a', 'b', 'c'})
	f.Add([]byte{0x7F})

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = NewDecoder(data).ReadString()
	})
}
