package protocol

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestEncodeDecodeVarInt(t *testing.T) {
	tests := []struct {
		name  string
		value int32
		want  []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"one", 1, []byte{0x01}},
		{"max_1byte", 127, []byte{0x7F}},
		{"min_2byte", 128, []byte{0x80, 0x01}},
		{"255", 255, []byte{0xFF, 0x01}},
		{"25565", 25565, []byte{0xDD, 0xC7, 0x01}},
		{"max_3byte", 2097151, []byte{0xFF, 0xFF, 0x7F}},
		{"max_int32", math.MaxInt32, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}},
		{"neg_one", -1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
		{"min_int32", math.MinInt32, []byte{0x80, 0x80, 0x80, 0x80, 0x08}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := make([]byte, MaxVarIntLen)
			n := EncodeVarInt(buf, tc.value)
			if !bytes.Equal(buf[:n], tc.want) {
				t.Fatalf("EncodeVarInt(%d) = %x, want %x", tc.value, buf[:n], tc.want)
			}
			if got := VarIntLen(tc.value); got != n {
				t.Errorf("VarIntLen(%d) = %d, want %d", tc.value, got, n)
			}
			if got := AppendVarInt(nil, tc.value); !bytes.Equal(got, tc.want) {
				t.Errorf("AppendVarInt(%d) = %x, want %x", tc.value, got, tc.want)
			}

			decoded, read := DecodeVarInt(buf[:n])
			if read != n {
				t.Errorf("DecodeVarInt read %d bytes, want %d", read, n)
			}
			if decoded != tc.value {
				t.Errorf("DecodeVarInt = %d, want %d", decoded, tc.value)
			}
		})
	}
}

func TestEncodeDecodeVarLong(t *testing.T) {
	tests := []struct {
		name  string
		value int64
		size  int
	}{
		{"zero", 0, 1},
		{"max_1byte", 127, 1},
		{"min_2byte", 128, 2},
		{"max_int32", math.MaxInt32, 5},
		{"max_int64", math.MaxInt64, 9},
		{"neg_one", -1, 10},
		{"min_int64", math.MinInt64, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := make([]byte, MaxVarLongLen)
			n := EncodeVarLong(buf, tc.value)
			if n != tc.size {
				t.Errorf("EncodeVarLong(%d) = %d bytes, want %d", tc.value, n, tc.size)
			}
			if got := VarLongLen(tc.value); got != n {
				t.Errorf("VarLongLen(%d) = %d, want %d", tc.value, got, n)
			}
			decoded, read := DecodeVarLong(buf[:n])
			if read != n || decoded != tc.value {
				t.Errorf("DecodeVarLong = (%d, %d), want (%d, %d)", decoded, read, tc.value, n)
			}
		})
	}
}

func TestVarIntRoundTripSweep(t *testing.T) {
	buf := make([]byte, MaxVarIntLen)
	// Step through the whole int32 range with a stride that hits every
	// encoded length and both signs.
	for v := int64(math.MinInt32); v <= math.MaxInt32; v += 65521 {
		n := EncodeVarInt(buf, int32(v))
		if n > MaxVarIntLen {
			t.Fatalf("EncodeVarInt(%d) used %d bytes", v, n)
		}
		got, read := DecodeVarInt(buf[:n])
		if read != n || got != int32(v) {
			t.Fatalf("round trip %d: got (%d, %d)", v, got, read)
		}
	}
}

func TestDecodeVarIntIncomplete(t *testing.T) {
	tests := [][]byte{
		{},
		{0x80},
		{0xFF, 0xFF},
		{0xFF, 0xFF, 0xFF, 0xFF},
	}
	for _, data := range tests {
		if _, n := DecodeVarInt(data); n != -1 {
			t.Errorf("DecodeVarInt(%x) n = %d, want -1", data, n)
		}
	}
}

func TestDecodeVarIntMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"top_nibble_set", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x10}},
		{"continuation_on_5th", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}},
		{"all_ones", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, n := DecodeVarInt(tc.data); n != -2 {
				t.Errorf("DecodeVarInt(%x) n = %d, want -2", tc.data, n)
			}
			d := NewDecoder(tc.data)
			if _, err := d.ReadVarInt(); !errors.Is(err, ErrMalformedVarInt) {
				t.Errorf("ReadVarInt error = %v, want ErrMalformedVarInt", err)
			}
		})
	}
}

func TestDecodeVarLongMalformed(t *testing.T) {
	data := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x02}
	if _, n := DecodeVarLong(data); n != -2 {
		t.Errorf("DecodeVarLong n = %d, want -2", n)
	}
	d := NewDecoder(data)
	if _, err := d.ReadVarLong(); !errors.Is(err, ErrMalformedVarInt) {
		t.Errorf("ReadVarLong error = %v, want ErrMalformedVarInt", err)
	}
}
