package codec

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vango-dev/mcproto/pkg/protocol"
	"github.com/vango-dev/mcproto/pkg/schema"
)

var fuzzShape = schema.Record("Fuzz",
	schema.F("id", schema.VarInt()),
	schema.F("name", schema.Optional(schema.String())),
	schema.F("entries", schema.Array(schema.PrefixInt16, schema.Union("Entry",
		schema.V("Value", schema.Int32()),
		schema.Unit("Empty"),
		schema.V("Pair", schema.Tuple(2, schema.Uint8())),
	))),
	schema.F("blob", schema.Array(schema.PrefixUint8, schema.Uint8())),
)

// FuzzDecode checks that arbitrary input never panics and that whatever
// decodes re-encodes to something that decodes to the same value.
func FuzzDecode(f *testing.F) {
	seed, err := Encode(Record{
		"id":   5,
		"name": "x",
		"entries": []any{
			Variant{Name: "Value", Payload: int32(9)},
			Variant{Name: "Empty"},
			Variant{Name: "Pair", Payload: []any{uint8(1), uint8(2)}},
		},
		"blob": []byte{1, 2, 3},
	}, fuzzShape)
	if err != nil {
		f.Fatal(err)
	}
	f.Add(seed)
	f.Add([]byte{0x00, 0xFF, 0xFF, 0x00, 0x00, 0x00})
	f.Add([]byte{0x80, 0x80, 0x80, 0x80, 0x80})

	f.Fuzz(func(t *testing.T, data []byte) {
		v, err := Decode(data, fuzzShape)
		if err != nil {
			return
		}
		b, err := Encode(v, fuzzShape)
		if err != nil {
			t.Fatalf("re-encode of %#v: %v", v, err)
		}
		v2, err := Decode(b, fuzzShape)
		if err != nil {
			t.Fatalf("decode of re-encoded %x: %v", b, err)
		}
		if !reflect.DeepEqual(v, v2) {
			t.Fatalf("round trip changed value:\n%#v\n%#v", v, v2)
		}
	})
}

func FuzzMetadata(f *testing.F) {
	f.Add([]byte{0x40, 0x05, 0x7F})
	f.Add([]byte{0x05, 0xFF, 0xFF, 0x7F})
	f.Add([]byte{0xC6, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0, 3, 0x7F})

	f.Fuzz(func(t *testing.T, data []byte) {
		v, err := Decode(data, schema.Metadata())
		if err != nil {
			return
		}
		// Slot tags go through gzip and NBT again, which may legitimately
		// produce a different or oversized document.
		_, err = Encode(v, schema.Metadata())
		if err != nil && !errors.Is(err, protocol.ErrEmbeddedDocument) && !errors.Is(err, protocol.ErrLengthOverflow) {
			t.Fatalf("re-encode of %#v: %v", v, err)
		}
	})
}
