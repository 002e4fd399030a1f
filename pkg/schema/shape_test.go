package schema

import (
	"errors"
	"testing"

	"github.com/vango-dev/mcproto/pkg/protocol"
)

func TestValidate(t *testing.T) {
	slot := Record("Slot",
		F("id", Int16()),
		F("count", Uint8()),
		F("damage", Int16()),
		F("tag", Optional(GzipDocument())),
	)

	tests := []struct {
		name    string
		shape   *Shape
		wantErr bool
	}{
		{"leaf", Int32(), false},
		{"shared_leaves", Record("P", F("x", Int32()), F("y", Int32())), false},
		{"slot", slot, false},
		{"nested", Union("U", Unit("a"), V("b", Array(PrefixInt16, Optional(slot)))), false},
		{"empty_record", Record("Empty"), false},
		{"map_is_describable", Map(String(), Int32()), false},
		{"nil", nil, true},
		{"zero_kind", &Shape{}, true},
		{"optional_without_elem", &Shape{Kind: KindOptional}, true},
		{"array_without_prefix", &Shape{Kind: KindArray, Elem: Int8()}, true},
		{"negative_tuple", Tuple(-1, Int8()), true},
		{"duplicate_field", Record("D", F("a", Int8()), F("a", Int8())), true},
		{"unnamed_field", Record("D", F("", Int8())), true},
		{"empty_union", Union("U"), true},
		{"duplicate_variant", Union("U", Unit("a"), Unit("a")), true},
		{"nil_field_shape", Record("N", F("a", nil)), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.shape)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, protocol.ErrUnsupportedShape) {
				t.Errorf("error %v does not wrap ErrUnsupportedShape", err)
			}
		})
	}
}

func TestValidateCycle(t *testing.T) {
	node := Record("Node", F("value", Int32()))
	node.Fields = append(node.Fields, F("next", Optional(node)))
	err := Validate(node)
	if err == nil {
		t.Fatal("Validate accepted a self-containing shape")
	}
	if !errors.Is(err, ErrInvalidShape) {
		t.Errorf("error = %v, want ErrInvalidShape", err)
	}
}

func TestMustValidatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustValidate did not panic")
		}
	}()
	MustValidate(Union("Empty"))
}

func TestIndexLookup(t *testing.T) {
	u := Union("State", Unit("none"), Unit("status"), Unit("login"))
	if got := u.VariantIndex("login"); got != 2 {
		t.Errorf("VariantIndex(login) = %d", got)
	}
	if got := u.VariantIndex("play"); got != -1 {
		t.Errorf("VariantIndex(play) = %d", got)
	}
	r := Record("R", F("a", Int8()), F("b", Int8()))
	if got := r.FieldIndex("b"); got != 1 {
		t.Errorf("FieldIndex(b) = %d", got)
	}
}

func TestPrefixMaxCount(t *testing.T) {
	tests := map[Prefix]int{
		PrefixUint8:  255,
		PrefixInt8:   127,
		PrefixInt16:  32767,
		PrefixInt32:  2147483647,
		PrefixVarInt: 2147483647,
		PrefixNone:   0,
	}
	for p, want := range tests {
		if got := p.MaxCount(); got != want {
			t.Errorf("%v.MaxCount() = %d, want %d", p, got, want)
		}
	}
}

func TestFormat(t *testing.T) {
	slot := Record("Slot",
		F("id", Int16()),
		F("count", Uint8()),
		F("damage", Int16()),
		F("tag", Optional(GzipDocument())),
	)
	want := "Slot{id: i16, count: u8, damage: i16, tag: optional<document(gzip)>}"
	if got := Format(slot); got != want {
		t.Errorf("Format = %q\nwant     %q", got, want)
	}

	tests := []struct {
		shape *Shape
		want  string
	}{
		{Array(PrefixVarInt, String()), "array[varint]<string>"},
		{Tuple(3, Float64()), "[f64; 3]"},
		{Union("Handshake", Unit("a"), Unit("b")), "Handshake(2 variants)"},
		{Map(String(), Int32()), "map<string, i32>"},
		{nil, "<nil>"},
	}
	for _, tc := range tests {
		if got := Format(tc.shape); got != tc.want {
			t.Errorf("Format = %q, want %q", got, tc.want)
		}
	}
}
