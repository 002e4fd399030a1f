package codec

import (
	"github.com/google/uuid"

	"github.com/vango-dev/mcproto/pkg/schema"
)

// Record is the value of a record shape, keyed by field name.
type Record map[string]any

// Variant is the value of a union shape.
//
// On encode the variant is chosen by Name when it is set, otherwise by Index.
// Payload is nil for unit variants.
type Variant struct {
	Index   int    `json:"id"`
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}

// Array is the value of a length-prefixed array shape.
// Plain []any values are accepted on encode as well.
type Array struct {
	Prefix schema.Prefix `json:"-"`
	Elems  []any         `json:"elems"`
}

// ByteArray is the decoded value of an array of u8. []byte is accepted on
// encode as well.
type ByteArray struct {
	Prefix schema.Prefix `json:"-"`
	Data   []byte        `json:"data"`
}

// UUID is an identifier carried as hyphenated text.
type UUID struct {
	uuid.UUID
}

// UUID128 is an identifier carried as a raw 128-bit integer.
type UUID128 struct {
	uuid.UUID
}

// Document is an embedded tree document.
//
// Whether it travels gzip compressed is decided by the shape, not by
// Compressed, which only reports what was decoded.
type Document struct {
	Compressed bool   `json:"compressed"`
	Name       string `json:"name"`
	Root       any    `json:"root"`
}

// MetadataKind selects the wire encoding of one metadata entry.
type MetadataKind uint8

const (
	MetaByte     MetadataKind = iota // int8
	MetaShort                        // int16
	MetaInt                          // int32
	MetaFloat                        // float32
	MetaString                       // string
	MetaSlot                         // optional Slot record
	MetaRotation                     // [3]int32
)

func (k MetadataKind) String() string {
	switch k {
	case MetaByte:
		return "byte"
	case MetaShort:
		return "short"
	case MetaInt:
		return "int"
	case MetaFloat:
		return "float"
	case MetaString:
		return "string"
	case MetaSlot:
		return "slot"
	case MetaRotation:
		return "rotation"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k MetadataKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MetadataEntry is one typed value in entity metadata.
type MetadataEntry struct {
	Kind  MetadataKind `json:"kind"`
	Value any          `json:"value"`
}

// Metadata maps 3-bit keys to typed values.
type Metadata map[uint8]MetadataEntry

// ByteEntry returns a metadata byte (kind 0).
func ByteEntry(v int8) MetadataEntry { return MetadataEntry{Kind: MetaByte, Value: v} }

// ShortEntry returns a metadata short (kind 1).
func ShortEntry(v int16) MetadataEntry { return MetadataEntry{Kind: MetaShort, Value: v} }

// IntEntry returns a metadata int (kind 2).
func IntEntry(v int32) MetadataEntry { return MetadataEntry{Kind: MetaInt, Value: v} }

// FloatEntry returns a metadata float (kind 3).
func FloatEntry(v float32) MetadataEntry { return MetadataEntry{Kind: MetaFloat, Value: v} }

// StringEntry returns a metadata string (kind 4).
func StringEntry(v string) MetadataEntry { return MetadataEntry{Kind: MetaString, Value: v} }

// RotationEntry returns a metadata rotation (kind 6).
func RotationEntry(v [3]int32) MetadataEntry { return MetadataEntry{Kind: MetaRotation, Value: v} }

// SlotEntry holds an item stack record, or nil for an empty slot.
func SlotEntry(slot any) MetadataEntry { return MetadataEntry{Kind: MetaSlot, Value: slot} }

// ChunkMeta locates one chunk column inside ChunkBulk.Data.
type ChunkMeta struct {
	X           int32  `json:"x"`
	Z           int32  `json:"z"`
	PrimaryMask uint16 `json:"primary_mask"`
	AddMask     uint16 `json:"add_mask"`
}

// chunkMetaSize is the encoded size of ChunkMeta.
const chunkMetaSize = 12

// ChunkBulk is the bulk chunk payload. The column count and data length are
// not stored; they are derived from Meta and Data when encoding.
type ChunkBulk struct {
	SkyLightSent bool        `json:"sky_light_sent"`
	Data         []byte      `json:"data"`
	Meta         []ChunkMeta `json:"meta"`
}
