// Package schema describes the shape of wire values as data.
//
// A Shape is an immutable tree built from the constructors in this package.
// The codec package interprets shapes; nothing here reads or writes bytes.
// Message catalogues are ordinary Go values composed from these constructors,
// so a new message needs a new shape, never new codec code.
package schema

// Kind is the closed set of shapes the codec understands.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindUint128
	KindString
	KindVarInt
	KindVarLong

	KindOptional // int16 peek, -1 is absent
	KindArray    // count prefix, then elements
	KindTuple    // fixed count, no prefix
	KindRecord   // fields in declared order
	KindUnion    // VarInt variant index, then payload

	KindDocument  // u16 length, then a tree document
	KindUUID      // hyphenated text
	KindUUID128   // raw 128-bit integer
	KindMetadata  // 0x7F-terminated entity metadata
	KindChunkBulk // bulk chunk payload with cross-field lengths
	KindRest      // every remaining byte

	// Kinds that can be named but are rejected by the codec.
	KindMap
	KindChar
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindBool:      "bool",
	KindInt8:      "i8",
	KindInt16:     "i16",
	KindInt32:     "i32",
	KindInt64:     "i64",
	KindUint8:     "u8",
	KindUint16:    "u16",
	KindUint32:    "u32",
	KindUint64:    "u64",
	KindFloat32:   "f32",
	KindFloat64:   "f64",
	KindUint128:   "u128",
	KindString:    "string",
	KindVarInt:    "varint",
	KindVarLong:   "varlong",
	KindOptional:  "optional",
	KindArray:     "array",
	KindTuple:     "tuple",
	KindRecord:    "record",
	KindUnion:     "union",
	KindDocument:  "document",
	KindUUID:      "uuid",
	KindUUID128:   "uuid128",
	KindMetadata:  "metadata",
	KindChunkBulk: "chunk_bulk",
	KindRest:      "rest",
	KindMap:       "map",
	KindChar:      "char",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsComposite reports whether shapes of kind k contain other shapes.
func (k Kind) IsComposite() bool {
	switch k {
	case KindOptional, KindArray, KindTuple, KindRecord, KindUnion:
		return true
	}
	return false
}

// Prefix selects how an array's element count is written.
type Prefix uint8

const (
	PrefixNone   Prefix = iota
	PrefixUint8         // unsigned byte
	PrefixInt8          // signed byte
	PrefixInt16         // signed short
	PrefixInt32         // signed int
	PrefixVarInt        // VarInt
)

func (p Prefix) String() string {
	switch p {
	case PrefixUint8:
		return "u8"
	case PrefixInt8:
		return "i8"
	case PrefixInt16:
		return "i16"
	case PrefixInt32:
		return "i32"
	case PrefixVarInt:
		return "varint"
	default:
		return "none"
	}
}

// MaxCount is the largest element count the prefix can carry.
func (p Prefix) MaxCount() int {
	switch p {
	case PrefixUint8:
		return 1<<8 - 1
	case PrefixInt8:
		return 1<<7 - 1
	case PrefixInt16:
		return 1<<15 - 1
	case PrefixInt32, PrefixVarInt:
		return 1<<31 - 1
	default:
		return 0
	}
}

// Field is one named member of a record.
type Field struct {
	Name  string
	Shape *Shape
}

// Variant is one alternative of a union. A nil Payload is a unit variant.
type Variant struct {
	Name    string
	Payload *Shape
}

// Shape describes how one value is laid out on the wire.
// Shapes are immutable once built; share them freely.
type Shape struct {
	Kind Kind
	Name string // optional label for records, unions and diagnostics

	Elem   *Shape // optional, array and tuple element
	Prefix Prefix // array count encoding
	Len    int    // tuple element count

	Fields   []Field   // record
	Variants []Variant // union

	Compressed bool // document is gzip wrapped
}

var (
	boolShape    = &Shape{Kind: KindBool}
	int8Shape    = &Shape{Kind: KindInt8}
	int16Shape   = &Shape{Kind: KindInt16}
	int32Shape   = &Shape{Kind: KindInt32}
	int64Shape   = &Shape{Kind: KindInt64}
	uint8Shape   = &Shape{Kind: KindUint8}
	uint16Shape  = &Shape{Kind: KindUint16}
	uint32Shape  = &Shape{Kind: KindUint32}
	uint64Shape  = &Shape{Kind: KindUint64}
	float32Shape = &Shape{Kind: KindFloat32}
	float64Shape = &Shape{Kind: KindFloat64}
	uint128Shape = &Shape{Kind: KindUint128}
	stringShape  = &Shape{Kind: KindString}
	varIntShape  = &Shape{Kind: KindVarInt}
	varLongShape = &Shape{Kind: KindVarLong}
	uuidShape    = &Shape{Kind: KindUUID}
	uuid128Shape = &Shape{Kind: KindUUID128}
	metaShape    = &Shape{Kind: KindMetadata}
	chunkShape   = &Shape{Kind: KindChunkBulk}
	restShape    = &Shape{Kind: KindRest}
	charShape    = &Shape{Kind: KindChar}
	docShape     = &Shape{Kind: KindDocument}
	gzipDocShape = &Shape{Kind: KindDocument, Compressed: true}
)

func Bool() *Shape    { return boolShape }
func Int8() *Shape    { return int8Shape }
func Int16() *Shape   { return int16Shape }
func Int32() *Shape   { return int32Shape }
func Int64() *Shape   { return int64Shape }
func Uint8() *Shape   { return uint8Shape }
func Uint16() *Shape  { return uint16Shape }
func Uint32() *Shape  { return uint32Shape }
func Uint64() *Shape  { return uint64Shape }
func Float32() *Shape { return float32Shape }
func Float64() *Shape { return float64Shape }
func Uint128() *Shape { return uint128Shape }
func String() *Shape  { return stringShape }
func VarInt() *Shape  { return varIntShape }
func VarLong() *Shape { return varLongShape }

// UUID is a 128-bit identifier written as hyphenated text.
func UUID() *Shape { return uuidShape }

// UUID128 is a 128-bit identifier written as a raw integer.
func UUID128() *Shape { return uuid128Shape }

// Metadata is a 0x7F-terminated list of packed key/kind entries.
func Metadata() *Shape { return metaShape }

// ChunkBulk is the bulk chunk payload whose array sizes come from earlier
// fields instead of their own prefixes.
func ChunkBulk() *Shape { return chunkShape }

// Rest consumes every remaining byte of the input.
func Rest() *Shape { return restShape }

// Document is a u16-length-prefixed tree document.
func Document() *Shape { return docShape }

// GzipDocument is a u16-length-prefixed, gzip-compressed tree document.
func GzipDocument() *Shape { return gzipDocShape }

// Char names a single character value. The codec rejects it.
func Char() *Shape { return charShape }

// Map names an unconstrained key/value map. The codec rejects it.
func Map(key, elem *Shape) *Shape {
	return &Shape{Kind: KindMap, Elem: elem, Fields: []Field{{Name: "key", Shape: key}}}
}

// Optional wraps elem in the peek-and-splice optional convention.
func Optional(elem *Shape) *Shape {
	return &Shape{Kind: KindOptional, Elem: elem}
}

// Array is a sequence of elem whose count is written with prefix.
func Array(prefix Prefix, elem *Shape) *Shape {
	return &Shape{Kind: KindArray, Prefix: prefix, Elem: elem}
}

// Tuple is exactly n values of elem with no count on the wire.
func Tuple(n int, elem *Shape) *Shape {
	return &Shape{Kind: KindTuple, Len: n, Elem: elem}
}

// F builds a record field.
func F(name string, s *Shape) Field {
	return Field{Name: name, Shape: s}
}

// Record is an ordered list of named fields.
func Record(name string, fields ...Field) *Shape {
	return &Shape{Kind: KindRecord, Name: name, Fields: fields}
}

// V builds a union variant carrying payload.
func V(name string, payload *Shape) Variant {
	return Variant{Name: name, Payload: payload}
}

// Unit builds a union variant with no payload.
func Unit(name string) Variant {
	return Variant{Name: name}
}

// Union is a set of variants selected by their zero-based index.
func Union(name string, variants ...Variant) *Shape {
	return &Shape{Kind: KindUnion, Name: name, Variants: variants}
}

// FieldIndex returns the position of the named field, or -1.
func (s *Shape) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// VariantIndex returns the position of the named variant, or -1.
func (s *Shape) VariantIndex(name string) int {
	for i, v := range s.Variants {
		if v.Name == name {
			return i
		}
	}
	return -1
}

var slotShape = Record("Slot",
	F("id", Int16()),
	F("count", Uint8()),
	F("damage", Int16()),
	F("tag", Optional(GzipDocument())),
)

// Slot is an item stack. It is normally wrapped in Optional, where an id of
// -1 marks an empty slot.
func Slot() *Shape { return slotShape }
