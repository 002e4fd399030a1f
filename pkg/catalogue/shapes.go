package catalogue

import "github.com/vango-dev/mcproto/pkg/schema"

var (
	boolean = schema.Bool()
	i8      = schema.Int8()
	i16     = schema.Int16()
	i32     = schema.Int32()
	i64     = schema.Int64()
	u8      = schema.Uint8()
	u16     = schema.Uint16()
	f32     = schema.Float32()
	f64     = schema.Float64()
	varint  = schema.VarInt()
	str     = schema.String()
	chat    = schema.String()

	slot     = schema.Optional(schema.Slot())
	metadata = schema.Metadata()

	vec3i   = schema.Tuple(3, i32)
	vec3s   = schema.Tuple(3, i16)
	vec3b   = schema.Tuple(3, i8)
	vec3f   = schema.Tuple(3, f32)
	vec3d   = schema.Tuple(3, f64)
	bytes16 = schema.Array(schema.PrefixInt16, u8)
	bytes32 = schema.Array(schema.PrefixInt32, u8)
)

// packet is a variant whose payload is a record of the same name.
func packet(name string, fields ...schema.Field) schema.Variant {
	return schema.V(name, schema.Record(name, fields...))
}

var f = schema.F
