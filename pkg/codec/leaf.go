package codec

import (
	"fmt"
	"math"

	"github.com/vango-dev/mcproto/pkg/protocol"
	"github.com/vango-dev/mcproto/pkg/schema"
)

// writeLeaf encodes every non-composite kind.
func (c *Codec) writeLeaf(e *protocol.Encoder, s *schema.Shape, v any) error {
	switch s.Kind {
	case schema.KindBool:
		b, ok := v.(bool)
		if !ok {
			return mismatch(s, v)
		}
		e.WriteBool(b)
	case schema.KindInt8:
		n, err := signed(s, v, math.MinInt8, math.MaxInt8)
		if err != nil {
			return err
		}
		e.WriteInt8(int8(n))
	case schema.KindInt16:
		n, err := signed(s, v, math.MinInt16, math.MaxInt16)
		if err != nil {
			return err
		}
		e.WriteInt16(int16(n))
	case schema.KindInt32:
		n, err := signed(s, v, math.MinInt32, math.MaxInt32)
		if err != nil {
			return err
		}
		e.WriteInt32(int32(n))
	case schema.KindInt64:
		n, err := signed(s, v, math.MinInt64, math.MaxInt64)
		if err != nil {
			return err
		}
		e.WriteInt64(n)
	case schema.KindUint8:
		n, err := unsigned(s, v, math.MaxUint8)
		if err != nil {
			return err
		}
		e.WriteByte(byte(n))
	case schema.KindUint16:
		n, err := unsigned(s, v, math.MaxUint16)
		if err != nil {
			return err
		}
		e.WriteUint16(uint16(n))
	case schema.KindUint32:
		n, err := unsigned(s, v, math.MaxUint32)
		if err != nil {
			return err
		}
		e.WriteUint32(uint32(n))
	case schema.KindUint64:
		n, err := unsigned(s, v, math.MaxUint64)
		if err != nil {
			return err
		}
		e.WriteUint64(n)
	case schema.KindFloat32:
		switch f := v.(type) {
		case float32:
			e.WriteFloat32(f)
		case float64:
			e.WriteFloat32(float32(f))
		default:
			return mismatch(s, v)
		}
	case schema.KindFloat64:
		switch f := v.(type) {
		case float64:
			e.WriteFloat64(f)
		case float32:
			e.WriteFloat64(float64(f))
		default:
			return mismatch(s, v)
		}
	case schema.KindUint128:
		u, ok := v.(protocol.Uint128)
		if !ok {
			return mismatch(s, v)
		}
		e.WriteUint128(u)
	case schema.KindString:
		str, ok := v.(string)
		if !ok {
			return mismatch(s, v)
		}
		return e.WriteString(str)
	case schema.KindVarInt:
		n, err := signed(s, v, math.MinInt32, math.MaxInt32)
		if err != nil {
			return err
		}
		e.WriteVarInt(int32(n))
	case schema.KindVarLong:
		n, err := signed(s, v, math.MinInt64, math.MaxInt64)
		if err != nil {
			return err
		}
		e.WriteVarLong(n)
	case schema.KindDocument:
		return c.writeDocument(e, s, v)
	case schema.KindUUID:
		return writeUUIDText(e, s, v)
	case schema.KindUUID128:
		return writeUUID128(e, s, v)
	case schema.KindMetadata:
		return c.writeMetadata(e, v)
	case schema.KindChunkBulk:
		return writeChunkBulk(e, v)
	case schema.KindRest:
		b, ok := asBytes(v)
		if !ok {
			return mismatch(s, v)
		}
		e.WriteBytes(b)
	default:
		return fmt.Errorf("%w: %s", protocol.ErrUnsupportedShape, s.Kind)
	}
	return nil
}

// readLeaf decodes every non-composite kind.
func (c *Codec) readLeaf(d *protocol.Decoder, s *schema.Shape) (any, error) {
	switch s.Kind {
	case schema.KindBool:
		return d.ReadBool()
	case schema.KindInt8:
		return d.ReadInt8()
	case schema.KindInt16:
		return d.ReadInt16()
	case schema.KindInt32:
		return d.ReadInt32()
	case schema.KindInt64:
		return d.ReadInt64()
	case schema.KindUint8:
		return d.ReadByte()
	case schema.KindUint16:
		return d.ReadUint16()
	case schema.KindUint32:
		return d.ReadUint32()
	case schema.KindUint64:
		return d.ReadUint64()
	case schema.KindFloat32:
		return d.ReadFloat32()
	case schema.KindFloat64:
		return d.ReadFloat64()
	case schema.KindUint128:
		return d.ReadUint128()
	case schema.KindString:
		return d.ReadString()
	case schema.KindVarInt:
		return d.ReadVarInt()
	case schema.KindVarLong:
		return d.ReadVarLong()
	case schema.KindDocument:
		return c.readDocument(d, s)
	case schema.KindUUID:
		return readUUIDText(d)
	case schema.KindUUID128:
		return readUUID128(d)
	case schema.KindMetadata:
		return c.readMetadata(d)
	case schema.KindChunkBulk:
		return c.readChunkBulk(d)
	case schema.KindRest:
		return d.ReadRest()
	default:
		return nil, fmt.Errorf("%w: %s", protocol.ErrUnsupportedShape, s.Kind)
	}
}

func mismatch(s *schema.Shape, v any) error {
	return fmt.Errorf("%w: %s cannot hold %T", protocol.ErrValueMismatch, s.Kind, v)
}

// signed converts any Go integer to int64 and checks it against [lo, hi].
func signed(s *schema.Shape, v any, lo, hi int64) (int64, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, outOfRange(s, v)
		}
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, outOfRange(s, v)
		}
		n = int64(x)
	default:
		return 0, mismatch(s, v)
	}
	if n < lo || n > hi {
		return 0, outOfRange(s, v)
	}
	return n, nil
}

// unsigned converts any non-negative Go integer to uint64 and checks it
// against hi.
func unsigned(s *schema.Shape, v any, hi uint64) (uint64, error) {
	var n uint64
	switch x := v.(type) {
	case uint:
		n = uint64(x)
	case uint8:
		n = uint64(x)
	case uint16:
		n = uint64(x)
	case uint32:
		n = uint64(x)
	case uint64:
		n = x
	case int, int8, int16, int32, int64:
		i, err := signed(s, v, 0, math.MaxInt64)
		if err != nil {
			return 0, err
		}
		n = uint64(i)
	default:
		return 0, mismatch(s, v)
	}
	if n > hi {
		return 0, outOfRange(s, v)
	}
	return n, nil
}

func outOfRange(s *schema.Shape, v any) error {
	return fmt.Errorf("%w: %v out of range for %s", protocol.ErrValueMismatch, v, s.Kind)
}
