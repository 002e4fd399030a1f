package codec

import (
	"fmt"
	"math"
	"slices"

	"github.com/vango-dev/mcproto/pkg/protocol"
	"github.com/vango-dev/mcproto/pkg/schema"
)

const (
	metadataEnd    = 0x7F
	metadataMaxKey = 7
)

var optionalSlot = schema.Optional(schema.Slot())

// readMetadata reads header bytes until the 0x7F terminator. The high three
// bits of a header are the key, the low five the kind. Only the first entry
// for a key is kept.
func (c *Codec) readMetadata(d *protocol.Decoder) (Metadata, error) {
	m := make(Metadata)
	for {
		h, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		if h == metadataEnd {
			return m, nil
		}
		key, kind := h>>5, MetadataKind(h&0x1F)
		val, err := c.readMetadataValue(d, kind)
		if err != nil {
			return nil, fmt.Errorf("metadata key %d (%s): %w", key, kind, err)
		}
		if _, seen := m[key]; !seen {
			m[key] = MetadataEntry{Kind: kind, Value: val}
		}
	}
}

func (c *Codec) readMetadataValue(d *protocol.Decoder, kind MetadataKind) (any, error) {
	switch kind {
	case MetaByte:
		return d.ReadInt8()
	case MetaShort:
		return d.ReadInt16()
	case MetaInt:
		return d.ReadInt32()
	case MetaFloat:
		return d.ReadFloat32()
	case MetaString:
		return d.ReadString()
	case MetaSlot:
		return c.decode(d, optionalSlot)
	case MetaRotation:
		var r [3]int32
		for i := range r {
			v, err := d.ReadInt32()
			if err != nil {
				return nil, err
			}
			r[i] = v
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: %d", protocol.ErrUnknownMetadataKind, kind)
	}
}

// writeMetadata writes entries in ascending key order and the terminator.
func (c *Codec) writeMetadata(e *protocol.Encoder, v any) error {
	var m Metadata
	switch x := v.(type) {
	case Metadata:
		m = x
	case map[uint8]MetadataEntry:
		m = x
	default:
		return fmt.Errorf("%w: metadata wants Metadata, got %T", protocol.ErrValueMismatch, v)
	}

	keys := make([]uint8, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if k > metadataMaxKey {
			return fmt.Errorf("%w: metadata key %d does not fit 3 bits", protocol.ErrValueMismatch, k)
		}
		entry := m[k]
		if entry.Kind > MetaRotation {
			return fmt.Errorf("%w: %d", protocol.ErrUnknownMetadataKind, entry.Kind)
		}
		e.WriteByte(k<<5 | byte(entry.Kind))
		if err := c.writeMetadataValue(e, entry); err != nil {
			return fmt.Errorf("metadata key %d (%s): %w", k, entry.Kind, err)
		}
	}
	e.WriteByte(metadataEnd)
	return nil
}

func (c *Codec) writeMetadataValue(e *protocol.Encoder, entry MetadataEntry) error {
	switch entry.Kind {
	case MetaByte:
		n, err := signed(schema.Int8(), entry.Value, math.MinInt8, math.MaxInt8)
		if err != nil {
			return err
		}
		e.WriteInt8(int8(n))
	case MetaShort:
		n, err := signed(schema.Int16(), entry.Value, math.MinInt16, math.MaxInt16)
		if err != nil {
			return err
		}
		e.WriteInt16(int16(n))
	case MetaInt:
		n, err := signed(schema.Int32(), entry.Value, math.MinInt32, math.MaxInt32)
		if err != nil {
			return err
		}
		e.WriteInt32(int32(n))
	case MetaFloat:
		return c.writeLeaf(e, schema.Float32(), entry.Value)
	case MetaString:
		return c.writeLeaf(e, schema.String(), entry.Value)
	case MetaSlot:
		return c.encode(e, entry.Value, optionalSlot)
	case MetaRotation:
		r, ok := entry.Value.([3]int32)
		if !ok {
			return fmt.Errorf("%w: rotation wants [3]int32, got %T", protocol.ErrValueMismatch, entry.Value)
		}
		for _, v := range r {
			e.WriteInt32(v)
		}
	}
	return nil
}
