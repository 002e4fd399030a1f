package codec

import (
	"fmt"
	"math"

	"github.com/vango-dev/mcproto/pkg/protocol"
)

// readChunkBulk reads the column count and data length first and then uses
// them as the sizes of the data span and the meta list, which carry no
// prefixes of their own.
func (c *Codec) readChunkBulk(d *protocol.Decoder) (ChunkBulk, error) {
	count, err := d.ReadInt16()
	if err != nil {
		return ChunkBulk{}, err
	}
	length, err := d.ReadInt32()
	if err != nil {
		return ChunkBulk{}, err
	}
	if count < 0 || length < 0 {
		return ChunkBulk{}, fmt.Errorf("%w: column count %d, data length %d", protocol.ErrInvalidLength, count, length)
	}
	sky, err := d.ReadBool()
	if err != nil {
		return ChunkBulk{}, err
	}

	data, err := d.ReadBytesCopy(int(length))
	if err != nil {
		return ChunkBulk{}, err
	}
	meta, err := c.readChunkMeta(d, int(count))
	if err != nil {
		return ChunkBulk{}, err
	}
	return ChunkBulk{SkyLightSent: sky, Data: data, Meta: meta}, nil
}

// readChunkMeta reads exactly n meta records.
func (c *Codec) readChunkMeta(d *protocol.Decoder, n int) ([]ChunkMeta, error) {
	if n > c.limits.MaxCollectionCount {
		return nil, protocol.ErrCollectionTooLarge
	}
	if n*chunkMetaSize > d.Remaining() {
		return nil, protocol.ErrTruncatedInput
	}
	meta := make([]ChunkMeta, n)
	for i := range meta {
		// Lengths were checked above; these reads cannot fail.
		x, _ := d.ReadInt32()
		z, _ := d.ReadInt32()
		primary, _ := d.ReadUint16()
		add, _ := d.ReadUint16()
		meta[i] = ChunkMeta{X: x, Z: z, PrimaryMask: primary, AddMask: add}
	}
	return meta, nil
}

// writeChunkBulk derives the count and length fields from the slices so
// they cannot disagree with what follows.
func writeChunkBulk(e *protocol.Encoder, v any) error {
	var cb ChunkBulk
	switch x := v.(type) {
	case ChunkBulk:
		cb = x
	case *ChunkBulk:
		if x == nil {
			return fmt.Errorf("%w: nil chunk bulk", protocol.ErrValueMismatch)
		}
		cb = *x
	default:
		return fmt.Errorf("%w: chunk bulk wants ChunkBulk, got %T", protocol.ErrValueMismatch, v)
	}
	if len(cb.Meta) > math.MaxInt16 {
		return fmt.Errorf("%w: %d chunk columns", protocol.ErrLengthOverflow, len(cb.Meta))
	}
	if len(cb.Data) > math.MaxInt32 {
		return fmt.Errorf("%w: %d bytes of chunk data", protocol.ErrLengthOverflow, len(cb.Data))
	}

	e.WriteInt16(int16(len(cb.Meta)))
	e.WriteInt32(int32(len(cb.Data)))
	e.WriteBool(cb.SkyLightSent)
	e.WriteBytes(cb.Data)
	for _, m := range cb.Meta {
		e.WriteInt32(m.X)
		e.WriteInt32(m.Z)
		e.WriteUint16(m.PrimaryMask)
		e.WriteUint16(m.AddMask)
	}
	return nil
}
