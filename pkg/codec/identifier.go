package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"github.com/vango-dev/mcproto/pkg/protocol"
	"github.com/vango-dev/mcproto/pkg/schema"
)

// canonicalUUIDLen is the length of the 8-4-4-4-12 hyphenated form.
const canonicalUUIDLen = 36

func identifierOf(s *schema.Shape, v any) (uuid.UUID, error) {
	switch x := v.(type) {
	case UUID:
		return x.UUID, nil
	case UUID128:
		return x.UUID, nil
	case uuid.UUID:
		return x, nil
	case [16]byte:
		return uuid.UUID(x), nil
	}
	return uuid.Nil, mismatch(s, v)
}

// writeUUIDText writes the hyphenated text form through the string codec.
func writeUUIDText(e *protocol.Encoder, s *schema.Shape, v any) error {
	id, err := identifierOf(s, v)
	if err != nil {
		return err
	}
	return e.WriteString(id.String())
}

// readUUIDText accepts only the canonical hyphenated form.
func readUUIDText(d *protocol.Decoder) (UUID, error) {
	text, err := d.ReadString()
	if err != nil {
		return UUID{}, err
	}
	if len(text) != canonicalUUIDLen {
		return UUID{}, fmt.Errorf("%w: %q is not hyphenated", protocol.ErrMalformedIdentifier, text)
	}
	id, err := uuid.Parse(text)
	if err != nil {
		return UUID{}, fmt.Errorf("%w: %q: %v", protocol.ErrMalformedIdentifier, text, err)
	}
	return UUID{UUID: id}, nil
}

// writeUUID128 reads the identifier bytes as a native-endian 128-bit integer
// and writes that integer with the big-endian u128 codec.
func writeUUID128(e *protocol.Encoder, s *schema.Shape, v any) error {
	id, err := identifierOf(s, v)
	if err != nil {
		return err
	}
	e.WriteUint128(protocol.Uint128FromBytes(id, binary.NativeEndian))
	return nil
}

func readUUID128(d *protocol.Decoder) (UUID128, error) {
	u, err := d.ReadUint128()
	if err != nil {
		return UUID128{}, err
	}
	return UUID128{UUID: uuid.UUID(u.Bytes(binary.NativeEndian))}, nil
}
