package codec

import (
	"fmt"
	"math"

	"github.com/vango-dev/mcproto/pkg/protocol"
	"github.com/vango-dev/mcproto/pkg/schema"
)

func documentErr(err error) error {
	return fmt.Errorf("%w: %w", protocol.ErrEmbeddedDocument, err)
}

// readDocument reads a u16 length and hands the span to the document codec,
// inflating it first when the shape is compressed.
func (c *Codec) readDocument(d *protocol.Decoder, s *schema.Shape) (Document, error) {
	n, err := d.ReadUint16()
	if err != nil {
		return Document{}, err
	}
	raw, err := d.ReadBytes(int(n))
	if err != nil {
		return Document{}, err
	}
	if s.Compressed {
		if raw, err = c.gzip.Inflate(raw); err != nil {
			return Document{}, documentErr(err)
		}
	}
	name, root, err := c.docs.DecodeDocument(raw)
	if err != nil {
		return Document{}, documentErr(err)
	}
	return Document{Compressed: s.Compressed, Name: name, Root: root}, nil
}

// writeDocument serialises the document again on every call; the length
// prefix always describes the bytes written now.
func (c *Codec) writeDocument(e *protocol.Encoder, s *schema.Shape, v any) error {
	var doc Document
	switch x := v.(type) {
	case Document:
		doc = x
	case *Document:
		if x == nil {
			return mismatch(s, v)
		}
		doc = *x
	default:
		return mismatch(s, v)
	}

	raw, err := c.docs.EncodeDocument(doc.Name, doc.Root)
	if err != nil {
		return documentErr(err)
	}
	if s.Compressed {
		if raw, err = c.gzip.Deflate(raw); err != nil {
			return documentErr(err)
		}
	}
	if len(raw) > math.MaxUint16 {
		return fmt.Errorf("%w: document of %d bytes", protocol.ErrLengthOverflow, len(raw))
	}
	e.WriteUint16(uint16(len(raw)))
	e.WriteBytes(raw)
	return nil
}
