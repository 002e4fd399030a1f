package codec

import (
	"fmt"

	"github.com/vango-dev/mcproto/pkg/protocol"
	"github.com/vango-dev/mcproto/pkg/schema"
)

// decFrame is one composite value whose children are still being read.
type decFrame struct {
	step
	n     int   // number of children to read
	items []any // children read so far
}

// decode mirrors encode: entering a composite reads its header and pushes a
// frame; each decoded child is appended to the innermost frame; a frame that
// has all its children is popped and assembled into its value, which then
// becomes a child of the frame below.
func (c *Codec) decode(d *protocol.Decoder, root *schema.Shape) (any, error) {
	if root == nil {
		return nil, wrapErr("decode", root, nil, d.Position(), fmt.Errorf("%w: nil shape", protocol.ErrUnsupportedShape))
	}
	var stack []decFrame
	shape := root

	for {
		val, f, push, err := c.decodeNode(d, shape)
		if err != nil {
			return nil, wrapErr("decode", root, decSteps(stack), d.Position(), err)
		}
		if push {
			if err := protocol.CheckDepth(len(stack)+1, c.limits.MaxDepth); err != nil {
				return nil, wrapErr("decode", root, decSteps(stack), d.Position(), err)
			}
			if f.n > 0 {
				stack = append(stack, f)
				top := &stack[len(stack)-1]
				top.child = 0
				shape = top.childShape()
				continue
			}
			val = f.assemble()
		}

		// val is complete; hand it to the enclosing frames.
		for {
			if len(stack) == 0 {
				return val, nil
			}
			top := &stack[len(stack)-1]
			top.items = append(top.items, val)
			if len(top.items) < top.n {
				top.child = len(top.items)
				shape = top.childShape()
				break
			}
			val = top.assemble()
			stack = stack[:len(stack)-1]
		}
	}
}

// decodeNode reads a leaf value, or the header of a composite value and the
// frame that will collect its children.
func (c *Codec) decodeNode(d *protocol.Decoder, s *schema.Shape) (any, decFrame, bool, error) {
	if s == nil {
		return nil, decFrame{}, false, fmt.Errorf("%w: nil shape", protocol.ErrUnsupportedShape)
	}
	frame := func(n int) decFrame {
		return decFrame{step: step{shape: s}, n: n, items: make([]any, 0, n)}
	}

	switch s.Kind {
	case schema.KindOptional:
		marker, err := d.ReadInt16()
		if err != nil {
			return nil, decFrame{}, false, err
		}
		if marker == -1 {
			return nil, decFrame{}, false, nil
		}
		// Present: the two bytes belong to the inner value.
		if err := d.Unread(2); err != nil {
			return nil, decFrame{}, false, err
		}
		return nil, frame(1), true, nil

	case schema.KindArray:
		n, err := readPrefix(d, s.Prefix)
		if err != nil {
			return nil, decFrame{}, false, err
		}
		if s.Elem != nil && s.Elem.Kind == schema.KindUint8 {
			b, err := d.ReadBytesCopy(n)
			if err != nil {
				return nil, decFrame{}, false, err
			}
			return ByteArray{Prefix: s.Prefix, Data: b}, decFrame{}, false, nil
		}
		if n > c.limits.MaxCollectionCount {
			return nil, decFrame{}, false, protocol.ErrCollectionTooLarge
		}
		// Cap the preallocation by what the input could possibly hold.
		f := frame(0)
		f.n = n
		f.items = make([]any, 0, min(n, d.Remaining()+1))
		return nil, f, true, nil

	case schema.KindTuple:
		return nil, frame(s.Len), true, nil

	case schema.KindRecord:
		return nil, frame(len(s.Fields)), true, nil

	case schema.KindUnion:
		idx, err := d.ReadVarInt()
		if err != nil {
			return nil, decFrame{}, false, err
		}
		if idx < 0 || int(idx) >= len(s.Variants) {
			return nil, decFrame{}, false, fmt.Errorf("%w: %s discriminant %d of %d",
				protocol.ErrUnknownVariant, s.Name, idx, len(s.Variants))
		}
		v := s.Variants[idx]
		if v.Payload == nil {
			return Variant{Index: int(idx), Name: v.Name}, decFrame{}, false, nil
		}
		f := frame(1)
		f.variant = int(idx)
		return nil, f, true, nil

	default:
		val, err := c.readLeaf(d, s)
		return val, decFrame{}, false, err
	}
}

// assemble builds the value of a frame whose children are all read.
func (f *decFrame) assemble() any {
	switch f.shape.Kind {
	case schema.KindOptional:
		return f.items[0]
	case schema.KindArray:
		return Array{Prefix: f.shape.Prefix, Elems: f.items}
	case schema.KindTuple:
		return f.items
	case schema.KindRecord:
		rec := make(Record, len(f.shape.Fields))
		for i, field := range f.shape.Fields {
			rec[field.Name] = f.items[i]
		}
		return rec
	case schema.KindUnion:
		v := Variant{Index: f.variant, Name: f.shape.Variants[f.variant].Name}
		if len(f.items) > 0 {
			v.Payload = f.items[0]
		}
		return v
	}
	return nil
}

func decSteps(stack []decFrame) []step {
	steps := make([]step, len(stack))
	for i := range stack {
		steps[i] = stack[i].step
	}
	return steps
}

func readPrefix(d *protocol.Decoder, p schema.Prefix) (int, error) {
	var n int64
	switch p {
	case schema.PrefixUint8:
		b, err := d.ReadByte()
		if err != nil {
			return 0, err
		}
		return int(b), nil
	case schema.PrefixInt8:
		v, err := d.ReadInt8()
		if err != nil {
			return 0, err
		}
		n = int64(v)
	case schema.PrefixInt16:
		v, err := d.ReadInt16()
		if err != nil {
			return 0, err
		}
		n = int64(v)
	case schema.PrefixInt32:
		v, err := d.ReadInt32()
		if err != nil {
			return 0, err
		}
		n = int64(v)
	case schema.PrefixVarInt:
		v, err := d.ReadVarInt()
		if err != nil {
			return 0, err
		}
		n = int64(v)
	default:
		return 0, fmt.Errorf("%w: array prefix %d", protocol.ErrUnsupportedShape, p)
	}
	if n < 0 {
		return 0, protocol.ErrInvalidLength
	}
	return int(n), nil
}
