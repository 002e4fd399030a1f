package codec

import (
	"fmt"
	"reflect"

	"github.com/vango-dev/mcproto/pkg/protocol"
	"github.com/vango-dev/mcproto/pkg/schema"
)

// encFrame is one composite value whose children are still being written.
type encFrame struct {
	step
	values []any
	start  int // encoder length before the composite was written
}

func (c *Codec) encode(e *protocol.Encoder, v any, root *schema.Shape) error {
	_, err := c.walkEncode(e, v, root)
	return err
}

// walkEncode writes v and root depth first. Composite nodes write their
// header (count, discriminant) when entered and push a frame; children are
// written in order as the frame is advanced; the frame is popped when
// exhausted. It returns the start offset of the last present optional, or
// -1 when none was written.
func (c *Codec) walkEncode(e *protocol.Encoder, v any, root *schema.Shape) (int, error) {
	lastOptional := -1
	if root == nil {
		return lastOptional, wrapErr("encode", root, nil, e.Len(), fmt.Errorf("%w: nil shape", protocol.ErrUnsupportedShape))
	}
	var stack []encFrame
	shape, value := root, v

	for {
		f, push, err := c.encodeNode(e, shape, value)
		if err != nil {
			return lastOptional, wrapErr("encode", root, encSteps(stack), e.Len(), err)
		}
		if push {
			if err := protocol.CheckDepth(len(stack)+1, c.limits.MaxDepth); err != nil {
				return lastOptional, wrapErr("encode", root, encSteps(stack), e.Len(), err)
			}
			stack = append(stack, f)
		}

		for {
			if len(stack) == 0 {
				return lastOptional, nil
			}
			top := &stack[len(stack)-1]
			if top.child+1 < len(top.values) {
				top.child++
				shape = top.childShape()
				value = top.values[top.child]
				break
			}
			if err := finishEncode(e, top); err != nil {
				return lastOptional, wrapErr("encode", root, encSteps(stack), e.Len(), err)
			}
			if top.shape.Kind == schema.KindOptional {
				lastOptional = max(lastOptional, top.start)
			}
			stack = stack[:len(stack)-1]
		}
	}
}

func (c *Codec) encodeNode(e *protocol.Encoder, s *schema.Shape, v any) (encFrame, bool, error) {
	if s == nil {
		return encFrame{}, false, fmt.Errorf("%w: nil shape", protocol.ErrUnsupportedShape)
	}
	frame := func(values []any) encFrame {
		return encFrame{step: step{shape: s, child: -1}, values: values, start: e.Len()}
	}

	switch s.Kind {
	case schema.KindOptional:
		if v == nil {
			e.WriteInt16(-1)
			return encFrame{}, false, nil
		}
		return frame([]any{v}), true, nil

	case schema.KindArray:
		if s.Elem != nil && s.Elem.Kind == schema.KindUint8 {
			if b, ok := asBytes(v); ok {
				if err := writePrefix(e, s.Prefix, len(b)); err != nil {
					return encFrame{}, false, err
				}
				e.WriteBytes(b)
				return encFrame{}, false, nil
			}
		}
		elems, err := sequence(v, s.Prefix)
		if err != nil {
			return encFrame{}, false, err
		}
		if err := writePrefix(e, s.Prefix, len(elems)); err != nil {
			return encFrame{}, false, err
		}
		return frame(elems), true, nil

	case schema.KindTuple:
		elems, err := sequence(v, schema.PrefixNone)
		if err != nil {
			return encFrame{}, false, err
		}
		if len(elems) != s.Len {
			return encFrame{}, false, fmt.Errorf("%w: tuple of %d, got %d values", protocol.ErrValueMismatch, s.Len, len(elems))
		}
		return frame(elems), true, nil

	case schema.KindRecord:
		rec, ok := asRecord(v)
		if !ok {
			return encFrame{}, false, fmt.Errorf("%w: record %s wants Record, got %T", protocol.ErrValueMismatch, s.Name, v)
		}
		values := make([]any, len(s.Fields))
		for i, f := range s.Fields {
			fv, ok := rec[f.Name]
			if !ok && (f.Shape == nil || f.Shape.Kind != schema.KindOptional) {
				return encFrame{}, false, fmt.Errorf("%w: missing field %q", protocol.ErrValueMismatch, f.Name)
			}
			values[i] = fv
		}
		return frame(values), true, nil

	case schema.KindUnion:
		idx, payload, err := resolveVariant(s, v)
		if err != nil {
			return encFrame{}, false, err
		}
		e.WriteVarInt(int32(idx))
		if s.Variants[idx].Payload == nil {
			return encFrame{}, false, nil
		}
		f := frame([]any{payload})
		f.variant = idx
		return f, true, nil

	default:
		return encFrame{}, false, c.writeLeaf(e, s, v)
	}
}

// finishEncode runs once every child of f has been written.
func finishEncode(e *protocol.Encoder, f *encFrame) error {
	if f.shape.Kind != schema.KindOptional {
		return nil
	}
	// A present value must not start with the absent sentinel, or it would
	// read back as absent. A present value shorter than two bytes is only
	// readable when more bytes follow it; Encode checks that once the whole
	// value is written.
	b := e.Bytes()[f.start:]
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFF {
		return protocol.ErrAmbiguousOptional
	}
	return nil
}

func encSteps(stack []encFrame) []step {
	steps := make([]step, len(stack))
	for i := range stack {
		steps[i] = stack[i].step
	}
	return steps
}

func writePrefix(e *protocol.Encoder, p schema.Prefix, n int) error {
	if n > p.MaxCount() {
		return fmt.Errorf("%w: %d elements with %s prefix", protocol.ErrLengthOverflow, n, p)
	}
	switch p {
	case schema.PrefixUint8:
		e.WriteByte(byte(n))
	case schema.PrefixInt8:
		e.WriteInt8(int8(n))
	case schema.PrefixInt16:
		e.WriteInt16(int16(n))
	case schema.PrefixInt32:
		e.WriteInt32(int32(n))
	case schema.PrefixVarInt:
		e.WriteVarInt(int32(n))
	default:
		return fmt.Errorf("%w: array prefix %d", protocol.ErrUnsupportedShape, p)
	}
	return nil
}

func resolveVariant(s *schema.Shape, v any) (int, any, error) {
	var vr Variant
	switch x := v.(type) {
	case Variant:
		vr = x
	case *Variant:
		if x == nil {
			return 0, nil, fmt.Errorf("%w: nil variant", protocol.ErrValueMismatch)
		}
		vr = *x
	default:
		return 0, nil, fmt.Errorf("%w: union %s wants Variant, got %T", protocol.ErrValueMismatch, s.Name, v)
	}

	idx := vr.Index
	if vr.Name != "" {
		idx = s.VariantIndex(vr.Name)
		if idx < 0 {
			return 0, nil, fmt.Errorf("%w: %s has no variant %q", protocol.ErrUnknownVariant, s.Name, vr.Name)
		}
		if vr.Index != 0 && vr.Index != idx {
			return 0, nil, fmt.Errorf("%w: variant %q is index %d, not %d", protocol.ErrValueMismatch, vr.Name, idx, vr.Index)
		}
	}
	if idx < 0 || idx >= len(s.Variants) {
		return 0, nil, fmt.Errorf("%w: %s index %d of %d", protocol.ErrUnknownVariant, s.Name, idx, len(s.Variants))
	}
	if s.Variants[idx].Payload == nil && vr.Payload != nil {
		return 0, nil, fmt.Errorf("%w: unit variant %q given a payload", protocol.ErrValueMismatch, s.Variants[idx].Name)
	}
	return idx, vr.Payload, nil
}

func asRecord(v any) (map[string]any, bool) {
	switch x := v.(type) {
	case Record:
		return x, true
	case map[string]any:
		return x, true
	case *Record:
		if x == nil {
			return nil, false
		}
		return *x, true
	}
	return nil, false
}

func asBytes(v any) ([]byte, bool) {
	switch x := v.(type) {
	case []byte:
		return x, true
	case ByteArray:
		return x.Data, true
	case *ByteArray:
		if x != nil {
			return x.Data, true
		}
	}
	return nil, false
}

// sequence flattens the accepted sequence values into []any.
func sequence(v any, p schema.Prefix) ([]any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return x, nil
	case Array:
		if x.Prefix != schema.PrefixNone && p != schema.PrefixNone && x.Prefix != p {
			return nil, fmt.Errorf("%w: array has %s prefix, shape wants %s", protocol.ErrValueMismatch, x.Prefix, p)
		}
		return x.Elems, nil
	case *Array:
		if x == nil {
			return nil, nil
		}
		return sequence(*x, p)
	}
	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return nil, fmt.Errorf("%w: want a sequence, got %T", protocol.ErrValueMismatch, v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
