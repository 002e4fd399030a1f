package codec

import (
	"strconv"
	"strings"

	"github.com/vango-dev/mcproto/pkg/protocol"
	"github.com/vango-dev/mcproto/pkg/schema"
)

// step is the part of a traversal frame needed to describe where the walk is.
type step struct {
	shape   *schema.Shape
	variant int // union only
	child   int // index of the child currently being processed
}

// pathString renders the location of the current child of the innermost
// frame, e.g. "PlayToClient.WindowItems.slots[3].tag".
func pathString(root *schema.Shape, steps []step) string {
	var b strings.Builder
	b.WriteString(shapeName(root))
	for _, st := range steps {
		switch st.shape.Kind {
		case schema.KindRecord:
			if st.child >= 0 && st.child < len(st.shape.Fields) {
				if b.Len() > 0 {
					b.WriteByte('.')
				}
				b.WriteString(st.shape.Fields[st.child].Name)
			}
		case schema.KindUnion:
			if st.variant >= 0 && st.variant < len(st.shape.Variants) {
				if b.Len() > 0 {
					b.WriteByte('.')
				}
				b.WriteString(st.shape.Variants[st.variant].Name)
			}
		case schema.KindArray, schema.KindTuple:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(st.child))
			b.WriteByte(']')
		case schema.KindOptional:
			// Transparent: the inner value sits at the same path.
		}
	}
	return b.String()
}

func wrapErr(op string, root *schema.Shape, steps []step, offset int, err error) error {
	return &protocol.Error{
		Op:     op,
		Path:   pathString(root, steps),
		Offset: offset,
		Err:    err,
	}
}

// childShape returns the shape of the child currently being processed.
func (st *step) childShape() *schema.Shape {
	switch st.shape.Kind {
	case schema.KindRecord:
		return st.shape.Fields[st.child].Shape
	case schema.KindUnion:
		return st.shape.Variants[st.variant].Payload
	default:
		return st.shape.Elem
	}
}
