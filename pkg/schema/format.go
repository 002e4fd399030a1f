package schema

import (
	"strconv"
	"strings"
)

// maxFormatDepth bounds Format on shapes that were never validated.
const maxFormatDepth = 32

// Format renders s in a compact notation, for example
// "Slot{id: i16, count: u8, damage: i16, tag: optional<document(gzip)>}".
func Format(s *Shape) string {
	var b strings.Builder
	format(&b, s, 0)
	return b.String()
}

func format(b *strings.Builder, s *Shape, depth int) {
	if s == nil {
		b.WriteString("<nil>")
		return
	}
	if depth > maxFormatDepth {
		b.WriteString("...")
		return
	}
	switch s.Kind {
	case KindOptional:
		b.WriteString("optional<")
		format(b, s.Elem, depth+1)
		b.WriteByte('>')
	case KindArray:
		b.WriteString("array[")
		b.WriteString(s.Prefix.String())
		b.WriteString("]<")
		format(b, s.Elem, depth+1)
		b.WriteByte('>')
	case KindTuple:
		b.WriteByte('[')
		format(b, s.Elem, depth+1)
		b.WriteString("; ")
		b.WriteString(strconv.Itoa(s.Len))
		b.WriteByte(']')
	case KindRecord:
		b.WriteString(s.Name)
		b.WriteByte('{')
		for i, f := range s.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteString(": ")
			format(b, f.Shape, depth+1)
		}
		b.WriteByte('}')
	case KindUnion:
		if s.Name != "" {
			b.WriteString(s.Name)
		} else {
			b.WriteString("union")
		}
		b.WriteString("(")
		b.WriteString(strconv.Itoa(len(s.Variants)))
		b.WriteString(" variants)")
	case KindDocument:
		b.WriteString("document")
		if s.Compressed {
			b.WriteString("(gzip)")
		}
	case KindMap:
		b.WriteString("map<")
		if len(s.Fields) > 0 {
			format(b, s.Fields[0].Shape, depth+1)
		}
		b.WriteString(", ")
		format(b, s.Elem, depth+1)
		b.WriteByte('>')
	default:
		b.WriteString(s.Kind.String())
	}
}
