package schema

import (
	"fmt"
	"strings"

	"github.com/vango-dev/mcproto/pkg/protocol"
)

// ErrInvalidShape reports a shape the codec cannot interpret.
var ErrInvalidShape = fmt.Errorf("schema: invalid shape: %w", protocol.ErrUnsupportedShape)

type validateItem struct {
	shape *Shape
	path  string
	exit  bool
}

// Validate checks that s is well formed: element shapes present, array
// prefixes known, record fields and union variants named uniquely, and no
// shape containing itself. Map and Char are accepted here; the codec rejects
// them when it meets them.
func Validate(s *Shape) error {
	if s == nil {
		return fmt.Errorf("%w: nil shape", ErrInvalidShape)
	}
	onPath := make(map[*Shape]bool)
	done := make(map[*Shape]bool)
	stack := []validateItem{{shape: s, path: rootName(s)}}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if it.exit {
			delete(onPath, it.shape)
			done[it.shape] = true
			continue
		}
		if it.shape == nil {
			return fmt.Errorf("%w: %s: nil shape", ErrInvalidShape, it.path)
		}
		if onPath[it.shape] {
			return fmt.Errorf("%w: %s: shape contains itself", ErrInvalidShape, it.path)
		}
		if done[it.shape] {
			continue
		}
		if err := checkNode(it.shape); err != nil {
			return fmt.Errorf("%w: %s: %s", ErrInvalidShape, it.path, err)
		}

		onPath[it.shape] = true
		stack = append(stack, validateItem{shape: it.shape, exit: true})
		stack = append(stack, children(it.shape, it.path)...)
	}
	return nil
}

// MustValidate panics if s is not well formed. Use it for package-level
// shape tables.
func MustValidate(s *Shape) *Shape {
	if err := Validate(s); err != nil {
		panic(err)
	}
	return s
}

func checkNode(s *Shape) error {
	switch s.Kind {
	case KindInvalid:
		return fmt.Errorf("kind not set")
	case KindOptional, KindTuple, KindArray:
		if s.Elem == nil {
			return fmt.Errorf("%s without element shape", s.Kind)
		}
		if s.Kind == KindArray && (s.Prefix == PrefixNone || s.Prefix > PrefixVarInt) {
			return fmt.Errorf("array prefix %d not recognised", s.Prefix)
		}
		if s.Kind == KindTuple && s.Len < 0 {
			return fmt.Errorf("negative tuple length %d", s.Len)
		}
	case KindRecord:
		seen := make(map[string]bool, len(s.Fields))
		for _, f := range s.Fields {
			if f.Name == "" {
				return fmt.Errorf("unnamed field")
			}
			if seen[f.Name] {
				return fmt.Errorf("duplicate field %q", f.Name)
			}
			seen[f.Name] = true
		}
	case KindUnion:
		if len(s.Variants) == 0 {
			return fmt.Errorf("union without variants")
		}
		seen := make(map[string]bool, len(s.Variants))
		for _, v := range s.Variants {
			if v.Name == "" {
				return fmt.Errorf("unnamed variant")
			}
			if seen[v.Name] {
				return fmt.Errorf("duplicate variant %q", v.Name)
			}
			seen[v.Name] = true
		}
	default:
		if s.Kind > KindChar {
			return fmt.Errorf("unknown kind %d", s.Kind)
		}
	}
	return nil
}

func children(s *Shape, path string) []validateItem {
	var out []validateItem
	switch s.Kind {
	case KindOptional:
		out = append(out, validateItem{shape: s.Elem, path: path + "?"})
	case KindArray, KindTuple:
		out = append(out, validateItem{shape: s.Elem, path: path + "[]"})
	case KindRecord:
		for _, f := range s.Fields {
			out = append(out, validateItem{shape: f.Shape, path: join(path, f.Name)})
		}
	case KindUnion:
		for _, v := range s.Variants {
			if v.Payload != nil {
				out = append(out, validateItem{shape: v.Payload, path: join(path, v.Name)})
			}
		}
	}
	return out
}

func rootName(s *Shape) string {
	if s != nil && s.Name != "" {
		return s.Name
	}
	return "$"
}

func join(path, name string) string {
	var b strings.Builder
	b.Grow(len(path) + len(name) + 1)
	b.WriteString(path)
	b.WriteByte('.')
	b.WriteString(name)
	return b.String()
}
