// Package nbt adapts the go-mc NBT implementation to the document
// collaborator used by the codec for embedded tree documents.
package nbt

import (
	"bytes"
	"errors"
	"fmt"

	mcnbt "github.com/Tnze/go-mc/nbt"
)

// ErrEmptyDocument is returned for a zero-length document span.
var ErrEmptyDocument = errors.New("nbt: empty document")

// Compound is the decoded form of a root compound tag.
type Compound = map[string]any

// Codec decodes and encodes named root compounds.
// The zero value is ready to use and safe for concurrent use.
type Codec struct{}

// DecodeDocument parses one named tag from b.
// The root is returned as a Compound.
func (Codec) DecodeDocument(b []byte) (string, any, error) {
	if len(b) == 0 {
		return "", nil, ErrEmptyDocument
	}
	var root Compound
	name, err := mcnbt.NewDecoder(bytes.NewReader(b)).Decode(&root)
	if err != nil {
		return "", nil, fmt.Errorf("nbt: decode: %w", err)
	}
	return name, root, nil
}

// EncodeDocument serialises root as a named tag.
func (Codec) EncodeDocument(name string, root any) ([]byte, error) {
	if root == nil {
		root = Compound{}
	}
	var b bytes.Buffer
	if err := mcnbt.NewEncoder(&b).Encode(root, name); err != nil {
		return nil, fmt.Errorf("nbt: encode: %w", err)
	}
	return b.Bytes(), nil
}
