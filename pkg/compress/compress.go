// Package compress provides the byte transforms applied around encoded
// values: gzip for embedded documents and the zlib threshold scheme applied
// to whole packets once compression is negotiated.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"github.com/vango-dev/mcproto/pkg/protocol"
)

// ErrInflatedTooLarge is returned when decompressed data exceeds the limit.
var ErrInflatedTooLarge = fmt.Errorf("compress: inflated size exceeds limit: %w", protocol.ErrAllocationTooLarge)

// Transform turns one byte span into another and back. Transforms wrap the
// encoded packet payload, below framing and above the codec.
type Transform interface {
	Encode(p []byte) ([]byte, error)
	Decode(p []byte) ([]byte, error)
}

// Gzip compresses and decompresses gzip members.
type Gzip struct {
	// MaxInflated bounds decompressed output. Zero means
	// protocol.DefaultMaxAllocation.
	MaxInflated int
}

// Inflate decompresses a gzip member.
func (g Gzip) Inflate(p []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(p))
	if err != nil {
		return nil, fmt.Errorf("gzip header: %w", err)
	}
	defer zr.Close()
	return readLimited(zr, g.limit())
}

// Deflate compresses p into a single gzip member.
func (g Gzip) Deflate(p []byte) ([]byte, error) {
	var b bytes.Buffer
	zw := gzip.NewWriter(&b)
	if _, err := zw.Write(p); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (g Gzip) limit() int {
	if g.MaxInflated > 0 {
		return g.MaxInflated
	}
	return protocol.DefaultMaxAllocation
}

func readLimited(r io.Reader, limit int) ([]byte, error) {
	var b bytes.Buffer
	n, err := io.Copy(&b, io.LimitReader(r, int64(limit)+1))
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, protocol.ErrTruncatedInput
		}
		return nil, err
	}
	if n > int64(limit) {
		return nil, ErrInflatedTooLarge
	}
	return b.Bytes(), nil
}

// Threshold is the packet compression scheme:
//
//	VarInt(uncompressed length) ++ zlib(payload)   when len(payload) >= Threshold
//	VarInt(0) ++ payload                           otherwise
//
// A negative Threshold disables compression entirely and Encode/Decode
// return their input unchanged.
type Threshold struct {
	Threshold   int
	MaxInflated int
	Level       int // zlib level; zero means zlib.DefaultCompression
}

// NewThreshold returns a Threshold transform for the negotiated threshold.
func NewThreshold(threshold int) *Threshold {
	return &Threshold{Threshold: threshold}
}

// Enabled reports whether the transform changes payloads.
func (t *Threshold) Enabled() bool {
	return t != nil && t.Threshold >= 0
}

// Encode wraps an encoded packet payload.
func (t *Threshold) Encode(p []byte) ([]byte, error) {
	if !t.Enabled() {
		return p, nil
	}
	if len(p) < t.Threshold {
		out := make([]byte, 0, 1+len(p))
		out = protocol.AppendVarInt(out, 0)
		return append(out, p...), nil
	}

	var b bytes.Buffer
	b.Write(protocol.AppendVarInt(nil, int32(len(p))))
	level := t.Level
	if level == 0 {
		level = zlib.DefaultCompression
	}
	zw, err := zlib.NewWriterLevel(&b, level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(p); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Decode unwraps a payload produced by Encode.
func (t *Threshold) Decode(p []byte) ([]byte, error) {
	if !t.Enabled() {
		return p, nil
	}
	d := protocol.NewDecoder(p)
	size, err := d.ReadVarInt()
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, protocol.ErrInvalidLength
	}
	body := p[d.Position():]
	if size == 0 {
		return body, nil
	}
	limit := t.MaxInflated
	if limit <= 0 {
		limit = protocol.DefaultMaxFrameSize
	}
	if int(size) > limit {
		return nil, ErrInflatedTooLarge
	}

	zr, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("zlib header: %w", err)
	}
	defer zr.Close()
	out, err := readLimited(zr, int(size))
	if err != nil {
		return nil, err
	}
	if len(out) != int(size) {
		return nil, fmt.Errorf("compress: inflated %d bytes, header declared %d: %w",
			len(out), size, protocol.ErrValueMismatch)
	}
	return out, nil
}
