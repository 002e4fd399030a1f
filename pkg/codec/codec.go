// Package codec is the schema-driven traversal engine.
//
// A Codec walks a value and a *schema.Shape together, writing or reading the
// wire bytes through protocol.Encoder and protocol.Decoder. Composite shapes
// are traversed with an explicit frame stack, so nesting depth is bounded by
// Limits.MaxDepth rather than by the goroutine stack.
//
// Value model:
//
//	bool, int8..int64, uint8..uint64, float32, float64  primitives
//	int32 / int64                                       VarInt / VarLong
//	string                                              String
//	protocol.Uint128                                    u128
//	nil or the inner value                              Optional
//	Array (or []any), ByteArray (or []byte)             Array
//	[]any                                               Tuple
//	Record                                              Record
//	Variant                                             Union
//	Document, UUID, UUID128, Metadata, ChunkBulk        specialised kinds
//	[]byte                                              Rest
//
// Encode accepts any Go integer type for integer shapes as long as the value
// fits; Decode always returns the exact type listed above.
package codec

import (
	"github.com/rs/zerolog"

	"github.com/vango-dev/mcproto/pkg/compress"
	"github.com/vango-dev/mcproto/pkg/nbt"
	"github.com/vango-dev/mcproto/pkg/protocol"
	"github.com/vango-dev/mcproto/pkg/schema"
)

// DocumentCodec converts between an embedded tree document's bytes and its
// structured form.
type DocumentCodec interface {
	DecodeDocument(b []byte) (name string, root any, err error)
	EncodeDocument(name string, root any) ([]byte, error)
}

// Compressor wraps compressed document bodies.
type Compressor interface {
	Inflate(p []byte) ([]byte, error)
	Deflate(p []byte) ([]byte, error)
}

// Codec encodes and decodes values against shapes.
// A Codec is immutable after New and safe for concurrent use.
type Codec struct {
	limits protocol.Limits
	docs   DocumentCodec
	gzip   Compressor
	log    zerolog.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithLimits sets decoding limits. Zero fields keep their defaults.
func WithLimits(l protocol.Limits) Option {
	return func(c *Codec) {
		c.limits = l.Normalize()
	}
}

// WithDocumentCodec replaces the NBT document collaborator.
func WithDocumentCodec(dc DocumentCodec) Option {
	return func(c *Codec) {
		c.docs = dc
	}
}

// WithCompressor replaces the gzip collaborator for compressed documents.
func WithCompressor(z Compressor) Option {
	return func(c *Codec) {
		c.gzip = z
	}
}

// WithLogger sets the logger used for decode diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Codec) {
		c.log = l
	}
}

// New creates a Codec.
func New(opts ...Option) *Codec {
	c := &Codec{
		limits: protocol.DefaultLimits(),
		docs:   nbt.Codec{},
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.gzip == nil {
		c.gzip = compress.Gzip{MaxInflated: c.limits.MaxAllocation}
	}
	return c
}

// Limits returns the limits the codec enforces.
func (c *Codec) Limits() protocol.Limits {
	return c.limits
}

// Encode serialises v according to s as a complete message. A present
// optional that ends the message in fewer than two bytes could not be read
// back and fails with protocol.ErrShortOptional.
func (c *Codec) Encode(v any, s *schema.Shape) ([]byte, error) {
	e := protocol.NewEncoder()
	last, err := c.walkEncode(e, v, s)
	if err != nil {
		return nil, err
	}
	if last >= 0 && e.Len()-last < 2 {
		return nil, &protocol.Error{
			Op:     "encode",
			Path:   shapeName(s),
			Offset: last,
			Err:    protocol.ErrShortOptional,
		}
	}
	return e.Bytes(), nil
}

// EncodeTo appends the encoding of v to e. On failure e is truncated back to
// its length before the call.
func (c *Codec) EncodeTo(e *protocol.Encoder, v any, s *schema.Shape) error {
	start := e.Len()
	if err := c.encode(e, v, s); err != nil {
		e.Truncate(start)
		return err
	}
	return nil
}

// Decode parses exactly one value of shape s from b. Bytes left over after
// the value are an error.
func (c *Codec) Decode(b []byte, s *schema.Shape) (any, error) {
	d := protocol.NewDecoderWithLimits(b, c.limits)
	v, err := c.decode(d, s)
	if err != nil {
		c.log.Debug().Err(err).Str("shape", shapeName(s)).Int("size", len(b)).Msg("decode failed")
		return nil, err
	}
	if !d.EOF() {
		return nil, &protocol.Error{
			Op:     "decode",
			Path:   shapeName(s),
			Offset: d.Position(),
			Err:    protocol.ErrTrailingData,
		}
	}
	return v, nil
}

// DecodeFrom parses one value of shape s from d, leaving d positioned after
// it.
func (c *Codec) DecodeFrom(d *protocol.Decoder, s *schema.Shape) (any, error) {
	return c.decode(d, s)
}

var defaultCodec = New()

// Default returns the shared codec with default options.
func Default() *Codec {
	return defaultCodec
}

// Encode serialises v with the default codec.
func Encode(v any, s *schema.Shape) ([]byte, error) {
	return defaultCodec.Encode(v, s)
}

// Decode parses b with the default codec.
func Decode(b []byte, s *schema.Shape) (any, error) {
	return defaultCodec.Decode(b, s)
}

func shapeName(s *schema.Shape) string {
	if s == nil {
		return ""
	}
	return s.Name
}
