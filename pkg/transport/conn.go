// Package transport carries packets over a byte stream.
//
// A Conn splits the stream into VarInt frames, optionally unwraps each frame
// with a compress.Transform, and decodes the payload against the catalogue
// entry for the current phase. The phase follows the handshake and login
// success packets automatically.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/mcproto/pkg/catalogue"
	"github.com/vango-dev/mcproto/pkg/codec"
	"github.com/vango-dev/mcproto/pkg/compress"
	"github.com/vango-dev/mcproto/pkg/protocol"
)

const defaultTracerName = "mcproto"

// readChunk is the size of a single read from the stream.
const readChunk = 16 * 1024

// ErrNoPackets is returned when the current phase has no packets in the
// requested direction.
var ErrNoPackets = fmt.Errorf("transport: no packets for phase and direction: %w", protocol.ErrUnsupportedShape)

// Packet is one decoded frame.
type Packet struct {
	Phase     catalogue.Phase     `json:"phase"`
	Direction catalogue.Direction `json:"direction"`
	ID        int                 `json:"id"`
	Name      string              `json:"name"`
	Value     codec.Variant       `json:"value"`
	Raw       []byte              `json:"-"`
}

type readDeadliner interface {
	SetReadDeadline(time.Time) error
}

type writeDeadliner interface {
	SetWriteDeadline(time.Time) error
}

// Conn reads packets sent by the peer and writes packets to it.
//
// ReadFrame/ReadPacket must be called from one goroutine at a time; writes
// may run concurrently with reads and are serialised internally.
type Conn struct {
	rw        io.ReadWriter
	reads     catalogue.Direction
	phase     atomic.Uint32
	codec     *codec.Codec
	transform compress.Transform
	maxFrame  int

	frames *protocol.FrameBuffer
	buf    []byte

	wmu sync.Mutex

	metrics *Metrics
	tracer  trace.Tracer
	log     zerolog.Logger
}

// Option configures a Conn.
type Option func(*Conn)

// WithCodec sets the codec used for packet payloads.
func WithCodec(c *codec.Codec) Option {
	return func(conn *Conn) {
		conn.codec = c
	}
}

// WithTransform wraps every frame payload, e.g. with compress.Threshold.
func WithTransform(t compress.Transform) Option {
	return func(conn *Conn) {
		conn.transform = t
	}
}

// WithMaxFrameSize bounds frame payloads in both directions.
func WithMaxFrameSize(n int) Option {
	return func(conn *Conn) {
		conn.maxFrame = n
	}
}

// WithPhase sets the initial phase (default: catalogue.Handshake).
func WithPhase(p catalogue.Phase) Option {
	return func(conn *Conn) {
		conn.phase.Store(uint32(p))
	}
}

// WithMetrics records frames, packets and errors.
func WithMetrics(m *Metrics) Option {
	return func(conn *Conn) {
		conn.metrics = m
	}
}

// WithTracer sets the tracer used for packet spans. By default the tracer
// comes from the global OpenTelemetry provider.
func WithTracer(t trace.Tracer) Option {
	return func(conn *Conn) {
		conn.tracer = t
	}
}

// WithLogger sets the connection logger.
func WithLogger(l zerolog.Logger) Option {
	return func(conn *Conn) {
		conn.log = l
	}
}

// NewConn wraps rw. reads is the direction of packets arriving on rw; the
// Conn writes packets in the opposite direction.
func NewConn(rw io.ReadWriter, reads catalogue.Direction, opts ...Option) *Conn {
	c := &Conn{
		rw:    rw,
		reads: reads,
		codec: codec.Default(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxFrame <= 0 {
		c.maxFrame = c.codec.Limits().MaxFrameSize
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(defaultTracerName)
	}
	c.frames = protocol.NewFrameBuffer(c.maxFrame)
	return c
}

// Phase returns the current phase.
func (c *Conn) Phase() catalogue.Phase {
	return catalogue.Phase(c.phase.Load())
}

// SetPhase switches the packet set used for both directions.
func (c *Conn) SetPhase(p catalogue.Phase) {
	if old := catalogue.Phase(c.phase.Swap(uint32(p))); old != p {
		c.log.Debug().Stringer("from", old).Stringer("to", p).Msg("phase change")
	}
}

// SetTransform replaces the frame transform, e.g. once compression has been
// negotiated. It must not race with ReadFrame.
func (c *Conn) SetTransform(t compress.Transform) {
	c.transform = t
}

// ReadFrame returns the next frame payload, after the transform.
//
// The context deadline, if any, becomes the stream's read deadline when the
// stream supports one; cancelling the context interrupts a blocked read the
// same way.
func (c *Conn) ReadFrame(ctx context.Context) ([]byte, error) {
	for {
		payload, ok, err := c.frames.Next()
		if err != nil {
			c.metrics.ObserveError(err)
			return nil, err
		}
		if ok {
			c.metrics.ObserveFrame(c.reads.String(), len(payload))
			return c.unwrap(payload)
		}
		if err := c.fill(ctx); err != nil {
			return nil, err
		}
	}
}

func (c *Conn) unwrap(payload []byte) ([]byte, error) {
	if c.transform == nil {
		return payload, nil
	}
	out, err := c.transform.Decode(payload)
	if err != nil {
		c.metrics.ObserveError(err)
		return nil, fmt.Errorf("transport: unwrap frame: %w", err)
	}
	return out, nil
}

// fill performs one read from the stream into the frame buffer.
func (c *Conn) fill(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rd, ok := c.rw.(readDeadliner); ok {
		if dl, ok := ctx.Deadline(); ok {
			_ = rd.SetReadDeadline(dl)
		}
		stop := context.AfterFunc(ctx, func() {
			_ = rd.SetReadDeadline(time.Now())
		})
		defer func() {
			stop()
			_ = rd.SetReadDeadline(time.Time{})
		}()
	}

	if c.buf == nil {
		c.buf = make([]byte, readChunk)
	}
	n, err := c.rw.Read(c.buf)
	if n > 0 {
		c.frames.Write(c.buf[:n])
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		if n > 0 {
			return nil
		}
		if c.frames.Len() > 0 {
			c.metrics.ObserveError(protocol.ErrTruncatedInput)
			return protocol.ErrTruncatedInput
		}
		return io.EOF
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, os.ErrDeadlineExceeded):
		return context.DeadlineExceeded
	default:
		err = protocol.IoError(err)
		c.metrics.ObserveError(err)
		return err
	}
}

// ReadPacket reads and decodes the next packet for the current phase. A
// handshake or login success moves the connection to the next phase before
// ReadPacket returns.
func (c *Conn) ReadPacket(ctx context.Context) (*Packet, error) {
	payload, err := c.ReadFrame(ctx)
	if err != nil {
		return nil, err
	}
	return c.decodePacket(ctx, payload)
}

func (c *Conn) decodePacket(ctx context.Context, payload []byte) (*Packet, error) {
	phase := c.Phase()
	_, span := c.tracer.Start(ctx, "mcproto.read_packet",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("mcproto.phase", phase.String()),
			attribute.String("mcproto.direction", c.reads.String()),
			attribute.Int("mcproto.size", len(payload)),
		),
	)
	defer span.End()

	pkt, err := DecodePacket(c.codec, phase, c.reads, payload)
	if err != nil {
		c.metrics.ObserveError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Debug().Err(err).Stringer("phase", phase).Int("size", len(payload)).Msg("packet decode failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("mcproto.packet_id", pkt.ID), attribute.String("mcproto.packet", pkt.Name))
	span.SetStatus(codes.Ok, "")
	c.metrics.ObservePacket(phase.String(), c.reads.String(), pkt.Name)

	if next, ok := catalogue.NextPhase(phase, c.reads, pkt.Value); ok {
		c.SetPhase(next)
	}
	return pkt, nil
}

// DecodePacket decodes one frame payload sent in phase p by d.
func DecodePacket(cd *codec.Codec, p catalogue.Phase, d catalogue.Direction, payload []byte) (*Packet, error) {
	shape := catalogue.Lookup(p, d)
	if shape == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrNoPackets, p, d)
	}
	v, err := cd.Decode(payload, shape)
	if err != nil {
		return nil, err
	}
	variant := v.(codec.Variant)
	return &Packet{
		Phase:     p,
		Direction: d,
		ID:        variant.Index,
		Name:      variant.Name,
		Value:     variant,
		Raw:       payload,
	}, nil
}

// WriteFrame wraps payload with the transform and writes it as one frame.
func (c *Conn) WriteFrame(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := payload
	if c.transform != nil {
		var err error
		if body, err = c.transform.Encode(payload); err != nil {
			return fmt.Errorf("transport: wrap frame: %w", err)
		}
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if wd, ok := c.rw.(writeDeadliner); ok {
		if dl, ok := ctx.Deadline(); ok {
			_ = wd.SetWriteDeadline(dl)
			defer wd.SetWriteDeadline(time.Time{})
		}
	}
	if err := protocol.WriteFrame(c.rw, body, c.maxFrame); err != nil {
		c.metrics.ObserveError(err)
		return err
	}
	c.metrics.ObserveFrame(c.reads.Opposite().String(), len(body))
	return nil
}

// WritePacket encodes pkt for the current phase and writes it. Sending a
// handshake or login success moves the connection to the next phase.
func (c *Conn) WritePacket(ctx context.Context, pkt codec.Variant) error {
	phase := c.Phase()
	dir := c.reads.Opposite()
	ctx, span := c.tracer.Start(ctx, "mcproto.write_packet",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("mcproto.phase", phase.String()),
			attribute.String("mcproto.direction", dir.String()),
		),
	)
	defer span.End()

	err := c.writePacket(ctx, phase, dir, pkt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (c *Conn) writePacket(ctx context.Context, phase catalogue.Phase, dir catalogue.Direction, pkt codec.Variant) error {
	shape := catalogue.Lookup(phase, dir)
	if shape == nil {
		return fmt.Errorf("%w: %s %s", ErrNoPackets, phase, dir)
	}
	payload, err := c.codec.Encode(pkt, shape)
	if err != nil {
		c.metrics.ObserveError(err)
		return err
	}
	if err := c.WriteFrame(ctx, payload); err != nil {
		return err
	}
	if pkt.Name == "" && pkt.Index >= 0 && pkt.Index < len(shape.Variants) {
		pkt.Name = shape.Variants[pkt.Index].Name
	}
	c.metrics.ObservePacket(phase.String(), dir.String(), pkt.Name)
	if next, ok := catalogue.NextPhase(phase, dir, pkt); ok {
		c.SetPhase(next)
	}
	return nil
}

// Close closes the underlying stream if it is an io.Closer.
func (c *Conn) Close() error {
	if cl, ok := c.rw.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
