package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/mcproto/pkg/catalogue"
	"github.com/vango-dev/mcproto/pkg/codec"
	"github.com/vango-dev/mcproto/pkg/compress"
	"github.com/vango-dev/mcproto/pkg/protocol"
)

func handshake(next string) codec.Variant {
	return codec.Variant{Name: "Handshake", Payload: codec.Record{
		"proto_version":  int32(5),
		"server_address": "localhost",
		"server_port":    uint16(25565),
		"next_state":     codec.Variant{Name: next},
	}}
}

func pipe(t *testing.T, opts ...Option) (client, server *Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return NewConn(a, catalogue.Clientbound, opts...), NewConn(b, catalogue.Serverbound, opts...)
}

// send writes pkt from one goroutine while the caller reads on the other end
// of the synchronous pipe.
func send(t *testing.T, c *Conn, pkt codec.Variant) <-chan error {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- c.WritePacket(context.Background(), pkt) }()
	return errc
}

func TestLoginSequence(t *testing.T) {
	client, server := pipe(t)
	ctx := context.Background()

	errc := send(t, client, handshake("Login"))
	pkt, err := server.ReadPacket(ctx)
	require.NoError(t, err)
	require.NoError(t, <-errc)
	assert.Equal(t, "Handshake", pkt.Name)
	assert.Equal(t, catalogue.Login, client.Phase())
	assert.Equal(t, catalogue.Login, server.Phase())

	errc = send(t, client, codec.Variant{Name: "LoginStart", Payload: codec.Record{"name": "Notch"}})
	pkt, err = server.ReadPacket(ctx)
	require.NoError(t, err)
	require.NoError(t, <-errc)
	assert.Equal(t, "Notch", pkt.Value.Payload.(codec.Record)["name"])

	errc = send(t, server, codec.Variant{Index: 2, Payload: codec.Record{
		"uuid":     codec.UUID{},
		"username": "Notch",
	}})
	pkt, err = client.ReadPacket(ctx)
	require.NoError(t, err)
	require.NoError(t, <-errc)
	assert.Equal(t, "LoginSuccess", pkt.Name)
	assert.Equal(t, catalogue.Clientbound, pkt.Direction)
	assert.Equal(t, catalogue.Play, client.Phase())
	assert.Equal(t, catalogue.Play, server.Phase())

	errc = send(t, server, codec.Variant{Name: "KeepAlive", Payload: codec.Record{"keep_alive_id": int32(99)}})
	pkt, err = client.ReadPacket(ctx)
	require.NoError(t, err)
	require.NoError(t, <-errc)
	assert.Equal(t, 0, pkt.ID)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00, 0x63}, pkt.Raw)
}

func TestCompressedFrames(t *testing.T) {
	client, server := pipe(t, WithPhase(catalogue.Play), WithTransform(compress.NewThreshold(16)))
	long := strings.Repeat("hello ", 50)

	for _, msg := range []string{"hi", long} {
		errc := send(t, client, codec.Variant{Name: "ChatMessage", Payload: codec.Record{"message": msg}})
		pkt, err := server.ReadPacket(context.Background())
		require.NoError(t, err)
		require.NoError(t, <-errc)
		assert.Equal(t, msg, pkt.Value.Payload.(codec.Record)["message"])
	}
}

func TestReadDeadline(t *testing.T) {
	_, server := pipe(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := server.ReadFrame(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReadCancel(t *testing.T) {
	_, server := pipe(t)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	_, err := server.ReadFrame(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// A cancelled context fails before touching the stream.
	_, err = server.ReadFrame(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type stream struct {
	io.Reader
	io.Writer
}

func TestReadFrameEOF(t *testing.T) {
	c := NewConn(stream{bytes.NewReader(nil), io.Discard}, catalogue.Serverbound)
	_, err := c.ReadFrame(context.Background())
	assert.ErrorIs(t, err, io.EOF)

	c = NewConn(stream{bytes.NewReader([]byte{0x05, 1, 2}), io.Discard}, catalogue.Serverbound)
	_, err = c.ReadFrame(context.Background())
	assert.ErrorIs(t, err, protocol.ErrTruncatedInput)

	c = NewConn(stream{iotest.ErrReader(errors.New("reset")), io.Discard}, catalogue.Serverbound)
	_, err = c.ReadFrame(context.Background())
	assert.ErrorIs(t, err, protocol.ErrIoFailure)
}

func TestReadSplitDelivery(t *testing.T) {
	var wire []byte
	for _, id := range []int32{1, 2, 300} {
		payload, err := codec.Encode(codec.Variant{Name: "KeepAlive", Payload: codec.Record{"keep_alive_id": id}}, catalogue.Lookup(catalogue.Play, catalogue.Serverbound))
		require.NoError(t, err)
		wire = protocol.AppendFrame(wire, payload)
	}

	c := NewConn(stream{iotest.OneByteReader(bytes.NewReader(wire)), io.Discard}, catalogue.Serverbound, WithPhase(catalogue.Play))
	for _, want := range []int32{1, 2, 300} {
		pkt, err := c.ReadPacket(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, pkt.Value.Payload.(codec.Record)["keep_alive_id"])
	}
	_, err := c.ReadPacket(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrameTooLarge(t *testing.T) {
	var out bytes.Buffer
	c := NewConn(stream{bytes.NewReader(protocol.EncodeFrame(make([]byte, 100))), &out}, catalogue.Serverbound, WithMaxFrameSize(64))

	_, err := c.ReadFrame(context.Background())
	assert.ErrorIs(t, err, protocol.ErrFrameTooLarge)

	err = c.WriteFrame(context.Background(), make([]byte, 65))
	assert.ErrorIs(t, err, protocol.ErrFrameTooLarge)
	assert.Zero(t, out.Len())
}

func TestNoPacketsInDirection(t *testing.T) {
	var out bytes.Buffer
	// A server-side conn writes clientbound packets; the handshake has none.
	c := NewConn(stream{bytes.NewReader(nil), &out}, catalogue.Serverbound)
	err := c.WritePacket(context.Background(), codec.Variant{Index: 0})
	assert.ErrorIs(t, err, ErrNoPackets)
	assert.Equal(t, protocol.KindUnsupportedShape, protocol.Classify(err))

	_, err = DecodePacket(codec.Default(), catalogue.Handshake, catalogue.Clientbound, []byte{0})
	assert.ErrorIs(t, err, ErrNoPackets)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))

	wire := protocol.EncodeFrame([]byte{0x00, 0x00, 0x00, 0x00, 0x01})
	wire = protocol.AppendFrame(wire, []byte{0x7E})
	c := NewConn(stream{bytes.NewReader(wire), io.Discard}, catalogue.Serverbound, WithPhase(catalogue.Play), WithMetrics(m))

	_, err := c.ReadPacket(context.Background())
	require.NoError(t, err)
	_, err = c.ReadPacket(context.Background())
	require.ErrorIs(t, err, protocol.ErrUnknownVariant)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.framesTotal.WithLabelValues("serverbound")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.bytesTotal.WithLabelValues("serverbound")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.packetsTotal.WithLabelValues("play", "serverbound", "KeepAlive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorsTotal.WithLabelValues("UnsupportedShape")))

	m.ConnOpened()
	m.ConnOpened()
	m.ConnClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeConns))

	var nilMetrics *Metrics
	nilMetrics.ObserveFrame("serverbound", 1)
	nilMetrics.ObserveError(io.EOF)
	nilMetrics.ConnOpened()
}

func TestDecodePacketWithoutConn(t *testing.T) {
	pkt, err := DecodePacket(codec.Default(), catalogue.Status, catalogue.Clientbound, []byte{0x01, 0, 0, 0, 0, 0, 0, 0, 7})
	require.NoError(t, err)
	assert.Equal(t, "Pong", pkt.Name)
	assert.Equal(t, int64(7), pkt.Value.Payload.(codec.Record)["time"])
}
