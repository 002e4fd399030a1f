package proxy

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vango-dev/mcproto/pkg/capture"
	"github.com/vango-dev/mcproto/pkg/catalogue"
	"github.com/vango-dev/mcproto/pkg/compress"
	"github.com/vango-dev/mcproto/pkg/protocol"
	"github.com/vango-dev/mcproto/pkg/transport"
)

// copyChunk is the size of one forwarded read.
const copyChunk = 32 * 1024

// SessionInfo is a snapshot of a running session.
type SessionInfo struct {
	ID        string          `json:"id"`
	Client    string          `json:"client"`
	Upstream  string          `json:"upstream"`
	Started   time.Time       `json:"started"`
	Phase     catalogue.Phase `json:"phase"`
	Packets   uint64          `json:"packets"`
	Undecoded uint64          `json:"undecoded"`
	BytesUp   uint64          `json:"bytes_serverbound"`
	BytesDown uint64          `json:"bytes_clientbound"`
}

// Session is one proxied client connection.
//
// Bytes are forwarded untouched. When decoding is enabled each direction also
// feeds a frame buffer, and every complete frame is decoded against the
// current phase before the chunk that completed it is forwarded, so a phase
// switch is applied before the peer can react to the packet causing it.
type Session struct {
	ID       string
	Client   string
	Upstream string
	Started  time.Time

	phase     atomic.Uint32
	packets   atomic.Uint64
	undecoded atomic.Uint64
	bytesUp   atomic.Uint64
	bytesDown atomic.Uint64

	p       *Proxy
	capture *capture.Writer
	path    string
	log     zerolog.Logger
}

func newSession(p *Proxy, client, upstream string) *Session {
	id := uuid.NewString()
	return &Session{
		ID:       id,
		Client:   client,
		Upstream: upstream,
		Started:  time.Now(),
		p:        p,
		log:      p.log.With().Str("session", id).Str("client", client).Logger(),
	}
}

// Phase returns the phase the session is tracking.
func (s *Session) Phase() catalogue.Phase {
	return catalogue.Phase(s.phase.Load())
}

// Info returns a snapshot of the session counters.
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:        s.ID,
		Client:    s.Client,
		Upstream:  s.Upstream,
		Started:   s.Started,
		Phase:     s.Phase(),
		Packets:   s.packets.Load(),
		Undecoded: s.undecoded.Load(),
		BytesUp:   s.bytesUp.Load(),
		BytesDown: s.bytesDown.Load(),
	}
}

// run forwards both directions until either side closes, then closes both.
func (s *Session) run(ctx context.Context, client, upstream io.ReadWriteCloser) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var closeOnce sync.Once
	closeBoth := func() {
		closeOnce.Do(func() {
			client.Close()
			upstream.Close()
		})
	}
	stop := context.AfterFunc(ctx, closeBoth)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer cancel()
		s.pump(upstream, client, catalogue.Serverbound)
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		s.pump(client, upstream, catalogue.Clientbound)
	}()
	wg.Wait()
	closeBoth()
}

// pump copies src to dst, tapping the bytes on the way.
func (s *Session) pump(dst io.Writer, src io.Reader, dir catalogue.Direction) {
	t := s.newTap(dir)
	buf := make([]byte, copyChunk)
	counter := &s.bytesUp
	if dir == catalogue.Clientbound {
		counter = &s.bytesDown
	}

	for {
		n, err := src.Read(buf)
		if n > 0 {
			counter.Add(uint64(n))
			if t != nil {
				t.feed(buf[:n])
			}
			if _, werr := dst.Write(buf[:n]); werr != nil {
				if !isClosed(werr) {
					s.log.Debug().Err(werr).Stringer("direction", dir).Msg("forward failed")
				}
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !isClosed(err) {
				s.log.Debug().Err(err).Stringer("direction", dir).Msg("read failed")
			}
			if t != nil {
				t.finish()
			}
			return
		}
	}
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}

// tap frames and decodes one direction of the stream.
type tap struct {
	s         *Session
	dir       catalogue.Direction
	frames    *protocol.FrameBuffer
	transform compress.Transform
	broken    bool
}

func (s *Session) newTap(dir catalogue.Direction) *tap {
	if !s.p.cfg.Decode {
		return nil
	}
	t := &tap{
		s:      s,
		dir:    dir,
		frames: protocol.NewFrameBuffer(s.p.cfg.Limits.MaxFrameSize),
	}
	if s.p.cfg.CompressionThreshold >= 0 {
		t.transform = compress.NewThreshold(s.p.cfg.CompressionThreshold)
	}
	return t
}

func (t *tap) feed(chunk []byte) {
	if t.broken {
		return
	}
	t.frames.Write(chunk)
	for {
		payload, ok, err := t.frames.Next()
		if err != nil {
			// The stream can no longer be split; keep forwarding blind.
			t.broken = true
			t.s.p.metrics.ObserveError(err)
			t.s.log.Warn().Err(err).Stringer("direction", t.dir).Msg("framing lost, decoding stopped")
			return
		}
		if !ok {
			return
		}
		t.s.p.metrics.ObserveFrame(t.dir.String(), len(payload))
		t.observe(payload)
	}
}

func (t *tap) finish() {
	if !t.broken && t.frames.Len() > 0 {
		t.s.p.metrics.ObserveError(protocol.ErrTruncatedInput)
		t.s.log.Debug().Int("buffered", t.frames.Len()).Stringer("direction", t.dir).Msg("stream ended inside a frame")
	}
}

func (t *tap) observe(payload []byte) {
	s := t.s
	if t.transform != nil {
		out, err := t.transform.Decode(payload)
		if err != nil {
			s.undecoded.Add(1)
			s.p.metrics.ObserveError(err)
			s.log.Warn().Err(err).Stringer("direction", t.dir).Msg("frame decompression failed")
			return
		}
		payload = out
	}

	phase := s.Phase()
	s.record(t.dir, phase, payload)

	pkt, err := transport.DecodePacket(s.p.codec, phase, t.dir, payload)
	if err != nil {
		s.undecoded.Add(1)
		s.p.metrics.ObserveError(err)
		s.log.Debug().Err(err).
			Stringer("phase", phase).
			Stringer("direction", t.dir).
			Int("size", len(payload)).
			Msg("packet not decoded")
		return
	}

	s.packets.Add(1)
	s.p.metrics.ObservePacket(phase.String(), t.dir.String(), pkt.Name)
	s.log.Trace().
		Stringer("phase", phase).
		Stringer("direction", t.dir).
		Int("id", pkt.ID).
		Str("packet", pkt.Name).
		Int("size", len(payload)).
		Msg("packet")

	if next, ok := catalogue.NextPhase(phase, t.dir, pkt.Value); ok {
		s.phase.Store(uint32(next))
		s.log.Debug().Stringer("from", phase).Stringer("to", next).Msg("phase changed")
	}
}

func (s *Session) record(dir catalogue.Direction, phase catalogue.Phase, payload []byte) {
	if s.capture == nil {
		return
	}
	err := s.capture.Write(capture.Record{
		Direction: dir,
		Time:      time.Now(),
		Phase:     phase,
		Payload:   payload,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("capture write failed")
	}
}
