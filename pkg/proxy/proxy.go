// Package proxy runs an inspecting proxy between game clients and a server.
//
// The proxy never alters traffic. It decodes a copy of each direction to log
// packets, count them in Prometheus and optionally write a capture file per
// session, which can be uploaded to S3 when the session ends.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vango-dev/mcproto/pkg/capture"
	"github.com/vango-dev/mcproto/pkg/codec"
	"github.com/vango-dev/mcproto/pkg/protocol"
	"github.com/vango-dev/mcproto/pkg/transport"
)

// Config configures a Proxy.
type Config struct {
	// Upstream is the server address sessions are forwarded to.
	Upstream string

	// DialTimeout bounds connecting to the upstream. Zero means 5s.
	DialTimeout time.Duration

	// Decode enables decoding a copy of the traffic.
	Decode bool

	// Limits bounds the decoder.
	Limits protocol.Limits

	// CompressionThreshold enables threshold framing when >= 0.
	CompressionThreshold int

	// CaptureDir enables one capture file per session when set.
	CaptureDir string
}

// Uploader receives finished capture files.
type Uploader interface {
	UploadFile(ctx context.Context, path string) (string, error)
}

// Dialer opens the upstream connection.
type Dialer func(ctx context.Context, network, addr string) (net.Conn, error)

// Proxy accepts client connections and forwards them to the upstream.
type Proxy struct {
	cfg      Config
	codec    *codec.Codec
	metrics  *transport.Metrics
	uploader Uploader
	dial     Dialer
	log      zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

// Option configures a Proxy.
type Option func(*Proxy)

// WithMetrics records frames, packets and errors.
func WithMetrics(m *transport.Metrics) Option {
	return func(p *Proxy) {
		p.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Proxy) {
		p.log = l
	}
}

// WithUploader uploads each capture file when its session ends.
func WithUploader(u Uploader) Option {
	return func(p *Proxy) {
		p.uploader = u
	}
}

// WithDialer replaces the upstream dialer.
func WithDialer(d Dialer) Option {
	return func(p *Proxy) {
		p.dial = d
	}
}

// New creates a Proxy.
func New(cfg Config, opts ...Option) *Proxy {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	cfg.Limits = cfg.Limits.Normalize()

	p := &Proxy{
		cfg:      cfg,
		log:      zerolog.Nop(),
		sessions: make(map[string]*Session),
	}
	var d net.Dialer
	p.dial = d.DialContext
	for _, opt := range opts {
		opt(p)
	}
	p.codec = codec.New(codec.WithLimits(cfg.Limits), codec.WithLogger(p.log))
	return p
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (p *Proxy) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return p.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then waits for the
// running sessions to end. It returns nil after a cancellation.
func (p *Proxy) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	p.log.Info().Str("listen", ln.Addr().String()).Str("upstream", p.cfg.Upstream).Msg("proxy listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				p.wg.Wait()
				return nil
			}
			p.wg.Wait()
			return err
		}
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			if err := p.Handle(ctx, conn, conn.RemoteAddr().String()); err != nil {
				p.log.Warn().Err(err).Str("client", conn.RemoteAddr().String()).Msg("session failed")
			}
		}()
	}
}

// Handle proxies one client stream to the upstream and returns when either
// side closes. It closes client.
func (p *Proxy) Handle(ctx context.Context, client io.ReadWriteCloser, remote string) error {
	dctx, cancel := context.WithTimeout(ctx, p.cfg.DialTimeout)
	upstream, err := p.dial(dctx, "tcp", p.cfg.Upstream)
	cancel()
	if err != nil {
		client.Close()
		return fmt.Errorf("proxy: dial upstream %s: %w", p.cfg.Upstream, err)
	}

	s := newSession(p, remote, p.cfg.Upstream)
	if err := p.openCapture(s); err != nil {
		s.log.Warn().Err(err).Msg("capture disabled for session")
	}

	p.track(s)
	p.metrics.ConnOpened()
	s.log.Info().Str("upstream", s.Upstream).Msg("session started")

	s.run(ctx, client, upstream)

	p.metrics.ConnClosed()
	p.untrack(s)
	info := s.Info()
	s.log.Info().
		Dur("duration", time.Since(s.Started)).
		Uint64("packets", info.Packets).
		Uint64("undecoded", info.Undecoded).
		Uint64("bytes_serverbound", info.BytesUp).
		Uint64("bytes_clientbound", info.BytesDown).
		Stringer("phase", info.Phase).
		Msg("session ended")

	p.closeCapture(ctx, s)
	return nil
}

func (p *Proxy) openCapture(s *Session) error {
	if p.cfg.CaptureDir == "" || !p.cfg.Decode {
		return nil
	}
	if err := os.MkdirAll(p.cfg.CaptureDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(p.cfg.CaptureDir, s.ID+capture.Extension)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	s.capture = capture.NewWriter(f)
	s.path = path
	return nil
}

func (p *Proxy) closeCapture(ctx context.Context, s *Session) {
	if s.capture == nil {
		return
	}
	if err := s.capture.Close(); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("capture close failed")
		return
	}
	s.log.Info().Str("path", s.path).Int("records", s.capture.Count()).Msg("capture written")
	if p.uploader == nil {
		return
	}
	// The session context is usually cancelled by now; the upload still runs.
	uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
	defer cancel()
	if _, err := p.uploader.UploadFile(uctx, s.path); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("capture upload failed")
	}
}

func (p *Proxy) track(s *Session) {
	p.mu.Lock()
	p.sessions[s.ID] = s
	p.mu.Unlock()
}

func (p *Proxy) untrack(s *Session) {
	p.mu.Lock()
	delete(p.sessions, s.ID)
	p.mu.Unlock()
}

// Sessions returns a snapshot of the running sessions, oldest first.
func (p *Proxy) Sessions() []SessionInfo {
	p.mu.Lock()
	out := make([]SessionInfo, 0, len(p.sessions))
	for _, s := range p.sessions {
		out = append(out, s.Info())
	}
	p.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Started.Before(out[j].Started) })
	return out
}
