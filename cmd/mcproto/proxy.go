package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	mcerrors "github.com/vango-dev/mcproto/internal/errors"
	"github.com/vango-dev/mcproto/internal/logging"
	"github.com/vango-dev/mcproto/pkg/capture"
	"github.com/vango-dev/mcproto/pkg/proxy"
	"github.com/vango-dev/mcproto/pkg/transport"
)

func proxyCmd(configPath *string) *cobra.Command {
	var (
		listen     string
		upstream   string
		httpListen string
		captureDir string
		noDecode   bool
	)

	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Run an inspecting proxy in front of a server",
		Long: `Accept client connections, forward them to the upstream server and
decode a copy of the traffic in both directions.

Decoded packets feed the Prometheus metrics on the admin server. With a
capture directory every session is recorded to <dir>/<session>.mccap
and uploaded to S3 when [capture.s3] is configured.

Flags override the values from mcproto.toml.

Examples:
  mcproto proxy --upstream play.example.net:25565
  mcproto proxy --listen :25566 --capture-dir captures
  mcproto proxy --http "" --no-decode`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("listen") {
				cfg.Proxy.Listen = listen
			}
			if flags.Changed("upstream") {
				cfg.Proxy.Upstream = upstream
			}
			if flags.Changed("http") {
				cfg.HTTP.Listen = httpListen
			}
			if flags.Changed("capture-dir") {
				cfg.Capture.Dir = captureDir
			}
			if noDecode {
				cfg.Proxy.Decode = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := logging.ConfigureRuntime(cfg.Log)
			metrics := transport.NewMetrics()

			opts := []proxy.Option{
				proxy.WithMetrics(metrics),
				proxy.WithLogger(logger),
			}
			if s3cfg := cfg.Capture.S3; s3cfg.Bucket != "" {
				client := capture.NewS3Client(capture.S3Options{
					Region:       s3cfg.Region,
					Endpoint:     s3cfg.Endpoint,
					UsePathStyle: s3cfg.PathStyle,
				})
				uploader := capture.NewS3Uploader(client, s3cfg.Bucket, s3cfg.Prefix).WithLogger(logger)
				opts = append(opts, proxy.WithUploader(uploader))
			}

			p := proxy.New(proxy.Config{
				Upstream:             cfg.Proxy.Upstream,
				DialTimeout:          cfg.Proxy.DialTimeout.Duration,
				Decode:               cfg.Proxy.Decode,
				Limits:               cfg.ProtocolLimits(),
				CompressionThreshold: cfg.Compression.Threshold,
				CaptureDir:           cfg.Capture.Dir,
			}, opts...)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", cfg.Proxy.Listen)
			if err != nil {
				return mcerrors.New("M144").WithDetailf("proxy.listen %s", cfg.Proxy.Listen).Wrap(err)
			}

			out := cmd.OutOrStdout()
			success(out, "proxy listening on %s", ln.Addr())
			info(out, "forwarding to %s", cfg.Proxy.Upstream)
			if cfg.Capture.Dir != "" && cfg.Proxy.Decode {
				info(out, "capturing to %s", cfg.Capture.Dir)
			} else if cfg.Capture.Dir != "" {
				warn(out, "capture.dir is ignored while decoding is disabled")
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return p.Serve(ctx, ln)
			})

			if cfg.HTTP.Listen != "" {
				hln, err := net.Listen("tcp", cfg.HTTP.Listen)
				if err != nil {
					ln.Close()
					_ = g.Wait()
					return mcerrors.New("M144").WithDetailf("http.listen %s", cfg.HTTP.Listen).Wrap(err)
				}
				srv := proxy.NewServer(p,
					proxy.WithWebSocket(cfg.HTTP.WebSocket),
					proxy.WithServerLogger(logger),
				)
				info(out, "admin server on http://%s", hln.Addr())
				g.Go(func() error {
					return srv.Serve(ctx, hln, cfg.HTTP.ReadHeaderTimeout.Duration)
				})
			}

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			info(out, "stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Address clients connect to")
	cmd.Flags().StringVar(&upstream, "upstream", "", "Server to forward to")
	cmd.Flags().StringVar(&httpListen, "http", "", "Admin server address; empty disables it")
	cmd.Flags().StringVar(&captureDir, "capture-dir", "", "Directory for session capture files")
	cmd.Flags().BoolVar(&noDecode, "no-decode", false, "Forward bytes without decoding")

	return cmd
}
