package main

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	mcerrors "github.com/vango-dev/mcproto/internal/errors"
	"github.com/vango-dev/mcproto/pkg/capture"
	"github.com/vango-dev/mcproto/pkg/codec"
	"github.com/vango-dev/mcproto/pkg/transport"
)

func inspectCmd(configPath *string) *cobra.Command {
	var (
		upload bool
		only   string
	)

	cmd := &cobra.Command{
		Use:   "inspect <capture>",
		Short: "Decode a capture file written by the proxy",
		Long: `Decode every record of a capture file and print one JSON line per
packet. Each record carries its own phase and direction.

With --upload the file is copied to the S3 bucket from [capture.s3].

Examples:
  mcproto inspect captures/3f2c0d7e.mccap
  mcproto inspect --direction clientbound captures/3f2c0d7e.mccap
  mcproto inspect --upload captures/3f2c0d7e.mccap`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			if upload {
				s3cfg := cfg.Capture.S3
				if s3cfg.Bucket == "" {
					return mcerrors.New("M102").
						WithDetail("capture.s3.bucket is not set").
						WithSuggestion("Add a [capture.s3] section to mcproto.toml")
				}
				client := capture.NewS3Client(capture.S3Options{
					Region:       s3cfg.Region,
					Endpoint:     s3cfg.Endpoint,
					UsePathStyle: s3cfg.PathStyle,
				})
				ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
				defer cancel()
				key, err := capture.NewS3Uploader(client, s3cfg.Bucket, s3cfg.Prefix).UploadFile(ctx, args[0])
				if err != nil {
					return mcerrors.FromError(err, "M151")
				}
				success(cmd.OutOrStdout(), "uploaded s3://%s/%s", s3cfg.Bucket, key)
				return nil
			}

			f, err := os.Open(args[0])
			if err != nil {
				return mcerrors.FromError(err, "M150")
			}
			defer f.Close()

			var filter *int
			if only != "" {
				_, d, err := parsePhaseDirection("handshake", only)
				if err != nil {
					return err
				}
				v := int(d)
				filter = &v
			}

			cd := codec.New(codec.WithLimits(cfg.ProtocolLimits()))
			enc := json.NewEncoder(cmd.OutOrStdout())
			r := capture.NewReader(f)
			for i := 0; ; i++ {
				rec, err := r.Next()
				if err != nil {
					if errors.Is(err, io.EOF) {
						return nil
					}
					return mcerrors.New("M150").
						WithDetailf("Record %d could not be read.", i).
						Wrap(err)
				}
				if filter != nil && int(rec.Direction) != *filter {
					continue
				}

				line := decodedLine{
					Index:     i,
					Time:      rec.Time.UTC().Format(time.RFC3339Nano),
					Phase:     rec.Phase,
					Direction: rec.Direction,
					Size:      len(rec.Payload),
				}
				pkt, err := transport.DecodePacket(cd, rec.Phase, rec.Direction, rec.Payload)
				if err != nil {
					fillError(&line, err)
				} else {
					id := pkt.ID
					line.ID = &id
					line.Name = pkt.Name
					line.Value = pkt.Value.Payload
				}
				if err := enc.Encode(line); err != nil {
					return err
				}
			}
		},
	}

	cmd.Flags().BoolVar(&upload, "upload", false, "Upload the file to S3 instead of decoding it")
	cmd.Flags().StringVarP(&only, "direction", "d", "", "Only records sent in this direction")

	return cmd
}
