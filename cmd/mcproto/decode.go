package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vango-dev/mcproto/internal/config"
	mcerrors "github.com/vango-dev/mcproto/internal/errors"
	"github.com/vango-dev/mcproto/pkg/catalogue"
	"github.com/vango-dev/mcproto/pkg/codec"
	"github.com/vango-dev/mcproto/pkg/compress"
	"github.com/vango-dev/mcproto/pkg/protocol"
	"github.com/vango-dev/mcproto/pkg/transport"
)

// decodedLine is one JSON line of decode and inspect output.
type decodedLine struct {
	Index     int                 `json:"index"`
	Time      string              `json:"time,omitempty"`
	Phase     catalogue.Phase     `json:"phase"`
	Direction catalogue.Direction `json:"direction"`
	Size      int                 `json:"size"`
	ID        *int                `json:"id,omitempty"`
	Name      string              `json:"name,omitempty"`
	Value     any                 `json:"value,omitempty"`
	Error     string              `json:"error,omitempty"`
	Code      string              `json:"code,omitempty"`
	Path      string              `json:"path,omitempty"`
}

func decodeCmd(configPath *string) *cobra.Command {
	var (
		hexInput  string
		phaseName string
		dirName   string
		follow    bool
		threshold int
	)

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a framed packet stream",
		Long: `Decode a raw stream of VarInt-framed packets and print one JSON line
per packet.

The stream is read from the file argument, from --hex, or from stdin.
Decoding starts in --phase and, unless --follow=false, moves on to the
next phase after a handshake or login success packet.

Examples:
  mcproto decode --hex "0f0005096c6f63616c686f737463dd02"
  mcproto decode --phase play --direction clientbound dump.bin
  cat dump.bin | mcproto decode --compression-threshold 256`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phase, dir, err := parsePhaseDirection(phaseName, dirName)
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args, hexInput)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("compression-threshold") {
				threshold = cfg.Compression.Threshold
			}
			return runDecode(cmd.OutOrStdout(), data, decodeOptions{
				phase:     phase,
				dir:       dir,
				follow:    follow,
				limits:    cfg.ProtocolLimits(),
				threshold: threshold,
			})
		},
	}

	cmd.Flags().StringVar(&hexInput, "hex", "", "Hex encoded input instead of a file")
	cmd.Flags().StringVarP(&phaseName, "phase", "p", "handshake", "Phase of the first packet")
	cmd.Flags().StringVarP(&dirName, "direction", "d", "serverbound", "Direction of the stream")
	cmd.Flags().BoolVar(&follow, "follow", true, "Follow handshake and login success phase changes")
	cmd.Flags().IntVar(&threshold, "compression-threshold", -1, "Compression threshold; negative disables")

	return cmd
}

type decodeOptions struct {
	phase     catalogue.Phase
	dir       catalogue.Direction
	follow    bool
	limits    protocol.Limits
	threshold int
}

func runDecode(w io.Writer, data []byte, opts decodeOptions) error {
	cd := codec.New(codec.WithLimits(opts.limits))
	var transform compress.Transform
	if opts.threshold >= 0 {
		transform = compress.NewThreshold(opts.threshold)
	}

	enc := json.NewEncoder(w)
	phase := opts.phase
	failed, total := 0, 0

	scanner := newFrameScanner(bytes.NewReader(data), opts.limits.MaxFrameSize)
	for scanner.Scan() {
		payload := scanner.Bytes()
		line := decodedLine{Index: total, Phase: phase, Direction: opts.dir, Size: len(payload)}
		total++

		if transform != nil {
			out, err := transform.Decode(payload)
			if err != nil {
				failed++
				fillError(&line, err)
				if err := enc.Encode(line); err != nil {
					return err
				}
				continue
			}
			payload = out
		}

		pkt, err := transport.DecodePacket(cd, phase, opts.dir, payload)
		if err != nil {
			failed++
			fillError(&line, err)
		} else {
			id := pkt.ID
			line.ID = &id
			line.Name = pkt.Name
			line.Value = pkt.Value.Payload
			if next, ok := catalogue.NextPhase(phase, opts.dir, pkt.Value); ok && opts.follow {
				phase = next
			}
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return mcerrors.FromWire(err).
			WithDetailf("The stream could not be split after %d frames.", total)
	}
	if failed > 0 {
		return mcerrors.Newf(mcerrors.CategoryWire, "%d of %d frames failed to decode", failed, total)
	}
	return nil
}

func fillError(line *decodedLine, err error) {
	d := mcerrors.FromWire(err)
	line.Error = err.Error()
	line.Code = d.Code
	line.Path = d.Path
}

func framesCmd() *cobra.Command {
	var hexInput string

	cmd := &cobra.Command{
		Use:   "frames [file]",
		Short: "List the frames of a raw stream",
		Long: `Split a raw stream into VarInt frames and list the size and first
bytes of each, without decoding.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args, hexInput)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			scanner := newFrameScanner(bytes.NewReader(data), protocol.DefaultMaxFrameSize)
			n := 0
			for scanner.Scan() {
				payload := scanner.Bytes()
				prefix := payload
				if len(prefix) > 16 {
					prefix = prefix[:16]
				}
				fmt.Fprintf(out, "%4d  %7d  % x\n", n, len(payload), prefix)
				n++
			}
			if err := scanner.Err(); err != nil {
				return mcerrors.FromWire(err).
					WithDetailf("The stream could not be split after %d frames.", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&hexInput, "hex", "", "Hex encoded input instead of a file")

	return cmd
}

func newFrameScanner(r io.Reader, maxFrame int) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrame+protocol.MaxVarIntLen)
	scanner.Split(protocol.ScanFrames)
	return scanner
}

// readInput returns the bytes of --hex, the file argument or stdin.
func readInput(cmd *cobra.Command, args []string, hexInput string) ([]byte, error) {
	switch {
	case hexInput != "":
		return parseHex(hexInput)
	case len(args) == 1 && args[0] != "-":
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, mcerrors.FromError(err, "M150")
		}
		return data, nil
	default:
		return io.ReadAll(cmd.InOrStdin())
	}
}

func parseHex(s string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':':
			return -1
		}
		return r
	}, s)
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")
	b, err := hex.DecodeString(clean)
	if err != nil {
		return nil, mcerrors.New("M140").Wrap(err)
	}
	return b, nil
}

func parsePhaseDirection(phaseName, dirName string) (catalogue.Phase, catalogue.Direction, error) {
	phase, err := catalogue.ParsePhase(phaseName)
	if err != nil {
		return 0, 0, mcerrors.New("M141").Wrap(err)
	}
	dir, err := catalogue.ParseDirection(dirName)
	if err != nil {
		return 0, 0, mcerrors.New("M142").Wrap(err)
	}
	return phase, dir, nil
}

// loadConfig loads path, or searches from the working directory when path
// is empty.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromWorkingDir()
}
