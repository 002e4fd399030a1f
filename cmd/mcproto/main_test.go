package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/mcproto/internal/config"
	mcerrors "github.com/vango-dev/mcproto/internal/errors"
	"github.com/vango-dev/mcproto/pkg/capture"
	"github.com/vango-dev/mcproto/pkg/catalogue"
)

const handshakeHex = "0f0005096c6f63616c686f737463dd02"

// run executes the CLI with a default config file in a temp directory.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(cfgPath, []byte("[log]\nlevel = \"error\"\n"), 0o644))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", cfgPath, "--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func diagnosticCode(t *testing.T, err error) string {
	t.Helper()
	var d *mcerrors.Diagnostic
	require.True(t, errors.As(err, &d), "expected a diagnostic, got %v", err)
	return d.Code
}

func TestDecodeHandshake(t *testing.T) {
	out, err := run(t, "decode", "--hex", handshakeHex)
	require.NoError(t, err)

	var line struct {
		Index int            `json:"index"`
		Phase string         `json:"phase"`
		Size  int            `json:"size"`
		ID    *int           `json:"id"`
		Name  string         `json:"name"`
		Value map[string]any `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &line))
	assert.Equal(t, "handshake", line.Phase)
	assert.Equal(t, 15, line.Size)
	require.NotNil(t, line.ID)
	assert.Equal(t, 0, *line.ID)
	assert.Equal(t, "Handshake", line.Name)
	assert.Equal(t, "localhost", line.Value["server_address"])
	assert.EqualValues(t, 25565, line.Value["server_port"])
}

func TestDecodeFollowsPhase(t *testing.T) {
	// Handshake to login, then LoginStart("Steve").
	out, err := run(t, "decode", "--hex", handshakeHex+"070005"+"5374657665")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `"phase":"login"`)
	assert.Contains(t, lines[1], `"name":"LoginStart"`)
	assert.Contains(t, lines[1], `"Steve"`)
}

func TestDecodeFailedFrame(t *testing.T) {
	out, err := run(t, "decode", "--hex", "0100")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 frames failed to decode")
	assert.Contains(t, out, `"code":"M160"`)
	assert.Contains(t, out, `Handshake.proto_version"`)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"bad hex", []string{"decode", "--hex", "zz"}, "M140"},
		{"unknown phase", []string{"decode", "--phase", "config", "--hex", "00"}, "M141"},
		{"unknown direction", []string{"decode", "--direction", "up", "--hex", "00"}, "M142"},
		{"missing file", []string{"decode", filepath.Join(t.TempDir(), "nope.bin")}, "M150"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, diagnosticCode(t, err))
		})
	}
}

func TestParseHex(t *testing.T) {
	got, err := parseHex("0x0f 00:05\n09")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0f, 0x00, 0x05, 0x09}, got)
}

func TestFrames(t *testing.T) {
	out, err := run(t, "frames", "--hex", handshakeHex+"0100")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "   0       15  00 05 09 6c 6f 63 61 6c 68 6f 73 74 63 dd 02", lines[0])
	assert.Equal(t, "   1        1  00", lines[1])
}

func TestFramesMalformedLength(t *testing.T) {
	_, err := run(t, "frames", "--hex", "ffffffffff01")
	require.Error(t, err)
	assert.Equal(t, "wire", string(mustDiagnostic(t, err).Category))
}

func mustDiagnostic(t *testing.T, err error) *mcerrors.Diagnostic {
	t.Helper()
	var d *mcerrors.Diagnostic
	require.True(t, errors.As(err, &d))
	return d
}

func TestCatalogue(t *testing.T) {
	out, err := run(t, "catalogue", "--phase", "status", "--direction", "serverbound")
	require.NoError(t, err)
	assert.Contains(t, out, "status serverbound (2 packets)")
	assert.Contains(t, out, "  0x00  StatusRequest\n")
	assert.Contains(t, out, "  0x01  Ping\n")
	assert.NotContains(t, out, "Pong")
}

func TestCatalogueJSON(t *testing.T) {
	out, err := run(t, "catalogue", "--phase", "login", "--direction", "clientbound", "--json")
	require.NoError(t, err)

	var names []string
	for _, raw := range strings.Split(strings.TrimSpace(out), "\n") {
		var e catalogueEntry
		require.NoError(t, json.Unmarshal([]byte(raw), &e))
		assert.Equal(t, catalogue.Login, e.Phase)
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Disconnect", "EncryptionRequest", "LoginSuccess"}, names)
}

func TestCatalogueUnknownPhase(t *testing.T) {
	_, err := run(t, "catalogue", "--phase", "nether")
	require.Error(t, err)
	assert.Equal(t, "M141", diagnosticCode(t, err))
}

func TestVersionShort(t *testing.T) {
	out, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session"+capture.Extension)
	f, err := os.Create(path)
	require.NoError(t, err)

	ping := make([]byte, 9)
	ping[0] = 0x01
	binary.BigEndian.PutUint64(ping[1:], 42)
	pong := append([]byte(nil), ping...)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w := capture.NewWriter(f)
	require.NoError(t, w.Write(capture.Record{Direction: catalogue.Serverbound, Time: at, Phase: catalogue.Status, Payload: ping}))
	require.NoError(t, w.Write(capture.Record{Direction: catalogue.Clientbound, Time: at, Phase: catalogue.Status, Payload: pong}))
	require.NoError(t, w.Write(capture.Record{Direction: catalogue.Clientbound, Time: at, Phase: catalogue.Status, Payload: []byte{0x7f}}))
	require.NoError(t, w.Close())

	out, err := run(t, "inspect", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"name":"Ping"`)
	assert.Contains(t, lines[0], `"time":"2026-03-01T12:00:00Z"`)
	assert.Contains(t, lines[1], `"name":"Pong"`)
	assert.Contains(t, lines[1], `"time":42`)
	assert.Contains(t, lines[2], `"code":"M163"`)

	out, err = run(t, "inspect", "--direction", "serverbound", path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 1)
}

func TestInspectErrors(t *testing.T) {
	_, err := run(t, "inspect", filepath.Join(t.TempDir(), "missing.mccap"))
	require.Error(t, err)
	assert.Equal(t, "M150", diagnosticCode(t, err))

	_, err = run(t, "inspect", "--upload", "whatever.mccap")
	require.Error(t, err)
	assert.Equal(t, "M102", diagnosticCode(t, err))
}
