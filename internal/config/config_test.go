package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/mcproto/internal/errors"
	"github.com/vango-dev/mcproto/pkg/protocol"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func code(t *testing.T, err error) string {
	t.Helper()
	var d *errors.Diagnostic
	require.True(t, stderrors.As(err, &d), "want *errors.Diagnostic, got %T: %v", err, err)
	return d.Code
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultListen, cfg.Proxy.Listen)
	assert.Equal(t, DefaultUpstream, cfg.Proxy.Upstream)
	assert.Equal(t, DefaultHTTPListen, cfg.HTTP.Listen)
	assert.Equal(t, 5*time.Second, cfg.Proxy.DialTimeout.Duration)
	assert.Equal(t, -1, cfg.Compression.Threshold)
	assert.True(t, cfg.Proxy.Decode)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, protocol.DefaultLimits(), cfg.ProtocolLimits())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[log]
level = "debug"
pretty = false

[limits]
max_depth = 64
max_allocation = 1048576

[proxy]
listen = "0.0.0.0:25570"
upstream = "mc.example.net:25565"
dial_timeout = "750ms"

[http]
listen = ""

[compression]
threshold = 256

[capture]
dir = "captures"

[capture.s3]
bucket = "mc-captures"
prefix = "proxy"
region = "eu-west-1"
path_style = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
	assert.Equal(t, "0.0.0.0:25570", cfg.Proxy.Listen)
	assert.Equal(t, "mc.example.net:25565", cfg.Proxy.Upstream)
	assert.Equal(t, 750*time.Millisecond, cfg.Proxy.DialTimeout.Duration)
	assert.True(t, cfg.Proxy.Decode, "keys missing from the file keep defaults")
	assert.Empty(t, cfg.HTTP.Listen)
	assert.Equal(t, 256, cfg.Compression.Threshold)
	assert.Equal(t, "captures", cfg.Capture.Dir)
	assert.Equal(t, S3Config{Bucket: "mc-captures", Prefix: "proxy", Region: "eu-west-1", PathStyle: true}, cfg.Capture.S3)

	limits := cfg.ProtocolLimits()
	assert.Equal(t, 64, limits.MaxDepth)
	assert.Equal(t, 1048576, limits.MaxAllocation)
	assert.Equal(t, protocol.DefaultMaxCollectionCount, limits.MaxCollectionCount)
	assert.Equal(t, protocol.DefaultMaxFrameSize, limits.MaxFrameSize)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"not toml", "[log\nlevel = ", "M101"},
		{"wrong type", "[limits]\nmax_depth = \"deep\"\n", "M101"},
		{"bad duration", "[proxy]\ndial_timeout = \"soon\"\n", "M101"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "M102"},
		{"negative limit", "[limits]\nmax_depth = -1\n", "M102"},
		{"allocation above ceiling", "[limits]\nmax_allocation = 99999999\n", "M102"},
		{"upstream not host:port", "[proxy]\nupstream = \"localhost\"\n", "M102"},
		{"missing listen", "[proxy]\nlisten = \"\"\n", "M102"},
		{"negative timeout", "[proxy]\ndial_timeout = \"-1s\"\n", "M103"},
		{"bucket without dir", "[capture.s3]\nbucket = \"b\"\nregion = \"r\"\n", "M102"},
		{"bucket without region", "[capture]\ndir = \"c\"\n[capture.s3]\nbucket = \"b\"\n", "M102"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tt.body))
			require.Error(t, err)
			assert.Equal(t, tt.code, code(t, err))
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, "M100", code(t, err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, err := FindConfigFile(nested)
	require.NoError(t, err)
	wantAbs, err := filepath.Abs(want)
	require.NoError(t, err)
	assert.Equal(t, wantAbs, got)

	assert.True(t, Exists(root))
	assert.False(t, Exists(nested))
}

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte(" 1m30s ")))
	assert.Equal(t, 90*time.Second, d.Duration)

	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(b))

	assert.Error(t, d.UnmarshalText([]byte("ninety")))
}
