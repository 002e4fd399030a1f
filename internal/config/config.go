package config

import (
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vango-dev/mcproto/internal/errors"
	"github.com/vango-dev/mcproto/pkg/protocol"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "mcproto.toml"

	// DefaultListen is the default proxy listen address.
	DefaultListen = "127.0.0.1:25566"

	// DefaultUpstream is the default upstream server address.
	DefaultUpstream = "127.0.0.1:25565"

	// DefaultHTTPListen is the default admin HTTP address.
	DefaultHTTPListen = "127.0.0.1:9100"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration such as "30s".
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config represents the complete mcproto.toml configuration.
type Config struct {
	// Log contains logger settings.
	Log LogConfig `toml:"log"`

	// Limits bounds what the decoder accepts from the wire.
	Limits LimitsConfig `toml:"limits"`

	// Proxy contains the inspecting proxy settings.
	Proxy ProxyConfig `toml:"proxy"`

	// HTTP contains the admin server settings.
	HTTP HTTPConfig `toml:"http"`

	// Compression contains the frame compression settings.
	Compression CompressionConfig `toml:"compression"`

	// Capture contains capture file settings.
	Capture CaptureConfig `toml:"capture"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `toml:"level"`

	// Pretty selects console output instead of JSON lines.
	Pretty bool `toml:"pretty"`

	// NoColor disables colors in console output.
	NoColor bool `toml:"no_color"`
}

// LimitsConfig mirrors protocol.Limits. Zero means the default.
type LimitsConfig struct {
	MaxAllocation      int `toml:"max_allocation"`
	MaxCollectionCount int `toml:"max_collection_count"`
	MaxDepth           int `toml:"max_depth"`
	MaxFrameSize       int `toml:"max_frame_size"`
}

// ProxyConfig contains the inspecting proxy settings.
type ProxyConfig struct {
	// Listen is the TCP address clients connect to.
	Listen string `toml:"listen"`

	// Upstream is the server the proxy forwards to.
	Upstream string `toml:"upstream"`

	// DialTimeout bounds connecting to the upstream.
	DialTimeout Duration `toml:"dial_timeout"`

	// Decode enables framing and decoding a copy of the traffic.
	Decode bool `toml:"decode"`
}

// HTTPConfig contains the admin server settings.
type HTTPConfig struct {
	// Listen is the admin address. Empty disables the server.
	Listen string `toml:"listen"`

	// ReadHeaderTimeout bounds reading request headers.
	ReadHeaderTimeout Duration `toml:"read_header_timeout"`

	// WebSocket enables the /ws bridge to the upstream.
	WebSocket bool `toml:"websocket"`
}

// CompressionConfig contains the frame compression settings.
type CompressionConfig struct {
	// Threshold is the smallest payload that is compressed.
	// A negative value disables compression.
	Threshold int `toml:"threshold"`
}

// CaptureConfig contains capture file settings.
type CaptureConfig struct {
	// Dir is where capture files are written. Empty disables capture.
	Dir string `toml:"dir"`

	// S3 uploads finished captures when a bucket is set.
	S3 S3Config `toml:"s3"`
}

// S3Config describes the capture upload target.
type S3Config struct {
	Bucket    string `toml:"bucket"`
	Prefix    string `toml:"prefix"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	PathStyle bool   `toml:"path_style"`
}

// Default creates a new Config with default values.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Pretty: true,
		},
		Proxy: ProxyConfig{
			Listen:      DefaultListen,
			Upstream:    DefaultUpstream,
			DialTimeout: Duration{5 * time.Second},
			Decode:      true,
		},
		HTTP: HTTPConfig{
			Listen:            DefaultHTTPListen,
			ReadHeaderTimeout: Duration{5 * time.Second},
		},
		Compression: CompressionConfig{
			Threshold: -1,
		},
	}
}

// Load reads configuration from the specified file path. Keys missing from
// the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.New("M100").
				WithDetail("No " + ConfigFileName + " found at " + path).
				Wrap(err)
		}
		var perr toml.ParseError
		if stderrors.As(err, &perr) {
			return nil, errors.New("M101").
				WithLocation(path, perr.Position.Line, 0).
				WithDetail(perr.Message).
				WithSuggestion("Check that " + filepath.Base(path) + " is valid TOML")
		}
		return nil, errors.New("M101").Wrap(err)
	}

	cfg.configPath = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDir reads mcproto.toml from dir.
func LoadDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, ConfigFileName))
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error", "":
	default:
		return errors.New("M102").
			WithDetailf("log.level %q is not one of trace, debug, info, warn, error", c.Log.Level)
	}

	for name, v := range map[string]int{
		"limits.max_allocation":       c.Limits.MaxAllocation,
		"limits.max_collection_count": c.Limits.MaxCollectionCount,
		"limits.max_depth":            c.Limits.MaxDepth,
		"limits.max_frame_size":       c.Limits.MaxFrameSize,
	} {
		if v < 0 {
			return errors.New("M102").WithDetailf("%s must not be negative", name)
		}
	}
	if c.Limits.MaxAllocation > protocol.HardMaxAllocation {
		return errors.New("M102").
			WithDetailf("limits.max_allocation must be at most %d", protocol.HardMaxAllocation)
	}

	for name, addr := range map[string]string{
		"proxy.listen":   c.Proxy.Listen,
		"proxy.upstream": c.Proxy.Upstream,
		"http.listen":    c.HTTP.Listen,
	} {
		if addr == "" {
			if name == "http.listen" {
				continue
			}
			return errors.New("M102").WithDetailf("%s is required", name)
		}
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return errors.New("M102").WithDetailf("%s %q is not host:port", name, addr).Wrap(err)
		}
	}

	if c.Proxy.DialTimeout.Duration < 0 || c.HTTP.ReadHeaderTimeout.Duration < 0 {
		return errors.New("M103").WithDetail("timeouts must not be negative")
	}

	if c.Capture.S3.Bucket != "" && c.Capture.Dir == "" {
		return errors.New("M102").
			WithDetail("capture.s3.bucket is set but capture.dir is empty").
			WithSuggestion("Set capture.dir so there are files to upload")
	}
	if c.Capture.S3.Bucket != "" && c.Capture.S3.Region == "" {
		return errors.New("M102").WithDetail("capture.s3.region is required with a bucket")
	}
	return nil
}

// ProtocolLimits converts the [limits] section to decoder limits.
func (c *Config) ProtocolLimits() protocol.Limits {
	return protocol.Limits{
		MaxAllocation:      c.Limits.MaxAllocation,
		MaxCollectionCount: c.Limits.MaxCollectionCount,
		MaxDepth:           c.Limits.MaxDepth,
		MaxFrameSize:       c.Limits.MaxFrameSize,
	}.Normalize()
}

// Exists checks if a config file exists in the directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindConfigFile walks up from startDir and returns the path of the first
// mcproto.toml it finds.
func FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return filepath.Join(dir, ConfigFileName), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("M100").
				WithDetail(fmt.Sprintf("No %s found in %s or any parent directory", ConfigFileName, startDir)).
				WithSuggestion("Run 'mcproto proxy --upstream host:port' or create " + ConfigFileName)
		}
		dir = parent
	}
}

// LoadFromWorkingDir finds and loads the config for the working directory.
// When no file exists the defaults are returned.
func LoadFromWorkingDir() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	path, err := FindConfigFile(cwd)
	if err != nil {
		return Default(), nil
	}
	return Load(path)
}
